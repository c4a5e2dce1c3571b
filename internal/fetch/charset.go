package fetch

import (
	"mime"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// decodeBody converts body to UTF-8 using the encoding declared in a
// <meta> tag or byte order mark.
//
// A charset in the Content-Type header is already handled by colly, so the
// body is returned unchanged in that case. The windows-1252 fallback of
// charset.DetermineEncoding is ignored because it is a guess, and applying
// it to UTF-8 text whose first kilobyte is ASCII would corrupt it.
func decodeBody(body []byte, contentType string) []byte {
	if len(body) == 0 {
		return body
	}
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if _, ok := params["charset"]; ok {
			return body
		}
	}

	enc, name, _ := charset.DetermineEncoding(body, "")
	if name == "utf-8" || name == "windows-1252" {
		return body
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return body
	}
	return decoded
}
