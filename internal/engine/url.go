package engine

import "regexp"

// urlPattern accepts http, https, ftp and ftps URLs whose host is a
// dotted domain name, localhost, or an IPv4 address.
var urlPattern = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)` +
	`|localhost` +
	`|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ValidURL reports whether rawURL is acceptable as a crawl target.
// The check is syntactic only; no normalization is applied.
func ValidURL(rawURL string) bool {
	return urlPattern.MatchString(rawURL)
}
