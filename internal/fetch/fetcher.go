package fetch

import (
	"context"
	"errors"

	"github.com/nao1215/spider/internal/model"
)

// ErrFetcherClosed is returned by Fetch after Close.
var ErrFetcherClosed = errors.New("fetcher is closed")

// Request describes one fetch.
type Request struct {
	// URL is the address to fetch.
	URL string

	// Render asks for script execution before capture.
	Render bool

	// Method is GET or POST.
	Method string

	// Form is the POST form body.
	Form map[string]string

	// Header holds extra request headers.
	Header map[string]string
}

// RequestFor builds the request for page from its template.
func RequestFor(page *model.Page) Request {
	tmpl := page.Template
	return Request{
		URL:    page.URL,
		Render: tmpl.Render(),
		Method: tmpl.Method(),
		Form:   tmpl.Form(),
		Header: tmpl.Header(),
	}
}

// Content is the result of a fetch.
type Content struct {
	// URL is the requested address.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// ContentType is the response Content-Type header.
	ContentType string

	// Body is the document, decoded to UTF-8. Empty on failure.
	Body []byte
}

// Fetcher retrieves page content.
type Fetcher interface {
	// Fetch retrieves req.URL. Transfer failures are absorbed into empty
	// content; the returned error is non-nil only when ctx is done or the
	// fetcher cannot be used at all.
	Fetch(ctx context.Context, req Request) (*Content, error)
}
