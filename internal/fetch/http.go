package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/nao1215/spider/internal/transport"
)

const (
	// DefaultTimeout bounds a plain fetch.
	DefaultTimeout = 5 * time.Second

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// HTTPFetcher fetches pages with a plain HTTP request.
//
// Design decision: Each Fetch clones a base collector. Callbacks registered
// on the clone die with it, so they never pile up across pages, while the
// clone still shares the base collector's HTTP client and connection pool.
// A fetcher is used by one spider at a time.
type HTTPFetcher struct {
	base      *colly.Collector
	transport http.RoundTripper
	timeout   time.Duration
	userAgent string
	headers   map[string]string
	logger    *slog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders sets headers sent with every request.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithTransport sets the round tripper, for example a SOCKS5 transport.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(f *HTTPFetcher) {
		f.transport = rt
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a plain fetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.base = colly.NewCollector(
		colly.UserAgent(f.userAgent),
		// Dedup belongs to the engine's filter, not to colly.
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
	)
	f.base.SetRequestTimeout(f.timeout)
	f.transport = transport.WithHeaders(f.transport, f.headers)
	return f
}

// Fetch retrieves req.URL. HTTP error statuses still yield their body.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	content := &Content{URL: req.URL}

	c := f.base.Clone()
	c.WithTransport(&contextTransport{base: f.transport, ctx: ctx})

	c.OnResponse(func(r *colly.Response) {
		content.StatusCode = r.StatusCode
		content.ContentType = r.Headers.Get("Content-Type")
		content.Body = r.Body
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil && r.StatusCode > 0 {
			content.StatusCode = r.StatusCode
		}
	})

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	hdr := http.Header{}
	for k, v := range req.Header {
		hdr.Set(k, v)
	}

	var body io.Reader
	if method == http.MethodPost {
		form := url.Values{}
		for k, v := range req.Form {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		hdr.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if err := c.Request(method, req.URL, body, nil, hdr); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if fetchErr != nil {
		f.logger.Warn("fetch failed, continuing with empty content",
			"url", req.URL,
			"error", fetchErr,
			"elapsed", time.Since(start),
		)
		content.Body = nil
		return content, nil
	}
	if content.StatusCode >= http.StatusBadRequest {
		f.logger.Warn("fetch returned error status",
			"url", req.URL,
			"status", content.StatusCode,
		)
	}

	content.Body = decodeBody(content.Body, content.ContentType)
	f.logger.Debug("fetched page",
		"url", req.URL,
		"status", content.StatusCode,
		"bytes", len(content.Body),
		"elapsed", time.Since(start),
	)
	return content, nil
}

// contextTransport binds in-flight requests to the fetch context, since
// colly requests carry no context of their own.
type contextTransport struct {
	base http.RoundTripper
	ctx  context.Context
}

// RoundTrip implements http.RoundTripper.
func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
