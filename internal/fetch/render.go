package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultRenderTimeout bounds navigation in the headless browser.
	DefaultRenderTimeout = 10 * time.Second

	// captureTimeout bounds reading the DOM after navigation ended,
	// including after a navigation timeout.
	captureTimeout = 5 * time.Second
)

// RenderOptions configures a RenderFetcher.
type RenderOptions struct {
	// Timeout bounds navigation. Defaults to DefaultRenderTimeout.
	Timeout time.Duration

	// Wait is extra settle time after navigation, for late scripts.
	Wait time.Duration

	// Headless runs Chrome without a window.
	Headless bool

	// NoSandbox disables the Chrome sandbox (needed in most containers).
	NoSandbox bool

	// UserAgent overrides the browser user agent.
	UserAgent string

	// ExecPath is the Chrome binary. Empty means search the usual locations.
	ExecPath string

	// Proxy is a SOCKS5 "host:port" the browser connects through.
	Proxy string

	// Logger receives fetch diagnostics.
	Logger *slog.Logger
}

// RenderFetcher fetches pages through a headless Chrome.
// The browser is started on the first Fetch and reused until Close.
type RenderFetcher struct {
	opts RenderOptions

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool
}

// NewRenderFetcher creates a render fetcher. No browser is started yet.
func NewRenderFetcher(opts RenderOptions) *RenderFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRenderTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &RenderFetcher{opts: opts}
}

// browser returns the shared browser context, starting Chrome if needed.
func (f *RenderFetcher) browser() (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFetcherClosed
	}
	if f.browserCtx != nil {
		return f.browserCtx, nil
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if f.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if f.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(f.opts.UserAgent))
	}
	if f.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.opts.ExecPath))
	}
	if f.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer("socks5://"+f.opts.Proxy))
	}

	// The browser outlives single fetches, so it hangs off Background and
	// is released by Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start headless browser: %w", err)
	}

	f.allocCancel = allocCancel
	f.browserCtx = browserCtx
	f.browserCancel = browserCancel
	return browserCtx, nil
}

// Fetch opens a tab, navigates to req.URL, and captures the rendered DOM.
// A navigation timeout still captures whatever has been rendered so far.
// Form bodies are not supported; POST templates are navigated with GET.
func (f *RenderFetcher) Fetch(ctx context.Context, req Request) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := f.opts.Logger

	browserCtx, err := f.browser()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content := &Content{URL: req.URL, ContentType: "text/html; charset=utf-8"}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if req.Method == http.MethodPost {
		logger.Warn("render fetcher does not send form bodies, using GET", "url", req.URL)
	}

	// Allocate the tab outside the navigation timeout.
	if err := chromedp.Run(tabCtx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("failed to open browser tab", "url", req.URL, "error", err)
		return content, nil
	}

	var actions chromedp.Tasks
	if len(req.Header) > 0 {
		headers := make(network.Headers, len(req.Header))
		for k, v := range req.Header {
			headers[k] = v
		}
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	actions = append(actions, chromedp.Navigate(req.URL))
	if f.opts.Wait > 0 {
		actions = append(actions, chromedp.Sleep(f.opts.Wait))
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, f.opts.Timeout+f.opts.Wait)
	navErr := chromedp.Run(navCtx, actions)
	cancelNav()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if navErr != nil {
		logger.Warn("render navigation did not complete, capturing partial content",
			"url", req.URL,
			"error", navErr,
			"elapsed", time.Since(start),
		)
	}

	var (
		html   string
		status float64
	)
	capCtx, cancelCap := context.WithTimeout(tabCtx, captureTimeout)
	defer cancelCap()
	err = chromedp.Run(capCtx,
		chromedp.Evaluate(`document.documentElement ? document.documentElement.outerHTML : ""`, &html),
		chromedp.Evaluate(`window.performance?.getEntriesByType?.('navigation')?.[0]?.responseStatus || 0`, &status),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("failed to capture rendered content", "url", req.URL, "error", err)
		return content, nil
	}

	content.StatusCode = int(status)
	content.Body = []byte(html)
	logger.Debug("rendered page",
		"url", req.URL,
		"status", content.StatusCode,
		"bytes", len(content.Body),
		"elapsed", time.Since(start),
	)
	return content, nil
}

// Close stops the browser. It is safe to call more than once.
func (f *RenderFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	if f.browserCancel != nil {
		f.browserCancel()
		f.allocCancel()
		f.browserCtx = nil
	}
	return nil
}
