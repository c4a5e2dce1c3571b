package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/spider/internal/model"
)

// TestHTTPFetcher tests plain fetching against a local server.
func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	t.Run("GET returns the body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><body><h1>hello</h1></body></html>")
		}))
		defer srv.Close()

		content, err := NewHTTPFetcher().Fetch(context.Background(), Request{URL: srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", content.StatusCode)
		}
		if !strings.Contains(string(content.Body), "<h1>hello</h1>") {
			t.Errorf("unexpected body %q", content.Body)
		}
	})

	t.Run("same URL can be fetched twice", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			fmt.Fprint(w, "ok")
		}))
		defer srv.Close()

		f := NewHTTPFetcher()
		for range 2 {
			if _, err := f.Fetch(context.Background(), Request{URL: srv.URL}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if hits.Load() != 2 {
			t.Errorf("expected 2 requests, got %d", hits.Load())
		}
	})

	t.Run("POST sends the form body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				http.Error(w, "method", http.StatusMethodNotAllowed)
				return
			}
			if err := r.ParseForm(); err != nil {
				http.Error(w, "form", http.StatusBadRequest)
				return
			}
			fmt.Fprintf(w, "<p>%s</p>", r.PostForm.Get("q"))
		}))
		defer srv.Close()

		content, err := NewHTTPFetcher().Fetch(context.Background(), Request{
			URL:    srv.URL,
			Method: http.MethodPost,
			Form:   map[string]string{"q": "golang"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(content.Body) != "<p>golang</p>" {
			t.Errorf("unexpected body %q", content.Body)
		}
	})

	t.Run("static and request headers are sent", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, "%s|%s|%s", r.Header.Get("X-Static"), r.Header.Get("X-Request"), r.UserAgent())
		}))
		defer srv.Close()

		f := NewHTTPFetcher(
			WithHeaders(map[string]string{"X-Static": "s"}),
			WithUserAgent("spider-test"),
		)
		content, err := f.Fetch(context.Background(), Request{
			URL:    srv.URL,
			Header: map[string]string{"X-Request": "r"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(content.Body) != "s|r|spider-test" {
			t.Errorf("unexpected body %q", content.Body)
		}
	})

	t.Run("error status still yields the body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "<h1>missing</h1>")
		}))
		defer srv.Close()

		content, err := NewHTTPFetcher().Fetch(context.Background(), Request{URL: srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", content.StatusCode)
		}
		if string(content.Body) != "<h1>missing</h1>" {
			t.Errorf("unexpected body %q", content.Body)
		}
	})

	t.Run("timeout is absorbed into empty content", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		f := NewHTTPFetcher(WithTimeout(100 * time.Millisecond))
		content, err := f.Fetch(context.Background(), Request{URL: srv.URL})
		if err != nil {
			t.Fatalf("timeout must not be returned as an error: %v", err)
		}
		if len(content.Body) != 0 {
			t.Errorf("expected empty body, got %q", content.Body)
		}
	})

	t.Run("connection refused is absorbed", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		content, err := NewHTTPFetcher().Fetch(context.Background(), Request{URL: addr})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content.StatusCode != 0 || len(content.Body) != 0 {
			t.Errorf("expected empty content, got %d %q", content.StatusCode, content.Body)
		}
	})

	t.Run("cancelled context is returned", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewHTTPFetcher().Fetch(ctx, Request{URL: "http://127.0.0.1:1"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("cancellation during a transfer is returned", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cancel()
			<-r.Context().Done()
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(WithTimeout(5*time.Second)).Fetch(ctx, Request{URL: srv.URL})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestDecodeBody tests charset conversion of fetched documents.
func TestDecodeBody(t *testing.T) {
	t.Parallel()

	t.Run("meta charset is decoded", func(t *testing.T) {
		t.Parallel()

		// "café" in ISO-8859-15 is the same byte as in Latin-1.
		body := []byte("<html><head><meta charset=\"iso-8859-15\"></head><body>caf\xe9</body></html>")
		got := decodeBody(body, "text/html")
		if !bytes.Contains(got, []byte("café")) {
			t.Errorf("expected UTF-8 café, got %q", got)
		}
	})

	t.Run("header charset is left to the collector", func(t *testing.T) {
		t.Parallel()

		body := []byte("caf\xe9")
		got := decodeBody(body, "text/html; charset=iso-8859-15")
		if !bytes.Equal(got, body) {
			t.Errorf("body should be unchanged, got %q", got)
		}
	})

	t.Run("utf-8 is unchanged", func(t *testing.T) {
		t.Parallel()

		body := []byte("<html><body>日本語</body></html>")
		if got := decodeBody(body, "text/html"); !bytes.Equal(got, body) {
			t.Errorf("body should be unchanged, got %q", got)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		if got := decodeBody(nil, ""); len(got) != 0 {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

// TestRequestFor tests building a request from a page.
func TestRequestFor(t *testing.T) {
	t.Parallel()

	tmpl, err := model.NewTemplate(model.TemplateSpec{
		SeedURLs:    []string{"http://list.example.com"},
		Expressions: model.Fields{{Name: "x", Value: "//p"}},
		Render:      true,
		Method:      "post",
		Form:        map[string]string{"page": "1"},
		Header:      map[string]string{"Referer": "http://example.com"},
	})
	if err != nil {
		t.Fatalf("failed to build template: %v", err)
	}

	req := RequestFor(model.NewSeedPage("http://list.example.com", tmpl))
	if req.URL != "http://list.example.com" || !req.Render || req.Method != http.MethodPost {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Form["page"] != "1" || req.Header["Referer"] != "http://example.com" {
		t.Errorf("form or header not copied: %+v", req)
	}
}

type recordingFetcher struct {
	name   string
	calls  int
	closed bool
}

func (f *recordingFetcher) Fetch(_ context.Context, req Request) (*Content, error) {
	f.calls++
	return &Content{URL: req.URL, Body: []byte(f.name)}, nil
}

func (f *recordingFetcher) Close() error {
	f.closed = true
	return nil
}

var _ io.Closer = (*recordingFetcher)(nil)

// TestRouter tests dispatch by the render flag.
func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("dispatches by render flag", func(t *testing.T) {
		t.Parallel()

		plain := &recordingFetcher{name: "plain"}
		render := &recordingFetcher{name: "render"}
		r := NewRouter(plain, render)

		c, _ := r.Fetch(context.Background(), Request{URL: "http://a", Render: true})
		if string(c.Body) != "render" {
			t.Errorf("expected render fetcher, got %s", c.Body)
		}
		c, _ = r.Fetch(context.Background(), Request{URL: "http://a"})
		if string(c.Body) != "plain" {
			t.Errorf("expected plain fetcher, got %s", c.Body)
		}

		if err := r.Close(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		if !plain.closed || !render.closed {
			t.Error("expected both fetchers to be closed")
		}
	})

	t.Run("missing render fetcher falls back to plain", func(t *testing.T) {
		t.Parallel()

		plain := &recordingFetcher{name: "plain"}
		r := NewRouter(plain, nil)

		c, _ := r.Fetch(context.Background(), Request{URL: "http://a", Render: true})
		if string(c.Body) != "plain" {
			t.Errorf("expected plain fetcher, got %s", c.Body)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
	})
}

// TestRenderFetcherLifecycle tests construction and Close without a browser.
func TestRenderFetcherLifecycle(t *testing.T) {
	t.Parallel()

	f := NewRenderFetcher(RenderOptions{Headless: true, NoSandbox: true})
	if f.opts.Timeout != DefaultRenderTimeout {
		t.Errorf("expected default timeout, got %v", f.opts.Timeout)
	}

	// Close before any fetch and twice in a row.
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if _, err := f.Fetch(context.Background(), Request{URL: "http://a.example.com", Render: true}); !errors.Is(err, ErrFetcherClosed) {
		t.Errorf("expected ErrFetcherClosed, got %v", err)
	}
}
