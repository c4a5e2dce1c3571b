package fetch

import (
	"context"
	"errors"
	"io"
)

// Router sends render requests to one fetcher and plain requests to another.
type Router struct {
	plain  Fetcher
	render Fetcher
}

// NewRouter creates a router. render may be nil, in which case render
// requests fall back to plain.
func NewRouter(plain, render Fetcher) *Router {
	return &Router{plain: plain, render: render}
}

// Fetch dispatches req by its Render flag.
func (r *Router) Fetch(ctx context.Context, req Request) (*Content, error) {
	if req.Render && r.render != nil {
		return r.render.Fetch(ctx, req)
	}
	return r.plain.Fetch(ctx, req)
}

// Close closes every routed fetcher that holds resources.
func (r *Router) Close() error {
	var errs []error
	for _, f := range []Fetcher{r.plain, r.render} {
		if c, ok := f.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
