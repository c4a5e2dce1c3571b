package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nao1215/spider/internal/dedup"
	"github.com/nao1215/spider/internal/extract"
	"github.com/nao1215/spider/internal/fetch"
	"github.com/nao1215/spider/internal/model"
	"github.com/nao1215/spider/internal/scheduler"
	"github.com/nao1215/spider/internal/sink"
	"github.com/nao1215/spider/internal/transform"
)

// Spider crawls one template chain.
//
// Design decision: A Spider is single use. Its queue, stats and state
// belong to one run, so a second Run returns ErrAlreadyRun instead of
// silently mixing two crawls. The dedup filter and sink are borrowed and
// may be shared between spiders; the fetcher is owned and closed by Run.
type Spider struct {
	name      string
	chain     *model.Chain
	fetcher   fetch.Fetcher
	filter    dedup.Filter
	sink      sink.Sink
	extractor *extract.Extractor
	logger    *slog.Logger
	maxPages  int

	mu    sync.Mutex
	state State
	stats Stats
}

// Option configures a Spider.
type Option func(*Spider)

// WithLogger sets the logger. The spider name is attached to every record.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxPages stops the run after n fetched pages. 0 means no limit.
func WithMaxPages(n int) Option {
	return func(s *Spider) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithFetcher sets the fetcher. It is closed at the end of Run when it
// implements io.Closer.
func WithFetcher(f fetch.Fetcher) Option {
	return func(s *Spider) {
		s.fetcher = f
	}
}

// WithFilter sets the dedup filter. The default is an in-memory set.
func WithFilter(f dedup.Filter) Option {
	return func(s *Spider) {
		s.filter = f
	}
}

// WithSink sets the sink. The default prints Markdown tables to stdout.
func WithSink(sk sink.Sink) Option {
	return func(s *Spider) {
		s.sink = sk
	}
}

// WithExtractor sets the extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(s *Spider) {
		s.extractor = e
	}
}

// New creates a spider for chain. Every template's expressions are
// compiled up front so a bad XPath fails here rather than mid-crawl.
func New(name string, chain *model.Chain, opts ...Option) (*Spider, error) {
	if chain == nil {
		return nil, ErrNilChain
	}

	s := &Spider{
		name:   name,
		chain:  chain,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("spider", name)

	if s.fetcher == nil {
		s.fetcher = fetch.NewHTTPFetcher(fetch.WithHTTPLogger(s.logger))
	}
	if s.filter == nil {
		s.filter = dedup.NewMemory()
	}
	if s.sink == nil {
		s.sink = sink.NewConsole(os.Stdout)
	}
	if s.extractor == nil {
		s.extractor = extract.New(extract.WithLogger(s.logger))
	}

	for _, tmpl := range chain.Templates() {
		if err := s.extractor.Validate(tmpl); err != nil {
			return nil, fmt.Errorf("template %d: %w", tmpl.Level(), err)
		}
	}
	return s, nil
}

// Name returns the spider name.
func (s *Spider) Name() string {
	return s.name
}

// State returns the current lifecycle state.
func (s *Spider) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a snapshot of the counters.
func (s *Spider) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Run drains the queue seeded from the root template's seed URLs.
// It returns when the queue is empty, the page limit is reached, or a
// fatal error occurs. Page-level failures do not stop the run.
func (s *Spider) Run(ctx context.Context) (stats Stats, err error) {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return s.Stats(), ErrAlreadyRun
	}
	s.state = Draining
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info("spider started", "seeds", len(s.chain.Root().SeedURLs()))

	defer func() {
		s.closeFetcher()

		s.mu.Lock()
		s.stats.Elapsed = time.Since(start)
		if err != nil {
			s.state = Failed
		} else {
			s.state = Finished
		}
		stats = s.stats
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("spider failed", "error", err, "elapsed", stats.Elapsed)
			return
		}
		s.logger.Info("spider finished",
			"processed", stats.Processed,
			"saved", stats.Saved,
			"elapsed", stats.Elapsed,
		)
	}()

	seeds := s.chain.Root().SeedURLs()
	for _, u := range seeds {
		if !ValidURL(u) {
			return Stats{}, fmt.Errorf("%w: seed %q", ErrMalformedURL, u)
		}
	}

	queue := scheduler.New()
	for _, u := range seeds {
		queue.Enqueue(model.NewSeedPage(u, s.chain.Root()))
	}
	s.record(func(st *Stats) { st.Enqueued += len(seeds) })

	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		if s.maxPages > 0 && s.Stats().Processed >= s.maxPages {
			s.logger.Info("page limit reached", "limit", s.maxPages, "discarded", queue.Len())
			queue.Clear()
			break
		}

		page, _ := queue.Peek()
		children, err := s.process(ctx, page)
		if err != nil {
			return Stats{}, err
		}
		for _, child := range children {
			queue.Enqueue(child)
		}
		s.record(func(st *Stats) { st.Enqueued += len(children) })
		queue.Dequeue()
	}
	return Stats{}, nil
}

// process runs one page through the pipeline and returns its children.
// A non-nil error is fatal for the run.
func (s *Spider) process(ctx context.Context, page *model.Page) ([]*model.Page, error) {
	tmpl := page.Template
	hooks := tmpl.Hooks()
	logger := s.logger.With("url", page.URL, "template", tmpl.Level())
	if page.HasParent() {
		logger = logger.With("parent", page.ParentURL)
	}

	// fail logs a page-level failure. The page is not marked seen and
	// children are derived only from values that were extracted.
	fail := func(stage string, err error) ([]*model.Page, error) {
		logger.Warn("page failed", "stage", stage, "error", err)
		s.record(func(st *Stats) { st.Failed++ })
		return children(page), nil
	}

	if err := runHook(ctx, hooks.BeforeDownload, page); err != nil {
		return fail("before_download", err)
	}

	if !ValidURL(page.URL) {
		return nil, fmt.Errorf("%w: %q (parent %q)", ErrMalformedURL, page.URL, page.ParentURL)
	}

	seen, err := s.filter.Seen(ctx, page.URL)
	if err != nil {
		return fail("dedup", err)
	}
	if seen {
		logger.Debug("page skipped")
		s.record(func(st *Stats) { st.Skipped++ })
		return nil, nil
	}

	s.record(func(st *Stats) { st.Processed++ })
	content, err := s.fetcher.Fetch(ctx, fetch.RequestFor(page))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return fail("fetch", err)
	}

	values, rows, err := s.extractor.Extract(tmpl, content.Body)
	if err != nil {
		return fail("extract", err)
	}
	page.Values = values
	page.Rows = rows

	if err := runHook(ctx, hooks.AfterDownload, page); err != nil {
		return fail("after_download", err)
	}

	markSeen := true
	if tmpl.Persists() {
		matrix, err := transform.Transform(page)
		switch {
		case errors.Is(err, transform.ErrRowCountMismatch):
			logger.Warn("save skipped", "error", err)
		case err != nil:
			return fail("transform", err)
		default:
			page.Matrix = matrix
			if err := runHook(ctx, hooks.BeforeSave, page); err != nil {
				return fail("before_save", err)
			}
			markSeen = s.save(ctx, logger, page)
		}
	}

	if markSeen {
		if err := s.filter.MarkSeen(ctx, page.URL); err != nil {
			return fail("dedup", err)
		}
	}
	return children(page), nil
}

// save hands the page matrix to the sink and reports whether it was accepted.
func (s *Spider) save(ctx context.Context, logger *slog.Logger, page *model.Page) bool {
	tag := page.Template.Tag()
	if err := s.sink.Save(ctx, page.Matrix, tag); err != nil {
		logger.Error("save failed", "tag", tag, "error", err)
		s.record(func(st *Stats) { st.SaveFailed++ })
		return false
	}

	rows := page.Matrix.RowCount()
	logger.Debug("page saved", "tag", tag, "rows", rows)
	s.record(func(st *Stats) {
		st.Saved++
		st.RowsSaved += rows
	})
	return true
}

func (s *Spider) record(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

func (s *Spider) closeFetcher() {
	c, ok := s.fetcher.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		s.logger.Warn("failed to close fetcher", "error", err)
	}
}

// children builds the next-level pages of an extracted page.
func children(page *model.Page) []*model.Page {
	if !page.Extracted() {
		return nil
	}
	urls := page.NextURLs()
	if len(urls) == 0 {
		return nil
	}
	out := make([]*model.Page, len(urls))
	for i, u := range urls {
		out[i] = model.NewChildPage(page, u)
	}
	return out
}

// runHook calls fn, converting a panic into an error.
func runHook(ctx context.Context, fn model.HookFunc, page *model.Page) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHookPanic, r)
		}
	}()
	return fn(ctx, page)
}
