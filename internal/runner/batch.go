package runner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/spider/internal/engine"
)

// DefaultConcurrency is the number of spiders run at once when no limit is set.
const DefaultConcurrency = 4

// Job describes one spider of a batch.
type Job struct {
	// Name identifies the spider in logs and results.
	Name string

	// Build creates the spider. It is called once, right before the
	// spider runs, so each spider gets fresh fetch resources.
	Build func() (*engine.Spider, error)
}

// Result is the outcome of one job.
type Result struct {
	Name  string
	State engine.State
	Stats engine.Stats
	Err   error
}

// OK reports whether the spider finished without a fatal error.
func (r Result) OK() bool {
	return r.Err == nil && r.State == engine.Finished
}

// Batch runs jobs concurrently.
//
// Design decision: A failing spider never cancels its siblings. Each
// job's error is recorded in its Result and the errgroup only sees
// cancellation of the parent context.
type Batch struct {
	concurrency int
	logger      *slog.Logger
}

// Option configures a Batch.
type Option func(*Batch)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of spiders in flight.
// Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatch creates a batch runner.
func NewBatch(opts ...Option) *Batch {
	b := &Batch{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Run executes every job and returns the results in job order.
// Jobs that never started because ctx was cancelled carry ctx.Err().
// The returned error is non-nil only when ctx was cancelled.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	err := b.RunWithCallback(ctx, jobs, func(r Result, i int) {
		results[i] = r
	})
	return results, err
}

// RunWithCallback executes every job and calls callback with each result
// and its job index as soon as the job ends. The callback is invoked from
// the job's goroutine and must be safe for concurrent use.
func (b *Batch) RunWithCallback(ctx context.Context, jobs []Job, callback func(Result, int)) error {
	b.logger.Info("starting batch",
		"spiders", len(jobs),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				callback(Result{Name: job.Name, State: engine.Idle, Err: err}, i)
				return err
			}
			callback(b.runJob(ctx, job), i)
			return nil
		})
	}

	err := g.Wait()
	b.logger.Info("batch complete",
		"spiders", len(jobs),
		"elapsed", time.Since(start),
	)
	return err
}

func (b *Batch) runJob(ctx context.Context, job Job) Result {
	spider, err := job.Build()
	if err != nil {
		b.logger.Warn("failed to build spider", "spider", job.Name, "error", err)
		return Result{Name: job.Name, State: engine.Failed, Err: err}
	}

	stats, err := spider.Run(ctx)
	if err != nil {
		b.logger.Warn("spider failed", "spider", job.Name, "error", err)
	}
	return Result{
		Name:  job.Name,
		State: spider.State(),
		Stats: stats,
		Err:   err,
	}
}

// Failed returns the number of results that did not finish cleanly.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
