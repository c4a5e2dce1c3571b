package report

import (
	"time"

	"github.com/nao1215/spider/internal/engine"
	"github.com/nao1215/spider/internal/runner"
)

// SpiderSummary is the outcome of one spider.
type SpiderSummary struct {
	// Name is the spider name from the configuration.
	Name string `json:"name"`

	// State is the final lifecycle state.
	State engine.State `json:"state"`

	// Stats are the run counters.
	Stats engine.Stats `json:"stats"`

	// Error is the fatal error message, if any.
	Error string `json:"error,omitempty"`
}

// Summary is the outcome of a batch.
type Summary struct {
	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Spiders holds one entry per spider in definition order.
	Spiders []SpiderSummary `json:"spiders"`

	// Total adds up the counters of every spider.
	Total engine.Stats `json:"total"`

	// Failed is the number of spiders that did not finish cleanly.
	Failed int `json:"failed"`
}

// NewSummary builds a summary from batch results.
func NewSummary(results []runner.Result) *Summary {
	s := &Summary{
		GeneratedAt: time.Now(),
		Spiders:     make([]SpiderSummary, 0, len(results)),
	}

	for _, r := range results {
		entry := SpiderSummary{
			Name:  r.Name,
			State: r.State,
			Stats: r.Stats,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		if !r.OK() {
			s.Failed++
		}
		s.Spiders = append(s.Spiders, entry)

		s.Total.Processed += r.Stats.Processed
		s.Total.Skipped += r.Stats.Skipped
		s.Total.Failed += r.Stats.Failed
		s.Total.Saved += r.Stats.Saved
		s.Total.SaveFailed += r.Stats.SaveFailed
		s.Total.RowsSaved += r.Stats.RowsSaved
		s.Total.Enqueued += r.Stats.Enqueued
		s.Total.Elapsed = max(s.Total.Elapsed, r.Stats.Elapsed)
	}
	return s
}

// OK reports whether every spider finished cleanly.
func (s *Summary) OK() bool {
	return s.Failed == 0
}
