package engine

import "time"

// State is the lifecycle state of a Spider.
type State int

const (
	// Idle means Run has not been called.
	Idle State = iota

	// Draining means the queue is being processed.
	Draining

	// Finished means the queue was drained or the page limit was reached.
	Finished

	// Failed means the run stopped on a fatal error.
	Failed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Stats counts what a run did.
type Stats struct {
	// Processed is the number of pages that were fetched.
	Processed int `json:"processed"`

	// Skipped is the number of pages the dedup filter had already seen.
	Skipped int `json:"skipped"`

	// Failed is the number of pages that failed outside the sink
	// (hooks, dedup backend, fetch, extraction).
	Failed int `json:"failed"`

	// Saved is the number of matrices the sink accepted.
	Saved int `json:"saved"`

	// SaveFailed is the number of matrices the sink rejected.
	SaveFailed int `json:"save_failed"`

	// RowsSaved is the number of data rows in accepted matrices.
	RowsSaved int `json:"rows_saved"`

	// Enqueued is the number of pages put on the queue, seeds included.
	Enqueued int `json:"enqueued"`

	// Elapsed is the wall time of the run.
	Elapsed time.Duration `json:"elapsed"`
}
