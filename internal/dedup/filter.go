package dedup

import "context"

// Filter is the dedup contract consumed by the engine.
type Filter interface {
	// Seen reports whether url was marked before.
	Seen(ctx context.Context, url string) (bool, error)

	// MarkSeen records url. Marking an already-marked URL is harmless.
	MarkSeen(ctx context.Context, url string) error
}
