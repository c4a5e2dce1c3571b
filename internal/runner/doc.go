// Package runner executes several spiders side by side.
//
// Each spider drains its own queue sequentially; the runner only bounds how
// many spiders are in flight at once. Dedup filters and sinks handed to the
// spiders may be shared, so they must be safe for concurrent use.
package runner
