// Package dedup decides whether a URL has already been processed.
//
// Every filter implements the same contract: Seen is a pure query and
// MarkSeen is idempotent. Keys are exact URL strings; no normalization is
// applied, so "http://a" and "http://a/" are different keys.
//
// Three backends are provided:
//   - Memory: an in-process set, lost when the process exits
//   - Redis: a shared set, so several crawler processes skip each other's pages
//   - Badger: an embedded key-value store that survives restarts
//
// Design decision: The engine calls Seen and MarkSeen separately instead of
// an atomic check-and-mark. One spider processes a single page at a time,
// and spiders of one batch crawl disjoint chains, so the window between
// the two calls cannot schedule the same page twice within a spider.
package dedup
