// Package engine drives a template chain over a FIFO queue of pages.
//
// One Spider owns one queue and processes exactly one page at a time:
//
//	before_download → validate URL → dedup check → fetch → extract →
//	after_download → transform → before_save → sink → mark seen →
//	enqueue children → dequeue
//
// Per-page failures (hook errors, sink errors, dedup backend errors) are
// logged and counted; the crawl moves on. A malformed URL or a cancelled
// context stops the run and leaves the spider in the Failed state.
package engine
