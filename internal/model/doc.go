// Package model defines the data structures shared by every stage of a crawl.
//
// This package contains the following main types:
//   - Template: One level of the crawl chain (fields to extract, how to save them)
//   - Chain: The immutable, ordered list of templates a spider walks
//   - Page: One unit of work, a URL bound to the template that governs it
//   - Matrix: The header-first, row-major table handed to a sink
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The engine, extractor, transformer, sinks and hooks all need
// these types, so centralizing them prevents import cycles.
//
// Templates are validated once at construction and never mutated afterwards.
// Pages share a template by pointer but only ever write to their own state.
package model
