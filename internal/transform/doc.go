// Package transform reshapes a page's extracted columns into the
// header-first row matrix handed to a sink.
//
// Each field alias maps a persisted column name to a source. The source is
// resolved in this order:
//  1. a key of the page values selects that extracted column
//  2. the "pid" sentinel injects the parent page URL (first such alias only)
//  3. anything else is a literal replicated across every row
//
// Extracted columns come first in alias order, followed by the parent
// column and then the literal columns.
package transform
