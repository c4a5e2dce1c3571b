// Package extract evaluates a template's field expressions against fetched
// HTML and produces column-oriented values.
//
// Selectors that start with "/" are XPath 1.0 expressions evaluated with
// antchfx/xpath over an htmlquery DOM. Every other selector is a literal
// constant that is replicated across the extracted rows.
//
// List templates keep each matched node as a separate value. Detail
// templates trim and concatenate all matches into exactly one value, so a
// detail page always yields one row, even when nothing matched.
//
// The row count of a page is the length of the first path column in
// declaration order. Literal columns get that many copies. A template
// without any path expression yields one row for detail templates and zero
// rows for list templates.
package extract
