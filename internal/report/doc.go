// Package report summarizes a batch of spider runs.
//
// This package contains writers for different output formats:
//   - TextWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown tables for sharing run results
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
