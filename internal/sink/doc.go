// Package sink persists row matrices produced by the crawl engine.
//
// A matrix is row-major with the column header first. The destination tag
// of the template selects the save target where the backend supports it:
// the file path for File, the table for SQL, the topic for Kafka. An empty
// tag falls back to the sink's configured default.
//
// Backends:
//   - Console writes a Markdown table per matrix
//   - File appends delimited rows to a text file
//   - SQL inserts rows into SQLite or PostgreSQL in one transaction
//   - Kafka publishes one JSON message per row
//   - WordPress publishes one post per row through the REST API
//   - Multi fans a matrix out to several sinks
//
// Every sink is safe for concurrent use, so spiders of one batch can share
// them. Errors are returned, never swallowed; a partial write is possible
// for backends without transactions.
package sink
