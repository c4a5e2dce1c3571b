// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, passwords)
//   - Redaction of passwords embedded in database DSNs and proxy URLs
//   - Verbose, default and quiet levels
//   - Text or JSON output
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//
//	logger.Info("sink opened",
//	    "dsn", "postgres://spider:secret@db/crawl", // password masked
//	    "url", "https://example.com",
//	)
//
//	slog.SetDefault(logger)
package log
