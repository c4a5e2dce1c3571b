package engine

import "errors"

var (
	// ErrMalformedURL is returned when a seed or derived URL is not a valid
	// http(s) or ftp(s) address. It is fatal for the run.
	ErrMalformedURL = errors.New("malformed URL")

	// ErrAlreadyRun is returned when Run is called more than once.
	ErrAlreadyRun = errors.New("spider has already been run")

	// ErrNilChain is returned by New without a template chain.
	ErrNilChain = errors.New("template chain is required")

	// ErrHookPanic wraps a value recovered from a panicking hook.
	ErrHookPanic = errors.New("hook panicked")
)
