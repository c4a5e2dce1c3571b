package sink

import "errors"

var (
	// ErrEmptyMatrix is returned for a matrix without a header row.
	ErrEmptyMatrix = errors.New("matrix has no header row")

	// ErrMissingColumn is returned when a sink needs a column the matrix lacks.
	ErrMissingColumn = errors.New("required column is missing")

	// ErrUnexpectedStatus is returned when a remote API answers with a failure status.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
