package transform

import "errors"

// ErrRowCountMismatch is returned when the selected columns of a list
// page have different lengths.
var ErrRowCountMismatch = errors.New("row count mismatch")
