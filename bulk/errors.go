package bulk

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNotADirectory is returned when the bulk root is not a directory.
	ErrNotADirectory = errors.New("not a directory")
)
