package db

import "errors"

// ErrIndexNotFound reports a search against a missing index.
var ErrIndexNotFound = errors.New("db: index not found")

// OpSearch names the search command for error context.
const OpSearch = "FT.SEARCH"

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
