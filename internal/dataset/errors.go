package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when a column name does not exist in
	// the dataset.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrTypeMismatch is returned when a column is read with the wrong
	// typed accessor.
	ErrTypeMismatch = errors.New("column type mismatch")
	// ErrDuplicateKey is returned when the key column contains a repeated
	// value.
	ErrDuplicateKey = errors.New("duplicate row key")
	// ErrRaggedColumns is returned when columns have differing lengths.
	ErrRaggedColumns = errors.New("columns have differing lengths")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	err     error
	context string
}

func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with
// errors.Is/As.
func (e *Error) Unwrap() error {
	return e.err
}

func newError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
