package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPredicate is returned when a predicate references an
	// unknown column or carries a malformed range. The offending update
	// is rejected and prior state is retained.
	ErrInvalidPredicate = errors.New("invalid predicate")
	// ErrUnknownSource is returned when clearing a source that holds no
	// contribution.
	ErrUnknownSource = errors.New("unknown source")
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
