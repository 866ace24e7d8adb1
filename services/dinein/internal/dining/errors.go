package dining

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrRejected = errors.New("request rejected")
	ErrConflict = errors.New("concurrent modification")

	// ErrDuplicateKey is wrapped by stores when a unique constraint fails.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Error carries a human readable reason and classifies it by one of the
// sentinel kinds above.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Reason: fmt.Sprintf(format, args...)}
}

func rejected(format string, args ...interface{}) error {
	return &Error{Kind: ErrRejected, Reason: fmt.Sprintf(format, args...)}
}

// Conflict reports a stale write detected by a store.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Reason: fmt.Sprintf(format, args...)}
}
