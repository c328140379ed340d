package credstore

import (
	"errors"
	"fmt"
)

// ErrIO matches every error returned by a Store when its medium cannot be
// located, read or written.
var ErrIO = errors.New("credential store I/O error")

// Error describes a failed operation on the credential medium.
type Error struct {
	Op       string // "read", "write", "locate"
	Location string
	Err      error
}

func (e *Error) Error() string {
	if e.Location == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("Failed to %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrIO
}
