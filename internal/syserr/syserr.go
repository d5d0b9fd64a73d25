// Package syserr describes failures reported by native windowing, graphics and driver calls.
package syserr

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrUnsupportedPlatform is returned by every native operation on non-Windows builds.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// OSError is a failed native call together with the detail the OS gave for it.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OSError) Unwrap() error { return e.Err }

// New wraps the last-error value of a failed call. A zero errno means the call
// failed without setting one, so only the operation name is kept.
func New(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == 0 {
		err = nil
	}
	return &OSError{Op: op, Err: err}
}

// Check returns nil when ok is true and an *OSError for op otherwise.
func Check(op string, ok bool, err error) error {
	if ok {
		return nil
	}
	return New(op, err)
}

// IsOSError reports whether err is or wraps an *OSError.
func IsOSError(err error) bool {
	var osErr *OSError
	return errors.As(err, &osErr)
}
