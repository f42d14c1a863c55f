//go:build unix

package neterr

import (
	"fmt"
)

// Error is a failed socket operation.
type Error struct {
	Op   string // operation that failed, e.g. "connect"
	Kind Kind
	Err  error // underlying cause, usually a unix.Errno; may be nil
}

// New classifies err and wraps it as an *Error for operation op.
func New(op string, err error) *Error {
	return &Error{Op: op, Kind: Classify(err), Err: err}
}

// Errorf builds an *Error of kind k without an underlying syscall error.
func Errorf(op string, k Kind, format string, a ...interface{}) *Error {
	return &Error{Op: op, Kind: k, Err: fmt.Errorf(format, a...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a Kind target, so errors.Is(err, neterr.TimedOut) works.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
