//go:build unix

// Package neterr maps operating system socket error codes to a small, closed
// set of error kinds shared by every handle in gosock.
package neterr

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Kind is the semantic classification of a socket failure.
// Ok means the handle carrying it is usable; any other value means it is not.
type Kind int

// Error kinds. The set is closed.
const (
	Ok Kind = iota
	Generic
	BadPort
	AddressInUse
	AlreadyConnected
	ConnectionRefused
	BadHandle
	Interrupted
	NetworkUnreachable
	TimedOut
	OutOfMemory
	OutOfDescriptors
	InvalidArguments
	ConnectionTerminated
)

var kindNames = [...]string{
	Ok:                   "ok",
	Generic:              "generic",
	BadPort:              "bad_port",
	AddressInUse:         "address_in_use",
	AlreadyConnected:     "already_connected",
	ConnectionRefused:    "connection_refused",
	BadHandle:            "bad_handle",
	Interrupted:          "interrupted",
	NetworkUnreachable:   "network_unreachable",
	TimedOut:             "timed_out",
	OutOfMemory:          "out_of_memory",
	OutOfDescriptors:     "out_of_descriptors",
	InvalidArguments:     "invalid_arguments",
	ConnectionTerminated: "connection_terminated",
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error makes a Kind usable as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// FromErrno maps a platform error code to its kind.
// Codes without an entry map to Generic.
func FromErrno(errno unix.Errno) Kind {
	switch errno {
	case 0:
		return Ok
	case unix.EACCES, unix.EPERM, unix.EAFNOSUPPORT, unix.EPROTONOSUPPORT,
		unix.EFAULT, unix.ENOTSUP, unix.ENAMETOOLONG, unix.EINVAL:
		return InvalidArguments
	case unix.EMFILE, unix.ENFILE:
		return OutOfDescriptors
	case unix.ENOBUFS, unix.ENOMEM:
		return OutOfMemory
	case unix.EADDRINUSE, unix.EAGAIN:
		return AddressInUse
	case unix.EBADF, unix.ENOTSOCK:
		return BadHandle
	case unix.EINTR:
		return Interrupted
	case unix.EISCONN:
		return AlreadyConnected
	case unix.ECONNREFUSED:
		return ConnectionRefused
	case unix.ENETUNREACH, unix.EHOSTUNREACH:
		return NetworkUnreachable
	case unix.ETIMEDOUT:
		return TimedOut
	case unix.EPIPE, unix.ECONNRESET, unix.ECONNABORTED:
		return ConnectionTerminated
	default:
		return Generic
	}
}

// Classify returns the kind of an arbitrary error value.
// It must be given the error returned by the failing call itself.
func Classify(err error) Kind {
	if err == nil {
		return Ok
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return FromErrno(errno)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return InvalidArguments
	}

	return Generic
}

// FatalToListener reports whether an accept failure means the listening
// descriptor itself can no longer be used. Only the errno decides: EPERM and
// EINVAL share a kind, but a firewall rejecting one connection leaves the
// listener intact.
func FatalToListener(err error) bool {
	return errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENOTSOCK) || errors.Is(err, unix.EINVAL)
}

// Temporary reports whether a failure of kind k may succeed when retried.
func Temporary(k Kind) bool {
	switch k {
	case Interrupted, AddressInUse, OutOfDescriptors, OutOfMemory, ConnectionTerminated, TimedOut:
		return true
	default:
		return false
	}
}
