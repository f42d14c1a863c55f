//go:build unix

package socket

import (
	"errors"
	"sync"
	"sync/atomic"

	"dominicbreuker/gosock/pkg/neterr"
)

// ErrClosed is the cause recorded on a handle after Close.
var ErrClosed = errors.New("use of closed handle")

// descriptor is one OS socket shared by every handle that references it.
// refs counts handles plus in-flight system calls; the socket is closed when
// it drops to zero, and never again.
type descriptor struct {
	sysfd int
	port  int // bound port, listeners only
	sys   *sysCalls
	refs  atomic.Int32

	// mu is held for the duration of each read, write or accept.
	mu sync.Mutex
}

func newDescriptor(sys *sysCalls, fd int) *descriptor {
	d := &descriptor{sysfd: fd, sys: sys}
	d.refs.Store(1)
	return d
}

// incRef adds a reference unless the count already reached zero.
func (d *descriptor) incRef() bool {
	for {
		n := d.refs.Load()
		if n <= 0 {
			return false
		}
		if d.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// decRef drops a reference and closes the socket on the last one.
func (d *descriptor) decRef() error {
	n := d.refs.Add(-1)
	switch {
	case n > 0:
		return nil
	case n == 0:
		if err := d.sys.close(d.sysfd); err != nil {
			return neterr.New("close", err)
		}
		return nil
	default:
		panic("socket: descriptor released more often than referenced")
	}
}

// handle is the per-instance state shared by Conn and Listener.
// Exactly one of d and cause is non-nil once initialized.
type handle struct {
	mu    sync.Mutex
	d     *descriptor
	cause *neterr.Error
}

func (h *handle) kind() neterr.Kind {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.d != nil:
		return neterr.Ok
	case h.cause != nil:
		return h.cause.Kind
	default:
		return neterr.BadHandle
	}
}

func (h *handle) err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errLocked()
}

func (h *handle) errLocked() error {
	switch {
	case h.d != nil:
		return nil
	case h.cause != nil:
		return h.cause
	default:
		return &neterr.Error{Op: "use", Kind: neterr.BadHandle, Err: ErrClosed}
	}
}

func (h *handle) fd() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.d == nil {
		return -1
	}
	return h.d.sysfd
}

// borrow takes a reference for one system call. The caller must decRef it.
func (h *handle) borrow() (*descriptor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.d == nil {
		return nil, h.errLocked()
	}
	if !h.d.incRef() {
		return nil, &neterr.Error{Op: "use", Kind: neterr.BadHandle, Err: ErrClosed}
	}
	return h.d, nil
}

// fail records cause and gives up the handle's reference to d. It does
// nothing if the handle moved on to another descriptor in the meantime.
func (h *handle) fail(d *descriptor, cause *neterr.Error) {
	h.mu.Lock()
	if h.d != d {
		h.mu.Unlock()
		return
	}
	h.d = nil
	h.cause = cause
	h.mu.Unlock()

	_ = d.decRef()
}

// release gives up the handle's reference. Repeated calls are no-ops.
func (h *handle) release() error {
	h.mu.Lock()
	d := h.d
	if d != nil {
		h.d = nil
		h.cause = &neterr.Error{Op: "use", Kind: neterr.BadHandle, Err: ErrClosed}
	}
	h.mu.Unlock()

	if d == nil {
		return nil
	}
	return d.decRef()
}

// assign makes h refer to whatever src refers to. The new reference is taken
// before the old one is dropped, so h.assign(h) is safe.
func (h *handle) assign(src *handle) {
	src.mu.Lock()
	d, cause := src.d, src.cause
	if d != nil && !d.incRef() {
		d, cause = nil, &neterr.Error{Op: "use", Kind: neterr.BadHandle, Err: ErrClosed}
	}
	src.mu.Unlock()

	h.mu.Lock()
	old := h.d
	h.d, h.cause = d, cause
	h.mu.Unlock()

	if old != nil {
		_ = old.decRef()
	}
}
