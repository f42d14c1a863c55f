//go:build unix

package socket

import (
	"runtime"

	"dominicbreuker/gosock/pkg/neterr"

	"golang.org/x/sys/unix"
)

// DefaultBacklog is the queue length used when the caller has no preference.
const DefaultBacklog = 1

// Listener is a handle to one listening socket bound to the IPv4 wildcard
// address. It shares the ownership rules of Conn.
type Listener struct {
	h handle
}

// Bind opens a listening socket on port with the given accept backlog.
// Port 0 picks an ephemeral port; Port reports the one chosen.
// Bind never returns nil; check Usable on the result.
func Bind(port, backlog int) *Listener {
	return bind(realSys, port, backlog)
}

func bind(sys *sysCalls, port, backlog int) *Listener {
	if !validPort(port) {
		return invalidListener(neterr.Errorf("bind", neterr.InvalidArguments, "port %d not in [0, %d]", port, PortMax))
	}
	if backlog < 1 {
		return invalidListener(neterr.Errorf("listen", neterr.InvalidArguments, "backlog %d must be at least 1", backlog))
	}

	fd, err := sys.socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return invalidListener(neterr.New("socket", err))
	}

	abort := func(op string, err error) *Listener {
		cause := neterr.New(op, err)
		_ = sys.close(fd)
		return invalidListener(cause)
	}

	// lets a restarted server bind while old connections sit in TIME_WAIT
	if err := sys.setsockopt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return abort("setsockopt", err)
	}
	if err := sys.bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		return abort("bind", err)
	}
	if err := sys.listen(fd, backlog); err != nil {
		return abort("listen", err)
	}
	sa, err := sys.getsockname(fd)
	if err != nil {
		return abort("getsockname", err)
	}

	l := &Listener{}
	l.h.d = newDescriptor(sys, fd)
	if a := fromSockaddr(sa); a != nil {
		l.h.d.port = a.Port
	}
	runtime.SetFinalizer(l, (*Listener).Close)
	return l
}

func invalidListener(cause *neterr.Error) *Listener {
	l := &Listener{}
	l.h.cause = cause
	return l
}

// Accept waits for the next connection. Concurrent callers are served one at
// a time. On failure the returned Conn is unusable and carries the kind; if the
// failure also invalidates the listening socket, l records it as well.
func (l *Listener) Accept() *Conn {
	d, err := l.h.borrow()
	if err != nil {
		return Invalid(err)
	}
	defer d.decRef()

	d.mu.Lock()
	nfd, _, err := d.sys.accept(d.sysfd)
	d.mu.Unlock()

	if err != nil {
		cause := neterr.New("accept", err)
		if neterr.FatalToListener(cause.Err) {
			l.h.fail(d, cause)
		}
		return invalidConn(cause)
	}

	return newConn(d.sys, nfd)
}

// Shutdown stops the socket from accepting. On Linux a goroutine blocked in
// Accept returns with neterr.InvalidArguments. References stay held until Close.
func (l *Listener) Shutdown() error {
	d, err := l.h.borrow()
	if err != nil {
		return err
	}
	defer d.decRef()

	if err := d.sys.shutdown(d.sysfd, unix.SHUT_RDWR); err != nil {
		return neterr.New("shutdown", err)
	}
	return nil
}

// Port returns the bound port, or 0 if the handle is unusable.
func (l *Listener) Port() int {
	l.h.mu.Lock()
	defer l.h.mu.Unlock()

	if l.h.d == nil {
		return 0
	}
	return l.h.d.port
}

// Usable reports whether the handle still refers to an open socket.
func (l *Listener) Usable() bool {
	return l.h.kind() == neterr.Ok
}

// Kind returns the error kind recorded on the handle.
func (l *Listener) Kind() neterr.Kind {
	return l.h.kind()
}

// Err returns the failure recorded on the handle, or nil while it is usable.
func (l *Listener) Err() error {
	return l.h.err()
}

// Fd returns the OS descriptor, or -1 if the handle is unusable.
func (l *Listener) Fd() int {
	return l.h.fd()
}

// Clone returns a new handle sharing l's socket.
func (l *Listener) Clone() *Listener {
	out := &Listener{}
	out.h.assign(&l.h)
	out.track()
	return out
}

// Assign makes l share src's socket, dropping l's previous reference.
func (l *Listener) Assign(src *Listener) {
	l.h.assign(&src.h)
	l.track()
}

// Close drops this handle's reference and closes the socket on the last one.
func (l *Listener) Close() error {
	runtime.SetFinalizer(l, nil)
	return l.h.release()
}

func (l *Listener) track() {
	runtime.SetFinalizer(l, nil)
	if l.Usable() {
		runtime.SetFinalizer(l, (*Listener).Close)
	}
}
