//go:build unix

package socket

import (
	"context"
	"io"
	"net"
	"runtime"

	"dominicbreuker/gosock/pkg/neterr"

	"golang.org/x/sys/unix"
)

// Conn is a handle to one connected stream socket.
//
// Several Conn values may share a socket: Clone and Assign add references and
// Close drops one. The socket is closed when the last reference is dropped.
// Read and Write on handles sharing a socket never run concurrently; each
// call holds the socket for the duration of its system call.
//
// A Conn whose Kind is not neterr.Ok holds no socket and never will again.
type Conn struct {
	h handle
}

// Dial connects to host:port. It never returns nil; check Usable on the result.
func Dial(host string, port int) *Conn {
	return dial(context.Background(), realSys, host, port)
}

// DialContext is like Dial but bounds name resolution by ctx.
// The connect call itself blocks until the OS gives up.
func DialContext(ctx context.Context, host string, port int) *Conn {
	return dial(ctx, realSys, host, port)
}

func dial(ctx context.Context, sys *sysCalls, host string, port int) *Conn {
	if !validPort(port) {
		return invalidConn(neterr.Errorf("dial", neterr.InvalidArguments, "port %d not in [0, %d]", port, PortMax))
	}

	ip, err := resolve(ctx, host)
	if err != nil {
		return invalidConn(neterr.New("resolve", err))
	}
	domain, sa := toSockaddr(ip, port)

	fd, err := sys.socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return invalidConn(neterr.New("socket", err))
	}

	if err := sys.connect(fd, sa); err != nil {
		cause := neterr.New("connect", err)
		_ = sys.close(fd)
		return invalidConn(cause)
	}

	return newConn(sys, fd)
}

// Invalid returns an unusable Conn carrying the kind of err.
// A nil err yields neterr.BadHandle.
func Invalid(err error) *Conn {
	e, ok := err.(*neterr.Error)
	if !ok {
		e = neterr.New("socket", err)
	}
	if e.Kind == neterr.Ok {
		e = &neterr.Error{Op: e.Op, Kind: neterr.BadHandle, Err: e.Err}
	}
	return invalidConn(e)
}

func invalidConn(cause *neterr.Error) *Conn {
	c := &Conn{}
	c.h.cause = cause
	return c
}

// newConn takes ownership of an already connected descriptor.
func newConn(sys *sysCalls, fd int) *Conn {
	c := &Conn{}
	c.h.d = newDescriptor(sys, fd)
	runtime.SetFinalizer(c, (*Conn).Close)
	return c
}

// Read reads up to len(p) bytes, blocking until at least one byte arrives.
// It returns 0, io.EOF once the peer has closed its side; that is not an
// error of the handle. Any other failure is recorded on c and makes it unusable.
func (c *Conn) Read(p []byte) (int, error) {
	d, err := c.h.borrow()
	if err != nil {
		return 0, err
	}
	defer d.decRef()

	if len(p) == 0 {
		return 0, nil
	}

	d.mu.Lock()
	n, err := d.sys.read(d.sysfd, p)
	d.mu.Unlock()

	if err != nil {
		cause := neterr.New("read", err)
		c.h.fail(d, cause)
		return 0, cause
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes all of p unless an error occurs. Nothing else reads or writes
// the socket until it returns.
func (c *Conn) Write(p []byte) (int, error) {
	d, err := c.h.borrow()
	if err != nil {
		return 0, err
	}
	defer d.decRef()

	d.mu.Lock()
	written := 0
	for written < len(p) {
		n, err := d.sys.write(d.sysfd, p[written:])
		if err != nil {
			d.mu.Unlock()
			cause := neterr.New("write", err)
			c.h.fail(d, cause)
			return written, cause
		}
		if n == 0 {
			d.mu.Unlock()
			return written, io.ErrShortWrite
		}
		written += n
	}
	d.mu.Unlock()

	return written, nil
}

// CloseWrite shuts down the sending side; the peer reads EOF.
func (c *Conn) CloseWrite() error {
	return c.shutdown(unix.SHUT_WR)
}

// Shutdown shuts down both directions of the socket. Goroutines blocked in
// Read on any handle sharing it return. The references stay held until Close.
func (c *Conn) Shutdown() error {
	return c.shutdown(unix.SHUT_RDWR)
}

func (c *Conn) shutdown(how int) error {
	d, err := c.h.borrow()
	if err != nil {
		return err
	}
	defer d.decRef()

	if err := d.sys.shutdown(d.sysfd, how); err != nil {
		return neterr.New("shutdown", err)
	}
	return nil
}

// Usable reports whether the handle still refers to an open socket.
func (c *Conn) Usable() bool {
	return c.h.kind() == neterr.Ok
}

// Kind returns the error kind recorded on the handle.
func (c *Conn) Kind() neterr.Kind {
	return c.h.kind()
}

// Err returns the failure recorded on the handle, or nil while it is usable.
func (c *Conn) Err() error {
	return c.h.err()
}

// Fd returns the OS descriptor, or -1 if the handle is unusable.
func (c *Conn) Fd() int {
	return c.h.fd()
}

// Clone returns a new handle sharing c's socket.
func (c *Conn) Clone() *Conn {
	out := &Conn{}
	out.h.assign(&c.h)
	out.track()
	return out
}

// Assign makes c share src's socket, dropping c's previous reference.
func (c *Conn) Assign(src *Conn) {
	c.h.assign(&src.h)
	c.track()
}

// Close drops this handle's reference. It closes the socket if no other
// handle refers to it. Calling Close twice is harmless.
func (c *Conn) Close() error {
	runtime.SetFinalizer(c, nil)
	return c.h.release()
}

func (c *Conn) track() {
	runtime.SetFinalizer(c, nil)
	if c.Usable() {
		runtime.SetFinalizer(c, (*Conn).Close)
	}
}

// LocalAddr returns the local address, or nil if it cannot be determined.
func (c *Conn) LocalAddr() net.Addr {
	return c.addr(func(d *descriptor) (unix.Sockaddr, error) { return d.sys.getsockname(d.sysfd) })
}

// RemoteAddr returns the peer address, or nil if it cannot be determined.
func (c *Conn) RemoteAddr() net.Addr {
	return c.addr(func(d *descriptor) (unix.Sockaddr, error) { return d.sys.getpeername(d.sysfd) })
}

func (c *Conn) addr(get func(*descriptor) (unix.Sockaddr, error)) net.Addr {
	d, err := c.h.borrow()
	if err != nil {
		return nil
	}
	defer d.decRef()

	sa, err := get(d)
	if err != nil {
		return nil
	}
	if a := fromSockaddr(sa); a != nil {
		return a
	}
	return nil
}
