//go:build unix

// Package serve runs the dispatch loop: it accepts connections on a listening
// socket and runs a handler for each one in its own goroutine.
//
// Handlers are not supervised. The loop never waits for them, never bounds
// how many run at once and never interrupts them, not even on Stop. Callers
// that need a bound wrap their handler with Limit; callers that need to cancel
// handlers pass their own context into the handler closure.
package serve

import (
	"context"
	"runtime"
	"time"

	"dominicbreuker/gosock/pkg/format"
	"dominicbreuker/gosock/pkg/neterr"
	"dominicbreuker/gosock/pkg/socket"

	"github.com/google/uuid"
)

// Handler serves one connection. The loop closes its handle when the handler
// returns; a handler that keeps using the connection afterwards must Clone it.
type Handler func(c *socket.Conn)

// listener is what the loop needs from a listening handle.
type listener interface {
	Accept() *socket.Conn
	Usable() bool
	Kind() neterr.Kind
	Err() error
	Port() int
	Shutdown() error
	Close() error
}

type dependencies struct {
	bind func(port, backlog int) listener
}

var realDeps = &dependencies{
	bind: func(port, backlog int) listener {
		return socket.Bind(port, backlog)
	},
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// ListenAndServe binds port with the given backlog and serves every accepted
// connection with h. It returns at once; the returned Task resolves when the
// loop ends. That happens when binding fails, when accept fails in a way that
// leaves the listening socket unusable, or when ctx is cancelled or Stop is
// called. Other accept failures are retried after a short backoff.
func ListenAndServe(ctx context.Context, port, backlog int, h Handler, opts ...Option) *Task {
	return listenAndServe(ctx, port, backlog, h, realDeps, opts...)
}

func listenAndServe(ctx context.Context, port, backlog int, h Handler, deps *dependencies, opts ...Option) *Task {
	o := newOptions(opts)
	t := newTask()

	go t.run(port, backlog, h, deps, o)

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				t.Stop()
			case <-t.done:
			}
		}()
	}

	return t
}

func (t *Task) run(port, backlog int, h Handler, deps *dependencies, o *options) {
	ln := deps.bind(port, backlog)
	if !ln.Usable() {
		o.logger.ErrorMsg("Binding port %d: %s\n", port, ln.Err())
		t.resolve(ln.Kind(), ln.Err())
		return
	}

	finish := func(kind neterr.Kind, err error) {
		t.detach()
		_ = ln.Close()
		t.resolve(kind, err)
	}

	t.markReady(ln.Port())
	if !t.attach(ln) {
		finish(neterr.Ok, nil)
		return
	}
	o.logger.InfoMsg("Listening on port %d\n", ln.Port())

	var delay time.Duration
	for {
		c := ln.Accept()

		if t.isStopping() {
			_ = c.Close()
			o.logger.VerboseMsg("Listener on port %d stopped", t.Port())
			finish(neterr.Ok, nil)
			return
		}

		if !c.Usable() {
			o.observer.AcceptFailed(c.Kind())

			if !ln.Usable() {
				o.logger.ErrorMsg("Accept(): %s\n", ln.Err())
				finish(ln.Kind(), ln.Err())
				return
			}

			// transient resource trouble is routine; anything else is worth seeing
			delay = nextDelay(delay)
			if neterr.Temporary(c.Kind()) {
				o.logger.VerboseMsg("Accept(): %s, retrying in %v", c.Err(), delay)
			} else {
				o.logger.ErrorMsg("Accept(): %s, retrying in %v\n", c.Err(), delay)
			}
			select {
			case <-time.After(delay):
			case <-t.stopCh:
			}
			continue
		}
		delay = 0

		o.observer.Accepted()
		go serveConn(c, h, o)
	}
}

func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	d *= 2
	if d > maxAcceptDelay {
		d = maxAcceptDelay
	}
	return d
}

func serveConn(c *socket.Conn, h Handler, o *options) {
	id := uuid.New()
	peer := format.Peer(c.RemoteAddr())
	start := time.Now()

	o.observer.HandlerStarted()
	o.logger.InfoMsg("New connection %s from %s\n", id, peer)

	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorMsg("Connection %s: handler panicked: %v\n", id, r)
		}
		if err := c.Close(); err != nil {
			o.logger.VerboseMsg("Connection %s: %s", id, err)
		}
		o.observer.HandlerDone(time.Since(start))
		o.logger.InfoMsg("Connection %s from %s closed\n", id, peer)
	}()

	h(c)
}

// wake unblocks a loop sitting in Accept. Linux fails the pending accept when
// the socket is shut down; elsewhere a throwaway connection does it.
func wake(ln listener) {
	if err := ln.Shutdown(); err == nil && runtime.GOOS == "linux" {
		return
	}

	c := socket.Dial("127.0.0.1", ln.Port())
	_ = c.Close()
}
