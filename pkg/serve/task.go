//go:build unix

package serve

import (
	"sync"
	"sync/atomic"

	"dominicbreuker/gosock/pkg/neterr"
)

// Task is the handle to a running dispatch loop. It resolves exactly once,
// to the kind that ended the loop: the bind failure, the fatal accept
// failure, or neterr.Ok after Stop.
type Task struct {
	done      chan struct{}
	ready     chan struct{}
	readyOnce sync.Once
	stopCh    chan struct{}
	stopOnce  sync.Once

	kind neterr.Kind
	err  error
	port atomic.Int32

	mu       sync.Mutex
	ln       listener
	stopping bool
}

func newTask() *Task {
	return &Task{
		done:   make(chan struct{}),
		ready:  make(chan struct{}),
		stopCh: make(chan struct{}),
	}
}

// Wait blocks until the loop has ended and returns the kind that ended it.
func (t *Task) Wait() neterr.Kind {
	<-t.done
	return t.kind
}

// Err blocks like Wait and returns the failure that ended the loop, or nil
// if it was stopped.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Done is closed once the loop has ended.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome without blocking. ok is false while the loop runs.
func (t *Task) Result() (kind neterr.Kind, ok bool) {
	select {
	case <-t.done:
		return t.kind, true
	default:
		return neterr.Ok, false
	}
}

// Ready is closed once the listening socket is bound, or binding failed.
func (t *Task) Ready() <-chan struct{} {
	return t.ready
}

// Port returns the bound port, or 0 before Ready or after a bind failure.
func (t *Task) Port() int {
	return int(t.port.Load())
}

// Stop ends the loop. Handlers already running are not interrupted.
// Stop returns immediately; use Wait to block until the loop is gone.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)

		t.mu.Lock()
		t.stopping = true
		ln := t.ln
		t.mu.Unlock()

		// The loop may close ln before wake reaches it. Waking a closed
		// listener fails harmlessly.
		if ln != nil {
			wake(ln)
		}
	})
}

// attach publishes the bound listener. It reports false if Stop came first.
func (t *Task) attach(ln listener) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ln = ln
	return !t.stopping
}

// detach hides the listener from Stop before the loop closes it.
func (t *Task) detach() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ln = nil
}

func (t *Task) isStopping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopping
}

func (t *Task) markReady(port int) {
	t.readyOnce.Do(func() {
		t.port.Store(int32(port))
		close(t.ready)
	})
}

func (t *Task) resolve(kind neterr.Kind, err error) {
	t.markReady(0)
	t.kind = kind
	t.err = err
	close(t.done)
}
