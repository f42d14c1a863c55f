// Package semaphore bounds how many connection handlers run at once.
// The dispatch loop itself spawns handlers without limit; callers that want a
// bound wrap their handler with a ConnSemaphore.
package semaphore

import (
	"context"
	"fmt"
	"time"
)

// ConnSemaphore hands out a fixed number of handler slots.
// Slots are tokens in a buffered channel.
type ConnSemaphore struct {
	slots   chan struct{}
	timeout time.Duration
}

// New creates a semaphore with n slots. Acquire waits at most timeout for a
// free slot; a timeout of zero or less waits until the context ends.
func New(n int, timeout time.Duration) *ConnSemaphore {
	if n < 1 {
		n = 1
	}
	slots := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		slots <- struct{}{}
	}
	return &ConnSemaphore{slots: slots, timeout: timeout}
}

// Acquire takes a slot. It fails when the timeout expires or ctx ends first.
// A nil semaphore always succeeds.
func (s *ConnSemaphore) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}

	waitCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	select {
	case <-s.slots:
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("no free handler slot after %v", s.timeout)
	}
}

// Release returns a slot. A nil semaphore ignores the call.
func (s *ConnSemaphore) Release() {
	if s == nil {
		return
	}
	s.slots <- struct{}{}
}
