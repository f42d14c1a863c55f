//go:build unix

package serve

import (
	"context"

	"dominicbreuker/gosock/pkg/format"
	"dominicbreuker/gosock/pkg/log"
	"dominicbreuker/gosock/pkg/semaphore"
	"dominicbreuker/gosock/pkg/socket"
)

// Limit wraps h so that no more handlers run at once than sem has slots.
// A connection that gets no slot before the semaphore's timeout is dropped.
func Limit(h Handler, sem *semaphore.ConnSemaphore, logger *log.Logger) Handler {
	return func(c *socket.Conn) {
		if err := sem.Acquire(context.Background()); err != nil {
			logger.ErrorMsg("Dropping connection from %s: %s\n", format.Peer(c.RemoteAddr()), err)
			return
		}
		defer sem.Release()

		h(c)
	}
}
