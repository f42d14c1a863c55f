// Package pipeio moves bytes between a connection and the local terminal.
package pipeio

import (
	"errors"
	"fmt"
	"io"

	"github.com/muesli/cancelreader"
)

// HalfCloser is a connection whose sending side can be shut down while it
// keeps receiving.
type HalfCloser interface {
	io.ReadWriter
	CloseWrite() error
}

// Pipe sends everything read from local to conn, shuts down conn's sending
// side and then copies what the peer sends back to local until it closes.
//
// The two directions run one after the other: reads and writes on a socket
// handle exclude each other, so a reader blocked on the peer would stall the
// sender. A cancelled local read ends the sending phase like end of input.
func Pipe(conn HalfCloser, local io.ReadWriter) (sent, received int64, err error) {
	sent, err = io.Copy(conn, local)
	if err != nil && !errors.Is(err, cancelreader.ErrCanceled) {
		return sent, 0, fmt.Errorf("io.Copy(conn, local): %w", err)
	}

	if err := conn.CloseWrite(); err != nil {
		return sent, 0, fmt.Errorf("CloseWrite(): %w", err)
	}

	received, err = io.Copy(local, conn)
	if err != nil {
		return sent, received, fmt.Errorf("io.Copy(local, conn): %w", err)
	}

	return sent, received, nil
}
