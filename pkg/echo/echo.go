//go:build unix

// Package echo is a connection handler that sends every byte back.
package echo

import (
	"errors"
	"fmt"
	"io"

	"dominicbreuker/gosock/pkg/format"
	"dominicbreuker/gosock/pkg/log"
	"dominicbreuker/gosock/pkg/serve"
	"dominicbreuker/gosock/pkg/socket"
)

const chunkSize = 4096

// Serve writes back everything read from rw until the peer stops sending.
// A clean end of input returns nil.
func Serve(rw io.ReadWriter, logger *log.Logger) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := rw.Read(buf)
		if n > 0 {
			logger.VerboseMsg("Got: %s", buf[:n])
			if _, werr := rw.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
	}
}

// Handler returns a serve.Handler running Serve on each connection.
func Handler(logger *log.Logger) serve.Handler {
	return func(c *socket.Conn) {
		if err := Serve(c, logger); err != nil {
			logger.ErrorMsg("Echo to %s: %s\n", format.Peer(c.RemoteAddr()), err)
		}
	}
}
