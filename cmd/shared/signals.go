package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dominicbreuker/gosock/pkg/log"
)

// gracePeriod is how long the process may take to shut down after the first
// signal before it exits anyway.
const gracePeriod = 5 * time.Second

// SetupSignalHandling calls cancel on the first SIGINT, SIGTERM or SIGHUP.
// A second signal, or the grace period running out, exits the process.
// The returned function stops signal delivery once shutdown has finished.
func SetupSignalHandling(cancel context.CancelFunc, logger *log.Logger) (stop func()) {
	sigCh := make(chan os.Signal, 2)
	done := make(chan struct{})

	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		var s os.Signal
		select {
		case s = <-sigCh:
		case <-done:
			return
		}

		logger.InfoMsg("Received %s, shutting down\n", s)
		cancel()

		select {
		case <-sigCh:
			// map to the POSIX exit code 128+sig
			if ss, ok := s.(syscall.Signal); ok {
				os.Exit(128 + int(ss))
			}
			os.Exit(1)
		case <-time.After(gracePeriod):
			logger.ErrorMsg("Shutdown took longer than %v\n", gracePeriod)
			os.Exit(1)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
