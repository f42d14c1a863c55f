//go:build unix

// Package serve provides the serve command, which runs an echo server on a
// blocking listening socket until it is interrupted.
package serve

import (
	"context"
	"fmt"
	"io"
	"time"

	"dominicbreuker/gosock/cmd/shared"
	"dominicbreuker/gosock/pkg/config"
	"dominicbreuker/gosock/pkg/echo"
	"dominicbreuker/gosock/pkg/format"
	"dominicbreuker/gosock/pkg/log"
	"dominicbreuker/gosock/pkg/metrics"
	"dominicbreuker/gosock/pkg/neterr"
	"dominicbreuker/gosock/pkg/semaphore"
	"dominicbreuker/gosock/pkg/serve"
	"dominicbreuker/gosock/pkg/socket"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Echo back everything clients send",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := &config.Server{
				Port:        int(cmd.Int(shared.PortFlag)),
				Backlog:     int(cmd.Int(shared.BacklogFlag)),
				MaxConns:    int(cmd.Int(shared.MaxConnsFlag)),
				SlotTimeout: time.Duration(cmd.Int(shared.SlotTimeoutFlag)) * time.Millisecond,
				LogFile:     cmd.String(shared.LogFileFlag),
				MetricsAddr: cmd.String(shared.MetricsFlag),
				Verbose:     cmd.Bool(shared.VerboseFlag),
			}

			if errors := config.Validate(cfg); len(errors) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errors {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			logger := log.NewLogger(cfg.Verbose)

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			stop := shared.SetupSignalHandling(cancel, logger)
			defer stop()

			return run(ctx, cfg, logger)
		},
		Flags: getFlags(),
	}
}

func run(ctx context.Context, cfg *config.Server, logger *log.Logger) error {
	opts := []serve.Option{serve.WithLogger(logger)}

	if cfg.MetricsAddr != "" {
		collector := metrics.New()
		opts = append(opts, serve.WithObserver(collector))

		go func() {
			if err := collector.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.ErrorMsg("Metrics endpoint: %s\n", err)
			}
		}()
	}

	task := serve.ListenAndServe(ctx, cfg.Port, cfg.Backlog, newHandler(cfg, logger), opts...)
	if kind := task.Wait(); kind != neterr.Ok {
		return fmt.Errorf("serving on port %d: %w", cfg.Port, task.Err())
	}

	return nil
}

func newHandler(cfg *config.Server, logger *log.Logger) serve.Handler {
	h := func(c *socket.Conn) {
		var rw io.ReadWriter = c

		if cfg.LogFile != "" {
			tr, err := log.NewTranscript(c, cfg.LogFile)
			if err != nil {
				logger.ErrorMsg("Opening transcript: %s\n", err)
				return
			}
			defer tr.Close()
			rw = tr
		}

		if err := echo.Serve(rw, logger); err != nil {
			logger.ErrorMsg("Echo to %s: %s\n", format.Peer(c.RemoteAddr()), err)
		}
	}

	if cfg.MaxConns > 0 {
		return serve.Limit(h, semaphore.New(cfg.MaxConns, cfg.SlotTimeout), logger)
	}
	return h
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetServeFlags()...)

	return flags
}
