//go:build unix

// Package dial provides the dial command, which connects to a TCP server and
// pipes the terminal through the connection.
package dial

import (
	"context"
	"fmt"
	"io"
	"os"

	"dominicbreuker/gosock/cmd/shared"
	"dominicbreuker/gosock/pkg/config"
	"dominicbreuker/gosock/pkg/format"
	"dominicbreuker/gosock/pkg/log"
	"dominicbreuker/gosock/pkg/pipeio"
	"dominicbreuker/gosock/pkg/socket"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "dial",
		Usage:     "Connect to a server and pipe stdin and stdout through the connection",
		ArgsUsage: shared.GetDialArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			host, port, err := shared.ParseTarget(cmd.Args().Slice())
			if err != nil {
				return err
			}

			cfg := &config.Client{
				Host:    host,
				Port:    port,
				Verbose: cmd.Bool(shared.VerboseFlag),
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

			if term.IsTerminal(int(os.Stdin.Fd())) {
				logger.InfoMsg("Reading from terminal, the reply is printed after Ctrl-D\n")
			}

			stdio := pipeio.NewStdio(nil, nil)
			if !stdio.Cancellable() {
				logger.VerboseMsg("stdin reads cannot be interrupted on this platform")
			}

			return run(ctx, cfg, stdio, logger)
		},
		Flags: getFlags(),
	}
}

func run(ctx context.Context, cfg *config.Client, local io.ReadWriteCloser, logger *log.Logger) error {
	addr := format.Addr(cfg.Host, cfg.Port)

	conn := socket.DialContext(ctx, cfg.Host, cfg.Port)
	defer conn.Close()
	if !conn.Usable() {
		return fmt.Errorf("dialing %s: %w", addr, conn.Err())
	}
	logger.InfoMsg("Connected to %s\n", format.Peer(conn.RemoteAddr()))

	// cancelling stdin ends the sending phase, shutting the socket down ends
	// the receiving phase
	piped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = local.Close()
			_ = conn.Shutdown()
		case <-piped:
		}
	}()

	sent, received, err := pipeio.Pipe(conn, local)
	close(piped)

	logger.VerboseMsg("Sent %d bytes, received %d bytes", sent, received)
	logger.InfoMsg("Connection to %s closed\n", addr)

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("connection to %s: %w", addr, err)
	}
	return nil
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)

	return flags
}
