// Package shared provides common CLI flag definitions and utility functions
// used across gosock's command-line interface.
package shared

import (
	"strings"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// GetCommonFlags returns the CLI flags used by every command.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
	}
}

const categoryServe = "serve"

// PortFlag is the name of the flag to specify the port to listen on.
const PortFlag = "port"

// BacklogFlag is the name of the flag to specify the listen backlog.
const BacklogFlag = "backlog"

// MaxConnsFlag is the name of the flag to bound concurrent handlers.
const MaxConnsFlag = "max-conns"

// SlotTimeoutFlag is the name of the flag to specify how long, in
// milliseconds, a connection waits for a free handler slot.
const SlotTimeoutFlag = "slot-timeout"

// LogFileFlag is the name of the flag to specify a transcript file.
const LogFileFlag = "log"

// MetricsFlag is the name of the flag to specify the metrics address.
const MetricsFlag = "metrics"

// DefaultPort is the port the echo server listens on unless told otherwise.
const DefaultPort = 8080

// GetServeFlags returns the CLI flags specific to the serve command.
func GetServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     PortFlag,
			Aliases:  []string{"p"},
			Usage:    "Port to listen on",
			Category: categoryServe,
			Value:    DefaultPort,
			Required: false,
		},
		&cli.IntFlag{
			Name:     BacklogFlag,
			Aliases:  []string{"b"},
			Usage:    "Number of pending connections the kernel queues",
			Category: categoryServe,
			Value:    1,
			Required: false,
		},
		&cli.IntFlag{
			Name:     MaxConnsFlag,
			Aliases:  []string{"m"},
			Usage:    "Maximum number of connections served at once, 0 for no limit",
			Category: categoryServe,
			Value:    0,
			Required: false,
		},
		&cli.IntFlag{
			Name:     SlotTimeoutFlag,
			Usage:    "Milliseconds a connection waits for a free slot before it is dropped, 0 to wait forever (requires --max-conns)",
			Category: categoryServe,
			Value:    0,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Append a transcript of all traffic to this file",
			Category: categoryServe,
			Value:    "",
			Required: false,
		},
		&cli.StringFlag{
			Name:     MetricsFlag,
			Usage:    "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9100",
			Category: categoryServe,
			Value:    "",
			Required: false,
		},
	}
}

// GetDialArgsUsage returns the arguments usage string for the dial command.
func GetDialArgsUsage() string {
	return strings.Join([]string{
		"host",
		"port",
	}, " ")
}
