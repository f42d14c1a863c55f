//go:build unix

package main

import (
	"context"
	"os"

	"dominicbreuker/gosock/cmd/dial"
	"dominicbreuker/gosock/cmd/serve"
	"dominicbreuker/gosock/cmd/version"
	"dominicbreuker/gosock/pkg/log"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "gosock",
		Usage: "echo server and client on blocking TCP sockets",
		Commands: []*cli.Command{
			serve.GetCommand(),
			dial.GetCommand(),
			version.GetCommand(),
		},
	}
}
