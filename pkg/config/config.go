//go:build unix

// Package config holds the validated settings of the serve and dial commands.
package config

import (
	"fmt"
	"net"
	"time"
)

// Server configures the serve command.
type Server struct {
	Port        int
	Backlog     int
	MaxConns    int           // 0 means unbounded
	SlotTimeout time.Duration // 0 means wait until a slot frees up
	LogFile     string
	MetricsAddr string
	Verbose     bool
}

// Validate ...
func (c *Server) Validate() []error {
	var errors []error

	if err := validatePort("--port", c.Port); err != nil {
		errors = append(errors, err)
	}

	if c.Backlog < 1 {
		errors = append(errors, fmt.Errorf("'--backlog' must be at least 1"))
	}

	if c.MaxConns < 0 {
		errors = append(errors, fmt.Errorf("'--max-conns' must not be negative"))
	}

	if c.SlotTimeout < 0 {
		errors = append(errors, fmt.Errorf("'--slot-timeout' must not be negative"))
	}

	if c.SlotTimeout > 0 && c.MaxConns == 0 {
		errors = append(errors, fmt.Errorf("'--slot-timeout' requires '--max-conns'"))
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			errors = append(errors, fmt.Errorf("'--metrics': %s", err))
		}
	}

	return errors
}

// Client configures the dial command.
type Client struct {
	Host    string
	Port    int
	Verbose bool
}

// Validate ...
func (c *Client) Validate() []error {
	var errors []error

	if c.Host == "" {
		errors = append(errors, fmt.Errorf("host must not be empty"))
	}

	if err := validatePort("port", c.Port); err != nil {
		errors = append(errors, err)
	}

	return errors
}
