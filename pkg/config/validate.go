//go:build unix

package config

import (
	"dominicbreuker/gosock/pkg/neterr"
	"dominicbreuker/gosock/pkg/socket"
)

// ValidatableConfig ...
type ValidatableConfig interface {
	Validate() []error
}

// Validate ...
func Validate(cfgs ...ValidatableConfig) []error {
	var out []error

	for _, cfg := range cfgs {
		out = append(out, cfg.Validate()...)
	}

	return out
}

func validatePort(name string, port int) error {
	if port < 1 || port > socket.PortMax {
		return neterr.Errorf(name, neterr.BadPort, "%d not in [1, %d]", port, socket.PortMax)
	}

	return nil
}
