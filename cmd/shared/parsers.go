package shared

import (
	"fmt"
	"net"
	"strconv"
)

// ParseTarget parses the dial command's arguments. It accepts either
// "host port" as two arguments or "host:port" as one, with IPv6 hosts in
// brackets in the latter form. Port range checks are left to config.
func ParseTarget(args []string) (host string, port int, err error) {
	var portStr string

	switch len(args) {
	case 1:
		host, portStr, err = net.SplitHostPort(args[0])
		if err != nil {
			return "", 0, parsingError(args)
		}
	case 2:
		host, portStr = args[0], args[1]
	default:
		return "", 0, parsingError(args)
	}

	if host == "" {
		return "", 0, parsingError(args)
	}

	port, err = strconv.Atoi(portStr)
	if err != nil {
		return "", 0, parsingError(args)
	}

	return host, port, nil
}

func parsingError(args []string) error {
	return fmt.Errorf("parsing %q: expected 'host port' or 'host:port'", args)
}
