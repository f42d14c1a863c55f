package format

import (
	"fmt"
	"net"
	"strings"
)

func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") { // IPv6
		return fmt.Sprintf("[%s]:%d", host, port)
	} else { // IPv4
		return fmt.Sprintf("%s:%d", host, port)
	}
}

// Peer renders a socket address for log lines. Handles that lost their
// descriptor have no address and render as "unknown".
func Peer(a net.Addr) string {
	if a == nil {
		return "unknown"
	}
	if tcp, ok := a.(*net.TCPAddr); ok && tcp == nil {
		return "unknown"
	}
	return a.String()
}
