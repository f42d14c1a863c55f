//go:build unix

package socket

import (
	"golang.org/x/sys/unix"
)

// sysCalls is the set of system calls a descriptor is driven through.
// Production code uses realSys; tests swap single entries to inject errno values.
type sysCalls struct {
	socket      func(domain, typ, proto int) (int, error)
	setsockopt  func(fd, level, opt, value int) error
	bind        func(fd int, sa unix.Sockaddr) error
	listen      func(fd, backlog int) error
	accept      func(fd int) (int, unix.Sockaddr, error)
	connect     func(fd int, sa unix.Sockaddr) error
	read        func(fd int, p []byte) (int, error)
	write       func(fd int, p []byte) (int, error)
	shutdown    func(fd, how int) error
	close       func(fd int) error
	getsockname func(fd int) (unix.Sockaddr, error)
	getpeername func(fd int) (unix.Sockaddr, error)
}

var realSys = &sysCalls{
	socket:      sysSocket,
	setsockopt:  unix.SetsockoptInt,
	bind:        unix.Bind,
	listen:      unix.Listen,
	accept:      sysAccept,
	connect:     unix.Connect,
	read:        unix.Read,
	write:       unix.Write,
	shutdown:    unix.Shutdown,
	close:       unix.Close,
	getsockname: unix.Getsockname,
	getpeername: unix.Getpeername,
}

// clone returns a shallow copy that can be modified independently.
func (s *sysCalls) clone() *sysCalls {
	c := *s
	return &c
}
