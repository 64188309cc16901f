//go:build unix

package server

import (
	"golang.org/x/sys/unix"
)

func shutdownSocket(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_RDWR)
}
