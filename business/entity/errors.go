package entity

import (
	"errors"
	"io"
	"net"
	"syscall"
)

var (
	ErrPortNotSpecified      = errors.New("port is not specified")
	ErrWrongPort             = errors.New("wrong port")
	ErrUnknownEngine         = errors.New("unknown network engine")
	ErrClientExists          = errors.New("client already exists")
	ErrClientNotExists       = errors.New("client not exists")
	ErrConnectionClosed      = errors.New("connection closed")
	ErrFrameTooLarge         = errors.New("maximum frame size exceeded")
	ErrReceiverHandlerNotSet = errors.New("receiver handler is not set")
	ErrServerNotRunning      = errors.New("server is not running")
	ErrServerAlreadyRunning  = errors.New("server is already running")
)

// IsErrorInterruptingNetwork reports whether err means the peer or the server
// has gone away and the connection must be torn down without noise.
func IsErrorInterruptingNetwork(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || errors.Is(opErr, net.ErrClosed) {
			return true
		}
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, ErrConnectionClosed)
}
