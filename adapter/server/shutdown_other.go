//go:build !unix

package server

import (
	"github.com/pkg/errors"
)

func shutdownSocket(int) error {
	return errors.New("socket shutdown is not supported")
}
