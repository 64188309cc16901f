package entity

import (
	"io"
	"math"
	"net"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClientAdd(t *testing.T) {
	c := &Client{}

	assert.Equal(t, int64(5), c.Add(5, OverflowWrap))
	assert.Equal(t, int64(3), c.Add(-2, OverflowWrap))
	assert.Equal(t, int64(13), c.Add(10, OverflowWrap))
	assert.Equal(t, int64(13), c.Sum())
}

func TestClientAddOverflow(t *testing.T) {
	c := &Client{}
	c.Add(math.MaxInt64, OverflowWrap)
	assert.Equal(t, int64(math.MinInt64), c.Add(1, OverflowWrap))

	c = &Client{}
	c.Add(math.MaxInt64, OverflowSaturate)
	assert.Equal(t, int64(math.MaxInt64), c.Add(1, OverflowSaturate))
	assert.Equal(t, int64(math.MaxInt64-1), c.Add(-1, OverflowSaturate))

	c = &Client{}
	c.Add(math.MinInt64, OverflowSaturate)
	assert.Equal(t, int64(math.MinInt64), c.Add(-1, OverflowSaturate))
}

func TestGetOverflowMode(t *testing.T) {
	assert.Equal(t, OverflowSaturate, GetOverflowMode(OverflowNameSaturate))
	assert.Equal(t, OverflowWrap, GetOverflowMode(OverflowNameWrap))
	assert.Equal(t, OverflowWrap, GetOverflowMode(""))
	assert.Equal(t, OverflowNameSaturate, OverflowSaturate.String())
}

func TestFrameText(t *testing.T) {
	assert.Equal(t, "list", Frame(" list\r\n").Text())
	assert.Equal(t, "", Frame("\n").Text())
}

func TestIsErrorInterruptingNetwork(t *testing.T) {
	assert.True(t, IsErrorInterruptingNetwork(io.EOF))
	assert.True(t, IsErrorInterruptingNetwork(errors.Wrap(net.ErrClosed, "read")))
	assert.True(t, IsErrorInterruptingNetwork(&net.OpError{Op: "read", Err: syscall.ECONNRESET}))
	assert.True(t, IsErrorInterruptingNetwork(ErrConnectionClosed))
	assert.False(t, IsErrorInterruptingNetwork(ErrFrameTooLarge))
	assert.False(t, IsErrorInterruptingNetwork(errors.New("boom")))
}
