package entity

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// OverflowMode defines how the accumulator behaves when a sum leaves the int64 range
type OverflowMode uint8

const (
	OverflowWrap OverflowMode = iota
	OverflowSaturate
)

func GetOverflowMode(name string) OverflowMode {
	switch name {
	case OverflowNameSaturate:
		return OverflowSaturate
	default:
		return OverflowWrap
	}
}

func (m OverflowMode) String() string {
	switch m {
	case OverflowSaturate:
		return OverflowNameSaturate
	default:
		return OverflowNameWrap
	}
}

// Client per-connection record stored in the client registry
type Client struct {
	ID          string
	SessionID   uuid.UUID
	Conn        Connection
	ConnectedAt time.Time
	sum         atomic.Int64
}

// ClientInfo point-in-time copy of a client record
type ClientInfo struct {
	ID          string `mapstructure:"id"`
	SessionID   string `mapstructure:"session_id"`
	Sum         int64  `mapstructure:"sum"`
	ConnectedAt string `mapstructure:"connected_at"`
}

func NewClient(conn Connection) *Client {
	return &Client{
		ID:          conn.ID(),
		SessionID:   uuid.New(),
		Conn:        conn,
		ConnectedAt: time.Now(),
	}
}

// Sum returns the current accumulator value. Safe to call from any goroutine.
func (c *Client) Sum() int64 {
	return c.sum.Load()
}

// Add adds v to the accumulator and returns the new value. Only the goroutine
// that processes frames of the client's connection may call it.
func (c *Client) Add(v int64, mode OverflowMode) int64 {
	cur := c.sum.Load()
	next := cur + v
	if mode == OverflowSaturate {
		switch {
		case v > 0 && next < cur:
			next = math.MaxInt64
		case v < 0 && next > cur:
			next = math.MinInt64
		}
	}
	c.sum.Store(next)
	return next
}

func (c *Client) Info() *ClientInfo {
	return &ClientInfo{
		ID:          c.ID,
		SessionID:   c.SessionID.String(),
		Sum:         c.Sum(),
		ConnectedAt: c.ConnectedAt.UTC().Format(time.RFC3339),
	}
}
