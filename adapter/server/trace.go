package server

import (
	"fmt"

	"github.com/forest33/sockserver/business/entity"
)

func (b *base) traceFrame(conn entity.Connection, f entity.Frame) {
	if !b.cfg.Tracing {
		return
	}

	b.log.Debug().
		Str("addr", conn.ID()).
		Int("size", len(f)).
		Str("data", fmt.Sprintf("% x", []byte(f))).
		Msg("frame received")
}

func (b *base) traceWrite(conn entity.Connection, data []byte) {
	if !b.cfg.Tracing {
		return
	}

	b.log.Debug().
		Str("addr", conn.ID()).
		Int("size", len(data)).
		Msg("sent to socket")
}
