package usecase

import (
	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
	"github.com/forest33/sockserver/pkg/metrics"
)

// Pipeline ordered chain of command handlers, the first handler that accepts
// a frame stops the chain. The last registered handler must accept anything.
type Pipeline struct {
	log      *logger.Logger
	handlers []entity.CommandHandler
}

func NewPipeline(log *logger.Logger) *Pipeline {
	return &Pipeline{
		log:      log,
		handlers: make([]entity.CommandHandler, 0, 4),
	}
}

func (p *Pipeline) Register(h entity.CommandHandler) *Pipeline {
	p.handlers = append(p.handlers, h)
	return p
}

func (p *Pipeline) Dispatch(conn entity.Connection, frame entity.Frame) {
	for _, h := range p.handlers {
		if h.Handle(conn, frame) {
			metrics.FrameHandled(h.Name())
			return
		}
	}

	p.log.Error().
		Str("addr", conn.ID()).
		Str("command", frame.Text()).
		Msg("no handler accepted the command")
}
