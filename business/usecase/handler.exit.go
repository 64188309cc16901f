package usecase

import (
	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

// ExitHandler closes the requesting connection and forgets the client
type ExitHandler struct {
	log      *logger.Logger
	registry entity.ClientRegistry
}

func NewExitHandler(log *logger.Logger, registry entity.ClientRegistry) *ExitHandler {
	return &ExitHandler{
		log:      log,
		registry: registry,
	}
}

func (h *ExitHandler) Name() string {
	return commandExit
}

func (h *ExitHandler) Handle(conn entity.Connection, frame entity.Frame) bool {
	if frame.Text() != commandExit {
		return false
	}

	h.log.Debug().Str("addr", conn.ID()).Msg("'exit' command")

	if err := conn.Close(); err != nil {
		h.log.Error().Err(err).Str("addr", conn.ID()).Msg("failed to close connection")
	}
	h.registry.RemoveConnection(conn)

	h.log.Info().Str("addr", conn.ID()).Msg("client left")

	return true
}
