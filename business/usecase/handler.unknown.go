package usecase

import (
	"fmt"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

// UnknownHandler accepts everything, so it has to be registered last
type UnknownHandler struct {
	log *logger.Logger
}

func NewUnknownHandler(log *logger.Logger) *UnknownHandler {
	return &UnknownHandler{log: log}
}

func (h *UnknownHandler) Name() string {
	return "unknown"
}

func (h *UnknownHandler) Handle(conn entity.Connection, frame entity.Frame) bool {
	if err := entity.WriteLine(conn, fmt.Sprintf("'%s' is unknown command", frame.Text())); err != nil {
		h.log.Error().Err(err).Str("addr", conn.ID()).Msg("failed to send unknown command reply")
	}
	return true
}
