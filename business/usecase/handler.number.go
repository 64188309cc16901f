package usecase

import (
	"strconv"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

// NumberHandler adds integer commands to the client's accumulator and replies
// with the new sum
type NumberHandler struct {
	log      *logger.Logger
	registry entity.ClientRegistry
	mode     entity.OverflowMode
}

func NewNumberHandler(log *logger.Logger, registry entity.ClientRegistry, mode entity.OverflowMode) *NumberHandler {
	return &NumberHandler{
		log:      log,
		registry: registry,
		mode:     mode,
	}
}

func (h *NumberHandler) Name() string {
	return "number"
}

func (h *NumberHandler) Handle(conn entity.Connection, frame entity.Frame) bool {
	v, err := strconv.ParseInt(frame.Text(), 10, 64)
	if err != nil {
		return false
	}

	client, ok := h.registry.Get(conn.ID())
	if !ok || client.Conn != conn {
		h.log.Warn().Str("addr", conn.ID()).Msg("number from unregistered client")
		return false
	}

	sum := client.Add(v, h.mode)

	if err := entity.WriteLine(conn, strconv.FormatInt(sum, 10)); err != nil {
		h.log.Error().Err(err).Str("addr", conn.ID()).Msg("failed to send sum")
	}

	return true
}
