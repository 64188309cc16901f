package usecase

import (
	"strconv"
	"strings"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

// ListHandler replies with every registered client and its sum
type ListHandler struct {
	log      *logger.Logger
	registry entity.ClientRegistry
}

func NewListHandler(log *logger.Logger, registry entity.ClientRegistry) *ListHandler {
	return &ListHandler{
		log:      log,
		registry: registry,
	}
}

func (h *ListHandler) Name() string {
	return commandList
}

func (h *ListHandler) Handle(conn entity.Connection, frame entity.Frame) bool {
	if frame.Text() != commandList {
		return false
	}

	h.log.Debug().Str("addr", conn.ID()).Msg("'list' command")

	if err := conn.Write([]byte(h.response())); err != nil {
		h.log.Error().Err(err).Str("addr", conn.ID()).Msg("failed to send clients list")
	}

	return true
}

func (h *ListHandler) response() string {
	b := &strings.Builder{}
	b.WriteString(listHeader + entity.NewLine)
	b.WriteString(listSeparator + entity.NewLine)
	h.registry.Range(func(c *entity.Client) bool {
		b.WriteString("Ip: ")
		b.WriteString(c.ID)
		b.WriteString("\t Sum: ")
		b.WriteString(strconv.FormatInt(c.Sum(), 10))
		b.WriteString(entity.NewLine)
		return true
	})
	b.WriteString(listSeparator + entity.NewLine)
	return b.String()
}
