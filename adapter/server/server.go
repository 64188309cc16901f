// Package server accepts TCP clients and turns their byte streams into frames.
package server

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/forest33/sockserver/adapter/frame"
	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

type Config struct {
	ReadBufferSize int
	MaxFrameSize   int
	Multicore      bool
	Tracing        bool
}

func (c *Config) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ReadBufferSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxFrameSize, validation.Min(0)),
	)
}

// New creates the network server for the engine name from the configuration
func New(ctx context.Context, log *logger.Logger, engine string, cfg *Config) (entity.NetworkServer, error) {
	switch engine {
	case entity.EngineNameV1:
		srv, err := NewV1(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		return srv, nil
	case entity.EngineNameV2:
		srv, err := NewV2(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		return srv, nil
	default:
		return nil, entity.ErrUnknownEngine
	}
}

// base handlers and helpers shared by both engines
type base struct {
	log         *logger.Logger
	cfg         *Config
	engine      string
	connect     entity.ConnectHandler
	receiver    entity.ReceiverHandler
	disconnect  entity.DisconnectHandler
	negotiation entity.NegotiationHandler
	errCh       chan error
}

func newBase(log *logger.Logger, cfg *Config, engine string) base {
	return base{
		log:    log.Duplicate(log.With().Str("layer", "srv").Str("engine", engine).Logger()),
		cfg:    cfg,
		engine: engine,
		errCh:  make(chan error, 1),
	}
}

func (b *base) SetConnectHandler(f entity.ConnectHandler) {
	b.connect = f
}

func (b *base) SetReceiverHandler(f entity.ReceiverHandler) {
	b.receiver = f
}

func (b *base) SetDisconnectHandler(f entity.DisconnectHandler) {
	b.disconnect = f
}

func (b *base) SetNegotiationHandler(f entity.NegotiationHandler) {
	b.negotiation = f
}

func (b *base) Errors() <-chan error {
	return b.errCh
}

// publish reports a fatal server error, only the first one is kept
func (b *base) publish(err error) {
	select {
	case b.errCh <- err:
	default:
	}
}

func (b *base) newDecoder(conn entity.Connection) *frame.Decoder {
	return frame.New(&frame.Config{
		MaxSize: b.cfg.MaxFrameSize,
		OnNegotiation: func(seq entity.Sequence) {
			if b.negotiation != nil {
				b.negotiation(conn, seq)
			}
		},
	})
}

func (b *base) onConnect(conn entity.Connection) error {
	if b.connect == nil {
		return nil
	}
	return b.connect(conn)
}

func (b *base) onDisconnect(conn entity.Connection, err error) {
	if b.disconnect != nil {
		b.disconnect(conn, err)
	}
}

// dispatch passes frames to the receiver in order and stops as soon as a
// handler closes the connection
func (b *base) dispatch(conn entity.Connection, frames []entity.Frame) {
	for _, f := range frames {
		b.traceFrame(conn, f)
		b.receiver(conn, f)
		if !conn.IsOpen() {
			return
		}
	}
}

// NewConfig maps the network section of the server configuration
func NewConfig(cfg *entity.NetworkConfig) *Config {
	return &Config{
		ReadBufferSize: cfg.ReadBufferSize,
		MaxFrameSize:   cfg.MaxFrameSize,
		Multicore:      cfg.Multicore != nil && *cfg.Multicore,
		Tracing:        cfg.Tracing != nil && *cfg.Tracing,
	}
}
