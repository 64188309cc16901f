// Package usecase provides business logic.
package usecase

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
	"github.com/forest33/sockserver/pkg/metrics"
	"github.com/forest33/sockserver/pkg/structs"
)

// ServerUseCase object capable of interacting with ServerUseCase
type ServerUseCase struct {
	ctx        context.Context
	log        *logger.Logger
	cfg        *entity.ServerConfig
	cfgHandler configHandler
	srv        entity.NetworkServer
	registry   entity.ClientRegistry
	pipeline   *Pipeline
}

// NewServerUseCase creates a new ServerUseCase
func NewServerUseCase(ctx context.Context, log *logger.Logger, cfg *entity.ServerConfig, cfgHandler configHandler,
	srv entity.NetworkServer, registry entity.ClientRegistry) (*ServerUseCase, error) {

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	ucLog := log.Duplicate(log.With().Str("layer", "ucsrv").Logger())

	uc := &ServerUseCase{
		ctx:        ctx,
		log:        ucLog,
		cfg:        cfg,
		cfgHandler: cfgHandler,
		srv:        srv,
		registry:   registry,
	}

	uc.pipeline = NewPipeline(ucLog).
		Register(NewNumberHandler(ucLog, registry, entity.GetOverflowMode(cfg.Accumulator.Overflow))).
		Register(NewListHandler(ucLog, registry)).
		Register(NewExitHandler(ucLog, registry)).
		Register(NewUnknownHandler(ucLog))

	return uc, nil
}

// Start registers the connection callbacks and starts listening on port
func (uc *ServerUseCase) Start(port uint16) error {
	if uc.cfgHandler != nil {
		if err := uc.cfgHandler.AddObserver(uc.onConfigChanged); err != nil {
			uc.log.Error().Err(err).Str("path", uc.cfgHandler.GetPath()).Msg("failed to create config file observer")
		}
	}

	uc.srv.SetConnectHandler(uc.connect)
	uc.srv.SetReceiverHandler(uc.pipeline.Dispatch)
	uc.srv.SetDisconnectHandler(uc.disconnect)
	uc.srv.SetNegotiationHandler(uc.negotiation)

	if err := uc.srv.Run(uc.cfg.Network.Host, port); err != nil {
		return errors.Wrapf(err, "failed to listen on port %d", port)
	}

	uc.log.Info().
		Str("addr", uc.srv.Addr()).
		Str("engine", uc.cfg.Network.Engine).
		Int("max_frame_size", uc.cfg.Network.MaxFrameSize).
		Str("overflow", uc.cfg.Accumulator.Overflow).
		Msg("server started")

	return nil
}

// Stop closes the listener and every client connection
func (uc *ServerUseCase) Stop(ctx context.Context) error {
	err := uc.srv.Shutdown(ctx)
	if n := uc.registry.CloseAll(); n > 0 {
		uc.log.Info().Int("clients", n).Msg("client connections closed")
	}
	metrics.SetClients(0)
	return err
}

// Errors returns listener failures reported by the network server
func (uc *ServerUseCase) Errors() <-chan error {
	return uc.srv.Errors()
}

// GetClients returns a snapshot of the connected clients sorted by address
func (uc *ServerUseCase) GetClients() []*entity.ClientInfo {
	return structs.Map(uc.registry.Snapshot(), func(c *entity.Client) *entity.ClientInfo { return c.Info() })
}

// Pipeline returns the command pipeline used for received frames
func (uc *ServerUseCase) Pipeline() *Pipeline {
	return uc.pipeline
}

func (uc *ServerUseCase) connect(conn entity.Connection) error {
	client := entity.NewClient(conn)
	if err := uc.registry.Add(client); err != nil {
		return errors.Wrap(err, conn.ID())
	}
	metrics.SetClients(uc.registry.Len())

	uc.log.Info().
		Str("addr", conn.ID()).
		Str("session_id", client.SessionID.String()).
		Msg("client connected")

	if err := entity.WriteLine(conn, WelcomeMessage); err != nil {
		return errors.Wrap(err, "failed to send welcome message")
	}

	return nil
}

func (uc *ServerUseCase) disconnect(conn entity.Connection, err error) {
	removed := uc.registry.RemoveConnection(conn)
	metrics.SetClients(uc.registry.Len())

	var ev *zerolog.Event
	if err != nil && !entity.IsErrorInterruptingNetwork(err) {
		ev = uc.log.Error().Err(err)
	} else {
		ev = uc.log.Info()
	}

	ev.Str("addr", conn.ID()).
		Bool("removed", removed).
		Msg("disconnected")
}

func (uc *ServerUseCase) negotiation(conn entity.Connection, seq entity.Sequence) {
	metrics.NegotiationStripped()
	uc.log.Warn().
		Str("addr", conn.ID()).
		Str("sequence", fmt.Sprintf("% x", seq[:])).
		Msg("telnet negotiation is not supported, sequence dropped")
}

func (uc *ServerUseCase) onConfigChanged(data interface{}) {
	cfg, ok := data.(*entity.ServerConfig)
	if !ok {
		return
	}
	if err := cfg.Validate(); err != nil {
		uc.log.Error().Err(err).Msg("changed configuration is invalid")
		return
	}
	logger.SetLevel(cfg.Logger.Level)
	uc.log.Info().Str("level", cfg.Logger.Level).Msg("configuration reloaded")
}
