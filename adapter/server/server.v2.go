package server

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/gnet/v2"
	"github.com/pkg/errors"

	"github.com/forest33/sockserver/adapter/frame"
	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
	"github.com/forest33/sockserver/pkg/metrics"
	"github.com/forest33/sockserver/pkg/structs"
)

// V2 event loop server built on gnet
type V2 struct {
	base
	ctx     context.Context
	addr    string
	eng     gnet.Engine
	running bool
	done    chan struct{}
	mux     sync.Mutex
}

type handler struct {
	gnet.BuiltinEventEngine
	srv  *V2
	boot chan struct{}
}

type session struct {
	conn *gnetConnection
	dec  *frame.Decoder
}

func NewV2(ctx context.Context, log *logger.Logger, cfg *Config) (*V2, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &V2{
		base: newBase(log, cfg, entity.EngineNameV2),
		ctx:  ctx,
	}, nil
}

// Run starts the event loops and returns once the listener is bound
func (s *V2) Run(host string, port uint16) error {
	if s.receiver == nil {
		return entity.ErrReceiverHandlerNotSet
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if s.running {
		return entity.ErrServerAlreadyRunning
	}

	var (
		h = &handler{
			srv:  s,
			boot: make(chan struct{}),
		}
		addr  = net.JoinHostPort(structs.If(host != "", host, "0.0.0.0"), strconv.Itoa(int(port)))
		errCh = make(chan error, 1)
		done  = make(chan struct{})
	)

	go func() {
		defer close(done)
		err := gnet.Run(h, "tcp://"+addr,
			gnet.WithMulticore(s.cfg.Multicore),
			gnet.WithReuseAddr(true),
			gnet.WithReadBufferCap(s.cfg.ReadBufferSize),
		)
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case <-h.boot:
	case err := <-errCh:
		return err
	case <-s.ctx.Done():
		return s.ctx.Err()
	}

	s.addr = addr
	s.running = true
	s.done = done

	go func() {
		select {
		case err := <-errCh:
			s.log.Error().Err(err).Str("addr", addr).Msg("event loop failed")
			s.publish(errors.Wrap(err, "event loop failed"))
		case <-done:
		}
	}()

	return nil
}

func (s *V2) Addr() string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.addr
}

// Shutdown stops the engine, gnet closes every connection and calls OnClose for it
func (s *V2) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	if !s.running {
		s.mux.Unlock()
		return entity.ErrServerNotRunning
	}
	s.running = false
	eng, done := s.eng, s.done
	s.mux.Unlock()

	if err := eng.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop engine")
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.log.Info().Msg("server stopped")

	return nil
}

func (h *handler) OnBoot(eng gnet.Engine) gnet.Action {
	h.srv.eng = eng
	close(h.boot)
	return gnet.None
}

func (h *handler) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	s := h.srv
	conn := newGNetConnection(c, &s.base)
	c.SetContext(&session{
		conn: conn,
		dec:  s.newDecoder(conn),
	})

	metrics.ConnectionOpened(s.engine)
	s.log.Debug().Str("addr", conn.ID()).Msg("connection accepted")

	if err := s.onConnect(conn); err != nil {
		s.log.Error().Err(err).Str("addr", conn.ID()).Msg("connection rejected")
		conn.closed.Store(true)
		return nil, gnet.Close
	}

	return conn.greeting(), gnet.None
}

func (h *handler) OnTraffic(c gnet.Conn) gnet.Action {
	s := h.srv
	sess, ok := c.Context().(*session)
	if !ok {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.log.Error().Err(err).Str("addr", sess.conn.ID()).Msg("failed to read from socket")
		return gnet.Close
	}

	frames, err := sess.dec.Feed(data)
	s.dispatch(sess.conn, frames)
	if !sess.conn.IsOpen() {
		return gnet.Close
	}
	if err != nil {
		metrics.DecoderOverflow()
		s.log.Warn().Err(err).
			Str("addr", sess.conn.ID()).
			Int("pending", sess.dec.Pending()).
			Msg("closing connection")
		sess.conn.closed.Store(true)
		return gnet.Close
	}

	return gnet.None
}

func (h *handler) OnClose(c gnet.Conn, err error) gnet.Action {
	s := h.srv
	sess, ok := c.Context().(*session)
	if !ok {
		return gnet.None
	}
	sess.conn.closed.Store(true)

	metrics.ConnectionClosed(s.engine)
	s.onDisconnect(sess.conn, err)
	s.log.Debug().Str("addr", sess.conn.ID()).Msg("connection closed")

	return gnet.None
}

// gnetConnection entity.Connection over a gnet.Conn. Writes are only issued
// from the event loop that owns the connection.
type gnetConnection struct {
	conn    gnet.Conn
	fd      int
	id      string
	srv     *base
	opening bool
	pending []byte
	closed  atomic.Bool
}

func newGNetConnection(c gnet.Conn, srv *base) *gnetConnection {
	return &gnetConnection{
		conn:    c,
		fd:      c.Fd(),
		id:      c.RemoteAddr().String(),
		srv:     srv,
		opening: true,
	}
}

func (c *gnetConnection) ID() string {
	return c.id
}

// Write while the connection is being opened is buffered and sent by gnet as
// the OnOpen output
func (c *gnetConnection) Write(data []byte) error {
	if c.closed.Load() {
		return entity.ErrConnectionClosed
	}

	if c.opening {
		c.pending = append(c.pending, data...)
		return nil
	}

	if _, err := c.conn.Write(data); err != nil {
		return err
	}

	c.srv.traceWrite(c, data)

	return nil
}

func (c *gnetConnection) greeting() []byte {
	c.opening = false
	out := c.pending
	c.pending = nil
	return out
}

// Close shuts the socket down in both directions. The event loop sees the
// hang up and releases the connection, OnTraffic returns gnet.Close itself
// once the connection is no longer open.
func (c *gnetConnection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := shutdownSocket(c.fd); err != nil {
		c.srv.log.Debug().Err(err).Str("addr", c.id).Msg("failed to shutdown socket")
		return c.conn.Close()
	}
	return nil
}

func (c *gnetConnection) IsOpen() bool {
	return !c.closed.Load()
}
