package server

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

// V1 goroutine per connection server built on the net package
type V1 struct {
	base
	ctx     context.Context
	lst     *net.TCPListener
	conns   map[*tcpConnection]struct{}
	closing bool
	mux     sync.Mutex
	wg      sync.WaitGroup
}

func NewV1(ctx context.Context, log *logger.Logger, cfg *Config) (*V1, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &V1{
		base:  newBase(log, cfg, entity.EngineNameV1),
		ctx:   ctx,
		conns: make(map[*tcpConnection]struct{}),
	}, nil
}

// Run binds the listener and starts accepting in the background
func (s *V1) Run(host string, port uint16) error {
	if s.receiver == nil {
		return entity.ErrReceiverHandlerNotSet
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if s.lst != nil {
		return entity.ErrServerAlreadyRunning
	}

	lc := &net.ListenConfig{}
	lst, err := lc.Listen(s.ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return err
	}

	s.lst = lst.(*net.TCPListener)
	s.closing = false

	s.wg.Add(1)
	go s.listenerTCP(s.lst)

	return nil
}

func (s *V1) Addr() string {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.lst == nil {
		return ""
	}
	return s.lst.Addr().String()
}

// Shutdown closes the listener and every open connection, then waits for the
// connection goroutines until ctx is done
func (s *V1) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	if s.lst == nil {
		s.mux.Unlock()
		return entity.ErrServerNotRunning
	}
	lst := s.lst
	s.lst = nil
	s.closing = true
	conns := make([]*tcpConnection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mux.Unlock()

	err := lst.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	for _, c := range conns {
		if err := c.Close(); err != nil {
			s.log.Debug().Err(err).Str("addr", c.ID()).Msg("failed to close connection")
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.log.Info().Int("connections", len(conns)).Msg("server stopped")

	return err
}

func (s *V1) track(c *tcpConnection) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *V1) untrack(c *tcpConnection) {
	s.mux.Lock()
	delete(s.conns, c)
	s.mux.Unlock()
}
