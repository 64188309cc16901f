package server

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/metrics"
)

const (
	acceptMinDelay = 5 * time.Millisecond
	acceptMaxDelay = time.Second
)

func (s *V1) listenerTCP(lst *net.TCPListener) {
	defer s.wg.Done()

	var delay time.Duration

	for {
		conn, err := lst.AcceptTCP()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if isTemporaryAcceptError(err) {
				delay = nextAcceptDelay(delay)
				s.log.Warn().Err(err).Dur("retry", delay).Msg("failed to accept")
				time.Sleep(delay)
				continue
			}
			s.log.Error().Err(err).Str("addr", lst.Addr().String()).Msg("listener failed")
			s.publish(errors.Wrap(err, "failed to accept"))
			return
		}
		delay = 0

		c := newTCPConnection(conn, &s.base)
		if !s.track(c) {
			_ = c.Close()
			return
		}

		metrics.ConnectionOpened(s.engine)
		s.log.Debug().Str("addr", c.ID()).Msg("connection accepted")

		go s.receiverTCP(c)
	}
}

func (s *V1) receiverTCP(c *tcpConnection) {
	var err error

	defer func() {
		if cerr := c.Close(); cerr != nil {
			s.log.Error().Err(cerr).Str("addr", c.ID()).Msg("failed to close connection")
		}
		s.untrack(c)
		metrics.ConnectionClosed(s.engine)
		s.onDisconnect(c, err)
		s.log.Debug().Str("addr", c.ID()).Msg("connection closed")
		s.wg.Done()
	}()

	if err = s.onConnect(c); err != nil {
		s.log.Error().Err(err).Str("addr", c.ID()).Msg("connection rejected")
		return
	}

	var (
		dec = s.newDecoder(c)
		buf = make([]byte, s.cfg.ReadBufferSize)
		n   int
	)

	for c.IsOpen() {
		n, err = c.conn.Read(buf)
		if n > 0 {
			frames, ferr := dec.Feed(buf[:n])
			s.dispatch(c, frames)
			if ferr != nil {
				metrics.DecoderOverflow()
				s.log.Warn().Err(ferr).
					Str("addr", c.ID()).
					Int("pending", dec.Pending()).
					Msg("closing connection")
				err = ferr
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || !c.IsOpen() {
				err = nil
			}
			return
		}
	}
}

// nextAcceptDelay doubles the pause between failed accepts within
// [acceptMinDelay, acceptMaxDelay]
func nextAcceptDelay(delay time.Duration) time.Duration {
	return min(max(delay*2, acceptMinDelay), acceptMaxDelay)
}

func isTemporaryAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}

// tcpConnection entity.Connection over a net.TCPConn
type tcpConnection struct {
	conn   *net.TCPConn
	id     string
	srv    *base
	closed atomic.Bool
	mux    sync.Mutex
}

func newTCPConnection(conn *net.TCPConn, srv *base) *tcpConnection {
	return &tcpConnection{
		conn: conn,
		id:   conn.RemoteAddr().String(),
		srv:  srv,
	}
}

func (c *tcpConnection) ID() string {
	return c.id
}

func (c *tcpConnection) Write(data []byte) error {
	if c.closed.Load() {
		return entity.ErrConnectionClosed
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	var sent, n int
	for sent < len(data) {
		var err error
		n, err = c.conn.Write(data[sent:])
		if err != nil {
			return err
		}
		sent += n
	}

	c.srv.traceWrite(c, data)

	return nil
}

func (c *tcpConnection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = c.conn.CloseRead()
	_ = c.conn.CloseWrite()
	return c.conn.Close()
}

func (c *tcpConnection) IsOpen() bool {
	return !c.closed.Load()
}
