package usecase

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/forest33/sockserver/business/entity"
)

type mockConn struct {
	id     string
	out    []string
	closed bool
	mux    sync.Mutex
}

func newMockConn(id string) *mockConn {
	return &mockConn{id: id}
}

func (c *mockConn) ID() string {
	return c.id
}

func (c *mockConn) Write(data []byte) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.closed {
		return entity.ErrConnectionClosed
	}
	c.out = append(c.out, string(data))
	return nil
}

func (c *mockConn) Close() error {
	c.mux.Lock()
	c.closed = true
	c.mux.Unlock()
	return nil
}

func (c *mockConn) IsOpen() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return !c.closed
}

func (c *mockConn) written() []string {
	c.mux.Lock()
	defer c.mux.Unlock()
	return append([]string{}, c.out...)
}

func (c *mockConn) last() string {
	out := c.written()
	if len(out) == 0 {
		return ""
	}
	return out[len(out)-1]
}

func (c *mockConn) send(p *Pipeline, lines ...string) {
	for _, l := range lines {
		p.Dispatch(c, entity.Frame(l))
	}
}

type MockNetworkServer struct {
	host        string
	port        uint16
	runErr      error
	errCh       chan error
	connect     entity.ConnectHandler
	receiver    entity.ReceiverHandler
	disconnect  entity.DisconnectHandler
	negotiation entity.NegotiationHandler
	shutdown    bool
}

func newMockNetworkServer() *MockNetworkServer {
	return &MockNetworkServer{errCh: make(chan error, 1)}
}

func (m *MockNetworkServer) Run(host string, port uint16) error {
	m.host = host
	m.port = port
	return m.runErr
}

func (m *MockNetworkServer) Shutdown(context.Context) error {
	m.shutdown = true
	return nil
}

func (m *MockNetworkServer) Addr() string {
	return net.JoinHostPort(m.host, "2323")
}

func (m *MockNetworkServer) Errors() <-chan error {
	return m.errCh
}

func (m *MockNetworkServer) SetConnectHandler(f entity.ConnectHandler) {
	m.connect = f
}

func (m *MockNetworkServer) SetReceiverHandler(f entity.ReceiverHandler) {
	m.receiver = f
}

func (m *MockNetworkServer) SetDisconnectHandler(f entity.DisconnectHandler) {
	m.disconnect = f
}

func (m *MockNetworkServer) SetNegotiationHandler(f entity.NegotiationHandler) {
	m.negotiation = f
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, entity.NewLine), entity.NewLine)
}
