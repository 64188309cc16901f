package entity

import (
	"context"
)

// NetworkServer accepts TCP connections and feeds decoded frames to the receiver handler
type NetworkServer interface {
	Run(host string, port uint16) error
	Shutdown(ctx context.Context) error
	Addr() string
	Errors() <-chan error
	SetConnectHandler(f ConnectHandler)
	SetReceiverHandler(f ReceiverHandler)
	SetDisconnectHandler(f DisconnectHandler)
	SetNegotiationHandler(f NegotiationHandler)
}

// ClientRegistry concurrent collection of connected clients
type ClientRegistry interface {
	Add(c *Client) error
	Get(id string) (*Client, bool)
	RemoveConnection(conn Connection) bool
	Range(f func(c *Client) bool)
	Snapshot() []*Client
	Len() int
	CloseAll() int
}

// CommandHandler single step of the command pipeline
type CommandHandler interface {
	Name() string
	Handle(conn Connection, frame Frame) bool
}
