package entity

type ConnectHandler func(Connection) error
type ReceiverHandler func(Connection, Frame)
type DisconnectHandler func(Connection, error)

// Connection live client socket as seen by handlers
type Connection interface {
	// ID stable identifier of the connection, the remote address
	ID() string
	Write(data []byte) error
	// Close shuts the socket down in both directions and closes it.
	// No further reads are issued afterwards.
	Close() error
	IsOpen() bool
}

// WriteLine writes s terminated by CRLF
func WriteLine(conn Connection, s string) error {
	return conn.Write([]byte(s + NewLine))
}
