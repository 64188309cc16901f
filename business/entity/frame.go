package entity

import (
	"bytes"
)

const (
	LineFeed  byte = '\n'
	TelnetIAC byte = 0xff

	NewLine             = "\r\n"
	TelnetCommandLength = 3
)

// Frame one decoded command line, terminator included
type Frame []byte

// Text returns the frame as a string with surrounding whitespace removed
func (f Frame) Text() string {
	return string(bytes.TrimSpace(f))
}

// Sequence telnet negotiation command removed from the input
type Sequence [TelnetCommandLength]byte

type NegotiationHandler func(Connection, Sequence)
