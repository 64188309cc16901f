// Package frame splits a raw TCP byte stream into line-terminated commands.
package frame

import (
	"bytes"

	"github.com/forest33/sockserver/business/entity"
)

const (
	defaultBufferSize = 1024
)

type Config struct {
	// MaxSize limits the number of pending bytes without a line feed, 0 means unlimited
	MaxSize int
	// OnNegotiation receives every telnet command removed from the input
	OnNegotiation func(entity.Sequence)
}

// Decoder per-connection accumulator. It is not safe for concurrent use,
// a connection feeds its own decoder from a single goroutine.
type Decoder struct {
	cfg *Config
	buf []byte
}

func New(cfg *Config) *Decoder {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Decoder{
		cfg: cfg,
		buf: make([]byte, 0, defaultBufferSize),
	}
}

// Feed appends data to the pending buffer and returns all complete frames in
// arrival order. On return the pending buffer holds no line feed that could be
// framed. ErrFrameTooLarge is returned together with the frames decoded so far
// when the unframed tail exceeds MaxSize.
func (d *Decoder) Feed(data []byte) ([]entity.Frame, error) {
	d.buf = append(d.buf, data...)

	var frames []entity.Frame
	for {
		limit := d.strip()
		i := bytes.IndexByte(d.buf[:limit], entity.LineFeed)
		if i == -1 {
			break
		}

		frame := make(entity.Frame, i+1)
		copy(frame, d.buf[:i+1])
		frames = append(frames, frame)

		d.buf = d.buf[:copy(d.buf, d.buf[i+1:])]
	}

	if d.cfg.MaxSize > 0 && len(d.buf) > d.cfg.MaxSize {
		return frames, entity.ErrFrameTooLarge
	}

	return frames, nil
}

// Pending returns the number of buffered bytes not yet framed
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// strip removes telnet negotiation commands (IAC, command, option) from the
// pending buffer. IAC IAC is an escaped data byte and is kept as is. The
// returned value is the length of the prefix that may be searched for a line
// feed: a marker whose command bytes have not arrived yet ends it.
func (d *Decoder) strip() int {
	from := 0
	for {
		i := bytes.IndexByte(d.buf[from:], entity.TelnetIAC)
		if i == -1 {
			return len(d.buf)
		}
		i += from

		if i+1 >= len(d.buf) {
			return i
		}
		if d.buf[i+1] == entity.TelnetIAC {
			from = i + 2
			continue
		}
		if i+entity.TelnetCommandLength > len(d.buf) {
			return i
		}

		var seq entity.Sequence
		copy(seq[:], d.buf[i:i+entity.TelnetCommandLength])
		d.buf = append(d.buf[:i], d.buf[i+entity.TelnetCommandLength:]...)

		if d.cfg.OnNegotiation != nil {
			d.cfg.OnNegotiation(seq)
		}

		from = i
	}
}
