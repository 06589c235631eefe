package transport

import "io"

// Pipe is an in-memory Transport used by tests. One side is driven by the
// engine through the Transport interface; the test plays the server by
// injecting inbound bytes and collecting what the engine wrote. Reads and
// writes can be throttled to exercise partial-progress paths.
type Pipe struct {
	inbound  []byte
	outbound []byte

	closed       bool
	remoteClosed bool

	// ReadChunk caps bytes returned per Read call (0 = unlimited)
	ReadChunk int
	// WriteChunk caps bytes accepted per Write call (0 = unlimited)
	WriteChunk int
	// WriteBlocked makes Write return ErrWouldBlock until cleared
	WriteBlocked bool
}

// NewPipe creates an empty loopback transport
func NewPipe() *Pipe {
	return &Pipe{}
}

// Inject queues bytes for the engine to read
func (p *Pipe) Inject(data []byte) {
	p.inbound = append(p.inbound, data...)
}

// TakeOutbound returns and clears everything the engine has written
func (p *Pipe) TakeOutbound() []byte {
	out := p.outbound
	p.outbound = nil
	return out
}

// CloseRemote simulates the peer closing the connection. Buffered inbound
// bytes remain readable; once drained, Read returns io.EOF.
func (p *Pipe) CloseRemote() {
	p.remoteClosed = true
}

func (p *Pipe) Read(b []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if len(p.inbound) == 0 {
		if p.remoteClosed {
			return 0, io.EOF
		}
		return 0, ErrWouldBlock
	}

	n := len(p.inbound)
	if p.ReadChunk > 0 && n > p.ReadChunk {
		n = p.ReadChunk
	}
	if n > len(b) {
		n = len(b)
	}
	copy(b, p.inbound[:n])
	p.inbound = p.inbound[n:]
	return n, nil
}

func (p *Pipe) Write(b []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if p.remoteClosed {
		return 0, io.ErrClosedPipe
	}
	if p.WriteBlocked {
		return 0, ErrWouldBlock
	}

	n := len(b)
	if p.WriteChunk > 0 && n > p.WriteChunk {
		n = p.WriteChunk
	}
	p.outbound = append(p.outbound, b[:n]...)
	return n, nil
}

func (p *Pipe) Close() error {
	p.closed = true
	return nil
}
