// Package transport supplies the byte-stream abstraction the engine sends
// and receives through. Implementations are non-blocking: reads and writes
// that cannot make progress return ErrWouldBlock instead of waiting, and
// the caller's scheduler polls readiness externally.
package transport

import "errors"

// ErrWouldBlock signals that a read or write cannot make progress right
// now. The caller retries after the next readiness notification.
var ErrWouldBlock = errors.New("operation would block")

// ErrClosed signals use of a transport after Close
var ErrClosed = errors.New("transport closed")

// Transport is a non-blocking byte stream.
//
// Read returns (0, ErrWouldBlock) when no bytes are available and
// (0, io.EOF) when the peer closed the stream. Write returns the number of
// bytes accepted, which may be less than len(p); (0, ErrWouldBlock) means
// the stream cannot accept anything right now.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
