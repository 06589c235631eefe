package smbclient

import (
	"errors"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
)

// ErrNotReady is returned by Future.Result before the call resolves
var ErrNotReady = errors.New("call has not resolved yet")

// Response is a single terminal reply: the parsed header and the body bytes
// that follow it (status field already reflected in Header.Status).
type Response struct {
	Header *header.SMB2Header
	Body   []byte
}

// Future tracks one in-flight call. The engine resolves it exactly once,
// during a Service call, with either a terminal response or an error.
// Futures are not goroutine-safe: poll them from the same goroutine that
// drives Service, or wait on Ready from another one.
type Future struct {
	command uint16

	done    bool
	interim bool
	resp    *Response
	err     error

	ready  chan struct{}
	onDone func(*Response, error)
}

func newFuture(command uint16) *Future {
	return &Future{
		command: command,
		ready:   make(chan struct{}),
	}
}

// Done reports whether the call has resolved
func (f *Future) Done() bool { return f.done }

// Interim reports whether the server acknowledged the call with an interim
// STATUS_PENDING response. It can flip to true at most once and never back.
func (f *Future) Interim() bool { return f.interim }

// Ready is closed when the call resolves. Useful for waiting from a
// goroutine other than the one driving Service.
func (f *Future) Ready() <-chan struct{} { return f.ready }

// Result returns the terminal response and error once the call resolves.
// A non-nil error does not imply a nil response: error-class statuses carry
// the server's error body (and STATUS_MORE_PROCESSING_REQUIRED carries the
// next authentication token).
func (f *Future) Result() (*Response, error) {
	if !f.done {
		return nil, ErrNotReady
	}
	return f.resp, f.err
}

// then registers a continuation invoked when the call resolves. Used by
// orchestration helpers to chain dependent calls; runs on the servicing
// goroutine, so it may submit follow-up calls directly.
func (f *Future) then(fn func(*Response, error)) {
	f.onDone = fn
}

func (f *Future) markInterim() {
	f.interim = true
}

func (f *Future) resolve(resp *Response, err error) {
	if f.done {
		panic("smbclient: future resolved twice")
	}
	f.done = true
	f.resp = resp
	f.err = err
	close(f.ready)
	if f.onDone != nil {
		f.onDone(resp, err)
	}
}
