// Package smbclient implements a non-blocking SMB2 client connection: a
// single-owner protocol engine that the caller drives by reporting
// transport readiness. The engine never spawns goroutines, never blocks,
// and never reads the clock; all progress happens inside Service.
package smbclient

import (
	"errors"
	"time"

	"github.com/marmos91/smbcore/internal/logger"
	"github.com/marmos91/smbcore/internal/metrics"
	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/signing"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
	"github.com/marmos91/smbcore/internal/smbclient/transport"
)

// readChunkSize is how much we ask the transport for per Read call
const readChunkSize = 64 * 1024

// defaultCreditRequest is the minimum credit grant we ask for on every
// request, so the window grows past the initial single credit.
const defaultCreditRequest = 16

// errClientClosed is the cause recorded when the local side closes the
// connection while calls are still in flight
var errClientClosed = errors.New("connection closed by client")

// Conn is one SMB2 connection over a non-blocking transport. It is not
// goroutine-safe: submit calls and drive Service from a single goroutine.
type Conn struct {
	transport transport.Transport

	pending *pendingTable
	credits *creditPool
	queue   sendQueue

	nextMessageID uint64

	// session state installed by the session layer once established
	sessionID  uint64
	treeID     uint32
	signingKey *signing.SigningKey

	// negotiated size limits: maxTransactSize bounds assembled compound
	// messages, maxReadSize and maxWriteSize bound single transfers. All
	// three are updated from the negotiate response.
	maxTransactSize uint32
	maxReadSize     uint32
	maxWriteSize    uint32

	readBuf  []byte
	writeBuf []byte

	closed   bool
	fatalErr error

	metrics *metrics.ClientMetrics
}

// NewConn wraps a connected transport. The connection starts with one
// credit, enough for the negotiate request.
func NewConn(t transport.Transport) *Conn {
	return &Conn{
		transport:       t,
		pending:         newPendingTable(),
		credits:         newCreditPool(),
		maxTransactSize: 65536,
		maxReadSize:     1 << 20,
		maxWriteSize:    1 << 20,
	}
}

// SetMetrics attaches a metrics sink. Safe to leave unset.
func (c *Conn) SetMetrics(m *metrics.ClientMetrics) {
	c.metrics = m
}

// SessionID returns the server-assigned session id, zero before setup
func (c *Conn) SessionID() uint64 { return c.sessionID }

// TreeID returns the currently bound tree id, zero before tree connect
func (c *Conn) TreeID() uint32 { return c.treeID }

// Closed reports whether the connection has been torn down
func (c *Conn) Closed() bool { return c.closed }

// Submit sends a single request and returns a future for its terminal
// response. The credit charge is derived from the request size; use
// SubmitCharged for reads and writes whose charge depends on the transfer
// length. A zero deadline means the call never times out.
func (c *Conn) Submit(command uint16, body []byte, deadline time.Time) (*Future, error) {
	return c.SubmitCharged(command, body, wire.CreditCharge(uint32(len(body))), deadline)
}

// SubmitCharged sends a single request with an explicit credit charge
func (c *Conn) SubmitCharged(command uint16, body []byte, charge uint16, deadline time.Time) (*Future, error) {
	if c.closed {
		return nil, c.fatalErr
	}

	fut := newFuture(command)
	c.submitPrepared(fut, command, body, charge, deadline)
	return fut, nil
}

// submitPrepared sends a request whose future already exists. Used by the
// sequence builder when a step's send is deferred behind a predecessor; a
// connection torn down in the meantime resolves the future instead of
// sending.
func (c *Conn) submitPrepared(fut *Future, command uint16, body []byte, charge uint16, deadline time.Time) {
	if c.closed {
		fut.resolve(nil, c.fatalErr)
		return
	}
	hdr := c.buildRequest(fut, command, charge, deadline)
	payload := append(hdr.Encode(), body...)
	c.sign(payload)
	c.enqueue(payload, charge)
}

// buildRequest allocates the message id range for one request, registers
// its future and fills in the connection-owned header fields. Message ids
// advance by the credit charge and are never reused, even when the send is
// queued waiting for credits.
func (c *Conn) buildRequest(fut *Future, command uint16, charge uint16, deadline time.Time) *header.SMB2Header {
	if charge == 0 {
		charge = 1
	}

	hdr := header.NewRequestHeader(command)
	hdr.CreditCharge = charge
	hdr.Credits = charge
	if hdr.Credits < defaultCreditRequest {
		hdr.Credits = defaultCreditRequest
	}
	hdr.MessageID = c.nextMessageID
	hdr.SessionID = c.sessionID
	hdr.TreeID = c.treeID
	c.nextMessageID += uint64(charge)

	c.pending.add(hdr.MessageID, command, deadline, fut)

	logger.Debug("request built",
		"command", types.CommandName(command),
		"message_id", hdr.MessageID,
		"credit_charge", charge)
	c.metrics.ObserveRequest(types.CommandName(command))

	return hdr
}

// sign signs a single outbound message in place when a session key is
// established. Pre-session traffic goes out unsigned.
func (c *Conn) sign(payload []byte) {
	if c.signingKey != nil && c.signingKey.IsValid() && c.sessionID != 0 {
		c.signingKey.SignMessage(payload)
	}
}

// signCompound signs every padded segment of an assembled compound message
// in place, walking the NextCommand chain
func (c *Conn) signCompound(msg []byte) {
	if c.signingKey == nil || !c.signingKey.IsValid() || c.sessionID == 0 {
		return
	}
	offset := 0
	for {
		seg := msg[offset:]
		next := int(uint32(seg[20]) | uint32(seg[21])<<8 | uint32(seg[22])<<16 | uint32(seg[23])<<24)
		if next == 0 {
			c.signingKey.SignMessage(seg)
			return
		}
		c.signingKey.SignMessage(seg[:next])
		offset += next
	}
}

// enqueue frames the payload into the write buffer when credits cover its
// charge, otherwise parks it on the FIFO send queue
func (c *Conn) enqueue(payload []byte, charge uint16) {
	if c.credits.take(charge) {
		c.writeBuf = append(c.writeBuf, wire.FrameMessage(payload)...)
	} else {
		logger.Debug("send queued waiting for credits",
			"charge", charge,
			"available", c.credits.available(),
			"queue_depth", c.queue.len()+1)
		c.queue.push(payload, charge)
	}
}

// Cancel withdraws a still-pending call. The future resolves with
// ErrCancelled and the server's eventual response is discarded when it
// arrives. Returns false when the call already resolved.
func (c *Conn) Cancel(fut *Future) bool {
	if c.closed {
		return false
	}
	return c.pending.cancel(fut)
}

// WantsRead reports whether the caller should poll the transport for
// readability. True whenever the connection is alive: a response or an
// unsolicited server message can arrive at any time.
func (c *Conn) WantsRead() bool {
	return !c.closed
}

// WantsWrite reports whether the engine has bytes ready to go out, either
// buffered or queued behind credits that are now available
func (c *Conn) WantsWrite() bool {
	if c.closed {
		return false
	}
	if len(c.writeBuf) > 0 {
		return true
	}
	head, ok := c.queue.peek()
	return ok && c.credits.available() >= head.charge
}

// NextDeadline returns the earliest pending-call deadline, or the zero
// time when nothing is on the clock. Callers use it to bound their poll
// timeout.
func (c *Conn) NextDeadline() time.Time {
	return c.pending.nextDeadline()
}

// Service advances the connection: expires overdue calls, drains inbound
// bytes when readable, flushes outbound bytes when writable, and resolves
// futures. All engine mutation happens here. It returns the fatal error
// once the connection is down; per-call failures resolve their futures and
// do not surface.
func (c *Conn) Service(readable, writable bool, now time.Time) error {
	if c.closed {
		return c.fatalErr
	}

	c.metrics.ObserveTimeouts(c.pending.expire(now))

	if readable {
		if err := c.readAndDispatch(); err != nil {
			c.teardown(err)
			return c.fatalErr
		}
	}
	if writable {
		if err := c.flush(); err != nil {
			c.teardown(err)
			return c.fatalErr
		}
	}

	c.metrics.SetPending(c.pending.size())
	c.metrics.SetCredits(int(c.credits.available()))
	c.metrics.SetQueueDepth(c.queue.len())
	return nil
}

// readAndDispatch pulls everything the transport has buffered, then
// extracts and routes every complete frame accumulated so far
func (c *Conn) readAndDispatch() error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := c.transport.Read(buf)
		if errors.Is(err, transport.ErrWouldBlock) {
			break
		}
		if err != nil {
			return err
		}
		c.readBuf = append(c.readBuf, buf[:n]...)
	}

	for {
		msg, consumed, err := wire.ExtractFrame(c.readBuf)
		if errors.Is(err, wire.ErrNeedMore) {
			return nil
		}
		if err != nil {
			return err
		}
		c.readBuf = c.readBuf[consumed:]
		if err := c.dispatchMessage(msg); err != nil {
			return err
		}
	}
}

// dispatchMessage splits one inbound message into segments, banks credit
// grants and routes each segment to its pending call
func (c *Conn) dispatchMessage(msg []byte) error {
	segments, err := wire.SplitCompound(msg)
	if err != nil {
		return err
	}

	for _, seg := range segments {
		if !seg.Header.IsResponse() {
			return header.ErrNotAResponse
		}
		if seg.Header.IsSigned() && c.signingKey != nil && c.signingKey.IsValid() {
			if !c.signingKey.Verify(seg.Raw) {
				return errors.New("response signature verification failed")
			}
		}

		c.credits.grant(seg.Header.Credits)
		c.metrics.ObserveResponse(types.CommandName(seg.Header.Command))
		c.pending.handleResponse(seg.Header, seg.Body)
	}
	return nil
}

// flush writes buffered bytes to the transport, promoting queued sends as
// credits allow, until the transport would block or everything is out
func (c *Conn) flush() error {
	for {
		for {
			head, ok := c.queue.peek()
			if !ok || !c.credits.take(head.charge) {
				break
			}
			c.writeBuf = append(c.writeBuf, wire.FrameMessage(head.payload)...)
			c.queue.pop()
		}

		if len(c.writeBuf) == 0 {
			return nil
		}

		n, err := c.transport.Write(c.writeBuf)
		c.writeBuf = c.writeBuf[n:]
		if errors.Is(err, transport.ErrWouldBlock) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close tears the connection down locally. Every pending and queued call
// resolves with a DisconnectedError.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.teardown(errClientClosed)
	return nil
}

// teardown is the single fatal path: it closes the transport, records the
// cause and fails every outstanding call exactly once
func (c *Conn) teardown(cause error) {
	c.closed = true
	c.fatalErr = &DisconnectedError{Cause: cause}
	_ = c.transport.Close()

	if !errors.Is(cause, errClientClosed) {
		logger.Warn("connection lost", "cause", cause)
		c.metrics.ObserveDisconnect()
	}

	c.pending.failAll(c.fatalErr)
	c.queue.clear()
	c.metrics.SetPending(0)
	c.metrics.SetQueueDepth(0)
}
