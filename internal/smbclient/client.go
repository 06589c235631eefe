//go:build linux || darwin

package smbclient

import (
	"time"

	"github.com/marmos91/smbcore/internal/metrics"
	"github.com/marmos91/smbcore/internal/smbclient/transport"
)

// Client couples a connection with its TCP transport and a poll loop, for
// callers that want blocking semantics instead of driving Service
// themselves.
type Client struct {
	conn *Conn
	tcp  *transport.TCP
}

// Dial connects to an SMB server (host or host:port) and wraps the
// connection in a blocking client
func Dial(address string, timeout time.Duration) (*Client, error) {
	tcp, err := transport.Dial(address, timeout)
	if err != nil {
		return nil, err
	}

	conn := NewConn(tcp)
	conn.SetMetrics(metrics.NewClientMetrics())
	return &Client{conn: conn, tcp: tcp}, nil
}

// Conn exposes the underlying engine for submitting calls
func (cl *Client) Conn() *Conn { return cl.conn }

// Await drives the connection until the future resolves or the timeout
// elapses. A zero timeout waits as long as pending-call deadlines allow.
func (cl *Client) Await(fut *Future, timeout time.Duration) (*Response, error) {
	var limit time.Time
	if timeout > 0 {
		limit = time.Now().Add(timeout)
	}

	for !fut.Done() {
		if cl.conn.Closed() {
			// teardown resolves every outstanding future
			if fut.Done() {
				break
			}
			return nil, cl.conn.fatalErr
		}

		now := time.Now()
		if !limit.IsZero() && !now.Before(limit) {
			return nil, &TimeoutError{Command: fut.command, Deadline: limit}
		}

		ready, err := transport.Poll(cl.tcp.FD(), cl.conn.WantsRead(), cl.conn.WantsWrite(), cl.pollTimeout(now, limit))
		if err != nil {
			cl.conn.teardown(err)
			return nil, cl.conn.fatalErr
		}

		// Service resolves futures and handles fatal errors internally;
		// the loop notices both on the next pass
		_ = cl.conn.Service(ready.Readable, ready.Writable, time.Now())
	}

	return fut.Result()
}

// pollTimeout bounds one poll round by the nearest deadline: the earliest
// pending call, the Await limit, or a one second tick so expiry keeps
// running even when the wire is idle
func (cl *Client) pollTimeout(now, limit time.Time) time.Duration {
	next := now.Add(time.Second)
	if d := cl.conn.NextDeadline(); !d.IsZero() && d.Before(next) {
		next = d
	}
	if !limit.IsZero() && limit.Before(next) {
		next = limit
	}
	if next.Before(now) {
		return 0
	}
	return next.Sub(now)
}

// Close tears down the connection and transport
func (cl *Client) Close() error {
	return cl.conn.Close()
}
