package smbclient

import (
	"time"

	"github.com/marmos91/smbcore/internal/logger"
	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

// pendingCall is one sent request awaiting its terminal response
type pendingCall struct {
	messageID uint64
	command   uint16
	deadline  time.Time // zero means no deadline
	future    *Future
}

// pendingTable maps in-flight message ids to their futures. Entries leave
// the table exactly once: on a terminal response, on expiry, or on
// connection failure. A response for an unknown id is discarded, which is
// also how late responses for expired calls are handled.
type pendingTable struct {
	calls map[uint64]*pendingCall
	order []uint64 // insertion order, for stable expiry and fan-out
}

func newPendingTable() *pendingTable {
	return &pendingTable{calls: make(map[uint64]*pendingCall)}
}

func (t *pendingTable) size() int { return len(t.calls) }

func (t *pendingTable) add(messageID uint64, command uint16, deadline time.Time, f *Future) {
	if _, dup := t.calls[messageID]; dup {
		panic("smbclient: message id reused while pending")
	}
	t.calls[messageID] = &pendingCall{
		messageID: messageID,
		command:   command,
		deadline:  deadline,
		future:    f,
	}
	t.order = append(t.order, messageID)
}

func (t *pendingTable) remove(messageID uint64) {
	delete(t.calls, messageID)
	for i, id := range t.order {
		if id == messageID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// handleResponse routes one parsed inbound message. Interim responses mark
// the future without resolving it; anything else is terminal.
func (t *pendingTable) handleResponse(hdr *header.SMB2Header, body []byte) {
	call, ok := t.calls[hdr.MessageID]
	if !ok {
		logger.Debug("discarding response for unknown message id",
			"message_id", hdr.MessageID,
			"command", types.CommandName(hdr.Command),
			"status", types.StatusName(hdr.Status))
		return
	}

	if hdr.IsInterim() {
		logger.Debug("interim response",
			"message_id", hdr.MessageID,
			"command", types.CommandName(call.command),
			"async_id", hdr.AsyncID())
		call.future.markInterim()
		return
	}

	t.remove(hdr.MessageID)
	call.future.resolve(&Response{Header: hdr, Body: body}, statusError(hdr))
}

// expire resolves every call whose deadline has passed and returns how
// many were expired. The entry is removed first, so a response that
// arrives later hits the unknown-id path.
func (t *pendingTable) expire(now time.Time) int {
	var expired []*pendingCall
	for _, id := range t.order {
		call := t.calls[id]
		if !call.deadline.IsZero() && !now.Before(call.deadline) {
			expired = append(expired, call)
		}
	}
	for _, call := range expired {
		t.remove(call.messageID)
		logger.Debug("call deadline expired",
			"message_id", call.messageID,
			"command", types.CommandName(call.command))
		call.future.resolve(nil, &TimeoutError{
			Command:  call.command,
			Deadline: call.deadline,
		})
	}
	return len(expired)
}

// cancel removes the call owned by f and resolves it with ErrCancelled.
// The id stays retired, so the eventual server response is discarded.
func (t *pendingTable) cancel(f *Future) bool {
	for _, id := range t.order {
		call := t.calls[id]
		if call.future != f {
			continue
		}
		t.remove(id)
		logger.Debug("call cancelled",
			"message_id", call.messageID,
			"command", types.CommandName(call.command))
		call.future.resolve(nil, ErrCancelled)
		return true
	}
	return false
}

// nextDeadline returns the earliest pending deadline, or zero if none
func (t *pendingTable) nextDeadline() time.Time {
	var min time.Time
	for _, call := range t.calls {
		if call.deadline.IsZero() {
			continue
		}
		if min.IsZero() || call.deadline.Before(min) {
			min = call.deadline
		}
	}
	return min
}

// failAll resolves every pending call with the same fatal error, in the
// order the calls were submitted
func (t *pendingTable) failAll(err error) {
	for _, id := range t.order {
		t.calls[id].future.resolve(nil, err)
	}
	t.calls = make(map[uint64]*pendingCall)
	t.order = nil
}
