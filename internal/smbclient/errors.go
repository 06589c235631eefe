package smbclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

// ErrCancelled resolves a call withdrawn by the caller before its response
// arrived. No CANCEL is sent; the late response is discarded on arrival.
var ErrCancelled = errors.New("call cancelled")

// ProtocolError is a per-call failure: the server answered with an error
// status. The connection stays usable; only the affected call fails.
type ProtocolError struct {
	Command uint16
	Status  uint32
	Kind    types.ErrorKind
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s failed: %s (%s)",
		types.CommandName(e.Command), types.StatusName(e.Status), e.Kind)
}

// DisconnectedError is fatal: the transport failed or the peer produced
// unparseable bytes. Every pending and queued call fails with it.
type DisconnectedError struct {
	Cause error
}

func (e *DisconnectedError) Error() string {
	if e.Cause == nil {
		return "connection lost"
	}
	return fmt.Sprintf("connection lost: %v", e.Cause)
}

func (e *DisconnectedError) Unwrap() error { return e.Cause }

// TimeoutError resolves a call whose deadline passed with no terminal
// response. The connection itself stays alive.
type TimeoutError struct {
	Command  uint16
	Deadline time.Time
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out (deadline %s)",
		types.CommandName(e.Command), e.Deadline.Format(time.RFC3339))
}

// SequenceError reports misuse of the compound sequence builder, such as
// marking the first step related. It is a caller bug, not a wire failure.
type SequenceError struct {
	Reason string
}

func (e *SequenceError) Error() string {
	return "invalid sequence: " + e.Reason
}

// statusError converts a terminal response header into the error the call
// resolves with: nil for success and warning statuses, *ProtocolError for
// error-class statuses. STATUS_MORE_PROCESSING_REQUIRED is surfaced as an
// error so multi-round callers branch on Kind while still receiving the
// response body.
func statusError(hdr *header.SMB2Header) error {
	if !types.IsError(hdr.Status) {
		return nil
	}
	return &ProtocolError{
		Command: hdr.Command,
		Status:  hdr.Status,
		Kind:    types.MapStatus(hdr.Status),
	}
}
