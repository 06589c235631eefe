package smbclient

import (
	"time"

	"github.com/marmos91/smbcore/internal/logger"
	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

// StepHandle identifies one step of a sequence; it indexes the futures
// returned by Send
type StepHandle int

type seqStep struct {
	command uint16
	body    []byte
	related bool
}

// Sequence builds a chain of operations sent as a single compound message.
// Related steps reference the file handle produced by the previous step
// through the all-0xFF placeholder FileId, so open+operate+close round
// trips collapse into one.
//
// When the assembled compound would exceed the negotiated transaction
// size, Send falls back to sequential delivery with the same semantics:
// each step goes out after its predecessor resolves, related steps get the
// real handle substituted, and a failed predecessor fails its dependent
// related steps without putting them on the wire.
type Sequence struct {
	conn  *Conn
	steps []seqStep
	sent  bool
}

// NewSequence starts an empty sequence on the connection
func (c *Conn) NewSequence() *Sequence {
	return &Sequence{conn: c}
}

// AddStep appends one operation. The body must be a fully encoded request
// body; related steps that carry a FileId should leave it zero, the
// builder fills in the placeholder or the real handle. The first step can
// never be related because there is nothing before it to relate to.
func (s *Sequence) AddStep(command uint16, body []byte, related bool) (StepHandle, error) {
	if s.sent {
		return 0, &SequenceError{Reason: "sequence already sent"}
	}
	if related && len(s.steps) == 0 {
		return 0, &SequenceError{Reason: "first step cannot be related"}
	}

	// steps own their bodies: Send patches FileId fields in place
	owned := make([]byte, len(body))
	copy(owned, body)

	s.steps = append(s.steps, seqStep{command: command, body: owned, related: related})
	return StepHandle(len(s.steps) - 1), nil
}

// Send puts the sequence on the wire and returns one future per step,
// indexed by StepHandle. A sequence sends at most once.
func (s *Sequence) Send(deadline time.Time) ([]*Future, error) {
	if s.sent {
		return nil, &SequenceError{Reason: "sequence already sent"}
	}
	if len(s.steps) == 0 {
		return nil, &SequenceError{Reason: "sequence has no steps"}
	}
	if s.conn.closed {
		return nil, s.conn.fatalErr
	}
	s.sent = true

	if s.compoundSize() <= int(s.conn.maxTransactSize) {
		return s.sendCompound(deadline), nil
	}
	return s.sendSequential(deadline), nil
}

// compoundSize is the wire size of the assembled compound message: every
// segment but the last padded to 8 bytes
func (s *Sequence) compoundSize() int {
	total := 0
	for i, st := range s.steps {
		size := header.HeaderSize + len(st.body)
		if i < len(s.steps)-1 {
			size = (size + 7) &^ 7
		}
		total += size
	}
	return total
}

// sendCompound assembles all steps into one message. Related steps carry
// the placeholder FileId and the related-operations flag; the server
// resolves the handle as it processes the chain, and keeps processing
// later related steps even after one fails, answering each with the
// predecessor's status.
func (s *Sequence) sendCompound(deadline time.Time) []*Future {
	msgs := make([][]byte, len(s.steps))
	futs := make([]*Future, len(s.steps))
	var totalCharge uint16

	for i, st := range s.steps {
		charge := wire.CreditCharge(uint32(len(st.body)))
		futs[i] = newFuture(st.command)
		hdr := s.conn.buildRequest(futs[i], st.command, charge, deadline)

		if st.related {
			hdr.Flags |= types.SMB2FlagsRelatedOps
			patchFileID(st.command, st.body, wire.CompoundFileID)
		}

		msgs[i] = append(hdr.Encode(), st.body...)
		totalCharge += charge
	}

	msg := wire.AssembleCompound(msgs)
	s.conn.signCompound(msg)
	s.conn.enqueue(msg, totalCharge)

	logger.Debug("compound sequence sent",
		"steps", len(s.steps),
		"size", len(msg),
		"credit_charge", totalCharge)
	return futs
}

// sendSequential delivers the steps one at a time. Step i+1 goes out when
// step i resolves; a related step whose predecessor failed resolves
// locally with the predecessor's error instead of being sent.
func (s *Sequence) sendSequential(deadline time.Time) []*Future {
	futs := make([]*Future, len(s.steps))
	for i, st := range s.steps {
		futs[i] = newFuture(st.command)
	}

	logger.Debug("sequence exceeds transaction size, sending sequentially",
		"steps", len(s.steps),
		"size", s.compoundSize(),
		"max_transact", s.conn.maxTransactSize)

	// chainFileID carries the handle produced by the most recent
	// successful CREATE down the chain
	var chainFileID [16]byte

	var sendStep func(i int)
	sendStep = func(i int) {
		st := s.steps[i]
		if i+1 < len(s.steps) {
			next := i + 1
			futs[i].then(func(resp *Response, err error) {
				if err == nil && st.command == types.SMB2Create && len(resp.Body) >= 80 {
					copy(chainFileID[:], resp.Body[64:80])
				}
				if s.steps[next].related && err != nil {
					// fail the dependent chain locally
					for j := next; j < len(s.steps) && s.steps[j].related; j++ {
						futs[j].resolve(nil, err)
					}
					if tail := firstUnrelatedAfter(s.steps, next); tail >= 0 {
						sendStep(tail)
					}
					return
				}
				sendStep(next)
			})
		}

		if st.related {
			patchFileID(st.command, st.body, chainFileID)
		}
		charge := wire.CreditCharge(uint32(len(st.body)))
		s.conn.submitPrepared(futs[i], st.command, st.body, charge, deadline)
	}
	sendStep(0)

	return futs
}

// firstUnrelatedAfter finds the next step that starts a fresh chain, or -1
func firstUnrelatedAfter(steps []seqStep, from int) int {
	for j := from; j < len(steps); j++ {
		if !steps[j].related {
			return j
		}
	}
	return -1
}

// fileIDOffsets maps commands to the position of their FileId field within
// the request body, for the operations that can appear as related steps
var fileIDOffsets = map[uint16]int{
	types.SMB2Close:          8,
	types.SMB2Flush:          8,
	types.SMB2Read:           16,
	types.SMB2Write:          16,
	types.SMB2QueryDirectory: 8,
	types.SMB2QueryInfo:      24,
	types.SMB2SetInfo:        16,
	types.SMB2Ioctl:          8,
}

// patchFileID overwrites the FileId field of an encoded request body in
// place. Commands without a FileId field are left untouched.
func patchFileID(command uint16, body []byte, fileID [16]byte) {
	off, ok := fileIDOffsets[command]
	if !ok || len(body) < off+16 {
		return
	}
	copy(body[off:off+16], fileID[:])
}
