package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
)

// ErrNeedMore signals that the accumulated byte stream does not yet contain
// a complete framed message. Callers keep the buffer and retry after the
// next read.
var ErrNeedMore = errors.New("need more bytes for a complete message")

// MaxFrameSize is the largest payload a direct-TCP frame can describe.
// The stream header carries a 24-bit length field.
const MaxFrameSize = 1<<24 - 1

// FrameHeaderSize is the size of the direct-TCP stream header that
// prefixes every SMB2 message: one zero byte plus a 24-bit big-endian
// payload length. [MS-SMB2] 2.1
const FrameHeaderSize = 4

// DecodeError reports malformed bytes received from the peer. It pins the
// offending region of the message so diagnostics can show exactly what the
// server sent. A DecodeError is fatal for the connection: after one, the
// stream position can no longer be trusted.
type DecodeError struct {
	Msg    string
	Offset int
	Length int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %s (offset %d, length %d)", e.Msg, e.Offset, e.Length)
}

func newDecodeError(msg string, offset, length int) *DecodeError {
	return &DecodeError{Msg: msg, Offset: offset, Length: length}
}

// FrameMessage prepends the direct-TCP stream header to an SMB2 message
func FrameMessage(msg []byte) []byte {
	framed := make([]byte, FrameHeaderSize+len(msg))
	framed[0] = 0
	framed[1] = byte(len(msg) >> 16)
	framed[2] = byte(len(msg) >> 8)
	framed[3] = byte(len(msg))
	copy(framed[FrameHeaderSize:], msg)
	return framed
}

// ExtractFrame pulls the first complete SMB2 message out of a byte stream.
// It returns the message payload and the total number of bytes consumed
// (stream header included). ErrNeedMore means the stream is still short;
// the caller keeps accumulating. Any other error is a DecodeError and the
// connection must be torn down.
func ExtractFrame(stream []byte) (msg []byte, consumed int, err error) {
	if len(stream) < FrameHeaderSize {
		return nil, 0, ErrNeedMore
	}
	if stream[0] != 0 {
		return nil, 0, newDecodeError("invalid stream header byte", 0, 1)
	}
	length := int(stream[1])<<16 | int(stream[2])<<8 | int(stream[3])
	if length < header.HeaderSize {
		return nil, 0, newDecodeError("frame shorter than SMB2 header", 0, FrameHeaderSize)
	}
	if len(stream) < FrameHeaderSize+length {
		return nil, 0, ErrNeedMore
	}
	return stream[FrameHeaderSize : FrameHeaderSize+length], FrameHeaderSize + length, nil
}

// Segment is one header+body message inside a (possibly compound) SMB2
// message. For non-compound messages the whole payload is a single segment.
type Segment struct {
	Header *header.SMB2Header
	Body   []byte

	// Raw is the full segment including the header, padding excluded for
	// the last segment and included for earlier ones. Signature checks run
	// over these exact bytes.
	Raw []byte
}

// SplitCompound breaks an SMB2 message into its chained segments by
// following NextCommand offsets. A message with NextCommand zero yields a
// single segment.
func SplitCompound(msg []byte) ([]Segment, error) {
	var segments []Segment
	offset := 0

	for {
		remaining := msg[offset:]
		hdr, err := header.Parse(remaining)
		if err != nil {
			return nil, newDecodeError(err.Error(), offset, header.HeaderSize)
		}

		next := int(hdr.NextCommand)
		if next == 0 {
			segments = append(segments, Segment{
				Header: hdr,
				Body:   remaining[header.HeaderSize:],
				Raw:    remaining,
			})
			return segments, nil
		}

		if next%8 != 0 {
			return nil, newDecodeError("compound offset not 8-byte aligned", offset+20, 4)
		}
		// a header-only segment makes next exactly HeaderSize
		if next < header.HeaderSize || offset+next > len(msg) {
			return nil, newDecodeError("compound offset out of range", offset+20, 4)
		}

		segments = append(segments, Segment{
			Header: hdr,
			Body:   remaining[header.HeaderSize:next],
			Raw:    remaining[:next],
		})
		offset += next
	}
}

// AssembleCompound chains encoded header+body messages into a single
// compound message. Every segment except the last is padded to an 8-byte
// boundary and gets its NextCommand field rewritten to the padded length.
// The input slices are not modified.
func AssembleCompound(msgs [][]byte) []byte {
	if len(msgs) == 1 {
		return msgs[0]
	}

	total := 0
	for i, m := range msgs {
		if i == len(msgs)-1 {
			total += len(m)
		} else {
			total += aligned8(len(m))
		}
	}

	out := make([]byte, 0, total)
	for i, m := range msgs {
		if i == len(msgs)-1 {
			out = append(out, m...)
			break
		}
		padded := aligned8(len(m))
		seg := make([]byte, padded)
		copy(seg, m)
		binary.LittleEndian.PutUint32(seg[20:24], uint32(padded)) // NextCommand
		out = append(out, seg...)
	}
	return out
}

func aligned8(n int) int {
	return (n + 7) &^ 7
}
