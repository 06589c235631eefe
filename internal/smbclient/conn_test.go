package smbclient

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
	"github.com/marmos91/smbcore/internal/smbclient/transport"
)

// srvResp builds one scripted server response message
type srvResp struct {
	command   uint16
	messageID uint64
	status    uint32
	credits   uint16
	flags     uint32
	sessionID uint64
	treeID    uint32
	body      []byte
}

func (r srvResp) message() []byte {
	hdr := &header.SMB2Header{
		StructureSize: header.HeaderSize,
		Command:       r.command,
		Status:        r.status,
		Credits:       r.credits,
		Flags:         types.SMB2FlagsServerToRedir | r.flags,
		MessageID:     r.messageID,
		SessionID:     r.sessionID,
		TreeID:        r.treeID,
	}
	return append(hdr.Encode(), r.body...)
}

func (r srvResp) frame() []byte {
	return wire.FrameMessage(r.message())
}

func newTestConn() (*Conn, *transport.Pipe) {
	pipe := transport.NewPipe()
	return NewConn(pipe), pipe
}

// service runs one full engine pass with both directions ready
func service(t *testing.T, c *Conn) {
	t.Helper()
	require.NoError(t, c.Service(true, true, time.Now()))
}

// outboundMessages extracts every framed request the engine has written
func outboundMessages(t *testing.T, p *transport.Pipe) [][]byte {
	t.Helper()
	data := p.TakeOutbound()
	var msgs [][]byte
	for len(data) > 0 {
		msg, consumed, err := wire.ExtractFrame(data)
		require.NoError(t, err)
		out := make([]byte, len(msg))
		copy(out, msg)
		msgs = append(msgs, out)
		data = data[consumed:]
	}
	return msgs
}

func parseRequest(t *testing.T, msg []byte) (*header.SMB2Header, []byte) {
	t.Helper()
	hdr, err := header.Parse(msg)
	require.NoError(t, err)
	return hdr, msg[header.HeaderSize:]
}

// negotiateBody builds a minimal valid NEGOTIATE response body
func negotiateBody(maxTransact uint32) []byte {
	body := make([]byte, 64)
	binary.LittleEndian.PutUint16(body[0:2], 65)                                // StructureSize
	binary.LittleEndian.PutUint16(body[2:4], types.SMB2NegotiateSigningEnabled) // SecurityMode
	binary.LittleEndian.PutUint16(body[4:6], types.SMB2Dialect0302)             // DialectRevision
	binary.LittleEndian.PutUint32(body[28:32], maxTransact)                     // MaxTransactSize
	binary.LittleEndian.PutUint32(body[32:36], maxTransact)                     // MaxReadSize
	binary.LittleEndian.PutUint32(body[36:40], maxTransact)                     // MaxWriteSize
	return body
}

// sessionSetupBody builds a SESSION_SETUP response body with an optional
// security buffer
func sessionSetupBody(flags uint16, token []byte) []byte {
	body := make([]byte, 8+len(token))
	binary.LittleEndian.PutUint16(body[0:2], 9) // StructureSize
	binary.LittleEndian.PutUint16(body[2:4], flags)
	if len(token) > 0 {
		binary.LittleEndian.PutUint16(body[4:6], header.HeaderSize+8)
		binary.LittleEndian.PutUint16(body[6:8], uint16(len(token)))
		copy(body[8:], token)
	}
	return body
}

func treeConnectBody() []byte {
	body := make([]byte, 16)
	binary.LittleEndian.PutUint16(body[0:2], 16) // StructureSize
	body[2] = types.SMB2ShareTypeDisk
	return body
}

func createBody(fileID [16]byte) []byte {
	body := make([]byte, 88)
	binary.LittleEndian.PutUint16(body[0:2], 89) // StructureSize
	copy(body[64:80], fileID[:])
	return body
}

func echoBody() []byte {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint16(body[0:2], 4)
	return body
}

func TestConn_EchoRoundTrip(t *testing.T) {
	conn, pipe := newTestConn()

	fut, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)

	msgs := outboundMessages(t, pipe)
	require.Len(t, msgs, 1)
	hdr, body := parseRequest(t, msgs[0])
	assert.Equal(t, types.SMB2Echo, hdr.Command)
	assert.Equal(t, uint64(0), hdr.MessageID)
	assert.Equal(t, uint16(1), hdr.CreditCharge)
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(body[0:2]))

	pipe.Inject(srvResp{
		command:   types.SMB2Echo,
		messageID: 0,
		credits:   16,
		body:      echoBody(),
	}.frame())
	service(t, conn)

	require.True(t, fut.Done())
	resp, err := fut.Result()
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, resp.Header.Status)
}

func TestConn_ResponseDeliveredAcrossPartialReads(t *testing.T) {
	conn, pipe := newTestConn()
	pipe.ReadChunk = 3 // force the engine to reassemble from tiny reads

	fut, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)

	pipe.Inject(srvResp{command: types.SMB2Echo, messageID: 0, credits: 8, body: echoBody()}.frame())
	for i := 0; i < 50 && !fut.Done(); i++ {
		service(t, conn)
	}
	require.True(t, fut.Done())
}

func TestConn_DistinctMessageIDsAdvanceByCharge(t *testing.T) {
	conn, pipe := newTestConn()

	// open the credit window first
	fut, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)
	pipe.Inject(srvResp{command: types.SMB2Echo, messageID: 0, credits: 64, body: echoBody()}.frame())
	service(t, conn)
	require.True(t, fut.Done())

	var fileID [16]byte
	_, err = conn.Write(fileID, 0, make([]byte, 150_000), time.Time{}) // charge 3
	require.NoError(t, err)
	_, err = conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)

	msgs := outboundMessages(t, pipe)
	require.Len(t, msgs, 2)

	writeHdr, _ := parseRequest(t, msgs[0])
	echoHdr, _ := parseRequest(t, msgs[1])
	assert.Equal(t, uint64(1), writeHdr.MessageID)
	assert.Equal(t, uint16(3), writeHdr.CreditCharge)
	assert.Equal(t, uint64(4), echoHdr.MessageID, "message id advances by the predecessor's charge")
}

func TestConn_CreditExhaustionQueuesFIFO(t *testing.T) {
	conn, pipe := newTestConn()

	// the single initial credit covers only the first call
	first, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	second, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	third, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)

	msgs := outboundMessages(t, pipe)
	require.Len(t, msgs, 1, "only the funded call goes out")
	hdr, _ := parseRequest(t, msgs[0])
	assert.Equal(t, uint64(0), hdr.MessageID)

	// grant one credit: exactly one queued call is promoted, in FIFO order
	pipe.Inject(srvResp{command: types.SMB2Echo, messageID: 0, credits: 1, body: echoBody()}.frame())
	service(t, conn)
	require.True(t, first.Done())

	msgs = outboundMessages(t, pipe)
	require.Len(t, msgs, 1)
	hdr, _ = parseRequest(t, msgs[0])
	assert.Equal(t, uint64(1), hdr.MessageID)
	assert.False(t, second.Done())
	assert.False(t, third.Done())

	// a generous grant releases the rest
	pipe.Inject(srvResp{command: types.SMB2Echo, messageID: 1, credits: 32, body: echoBody()}.frame())
	service(t, conn)
	msgs = outboundMessages(t, pipe)
	require.Len(t, msgs, 1)
	hdr, _ = parseRequest(t, msgs[0])
	assert.Equal(t, uint64(2), hdr.MessageID)
}

func TestConn_TimeoutResolvesCallAndConnectionSurvives(t *testing.T) {
	conn, pipe := newTestConn()
	now := time.Now()

	fut, err := conn.Echo(now.Add(50 * time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, conn.Service(true, true, now))
	outboundMessages(t, pipe)

	assert.Equal(t, now.Add(50*time.Millisecond), conn.NextDeadline())

	require.NoError(t, conn.Service(true, true, now.Add(time.Second)))
	require.True(t, fut.Done())
	_, err = fut.Result()
	var terr *TimeoutError
	require.True(t, errors.As(err, &terr))

	// the late response is discarded and the connection keeps working
	pipe.Inject(srvResp{command: types.SMB2Echo, messageID: 0, credits: 16, body: echoBody()}.frame())
	service(t, conn)
	assert.False(t, conn.Closed())

	again, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)
	pipe.Inject(srvResp{command: types.SMB2Echo, messageID: 1, credits: 16, body: echoBody()}.frame())
	service(t, conn)
	require.True(t, again.Done())
	_, err = again.Result()
	assert.NoError(t, err)
}

func TestConn_DisconnectFansOutExactlyOnce(t *testing.T) {
	conn, pipe := newTestConn()

	var resolved []error
	futs := make([]*Future, 0, 3)
	for i := 0; i < 3; i++ {
		fut, err := conn.Echo(time.Time{})
		require.NoError(t, err)
		fut.then(func(_ *Response, err error) {
			resolved = append(resolved, err)
		})
		futs = append(futs, fut)
	}
	service(t, conn)

	pipe.CloseRemote()
	err := conn.Service(true, true, time.Now())
	require.Error(t, err)

	var derr *DisconnectedError
	require.True(t, errors.As(err, &derr))

	require.Len(t, resolved, 3, "every call resolves exactly once")
	for _, res := range resolved {
		require.True(t, errors.As(res, &derr))
	}
	for _, fut := range futs {
		assert.True(t, fut.Done())
	}

	assert.True(t, conn.Closed())
	_, err = conn.Echo(time.Time{})
	require.Error(t, err)
	require.True(t, errors.As(err, &derr))
}

func TestConn_MalformedFrameIsFatal(t *testing.T) {
	conn, pipe := newTestConn()

	fut, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)

	// stream header must start with a zero byte
	pipe.Inject([]byte{0xFF, 0x00, 0x00, 0x04, 1, 2, 3, 4})
	err = conn.Service(true, true, time.Now())
	require.Error(t, err)

	var derr *DisconnectedError
	require.True(t, errors.As(err, &derr))
	var dec *wire.DecodeError
	require.True(t, errors.As(derr.Cause, &dec))

	require.True(t, fut.Done())
	_, err = fut.Result()
	require.True(t, errors.As(err, &derr))
}

func TestConn_InterimResponseSuppressesTimeout(t *testing.T) {
	conn, pipe := newTestConn()
	now := time.Now()

	fut, err := conn.Echo(now.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, conn.Service(true, true, now))
	outboundMessages(t, pipe)

	pipe.Inject(srvResp{
		command:   types.SMB2Echo,
		messageID: 0,
		status:    types.StatusPending,
		flags:     types.SMB2FlagsAsyncCommand,
		credits:   16,
	}.frame())
	require.NoError(t, conn.Service(true, true, now))

	assert.False(t, fut.Done())
	assert.True(t, fut.Interim())

	// deadline still applies; the call eventually expires
	require.NoError(t, conn.Service(true, true, now.Add(2*time.Minute)))
	require.True(t, fut.Done())
	_, err = fut.Result()
	var terr *TimeoutError
	require.True(t, errors.As(err, &terr))
}

func TestConn_SignedTrafficAfterSession(t *testing.T) {
	conn, pipe := newTestConn()
	init := &scriptInitiator{tokens: [][]byte{[]byte("krb-token")}, key: []byte("0123456789abcdef")}

	result, err := conn.EstablishSession(SessionConfig{Initiator: init})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)
	pipe.Inject(srvResp{command: types.SMB2Negotiate, messageID: 0, credits: 32, body: negotiateBody(1 << 20)}.frame())
	service(t, conn)
	outboundMessages(t, pipe)
	pipe.Inject(srvResp{
		command:   types.SMB2SessionSetup,
		messageID: 1,
		credits:   32,
		sessionID: 0xBEEF,
		body:      sessionSetupBody(0, nil),
	}.frame())
	service(t, conn)

	require.True(t, result.Done())
	_, err = result.Result()
	require.NoError(t, err)
	require.Equal(t, uint64(0xBEEF), conn.SessionID())

	// post-session requests go out signed with a verifiable signature
	_, err = conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	msgs := outboundMessages(t, pipe)
	require.Len(t, msgs, 1)

	hdr, _ := parseRequest(t, msgs[0])
	assert.True(t, hdr.IsSigned())
	assert.True(t, conn.signingKey.Verify(msgs[0]))
}

type scriptInitiator struct {
	tokens [][]byte
	inputs [][]byte
	round  int
	key    []byte
}

func (s *scriptInitiator) InitSecContext(input []byte) ([]byte, error) {
	if s.round >= len(s.tokens) {
		return nil, errors.New("no more tokens")
	}
	s.inputs = append(s.inputs, input)
	tok := s.tokens[s.round]
	s.round++
	return tok, nil
}

func (s *scriptInitiator) Complete() bool { return s.round >= len(s.tokens) }

func (s *scriptInitiator) SessionKey() []byte {
	if !s.Complete() {
		return nil
	}
	return s.key
}

func TestConn_CancelDiscardsLateResponse(t *testing.T) {
	conn, pipe := newTestConn()

	fut, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)

	require.True(t, conn.Cancel(fut))
	require.True(t, fut.Done())
	_, gotErr := fut.Result()
	assert.ErrorIs(t, gotErr, ErrCancelled)

	// cancelling twice is a no-op
	assert.False(t, conn.Cancel(fut))

	// the server's answer arrives anyway and must hit the unknown-id path
	pipe.Inject(srvResp{
		command:   types.SMB2Echo,
		messageID: 0,
		credits:   16,
		body:      echoBody(),
	}.frame())
	service(t, conn)

	// connection still works for new calls
	fut2, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	msgs := outboundMessages(t, pipe)
	require.Len(t, msgs, 1)
	hdr, _ := parseRequest(t, msgs[0])

	pipe.Inject(srvResp{
		command:   types.SMB2Echo,
		messageID: hdr.MessageID,
		credits:   16,
		body:      echoBody(),
	}.frame())
	service(t, conn)

	resp, err := fut2.Result()
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, resp.Header.Status)
}

func TestConn_RequestDirectionInboundIsFatal(t *testing.T) {
	conn, pipe := newTestConn()

	fut, err := conn.Echo(time.Time{})
	require.NoError(t, err)
	service(t, conn)
	outboundMessages(t, pipe)

	// a frame without the response flag can only mean a corrupt stream
	bogus := header.NewRequestHeader(types.SMB2Echo)
	bogus.MessageID = 0
	pipe.Inject(wire.FrameMessage(append(bogus.Encode(), echoBody()...)))

	svcErr := conn.Service(true, true, time.Now())
	require.Error(t, svcErr)
	assert.ErrorIs(t, svcErr, header.ErrNotAResponse)

	require.True(t, conn.Closed())
	_, gotErr := fut.Result()
	var disc *DisconnectedError
	require.ErrorAs(t, gotErr, &disc)
}
