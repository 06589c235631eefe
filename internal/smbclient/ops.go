package smbclient

import (
	"fmt"
	"time"

	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
)

// Typed operation helpers. Each encodes one request body, submits it and
// returns the call's future. Deadlines are absolute; the zero time disables
// the timeout for that call.

// Negotiate sends a NEGOTIATE request. It must be the first message on a
// connection; the engine enforces nothing here because the server will.
func (c *Conn) Negotiate(req *wire.NegotiateRequest, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2Negotiate, wire.EncodeNegotiateRequest(req), deadline)
}

// SessionSetup sends one round of session establishment. Servers answer
// intermediate rounds with STATUS_MORE_PROCESSING_REQUIRED, which resolves
// the future with a ProtocolError carrying that status alongside the
// response holding the next token.
func (c *Conn) SessionSetup(req *wire.SessionSetupRequest, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2SessionSetup, wire.EncodeSessionSetupRequest(req), deadline)
}

// Logoff terminates the session. The connection survives; a new session
// can be established afterwards.
func (c *Conn) Logoff(deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2Logoff, wire.EncodeLogoffRequest(nil), deadline)
}

// TreeConnect binds the connection to a share by UNC path
func (c *Conn) TreeConnect(path string, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2TreeConnect, wire.EncodeTreeConnectRequest(&wire.TreeConnectRequest{Path: path}), deadline)
}

// TreeDisconnect unbinds the current tree
func (c *Conn) TreeDisconnect(deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2TreeDisconnect, wire.EncodeTreeDisconnectRequest(nil), deadline)
}

// Create opens or creates a file or directory
func (c *Conn) Create(req *wire.CreateRequest, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2Create, wire.EncodeCreateRequest(req), deadline)
}

// CloseFile releases a file handle. Pass types.SMB2ClosePostQueryAttrib as
// flags to get final attributes back in the response.
func (c *Conn) CloseFile(fileID [16]byte, flags uint16, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2Close, wire.EncodeCloseRequest(&wire.CloseRequest{Flags: flags, FileID: fileID}), deadline)
}

// Flush forces buffered writes for a handle to stable storage
func (c *Conn) Flush(fileID [16]byte, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2Flush, wire.EncodeFlushRequest(&wire.FlushRequest{FileID: fileID}), deadline)
}

// Read requests length bytes at offset. The credit charge covers the
// expected response size, not the small request body. Requests beyond the
// negotiated MaxReadSize are rejected; callers split transfers themselves.
func (c *Conn) Read(fileID [16]byte, offset uint64, length uint32, deadline time.Time) (*Future, error) {
	if length > c.maxReadSize {
		return nil, fmt.Errorf("read of %d bytes exceeds negotiated maximum %d", length, c.maxReadSize)
	}
	body := wire.EncodeReadRequest(&wire.ReadRequest{
		Length: length,
		Offset: offset,
		FileID: fileID,
	})
	return c.SubmitCharged(types.SMB2Read, body, wire.CreditCharge(length), deadline)
}

// Write sends data at offset. The credit charge covers the data length.
// Payloads beyond the negotiated MaxWriteSize are rejected.
func (c *Conn) Write(fileID [16]byte, offset uint64, data []byte, deadline time.Time) (*Future, error) {
	if uint32(len(data)) > c.maxWriteSize {
		return nil, fmt.Errorf("write of %d bytes exceeds negotiated maximum %d", len(data), c.maxWriteSize)
	}
	body := wire.EncodeWriteRequest(&wire.WriteRequest{
		Offset: offset,
		FileID: fileID,
		Data:   data,
	})
	return c.SubmitCharged(types.SMB2Write, body, wire.CreditCharge(uint32(len(data))), deadline)
}

// QueryDirectory lists entries of an open directory handle
func (c *Conn) QueryDirectory(req *wire.QueryDirectoryRequest, deadline time.Time) (*Future, error) {
	body := wire.EncodeQueryDirectoryRequest(req)
	return c.SubmitCharged(types.SMB2QueryDirectory, body, wire.CreditCharge(req.OutputBufferLength), deadline)
}

// QueryInfo retrieves file, filesystem or security information
func (c *Conn) QueryInfo(req *wire.QueryInfoRequest, deadline time.Time) (*Future, error) {
	body := wire.EncodeQueryInfoRequest(req)
	return c.SubmitCharged(types.SMB2QueryInfo, body, wire.CreditCharge(req.OutputBufferLength), deadline)
}

// SetInfo updates file information for an open handle
func (c *Conn) SetInfo(req *wire.SetInfoRequest, deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2SetInfo, wire.EncodeSetInfoRequest(req), deadline)
}

// Ioctl issues an FSCTL control operation
func (c *Conn) Ioctl(req *wire.IoctlRequest, deadline time.Time) (*Future, error) {
	body := wire.EncodeIoctlRequest(req)
	charge := wire.CreditCharge(uint32(len(req.Input)))
	if out := wire.CreditCharge(req.MaxOutputResponse); out > charge {
		charge = out
	}
	return c.SubmitCharged(types.SMB2Ioctl, body, charge, deadline)
}

// Echo probes connection liveness without touching any session state
func (c *Conn) Echo(deadline time.Time) (*Future, error) {
	return c.Submit(types.SMB2Echo, wire.EncodeEchoRequest(nil), deadline)
}
