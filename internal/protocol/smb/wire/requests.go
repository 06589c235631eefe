// Package wire encodes SMB2 request bodies and decodes SMB2 response
// bodies for the client engine. Every message body is the variable part
// that follows the 64-byte header; the header itself is handled by the
// header package.
//
// All multi-byte fields are little-endian. Offsets carried inside bodies
// (NameOffset, SecurityBufferOffset, DataOffset, ...) are relative to the
// start of the SMB2 header, so encoders here assume their body begins at
// byte 64 of the framed message.
package wire

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

// NegotiateRequest represents an SMB2 NEGOTIATE request [MS-SMB2] 2.2.3
type NegotiateRequest struct {
	SecurityMode uint16
	Capabilities uint32
	ClientGUID   uuid.UUID
	Dialects     []uint16
}

// EncodeNegotiateRequest builds an SMB2 NEGOTIATE request body.
// Structure (36 bytes fixed part):
//   - StructureSize (2 bytes) - always 36
//   - DialectCount (2 bytes)
//   - SecurityMode (2 bytes)
//   - Reserved (2 bytes)
//   - Capabilities (4 bytes)
//   - ClientGuid (16 bytes)
//   - ClientStartTime (8 bytes)
//   - Dialects (2 bytes each)
func EncodeNegotiateRequest(req *NegotiateRequest) []byte {
	buf := make([]byte, 36+2*len(req.Dialects))
	binary.LittleEndian.PutUint16(buf[0:2], 36)                        // StructureSize
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(req.Dialects))) // DialectCount
	binary.LittleEndian.PutUint16(buf[4:6], req.SecurityMode)          // SecurityMode
	binary.LittleEndian.PutUint32(buf[8:12], req.Capabilities)         // Capabilities
	copy(buf[12:28], req.ClientGUID[:])                                // ClientGuid
	// ClientStartTime stays zero
	for i, d := range req.Dialects {
		binary.LittleEndian.PutUint16(buf[36+i*2:], d) // Dialects
	}
	return buf
}

// SessionSetupRequest represents an SMB2 SESSION_SETUP request [MS-SMB2] 2.2.5
type SessionSetupRequest struct {
	Flags             uint8
	SecurityMode      uint8
	Capabilities      uint32
	PreviousSessionID uint64
	SecurityBuffer    []byte
}

// EncodeSessionSetupRequest builds an SMB2 SESSION_SETUP request body.
// Structure (24 bytes fixed part):
//   - StructureSize (2 bytes) - always 25
//   - Flags (1 byte)
//   - SecurityMode (1 byte)
//   - Capabilities (4 bytes)
//   - Channel (4 bytes)
//   - SecurityBufferOffset (2 bytes)
//   - SecurityBufferLength (2 bytes)
//   - PreviousSessionId (8 bytes)
//   - Buffer (variable) - the GSS token
func EncodeSessionSetupRequest(req *SessionSetupRequest) []byte {
	buf := make([]byte, 24+len(req.SecurityBuffer))
	binary.LittleEndian.PutUint16(buf[0:2], 25) // StructureSize
	buf[2] = req.Flags                          // Flags
	buf[3] = req.SecurityMode                   // SecurityMode
	binary.LittleEndian.PutUint32(buf[4:8], req.Capabilities)
	// Channel stays zero
	binary.LittleEndian.PutUint16(buf[12:14], header.HeaderSize+24)            // SecurityBufferOffset
	binary.LittleEndian.PutUint16(buf[14:16], uint16(len(req.SecurityBuffer))) // SecurityBufferLength
	binary.LittleEndian.PutUint64(buf[16:24], req.PreviousSessionID)           // PreviousSessionId
	copy(buf[24:], req.SecurityBuffer)
	return buf
}

// LogoffRequest represents an SMB2 LOGOFF request [MS-SMB2] 2.2.7
type LogoffRequest struct{}

// EncodeLogoffRequest builds an SMB2 LOGOFF request body (4 bytes)
func EncodeLogoffRequest(_ *LogoffRequest) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], 4) // StructureSize
	return buf
}

// TreeConnectRequest represents an SMB2 TREE_CONNECT request [MS-SMB2] 2.2.9
type TreeConnectRequest struct {
	// Path is the full UNC share path, e.g. \\server\share
	Path string
}

// EncodeTreeConnectRequest builds an SMB2 TREE_CONNECT request body.
// Structure: StructureSize(2)=9 + Flags(2) + PathOffset(2) + PathLength(2) + Buffer
func EncodeTreeConnectRequest(req *TreeConnectRequest) []byte {
	path := encodeUTF16LE(req.Path)
	buf := make([]byte, 8+len(path))
	binary.LittleEndian.PutUint16(buf[0:2], 9)                   // StructureSize
	binary.LittleEndian.PutUint16(buf[4:6], header.HeaderSize+8) // PathOffset
	binary.LittleEndian.PutUint16(buf[6:8], uint16(len(path)))   // PathLength
	copy(buf[8:], path)
	return buf
}

// TreeDisconnectRequest represents an SMB2 TREE_DISCONNECT request [MS-SMB2] 2.2.11
type TreeDisconnectRequest struct{}

// EncodeTreeDisconnectRequest builds an SMB2 TREE_DISCONNECT request body (4 bytes)
func EncodeTreeDisconnectRequest(_ *TreeDisconnectRequest) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], 4) // StructureSize
	return buf
}

// CreateRequest represents an SMB2 CREATE request [MS-SMB2] 2.2.13
type CreateRequest struct {
	OplockLevel        uint8
	ImpersonationLevel uint32
	DesiredAccess      uint32
	FileAttributes     uint32
	ShareAccess        uint32
	CreateDisposition  uint32
	CreateOptions      uint32
	FileName           string
}

// EncodeCreateRequest builds an SMB2 CREATE request body.
// Structure (56 bytes fixed part):
//   - StructureSize (2 bytes) - always 57
//   - SecurityFlags (1 byte)
//   - RequestedOplockLevel (1 byte)
//   - ImpersonationLevel (4 bytes)
//   - SmbCreateFlags (8 bytes)
//   - Reserved (8 bytes)
//   - DesiredAccess (4 bytes)
//   - FileAttributes (4 bytes)
//   - ShareAccess (4 bytes)
//   - CreateDisposition (4 bytes)
//   - CreateOptions (4 bytes)
//   - NameOffset (2 bytes)
//   - NameLength (2 bytes)
//   - CreateContextsOffset (4 bytes)
//   - CreateContextsLength (4 bytes)
//   - Buffer (variable) - the filename, UTF-16LE, empty for share root
func EncodeCreateRequest(req *CreateRequest) []byte {
	name := encodeUTF16LE(req.FileName)

	// The buffer must be at least one byte even when the name is empty
	bufferLen := len(name)
	if bufferLen == 0 {
		bufferLen = 1
	}

	buf := make([]byte, 56+bufferLen)
	binary.LittleEndian.PutUint16(buf[0:2], 57) // StructureSize
	buf[3] = req.OplockLevel
	binary.LittleEndian.PutUint32(buf[4:8], req.ImpersonationLevel)
	binary.LittleEndian.PutUint32(buf[24:28], req.DesiredAccess)
	binary.LittleEndian.PutUint32(buf[28:32], req.FileAttributes)
	binary.LittleEndian.PutUint32(buf[32:36], req.ShareAccess)
	binary.LittleEndian.PutUint32(buf[36:40], req.CreateDisposition)
	binary.LittleEndian.PutUint32(buf[40:44], req.CreateOptions)
	binary.LittleEndian.PutUint16(buf[44:46], header.HeaderSize+56) // NameOffset
	binary.LittleEndian.PutUint16(buf[46:48], uint16(len(name)))    // NameLength
	copy(buf[56:], name)
	return buf
}

// CloseRequest represents an SMB2 CLOSE request [MS-SMB2] 2.2.15
type CloseRequest struct {
	Flags  uint16
	FileID [16]byte
}

// EncodeCloseRequest builds an SMB2 CLOSE request body (24 bytes)
func EncodeCloseRequest(req *CloseRequest) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint16(buf[0:2], 24)        // StructureSize
	binary.LittleEndian.PutUint16(buf[2:4], req.Flags) // Flags
	copy(buf[8:24], req.FileID[:])                     // FileId
	return buf
}

// FlushRequest represents an SMB2 FLUSH request [MS-SMB2] 2.2.17
type FlushRequest struct {
	FileID [16]byte
}

// EncodeFlushRequest builds an SMB2 FLUSH request body (24 bytes)
func EncodeFlushRequest(req *FlushRequest) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint16(buf[0:2], 24) // StructureSize
	copy(buf[8:24], req.FileID[:])              // FileId
	return buf
}

// ReadRequest represents an SMB2 READ request [MS-SMB2] 2.2.19
type ReadRequest struct {
	Flags          uint8
	Length         uint32
	Offset         uint64
	FileID         [16]byte
	MinimumCount   uint32
	RemainingBytes uint32
}

// EncodeReadRequest builds an SMB2 READ request body.
// The fixed part is 48 bytes plus one byte of Buffer padding (StructureSize 49).
func EncodeReadRequest(req *ReadRequest) []byte {
	buf := make([]byte, 49)
	binary.LittleEndian.PutUint16(buf[0:2], 49) // StructureSize
	buf[3] = req.Flags
	binary.LittleEndian.PutUint32(buf[4:8], req.Length)
	binary.LittleEndian.PutUint64(buf[8:16], req.Offset)
	copy(buf[16:32], req.FileID[:])
	binary.LittleEndian.PutUint32(buf[32:36], req.MinimumCount)
	// Channel stays zero
	binary.LittleEndian.PutUint32(buf[40:44], req.RemainingBytes)
	return buf
}

// WriteRequest represents an SMB2 WRITE request [MS-SMB2] 2.2.21
type WriteRequest struct {
	Offset         uint64
	FileID         [16]byte
	RemainingBytes uint32
	Flags          uint32
	Data           []byte
}

// EncodeWriteRequest builds an SMB2 WRITE request body.
// The fixed part is 48 bytes (StructureSize 49); data follows immediately.
func EncodeWriteRequest(req *WriteRequest) []byte {
	buf := make([]byte, 48+len(req.Data))
	binary.LittleEndian.PutUint16(buf[0:2], 49)                    // StructureSize
	binary.LittleEndian.PutUint16(buf[2:4], header.HeaderSize+48)  // DataOffset
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(req.Data))) // Length
	binary.LittleEndian.PutUint64(buf[8:16], req.Offset)           // Offset
	copy(buf[16:32], req.FileID[:])                                // FileId
	binary.LittleEndian.PutUint32(buf[36:40], req.RemainingBytes)  // RemainingBytes
	binary.LittleEndian.PutUint32(buf[44:48], req.Flags)           // Flags
	copy(buf[48:], req.Data)
	return buf
}

// QueryDirectoryRequest represents an SMB2 QUERY_DIRECTORY request [MS-SMB2] 2.2.33
type QueryDirectoryRequest struct {
	FileInfoClass      uint8
	Flags              uint8
	FileIndex          uint32
	FileID             [16]byte
	FileName           string
	OutputBufferLength uint32
}

// EncodeQueryDirectoryRequest builds an SMB2 QUERY_DIRECTORY request body.
// The fixed part is 32 bytes (StructureSize 33); the search pattern follows.
func EncodeQueryDirectoryRequest(req *QueryDirectoryRequest) []byte {
	pattern := encodeUTF16LE(req.FileName)

	bufferLen := len(pattern)
	if bufferLen == 0 {
		bufferLen = 1
	}

	buf := make([]byte, 32+bufferLen)
	binary.LittleEndian.PutUint16(buf[0:2], 33) // StructureSize
	buf[2] = req.FileInfoClass
	buf[3] = req.Flags
	binary.LittleEndian.PutUint32(buf[4:8], req.FileIndex)
	copy(buf[8:24], req.FileID[:])
	binary.LittleEndian.PutUint16(buf[24:26], header.HeaderSize+32)   // FileNameOffset
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(pattern)))   // FileNameLength
	binary.LittleEndian.PutUint32(buf[28:32], req.OutputBufferLength) // OutputBufferLength
	copy(buf[32:], pattern)
	return buf
}

// QueryInfoRequest represents an SMB2 QUERY_INFO request [MS-SMB2] 2.2.37
type QueryInfoRequest struct {
	InfoType           uint8
	FileInfoClass      uint8
	OutputBufferLength uint32
	AdditionalInfo     uint32
	Flags              uint32
	FileID             [16]byte
	InputBuffer        []byte
}

// EncodeQueryInfoRequest builds an SMB2 QUERY_INFO request body.
// The fixed part is 40 bytes (StructureSize 41); the input buffer follows.
func EncodeQueryInfoRequest(req *QueryInfoRequest) []byte {
	buf := make([]byte, 40+len(req.InputBuffer))
	binary.LittleEndian.PutUint16(buf[0:2], 41) // StructureSize
	buf[2] = req.InfoType
	buf[3] = req.FileInfoClass
	binary.LittleEndian.PutUint32(buf[4:8], req.OutputBufferLength)
	if len(req.InputBuffer) > 0 {
		binary.LittleEndian.PutUint16(buf[8:10], header.HeaderSize+40) // InputBufferOffset
	}
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(req.InputBuffer))) // InputBufferLength
	binary.LittleEndian.PutUint32(buf[16:20], req.AdditionalInfo)
	binary.LittleEndian.PutUint32(buf[20:24], req.Flags)
	copy(buf[24:40], req.FileID[:])
	copy(buf[40:], req.InputBuffer)
	return buf
}

// SetInfoRequest represents an SMB2 SET_INFO request [MS-SMB2] 2.2.39
type SetInfoRequest struct {
	InfoType       uint8
	FileInfoClass  uint8
	AdditionalInfo uint32
	FileID         [16]byte
	Buffer         []byte
}

// EncodeSetInfoRequest builds an SMB2 SET_INFO request body.
// The fixed part is 32 bytes (StructureSize 33); the info buffer follows.
func EncodeSetInfoRequest(req *SetInfoRequest) []byte {
	buf := make([]byte, 32+len(req.Buffer))
	binary.LittleEndian.PutUint16(buf[0:2], 33) // StructureSize
	buf[2] = req.InfoType
	buf[3] = req.FileInfoClass
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(req.Buffer))) // BufferLength
	binary.LittleEndian.PutUint16(buf[8:10], header.HeaderSize+32)   // BufferOffset
	binary.LittleEndian.PutUint32(buf[12:16], req.AdditionalInfo)
	copy(buf[16:32], req.FileID[:])
	copy(buf[32:], req.Buffer)
	return buf
}

// IoctlRequest represents an SMB2 IOCTL request [MS-SMB2] 2.2.31
type IoctlRequest struct {
	CtlCode           uint32
	FileID            [16]byte
	Input             []byte
	MaxOutputResponse uint32
	Flags             uint32
}

// EncodeIoctlRequest builds an SMB2 IOCTL request body.
// The fixed part is 56 bytes (StructureSize 57); the input buffer follows.
func EncodeIoctlRequest(req *IoctlRequest) []byte {
	buf := make([]byte, 56+len(req.Input))
	binary.LittleEndian.PutUint16(buf[0:2], 57) // StructureSize
	binary.LittleEndian.PutUint32(buf[4:8], req.CtlCode)
	copy(buf[8:24], req.FileID[:])
	if len(req.Input) > 0 {
		binary.LittleEndian.PutUint32(buf[24:28], header.HeaderSize+56) // InputOffset
	}
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(req.Input))) // InputCount
	// MaxInputResponse stays zero
	binary.LittleEndian.PutUint32(buf[44:48], req.MaxOutputResponse) // MaxOutputResponse
	binary.LittleEndian.PutUint32(buf[48:52], req.Flags)             // Flags
	copy(buf[56:], req.Input)
	return buf
}

// EchoRequest represents an SMB2 ECHO request [MS-SMB2] 2.2.28
type EchoRequest struct{}

// EncodeEchoRequest builds an SMB2 ECHO request body (4 bytes)
func EncodeEchoRequest(_ *EchoRequest) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], 4) // StructureSize
	return buf
}

// CompoundFileID is the placeholder FileId used by related compound
// operations. A server resolves it to the handle produced by the previous
// operation in the chain. [MS-SMB2] 3.2.4.1.4
var CompoundFileID = [16]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// CreditCharge computes the credit charge for a payload of the given size.
// One credit covers 64KiB; zero-length payloads still cost one credit.
// [MS-SMB2] 3.1.5.2
func CreditCharge(size uint32) uint16 {
	if size == 0 {
		return 1
	}
	return uint16((size-1)/65536 + 1)
}

// DefaultDialects is the dialect list offered during negotiation, in
// preference order as sent on the wire.
var DefaultDialects = []uint16{
	types.SMB2Dialect0202,
	types.SMB2Dialect0210,
	types.SMB2Dialect0300,
	types.SMB2Dialect0302,
}
