package wire

import (
	"encoding/binary"
	"time"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

// NegotiateResponse represents an SMB2 NEGOTIATE response [MS-SMB2] 2.2.4
type NegotiateResponse struct {
	SecurityMode    uint16
	DialectRevision uint16
	ServerGUID      [16]byte
	Capabilities    uint32
	MaxTransactSize uint32
	MaxReadSize     uint32
	MaxWriteSize    uint32
	SystemTime      time.Time
	ServerStartTime time.Time
	SecurityBuffer  []byte
}

// DecodeNegotiateResponse parses an SMB2 NEGOTIATE response body.
// Structure (64 bytes fixed part, StructureSize 65):
//   - StructureSize (2 bytes)
//   - SecurityMode (2 bytes)
//   - DialectRevision (2 bytes)
//   - NegotiateContextCount (2 bytes)
//   - ServerGuid (16 bytes)
//   - Capabilities (4 bytes)
//   - MaxTransactSize (4 bytes)
//   - MaxReadSize (4 bytes)
//   - MaxWriteSize (4 bytes)
//   - SystemTime (8 bytes)
//   - ServerStartTime (8 bytes)
//   - SecurityBufferOffset (2 bytes)
//   - SecurityBufferLength (2 bytes)
//   - NegotiateContextOffset (4 bytes)
//   - Buffer (variable) - the GSS token
func DecodeNegotiateResponse(body []byte) (*NegotiateResponse, error) {
	if len(body) < 64 {
		return nil, newDecodeError("NEGOTIATE response too short", 0, len(body))
	}

	resp := &NegotiateResponse{
		SecurityMode:    binary.LittleEndian.Uint16(body[2:4]),
		DialectRevision: binary.LittleEndian.Uint16(body[4:6]),
		Capabilities:    binary.LittleEndian.Uint32(body[24:28]),
		MaxTransactSize: binary.LittleEndian.Uint32(body[28:32]),
		MaxReadSize:     binary.LittleEndian.Uint32(body[32:36]),
		MaxWriteSize:    binary.LittleEndian.Uint32(body[36:40]),
		SystemTime:      types.FiletimeToTime(binary.LittleEndian.Uint64(body[40:48])),
		ServerStartTime: types.FiletimeToTime(binary.LittleEndian.Uint64(body[48:56])),
	}
	copy(resp.ServerGUID[:], body[8:24])

	secOffset := int(binary.LittleEndian.Uint16(body[56:58]))
	secLength := int(binary.LittleEndian.Uint16(body[58:60]))
	if secLength > 0 {
		buf, err := extractBuffer(body, secOffset, secLength)
		if err != nil {
			return nil, err
		}
		resp.SecurityBuffer = buf
	}

	return resp, nil
}

// SessionSetupResponse represents an SMB2 SESSION_SETUP response [MS-SMB2] 2.2.6
type SessionSetupResponse struct {
	SessionFlags   uint16
	SecurityBuffer []byte
}

// DecodeSessionSetupResponse parses an SMB2 SESSION_SETUP response body.
// Structure: StructureSize(2)=9 + SessionFlags(2) + SecurityBufferOffset(2) +
// SecurityBufferLength(2) + Buffer
func DecodeSessionSetupResponse(body []byte) (*SessionSetupResponse, error) {
	if len(body) < 8 {
		return nil, newDecodeError("SESSION_SETUP response too short", 0, len(body))
	}

	resp := &SessionSetupResponse{
		SessionFlags: binary.LittleEndian.Uint16(body[2:4]),
	}

	secOffset := int(binary.LittleEndian.Uint16(body[4:6]))
	secLength := int(binary.LittleEndian.Uint16(body[6:8]))
	if secLength > 0 {
		buf, err := extractBuffer(body, secOffset, secLength)
		if err != nil {
			return nil, err
		}
		resp.SecurityBuffer = buf
	}

	return resp, nil
}

// LogoffResponse represents an SMB2 LOGOFF response [MS-SMB2] 2.2.8
// The response is just a status with no meaningful body.
type LogoffResponse struct{}

// DecodeLogoffResponse parses an SMB2 LOGOFF response body (4 bytes)
func DecodeLogoffResponse(body []byte) (*LogoffResponse, error) {
	if len(body) < 4 {
		return nil, newDecodeError("LOGOFF response too short", 0, len(body))
	}
	return &LogoffResponse{}, nil
}

// TreeConnectResponse represents an SMB2 TREE_CONNECT response [MS-SMB2] 2.2.10
type TreeConnectResponse struct {
	ShareType     uint8
	ShareFlags    uint32
	Capabilities  uint32
	MaximalAccess uint32
}

// DecodeTreeConnectResponse parses an SMB2 TREE_CONNECT response body (16 bytes)
func DecodeTreeConnectResponse(body []byte) (*TreeConnectResponse, error) {
	if len(body) < 16 {
		return nil, newDecodeError("TREE_CONNECT response too short", 0, len(body))
	}

	return &TreeConnectResponse{
		ShareType:     body[2],
		ShareFlags:    binary.LittleEndian.Uint32(body[4:8]),
		Capabilities:  binary.LittleEndian.Uint32(body[8:12]),
		MaximalAccess: binary.LittleEndian.Uint32(body[12:16]),
	}, nil
}

// TreeDisconnectResponse represents an SMB2 TREE_DISCONNECT response [MS-SMB2] 2.2.12
type TreeDisconnectResponse struct{}

// DecodeTreeDisconnectResponse parses an SMB2 TREE_DISCONNECT response body (4 bytes)
func DecodeTreeDisconnectResponse(body []byte) (*TreeDisconnectResponse, error) {
	if len(body) < 4 {
		return nil, newDecodeError("TREE_DISCONNECT response too short", 0, len(body))
	}
	return &TreeDisconnectResponse{}, nil
}

// CreateResponse represents an SMB2 CREATE response [MS-SMB2] 2.2.14
type CreateResponse struct {
	OplockLevel    uint8
	Flags          uint8
	CreateAction   uint32
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	ChangeTime     time.Time
	AllocationSize uint64
	EndOfFile      uint64
	FileAttributes uint32
	FileID         [16]byte
}

// DecodeCreateResponse parses an SMB2 CREATE response body (89 bytes fixed part)
func DecodeCreateResponse(body []byte) (*CreateResponse, error) {
	if len(body) < 88 {
		return nil, newDecodeError("CREATE response too short", 0, len(body))
	}

	resp := &CreateResponse{
		OplockLevel:    body[2],
		Flags:          body[3],
		CreateAction:   binary.LittleEndian.Uint32(body[4:8]),
		CreationTime:   types.FiletimeToTime(binary.LittleEndian.Uint64(body[8:16])),
		LastAccessTime: types.FiletimeToTime(binary.LittleEndian.Uint64(body[16:24])),
		LastWriteTime:  types.FiletimeToTime(binary.LittleEndian.Uint64(body[24:32])),
		ChangeTime:     types.FiletimeToTime(binary.LittleEndian.Uint64(body[32:40])),
		AllocationSize: binary.LittleEndian.Uint64(body[40:48]),
		EndOfFile:      binary.LittleEndian.Uint64(body[48:56]),
		FileAttributes: binary.LittleEndian.Uint32(body[56:60]),
	}
	copy(resp.FileID[:], body[64:80])

	return resp, nil
}

// CloseResponse represents an SMB2 CLOSE response [MS-SMB2] 2.2.16
type CloseResponse struct {
	Flags          uint16
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	ChangeTime     time.Time
	AllocationSize uint64
	EndOfFile      uint64
	FileAttributes uint32
}

// DecodeCloseResponse parses an SMB2 CLOSE response body (60 bytes)
func DecodeCloseResponse(body []byte) (*CloseResponse, error) {
	if len(body) < 60 {
		return nil, newDecodeError("CLOSE response too short", 0, len(body))
	}

	return &CloseResponse{
		Flags:          binary.LittleEndian.Uint16(body[2:4]),
		CreationTime:   types.FiletimeToTime(binary.LittleEndian.Uint64(body[8:16])),
		LastAccessTime: types.FiletimeToTime(binary.LittleEndian.Uint64(body[16:24])),
		LastWriteTime:  types.FiletimeToTime(binary.LittleEndian.Uint64(body[24:32])),
		ChangeTime:     types.FiletimeToTime(binary.LittleEndian.Uint64(body[32:40])),
		AllocationSize: binary.LittleEndian.Uint64(body[40:48]),
		EndOfFile:      binary.LittleEndian.Uint64(body[48:56]),
		FileAttributes: binary.LittleEndian.Uint32(body[56:60]),
	}, nil
}

// FlushResponse represents an SMB2 FLUSH response [MS-SMB2] 2.2.18
type FlushResponse struct{}

// DecodeFlushResponse parses an SMB2 FLUSH response body (4 bytes)
func DecodeFlushResponse(body []byte) (*FlushResponse, error) {
	if len(body) < 4 {
		return nil, newDecodeError("FLUSH response too short", 0, len(body))
	}
	return &FlushResponse{}, nil
}

// ReadResponse represents an SMB2 READ response [MS-SMB2] 2.2.20
type ReadResponse struct {
	DataRemaining uint32
	Data          []byte
}

// DecodeReadResponse parses an SMB2 READ response body.
// Structure: StructureSize(2)=17 + DataOffset(1) + Reserved(1) + DataLength(4) +
// DataRemaining(4) + Reserved2(4) + Buffer
func DecodeReadResponse(body []byte) (*ReadResponse, error) {
	if len(body) < 16 {
		return nil, newDecodeError("READ response too short", 0, len(body))
	}

	resp := &ReadResponse{
		DataRemaining: binary.LittleEndian.Uint32(body[8:12]),
	}

	dataOffset := int(body[2])
	dataLength := int(binary.LittleEndian.Uint32(body[4:8]))
	if dataLength > 0 {
		buf, err := extractBuffer(body, dataOffset, dataLength)
		if err != nil {
			return nil, err
		}
		resp.Data = buf
	}

	return resp, nil
}

// WriteResponse represents an SMB2 WRITE response [MS-SMB2] 2.2.22
type WriteResponse struct {
	Count     uint32
	Remaining uint32
}

// DecodeWriteResponse parses an SMB2 WRITE response body (17 bytes)
func DecodeWriteResponse(body []byte) (*WriteResponse, error) {
	if len(body) < 16 {
		return nil, newDecodeError("WRITE response too short", 0, len(body))
	}

	return &WriteResponse{
		Count:     binary.LittleEndian.Uint32(body[4:8]),
		Remaining: binary.LittleEndian.Uint32(body[8:12]),
	}, nil
}

// QueryDirectoryResponse represents an SMB2 QUERY_DIRECTORY response [MS-SMB2] 2.2.34
type QueryDirectoryResponse struct {
	Data []byte
}

// DecodeQueryDirectoryResponse parses an SMB2 QUERY_DIRECTORY response body.
// Structure: StructureSize(2)=9 + OutputBufferOffset(2) + OutputBufferLength(4) + Buffer
func DecodeQueryDirectoryResponse(body []byte) (*QueryDirectoryResponse, error) {
	if len(body) < 8 {
		return nil, newDecodeError("QUERY_DIRECTORY response too short", 0, len(body))
	}

	resp := &QueryDirectoryResponse{}

	outOffset := int(binary.LittleEndian.Uint16(body[2:4]))
	outLength := int(binary.LittleEndian.Uint32(body[4:8]))
	if outLength > 0 {
		buf, err := extractBuffer(body, outOffset, outLength)
		if err != nil {
			return nil, err
		}
		resp.Data = buf
	}

	return resp, nil
}

// QueryInfoResponse represents an SMB2 QUERY_INFO response [MS-SMB2] 2.2.38
type QueryInfoResponse struct {
	Data []byte
}

// DecodeQueryInfoResponse parses an SMB2 QUERY_INFO response body.
// Structure: StructureSize(2)=9 + OutputBufferOffset(2) + OutputBufferLength(4) + Buffer
func DecodeQueryInfoResponse(body []byte) (*QueryInfoResponse, error) {
	if len(body) < 8 {
		return nil, newDecodeError("QUERY_INFO response too short", 0, len(body))
	}

	resp := &QueryInfoResponse{}

	outOffset := int(binary.LittleEndian.Uint16(body[2:4]))
	outLength := int(binary.LittleEndian.Uint32(body[4:8]))
	if outLength > 0 {
		buf, err := extractBuffer(body, outOffset, outLength)
		if err != nil {
			return nil, err
		}
		resp.Data = buf
	}

	return resp, nil
}

// SetInfoResponse represents an SMB2 SET_INFO response [MS-SMB2] 2.2.40
// The response is just a status with a 2-byte body.
type SetInfoResponse struct{}

// DecodeSetInfoResponse parses an SMB2 SET_INFO response body (2 bytes)
func DecodeSetInfoResponse(body []byte) (*SetInfoResponse, error) {
	if len(body) < 2 {
		return nil, newDecodeError("SET_INFO response too short", 0, len(body))
	}
	return &SetInfoResponse{}, nil
}

// IoctlResponse represents an SMB2 IOCTL response [MS-SMB2] 2.2.32
type IoctlResponse struct {
	CtlCode uint32
	FileID  [16]byte
	Output  []byte
}

// DecodeIoctlResponse parses an SMB2 IOCTL response body (48 bytes fixed part)
func DecodeIoctlResponse(body []byte) (*IoctlResponse, error) {
	if len(body) < 48 {
		return nil, newDecodeError("IOCTL response too short", 0, len(body))
	}

	resp := &IoctlResponse{
		CtlCode: binary.LittleEndian.Uint32(body[4:8]),
	}
	copy(resp.FileID[:], body[8:24])

	outOffset := int(binary.LittleEndian.Uint32(body[32:36]))
	outLength := int(binary.LittleEndian.Uint32(body[36:40]))
	if outLength > 0 {
		buf, err := extractBuffer(body, outOffset, outLength)
		if err != nil {
			return nil, err
		}
		resp.Output = buf
	}

	return resp, nil
}

// EchoResponse represents an SMB2 ECHO response [MS-SMB2] 2.2.29
type EchoResponse struct{}

// DecodeEchoResponse parses an SMB2 ECHO response body (4 bytes)
func DecodeEchoResponse(body []byte) (*EchoResponse, error) {
	if len(body) < 4 {
		return nil, newDecodeError("ECHO response too short", 0, len(body))
	}
	return &EchoResponse{}, nil
}

// ErrorResponse represents the SMB2 ERROR response body that replaces the
// command-specific body when the header carries a failing status.
// [MS-SMB2] 2.2.2
type ErrorResponse struct {
	ErrorData []byte
}

// DecodeErrorResponse parses an SMB2 ERROR response body.
// Structure: StructureSize(2)=9 + ErrorContextCount(1) + Reserved(1) +
// ByteCount(4) + ErrorData
func DecodeErrorResponse(body []byte) (*ErrorResponse, error) {
	if len(body) < 8 {
		return nil, newDecodeError("ERROR response too short", 0, len(body))
	}

	resp := &ErrorResponse{}
	byteCount := int(binary.LittleEndian.Uint32(body[4:8]))
	if byteCount > 0 && 8+byteCount <= len(body) {
		resp.ErrorData = body[8 : 8+byteCount]
	}

	return resp, nil
}

// extractBuffer slices a variable-length buffer out of a response body.
// The offset is relative to the start of the SMB2 header; bodies begin at
// byte 64 of the framed message.
func extractBuffer(body []byte, offset, length int) ([]byte, error) {
	start := offset - header.HeaderSize
	if start < 0 || start+length > len(body) {
		return nil, newDecodeError("buffer offset out of range", offset, length)
	}
	return body[start : start+length], nil
}
