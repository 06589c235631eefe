package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/marmos91/smbcore/internal/protocol/smb/header"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

func TestEncodeNegotiateRequest(t *testing.T) {
	req := &NegotiateRequest{
		SecurityMode: types.SMB2NegotiateSigningEnabled,
		ClientGUID:   uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Dialects:     DefaultDialects,
	}

	body := EncodeNegotiateRequest(req)

	if got := binary.LittleEndian.Uint16(body[0:2]); got != 36 {
		t.Errorf("StructureSize = %d, want 36", got)
	}
	if got := binary.LittleEndian.Uint16(body[2:4]); got != uint16(len(DefaultDialects)) {
		t.Errorf("DialectCount = %d, want %d", got, len(DefaultDialects))
	}
	if got := binary.LittleEndian.Uint16(body[4:6]); got != types.SMB2NegotiateSigningEnabled {
		t.Errorf("SecurityMode = 0x%04X", got)
	}
	if got := binary.LittleEndian.Uint16(body[36:38]); got != types.SMB2Dialect0202 {
		t.Errorf("first dialect = 0x%04X, want 0x0202", got)
	}
	if len(body) != 36+2*len(DefaultDialects) {
		t.Errorf("body length = %d", len(body))
	}
}

func TestEncodeSessionSetupRequest(t *testing.T) {
	token := []byte{0x60, 0x28, 0x06, 0x06}
	req := &SessionSetupRequest{
		SecurityMode:   uint8(types.SMB2NegotiateSigningEnabled),
		SecurityBuffer: token,
	}

	body := EncodeSessionSetupRequest(req)

	if got := binary.LittleEndian.Uint16(body[0:2]); got != 25 {
		t.Errorf("StructureSize = %d, want 25", got)
	}
	secOffset := binary.LittleEndian.Uint16(body[12:14])
	if secOffset != header.HeaderSize+24 {
		t.Errorf("SecurityBufferOffset = %d, want %d", secOffset, header.HeaderSize+24)
	}
	secLength := binary.LittleEndian.Uint16(body[14:16])
	if int(secLength) != len(token) {
		t.Errorf("SecurityBufferLength = %d, want %d", secLength, len(token))
	}
	if !bytes.Equal(body[24:], token) {
		t.Error("security buffer not copied")
	}
}

func TestEncodeTreeConnectRequest(t *testing.T) {
	req := &TreeConnectRequest{Path: `\\server\share`}
	body := EncodeTreeConnectRequest(req)

	if got := binary.LittleEndian.Uint16(body[0:2]); got != 9 {
		t.Errorf("StructureSize = %d, want 9", got)
	}
	pathOffset := binary.LittleEndian.Uint16(body[4:6])
	if pathOffset != header.HeaderSize+8 {
		t.Errorf("PathOffset = %d, want %d", pathOffset, header.HeaderSize+8)
	}
	pathLength := int(binary.LittleEndian.Uint16(body[6:8]))
	if got := decodeUTF16LE(body[8 : 8+pathLength]); got != `\\server\share` {
		t.Errorf("path = %q", got)
	}
}

func TestEncodeCreateRequest(t *testing.T) {
	t.Run("WithName", func(t *testing.T) {
		req := &CreateRequest{
			OplockLevel:        types.OplockLevelNone,
			ImpersonationLevel: types.ImpersonationImpersonation,
			DesiredAccess:      types.GenericRead,
			ShareAccess:        types.FileShareRead,
			CreateDisposition:  types.FileOpen,
			FileName:           `dir\file.txt`,
		}

		body := EncodeCreateRequest(req)

		if got := binary.LittleEndian.Uint16(body[0:2]); got != 57 {
			t.Errorf("StructureSize = %d, want 57", got)
		}
		if got := binary.LittleEndian.Uint32(body[36:40]); got != types.FileOpen {
			t.Errorf("CreateDisposition = %d, want %d", got, types.FileOpen)
		}
		nameOffset := binary.LittleEndian.Uint16(body[44:46])
		if nameOffset != header.HeaderSize+56 {
			t.Errorf("NameOffset = %d, want %d", nameOffset, header.HeaderSize+56)
		}
		nameLength := int(binary.LittleEndian.Uint16(body[46:48]))
		if got := decodeUTF16LE(body[56 : 56+nameLength]); got != `dir\file.txt` {
			t.Errorf("name = %q", got)
		}
	})

	t.Run("EmptyNameKeepsBufferByte", func(t *testing.T) {
		body := EncodeCreateRequest(&CreateRequest{})
		if len(body) != 57 {
			t.Errorf("body length = %d, want 57", len(body))
		}
		if got := binary.LittleEndian.Uint16(body[46:48]); got != 0 {
			t.Errorf("NameLength = %d, want 0", got)
		}
	})
}

func TestEncodeWriteRequest(t *testing.T) {
	data := []byte("hello smb")
	req := &WriteRequest{
		Offset: 4096,
		FileID: [16]byte{1, 2, 3},
		Data:   data,
	}

	body := EncodeWriteRequest(req)

	if got := binary.LittleEndian.Uint16(body[0:2]); got != 49 {
		t.Errorf("StructureSize = %d, want 49", got)
	}
	if got := binary.LittleEndian.Uint16(body[2:4]); got != header.HeaderSize+48 {
		t.Errorf("DataOffset = %d, want %d", got, header.HeaderSize+48)
	}
	if got := binary.LittleEndian.Uint32(body[4:8]); int(got) != len(data) {
		t.Errorf("Length = %d, want %d", got, len(data))
	}
	if got := binary.LittleEndian.Uint64(body[8:16]); got != 4096 {
		t.Errorf("Offset = %d, want 4096", got)
	}
	if !bytes.Equal(body[48:], data) {
		t.Error("data not copied")
	}
}

func TestDecodeNegotiateResponse(t *testing.T) {
	token := []byte{0x60, 0x10, 0x06}
	body := make([]byte, 64+len(token))
	binary.LittleEndian.PutUint16(body[0:2], 65) // StructureSize
	binary.LittleEndian.PutUint16(body[2:4], types.SMB2NegotiateSigningEnabled)
	binary.LittleEndian.PutUint16(body[4:6], types.SMB2Dialect0302)   // DialectRevision
	binary.LittleEndian.PutUint32(body[24:28], types.SMB2CapLargeMTU) // Capabilities
	binary.LittleEndian.PutUint32(body[28:32], 8388608)               // MaxTransactSize
	binary.LittleEndian.PutUint32(body[32:36], 8388608)               // MaxReadSize
	binary.LittleEndian.PutUint32(body[36:40], 8388608)               // MaxWriteSize
	binary.LittleEndian.PutUint16(body[56:58], header.HeaderSize+64)  // SecurityBufferOffset
	binary.LittleEndian.PutUint16(body[58:60], uint16(len(token)))    // SecurityBufferLength
	copy(body[64:], token)

	resp, err := DecodeNegotiateResponse(body)
	if err != nil {
		t.Fatalf("DecodeNegotiateResponse() error = %v", err)
	}

	if resp.DialectRevision != types.SMB2Dialect0302 {
		t.Errorf("DialectRevision = 0x%04X, want 0x0302", resp.DialectRevision)
	}
	if resp.MaxReadSize != 8388608 {
		t.Errorf("MaxReadSize = %d", resp.MaxReadSize)
	}
	if !bytes.Equal(resp.SecurityBuffer, token) {
		t.Error("security buffer mismatch")
	}
}

func TestDecodeSessionSetupResponse(t *testing.T) {
	token := []byte{0xA1, 0x07, 0x30, 0x05}
	body := make([]byte, 8+len(token))
	binary.LittleEndian.PutUint16(body[0:2], 9)
	binary.LittleEndian.PutUint16(body[2:4], types.SMB2SessionFlagIsGuest)
	binary.LittleEndian.PutUint16(body[4:6], header.HeaderSize+8) // SecurityBufferOffset
	binary.LittleEndian.PutUint16(body[6:8], uint16(len(token)))  // SecurityBufferLength
	copy(body[8:], token)

	resp, err := DecodeSessionSetupResponse(body)
	if err != nil {
		t.Fatalf("DecodeSessionSetupResponse() error = %v", err)
	}
	if resp.SessionFlags != types.SMB2SessionFlagIsGuest {
		t.Errorf("SessionFlags = 0x%04X", resp.SessionFlags)
	}
	if !bytes.Equal(resp.SecurityBuffer, token) {
		t.Error("security buffer mismatch")
	}
}

func TestDecodeCreateResponse(t *testing.T) {
	body := make([]byte, 89)
	binary.LittleEndian.PutUint16(body[0:2], 89)
	body[2] = types.OplockLevelII
	binary.LittleEndian.PutUint32(body[4:8], types.FileOpened)
	binary.LittleEndian.PutUint64(body[48:56], 1234) // EndOfFile
	fileID := [16]byte{0xAA, 0xBB, 0xCC}
	copy(body[64:80], fileID[:])

	resp, err := DecodeCreateResponse(body)
	if err != nil {
		t.Fatalf("DecodeCreateResponse() error = %v", err)
	}
	if resp.CreateAction != types.FileOpened {
		t.Errorf("CreateAction = %d", resp.CreateAction)
	}
	if resp.EndOfFile != 1234 {
		t.Errorf("EndOfFile = %d", resp.EndOfFile)
	}
	if resp.FileID != fileID {
		t.Errorf("FileID = %x", resp.FileID)
	}
}

func TestDecodeReadResponse(t *testing.T) {
	data := []byte("payload bytes")
	body := make([]byte, 16+1+len(data))
	binary.LittleEndian.PutUint16(body[0:2], 17)
	body[2] = header.HeaderSize + 17 // DataOffset
	binary.LittleEndian.PutUint32(body[4:8], uint32(len(data)))
	copy(body[17:], data)

	resp, err := DecodeReadResponse(body)
	if err != nil {
		t.Fatalf("DecodeReadResponse() error = %v", err)
	}
	if !bytes.Equal(resp.Data, data) {
		t.Errorf("Data = %q, want %q", resp.Data, data)
	}
}

func TestDecodeResponses_TooShort(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]byte) error
	}{
		{"Negotiate", func(b []byte) error { _, err := DecodeNegotiateResponse(b); return err }},
		{"SessionSetup", func(b []byte) error { _, err := DecodeSessionSetupResponse(b); return err }},
		{"TreeConnect", func(b []byte) error { _, err := DecodeTreeConnectResponse(b); return err }},
		{"Create", func(b []byte) error { _, err := DecodeCreateResponse(b); return err }},
		{"Close", func(b []byte) error { _, err := DecodeCloseResponse(b); return err }},
		{"Read", func(b []byte) error { _, err := DecodeReadResponse(b); return err }},
		{"Write", func(b []byte) error { _, err := DecodeWriteResponse(b); return err }},
		{"QueryDirectory", func(b []byte) error { _, err := DecodeQueryDirectoryResponse(b); return err }},
		{"QueryInfo", func(b []byte) error { _, err := DecodeQueryInfoResponse(b); return err }},
		{"Ioctl", func(b []byte) error { _, err := DecodeIoctlResponse(b); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn([]byte{0x01})
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeSessionSetupResponse_BadBufferOffset(t *testing.T) {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint16(body[0:2], 9)
	binary.LittleEndian.PutUint16(body[4:6], 4096) // offset out of range
	binary.LittleEndian.PutUint16(body[6:8], 32)

	_, err := DecodeSessionSetupResponse(body)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}

func TestDecodeFileIdBothDirectoryInfo(t *testing.T) {
	buildEntry := func(name string, attrs uint32, next bool) []byte {
		encoded := encodeUTF16LE(name)
		size := fileIdBothDirInfoFixed + len(encoded)
		padded := aligned8(size)
		rec := make([]byte, padded)
		if next {
			binary.LittleEndian.PutUint32(rec[0:4], uint32(padded))
		}
		binary.LittleEndian.PutUint32(rec[56:60], attrs)
		binary.LittleEndian.PutUint32(rec[60:64], uint32(len(encoded)))
		copy(rec[fileIdBothDirInfoFixed:], encoded)
		return rec[:aligned8(size)]
	}

	data := append(buildEntry("subdir", types.FileAttributeDirectory, true),
		buildEntry("file.txt", types.FileAttributeNormal, false)...)

	entries, err := DecodeFileIdBothDirectoryInfo(data)
	if err != nil {
		t.Fatalf("DecodeFileIdBothDirectoryInfo() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].FileName != "subdir" || !entries[0].IsDir() {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].FileName != "file.txt" || entries[1].IsDir() {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestEncodeFileEndOfFileInfo(t *testing.T) {
	body := EncodeFileEndOfFileInfo(0x12345678)

	if len(body) != 8 {
		t.Fatalf("body length = %d, want 8", len(body))
	}
	if got := binary.LittleEndian.Uint64(body); got != 0x12345678 {
		t.Errorf("EndOfFile = 0x%X, want 0x12345678", got)
	}
}

func TestEncodeFileRenameInfo(t *testing.T) {
	name := `dir\renamed.txt`
	body := EncodeFileRenameInfo(name, true)

	if body[0] != 1 {
		t.Errorf("ReplaceIfExists = %d, want 1", body[0])
	}
	nameLen := binary.LittleEndian.Uint32(body[16:20])
	if int(nameLen) != 2*len(name) {
		t.Errorf("FileNameLength = %d, want %d", nameLen, 2*len(name))
	}
	if len(body) != 20+int(nameLen) {
		t.Fatalf("body length = %d, want %d", len(body), 20+int(nameLen))
	}
	if got := decodeUTF16LE(body[20:]); got != name {
		t.Errorf("FileName = %q, want %q", got, name)
	}

	plain := EncodeFileRenameInfo(name, false)
	if plain[0] != 0 {
		t.Errorf("ReplaceIfExists = %d, want 0", plain[0])
	}
}

func TestUTF16RoundTrip(t *testing.T) {
	inputs := []string{"", "a", "file.txt", `dir\sub\file`, "日本語", "emoji 🎉"}
	for _, s := range inputs {
		if got := decodeUTF16LE(encodeUTF16LE(s)); got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}
