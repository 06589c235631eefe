package header

import (
	"bytes"
	"testing"

	"github.com/marmos91/smbcore/internal/protocol/smb/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    *SMB2Header
		wantErr error
	}{
		{
			name:    "TooShort",
			data:    make([]byte, HeaderSize-1),
			want:    nil,
			wantErr: ErrMessageTooShort,
		},
		{
			name: "SMB1ProtocolID",
			data: func() []byte {
				d := make([]byte, HeaderSize)
				d[0] = 0xFF
				d[1] = 'S'
				d[2] = 'M'
				d[3] = 'B'
				return d
			}(),
			want:    nil,
			wantErr: ErrInvalidProtocolID,
		},
		{
			name: "InvalidStructureSize",
			data: func() []byte {
				d := make([]byte, HeaderSize)
				d[0] = 0xFE
				d[1] = 'S'
				d[2] = 'M'
				d[3] = 'B'
				// Structure size left zero
				return d
			}(),
			want:    nil,
			wantErr: ErrInvalidHeaderSize,
		},
		{
			name: "ValidNegotiateResponse",
			data: func() []byte {
				d := make([]byte, HeaderSize)
				d[0] = 0xFE
				d[1] = 'S'
				d[2] = 'M'
				d[3] = 'B'
				d[4] = 0x40 // StructureSize = 64
				d[6] = 0x01 // CreditCharge = 1
				// Command = NEGOTIATE (0)
				d[14] = 0x1F // Credits = 31
				d[16] = 0x01 // Flags = server-to-redir
				d[24] = 0x01 // MessageID = 1
				return d
			}(),
			want: &SMB2Header{
				ProtocolID:    [4]byte{0xFE, 'S', 'M', 'B'},
				StructureSize: 64,
				CreditCharge:  1,
				Status:        types.StatusSuccess,
				Command:       types.SMB2Negotiate,
				Credits:       31,
				Flags:         types.SMB2FlagsServerToRedir,
				MessageID:     1,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.data)

			if err != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.want == nil {
				if got != nil {
					t.Errorf("Parse() = %v, want nil", got)
				}
				return
			}

			if got.StructureSize != tt.want.StructureSize {
				t.Errorf("StructureSize = %d, want %d", got.StructureSize, tt.want.StructureSize)
			}
			if got.CreditCharge != tt.want.CreditCharge {
				t.Errorf("CreditCharge = %d, want %d", got.CreditCharge, tt.want.CreditCharge)
			}
			if got.Status != tt.want.Status {
				t.Errorf("Status = 0x%08X, want 0x%08X", got.Status, tt.want.Status)
			}
			if got.Command != tt.want.Command {
				t.Errorf("Command = %d, want %d", got.Command, tt.want.Command)
			}
			if got.Credits != tt.want.Credits {
				t.Errorf("Credits = %d, want %d", got.Credits, tt.want.Credits)
			}
			if got.Flags != tt.want.Flags {
				t.Errorf("Flags = 0x%08X, want 0x%08X", got.Flags, tt.want.Flags)
			}
			if got.MessageID != tt.want.MessageID {
				t.Errorf("MessageID = %d, want %d", got.MessageID, tt.want.MessageID)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	commands := []uint16{
		types.SMB2Negotiate,
		types.SMB2SessionSetup,
		types.SMB2Create,
		types.SMB2Read,
		types.SMB2Write,
		types.SMB2Close,
	}

	for _, cmd := range commands {
		t.Run(types.CommandName(cmd), func(t *testing.T) {
			original := &SMB2Header{
				StructureSize: HeaderSize,
				CreditCharge:  5,
				Status:        types.StatusMoreProcessingRequired,
				Command:       cmd,
				Credits:       512,
				Flags:         types.SMB2FlagsServerToRedir | types.SMB2FlagsSigned,
				NextCommand:   128,
				MessageID:     999999,
				Reserved:      12345,
				TreeID:        42,
				SessionID:     0xDEADBEEF,
				Signature:     [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			}

			encoded := original.Encode()
			if len(encoded) != HeaderSize {
				t.Fatalf("Encoded length = %d, want %d", len(encoded), HeaderSize)
			}

			decoded, err := Parse(encoded)
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}

			if decoded.CreditCharge != original.CreditCharge {
				t.Errorf("CreditCharge mismatch")
			}
			if decoded.Status != original.Status {
				t.Errorf("Status mismatch: got 0x%08X, want 0x%08X", decoded.Status, original.Status)
			}
			if decoded.Command != original.Command {
				t.Errorf("Command mismatch: got %d, want %d", decoded.Command, original.Command)
			}
			if decoded.Credits != original.Credits {
				t.Errorf("Credits mismatch")
			}
			if decoded.Flags != original.Flags {
				t.Errorf("Flags mismatch")
			}
			if decoded.NextCommand != original.NextCommand {
				t.Errorf("NextCommand mismatch")
			}
			if decoded.MessageID != original.MessageID {
				t.Errorf("MessageID mismatch")
			}
			if decoded.TreeID != original.TreeID {
				t.Errorf("TreeID mismatch")
			}
			if decoded.SessionID != original.SessionID {
				t.Errorf("SessionID mismatch")
			}
			if !bytes.Equal(decoded.Signature[:], original.Signature[:]) {
				t.Errorf("Signature mismatch")
			}
		})
	}
}

func TestNewRequestHeader(t *testing.T) {
	h := NewRequestHeader(types.SMB2TreeConnect)

	if h.StructureSize != HeaderSize {
		t.Errorf("StructureSize = %d, want %d", h.StructureSize, HeaderSize)
	}
	if h.Command != types.SMB2TreeConnect {
		t.Errorf("Command = %d, want %d", h.Command, types.SMB2TreeConnect)
	}
	if h.CreditCharge != 1 {
		t.Errorf("CreditCharge = %d, want 1", h.CreditCharge)
	}
	if h.IsResponse() {
		t.Error("request header should not have the response flag set")
	}
}

func TestIsSMB2Message(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{
			name: "ValidSMB2",
			data: []byte{0xFE, 'S', 'M', 'B', 0x40, 0x00},
			want: true,
		},
		{
			name: "SMB1",
			data: []byte{0xFF, 'S', 'M', 'B', 0x00, 0x00},
			want: false,
		},
		{
			name: "TooShort",
			data: []byte{0xFE, 'S', 'M'},
			want: false,
		},
		{
			name: "Empty",
			data: []byte{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSMB2Message(tt.data); got != tt.want {
				t.Errorf("IsSMB2Message() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSMB2Header_Flags(t *testing.T) {
	t.Run("IsResponse", func(t *testing.T) {
		h := &SMB2Header{Flags: types.SMB2FlagsServerToRedir}
		if !h.IsResponse() {
			t.Error("IsResponse() should return true when the response flag is set")
		}

		h2 := &SMB2Header{Flags: 0}
		if h2.IsResponse() {
			t.Error("IsResponse() should return false when the response flag is not set")
		}
	})

	t.Run("IsSigned", func(t *testing.T) {
		h := &SMB2Header{Flags: types.SMB2FlagsSigned}
		if !h.IsSigned() {
			t.Error("IsSigned() should return true when the signed flag is set")
		}
	})

	t.Run("IsRelated", func(t *testing.T) {
		h := &SMB2Header{Flags: types.SMB2FlagsRelatedOps}
		if !h.IsRelated() {
			t.Error("IsRelated() should return true when the related flag is set")
		}
	})

	t.Run("IsAsync", func(t *testing.T) {
		h := &SMB2Header{Flags: types.SMB2FlagsAsyncCommand}
		if !h.IsAsync() {
			t.Error("IsAsync() should return true when the async flag is set")
		}
	})
}

func TestSMB2Header_IsInterim(t *testing.T) {
	tests := []struct {
		name   string
		flags  uint32
		status uint32
		want   bool
	}{
		{
			name:   "AsyncPending",
			flags:  types.SMB2FlagsServerToRedir | types.SMB2FlagsAsyncCommand,
			status: types.StatusPending,
			want:   true,
		},
		{
			name:   "AsyncFinal",
			flags:  types.SMB2FlagsServerToRedir | types.SMB2FlagsAsyncCommand,
			status: types.StatusSuccess,
			want:   false,
		},
		{
			name:   "SyncPendingStatus",
			flags:  types.SMB2FlagsServerToRedir,
			status: types.StatusPending,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &SMB2Header{Flags: tt.flags, Status: tt.status}
			if got := h.IsInterim(); got != tt.want {
				t.Errorf("IsInterim() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSMB2Header_AsyncID(t *testing.T) {
	h := &SMB2Header{
		Flags:    types.SMB2FlagsAsyncCommand,
		Reserved: 0x04030201,
		TreeID:   0x08070605,
	}
	want := uint64(0x0807060504030201)
	if got := h.AsyncID(); got != want {
		t.Errorf("AsyncID() = 0x%016X, want 0x%016X", got, want)
	}
}

func TestSMB2Header_CommandName(t *testing.T) {
	tests := []struct {
		command uint16
		want    string
	}{
		{types.SMB2Negotiate, "NEGOTIATE"},
		{types.SMB2SessionSetup, "SESSION_SETUP"},
		{types.SMB2Logoff, "LOGOFF"},
		{types.SMB2TreeConnect, "TREE_CONNECT"},
		{types.SMB2TreeDisconnect, "TREE_DISCONNECT"},
		{types.SMB2Create, "CREATE"},
		{types.SMB2Close, "CLOSE"},
		{types.SMB2Flush, "FLUSH"},
		{types.SMB2Read, "READ"},
		{types.SMB2Write, "WRITE"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h := &SMB2Header{Command: tt.command}
			if got := h.CommandName(); got != tt.want {
				t.Errorf("CommandName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSMB2Header_StatusName(t *testing.T) {
	tests := []struct {
		status uint32
		want   string
	}{
		{types.StatusSuccess, "STATUS_SUCCESS"},
		{types.StatusPending, "STATUS_PENDING"},
		{types.StatusMoreProcessingRequired, "STATUS_MORE_PROCESSING_REQUIRED"},
		{types.StatusAccessDenied, "STATUS_ACCESS_DENIED"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h := &SMB2Header{Status: tt.status}
			if got := h.StatusName(); got != tt.want {
				t.Errorf("StatusName() = %v, want %v", got, tt.want)
			}
		})
	}
}
