package signing

import (
	"testing"
)

func TestNewSigningKey(t *testing.T) {
	t.Run("ShortKeyIsPadded", func(t *testing.T) {
		sk := NewSigningKey([]byte{1, 2, 3})
		if !sk.IsValid() {
			t.Error("key with non-zero bytes should be valid")
		}
	})

	t.Run("LongKeyIsTruncated", func(t *testing.T) {
		long := make([]byte, 32)
		for i := range long {
			long[i] = byte(i + 1)
		}
		sk := NewSigningKey(long)
		truncated := NewSigningKey(long[:16])
		msg := make([]byte, SMB2HeaderSize)
		if sk.Sign(msg) != truncated.Sign(msg) {
			t.Error("keys longer than 16 bytes should be truncated")
		}
	})

	t.Run("ZeroKeyIsInvalid", func(t *testing.T) {
		sk := NewSigningKey(nil)
		if sk.IsValid() {
			t.Error("all-zero key should be invalid")
		}
	})
}

func TestSignAndVerify(t *testing.T) {
	sk := NewSigningKey([]byte("0123456789abcdef"))

	msg := make([]byte, SMB2HeaderSize+32)
	for i := range msg {
		msg[i] = byte(i)
	}

	sk.SignMessage(msg)

	if msg[16]&0x08 == 0 {
		t.Error("signed flag not set")
	}
	if !sk.Verify(msg) {
		t.Error("signature should verify")
	}

	t.Run("TamperedBodyFails", func(t *testing.T) {
		tampered := make([]byte, len(msg))
		copy(tampered, msg)
		tampered[SMB2HeaderSize+5] ^= 0xFF
		if sk.Verify(tampered) {
			t.Error("tampered message should not verify")
		}
	})

	t.Run("TamperedSignatureFails", func(t *testing.T) {
		tampered := make([]byte, len(msg))
		copy(tampered, msg)
		tampered[SignatureOffset] ^= 0x01
		if sk.Verify(tampered) {
			t.Error("tampered signature should not verify")
		}
	})

	t.Run("WrongKeyFails", func(t *testing.T) {
		other := NewSigningKey([]byte("fedcba9876543210"))
		if other.Verify(msg) {
			t.Error("wrong key should not verify")
		}
	})
}

func TestSignIgnoresExistingSignature(t *testing.T) {
	sk := NewSigningKey([]byte("0123456789abcdef"))

	msg := make([]byte, SMB2HeaderSize)
	clean := sk.Sign(msg)

	// Fill the signature field and sign again; the result must match
	for i := SignatureOffset; i < SignatureOffset+SignatureSize; i++ {
		msg[i] = 0xEE
	}
	if sk.Sign(msg) != clean {
		t.Error("Sign should zero the signature field before computing the MAC")
	}
}

func TestSignMessage_TooShort(t *testing.T) {
	sk := NewSigningKey([]byte("0123456789abcdef"))
	short := make([]byte, 10)
	sk.SignMessage(short) // must not panic
	if sk.Verify(short) {
		t.Error("short message should not verify")
	}
}
