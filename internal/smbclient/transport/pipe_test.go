package transport

import (
	"errors"
	"io"
	"testing"
)

func TestPipe_ReadWouldBlockWhenEmpty(t *testing.T) {
	p := NewPipe()

	buf := make([]byte, 16)
	_, err := p.Read(buf)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("Read on empty pipe = %v, want ErrWouldBlock", err)
	}
}

func TestPipe_ReadChunking(t *testing.T) {
	p := NewPipe()
	p.ReadChunk = 2
	p.Inject([]byte{1, 2, 3, 4, 5})

	var got []byte
	buf := make([]byte, 16)
	for {
		n, err := p.Read(buf)
		if errors.Is(err, ErrWouldBlock) {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n > 2 {
			t.Fatalf("Read() = %d bytes, chunk limit is 2", n)
		}
		got = append(got, buf[:n]...)
	}
	if len(got) != 5 {
		t.Fatalf("reassembled %d bytes, want 5", len(got))
	}
}

func TestPipe_EOFAfterRemoteCloseDrained(t *testing.T) {
	p := NewPipe()
	p.Inject([]byte{1, 2})
	p.CloseRemote()

	buf := make([]byte, 16)
	n, err := p.Read(buf)
	if err != nil || n != 2 {
		t.Fatalf("Read() = %d, %v; buffered bytes must survive remote close", n, err)
	}
	if _, err := p.Read(buf); !errors.Is(err, io.EOF) {
		t.Fatalf("Read after drain = %v, want io.EOF", err)
	}
}

func TestPipe_WriteCollectsOutbound(t *testing.T) {
	p := NewPipe()

	n, err := p.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if string(p.TakeOutbound()) != "hello" {
		t.Fatal("TakeOutbound did not return written bytes")
	}
	if len(p.TakeOutbound()) != 0 {
		t.Fatal("TakeOutbound must clear the buffer")
	}
}

func TestPipe_WriteBlocked(t *testing.T) {
	p := NewPipe()
	p.WriteBlocked = true

	if _, err := p.Write([]byte("x")); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("blocked Write = %v, want ErrWouldBlock", err)
	}

	p.WriteBlocked = false
	if _, err := p.Write([]byte("x")); err != nil {
		t.Fatalf("unblocked Write = %v", err)
	}
}

func TestPipe_ClosedReturnsErrClosed(t *testing.T) {
	p := NewPipe()
	if err := p.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if _, err := p.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("Read after close = %v, want ErrClosed", err)
	}
	if _, err := p.Write([]byte{1}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Write after close = %v, want ErrClosed", err)
	}
}
