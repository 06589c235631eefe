//go:build linux || darwin

package transport

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultPort is the SMB2 direct-TCP port
const DefaultPort = 445

// TCP is a non-blocking TCP transport over a raw socket. The file
// descriptor is exposed so a poll loop can register readiness interest.
type TCP struct {
	fd     int
	closed bool
}

// Dial opens a non-blocking TCP connection to address, a host or
// host:port with port 445 implied. The connect itself waits up to timeout
// for the handshake; everything after that is non-blocking.
func Dial(address string, timeout time.Duration) (*TCP, error) {
	raddr, err := net.ResolveTCPAddr("tcp", withDefaultPort(address))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", address, err)
	}

	domain := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := raddr.IP.To4(); ip4 != nil {
		sa4 := &unix.SockaddrInet4{Port: raddr.Port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		domain = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: raddr.Port}
		copy(sa6.Addr[:], raddr.IP.To16())
		sa = sa6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblock: %w", err)
	}

	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return nil, fmt.Errorf("connect %q: %w", address, err)
	}

	if err == unix.EINPROGRESS {
		if err := awaitConnect(fd, timeout); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("connect %q: %w", address, err)
		}
	}

	// Latency matters more than throughput for small PDUs
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

	return &TCP{fd: fd}, nil
}

// withDefaultPort appends the SMB2 port to a bare host. Bracketed IPv6
// literals and host:port forms pass through unchanged.
func withDefaultPort(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(strings.Trim(address, "[]"), strconv.Itoa(DefaultPort))
}

// awaitConnect waits for an in-progress connect to finish and checks the
// socket error.
func awaitConnect(fd int, timeout time.Duration) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	ms := int(timeout.Milliseconds())
	if timeout <= 0 {
		ms = -1
	}

	for {
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("connect timed out after %v", timeout)
		}
		break
	}

	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soErr != 0 {
		return unix.Errno(soErr)
	}
	return nil
}

// FD returns the underlying file descriptor for poll registration
func (t *TCP) FD() int {
	return t.fd
}

// Read reads available bytes without blocking
func (t *TCP) Read(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	n, err := unix.Read(t.fd, p)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, ErrWouldBlock
	}
	if err != nil {
		return 0, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes as many bytes as the socket accepts without blocking
func (t *TCP) Write(p []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	n, err := unix.Write(t.fd, p)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, ErrWouldBlock
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the socket
func (t *TCP) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return unix.Close(t.fd)
}
