//go:build linux || darwin

package transport

import (
	"time"

	"golang.org/x/sys/unix"
)

// Ready reports which readiness conditions poll observed
type Ready struct {
	Readable bool
	Writable bool
}

// Poll waits until the descriptor is ready for the requested operations or
// the timeout elapses. A negative timeout waits indefinitely; zero returns
// immediately. EINTR is retried.
func Poll(fd int, wantRead, wantWrite bool, timeout time.Duration) (Ready, error) {
	var events int16
	if wantRead {
		events |= unix.POLLIN
	}
	if wantWrite {
		events |= unix.POLLOUT
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}

	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}

	for {
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Ready{}, err
		}
		if n == 0 {
			return Ready{}, nil
		}
		revents := fds[0].Revents
		return Ready{
			// Treat hangup and error conditions as readable so the engine
			// observes EOF through its normal read path.
			Readable: revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0,
			Writable: revents&unix.POLLOUT != 0,
		}, nil
	}
}
