//go:build linux || darwin

package logger

import "golang.org/x/sys/unix"

// isTerminal checks if the file descriptor is a terminal
func isTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), termiosRequest)
	return err == nil
}
