//go:build linux || darwin || freebsd || netbsd || openbsd

package term

import (
	"errors"

	"golang.org/x/sys/unix"
)

// makeRaw puts the terminal on fd into non-canonical, non-echoing mode
// with reads that return immediately, and returns a function that puts
// the previous mode back.
func makeRaw(fd int) (restore func() error, err error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		err = errors.Join(ErrNotTerminal, err)
		return
	}

	saved := *termios
	state := *termios

	state.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	state.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	state.Cflag &^= unix.CSIZE | unix.PARENB
	state.Cflag |= unix.CS8

	state.Cc[unix.VMIN] = 0
	state.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, &state)
	if err != nil {
		return
	}

	restore = func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, &saved)
	}

	return
}
