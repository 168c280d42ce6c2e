//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package term

func makeRaw(fd int) (restore func() error, err error) {
	err = ErrNotTerminal
	return
}
