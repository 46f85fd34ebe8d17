//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type unixBackend struct {
	in      *os.File
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State

	resize   *resizeHandler
	noResize chan ResizeEvent
}

// NewBackend returns the unix backend reading stdin and writing to out
// A nil out selects stdout
func NewBackend(out *os.File) Backend {
	if out == nil {
		out = os.Stdout
	}
	return newUnixBackend(os.Stdin, out)
}

func newUnixBackend(in, out *os.File) *unixBackend {
	return &unixBackend{
		in:       in,
		out:      out,
		inFd:     int(in.Fd()),
		outFd:    int(out.Fd()),
		noResize: make(chan ResizeEvent),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	b.oldTerm = old

	// size queries need a tty, output may be redirected
	sizeFd := b.outFd
	if !term.IsTerminal(sizeFd) {
		sizeFd = b.inFd
	}
	b.resize = newResizeHandler(sizeFd)
	b.resize.start()
	return nil
}

func (b *unixBackend) Fini() {
	if b.resize != nil {
		b.resize.stop()
		b.resize = nil
	}
	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
		b.oldTerm = nil
	}
}

func (b *unixBackend) Size() (int, int) {
	if w, h, err := term.GetSize(b.outFd); err == nil {
		return w, h
	}
	return getTerminalSize(b.inFd)
}

func (b *unixBackend) Write(p []byte) (int, error) {
	return b.out.Write(p)
}

func (b *unixBackend) Poll(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{
		{Fd: int32(b.inFd), Events: unix.POLLIN},
	}

	ms := 0
	if timeout > 0 {
		// round up so sub-millisecond waits still wait
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}

	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, fmt.Errorf("poll stdin: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	// POLLHUP without POLLIN still makes the next read return EOF
	return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
}

func (b *unixBackend) Read(p []byte) (int, error) {
	n, err := unix.Read(b.inFd, p)
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return 0, nil
		}
		return 0, fmt.Errorf("read stdin: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (b *unixBackend) ResizeChan() <-chan ResizeEvent {
	if b.resize == nil {
		return b.noResize
	}
	return b.resize.events()
}
