//go:build unix

package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"golang.org/x/sys/unix"
)

// resizeHandler turns SIGWINCH into ResizeEvent values
type resizeHandler struct {
	fd      int
	sigCh   chan os.Signal
	eventCh chan ResizeEvent
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func newResizeHandler(fd int) *resizeHandler {
	return &resizeHandler{
		fd:      fd,
		sigCh:   make(chan os.Signal, 1),
		eventCh: make(chan ResizeEvent, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func (r *resizeHandler) start() {
	signal.Notify(r.sigCh, syscall.SIGWINCH)
	go r.watchLoop()
}

func (r *resizeHandler) stop() {
	signal.Stop(r.sigCh)
	close(r.stopCh)
	<-r.doneCh
}

// events holds at most one pending size, the newest wins
func (r *resizeHandler) events() <-chan ResizeEvent {
	return r.eventCh
}

func (r *resizeHandler) watchLoop() {
	defer close(r.doneCh)

	defer func() {
		if p := recover(); p != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mRESIZE HANDLER CRASHED: %v\x1b[0m\r\n", p)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.sigCh:
			w, h := getTerminalSize(r.fd)
			if w <= 0 || h <= 0 {
				continue
			}
			ev := ResizeEvent{Width: w, Height: h}
			select {
			case r.eventCh <- ev:
			default:
				// drop the stale size
				select {
				case <-r.eventCh:
				default:
				}
				r.eventCh <- ev
			}
		}
	}
}

// getTerminalSize returns the terminal size for a given fd
func getTerminalSize(fd int) (int, int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24 // Fallback
	}
	return int(ws.Col), int(ws.Row)
}
