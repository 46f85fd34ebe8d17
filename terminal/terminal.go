package terminal

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is a terminal device
// Writers that are not files are never terminals
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// EmergencyReset restores a usable terminal after a crash
// Safe to call from any state, errors are ignored
func EmergencyReset(w io.Writer) {
	w.Write(csiMouseMotionOff)
	w.Write(csiMouseDragOff)
	w.Write(csiMouseClickOff)
	w.Write(csiMouseSGROff)

	w.Write(ShowCursor)
	w.Write(csiAltScreenOff)
	w.Write(SGRReset)
	w.Write(csiAutoWrapOn)
	w.Write([]byte("\r\n"))

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// escape sequences alone don't restore termios
	resetTerminalMode()
}
