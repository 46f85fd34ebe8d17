// @focus: #terminal { ansi }
package terminal

import (
	"bufio"
)

// Pre-allocated ANSI sequence fragments
var (
	csi = []byte("\x1b[")

	// SaveCursor uses DECSC, supported wider than CSI s
	SaveCursor = []byte("\x1b7")

	ClearScreen = []byte("\x1b[2J")
	CursorHome  = []byte("\x1b[H")
	HideCursor  = []byte("\x1b[?25l")
	ShowCursor  = []byte("\x1b[?25h")
	EraseLine   = []byte("\x1b[2K")
	EraseToEOL  = []byte("\x1b[K")
	SGRReset    = []byte("\x1b[0m")

	// DeviceStatusReport asks for the cursor position, reply is ESC [ row ; col R
	DeviceStatusReport = []byte("\x1b[6n")

	csiAutoWrapOn   = []byte("\x1b[?7h")
	csiAltScreenOff = []byte("\x1b[?1049l")

	oscTitle = []byte("\x1b]2;")
	bel      = []byte("\x07")
)

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	w.Write(buf[i:])
}

// writeCSI writes ESC [ n final, omitting n when it is 1
func writeCSI(w *bufio.Writer, n int, final byte) {
	w.Write(csi)
	if n != 1 {
		writeInt(w, n)
	}
	w.WriteByte(final)
}

// WriteCursorUp moves the cursor up n rows, no-op for n <= 0
func WriteCursorUp(w *bufio.Writer, n int) {
	if n > 0 {
		writeCSI(w, n, 'A')
	}
}

// WriteCursorDown moves the cursor down n rows without scrolling
func WriteCursorDown(w *bufio.Writer, n int) {
	if n > 0 {
		writeCSI(w, n, 'B')
	}
}

// WriteCursorForward moves the cursor right n columns
func WriteCursorForward(w *bufio.Writer, n int) {
	if n > 0 {
		writeCSI(w, n, 'C')
	}
}

// WriteCursorBack moves the cursor left n columns
func WriteCursorBack(w *bufio.Writer, n int) {
	if n > 0 {
		writeCSI(w, n, 'D')
	}
}

// WriteMove moves the cursor by a relative offset, positive dy is down
func WriteMove(w *bufio.Writer, dx, dy int) {
	if dx > 0 {
		WriteCursorForward(w, dx)
	} else if dx < 0 {
		WriteCursorBack(w, -dx)
	}
	if dy > 0 {
		WriteCursorDown(w, dy)
	} else if dy < 0 {
		WriteCursorUp(w, -dy)
	}
}

// WriteEraseChars blanks n characters from the cursor without moving it (ECH)
func WriteEraseChars(w *bufio.Writer, n int) {
	if n > 0 {
		w.Write(csi)
		writeInt(w, n)
		w.WriteByte('X')
	}
}

// WriteTitle sets the window title via OSC 2, control bytes in title are dropped
func WriteTitle(w *bufio.Writer, title string) {
	w.Write(oscTitle)
	for i := 0; i < len(title); i++ {
		if c := title[i]; c >= 0x20 && c != 0x7f {
			w.WriteByte(c)
		}
	}
	w.Write(bel)
}
