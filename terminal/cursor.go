package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrBadCursorReply is returned for a cursor position report that cannot be parsed
	ErrBadCursorReply = errors.New("terminal: malformed cursor position reply")
	// ErrNoCursorReply is returned when the terminal did not answer in time
	ErrNoCursorReply = errors.New("terminal: no cursor position reply")
)

// Pos is a 1-based cursor position as reported by the terminal
type Pos struct {
	Row int
	Col int
}

// DefaultCursorTimeout bounds the wait for a cursor position report
const DefaultCursorTimeout = 50 * time.Millisecond

// InputSource is the read side of a terminal
type InputSource interface {
	// Poll reports whether input is pending, waiting at most timeout
	Poll(timeout time.Duration) (bool, error)
	Read(p []byte) (int, error)
}

// CursorProbe queries the cursor position with a device status report
// Input bytes that arrive while waiting for the reply are kept for the decoder
type CursorProbe struct {
	out     io.Writer
	in      InputSource
	timeout time.Duration
	now     func() time.Time

	buf     []byte
	pending []byte
}

// NewCursorProbe returns a probe writing requests to out and reading replies from in
func NewCursorProbe(out io.Writer, in InputSource, timeout time.Duration) *CursorProbe {
	if timeout <= 0 {
		timeout = DefaultCursorTimeout
	}
	return &CursorProbe{
		out:     out,
		in:      in,
		timeout: timeout,
		now:     time.Now,
		buf:     make([]byte, 64),
	}
}

// TakePending returns input bytes read while waiting for replies and clears them
func (p *CursorProbe) TakePending() []byte {
	if len(p.pending) == 0 {
		return nil
	}
	out := p.pending
	p.pending = nil
	return out
}

// CursorPosition writes ESC [ 6 n and waits for ESC [ row ; col R
func (p *CursorProbe) CursorPosition() (Pos, error) {
	if _, err := p.out.Write(DeviceStatusReport); err != nil {
		return Pos{}, fmt.Errorf("write cursor query: %w", err)
	}

	deadline := p.now().Add(p.timeout)
	var got []byte
	for {
		remaining := deadline.Sub(p.now())
		if remaining <= 0 {
			p.pending = append(p.pending, got...)
			return Pos{}, ErrNoCursorReply
		}

		ready, err := p.in.Poll(remaining)
		if err != nil {
			p.pending = append(p.pending, got...)
			return Pos{}, fmt.Errorf("poll cursor reply: %w", err)
		}
		if !ready {
			continue
		}

		n, err := p.in.Read(p.buf)
		if n > 0 {
			got = append(got, p.buf[:n]...)
			if _, end, _, _ := findCursorReply(got); end > 0 {
				got = p.drainReady(got)
			}
			start, end, pos, perr := lastCursorReply(got)
			if perr != nil {
				p.pending = append(p.pending, got[:start]...)
				p.pending = append(p.pending, got[end:]...)
				return Pos{}, perr
			}
			if end > 0 {
				p.pending = append(p.pending, got[:start]...)
				p.pending = append(p.pending, got[end:]...)
				return pos, nil
			}
		}
		if err != nil {
			p.pending = append(p.pending, got...)
			if errors.Is(err, io.EOF) {
				return Pos{}, ErrNoCursorReply
			}
			return Pos{}, fmt.Errorf("read cursor reply: %w", err)
		}
	}
}

// drainReady appends input that is already waiting without blocking
// A modified F3 (ESC [ 1 ; m R) looks like a report; when it arrives ahead
// of the reply both are read here and the last report is taken
func (p *CursorProbe) drainReady(got []byte) []byte {
	for {
		ready, err := p.in.Poll(0)
		if err != nil || !ready {
			return got
		}
		n, err := p.in.Read(p.buf)
		got = append(got, p.buf[:n]...)
		if err != nil || n == 0 {
			return got
		}
	}
}

// lastCursorReply locates the last complete ESC [ ... R report in data
func lastCursorReply(data []byte) (start, end int, pos Pos, err error) {
	off := 0
	for {
		s, e, ps, perr := findCursorReply(data[off:])
		if e == 0 {
			return start, end, pos, err
		}
		start, end, pos, err = off+s, off+e, ps, perr
		off += e
	}
}

// findCursorReply locates the first ESC [ ... R report in data
// end is 0 when no complete report is present
func findCursorReply(data []byte) (start, end int, pos Pos, err error) {
	off := 0
	for {
		i := bytes.Index(data[off:], []byte("\x1b["))
		if i < 0 {
			return 0, 0, Pos{}, nil
		}
		i += off
		j := i + 2
		for j < len(data) && (data[j] >= '0' && data[j] <= '9' || data[j] == ';') {
			j++
		}
		if j == len(data) {
			// incomplete, wait for more bytes
			return 0, 0, Pos{}, nil
		}
		if data[j] != 'R' {
			off = i + 2
			continue
		}
		pos, err = parseCursorReply(data[i+2 : j])
		return i, j + 1, pos, err
	}
}

// parseCursorReply parses the "row;col" parameters of a report
func parseCursorReply(params []byte) (Pos, error) {
	sep := bytes.IndexByte(params, ';')
	if sep <= 0 || sep == len(params)-1 || bytes.IndexByte(params[sep+1:], ';') >= 0 {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCursorReply, params)
	}
	row, col := 0, 0
	for _, c := range params[:sep] {
		row = row*10 + int(c-'0')
	}
	for _, c := range params[sep+1:] {
		col = col*10 + int(c-'0')
	}
	if row < 1 || col < 1 {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCursorReply, params)
	}
	return Pos{Row: row, Col: col}, nil
}
