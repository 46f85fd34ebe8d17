// @focus: #render { diff }
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lixenwraith/tickterm/terminal"
)

// DefaultMaxLines bounds the number of physical rows a frame may occupy
const DefaultMaxLines = 128

// ErrTooManyLines is returned for a frame taller than the line cache
var ErrTooManyLines = errors.New("render: frame exceeds line cache capacity")

// Expander turns markup in a line into terminal output at write time
type Expander interface {
	Expand(line string) string
}

// CursorQuerier reads back the terminal cursor position
type CursorQuerier interface {
	CursorPosition() (terminal.Pos, error)
}

// Options configures a Renderer
type Options struct {
	// Fullscreen homes the cursor before every frame instead of rewinding
	Fullscreen bool
	// MaxLines is the line cache capacity, DefaultMaxLines when zero
	MaxLines int
	// Expander resolves markup; lines are written verbatim when nil
	Expander Expander
	// Cursor enables soft wrap detection; without it every line is one row
	Cursor CursorQuerier
}

// lineEntry is one cached row
// Text is the pre-expansion source so identical markup compares equal
// newline is false only for the last row of a frame that ended without one,
// the terminal has no row below it yet
type lineEntry struct {
	text    string
	rows    int
	set     bool
	newline bool
}

// Renderer reconciles successive frames with the terminal line by line
// Rows are addressed relative to the anchor, the first row of the frame
type Renderer struct {
	w        *bufio.Writer
	opts     Options
	cache    []lineEntry
	count    int // physical rows used by the last frame
	cursor   int // cursor row after the last frame
	frames   uint64
	lastSize int
	queryErr error
}

// New returns a renderer writing to w
func New(w io.Writer, opts Options) *Renderer {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	return &Renderer{
		w:     bufio.NewWriterSize(w, 16*1024),
		opts:  opts,
		cache: make([]lineEntry, opts.MaxLines),
	}
}

// Lines returns the number of physical rows of the last frame
func (r *Renderer) Lines() int {
	return r.count
}

// Frames returns the number of frames written
func (r *Renderer) Frames() uint64 {
	return r.frames
}

// LastSize returns the byte count emitted for the last frame
func (r *Renderer) LastSize() int {
	return r.lastSize
}

// Invalidate forces every row to be rewritten on the next frame
func (r *Renderer) Invalidate() {
	for i := range r.cache {
		r.cache[i].set = false
	}
}

// Write draws frame, touching only rows that differ from the last frame
// frame holds "\n"-separated lines, the last one may lack a newline
func (r *Renderer) Write(frame string) error {
	startSize := r.w.Buffered()
	flushed := 0

	if r.opts.Fullscreen {
		r.w.Write(terminal.CursorHome)
	} else {
		terminal.WriteCursorUp(r.w, r.cursor)
		r.w.Write(terminal.SaveCursor)
	}
	r.cursor = 0

	row := 0
	for rest := frame; rest != ""; {
		line := rest
		hasNewline := false
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i]
			rest = rest[i+1:]
			hasNewline = true
		} else {
			rest = ""
		}

		if row >= len(r.cache) {
			r.w.Flush()
			return fmt.Errorf("%w: more than %d rows", ErrTooManyLines, len(r.cache))
		}

		prev := r.cache[row]
		same := row < r.count && prev.set && prev.text == line

		var rows int
		if same {
			rows = prev.rows
			switch {
			case hasNewline && prev.newline:
				terminal.WriteCursorDown(r.w, rows)
				r.cursor = row + rows
			case hasNewline:
				// CUD stops at the bottom margin, LF scrolls
				terminal.WriteCursorDown(r.w, rows-1)
				r.w.WriteByte('\n')
				r.cursor = row + rows
			default:
				r.cursor = row
			}
		} else {
			n, err := r.writeLine(line, &flushed)
			if err != nil {
				return err
			}
			rows = n
			if hasNewline {
				r.w.WriteByte('\n')
				r.cursor = row + rows
			} else {
				r.cursor = row + rows - 1
			}
		}

		if row+rows > len(r.cache) {
			r.w.Flush()
			return fmt.Errorf("%w: more than %d rows", ErrTooManyLines, len(r.cache))
		}
		r.cache[row] = lineEntry{text: line, rows: rows, set: true, newline: hasNewline}
		for k := 1; k < rows; k++ {
			r.cache[row+k] = lineEntry{}
		}
		row += rows
	}

	r.eraseSurplus(row)
	r.count = row
	r.frames++

	r.lastSize = flushed + r.w.Buffered() - startSize
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// writeLine rewrites the current row and returns the physical rows it took
func (r *Renderer) writeLine(line string, flushed *int) (int, error) {
	before, haveBefore := r.query(flushed)

	r.w.WriteByte('\r')
	if r.opts.Expander != nil {
		r.w.WriteString(r.opts.Expander.Expand(line))
	} else {
		r.w.WriteString(line)
	}
	r.w.Write(terminal.EraseToEOL)

	if !haveBefore {
		return 1, r.err()
	}
	after, haveAfter := r.query(flushed)
	if err := r.err(); err != nil {
		return 0, err
	}
	if !haveAfter || after.Row <= before.Row {
		return 1, nil
	}
	return 1 + after.Row - before.Row, nil
}

// query flushes pending output and asks for the cursor position
// A missing reply is tolerated, a malformed one is stored as fatal
func (r *Renderer) query(flushed *int) (terminal.Pos, bool) {
	if r.opts.Cursor == nil || r.queryErr != nil {
		return terminal.Pos{}, false
	}
	*flushed += r.w.Buffered()
	if err := r.w.Flush(); err != nil {
		r.queryErr = fmt.Errorf("flush before cursor query: %w", err)
		return terminal.Pos{}, false
	}
	pos, err := r.opts.Cursor.CursorPosition()
	if err != nil {
		if errors.Is(err, terminal.ErrNoCursorReply) {
			log.Printf("render: %v, assuming no wrap", err)
			return terminal.Pos{}, false
		}
		r.queryErr = err
		return terminal.Pos{}, false
	}
	return pos, true
}

func (r *Renderer) err() error {
	if r.queryErr == nil {
		return nil
	}
	err := r.queryErr
	r.queryErr = nil
	return err
}

// eraseSurplus clears rows left over from a taller previous frame
func (r *Renderer) eraseSurplus(count int) {
	if r.count <= count {
		return
	}
	terminal.WriteCursorDown(r.w, count-r.cursor)
	for row := count; row < r.count; row++ {
		if row > count {
			terminal.WriteCursorDown(r.w, 1)
		}
		r.w.WriteByte('\r')
		r.w.Write(terminal.EraseLine)
		r.cache[row] = lineEntry{}
	}
	r.cursor = r.count - 1
}

// Finish leaves the cursor on a fresh row below the last frame
func (r *Renderer) Finish() error {
	if r.cursor < r.count {
		terminal.WriteCursorDown(r.w, r.count-1-r.cursor)
		r.w.WriteString("\r\n")
	} else {
		terminal.WriteCursorUp(r.w, r.cursor-r.count)
		r.w.WriteByte('\r')
	}
	r.cursor = r.count
	return r.w.Flush()
}
