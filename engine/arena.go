package engine

import (
	"fmt"
	"unsafe"
)

// DefaultArenaSize is the initial capacity of each frame arena
const DefaultArenaSize = 64 * 1024

// Arena is a per-frame scratch text buffer
// Strings returned by Printf, Since and String alias arena memory and
// stay valid only until the next Reset; Reset keeps the capacity
type Arena struct {
	buf []byte
}

// NewArena returns an arena with the given initial capacity
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultArenaSize
	}
	return &Arena{buf: make([]byte, 0, capacity)}
}

// Reset empties the arena, invalidating every string handed out
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}

// Len returns the number of bytes in use
func (a *Arena) Len() int {
	return len(a.buf)
}

// Cap returns the current capacity
func (a *Arena) Cap() int {
	return cap(a.buf)
}

// Write appends p
func (a *Arena) Write(p []byte) (int, error) {
	a.buf = append(a.buf, p...)
	return len(p), nil
}

// WriteString appends s
func (a *Arena) WriteString(s string) (int, error) {
	a.buf = append(a.buf, s...)
	return len(s), nil
}

// WriteByte appends c
func (a *Arena) WriteByte(c byte) error {
	a.buf = append(a.buf, c)
	return nil
}

// Printf appends the formatted text and returns it
func (a *Arena) Printf(format string, args ...any) string {
	start := len(a.buf)
	a.buf = fmt.Appendf(a.buf, format, args...)
	return a.view(start)
}

// Mark returns the current offset, for use with Since
func (a *Arena) Mark() int {
	return len(a.buf)
}

// Since returns everything appended after mark
func (a *Arena) Since(mark int) string {
	if mark < 0 || mark > len(a.buf) {
		mark = len(a.buf)
	}
	return a.view(mark)
}

// String returns the whole arena contents
func (a *Arena) String() string {
	return a.view(0)
}

// Bytes returns the arena contents without copying
func (a *Arena) Bytes() []byte {
	return a.buf
}

func (a *Arena) view(start int) string {
	n := len(a.buf) - start
	if n <= 0 {
		return ""
	}
	return unsafe.String(&a.buf[start], n)
}

// FrameArenas double-buffers frame memory
// The inactive arena keeps the previous frame's text intact while the
// active one is rebuilt
type FrameArenas struct {
	arenas [2]*Arena
	active int
}

// NewFrameArenas allocates both arenas once
func NewFrameArenas(capacity int) *FrameArenas {
	return &FrameArenas{
		arenas: [2]*Arena{NewArena(capacity), NewArena(capacity)},
	}
}

// Next makes the other arena active and resets it
func (f *FrameArenas) Next() *Arena {
	f.active = 1 - f.active
	a := f.arenas[f.active]
	a.Reset()
	return a
}

// Active returns the arena in use for the current frame
func (f *FrameArenas) Active() *Arena {
	return f.arenas[f.active]
}

// Previous returns the arena holding the last frame
func (f *FrameArenas) Previous() *Arena {
	return f.arenas[1-f.active]
}
