package terminal

import (
	"errors"
	"time"
)

// ErrNotTerminal is returned by Init when input is not a terminal
var ErrNotTerminal = errors.New("terminal: input is not a terminal")

// Backend abstracts the platform terminal used by the runtime
type Backend interface {
	// Lifecycle
	// Init enters raw input mode, Fini restores the prior mode and is safe to call twice
	Init() error
	Fini()

	// Capabilities
	Size() (width, height int)

	// I/O
	// Write writes raw bytes to the terminal output
	Write(p []byte) (int, error)

	// Poll reports whether input is pending; a zero timeout never blocks
	Poll(timeout time.Duration) (bool, error)

	// Read reads pending input, returns io.EOF once input is closed
	Read(p []byte) (int, error)

	// ResizeChan delivers the latest terminal size after a resize
	ResizeChan() <-chan ResizeEvent
}

// ResizeEvent represents a terminal resize
type ResizeEvent struct {
	Width  int
	Height int
}
