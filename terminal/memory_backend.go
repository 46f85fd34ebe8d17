package terminal

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"time"
)

// MemoryBackend is an in-process Backend for tests and headless runs
// Input is queued with Feed, output accumulates in memory
type MemoryBackend struct {
	mu       sync.Mutex
	input    [][]byte
	closed   bool
	output   bytes.Buffer
	width    int
	height   int
	resizeCh chan ResizeEvent
	initErr  error

	inited    bool
	finiCount int

	// CursorReply, when set, answers each cursor query written to the backend
	CursorReply func() Pos
}

// NewMemoryBackend returns a backend with the given size
func NewMemoryBackend(width, height int) *MemoryBackend {
	return &MemoryBackend{
		width:    width,
		height:   height,
		resizeCh: make(chan ResizeEvent, 1),
	}
}

// FailInit makes the next Init return err
func (m *MemoryBackend) FailInit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
}

func (m *MemoryBackend) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.inited = true
	return nil
}

func (m *MemoryBackend) Fini() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inited = false
	m.finiCount++
}

// FiniCount reports how many times Fini was called
func (m *MemoryBackend) FiniCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finiCount
}

func (m *MemoryBackend) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

func (m *MemoryBackend) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.output.Write(p)
	if m.CursorReply != nil {
		for i := bytes.Count(p, DeviceStatusReport); i > 0; i-- {
			pos := m.CursorReply()
			m.input = append(m.input, []byte("\x1b["+strconv.Itoa(pos.Row)+";"+strconv.Itoa(pos.Col)+"R"))
		}
	}
	return n, err
}

// Poll never blocks, pending input is visible immediately
func (m *MemoryBackend) Poll(time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.input) > 0 || m.closed, nil
}

func (m *MemoryBackend) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.input) == 0 {
		if m.closed {
			return 0, io.EOF
		}
		return 0, nil
	}
	chunk := m.input[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		m.input[0] = chunk[n:]
	} else {
		m.input = m.input[1:]
	}
	return n, nil
}

func (m *MemoryBackend) ResizeChan() <-chan ResizeEvent {
	return m.resizeCh
}

// Feed queues one chunk of input, delivered by a single Read when it fits
func (m *MemoryBackend) Feed(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = append(m.input, append([]byte(nil), p...))
}

// CloseInput makes Read return io.EOF once queued input is drained
func (m *MemoryBackend) CloseInput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Resize changes the size and signals the resize channel
func (m *MemoryBackend) Resize(width, height int) {
	m.mu.Lock()
	m.width, m.height = width, height
	m.mu.Unlock()

	ev := ResizeEvent{Width: width, Height: height}
	select {
	case m.resizeCh <- ev:
	default:
		select {
		case <-m.resizeCh:
		default:
		}
		m.resizeCh <- ev
	}
}

// Output returns everything written so far
func (m *MemoryBackend) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output.String()
}

// ResetOutput discards recorded output
func (m *MemoryBackend) ResetOutput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.output.Reset()
}
