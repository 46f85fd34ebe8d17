package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/lixenwraith/tickterm/markup"
	"github.com/lixenwraith/tickterm/render"
	"github.com/lixenwraith/tickterm/terminal"
)

const (
	// DefaultReadSize is the input buffer used for each decode pass
	DefaultReadSize = 256
	// DefaultMaxReads bounds the reads drained in one tick
	DefaultMaxReads = 64
)

// ErrClosed is returned by Run on a runtime that was already closed
var ErrClosed = errors.New("engine: runtime closed")

// errQuit stops the tick loop once Update asks to quit
var errQuit = errors.New("engine: quit")

// Options configures a Runtime, zero values select the defaults
type Options struct {
	// FPS is the tick rate, DefaultFPS when zero
	FPS int
	// Fullscreen clears the screen and homes the cursor every frame
	// instead of redrawing in place below the prompt
	Fullscreen bool

	// Output receives frames, defaults to the backend
	Output io.Writer
	// Backend supplies input and size, defaults to the unix terminal on Output
	// The runtime owns it: Init is called by New, Fini by Close
	Backend terminal.Backend

	// Clock drives the ticker, defaults to the monotonic clock
	Clock TimeProvider
	// Sleep waits between ticks, defaults to time.Sleep
	Sleep func(time.Duration)

	// Expander resolves markup in frames, defaults to markup for the
	// environment's color profile
	Expander render.Expander
	// PlainText strips markup instead of styling it
	PlainText bool

	// Mouse enables SGR mouse reporting
	Mouse bool
	// Title sets the window title when not empty
	Title string

	// NoCursorQuery disables soft wrap detection through cursor reports
	NoCursorQuery bool
	// CursorTimeout bounds each cursor report wait
	CursorTimeout time.Duration

	// MaxLines is the renderer line cache capacity
	MaxLines int
	// ArenaSize is the initial capacity of each frame arena
	ArenaSize int
	// ReadSize is the input buffer size
	ReadSize int
	// MaxReads bounds how many reads one tick drains
	MaxReads int
}

func (o *Options) setDefaults() {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.Clock == nil {
		o.Clock = NewMonotonicTimeProvider()
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Expander == nil {
		profile := termenv.EnvColorProfile()
		if o.PlainText {
			profile = termenv.Ascii
		}
		o.Expander = markup.New(profile)
	}
	if o.CursorTimeout <= 0 {
		o.CursorTimeout = terminal.DefaultCursorTimeout
	}
	if o.MaxLines <= 0 {
		o.MaxLines = render.DefaultMaxLines
	}
	if o.ArenaSize <= 0 {
		o.ArenaSize = DefaultArenaSize
	}
	if o.ReadSize <= 0 {
		o.ReadSize = DefaultReadSize
	}
	if o.MaxReads <= 0 {
		o.MaxReads = DefaultMaxReads
	}
}

// Runtime owns the terminal session and drives one Application
type Runtime struct {
	app  Application
	opts Options

	backend  terminal.Backend
	out      io.Writer
	ticker   *Ticker
	arenas   *FrameArenas
	renderer *render.Renderer
	probe    *terminal.CursorProbe
	decoder  *terminal.Decoder

	readBuf  []byte
	inputEOF bool
	quit     bool
	closed   bool
}

// New initializes the terminal and prepares app to run
// On error the terminal is left as it was found
func New(app Application, opts Options) (*Runtime, error) {
	if app == nil {
		return nil, errors.New("engine: nil application")
	}
	opts.setDefaults()

	backend := opts.Backend
	if backend == nil {
		f, _ := opts.Output.(*os.File)
		backend = terminal.NewBackend(f)
	}
	out := opts.Output
	if out == nil {
		out = backend
	}

	rt := &Runtime{
		app:     app,
		opts:    opts,
		backend: backend,
		out:     out,
		arenas:  NewFrameArenas(opts.ArenaSize),
		readBuf: make([]byte, opts.ReadSize),
	}
	rt.decoder = terminal.NewDecoder(app.Event)

	ticker, err := NewTicker(IntervalForRate(opts.FPS), opts.Clock, rt.frame)
	if err != nil {
		return nil, err
	}
	rt.ticker = ticker

	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}

	var cursor render.CursorQuerier
	if rt.canQueryCursor() {
		rt.probe = terminal.NewCursorProbe(out, backend, opts.CursorTimeout)
		cursor = rt.probe
	}
	rt.renderer = render.New(out, render.Options{
		Fullscreen: opts.Fullscreen,
		MaxLines:   opts.MaxLines,
		Expander:   opts.Expander,
		Cursor:     cursor,
	})

	if err := rt.setup(); err != nil {
		backend.Fini()
		return nil, fmt.Errorf("prepare terminal: %w", err)
	}
	return rt, nil
}

// canQueryCursor rejects output redirected away from the terminal, replies
// would never arrive
func (r *Runtime) canQueryCursor() bool {
	if r.opts.NoCursorQuery {
		return false
	}
	if f, ok := r.out.(*os.File); ok && !terminal.IsTerminal(f) {
		log.Printf("engine: output is not a terminal, cursor queries disabled")
		return false
	}
	return true
}

func (r *Runtime) setup() error {
	w := bufio.NewWriter(r.out)
	w.Write(terminal.HideCursor)
	w.Write(terminal.SaveCursor)
	if r.opts.Fullscreen {
		w.Write(terminal.ClearScreen)
		w.Write(terminal.CursorHome)
	}
	if r.opts.Title != "" {
		terminal.WriteTitle(w, r.opts.Title)
	}
	if r.opts.Mouse {
		if err := terminal.SetMouseMode(w, terminal.MouseModeClick); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Run renders the first view, then ticks until Update returns true
// The terminal is restored on every exit path, panics included
func (r *Runtime) Run() (err error) {
	if r.closed {
		return ErrClosed
	}
	defer func() {
		p := recover()
		if cerr := r.Close(); err == nil {
			err = cerr
		}
		if p != nil {
			panic(p)
		}
	}()

	if err := r.renderer.Write(r.app.View(r.arenas.Next())); err != nil {
		return fmt.Errorf("render first frame: %w", err)
	}
	// time spent between New and Run is not owed as ticks
	if err := r.ticker.Restart(); err != nil {
		return err
	}

	for {
		if err := r.ticker.Tick(); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
		r.opts.Sleep(r.ticker.Until())
	}
}

// frame is one tick: input, resize, Update, View, render
func (r *Runtime) frame(dt time.Duration) error {
	arena := r.arenas.Next()

	if err := r.pollInput(); err != nil {
		return err
	}
	r.pollResize()

	r.quit = r.app.Update(arena, dt)

	if err := r.renderer.Write(r.app.View(arena)); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	if r.quit {
		return errQuit
	}
	return nil
}

// pollInput dispatches every buffered input unit without blocking
func (r *Runtime) pollInput() error {
	if r.probe != nil {
		if pending := r.probe.TakePending(); len(pending) > 0 {
			r.decode(pending)
		}
	}
	if r.inputEOF {
		return nil
	}

	for i := 0; i < r.opts.MaxReads; i++ {
		ready, err := r.backend.Poll(0)
		if err != nil {
			return fmt.Errorf("poll input: %w", err)
		}
		if !ready {
			return nil
		}

		n, err := r.backend.Read(r.readBuf)
		if n > 0 {
			r.decode(r.readBuf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Printf("engine: input closed, polling stopped")
				r.inputEOF = true
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
	return nil
}

// decode runs one decoder pass, partial sequences are dropped
func (r *Runtime) decode(p []byte) {
	r.decoder.Write(p)
	if err := r.decoder.Finish(); err != nil {
		log.Printf("engine: %v (%q)", err, p)
	}
}

func (r *Runtime) pollResize() {
	select {
	case ev := <-r.backend.ResizeChan():
		if r.opts.Fullscreen {
			r.out.Write(terminal.ClearScreen)
		}
		r.renderer.Invalidate()
		r.app.Event(terminal.Event{
			Type:    terminal.EventResize,
			Pressed: true,
			Value:   "resize",
			X:       ev.Width,
			Y:       ev.Height,
		})
	default:
	}
}

// Close restores the terminal, calling it again does nothing
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if !r.opts.Fullscreen {
		if err := r.renderer.Finish(); err != nil {
			errs = append(errs, fmt.Errorf("finish frame: %w", err))
		}
	}

	w := bufio.NewWriter(r.out)
	if r.opts.Mouse {
		terminal.SetMouseMode(w, terminal.MouseModeNone)
	}
	if r.opts.Fullscreen {
		w.Write(terminal.ClearScreen)
		w.Write(terminal.CursorHome)
	}
	w.Write(terminal.SGRReset)
	w.Write(terminal.ShowCursor)
	if err := w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("restore terminal: %w", err))
	}

	r.backend.Fini()
	return errors.Join(errs...)
}

// Size returns the terminal size in cells
func (r *Runtime) Size() (width, height int) {
	return r.backend.Size()
}

// Renderer exposes the diff renderer, for statistics
func (r *Runtime) Renderer() *render.Renderer {
	return r.renderer
}

// Ticker exposes the tick scheduler
func (r *Runtime) Ticker() *Ticker {
	return r.ticker
}
