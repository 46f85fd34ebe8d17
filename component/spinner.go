package component

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// SpinnerKind selects a preset animation
type SpinnerKind int

const (
	SpinnerLine SpinnerKind = iota
	SpinnerDot
	SpinnerMiniDot
	SpinnerJump
	SpinnerPulse
	SpinnerPoints
	SpinnerGlobe
	SpinnerMoon
	SpinnerMeter
	SpinnerEllipsis

	spinnerKindCount
)

type spinnerPreset struct {
	name      string
	frameTime time.Duration
	frames    []string
}

var spinnerPresets = [spinnerKindCount]spinnerPreset{
	SpinnerLine:     {"line", 100 * time.Millisecond, []string{"|", "/", "-", "\\"}},
	SpinnerDot:      {"dot", 100 * time.Millisecond, []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}},
	SpinnerMiniDot:  {"minidot", 80 * time.Millisecond, []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}},
	SpinnerJump:     {"jump", 100 * time.Millisecond, []string{"⢄", "⢂", "⢁", "⡁", "⡈", "⡐", "⡠"}},
	SpinnerPulse:    {"pulse", 120 * time.Millisecond, []string{"█", "▓", "▒", "░"}},
	SpinnerPoints:   {"points", 140 * time.Millisecond, []string{"∙∙∙", "●∙∙", "∙●∙", "∙∙●"}},
	SpinnerGlobe:    {"globe", 250 * time.Millisecond, []string{"🌍", "🌎", "🌏"}},
	SpinnerMoon:     {"moon", 120 * time.Millisecond, []string{"🌑", "🌒", "🌓", "🌔", "🌕", "🌖", "🌗", "🌘"}},
	SpinnerMeter:    {"meter", 140 * time.Millisecond, []string{"▱▱▱", "▰▱▱", "▰▰▱", "▰▰▰", "▰▰▱", "▰▱▱", "▱▱▱"}},
	SpinnerEllipsis: {"ellipsis", 330 * time.Millisecond, []string{"", ".", "..", "..."}},
}

// SpinnerKinds returns every preset in declaration order
func SpinnerKinds() []SpinnerKind {
	kinds := make([]SpinnerKind, spinnerKindCount)
	for i := range kinds {
		kinds[i] = SpinnerKind(i)
	}
	return kinds
}

// String returns the preset name
func (k SpinnerKind) String() string {
	if k < 0 || k >= spinnerKindCount {
		return fmt.Sprintf("SpinnerKind(%d)", int(k))
	}
	return spinnerPresets[k].name
}

// Next returns the following preset, wrapping after the last
func (k SpinnerKind) Next() SpinnerKind {
	return (k + 1) % spinnerKindCount
}

// ParseSpinnerKind resolves a preset by name, case-insensitive
func ParseSpinnerKind(name string) (SpinnerKind, error) {
	for i, p := range spinnerPresets {
		if strings.EqualFold(p.name, name) {
			return SpinnerKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown spinner %q", name)
}

// Spinner is a frame animation advanced by elapsed time
type Spinner struct {
	frames    []string
	frameTime time.Duration
	index     int
	elapsed   time.Duration
	width     int
}

// NewSpinner returns a spinner for a preset, unknown kinds fall back to SpinnerLine
func NewSpinner(kind SpinnerKind) *Spinner {
	if kind < 0 || kind >= spinnerKindCount {
		kind = SpinnerLine
	}
	p := spinnerPresets[kind]
	return CustomSpinner(p.frames, p.frameTime)
}

// CustomSpinner returns a spinner over frames, each shown for frameTime
func CustomSpinner(frames []string, frameTime time.Duration) *Spinner {
	width := 0
	for _, f := range frames {
		width = max(width, runewidth.StringWidth(f))
	}
	return &Spinner{
		frames:    frames,
		frameTime: frameTime,
		width:     width,
	}
}

// Advance adds dt and steps one frame per whole frame duration elapsed
func (s *Spinner) Advance(dt time.Duration) {
	if len(s.frames) == 0 || s.frameTime <= 0 {
		return
	}
	s.elapsed += dt
	for s.elapsed >= s.frameTime {
		s.elapsed -= s.frameTime
		s.index = (s.index + 1) % len(s.frames)
	}
}

// Reset returns to the first frame
func (s *Spinner) Reset() {
	s.index = 0
	s.elapsed = 0
}

// Frame returns the current frame text
func (s *Spinner) Frame() string {
	if len(s.frames) == 0 {
		return ""
	}
	return s.frames[s.index]
}

// Index returns the current frame index
func (s *Spinner) Index() int {
	return s.index
}

// Elapsed returns time carried toward the next frame
func (s *Spinner) Elapsed() time.Duration {
	return s.elapsed
}

// FrameTime returns the per-frame duration
func (s *Spinner) FrameTime() time.Duration {
	return s.frameTime
}

// Len returns the number of frames
func (s *Spinner) Len() int {
	return len(s.frames)
}

// Width returns the widest frame in terminal cells
func (s *Spinner) Width() int {
	return s.width
}

// View returns the current frame padded to Width so following text holds still
func (s *Spinner) View() string {
	f := s.Frame()
	if pad := s.width - runewidth.StringWidth(f); pad > 0 {
		return f + strings.Repeat(" ", pad)
	}
	return f
}
