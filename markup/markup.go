// Package markup expands inline style tags into terminal escape sequences.
//
// A tag opens a style, "</>" closes the innermost one:
//
//	<magenta>%v </>waiting forever <bold><blue>📁</> <green>📄</></>
//
// Tag names are ANSI color names ("red", "bright-red"), tcell color names
// or "#rrggbb" values, a "bg-" prefixed color for the background, or one
// of bold, dim, italic, underline, blink, reverse, strike. "<<" writes a
// literal "<". Anything else inside angle brackets is left verbatim.
package markup

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
)

// style is one resolved tag
type style struct {
	fg, bg termenv.Color
	attrs  attr
}

type attr uint8

const (
	attrBold attr = 1 << iota
	attrDim
	attrItalic
	attrUnderline
	attrBlink
	attrReverse
	attrStrike
)

var attrNames = map[string]attr{
	"bold":      attrBold,
	"b":         attrBold,
	"dim":       attrDim,
	"faint":     attrDim,
	"italic":    attrItalic,
	"i":         attrItalic,
	"underline": attrUnderline,
	"u":         attrUnderline,
	"blink":     attrBlink,
	"reverse":   attrReverse,
	"strike":    attrStrike,
}

// basicColors are the eight ANSI colors, indexed by SGR offset
var basicColors = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
	"gray":    8,
	"grey":    8,
}

// maxCachedTags bounds the tag cache, tags past it are resolved every time
const maxCachedTags = 256

// Expander resolves tags for one color profile
// It is safe for concurrent use; known tags are cached, text that only
// looks like a tag ("<file1>", "<3 items>") is not
type Expander struct {
	profile termenv.Profile

	mu    sync.RWMutex
	cache map[string]style
}

// New returns an expander emitting sequences for profile
// termenv.Ascii strips all styling
func New(profile termenv.Profile) *Expander {
	return &Expander{
		profile: profile,
		cache:   make(map[string]style),
	}
}

// Profile returns the color profile in use
func (e *Expander) Profile() termenv.Profile {
	return e.profile
}

// Expand returns line with every known tag replaced by escape sequences
func (e *Expander) Expand(line string) string {
	if strings.IndexByte(line, '<') < 0 {
		return line
	}
	var b strings.Builder
	b.Grow(len(line) + 16)
	e.walk(line, func(text string, stack []style) {
		if len(stack) == 0 || e.profile == termenv.Ascii {
			b.WriteString(text)
			return
		}
		b.WriteString(e.styled(text, stack))
	})
	return b.String()
}

// Strip returns line with every known tag removed
func (e *Expander) Strip(line string) string {
	if strings.IndexByte(line, '<') < 0 {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	e.walk(line, func(text string, _ []style) {
		b.WriteString(text)
	})
	return b.String()
}

// Sprintf formats and expands in one step
func (e *Expander) Sprintf(format string, args ...any) string {
	return e.Expand(fmt.Sprintf(format, args...))
}

// walk splits line into text runs and calls fn with the style stack of each
func (e *Expander) walk(line string, fn func(text string, stack []style)) {
	var stack []style
	start := 0
	emit := func(end int) {
		if end > start {
			fn(line[start:end], stack)
		}
	}

	for i := 0; i < len(line); {
		if line[i] != '<' {
			i++
			continue
		}
		if i+1 < len(line) && line[i+1] == '<' {
			emit(i + 1)
			i += 2
			start = i
			continue
		}
		end := strings.IndexByte(line[i+1:], '>')
		if end < 0 {
			break
		}
		tag := line[i+1 : i+1+end]
		next := i + end + 2

		if strings.HasPrefix(tag, "/") && !strings.ContainsAny(tag, " <") {
			emit(i)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			start = next
			i = next
			continue
		}
		if s, ok := e.lookup(tag); ok {
			emit(i)
			stack = append(stack, s)
			start = next
			i = next
			continue
		}
		i++
	}
	emit(len(line))
}

func (e *Expander) lookup(tag string) (style, bool) {
	e.mu.RLock()
	s, hit := e.cache[tag]
	e.mu.RUnlock()
	if hit {
		return s, true
	}

	s, ok := e.resolve(tag)
	if !ok {
		return style{}, false
	}

	e.mu.Lock()
	if len(e.cache) < maxCachedTags {
		e.cache[tag] = s
	}
	e.mu.Unlock()
	return s, true
}

func (e *Expander) resolve(tag string) (style, bool) {
	if tag == "" || strings.ContainsAny(tag, " \t<") {
		return style{}, false
	}
	if a, ok := attrNames[tag]; ok {
		return style{attrs: a}, true
	}
	if name, ok := strings.CutPrefix(tag, "bg-"); ok {
		c, ok := e.color(name)
		return style{bg: c}, ok
	}
	c, ok := e.color(tag)
	return style{fg: c}, ok
}

// color resolves a color name through the ANSI table, then tcell
func (e *Expander) color(name string) (termenv.Color, bool) {
	if bright, ok := strings.CutPrefix(name, "bright-"); ok {
		if n, ok := basicColors[bright]; ok && n < 8 {
			return e.profile.Color(strconv.Itoa(n + 8)), true
		}
		return nil, false
	}
	if n, ok := basicColors[name]; ok {
		return e.profile.Color(strconv.Itoa(n)), true
	}

	tc := tcell.GetColor(name)
	if tc == tcell.ColorDefault || !tc.Valid() {
		return nil, false
	}
	hex := tc.Hex()
	if hex < 0 {
		return nil, false
	}
	return e.profile.Color(fmt.Sprintf("#%06x", hex)), true
}

func (e *Expander) styled(text string, stack []style) string {
	out := e.profile.String(text)
	var fg, bg termenv.Color
	var attrs attr
	for _, s := range stack {
		if s.fg != nil {
			fg = s.fg
		}
		if s.bg != nil {
			bg = s.bg
		}
		attrs |= s.attrs
	}
	if fg != nil {
		out = out.Foreground(fg)
	}
	if bg != nil {
		out = out.Background(bg)
	}
	if attrs&attrBold != 0 {
		out = out.Bold()
	}
	if attrs&attrDim != 0 {
		out = out.Faint()
	}
	if attrs&attrItalic != 0 {
		out = out.Italic()
	}
	if attrs&attrUnderline != 0 {
		out = out.Underline()
	}
	if attrs&attrBlink != 0 {
		out = out.Blink()
	}
	if attrs&attrReverse != 0 {
		out = out.Reverse()
	}
	if attrs&attrStrike != 0 {
		out = out.CrossOut()
	}
	return out.String()
}
