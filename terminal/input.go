package terminal

import (
	"errors"
	"unicode/utf8"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventMouse
	EventResize
)

// String returns the lowercase event type name
func (t EventType) String() string {
	switch t {
	case EventKey:
		return "key"
	case EventMouse:
		return "mouse"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event is one decoded input unit
// Value is the key name with an optional modifier prefix ("ctrl+c", "F5", "a")
// X, Y hold the 0-based cell for mouse events and the new size for resize events
type Event struct {
	Type    EventType
	Pressed bool
	Value   string
	X, Y    int
}

// ErrPartialSequence reports input that ended inside an escape sequence
// The partial sequence is dropped; decoding can continue with the next buffer
var ErrPartialSequence = errors.New("terminal: partial escape sequence dropped")

type vtState uint8

const (
	stateBegin vtState = iota
	stateEscape
	stateCSI
	stateOSC
	stateDCS
	stateSS3
	stateModifier
	stateMouse
)

const maxMouseParams = 3

// Decoder is the VT input state machine
// It is fed one byte at a time and emits events synchronously
type Decoder struct {
	emit  func(Event)
	state vtState

	num      int  // first CSI parameter
	modifier int  // xterm modifier code
	skip     bool // private marker seen, sequence is dropped
	extra    bool // parameters past the modifier are ignored

	// sub-parameters of SGR mouse reports
	params [maxMouseParams]int
	nparam int

	// ESC seen inside a string command, next byte decides ST
	strEsc bool

	// pending UTF-8 bytes of a multi-byte rune
	runeBuf [utf8.UTFMax]byte
	runeLen int

	altPending bool
}

// NewDecoder returns a decoder in the Begin state
func NewDecoder(emit func(Event)) *Decoder {
	return &Decoder{emit: emit}
}

// Decode runs one decode pass over data with a fresh parser state
func Decode(data []byte, emit func(Event)) error {
	d := NewDecoder(emit)
	for _, c := range data {
		d.Feed(c)
	}
	return d.Finish()
}

// Write feeds every byte of p, it never fails
func (d *Decoder) Write(p []byte) (int, error) {
	for _, c := range p {
		d.Feed(c)
	}
	return len(p), nil
}

// Finish closes a decode pass
// A lone trailing ESC becomes an "escape" key; any other unfinished
// sequence is dropped and reported as ErrPartialSequence
func (d *Decoder) Finish() error {
	defer d.reset()

	if d.runeLen > 0 {
		return ErrPartialSequence
	}
	switch d.state {
	case stateBegin:
		return nil
	case stateEscape:
		d.key("escape", ModNone)
		return nil
	default:
		return ErrPartialSequence
	}
}

// Reset drops any partial sequence
func (d *Decoder) Reset() {
	d.reset()
}

func (d *Decoder) reset() {
	d.state = stateBegin
	d.num = 0
	d.modifier = 0
	d.skip = false
	d.extra = false
	d.nparam = 0
	d.params = [maxMouseParams]int{}
	d.strEsc = false
	d.runeLen = 0
	d.altPending = false
}

func (d *Decoder) key(name string, mod Modifier) {
	d.emit(Event{Type: EventKey, Pressed: true, Value: KeyValue(name, mod)})
}

// Feed advances the state machine by one byte
func (d *Decoder) Feed(c byte) {
	switch d.state {
	case stateBegin:
		d.begin(c)
	case stateEscape:
		d.escape(c)
	case stateCSI:
		d.csi(c)
	case stateModifier:
		d.mod(c)
	case stateSS3:
		d.ss3(c)
	case stateOSC, stateDCS:
		d.str(c)
	case stateMouse:
		d.mouse(c)
	}
}

func (d *Decoder) begin(c byte) {
	var mod Modifier
	if d.altPending {
		mod = ModAlt
		d.altPending = false
	}

	if d.runeLen > 0 {
		d.continueRune(c, mod)
		return
	}

	switch {
	case c == 0x1b:
		d.state = stateEscape
	case c == '\t':
		d.key("tab", mod)
	case c == 0x7f || c == 0x08:
		d.key("backspace", mod)
	case c == '\r' || c == '\n':
		d.key("enter", mod)
	case c == 0x00:
		d.key("space", mod|ModCtrl)
	case c < 0x1b:
		d.key(string(rune('a'+c-1)), mod|ModCtrl)
	case c < 0x20:
		d.key(string(rune(c+0x40)), mod|ModCtrl)
	case c < 0x80:
		d.key(string(rune(c)), mod)
	default:
		d.runeBuf[0] = c
		d.runeLen = 1
		if mod != ModNone {
			d.altPending = true
		}
		d.flushRune()
	}
}

// continueRune collects a multi-byte UTF-8 sequence
func (d *Decoder) continueRune(c byte, mod Modifier) {
	if c&0xC0 != 0x80 {
		// not a continuation byte, drop the broken rune and restart
		d.runeLen = 0
		d.altPending = mod != ModNone
		d.begin(c)
		return
	}
	d.runeBuf[d.runeLen] = c
	d.runeLen++
	if mod != ModNone {
		d.altPending = true
	}
	d.flushRune()
}

func (d *Decoder) flushRune() {
	buf := d.runeBuf[:d.runeLen]
	if !utf8.FullRune(buf) && d.runeLen < utf8.UTFMax {
		return
	}
	r, size := utf8.DecodeRune(buf)
	mod := ModNone
	if d.altPending {
		mod = ModAlt
		d.altPending = false
	}
	d.runeLen = 0
	if r == utf8.RuneError && size <= 1 {
		return
	}
	d.key(string(r), mod)
}

func (d *Decoder) escape(c byte) {
	switch c {
	case '[':
		d.state = stateCSI
	case 'O':
		d.state = stateSS3
	case ']':
		d.state = stateOSC
	case 'P':
		d.state = stateDCS
	case 0x1b:
		// two escapes, the first one stands alone
		d.key("escape", ModNone)
	default:
		d.state = stateBegin
		d.altPending = true
		d.begin(c)
	}
}

func (d *Decoder) csi(c byte) {
	switch {
	case c >= '0' && c <= '9':
		d.num = d.num*10 + int(c-'0')
	case c == ';':
		d.state = stateModifier
	case c == '<':
		d.state = stateMouse
	case c == '?' || c == '>' || c == '=':
		// private marker, the sequence is a reply we do not decode
		d.skip = true
	case c == 0x1b:
		d.reset()
		d.state = stateEscape
	default:
		d.final(c)
	}
}

func (d *Decoder) mod(c byte) {
	switch {
	case c >= '0' && c <= '9':
		if !d.extra {
			d.modifier = d.modifier*10 + int(c-'0')
		}
	case c == ';' || c == ':':
		// further parameters are not used by any mapped key
		d.extra = true
	case c == 0x1b:
		d.reset()
		d.state = stateEscape
	default:
		d.final(c)
	}
}

// final handles the terminating byte of a CSI sequence
func (d *Decoder) final(c byte) {
	// intermediate bytes do not terminate
	if c >= 0x20 && c <= 0x2f {
		return
	}

	mod := ModifierFromCode(d.modifier)
	skip := d.skip
	num := d.num
	d.reset()

	if skip || c < 0x40 || c > 0x7e {
		return
	}

	switch {
	case c == '~':
		if name := lookupTilde(num); name != "" {
			d.key(name, mod)
		}
	case c == 'Z':
		d.key("tab", mod|ModShift)
	case num <= 1:
		// a larger first parameter is a report (cursor position) rather than a key
		if name := lookupLetter(c); name != "" {
			d.key(name, mod)
		}
	}
}

func (d *Decoder) ss3(c byte) {
	if c >= '0' && c <= '9' {
		d.modifier = d.modifier*10 + int(c-'0')
		return
	}
	mod := ModifierFromCode(d.modifier)
	d.reset()
	if name := lookupLetter(c); name != "" {
		d.key(name, mod)
	}
}

// str consumes OSC and DCS payloads until BEL or ST
func (d *Decoder) str(c byte) {
	if d.strEsc {
		d.strEsc = false
		if c == '\\' {
			d.reset()
			return
		}
		d.reset()
		d.state = stateEscape
		d.escape(c)
		return
	}
	switch c {
	case 0x07:
		d.reset()
	case 0x1b:
		d.strEsc = true
	}
}

// mouse decodes SGR reports: CSI < button ; x ; y (M press | m release)
func (d *Decoder) mouse(c byte) {
	switch {
	case c >= '0' && c <= '9':
		if d.nparam < maxMouseParams {
			d.params[d.nparam] = d.params[d.nparam]*10 + int(c-'0')
		}
	case c == ';':
		d.nparam++
	case c == 'M' || c == 'm':
		if d.nparam != maxMouseParams-1 {
			d.reset()
			return
		}
		ev := decodeMouse(d.params, c == 'M')
		d.reset()
		d.emit(ev)
	case c == 0x1b:
		d.reset()
		d.state = stateEscape
	default:
		d.reset()
	}
}

func decodeMouse(p [maxMouseParams]int, press bool) Event {
	b := p[0]
	var mod Modifier
	if b&4 != 0 {
		mod |= ModShift
	}
	if b&8 != 0 {
		mod |= ModAlt
	}
	if b&16 != 0 {
		mod |= ModCtrl
	}

	var name string
	switch {
	case b&64 != 0:
		switch b & 3 {
		case 0:
			name = "mouse-wheel-up"
		case 1:
			name = "mouse-wheel-down"
		default:
			name = "mouse-wheel"
		}
	case b&32 != 0:
		name = "mouse-motion"
	default:
		switch b & 3 {
		case 0:
			name = "mouse-left"
		case 1:
			name = "mouse-middle"
		case 2:
			name = "mouse-right"
		case 3:
			name = "mouse-release"
			press = false
		}
	}

	return Event{
		Type:    EventMouse,
		Pressed: press,
		Value:   KeyValue(name, mod),
		X:       max(p[1]-1, 0),
		Y:       max(p[2]-1, 0),
	}
}
