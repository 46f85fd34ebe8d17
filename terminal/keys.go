// @focus: #sys { io } #input { keys }
package terminal

import "strings"

// Modifier flags, bit layout matches xterm's (code - 1)
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
	modMeta  Modifier = 1 << 3
)

// modifierNames is indexed by the xterm modifier code (2..8)
var modifierNames = [...]string{
	2: "shift",
	3: "alt",
	4: "shift+alt",
	5: "ctrl",
	6: "shift+ctrl",
	7: "alt+ctrl",
	8: "shift+alt+ctrl",
}

// ModifierFromCode converts an xterm modifier parameter to flags
// Codes 9..16 carry the Meta bit, which is reported as Alt
func ModifierFromCode(code int) Modifier {
	if code < 2 || code > 16 {
		return ModNone
	}
	m := Modifier(code - 1)
	if m&modMeta != 0 {
		m = m&^modMeta | ModAlt
	}
	return m
}

// Code returns the xterm modifier parameter for m, 1 when no modifier is set
func (m Modifier) Code() int {
	return int(m&(ModShift|ModAlt|ModCtrl)) + 1
}

// String returns the "+"-joined modifier name, empty for ModNone
func (m Modifier) String() string {
	c := m.Code()
	if c < 2 {
		return ""
	}
	return modifierNames[c]
}

// tildeKeys maps the numeric parameter of CSI n ~
var tildeKeys = [...]string{
	1:  "home",
	2:  "insert",
	3:  "delete",
	4:  "end",
	5:  "page-up",
	6:  "page-down",
	11: "F1",
	12: "F2",
	13: "F3",
	14: "F4",
	15: "F5",
	17: "F6",
	18: "F7",
	19: "F8",
	20: "F9",
	21: "F10",
	23: "F11",
	24: "F12",
}

// letterKeys maps the final byte of CSI and SS3 sequences
var letterKeys = [128]string{
	'A': "up",
	'B': "down",
	'C': "right",
	'D': "left",
	'H': "home",
	'F': "end",
	'P': "F1",
	'Q': "F2",
	'R': "F3",
	'S': "F4",
}

// tildeAlias reports tilde codes that duplicate a letter-table key
func tildeAlias(n int) bool {
	return n == 1 || n == 4 || (n >= 11 && n <= 14)
}

func lookupTilde(n int) string {
	if n < 0 || n >= len(tildeKeys) {
		return ""
	}
	return tildeKeys[n]
}

func lookupLetter(c byte) string {
	if c >= 128 {
		return ""
	}
	return letterKeys[c]
}

// KeyValue joins a modifier prefix and key name the way events report them
func KeyValue(key string, mod Modifier) string {
	prefix := mod.String()
	if prefix == "" {
		return key
	}
	return prefix + "+" + key
}

// SplitKeyValue separates an event value into its modifiers and key name
// A bare "+" key is handled, "ctrl++" yields (ModCtrl, "+")
func SplitKeyValue(value string) (Modifier, string) {
	var mod Modifier
	for {
		i := strings.IndexByte(value, '+')
		if i <= 0 || i == len(value)-1 {
			return mod, value
		}
		switch value[:i] {
		case "shift":
			mod |= ModShift
		case "alt":
			mod |= ModAlt
		case "ctrl":
			mod |= ModCtrl
		default:
			return mod, value
		}
		value = value[i+1:]
	}
}

// EncodeKey returns the byte sequence an xterm-compatible terminal sends
// for the given event value, nil when the key has no encoding here
func EncodeKey(value string) []byte {
	mod, key := SplitKeyValue(value)
	code := mod.Code()

	for n, name := range tildeKeys {
		if name == "" || name != key || tildeAlias(n) {
			continue
		}
		if code > 1 {
			return []byte("\x1b[" + itoa(n) + ";" + itoa(code) + "~")
		}
		return []byte("\x1b[" + itoa(n) + "~")
	}
	for c, name := range letterKeys {
		if name == "" || name != key {
			continue
		}
		if code > 1 {
			return []byte("\x1b[1;" + itoa(code) + string(rune(c)))
		}
		if c >= 'P' {
			return []byte("\x1bO" + string(rune(c)))
		}
		return []byte("\x1b[" + string(rune(c)))
	}

	var seq []byte
	switch key {
	case "tab":
		if mod == ModShift {
			return []byte("\x1b[Z")
		}
		seq = []byte{'\t'}
	case "enter":
		seq = []byte{'\r'}
	case "backspace":
		seq = []byte{0x7f}
	case "escape":
		seq = []byte{0x1b}
	default:
		if len(key) == 1 && mod&ModCtrl != 0 && key[0] >= 'a' && key[0] <= 'z' {
			seq = []byte{key[0] - 'a' + 1}
			mod &^= ModCtrl
		} else if key != "" && !strings.ContainsAny(key, "\x1b") {
			seq = []byte(key)
		}
	}
	if seq == nil {
		return nil
	}
	if mod&ModAlt != 0 {
		seq = append([]byte{0x1b}, seq...)
	}
	return seq
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}
