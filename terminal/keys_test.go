package terminal

import (
	"testing"
)

func TestModifierCodes(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, ""},
		{1, ""},
		{2, "shift"},
		{3, "alt"},
		{4, "shift+alt"},
		{5, "ctrl"},
		{6, "shift+ctrl"},
		{7, "alt+ctrl"},
		{8, "shift+alt+ctrl"},
		{9, "alt"},
		{16, "shift+alt+ctrl"},
		{17, ""},
	}

	for _, tt := range tests {
		if got := ModifierFromCode(tt.code).String(); got != tt.want {
			t.Errorf("ModifierFromCode(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSplitKeyValue(t *testing.T) {
	tests := []struct {
		value   string
		wantMod Modifier
		wantKey string
	}{
		{"a", ModNone, "a"},
		{"ctrl+c", ModCtrl, "c"},
		{"shift+alt+ctrl+left", ModShift | ModAlt | ModCtrl, "left"},
		{"+", ModNone, "+"},
		{"ctrl++", ModCtrl, "+"},
		{"page-up", ModNone, "page-up"},
		{"mouse-left", ModNone, "mouse-left"},
	}

	for _, tt := range tests {
		mod, key := SplitKeyValue(tt.value)
		if mod != tt.wantMod || key != tt.wantKey {
			t.Errorf("SplitKeyValue(%q) = (%v, %q), want (%v, %q)", tt.value, mod, key, tt.wantMod, tt.wantKey)
		}
	}
}

// Every mapped key must decode back to the name it was encoded from
func TestEncodeDecodeKeyTables(t *testing.T) {
	var names []string
	for n, name := range tildeKeys {
		if name != "" && !tildeAlias(n) {
			names = append(names, name)
		}
	}
	for _, name := range letterKeys {
		if name != "" {
			names = append(names, name)
		}
	}

	mods := []string{"", "shift+", "alt+", "ctrl+", "shift+alt+ctrl+"}
	for _, name := range names {
		for _, mod := range mods {
			value := mod + name
			seq := EncodeKey(value)
			if seq == nil {
				t.Errorf("EncodeKey(%q) returned nil", value)
				continue
			}
			got, err := decodeAll(t, string(seq))
			if err != nil {
				t.Errorf("Decode(%q) error: %v", seq, err)
				continue
			}
			if len(got) != 1 || got[0].Value != value {
				t.Errorf("Round trip of %q via %q gave %+v", value, seq, got)
			}
		}
	}
}

func TestEncodeKeyF5(t *testing.T) {
	if got := string(EncodeKey("F5")); got != "\x1b[15~" {
		t.Errorf("EncodeKey(F5) = %q, want %q", got, "\x1b[15~")
	}
}

func TestEncodeKeyPlain(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"a", "a"},
		{"ctrl+c", "\x03"},
		{"alt+x", "\x1bx"},
		{"enter", "\r"},
		{"tab", "\t"},
		{"shift+tab", "\x1b[Z"},
		{"backspace", "\x7f"},
		{"escape", "\x1b"},
		{"F1", "\x1bOP"},
		{"up", "\x1b[A"},
	}

	for _, tt := range tests {
		if got := string(EncodeKey(tt.value)); got != tt.want {
			t.Errorf("EncodeKey(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
