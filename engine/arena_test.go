package engine

import (
	"strings"
	"testing"
)

func TestArenaPrintfAndSince(t *testing.T) {
	a := NewArena(16)

	first := a.Printf("tick %d", 1)
	mark := a.Mark()
	a.WriteString(" / ")
	a.WriteByte('x')
	a.Write([]byte("yz"))

	if first != "tick 1" {
		t.Errorf("Printf returned %q", first)
	}
	if got := a.Since(mark); got != " / xyz" {
		t.Errorf("Since(mark) = %q", got)
	}
	if got := a.String(); got != "tick 1 / xyz" {
		t.Errorf("String() = %q", got)
	}
	if a.Len() != len("tick 1 / xyz") {
		t.Errorf("Len() = %d", a.Len())
	}
}

func TestArenaGrowthKeepsHandedOutStrings(t *testing.T) {
	a := NewArena(8)
	s := a.Printf("%s", "short")
	a.WriteString(strings.Repeat("z", 1024))

	if s != "short" {
		t.Errorf("Earlier string changed after growth: %q", s)
	}
	if a.Cap() < 1024 {
		t.Errorf("Expected arena to grow, cap %d", a.Cap())
	}
}

func TestArenaResetKeepsCapacity(t *testing.T) {
	a := NewArena(0)
	if a.Cap() != DefaultArenaSize {
		t.Fatalf("Expected default capacity %d, got %d", DefaultArenaSize, a.Cap())
	}
	a.WriteString("frame")
	a.Reset()
	if a.Len() != 0 || a.String() != "" {
		t.Errorf("Expected empty arena after Reset, got %q", a.String())
	}
	if a.Cap() != DefaultArenaSize {
		t.Errorf("Reset changed capacity to %d", a.Cap())
	}
}

func TestArenaSinceOutOfRange(t *testing.T) {
	a := NewArena(8)
	a.WriteString("abc")
	if got := a.Since(10); got != "" {
		t.Errorf("Since past the end = %q, want empty", got)
	}
	if got := a.Since(-1); got != "" {
		t.Errorf("Since(-1) = %q, want empty", got)
	}
}

func TestFrameArenasAlternate(t *testing.T) {
	f := NewFrameArenas(64)

	a := f.Next()
	prev := a.Printf("frame %d", 1)

	b := f.Next()
	if a == b {
		t.Fatal("Next returned the same arena twice in a row")
	}
	b.Printf("frame %d", 2)

	// previous frame text survives one full cycle
	if prev != "frame 1" {
		t.Errorf("Previous frame text clobbered: %q", prev)
	}
	if f.Active() != b || f.Previous() != a {
		t.Error("Active/Previous do not match the last two Next calls")
	}

	c := f.Next()
	if c != a {
		t.Error("Expected the third frame to reuse the first arena")
	}
	if c.Len() != 0 {
		t.Errorf("Expected reused arena to be reset, len %d", c.Len())
	}
}
