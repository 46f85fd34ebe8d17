//go:build unix

package terminal

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
)

func setupPTY(t *testing.T) (*unixBackend, io.ReadWriter) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() {
		ptmx.Close()
		tty.Close()
	})

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Fatalf("Setsize failed: %v", err)
	}

	b := newUnixBackend(tty, tty)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(b.Fini)
	return b, ptmx
}

func TestUnixBackendSize(t *testing.T) {
	b, _ := setupPTY(t)
	w, h := b.Size()
	if w != 100 || h != 30 {
		t.Errorf("Expected 100x30, got %dx%d", w, h)
	}
}

func TestUnixBackendPollRead(t *testing.T) {
	b, ptmx := setupPTY(t)

	ready, err := b.Poll(0)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if ready {
		t.Fatal("Expected no pending input before write")
	}

	if _, err := ptmx.Write([]byte("\x1b[1;5A")); err != nil {
		t.Fatalf("write to pty failed: %v", err)
	}

	ready, err = b.Poll(time.Second)
	if err != nil || !ready {
		t.Fatalf("Expected pending input, ready=%v err=%v", ready, err)
	}

	buf := make([]byte, 64)
	var data []byte
	// the sequence may be split across reads
	deadline := time.Now().Add(time.Second)
	for len(data) < 6 && time.Now().Before(deadline) {
		if ok, _ := b.Poll(50 * time.Millisecond); !ok {
			continue
		}
		n, err := b.Read(buf)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		data = append(data, buf[:n]...)
	}

	var got []string
	if err := Decode(data, func(ev Event) { got = append(got, ev.Value) }); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != 1 || got[0] != "ctrl+up" {
		t.Errorf("Expected [ctrl+up], got %v", got)
	}
}

func TestUnixBackendRawMode(t *testing.T) {
	b, ptmx := setupPTY(t)

	// canonical mode would hold the byte until a newline
	if _, err := ptmx.Write([]byte("q")); err != nil {
		t.Fatal(err)
	}
	ready, err := b.Poll(time.Second)
	if err != nil || !ready {
		t.Fatalf("Expected raw input to be readable without newline, ready=%v err=%v", ready, err)
	}
	buf := make([]byte, 8)
	n, err := b.Read(buf)
	if err != nil || string(buf[:n]) != "q" {
		t.Errorf("Expected %q, got %q (err %v)", "q", buf[:n], err)
	}
}

func TestUnixBackendFiniIdempotent(t *testing.T) {
	b, _ := setupPTY(t)
	b.Fini()
	b.Fini()
}

func TestUnixBackendInitRejectsNonTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	b := newUnixBackend(r, w)
	if err := b.Init(); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("Expected ErrNotTerminal, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	if !IsTerminal(tty) {
		t.Error("Expected pty slave to be a terminal")
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	if IsTerminal(w) {
		t.Error("Expected pipe not to be a terminal")
	}
	if IsTerminal(io.Discard) {
		t.Error("Expected io.Discard not to be a terminal")
	}
}
