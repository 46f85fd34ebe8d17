package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/lixenwraith/tickterm/terminal"
)

var (
	crashMu      sync.Mutex
	crashCleanup func()

	// replaced in tests
	crashOut  io.Writer = os.Stderr
	crashExit           = os.Exit
)

// SetCrashCleanup registers the terminal restore run by HandleCrash
// A nil fn falls back to terminal.EmergencyReset on stdout
func SetCrashCleanup(fn func()) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashCleanup = fn
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	cleanup := crashCleanup
	crashMu.Unlock()

	// Restore terminal to sane state immediately
	if cleanup != nil {
		func() {
			// a cleanup that panics must not hide the original crash
			defer func() { recover() }()
			cleanup()
		}()
	} else {
		terminal.EmergencyReset(os.Stdout)
	}
	os.Stdout.Sync()

	writeCrashReport(crashOut, r, debug.Stack())
	if f, ok := crashOut.(*os.File); ok {
		f.Sync()
	}

	crashExit(1)
}

func writeCrashReport(w io.Writer, r any, stack []byte) {
	fmt.Fprintf(w, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(w, "Stack Trace:\r\n%s\r\n", stack)
}
