// @focus: #sys { term }
// Package terminal provides the raw VT layer of the runtime.
//
// Features:
//   - Raw mode input with a non-blocking peek (unix.Poll)
//   - VT input decoding into "mod+key" events, SGR mouse reports
//   - Cursor position queries (device status report)
//   - SIGWINCH resize detection
//   - Clean terminal restoration on exit/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
