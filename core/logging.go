package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultLogPath is used when debug logging is on and no path is set
	DefaultLogPath = "logs/tickterm.log"
	maxLogSize     = 10 * 1024 * 1024
)

// SetupLogging routes the standard logger to path when debug is on
// With debug off all logging is discarded, the terminal is never written
// The returned file is nil when nothing was opened; the caller closes it
func SetupLogging(debug bool, path string) (*os.File, error) {
	if !debug {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	if path == "" {
		path = DefaultLogPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := rotateLog(path); err != nil {
		log.SetOutput(io.Discard)
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Printf("logging started, pid %d", os.Getpid())
	return f, nil
}

// rotateLog moves an oversized log aside with a timestamp suffix
func rotateLog(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return nil
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	rotated := fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102-150405"), ext)
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}
