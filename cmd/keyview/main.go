// Command keyview prints the events the input decoder produces.
package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/tickterm/config"
	"github.com/lixenwraith/tickterm/core"
	"github.com/lixenwraith/tickterm/engine"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	cfg, _, err := config.Parse("keyview", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyview: %v\n", err)
		os.Exit(2)
	}
	cfg.Mouse = true

	logFile, err := core.SetupLogging(cfg.Log.Debug, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyview: %v\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	out, closeOut, err := cfg.OpenOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyview: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	app := newKeyviewApp(0, 0)
	rt, err := engine.New(app, cfg.RuntimeOptions(out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyview: %v\n", err)
		os.Exit(1)
	}
	core.SetCrashCleanup(func() { rt.Close() })
	app.width, app.height = rt.Size()
	app.stats = func() (uint64, int) {
		r := rt.Renderer()
		return r.Frames(), r.LastSize()
	}

	if err := rt.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "keyview: %v\n", err)
		os.Exit(1)
	}
}
