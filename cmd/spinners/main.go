// Command spinners shows every spinner preset in turn, redrawing in place.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lixenwraith/tickterm/audio"
	"github.com/lixenwraith/tickterm/component"
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

	cfg, _, err := config.Parse("spinners", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "spinners: %v\n", err)
		os.Exit(2)
	}

	logFile, err := core.SetupLogging(cfg.Log.Debug, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spinners: %v\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(cfg); err != nil {
		log.Printf("spinners: %v", err)
		fmt.Fprintf(os.Stderr, "spinners: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	out, closeOut, err := cfg.OpenOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	kind, err := component.ParseSpinnerKind(cfg.Spinner)
	if err != nil {
		return err
	}

	bell := audio.NewBell(cfg.Sound, cfg.Volume, out)
	if cfg.Sound {
		// a missing audio device falls back to the terminal bell
		bell.Init()
	}
	defer bell.Close()

	rt, err := engine.New(newSpinnerApp(kind, bell), cfg.RuntimeOptions(out))
	if err != nil {
		return err
	}
	core.SetCrashCleanup(func() { rt.Close() })
	defer core.SetCrashCleanup(nil)

	return rt.Run()
}
