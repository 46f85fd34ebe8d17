package main

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lixenwraith/tickterm/component"
	"github.com/lixenwraith/tickterm/engine"
	"github.com/lixenwraith/tickterm/terminal"
)

// presetCycle is how long each preset shows before the next one
const presetCycle = 2 * time.Second

// ringer is the audible side of the demo
type ringer interface {
	Ring()
}

// spinnerApp cycles through every spinner preset
type spinnerApp struct {
	kind    component.SpinnerKind
	spinner *component.Spinner
	passed  time.Duration
	paused  bool
	quit    bool

	bell ringer
	help string
}

func newSpinnerApp(kind component.SpinnerKind, bell ringer) *spinnerApp {
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render("q quit · n next · p previous · space pause · b bell")

	return &spinnerApp{
		kind:    kind,
		spinner: component.NewSpinner(kind),
		bell:    bell,
		help:    help,
	}
}

func (a *spinnerApp) setKind(kind component.SpinnerKind) {
	a.kind = kind
	a.spinner = component.NewSpinner(kind)
	a.passed = 0
}

func (a *spinnerApp) Event(ev terminal.Event) {
	if ev.Type != terminal.EventKey || !ev.Pressed {
		return
	}
	switch ev.Value {
	case "q", "ctrl+c", "escape":
		a.quit = true
	case "n", "right":
		a.setKind(a.kind.Next())
	case "p", "left":
		kinds := component.SpinnerKinds()
		a.setKind(kinds[(int(a.kind)+len(kinds)-1)%len(kinds)])
	case " ":
		a.paused = !a.paused
	case "b":
		if a.bell != nil {
			a.bell.Ring()
		}
	}
}

func (a *spinnerApp) Update(_ *engine.Arena, dt time.Duration) bool {
	if a.quit {
		return true
	}
	a.spinner.Advance(dt)
	if !a.paused {
		a.passed += dt
		for a.passed >= presetCycle {
			a.passed -= presetCycle
			a.kind = a.kind.Next()
			a.spinner = component.NewSpinner(a.kind)
		}
	}
	return false
}

func (a *spinnerApp) View(frame *engine.Arena) string {
	state := ""
	if a.paused {
		state = " <yellow>(paused)</>"
	}
	return frame.Printf("<magenta>%s </>waiting forever <blue>📁 <green>📄</></>\n<dim>%-8s</>%s\n%s\n",
		a.spinner.View(), a.kind, state, a.help)
}
