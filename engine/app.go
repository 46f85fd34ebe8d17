package engine

import (
	"time"

	"github.com/lixenwraith/tickterm/terminal"
)

// Application is driven by the Runtime once per tick
// Within a tick every buffered Event is delivered first, then Update, then View
type Application interface {
	// Update advances state by dt; returning true ends the run after this tick
	Update(frame *Arena, dt time.Duration) bool
	// View returns the complete next frame, it must not perform terminal I/O
	// The returned text may live in frame and is read before frame is reused
	View(frame *Arena) string
	// Event receives one decoded input unit
	Event(ev terminal.Event)
}

// AppFuncs adapts plain functions to Application, nil members are no-ops
type AppFuncs struct {
	UpdateFunc func(frame *Arena, dt time.Duration) bool
	ViewFunc   func(frame *Arena) string
	EventFunc  func(ev terminal.Event)
}

func (a AppFuncs) Update(frame *Arena, dt time.Duration) bool {
	if a.UpdateFunc == nil {
		return false
	}
	return a.UpdateFunc(frame, dt)
}

func (a AppFuncs) View(frame *Arena) string {
	if a.ViewFunc == nil {
		return ""
	}
	return a.ViewFunc(frame)
}

func (a AppFuncs) Event(ev terminal.Event) {
	if a.EventFunc != nil {
		a.EventFunc(ev)
	}
}
