package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lixenwraith/tickterm/engine"
	"github.com/lixenwraith/tickterm/terminal"
)

const maxLog = 10

// keyviewApp logs every decoded event inside a bordered box
type keyviewApp struct {
	log      []string
	total    int
	width    int
	height   int
	mouseX   int
	mouseY   int
	uptime   time.Duration
	quit     bool
	stats    func() (frames uint64, lastBytes int)
	box      lipgloss.Style
	titleBar lipgloss.Style
}

func newKeyviewApp(width, height int) *keyviewApp {
	return &keyviewApp{
		log:    make([]string, 0, maxLog),
		width:  width,
		height: height,
		mouseX: -1,
		mouseY: -1,
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1).
			Width(48),
		titleBar: lipgloss.NewStyle().Bold(true),
	}
}

func (a *keyviewApp) addLog(s string) {
	if len(a.log) >= maxLog {
		copy(a.log, a.log[1:])
		a.log = a.log[:maxLog-1]
	}
	a.log = append(a.log, s)
}

func (a *keyviewApp) Event(ev terminal.Event) {
	a.total++
	switch ev.Type {
	case terminal.EventKey:
		if ev.Value == "ctrl+c" || ev.Value == "q" {
			a.quit = true
		}
		a.addLog(fmt.Sprintf("%-7s %q", ev.Type, ev.Value))
	case terminal.EventMouse:
		a.mouseX, a.mouseY = ev.X, ev.Y
		a.addLog(fmt.Sprintf("%-7s %s (%d,%d)", ev.Type, ev.Value, ev.X, ev.Y))
	case terminal.EventResize:
		a.width, a.height = ev.X, ev.Y
		a.addLog(fmt.Sprintf("%-7s %dx%d", ev.Type, ev.X, ev.Y))
	}
}

func (a *keyviewApp) Update(_ *engine.Arena, dt time.Duration) bool {
	a.uptime += dt
	return a.quit
}

func (a *keyviewApp) View(frame *engine.Arena) string {
	body := "press keys or click, q to quit"
	if len(a.log) > 0 {
		body = strings.Join(a.log, "\n")
	}

	mark := frame.Mark()
	frame.WriteString(a.titleBar.Render("Input events"))
	frame.WriteByte('\n')
	// markup treats '<' as a tag opener
	frame.WriteString(strings.ReplaceAll(a.box.Render(body), "<", "<<"))
	frame.WriteByte('\n')
	frame.Printf("<dim>size %dx%d | mouse (%d,%d) | events %d | up %s",
		a.width, a.height, a.mouseX, a.mouseY, a.total, a.uptime.Truncate(time.Second))
	if a.stats != nil {
		frames, lastBytes := a.stats()
		frame.Printf(" | frame %d (%dB)", frames, lastBytes)
	}
	frame.WriteString("</>\n")
	return frame.Since(mark)
}
