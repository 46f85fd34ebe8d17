package terminal

import "io"

// MouseMode controls which mouse events are reported (bitmask)
type MouseMode uint8

const (
	MouseModeNone   MouseMode = 0
	MouseModeClick  MouseMode = 1 << 0 // Press/release events
	MouseModeDrag   MouseMode = 1 << 1 // Drag events (button held + motion)
	MouseModeMotion MouseMode = 1 << 2 // All motion events
)

var (
	csiMouseClickOn   = []byte("\x1b[?1000h")
	csiMouseClickOff  = []byte("\x1b[?1000l")
	csiMouseDragOn    = []byte("\x1b[?1002h")
	csiMouseDragOff   = []byte("\x1b[?1002l")
	csiMouseMotionOn  = []byte("\x1b[?1003h")
	csiMouseMotionOff = []byte("\x1b[?1003l")
	csiMouseSGROn     = []byte("\x1b[?1006h")
	csiMouseSGROff    = []byte("\x1b[?1006l")
)

// SetMouseMode writes the reporting sequences for mode
// Reports always use the SGR encoding the decoder understands
func SetMouseMode(w io.Writer, mode MouseMode) error {
	var seq []byte
	seq = append(seq, csiMouseMotionOff...)
	seq = append(seq, csiMouseDragOff...)
	seq = append(seq, csiMouseClickOff...)
	if mode == MouseModeNone {
		seq = append(seq, csiMouseSGROff...)
		_, err := w.Write(seq)
		return err
	}

	seq = append(seq, csiMouseSGROn...)
	if mode&MouseModeClick != 0 {
		seq = append(seq, csiMouseClickOn...)
	}
	if mode&MouseModeDrag != 0 {
		seq = append(seq, csiMouseDragOn...)
	}
	if mode&MouseModeMotion != 0 {
		seq = append(seq, csiMouseMotionOn...)
	}
	_, err := w.Write(seq)
	return err
}
