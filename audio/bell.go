package audio

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// speaker entry points, replaced in tests to run without a device
var (
	speakerInit   = speaker.Init
	speakerPlay   = speaker.Play
	speakerClose  = speaker.Close
	speakerLock   = speaker.Lock
	speakerUnlock = speaker.Unlock
)

// maxVoices caps overlapping rings
const maxVoices = 4

// Bell gives audible feedback through the speaker
// Without an audio device it writes the terminal BEL byte instead
type Bell struct {
	mu       sync.Mutex
	enabled  bool
	volume   float64
	fallback io.Writer

	mixer  *beep.Mixer
	active bool
}

// NewBell returns a bell writing BEL to fallback until Init succeeds
// A disabled bell is silent; a nil fallback drops BEL
func NewBell(enabled bool, volume float64, fallback io.Writer) *Bell {
	if volume <= 0 || volume > 1 {
		volume = 0.5
	}
	return &Bell{
		enabled:  enabled,
		volume:   volume,
		fallback: fallback,
		mixer:    &beep.Mixer{},
	}
}

// Init opens the speaker; on failure the bell keeps using BEL
func (b *Bell) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.active {
		return nil
	}
	if err := speakerInit(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		log.Printf("audio: speaker unavailable, using terminal bell: %v", err)
		return err
	}
	speakerPlay(b.mixer)
	b.active = true
	return nil
}

// Active reports whether rings go to the speaker
func (b *Bell) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Ring plays the bell tone once
func (b *Bell) Ring() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}
	if !b.active {
		if b.fallback != nil {
			b.fallback.Write([]byte{0x07})
		}
		return
	}

	tone, err := BellTone(sampleRate, b.volume)
	if err != nil {
		log.Printf("audio: bell tone: %v", err)
		return
	}
	speakerLock()
	if b.mixer.Len() < maxVoices {
		b.mixer.Add(tone)
	}
	speakerUnlock()
}

// Voices returns the number of rings still playing
func (b *Bell) Voices() int {
	speakerLock()
	defer speakerUnlock()
	return b.mixer.Len()
}

// Close stops playback and releases the speaker
func (b *Bell) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return
	}
	speakerLock()
	b.mixer.Clear()
	speakerUnlock()
	speakerClose()
	b.active = false
}
