package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

const sampleRate = beep.SampleRate(48000)

// Bell timing
const (
	bellDuration        = 150 * time.Millisecond
	bellAttack          = 5 * time.Millisecond
	bellFundamentalFade = 140 * time.Millisecond
	bellOvertoneFade    = 60 * time.Millisecond
	bellFrequency       = 880.0
)

// envelope fades a stream in and out over a fixed length
type envelope struct {
	streamer beep.Streamer
	pos      int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.pos >= e.total {
		return 0, false
	}
	if left := e.total - e.pos; len(samples) > left {
		samples = samples[:left]
	}
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.total - e.release
	for i := 0; i < n; i++ {
		gain := 1.0
		if e.attack > 0 && e.pos < e.attack {
			gain = float64(e.pos) / float64(e.attack)
		}
		if e.release > 0 && e.pos >= releaseStart {
			gain = min(gain, float64(e.total-e.pos)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly, 0 is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Tone returns a faded sine of length d at linear volume vol
func Tone(rate beep.SampleRate, freq float64, d time.Duration, vol float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("sine %.0fHz: %w", freq, err)
	}
	fade := min(d/2, 20*time.Millisecond)
	shaped := newEnvelope(beep.Take(rate.N(d), sine), d, min(bellAttack, d/2), fade, rate)
	return newVolume(shaped, vol), nil
}

// BellTone is a fundamental plus octave ding at volume vol
func BellTone(rate beep.SampleRate, vol float64) (beep.Streamer, error) {
	fund, err := generators.SineTone(rate, bellFrequency)
	if err != nil {
		return nil, err
	}
	over, err := generators.SineTone(rate, bellFrequency*2)
	if err != nil {
		return nil, err
	}

	n := rate.N(bellDuration)
	mixed := beep.Mix(
		newVolume(newEnvelope(beep.Take(n, fund), bellDuration, bellAttack, bellFundamentalFade, rate), 0.7),
		newVolume(newEnvelope(beep.Take(n, over), bellDuration, bellAttack, bellOvertoneFade, rate), 0.3),
	)
	return newVolume(mixed, vol), nil
}
