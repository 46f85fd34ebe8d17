package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// fakeSpeaker swaps the speaker hooks for the duration of a test
type fakeSpeaker struct {
	mu      sync.Mutex
	initErr error
	inits   int
	played  []beep.Streamer
	closes  int
}

func installFakeSpeaker(t *testing.T, initErr error) *fakeSpeaker {
	t.Helper()
	f := &fakeSpeaker{initErr: initErr}
	origInit, origPlay, origClose := speakerInit, speakerPlay, speakerClose
	origLock, origUnlock := speakerLock, speakerUnlock

	speakerInit = func(beep.SampleRate, int) error {
		f.inits++
		return f.initErr
	}
	speakerPlay = func(s ...beep.Streamer) { f.played = append(f.played, s...) }
	speakerClose = func() { f.closes++ }
	speakerLock = f.mu.Lock
	speakerUnlock = f.mu.Unlock

	t.Cleanup(func() {
		speakerInit, speakerPlay, speakerClose = origInit, origPlay, origClose
		speakerLock, speakerUnlock = origLock, origUnlock
	})
	return f
}

// drain streams s to completion and returns the sample count and peak
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatal("Stream never finished")
	return 0, 0
}

// TestToneLength verifies the tone stops after its duration
func TestToneLength(t *testing.T) {
	tone, err := Tone(sampleRate, 440, 100*time.Millisecond, 0.5)
	if err != nil {
		t.Fatalf("Tone failed: %v", err)
	}

	n, peak := drain(t, tone)
	if want := sampleRate.N(100 * time.Millisecond); n != want {
		t.Errorf("Expected %d samples, got %d", want, n)
	}
	if peak > 0.5+1e-9 {
		t.Errorf("Expected peak within volume 0.5, got %f", peak)
	}
	if peak < 0.25 {
		t.Errorf("Expected audible tone, peak %f", peak)
	}
}

// TestToneStartsSilent verifies the attack ramp avoids a click
func TestToneStartsSilent(t *testing.T) {
	tone, err := Tone(sampleRate, 440, 50*time.Millisecond, 1)
	if err != nil {
		t.Fatalf("Tone failed: %v", err)
	}
	buf := make([][2]float64, 1)
	tone.Stream(buf)
	if buf[0][0] != 0 || buf[0][1] != 0 {
		t.Errorf("Expected first sample silent, got %v", buf[0])
	}
}

// TestToneRejectsAliasedFrequency verifies frequencies above Nyquist fail
func TestToneRejectsAliasedFrequency(t *testing.T) {
	if _, err := Tone(sampleRate, 30000, time.Millisecond, 1); err == nil {
		t.Error("Expected error for a frequency above half the sample rate")
	}
}

// TestToneZeroVolumeIsSilent verifies zero volume mutes output
func TestToneZeroVolumeIsSilent(t *testing.T) {
	tone, err := Tone(sampleRate, 440, 20*time.Millisecond, 0)
	if err != nil {
		t.Fatalf("Tone failed: %v", err)
	}
	if _, peak := drain(t, tone); peak != 0 {
		t.Errorf("Expected silence, peak %f", peak)
	}
}

// TestBellTone verifies the bell ding length
func TestBellTone(t *testing.T) {
	tone, err := BellTone(sampleRate, 1)
	if err != nil {
		t.Fatalf("BellTone failed: %v", err)
	}
	n, peak := drain(t, tone)
	// the mix may pad its final chunk
	if n < sampleRate.N(bellDuration) || n > sampleRate.N(bellDuration)+512 {
		t.Errorf("Expected about %d samples, got %d", sampleRate.N(bellDuration), n)
	}
	if peak == 0 || peak > 1 {
		t.Errorf("Unexpected peak %f", peak)
	}
}

// TestBellFallsBackToBEL verifies the terminal bell without a speaker
func TestBellFallsBackToBEL(t *testing.T) {
	f := installFakeSpeaker(t, errors.New("no audio device"))
	var out bytes.Buffer
	b := NewBell(true, 0.5, &out)

	if err := b.Init(); err == nil {
		t.Error("Expected Init to report the speaker failure")
	}
	if b.Active() {
		t.Error("Expected bell inactive after failed Init")
	}

	b.Ring()
	b.Ring()
	if out.String() != "\a\a" {
		t.Errorf("Expected two BEL bytes, got %q", out.String())
	}
	if f.inits != 1 {
		t.Errorf("Expected one speaker init attempt, got %d", f.inits)
	}
	b.Close()
	if f.closes != 0 {
		t.Error("Expected no speaker close when it never opened")
	}
}

// TestBellDisabled verifies a disabled bell is silent
func TestBellDisabled(t *testing.T) {
	f := installFakeSpeaker(t, nil)
	var out bytes.Buffer
	b := NewBell(false, 0.5, &out)

	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	b.Ring()
	if out.Len() != 0 {
		t.Errorf("Expected no output from a disabled bell, got %q", out.String())
	}
	if f.inits != 0 {
		t.Error("Expected disabled bell not to open the speaker")
	}
}

// TestBellPlaysThroughMixer verifies rings go to the speaker mixer
func TestBellPlaysThroughMixer(t *testing.T) {
	f := installFakeSpeaker(t, nil)
	var out bytes.Buffer
	b := NewBell(true, 0.5, &out)

	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !b.Active() || len(f.played) != 1 {
		t.Fatalf("Expected mixer handed to the speaker, active=%v played=%d", b.Active(), len(f.played))
	}
	// second Init is a no-op
	b.Init()
	if f.inits != 1 {
		t.Errorf("Expected one speaker init, got %d", f.inits)
	}

	for i := 0; i < maxVoices+2; i++ {
		b.Ring()
	}
	if got := b.Voices(); got != maxVoices {
		t.Errorf("Expected voices capped at %d, got %d", maxVoices, got)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no BEL while the speaker is active, got %q", out.String())
	}

	b.Close()
	b.Close()
	if f.closes != 1 {
		t.Errorf("Expected one speaker close, got %d", f.closes)
	}
	if b.Voices() != 0 {
		t.Error("Expected mixer cleared on Close")
	}
}

// TestBellRealDevice exercises the real speaker when one is present
func TestBellRealDevice(t *testing.T) {
	if os.Getenv("TICKTERM_AUDIO_TEST") == "" {
		t.Skip("set TICKTERM_AUDIO_TEST=1 to open the audio device")
	}
	b := NewBell(true, 0.1, nil)
	if err := b.Init(); err != nil {
		t.Logf("Audio device unavailable: %v (this is expected in CI)", err)
		return
	}
	defer b.Close()
	b.Ring()
}
