package engine

import (
	"sync"
	"time"
)

// MockTimeProvider provides a controllable time source for testing
// Sleep advances the mock clock, so a Runtime driven by it never waits
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
	step        time.Duration
	slept       time.Duration
}

// NewMockTimeProvider creates a new mock time provider with the given start time
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{
		currentTime: startTime,
	}
}

// Now returns the current mocked time, advanced by the auto step after each read
func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.currentTime
	m.currentTime = m.currentTime.Add(m.step)
	return now
}

// SetTime sets the current time for the mock
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance advances the current time by the given duration
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// SetAutoStep makes every Now call advance the clock by d afterwards
func (m *MockTimeProvider) SetAutoStep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = d
}

// Sleep advances the clock instead of blocking, usable as Options.Sleep
func (m *MockTimeProvider) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
	m.slept += d
}

// Slept returns the total duration passed to Sleep
func (m *MockTimeProvider) Slept() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slept
}
