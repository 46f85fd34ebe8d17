package engine

import (
	"sync"
	"testing"
	"time"
)

var mockStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(5 * time.Millisecond)
	t2 := provider.Now()

	if diff := t2.Sub(t1); diff < 5*time.Millisecond {
		t.Errorf("Expected at least 5ms between readings, got %v", diff)
	}
}

func TestMockTimeProviderSetAndAdvance(t *testing.T) {
	mock := NewMockTimeProvider(mockStart)

	if now := mock.Now(); !now.Equal(mockStart) {
		t.Errorf("Expected start time %v, got %v", mockStart, now)
	}

	later := mockStart.Add(24 * time.Hour)
	mock.SetTime(later)
	mock.Advance(90 * time.Minute)
	if want, now := later.Add(90*time.Minute), mock.Now(); !now.Equal(want) {
		t.Errorf("Expected %v after SetTime and Advance, got %v", want, now)
	}
}

func TestMockTimeProviderAutoStep(t *testing.T) {
	mock := NewMockTimeProvider(mockStart)
	mock.SetAutoStep(10 * time.Millisecond)

	first := mock.Now()
	second := mock.Now()
	if d := second.Sub(first); d != 10*time.Millisecond {
		t.Errorf("Expected each read to step 10ms, got %v", d)
	}
}

func TestMockTimeProviderSleep(t *testing.T) {
	mock := NewMockTimeProvider(mockStart)

	mock.Sleep(30 * time.Millisecond)
	mock.Sleep(-time.Second)
	mock.Sleep(0)
	mock.Sleep(20 * time.Millisecond)

	if mock.Slept() != 50*time.Millisecond {
		t.Errorf("Expected 50ms slept, got %v", mock.Slept())
	}
	if now := mock.Now(); !now.Equal(mockStart.Add(50 * time.Millisecond)) {
		t.Errorf("Expected Sleep to advance the clock, got %v", now)
	}
}

func TestMockTimeProviderConcurrency(t *testing.T) {
	mock := NewMockTimeProvider(mockStart)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = mock.Now()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				mock.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if want := mockStart.Add(200 * time.Millisecond); !mock.Now().Equal(want) {
		t.Errorf("Expected clock at %v after concurrent sleeps", want)
	}
}

func TestTimeProviderInterface(t *testing.T) {
	var _ TimeProvider = &MonotonicTimeProvider{}
	var _ TimeProvider = &MockTimeProvider{}
}
