package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cjeanneret/PixyGo/internal/hw/gpio"
)

// scriptedDriver returns a fixed sequence of levels, then repeats the last one.
type scriptedDriver struct {
	gpio.MockDriver
	mu      sync.Mutex
	levels  []gpio.Level
	reads   int
	readErr error
}

func (s *scriptedDriver) SetupPin(int, gpio.PinMode) error { return nil }

func (s *scriptedDriver) ReadPin(int) (gpio.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return gpio.Low, s.readErr
	}
	i := s.reads
	if i >= len(s.levels) {
		i = len(s.levels) - 1
	}
	s.reads++
	return s.levels[i], nil
}

const (
	H = gpio.High
	L = gpio.Low
)

func fastConfig(debounce time.Duration) Config {
	return Config{Pin: 17, PollInterval: time.Millisecond, Debounce: debounce}
}

func TestNewWatcher_Validation(t *testing.T) {
	drv := gpio.NewMockDriver()
	if _, err := NewWatcher(drv, Config{Pin: 17}); err == nil {
		t.Error("expected error for zero poll interval")
	}
	if _, err := NewWatcher(drv, Config{Pin: 17, PollInterval: time.Millisecond, Debounce: -time.Millisecond}); err == nil {
		t.Error("expected error for negative debounce")
	}
}

func TestNewWatcher_SetsPullUp(t *testing.T) {
	drv := gpio.NewMockDriver()
	if _, err := NewWatcher(drv, fastConfig(0)); err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if mode, ok := drv.Mode(17); !ok || mode != gpio.InputPullUp {
		t.Errorf("pin mode = %v, %v, want InputPullUp", mode, ok)
	}
}

func TestWait_FallingEdge(t *testing.T) {
	// initial read, then idle, then pressed
	drv := &scriptedDriver{levels: []gpio.Level{H, H, H, L}}
	w, err := NewWatcher(drv, fastConfig(0))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func TestWait_DebounceRejectsGlitch(t *testing.T) {
	// debounce of 3 samples: a 1-sample glitch must not count,
	// the following 3-sample low run must.
	drv := &scriptedDriver{levels: []gpio.Level{H, H, L, H, H, L, L, L}}
	w, err := NewWatcher(drv, fastConfig(3*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	drv.mu.Lock()
	reads := drv.reads
	drv.mu.Unlock()
	if reads != 8 {
		t.Errorf("press detected after %d reads, want 8", reads)
	}
}

func TestWait_HeldButtonNeedsRelease(t *testing.T) {
	// held at startup, never released
	drv := &scriptedDriver{levels: []gpio.Level{L}}
	w, err := NewWatcher(drv, fastConfig(0))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want DeadlineExceeded", err)
	}
}

func TestWait_ReadError(t *testing.T) {
	drv := &scriptedDriver{levels: []gpio.Level{H}}
	w, err := NewWatcher(drv, fastConfig(0))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	readErr := errors.New("bus error")
	drv.mu.Lock()
	drv.readErr = readErr
	drv.mu.Unlock()

	if err := w.Wait(context.Background()); !errors.Is(err, readErr) {
		t.Errorf("Wait = %v, want wrapped read error", err)
	}
}

func TestRun_OncePerPress(t *testing.T) {
	// two presses separated by a release, then idle forever
	drv := &scriptedDriver{levels: []gpio.Level{H, L, L, H, H, L, H}}
	w, err := NewWatcher(drv, fastConfig(0))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var mu sync.Mutex
	presses := 0
	err = w.Run(ctx, func(context.Context) error {
		mu.Lock()
		presses++
		mu.Unlock()
		return errors.New("ignored")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run = %v, want DeadlineExceeded", err)
	}
	if presses != 2 {
		t.Errorf("presses = %d, want 2", presses)
	}
}
