package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/cjeanneret/PixyGo/internal/debug"
	"github.com/cjeanneret/PixyGo/internal/hw/gpio"
)

// Config describes the shutter button wiring.
type Config struct {
	Pin          int           // BCM pin number
	PollInterval time.Duration // delay between two reads
	Debounce     time.Duration // how long the pin must stay low to count as a press
}

// Watcher detects presses of a push button wired between a GPIO pin and
// ground, with the internal pull-up enabled: idle reads High, pressed
// reads Low.
type Watcher struct {
	drv    gpio.Driver
	cfg    Config
	stable int // consecutive low samples needed for a press
	last   gpio.Level
}

// NewWatcher configures the pin as a pull-up input.
func NewWatcher(drv gpio.Driver, cfg Config) (*Watcher, error) {
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be > 0, got %s", cfg.PollInterval)
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("debounce must be >= 0, got %s", cfg.Debounce)
	}
	if err := drv.SetupPin(cfg.Pin, gpio.InputPullUp); err != nil {
		return nil, fmt.Errorf("setup trigger pin %d: %w", cfg.Pin, err)
	}
	last, err := drv.ReadPin(cfg.Pin)
	if err != nil {
		return nil, fmt.Errorf("read trigger pin %d: %w", cfg.Pin, err)
	}

	stable := int((cfg.Debounce + cfg.PollInterval - 1) / cfg.PollInterval)
	if stable < 1 {
		stable = 1
	}

	debug.Verbose("Trigger: pin %d, poll %s, debounce %s (%d samples)", cfg.Pin, cfg.PollInterval, cfg.Debounce, stable)
	return &Watcher{drv: drv, cfg: cfg, stable: stable, last: last}, nil
}

// Wait blocks until the next debounced press (High to Low transition).
// A button already held down when Wait is called must be released first.
func (w *Watcher) Wait(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	lows := 0
	for {
		level, err := w.drv.ReadPin(w.cfg.Pin)
		if err != nil {
			return fmt.Errorf("read trigger pin %d: %w", w.cfg.Pin, err)
		}

		switch {
		case level == gpio.High:
			w.last = gpio.High
			lows = 0
		case w.last == gpio.High:
			lows++
			if lows >= w.stable {
				w.last = gpio.Low
				debug.Live("Trigger pressed (pin %d)", w.cfg.Pin)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Run calls fn once per press until ctx is cancelled. Errors from fn are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	for {
		if err := w.Wait(ctx); err != nil {
			return err
		}
		if err := fn(ctx); err != nil {
			debug.Error(fmt.Errorf("trigger action: %w", err))
		}
	}
}
