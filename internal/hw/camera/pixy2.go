package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/PixyGo/internal/debug"
	"github.com/cjeanneret/PixyGo/internal/hw/bridge"
	"github.com/cjeanneret/PixyGo/internal/hw/pixy2"
)

// Pixy2 is a Camera implementation for a Pixy2 reached through the
// device bridge.
//
// Open sequence:
// 1. Init the device (opens USB)
// 2. Stop the on-board program (raw frames are only served while stopped)
// 3. Apply the configured lamp
//
// All calls into the bridge are serialized: the bridge itself is not safe
// for concurrent use.
type Pixy2 struct {
	mu     sync.Mutex
	bridge *bridge.Bridge
	lamp   bridge.Lamp
	seq    uint64
	closed bool
	now    func() time.Time
}

// OpenPixy2 initializes the device behind b and prepares it for raw frame
// capture with the given lamp setting.
func OpenPixy2(b *bridge.Bridge, lamp bridge.Lamp) (*Pixy2, error) {
	if err := lamp.Validate(); err != nil {
		return nil, err
	}

	debug.Verbose("Camera: initializing Pixy2")
	if err := b.Init().Err("init"); err != nil {
		return nil, fmt.Errorf("initialize pixy2: %w", err)
	}

	debug.Verbose("Camera: stopping on-board program")
	if err := b.Stop().Err("link.stop"); err != nil {
		return nil, fmt.Errorf("stop pixy2 program: %w", err)
	}

	b.SetLamp(lamp)
	debug.Lamp(lamp.Upper, lamp.Lower)

	debug.Info("Pixy2 ready (%dx%d raw frames)", pixy2.RawFrameWidth, pixy2.RawFrameHeight)
	return &Pixy2{
		bridge: b,
		lamp:   lamp,
		now:    time.Now,
	}, nil
}

// Grab fetches one raw Bayer frame.
func (p *Pixy2) Grab(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}

	raw, res := p.bridge.RawFrame()
	if err := res.Err("link.getRawFrame"); err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}
	if len(raw) != pixy2.RawFrameSize {
		return nil, fmt.Errorf("grab frame: got %d bytes, want %d", len(raw), pixy2.RawFrameSize)
	}

	p.seq++
	f := &Frame{
		ID:     uuid.New(),
		Seq:    p.seq,
		Time:   p.now(),
		Width:  pixy2.RawFrameWidth,
		Height: pixy2.RawFrameHeight,
		Raw:    raw,
	}
	debug.Frame(f.Seq, len(raw))
	return f, nil
}

// SetLamp validates and applies a new lamp setting.
func (p *Pixy2) SetLamp(l bridge.Lamp) error {
	if err := l.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.bridge.SetLamp(l)
	p.lamp = l
	debug.Lamp(l.Upper, l.Lower)
	return nil
}

// Lamp returns the current lamp setting.
func (p *Pixy2) Lamp() bridge.Lamp {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lamp
}

// Close turns the lamp off, resumes the on-board program and releases
// the device. Calling Close more than once is a no-op.
func (p *Pixy2) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	debug.Verbose("Camera: releasing Pixy2")
	p.bridge.SetLamp(bridge.Lamp{Upper: bridge.LampOff, Lower: bridge.LampOff})
	resumeErr := p.bridge.Resume().Err("link.resume")
	return errors.Join(resumeErr, p.bridge.Close())
}
