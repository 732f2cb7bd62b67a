package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/cjeanneret/PixyGo/internal/debug"
	"github.com/cjeanneret/PixyGo/internal/hw/camera"
)

// Sequence contains high-level logic for frame capture
// (single shots, bursts, timelapse).
type Sequence struct {
	camera camera.Camera
	sink   Sink
}

func NewSequence(c camera.Camera, s Sink) *Sequence {
	return &Sequence{
		camera: c,
		sink:   s,
	}
}

// BurstParams defines the parameters for a burst of frames.
type BurstParams struct {
	Count    int           // number of frames, 0 = until cancelled
	Interval time.Duration // delay between two grabs
}

// Capture grabs a single frame and hands it to the sink.
func (s *Sequence) Capture(ctx context.Context) (*camera.Frame, error) {
	f, err := s.camera.Grab(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sink.Save(f); err != nil {
		return f, fmt.Errorf("save frame %d: %w", f.Seq, err)
	}
	return f, nil
}

// RunBurst grabs p.Count frames, waiting p.Interval between them.
// The context is checked before every grab and during every wait.
func (s *Sequence) RunBurst(ctx context.Context, p BurstParams) error {
	if p.Count < 0 {
		return fmt.Errorf("burst count must be >= 0, got %d", p.Count)
	}
	if p.Interval < 0 {
		return fmt.Errorf("burst interval must be >= 0, got %s", p.Interval)
	}

	debug.Section("Burst")
	if p.Count == 0 {
		debug.Live("Capturing until stopped (interval %s)", p.Interval)
	} else {
		debug.Live("Capturing %d frames (interval %s)", p.Count, p.Interval)
	}

	for i := 0; p.Count == 0 || i < p.Count; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if i > 0 && p.Interval > 0 {
			timer := time.NewTimer(p.Interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		f, err := s.Capture(ctx)
		if err != nil {
			return err
		}
		debug.Verbose("  Frame %d captured (seq %d)", i+1, f.Seq)
	}

	debug.Live("Burst complete")
	return nil
}
