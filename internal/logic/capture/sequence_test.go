package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/PixyGo/internal/hw/bridge"
	"github.com/cjeanneret/PixyGo/internal/hw/camera"
	"github.com/cjeanneret/PixyGo/internal/hw/pixy2"
)

// mockCamera records Grab calls and serves test-pattern frames.
type mockCamera struct {
	mu      sync.Mutex
	grabs   int
	failAt  int // 1-based grab that fails, 0 = never
	failErr error
}

func (m *mockCamera) Grab(ctx context.Context) (*camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grabs++
	if m.failAt != 0 && m.grabs == m.failAt {
		return nil, m.failErr
	}
	return &camera.Frame{
		ID:     uuid.New(),
		Seq:    uint64(m.grabs),
		Time:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Width:  pixy2.RawFrameWidth,
		Height: pixy2.RawFrameHeight,
		Raw:    pixy2.TestPattern(m.grabs),
	}, nil
}

func (m *mockCamera) SetLamp(bridge.Lamp) error { return nil }
func (m *mockCamera) Close() error              { return nil }

func (m *mockCamera) grabCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grabs
}

// recordingSink collects frame sequence numbers.
type recordingSink struct {
	mu   sync.Mutex
	seqs []uint64
	err  error
}

func (r *recordingSink) Save(f *camera.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs = append(r.seqs, f.Seq)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seqs)
}

func TestCapture_Single(t *testing.T) {
	cam := &mockCamera{}
	sink := &recordingSink{}
	seq := NewSequence(cam, sink)

	f, err := seq.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if f.Seq != 1 {
		t.Errorf("seq = %d, want 1", f.Seq)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d frames, want 1", sink.count())
	}
}

func TestCapture_SinkError(t *testing.T) {
	sinkErr := errors.New("disk full")
	seq := NewSequence(&mockCamera{}, &recordingSink{err: sinkErr})

	f, err := seq.Capture(context.Background())
	if !errors.Is(err, sinkErr) {
		t.Errorf("err = %v, want wrapped sink error", err)
	}
	if f == nil {
		t.Error("frame should still be returned when the sink fails")
	}
}

func TestRunBurst_FrameCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"1 frame", 1},
		{"3 frames", 3},
		{"12 frames", 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cam := &mockCamera{}
			sink := &recordingSink{}
			seq := NewSequence(cam, sink)

			err := seq.RunBurst(context.Background(), BurstParams{
				Count:    tc.count,
				Interval: 1 * time.Microsecond,
			})
			if err != nil {
				t.Fatalf("RunBurst: %v", err)
			}
			if cam.grabCount() != tc.count {
				t.Errorf("grabs = %d, want %d", cam.grabCount(), tc.count)
			}
			if sink.count() != tc.count {
				t.Errorf("saved = %d, want %d", sink.count(), tc.count)
			}
		})
	}
}

func TestRunBurst_InvalidParams(t *testing.T) {
	seq := NewSequence(&mockCamera{}, &recordingSink{})
	if err := seq.RunBurst(context.Background(), BurstParams{Count: -1}); err == nil {
		t.Error("expected error for negative count")
	}
	if err := seq.RunBurst(context.Background(), BurstParams{Count: 1, Interval: -time.Second}); err == nil {
		t.Error("expected error for negative interval")
	}
}

func TestRunBurst_GrabErrorStops(t *testing.T) {
	grabErr := errors.New("busy")
	cam := &mockCamera{failAt: 3, failErr: grabErr}
	sink := &recordingSink{}
	seq := NewSequence(cam, sink)

	err := seq.RunBurst(context.Background(), BurstParams{Count: 10})
	if !errors.Is(err, grabErr) {
		t.Errorf("err = %v, want grab error", err)
	}
	if sink.count() != 2 {
		t.Errorf("saved = %d, want 2", sink.count())
	}
}

func TestRunBurst_ContextCancellation(t *testing.T) {
	cam := &mockCamera{}
	seq := NewSequence(cam, &recordingSink{})

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately
	cancel()

	err := seq.RunBurst(ctx, BurstParams{Count: 10000, Interval: time.Microsecond})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if cam.grabCount() != 0 {
		t.Errorf("expected no grabs, got %d", cam.grabCount())
	}
}

func TestRunBurst_ContextCancelMidSequence(t *testing.T) {
	cam := &mockCamera{}
	seq := NewSequence(cam, &recordingSink{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := seq.RunBurst(ctx, BurstParams{Count: 100, Interval: 10 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	grabs := cam.grabCount()
	if grabs == 0 {
		t.Error("expected at least some frames before cancellation")
	}
	if grabs >= 100 {
		t.Errorf("expected fewer than 100 frames due to cancellation, got %d", grabs)
	}
}

func TestRunBurst_UntilCancelled(t *testing.T) {
	cam := &mockCamera{}
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopAfter := SinkFunc(func(f *camera.Frame) error {
		if f.Seq == 5 {
			cancel()
		}
		return sink.Save(f)
	})
	seq := NewSequence(cam, stopAfter)

	err := seq.RunBurst(ctx, BurstParams{Count: 0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sink.count() != 5 {
		t.Errorf("saved = %d, want 5", sink.count())
	}
}
