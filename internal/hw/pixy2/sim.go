package pixy2

import (
	"sync"

	"github.com/cjeanneret/PixyGo/internal/debug"
)

// SimDevice is a simulated device for development that needs no hardware.
// It serves a synthetic Bayer test pattern while the link is stopped,
// and reports ResultBusy otherwise, like the real firmware.
type SimDevice struct {
	mu      sync.Mutex
	inits   int
	upper   int
	lower   int
	stopped bool
	frames  int
	closed  bool
	link    *simLink
}

// NewSimDevice creates a simulated device with its link.
func NewSimDevice() *SimDevice {
	d := &SimDevice{}
	d.link = &simLink{dev: d}
	return d
}

func (d *SimDevice) Init() Result {
	d.mu.Lock()
	d.inits++
	d.mu.Unlock()
	debug.Vendor("sim init", int(ResultOK))
	return ResultOK
}

func (d *SimDevice) SetLamp(upper, lower int) {
	d.mu.Lock()
	d.upper, d.lower = upper, lower
	d.mu.Unlock()
	debug.Trace("sim setLamp upper=%d lower=%d", upper, lower)
}

func (d *SimDevice) Link() Link {
	return d.link
}

func (d *SimDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	debug.Trace("Pixy2 Close (simulated)")
	return nil
}

// Lamp returns the last lamp values received.
func (d *SimDevice) Lamp() (upper, lower int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.upper, d.lower
}

// Inits returns how many times Init was called.
func (d *SimDevice) Inits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inits
}

// Stopped reports whether the on-board program is currently halted.
func (d *SimDevice) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Closed reports whether Close was called.
func (d *SimDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type simLink struct {
	dev *SimDevice
}

func (l *simLink) Stop() Result {
	l.dev.mu.Lock()
	l.dev.stopped = true
	l.dev.mu.Unlock()
	debug.Vendor("sim link.stop", int(ResultOK))
	return ResultOK
}

func (l *simLink) Resume() Result {
	l.dev.mu.Lock()
	l.dev.stopped = false
	l.dev.mu.Unlock()
	debug.Vendor("sim link.resume", int(ResultOK))
	return ResultOK
}

func (l *simLink) GetRawFrame(frame *[]byte) Result {
	if frame == nil {
		debug.Vendor("sim link.getRawFrame", int(ResultError))
		return ResultError
	}
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if !l.dev.stopped {
		debug.Vendor("sim link.getRawFrame", int(ResultBusy))
		return ResultBusy
	}
	*frame = TestPattern(l.dev.frames)
	l.dev.frames++
	debug.Vendor("sim link.getRawFrame", int(ResultOK))
	return ResultOK
}

// TestPattern renders a RawFrameSize Bayer buffer: a horizontal red ramp,
// a vertical blue ramp and a green channel that shifts with offset, so
// consecutive frames differ.
func TestPattern(offset int) []byte {
	buf := make([]byte, RawFrameSize)
	for y := 0; y < RawFrameHeight; y++ {
		for x := 0; x < RawFrameWidth; x++ {
			var v int
			switch {
			case y%2 == 1 && x%2 == 1: // red
				v = x * 255 / (RawFrameWidth - 1)
			case y%2 == 0 && x%2 == 0: // blue
				v = y * 255 / (RawFrameHeight - 1)
			default: // green
				v = (x + y + offset*8) % 256
			}
			buf[y*RawFrameWidth+x] = byte(v)
		}
	}
	return buf
}
