package camera

import (
	"context"
	"errors"

	"github.com/cjeanneret/PixyGo/internal/hw/bridge"
)

// ErrClosed is returned by operations on a camera that has been closed.
var ErrClosed = errors.New("camera: closed")

// Camera is the high-level interface used by the rest of the application.
// It represents an abstract frame source, regardless of how it's
// reached (vendor SDK, simulated device, etc.).
type Camera interface {
	// Grab acquires a single raw frame.
	Grab(ctx context.Context) (*Frame, error)
	// SetLamp switches the camera's illumination.
	SetLamp(l bridge.Lamp) error
	// Close releases the device.
	Close() error
}
