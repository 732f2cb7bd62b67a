package pixy2

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/PixyGo/internal/debug"
)

//go:generate mockgen -destination=mock_pixy2.go -package=pixy2 github.com/cjeanneret/PixyGo/internal/hw/pixy2 Device,Link

// Raw frame geometry of the Pixy2 sensor in raw (Bayer) mode.
const (
	RawFrameWidth  = 316
	RawFrameHeight = 208
	RawFrameSize   = RawFrameWidth * RawFrameHeight
)

// Result is a status code returned by the vendor library.
// Zero and positive values mean success, negative values are errors.
type Result int

// Result codes defined by libpixyusb2.
const (
	ResultOK             Result = 0
	ResultError          Result = -1
	ResultBusy           Result = -2
	ResultChecksumError  Result = -3
	ResultTimeout        Result = -4
	ResultButtonOverride Result = -5
	ResultProgChanging   Result = -6
)

// OK reports whether the vendor call succeeded.
func (r Result) OK() bool {
	return r >= 0
}

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultError:
		return "error"
	case ResultBusy:
		return "busy"
	case ResultChecksumError:
		return "checksum error"
	case ResultTimeout:
		return "timeout"
	case ResultButtonOverride:
		return "button override"
	case ResultProgChanging:
		return "program changing"
	}
	if r > 0 {
		return fmt.Sprintf("ok (%d)", int(r))
	}
	return fmt.Sprintf("unknown error (%d)", int(r))
}

// Err returns nil for a successful result, otherwise a *CodeError
// naming the operation that produced it.
func (r Result) Err(op string) error {
	if r.OK() {
		return nil
	}
	return &CodeError{Op: op, Code: r}
}

// CodeError carries a failed vendor status code.
type CodeError struct {
	Op   string
	Code Result
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("pixy2 %s: %s (code %d)", e.Op, e.Code, int(e.Code))
}

// ErrNoUSBSupport is returned when the binary was built without the
// libpixyusb2 binding (build tag "pixy2" and cgo).
var ErrNoUSBSupport = errors.New("pixy2: built without libpixyusb2 support (rebuild with -tags pixy2)")

// Device is the vendor device handle: the in-process representation of a
// Pixy2 camera, owning its communication link.
type Device interface {
	// Init opens the USB connection and returns the vendor result code.
	Init() Result
	// SetLamp drives the upper (white) and lower (RGB) LEDs. Values are
	// passed to the firmware as given.
	SetLamp(upper, lower int)
	// Link returns the communication link owned by the device.
	Link() Link
	// Close releases the device. The handle must not be used afterwards.
	Close() error
}

// Link is the transport through which program control and frame
// retrieval requests reach the device.
type Link interface {
	// Stop halts the program running on the camera. Raw frames are only
	// served while the program is stopped.
	Stop() Result
	// Resume restarts the program halted by Stop.
	Resume() Result
	// GetRawFrame points *frame at a buffer holding one Bayer frame.
	GetRawFrame(frame *[]byte) Result
}

// NewDevice creates a device handle based on the chosen mode.
// If simulated is true, returns a SimDevice (for dev/test).
// Otherwise it returns the libpixyusb2-backed device.
func NewDevice(simulated bool) (Device, error) {
	if simulated {
		debug.Info("Using simulated Pixy2 device (development mode)")
		return NewSimDevice(), nil
	}
	return newUSBDevice()
}
