package bridge

import "github.com/cjeanneret/PixyGo/internal/hw/pixy2"

// Bridge exposes a narrow, stable call surface over a vendor device handle.
// Every call is forwarded as-is and the vendor result code is returned
// verbatim: no validation, retries, translation or logging happen here.
//
// Bridge holds no lock. A device shared between goroutines must be
// serialized by the caller.
type Bridge struct {
	dev pixy2.Device
}

// New creates a bridge over an explicitly owned device handle.
func New(dev pixy2.Device) *Bridge {
	return &Bridge{dev: dev}
}

// Init forwards to the device initialization routine.
func (b *Bridge) Init() pixy2.Result {
	return b.dev.Init()
}

// SetLamp forwards both lamp channels unchanged.
func (b *Bridge) SetLamp(l Lamp) {
	b.dev.SetLamp(l.Upper, l.Lower)
}

// Stop forwards to the link's stop routine.
func (b *Bridge) Stop() pixy2.Result {
	return b.dev.Link().Stop()
}

// Resume forwards to the link's resume routine.
func (b *Bridge) Resume() pixy2.Result {
	return b.dev.Link().Resume()
}

// GetRawFrame hands the caller's output slot to the link. On success the
// slot references the buffer the link populated; the bridge neither copies
// nor owns it.
func (b *Bridge) GetRawFrame(out *[]byte) pixy2.Result {
	return b.dev.Link().GetRawFrame(out)
}

// RawFrame retrieves one frame into a buffer owned by the caller.
// The returned slice is nil unless the result is OK.
func (b *Bridge) RawFrame() ([]byte, pixy2.Result) {
	var slot []byte
	res := b.GetRawFrame(&slot)
	if !res.OK() || slot == nil {
		return nil, res
	}
	frame := make([]byte, len(slot))
	copy(frame, slot)
	return frame, res
}

// Close releases the underlying device.
func (b *Bridge) Close() error {
	return b.dev.Close()
}
