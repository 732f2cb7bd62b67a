//go:build pixy2 && cgo

package pixy2

// libpixyusb2 has no pkg-config file; point CGO_CXXFLAGS at its include
// directories (libpixyusb2/include and arduino/libraries/Pixy2) and
// CGO_LDFLAGS at the directory holding libpixyusb2.a.

/*
#cgo CXXFLAGS: -std=c++11 -I/usr/include/libusb-1.0
#cgo LDFLAGS: -lpixyusb2 -lusb-1.0 -lstdc++
#include "bridge.h"
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/cjeanneret/PixyGo/internal/debug"
)

// usbDevice is a Pixy2 reached through libpixyusb2. Each value owns its
// own vendor object; nothing is shared at package level.
type usbDevice struct {
	mu   sync.Mutex
	h    C.pixy2_handle
	link *usbLink
}

type usbLink struct {
	dev *usbDevice
}

func newUSBDevice() (Device, error) {
	debug.Info("Initializing libpixyusb2 device")
	d := &usbDevice{h: C.pixy2_new()}
	d.link = &usbLink{dev: d}
	return d, nil
}

// Each call holds d.mu for the duration of the C call, so Close cannot
// free the handle underneath it.

func (d *usbDevice) Init() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.h == nil {
		return ResultError
	}
	res := Result(C.pixy2_init(d.h))
	debug.Vendor("init", int(res))
	return res
}

func (d *usbDevice) SetLamp(upper, lower int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.h == nil {
		return
	}
	debug.Trace("setLamp upper=%d lower=%d", upper, lower)
	C.pixy2_set_lamp(d.h, C.int(upper), C.int(lower))
}

func (d *usbDevice) Link() Link {
	return d.link
}

func (d *usbDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.h == nil {
		return nil
	}
	debug.Trace("Pixy2 Close (libpixyusb2)")
	C.pixy2_delete(d.h)
	d.h = nil
	return nil
}

func (l *usbLink) Stop() Result {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.dev.h == nil {
		return ResultError
	}
	res := Result(C.pixy2_stop(l.dev.h))
	debug.Vendor("link.stop", int(res))
	return res
}

func (l *usbLink) Resume() Result {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.dev.h == nil {
		return ResultError
	}
	res := Result(C.pixy2_resume(l.dev.h))
	debug.Vendor("link.resume", int(res))
	return res
}

// GetRawFrame points *frame at the vendor-owned buffer. The slice aliases
// memory inside libpixyusb2 and is only valid until the next call.
func (l *usbLink) GetRawFrame(frame *[]byte) Result {
	if frame == nil {
		return ResultError
	}
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.dev.h == nil {
		return ResultError
	}
	var p *C.uint8_t
	res := Result(C.pixy2_get_raw_frame(l.dev.h, &p))
	debug.Vendor("link.getRawFrame", int(res))
	if res.OK() && p != nil {
		*frame = unsafe.Slice((*byte)(unsafe.Pointer(p)), RawFrameSize)
	}
	return res
}
