package web

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/cjeanneret/PixyGo/internal/hw/camera"
	"github.com/cjeanneret/PixyGo/internal/logic/capture"
)

// FrameHub fans PNG-encoded frames out to live viewers.
// Each viewer buffers two frames; a slow viewer skips frames.
type FrameHub struct {
	hub *hub[[]byte]
}

func NewFrameHub() *FrameHub {
	return &FrameHub{hub: newHub[[]byte](2)}
}

// Subscribe returns a channel of PNG images and a cleanup function.
func (f *FrameHub) Subscribe() (<-chan []byte, func()) {
	return f.hub.subscribe()
}

// Viewers returns the number of connected viewers.
func (f *FrameHub) Viewers() int {
	return f.hub.count()
}

// Publish sends an encoded image to every viewer.
func (f *FrameHub) Publish(data []byte) {
	f.hub.publish(data)
}

// Sink returns a capture sink that publishes frames while at least one
// viewer is connected. Frames are not encoded when nobody is watching.
func (f *FrameHub) Sink() capture.Sink {
	return capture.SinkFunc(func(fr *camera.Frame) error {
		if f.Viewers() == 0 {
			return nil
		}
		data, err := encodePNG(fr)
		if err != nil {
			return err
		}
		f.Publish(data)
		return nil
	})
}

func encodePNG(f *camera.Frame) ([]byte, error) {
	img, err := f.Image()
	if err != nil {
		return nil, fmt.Errorf("demosaic frame %d: %w", f.Seq, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Seq, err)
	}
	return buf.Bytes(), nil
}
