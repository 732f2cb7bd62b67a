package camera

import (
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/cjeanneret/PixyGo/internal/logic/bayer"
)

// Frame is one undecoded sensor image with its acquisition metadata.
type Frame struct {
	ID     uuid.UUID
	Seq    uint64
	Time   time.Time
	Width  int
	Height int
	Raw    []byte // 8-bit Bayer data, Width*Height bytes
}

// Image demosaics the raw data into an RGBA image.
func (f *Frame) Image() (*image.RGBA, error) {
	return bayer.Demosaic(f.Raw, f.Width, f.Height)
}
