package bayer

import (
	"fmt"
	"image"
)

// Demosaic converts an 8-bit Bayer buffer into an RGBA image using
// bilinear interpolation.
//
// The sensor layout is BGGR seen from the top-left corner:
//   - even row, even column: blue
//   - odd row, odd column:   red
//   - everything else:       green
//
// Border pixels have an incomplete neighbourhood; they take the value
// computed for the nearest interior pixel.
func Demosaic(raw []byte, width, height int) (*image.RGBA, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("bayer frame must be at least 3x3, got %dx%d", width, height)
	}
	if len(raw) != width*height {
		return nil, fmt.Errorf("bayer buffer size %d does not match %dx%d (%d bytes)",
			len(raw), width, height, width*height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		yy := clamp(y, height)
		for x := 0; x < width; x++ {
			xx := clamp(x, width)
			r, g, b := interpolate(raw, width, xx, yy)

			o := img.PixOffset(x, y)
			img.Pix[o+0] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 0xff
		}
	}
	return img, nil
}

// clamp keeps v inside [1, n-2] so that all neighbours exist.
func clamp(v, n int) int {
	switch {
	case v == 0:
		return 1
	case v == n-1:
		return n - 2
	}
	return v
}

func interpolate(raw []byte, width, x, y int) (r, g, b uint8) {
	i := y*width + x
	at := func(j int) uint32 { return uint32(raw[j]) }

	cross := func() uint8 {
		return uint8((at(i-1) + at(i+1) + at(i-width) + at(i+width)) >> 2)
	}
	diag := func() uint8 {
		return uint8((at(i-width-1) + at(i-width+1) + at(i+width-1) + at(i+width+1)) >> 2)
	}
	horiz := func() uint8 { return uint8((at(i-1) + at(i+1)) >> 1) }
	vert := func() uint8 { return uint8((at(i-width) + at(i+width)) >> 1) }

	if y%2 == 1 {
		if x%2 == 1 {
			// red site
			return raw[i], cross(), diag()
		}
		// green site on a red row
		return horiz(), raw[i], vert()
	}
	if x%2 == 1 {
		// green site on a blue row
		return vert(), raw[i], horiz()
	}
	// blue site
	return diag(), cross(), raw[i]
}

// PackRGB flattens an image into 0xRRGGBB words, row-major.
func PackRGB(img *image.RGBA) []uint32 {
	b := img.Bounds()
	out := make([]uint32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			o := img.PixOffset(x, y)
			out = append(out, uint32(img.Pix[o])<<16|uint32(img.Pix[o+1])<<8|uint32(img.Pix[o+2]))
		}
	}
	return out
}
