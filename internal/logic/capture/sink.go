package capture

import (
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cjeanneret/PixyGo/internal/debug"
	"github.com/cjeanneret/PixyGo/internal/hw/camera"
)

// Sink receives captured frames.
type Sink interface {
	Save(f *camera.Frame) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(f *camera.Frame) error

func (fn SinkFunc) Save(f *camera.Frame) error { return fn(f) }

// Tee returns a sink that forwards every frame to all sinks in order.
// Every sink is called even if an earlier one fails; errors are joined.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(f *camera.Frame) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Save(f); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Supported image formats for FileSink.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// FileSink writes demosaiced frames to disk as PNG or JPEG, optionally
// alongside the untouched Bayer data (.bayer).
//
// Filename format: frame_{seq:06d}_{timestamp}.{ext}
// Example: frame_000042_20251105_234517.123.png
//
// Safe for concurrent use.
type FileSink struct {
	outputDir   string
	format      string
	jpegQuality int
	saveRaw     bool

	saved   atomic.Uint64
	dropped atomic.Uint64
}

// NewFileSink creates the output directory if needed and validates the format.
// jpegQuality (1-100) is only used for JPEG.
func NewFileSink(outputDir, format string, jpegQuality int, saveRaw bool) (*FileSink, error) {
	if format != FormatPNG && format != FormatJPEG {
		return nil, fmt.Errorf("unsupported format: %s (must be png or jpeg)", format)
	}
	if format == FormatJPEG && (jpegQuality < 1 || jpegQuality > 100) {
		return nil, fmt.Errorf("jpeg quality must be 1-100, got %d", jpegQuality)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &FileSink{
		outputDir:   outputDir,
		format:      format,
		jpegQuality: jpegQuality,
		saveRaw:     saveRaw,
	}, nil
}

// Save encodes f and writes it to the output directory.
func (s *FileSink) Save(f *camera.Frame) error {
	if err := s.save(f); err != nil {
		s.dropped.Add(1)
		return err
	}
	s.saved.Add(1)
	return nil
}

func (s *FileSink) save(f *camera.Frame) error {
	img, err := f.Image()
	if err != nil {
		return fmt.Errorf("demosaic failed: %w", err)
	}

	base := s.baseName(f)
	path := filepath.Join(s.outputDir, base+"."+s.format)
	err = writeFile(path, func(w io.Writer) error {
		if s.format == FormatJPEG {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: s.jpegQuality})
		}
		return png.Encode(w, img)
	})
	if err != nil {
		return fmt.Errorf("%s encode failed: %w", s.format, err)
	}
	debug.Verbose("Saved %s", path)

	if s.saveRaw {
		rawPath := filepath.Join(s.outputDir, base+".bayer")
		if err := os.WriteFile(rawPath, f.Raw, 0644); err != nil {
			return fmt.Errorf("failed to write raw frame: %w", err)
		}
		debug.Verbose("Saved %s", rawPath)
	}
	return nil
}

// writeFile creates path and fills it with encode. On failure the partial
// file is removed.
func writeFile(path string, encode func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	err = encode(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (s *FileSink) baseName(f *camera.Frame) string {
	return fmt.Sprintf("frame_%06d_%s", f.Seq, f.Time.Format("20060102_150405.000"))
}

// Stats returns current save statistics.
func (s *FileSink) Stats() (saved, dropped uint64) {
	return s.saved.Load(), s.dropped.Load()
}
