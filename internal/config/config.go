package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cjeanneret/PixyGo/internal/hw/bridge"
)

// MaxConfigFileBytes caps the size of a configuration file.
const MaxConfigFileBytes = 64 * 1024

// Device types.
const (
	DevicePixy2 = "pixy2" // real camera over USB (requires the pixy2 build tag)
	DeviceSim   = "sim"   // simulated camera serving a test pattern
)

// DeviceConfig selects the camera backend.
type DeviceConfig struct {
	Type string `yaml:"type"` // "pixy2" or "sim"
}

// CaptureConfig describes bursts and how frames are written to disk.
type CaptureConfig struct {
	Count       int    `yaml:"count"`        // frames per burst, 0 = until interrupted
	IntervalMs  int    `yaml:"interval_ms"`  // delay between two frames (ms)
	OutputDir   string `yaml:"output_dir"`   // where frames are written
	Format      string `yaml:"format"`       // "png" or "jpeg"
	JPEGQuality int    `yaml:"jpeg_quality"` // 1-100, JPEG only
	SaveRaw     bool   `yaml:"save_raw"`     // also write the undecoded Bayer data
}

// TriggerConfig describes the optional hardware shutter button.
// The button connects the pin to GND; the internal pull-up is used.
type TriggerConfig struct {
	Pin        int `yaml:"pin"`         // BCM pin number
	PollMs     int `yaml:"poll_ms"`     // delay between two reads (ms)
	DebounceMs int `yaml:"debounce_ms"` // press must be stable this long (ms)
}

// WebConfig holds the HTTP server settings.
type WebConfig struct {
	Port int `yaml:"port"`
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Lamp     bridge.Lamp    `yaml:"lamp"`
	Capture  CaptureConfig  `yaml:"capture"`
	Trigger  TriggerConfig  `yaml:"trigger"`
	Web      WebConfig      `yaml:"web"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath checks that path names a .yaml file whose parent
// directory is called "configs". It does not require the file to exist.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain \"..\"", path)
		}
	}
	clean := filepath.Clean(path)
	if filepath.Ext(clean) != ".yaml" {
		return fmt.Errorf("config path %q must have a .yaml extension", path)
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config path %q must be inside a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", MaxConfigFileBytes)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Capture.OutputDir == "" {
		c.Capture.OutputDir = "frames"
	}
	if c.Capture.Format == "" {
		c.Capture.Format = "png"
	}
	if c.Capture.Format == "jpg" {
		c.Capture.Format = "jpeg"
	}
	if c.Capture.JPEGQuality == 0 {
		c.Capture.JPEGQuality = 90
	}
	if c.Trigger.Pin == 0 {
		c.Trigger.Pin = 17
	}
	if c.Trigger.PollMs <= 0 {
		c.Trigger.PollMs = 10 // 10ms between reads
	}
	if c.Trigger.DebounceMs <= 0 {
		c.Trigger.DebounceMs = 50 // 50ms stable low
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
}

// Validate checks value ranges. It is called by Load and again by the CLI
// after flag overrides are applied.
func (c *Config) Validate() error {
	switch c.Device.Type {
	case "":
		return errors.New("device.type is required")
	case DevicePixy2, DeviceSim:
	default:
		return fmt.Errorf("device.type must be %q or %q, got %q", DevicePixy2, DeviceSim, c.Device.Type)
	}
	if err := c.Lamp.Validate(); err != nil {
		return err
	}
	if c.Capture.Count < 0 {
		return fmt.Errorf("capture.count must be >= 0, got %d", c.Capture.Count)
	}
	if c.Capture.IntervalMs < 0 {
		return fmt.Errorf("capture.interval_ms must be >= 0, got %d", c.Capture.IntervalMs)
	}
	if c.Capture.Format != "png" && c.Capture.Format != "jpeg" {
		return fmt.Errorf("capture.format must be png or jpeg, got %q", c.Capture.Format)
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		return fmt.Errorf("capture.jpeg_quality must be between 1 and 100, got %d", c.Capture.JPEGQuality)
	}
	if c.Trigger.Pin < 1 || c.Trigger.Pin > 27 {
		return fmt.Errorf("trigger.pin must be a BCM pin between 1 and 27, got %d", c.Trigger.Pin)
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be between 1 and 65535, got %d", c.Web.Port)
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

// Interval returns the delay between two frames of a burst.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Capture.IntervalMs) * time.Millisecond
}

// TriggerPoll returns the delay between two reads of the trigger pin.
func (c *Config) TriggerPoll() time.Duration {
	return time.Duration(c.Trigger.PollMs) * time.Millisecond
}

// TriggerDebounce returns how long a press must be stable.
func (c *Config) TriggerDebounce() time.Duration {
	return time.Duration(c.Trigger.DebounceMs) * time.Millisecond
}
