package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/cjeanneret/PixyGo/internal/config"
	"github.com/cjeanneret/PixyGo/internal/debug"
	"github.com/cjeanneret/PixyGo/internal/hw/bridge"
	"github.com/cjeanneret/PixyGo/internal/hw/camera"
	"github.com/cjeanneret/PixyGo/internal/hw/gpio"
	"github.com/cjeanneret/PixyGo/internal/hw/pixy2"
	"github.com/cjeanneret/PixyGo/internal/logic/capture"
	"github.com/cjeanneret/PixyGo/internal/logic/trigger"
	"github.com/cjeanneret/PixyGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{}
	flag.Var(webPort, "web", "start web server; -web= for the configured port, -web 8980 for a custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	count := flag.Int("count", -1, "override burst length (0 = until interrupted)")
	intervalMs := flag.Int("interval_ms", -1, "override delay between frames in ms")
	lamp := flag.String("lamp", "", "override lamp as upper,lower (e.g. 1,0)")
	outDir := flag.String("out", "", "override output directory")
	useTrigger := flag.Bool("trigger", false, "capture one frame per shutter button press")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := runOptions{
		cfgPath: *cfgPath,
		overrides: cliOverrides{
			Count:      *count,
			IntervalMs: *intervalMs,
			Lamp:       *lamp,
			OutputDir:  *outDir,
		},
		webPort: webPort,
		trigger: *useTrigger,
	}
	if err := run(ctx, opts); err != nil {
		log.Fatal(err)
	}
}

type runOptions struct {
	cfgPath   string
	overrides cliOverrides
	webPort   *webPortFlag
	trigger   bool
}

// run wires the application together. Everything opened here is closed
// before it returns.
func run(ctx context.Context, opts runOptions) error {
	// Load configuration
	if err := config.ValidateConfigPath(opts.cfgPath); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if err := applyOverrides(cfg, opts.overrides); err != nil {
		return fmt.Errorf("invalid CLI override: %w", err)
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", opts.cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.PrintStruct("Capture config", cfg.Capture)

	// Open camera
	debug.Step(1, "Opening camera")
	debug.Value("Device type", cfg.Device.Type)
	cam, err := newCameraFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init camera failed: %w", err)
	}
	defer func() {
		if err := cam.Close(); err != nil {
			debug.Error(fmt.Errorf("closing camera failed: %w", err))
		}
	}()

	// Frame sink
	debug.Step(2, "Preparing output")
	files, err := capture.NewFileSink(cfg.Capture.OutputDir, cfg.Capture.Format, cfg.Capture.JPEGQuality, cfg.Capture.SaveRaw)
	if err != nil {
		return fmt.Errorf("init output failed: %w", err)
	}
	debug.Value("Output dir", cfg.Capture.OutputDir)
	defer printStats(files)

	port := opts.webPort.port(cfg.Web.Port)
	var frames *web.FrameHub
	sink := capture.Sink(files)
	if port > 0 {
		frames = web.NewFrameHub()
		sink = capture.Tee(files, frames.Sink())
	}
	seq := capture.NewSequence(cam, sink)

	if opts.trigger {
		debug.Step(3, "Arming shutter button")
		stop, err := startTrigger(ctx, cfg, seq)
		if err != nil {
			return err
		}
		defer stop()
	}

	if port > 0 {
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
		defer debug.SetOutput(os.Stdout)

		runCapture := func(ctx context.Context, req web.CaptureRequest) error {
			return seq.RunBurst(ctx, capture.BurstParams{
				Count:    req.Count,
				Interval: time.Duration(req.IntervalMs) * time.Millisecond,
			})
		}
		srv, err := web.NewServer(fmt.Sprintf(":%d", port), web.Options{
			Broadcaster: broadcaster,
			Frames:      frames,
			Camera:      cam,
			RunCapture:  runCapture,
			FormDefaults: web.FormConfig{
				Count:      max(cfg.Capture.Count, 1),
				IntervalMs: cfg.Capture.IntervalMs,
				Lamp:       cfg.Lamp,
			},
		})
		if err != nil {
			return err
		}
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	}

	if opts.trigger {
		<-ctx.Done()
		return nil
	}

	// Run one burst with current config (already has CLI overrides applied)
	debug.Section("Starting Burst")
	err = seq.RunBurst(ctx, capture.BurstParams{
		Count:    cfg.Capture.Count,
		Interval: cfg.Interval(),
	})
	if errors.Is(err, context.Canceled) {
		debug.Info("Interrupted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	debug.Section("Burst Complete")
	return nil
}

// startTrigger arms the shutter button in its own goroutine. The returned
// stop halts the watcher, waits for it and releases GPIO.
func startTrigger(ctx context.Context, cfg *config.Config, seq *capture.Sequence) (stop func(), err error) {
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	drv, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return nil, fmt.Errorf("init GPIO failed: %w", err)
	}
	w, err := trigger.NewWatcher(drv, trigger.Config{
		Pin:          cfg.Trigger.Pin,
		PollInterval: cfg.TriggerPoll(),
		Debounce:     cfg.TriggerDebounce(),
	})
	if err != nil {
		drv.Close()
		return nil, err
	}
	debug.Info("Shutter button armed on pin %d", cfg.Trigger.Pin)

	shoot := func(ctx context.Context) error {
		_, err := seq.Capture(ctx)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx, shoot); err != nil && !errors.Is(err, context.Canceled) {
			debug.Error(fmt.Errorf("shutter button: %w", err))
		}
	}()

	return func() {
		cancel()
		<-done
		if err := drv.Close(); err != nil {
			debug.Error(fmt.Errorf("closing GPIO driver failed: %w", err))
		}
	}, nil
}

func printStats(files *capture.FileSink) {
	saved, dropped := files.Stats()
	debug.Summary("Capture Summary")
	debug.Value("Frames saved", saved)
	debug.Value("Frames dropped", dropped)
}

// cliOverrides holds values given on the command line.
// Negative numbers and empty strings mean "use config".
type cliOverrides struct {
	Count      int
	IntervalMs int
	Lamp       string
	OutputDir  string
}

// applyOverrides mutates cfg with overrides, then revalidates it.
func applyOverrides(cfg *config.Config, o cliOverrides) error {
	if o.Count >= 0 {
		cfg.Capture.Count = o.Count
	}
	if o.IntervalMs >= 0 {
		cfg.Capture.IntervalMs = o.IntervalMs
	}
	if o.Lamp != "" {
		l, err := bridge.ParseLamp(o.Lamp)
		if err != nil {
			return err
		}
		cfg.Lamp = l
	}
	if o.OutputDir != "" {
		cfg.Capture.OutputDir = o.OutputDir
	}
	return cfg.Validate()
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= → configured port, -web 8980 → 8980.
type webPortFlag struct {
	val        int
	useDefault bool
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.useDefault = true
		w.val = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	w.useDefault = false
	return nil
}

// port returns the port to listen on, or 0 when the web server is disabled.
func (w *webPortFlag) port(configured int) int {
	if w.useDefault {
		return configured
	}
	return w.val
}

// newCameraFromConfig opens the camera selected by configuration.
func newCameraFromConfig(cfg *config.Config) (*camera.Pixy2, error) {
	dev, err := pixy2.NewDevice(cfg.Device.Type == config.DeviceSim)
	if err != nil {
		return nil, err
	}
	cam, err := camera.OpenPixy2(bridge.New(dev), cfg.Lamp)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return cam, nil
}
