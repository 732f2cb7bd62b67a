package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/cjeanneret/PixyGo/internal/debug"
	"github.com/cjeanneret/PixyGo/internal/hw/bridge"
	"github.com/cjeanneret/PixyGo/internal/hw/camera"
)

const (
	maxBodyBytes   = 1 << 20 // 1 MiB
	maxBurstCount  = 1000
	maxIntervalMs  = 60_000
	runCooldown    = 5 * time.Second
	wsWriteTimeout = 5 * time.Second
	wsPingPeriod   = 30 * time.Second
)

// CaptureRequest holds the burst parameters posted to /run.
type CaptureRequest struct {
	Count      int `json:"count"`
	IntervalMs int `json:"interval_ms"`
}

// ValidateCaptureRequest checks the burst parameters.
func ValidateCaptureRequest(req CaptureRequest) error {
	if req.Count < 1 || req.Count > maxBurstCount {
		return fmt.Errorf("count must be between 1 and %d", maxBurstCount)
	}
	if req.IntervalMs < 0 || req.IntervalMs > maxIntervalMs {
		return fmt.Errorf("interval_ms must be between 0 and %d", maxIntervalMs)
	}
	return nil
}

// RunCaptureFunc runs a burst with the given parameters.
// It is called from the POST /run handler in a goroutine.
type RunCaptureFunc func(ctx context.Context, req CaptureRequest) error

// FormConfig holds default values for the capture form (from config).
type FormConfig struct {
	Count      int         `json:"count"`
	IntervalMs int         `json:"interval_ms"`
	Lamp       bridge.Lamp `json:"lamp"`
}

// Options groups the dependencies of the HTTP surface.
// Camera and RunCapture may be nil; the matching endpoints then answer 503.
type Options struct {
	Broadcaster  *StatusBroadcaster
	Frames       *FrameHub
	Camera       camera.Camera
	RunCapture   RunCaptureFunc
	FormDefaults FormConfig
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Options
	ctx       context.Context
	runningMu sync.Mutex
	running   bool
	limiter   *rate.Limiter
	upgrader  websocket.Upgrader
	staticFS  fs.FS
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(opts Options, staticFS fs.FS) *Handlers {
	if opts.Broadcaster == nil {
		opts.Broadcaster = NewStatusBroadcaster()
	}
	if opts.Frames == nil {
		opts.Frames = NewFrameHub()
	}
	return &Handlers{
		Options:  opts,
		ctx:      context.Background(),
		limiter:  rate.NewLimiter(rate.Every(runCooldown), 1),
		staticFS: staticFS,
	}
}

// HandleConfig returns the form default values (from config) as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	defaults := h.FormDefaults
	if h.Camera != nil {
		if l, ok := h.Camera.(interface{ Lamp() bridge.Lamp }); ok {
			defaults.Lamp = l.Lamp()
		}
	}
	writeJSON(w, http.StatusOK, defaults)
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleRun handles POST /run to start a burst.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CaptureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := ValidateCaptureRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.RunCapture == nil {
		http.Error(w, "capture not configured", http.StatusServiceUnavailable)
		return
	}

	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		http.Error(w, "capture already in progress", http.StatusConflict)
		return
	}
	if !h.limiter.Allow() {
		h.runningMu.Unlock()
		http.Error(w, "too many requests, retry later", http.StatusTooManyRequests)
		return
	}
	h.running = true
	h.runningMu.Unlock()

	// Run in goroutine; clear running when done
	go func() {
		defer func() {
			h.runningMu.Lock()
			h.running = false
			h.runningMu.Unlock()
		}()

		h.Broadcaster.BroadcastMsg(fmt.Sprintf("Burst started: %d frames, %d ms apart", req.Count, req.IntervalMs))
		if err := h.RunCapture(h.ctx, req); err != nil {
			h.Broadcaster.Broadcast("error", "Capture failed: "+err.Error())
			debug.Error(fmt.Errorf("capture failed: %w", err))
		} else {
			h.Broadcaster.BroadcastMsg("Burst complete")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// HandleLamp handles POST /lamp to switch the camera lamps.
func (h *Handlers) HandleLamp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var lamp bridge.Lamp
	if err := decodeJSON(w, r, &lamp); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := lamp.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.Camera == nil {
		http.Error(w, "camera not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.Camera.SetLamp(lamp); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, camera.ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.Broadcaster.BroadcastMsg("Lamp set to " + lamp.String())
	writeJSON(w, http.StatusOK, lamp)
}

// HandleSnapshot handles GET /frame.png: grabs one frame and returns it as PNG.
// The frame is not written to disk.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.Camera == nil {
		http.Error(w, "camera not configured", http.StatusServiceUnavailable)
		return
	}

	f, err := h.Camera.Grab(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, camera.ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "grab failed: "+err.Error(), status)
		return
	}
	data, err := encodePNG(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Id", f.ID.String())
	w.Header().Set("X-Frame-Seq", fmt.Sprint(f.Seq))
	w.Write(data)
}

// HandleFrameStream handles GET /frames/ws: every frame captured while the
// client is connected is pushed as a binary PNG message.
func (h *Handlers) HandleFrameStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		debug.Verbose("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	frames, unsub := h.Frames.Subscribe()
	defer unsub()
	debug.Verbose("Live viewer connected (%d total)", h.Frames.Viewers())

	// Drain client messages so control frames (close, pong) are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-frames:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return

		case <-r.Context().Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
