package web

import (
	"bufio"
	"bytes"
	"context"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cjeanneret/PixyGo/internal/logic/capture"
)

func newTestServer(t *testing.T, run RunCaptureFunc) (*httptest.Server, *FrameHub, *StatusBroadcaster) {
	t.Helper()
	cam, _ := newSimCamera(t)
	frames := NewFrameHub()
	broadcaster := NewStatusBroadcaster()
	srv, err := NewServer("127.0.0.1:0", Options{
		Broadcaster:  broadcaster,
		Frames:       frames,
		Camera:       cam,
		RunCapture:   run,
		FormDefaults: FormConfig{Count: 1},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, frames, broadcaster
}

func TestServer_Routes(t *testing.T) {
	ts, _, _ := newTestServer(t, noopCapture)

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/config", "", http.StatusOK},
		{http.MethodGet, "/frame.png", "", http.StatusOK},
		{http.MethodGet, "/static/index.html", "", http.StatusOK},
		{http.MethodPost, "/lamp", `{"upper":1,"lower":1}`, http.StatusOK},
		{http.MethodGet, "/lamp", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, ts.URL+tc.path, strings.NewReader(tc.body))
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("%s %s: %v", tc.method, tc.path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestServer_EmbeddedIndex(t *testing.T) {
	ts, _, _ := newTestServer(t, noopCapture)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "/frames/ws") {
		t.Error("index page should open the live frame stream")
	}
}

func TestServer_FrameStream(t *testing.T) {
	ts, frames, _ := newTestServer(t, noopCapture)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/frames/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the handler to register the viewer
	deadline := time.Now().Add(time.Second)
	for frames.Viewers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if frames.Viewers() != 1 {
		t.Fatalf("Viewers() = %d, want 1", frames.Viewers())
	}

	cam, _ := newSimCamera(t)
	seq := capture.NewSequence(cam, frames.Sink())
	if _, err := seq.Capture(context.Background()); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", msgType)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("payload is not a PNG: %v", err)
	}
}

func TestServer_StatusStream(t *testing.T) {
	ts, _, broadcaster := newTestServer(t, noopCapture)

	resp, err := http.Get(ts.URL + "/status/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("first line = %q, err = %v", line, err)
	}

	deadline := time.Now().Add(time.Second)
	for broadcaster.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	broadcaster.BroadcastMsg("hello sse")

	for {
		line, err = r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}
	if !strings.Contains(line, "hello sse") {
		t.Errorf("event = %q", line)
	}
}

func TestServer_RunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	srv, err := NewServer(addr, Options{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// Wait until the server answers
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/config")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
