package debug

import (
	"bytes"
	"strings"
	"testing"
)

func withBuffer(t *testing.T, lvl int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	Init(lvl)
	t.Cleanup(func() {
		Init(LevelOff)
	})
	return &buf
}

func TestInit_OffProducesNothing(t *testing.T) {
	buf := withBuffer(t, LevelOff)
	Info("hello %d", 1)
	Trace("trace")
	if buf.Len() != 0 {
		t.Errorf("expected no output at level 0, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := withBuffer(t, LevelLive)
	Info("info-line")
	Frame(7, 65728)
	Verbose("verbose-line")
	Vendor("init", 0)

	got := buf.String()
	if !strings.Contains(got, "info-line") {
		t.Error("info message should be printed at level 2")
	}
	if !strings.Contains(got, "Frame #7") {
		t.Error("frame message should be printed at level 2")
	}
	if strings.Contains(got, "verbose-line") {
		t.Error("verbose message should be filtered at level 2")
	}
	if strings.Contains(got, "[SDK]") {
		t.Error("vendor trace should be filtered at level 2")
	}
}

func TestVendorTrace(t *testing.T) {
	buf := withBuffer(t, LevelTrace)
	Vendor("link.stop", -4)
	if !strings.Contains(buf.String(), "[SDK] link.stop -> -4") {
		t.Errorf("unexpected trace output: %q", buf.String())
	}
}

func TestIsEnabled(t *testing.T) {
	withBuffer(t, LevelVerbose)
	if !IsEnabled(LevelInfo) {
		t.Error("info should be enabled at verbose level")
	}
	if IsEnabled(LevelTrace) {
		t.Error("trace should not be enabled at verbose level")
	}
	if Level() != LevelVerbose {
		t.Errorf("Level() = %d, want %d", Level(), LevelVerbose)
	}
}

func TestFmt(t *testing.T) {
	withBuffer(t, LevelOff)
	if s := Fmt("x=%d", 1); s != "" {
		t.Errorf("Fmt with debug off = %q, want empty", s)
	}
	Init(LevelInfo)
	if s := Fmt("x=%d", 1); s != "x=1" {
		t.Errorf("Fmt = %q, want \"x=1\"", s)
	}
}
