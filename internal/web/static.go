package web

import (
	"embed"
)

// staticFiles holds the single-page UI (live view, burst form, lamp toggles).
//
//go:embed static/*
var staticFiles embed.FS
