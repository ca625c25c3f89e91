// Package site serves the embedded workspace page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// ErrServe is returned when an embedded asset cannot be served.
var ErrServe = errors.New("site serve failed")

// Register attaches the workspace page and its assets to mux.
// Only GET requests for "/" and the asset files are matched so the API routes
// registered on the same mux keep precedence.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
	mux.Handle("GET /app.js", files)
	mux.Handle("GET /site.css", files)
}
