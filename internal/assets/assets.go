// Package assets serves the browser bundle, its runtime config script and
// the health check.
package assets

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// ConfigGlobal is the window property /config.js assigns
const ConfigGlobal = "__AVAILABILITY_CONFIG__"

//go:embed static/*
var fallbackEmbed embed.FS

// Handler serves static files with an index.html fallback for client routes
type Handler struct {
	files  fs.FS
	public map[string]string
	logger zerolog.Logger
}

// New serves dir when it exists, otherwise the built-in placeholder page
func New(dir string, public map[string]string, logger zerolog.Logger) *Handler {
	logger = logger.With().Str("component", "assets").Logger()

	var files fs.FS
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		files = os.DirFS(dir)
		logger.Info().Str("dir", dir).Msg("serving static files")
	} else {
		sub, err := fs.Sub(fallbackEmbed, "static")
		if err != nil {
			panic(err)
		}
		files = sub
		logger.Warn().Str("dir", dir).Msg("static dir not found, serving placeholder page")
	}

	return &Handler{files: files, public: public, logger: logger}
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// ConfigJS handles GET /config.js. The PUBLIC_* variables are merged with
// the api and websocket URLs derived from the request.
func (h *Handler) ConfigJS(w http.ResponseWriter, r *http.Request) {
	cfg := make(map[string]string, len(h.public)+2)
	for k, v := range h.public {
		cfg[k] = v
	}

	scheme, wsScheme := "http", "ws"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme, wsScheme = "https", "wss"
	}
	cfg["apiUrl"] = scheme + "://" + r.Host + "/api"
	cfg["wsUrl"] = wsScheme + "://" + r.Host + "/ws"

	data, err := json.Marshal(cfg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal public config")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, "window.%s = %s;\n", ConfigGlobal, data)
}

// ServeHTTP serves a file when one exists at the path and index.html for
// anything else, so client-side routes survive a reload
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/internal/") {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	if info, err := fs.Stat(h.files, name); err != nil || info.IsDir() {
		h.serveIndex(w, r)
		return
	}
	http.ServeFileFS(w, r, h.files, name)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.files, "index.html")
	if err != nil {
		http.Error(w, "index.html not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
