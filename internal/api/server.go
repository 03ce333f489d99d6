// Package api exposes the map editor over HTTP.
// GET endpoints are public (read-only inspection).
// POST endpoints require a bearer token (editing control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/hexmap/internal/editor"
	"github.com/talgya/hexmap/internal/mapdata"
	"github.com/talgya/hexmap/internal/persistence"
	"github.com/talgya/hexmap/internal/world"
)

// Server serves the editor over HTTP.
type Server struct {
	Editor    *editor.Controller
	Store     persistence.Store
	Mu        *sync.Mutex // guards Editor; shared with the frame loop
	Port      int
	AdminKey  string // Bearer token for POST endpoints. Empty = POST disabled.
	SaveLimit int    // save/load requests per IP per minute

	httpServer *http.Server
}

// Handler builds the routed handler with request ID and CORS middleware.
func (s *Server) Handler() http.Handler {
	limit := s.SaveLimit
	if limit <= 0 {
		limit = 30
	}
	storageLimiter := NewRateLimiter(limit, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/map", s.handleBulkMap)
	mux.HandleFunc("GET /api/v1/map/{q}/{r}", s.handleHexDetail)
	mux.HandleFunc("GET /api/v1/terrains", s.handleTerrains)
	mux.HandleFunc("GET /api/v1/maps", s.handleMaps)
	mux.HandleFunc("GET /api/v1/maps/{name}", s.handleMapExists)

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/map/{q}/{r}", s.adminOnly(s.handleEditHex))
	mux.HandleFunc("POST /api/v1/grid", s.adminOnly(s.handleGrid))
	mux.HandleFunc("POST /api/v1/maps/{name}/save", s.adminOnly(RateLimitMiddleware(storageLimiter, s.handleSave)))
	mux.HandleFunc("POST /api/v1/maps/{name}/load", s.adminOnly(RateLimitMiddleware(storageLimiter, s.handleLoad)))

	return requestIDMiddleware(corsMiddleware(mux))
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requestIDMiddleware tags every request with an X-Request-ID, reusing the
// caller's when present.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// corsMiddleware allows local frontend dev servers.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEXMAP_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	g := s.Editor.Grid()
	writeJSON(w, map[string]any{
		"name":           "hexmap",
		"width":          g.Width,
		"height":         g.Height,
		"hex_size":       g.HexSize,
		"tiles":          g.TileCount(),
		"current_map":    persistence.DisplayName(s.Editor.CurrentName()),
		"showing_labels": s.Editor.Tooltips().ShowingLabels(),
		"terrain_counts": world.TerrainCounts(g),
	})
}

type tileEntry struct {
	Q        int        `json:"q"`
	R        int        `json:"r"`
	Position world.Vec3 `json:"position"`
	Type     string     `json:"type"`
	Cost     int        `json:"cost"`
	Label    string     `json:"label,omitempty"`
	Alpha    float64    `json:"alpha"`
	Color    world.RGB  `json:"color"`
}

func newTileEntry(t *world.Tile) tileEntry {
	return tileEntry{
		Q:        t.Coord().Q,
		R:        t.Coord().R,
		Position: t.Position(),
		Type:     t.Type(),
		Cost:     t.Cost(),
		Label:    t.Label(),
		Alpha:    t.Alpha(),
		Color:    world.TerrainColor(t.Type()),
	}
}

// handleBulkMap returns every tile for the renderer.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	g := s.Editor.Grid()
	tiles := make([]tileEntry, 0, g.TileCount())
	for _, t := range g.Tiles() {
		tiles = append(tiles, newTileEntry(t))
	}

	writeJSON(w, map[string]any{
		"width":    g.Width,
		"height":   g.Height,
		"hex_size": g.HexSize,
		"backing":  g.Layout().Backing,
		"tiles":    tiles,
		"labels":   s.Editor.Tooltips().Labels(g),
	})
}

func parseCoord(r *http.Request) (world.HexCoord, error) {
	q, err1 := strconv.Atoi(r.PathValue("q"))
	rr, err2 := strconv.Atoi(r.PathValue("r"))
	if err1 != nil || err2 != nil {
		return world.HexCoord{}, errors.New("invalid coordinates")
	}
	return world.HexCoord{Q: q, R: rr}, nil
}

func (s *Server) handleHexDetail(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoord(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	g := s.Editor.Grid()
	t := g.Tile(coord)
	if t == nil {
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	}

	neighbors := make([]tileEntry, 0, 6)
	for _, nc := range coord.Neighbors() {
		if nt := g.Tile(nc); nt != nil {
			neighbors = append(neighbors, newTileEntry(nt))
		}
	}

	writeJSON(w, map[string]any{
		"tile":      newTileEntry(t),
		"neighbors": neighbors,
	})
}

func (s *Server) handleEditHex(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoord(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var edit editor.TileEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	t, err := s.Editor.EditTile(coord, edit)
	switch {
	case errors.Is(err, editor.ErrNoTile):
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, newTileEntry(t))
}

type gridRequest struct {
	Action string `json:"action"` // regenerate | clear | generate | paint
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	result := map[string]any{"action": req.Action}
	switch req.Action {
	case "regenerate":
		s.Editor.Regenerate(req.Width, req.Height)
	case "generate":
		s.Editor.Generate()
	case "clear":
		s.Editor.Clear()
	case "paint":
		cfg := world.DefaultPaintConfig()
		cfg.Seed = req.Seed
		result["seed"] = s.Editor.Paint(cfg)
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", req.Action), http.StatusBadRequest)
		return
	}

	g := s.Editor.Grid()
	result["width"] = g.Width
	result["height"] = g.Height
	result["tiles"] = g.TileCount()
	writeJSON(w, result)
}

func (s *Server) handleTerrains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, world.Templates())
}

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	type mapEntry struct {
		Name     string    `json:"name"`
		Display  string    `json:"display"`
		Modified time.Time `json:"modified"`
		Ago      string    `json:"modified_ago"`
		Tiles    int       `json:"tiles"`
		Summary  string    `json:"summary"`
	}

	entries, err := s.Store.Entries()
	if err != nil {
		slog.Error("failed to list maps", "error", err)
		http.Error(w, "listing failed", http.StatusInternalServerError)
		return
	}
	out := make([]mapEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, mapEntry{
			Name:     e.Name,
			Display:  e.Display,
			Modified: e.Modified,
			Ago:      humanize.Time(e.Modified),
			Tiles:    e.Tiles,
			Summary:  humanize.Comma(int64(e.Tiles)) + " tiles",
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleMapExists(w http.ResponseWriter, r *http.Request) {
	name := persistence.FileName(r.PathValue("name"))
	writeJSON(w, map[string]any{
		"name":   name,
		"exists": s.Store.Exists(name),
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	doc, err := s.Editor.Save(r.PathValue("name"))
	switch {
	case errors.Is(err, persistence.ErrInvalidName):
		http.Error(w, "invalid map name", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"name":          doc.MapName,
		"tiles":         len(doc.Tiles),
		"created_date":  doc.CreatedDate,
		"last_modified": doc.LastModified,
		"message":       "map saved",
	})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	report, err := s.Editor.Load(r.PathValue("name"))
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		http.Error(w, "map not found", http.StatusNotFound)
		return
	case errors.Is(err, mapdata.ErrInvalidDocument):
		http.Error(w, "map is invalid", http.StatusUnprocessableEntity)
		return
	case err != nil:
		http.Error(w, "load failed", http.StatusInternalServerError)
		return
	}
	g := s.Editor.Grid()
	writeJSON(w, map[string]any{
		"name":      s.Editor.CurrentName(),
		"width":     g.Width,
		"height":    g.Height,
		"applied":   report.Applied,
		"defaulted": report.Defaulted,
		"dropped":   report.Dropped,
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
