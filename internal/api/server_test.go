package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/talgya/hexmap/internal/editor"
	"github.com/talgya/hexmap/internal/mapdata"
	"github.com/talgya/hexmap/internal/persistence"
	"github.com/talgya/hexmap/internal/world"
)

const testKey = "letmein"

func newTestServer(t *testing.T, adminKey string) (*Server, http.Handler) {
	t.Helper()
	store, err := persistence.OpenJSON(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	g := world.NewGrid(4, 3, 1)
	g.Generate()
	s := &Server{
		Editor:    editor.NewController(g, mapdata.NewService(store), time.Second),
		Store:     store,
		Mu:        &sync.Mutex{},
		AdminKey:  adminKey,
		SaveLimit: 2,
	}
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
}

func TestStatusAndRequestID(t *testing.T) {
	_, h := newTestServer(t, testKey)
	rec := do(t, h, http.MethodGet, "/api/v1/status", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
	var status map[string]any
	decode(t, rec, &status)
	if status["tiles"].(float64) != 12 || status["width"].(float64) != 4 {
		t.Fatalf("unexpected status %v", status)
	}
}

func TestBulkMapAndDetail(t *testing.T) {
	_, h := newTestServer(t, testKey)

	var bulk struct {
		Tiles   []tileEntry   `json:"tiles"`
		Backing world.Backing `json:"backing"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/v1/map", "", false), &bulk)
	if len(bulk.Tiles) != 12 || bulk.Backing.Width <= 0 {
		t.Fatalf("unexpected bulk map: %d tiles, backing %+v", len(bulk.Tiles), bulk.Backing)
	}

	var detail struct {
		Tile      tileEntry   `json:"tile"`
		Neighbors []tileEntry `json:"neighbors"`
	}
	decode(t, do(t, h, http.MethodGet, "/api/v1/map/0/0", "", false), &detail)
	if detail.Tile.Type != world.TerrainPlain || len(detail.Neighbors) != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/map/9/9", "", false); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/map/a/b", "", false); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	_, h := newTestServer(t, testKey)
	body := `{"action":"clear"}`
	if rec := do(t, h, http.MethodPost, "/api/v1/grid", body, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	_, disabled := newTestServer(t, "")
	if rec := do(t, disabled, http.MethodPost, "/api/v1/grid", body, true); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with admin disabled, got %d", rec.Code)
	}
}

func TestEditHex(t *testing.T) {
	s, h := newTestServer(t, testKey)

	rec := do(t, h, http.MethodPost, "/api/v1/map/1/2", `{"type":"Forest","label":"Grove"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	tile := s.Editor.Grid().Tile(world.HexCoord{Q: 1, R: 2})
	if tile.Type() != world.TerrainForest || tile.Cost() != 2 || tile.Label() != "Grove" {
		t.Fatalf("edit not applied: %s %d %q", tile.Type(), tile.Cost(), tile.Label())
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/map/1/2", `{"cost":0}`, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero cost, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/v1/map/1/2", `{bad`, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", rec.Code)
	}
}

func TestGridActions(t *testing.T) {
	s, h := newTestServer(t, testKey)

	rec := do(t, h, http.MethodPost, "/api/v1/grid", `{"action":"regenerate","width":6,"height":5}`, true)
	if rec.Code != http.StatusOK || s.Editor.Grid().TileCount() != 30 {
		t.Fatalf("regenerate failed: %d %s", rec.Code, rec.Body.String())
	}

	var painted map[string]any
	decode(t, do(t, h, http.MethodPost, "/api/v1/grid", `{"action":"paint","seed":42}`, true), &painted)
	if painted["seed"].(float64) != 42 {
		t.Fatalf("expected seed 42, got %v", painted["seed"])
	}

	do(t, h, http.MethodPost, "/api/v1/grid", `{"action":"clear"}`, true)
	if s.Editor.Grid().TileCount() != 0 {
		t.Fatalf("expected empty grid after clear")
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/grid", `{"action":"explode"}`, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}
}

func TestSaveListLoad(t *testing.T) {
	s, h := newTestServer(t, testKey)

	if rec := do(t, h, http.MethodPost, "/api/v1/maps/Big%20Island/save", "", true); rec.Code != http.StatusOK {
		t.Fatalf("save failed: %d %s", rec.Code, rec.Body.String())
	}

	var maps []map[string]any
	decode(t, do(t, h, http.MethodGet, "/api/v1/maps", "", false), &maps)
	if len(maps) != 1 || maps[0]["display"] != "Big Island" || maps[0]["summary"] != "12 tiles" {
		t.Fatalf("unexpected listing %v", maps)
	}

	var exists map[string]any
	decode(t, do(t, h, http.MethodGet, "/api/v1/maps/Big_Island", "", false), &exists)
	if exists["exists"] != true {
		t.Fatalf("expected map to exist: %v", exists)
	}

	s.Editor.Regenerate(1, 1)
	var loaded map[string]any
	decode(t, do(t, h, http.MethodPost, "/api/v1/maps/Big_Island/load", "", true), &loaded)
	if loaded["applied"].(float64) != 12 || s.Editor.Grid().Width != 4 {
		t.Fatalf("unexpected load result %v", loaded)
	}

	// SaveLimit is 2 per minute and two storage requests have been made.
	if rec := do(t, h, http.MethodPost, "/api/v1/maps/other/save", "", true); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestLoadMissingMap(t *testing.T) {
	_, h := newTestServer(t, testKey)
	if rec := do(t, h, http.MethodPost, "/api/v1/maps/ghost/load", "", true); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTerrains(t *testing.T) {
	_, h := newTestServer(t, testKey)
	var templates []world.TerrainTemplate
	decode(t, do(t, h, http.MethodGet, "/api/v1/terrains", "", false), &templates)
	if len(templates) != 4 || templates[3].Name != world.TerrainWater || templates[3].Cost != 999 {
		t.Fatalf("unexpected catalogue %+v", templates)
	}
}
