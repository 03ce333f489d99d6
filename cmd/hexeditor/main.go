// Command hexeditor hosts the hex map editor: it builds or loads a grid,
// serves it over HTTP, and runs the frame loop with autosave.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexmap/internal/api"
	"github.com/talgya/hexmap/internal/config"
	"github.com/talgya/hexmap/internal/editor"
	"github.com/talgya/hexmap/internal/engine"
	"github.com/talgya/hexmap/internal/mapdata"
	"github.com/talgya/hexmap/internal/persistence"
	"github.com/talgya/hexmap/internal/world"
)

const autosaveName = "autosave"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/hexeditor.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stdout))
	slog.Info("hex map editor starting", "config", configPath, "backend", cfg.Storage.Backend)

	// ── Storage ───────────────────────────────────────────────────────
	store, err := persistence.Open(cfg.Storage.Backend, cfg.Storage.Dir, cfg.Storage.SQLitePath)
	if err != nil {
		slog.Error("failed to open map store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if names, err := store.List(); err == nil {
		slog.Info("map store opened", "maps", len(names))
	}

	// ── Grid ──────────────────────────────────────────────────────────
	grid := world.NewGrid(cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.HexSize)
	grid.Generate()
	ctl := editor.NewController(grid, mapdata.NewService(store), cfg.TooltipDelay())

	if cfg.Grid.InitialMap != "" {
		report, err := ctl.Load(cfg.Grid.InitialMap)
		if err != nil {
			slog.Warn("initial map not loaded, using generated grid", "map", cfg.Grid.InitialMap, "error", err)
		} else {
			slog.Info("initial map loaded", "map", cfg.Grid.InitialMap,
				"applied", report.Applied, "defaulted", report.Defaulted, "dropped", report.Dropped)
		}
	}
	for name, count := range world.TerrainCounts(grid) {
		slog.Info("terrain", "type", name, "count", count)
	}

	var mu sync.Mutex

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("HEXMAP_ADMIN_KEY not set, editing POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Editor:    ctl,
		Store:     store,
		Mu:        &mu,
		Port:      cfg.API.Port,
		AdminKey:  cfg.API.AdminKey,
		SaveLimit: cfg.API.SaveLimit,
	}
	apiServer.Start()

	// ── Frame loop ────────────────────────────────────────────────────
	loop := engine.NewLoop()
	loop.Interval = cfg.FrameInterval()
	loop.AutosaveEvery = cfg.AutosaveInterval()
	loop.OnFrame = func(now time.Time) {
		mu.Lock()
		ctl.Update(now)
		mu.Unlock()
	}
	loop.OnAutosave = func(now time.Time) {
		mu.Lock()
		defer mu.Unlock()
		save(ctl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nEditing a %dx%d grid (%s tiles).\n", grid.Width, grid.Height, humanize.Comma(int64(grid.TileCount())))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Running... (Ctrl+C to stop)")

	started := time.Now()
	loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	mu.Lock()
	save(ctl)
	mu.Unlock()

	fmt.Printf("Editor stopped after %s.\n", time.Since(started).Round(time.Second))
}

// save writes the grid to the autosave slot. Named maps are only written by
// explicit saves, so a shutdown never overwrites a loaded map.
func save(ctl *editor.Controller) {
	if ctl.Grid().TileCount() == 0 {
		slog.Info("grid empty, skipping save", "map", autosaveName)
		return
	}
	doc, err := ctl.Snapshot(autosaveName)
	if err != nil {
		if errors.Is(err, persistence.ErrInvalidName) {
			slog.Error("cannot save under this name", "map", autosaveName)
		}
		return
	}
	slog.Info("map saved", "map", doc.MapName, "tiles", len(doc.Tiles), "modified", doc.LastModified)
}
