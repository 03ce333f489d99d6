// Package editor orchestrates grid editing: generation, selection, terrain
// painting through the inspector, tooltips, and map save/load. It is the
// collaborator a UI layer drives; every call is synchronous.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/talgya/hexmap/internal/mapdata"
	"github.com/talgya/hexmap/internal/persistence"
	"github.com/talgya/hexmap/internal/world"
)

var (
	ErrInvalidCost     = errors.New("movement cost must be a positive integer")
	ErrUnknownTerrain  = errors.New("unknown terrain type")
	ErrNoTile          = errors.New("no tile at coordinate")
	ErrNothingSelected = errors.New("no tiles selected")
)

// Controller owns the grid being edited and the current selection.
type Controller struct {
	grid     *world.Grid
	maps     *mapdata.Service
	tooltips *Tooltips

	selected []world.HexCoord
	current  string // storage name of the last saved or loaded map
}

// NewController wires a controller to its grid and map service.
func NewController(grid *world.Grid, maps *mapdata.Service, tooltipDelay time.Duration) *Controller {
	return &Controller{
		grid:     grid,
		maps:     maps,
		tooltips: &Tooltips{Delay: tooltipDelay},
	}
}

// Grid returns the grid under edit. Tile pointers taken from it are stale
// after Generate, Regenerate, Clear or Load.
func (c *Controller) Grid() *world.Grid {
	return c.grid
}

// Tooltips returns the tooltip state.
func (c *Controller) Tooltips() *Tooltips {
	return c.tooltips
}

// CurrentName returns the storage name of the last saved or loaded map.
func (c *Controller) CurrentName() string {
	return c.current
}

func (c *Controller) resetInteraction() {
	c.selected = nil
	c.tooltips.Reset()
}

// Generate rebuilds the grid at its current dimensions.
func (c *Controller) Generate() {
	c.resetInteraction()
	c.grid.Regenerate(c.grid.Width, c.grid.Height)
	slog.Info("grid generated", "width", c.grid.Width, "height", c.grid.Height)
}

// Clear removes every tile.
func (c *Controller) Clear() {
	c.resetInteraction()
	c.grid.Clear()
}

// Regenerate rebuilds the grid at new dimensions, each at least 1.
func (c *Controller) Regenerate(width, height int) {
	width, height = max(1, width), max(1, height)
	slog.Info("regenerating grid", "width", width, "height", height)
	c.resetInteraction()
	c.grid.Regenerate(width, height)
}

// Paint fills the grid with procedural terrain and returns the seed used.
func (c *Controller) Paint(cfg world.PaintConfig) int64 {
	seed := world.Paint(c.grid, cfg)
	slog.Info("terrain painted", "seed", seed, "tiles", c.grid.TileCount())
	return seed
}

// Save writes the grid under a display name; spaces become underscores.
func (c *Controller) Save(display string) (*mapdata.MapDocument, error) {
	name := persistence.FileName(display)
	doc, err := c.maps.SaveGrid(c.grid, name)
	if err != nil {
		return nil, err
	}
	c.current = name
	return doc, nil
}

// Snapshot writes the grid under a display name without making it the
// current map.
func (c *Controller) Snapshot(display string) (*mapdata.MapDocument, error) {
	return c.maps.SaveGrid(c.grid, persistence.FileName(display))
}

// Load replaces the grid with a stored map. On failure the grid is left as
// it was.
func (c *Controller) Load(display string) (mapdata.ApplyReport, error) {
	name := persistence.FileName(display)
	if !c.maps.Exists(name) {
		return mapdata.ApplyReport{}, fmt.Errorf("load %q: %w", name, persistence.ErrNotFound)
	}
	_, report, err := c.maps.LoadGrid(c.grid, name)
	if err != nil {
		return report, err
	}
	c.resetInteraction()
	c.current = name
	return report, nil
}

// ListMaps returns the display names of stored maps. Listing failures are
// logged and produce an empty list.
func (c *Controller) ListMaps() []string {
	names, err := c.maps.List()
	if err != nil {
		slog.Error("failed to list maps", "error", err)
		return nil
	}
	return names
}

// MapExists reports whether a map with this display name is stored.
func (c *Controller) MapExists(display string) bool {
	return c.maps.Exists(persistence.FileName(display))
}

// Select makes coord the selection, or toggles it in the selection when
// additive is set.
func (c *Controller) Select(coord world.HexCoord, additive bool) error {
	if c.grid.Tile(coord) == nil {
		return fmt.Errorf("%w %s", ErrNoTile, coord)
	}
	if !additive {
		c.selected = []world.HexCoord{coord}
		return nil
	}
	if i := slices.Index(c.selected, coord); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return nil
	}
	c.selected = append(c.selected, coord)
	return nil
}

// ClearSelection deselects every tile.
func (c *Controller) ClearSelection() {
	c.selected = nil
}

// Selection returns the selected coordinates in selection order.
func (c *Controller) Selection() []world.HexCoord {
	return slices.Clone(c.selected)
}

func (c *Controller) selectedTiles() []*world.Tile {
	tiles := make([]*world.Tile, 0, len(c.selected))
	for _, coord := range c.selected {
		if t := c.grid.Tile(coord); t != nil {
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// Inspection is what the inspector panel shows for the selection.
type Inspection struct {
	Count int             `json:"count"`
	Coord *world.HexCoord `json:"coord,omitempty"` // set for a single selection
	Type  string          `json:"type"`
	Cost  int             `json:"cost"`
	Label string          `json:"label"`
	Alpha float64         `json:"alpha"`
	Mixed bool            `json:"mixed"` // selected tiles disagree on type
}

// Inspect summarizes the selection. With nothing selected it shows the
// first terrain template; for several tiles it shows their shared type.
func (c *Controller) Inspect() Inspection {
	tiles := c.selectedTiles()
	switch len(tiles) {
	case 0:
		first := world.Templates()[0]
		return Inspection{Type: first.Name, Cost: first.Cost, Alpha: world.DefaultAlpha}
	case 1:
		t := tiles[0]
		coord := t.Coord()
		return Inspection{Count: 1, Coord: &coord, Type: t.Type(), Cost: t.Cost(), Label: t.Label(), Alpha: t.Alpha()}
	}

	in := Inspection{Count: len(tiles), Type: tiles[0].Type(), Cost: tiles[0].Cost(), Alpha: tiles[0].Alpha()}
	for _, t := range tiles[1:] {
		if t.Type() != in.Type {
			in.Mixed = true
			in.Type, in.Cost = "", 0
			break
		}
	}
	return in
}

func validateTerrain(terrain string, cost int) error {
	if _, ok := world.LookupTerrain(terrain); !ok {
		return fmt.Errorf("%w %q", ErrUnknownTerrain, terrain)
	}
	if cost < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}
	return nil
}

// ApplyTerrain sets terrain and cost on every selected tile and returns how
// many tiles changed.
func (c *Controller) ApplyTerrain(terrain string, cost int) (int, error) {
	if err := validateTerrain(terrain, cost); err != nil {
		return 0, err
	}
	tiles := c.selectedTiles()
	if len(tiles) == 0 {
		return 0, ErrNothingSelected
	}
	for _, t := range tiles {
		t.SetProperties(terrain, cost)
		c.grid.Refresh(t)
	}
	return len(tiles), nil
}

// SetLabel labels every selected tile.
func (c *Controller) SetLabel(label string) (int, error) {
	tiles := c.selectedTiles()
	if len(tiles) == 0 {
		return 0, ErrNothingSelected
	}
	for _, t := range tiles {
		t.SetLabel(label)
		c.grid.Refresh(t)
	}
	return len(tiles), nil
}

// SetAlpha sets the opacity of every selected tile, clamped to [0,1].
func (c *Controller) SetAlpha(alpha float64) (int, error) {
	tiles := c.selectedTiles()
	if len(tiles) == 0 {
		return 0, ErrNothingSelected
	}
	alpha = clampAlpha(alpha)
	for _, t := range tiles {
		t.SetAlpha(alpha)
		c.grid.Refresh(t)
	}
	return len(tiles), nil
}

// TileEdit is a partial update of one tile. Nil fields are left alone. A
// type without a cost takes the template's cost.
type TileEdit struct {
	Type  *string  `json:"type,omitempty"`
	Cost  *int     `json:"cost,omitempty"`
	Label *string  `json:"label,omitempty"`
	Alpha *float64 `json:"alpha,omitempty"`
}

// EditTile applies edit to the tile at coord. Validation happens before any
// field is written.
func (c *Controller) EditTile(coord world.HexCoord, edit TileEdit) (*world.Tile, error) {
	t := c.grid.Tile(coord)
	if t == nil {
		return nil, fmt.Errorf("%w %s", ErrNoTile, coord)
	}

	terrain, cost := t.Type(), t.Cost()
	if edit.Type != nil {
		terrain = *edit.Type
		if tmpl, ok := world.LookupTerrain(terrain); ok && edit.Cost == nil {
			cost = tmpl.Cost
		}
	}
	if edit.Cost != nil {
		cost = *edit.Cost
	}
	if edit.Type != nil || edit.Cost != nil {
		if err := validateTerrain(terrain, cost); err != nil {
			return nil, err
		}
	}

	t.SetProperties(terrain, cost)
	if edit.Label != nil {
		t.SetLabel(*edit.Label)
	}
	if edit.Alpha != nil {
		t.SetAlpha(clampAlpha(*edit.Alpha))
	}
	c.grid.Refresh(t)
	return t, nil
}

// Hover forwards pointer hover to the tooltip timer.
func (c *Controller) Hover(coord world.HexCoord, now time.Time) {
	c.tooltips.Hover(coord, now)
}

// Leave cancels the hover tooltip.
func (c *Controller) Leave() {
	c.tooltips.Leave()
}

// Update is the per-frame hook.
func (c *Controller) Update(now time.Time) {
	c.tooltips.Update(c.grid, now)
}

func clampAlpha(a float64) float64 {
	return min(1, max(0, a))
}
