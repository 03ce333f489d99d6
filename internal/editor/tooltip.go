package editor

import (
	"fmt"
	"time"

	"github.com/talgya/hexmap/internal/world"
)

// Tooltip is a piece of text anchored to a tile.
type Tooltip struct {
	Coord    world.HexCoord `json:"coord"`
	Text     string         `json:"text"`
	Position world.Vec3     `json:"position"`
}

// Tooltips tracks the hover tooltip and the show-all-labels toggle. The hover
// tooltip appears once the pointer has rested on one tile for Delay; leaving
// or moving to another tile resets the deadline.
type Tooltips struct {
	Delay time.Duration

	hovering bool
	target   world.HexCoord
	deadline time.Time
	visible  *Tooltip
	showAll  bool
}

// Hover records that the pointer is over coord at now.
func (t *Tooltips) Hover(coord world.HexCoord, now time.Time) {
	if t.hovering && t.target == coord {
		return
	}
	t.hovering = true
	t.target = coord
	t.deadline = now.Add(t.Delay)
	t.visible = nil
}

// Leave cancels any pending or visible hover tooltip.
func (t *Tooltips) Leave() {
	t.hovering = false
	t.deadline = time.Time{}
	t.visible = nil
}

// Update shows the pending tooltip once its deadline has passed and rebuilds
// it every frame after that, so edits to the hovered tile show immediately.
func (t *Tooltips) Update(g *world.Grid, now time.Time) {
	if !t.hovering || now.Before(t.deadline) {
		return
	}
	tile := g.Tile(t.target)
	if tile == nil {
		t.Leave()
		return
	}
	t.visible = &Tooltip{Coord: tile.Coord(), Text: tooltipText(tile), Position: tile.Position()}
}

// Visible returns the hover tooltip, or nil.
func (t *Tooltips) Visible() *Tooltip {
	return t.visible
}

// ToggleLabels flips the show-all-labels mode and returns the new state.
func (t *Tooltips) ToggleLabels() bool {
	t.showAll = !t.showAll
	return t.showAll
}

// ShowingLabels reports whether all labels are displayed.
func (t *Tooltips) ShowingLabels() bool {
	return t.showAll
}

// Labels returns one tooltip per labelled tile while show-all is on.
func (t *Tooltips) Labels(g *world.Grid) []Tooltip {
	if !t.showAll {
		return nil
	}
	var out []Tooltip
	for _, tile := range g.Tiles() {
		if tile.HasLabel() {
			out = append(out, Tooltip{Coord: tile.Coord(), Text: tile.Label(), Position: tile.Position()})
		}
	}
	return out
}

// Reset drops hover state; called when tiles are regenerated.
func (t *Tooltips) Reset() {
	t.Leave()
}

func tooltipText(tile *world.Tile) string {
	base := fmt.Sprintf("%s %s (cost %d)", tile.Coord(), tile.Type(), tile.Cost())
	if tile.HasLabel() {
		return tile.Label() + "\n" + base
	}
	return base
}
