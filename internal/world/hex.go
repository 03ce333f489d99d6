// Package world provides the hex grid, its layout math, and the tile entities
// an editor mutates. Uses axial coordinates (q, r) on a flat-topped grid.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// Adjacency code depends on this order; do not reorder.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbor returns the adjacent coordinate in the given direction.
// Any integer is accepted; the direction wraps modulo 6.
func (h HexCoord) Neighbor(dir int) HexCoord {
	dir %= len(HexNeighborDirections)
	if dir < 0 {
		dir += len(HexNeighborDirections)
	}
	d := HexNeighborDirections[dir]
	return HexCoord{Q: h.Q + d.Q, R: h.R + d.R}
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i := range HexNeighborDirections {
		result[i] = h.Neighbor(i)
	}
	return result
}

// Key returns the "q,r" composite key used by saved map lookups.
func (h HexCoord) Key() string {
	return fmt.Sprintf("%d,%d", h.Q, h.R)
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d, %d)", h.Q, h.R)
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
