package world

import "fmt"

// TileFactory instantiates the tile for a generated cell.
type TileFactory interface {
	NewTile(coord HexCoord, position Vec3) *Tile
}

// TileFactoryFunc adapts a function to TileFactory.
type TileFactoryFunc func(coord HexCoord, position Vec3) *Tile

func (f TileFactoryFunc) NewTile(coord HexCoord, position Vec3) *Tile {
	return f(coord, position)
}

// DefaultFactory builds default tiles and initializes them in place.
var DefaultFactory TileFactory = TileFactoryFunc(func(coord HexCoord, position Vec3) *Tile {
	t := NewTile()
	t.Init(coord, position)
	return t
})

// Renderer receives the plain data a presentation layer needs.
// Every method is called synchronously from the grid's owner.
type Renderer interface {
	TileChanged(t *Tile)
	TilesCleared()
	BackingChanged(b Backing)
}

// Fixture is a non-tile entry owned by the grid, such as a backing mat or a
// pinned marker. Preserved fixtures survive Clear.
type Fixture struct {
	Name     string
	Preserve bool
}

// Grid owns the tiles of a width x height axial grid, indexed by coordinate
// and kept in generation (row-major) order.
type Grid struct {
	Width   int
	Height  int
	HexSize float64

	factory  TileFactory
	renderer Renderer

	tiles    []*Tile
	index    map[HexCoord]*Tile
	fixtures []*Fixture
	layout   Layout
}

// GridOption configures a Grid at construction.
type GridOption func(*Grid)

// WithFactory replaces the default tile factory.
func WithFactory(f TileFactory) GridOption {
	return func(g *Grid) { g.factory = f }
}

// WithRenderer attaches a renderer collaborator.
func WithRenderer(r Renderer) GridOption {
	return func(g *Grid) { g.renderer = r }
}

// NewGrid creates an empty grid with the given dimensions. Call Generate to
// populate it.
func NewGrid(width, height int, hexSize float64, opts ...GridOption) *Grid {
	g := &Grid{
		Width:   width,
		Height:  height,
		HexSize: hexSize,
		factory: DefaultFactory,
		index:   make(map[HexCoord]*Tile),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate lays out Width x Height tiles and instantiates them through the
// factory. A populated grid is cleared first, so the grid always holds
// exactly Width x Height tiles.
func (g *Grid) Generate() {
	if len(g.tiles) > 0 {
		g.Clear()
	}
	g.layout = ComputeLayout(g.Width, g.Height, g.HexSize)
	for _, c := range g.layout.Cells {
		t := g.factory.NewTile(c.Coord, c.Position)
		g.tiles = append(g.tiles, t)
		g.index[c.Coord] = t
		g.Refresh(t)
	}
	if g.renderer != nil && len(g.layout.Cells) > 0 {
		g.renderer.BackingChanged(g.layout.Backing)
	}
}

// Clear removes every tile and every fixture not flagged Preserve.
func (g *Grid) Clear() {
	g.tiles = nil
	g.index = make(map[HexCoord]*Tile)
	g.layout = Layout{}

	kept := g.fixtures[:0]
	for _, f := range g.fixtures {
		if f.Preserve {
			kept = append(kept, f)
		}
	}
	g.fixtures = kept

	if g.renderer != nil {
		g.renderer.TilesCleared()
	}
}

// Regenerate resizes the grid, clears it and generates it again. Tile
// pointers obtained before the call are stale afterwards.
func (g *Grid) Regenerate(width, height int) {
	g.Width = width
	g.Height = height
	g.Clear()
	g.Generate()
}

// Tile returns the tile at coord, or nil if there is none.
func (g *Grid) Tile(coord HexCoord) *Tile {
	return g.index[coord]
}

// Tiles returns the tiles in row-major order. The slice is shared; do not
// modify it.
func (g *Grid) Tiles() []*Tile {
	return g.tiles
}

// TileCount returns the number of live tiles.
func (g *Grid) TileCount() int {
	return len(g.tiles)
}

// InBounds returns true if coord lies within [0,Width) x [0,Height).
func (g *Grid) InBounds(coord HexCoord) bool {
	return coord.Q >= 0 && coord.Q < g.Width && coord.R >= 0 && coord.R < g.Height
}

// Layout returns the layout computed by the last Generate.
func (g *Grid) Layout() Layout {
	return g.layout
}

// Refresh notifies the renderer that a tile's visible state changed.
func (g *Grid) Refresh(t *Tile) {
	if g.renderer != nil && t != nil {
		g.renderer.TileChanged(t)
	}
}

// AddFixture attaches a non-tile entry to the grid.
func (g *Grid) AddFixture(f *Fixture) {
	g.fixtures = append(g.fixtures, f)
}

// Fixtures returns the fixtures currently owned by the grid.
func (g *Grid) Fixtures() []*Fixture {
	return g.fixtures
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, size=%.2f, tiles=%d)", g.Width, g.Height, g.HexSize, g.TileCount())
}
