package world

// Default values every freshly generated tile starts with.
const (
	DefaultTerrain = "Plain"
	DefaultCost    = 1
	DefaultAlpha   = 1.0
)

// Tile is a single cell of the grid. It is a plain data holder: callers
// validate costs and opacity before writing them.
type Tile struct {
	coord    HexCoord
	position Vec3

	terrain string
	cost    int
	label   string
	alpha   float64
}

// NewTile returns an uninitialized tile carrying the default properties.
func NewTile() *Tile {
	return &Tile{
		terrain: DefaultTerrain,
		cost:    DefaultCost,
		alpha:   DefaultAlpha,
	}
}

// Init assigns the tile's coordinate and world position. Generation calls it
// exactly once per tile; a second call silently moves the tile.
func (t *Tile) Init(coord HexCoord, position Vec3) {
	t.coord = coord
	t.position = position
}

// SetProperties updates terrain type and movement cost together.
func (t *Tile) SetProperties(terrain string, cost int) {
	t.terrain, t.cost = terrain, cost
}

func (t *Tile) SetLabel(label string) { t.label = label }

// SetAlpha sets the tile opacity, expected in [0,1].
func (t *Tile) SetAlpha(alpha float64) { t.alpha = alpha }

func (t *Tile) Coord() HexCoord { return t.coord }
func (t *Tile) Position() Vec3 { return t.position }
func (t *Tile) Type() string { return t.terrain }
func (t *Tile) Cost() int { return t.cost }
func (t *Tile) Label() string { return t.label }
func (t *Tile) Alpha() float64 { return t.alpha }
func (t *Tile) HasLabel() bool { return t.label != "" }

// IsDefault reports whether the tile still carries its generated defaults.
func (t *Tile) IsDefault() bool {
	return t.terrain == DefaultTerrain && t.cost == DefaultCost && t.label == "" && t.alpha == DefaultAlpha
}
