package world

// Flat-topped spacing constants. HexWidth is the horizontal distance between
// adjacent column centers, HexHeight the full hex height (approx. sqrt(3)).
// Saved maps and renderers assume this pair; change both or neither.
const (
	HexWidth  = 1.5
	HexHeight = 1.732
)

// Vec3 is a world-space position. Y is up; the grid lies in the XZ plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

// Cell pairs a coordinate with its centered world position.
type Cell struct {
	Coord    HexCoord
	Position Vec3
}

// Backing describes the surface a renderer draws beneath the tiles.
type Backing struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Center Vec3    `json:"center"`
}

// Layout is the result of laying out a width x height grid.
type Layout struct {
	Cells   []Cell
	Offset  Vec3 // centroid removed from every raw position
	Min     Vec3 // bounds of the centered positions
	Max     Vec3
	Backing Backing
}

// RawPosition returns the uncentered world position of coord.
func RawPosition(coord HexCoord, hexSize float64) Vec3 {
	x := HexWidth * float64(coord.Q)
	// Offset every other column by half a hex.
	z := HexHeight * (float64(coord.R) + 0.5*float64(coord.Q%2))
	return Vec3{X: x, Z: z}.Scale(hexSize)
}

// ComputeLayout positions a width x height grid in row-major order (q outer,
// r inner) and centers it on the origin. Non-positive dimensions give an
// empty layout.
func ComputeLayout(width, height int, hexSize float64) Layout {
	if width <= 0 || height <= 0 {
		return Layout{}
	}

	cells := make([]Cell, 0, width*height)
	var sum Vec3
	for q := 0; q < width; q++ {
		for r := 0; r < height; r++ {
			coord := HexCoord{Q: q, R: r}
			pos := RawPosition(coord, hexSize)
			sum = sum.Add(pos)
			cells = append(cells, Cell{Coord: coord, Position: pos})
		}
	}

	offset := sum.Scale(1 / float64(len(cells)))
	for i := range cells {
		cells[i].Position = cells[i].Position.Sub(offset)
	}

	lo, hi := cells[0].Position, cells[0].Position
	for _, c := range cells[1:] {
		p := c.Position
		lo = Vec3{min(lo.X, p.X), min(lo.Y, p.Y), min(lo.Z, p.Z)}
		hi = Vec3{max(hi.X, p.X), max(hi.Y, p.Y), max(hi.Z, p.Z)}
	}

	// Half a hex height of margin frames the outermost tiles.
	margin := hexSize * HexHeight * 0.5

	return Layout{
		Cells:  cells,
		Offset: offset,
		Min:    lo,
		Max:    hi,
		Backing: Backing{
			Width:  (hi.X - lo.X) + margin*2,
			Height: (hi.Z - lo.Z) + margin*2,
			Center: lo.Add(hi).Scale(0.5),
		},
	}
}
