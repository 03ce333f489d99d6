package world

// RGB is a linear color with components in [0,1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// White is used for terrain tags that have no template.
var White = RGB{1, 1, 1}

// TerrainTemplate is a paintable terrain kind with its default movement cost.
type TerrainTemplate struct {
	Name  string `json:"name"`
	Color RGB    `json:"color"`
	Cost  int    `json:"cost"`
}

// Terrain tags known to the editor.
const (
	TerrainPlain    = "Plain"
	TerrainForest   = "Forest"
	TerrainMountain = "Mountain"
	TerrainWater    = "Water"
)

var templates = []TerrainTemplate{
	{Name: TerrainPlain, Color: RGB{0.5, 0.6, 0.5}, Cost: 1},
	{Name: TerrainForest, Color: RGB{0.2, 0.5, 0.2}, Cost: 2},
	{Name: TerrainMountain, Color: RGB{0.6, 0.6, 0.6}, Cost: 3},
	{Name: TerrainWater, Color: RGB{0.3, 0.5, 1.0}, Cost: 999}, // effectively impassable
}

// Templates returns the terrain catalogue in display order.
func Templates() []TerrainTemplate {
	out := make([]TerrainTemplate, len(templates))
	copy(out, templates)
	return out
}

// LookupTerrain finds a template by its tag.
func LookupTerrain(name string) (TerrainTemplate, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return TerrainTemplate{}, false
}

// TerrainColor returns the display color for a terrain tag.
func TerrainColor(name string) RGB {
	if t, ok := LookupTerrain(name); ok {
		return t.Color
	}
	return White
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[string]int {
	counts := make(map[string]int)
	for _, t := range g.Tiles() {
		counts[t.Type()]++
	}
	return counts
}
