// Procedural terrain painting using layered simplex noise.
// Samples elevation and rainfall at each tile's world position, then derives terrain.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// PaintConfig holds procedural painting parameters.
type PaintConfig struct {
	Seed          int64   // Random seed (0 = random)
	WaterLevel    float64 // Elevation below which tiles become water (0.0–1.0)
	MountainLevel float64 // Elevation above which tiles become mountain (0.0–1.0)
	ForestRain    float64 // Rainfall above which land becomes forest (0.0–1.0)
	Frequency     float64 // Base noise frequency in world units
}

// DefaultPaintConfig returns a reasonable starting configuration.
func DefaultPaintConfig() PaintConfig {
	return PaintConfig{
		Seed:          0,
		WaterLevel:    0.35,
		MountainLevel: 0.68,
		ForestRain:    0.55,
		Frequency:     0.12,
	}
}

// Paint assigns terrain to every tile of g from noise. Tiles keep their
// labels and opacity. Returns the seed actually used.
func Paint(g *Grid, cfg PaintConfig) int64 {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	freq := cfg.Frequency
	if freq <= 0 {
		freq = DefaultPaintConfig().Frequency
	}

	// Independent generators per layer.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)

	// Sample in hex units so the pattern does not depend on hexSize.
	scale := 1.0
	if g.HexSize > 0 {
		scale = 1 / g.HexSize
	}

	for _, t := range g.Tiles() {
		p := t.Position().Scale(scale)
		elev := octaveNoise(elevNoise, p.X, p.Z, 4, freq, 0.5)
		rain := octaveNoise(rainNoise, p.X, p.Z, 3, freq*0.75, 0.5)

		tmpl, _ := LookupTerrain(deriveTerrain(elev, rain, cfg))
		t.SetProperties(tmpl.Name, tmpl.Cost)
		g.Refresh(t)
	}
	return seed
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain float64, cfg PaintConfig) string {
	if elev < cfg.WaterLevel {
		return TerrainWater
	}
	if elev > cfg.MountainLevel {
		return TerrainMountain
	}
	if rain > cfg.ForestRain {
		return TerrainForest
	}
	return TerrainPlain
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
