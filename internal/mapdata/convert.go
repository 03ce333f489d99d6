package mapdata

import (
	"log/slog"

	"github.com/talgya/hexmap/internal/world"
)

// ApplyReport summarizes how a document mapped onto a regenerated grid.
type ApplyReport struct {
	Applied   int // tiles that received saved values
	Defaulted int // tiles with no record, left at defaults
	Dropped   int // records whose coordinate is outside the new grid
}

// ToDocument snapshots every tile of g in row-major order.
func ToDocument(g *world.Grid) *MapDocument {
	doc := &MapDocument{
		Width:   g.Width,
		Height:  g.Height,
		HexSize: g.HexSize,
		Tiles:   make([]TileRecord, 0, g.TileCount()),
		Version: CurrentVersion,
	}
	for _, t := range g.Tiles() {
		doc.Tiles = append(doc.Tiles, TileRecord{
			Q:     t.Coord().Q,
			R:     t.Coord().R,
			Type:  t.Type(),
			Cost:  t.Cost(),
			Label: t.Label(),
			Alpha: t.Alpha(),
		})
	}
	return doc
}

// ApplyDocument regenerates g at the document's dimensions and re-applies the
// saved tile values by coordinate. An invalid document leaves g untouched.
// Records outside the new grid are dropped and tiles without a record keep
// their defaults; neither is an error.
func ApplyDocument(doc *MapDocument, g *world.Grid) (ApplyReport, error) {
	var report ApplyReport
	if err := doc.Validate(); err != nil {
		slog.Error("cannot apply map document", "error", err)
		return report, err
	}

	g.Width = doc.Width
	g.Height = doc.Height
	g.HexSize = doc.HexSize
	g.Regenerate(doc.Width, doc.Height)

	lookup := doc.Lookup()
	for _, t := range g.Tiles() {
		rec, ok := lookup[t.Coord()]
		if !ok {
			report.Defaulted++
			continue
		}
		applyRecord(rec, t)
		g.Refresh(t)
		report.Applied++
		delete(lookup, t.Coord())
	}
	report.Dropped = len(lookup)

	if report.Dropped > 0 || report.Defaulted > 0 {
		slog.Warn("map document did not match grid",
			"width", doc.Width, "height", doc.Height,
			"dropped", report.Dropped, "defaulted", report.Defaulted)
	}
	slog.Info("applied map document",
		"width", doc.Width, "height", doc.Height, "tiles", len(doc.Tiles))
	return report, nil
}

func applyRecord(rec TileRecord, t *world.Tile) {
	t.SetProperties(rec.Type, rec.Cost)
	t.SetLabel(rec.Label)
	t.SetAlpha(rec.Alpha)
}
