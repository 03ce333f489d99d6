// Package mapdata holds the serializable map document and converts it to and
// from a live grid.
package mapdata

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/talgya/hexmap/internal/world"
)

// CurrentVersion is stamped on every document produced by ToDocument.
// Version 1 files may lack label and alpha.
const CurrentVersion = 2

// TimestampFormat is the strftime layout of createdDate and lastModified
// (yyyy-MM-dd HH:mm:ss).
const TimestampFormat = "%Y-%m-%d %H:%M:%S"

// ErrInvalidDocument is returned for a nil document or one without tiles.
var ErrInvalidDocument = errors.New("invalid map document")

// MapDocument is a snapshot of a grid and its per-tile data.
type MapDocument struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	HexSize float64      `json:"hexSize"`
	Tiles   []TileRecord `json:"tiles"`

	MapName      string `json:"mapName"`
	CreatedDate  string `json:"createdDate"`
	LastModified string `json:"lastModified"`
	Version      int    `json:"version"`
}

// TileRecord is the saved state of one tile.
type TileRecord struct {
	Q     int     `json:"q"`
	R     int     `json:"r"`
	Type  string  `json:"type"`
	Cost  int     `json:"cost"`
	Label string  `json:"label"`
	Alpha float64 `json:"alpha"`
}

// UnmarshalJSON decodes a record, defaulting a missing alpha key to full
// opacity. Older files omit it.
func (t *TileRecord) UnmarshalJSON(data []byte) error {
	type plain TileRecord
	rec := plain{Alpha: world.DefaultAlpha}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*t = TileRecord(rec)
	return nil
}

// Coord returns the record's axial coordinate.
func (t TileRecord) Coord() world.HexCoord {
	return world.HexCoord{Q: t.Q, R: t.R}
}

// Validate reports ErrInvalidDocument for a nil or empty document.
// A tile count that differs from Width*Height is tolerated.
func (d *MapDocument) Validate() error {
	if d == nil || len(d.Tiles) == 0 {
		return ErrInvalidDocument
	}
	return nil
}

// Lookup indexes the tile records by coordinate. Later duplicates win.
func (d *MapDocument) Lookup() map[world.HexCoord]TileRecord {
	m := make(map[world.HexCoord]TileRecord, len(d.Tiles))
	for _, t := range d.Tiles {
		m[t.Coord()] = t
	}
	return m
}

// Clone returns a deep copy of the document.
func (d *MapDocument) Clone() *MapDocument {
	if d == nil {
		return nil
	}
	c := *d
	c.Tiles = append([]TileRecord(nil), d.Tiles...)
	return &c
}

// Stamp sets LastModified to now and fills CreatedDate and MapName when unset.
func (d *MapDocument) Stamp(name string, now time.Time) {
	d.LastModified = FormatTimestamp(now)
	if d.CreatedDate == "" {
		d.CreatedDate = d.LastModified
	}
	if d.MapName == "" {
		d.MapName = name
	}
}

// FormatTimestamp renders t in the document timestamp format.
func FormatTimestamp(t time.Time) string {
	return strftime.Format(TimestampFormat, t)
}
