package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexmap/internal/mapdata"
)

// DB stores every map in one SQLite file.
type DB struct {
	conn *sqlx.DB
	Now  func() time.Time
}

type mapRow struct {
	Name         string  `db:"name"`
	Width        int     `db:"width"`
	Height       int     `db:"height"`
	HexSize      float64 `db:"hex_size"`
	MapName      string  `db:"map_name"`
	CreatedDate  string  `db:"created_date"`
	LastModified string  `db:"last_modified"`
	Version      int     `db:"version"`
}

type tileRow struct {
	Q     int     `db:"q"`
	R     int     `db:"r"`
	Type  string  `db:"type"`
	Cost  int     `db:"cost"`
	Label string  `db:"label"`
	Alpha float64 `db:"alpha"`
}

type entryRow struct {
	Name      string `db:"name"`
	UpdatedAt int64  `db:"updated_at"`
	Tiles     int    `db:"tiles"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, Now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		name TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		hex_size REAL NOT NULL,
		map_name TEXT NOT NULL,
		created_date TEXT NOT NULL,
		last_modified TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS map_tiles (
		map TEXT NOT NULL REFERENCES maps(name) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		type TEXT NOT NULL,
		cost INTEGER NOT NULL,
		label TEXT NOT NULL,
		alpha REAL NOT NULL,
		PRIMARY KEY (map, idx)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save stamps doc and writes it under name (full replace of that map).
func (db *DB) Save(doc *mapdata.MapDocument, name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	if doc == nil {
		return mapdata.ErrInvalidDocument
	}
	now := db.Now()
	doc.Stamp(name, now)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM map_tiles WHERE map = ?", name); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO maps
		(name, width, height, hex_size, map_name, created_date, last_modified, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, doc.Width, doc.Height, doc.HexSize, doc.MapName,
		doc.CreatedDate, doc.LastModified, doc.Version, now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert map %q: %w", name, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO map_tiles
		(map, idx, q, r, type, cost, label, alpha)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range doc.Tiles {
		if _, err := stmt.Exec(name, i, t.Q, t.R, t.Type, t.Cost, t.Label, t.Alpha); err != nil {
			return fmt.Errorf("insert tile %d,%d: %w", t.Q, t.R, err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to save map", "name", name, "error", err)
		return err
	}
	slog.Info("map saved", "name", name, "tiles", len(doc.Tiles))
	return nil
}

// Load reads the map stored under name.
func (db *DB) Load(name string) (*mapdata.MapDocument, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}

	var row mapRow
	err := db.conn.Get(&row, `SELECT name, width, height, hex_size, map_name,
		created_date, last_modified, version FROM maps WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Warn("map not found", "name", name)
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("failed to load map", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %w: %v", ErrNotFound, ErrUnreadable, err)
	}

	var tiles []tileRow
	err = db.conn.Select(&tiles,
		"SELECT q, r, type, cost, label, alpha FROM map_tiles WHERE map = ? ORDER BY idx", name)
	if err != nil {
		slog.Error("failed to load tiles", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %w: %v", ErrNotFound, ErrUnreadable, err)
	}

	doc := &mapdata.MapDocument{
		Width:        row.Width,
		Height:       row.Height,
		HexSize:      row.HexSize,
		Tiles:        make([]mapdata.TileRecord, len(tiles)),
		MapName:      row.MapName,
		CreatedDate:  row.CreatedDate,
		LastModified: row.LastModified,
		Version:      row.Version,
	}
	for i, t := range tiles {
		doc.Tiles[i] = mapdata.TileRecord(t)
	}
	slog.Info("map loaded", "name", name, "tiles", len(doc.Tiles))
	return doc, nil
}

// Exists returns true if a map is stored under name.
func (db *DB) Exists(name string) bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM maps WHERE name = ?", name); err != nil {
		return false
	}
	return n > 0
}

// List returns display names of stored maps, deduplicated and sorted.
func (db *DB) List() ([]string, error) {
	var names []string
	if err := db.conn.Select(&names, "SELECT name FROM maps ORDER BY name"); err != nil {
		slog.Error("failed to list maps", "error", err)
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return displayNames(names), nil
}

// Entries returns one entry per stored map, sorted by name.
func (db *DB) Entries() ([]Entry, error) {
	var rows []entryRow
	err := db.conn.Select(&rows, `SELECT m.name, m.updated_at, COUNT(t.idx) AS tiles
		FROM maps m LEFT JOIN map_tiles t ON t.map = m.name
		GROUP BY m.name ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			Name:     r.Name,
			Display:  DisplayName(r.Name),
			Modified: time.Unix(0, r.UpdatedAt),
			Tiles:    r.Tiles,
		})
	}
	return entries, nil
}

// Delete removes the map stored under name. Missing maps are not an error.
func (db *DB) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	_, err := db.conn.Exec("DELETE FROM maps WHERE name = ?", name)
	return err
}
