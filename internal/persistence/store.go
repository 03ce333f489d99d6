// Package persistence provides map document storage: one JSON file per map
// (the interchange format) or a single SQLite database.
package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/talgya/hexmap/internal/mapdata"
)

var (
	// ErrNotFound is returned when a map does not exist or cannot be read.
	ErrNotFound = errors.New("map not found")
	// ErrUnreadable accompanies ErrNotFound for files that exist but fail to decode.
	ErrUnreadable = errors.New("map unreadable")
	// ErrInvalidName is returned for names that would escape the storage root.
	ErrInvalidName = errors.New("invalid map name")
)

// Store is the persistence backend interface used by the editor.
type Store interface {
	mapdata.Store
	Entries() ([]Entry, error)
	Delete(name string) error
	Close() error
}

// Entry describes one stored map for listings.
type Entry struct {
	Name     string    `json:"name"` // storage name, underscores intact
	Display  string    `json:"display"`
	Modified time.Time `json:"modified"`
	Tiles    int       `json:"tiles"`
}

// FileName converts a display name to a storage name by replacing spaces
// with underscores. Callers do this before Save; stores do not.
func FileName(display string) string {
	return strings.ReplaceAll(strings.TrimSpace(display), " ", "_")
}

// DisplayName converts a storage name back to its display form.
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// ValidateName rejects names that are empty or could address a path outside
// the storage directory. Nothing else is rewritten.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "", name == ".", name == "..":
		return ErrInvalidName
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return ErrInvalidName
	}
	return nil
}

// displayNames maps storage names to display names, deduplicated and sorted.
func displayNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = append(out, DisplayName(n))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Open opens the named backend: "json" keeps files under dir/Maps, "sqlite"
// uses the database at sqlitePath.
func Open(backend, dir, sqlitePath string) (Store, error) {
	switch backend {
	case "json":
		return OpenJSON(dir)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return OpenDB(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
