package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/talgya/hexmap/internal/mapdata"
)

// MapsDir is the subdirectory of the storage root holding map files.
const MapsDir = "Maps"

// FileExtension is appended to every map name.
const FileExtension = ".json"

// JSONStore keeps one indented JSON document per map under <root>/Maps.
// Writes are not atomic: a failure mid-write can leave a truncated file.
type JSONStore struct {
	dir string
	Now func() time.Time
}

// OpenJSON creates the maps directory under root if needed.
func OpenJSON(root string) (*JSONStore, error) {
	dir := filepath.Join(root, MapsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create maps dir: %w", err)
	}
	return &JSONStore{dir: dir, Now: time.Now}, nil
}

// Dir returns the directory map files are written to.
func (s *JSONStore) Dir() string {
	return s.dir
}

func (s *JSONStore) path(name string) string {
	return filepath.Join(s.dir, name+FileExtension)
}

// Save stamps doc and writes it to <name>.json.
func (s *JSONStore) Save(doc *mapdata.MapDocument, name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	if doc == nil {
		return mapdata.ErrInvalidDocument
	}
	doc.Stamp(name, s.Now())

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	path := s.path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("failed to save map", "path", path, "error", err)
		return fmt.Errorf("write map: %w", err)
	}
	slog.Info("map saved", "path", path, "tiles", len(doc.Tiles))
	return nil
}

// Load reads <name>.json. A missing file returns ErrNotFound; an unreadable
// or malformed one is logged and also reported as ErrNotFound.
func (s *JSONStore) Load(name string) (*mapdata.MapDocument, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	path := s.path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("map file not found", "path", path)
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("failed to read map", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w: %v", ErrNotFound, ErrUnreadable, err)
	}

	var doc mapdata.MapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Error("failed to decode map", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w: %v", ErrNotFound, ErrUnreadable, err)
	}
	slog.Info("map loaded", "path", path, "tiles", len(doc.Tiles))
	return &doc, nil
}

// Exists returns true if <name>.json is present.
func (s *JSONStore) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.path(name))
	return err == nil && !info.IsDir()
}

// List returns display names of stored maps, deduplicated and sorted.
func (s *JSONStore) List() ([]string, error) {
	names, err := s.fileNames()
	if err != nil {
		return nil, err
	}
	return displayNames(names), nil
}

// Entries returns one entry per map file, sorted by storage name. Tile
// counts of unreadable files are reported as zero.
func (s *JSONStore) Entries() ([]Entry, error) {
	names, err := s.fileNames()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		info, err := os.Stat(s.path(n))
		if err != nil {
			continue
		}
		e := Entry{Name: n, Display: DisplayName(n), Modified: info.ModTime()}
		if data, err := os.ReadFile(s.path(n)); err == nil {
			var doc struct {
				Tiles []json.RawMessage `json:"tiles"`
			}
			if json.Unmarshal(data, &doc) == nil {
				e.Tiles = len(doc.Tiles)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *JSONStore) fileNames() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("map directory not found", "dir", s.dir)
		return nil, nil
	}
	if err != nil {
		slog.Error("failed to list maps", "dir", s.dir, "error", err)
		return nil, fmt.Errorf("list maps: %w", err)
	}
	var names []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), FileExtension) {
			continue
		}
		n := strings.TrimSuffix(f.Name(), FileExtension)
		if strings.TrimSpace(n) == "" {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes <name>.json. Missing files are not an error.
func (s *JSONStore) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete map: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *JSONStore) Close() error {
	return nil
}
