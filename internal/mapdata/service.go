package mapdata

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexmap/internal/world"
)

// Store reads and writes map documents by name.
type Store interface {
	Save(doc *MapDocument, name string) error
	Load(name string) (*MapDocument, error)
	Exists(name string) bool
	List() ([]string, error)
}

// Service moves maps between a live grid and a Store.
type Service struct {
	store Store
}

// NewService creates a service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store returns the backing store.
func (s *Service) Store() Store {
	return s.store
}

// SaveGrid snapshots g and writes it under name. The returned document
// carries the timestamps the store stamped on it.
func (s *Service) SaveGrid(g *world.Grid, name string) (*MapDocument, error) {
	doc := ToDocument(g)
	if err := s.store.Save(doc, name); err != nil {
		slog.Error("failed to save map", "name", name, "error", err)
		return nil, fmt.Errorf("save %q: %w", name, err)
	}
	return doc, nil
}

// LoadGrid reads name from the store and applies it to g. On any error g is
// left untouched.
func (s *Service) LoadGrid(g *world.Grid, name string) (*MapDocument, ApplyReport, error) {
	doc, err := s.store.Load(name)
	if err != nil {
		return nil, ApplyReport{}, fmt.Errorf("load %q: %w", name, err)
	}
	report, err := ApplyDocument(doc, g)
	if err != nil {
		return nil, report, fmt.Errorf("apply %q: %w", name, err)
	}
	return doc, report, nil
}

// Exists reports whether a map with this name is stored.
func (s *Service) Exists(name string) bool {
	return s.store.Exists(name)
}

// List returns the display names of stored maps.
func (s *Service) List() ([]string, error) {
	return s.store.List()
}
