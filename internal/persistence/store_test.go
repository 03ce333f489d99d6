package persistence

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/hexmap/internal/mapdata"
)

var fixedNow = time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	js, err := OpenJSON(t.TempDir())
	if err != nil {
		t.Fatalf("open json store: %v", err)
	}
	js.Now = func() time.Time { return fixedNow }

	db, err := OpenDB(filepath.Join(t.TempDir(), "maps.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.Now = func() time.Time { return fixedNow }
	t.Cleanup(func() { db.Close() })

	return map[string]Store{"json": js, "sqlite": db}
}

func sampleDoc() *mapdata.MapDocument {
	return &mapdata.MapDocument{
		Width:   2,
		Height:  2,
		HexSize: 1.1,
		Tiles: []mapdata.TileRecord{
			{Q: 0, R: 0, Type: "Plain", Cost: 1, Label: "", Alpha: 1},
			{Q: 0, R: 1, Type: "Forest", Cost: 2, Label: "Old Wood", Alpha: 0.3},
			{Q: 1, R: 0, Type: "Water", Cost: 999, Label: "Lake \"Blue\"", Alpha: 0.123456789},
			{Q: 1, R: 1, Type: "Mountain", Cost: 3, Label: "ünïcode", Alpha: 0},
		},
		Version: mapdata.CurrentVersion,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			doc := sampleDoc()
			if err := s.Save(doc, "my_map"); err != nil {
				t.Fatalf("unexpected save error: %v", err)
			}
			if doc.LastModified != "2025-06-01 14:30:00" || doc.CreatedDate != doc.LastModified {
				t.Fatalf("unexpected stamps: %q %q", doc.CreatedDate, doc.LastModified)
			}
			if doc.MapName != "my_map" {
				t.Fatalf("expected mapName my_map, got %q", doc.MapName)
			}

			got, err := s.Load("my_map")
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			if got.Width != doc.Width || got.Height != doc.Height || got.HexSize != doc.HexSize ||
				got.MapName != doc.MapName || got.CreatedDate != doc.CreatedDate ||
				got.LastModified != doc.LastModified || got.Version != doc.Version {
				t.Fatalf("header mismatch: %+v vs %+v", got, doc)
			}
			if len(got.Tiles) != len(doc.Tiles) {
				t.Fatalf("expected %d tiles, got %d", len(doc.Tiles), len(got.Tiles))
			}
			for i := range doc.Tiles {
				if got.Tiles[i] != doc.Tiles[i] {
					t.Fatalf("tile %d: expected %+v, got %+v", i, doc.Tiles[i], got.Tiles[i])
				}
			}
		})
	}
}

func TestStoreKeepsExistingStamps(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			doc := sampleDoc()
			doc.MapName = "Display Name"
			doc.CreatedDate = "2020-01-01 00:00:00"
			if err := s.Save(doc, "file_name"); err != nil {
				t.Fatalf("unexpected save error: %v", err)
			}
			got, err := s.Load("file_name")
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			if got.MapName != "Display Name" || got.CreatedDate != "2020-01-01 00:00:00" {
				t.Fatalf("expected existing metadata kept, got %q %q", got.MapName, got.CreatedDate)
			}
			if got.LastModified != "2025-06-01 14:30:00" {
				t.Fatalf("expected lastModified refreshed, got %q", got.LastModified)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			if err := s.Save(sampleDoc(), "m"); err != nil {
				t.Fatalf("unexpected save error: %v", err)
			}
			smaller := sampleDoc()
			smaller.Tiles = smaller.Tiles[:1]
			if err := s.Save(smaller, "m"); err != nil {
				t.Fatalf("unexpected save error: %v", err)
			}
			got, err := s.Load("m")
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			if len(got.Tiles) != 1 {
				t.Fatalf("expected 1 tile after overwrite, got %d", len(got.Tiles))
			}
		})
	}
}

func TestStoreMissing(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			if s.Exists("ghost") {
				t.Fatalf("expected ghost not to exist")
			}
			_, err := s.Load("ghost")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreListAndEntries(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			for _, n := range []string{"zeta", "big_island", "big island", "alpha"} {
				if err := s.Save(sampleDoc(), n); err != nil {
					t.Fatalf("save %q: %v", n, err)
				}
			}
			names, err := s.List()
			if err != nil {
				t.Fatalf("unexpected list error: %v", err)
			}
			want := []string{"alpha", "big island", "zeta"}
			if len(names) != len(want) {
				t.Fatalf("expected %v, got %v", want, names)
			}
			for i := range want {
				if names[i] != want[i] {
					t.Fatalf("expected %v, got %v", want, names)
				}
			}
			if !s.Exists("big_island") || !s.Exists("big island") {
				t.Fatalf("expected both storage names to exist")
			}

			entries, err := s.Entries()
			if err != nil {
				t.Fatalf("unexpected entries error: %v", err)
			}
			if len(entries) != 4 {
				t.Fatalf("expected 4 entries, got %d", len(entries))
			}
			for _, e := range entries {
				if e.Tiles != 4 {
					t.Fatalf("entry %q: expected 4 tiles, got %d", e.Name, e.Tiles)
				}
			}

			if err := s.Delete("zeta"); err != nil {
				t.Fatalf("unexpected delete error: %v", err)
			}
			if s.Exists("zeta") {
				t.Fatalf("expected zeta deleted")
			}
			if err := s.Delete("zeta"); err != nil {
				t.Fatalf("expected deleting a missing map to succeed, got %v", err)
			}
		})
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	for kind, s := range openStores(t) {
		t.Run(kind, func(t *testing.T) {
			for _, n := range []string{"", " ", "..", "../escape", `a\b`, "dir/name"} {
				if err := s.Save(sampleDoc(), n); !errors.Is(err, ErrInvalidName) {
					t.Fatalf("save %q: expected ErrInvalidName, got %v", n, err)
				}
				if _, err := s.Load(n); !errors.Is(err, ErrInvalidName) {
					t.Fatalf("load %q: expected ErrInvalidName, got %v", n, err)
				}
			}
		})
	}
}

func TestNameHelpers(t *testing.T) {
	if FileName(" My Big Map ") != "My_Big_Map" {
		t.Fatalf("unexpected file name %q", FileName(" My Big Map "))
	}
	if DisplayName("My_Big_Map") != "My Big Map" {
		t.Fatalf("unexpected display name %q", DisplayName("My_Big_Map"))
	}
	if ValidateName("ok_name-1") != nil {
		t.Fatalf("expected plain name to be valid")
	}
}

func TestOpenBackends(t *testing.T) {
	root := t.TempDir()
	js, err := Open("json", root, "")
	if err != nil {
		t.Fatalf("unexpected json open error: %v", err)
	}
	js.Close()

	db, err := Open("sqlite", root, filepath.Join(root, "nested", "maps.db"))
	if err != nil {
		t.Fatalf("unexpected sqlite open error: %v", err)
	}
	db.Close()

	if _, err := Open("redis", root, ""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
