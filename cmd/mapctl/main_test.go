package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/talgya/hexmap/internal/config"
	"github.com/talgya/hexmap/internal/persistence"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()
	return cfg
}

func TestNewListShowResize(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	if err := run(cfg, "new", []string{"-w", "5", "-h", "4", "-paint", "-seed", "7", "Twin Peaks"}, &out); err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if !strings.Contains(out.String(), "created Twin Peaks: 20 tiles (seed 7)") {
		t.Fatalf("unexpected new output %q", out.String())
	}

	out.Reset()
	if err := run(cfg, "list", nil, &out); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Twin Peaks") {
		t.Fatalf("expected map in listing, got %q", out.String())
	}

	out.Reset()
	if err := run(cfg, "show", []string{"Twin Peaks"}, &out); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out.String(), "size      5x4") || !strings.Contains(out.String(), "20 applied") {
		t.Fatalf("unexpected show output %q", out.String())
	}

	out.Reset()
	if err := run(cfg, "resize", []string{"Twin_Peaks", "3", "6"}, &out); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if !strings.Contains(out.String(), "12 kept, 6 new, 8 dropped") {
		t.Fatalf("unexpected resize output %q", out.String())
	}

	if err := run(cfg, "new", []string{"Twin Peaks"}, &out); err == nil {
		t.Fatalf("expected error creating a duplicate map")
	}
}

func TestRemove(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	run(cfg, "new", []string{"gone"}, &out)
	if err := run(cfg, "rm", []string{"gone"}, &out); err != nil {
		t.Fatalf("rm failed: %v", err)
	}
	if err := run(cfg, "show", []string{"gone"}, &out); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after rm, got %v", err)
	}
}

func TestNeighbors(t *testing.T) {
	var out bytes.Buffer
	if err := run(config.Default(), "neighbors", []string{"0", "0"}, &out); err != nil {
		t.Fatalf("neighbors failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 || lines[0] != "0 (1, 0)" || lines[5] != "5 (0, 1)" {
		t.Fatalf("unexpected neighbors %q", lines)
	}
	if err := run(config.Default(), "neighbors", []string{"x"}, &out); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(testConfig(t), "explode", nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}
