package geometry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/atomgrad/coretwin/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestFallbackCardinality(t *testing.T) {
	cfg := testConfig(t)
	core := Fallback(cfg)

	// The lattice disc approximates the configured channel count; the
	// Gauss circle error at this radius is well under 3%.
	want := float64(cfg.Derived.FuelChannels)
	got := float64(len(core.Cells))
	if math.Abs(got-want)/want > 0.03 {
		t.Errorf("fuel cells = %v, want %v within 3%%", got, want)
	}

	if len(core.Rods) != cfg.Derived.TotalRods {
		t.Errorf("rods = %d, want %d", len(core.Rods), cfg.Derived.TotalRods)
	}

	byLabel := make(map[string]int)
	for _, r := range core.Rods {
		byLabel[r.Label]++
	}
	for _, g := range cfg.Rods.Groups {
		if byLabel[g.Label] != g.Count {
			t.Errorf("label %s: %d rods, want %d", g.Label, byLabel[g.Label], g.Count)
		}
	}
}

func TestNeighborsSymmetric(t *testing.T) {
	cfg := testConfig(t)
	core := Fallback(cfg)

	for i, adj := range core.Neighbors {
		if len(adj) > MaxNeighbors {
			t.Fatalf("cell %d has %d neighbors", i, len(adj))
		}
		for _, j := range adj {
			found := false
			for _, back := range core.Neighbors[j] {
				if int(back) == i {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("cell %d lists %d but not vice versa", i, j)
			}
		}
	}
}

func TestCentroidAtOrigin(t *testing.T) {
	cfg := testConfig(t)
	core := Fallback(cfg)

	var cx, cy float64
	for _, c := range core.Cells {
		cx += c.X
		cy += c.Y
	}
	cx /= float64(len(core.Cells))
	cy /= float64(len(core.Cells))
	if math.Abs(cx) > 1e-6 || math.Abs(cy) > 1e-6 {
		t.Errorf("centroid = (%v, %v), want origin", cx, cy)
	}
}

func TestLoad(t *testing.T) {
	cfg := testConfig(t)

	doc := `cells:
  TK:
    - [0, 0]
    - [1, 0]
    - [0, 1]
    - [1, 1]
  RR:
    - [0, 0]
  AZ:
    - [1, 1]
`
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	core, err := Load(path, cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(core.Cells) != 4 {
		t.Errorf("cells = %d, want 4", len(core.Cells))
	}
	if len(core.Rods) != 2 {
		t.Errorf("rods = %d, want 2", len(core.Rods))
	}
	// 2x2 block: every cell has exactly 2 neighbors.
	for i, adj := range core.Neighbors {
		if len(adj) != 2 {
			t.Errorf("cell %d: %d neighbors, want 2", i, len(adj))
		}
	}
}

func TestLoadErrors(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		doc  string
	}{
		{"missing file", ""},
		{"no fuel cells", "cells:\n  RR:\n    - [0, 0]\n"},
		{"no rod cells", "cells:\n  TK:\n    - [0, 0]\n"},
		{"malformed yaml", "cells: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "layout.yaml")
			if tt.doc != "" {
				if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := Load(path, cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadOrFallbackDegrades(t *testing.T) {
	cfg := testConfig(t)
	core := LoadOrFallback(filepath.Join(t.TempDir(), "missing.yaml"), cfg)
	if core == nil || len(core.Cells) == 0 {
		t.Fatal("expected procedural core")
	}
}
