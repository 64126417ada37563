package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if math.Abs(cfg.Derived.BetaEff-0.006502) > 1e-9 {
		t.Errorf("BetaEff = %v, want 0.006502", cfg.Derived.BetaEff)
	}
	wantVoid := 4.5 * cfg.Derived.BetaEff / 100
	if math.Abs(cfg.Derived.AlphaVoidPerPct-wantVoid) > 1e-12 {
		t.Errorf("AlphaVoidPerPct = %v, want %v", cfg.Derived.AlphaVoidPerPct, wantVoid)
	}

	if cfg.Derived.TotalRods != 223 {
		t.Errorf("TotalRods = %d, want 223", cfg.Derived.TotalRods)
	}
	if cfg.Derived.FuelChannels != 1661 {
		t.Errorf("FuelChannels = %d, want 1661", cfg.Derived.FuelChannels)
	}
	if len(cfg.Rods.Groups) != 5 {
		t.Fatalf("rod groups = %d, want 5", len(cfg.Rods.Groups))
	}
	if i, ok := cfg.Derived.GroupByLabel["LAR"]; !ok || cfg.Rods.Groups[i].Category != "automatic" {
		t.Error("LAR must map to an automatic group")
	}
}

func TestLoadOverride(t *testing.T) {
	doc := "sim:\n  dt: 0.25\nreactor:\n  nominal_power_mw: 1000.0\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.DT != 0.25 {
		t.Errorf("DT = %v, want override 0.25", cfg.Sim.DT)
	}
	if cfg.Reactor.NominalPowerMW != 1000 {
		t.Errorf("NominalPowerMW = %v, want override 1000", cfg.Reactor.NominalPowerMW)
	}
	// Untouched fields keep their defaults.
	if cfg.Thermal.SaturationTemp != 558 {
		t.Errorf("SaturationTemp = %v, want default 558", cfg.Thermal.SaturationTemp)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"wrong group count", "kinetics:\n  beta: [0.001, 0.002]\n"},
		{"bad rod category", "rods:\n  groups:\n    - { label: XX, category: sideways, worth: 0.001, startup: 0.5, count: 1 }\n"},
		{"zero lifetime", "kinetics:\n  neutron_lifetime: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if back.Reactor.NominalPowerMW != cfg.Reactor.NominalPowerMW {
		t.Error("round trip lost reactor settings")
	}
	if back.Derived.TotalRods != cfg.Derived.TotalRods {
		t.Error("round trip lost rod groups")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	global = nil
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
