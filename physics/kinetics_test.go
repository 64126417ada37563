package physics

import (
	"math"
	"testing"

	"github.com/atomgrad/coretwin/config"
)

func testKernel(t *testing.T) Kernel {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return NewKernel(cfg)
}

func TestSolveKineticsCriticalEquilibrium(t *testing.T) {
	k := testKernel(t)

	s := KineticsState{N: 1, FuelTemp: 900}
	s.C = k.EquilibriumPrecursors(1)

	// At zero reactivity with equilibrium precursors and reference fuel
	// temperature, one step must leave the population unchanged.
	out := k.SolveKinetics(s, 0, 0.1)
	if math.Abs(out.N-1) > 1e-3 {
		t.Errorf("N = %v, want 1 within 1e-3", out.N)
	}
	if math.Abs(out.FuelTemp-900) > 1e-6 {
		t.Errorf("FuelTemp = %v, want 900", out.FuelTemp)
	}
}

func TestSolveKineticsDirection(t *testing.T) {
	k := testKernel(t)

	tests := []struct {
		name string
		rho  float64
		want func(n float64) bool
	}{
		{"positive reactivity grows", 0.001, func(n float64) bool { return n > 1 }},
		{"negative reactivity shrinks", -0.001, func(n float64) bool { return n < 1 }},
		{"deeply subcritical collapses", -0.09, func(n float64) bool { return n < 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := KineticsState{N: 1, FuelTemp: 900}
			s.C = k.EquilibriumPrecursors(1)
			for i := 0; i < 10; i++ {
				s = k.SolveKinetics(s, tt.rho, 0.1)
			}
			if !tt.want(s.N) {
				t.Errorf("N after 1s at rho=%v: %v", tt.rho, s.N)
			}
			if math.IsNaN(s.N) || math.IsInf(s.N, 0) {
				t.Errorf("N is not finite: %v", s.N)
			}
		})
	}
}

func TestSolveKineticsClamps(t *testing.T) {
	k := testKernel(t)

	s := KineticsState{N: 9.9, FuelTemp: 2900}
	s.C = k.EquilibriumPrecursors(9.9)
	for i := 0; i < 100; i++ {
		s = k.SolveKinetics(s, 0.02, 0.1)
	}
	if s.N > 10 {
		t.Errorf("N = %v, exceeds population ceiling", s.N)
	}

	s = KineticsState{N: 1e-9, FuelTemp: 400}
	for i := 0; i < 100; i++ {
		s = k.SolveKinetics(s, -0.09, 0.1)
	}
	if s.N < 1e-10 {
		t.Errorf("N = %v, below population floor", s.N)
	}
	for i, c := range s.C {
		if c < 0 {
			t.Errorf("C[%d] = %v, negative precursor", i, c)
		}
	}
}

func TestEquilibriumPrecursorsBalance(t *testing.T) {
	k := testKernel(t)

	// Sum of lambda_i * C_i must equal beta/Lambda * n: the delayed
	// source exactly replaces the prompt deficit at rho = 0.
	c := k.EquilibriumPrecursors(1)
	var source float64
	for i := 0; i < Groups; i++ {
		source += k.lambda[i] * c[i]
	}
	want := k.betaEff / k.lifetime
	if math.Abs(source-want)/want > 1e-12 {
		t.Errorf("delayed source = %v, want %v", source, want)
	}
}

func TestPeriod(t *testing.T) {
	k := testKernel(t)

	tests := []struct {
		name       string
		nOld, nNew float64
		dt         float64
		want       float64
		wantInf    bool
	}{
		{"rising", 1, 1.1, 0.1, 1, false},
		{"falling", 1, 0.9, 0.1, -1, false},
		{"stationary", 1, 1, 0.1, 0, true},
		{"near zero population", 1e-12, 2e-12, 0.1, 0, true},
		{"beyond display range", 1, 1 + 1e-9, 0.1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.Period(tt.nOld, tt.nNew, tt.dt)
			if tt.wantInf {
				if !math.IsInf(got, 1) {
					t.Errorf("Period = %v, want +Inf", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Period = %v, want %v", got, tt.want)
			}
		})
	}
}
