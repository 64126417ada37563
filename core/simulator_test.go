package core

import (
	"math"
	"testing"

	"github.com/atomgrad/coretwin/config"
	"github.com/atomgrad/coretwin/geometry"
)

// testSim builds a simulator over a reduced core so the heavier scenario
// tests stay fast. The physics is per-cell, so nothing about the
// properties under test depends on the channel count.
func testSim(t *testing.T, channels int) *Simulator {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if channels > 0 {
		cfg.Derived.FuelChannels = channels
	}
	return New(cfg, geometry.Fallback(cfg))
}

func TestStartupEquilibrium(t *testing.T) {
	sim := testSim(t, 400)

	st := sim.GetState()
	if math.Abs(st.NeutronPopulation-1) > 1e-9 {
		t.Fatalf("startup population = %v, want 1", st.NeutronPopulation)
	}
	if math.Abs(st.Reactivity) > 1e-9 {
		t.Fatalf("startup reactivity = %v, want 0", st.Reactivity)
	}

	sim.Step()
	st = sim.GetState()
	if math.Abs(st.NeutronPopulation-1) > 1e-2 {
		t.Errorf("population after one step = %v, want 1 within 1e-2", st.NeutronPopulation)
	}

	sim.StepN(100)
	st = sim.GetState()
	if math.Abs(st.NeutronPopulation-1) > 5e-2 {
		t.Errorf("population after 10s = %v, want stable near 1", st.NeutronPopulation)
	}
	if st.ExplosionOccurred {
		t.Error("equilibrium run must not explode")
	}
}

func TestScram(t *testing.T) {
	sim := testSim(t, 400)

	sim.Scram()
	st := sim.GetState()
	if !st.ScramActive {
		t.Fatal("scram flag not set")
	}
	for _, r := range sim.GetRods() {
		if r.Position != 0 {
			t.Fatalf("rod %d at %v, want fully inserted", r.ID, r.Position)
		}
	}
	// Reactivity is applied immediately, without the smoothing lag.
	if st.ReactivityDollars > -5 {
		t.Errorf("dollars after scram = %v, want < -5", st.ReactivityDollars)
	}
	if !hasAlert(st.Alerts, "SCRAM INITIATED!") {
		t.Error("missing scram alert")
	}

	// Idempotent: a second scram does not restart the timer.
	sim.StepN(10)
	before := sim.GetState().ScramTime
	sim.Scram()
	if sim.GetState().ScramTime != before {
		t.Error("second scram reset the timer")
	}

	// Power falls monotonically during shutdown.
	prev := sim.GetState().NeutronPopulation
	for i := 0; i < 50; i++ {
		sim.Step()
		n := sim.GetState().NeutronPopulation
		if n > prev+1e-12 {
			t.Fatalf("population rose during scram: %v -> %v", prev, n)
		}
		prev = n
	}
}

func TestResetScramReArms(t *testing.T) {
	sim := testSim(t, 200)

	sim.Scram()
	sim.ResetScram()
	st := sim.GetState()
	if st.ScramActive || st.ScramTime != 0 {
		t.Error("scram state not cleared")
	}
	// Rods stay inserted until moved.
	for _, r := range sim.GetRods() {
		if r.Position != 0 {
			t.Fatalf("rod %d moved by ResetScram", r.ID)
		}
	}
}

func TestMoveRodClamping(t *testing.T) {
	sim := testSim(t, 200)

	sim.MoveRod(0, 1.7)
	if got := sim.GetRods()[0].Position; got != 1 {
		t.Errorf("position = %v, want clamp to 1", got)
	}
	sim.MoveRod(0, -0.3)
	if got := sim.GetRods()[0].Position; got != 0 {
		t.Errorf("position = %v, want clamp to 0", got)
	}

	// Out-of-range ids are ignored.
	sim.MoveRod(-1, 0.5)
	sim.MoveRod(1 << 20, 0.5)
}

func TestMoveRodGroupAndSubtype(t *testing.T) {
	sim := testSim(t, 200)

	sim.MoveRodGroup(CategoryManual, 0.8)
	for _, r := range sim.GetRods() {
		if r.Category == CategoryManual && r.Position != 0.8 {
			t.Fatalf("manual rod %d at %v", r.ID, r.Position)
		}
		if r.Category == CategoryEmergency && r.Position != 1.0 {
			t.Fatalf("group move touched emergency rod %d", r.ID)
		}
	}

	sim.MoveRodSubtype("lar", 0.4)
	for _, r := range sim.GetRods() {
		switch r.Label {
		case "LAR":
			if r.Position != 0.4 {
				t.Fatalf("LAR rod %d at %v", r.ID, r.Position)
			}
		case "AR":
			if r.Position != 0.25 {
				t.Fatalf("subtype move touched AR rod %d", r.ID)
			}
		}
	}

	// Unknown labels are a no-op.
	before := sim.GetRods()
	sim.MoveRodSubtype("XYZ", 0.9)
	for i, r := range sim.GetRods() {
		if r.Position != before[i].Position {
			t.Fatal("unknown subtype moved rods")
		}
	}
}

func TestRodInsertionShutsDown(t *testing.T) {
	sim := testSim(t, 400)

	// Driving every bank fully in makes the core subcritical without a
	// scram; power must decay.
	sim.MoveRodGroup(CategoryManual, 0)
	sim.MoveRodGroup(CategoryAutomatic, 0)
	sim.MoveRodGroup(CategoryShortened, 0)
	sim.StepN(100)

	st := sim.GetState()
	if st.NeutronPopulation > 0.9 {
		t.Errorf("population = %v, want decay after full insertion", st.NeutronPopulation)
	}
	if st.ReactivityDollars > 0 {
		t.Errorf("dollars = %v, want negative", st.ReactivityDollars)
	}
}

func TestExplosionLatch(t *testing.T) {
	sim := testSim(t, 200)

	sim.state.AvgFuelTemp = 2900
	sim.state.ReactivityDollars = 0
	sim.detectExplosion()

	if !sim.state.ExplosionOccurred {
		t.Fatal("molten core did not latch explosion")
	}
	latchedAt := sim.state.ExplosionTime
	if !hasAlert(sim.state.Alerts, "*** STEAM EXPLOSION - CORE DESTRUCTION ***") {
		t.Error("missing terminal alert")
	}

	// Latched forever: conditions clearing changes nothing.
	sim.state.AvgFuelTemp = 900
	sim.state.Time = 1000
	sim.detectExplosion()
	if sim.state.ExplosionTime != latchedAt {
		t.Error("explosion time rewritten after latch")
	}
}

func TestExplosionSkippedDuringShutdown(t *testing.T) {
	sim := testSim(t, 200)

	// Molten fuel with deeply negative reactivity is a shutdown in
	// progress, not a runaway.
	sim.state.AvgFuelTemp = 2900
	sim.state.ReactivityDollars = -12
	sim.detectExplosion()
	if sim.state.ExplosionOccurred {
		t.Error("explosion detected while deeply subcritical")
	}
}

func TestExplosionSeverityCombination(t *testing.T) {
	sim := testSim(t, 200)

	// Near-melt alone scores 0.5: below the trip point.
	sim.state.AvgFuelTemp = 2700
	sim.state.ReactivityDollars = 0.2
	sim.detectExplosion()
	if sim.state.ExplosionOccurred {
		t.Fatal("single condition must not trip")
	}

	// Adding a steam spike pushes the combination past 1.0.
	sim.state.AvgVoid = 80
	sim.state.AvgCoolantTemp = 790
	sim.state.Alerts = sim.state.Alerts[:0]
	sim.detectExplosion()
	if !sim.state.ExplosionOccurred {
		t.Error("combined conditions did not trip")
	}
}

func TestResetRestoresStartup(t *testing.T) {
	sim := testSim(t, 200)

	sim.Scram()
	sim.StepN(50)
	sim.Reset()

	st := sim.GetState()
	if st.Time != 0 || st.ScramActive || st.ExplosionOccurred {
		t.Error("reset left run state behind")
	}
	if math.Abs(st.NeutronPopulation-1) > 1e-9 {
		t.Errorf("population = %v, want 1", st.NeutronPopulation)
	}
	for _, r := range sim.GetRods() {
		if r.Label == "AZ" && r.Position != 1.0 {
			t.Fatalf("AZ rod %d at %v, want withdrawn", r.ID, r.Position)
		}
	}

	// Reset is idempotent.
	sim.Reset()
	again := sim.GetState()
	if again.NeutronPopulation != st.NeutronPopulation || again.Reactivity != st.Reactivity {
		t.Error("second reset changed the state")
	}
}

func TestSetTimeStepClamps(t *testing.T) {
	sim := testSim(t, 200)

	sim.SetTimeStep(5)
	if got := sim.GetState().DT; got != 1.0 {
		t.Errorf("DT = %v, want clamp to 1.0", got)
	}
	sim.SetTimeStep(1e-9)
	if got := sim.GetState().DT; got != 0.001 {
		t.Errorf("DT = %v, want clamp to 0.001", got)
	}
}

func TestSetTargetPowerClamps(t *testing.T) {
	sim := testSim(t, 200)

	sim.SetTargetPower(500)
	if got := sim.GetRegulator().TargetPercent; got != 110 {
		t.Errorf("target = %v, want clamp to 110", got)
	}
	sim.SetTargetPower(-3)
	if got := sim.GetRegulator().TargetPercent; got != 5 {
		t.Errorf("target = %v, want clamp to 5", got)
	}
}

func hasAlert(alerts []string, want string) bool {
	for _, a := range alerts {
		if a == want {
			return true
		}
	}
	return false
}
