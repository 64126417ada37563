package core

import (
	"fmt"
	"log/slog"
	"math"
)

// checkSafety rebuilds the alert list from the aggregated state and runs
// explosion detection.
func (s *Simulator) checkSafety() {
	st := &s.state
	sc := s.cfg.Safety

	if st.PowerPercent > sc.MaxPowerPercent {
		st.Alerts = append(st.Alerts, "WARNING: Power exceeds 110% nominal!")
	}
	if st.ReactivityDollars > sc.WarnDollars {
		st.Alerts = append(st.Alerts, "WARNING: Reactivity exceeds 0.5$!")
	}
	if st.ReactivityDollars > sc.PromptDollars {
		st.Alerts = append(st.Alerts, "CRITICAL: Prompt critical condition!")
	}
	if st.AvgFuelTemp > sc.FuelTempLimit {
		st.Alerts = append(st.Alerts, "WARNING: Fuel temperature exceeds limit!")
	}
	if st.AvgVoid > sc.VoidLimit {
		st.Alerts = append(st.Alerts, "WARNING: High void fraction - positive reactivity feedback!")
	}
	if !math.IsInf(st.Period, 0) && st.Period > 0 && st.Period < sc.ShortPeriod {
		st.Alerts = append(st.Alerts, fmt.Sprintf("WARNING: Short reactor period: %.1fs", st.Period))
	}

	s.detectExplosion()
}

// detectExplosion scores the steam-explosion preconditions (molten fuel
// contacting water, runaway steam generation, prompt supercriticality,
// extreme power) and latches the terminal state when their combined
// severity crosses the threshold. Strongly negative reactivity means the
// core is shutting down, not running away, so detection is skipped there.
// Once latched, it never runs again.
func (s *Simulator) detectExplosion() {
	st := &s.state
	ec := s.cfg.Explosion
	if st.ExplosionOccurred || st.ReactivityDollars <= ec.ShutdownDollars {
		return
	}

	var severity float64

	if st.AvgFuelTemp > ec.FuelMeltingPoint {
		severity += 1.0
		st.Alerts = append(st.Alerts, "CRITICAL: Fuel melting - core damage!")
	} else if st.AvgFuelTemp > ec.FuelMeltingPoint*ec.MeltWarningFrac {
		severity += 0.5
		st.Alerts = append(st.Alerts, "CRITICAL: Fuel temperature approaching melting point!")
	}

	if st.AvgVoid > ec.CriticalVoid && st.AvgCoolantTemp > ec.CriticalCoolant {
		voidExcess := (st.AvgVoid - ec.CriticalVoid) / 25.0
		tempExcess := (st.AvgCoolantTemp - ec.CriticalCoolant) / 300.0
		severity += math.Min(voidExcess, 1) * math.Min(tempExcess, 1)
		st.Alerts = append(st.Alerts, "CRITICAL: Massive steam generation - pressure buildup!")
	}

	if st.ReactivityDollars > ec.PromptDollars {
		severity += math.Min((st.ReactivityDollars-ec.PromptDollars)/2, 1)
		st.Alerts = append(st.Alerts, "CRITICAL: Prompt supercritical - uncontrolled power excursion!")
	}

	if st.PowerPercent > ec.ExtremePowerFactor*100 && st.ReactivityDollars > 0 {
		severity += math.Min((st.PowerPercent-ec.ExtremePowerFactor*100)/200, 1)
	}

	if severity >= ec.Threshold {
		st.ExplosionOccurred = true
		st.ExplosionTime = st.Time
		st.Alerts = append(st.Alerts, "*** STEAM EXPLOSION - CORE DESTRUCTION ***")
		slog.Error("steam explosion",
			"time", st.Time,
			"severity", severity,
			"fuel_temp", st.AvgFuelTemp,
			"void", st.AvgVoid,
			"dollars", st.ReactivityDollars)
	}
}
