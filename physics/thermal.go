package physics

import "math"

// ThermalState is the coolant-side state advanced per step. Fuel
// temperature lives in KineticsState because it is integrated inside the
// RK4 sub-stepping.
type ThermalState struct {
	CoolantTemp  float64 // [K]
	GraphiteTemp float64 // [K]
	Void         float64 // [%]
}

// UpdateThermal relaxes coolant and graphite temperatures toward their
// power-dependent targets and evolves the void fraction. Coolant responds
// in seconds; graphite has a large thermal mass and lags by about a
// minute, which is what turns a power rise into a delayed positive
// reactivity insertion. Void forms above the saturation temperature and
// collapses exponentially below it.
func (k Kernel) UpdateThermal(ts ThermalState, powerFrac, dt float64) ThermalState {
	pf := clamp(powerFrac, 0, k.maxPop)

	coolAlpha := math.Min(dt/k.coolTau, 1)
	ts.CoolantTemp += coolAlpha * (k.coolBase + k.coolSpan*pf - ts.CoolantTemp)

	graphAlpha := math.Min(dt/k.graphTau, 1)
	ts.GraphiteTemp += graphAlpha * (k.graphBase + k.graphSpan*pf - ts.GraphiteTemp)

	ts.CoolantTemp = clamp(ts.CoolantTemp, k.coolMin, k.coolMax)
	ts.GraphiteTemp = clamp(ts.GraphiteTemp, k.graphMin, k.graphMax)

	voidAlpha := math.Min(dt/k.voidTau, 1)
	if ts.CoolantTemp > k.satTemp {
		target := math.Min(k.voidPerK*(ts.CoolantTemp-k.satTemp), k.maxVoid)
		ts.Void += voidAlpha * (target - ts.Void)
	} else {
		ts.Void *= 1 - voidAlpha
	}
	ts.Void = clamp(ts.Void, 0, k.maxVoid)

	return ts
}

// ClampFuelTemp applies the physical fuel temperature range after the
// kinetics solver has run.
func (k Kernel) ClampFuelTemp(t float64) float64 {
	return clamp(t, k.fuelMin, k.fuelMax)
}

// FuelTempTarget returns the equilibrium fuel temperature at a power
// fraction, the inverse of which defines the reference flux shape.
func (k Kernel) FuelTempTarget(powerFrac float64) float64 {
	return k.fuelBase + k.fuelSpan*clamp(powerFrac, 0, k.maxPop)
}

// PowerFracForFuelTemp inverts FuelTempTarget.
func (k Kernel) PowerFracForFuelTemp(fuelTemp float64) float64 {
	return clamp((fuelTemp-k.fuelBase)/k.fuelSpan, 0, k.maxPop)
}
