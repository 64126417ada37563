package physics

import "math"

// KineticsState is the coupled state advanced by the point-kinetics solver:
// relative neutron population, the 6 precursor group concentrations, and
// the fuel temperature that feeds Doppler reactivity back into each stage.
type KineticsState struct {
	N        float64
	C        [Groups]float64
	FuelTemp float64
}

// PrecursorSum returns the total precursor concentration.
func (s KineticsState) PrecursorSum() float64 {
	var total float64
	for _, c := range s.C {
		total += c
	}
	return total
}

// EquilibriumPrecursors returns the steady-state precursor concentrations
// for a given population: Cᵢ = βᵢ·n / (λᵢ·Λ).
func (k Kernel) EquilibriumPrecursors(n float64) [Groups]float64 {
	var c [Groups]float64
	for i := 0; i < Groups; i++ {
		c[i] = k.beta[i] * n / (k.lambda[i] * k.lifetime)
	}
	return c
}

// kineticsDeriv evaluates the 6-group point-kinetics derivatives at one
// RK4 stage. Doppler feedback is re-derived from the evolving fuel
// temperature: suppressed entirely while strongly subcritical (the
// reactor shuts down regardless of fuel temperature), capped on the
// positive side when the fuel is cold so a cold core cannot re-stabilize
// instead of decaying.
func (k Kernel) kineticsDeriv(s KineticsState, rho float64) (dn float64, dc [Groups]float64, dT float64) {
	var feedback float64
	if rho >= k.stiffRho {
		feedback = k.alphaFuel * (s.FuelTemp - k.fuelRefTemp)
		if s.FuelTemp < k.fuelRefTemp {
			feedback = math.Min(feedback, k.maxColdRho)
		}
	}
	effRho := clamp(rho+feedback, k.solverMin, k.solverMax)

	// dn/dt = (ρ − β)/Λ · n + Σ λᵢCᵢ
	dn = (effRho - k.betaEff) / k.lifetime * s.N
	for i := 0; i < Groups; i++ {
		dn += k.lambda[i] * s.C[i]
		dc[i] = k.beta[i]/k.lifetime*s.N - k.lambda[i]*s.C[i]
	}

	// Fuel temperature tracks power on a short relaxation constant.
	pf := clamp(s.N, 0, k.maxPop)
	dT = (k.fuelBase + k.fuelSpan*pf - s.FuelTemp) / k.fuelTau

	return dn, dc, dT
}

// rk4Step advances the kinetics state by one sub-step.
func (k Kernel) rk4Step(s KineticsState, rho, h float64) KineticsState {
	stage := func(base KineticsState, dn float64, dc [Groups]float64, dT, scale float64) KineticsState {
		next := KineticsState{
			N:        base.N + scale*dn,
			FuelTemp: base.FuelTemp + scale*dT,
		}
		for i := 0; i < Groups; i++ {
			next.C[i] = base.C[i] + scale*dc[i]
		}
		return next
	}

	dn1, dc1, dT1 := k.kineticsDeriv(s, rho)
	dn2, dc2, dT2 := k.kineticsDeriv(stage(s, dn1, dc1, dT1, 0.5*h), rho)
	dn3, dc3, dT3 := k.kineticsDeriv(stage(s, dn2, dc2, dT2, 0.5*h), rho)
	dn4, dc4, dT4 := k.kineticsDeriv(stage(s, dn3, dc3, dT3, h), rho)

	out := KineticsState{
		N:        s.N + h/6*(dn1+2*dn2+2*dn3+dn4),
		FuelTemp: s.FuelTemp + h/6*(dT1+2*dT2+2*dT3+dT4),
	}
	for i := 0; i < Groups; i++ {
		out.C[i] = s.C[i] + h/6*(dc1[i]+2*dc2[i]+2*dc3[i]+dc4[i])
	}

	out.N = clamp(out.N, k.minPop, k.maxPop)
	for i := 0; i < Groups; i++ {
		out.C[i] = math.Max(out.C[i], 0)
	}
	return out
}

// SolveKinetics advances the 6-group point-kinetics equations by dt using
// fourth-order Runge-Kutta. Strongly negative reactivity makes the system
// stiff, so the step is subdivided into sub-steps no larger than the
// configured ceiling (10 ms by default). The returned fuel temperature is
// not range-clamped here; the thermal model owns that.
func (k Kernel) SolveKinetics(s KineticsState, rho, dt float64) KineticsState {
	substeps := 1
	if rho < k.stiffRho {
		substeps = int(math.Ceil(dt / k.maxSub))
		if substeps < 1 {
			substeps = 1
		}
	}
	h := dt / float64(substeps)

	for i := 0; i < substeps; i++ {
		s = k.rk4Step(s, rho, h)
	}
	return s
}

// Period derives the reactor period from the realized rate of change over
// one step. Near-zero or stationary populations, and magnitudes beyond
// 1e6 s, report as +Inf.
func (k Kernel) Period(nOld, nNew, dt float64) float64 {
	dndt := (nNew - nOld) / dt
	if nOld <= 1e-10 || math.Abs(dndt) <= 1e-10 {
		return math.Inf(1)
	}
	period := nOld / dndt
	if math.Abs(period) > 1e6 {
		return math.Inf(1)
	}
	return period
}
