package physics

// FeedbackInput carries the state a reactivity evaluation depends on.
// RodWorth is the total inserted rod worth (positive number, applied as
// negative reactivity).
type FeedbackInput struct {
	FuelTemp     float64
	GraphiteTemp float64
	Void         float64 // [%]
	Xenon        float64 // [atoms/cm³]
	RodWorth     float64 // Δk/k
}

// Doppler returns the fuel-temperature reactivity term: negative when hot,
// capped on the positive side when cold.
func (k Kernel) Doppler(fuelTemp float64) float64 {
	rho := k.alphaFuel * (fuelTemp - k.fuelRefTemp)
	if fuelTemp < k.fuelRefTemp && rho > k.maxColdRho {
		rho = k.maxColdRho
	}
	return rho
}

// GraphiteReactivity returns the positive moderator term. Below the
// reference temperature it is negative (cold graphite moderates less).
func (k Kernel) GraphiteReactivity(graphiteTemp float64) float64 {
	return k.alphaGraph * (graphiteTemp - k.graphRefTemp)
}

// VoidReactivity returns the void term, the dominant destabilizing
// feedback of this reactor class.
func (k Kernel) VoidReactivity(voidPct float64) float64 {
	return k.alphaVoid * voidPct
}

// XenonReactivity returns the (negative) poison term.
func (k Kernel) XenonReactivity(xenon float64) float64 {
	return k.xenonCoeff * xenon
}

// TargetReactivity sums all feedback contributions into the instantaneous
// reactivity before smoothing.
func (k Kernel) TargetReactivity(in FeedbackInput) float64 {
	return k.baseExcess +
		k.Doppler(in.FuelTemp) +
		k.GraphiteReactivity(in.GraphiteTemp) +
		k.VoidReactivity(in.Void) +
		k.XenonReactivity(in.Xenon) -
		in.RodWorth
}

// SmoothReactivity relaxes the applied reactivity toward the target value,
// modeling the finite physical response time. SCRAM selects a much faster
// time constant so shutdown bites quickly without being instantaneous.
// The result is clamped to the configured physical band.
func (k Kernel) SmoothReactivity(current, target, dt float64, scramActive bool) float64 {
	tau := k.smoothTau
	if scramActive {
		tau = k.scramTau
	}
	alpha := dt / tau
	if alpha > 1 {
		alpha = 1
	}
	return clamp(current+alpha*(target-current), k.clampMin, k.clampMax)
}

// ClampReactivity applies the configured reactivity band directly, used
// when a reactivity value is set outside the smoothing path (SCRAM's
// immediate insertion).
func (k Kernel) ClampReactivity(rho float64) float64 {
	return clamp(rho, k.clampMin, k.clampMax)
}

// KEff converts reactivity to the effective multiplication factor with
// branch protection near |ρ| ≈ 1: rather than dividing by ~0, the value
// pins to a large or small sentinel.
func (k Kernel) KEff(rho float64) float64 {
	if rho > -0.99 && rho < 0.99 {
		return 1 / (1 - rho)
	}
	if rho > 0 {
		return 100.0
	}
	return 0.01
}

// Dollars converts Δk/k reactivity to dollars.
func (k Kernel) Dollars(rho float64) float64 {
	return rho / k.betaEff
}
