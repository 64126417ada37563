package physics

import "math"

// UpdateXenon advances the I-135/Xe-135 poison chain by one forward-Euler
// step. The chain's time constants are hours, slow against the simulation
// step, so a single explicit step per tick is adequate. Flux is derived
// from the relative neutron population scaled to the nominal flux.
func (k Kernel) UpdateXenon(iodine, xenon, n, dt float64) (float64, float64) {
	flux := n * k.nomFlux
	fissionRate := k.sigmaF * flux

	dI := k.gammaI*fissionRate - k.lambdaI*iodine
	dXe := k.gammaXe*fissionRate + k.lambdaI*iodine -
		k.lambdaXe*xenon - k.sigmaXe*flux*xenon*barnScale

	iodine = clamp(iodine+dI*dt, 0, k.maxConc)
	xenon = clamp(xenon+dXe*dt, 0, k.maxConc)
	return iodine, xenon
}

// EquilibriumXenon returns the steady-state iodine and xenon
// concentrations at a power fraction, from setting both derivatives to
// zero.
func (k Kernel) EquilibriumXenon(powerFrac float64) (float64, float64) {
	flux := math.Max(powerFrac, 0) * k.nomFlux
	fissionRate := k.sigmaF * flux

	iodine := 0.0
	if k.lambdaI > 0 {
		iodine = k.gammaI * fissionRate / k.lambdaI
	}
	denom := k.lambdaXe + k.sigmaXe*flux*barnScale
	xenon := 0.0
	if denom > 0 {
		xenon = (k.gammaXe*fissionRate + k.lambdaI*iodine) / denom
	}

	return math.Min(iodine, k.maxConc), math.Min(xenon, k.maxConc)
}
