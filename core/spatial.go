package core

import (
	"gonum.org/v1/gonum/stat"

	"github.com/atomgrad/coretwin/physics"
)

// refreshLocalWorth recomputes the per-cell local rod worth from current
// rod positions. Each cell sees the Gaussian-weighted mean inserted worth
// of its nearby rods; the deviation of that value from its core mean,
// amplified by the configured gain, tilts the uniform global worth. The
// deviations average to zero exactly, so the core mean always equals the
// global total and the spatial model stays reactivity-neutral against
// the scalar one. Cells with no rod in range, or an all-withdrawn core,
// degrade to the uniform global worth.
func (s *Simulator) refreshLocalWorth() {
	total := s.totalRodWorth()
	gain := s.cfg.Spatial.RodWorthGain

	covered := s.covered[:0]
	for i := range s.localWorth {
		var wsum, acc float64
		for _, inf := range s.influence[i] {
			wsum += inf.weight
			acc += inf.weight * s.rods[inf.rod].InsertedWorth()
		}
		if wsum > 0 {
			s.rawWorth[i] = acc / wsum
			covered = append(covered, s.rawWorth[i])
		} else {
			s.rawWorth[i] = -1
		}
	}

	meanRaw := 0.0
	if len(covered) > 0 {
		meanRaw = stat.Mean(covered, nil)
	}
	for i := range s.localWorth {
		if s.rawWorth[i] < 0 {
			s.localWorth[i] = total
		} else {
			s.localWorth[i] = total + gain*(s.rawWorth[i]-meanRaw)
		}
	}
}

// stepChannels advances every fuel channel by dt: per-cell reactivity
// smoothing, 6-group kinetics, thermal-hydraulics, and poison chain, then
// a neighbor diffusion pass over the pre-step flux snapshot so the result
// is independent of iteration order.
func (s *Simulator) stepChannels(dt float64) {
	minPop := s.cfg.Kinetics.MinPopulation
	maxPop := s.cfg.Kinetics.MaxPopulation

	query := s.channelFilter.Query()
	for query.Next() {
		cell, _, neut, th, hyd, pois, fuel := query.Get()
		i := int(cell.Index)
		lw := s.localWorth[i]

		target := s.kernel.TargetReactivity(physics.FeedbackInput{
			FuelTemp:     th.FuelTemp,
			GraphiteTemp: th.GraphiteTemp,
			Void:         th.Void,
			Xenon:        pois.Xenon,
			RodWorth:     lw,
		})
		neut.SmoothedRho = s.kernel.SmoothReactivity(neut.SmoothedRho, target, dt, s.state.ScramActive)

		ks := physics.KineticsState{N: neut.Flux, C: neut.C, FuelTemp: th.FuelTemp}
		ks = s.kernel.SolveKinetics(ks, neut.SmoothedRho, dt)
		neut.Flux = ks.N
		neut.C = ks.C
		th.FuelTemp = s.kernel.ClampFuelTemp(ks.FuelTemp)

		ts := s.kernel.UpdateThermal(physics.ThermalState{
			CoolantTemp:  th.CoolantTemp,
			GraphiteTemp: th.GraphiteTemp,
			Void:         th.Void,
		}, neut.Flux, dt)
		th.CoolantTemp = ts.CoolantTemp
		th.GraphiteTemp = ts.GraphiteTemp
		th.Void = ts.Void

		pois.Iodine, pois.Xenon = s.kernel.UpdateXenon(pois.Iodine, pois.Xenon, neut.Flux, dt)

		// Steam displaces coolant; outlet tracks the channel temperature.
		hyd.OutletTemp = th.CoolantTemp
		hyd.FlowRate = s.cfg.Startup.FlowRate * (1 - th.Void/200)

		fuel.Burnup += neut.Flux * s.burnupRate * dt

		neut.LocalRodWorth = lw
		s.fluxSnap[i] = neut.Flux
	}

	d := s.cfg.Spatial.DiffusionCoupling
	query = s.channelFilter.Query()
	for query.Next() {
		cell, nb, neut, _, _, _, _ := query.Get()
		f := s.fluxSnap[cell.Index]
		var acc float64
		for j := int8(0); j < nb.Count; j++ {
			acc += s.fluxSnap[nb.Idx[j]] - f
		}
		neut.Flux = clamp(f+d*dt*acc, minPop, maxPop)
		neut.LocalPower = neut.Flux
	}
}

// aggregate folds the per-channel fields into the scalar state. Xenon and
// iodine are flux-weighted since poison in high-power channels dominates
// the core reactivity balance.
func (s *Simulator) aggregate() {
	a := &s.agg
	a.flux = a.flux[:0]

	query := s.channelFilter.Query()
	idx := 0
	for query.Next() {
		_, _, neut, th, _, pois, _ := query.Get()
		a.flux = append(a.flux, neut.Flux)
		a.rho[idx] = neut.SmoothedRho
		a.fuelT[idx] = th.FuelTemp
		a.coolT[idx] = th.CoolantTemp
		a.graphT[idx] = th.GraphiteTemp
		a.void[idx] = th.Void
		a.iodine[idx] = pois.Iodine
		a.xenon[idx] = pois.Xenon
		for g := 0; g < physics.Groups; g++ {
			a.prec[g][idx] = neut.C[g]
		}
		idx++
	}

	st := &s.state
	st.NeutronPopulation = stat.Mean(a.flux, nil)
	st.Reactivity = stat.Mean(a.rho[:idx], nil)
	st.ReactivityDollars = s.kernel.Dollars(st.Reactivity)
	st.KEff = s.kernel.KEff(st.Reactivity)
	st.AvgFuelTemp = stat.Mean(a.fuelT[:idx], nil)
	st.AvgCoolantTemp = stat.Mean(a.coolT[:idx], nil)
	st.AvgGraphiteTemp = stat.Mean(a.graphT[:idx], nil)
	st.AvgVoid = stat.Mean(a.void[:idx], nil)

	if st.NeutronPopulation > 0 {
		st.Iodine135 = stat.Mean(a.iodine[:idx], a.flux)
		st.Xenon135 = stat.Mean(a.xenon[:idx], a.flux)
	} else {
		st.Iodine135 = stat.Mean(a.iodine[:idx], nil)
		st.Xenon135 = stat.Mean(a.xenon[:idx], nil)
	}
	st.XenonReactivity = s.kernel.XenonReactivity(st.Xenon135)

	var sum float64
	for g := 0; g < physics.Groups; g++ {
		st.Precursors[g] = stat.Mean(a.prec[g][:idx], nil)
		sum += st.Precursors[g]
	}
	st.PrecursorSum = sum
}
