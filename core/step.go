package core

import "math"

// Step advances the simulation by one time step.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepLocked()
}

// StepN advances the simulation by n time steps.
func (s *Simulator) StepN(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.stepLocked()
	}
}

// stepLocked runs one full tick. Ordering matters: the regulator moves
// rods before rod worth is sampled, so its action is visible to the same
// tick's physics, and safety checks run on the fully aggregated state.
func (s *Simulator) stepLocked() {
	dt := s.state.DT
	s.state.Alerts = s.state.Alerts[:0]

	if s.state.ScramActive {
		s.state.ScramTime += dt
	}

	s.updateRegulator(dt)
	if s.rodsDirty {
		s.refreshLocalWorth()
		s.rodsDirty = false
	}

	nOld := s.state.NeutronPopulation
	s.stepChannels(dt)
	s.aggregate()

	s.state.Period = s.kernel.Period(nOld, s.state.NeutronPopulation, dt)
	s.state.PowerMW = math.Max(s.cfg.Reactor.NominalPowerMW*s.state.NeutronPopulation, 0)
	s.state.PowerPercent = math.Max(s.state.NeutronPopulation*100, 0)

	s.fillAxialFlux()
	s.checkSafety()

	s.state.Time += dt
}

// fillAxialFlux rebuilds the axial profile: a parabolic shape scaled by
// the neutron population.
func (s *Simulator) fillAxialFlux() {
	n := s.state.NeutronPopulation
	half := float64(len(s.state.AxialFlux)) / 2
	for i := range s.state.AxialFlux {
		z := (float64(i) - half) / half
		s.state.AxialFlux[i] = n * math.Max(1-z*z, 0)
	}
}
