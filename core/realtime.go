package core

// StepRealtime advances the simulation to match elapsed wall-clock time
// at the given speed multiplier. Fractional steps carry over in an
// accumulator so long-run pacing is exact; the number of steps per call
// is capped to bound latency after a stall, dropping the excess.
// Returns the number of steps executed.
func (s *Simulator) StepRealtime(elapsed, speed float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elapsed <= 0 || speed <= 0 {
		return 0
	}

	s.accum += elapsed * speed / s.state.DT
	steps := int(s.accum)
	s.accum -= float64(steps)

	if max := s.cfg.Sim.MaxRealtimeSteps; steps > max {
		steps = max
	}
	for i := 0; i < steps; i++ {
		s.stepLocked()
	}
	return steps
}
