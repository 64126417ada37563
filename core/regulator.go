package core

import "math"

// updateRegulator runs one PID pass of the automatic power regulator,
// moving the Automatic (AR/LAR) rods toward the target power. Inside the
// deadband the integral term bleeds off instead of accumulating; large
// errors get a bounded output boost so recovery from deep power drops is
// not painfully slow.
func (s *Simulator) updateRegulator(dt float64) {
	reg := &s.state.Regulator
	if !reg.Enabled || s.state.ScramActive || dt <= 0 {
		return
	}
	rc := s.cfg.Regulator

	err := reg.TargetPercent - s.state.PowerPercent
	large := math.Abs(err) > rc.LargeError

	if math.Abs(err) <= reg.Deadband && !large {
		reg.IntegralError *= rc.IntegralDecay
		reg.LastError = err
		return
	}

	reg.IntegralError = clamp(reg.IntegralError+err*dt, -rc.IntegralClamp, rc.IntegralClamp)
	deriv := (err - reg.LastError) / dt

	out := reg.Kp*err + reg.Ki*reg.IntegralError + reg.Kd*deriv
	if large {
		out *= math.Min(1+math.Abs(err)/100, rc.LargeBoost)
	}

	// out is a rod speed; positive error withdraws the automatic bank.
	delta := clamp(out, -reg.MaxRodSpeed, reg.MaxRodSpeed) * dt
	if delta != 0 {
		for i := range s.rods {
			if s.rods[i].Category == CategoryAutomatic {
				s.rods[i].Position = clamp(s.rods[i].Position+delta, 0, 1)
			}
		}
		s.rodsDirty = true
	}
	reg.LastError = err
}

// SetRegulatorEnabled switches the automatic regulator. Enabling starts
// from a clean controller state.
func (s *Simulator) SetRegulatorEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled && !s.state.Regulator.Enabled {
		s.state.Regulator.IntegralError = 0
		s.state.Regulator.LastError = 0
	}
	s.state.Regulator.Enabled = enabled
}

// SetTargetPower sets the regulator's power setpoint in percent, clamped
// to the allowed band. A large setpoint jump pre-seeds the integral term
// so the controller leans into the transition instead of rediscovering
// the error over many ticks.
func (s *Simulator) SetTargetPower(percent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc := s.cfg.Regulator
	reg := &s.state.Regulator

	old := reg.TargetPercent
	reg.TargetPercent = clamp(percent, rc.TargetPowerMin, rc.TargetPowerMax)

	if math.Abs(reg.TargetPercent-old) > rc.PreseedDelta {
		seed := rc.PreseedFactor * (reg.TargetPercent - s.state.PowerPercent)
		reg.IntegralError = clamp(seed, -rc.IntegralClamp, rc.IntegralClamp)
	}
}

// GetRegulator returns a copy of the regulator state.
func (s *Simulator) GetRegulator() AutoRegulatorSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Regulator
}
