package core

import (
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/atomgrad/coretwin/physics"
)

// MoveRod sets one rod's position, clamped to [0, 1]. Unknown ids are
// ignored.
func (s *Simulator) MoveRod(id int, position float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= len(s.rods) {
		return
	}
	s.rods[id].Position = clamp(position, 0, 1)
	s.rodsDirty = true
}

// MoveRodGroup sets every rod of a category to the given position.
func (s *Simulator) MoveRodGroup(category RodCategory, position float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	position = clamp(position, 0, 1)
	moved := false
	for i := range s.rods {
		if s.rods[i].Category == category {
			s.rods[i].Position = position
			moved = true
		}
	}
	if moved {
		s.rodsDirty = true
	}
}

// MoveRodSubtype sets every rod with the given layout label (AZ, RR, AR,
// LAR, USP) to the given position. Unknown labels are a no-op.
func (s *Simulator) MoveRodSubtype(label string, position float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	position = clamp(position, 0, 1)
	moved := false
	for i := range s.rods {
		if strings.EqualFold(s.rods[i].Label, label) {
			s.rods[i].Position = position
			moved = true
		}
	}
	if moved {
		s.rodsDirty = true
	}
}

// Scram drops every control rod to fully inserted and applies the
// resulting negative reactivity immediately, bypassing the smoothing lag
// that would otherwise let power spike for a tick. One-way and
// idempotent; ResetScram re-arms it.
func (s *Simulator) Scram() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ScramActive {
		return
	}

	for i := range s.rods {
		s.rods[i].Position = 0
	}
	s.refreshLocalWorth()
	s.rodsDirty = false

	s.state.ScramActive = true
	s.state.ScramTime = 0
	s.state.Regulator.Enabled = false
	s.state.Alerts = append(s.state.Alerts, "SCRAM INITIATED!")

	rhos := s.covered[:0]
	query := s.channelFilter.Query()
	for query.Next() {
		cell, _, neut, th, _, pois, _ := query.Get()
		target := s.kernel.TargetReactivity(physics.FeedbackInput{
			FuelTemp:     th.FuelTemp,
			GraphiteTemp: th.GraphiteTemp,
			Void:         th.Void,
			Xenon:        pois.Xenon,
			RodWorth:     s.localWorth[cell.Index],
		})
		neut.SmoothedRho = s.kernel.ClampReactivity(target)
		rhos = append(rhos, neut.SmoothedRho)
	}
	s.state.Reactivity = stat.Mean(rhos, nil)
	s.state.ReactivityDollars = s.kernel.Dollars(s.state.Reactivity)
	s.state.KEff = s.kernel.KEff(s.state.Reactivity)

	slog.Warn("scram initiated",
		"time", s.state.Time,
		"reactivity", s.state.Reactivity,
		"dollars", s.state.ReactivityDollars)
}

// ResetScram clears the SCRAM flag and timer. Rod positions are left
// where SCRAM put them.
func (s *Simulator) ResetScram() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ScramActive = false
	s.state.ScramTime = 0
}

// GetRods returns a copy of the control rod bank.
func (s *Simulator) GetRods() []ControlRod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ControlRod(nil), s.rods...)
}
