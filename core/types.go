// Package core implements the simulation orchestrator: it owns all
// reactor state, sequences the physics every step, and exposes the
// control surface. All public methods are safe for concurrent use; every
// read returns a cloned snapshot.
package core

import (
	"strings"

	"github.com/atomgrad/coretwin/physics"
)

// RodCategory classifies control rods by function.
type RodCategory uint8

const (
	CategoryManual RodCategory = iota
	CategoryAutomatic
	CategoryShortened
	CategoryEmergency
)

// String returns the lower-case category name.
func (c RodCategory) String() string {
	switch c {
	case CategoryManual:
		return "manual"
	case CategoryAutomatic:
		return "automatic"
	case CategoryShortened:
		return "shortened"
	case CategoryEmergency:
		return "emergency"
	}
	return "unknown"
}

// CategoryFromString parses a category name, case-insensitively.
func CategoryFromString(s string) (RodCategory, bool) {
	switch strings.ToLower(s) {
	case "manual":
		return CategoryManual, true
	case "automatic":
		return CategoryAutomatic, true
	case "shortened":
		return CategoryShortened, true
	case "emergency":
		return CategoryEmergency, true
	}
	return 0, false
}

// ControlRod is the state of one control rod. Position 0 is fully
// inserted, 1 fully withdrawn. Label preserves the layout subtype
// (AZ, RR, AR, LAR, USP) for fine-grained group control; AR and LAR
// both map to CategoryAutomatic.
type ControlRod struct {
	ID       int
	Label    string
	GridX    int
	GridY    int
	X        float64 // [cm]
	Y        float64
	Position float64
	Category RodCategory
	Worth    float64 // Δk/k when fully inserted
}

// InsertedWorth returns the reactivity currently held down by this rod.
func (r ControlRod) InsertedWorth() float64 {
	return r.Worth * (1 - r.Position)
}

// AutoRegulatorSettings is the automatic power regulator (AR/LAR) state.
type AutoRegulatorSettings struct {
	Enabled       bool
	TargetPercent float64
	Kp            float64
	Ki            float64
	Kd            float64
	IntegralError float64
	LastError     float64
	MaxRodSpeed   float64 // Position units per second
	Deadband      float64 // [% power]
}

// FuelChannel is a cloned snapshot of one fuel-channel cell.
type FuelChannel struct {
	ID    int
	GridX int
	GridY int
	X     float64 // [cm]
	Y     float64

	// Thermal state
	FuelTemp     float64 // [K]
	CoolantTemp  float64 // [K]
	GraphiteTemp float64 // [K]
	Void         float64 // [%]

	// Thermal-hydraulic parameters
	Pressure   float64 // [MPa]
	FlowRate   float64 // [kg/s]
	InletTemp  float64 // [K]
	OutletTemp float64 // [K]

	// Neutronics
	NeutronFlux  float64 // Relative, 1.0 = nominal
	Precursors   [physics.Groups]float64
	PowerDensity float64 // [W/cm³]
	LocalPower   float64 // [MW]

	// Poisoning
	Iodine float64 // [atoms/cm³]
	Xenon  float64 // [atoms/cm³]

	// Fuel state
	Burnup     float64 // [MWd/kgU]
	Enrichment float64 // [% U-235]

	// Layout
	RodIndex        int // Co-located rod, -1 when none
	Neighbors       []int32
	LocalReactivity float64 // Δk/k
}

// ReactorState is the scalar snapshot of the reactor. Every field here is
// derived by aggregating the per-channel spatial model; the scalar model
// never runs independently.
type ReactorState struct {
	// Time
	Time float64 // [s]
	DT   float64 // [s]

	// Power and neutronics
	PowerMW           float64
	PowerPercent      float64
	NeutronPopulation float64 // Relative, 1.0 = nominal
	Precursors        [physics.Groups]float64
	PrecursorSum      float64
	KEff              float64
	Reactivity        float64 // Δk/k
	ReactivityDollars float64
	Period            float64 // [s], ±Inf when stationary

	// Xenon poisoning
	Iodine135       float64 // [atoms/cm³]
	Xenon135        float64 // [atoms/cm³]
	XenonReactivity float64 // Δk/k

	// Temperatures
	AvgFuelTemp     float64 // [K]
	AvgCoolantTemp  float64 // [K]
	AvgGraphiteTemp float64 // [K]
	AvgVoid         float64 // [%]

	// Control
	ScramActive bool
	ScramTime   float64 // [s] since SCRAM
	Regulator   AutoRegulatorSettings

	// Axial flux distribution
	AxialFlux []float64

	// Alerts, rebuilt from scratch every step
	Alerts []string

	// Terminal accident state; once set it never reverts
	ExplosionOccurred bool
	ExplosionTime     float64 // [s]
}

// Clone returns a deep copy safe to hand to callers.
func (s ReactorState) Clone() ReactorState {
	out := s
	out.AxialFlux = append([]float64(nil), s.AxialFlux...)
	out.Alerts = append([]string(nil), s.Alerts...)
	return out
}
