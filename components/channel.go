// Package components defines ECS components for fuel-channel cells.
package components

// Groups is the number of delayed-neutron precursor groups carried per cell.
const Groups = 6

// MaxNeighbors is the von Neumann connectivity limit per cell.
const MaxNeighbors = 4

// Cell is the immutable identity of a fuel channel: lattice index, grid
// coordinates, physical position, and the index of a co-located control
// rod (-1 when the channel has no rod linkage).
type Cell struct {
	Index    int32
	GridX    int16
	GridY    int16
	X        float64 // [cm]
	Y        float64
	RodIndex int32
}

// Neighbors lists the lattice-adjacent cell indices used by the
// diffusion coupling.
type Neighbors struct {
	Idx   [MaxNeighbors]int32
	Count int8
}

// Neutronics holds the per-cell neutron state. Flux is relative
// (1.0 = nominal); SmoothedRho is the cell's applied local reactivity.
type Neutronics struct {
	Flux          float64
	C             [Groups]float64
	SmoothedRho   float64
	LocalRodWorth float64 // Distance-weighted rod worth seen by this cell
	LocalPower    float64 // Relative local power
}

// Thermal holds the per-cell temperatures and void fraction.
type Thermal struct {
	FuelTemp     float64 // [K]
	CoolantTemp  float64 // [K]
	GraphiteTemp float64 // [K]
	Void         float64 // [%]
}

// Hydraulics holds the per-channel coolant loop parameters.
type Hydraulics struct {
	Pressure   float64 // [MPa]
	FlowRate   float64 // [kg/s]
	InletTemp  float64 // [K]
	OutletTemp float64 // [K]
}

// Poison holds the per-cell I-135/Xe-135 concentrations.
type Poison struct {
	Iodine float64 // [atoms/cm³]
	Xenon  float64 // [atoms/cm³]
}

// Fuel holds the slowly varying fuel state.
type Fuel struct {
	Burnup     float64 // [MWd/kgU]
	Enrichment float64 // [% U-235]
}
