// Package geometry builds the reactor core layout: fuel-channel cells,
// control-rod sites, and the 4-connectivity neighbor graph over fuel cells.
//
// Layouts come from an OPB-82 scheme document mapping channel-type labels
// (TK for fuel channels; AZ, RR, AR, LAR, USP for rod subtypes) to integer
// grid coordinates. When no usable document is available the package
// degrades to a procedurally generated circular arrangement with the same
// cardinalities.
package geometry

import (
	"math"
)

// FuelLabel is the layout label for fuel-channel cells.
const FuelLabel = "TK"

// MaxNeighbors is the von Neumann connectivity limit per cell.
const MaxNeighbors = 4

// Cell is one fuel-channel site in the core lattice.
type Cell struct {
	Index int
	GridX int
	GridY int
	X     float64 // Physical position [cm], core center at origin
	Y     float64
}

// RodSite is one control-rod site in the core lattice.
type RodSite struct {
	Index int
	Label string // Layout subtype (AZ, RR, AR, LAR, USP)
	GridX int
	GridY int
	X     float64
	Y     float64
}

// Core is the assembled layout consumed by the simulation.
type Core struct {
	Cells     []Cell
	Rods      []RodSite
	Neighbors [][]int32 // Per cell, indices of its ≤4 lattice neighbors
	Pitch     float64   // Lattice spacing [cm]
}

// build converts grid coordinates to physical positions and wires the
// neighbor graph. Grid coordinates are re-centered on their centroid so
// the physical origin sits at the core center.
func build(cells []Cell, rods []RodSite, pitch float64) *Core {
	var cx, cy float64
	for _, c := range cells {
		cx += float64(c.GridX)
		cy += float64(c.GridY)
	}
	if len(cells) > 0 {
		cx /= float64(len(cells))
		cy /= float64(len(cells))
	}

	for i := range cells {
		cells[i].Index = i
		cells[i].X = (float64(cells[i].GridX) - cx) * pitch
		cells[i].Y = (float64(cells[i].GridY) - cy) * pitch
	}
	for i := range rods {
		rods[i].Index = i
		rods[i].X = (float64(rods[i].GridX) - cx) * pitch
		rods[i].Y = (float64(rods[i].GridY) - cy) * pitch
	}

	core := &Core{Cells: cells, Rods: rods, Pitch: pitch}
	core.Neighbors = buildNeighbors(cells)
	return core
}

// buildNeighbors links each cell to its orthogonally adjacent cells.
func buildNeighbors(cells []Cell) [][]int32 {
	type key struct{ x, y int }
	byPos := make(map[key]int32, len(cells))
	for i, c := range cells {
		byPos[key{c.GridX, c.GridY}] = int32(i)
	}

	offsets := [MaxNeighbors]key{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	neighbors := make([][]int32, len(cells))
	for i, c := range cells {
		adj := make([]int32, 0, MaxNeighbors)
		for _, o := range offsets {
			if j, ok := byPos[key{c.GridX + o.x, c.GridY + o.y}]; ok {
				adj = append(adj, j)
			}
		}
		neighbors[i] = adj
	}
	return neighbors
}

// circleRadius returns the lattice radius (in cells) that encloses
// approximately n lattice points.
func circleRadius(n int) float64 {
	return math.Sqrt(float64(n) / math.Pi)
}
