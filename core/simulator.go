package core

import (
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/atomgrad/coretwin/components"
	"github.com/atomgrad/coretwin/config"
	"github.com/atomgrad/coretwin/geometry"
	"github.com/atomgrad/coretwin/physics"
)

// fuelMassKgU is the uranium load of one fuel channel, used for burnup
// accumulation.
const fuelMassKgU = 114.7

// Simulator owns the reactor: the per-channel ECS world, the control
// rods, and the aggregated scalar state.
type Simulator struct {
	mu sync.Mutex

	cfg    *config.Config
	kernel physics.Kernel
	layout *geometry.Core

	world *ecs.World

	channelMapper *ecs.Map7[
		components.Cell,
		components.Neighbors,
		components.Neutronics,
		components.Thermal,
		components.Hydraulics,
		components.Poison,
		components.Fuel,
	]
	channelFilter *ecs.Filter7[
		components.Cell,
		components.Neighbors,
		components.Neutronics,
		components.Thermal,
		components.Hydraulics,
		components.Poison,
		components.Fuel,
	]
	entities []ecs.Entity

	rods         []ControlRod
	startupWorth float64 // Total inserted worth at reference positions

	state ReactorState
	accum float64 // Fractional real-time steps carried between calls

	// Rod influence is static geometry; localWorth is refreshed only
	// when a rod position changes.
	influence  [][]rodInfluence
	localWorth []float64
	rawWorth   []float64
	covered    []float64
	rodsDirty  bool

	// Pre-diffusion flux snapshot, indexed by Cell.Index.
	fluxSnap []float64

	// Per-channel burnup gain per second at unit flux [MWd/kgU/s].
	burnupRate float64
	// Nominal per-channel power density at unit flux [W/cm³].
	densityScale float64

	agg aggScratch
}

// rodInfluence is one nearby rod and its Gaussian distance weight.
type rodInfluence struct {
	rod    int32
	weight float64
}

// aggScratch holds the per-step aggregation slices, reused across steps.
type aggScratch struct {
	flux   []float64
	rho    []float64
	fuelT  []float64
	coolT  []float64
	graphT []float64
	void   []float64
	iodine []float64
	xenon  []float64
	prec   [physics.Groups][]float64
}

// New builds a simulator over the given core layout. The kernel's base
// excess reactivity is calibrated against the layout's actual rod worth
// at startup positions, so the reference state is critical regardless of
// which layout variant loaded.
func New(cfg *config.Config, layout *geometry.Core) *Simulator {
	world := ecs.NewWorld()

	s := &Simulator{
		cfg:    cfg,
		layout: layout,
		world:  world,
		channelMapper: ecs.NewMap7[
			components.Cell,
			components.Neighbors,
			components.Neutronics,
			components.Thermal,
			components.Hydraulics,
			components.Poison,
			components.Fuel,
		](world),
		channelFilter: ecs.NewFilter7[
			components.Cell,
			components.Neighbors,
			components.Neutronics,
			components.Thermal,
			components.Hydraulics,
			components.Poison,
			components.Fuel,
		](world),
	}

	s.buildRods()
	s.startupWorth = s.totalRodWorth()
	s.kernel = physics.NewKernel(cfg).CalibrateBase(s.startupWorth, cfg.Startup.Xenon)

	n := len(layout.Cells)
	s.influence = buildInfluence(layout, s.rods, cfg.Spatial.RodSigma, cfg.Spatial.RodCutoff)
	s.localWorth = make([]float64, n)
	s.rawWorth = make([]float64, n)
	s.covered = make([]float64, 0, n)
	s.fluxSnap = make([]float64, n)
	s.agg = aggScratch{
		flux:   make([]float64, n),
		rho:    make([]float64, n),
		fuelT:  make([]float64, n),
		coolT:  make([]float64, n),
		graphT: make([]float64, n),
		void:   make([]float64, n),
		iodine: make([]float64, n),
		xenon:  make([]float64, n),
	}
	for g := range s.agg.prec {
		s.agg.prec[g] = make([]float64, n)
	}

	chanVolume := cfg.Reactor.LatticePitchCM * cfg.Reactor.LatticePitchCM * cfg.Reactor.CoreHeightCM
	s.densityScale = cfg.Reactor.NominalPowerMW * 1e6 / float64(n) / chanVolume
	s.burnupRate = cfg.Reactor.NominalPowerMW / float64(n) / fuelMassKgU / 86400.0

	s.resetLocked()
	return s
}

// buildRods instantiates control rods from the layout's rod sites, with
// worth, category, and startup position taken from the subtype config.
func (s *Simulator) buildRods() {
	s.rods = make([]ControlRod, 0, len(s.layout.Rods))
	for _, site := range s.layout.Rods {
		gi, ok := s.cfg.Derived.GroupByLabel[site.Label]
		if !ok {
			continue
		}
		g := s.cfg.Rods.Groups[gi]
		cat, _ := CategoryFromString(g.Category)
		s.rods = append(s.rods, ControlRod{
			ID:       len(s.rods),
			Label:    site.Label,
			GridX:    site.GridX,
			GridY:    site.GridY,
			X:        site.X,
			Y:        site.Y,
			Position: g.Startup,
			Category: cat,
			Worth:    g.Worth,
		})
	}
}

// buildInfluence precomputes, for every fuel cell, the nearby rods and
// their Gaussian Manhattan-distance weights. Emergency rods act globally
// through the total worth and are excluded from local shaping.
func buildInfluence(layout *geometry.Core, rods []ControlRod, sigma float64, cutoff int) [][]rodInfluence {
	out := make([][]rodInfluence, len(layout.Cells))
	twoSigma2 := 2 * sigma * sigma
	for i, c := range layout.Cells {
		for j := range rods {
			r := &rods[j]
			if r.Category == CategoryEmergency {
				continue
			}
			d := absInt(c.GridX-r.GridX) + absInt(c.GridY-r.GridY)
			if d > cutoff {
				continue
			}
			w := math.Exp(-float64(d*d) / twoSigma2)
			out[i] = append(out[i], rodInfluence{rod: int32(j), weight: w})
		}
	}
	return out
}

// totalRodWorth sums the inserted worth of every rod.
func (s *Simulator) totalRodWorth() float64 {
	var total float64
	for i := range s.rods {
		total += s.rods[i].InsertedWorth()
	}
	return total
}

// Reset returns the simulator to the reference startup state.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Simulator) resetLocked() {
	for i := range s.rods {
		gi := s.cfg.Derived.GroupByLabel[s.rods[i].Label]
		s.rods[i].Position = s.cfg.Rods.Groups[gi].Startup
	}
	s.refreshLocalWorth()
	s.rodsDirty = false
	s.accum = 0

	st := s.cfg.Startup
	rc := s.cfg.Regulator
	n := st.NeutronPopulation

	s.state = ReactorState{
		DT:                s.cfg.Sim.DT,
		PowerMW:           s.cfg.Reactor.NominalPowerMW * n,
		PowerPercent:      n * 100,
		NeutronPopulation: n,
		Precursors:        s.kernel.EquilibriumPrecursors(n),
		KEff:              1,
		Period:            math.Inf(1),
		Iodine135:         st.Iodine,
		Xenon135:          st.Xenon,
		XenonReactivity:   s.kernel.XenonReactivity(st.Xenon),
		AvgFuelTemp:       s.cfg.Feedback.FuelRefTemp,
		AvgCoolantTemp:    st.CoolantTemp,
		AvgGraphiteTemp:   st.GraphiteTemp,
		Regulator: AutoRegulatorSettings{
			TargetPercent: rc.TargetDefault,
			Kp:            rc.Kp,
			Ki:            rc.Ki,
			Kd:            rc.Kd,
			MaxRodSpeed:   rc.MaxRodSpeed,
			Deadband:      rc.Deadband,
		},
		AxialFlux: make([]float64, s.cfg.Reactor.AxialSamples),
	}
	var sum float64
	for _, c := range s.state.Precursors {
		sum += c
	}
	s.state.PrecursorSum = sum
	s.fillAxialFlux()

	s.initChannels()
}

// initChannels seeds every fuel-channel entity with the reference state,
// creating the entities on first use.
func (s *Simulator) initChannels() {
	if len(s.entities) == 0 {
		s.entities = make([]ecs.Entity, 0, len(s.layout.Cells))
		rodAt := make(map[[2]int]int32, len(s.rods))
		for i := range s.rods {
			rodAt[[2]int{s.rods[i].GridX, s.rods[i].GridY}] = int32(s.rods[i].ID)
		}
		for i, c := range s.layout.Cells {
			cell := components.Cell{
				Index:    int32(i),
				GridX:    int16(c.GridX),
				GridY:    int16(c.GridY),
				X:        c.X,
				Y:        c.Y,
				RodIndex: -1,
			}
			if ri, ok := rodAt[[2]int{c.GridX, c.GridY}]; ok {
				cell.RodIndex = ri
			}
			var nb components.Neighbors
			for _, j := range s.layout.Neighbors[i] {
				nb.Idx[nb.Count] = j
				nb.Count++
			}
			var (
				neut components.Neutronics
				th   components.Thermal
				hyd  components.Hydraulics
				pois components.Poison
				fuel components.Fuel
			)
			s.seedChannel(i, &neut, &th, &hyd, &pois, &fuel)
			e := s.channelMapper.NewEntity(&cell, &nb, &neut, &th, &hyd, &pois, &fuel)
			s.entities = append(s.entities, e)
		}
		return
	}

	query := s.channelFilter.Query()
	for query.Next() {
		cell, _, neut, th, hyd, pois, fuel := query.Get()
		s.seedChannel(int(cell.Index), neut, th, hyd, pois, fuel)
	}
}

// seedChannel writes the reference startup state for one cell. Cells
// sitting under heavier rod coverage start slightly cooler with lower
// flux; the construction balances each cell's local reactivity against
// Doppler so the whole flux shape is a fixed point of the physics. The
// factor 2 accounts for Doppler entering both the smoothed target and
// the kinetics stages.
func (s *Simulator) seedChannel(i int, neut *components.Neutronics, th *components.Thermal,
	hyd *components.Hydraulics, pois *components.Poison, fuel *components.Fuel) {

	st := s.cfg.Startup
	d := s.localWorth[i] - s.startupWorth
	fuelTemp := s.cfg.Feedback.FuelRefTemp + d/(2*s.cfg.Feedback.AlphaFuel)
	flux := s.kernel.PowerFracForFuelTemp(fuelTemp)

	*neut = components.Neutronics{
		Flux:          flux,
		C:             s.kernel.EquilibriumPrecursors(flux),
		SmoothedRho:   -d / 2,
		LocalRodWorth: s.localWorth[i],
		LocalPower:    flux,
	}
	*th = components.Thermal{
		FuelTemp:     fuelTemp,
		CoolantTemp:  st.CoolantTemp,
		GraphiteTemp: st.GraphiteTemp,
	}
	*hyd = components.Hydraulics{
		Pressure:   st.Pressure,
		FlowRate:   st.FlowRate,
		InletTemp:  st.InletTemp,
		OutletTemp: st.CoolantTemp,
	}
	*pois = components.Poison{
		Iodine: st.Iodine,
		Xenon:  st.Xenon,
	}
	*fuel = components.Fuel{
		Burnup:     st.Burnup,
		Enrichment: st.Enrichment,
	}
}

// SetTimeStep sets the simulation time step, clamped to the configured
// stability band.
func (s *Simulator) SetTimeStep(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DT = clamp(dt, s.cfg.Sim.MinDT, s.cfg.Sim.MaxDT)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
