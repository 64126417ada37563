package core

// GetState returns a deep-cloned scalar snapshot.
func (s *Simulator) GetState() ReactorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// GetChannels returns a cloned snapshot of every fuel channel, ordered by
// channel id.
func (s *Simulator) GetChannels() []FuelChannel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FuelChannel, len(s.layout.Cells))
	query := s.channelFilter.Query()
	for query.Next() {
		cell, nb, neut, th, hyd, pois, fuel := query.Get()
		ch := FuelChannel{
			ID:              int(cell.Index),
			GridX:           int(cell.GridX),
			GridY:           int(cell.GridY),
			X:               cell.X,
			Y:               cell.Y,
			FuelTemp:        th.FuelTemp,
			CoolantTemp:     th.CoolantTemp,
			GraphiteTemp:    th.GraphiteTemp,
			Void:            th.Void,
			Pressure:        hyd.Pressure,
			FlowRate:        hyd.FlowRate,
			InletTemp:       hyd.InletTemp,
			OutletTemp:      hyd.OutletTemp,
			NeutronFlux:     neut.Flux,
			Precursors:      neut.C,
			PowerDensity:    neut.Flux * s.densityScale,
			LocalPower:      neut.LocalPower * s.cfg.Reactor.NominalPowerMW / float64(len(s.layout.Cells)),
			Iodine:          pois.Iodine,
			Xenon:           pois.Xenon,
			Burnup:          fuel.Burnup,
			Enrichment:      fuel.Enrichment,
			RodIndex:        int(cell.RodIndex),
			LocalReactivity: neut.SmoothedRho,
		}
		ch.Neighbors = append(ch.Neighbors, nb.Idx[:nb.Count]...)
		out[cell.Index] = ch
	}
	return out
}

// PowerGrid bins the per-channel flux into a size×size map of relative
// power, scaled by the current power fraction. Size 0 selects the
// configured default.
func (s *Simulator) PowerGrid(size int) [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if size <= 0 {
		size = s.cfg.Spatial.PowerGridSize
	}
	grid := make([][]float64, size)
	for i := range grid {
		grid[i] = make([]float64, size)
	}

	radius := s.cfg.Reactor.CoreRadiusCM
	span := 2 * radius
	scale := s.state.PowerPercent / 100

	query := s.channelFilter.Query()
	for query.Next() {
		cell, _, neut, _, _, _, _ := query.Get()
		i := int((cell.X + radius) / span * float64(size))
		j := int((cell.Y + radius) / span * float64(size))
		if i >= 0 && i < size && j >= 0 && j < size {
			grid[i][j] = neut.Flux * scale
		}
	}
	return grid
}
