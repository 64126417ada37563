// Package telemetry writes per-step CSV records and run artifacts for
// offline analysis of simulation runs.
package telemetry

import (
	"github.com/atomgrad/coretwin/core"
)

// StepRecord is one row of telemetry.csv, a flattened scalar snapshot.
type StepRecord struct {
	Time              float64 `csv:"time_s"`
	PowerMW           float64 `csv:"power_mw"`
	PowerPercent      float64 `csv:"power_pct"`
	NeutronPopulation float64 `csv:"neutron_population"`
	Reactivity        float64 `csv:"reactivity"`
	ReactivityDollars float64 `csv:"reactivity_dollars"`
	KEff              float64 `csv:"k_eff"`
	Period            float64 `csv:"period_s"`
	FuelTemp          float64 `csv:"fuel_temp_k"`
	CoolantTemp       float64 `csv:"coolant_temp_k"`
	GraphiteTemp      float64 `csv:"graphite_temp_k"`
	Void              float64 `csv:"void_pct"`
	Iodine135         float64 `csv:"iodine_135"`
	Xenon135          float64 `csv:"xenon_135"`
	XenonReactivity   float64 `csv:"xenon_reactivity"`
	ScramActive       bool    `csv:"scram_active"`
	AlertCount        int     `csv:"alert_count"`
}

// EventRecord is one row of events.csv: an alert or state transition with
// its simulation time.
type EventRecord struct {
	Time  float64 `csv:"time_s"`
	Event string  `csv:"event"`
}

// Record flattens a reactor snapshot into a CSV row.
func Record(st core.ReactorState) StepRecord {
	return StepRecord{
		Time:              st.Time,
		PowerMW:           st.PowerMW,
		PowerPercent:      st.PowerPercent,
		NeutronPopulation: st.NeutronPopulation,
		Reactivity:        st.Reactivity,
		ReactivityDollars: st.ReactivityDollars,
		KEff:              st.KEff,
		Period:            st.Period,
		FuelTemp:          st.AvgFuelTemp,
		CoolantTemp:       st.AvgCoolantTemp,
		GraphiteTemp:      st.AvgGraphiteTemp,
		Void:              st.AvgVoid,
		Iodine135:         st.Iodine135,
		Xenon135:          st.Xenon135,
		XenonReactivity:   st.XenonReactivity,
		ScramActive:       st.ScramActive,
		AlertCount:        len(st.Alerts),
	}
}
