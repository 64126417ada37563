// Package config provides configuration loading and access for the reactor engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Reactor   ReactorConfig   `yaml:"reactor"`
	Kinetics  KineticsConfig  `yaml:"kinetics"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Thermal   ThermalConfig   `yaml:"thermal"`
	Xenon     XenonConfig     `yaml:"xenon"`
	Rods      RodsConfig      `yaml:"rods"`
	Regulator RegulatorConfig `yaml:"regulator"`
	Safety    SafetyConfig    `yaml:"safety"`
	Explosion ExplosionConfig `yaml:"explosion"`
	Spatial   SpatialConfig   `yaml:"spatial"`
	Sim       SimConfig       `yaml:"sim"`
	Startup   StartupConfig   `yaml:"startup"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ReactorConfig holds plant-level geometry and power ratings.
type ReactorConfig struct {
	NominalPowerMW float64 `yaml:"nominal_power_mw"` // Thermal power at 100%
	CoreRadiusCM   float64 `yaml:"core_radius_cm"`
	CoreHeightCM   float64 `yaml:"core_height_cm"`
	LatticePitchCM float64 `yaml:"lattice_pitch_cm"` // Grid cell spacing
	AxialSamples   int     `yaml:"axial_samples"`    // Points in the axial flux profile
}

// KineticsConfig holds the 6-group point-kinetics constants.
type KineticsConfig struct {
	Beta            []float64 `yaml:"beta"`             // Delayed-neutron yield per group
	Lambda          []float64 `yaml:"lambda"`           // Decay constant per group [1/s]
	NeutronLifetime float64   `yaml:"neutron_lifetime"` // Prompt generation time [s]
	StiffThreshold  float64   `yaml:"stiff_threshold"`  // Sub-step below this reactivity
	MaxSubstep      float64   `yaml:"max_substep"`      // Sub-step ceiling [s]
	MinPopulation   float64   `yaml:"min_population"`   // Relative units
	MaxPopulation   float64   `yaml:"max_population"`
}

// FeedbackConfig holds the reactivity feedback coefficients.
// The positive void coefficient is the defining RBMK hazard; graphite
// feedback is positive too, on a much slower thermal time constant.
type FeedbackConfig struct {
	AlphaFuel         float64 `yaml:"alpha_fuel"`          // Doppler [1/K], negative
	FuelRefTemp       float64 `yaml:"fuel_ref_temp"`       // [K]
	MaxColdReactivity float64 `yaml:"max_cold_reactivity"` // Positive cap when fuel is cold
	AlphaGraphite     float64 `yaml:"alpha_graphite"`      // [1/K], positive
	GraphiteRefTemp   float64 `yaml:"graphite_ref_temp"`   // [K]
	VoidCoeffBeta     float64 `yaml:"void_coeff_beta"`     // β_eff per 100% void
	XenonCoeff        float64 `yaml:"xenon_coeff"`         // Δk/k per atoms/cm³
	BaseExcess        float64 `yaml:"base_excess"`         // 0 = calibrate at startup
	SmoothingTau      float64 `yaml:"smoothing_tau"`       // [s]
	ScramSmoothingTau float64 `yaml:"scram_smoothing_tau"` // [s]
	ClampMin          float64 `yaml:"clamp_min"`           // Reported reactivity band
	ClampMax          float64 `yaml:"clamp_max"`
	SolverClampMin    float64 `yaml:"solver_clamp_min"` // Effective ρ band inside RK4
	SolverClampMax    float64 `yaml:"solver_clamp_max"`
}

// ThermalConfig holds the lumped thermal-hydraulic model parameters.
// Targets are linear in power fraction: base + span·pf.
type ThermalConfig struct {
	FuelTau          float64 `yaml:"fuel_tau"` // [s], coupled into the kinetics solver
	FuelTempBase     float64 `yaml:"fuel_temp_base"`
	FuelTempSpan     float64 `yaml:"fuel_temp_span"`
	CoolantTau       float64 `yaml:"coolant_tau"`
	CoolantTempBase  float64 `yaml:"coolant_temp_base"`
	CoolantTempSpan  float64 `yaml:"coolant_temp_span"`
	GraphiteTau      float64 `yaml:"graphite_tau"` // Slow: delayed positive feedback
	GraphiteTempBase float64 `yaml:"graphite_temp_base"`
	GraphiteTempSpan float64 `yaml:"graphite_temp_span"`
	SaturationTemp   float64 `yaml:"saturation_temp"` // Boiling threshold [K]
	VoidTau          float64 `yaml:"void_tau"`
	VoidPerKelvin    float64 `yaml:"void_per_kelvin"` // % void per K above saturation
	MaxVoid          float64 `yaml:"max_void"`        // [%]
	FuelTempMin      float64 `yaml:"fuel_temp_min"`
	FuelTempMax      float64 `yaml:"fuel_temp_max"`
	CoolantTempMin   float64 `yaml:"coolant_temp_min"`
	CoolantTempMax   float64 `yaml:"coolant_temp_max"`
	GraphiteTempMin  float64 `yaml:"graphite_temp_min"`
	GraphiteTempMax  float64 `yaml:"graphite_temp_max"`
}

// XenonConfig holds the I-135/Xe-135 poison chain constants.
type XenonConfig struct {
	GammaIodine  float64 `yaml:"gamma_iodine"`  // Fission yield
	GammaXenon   float64 `yaml:"gamma_xenon"`   // Direct fission yield
	LambdaIodine float64 `yaml:"lambda_iodine"` // [1/s]
	LambdaXenon  float64 `yaml:"lambda_xenon"`  // [1/s]
	SigmaXenon   float64 `yaml:"sigma_xenon"`   // Absorption cross-section
	SigmaFission float64 `yaml:"sigma_fission"`
	NominalFlux  float64 `yaml:"nominal_flux"` // Flux at n = 1 [n/cm²/s]
	MaxValue     float64 `yaml:"max_value"`    // Concentration sentinel
}

// RodGroupConfig describes one layout rod subtype.
type RodGroupConfig struct {
	Label    string  `yaml:"label"`    // Layout label (AZ, RR, AR, LAR, USP)
	Category string  `yaml:"category"` // manual / automatic / shortened / emergency
	Worth    float64 `yaml:"worth"`    // Δk/k when fully inserted
	Startup  float64 `yaml:"startup"`  // Reference position, 1 = withdrawn
	Count    int     `yaml:"count"`    // Expected cardinality (fallback layout)
}

// RodsConfig holds rod subtype definitions.
type RodsConfig struct {
	Groups []RodGroupConfig `yaml:"groups"`
}

// RegulatorConfig holds the automatic power regulator (AR/LAR) PID parameters.
type RegulatorConfig struct {
	Kp             float64 `yaml:"kp"`
	Ki             float64 `yaml:"ki"`
	Kd             float64 `yaml:"kd"`
	Deadband       float64 `yaml:"deadband"`         // [% power]
	LargeError     float64 `yaml:"large_error"`      // [% power]
	MaxRodSpeed    float64 `yaml:"max_rod_speed"`    // Position units per second
	IntegralClamp  float64 `yaml:"integral_clamp"`   // Anti-windup bound
	IntegralDecay  float64 `yaml:"integral_decay"`   // Applied inside the deadband
	LargeBoost     float64 `yaml:"large_boost"`      // Output multiplier cap
	PreseedDelta   float64 `yaml:"preseed_delta"`    // Target change that pre-seeds
	PreseedFactor  float64 `yaml:"preseed_factor"`   // Integral pre-seed per % error
	TargetDefault  float64 `yaml:"target_default"`   // [%]
	TargetPowerMin float64 `yaml:"target_power_min"` // [%]
	TargetPowerMax float64 `yaml:"target_power_max"` // [%]
}

// SafetyConfig holds the per-step alert thresholds.
type SafetyConfig struct {
	MaxPowerPercent float64 `yaml:"max_power_percent"`
	WarnDollars     float64 `yaml:"warn_dollars"`
	PromptDollars   float64 `yaml:"prompt_dollars"`
	FuelTempLimit   float64 `yaml:"fuel_temp_limit"` // [K]
	VoidLimit       float64 `yaml:"void_limit"`      // [%]
	ShortPeriod     float64 `yaml:"short_period"`    // [s]
}

// ExplosionConfig holds the steam-explosion severity model thresholds.
type ExplosionConfig struct {
	FuelMeltingPoint   float64 `yaml:"fuel_melting_point"`   // [K]
	MeltWarningFrac    float64 `yaml:"melt_warning_frac"`    // Fraction of melting point
	CriticalVoid       float64 `yaml:"critical_void"`        // [%]
	CriticalCoolant    float64 `yaml:"critical_coolant"`     // [K]
	PromptDollars      float64 `yaml:"prompt_dollars"`       // [$]
	ExtremePowerFactor float64 `yaml:"extreme_power_factor"` // Multiple of nominal
	ShutdownDollars    float64 `yaml:"shutdown_dollars"`     // Below this, no detection
	Threshold          float64 `yaml:"threshold"`            // Severity trip point
}

// SpatialConfig holds the 2D diffusion coupler parameters.
type SpatialConfig struct {
	RodSigma          float64 `yaml:"rod_sigma"`          // Gaussian decay, grid units
	RodCutoff         int     `yaml:"rod_cutoff"`         // Manhattan radius, grid cells
	RodWorthGain      float64 `yaml:"rod_worth_gain"`     // Local worth deviation amplifier
	DiffusionCoupling float64 `yaml:"diffusion_coupling"` // [1/s] neighbor exchange
	PowerGridSize     int     `yaml:"power_grid_size"`    // Visualization bin count
}

// SimConfig holds stepping and pacing parameters.
type SimConfig struct {
	DT               float64 `yaml:"dt"` // [s]
	MinDT            float64 `yaml:"min_dt"`
	MaxDT            float64 `yaml:"max_dt"`
	MaxRealtimeSteps int     `yaml:"max_realtime_steps"` // Per-call latency bound
}

// StartupConfig holds the reference state the engine resets to.
type StartupConfig struct {
	NeutronPopulation float64 `yaml:"neutron_population"` // 1.0 = nominal
	CoolantTemp       float64 `yaml:"coolant_temp"`       // [K], below saturation
	GraphiteTemp      float64 `yaml:"graphite_temp"`      // [K]
	Iodine            float64 `yaml:"iodine"`             // [atoms/cm³]
	Xenon             float64 `yaml:"xenon"`              // [atoms/cm³]
	Burnup            float64 `yaml:"burnup"`             // [MWd/kgU]
	Enrichment        float64 `yaml:"enrichment"`         // [% U-235]
	Pressure          float64 `yaml:"pressure"`           // [MPa]
	FlowRate          float64 `yaml:"flow_rate"`          // [kg/s] per channel
	InletTemp         float64 `yaml:"inlet_temp"`         // [K]
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	BetaEff         float64        // Σ βᵢ
	AlphaVoidPerPct float64        // Δk/k per % void
	GroupByLabel    map[string]int // Rod label -> index into Rods.Groups
	FuelChannels    int            // Expected fuel-cell cardinality
	TotalRods       int            // Expected rod cardinality
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the physics cannot run on.
func (c *Config) validate() error {
	if len(c.Kinetics.Beta) != 6 || len(c.Kinetics.Lambda) != 6 {
		return fmt.Errorf("kinetics: expected 6 delayed-neutron groups, got %d beta / %d lambda",
			len(c.Kinetics.Beta), len(c.Kinetics.Lambda))
	}
	if c.Kinetics.NeutronLifetime <= 0 {
		return fmt.Errorf("kinetics: neutron_lifetime must be positive")
	}
	if len(c.Rods.Groups) == 0 {
		return fmt.Errorf("rods: at least one rod group is required")
	}
	for _, g := range c.Rods.Groups {
		switch g.Category {
		case "manual", "automatic", "shortened", "emergency":
		default:
			return fmt.Errorf("rods: group %q has unknown category %q", g.Label, g.Category)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	var betaEff float64
	for _, b := range c.Kinetics.Beta {
		betaEff += b
	}
	c.Derived.BetaEff = betaEff
	c.Derived.AlphaVoidPerPct = c.Feedback.VoidCoeffBeta * betaEff / 100.0

	c.Derived.GroupByLabel = make(map[string]int, len(c.Rods.Groups))
	c.Derived.TotalRods = 0
	for i, g := range c.Rods.Groups {
		c.Derived.GroupByLabel[g.Label] = i
		c.Derived.TotalRods += g.Count
	}

	// The OPB-82 layout has 1661 fuel channels; the fallback generator
	// reproduces that cardinality.
	if c.Derived.FuelChannels == 0 {
		c.Derived.FuelChannels = 1661
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
