// Package physics is the numeric kernel of the reactor engine: pure,
// stateless calculations on value types. A Kernel is built once from
// configuration and injected into the orchestrator; it holds constants
// only, never simulation state.
package physics

import (
	"math"

	"github.com/atomgrad/coretwin/config"
)

// Groups is the number of delayed-neutron precursor groups.
const Groups = 6

// barnScale converts the xenon microscopic cross-section to macroscopic
// units in the absorption term.
const barnScale = 1e-24

// Kernel bundles the physical constants for all submodels.
type Kernel struct {
	// Kinetics
	beta     [Groups]float64
	lambda   [Groups]float64
	betaEff  float64
	lifetime float64
	stiffRho float64
	maxSub   float64
	minPop   float64
	maxPop   float64

	// Feedback
	alphaFuel    float64
	fuelRefTemp  float64
	maxColdRho   float64
	alphaGraph   float64
	graphRefTemp float64
	alphaVoid    float64 // Per % void
	xenonCoeff   float64
	baseExcess   float64
	smoothTau    float64
	scramTau     float64
	clampMin     float64
	clampMax     float64
	solverMin    float64
	solverMax    float64

	// Thermal
	fuelTau    float64
	fuelBase   float64
	fuelSpan   float64
	coolTau    float64
	coolBase   float64
	coolSpan   float64
	graphTau   float64
	graphBase  float64
	graphSpan  float64
	satTemp    float64
	voidTau    float64
	voidPerK   float64
	maxVoid    float64
	fuelMin    float64
	fuelMax    float64
	coolMin    float64
	coolMax    float64
	graphMin   float64
	graphMax   float64

	// Xenon chain
	gammaI  float64
	gammaXe float64
	lambdaI float64
	lambdaXe float64
	sigmaXe float64
	sigmaF  float64
	nomFlux float64
	maxConc float64
}

// NewKernel builds a kernel from configuration.
func NewKernel(cfg *config.Config) Kernel {
	k := Kernel{
		betaEff:  cfg.Derived.BetaEff,
		lifetime: cfg.Kinetics.NeutronLifetime,
		stiffRho: cfg.Kinetics.StiffThreshold,
		maxSub:   cfg.Kinetics.MaxSubstep,
		minPop:   cfg.Kinetics.MinPopulation,
		maxPop:   cfg.Kinetics.MaxPopulation,

		alphaFuel:    cfg.Feedback.AlphaFuel,
		fuelRefTemp:  cfg.Feedback.FuelRefTemp,
		maxColdRho:   cfg.Feedback.MaxColdReactivity,
		alphaGraph:   cfg.Feedback.AlphaGraphite,
		graphRefTemp: cfg.Feedback.GraphiteRefTemp,
		alphaVoid:    cfg.Derived.AlphaVoidPerPct,
		xenonCoeff:   cfg.Feedback.XenonCoeff,
		baseExcess:   cfg.Feedback.BaseExcess,
		smoothTau:    cfg.Feedback.SmoothingTau,
		scramTau:     cfg.Feedback.ScramSmoothingTau,
		clampMin:     cfg.Feedback.ClampMin,
		clampMax:     cfg.Feedback.ClampMax,
		solverMin:    cfg.Feedback.SolverClampMin,
		solverMax:    cfg.Feedback.SolverClampMax,

		fuelTau:   cfg.Thermal.FuelTau,
		fuelBase:  cfg.Thermal.FuelTempBase,
		fuelSpan:  cfg.Thermal.FuelTempSpan,
		coolTau:   cfg.Thermal.CoolantTau,
		coolBase:  cfg.Thermal.CoolantTempBase,
		coolSpan:  cfg.Thermal.CoolantTempSpan,
		graphTau:  cfg.Thermal.GraphiteTau,
		graphBase: cfg.Thermal.GraphiteTempBase,
		graphSpan: cfg.Thermal.GraphiteTempSpan,
		satTemp:   cfg.Thermal.SaturationTemp,
		voidTau:   cfg.Thermal.VoidTau,
		voidPerK:  cfg.Thermal.VoidPerKelvin,
		maxVoid:   cfg.Thermal.MaxVoid,
		fuelMin:   cfg.Thermal.FuelTempMin,
		fuelMax:   cfg.Thermal.FuelTempMax,
		coolMin:   cfg.Thermal.CoolantTempMin,
		coolMax:   cfg.Thermal.CoolantTempMax,
		graphMin:  cfg.Thermal.GraphiteTempMin,
		graphMax:  cfg.Thermal.GraphiteTempMax,

		gammaI:   cfg.Xenon.GammaIodine,
		gammaXe:  cfg.Xenon.GammaXenon,
		lambdaI:  cfg.Xenon.LambdaIodine,
		lambdaXe: cfg.Xenon.LambdaXenon,
		sigmaXe:  cfg.Xenon.SigmaXenon,
		sigmaF:   cfg.Xenon.SigmaFission,
		nomFlux:  cfg.Xenon.NominalFlux,
		maxConc:  cfg.Xenon.MaxValue,
	}
	copy(k.beta[:], cfg.Kinetics.Beta)
	copy(k.lambda[:], cfg.Kinetics.Lambda)
	return k
}

// BetaEff returns the total delayed-neutron fraction (one dollar).
func (k Kernel) BetaEff() float64 { return k.betaEff }

// BaseExcess returns the base excess reactivity currently in effect.
func (k Kernel) BaseExcess() float64 { return k.baseExcess }

// CalibrateBase returns a kernel whose base excess reactivity exactly
// balances the reference startup rod worth and xenon load, so the
// reference state is critical. A non-zero configured base_excess wins.
func (k Kernel) CalibrateBase(startupRodWorth, startupXenon float64) Kernel {
	if k.baseExcess != 0 {
		return k
	}
	k.baseExcess = startupRodWorth - k.XenonReactivity(startupXenon)
	return k
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
