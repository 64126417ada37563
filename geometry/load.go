package geometry

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atomgrad/coretwin/config"
)

// layoutDoc is the on-disk scheme format: channel-type labels mapped to
// lists of [x, y] grid coordinates.
type layoutDoc struct {
	Cells map[string][][2]int `yaml:"cells"`
}

// Load parses a layout document and assembles the core. Labels that are
// neither TK nor a configured rod subtype are ignored.
func Load(path string, cfg *config.Config) (*Core, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}

	var doc layoutDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing layout file: %w", err)
	}

	fuel, ok := doc.Cells[FuelLabel]
	if !ok || len(fuel) == 0 {
		return nil, fmt.Errorf("layout file has no %s cells", FuelLabel)
	}

	cells := make([]Cell, 0, len(fuel))
	for _, p := range fuel {
		cells = append(cells, Cell{GridX: p[0], GridY: p[1]})
	}

	var rods []RodSite
	for _, g := range cfg.Rods.Groups {
		for _, p := range doc.Cells[g.Label] {
			rods = append(rods, RodSite{Label: g.Label, GridX: p[0], GridY: p[1]})
		}
	}
	if len(rods) == 0 {
		return nil, fmt.Errorf("layout file has no rod cells for configured subtypes")
	}

	return build(cells, rods, cfg.Reactor.LatticePitchCM), nil
}

// Fallback generates a circular core with the configured cardinalities.
// Fuel cells fill a lattice disc; each rod subtype is spread evenly over
// its own ring so group moves still have a spatial footprint.
func Fallback(cfg *config.Config) *Core {
	r := circleRadius(cfg.Derived.FuelChannels)
	ri := int(math.Ceil(r))

	var cells []Cell
	for gx := -ri; gx <= ri; gx++ {
		for gy := -ri; gy <= ri; gy++ {
			if float64(gx*gx+gy*gy) <= r*r {
				cells = append(cells, Cell{GridX: gx, GridY: gy})
			}
		}
	}

	var rods []RodSite
	rings := []float64{0.35, 0.55, 0.7, 0.85, 0.95}
	for gi, g := range cfg.Rods.Groups {
		ringR := r * rings[gi%len(rings)]
		for i := 0; i < g.Count; i++ {
			angle := 2 * math.Pi * float64(i) / float64(g.Count)
			rods = append(rods, RodSite{
				Label: g.Label,
				GridX: int(math.Round(ringR * math.Cos(angle))),
				GridY: int(math.Round(ringR * math.Sin(angle))),
			})
		}
	}

	return build(cells, rods, cfg.Reactor.LatticePitchCM)
}

// LoadOrFallback loads the layout document at path, degrading to the
// procedural layout when the path is empty or the document is unusable.
// Layout problems are logged, never fatal.
func LoadOrFallback(path string, cfg *config.Config) *Core {
	if path == "" {
		return Fallback(cfg)
	}
	core, err := Load(path, cfg)
	if err != nil {
		slog.Warn("layout unusable, using procedural core", "path", path, "error", err)
		return Fallback(cfg)
	}
	return core
}
