package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/atomgrad/coretwin/config"
	"github.com/atomgrad/coretwin/core"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	stepFile  *os.File
	eventFile *os.File

	// Track if headers have been written
	stepHeaderWritten  bool
	eventHeaderWritten bool

	// Alerts already emitted to events.csv; alerts are rebuilt every
	// step, so repeats are deduplicated until the alert clears.
	activeAlerts map[string]bool
}

// NewOutputManager creates a new output manager and initializes the
// output directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, activeAlerts: make(map[string]bool)}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.stepFile = f

	f, err = os.Create(filepath.Join(dir, "events.csv"))
	if err != nil {
		om.stepFile.Close()
		return nil, fmt.Errorf("creating events.csv: %w", err)
	}
	om.eventFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStep writes one scalar snapshot to telemetry.csv and emits any
// newly raised alerts to events.csv.
func (om *OutputManager) WriteStep(st core.ReactorState) error {
	if om == nil {
		return nil
	}

	records := []StepRecord{Record(st)}

	if !om.stepHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.stepFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.stepHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.stepFile); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
	}

	seen := make(map[string]bool, len(st.Alerts))
	for _, alert := range st.Alerts {
		seen[alert] = true
		if om.activeAlerts[alert] {
			continue
		}
		om.activeAlerts[alert] = true
		if err := om.writeEvent(EventRecord{Time: st.Time, Event: alert}); err != nil {
			return err
		}
	}
	for alert := range om.activeAlerts {
		if !seen[alert] {
			delete(om.activeAlerts, alert)
		}
	}

	return nil
}

// WriteEvent appends a free-form event to events.csv.
func (om *OutputManager) WriteEvent(time float64, event string) error {
	if om == nil {
		return nil
	}
	return om.writeEvent(EventRecord{Time: time, Event: event})
}

func (om *OutputManager) writeEvent(rec EventRecord) error {
	records := []EventRecord{rec}

	if !om.eventHeaderWritten {
		if err := gocsv.Marshal(records, om.eventFile); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
		om.eventHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.eventFile); err != nil {
			return fmt.Errorf("writing event: %w", err)
		}
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.stepFile != nil {
		if err := om.stepFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.eventFile != nil {
		if err := om.eventFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
