package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atomgrad/coretwin/config"
	"github.com/atomgrad/coretwin/core"
	"github.com/atomgrad/coretwin/geometry"
	"github.com/atomgrad/coretwin/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	layoutPath := flag.String("layout", "", "Path to core layout YAML (empty = generated layout)")
	duration := flag.Float64("duration", 0, "Stop after N simulated seconds (0 = unlimited)")
	speed := flag.Float64("speed", 1, "Simulation speed multiplier")
	dt := flag.Float64("dt", 0, "Time step in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logEvery := flag.Float64("log-every", 10, "Seconds of simulated time between progress logs")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	layout := geometry.LoadOrFallback(*layoutPath, cfg)
	sim := core.New(cfg, layout)
	if *dt > 0 {
		sim.SetTimeStep(*dt)
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("starting simulation",
		"channels", len(layout.Cells),
		"rods", len(layout.Rods),
		"speed", *speed,
		"duration", *duration,
		"output_dir", out.Dir(),
	)

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	nextLog := *logEvery
	for {
		select {
		case <-sigC:
			st := sim.GetState()
			slog.Info("interrupted", "sim_time", st.Time)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds()
			last = now

			steps := sim.StepRealtime(elapsed, *speed)
			if steps == 0 {
				continue
			}
			st := sim.GetState()
			if err := out.WriteStep(st); err != nil {
				slog.Error("telemetry write failed", "error", err)
			}

			if *logEvery > 0 && st.Time >= nextLog {
				nextLog += *logEvery
				slog.Info("state",
					"sim_time", st.Time,
					"power_pct", st.PowerPercent,
					"dollars", st.ReactivityDollars,
					"fuel_temp", st.AvgFuelTemp,
					"void", st.AvgVoid,
					"xenon", st.Xenon135,
					"alerts", len(st.Alerts),
				)
			}

			if st.ExplosionOccurred {
				slog.Error("run terminated by core destruction", "sim_time", st.ExplosionTime)
				return
			}
			if *duration > 0 && st.Time >= *duration {
				slog.Info("duration reached", "sim_time", st.Time)
				return
			}
		}
	}
}
