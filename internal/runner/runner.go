// Package runner wires the kernel (internal/sim) together with the
// ambient and domain stack: configuration loading, logging, per-run
// output directories keyed by a UUID, the frame writer, the optional
// live-feed broadcaster, and a closing run manifest. main.go only calls
// Run.
package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"ballsim/internal/config"
	"ballsim/internal/frames"
	"ballsim/internal/live"
	"ballsim/internal/logging"
	"ballsim/internal/sim"
)

// Manifest summarizes a completed run for downstream tooling, written as
// YAML into the run's output directory.
type Manifest struct {
	RunID        string  `yaml:"run_id"`
	NumBalls     int     `yaml:"num_balls"`
	FrameCount   int     `yaml:"frame_count"`
	FinalTime    float64 `yaml:"final_time"`
	SimulationOK bool    `yaml:"simulation_ok"`
}

// Run loads cfgPath, runs one simulation to completion, and writes its
// frames and manifest to a UUID-named subdirectory of the configured
// output_dir.
func Run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(cfg.Log.Level)

	runID := uuid.New()
	log.WithField("run_id", runID).Info("starting run")

	outDir := filepath.Join(cfg.OutputDir, runID.String())

	var broadcaster *live.Broadcaster
	var relay func([]byte)
	if cfg.Live.Enabled {
		broadcaster = live.NewBroadcaster()
		relay = broadcaster.Relay
		go func() {
			if err := broadcaster.ListenAndServe(cfg.Live.Addr); err != nil {
				log.WithError(err).Error("live feed server stopped")
			}
		}()
	}

	writer, err := frames.NewWriter(outDir, relay)
	if err != nil {
		return fmt.Errorf("setting up output dir: %w", err)
	}

	simCfg := cfg.ToSimConfig()
	engine, err := sim.New(simCfg, writer)
	if err != nil {
		return fmt.Errorf("initializing simulation: %w", err)
	}

	runErr := engine.Run()
	if runErr != nil {
		log.WithFields(log.Fields{"run_id": runID, "error": runErr}).Error("simulation halted")
	}

	manifest := Manifest{
		RunID:        runID.String(),
		NumBalls:     cfg.NumBalls,
		FrameCount:   writer.FrameCount(),
		FinalTime:    cfg.SimulationTime,
		SimulationOK: runErr == nil,
	}
	if err := writeManifest(outDir, manifest); err != nil {
		log.WithError(err).Error("failed to write run manifest")
	}

	return runErr
}

func writeManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(dir, "manifest.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	log.WithField("path", path).Info("wrote run manifest")
	return nil
}
