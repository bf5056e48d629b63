// Package config defines process configuration and its loading.
//
// Conventions follow the rest of the repo: defaults first, then an
// optional YAML file, then environment overrides; sentinel errors for
// callers to errors.Is against.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes /metrics while an analysis runs; empty
	// disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// WorkerCount bounds the motion-extraction worker pool.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the frame-pair job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the frame-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ExportDir receives best-clip manifests; empty means alongside the
	// source file.
	ExportDir string `koanf:"export_dir"`

	// PhaseWeights maps phase kinds to their share of the per-stroke
	// total score.
	PhaseWeights map[string]float64 `koanf:"phase_weights"`
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		MetricsAddr: "",
		WorkerCount: runtime.NumCPU(),
		QueueSize:   4096,
		DedupeSize:  100_000,
		ExportDir:   "",
		PhaseWeights: map[string]float64{
			"coil":           0.25,
			"acceleration":   0.25,
			"impact":         0.20,
			"follow_through": 0.20,
			"split_step":     0.10,
		},
	}
}
