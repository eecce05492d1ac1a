// Package config loads the devdup configuration from file, environment and
// defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
)

// Config is the top-level configuration struct for devdup.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Heuristic HeuristicConfig `mapstructure:"heuristic"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// HeuristicConfig selects the similarity variants and their settings.
type HeuristicConfig struct {
	Variants           []string  `mapstructure:"variants"`
	EmailCheck         bool      `mapstructure:"email_check"`
	GenericPrefixes    []string  `mapstructure:"generic_prefixes"`
	Thresholds         []float64 `mapstructure:"thresholds"`
	ImprovedNameCutoff float64   `mapstructure:"improved_name_cutoff"`
}

// PipelineConfig holds evaluation knobs.
type PipelineConfig struct {
	Workers       int  `mapstructure:"workers"`
	WritePairs    bool `mapstructure:"write_pairs"`
	CompressPairs bool `mapstructure:"compress_pairs"`
}

// PathsConfig holds output locations.
type PathsConfig struct {
	DataRoot     string `mapstructure:"data_root"`
	AnnotatedDir string `mapstructure:"annotated_dir"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OTLP export settings. An empty endpoint disables
// export.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidVariants indicates an empty or unknown variant list.
	ErrInvalidVariants = errors.New("heuristic.variants must name at least one known variant")
	// ErrInvalidThresholds indicates an empty threshold list.
	ErrInvalidThresholds = errors.New("heuristic.thresholds must not be empty")
	// ErrInvalidThreshold indicates a threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("heuristic.thresholds must be between 0 and 1")
	// ErrInvalidNameCutoff indicates a cutoff outside [0, 1].
	ErrInvalidNameCutoff = errors.New("heuristic.improved_name_cutoff must be between 0 and 1")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("pipeline.workers must be non-negative")
	// ErrInvalidDataRoot indicates an empty data root.
	ErrInvalidDataRoot = errors.New("paths.data_root must not be empty")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	err := c.validateHeuristic()
	if err != nil {
		return err
	}

	if c.Pipeline.Workers < 0 {
		return ErrInvalidWorkers
	}

	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		return ErrInvalidDataRoot
	}

	var level slog.Level

	if level.UnmarshalText([]byte(c.Logging.Level)) != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

func (c *Config) validateHeuristic() error {
	h := c.Heuristic

	if len(h.Variants) == 0 {
		return ErrInvalidVariants
	}

	_, err := c.ParsedVariants()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVariants, err)
	}

	if len(h.Thresholds) == 0 {
		return ErrInvalidThresholds
	}

	for _, t := range h.Thresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidThreshold, t)
		}
	}

	if h.ImprovedNameCutoff < 0 || h.ImprovedNameCutoff > 1 {
		return ErrInvalidNameCutoff
	}

	return nil
}

// ParsedVariants resolves the configured variant names, dropping repeats.
func (c *Config) ParsedVariants() ([]similarity.Variant, error) {
	variants := make([]similarity.Variant, 0, len(c.Heuristic.Variants))
	seen := make(map[similarity.Variant]bool, len(c.Heuristic.Variants))

	for _, name := range c.Heuristic.Variants {
		v, err := similarity.ParseVariant(name)
		if err != nil {
			return nil, err
		}

		if seen[v] {
			continue
		}

		seen[v] = true

		variants = append(variants, v)
	}

	return variants, nil
}

// Similarity builds the engine configuration.
func (c *Config) Similarity() similarity.Config {
	cfg := similarity.NewConfig(c.Heuristic.GenericPrefixes, c.Heuristic.EmailCheck)
	cfg.ImprovedNameCutoff = c.Heuristic.ImprovedNameCutoff

	return cfg
}
