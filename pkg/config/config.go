// Package config defines the run configuration, loadable from a YAML file
// and overridable by command-line flags. All validation happens before any
// trial starts; a bad configuration aborts the whole run.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConflictingBounds indicates both a global max time and a bound-list
	// path were given. Exactly one bound source may apply.
	ErrConflictingBounds = errors.New("global max time and bound list are mutually exclusive")

	// ErrNoBound indicates neither a global max time nor a bound-list path
	// was given.
	ErrNoBound = errors.New("either a global max time or a bound list is required")

	// ErrRandomWithoutConditions indicates random seeding was requested
	// without an initial-condition list to size it.
	ErrRandomWithoutConditions = errors.New("random seeding requires an initial-condition list")
)

// RunConfig holds everything needed to run a batch of epidemic trials.
type RunConfig struct {
	// Probability is the global per-edge transmission probability.
	Probability float64 `yaml:"probability" validate:"required,gt=0,lte=1"`

	// GraphPath locates the contact network file.
	GraphPath string `yaml:"graph" validate:"required"`

	// ConditionsPath locates the initial-condition list. Empty means one
	// default epidemic with node 0 infected.
	ConditionsPath string `yaml:"conditions"`

	// RandomSeeding draws each condition's infected set at random instead of
	// reading node ids from the list.
	RandomSeeding bool `yaml:"random_seeding"`

	// MaxTime is the global elapsed-time bound applied to every epidemic.
	// Zero means a bound list is used instead.
	MaxTime int `yaml:"max_time" validate:"min=0"`

	// BoundsPath locates a per-epidemic bound list.
	BoundsPath string `yaml:"bounds"`

	// BoundsCriterion names the criterion the bound list is read under:
	// "maxdepth" or "maxsize".
	BoundsCriterion string `yaml:"bounds_criterion" validate:"omitempty,oneof=maxdepth maxsize"`

	// Samples is the number of independent trials per initial condition.
	Samples int `yaml:"samples" validate:"min=1"`

	// Workers is the number of worker goroutines.
	Workers int `yaml:"workers" validate:"min=1"`

	// Seed is the base random seed. Zero picks one from the clock.
	Seed int64 `yaml:"seed"`

	// TracePath is the base path for trace output; the criterion name and
	// ".trace" suffix are appended. Empty disables the trace.
	TracePath string `yaml:"trace_output"`

	// CompressTrace writes the trace through a snappy stream.
	CompressTrace bool `yaml:"compress_trace"`

	// StatusEnabled turns on per-trial status records.
	StatusEnabled bool `yaml:"status"`

	// StatusPath locates the status output; empty with StatusEnabled means
	// standard output.
	StatusPath string `yaml:"status_output"`

	// MetricsAddr exposes Prometheus metrics on this address for the
	// lifetime of the run. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel is the minimum level for operational logs.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when no file or flags override it.
func Default() RunConfig {
	return RunConfig{
		Samples:         1,
		Workers:         runtime.NumCPU(),
		BoundsCriterion: "maxdepth",
		LogLevel:        "info",
	}
}

// LoadFile reads a YAML configuration on top of the defaults.
func LoadFile(path string) (RunConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the configuration. Struct tags cover the per-field ranges;
// the bound-source exclusivity cannot be a tag and is checked here.
func (c *RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.MaxTime > 0 && c.BoundsPath != "" {
		return ErrConflictingBounds
	}
	if c.MaxTime == 0 && c.BoundsPath == "" {
		return ErrNoBound
	}
	if c.RandomSeeding && c.ConditionsPath == "" {
		return ErrRandomWithoutConditions
	}
	return nil
}

// EffectiveSeed resolves the base seed, drawing one from the clock when the
// configuration leaves it at zero.
func (c *RunConfig) EffectiveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
