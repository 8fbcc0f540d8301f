// Package config loads and validates the YAML configuration consumed by the
// runner. The engine itself never reads configuration; it only sees the
// resolved scalar options the runner derives from this package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
)

// Duration wraps time.Duration with YAML support for strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", errs.ErrInvalidConfig, raw, err)
	}

	*d = Duration(parsed)

	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Engine configures a compression session. Zero fields are filled from
// Default before validation.
type Engine struct {
	// WindowSize is the window length W in samples. Default 16.
	WindowSize int `yaml:"window_size"`
	// PoolCapacity is the exemplar pool size per device. Default 8.
	PoolCapacity int `yaml:"pool_capacity"`
	// Arity is the per-sample value vector width. Default 1.
	Arity int `yaml:"arity"`

	// InitialThreshold is the acceptance threshold for the first window.
	// Default 0.1.
	InitialThreshold float64 `yaml:"initial_threshold"`
	// MinThreshold and MaxThreshold clamp the adaptive threshold.
	// Defaults 1e-6 and 10.
	MinThreshold float64 `yaml:"min_threshold"`
	MaxThreshold float64 `yaml:"max_threshold"`
	// TargetRatio is the compression gain (raw/encoded) the controller
	// steers toward. Default 4.
	TargetRatio float64 `yaml:"target_ratio"`
	// ErrorBudget bounds the rolling mean match distance. Default 0.5.
	ErrorBudget float64 `yaml:"error_budget"`
	// ControllerStep is the multiplicative threshold step in (0, 1).
	// Default 0.05.
	ControllerStep float64 `yaml:"controller_step"`
	// RatioWindow is the controller's rolling observation depth. Default 16.
	RatioWindow int `yaml:"ratio_window"`

	// TrailingMode is "flush" (batch, emit short final window) or "buffer"
	// (streaming, retain the partial tail). Default "flush".
	TrailingMode string `yaml:"trailing_mode"`
	// Compression is the payload codec for new-exemplar frames: "none",
	// "zstd", "s2" or "lz4". Default "zstd".
	Compression string `yaml:"compression"`
	// SampleInterval is the nominal spacing of reconstructed samples.
	// Default 1s.
	SampleInterval Duration `yaml:"sample_interval"`
}

// Runner configures batch orchestration.
type Runner struct {
	// Workers bounds the number of device sessions compressed in parallel.
	// Default 4.
	Workers int `yaml:"workers"`
}

// Config is the root configuration document.
type Config struct {
	Engine Engine `yaml:"engine"`
	Runner Runner `yaml:"runner"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Engine: Engine{
			WindowSize:       16,
			PoolCapacity:     8,
			Arity:            1,
			InitialThreshold: 0.1,
			MinThreshold:     1e-6,
			MaxThreshold:     10,
			TargetRatio:      4,
			ErrorBudget:      0.5,
			ControllerStep:   0.05,
			RatioWindow:      16,
			TrailingMode:     "flush",
			Compression:      "zstd",
			SampleInterval:   Duration(time.Second),
		},
		Runner: Runner{Workers: 4},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Unknown keys are rejected to catch typos early.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every field range. Enum fields are validated through their
// format conversions.
func (c Config) Validate() error {
	e := c.Engine
	if e.WindowSize <= 0 {
		return fmt.Errorf("%w: window_size %d must be positive", errs.ErrInvalidConfig, e.WindowSize)
	}
	if e.PoolCapacity <= 0 {
		return fmt.Errorf("%w: pool_capacity %d must be positive", errs.ErrInvalidConfig, e.PoolCapacity)
	}
	if e.Arity <= 0 {
		return fmt.Errorf("%w: arity %d must be positive", errs.ErrInvalidConfig, e.Arity)
	}
	if e.MinThreshold < 0 || e.MaxThreshold < e.MinThreshold {
		return fmt.Errorf("%w: threshold bounds [%g, %g]", errs.ErrInvalidConfig, e.MinThreshold, e.MaxThreshold)
	}
	if e.InitialThreshold < e.MinThreshold || e.InitialThreshold > e.MaxThreshold {
		return fmt.Errorf("%w: initial_threshold %g outside [%g, %g]",
			errs.ErrInvalidConfig, e.InitialThreshold, e.MinThreshold, e.MaxThreshold)
	}
	if e.TargetRatio < 1 {
		return fmt.Errorf("%w: target_ratio %g must be >= 1", errs.ErrInvalidConfig, e.TargetRatio)
	}
	if e.ErrorBudget <= 0 {
		return fmt.Errorf("%w: error_budget %g must be positive", errs.ErrInvalidConfig, e.ErrorBudget)
	}
	if e.ControllerStep <= 0 || e.ControllerStep >= 1 {
		return fmt.Errorf("%w: controller_step %g out of range (0, 1)", errs.ErrInvalidConfig, e.ControllerStep)
	}
	if e.RatioWindow <= 0 {
		return fmt.Errorf("%w: ratio_window %d must be positive", errs.ErrInvalidConfig, e.RatioWindow)
	}
	if e.SampleInterval <= 0 {
		return fmt.Errorf("%w: sample_interval must be positive", errs.ErrInvalidConfig)
	}
	if _, err := e.TrailingModeValue(); err != nil {
		return err
	}
	if _, err := e.CompressionValue(); err != nil {
		return err
	}
	if c.Runner.Workers <= 0 {
		return fmt.Errorf("%w: workers %d must be positive", errs.ErrInvalidConfig, c.Runner.Workers)
	}

	return nil
}

// TrailingModeValue maps the trailing_mode string to its wire enum.
func (e Engine) TrailingModeValue() (format.TrailingMode, error) {
	switch e.TrailingMode {
	case "flush":
		return format.TrailingFlush, nil
	case "buffer":
		return format.TrailingBuffer, nil
	default:
		return 0, fmt.Errorf("%w: trailing_mode %q (want flush or buffer)", errs.ErrInvalidConfig, e.TrailingMode)
	}
}

// CompressionValue maps the compression string to its wire enum.
func (e Engine) CompressionValue() (format.CompressionType, error) {
	switch e.Compression {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: compression %q (want none, zstd, s2 or lz4)", errs.ErrInvalidConfig, e.Compression)
	}
}
