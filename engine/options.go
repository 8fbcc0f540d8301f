package engine

import (
	"fmt"

	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
	"github.com/sensorstream/windowpack/internal/options"
	"github.com/sensorstream/windowpack/section"
	"github.com/sensorstream/windowpack/stats"
)

// sessionConfig is the resolved compressor configuration.
type sessionConfig struct {
	windowSize   int
	poolCapacity int
	arity        int
	trailing     format.TrailingMode

	initialThreshold float64
	minThreshold     float64
	maxThreshold     float64
	targetRatio      float64
	errorBudget      float64
	controllerStep   float64
	lastK            int

	dist  DistanceFunc
	stats *stats.Session
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		windowSize:       16,
		poolCapacity:     8,
		arity:            1,
		trailing:         format.TrailingFlush,
		initialThreshold: 0.1,
		minThreshold:     1e-6,
		maxThreshold:     10,
		targetRatio:      4,
		errorBudget:      0.5,
		controllerStep:   0.05,
		lastK:            16,
		dist:             MeanAbsoluteDistance,
	}
}

func (c *sessionConfig) validate() error {
	if c.windowSize <= 0 || c.windowSize > section.MaxWindowSize {
		return fmt.Errorf("%w: window size %d out of range [1, %d]", errs.ErrInvalidConfig, c.windowSize, section.MaxWindowSize)
	}
	if c.poolCapacity <= 0 || c.poolCapacity > section.MaxPoolCapacity {
		return fmt.Errorf("%w: pool capacity %d out of range [1, %d]", errs.ErrInvalidConfig, c.poolCapacity, section.MaxPoolCapacity)
	}
	if c.arity <= 0 || c.arity > section.MaxArity {
		return fmt.Errorf("%w: arity %d out of range [1, %d]", errs.ErrInvalidConfig, c.arity, section.MaxArity)
	}
	if c.minThreshold < 0 || c.maxThreshold < c.minThreshold {
		return fmt.Errorf("%w: threshold bounds [%g, %g]", errs.ErrInvalidConfig, c.minThreshold, c.maxThreshold)
	}
	if c.initialThreshold < c.minThreshold || c.initialThreshold > c.maxThreshold {
		return fmt.Errorf("%w: initial threshold %g outside [%g, %g]", errs.ErrInvalidConfig, c.initialThreshold, c.minThreshold, c.maxThreshold)
	}
	if c.targetRatio < 1 {
		return fmt.Errorf("%w: target ratio %g must be >= 1", errs.ErrInvalidConfig, c.targetRatio)
	}
	if c.errorBudget <= 0 {
		return fmt.Errorf("%w: error budget %g must be positive", errs.ErrInvalidConfig, c.errorBudget)
	}
	if c.controllerStep <= 0 || c.controllerStep >= 1 {
		return fmt.Errorf("%w: controller step %g out of range (0, 1)", errs.ErrInvalidConfig, c.controllerStep)
	}
	if c.lastK <= 0 {
		return fmt.Errorf("%w: last-K depth %d must be positive", errs.ErrInvalidConfig, c.lastK)
	}
	if c.dist == nil {
		return fmt.Errorf("%w: nil distance function", errs.ErrInvalidConfig)
	}

	return nil
}

// CompressorOption configures NewCompressor.
type CompressorOption = options.Option[*sessionConfig]

func applyCompressorOptions(cfg *sessionConfig, opts []CompressorOption) error {
	return options.Apply(cfg, opts...)
}

// WithWindowSize sets the window length W in samples.
func WithWindowSize(n int) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.windowSize = n })
}

// WithPoolCapacity sets the exemplar pool capacity.
func WithPoolCapacity(n int) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.poolCapacity = n })
}

// WithArity sets the per-sample value vector width.
func WithArity(n int) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.arity = n })
}

// WithTrailingMode sets the trailing partial-window policy.
func WithTrailingMode(mode format.TrailingMode) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.trailing = mode })
}

// WithInitialThreshold sets the acceptance threshold for the first window.
func WithInitialThreshold(t float64) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.initialThreshold = t })
}

// WithThresholdBounds clamps the adaptive threshold to [minT, maxT].
func WithThresholdBounds(minT, maxT float64) CompressorOption {
	return options.NoError(func(c *sessionConfig) {
		c.minThreshold = minT
		c.maxThreshold = maxT
	})
}

// WithTargetRatio sets the compression gain (raw/encoded, >= 1) the
// threshold controller steers toward.
func WithTargetRatio(r float64) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.targetRatio = r })
}

// WithErrorBudget bounds the rolling mean match distance; when exceeded the
// controller lowers the threshold regardless of gain.
func WithErrorBudget(b float64) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.errorBudget = b })
}

// WithControllerStep sets the controller's multiplicative step in (0, 1).
func WithControllerStep(s float64) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.controllerStep = s })
}

// WithLastK sets the rolling observation depth of the threshold controller.
func WithLastK(k int) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.lastK = k })
}

// WithDistanceFunc replaces the default MeanAbsoluteDistance.
func WithDistanceFunc(fn DistanceFunc) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.dist = fn })
}

// WithStats attaches a statistics session updated after every window.
func WithStats(s *stats.Session) CompressorOption {
	return options.NoError(func(c *sessionConfig) { c.stats = s })
}

// FixedThreshold pins the threshold to t for the whole session by collapsing
// the bounds, disabling controller movement. Useful for tests and for
// reproducing a known operating point.
func FixedThreshold(t float64) CompressorOption {
	return options.NoError(func(c *sessionConfig) {
		c.initialThreshold = t
		c.minThreshold = t
		c.maxThreshold = t
	})
}
