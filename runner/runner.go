// Package runner orchestrates compression sessions across many devices. It
// owns the two concerns the engine deliberately leaves out: exclusive
// per-device session ownership and bounded parallel execution over a device
// batch.
package runner

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sensorstream/windowpack/config"
	"github.com/sensorstream/windowpack/engine"
	"github.com/sensorstream/windowpack/stats"
)

// Job is one device's backlog to compress.
type Job struct {
	Device  uint64
	Samples []engine.Sample
}

// Result is the outcome of one device session. Err is set when the session
// failed; the records emitted before the failure are still a valid stream
// prefix.
type Result struct {
	Device  uint64
	Records []engine.Record
	Stats   *stats.Session
	Err     error
}

// Runner executes device jobs in parallel with a bounded worker count.
// Distinct devices share no engine state, so parallelism is free; the
// registry guards against the same device appearing in two live sessions.
type Runner struct {
	cfg      config.Config
	registry *Registry
	logger   *slog.Logger
}

// New creates a runner. A nil logger defaults to slog.Default.
func New(cfg config.Config, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}, nil
}

// Registry returns the runner's session registry, shared with any streaming
// sessions the caller manages itself.
func (r *Runner) Registry() *Registry { return r.registry }

// CompressAll runs one compression session per job with at most
// cfg.Runner.Workers in flight. A failing device records its error in its
// Result and does not abort sibling devices; the returned error is non-nil
// only when ctx was cancelled, in which case every result holds either its
// completed output or ctx's error.
func (r *Runner) CompressAll(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(r.cfg.Runner.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = r.compressDevice(ctx, job)
			return nil
		})
	}

	// worker errors land in results, never here
	_ = g.Wait()

	return results, ctx.Err()
}

// compressDevice runs one full session. Cancellation is checked between
// window-sized pushes; stopping there leaves the emitted records a valid
// prefix.
func (r *Runner) compressDevice(ctx context.Context, job Job) Result {
	result := Result{Device: job.Device}

	if err := r.registry.Acquire(job.Device); err != nil {
		result.Err = err
		return result
	}
	defer r.registry.Release(job.Device)

	session := stats.NewSession()
	var records engine.Records

	c, err := engine.NewCompressor(job.Device, &records, r.compressorOptions(session)...)
	if err != nil {
		result.Err = err
		return result
	}

	r.logger.Info("session started",
		slog.Uint64("device", job.Device),
		slog.Int("samples", len(job.Samples)),
	)

	step := r.cfg.Engine.WindowSize
	for offset := 0; offset < len(job.Samples); offset += step {
		if err := ctx.Err(); err != nil {
			result.Err = err
			result.Records = records
			return result
		}

		end := min(offset+step, len(job.Samples))
		if err := c.Push(job.Samples[offset:end]...); err != nil {
			result.Err = err
			result.Records = records
			return result
		}
	}

	if err := c.Finish(); err != nil {
		result.Err = err
		result.Records = records
		return result
	}

	summary := session.Snapshot()
	r.logger.Info("session finished",
		slog.Uint64("device", job.Device),
		slog.Uint64("windows", summary.Windows),
		slog.Float64("match_rate", summary.MatchRate),
		slog.Float64("gain", summary.Gain),
	)

	result.Records = records
	result.Stats = session

	return result
}

func (r *Runner) compressorOptions(session *stats.Session) []engine.CompressorOption {
	e := r.cfg.Engine

	// enum fields were validated with the config
	trailing, _ := e.TrailingModeValue()

	return []engine.CompressorOption{
		engine.WithWindowSize(e.WindowSize),
		engine.WithPoolCapacity(e.PoolCapacity),
		engine.WithArity(e.Arity),
		engine.WithTrailingMode(trailing),
		engine.WithInitialThreshold(e.InitialThreshold),
		engine.WithThresholdBounds(e.MinThreshold, e.MaxThreshold),
		engine.WithTargetRatio(e.TargetRatio),
		engine.WithErrorBudget(e.ErrorBudget),
		engine.WithControllerStep(e.ControllerStep),
		engine.WithLastK(e.RatioWindow),
		engine.WithStats(session),
	}
}

// DecompressAll replays each result's record sequence, returning the
// reconstructed windows per device in the same order as records.
func (r *Runner) DecompressAll(ctx context.Context, records map[uint64][]engine.Record) (map[uint64][]engine.Window, error) {
	out := make(map[uint64][]engine.Window, len(records))

	for device, recs := range records {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		d, err := engine.NewDecompressor(device, r.cfg.Engine.PoolCapacity)
		if err != nil {
			return out, err
		}

		windows, err := d.ApplyAll(recs)
		if err != nil {
			return out, err
		}
		out[device] = windows
	}

	return out, nil
}
