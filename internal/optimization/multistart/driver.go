// Package multistart repeats the simplex search from random starting
// points to reduce sensitivity to local minima.
package multistart

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/optserve/simplexd/internal/metrics"
	"github.com/optserve/simplexd/internal/optimization"
	"github.com/optserve/simplexd/internal/optimization/neldermead"
)

const component = "multistart"

// Config contains the parameters of a multi-start search.
type Config struct {
	// Objective is the function to minimize.
	Objective optimization.ObjectiveFunction

	// Dim is the problem dimension.
	Dim int

	// Runs is the number of independent optimizer runs.
	Runs int

	// Min and Max bound the uniform sampling box for starting points,
	// applied to every coordinate.
	Min float64
	Max float64

	// Step, Tolerance and MaxIterations are forwarded to each optimizer
	// run. See neldermead.Config.
	Step          float64
	Tolerance     float64
	MaxIterations int

	// RandomSeed makes start sampling reproducible. Zero seeds from the
	// clock.
	RandomSeed int64

	// Logger receives per-run progress reporting. Optional.
	Logger *zap.Logger

	// Metrics records per-run instrumentation. Optional.
	Metrics *metrics.Collector
}

// RunSummary describes the outcome of one optimizer run within a
// multi-start search.
type RunSummary struct {
	Run        int                   `json:"run"`
	Start      []float64             `json:"start"`
	Best       optimization.Solution `json:"best"`
	Iterations int                   `json:"iterations"`
	Status     optimization.Status   `json:"status"`
}

// Result contains the globally best solution across all runs, plus the
// per-run summaries for the reporting layer.
type Result struct {
	Best optimization.Solution `json:"best"`
	Runs []RunSummary          `json:"runs"`
}

// Driver performs sequential independent optimizer runs and retains the
// best result. Each run draws its own starting point and owns its own
// simplex; the running best is the only state shared across runs.
type Driver struct {
	cfg    Config
	rng    *rand.Rand
	logger *zap.Logger
}

// New validates the configuration and creates a Driver.
func New(cfg Config) (*Driver, error) {
	if cfg.Objective == nil {
		return nil, optimization.NewError(component, "configure", "objective function is required")
	}
	if cfg.Dim < 1 {
		return nil, optimization.NewErrorf(component, "configure", "dimension must be at least 1, got %d", cfg.Dim)
	}
	if cfg.Runs < 1 {
		return nil, optimization.NewErrorf(component, "configure", "run count must be at least 1, got %d", cfg.Runs)
	}
	if !(cfg.Min < cfg.Max) {
		return nil, optimization.NewErrorf(component, "configure", "sampling range [%v, %v] is empty", cfg.Min, cfg.Max)
	}
	if cfg.Step == 0 {
		return nil, optimization.NewError(component, "configure", "step must be non-zero")
	}
	if cfg.Tolerance <= 0 {
		return nil, optimization.NewErrorf(component, "configure", "tolerance must be positive, got %v", cfg.Tolerance)
	}
	if cfg.MaxIterations < 0 {
		return nil, optimization.NewErrorf(component, "configure", "max iterations must be non-negative, got %d", cfg.MaxIterations)
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}, nil
}

// Run performs the configured number of optimizer runs and returns the
// globally best solution. The running best starts at +Inf and is replaced
// only on strict improvement, so ties keep the earlier result.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	best := optimization.Solution{Value: math.Inf(1)}
	summaries := make([]RunSummary, 0, d.cfg.Runs)

	for run := 1; run <= d.cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := d.samplePoint()
		opt, err := neldermead.New(neldermead.Config{
			Objective:     d.cfg.Objective,
			Start:         start,
			Step:          d.cfg.Step,
			Tolerance:     d.cfg.Tolerance,
			MaxIterations: d.cfg.MaxIterations,
			Logger:        d.logger,
		})
		if err != nil {
			return nil, err
		}

		res, err := opt.Optimize(ctx)
		if err != nil {
			return nil, err
		}
		d.cfg.Metrics.ObserveRun(res)

		d.logger.Info("run finished",
			zap.Int("run", run),
			zap.Int("runs", d.cfg.Runs),
			zap.Float64("value", res.Best.Value),
			zap.Float64s("point", res.Best.Point),
			zap.Int("iterations", res.Iterations),
			zap.Stringer("status", res.Status))

		summaries = append(summaries, RunSummary{
			Run:        run,
			Start:      start,
			Best:       res.Best,
			Iterations: res.Iterations,
			Status:     res.Status,
		})

		if res.Best.Value < best.Value {
			best = optimization.CloneSolution(res.Best)
		}
	}

	return &Result{Best: best, Runs: summaries}, nil
}

// samplePoint draws a starting point uniformly from the sampling box.
func (d *Driver) samplePoint() []float64 {
	p := make([]float64, d.cfg.Dim)
	for i := range p {
		p[i] = d.cfg.Min + d.rng.Float64()*(d.cfg.Max-d.cfg.Min)
	}
	return p
}
