// Package neldermead implements derivative-free minimization of a scalar
// multivariate function with the Nelder-Mead simplex method.
package neldermead

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/optserve/simplexd/internal/optimization"
)

// Classical Nelder-Mead coefficients. They are part of the method, not
// tunables.
const (
	reflection  = 1.0
	expansion   = 2.0
	contraction = 0.5
	shrink      = 0.5
)

const component = "neldermead"

// Config contains the parameters of a single optimization run.
type Config struct {
	// Objective is the function to minimize.
	Objective optimization.ObjectiveFunction

	// Start is the point the initial simplex is built around.
	Start []float64

	// Step is the per-coordinate perturbation used to build the initial
	// simplex. A zero step degenerates the simplex and is rejected.
	Step float64

	// Tolerance is the convergence threshold on the simplex value spread
	// (worst minus best). Must be positive.
	Tolerance float64

	// MaxIterations bounds the number of iterations. Zero is allowed and
	// returns the best vertex of the initial simplex without reflecting.
	MaxIterations int

	// Logger receives per-iteration debug logging. Optional.
	Logger *zap.Logger
}

// Result contains the outcome of an optimization run.
type Result struct {
	// Best is the best solution found.
	Best optimization.Solution

	// Iterations is the iteration counter at termination.
	Iterations int

	// Status reports whether the run converged or exhausted its budget.
	Status optimization.Status

	// Evaluations is the total number of objective function calls.
	Evaluations int

	// History holds a snapshot of the sorted simplex at the end of each
	// iteration, including the terminal one. It is never read by the
	// optimizer itself; it exists for post-hoc inspection.
	History []Simplex
}

// Optimizer runs the Nelder-Mead simplex method. Each Optimizer owns its
// simplex and history exclusively; it is not safe for concurrent use.
type Optimizer struct {
	cfg         Config
	logger      *zap.Logger
	evaluations int
}

// New validates the configuration and creates an Optimizer.
func New(cfg Config) (*Optimizer, error) {
	if cfg.Objective == nil {
		return nil, optimization.NewError(component, "configure", "objective function is required")
	}
	if len(cfg.Start) == 0 {
		return nil, optimization.NewError(component, "configure", "starting point must have at least one coordinate")
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

	cfg.Start = append([]float64(nil), cfg.Start...)
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Optimizer{cfg: cfg, logger: logger}, nil
}

// Optimize iterates the simplex until the value spread drops below the
// tolerance or the iteration budget runs out. The returned history always
// has one entry per iteration plus the terminal snapshot.
func (o *Optimizer) Optimize(ctx context.Context) (*Result, error) {
	simplex := NewSimplex(o.cfg.Start, o.cfg.Step)
	history := make([]Simplex, 0, o.cfg.MaxIterations+1)

	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := o.evaluateAll(simplex); err != nil {
			return nil, err
		}
		simplex.sortByValue()
		history = append(history, simplex.Clone())

		if simplex.Spread() < o.cfg.Tolerance {
			o.logger.Debug("converged",
				zap.Int("iterations", iter),
				zap.Float64("best_value", simplex.Best().Value))
			return o.result(simplex, iter, optimization.Converged, history), nil
		}

		if iter == o.cfg.MaxIterations {
			o.logger.Debug("iteration budget exhausted",
				zap.Int("iterations", iter),
				zap.Float64("best_value", simplex.Best().Value))
			return o.result(simplex, iter, optimization.Exhausted, history), nil
		}

		if err := o.step(simplex); err != nil {
			return nil, err
		}
	}
}

// step performs one reflection/expansion/contraction/shrink update on the
// sorted simplex, replacing the worst vertex in place.
func (o *Optimizer) step(s Simplex) error {
	worst := s[len(s)-1]
	bestValue := s.Best().Value
	// Captured at sort time, before any in-iteration replacement.
	secondWorstValue := s[len(s)-2].Value

	centroid := s.Centroid()
	reflected := affine(centroid, reflection, centroid, worst.Point)
	fReflected, err := o.evaluate(reflected)
	if err != nil {
		return err
	}

	switch {
	case fReflected < bestValue:
		expanded := affine(centroid, expansion, reflected, centroid)
		fExpanded, err := o.evaluate(expanded)
		if err != nil {
			return err
		}
		if fExpanded < fReflected {
			s.replaceWorst(expanded, fExpanded)
		} else {
			s.replaceWorst(reflected, fReflected)
		}

	case fReflected < secondWorstValue:
		s.replaceWorst(reflected, fReflected)

	default:
		contracted := affine(centroid, contraction, worst.Point, centroid)
		fContracted, err := o.evaluate(contracted)
		if err != nil {
			return err
		}
		if fContracted < worst.Value {
			s.replaceWorst(contracted, fContracted)
		} else {
			// Shrink every vertex except the best toward it. No evaluation
			// happens here; values are recomputed next iteration.
			best := s.Best()
			for i := 1; i < len(s); i++ {
				s[i].Point = affine(best.Point, shrink, s[i].Point, best.Point)
			}
		}
	}
	return nil
}

// evaluateAll computes the objective at every vertex of the simplex.
func (o *Optimizer) evaluateAll(s Simplex) error {
	for i := range s {
		value, err := o.evaluate(s[i].Point)
		if err != nil {
			return err
		}
		s[i].Value = value
	}
	return nil
}

// evaluate calls the objective once, counting the call. Evaluation errors
// are annotated and propagated; non-finite values flow through untouched.
func (o *Optimizer) evaluate(x []float64) (float64, error) {
	value, err := o.cfg.Objective(x)
	if err != nil {
		return 0, optimization.WrapError(err, component, "evaluate", "objective evaluation failed")
	}
	o.evaluations++
	return value, nil
}

func (o *Optimizer) result(s Simplex, iterations int, status optimization.Status, history []Simplex) *Result {
	best := s.Best()
	return &Result{
		Best: optimization.Solution{
			Point: append([]float64(nil), best.Point...),
			Value: best.Value,
		},
		Iterations:  iterations,
		Status:      status,
		Evaluations: o.evaluations,
		History:     history,
	}
}

// affine returns p + coef*(a-b) without mutating its arguments.
func affine(p []float64, coef float64, a, b []float64) []float64 {
	out := make([]float64, len(p))
	floats.SubTo(out, a, b)
	floats.Scale(coef, out)
	floats.Add(out, p)
	return out
}
