package neldermead

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/optserve/simplexd/internal/optimization"
)

// weightedQuadratic is x1^2 + 2*x2^2 + 3*x3^2, minimum 0 at the origin.
func weightedQuadratic(x []float64) (float64, error) {
	return x[0]*x[0] + 2*x[1]*x[1] + 3*x[2]*x[2], nil
}

// quarticValley is (x1-2)^4 + (x1-2*x2)^2, minimum 0 at (2, 1).
func quarticValley(x []float64) (float64, error) {
	a := x[0] - 2
	b := x[0] - 2*x[1]
	return a*a*a*a + b*b, nil
}

func TestNewValidation(t *testing.T) {
	valid := Config{
		Objective:     weightedQuadratic,
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 100,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nil objective", func(c *Config) { c.Objective = nil }},
		{"empty start", func(c *Config) { c.Start = nil }},
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1e-6 }},
		{"negative max iterations", func(c *Config) { c.MaxIterations = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			opt, err := New(cfg)
			require.Error(t, err)
			assert.Nil(t, opt)

			optErr, ok := optimization.IsOptimizationError(err)
			require.True(t, ok, "validation failures should be optimization errors")
			assert.Equal(t, "neldermead", optErr.Component)
		})
	}

	opt, err := New(valid)
	require.NoError(t, err)
	assert.NotNil(t, opt)
}

func TestNewCopiesStart(t *testing.T) {
	start := []float64{1, 1, 1}
	opt, err := New(Config{
		Objective:     weightedQuadratic,
		Start:         start,
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 10,
	})
	require.NoError(t, err)

	start[0] = 42
	assert.Equal(t, 1.0, opt.cfg.Start[0], "config must not alias the caller's slice")
}

func TestOptimizeWeightedQuadratic(t *testing.T) {
	opt, err := New(Config{
		Objective:     weightedQuadratic,
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 1000,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, optimization.Converged, res.Status, "should converge, not exhaust")
	assert.Less(t, res.Iterations, 1000)
	assert.InDelta(t, 0.0, res.Best.Value, 1e-4)

	dist := floats.Distance(res.Best.Point, []float64{0, 0, 0}, 2)
	assert.Less(t, dist, 1e-3, "should land within 1e-3 of the origin")
}

func TestOptimizeQuarticValley(t *testing.T) {
	opt, err := New(Config{
		Objective:     quarticValley,
		Start:         []float64{1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 1000,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, optimization.Converged, res.Status)
	// The valley floor is flat, so only value convergence is asserted.
	assert.LessOrEqual(t, res.Best.Value, 1e-4)
}

func TestHistoryInvariants(t *testing.T) {
	tests := []struct {
		name          string
		maxIterations int
		wantStatus    optimization.Status
	}{
		{"converged", 1000, optimization.Converged},
		{"exhausted", 3, optimization.Exhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := New(Config{
				Objective:     weightedQuadratic,
				Start:         []float64{1, 1, 1},
				Step:          0.1,
				Tolerance:     1e-6,
				MaxIterations: tt.maxIterations,
			})
			require.NoError(t, err)

			res, err := opt.Optimize(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Len(t, res.History, res.Iterations+1,
				"history holds one snapshot per iteration plus the terminal one")

			// Every snapshot is sorted ascending by value, and the best
			// value never gets worse from one iteration to the next.
			prevBest := math.Inf(1)
			for k, s := range res.History {
				for i := 1; i < len(s); i++ {
					assert.LessOrEqual(t, s[i-1].Value, s[i].Value,
						"snapshot %d must be sorted", k)
				}
				assert.LessOrEqual(t, s.Best().Value, prevBest,
					"best value must be non-increasing at iteration %d", k)
				prevBest = s.Best().Value
			}
		})
	}
}

func TestHistorySnapshotsAreIndependent(t *testing.T) {
	opt, err := New(Config{
		Objective:     weightedQuadratic,
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 10,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)
	require.Greater(t, len(res.History), 1)

	// Later iterations must not have written through into earlier
	// snapshots: consecutive snapshots differ somewhere.
	first := res.History[0]
	last := res.History[len(res.History)-1]
	assert.NotEqual(t, first, last)
}

func TestMaxIterationsZero(t *testing.T) {
	opt, err := New(Config{
		Objective:     weightedQuadratic,
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 0,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, optimization.Exhausted, res.Status)
	assert.Equal(t, 0, res.Iterations)
	require.Len(t, res.History, 1, "only the initial sorted simplex is recorded")

	// The best is the best vertex of the initial simplex, untouched by any
	// reflection step.
	initial := NewSimplex([]float64{1, 1, 1}, 0.1)
	wantBest := math.Inf(1)
	for _, v := range initial {
		val, _ := weightedQuadratic(v.Point)
		wantBest = math.Min(wantBest, val)
	}
	assert.InDelta(t, wantBest, res.Best.Value, 1e-12)
	assert.Equal(t, 4, res.Evaluations)
}

func TestObjectiveErrorPropagates(t *testing.T) {
	sentinel := errors.New("objective blew up")
	calls := 0
	opt, err := New(Config{
		Objective: func(x []float64) (float64, error) {
			calls++
			if calls > 5 {
				return 0, sentinel
			}
			return x[0] * x[0], nil
		},
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 100,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel), "the underlying error must stay reachable")
}

func TestOptimizeCancelled(t *testing.T) {
	opt, err := New(Config{
		Objective:     weightedQuadratic,
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 1000,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := opt.Optimize(ctx)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluationsCounted(t *testing.T) {
	opt, err := New(Config{
		Objective:     weightedQuadratic,
		Start:         []float64{1, 1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 1000,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)

	// Each iteration evaluates all dim+1 vertices, plus one or two
	// candidate points per transform step.
	sweeps := (res.Iterations + 1) * 4
	assert.GreaterOrEqual(t, res.Evaluations, sweeps)
	assert.LessOrEqual(t, res.Evaluations, sweeps+2*res.Iterations)
}

func TestNonFiniteObjectiveDoesNotConverge(t *testing.T) {
	// NaN comparisons never trigger the convergence or replacement
	// branches, so the run deterministically exhausts its budget.
	opt, err := New(Config{
		Objective: func(x []float64) (float64, error) {
			return math.NaN(), nil
		},
		Start:         []float64{1, 1},
		Step:          0.1,
		Tolerance:     1e-6,
		MaxIterations: 20,
	})
	require.NoError(t, err)

	res, err := opt.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, optimization.Exhausted, res.Status)
	assert.Equal(t, 20, res.Iterations)
}
