package optimization

import (
	"math"
	"math/rand"
	"testing"
)

// testObjectiveFunc is a simple quadratic objective function for testing
func testObjectiveFunc(x []float64) (float64, error) {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

// testNoisyObjectiveFunc adds random noise to the objective function
func testNoisyObjectiveFunc(noiseScale float64) ObjectiveFunction {
	return func(x []float64) (float64, error) {
		val, _ := testObjectiveFunc(x)
		return val + noiseScale*(rand.Float64()-0.5), nil
	}
}

// assertFloat64SlicesEqual checks if two float64 slices are approximately equal
func assertFloat64SlicesEqual(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("at index %d: got %v, want %v (tolerance %v)", i, got[i], want[i], tol)
		}
	}
}

// generateRandomPoint generates a random point with coordinates in [min, max]
func generateRandomPoint(dim int, min, max float64) []float64 {
	p := make([]float64, dim)
	for i := range p {
		p[i] = min + rand.Float64()*(max-min)
	}
	return p
}
