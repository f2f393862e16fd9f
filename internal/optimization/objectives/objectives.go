// Package objectives provides the named benchmark functions the service
// can minimize. They are collaborators of the optimizer core, not part of
// it: anything matching optimization.ObjectiveFunction works.
package objectives

import (
	"math"
	"sort"

	"github.com/optserve/simplexd/internal/optimization"
)

// Sphere is the sum of squared coordinates, minimum 0 at the origin.
func Sphere(x []float64) (float64, error) {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

// WeightedSphere is x1^2 + 2*x2^2 + 3*x3^2 + ..., minimum 0 at the origin.
// The growing weights give each axis a different curvature.
func WeightedSphere(x []float64) (float64, error) {
	sum := 0.0
	for i, v := range x {
		sum += float64(i+1) * v * v
	}
	return sum, nil
}

// Valley is (x1-2)^4 + (x1-2*x2)^2, minimum 0 at (2, 1). The quartic term
// makes a flat valley floor that is hard to traverse. Needs at least two
// coordinates.
func Valley(x []float64) (float64, error) {
	if len(x) < 2 {
		return 0, optimization.NewErrorf("objectives", "valley", "needs at least 2 coordinates, got %d", len(x))
	}
	a := x[0] - 2
	b := x[0] - 2*x[1]
	return a*a*a*a + b*b, nil
}

// Rosenbrock is the classic banana valley, minimum 0 at (1, ..., 1). Needs
// at least two coordinates.
func Rosenbrock(x []float64) (float64, error) {
	if len(x) < 2 {
		return 0, optimization.NewErrorf("objectives", "rosenbrock", "needs at least 2 coordinates, got %d", len(x))
	}
	sum := 0.0
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum, nil
}

// Eggholder is a heavily multimodal 2D benchmark, useful for exercising
// multi-start behavior. Its global minimum is about -959.64 at
// (512, 404.23).
func Eggholder(x []float64) (float64, error) {
	if len(x) != 2 {
		return 0, optimization.NewErrorf("objectives", "eggholder", "needs exactly 2 coordinates, got %d", len(x))
	}
	a := -(x[1] + 47) * math.Sin(math.Sqrt(math.Abs(x[1]+x[0]/2+47)))
	b := -x[0] * math.Sin(math.Sqrt(math.Abs(x[0]-(x[1]+47))))
	return a + b, nil
}

var registry = map[string]optimization.ObjectiveFunction{
	"sphere":          Sphere,
	"weighted-sphere": WeightedSphere,
	"valley":          Valley,
	"rosenbrock":      Rosenbrock,
	"eggholder":       Eggholder,
}

// Lookup returns the objective registered under name.
func Lookup(name string) (optimization.ObjectiveFunction, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names returns the registered objective names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
