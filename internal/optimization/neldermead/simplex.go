package neldermead

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Vertex pairs a simplex point with its objective value.
type Vertex struct {
	Point []float64 `json:"point"`
	Value float64   `json:"value"`
}

// Simplex is the working set of dim+1 vertices. After each iteration it is
// kept sorted ascending by value: index 0 holds the best vertex and the
// last index the worst.
type Simplex []Vertex

// NewSimplex builds the initial simplex around a starting point: the point
// itself plus one copy per coordinate with that coordinate increased by
// step. Construction is deterministic. Values are unset until the first
// evaluation.
func NewSimplex(start []float64, step float64) Simplex {
	n := len(start)
	s := make(Simplex, 0, n+1)
	s = append(s, Vertex{Point: append([]float64(nil), start...)})
	for i := 0; i < n; i++ {
		p := append([]float64(nil), start...)
		p[i] += step
		s = append(s, Vertex{Point: p})
	}
	return s
}

// Dim returns the dimension of the space the simplex lives in.
func (s Simplex) Dim() int {
	return len(s) - 1
}

// Clone returns a deep copy of the simplex sharing no memory with the
// original, so history snapshots stay untouched by later iterations.
func (s Simplex) Clone() Simplex {
	out := make(Simplex, len(s))
	for i, v := range s {
		out[i] = Vertex{
			Point: append([]float64(nil), v.Point...),
			Value: v.Value,
		}
	}
	return out
}

// Best returns the current best vertex.
func (s Simplex) Best() Vertex {
	return s[0]
}

// Spread returns the difference between the worst and best values, the
// quantity tested against the convergence tolerance.
func (s Simplex) Spread() float64 {
	return s[len(s)-1].Value - s[0].Value
}

// Centroid returns the arithmetic mean of all points excluding the worst.
func (s Simplex) Centroid() []float64 {
	c := make([]float64, s.Dim())
	for _, v := range s[:len(s)-1] {
		floats.Add(c, v.Point)
	}
	floats.Scale(1/float64(len(s)-1), c)
	return c
}

// sortByValue orders vertices ascending by value. The sort is stable so
// exact value ties keep their current relative order, keeping runs
// reproducible.
func (s Simplex) sortByValue() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Value < s[j].Value })
}

// replaceWorst swaps the worst vertex for the given candidate.
func (s Simplex) replaceWorst(point []float64, value float64) {
	s[len(s)-1] = Vertex{Point: point, Value: value}
}
