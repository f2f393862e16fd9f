package optimization

import "encoding/json"

// ObjectiveFunction defines the scalar function to be minimized.
// Implementations must be pure: repeated calls with the same point return
// the same value with no side effects visible to the optimizer.
type ObjectiveFunction func(x []float64) (float64, error)

// Status is the terminal state of an optimization run.
type Status int

const (
	// Converged means the simplex value spread dropped below tolerance.
	Converged Status = iota

	// Exhausted means the iteration budget ran out before convergence.
	// This is a normal terminal state, not an error.
	Exhausted
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Solution represents a point in the optimization space paired with its
// objective value.
type Solution struct {
	Point []float64 `json:"point"`
	Value float64   `json:"value"`
}

// CloneSolution returns a copy of s that shares no memory with it.
func CloneSolution(s Solution) Solution {
	return Solution{
		Point: append([]float64(nil), s.Point...),
		Value: s.Value,
	}
}
