package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optserve/simplexd/internal/optimization"
	"github.com/optserve/simplexd/internal/optimization/multistart"
	"github.com/optserve/simplexd/internal/optimization/neldermead"
)

func sampleHistory() []neldermead.Simplex {
	return []neldermead.Simplex{
		{
			{Point: []float64{1, 1}, Value: 3},
			{Point: []float64{1.1, 1}, Value: 4},
			{Point: []float64{1, 1.1}, Value: 5},
		},
		{
			{Point: []float64{0.5, 0.5}, Value: 1},
			{Point: []float64{1, 1}, Value: 3},
			{Point: []float64{1.1, 1}, Value: 4},
		},
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistory(&buf, sampleHistory())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3, "header plus one line per iteration record")
	assert.Contains(t, lines[0], "ITERATION")
	assert.Contains(t, lines[0], "SPREAD")
	assert.Contains(t, lines[1], "3.000000e+00")
}

func TestWriteResult(t *testing.T) {
	res := &neldermead.Result{
		Best:        optimization.Solution{Point: []float64{0.5, 0.5}, Value: 1},
		Iterations:  1,
		Status:      optimization.Converged,
		Evaluations: 8,
		History:     sampleHistory(),
	}

	var buf bytes.Buffer
	err := WriteResult(&buf, res)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "converged after 1 iterations")
	assert.Contains(t, out, "8 evaluations")
	assert.Contains(t, out, "ITERATION")
}

func TestWriteRunSummaries(t *testing.T) {
	res := &multistart.Result{
		Best: optimization.Solution{Point: []float64{0, 0}, Value: 0.5},
		Runs: []multistart.RunSummary{
			{Run: 1, Start: []float64{1, 1}, Best: optimization.Solution{Point: []float64{0, 0}, Value: 0.5}, Iterations: 30, Status: optimization.Converged},
			{Run: 2, Start: []float64{2, 2}, Best: optimization.Solution{Point: []float64{1, 0}, Value: 1.5}, Iterations: 50, Status: optimization.Exhausted},
		},
	}

	var buf bytes.Buffer
	err := WriteRunSummaries(&buf, res)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "converged")
	assert.Contains(t, out, "exhausted")
	assert.Contains(t, out, "best")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4, "header, two runs, best line")
}
