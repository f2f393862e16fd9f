// Package report renders textual summaries of optimization runs for human
// monitoring. It consumes the immutable iteration history produced by the
// optimizer and owns all rendering state itself; nothing here reaches back
// into a running optimization.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/optserve/simplexd/internal/optimization/multistart"
	"github.com/optserve/simplexd/internal/optimization/neldermead"
)

// WriteRunSummaries writes a per-run table for a multi-start result,
// followed by the globally best solution.
func WriteRunSummaries(w io.Writer, res *multistart.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tVALUE\tITERATIONS\tSTATUS\tPOINT")
	for _, run := range res.Runs {
		fmt.Fprintf(tw, "%d\t%.6e\t%d\t%s\t%v\n",
			run.Run, run.Best.Value, run.Iterations, run.Status, run.Best.Point)
	}
	fmt.Fprintf(tw, "best\t%.6e\t\t\t%v\n", res.Best.Value, res.Best.Point)
	return tw.Flush()
}

// WriteHistory writes one line per iteration record: the best value and the
// value spread of the simplex at the end of that iteration.
func WriteHistory(w io.Writer, history []neldermead.Simplex) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITERATION\tBEST\tSPREAD")
	for k, s := range history {
		fmt.Fprintf(tw, "%d\t%.6e\t%.6e\n", k, s.Best().Value, s.Spread())
	}
	return tw.Flush()
}

// WriteResult writes the terminal summary of a single optimizer run
// followed by its iteration history.
func WriteResult(w io.Writer, res *neldermead.Result) error {
	fmt.Fprintf(w, "%s after %d iterations (%d evaluations): value %.6e at %v\n\n",
		res.Status, res.Iterations, res.Evaluations, res.Best.Value, res.Best.Point)
	return WriteHistory(w, res.History)
}
