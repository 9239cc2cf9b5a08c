package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/heshanpadmasiri/nunitMSTest/workspace"
)

type reporter struct {
	w         io.Writer
	processed *color.Color
	skipped   *color.Color
	problem   *color.Color
}

func newReporter(w io.Writer) *reporter {
	return &reporter{
		w:         w,
		processed: color.New(color.FgGreen),
		skipped:   color.New(color.FgYellow),
		problem:   color.New(color.FgRed),
	}
}

// report prints one line per file followed by its diagnostics and returns the
// number of diagnostics
func (rep *reporter) report(results []workspace.FileResult) int {
	unsupported := 0
	changed := 0
	for _, result := range results {
		switch {
		case result.Err != nil:
			rep.problem.Fprintf(rep.w, "Failed %s: %v\n", result.Path, result.Err)
			continue
		case result.Skipped:
			rep.skipped.Fprintf(rep.w, "Skipped %s\n", result.Path)
			continue
		}
		rep.processed.Fprintf(rep.w, "Processed %s\n", result.Path)
		if result.Changed {
			changed++
		}
		for _, d := range result.Diagnostics {
			rep.problem.Fprintf(rep.w, "%s: %s\n", result.Path, d)
			unsupported++
		}
	}
	fmt.Fprintf(rep.w, "Changed %d documents\n", changed)
	return unsupported
}
