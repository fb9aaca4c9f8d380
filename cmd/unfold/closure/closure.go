// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package closure implements a command to perform
// a closure test of the simulated events of a project.
package closure

import (
	"fmt"
	"log/slog"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/metrics"
	"github.com/js-arias/unfold/project"
)

var Command = &command.Command{
	Usage: `closure [--method <name>] [--iterations <number>]
	<project-file>`,
	Short: "perform a closure test",
	Long: `
Command closure reads the simulated events of an unfold project, corrects the
simulated reconstructed distribution, and compares the result with the
simulated true distribution. As both distributions come from the same
events, a valid correction should reproduce the true distribution.

The argument of the command is the name of the project file.

The test uses the parameters of the project (see 'unfold param'). The flag
--method can be used to set a different correction method, and the flag
--iterations to set a different number of iterations.

The result of the comparison is printed in the standard output. The test is
passed if the chi-squared is smaller than the number of bins, and the
Kolmogorov-Smirnov probability is greater than the inverse of the number of
bins.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var method string
var iterations int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&method, "method", "", "")
	c.Flags().IntVar(&iterations, "iterations", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	cfg := correction.Config{
		Logger:  slog.New(slog.NewTextHandler(c.Stderr(), nil)),
		Metrics: metrics.Discard(),
	}
	corr, up, err := p.Corrector(method, "closure", cfg)
	if err != nil {
		return err
	}

	it := up.Iterations()
	if iterations > 0 {
		it = iterations
	}
	r, passed, err := corr.ClosureTest(it, up.Smooth())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "method:      %s\n", corr.Name())
	fmt.Fprintf(c.Stdout(), "chi2:        %.6f\n", r.Chi2)
	fmt.Fprintf(c.Stdout(), "ndf:         %d\n", r.NDF)
	fmt.Fprintf(c.Stdout(), "p-value:     %.6f\n", r.PValue)
	fmt.Fprintf(c.Stdout(), "ks:          %.6f\n", r.KS)
	fmt.Fprintf(c.Stdout(), "avg. dev.:   %.6f\n", r.AvgDeviation)
	fmt.Fprintf(c.Stdout(), "max. dev.:   %.6f\n", r.MaxDeviation)
	fmt.Fprintf(c.Stdout(), "closure:     %s\n", metrics.Result(passed))
	return nil
}
