// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package correct implements a command to correct
// the measured distribution of a project.
package correct

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/metrics"
	"github.com/js-arias/unfold/project"
	"github.com/prometheus/client_golang/prometheus"
)

var Command = &command.Command{
	Usage: `correct [--method <name>] [--label <label>]
	[--cpu <number>] [-o|--output <prefix>]
	[--axis <dimension>] [--yoda] [--metrics <file>]
	<project-file>`,
	Short: "correct the measured distribution",
	Long: `
Command correct reads the simulated and measured events of an unfold project,
and corrects the measured distribution for the response of the detector.

The argument of the command is the name of the project file.

The correction uses the parameters of the project (see 'unfold param'). The
flag --method can be used to set a different correction method. The flag
--label sets the label of the prior (by default "mc").

By default, all available CPUs will be used in the calculation of the
covariance. Set the --cpu flag to use a different number of CPUs.

The results are written into files with the prefix defined by the "output"
dataset of the project, or "unfold" if it is not defined. Use the flag
--output, or -o, to set a different prefix. The following files are written:

	<prefix>-corrected.tab   the corrected distribution
	<prefix>-covariance.tab  the covariance matrix (error mode 2 or more)

The corrected distribution file contains the following columns:

	- bin        the flat index of the bin, or "bad" for the bad bin
	- index      the index of each dimension, separated by commas
	- center     the central value of each dimension, separated by commas
	- data       the measured distribution
	- truth      the simulated true distribution
	- corrected  the corrected distribution
	- variance   the variance of the corrected distribution (if calculated)

If the flag --axis is defined, and the bins are two dimensional, the
corrected distribution is delinearised along the indicated dimension and
written in the file "<prefix>-axis<dimension>.tab". The binning of the
measured events is checked against a direct profile of the events, and a
warning is logged if the binning is too coarse.

If the flag --yoda is defined, the histograms of the correction are written
in the file "<prefix>-hist.yoda" using the YODA format.

If the flag --metrics is defined, the metrics of the correction are written
in the indicated file using the Prometheus text format.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var method string
var label string
var output string
var metricsFile string
var numCPU int
var axis int
var yoda bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&method, "method", "", "")
	c.Flags().StringVar(&label, "label", "mc", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&metricsFile, "metrics", "", "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
	c.Flags().IntVar(&axis, "axis", -1, "")
	c.Flags().BoolVar(&yoda, "yoda", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(c.Stderr(), nil))
	reg := prometheus.NewRegistry()
	cfg := correction.Config{
		Logger:  logger,
		Metrics: metrics.New(reg),
		IDs:     correction.UUIDs{},
	}

	corr, up, err := p.Corrector(method, label, cfg)
	if err != nil {
		return err
	}

	data, err := p.Data()
	if err != nil {
		return err
	}
	for i, e := range data {
		if e.Kind != events.Data {
			return fmt.Errorf("on file %q: event %d: got kind %q, want %q", p.Path(project.Data), i, e.Kind, events.Data)
		}
	}
	if err := events.Feed(corr, data); err != nil {
		return fmt.Errorf("on file %q: %v", p.Path(project.Data), err)
	}

	opts := up.Options()
	if numCPU > 0 {
		opts.CPU = numCPU
	}
	if err := corr.Correct(opts); err != nil {
		return err
	}

	prefix := output
	if prefix == "" {
		prefix = p.Path(project.Output)
	}
	if prefix == "" {
		prefix = "unfold"
	}

	if err := writeCorrected(prefix+"-corrected.tab", args[0], corr); err != nil {
		return err
	}
	if cov, err := corr.Covariance(); err == nil {
		if err := writeCovariance(prefix+"-covariance.tab", args[0], corr, cov); err != nil {
			return err
		}
	} else if !errors.Is(err, correction.ErrNoCovariance) {
		return err
	}

	if axis >= 0 {
		if err := delinearise(prefix, args[0], corr, data, axis, up.Tolerance(), logger); err != nil {
			return err
		}
	}

	if yoda {
		if err := writeYODA(prefix+"-hist.yoda", corr); err != nil {
			return err
		}
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return err
		}
	}
	return nil
}

func delinearise(prefix, name string, corr correction.Corrector, data []events.Event, axis int, tol compare.Tolerance, logger *slog.Logger) error {
	uncorrected, err := corr.Uncorrected()
	if err != nil {
		return err
	}
	ix := uncorrected.Indexer()
	if ix.Dims() != 2 {
		return fmt.Errorf("delinearise: %w: got %d dimensions, want 2", binning.ErrDimension, ix.Dims())
	}
	ax, err := ix.Axis(axis)
	if err != nil {
		return err
	}

	prof, err := compare.NewProfile(ax)
	if err != nil {
		return err
	}
	other := 1 - axis
	for _, e := range data {
		if err := prof.Fill(e.Reco[axis], e.Reco[other], e.Weight); err != nil {
			return err
		}
	}
	var bq *compare.BinningQualityError
	err = compare.CheckDelinearisation(prof, uncorrected, axis, tol)
	if errors.As(err, &bq) {
		logger.Warn("binning too coarse",
			"axis", bq.Axis,
			"max-deviation", bq.MaxDeviation,
			"avg-deviation", bq.AvgDeviation,
			"suggested-width", bq.Width,
		)
	} else if err != nil {
		return err
	}

	corrected, err := corr.Corrected()
	if err != nil {
		return err
	}
	del, err := compare.Delinearise(corrected, axis)
	if err != nil {
		return err
	}
	return writeProfile(fmt.Sprintf("%s-axis%d.tab", prefix, axis), name, axis, del)
}
