// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to simulate
// toy events for a project.
package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/project"
	"github.com/js-arias/unfold/toy"
	"golang.org/x/exp/rand"
)

var Command = &command.Command{
	Usage: `sim [-o|--output <prefix>]
	--truth <shape>... [--sigma <values>] [--bias <values>]
	[--eff <value>] [--fakes <value>]
	[--mc <number>] [--data <number>] [--ref <number>]
	[--bins <number>] [--seed <number>] <project-file>`,
	Short: "simulate toy events",
	Long: `
Command sim creates simulated and measured toy events for an unfold project.
The true values are drawn from a continuous distribution, and the
reconstructed values are smeared by a detector with a gaussian resolution.

The argument of the command is the name of the project file. If the project
does not exist, a new project is created.

The flag --truth is required and defines the shape of the true values of a
dimension, with the form "name:param,param". Each use of the flag defines a
new dimension. Valid shapes are:

	uniform:min,max
	normal:mean,sd
	exponential:rate
	gamma:shape,rate
	lognormal:mean,sd

The flag --sigma defines the resolution of the detector in each dimension, as
a list of values separated by commas (by default 1 for each dimension). The
flag --bias defines a shift of the reconstructed values in each dimension. The
flag --eff defines the probability of reconstructing an event (by default
0.9), and the flag --fakes the expected number of fake events per true event
(by default 0).

By default, 100000 simulated events and 10000 measured events will be
created. Use the flags --mc and --data to define different numbers. If the
flag --ref is defined, an independent simulated sample with the indicated
number of events is created as the reference sample of the project.

If the flag --bins is defined, and the project does not have bins, each
dimension is divided in the indicated number of bins, with edges set so each
bin has the same probability of the true shape.

The events are written in files with the prefix "sim", use the flag --output,
or -o, to set a different prefix.

By default, the random seed is taken from the current time. Use the flag
--seed to set a fixed seed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var sigmaFlag string
var biasFlag string
var truthFlags []string
var efficiency float64
var fakeRate float64
var numMC int
var numData int
var numRef int
var numBins int
var seed int64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "sim", "")
	c.Flags().StringVar(&output, "o", "sim", "")
	c.Flags().StringVar(&sigmaFlag, "sigma", "", "")
	c.Flags().StringVar(&biasFlag, "bias", "", "")
	c.Flags().Func("truth", "", func(s string) error {
		truthFlags = append(truthFlags, s)
		return nil
	})
	c.Flags().Float64Var(&efficiency, "eff", 0.9, "")
	c.Flags().Float64Var(&fakeRate, "fakes", 0, "")
	c.Flags().IntVar(&numMC, "mc", 100_000, "")
	c.Flags().IntVar(&numData, "data", 10_000, "")
	c.Flags().IntVar(&numRef, "ref", 0, "")
	c.Flags().IntVar(&numBins, "bins", 0, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(truthFlags) == 0 {
		return c.UsageError("flag --truth undefined")
	}

	p, err := project.Read(args[0])
	if errors.Is(err, fs.ErrNotExist) {
		p = project.New()
		p.SetName(args[0])
	} else if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewSource(uint64(seed))

	shapes := make([]toy.Shape, 0, len(truthFlags))
	for _, s := range truthFlags {
		sh, err := toy.ParseShape(s, src)
		if err != nil {
			return err
		}
		shapes = append(shapes, sh)
	}

	det := toy.Detector{
		Efficiency: efficiency,
		FakeRate:   fakeRate,
	}
	det.Sigma, err = parseValues(sigmaFlag, len(shapes), 1)
	if err != nil {
		return fmt.Errorf("flag --sigma: %v", err)
	}
	det.Bias, err = parseValues(biasFlag, len(shapes), 0)
	if err != nil {
		return fmt.Errorf("flag --bias: %v", err)
	}

	g, err := toy.New(shapes, det, src)
	if err != nil {
		return err
	}

	if numBins > 0 && p.Path(project.Bins) == "" {
		es := make([][]float64, len(shapes))
		for i, s := range shapes {
			es[i] = toy.Edges(s, numBins)
		}
		ix, err := binning.NewCustom(es...)
		if err != nil {
			return err
		}
		name := output + "-bins.tab"
		if err := writeFile(name, func(bw *bufio.Writer) error {
			return binning.WriteTSV(bw, ix)
		}); err != nil {
			return err
		}
		if _, err := p.Add(project.Bins, name); err != nil {
			return err
		}
	}

	samples := []struct {
		set  project.Dataset
		name string
		evs  func() []events.Event
	}{
		{project.MonteCarlo, output + "-mc.tab", func() []events.Event { return g.MonteCarlo(numMC) }},
		{project.Data, output + "-data.tab", func() []events.Event { return g.Data(numData) }},
		{project.Reference, output + "-ref.tab", func() []events.Event { return g.MonteCarlo(numRef) }},
	}
	for _, s := range samples {
		if s.set == project.Reference && numRef == 0 {
			continue
		}
		evs := s.evs()
		if err := writeFile(s.name, func(bw *bufio.Writer) error {
			fmt.Fprintf(bw, "# simulated %s events of project %q\n", s.set, args[0])
			fmt.Fprintf(bw, "# truth: %s\n", strings.Join(truthFlags, " "))
			fmt.Fprintf(bw, "# seed: %d\n", seed)
			return events.WriteTSV(bw, evs)
		}); err != nil {
			return err
		}
		if _, err := p.Add(s.set, s.name); err != nil {
			return err
		}
	}

	return p.Write()
}

// ParseValues parses a list of values
// separated by commas,
// if the list is empty,
// it returns n values set to def.
func parseValues(s string, n int, def float64) ([]float64, error) {
	if s == "" {
		vs := make([]float64, n)
		for i := range vs {
			vs[i] = def
		}
		return vs, nil
	}
	fs := strings.Split(s, ",")
	if len(fs) != n {
		return nil, fmt.Errorf("got %d values, want %d", len(fs), n)
	}
	vs := make([]float64, n)
	for i, f := range fs {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %v", f, err)
		}
		vs[i] = v
	}
	return vs, nil
}

func writeFile(name string, fn func(bw *bufio.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
