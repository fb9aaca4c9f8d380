// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package bins implements a command to manage
// the bin definition of a project.
package bins

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/project"
	"gonum.org/v1/gonum/stat"
)

var Command = &command.Command{
	Usage: `bins [--add <bin-file>] [--file <file-name>]
	[--range <min,max,bins>]... [--edges <edge,edge,...>]...
	[--quantile <bins>] <project-file>`,
	Short: "manage the bins of a project",
	Long: `
Command bins manages the bin definition of an unfold project.

The argument of the command is the name of the project file.

By default, the command will print the currently defined bins.

If the flag --add is defined, it will use the indicated file as the bin
definition of the project.

The flag --range defines a dimension with bins of the same width, as a list of
three values separated by commas: the lower edge, the upper edge, and the
number of bins. For example "0,10,20" defines 20 bins between 0 and 10. The
flag --edges defines a dimension with an arbitrary list of edges separated by
commas. Each use of the flags defines a new dimension, and both flags can not
be mixed.

The flag --quantile defines the indicated number of bins for each dimension,
with the edges set so each bin has the same weight of the true values of the
simulated events of the project.

By default, a new bin definition will be stored in the file "bins.tab". Use
the flag --file to define a different file name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var binFile string
var quantile int
var rangeFlags []string
var edgeFlags []string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&binFile, "file", "bins.tab", "")
	c.Flags().IntVar(&quantile, "quantile", 0, "")
	c.Flags().Func("range", "", func(s string) error {
		rangeFlags = append(rangeFlags, s)
		return nil
	})
	c.Flags().Func("edges", "", func(s string) error {
		edgeFlags = append(edgeFlags, s)
		return nil
	})
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if addFile != "" {
		f, err := os.Open(addFile)
		if err != nil {
			return err
		}
		_, err = binning.ReadTSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("on file %q: %v", addFile, err)
		}
		if _, err := p.Add(project.Bins, addFile); err != nil {
			return err
		}
		return p.Write()
	}

	var ix binning.Indexer
	switch {
	case len(rangeFlags) > 0 && len(edgeFlags) > 0:
		return c.UsageError("flags --range and --edges can not be mixed")
	case len(rangeFlags) > 0:
		ix, err = uniformBins(rangeFlags)
	case len(edgeFlags) > 0:
		ix, err = customBins(edgeFlags)
	case quantile > 0:
		ix, err = quantileBins(p, quantile)
	default:
		if p.Path(project.Bins) == "" {
			return fmt.Errorf("bins not defined in project %q", args[0])
		}
		ix, err := p.Bins()
		if err != nil {
			return err
		}
		return binning.WriteTSV(c.Stdout(), ix)
	}
	if err != nil {
		return err
	}

	if err := writeBins(binFile, ix); err != nil {
		return err
	}
	if _, err := p.Add(project.Bins, binFile); err != nil {
		return err
	}
	return p.Write()
}

func parseValues(s string) ([]float64, error) {
	var vs []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value list %q: %v", s, err)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func uniformBins(flags []string) (binning.Indexer, error) {
	rs := make([]binning.Range, 0, len(flags))
	for _, s := range flags {
		vs, err := parseValues(s)
		if err != nil {
			return nil, err
		}
		if len(vs) != 3 {
			return nil, fmt.Errorf("invalid range %q: expecting three values", s)
		}
		rs = append(rs, binning.Range{Min: vs[0], Max: vs[1], Bins: int(vs[2])})
	}
	return binning.NewUniform(rs...)
}

func customBins(flags []string) (binning.Indexer, error) {
	es := make([][]float64, 0, len(flags))
	for _, s := range flags {
		vs, err := parseValues(s)
		if err != nil {
			return nil, err
		}
		es = append(es, vs)
	}
	return binning.NewCustom(es...)
}

// QuantileBins returns bins of the same weight
// of the simulated true values.
func quantileBins(p *project.Project, n int) (binning.Indexer, error) {
	evs, err := p.MonteCarlo()
	if err != nil {
		return nil, err
	}

	var dims int
	for _, e := range evs {
		if len(e.Truth) > 0 {
			dims = len(e.Truth)
			break
		}
	}
	if dims == 0 {
		return nil, fmt.Errorf("project %q: no simulated true values", p.Name())
	}

	es := make([][]float64, dims)
	for d := range es {
		var x, w []float64
		for _, e := range evs {
			if e.Kind != events.Pair && e.Kind != events.Miss {
				continue
			}
			if d >= len(e.Truth) || e.Weight <= 0 {
				continue
			}
			x = append(x, e.Truth[d])
			w = append(w, e.Weight)
		}
		if len(x) == 0 {
			return nil, fmt.Errorf("project %q: no simulated true values for dimension %d", p.Name(), d)
		}
		stat.SortWeighted(x, w)

		edges := make([]float64, 0, n+1)
		for i := 0; i <= n; i++ {
			edges = append(edges, stat.Quantile(float64(i)/float64(n), stat.Empirical, x, w))
		}
		// the largest value is inside the last bin
		edges[n] = math.Nextafter(edges[n], math.Inf(1))
		es[d] = slices.Compact(edges)
	}
	return binning.NewCustom(es...)
}

func writeBins(name string, ix binning.Indexer) (err error) {
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
	if err := writeHeader(bw); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := binning.WriteTSV(bw, ix); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func writeHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# unfold bins\n# data save on: %s\n", time.Now().Format(time.RFC3339))
	return err
}
