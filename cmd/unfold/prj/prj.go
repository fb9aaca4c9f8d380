// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project.
package prj

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/project"
	"github.com/js-arias/unfold/toy"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads an unfold project and prints the information of the
different project elements into the standard output.

The argument of the command is the name of the project file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	var ix binning.Indexer
	if p.Path(project.Bins) != "" {
		ix, err = p.Bins()
		if err != nil {
			return err
		}
		printBins(c.Stdout(), p.Path(project.Bins), ix)
	}

	if p.Path(project.MonteCarlo) != "" {
		evs, err := p.MonteCarlo()
		if err != nil {
			return err
		}
		printEvents(c.Stdout(), "Simulated events", p.Path(project.MonteCarlo), evs)
	}

	if p.Path(project.Data) != "" {
		evs, err := p.Data()
		if err != nil {
			return err
		}
		printEvents(c.Stdout(), "Measured events", p.Path(project.Data), evs)
	}

	if p.Path(project.Reference) != "" {
		evs, err := p.Reference()
		if err != nil {
			return err
		}
		printEvents(c.Stdout(), "Reference events", p.Path(project.Reference), evs)
	}

	up, err := p.Param()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "Correction parameters:\n")
	if up.Name() != "" {
		fmt.Fprintf(c.Stdout(), "\tfile: %s\n", up.Name())
	} else {
		fmt.Fprintf(c.Stdout(), "\tfile: <default>\n")
	}
	fmt.Fprintf(c.Stdout(), "\tmethod: %s\n", up.Method())
	fmt.Fprintf(c.Stdout(), "\titerations: %d\n", up.Iterations())
	fmt.Fprintf(c.Stdout(), "\n")

	if out := p.Path(project.Output); out != "" {
		fmt.Fprintf(c.Stdout(), "Output prefix: %s\n", out)
	}
	return nil
}

func printBins(w io.Writer, name string, ix binning.Indexer) {
	fmt.Fprintf(w, "Bins:\n")
	fmt.Fprintf(w, "\tfile: %s\n", name)
	fmt.Fprintf(w, "\tdimensions: %d\n", ix.Dims())
	for d := 0; d < ix.Dims(); d++ {
		e := ix.Edges(d)
		fmt.Fprintf(w, "\tdim %d: %d bins [%g, %g)\n", d, ix.NumBins(d), e[0], e[len(e)-1])
	}
	fmt.Fprintf(w, "\tflat bins: %d\n", ix.Bins())
	fmt.Fprintf(w, "\n")
}

func printEvents(w io.Writer, title, name string, evs []events.Event) {
	count := make(map[events.Kind]int)
	for _, e := range evs {
		count[e.Kind]++
	}

	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "\tfile: %s\n", name)
	for _, k := range []events.Kind{events.Pair, events.Miss, events.Fake, events.Data} {
		if count[k] == 0 {
			continue
		}
		fmt.Fprintf(w, "\t%s: %d\n", k, count[k])
	}

	truth := count[events.Pair]+count[events.Miss] > 0
	s := toy.Summarize(evs, 0, truth)
	if s.Weight > 0 {
		kind := "reconstructed"
		if truth {
			kind = "true"
		}
		fmt.Fprintf(w, "\t%s values (dim 0): mean %.6f, sd %.6f\n", kind, s.Mean, s.StdDev)
	}
	fmt.Fprintf(w, "\n")
}
