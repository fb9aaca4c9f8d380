// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package crosscheck implements a command to find
// the number of iterations of a correction
// using an independent simulated sample.
package crosscheck

import (
	"fmt"
	"log/slog"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/metrics"
	"github.com/js-arias/unfold/project"
)

var Command = &command.Command{
	Usage: `crosscheck [--method <name>] [--update]
	<project-file>`,
	Short: "find the number of iterations with a reference sample",
	Long: `
Command crosscheck reads the simulated events and the reference events of an
unfold project. The reconstructed values of the reference events are
corrected using the response of the simulated events, and the result of each
iteration is compared with the true values of the reference events. The
number of iterations before the comparison becomes worse is printed in the
standard output.

The argument of the command is the name of the project file.

The flag --method can be used to set a correction method different from the
method of the project parameters.

If the flag --update is defined, the number of iterations found is stored in
the parameters of the project.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var method string
var update bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&method, "method", "", "")
	c.Flags().BoolVar(&update, "update", false, "")
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
	corr, up, err := p.Corrector(method, "mc", cfg)
	if err != nil {
		return err
	}

	refEvs, err := p.Reference()
	if err != nil {
		return err
	}
	ix, err := p.Bins()
	if err != nil {
		return err
	}
	ref, err := events.Truth(ix, refEvs)
	if err != nil {
		return fmt.Errorf("on file %q: %v", p.Path(project.Reference), err)
	}

	// the reconstructed reference values
	// are the data of the shared corrector
	cc := corr.CloneShareSmearing()
	for i, e := range refEvs {
		var err error
		switch e.Kind {
		case events.Pair:
			err = cc.StoreDataValue(e.Reco, e.RecoWeight)
		case events.Fake, events.Data:
			err = cc.StoreDataValue(e.Reco, e.Weight)
		}
		if err != nil {
			return fmt.Errorf("on file %q: event %d: %v", p.Path(project.Reference), i, err)
		}
	}

	it, err := cc.MonteCarloCrossCheck(ref, up.Smooth())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "method:     %s\n", cc.Name())
	fmt.Fprintf(c.Stdout(), "iterations: %d\n", it)

	if !update {
		return nil
	}
	if up.Name() == "" {
		up.SetName("param.tab")
	}
	if err := up.SetIterations(it); err != nil {
		return err
	}
	if err := up.Write(); err != nil {
		return err
	}
	if p.Path(project.Param) != up.Name() {
		if _, err := p.Add(project.Param, up.Name()); err != nil {
			return err
		}
		return p.Write()
	}
	return nil
}
