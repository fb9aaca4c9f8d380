// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Unfold is a tool to correct measured distributions
// for the response of a detector.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/unfold/cmd/unfold/bins"
	"github.com/js-arias/unfold/cmd/unfold/closure"
	"github.com/js-arias/unfold/cmd/unfold/correct"
	"github.com/js-arias/unfold/cmd/unfold/crosscheck"
	"github.com/js-arias/unfold/cmd/unfold/param"
	"github.com/js-arias/unfold/cmd/unfold/prj"
	"github.com/js-arias/unfold/cmd/unfold/sim"
)

var app = &command.Command{
	Usage: "unfold <command> [<argument>...]",
	Short: "a tool to correct measured distributions for detector effects",
}

func init() {
	app.Add(bins.Command)
	app.Add(closure.Command)
	app.Add(correct.Command)
	app.Add(crosscheck.Command)
	app.Add(param.Command)
	app.Add(prj.Command)
	app.Add(sim.Command)
}

func main() {
	app.Main()
}
