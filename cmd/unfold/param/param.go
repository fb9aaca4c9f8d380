// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements a command to manage
// the correction parameters of a project.
package param

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/project"
	"github.com/js-arias/unfold/unfoldparam"
)

var Command = &command.Command{
	Usage: `param [--add <param-file>] [--file <file-name>]
	[--method <name>] [--iterations <value>] [--errors <value>]
	[--smooth <bool>] [--cpu <value>]
	[--bintol <value>] [--avgtol <value>]
	<project-file>`,
	Short: "manage correction parameters",
	Long: `
Command param manages the parameters of the correction defined for an unfold
project.

The argument of the command is the name of the project file.

By default, the command will print the currently defined parameters.

If the flag --add is defined, it will use the indicated file for the
correction parameters.

By default, any change on the parameters will be stored in the current
parameters file. If the project does not have a parameters file, or the flag
--file is defined, the parameters will be stored in a new file (by default
"param.tab").

The flag --method sets the correction method. Valid values are:

	` + strings.Join(correction.Methods(), ", ") + `

The flag --iterations sets the maximum number of iterations. The flag --errors
sets the error mode: 0 without errors, 1 only variances, and 2 the full
covariance matrix. The flag --smooth, with a boolean value, sets the
smoothing of the priors between iterations. The flag --cpu sets the number
of processors used in the covariance; 0 means that all processors are used.

The flags --bintol and --avgtol set the tolerances of the delinearisation
check.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var paramFile string
var method string
var iterations int
var errMode int
var smooth string
var numCPU int
var binTol float64
var avgTol float64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&paramFile, "file", "", "")
	c.Flags().StringVar(&method, "method", "", "")
	c.Flags().IntVar(&iterations, "iterations", 0, "")
	c.Flags().IntVar(&errMode, "errors", -1, "")
	c.Flags().StringVar(&smooth, "smooth", "", "")
	c.Flags().IntVar(&numCPU, "cpu", -1, "")
	c.Flags().Float64Var(&binTol, "bintol", 0, "")
	c.Flags().Float64Var(&avgTol, "avgtol", 0, "")
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
		if _, err := unfoldparam.Read(addFile); err != nil {
			return err
		}
		if _, err := p.Add(project.Param, addFile); err != nil {
			return err
		}
		return p.Write()
	}

	up, err := p.Param()
	if err != nil {
		return err
	}
	if paramFile != "" {
		up.SetName(paramFile)
	}
	if up.Name() == "" {
		up.SetName("param.tab")
	}

	ed := false
	if method != "" {
		if err := up.SetMethod(method); err != nil {
			return err
		}
		ed = true
	}
	if iterations > 0 {
		if err := up.SetIterations(iterations); err != nil {
			return err
		}
		ed = true
	}
	if errMode >= 0 {
		if err := up.SetErrors(errMode); err != nil {
			return err
		}
		ed = true
	}
	if smooth != "" {
		v, err := strconv.ParseBool(smooth)
		if err != nil {
			return c.UsageError(fmt.Sprintf("invalid --smooth value %q", smooth))
		}
		up.SetSmooth(v)
		ed = true
	}
	if numCPU >= 0 {
		if err := up.SetCPU(numCPU); err != nil {
			return err
		}
		ed = true
	}
	if binTol > 0 || avgTol > 0 {
		tol := up.Tolerance()
		if binTol > 0 {
			tol.Bin = binTol
		}
		if avgTol > 0 {
			tol.Average = avgTol
		}
		if err := up.SetTolerance(tol); err != nil {
			return err
		}
		ed = true
	}

	if p.Path(project.Param) != up.Name() {
		if err := up.Write(); err != nil {
			return err
		}
		if _, err := p.Add(project.Param, up.Name()); err != nil {
			return err
		}
		return p.Write()
	}
	if ed {
		return up.Write()
	}

	printParams(c.Stdout(), up)
	return nil
}

func printParams(w io.Writer, up *unfoldparam.UP) {
	fmt.Fprintf(w, "file:       %s\n", up.Name())
	fmt.Fprintf(w, "method:     %s\n", up.Method())
	fmt.Fprintf(w, "iterations: %d\n", up.Iterations())
	fmt.Fprintf(w, "errors:     %d\n", up.Errors())
	fmt.Fprintf(w, "smooth:     %v\n", up.Smooth())
	if cpu := up.CPU(); cpu > 0 {
		fmt.Fprintf(w, "cpu:        %d\n", cpu)
	}
	printTolerance(w, up.Tolerance())
}

func printTolerance(w io.Writer, tol compare.Tolerance) {
	fmt.Fprintf(w, "bin tol:    %g\n", tol.Bin)
	fmt.Fprintf(w, "avg tol:    %g\n", tol.Average)
}
