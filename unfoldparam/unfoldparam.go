// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package unfoldparam implements reading and writing
// of the parameters of a correction.
package unfoldparam

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/correction"
)

// Param is a keyword to identify
// the type of parameter in a parameter file.
type Param string

// Valid parameters
const (
	// AvgTol is the maximum average discrepancy
	// between a direct profile
	// and a delinearised distribution.
	AvgTol Param = "avgtol"

	// BinTol is the maximum discrepancy in any bin
	// between a direct profile
	// and a delinearised distribution.
	BinTol Param = "bintol"

	// CPU is the number of processors
	// used for the covariance.
	CPU Param = "cpu"

	// Errors is the error mode:
	// 0 no errors,
	// 1 variances,
	// 2 full covariance.
	Errors Param = "errors"

	// Iterations is the maximum number of iterations
	// of the Bayesian unfolding.
	Iterations Param = "iterations"

	// Method is the correction method.
	Method Param = "method"

	// Smooth indicates if the prior is smoothed
	// between iterations.
	Smooth Param = "smooth"
)

// UP represents a collection of correction parameters.
type UP struct {
	name string // file name

	method     string
	iterations int
	errMode    int
	smooth     bool
	cpu        int
	tol        compare.Tolerance
}

// New creates a new parameter collection
// with the default values.
func New(name string) *UP {
	return &UP{
		name:       name,
		method:     correction.MethodBayes,
		iterations: 4,
		errMode:    1,
		tol:        compare.DefaultTolerance(),
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a parameter file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# unfold correction parameters
//	parameter	value
//	method	bayes
//	iterations	4
//	errors	2
//	smooth	true
//	cpu	0
//	bintol	0.01
//	avgtol	0.005
func Read(name string) (*UP, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	up, err := read(f, name)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return up, nil
}

func read(r io.Reader, name string) (*UP, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	up := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "parameter"
		p := Param(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		switch p {
		case AvgTol:
			t, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			err = up.SetTolerance(compare.Tolerance{Bin: up.tol.Bin, Average: t})
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case BinTol:
			t, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			err = up.SetTolerance(compare.Tolerance{Bin: t, Average: up.tol.Average})
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case CPU:
			c, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := up.SetCPU(c); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case Errors:
			e, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := up.SetErrors(e); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case Iterations:
			it, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := up.SetIterations(it); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case Method:
			if err := up.SetMethod(v); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case Smooth:
			s, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			up.smooth = s
		}
	}
	return up, nil
}

// CPU returns the number of processors
// used for the covariance.
func (up *UP) CPU() int {
	return up.cpu
}

// Errors returns the error mode.
func (up *UP) Errors() int {
	return up.errMode
}

// Iterations returns the maximum number of iterations.
func (up *UP) Iterations() int {
	return up.iterations
}

// Method returns the correction method.
func (up *UP) Method() string {
	return up.method
}

// Name returns the name used for a set of parameters.
func (up *UP) Name() string {
	return up.name
}

// Options returns the options for a correction.
func (up *UP) Options() correction.Options {
	return correction.Options{
		Iterations: up.iterations,
		ErrorMode:  up.errMode,
		Smooth:     up.smooth,
		CPU:        up.cpu,
	}
}

// Smooth returns true if the prior of each iteration
// is smoothed.
func (up *UP) Smooth() bool {
	return up.smooth
}

// Tolerance returns the tolerance
// of the delinearisation checks.
func (up *UP) Tolerance() compare.Tolerance {
	return up.tol
}

// SetCPU sets the number of processors.
// If zero, all processors will be used.
func (up *UP) SetCPU(c int) error {
	if c < 0 {
		return fmt.Errorf("invalid number of processors: %d", c)
	}
	up.cpu = c
	return nil
}

// SetErrors sets the error mode.
func (up *UP) SetErrors(e int) error {
	if e < 0 {
		return fmt.Errorf("invalid error mode: %d", e)
	}
	up.errMode = e
	return nil
}

// SetIterations sets the maximum number of iterations.
func (up *UP) SetIterations(it int) error {
	if it < 1 {
		return fmt.Errorf("invalid number of iterations: %d", it)
	}
	up.iterations = it
	return nil
}

// SetMethod sets the correction method.
func (up *UP) SetMethod(m string) error {
	m = strings.ToLower(strings.TrimSpace(m))
	for _, v := range correction.Methods() {
		if m == v {
			up.method = m
			return nil
		}
	}
	return fmt.Errorf("%w: %q", correction.ErrMethod, m)
}

// SetName sets the name of a parameter collection.
func (up *UP) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	up.name = name
}

// SetSmooth sets the smoothing of the priors.
func (up *UP) SetSmooth(s bool) {
	up.smooth = s
}

// SetTolerance sets the tolerance
// of the delinearisation checks.
func (up *UP) SetTolerance(tol compare.Tolerance) error {
	if tol.Bin <= 0 || tol.Average <= 0 {
		return fmt.Errorf("invalid tolerance: %v", tol)
	}
	up.tol = tol
	return nil
}

// Write writes a parameter collection into a file.
func (up *UP) Write() (err error) {
	f, err := os.Create(up.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := up.write(f); err != nil {
		return fmt.Errorf("on file %q: %v", up.name, err)
	}
	return nil
}

func (up *UP) write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# unfold correction parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	rows := [][]string{
		{string(Method), up.method},
		{string(Iterations), strconv.Itoa(up.iterations)},
		{string(Errors), strconv.Itoa(up.errMode)},
		{string(Smooth), strconv.FormatBool(up.smooth)},
		{string(CPU), strconv.Itoa(up.cpu)},
		{string(BinTol), strconv.FormatFloat(up.tol.Bin, 'g', -1, 64)},
		{string(AvgTol), strconv.FormatFloat(up.tol.Average, 'g', -1, 64)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return err
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
