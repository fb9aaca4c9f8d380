// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package project implements reading and writing
// of unfold project files.
//
// An unfold project is a tab-delimited file (TSV)
// used to store the different data files
// required by unfold commands.
package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// Dataset is a keyword to identify
// the type of a dataset file in a project.
type Dataset string

// Valid dataset types.
const (
	// File for the bin definition.
	Bins Dataset = "bins"

	// File for the simulated events
	// used to build the response of the detector.
	MonteCarlo Dataset = "mc"

	// File for the measured events.
	Data Dataset = "data"

	// File for the reference events
	// used in the Monte Carlo cross check.
	Reference Dataset = "reference"

	// File for the parameters of the correction.
	Param Dataset = "param"

	// Prefix for the output files.
	Output Dataset = "output"
)

// ErrDataset is the error returned
// when a dataset keyword is not recognised.
var ErrDataset = errors.New("unknown dataset")

// Datasets returns the valid datasets,
// in the order they are written in a project file.
func Datasets() []Dataset {
	return []Dataset{Bins, MonteCarlo, Data, Reference, Param, Output}
}

// ParseDataset returns the dataset of a keyword.
// Keywords are case insensitive.
func ParseDataset(s string) (Dataset, error) {
	set := Dataset(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Datasets(), set) {
		return "", fmt.Errorf("%w: %q", ErrDataset, s)
	}
	return set, nil
}

// A Project stores the paths of the files
// used by an unfolding.
type Project struct {
	name  string
	paths map[Dataset]string
}

// New creates a new empty project.
func New() *Project {
	return &Project{paths: make(map[Dataset]string)}
}

var header = []string{
	"dataset",
	"path",
}

// Read reads a project file from a TSV file.
//
// The TSV must contain the following fields:
//
//   - dataset, for the kind of file
//   - path, for the path of the file
//
// Here is an example file:
//
//	# unfold project files
//	dataset	path
//	bins	bins.tab
//	mc	mc-events.tab
//	data	data-events.tab
//	param	param.tab
//
// A dataset defined twice is an error.
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := New()
	p.name = name
	if err := p.read(f); err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return p, nil
}

func (p *Project) read(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(h)] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return fmt.Errorf("expecting field %q", h)
		}
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		set, err := ParseDataset(row[fields["dataset"]])
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, "dataset", err)
		}
		if _, dup := p.paths[set]; dup {
			return fmt.Errorf("on row %d: field %q: dataset %q already defined", ln, "dataset", set)
		}
		if _, err := p.Add(set, row[fields["path"]]); err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
	}
}

// Add sets the path of a dataset
// and returns the previous path.
// An empty path removes the dataset.
func (p *Project) Add(set Dataset, path string) (string, error) {
	if !slices.Contains(Datasets(), set) {
		return "", fmt.Errorf("%w: %q", ErrDataset, set)
	}
	prev := p.paths[set]
	if path = strings.TrimSpace(path); path == "" {
		delete(p.paths, set)
		return prev, nil
	}
	p.paths[set] = path
	return prev, nil
}

// Path returns the path of the given dataset.
func (p *Project) Path(set Dataset) string {
	return p.paths[set]
}

// Sets returns the datasets defined on a project,
// in the order of Datasets.
func (p *Project) Sets() []Dataset {
	var sets []Dataset
	for _, s := range Datasets() {
		if _, ok := p.paths[s]; ok {
			sets = append(sets, s)
		}
	}
	return sets
}

// Name returns the project file name.
func (p *Project) Name() string {
	return p.name
}

// SetName sets the project file name.
func (p *Project) SetName(name string) {
	p.name = name
}

// Write writes a project into a file.
func (p *Project) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := p.write(f); err != nil {
		return fmt.Errorf("on file %q: %v", p.name, err)
	}
	return nil
}

func (p *Project) write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# unfold project files\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, s := range p.Sets() {
		if err := tsv.Write([]string{string(s), p.paths[s]}); err != nil {
			return err
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return bw.Flush()
}
