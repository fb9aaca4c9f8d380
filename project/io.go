// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/unfoldparam"
)

// Bins reads the bin definition file
// as defined in a project.
func (p *Project) Bins() (binning.Indexer, error) {
	name := p.Path(Bins)
	if name == "" {
		return nil, fmt.Errorf("bins not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ix, err := binning.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return ix, nil
}

// MonteCarlo reads the simulated events
// as defined in a project.
func (p *Project) MonteCarlo() ([]events.Event, error) {
	return p.events(MonteCarlo)
}

// Data reads the measured events
// as defined in a project.
func (p *Project) Data() ([]events.Event, error) {
	return p.events(Data)
}

// Reference reads the reference events
// as defined in a project.
func (p *Project) Reference() ([]events.Event, error) {
	return p.events(Reference)
}

func (p *Project) events(set Dataset) ([]events.Event, error) {
	name := p.Path(set)
	if name == "" {
		return nil, fmt.Errorf("%s events not defined in project %q", set, p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	evs, err := events.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return evs, nil
}

// Param reads the correction parameters
// as defined in a project.
// If no parameter file is defined,
// it returns the default parameters.
func (p *Project) Param() (*unfoldparam.UP, error) {
	name := p.Path(Param)
	if name == "" {
		return unfoldparam.New(""), nil
	}
	return unfoldparam.Read(name)
}
