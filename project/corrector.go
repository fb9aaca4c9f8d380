// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"

	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/unfoldparam"
)

// Corrector returns a corrector
// with the bins, the parameters,
// and the simulated events
// of a project.
// If method is empty,
// the method of the parameters is used.
func (p *Project) Corrector(method, label string, cfg correction.Config) (correction.Corrector, *unfoldparam.UP, error) {
	up, err := p.Param()
	if err != nil {
		return nil, nil, err
	}
	if method == "" {
		method = up.Method()
	}

	ix, err := p.Bins()
	if err != nil {
		return nil, nil, err
	}
	c, err := correction.New(method, ix, label, cfg)
	if err != nil {
		return nil, nil, err
	}

	mc, err := p.MonteCarlo()
	if err != nil {
		return nil, nil, err
	}
	if err := events.Feed(c, mc); err != nil {
		return nil, nil, fmt.Errorf("on file %q: %v", p.Path(MonteCarlo), err)
	}
	return c, up, nil
}
