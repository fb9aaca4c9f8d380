// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package binning

import "fmt"

// Custom is an indexer
// in which the bins of each dimension
// are defined by an explicit list of edges.
type Custom struct {
	*indices
}

// NewCustom returns a new indexer
// using the given edges for each dimension.
// Edges must be strictly increasing
// and each dimension requires at least two edges.
func NewCustom(edges ...[]float64) (*Custom, error) {
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: no dimensions defined", ErrEdges)
	}
	axes := make([]*axis, len(edges))
	for i, e := range edges {
		a, err := newCustomAxis(e)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		axes[i] = a
	}
	return &Custom{
		indices: newIndices(axes),
	}, nil
}

// Axis returns a one dimensional custom indexer
// for the indicated dimension.
func (c *Custom) Axis(dim int) (Indexer, error) {
	a, err := c.axis(dim)
	if err != nil {
		return nil, err
	}
	return &Custom{
		indices: newIndices([]*axis{a}),
	}, nil
}

// Clone returns a copy of the indexer
// without central value data.
func (c *Custom) Clone() Indexer {
	return &Custom{
		indices: newIndices(c.cloneAxes()),
	}
}
