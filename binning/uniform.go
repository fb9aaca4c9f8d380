// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package binning

import "fmt"

// Range is the definition of a dimension
// with bins of the same width.
type Range struct {
	Min  float64
	Max  float64
	Bins int
}

// Uniform is an indexer
// in which each dimension
// has bins of the same width.
type Uniform struct {
	*indices
	ranges []Range
}

// NewUniform returns a new indexer
// with uniform bins
// for each one of the given ranges.
func NewUniform(ranges ...Range) (*Uniform, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: no dimensions defined", ErrEdges)
	}
	axes := make([]*axis, len(ranges))
	for i, r := range ranges {
		a, err := newUniformAxis(r.Min, r.Max, r.Bins)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		axes[i] = a
	}
	return &Uniform{
		indices: newIndices(axes),
		ranges:  append([]Range(nil), ranges...),
	}, nil
}

// Ranges returns the ranges used to define the indexer.
func (u *Uniform) Ranges() []Range {
	return append([]Range(nil), u.ranges...)
}

// Axis returns a one dimensional uniform indexer
// for the indicated dimension.
func (u *Uniform) Axis(dim int) (Indexer, error) {
	a, err := u.axis(dim)
	if err != nil {
		return nil, err
	}
	return &Uniform{
		indices: newIndices([]*axis{a}),
		ranges:  []Range{u.ranges[dim]},
	}, nil
}

// Clone returns a copy of the indexer
// without central value data.
func (u *Uniform) Clone() Indexer {
	return &Uniform{
		indices: newIndices(u.cloneAxes()),
		ranges:  append([]Range(nil), u.ranges...),
	}
}
