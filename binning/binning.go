// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package binning implements index calculators
// that map N-dimensional values
// into a flat bin index
// (and back).
//
// Each dimension has two extra bins:
// index 0 is the underflow,
// and index N+1 is the overflow.
// The flat index is a mixed-radix number
// in which the first dimension
// is the least significant digit.
package binning

import (
	"fmt"
	"math"
)

// An Indexer maps N-dimensional values
// into flat bin indices.
type Indexer interface {
	// Dims returns the number of dimensions.
	Dims() int

	// Bins returns the total number of flat bins,
	// including underflow and overflow bins.
	Bins() int

	// NumBins returns the number of regular bins
	// of a dimension.
	NumBins(dim int) int

	// Edges returns the edges of the regular bins
	// of a dimension.
	Edges(dim int) []float64

	// Index returns the flat index of a point.
	Index(values []float64) (int, error)

	// NDIndex returns the per-dimension index of a point.
	NDIndex(values []float64) ([]int, error)

	// Split returns the per-dimension index
	// of a flat index.
	Split(flat int) ([]int, error)

	// Join returns the flat index
	// of a per-dimension index.
	Join(nd []int) (int, error)

	// CentralValues returns the central value
	// of each dimension
	// for a per-dimension index.
	CentralValues(nd []int) ([]float64, error)

	// Store adds a value to the accumulators
	// used to calculate the central values.
	Store(values []float64, weight float64) error

	// Axis returns a one dimensional indexer
	// with the geometry and the central value data
	// of the indicated dimension.
	Axis(dim int) (Indexer, error)

	// Clone returns a copy of the indexer
	// without the central value data.
	Clone() Indexer
}

// An axis is a single dimension of an indexer.
type axis struct {
	// edges of the regular bins,
	// len(edges) == n+1
	edges []float64

	// uniform width,
	// zero for custom edges
	width float64

	// central value accumulators,
	// indexed by the bin index
	// (including underflow and overflow)
	sum    []float64
	weight []float64
}

func newUniformAxis(min, max float64, n int) (*axis, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: invalid number of bins %d", ErrEdges, n)
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("%w: invalid range [%g, %g)", ErrEdges, min, max)
	}
	if min >= max {
		return nil, fmt.Errorf("%w: invalid range [%g, %g)", ErrEdges, min, max)
	}
	w := (max - min) / float64(n)
	edges := make([]float64, n+1)
	for i := range edges {
		edges[i] = min + float64(i)*w
	}
	edges[n] = max
	return &axis{
		edges:  edges,
		width:  w,
		sum:    make([]float64, n+2),
		weight: make([]float64, n+2),
	}, nil
}

func newCustomAxis(edges []float64) (*axis, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("%w: at least two edges required, got %d", ErrEdges, len(edges))
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("%w: invalid edge %g at position %d", ErrEdges, e, i)
		}
		if i > 0 && e <= edges[i-1] {
			return nil, fmt.Errorf("%w: edge %g at position %d is not greater than %g", ErrEdges, e, i, edges[i-1])
		}
	}
	n := len(edges) - 1
	return &axis{
		edges:  append([]float64(nil), edges...),
		sum:    make([]float64, n+2),
		weight: make([]float64, n+2),
	}, nil
}

// N returns the number of regular bins.
func (a *axis) n() int {
	return len(a.edges) - 1
}

// Index returns the bin of a value,
// 0 for underflow,
// and n+1 for overflow.
func (a *axis) index(v float64) int {
	n := a.n()
	if math.IsNaN(v) || v < a.edges[0] {
		return 0
	}
	if v >= a.edges[n] {
		return n + 1
	}
	if a.width > 0 {
		i := 1 + int((v-a.edges[0])/a.width)
		// floating point rounding at the edges
		if i > n {
			i = n
		}
		if v < a.edges[i-1] {
			i--
		} else if i < n && v >= a.edges[i] {
			i++
		}
		return i
	}

	// first edge greater than the value
	lo, hi := 0, n
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		if a.edges[m] <= v {
			lo = m + 1
		} else {
			hi = m
		}
	}
	return lo
}

// BinWidth returns the width of a regular bin,
// underflow and overflow use the width
// of the closest regular bin.
func (a *axis) binWidth(i int) float64 {
	n := a.n()
	if i < 1 {
		i = 1
	}
	if i > n {
		i = n
	}
	return a.edges[i] - a.edges[i-1]
}

func (a *axis) geometric(i int) float64 {
	n := a.n()
	switch {
	case i <= 0:
		return a.edges[0] - a.binWidth(1)
	case i > n:
		return a.edges[n] + a.binWidth(n)
	}
	return (a.edges[i-1] + a.edges[i]) / 2
}

func (a *axis) central(i int) float64 {
	if a.weight[i] != 0 {
		return a.sum[i] / a.weight[i]
	}
	return a.geometric(i)
}

func (a *axis) store(v, w float64) {
	i := a.index(v)
	a.sum[i] += w * v
	a.weight[i] += w
}

func (a *axis) clone(data bool) *axis {
	na := &axis{
		edges:  append([]float64(nil), a.edges...),
		width:  a.width,
		sum:    make([]float64, len(a.sum)),
		weight: make([]float64, len(a.weight)),
	}
	if data {
		copy(na.sum, a.sum)
		copy(na.weight, a.weight)
	}
	return na
}

// Indices is the shared implementation
// of the indexers.
type indices struct {
	axes []*axis
	size int
}

func newIndices(axes []*axis) *indices {
	size := 1
	for _, a := range axes {
		size *= a.n() + 2
	}
	return &indices{
		axes: axes,
		size: size,
	}
}

func (ix *indices) Dims() int { return len(ix.axes) }
func (ix *indices) Bins() int { return ix.size }

func (ix *indices) NumBins(dim int) int {
	if dim < 0 || dim >= len(ix.axes) {
		return 0
	}
	return ix.axes[dim].n()
}

func (ix *indices) Edges(dim int) []float64 {
	if dim < 0 || dim >= len(ix.axes) {
		return nil
	}
	return append([]float64(nil), ix.axes[dim].edges...)
}

func (ix *indices) checkValues(values []float64) error {
	if len(values) != len(ix.axes) {
		return fmt.Errorf("%w: got %d values, want %d", ErrDimension, len(values), len(ix.axes))
	}
	return nil
}

func (ix *indices) Index(values []float64) (int, error) {
	if err := ix.checkValues(values); err != nil {
		return 0, err
	}
	flat := 0
	for d := len(ix.axes) - 1; d >= 0; d-- {
		a := ix.axes[d]
		flat = flat*(a.n()+2) + a.index(values[d])
	}
	return flat, nil
}

func (ix *indices) NDIndex(values []float64) ([]int, error) {
	if err := ix.checkValues(values); err != nil {
		return nil, err
	}
	nd := make([]int, len(ix.axes))
	for d, a := range ix.axes {
		nd[d] = a.index(values[d])
	}
	return nd, nil
}

func (ix *indices) Split(flat int) ([]int, error) {
	if flat < 0 || flat >= ix.size {
		return nil, fmt.Errorf("%w: flat index %d, bins %d", ErrRange, flat, ix.size)
	}
	nd := make([]int, len(ix.axes))
	for d, a := range ix.axes {
		r := a.n() + 2
		nd[d] = flat % r
		flat /= r
	}
	return nd, nil
}

func (ix *indices) Join(nd []int) (int, error) {
	if len(nd) != len(ix.axes) {
		return 0, fmt.Errorf("%w: got %d indices, want %d", ErrDimension, len(nd), len(ix.axes))
	}
	flat := 0
	for d := len(ix.axes) - 1; d >= 0; d-- {
		r := ix.axes[d].n() + 2
		if nd[d] < 0 || nd[d] >= r {
			return 0, fmt.Errorf("%w: index %d of dimension %d, bins %d", ErrRange, nd[d], d, r)
		}
		flat = flat*r + nd[d]
	}
	return flat, nil
}

func (ix *indices) CentralValues(nd []int) ([]float64, error) {
	if len(nd) != len(ix.axes) {
		return nil, fmt.Errorf("%w: got %d indices, want %d", ErrDimension, len(nd), len(ix.axes))
	}
	cv := make([]float64, len(ix.axes))
	for d, a := range ix.axes {
		if nd[d] < 0 || nd[d] >= a.n()+2 {
			return nil, fmt.Errorf("%w: index %d of dimension %d, bins %d", ErrRange, nd[d], d, a.n()+2)
		}
		cv[d] = a.central(nd[d])
	}
	return cv, nil
}

func (ix *indices) Store(values []float64, weight float64) error {
	if err := ix.checkValues(values); err != nil {
		return err
	}
	for d, a := range ix.axes {
		a.store(values[d], weight)
	}
	return nil
}

func (ix *indices) axis(dim int) (*axis, error) {
	if dim < 0 || dim >= len(ix.axes) {
		return nil, fmt.Errorf("%w: dimension %d, dimensions %d", ErrDimension, dim, len(ix.axes))
	}
	return ix.axes[dim].clone(true), nil
}

func (ix *indices) cloneAxes() []*axis {
	axes := make([]*axis, len(ix.axes))
	for i, a := range ix.axes {
		axes[i] = a.clone(false)
	}
	return axes
}
