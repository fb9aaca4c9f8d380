// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package compare

import (
	"fmt"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/distribution"
)

// Delinearise returns the profile
// of a two dimensional distribution
// along the indicated dimension:
// the value of each bin of the result
// is the weighted mean of the central values
// of the other dimension.
//
// The result uses a one dimensional indexer
// with the geometry of the indicated dimension.
func Delinearise(d *distribution.Distribution, axis int) (*distribution.Distribution, error) {
	ix := d.Indexer()
	if ix.Dims() != 2 {
		return nil, fmt.Errorf("%w: delinearise requires two dimensions, got %d", binning.ErrDimension, ix.Dims())
	}
	if axis != 0 && axis != 1 {
		return nil, fmt.Errorf("%w: dimension %d", binning.ErrDimension, axis)
	}
	other := 1 - axis

	ax, err := ix.Axis(axis)
	if err != nil {
		return nil, err
	}

	n := ax.Bins()
	sum := make([]float64, n)
	weight := make([]float64, n)
	values := d.Values()
	for f := 0; f < d.Len(); f++ {
		w := values[f]
		if w == 0 {
			continue
		}
		nd, err := ix.Split(f)
		if err != nil {
			return nil, err
		}
		cv, err := ix.CentralValues(nd)
		if err != nil {
			return nil, err
		}
		sum[nd[axis]] += w * cv[other]
		weight[nd[axis]] += w
	}

	prof := make([]float64, n)
	for i := range prof {
		if weight[i] == 0 {
			continue
		}
		prof[i] = sum[i] / weight[i]
	}
	return distribution.FromValues(ax, prof)
}

// DelineariseAndCompare compares the profiles
// of two dimensional distributions
// along the indicated dimension.
func DelineariseAndCompare(a, b *distribution.Distribution, axis int, closure bool) (Result, error) {
	pa, err := Delinearise(a, axis)
	if err != nil {
		return Result{}, err
	}
	pb, err := Delinearise(b, axis)
	if err != nil {
		return Result{}, err
	}
	return Distributions(pa, pb, closure)
}
