// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package compare

import (
	"fmt"
	"math"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/distribution"
	"gonum.org/v1/gonum/stat"
)

// Tolerance is the maximum discrepancy allowed
// between a direct profile
// and a delinearised distribution.
type Tolerance struct {
	// Maximum relative discrepancy in any bin
	Bin float64

	// Maximum average relative discrepancy
	Average float64
}

// DefaultTolerance returns the default tolerance:
// 1% in any bin,
// and 0.5% on average.
func DefaultTolerance() Tolerance {
	return Tolerance{
		Bin:     0.01,
		Average: 0.005,
	}
}

// BinningQualityError is returned when a delinearised distribution
// is too different from the direct profile,
// which means that the binning of the profiled dimension
// is too coarse.
type BinningQualityError struct {
	Axis         int
	MaxDeviation float64
	AvgDeviation float64

	// Suggested bin width
	// using the Scott's rule
	Width float64
}

func (e *BinningQualityError) Error() string {
	return fmt.Sprintf("compare: binning too coarse for dimension %d: max. deviation %.4g, avg. deviation %.4g: suggested bin width %.4g", e.Axis, e.MaxDeviation, e.AvgDeviation, e.Width)
}

// Profile is a profile histogram,
// the mean of a value
// in the bins of another value.
type Profile struct {
	ix     binning.Indexer
	sum    []float64
	weight []float64

	// values stored
	ys []float64
	ws []float64
}

// NewProfile returns an empty profile
// using a one dimensional indexer.
func NewProfile(ix binning.Indexer) (*Profile, error) {
	if ix.Dims() != 1 {
		return nil, fmt.Errorf("%w: profile requires one dimension, got %d", binning.ErrDimension, ix.Dims())
	}
	return &Profile{
		ix:     ix,
		sum:    make([]float64, ix.Bins()),
		weight: make([]float64, ix.Bins()),
	}, nil
}

// Fill adds a value y
// at the bin of x.
func (p *Profile) Fill(x, y, w float64) error {
	i, err := p.ix.Index([]float64{x})
	if err != nil {
		return err
	}
	p.sum[i] += w * y
	p.weight[i] += w
	p.ys = append(p.ys, y)
	p.ws = append(p.ws, w)
	return nil
}

// Mean returns the mean of the values of a bin.
func (p *Profile) Mean(i int) float64 {
	if i < 0 || i >= len(p.sum) || p.weight[i] == 0 {
		return 0
	}
	return p.sum[i] / p.weight[i]
}

// Weight returns the total weight of a bin.
func (p *Profile) Weight(i int) float64 {
	if i < 0 || i >= len(p.weight) {
		return 0
	}
	return p.weight[i]
}

// Len returns the number of values stored in the profile.
func (p *Profile) Len() int {
	return len(p.ys)
}

// ScottWidth returns the optimal bin width
// of the stored values
// using the Scott's rule.
func (p *Profile) ScottWidth() float64 {
	if len(p.ys) < 2 {
		return 0
	}
	_, sd := stat.MeanStdDev(p.ys, p.ws)
	if math.IsNaN(sd) {
		return 0
	}
	return 3.49 * sd * math.Pow(float64(len(p.ys)), -1.0/3)
}

// Distribution returns the profile means
// as a distribution.
func (p *Profile) Distribution() *distribution.Distribution {
	means := make([]float64, len(p.sum))
	for i := range means {
		means[i] = p.Mean(i)
	}
	d, _ := distribution.FromValues(p.ix, means)
	return d
}

// CheckDelinearisation compares a direct profile
// with the delinearisation of a two dimensional distribution
// along the indicated dimension.
// It returns a *BinningQualityError
// if the discrepancy is greater than the tolerance.
func CheckDelinearisation(p *Profile, d *distribution.Distribution, axis int, tol Tolerance) error {
	del, err := Delinearise(d, axis)
	if err != nil {
		return err
	}
	if del.Len() != len(p.sum) {
		return fmt.Errorf("%w: profile with %d bins, distribution with %d bins", binning.ErrDimension, len(p.sum), del.Len())
	}

	var avg, maxDev float64
	var n int
	values := del.Values()
	for i := range p.sum {
		m := p.Mean(i)
		if p.weight[i] == 0 || m == 0 {
			continue
		}
		dev := math.Abs(values[i]-m) / math.Abs(m)
		avg += dev
		maxDev = max(maxDev, dev)
		n++
	}
	if n == 0 {
		return nil
	}
	avg /= float64(n)
	if maxDev <= tol.Bin && avg <= tol.Average {
		return nil
	}
	return &BinningQualityError{
		Axis:         axis,
		MaxDeviation: maxDev,
		AvgDeviation: avg,
		Width:        p.ScottWidth(),
	}
}
