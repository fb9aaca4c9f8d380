// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package distribution implements weighted histograms
// over the flat bins of an indexer.
//
// Each distribution has an additional "bad" bin
// (with index equal to the number of flat bins)
// used to store weight that cannot be placed
// in the main histogram,
// for example the fake events of a truth distribution,
// or the missed events of a reconstructed distribution.
package distribution

import (
	"errors"
	"fmt"

	"github.com/js-arias/unfold/binning"
)

// ErrLength is returned when a vector of values
// does not match the size of a distribution.
var ErrLength = errors.New("distribution: length mismatch")

// Distribution is a weighted histogram.
type Distribution struct {
	ix       binning.Indexer
	w        []float64
	integral float64
}

// New creates a new empty distribution
// using the given indexer.
// The indexer is not owned by the distribution.
func New(ix binning.Indexer) *Distribution {
	return &Distribution{
		ix: ix,
		w:  make([]float64, ix.Bins()+1),
	}
}

// FromValues creates a new distribution
// from a vector of bin weights.
// The vector must have the number of flat bins of the indexer,
// and optionally,
// an extra value for the bad bin.
func FromValues(ix binning.Indexer, values []float64) (*Distribution, error) {
	d := New(ix)
	if len(values) != len(d.w) && len(values) != len(d.w)-1 {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrLength, len(values), len(d.w))
	}
	copy(d.w, values)
	d.sum()
	return d, nil
}

// FromWeights creates a new distribution
// by multiplying each bin of a source distribution
// (including the bad bin)
// by a factor.
func FromWeights(src *Distribution, factors []float64) (*Distribution, error) {
	if len(factors) != len(src.w) {
		return nil, fmt.Errorf("%w: got %d factors, want %d", ErrLength, len(factors), len(src.w))
	}
	d := New(src.ix)
	for i, v := range src.w {
		d.w[i] = v * factors[i]
	}
	d.sum()
	return d, nil
}

// Indexer returns the indexer of the distribution.
func (d *Distribution) Indexer() binning.Indexer {
	return d.ix
}

// Len returns the number of flat bins
// of the distribution
// (without the bad bin).
func (d *Distribution) Len() int {
	return len(d.w) - 1
}

// StoreEvent adds an event with the given weight.
func (d *Distribution) StoreEvent(values []float64, w float64) error {
	i, err := d.ix.Index(values)
	if err != nil {
		return err
	}
	d.w[i] += w
	d.integral += w
	return nil
}

// StoreBadEvent adds the weight of an event
// to the bad bin.
func (d *Distribution) StoreBadEvent(w float64) {
	d.w[len(d.w)-1] += w
	d.integral += w
}

// SetBadBin sets the weight of the bad bin
// as a fraction of the weight
// stored in all other bins.
func (d *Distribution) SetBadBin(fraction float64) {
	bad := len(d.w) - 1
	other := d.integral - d.w[bad]
	d.w[bad] = fraction * other
	d.integral = other + d.w[bad]
}

// Bad returns the weight of the bad bin.
func (d *Distribution) Bad() float64 {
	return d.w[len(d.w)-1]
}

// Bin returns the weight of a bin.
// The bad bin is at index Len().
func (d *Distribution) Bin(i int) (float64, error) {
	if i < 0 || i >= len(d.w) {
		return 0, fmt.Errorf("%w: bin %d, bins %d", binning.ErrRange, i, len(d.w))
	}
	return d.w[i], nil
}

// Probability returns the weight of a bin
// over the integral of the distribution.
func (d *Distribution) Probability(i int) (float64, error) {
	v, err := d.Bin(i)
	if err != nil {
		return 0, err
	}
	if d.integral == 0 {
		return 0, nil
	}
	return v / d.integral, nil
}

// Integral returns the total weight of the distribution,
// including the bad bin.
func (d *Distribution) Integral() float64 {
	return d.integral
}

// Values returns the bin weights,
// including the bad bin as the last element.
// The returned slice must not be modified.
func (d *Distribution) Values() []float64 {
	return d.w
}

// Clone returns a copy of the distribution
// that shares the indexer.
func (d *Distribution) Clone() *Distribution {
	return &Distribution{
		ix:       d.ix,
		w:        append([]float64(nil), d.w...),
		integral: d.integral,
	}
}

func (d *Distribution) sum() {
	var s float64
	for _, v := range d.w {
		s += v
	}
	d.integral = s
}
