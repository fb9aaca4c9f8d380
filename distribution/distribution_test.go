// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distribution_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUniform(t testing.TB, min, max float64, bins int) binning.Indexer {
	t.Helper()

	ix, err := binning.NewUniform(binning.Range{Min: min, Max: max, Bins: bins})
	if err != nil {
		t.Fatalf("unable to build indexer: %v", err)
	}
	return ix
}

func TestMassConservation(t *testing.T) {
	ix := newUniform(t, 0, 10, 10)
	d := distribution.New(ix)
	if d.Len() != 12 {
		t.Errorf("len: got %d, want %d", d.Len(), 12)
	}

	events := []struct {
		v   float64
		w   float64
		bad bool
	}{
		{v: 0.5, w: 1},
		{v: -3, w: 2.5},
		{w: 0.75, bad: true},
		{v: 9.9, w: 1.25},
		{v: 42, w: 3},
		{w: 0.5, bad: true},
		{v: 4.4, w: -0.25},
	}
	var sum float64
	for _, e := range events {
		sum += e.w
		if e.bad {
			d.StoreBadEvent(e.w)
			continue
		}
		if err := d.StoreEvent([]float64{e.v}, e.w); err != nil {
			t.Fatalf("store event %.3f: %v", e.v, err)
		}
	}
	assert.InDelta(t, sum, d.Integral(), 1e-12)
	assert.InDelta(t, 1.25, d.Bad(), 1e-12)

	var vs float64
	for _, v := range d.Values() {
		vs += v
	}
	assert.InDelta(t, d.Integral(), vs, 1e-12)

	under, err := d.Bin(0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, under)

	p, err := d.Probability(11)
	require.NoError(t, err)
	assert.InDelta(t, 3/sum, p, 1e-12)
}

func TestBinRange(t *testing.T) {
	d := distribution.New(newUniform(t, 0, 1, 2))
	if _, err := d.Bin(4); err != nil {
		t.Errorf("bad bin: unexpected error %v", err)
	}
	if _, err := d.Bin(5); !errors.Is(err, binning.ErrRange) {
		t.Errorf("bin: got error %v, want %v", err, binning.ErrRange)
	}
	if _, err := d.Probability(-1); !errors.Is(err, binning.ErrRange) {
		t.Errorf("probability: got error %v, want %v", err, binning.ErrRange)
	}
	if err := d.StoreEvent([]float64{0.1, 0.2}, 1); !errors.Is(err, binning.ErrDimension) {
		t.Errorf("store: got error %v, want %v", err, binning.ErrDimension)
	}

	// an empty distribution has zero probabilities
	p, err := d.Probability(1)
	if err != nil {
		t.Fatalf("probability: %v", err)
	}
	if p != 0 {
		t.Errorf("probability: got %.6f, want %.6f", p, 0.0)
	}
}

func TestSetBadBin(t *testing.T) {
	d := distribution.New(newUniform(t, 0, 10, 5))
	d.StoreEvent([]float64{1}, 30)
	d.StoreEvent([]float64{5}, 10)
	d.StoreBadEvent(100)

	d.SetBadBin(0.25)
	assert.InDelta(t, 10, d.Bad(), 1e-12)
	assert.InDelta(t, 50, d.Integral(), 1e-12)

	d.SetBadBin(0)
	assert.InDelta(t, 0, d.Bad(), 1e-12)
	assert.InDelta(t, 40, d.Integral(), 1e-12)
}

func TestClone(t *testing.T) {
	d := distribution.New(newUniform(t, 0, 10, 5))
	d.StoreEvent([]float64{1}, 3)

	c := d.Clone()
	c.StoreEvent([]float64{1}, 2)
	if d.Integral() != 3 {
		t.Errorf("source integral: got %.3f, want %.3f", d.Integral(), 3.0)
	}
	if c.Integral() != 5 {
		t.Errorf("clone integral: got %.3f, want %.3f", c.Integral(), 5.0)
	}
	if c.Indexer() != d.Indexer() {
		t.Errorf("clone must share the indexer")
	}
}

func TestFromValues(t *testing.T) {
	ix := newUniform(t, 0, 3, 3)
	d, err := distribution.FromValues(ix, []float64{0, 1, 2, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, 6.0, d.Integral())
	assert.Equal(t, 0.0, d.Bad())

	d, err = distribution.FromValues(ix, []float64{0, 1, 2, 3, 0, 4})
	require.NoError(t, err)
	assert.Equal(t, 10.0, d.Integral())
	assert.Equal(t, 4.0, d.Bad())

	_, err = distribution.FromValues(ix, []float64{1, 2})
	assert.ErrorIs(t, err, distribution.ErrLength)
}

func TestFromWeights(t *testing.T) {
	ix := newUniform(t, 0, 3, 3)
	src, _ := distribution.FromValues(ix, []float64{1, 2, 3, 4, 5, 6})
	d, err := distribution.FromWeights(src, []float64{0, 0.5, 2, 1, 0, 1})
	require.NoError(t, err)

	want := []float64{0, 1, 6, 4, 0, 6}
	assert.Equal(t, want, d.Values())
	assert.Equal(t, 17.0, d.Integral())

	_, err = distribution.FromWeights(src, []float64{1})
	assert.ErrorIs(t, err, distribution.ErrLength)
}

func TestSmoothLinear(t *testing.T) {
	ix := newUniform(t, 0, 5, 5)

	// a linear shape is preserved,
	// including the edge bins
	values := []float64{7, 1, 2, 3, 4, 5, 9, 1}
	d, err := distribution.FromValues(ix, values)
	require.NoError(t, err)
	d.Smooth(1)
	for i, want := range values {
		got, _ := d.Bin(i)
		assert.InDelta(t, want, got, 1e-12, "bin %d", i)
	}

	d.Smooth(2)
	for i, want := range values {
		got, _ := d.Bin(i)
		assert.InDelta(t, want, got, 1e-12, "bin %d", i)
	}
}

func TestSmooth(t *testing.T) {
	ix := newUniform(t, 0, 4, 4)
	d, _ := distribution.FromValues(ix, []float64{0, 0, 3, 0, 0, 0, 0})
	d.Smooth(1)

	// bin 1: neighbour 0 is mirrored: 2*0 - 3
	want := []float64{0, 0, 1, 1, 0, 0, 0}
	for i, w := range want {
		got, _ := d.Bin(i)
		assert.InDelta(t, w, got, 1e-12, "bin %d", i)
	}
	var sum float64
	for _, v := range d.Values() {
		sum += v
	}
	assert.InDelta(t, sum, d.Integral(), 1e-12)
}

func TestSmoothTwoDimensions(t *testing.T) {
	ix, err := binning.NewUniform(
		binning.Range{Min: 0, Max: 3, Bins: 3},
		binning.Range{Min: 0, Max: 2, Bins: 2},
	)
	require.NoError(t, err)

	d := distribution.New(ix)
	d.StoreEvent([]float64{1.5, 0.5}, 6)
	d.Smooth(1)

	// smoothing never crosses rows of the second dimension
	for f := 0; f < d.Len(); f++ {
		nd, _ := ix.Split(f)
		v, _ := d.Bin(f)
		if nd[1] != 1 && v != 0 {
			t.Errorf("bin %v: got %.6f, want %.6f", nd, v, 0.0)
		}
	}
	center, _ := ix.Join([]int{2, 1})
	v, _ := d.Bin(center)
	assert.InDelta(t, 2, v, 1e-12)
}

func TestHistogram(t *testing.T) {
	ix := newUniform(t, 0, 10, 5)
	d := distribution.New(ix)
	d.StoreEvent([]float64{-1}, 1)
	d.StoreEvent([]float64{1}, 2)
	d.StoreEvent([]float64{9}, 3)
	d.StoreEvent([]float64{11}, 4)
	d.StoreBadEvent(5)

	h := d.Histogram("truth")
	if h.Len() != 5 {
		t.Fatalf("histogram bins: got %d, want %d", h.Len(), 5)
	}
	assert.Equal(t, 2.0, h.Value(0))
	assert.Equal(t, 3.0, h.Value(4))
	// under and overflow are included in the sum
	assert.Equal(t, 10.0, h.SumW())
	assert.Equal(t, "truth", h.Annotation()["name"])

	nx, _ := binning.NewUniform(
		binning.Range{Min: 0, Max: 2, Bins: 2},
		binning.Range{Min: 0, Max: 2, Bins: 2},
	)
	nd := distribution.New(nx)
	nd.StoreEvent([]float64{0.5, 0.5}, 1)
	nh := nd.Histogram("")
	if nh.Len() != 16 {
		t.Fatalf("histogram bins: got %d, want %d", nh.Len(), 16)
	}
	flat, _ := nx.Index([]float64{0.5, 0.5})
	if math.Abs(nh.Value(flat)-1) > 1e-12 {
		t.Errorf("flat bin %d: got %.6f, want %.6f", flat, nh.Value(flat), 1.0)
	}
}
