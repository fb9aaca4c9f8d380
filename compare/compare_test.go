// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package compare_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDist(t testing.TB, values ...float64) *distribution.Distribution {
	t.Helper()

	ix, err := binning.NewUniform(binning.Range{Min: 0, Max: float64(len(values)), Bins: len(values)})
	if err != nil {
		t.Fatalf("unable to build indexer: %v", err)
	}
	d := distribution.New(ix)
	for i, v := range values {
		if err := d.StoreEvent([]float64{float64(i) + 0.5}, v); err != nil {
			t.Fatalf("store: %v", err)
		}
	}
	return d
}

func TestIdentical(t *testing.T) {
	a := newDist(t, 10, 20, 30, 5)
	r, err := compare.Distributions(a, a.Clone(), false)
	require.NoError(t, err)

	if !r.Perfect() {
		t.Errorf("identical distributions: got %v, want perfect match", r)
	}
	if !r.Passed(4) {
		t.Errorf("identical distributions: got %v, want passed", r)
	}
	assert.Equal(t, 3, r.NDF)
	assert.InDelta(t, 1, r.PValue, 1e-12)
}

func TestChi2(t *testing.T) {
	a := newDist(t, 10, 20)
	b := newDist(t, 20, 10)
	r, err := compare.Distributions(a, b, false)
	require.NoError(t, err)

	assert.InDelta(t, 6000.0/900, r.Chi2, 1e-9)
	assert.Equal(t, 1, r.NDF)
	assert.InDelta(t, 0.00982, r.PValue, 1e-4)

	assert.InDelta(t, 1.0/3, r.Distance, 1e-9)
	assert.InDelta(t, 0.0713, r.KS, 1e-3)

	if r.Passed(2) {
		t.Errorf("different distributions: got %v, want not passed", r)
	}
}

func TestClosureDeviations(t *testing.T) {
	a := newDist(t, 11, 9, 0)
	b := newDist(t, 10, 10, 0)
	r, err := compare.Distributions(a, b, true)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, r.AvgDeviation, 1e-12)
	assert.InDelta(t, 0.1, r.MaxDeviation, 1e-12)
	if !r.Passed(3) {
		t.Errorf("similar distributions: got %v, want passed", r)
	}
}

func TestEmpty(t *testing.T) {
	a := newDist(t, 0, 0)
	b := newDist(t, 1, 2)
	r, err := compare.Distributions(a, b, false)
	require.NoError(t, err)
	if !math.IsInf(r.Chi2, 1) {
		t.Errorf("chi2: got %.6f, want +Inf", r.Chi2)
	}
	assert.Equal(t, 0.0, r.KS)
	if r.Passed(2) {
		t.Errorf("empty distribution: got %v, want not passed", r)
	}

	r, err = compare.Distributions(a, a, false)
	require.NoError(t, err)
	if !r.Perfect() {
		t.Errorf("empty distributions: got %v, want perfect match", r)
	}

	c := newDist(t, 1, 2, 3)
	if _, err := compare.Distributions(a, c, false); err == nil {
		t.Errorf("distributions with different bins: expecting error")
	}
}

func new2D(t testing.TB) binning.Indexer {
	t.Helper()

	ix, err := binning.NewUniform(
		binning.Range{Min: 0, Max: 2, Bins: 2},
		binning.Range{Min: 0, Max: 2, Bins: 2},
	)
	if err != nil {
		t.Fatalf("unable to build indexer: %v", err)
	}
	return ix
}

func TestDelinearise(t *testing.T) {
	ix := new2D(t)
	d := distribution.New(ix)
	d.StoreEvent([]float64{0.5, 0.5}, 1)
	d.StoreEvent([]float64{0.5, 1.5}, 3)
	d.StoreEvent([]float64{1.5, 0.5}, 2)

	p, err := compare.Delinearise(d, 0)
	require.NoError(t, err)
	if p.Len() != 4 {
		t.Fatalf("profile bins: got %d, want %d", p.Len(), 4)
	}
	v, _ := p.Bin(1)
	assert.InDelta(t, 1.25, v, 1e-12)
	v, _ = p.Bin(2)
	assert.InDelta(t, 0.5, v, 1e-12)

	p, err = compare.Delinearise(d, 1)
	require.NoError(t, err)
	v, _ = p.Bin(1)
	assert.InDelta(t, (0.5+2*1.5)/3, v, 1e-12)

	r, err := compare.DelineariseAndCompare(d, d.Clone(), 0, true)
	require.NoError(t, err)
	if !r.Perfect() {
		t.Errorf("delinearise and compare: got %v, want perfect match", r)
	}

	one := newDist(t, 1, 2)
	if _, err := compare.Delinearise(one, 0); !errors.Is(err, binning.ErrDimension) {
		t.Errorf("delinearise: got error %v, want %v", err, binning.ErrDimension)
	}
}

func TestCheckDelinearisation(t *testing.T) {
	ix := new2D(t)
	ax, _ := ix.Axis(0)

	points := [][3]float64{
		{0.5, 0.5, 1},
		{0.5, 1.5, 3},
		{1.5, 0.5, 2},
	}
	p, err := compare.NewProfile(ax)
	require.NoError(t, err)
	d := distribution.New(ix)
	for _, pt := range points {
		require.NoError(t, p.Fill(pt[0], pt[1], pt[2]))
		require.NoError(t, d.StoreEvent(pt[:2], pt[2]))
	}
	assert.InDelta(t, 1.25, p.Mean(1), 1e-12)
	pd := p.Distribution()
	v, _ := pd.Bin(1)
	assert.InDelta(t, 1.25, v, 1e-12)

	if err := compare.CheckDelinearisation(p, d, 0, compare.DefaultTolerance()); err != nil {
		t.Errorf("check: unexpected error: %v", err)
	}

	// values far from the bin centers
	q, _ := compare.NewProfile(ax)
	q.Fill(0.5, 0.9, 1)
	q.Fill(0.5, 1.9, 3)
	q.Fill(1.5, 0.9, 2)
	err = compare.CheckDelinearisation(q, d, 0, compare.DefaultTolerance())
	var bq *compare.BinningQualityError
	if !errors.As(err, &bq) {
		t.Fatalf("check: got error %v, want %T", err, bq)
	}
	if bq.Width <= 0 {
		t.Errorf("suggested width: got %.6f, want > 0", bq.Width)
	}
	if bq.MaxDeviation <= 0.01 {
		t.Errorf("max deviation: got %.6f, want > 0.01", bq.MaxDeviation)
	}

	// a large tolerance accepts the binning
	if err := compare.CheckDelinearisation(q, d, 0, compare.Tolerance{Bin: 1, Average: 1}); err != nil {
		t.Errorf("check: unexpected error: %v", err)
	}
}
