// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package response_test

import (
	"errors"
	"testing"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

func newIndexer(t testing.TB, bins int) binning.Indexer {
	t.Helper()

	ix, err := binning.NewUniform(binning.Range{Min: 0, Max: float64(bins), Bins: bins})
	if err != nil {
		t.Fatalf("unable to build indexer: %v", err)
	}
	return ix
}

func TestNormalisation(t *testing.T) {
	ix := newIndexer(t, 10)
	s := response.NewSmearing(ix)

	src := rand.NewSource(1)
	truth := distuv.Uniform{Min: 0, Max: 10, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 0.8, Src: src}
	u := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for i := 0; i < 2000; i++ {
		tv := truth.Rand()
		switch x := u.Rand(); {
		case x < 0.1:
			require.NoError(t, s.StoreUnreconstructedTruth([]float64{tv}, 1))
		case x < 0.15:
			require.NoError(t, s.StoreReconstructedFake([]float64{truth.Rand()}, 1))
		default:
			require.NoError(t, s.StoreTruthRecoPair([]float64{tv}, []float64{tv + noise.Rand()}, 1, 1))
		}
	}
	s.Finalise()

	for c := 0; c <= ix.Bins(); c++ {
		var sum float64
		for _, e := range s.Row(c) {
			sum += e.Value
		}
		assert.InDelta(t, 1, sum, 1e-9, "row %d", c)

		eff := s.Efficiency(c)
		if eff < 0 || eff > 1+1e-9 {
			t.Errorf("efficiency of %d: got %.6f, want value in [0, 1]", c, eff)
		}
	}

	// missed events reduce the efficiency
	c, _ := ix.Index([]float64{5.5})
	if eff := s.Efficiency(c); eff > 0.99 {
		t.Errorf("efficiency of %d: got %.6f, want < 0.99", c, eff)
	}
}

func TestFinalise(t *testing.T) {
	ix := newIndexer(t, 2)
	s := response.NewSmearing(ix)

	// bins: 0 underflow, 1, 2, 3 overflow, 4 bad
	s.StoreTruthRecoPair([]float64{0.5}, []float64{0.5}, 1, 1)
	s.StoreTruthRecoPair([]float64{0.5}, []float64{1.5}, 1, 1)
	s.StoreUnreconstructedTruth([]float64{0.5}, 2)
	s.StoreTruthRecoPair([]float64{1.5}, []float64{1.5}, 1, 1)
	s.StoreReconstructedFake([]float64{1.5}, 2)

	if s.Finalised() {
		t.Fatalf("matrix finalised before the call to Finalise")
	}
	assert.InDelta(t, 0.6, s.Efficiency(1), 1e-12)
	if !s.Finalised() {
		t.Fatalf("efficiency must finalise the matrix")
	}

	// the fake events are shared between bins 1 and 2
	assert.InDelta(t, 5, s.Norm(1), 1e-12)
	assert.InDelta(t, 0.2, s.At(1, 1), 1e-12)
	assert.InDelta(t, 0.4, s.At(1, 2), 1e-12)
	assert.InDelta(t, 0.4, s.At(1, s.Bad()), 1e-12)

	assert.InDelta(t, 1, s.At(2, 2), 1e-12)
	assert.InDelta(t, 1, s.Efficiency(2), 1e-12)

	// empty causes take the shape of the fake events
	assert.InDelta(t, 1, s.At(0, 2), 1e-12)
	assert.InDelta(t, 1, s.Efficiency(0), 1e-12)

	// fakes are shared by the populated causes,
	// so every row, including the fake row, adds to one
	for c := 0; c <= s.Bad(); c++ {
		var sum float64
		for e := 0; e <= s.Bad(); e++ {
			sum += s.At(c, e)
		}
		assert.InDelta(t, 1, sum, 1e-12, "row %d", c)
	}

	// idempotent
	s.Finalise()
	assert.InDelta(t, 0.2, s.At(1, 1), 1e-12)

	if err := s.StoreTruthRecoPair([]float64{0.5}, []float64{0.5}, 1, 1); !errors.Is(err, response.ErrFinalised) {
		t.Errorf("store after finalise: got error %v, want %v", err, response.ErrFinalised)
	}
	if err := s.StoreUnreconstructedTruth([]float64{0.5}, 1); !errors.Is(err, response.ErrFinalised) {
		t.Errorf("store after finalise: got error %v, want %v", err, response.ErrFinalised)
	}
	if err := s.StoreReconstructedFake([]float64{0.5}, 1); !errors.Is(err, response.ErrFinalised) {
		t.Errorf("store after finalise: got error %v, want %v", err, response.ErrFinalised)
	}
}

func TestEmptyRowsUniform(t *testing.T) {
	ix := newIndexer(t, 2)
	s := response.NewSmearing(ix)
	s.StoreTruthRecoPair([]float64{0.5}, []float64{0.5}, 1, 1)
	s.Finalise()

	// without fakes, empty rows are uniform
	for e := 0; e < ix.Bins(); e++ {
		assert.InDelta(t, 0.25, s.At(3, e), 1e-12)
	}
}

func identity(t testing.TB, ix binning.Indexer) (*response.Smearing, *distribution.Distribution) {
	t.Helper()

	s := response.NewSmearing(ix)
	truth := distribution.New(ix)
	for i := 0; i < 10; i++ {
		v := []float64{float64(i) + 0.5}
		for j := 0; j <= i; j++ {
			if err := s.StoreTruthRecoPair(v, v, 1, 1); err != nil {
				t.Fatalf("store: %v", err)
			}
			truth.StoreEvent(v, 1)
		}
	}
	return s, truth
}

func TestIdentity(t *testing.T) {
	ix := newIndexer(t, 10)
	s, prior := identity(t, ix)

	u, err := response.NewUnfolding(s, prior)
	require.NoError(t, err)
	assert.Equal(t, 10, u.Len())

	data := distribution.New(ix)
	for i := 0; i < 10; i++ {
		data.StoreEvent([]float64{float64(i) + 0.5}, float64(3*i+1))
	}
	data.StoreBadEvent(4)

	got, err := response.Update(data, u)
	require.NoError(t, err)
	for i := 1; i <= 10; i++ {
		want, _ := data.Bin(i)
		v, _ := got.Bin(i)
		assert.InDelta(t, want, v, 1e-9, "bin %d", i)
	}
	assert.Equal(t, 0.0, got.Bad())

	folded, err := response.Fold(got, s)
	require.NoError(t, err)
	for i := 1; i <= 10; i++ {
		want, _ := got.Bin(i)
		v, _ := folded.Bin(i)
		assert.InDelta(t, want, v, 1e-9, "bin %d", i)
	}
}

func TestUnfolding(t *testing.T) {
	ix := newIndexer(t, 2)
	s := response.NewSmearing(ix)

	// P(1|1) = 0.75, P(2|1) = 0.25
	// P(1|2) = 0.5, P(2|2) = 0.5
	for i := 0; i < 3; i++ {
		s.StoreTruthRecoPair([]float64{0.5}, []float64{0.5}, 1, 1)
	}
	s.StoreTruthRecoPair([]float64{0.5}, []float64{1.5}, 1, 1)
	s.StoreTruthRecoPair([]float64{1.5}, []float64{0.5}, 1, 1)
	s.StoreTruthRecoPair([]float64{1.5}, []float64{1.5}, 1, 1)

	prior, _ := distribution.FromValues(ix, []float64{0, 1, 1, 0})
	u, err := response.NewUnfolding(s, prior)
	require.NoError(t, err)

	// P(e=1) = 0.5*0.75 + 0.5*0.5 = 0.625
	assert.InDelta(t, 0.75*0.5/0.625, u.At(1, 1), 1e-12)
	assert.InDelta(t, 0.5*0.5/0.625, u.At(2, 1), 1e-12)
	// P(e=2) = 0.5*0.25 + 0.5*0.5 = 0.375
	assert.InDelta(t, 0.25*0.5/0.375, u.At(1, 2), 1e-12)
	assert.InDelta(t, 0.5*0.5/0.375, u.At(2, 2), 1e-12)

	// causes without prior are empty
	assert.Nil(t, u.Row(0))

	bad, _ := distribution.FromValues(newIndexer(t, 3), []float64{0, 1, 1, 1, 0})
	if _, err := response.NewUnfolding(s, bad); !errors.Is(err, response.ErrMismatch) {
		t.Errorf("unfolding: got error %v, want %v", err, response.ErrMismatch)
	}
}

func TestFoldMissed(t *testing.T) {
	ix := newIndexer(t, 2)
	s := response.NewSmearing(ix)
	s.StoreTruthRecoPair([]float64{0.5}, []float64{0.5}, 1, 1)
	s.StoreUnreconstructedTruth([]float64{0.5}, 1)

	in, _ := distribution.FromValues(ix, []float64{0, 10, 0, 0})
	out, err := response.Fold(in, s)
	require.NoError(t, err)
	v, _ := out.Bin(1)
	assert.InDelta(t, 5, v, 1e-12)
	assert.InDelta(t, 5, out.Bad(), 1e-12)
	assert.InDelta(t, 10, out.Integral(), 1e-12)

	vars, err := response.FoldVariances(in, s)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, vars[1], 1e-12)
}

func TestHistogram(t *testing.T) {
	s, _ := identity(t, newIndexer(t, 10))
	h := s.Histogram("smearing")
	assert.Equal(t, "smearing", h.Annotation()["name"])

	// ten populated rows,
	// plus underflow, overflow and fake rows
	assert.InDelta(t, 13, h.SumW(), 1e-9)
}
