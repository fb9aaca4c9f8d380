// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package covariance_test

import (
	"testing"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/covariance"
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

type sample struct {
	s     *response.Smearing
	u     *response.Unfolding
	prior *distribution.Distribution
	data  *distribution.Distribution
}

func newSample(t testing.TB, ix binning.Indexer, sigma float64, events int, seed uint64) sample {
	t.Helper()

	src := rand.NewSource(seed)
	hi := float64(ix.NumBins(0))
	truth := distuv.Uniform{Min: 0, Max: hi, Src: src}
	eff := distuv.Uniform{Min: 0, Max: 1, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}

	s := response.NewSmearing(ix)
	prior := distribution.New(ix)
	data := distribution.New(ix)
	for i := 0; i < events; i++ {
		tv := truth.Rand()
		v := []float64{tv}
		prior.StoreEvent(v, 1)
		if eff.Rand() < 0.05 {
			s.StoreUnreconstructedTruth(v, 1)
			continue
		}
		s.StoreTruthRecoPair(v, []float64{tv + noise.Rand()}, 1, 1)
		data.StoreEvent([]float64{truth.Rand() + noise.Rand()}, 1)
	}
	u, err := response.NewUnfolding(s, prior)
	if err != nil {
		t.Fatalf("unfolding: %v", err)
	}
	return sample{s: s, u: u, prior: prior, data: data}
}

func TestIdentityIsMultinomial(t *testing.T) {
	ix := newIndexer(t, 5)
	s := response.NewSmearing(ix)
	prior := distribution.New(ix)
	for i := 0; i < 5; i++ {
		v := []float64{float64(i) + 0.5}
		for j := 0; j < 100; j++ {
			s.StoreTruthRecoPair(v, v, 1, 1)
			prior.StoreEvent(v, 1)
		}
	}
	u, err := response.NewUnfolding(s, prior)
	require.NoError(t, err)

	data, _ := distribution.FromValues(ix, []float64{0, 10, 20, 30, 40, 0, 0})
	total := data.Integral()

	cov, err := covariance.New(u, s, data, total, 2)
	require.NoError(t, err)
	for k := 1; k <= 5; k++ {
		xk, _ := data.Bin(k)
		assert.InDelta(t, xk*(1-xk/total), cov.At(k, k), 1e-9, "variance of %d", k)
		for l := k + 1; l <= 5; l++ {
			xl, _ := data.Bin(l)
			assert.InDelta(t, -xk*xl/total, cov.At(k, l), 1e-9, "covariance of %d, %d", k, l)
		}
	}

	vars, err := covariance.JustVariances(u, s, data, total)
	require.NoError(t, err)
	assert.InDeltaSlice(t, covariance.Diagonal(cov), vars, 1e-9)
}

func TestJustVariancesIsDiagonal(t *testing.T) {
	ix := newIndexer(t, 8)
	sm := newSample(t, ix, 0.7, 5000, 7)

	total := sm.data.Integral()
	cov, err := covariance.New(sm.u, sm.s, sm.data, total, 0)
	require.NoError(t, err)
	vars, err := covariance.JustVariances(sm.u, sm.s, sm.data, total)
	require.NoError(t, err)

	diag := covariance.Diagonal(cov)
	require.Len(t, vars, len(diag))
	for i := range vars {
		assert.InDelta(t, diag[i], vars[i], 1e-9*max(1, diag[i]), "bin %d", i)
		if vars[i] < 0 {
			t.Errorf("variance of %d: got %.6f, want >= 0", i, vars[i])
		}
	}

	// variances are larger than the data term
	// because of the smearing uncertainty
	for k := 2; k <= 7; k++ {
		if vars[k] <= 0 {
			t.Errorf("variance of %d: got %.6f, want > 0", k, vars[k])
		}
	}
}

func TestParallelIsDeterministic(t *testing.T) {
	ix := newIndexer(t, 6)
	sm := newSample(t, ix, 0.5, 3000, 11)
	total := sm.data.Integral()

	one, err := covariance.New(sm.u, sm.s, sm.data, total, 1)
	require.NoError(t, err)
	many, err := covariance.New(sm.u, sm.s, sm.data, total, 4)
	require.NoError(t, err)

	n := one.SymmetricDim()
	for k := 0; k < n; k++ {
		for l := 0; l < n; l++ {
			if one.At(k, l) != many.At(k, l) {
				t.Errorf("element %d, %d: got %v, want %v", k, l, many.At(k, l), one.At(k, l))
			}
		}
	}
}

func TestThisContributionSymmetry(t *testing.T) {
	ix := newIndexer(t, 4)
	sm := newSample(t, ix, 0.6, 2000, 3)
	sc := covariance.NewSmearingCovariance(sm.u, sm.s)

	n := ix.Bins()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					a := sc.ThisContribution(i, j, k, l)
					b := sc.ThisContribution(j, i, l, k)
					assert.InDelta(t, a, b, 1e-12, "(%d, %d, %d, %d)", i, j, k, l)
				}
			}
		}
	}

	// elements outside the unfolding matrix
	// have no covariance
	if v := sc.ThisContribution(0, 0, 0, 0); v != 0 {
		t.Errorf("underflow contribution: got %v, want 0", v)
	}
}

func TestMismatch(t *testing.T) {
	ix := newIndexer(t, 4)
	sm := newSample(t, ix, 0.6, 200, 5)
	other := distribution.New(newIndexer(t, 3))
	if _, err := covariance.New(sm.u, sm.s, other, 1, 1); err == nil {
		t.Errorf("covariance with different bins: expecting error")
	}
	if _, err := covariance.JustVariances(sm.u, sm.s, other, 1); err == nil {
		t.Errorf("variances with different bins: expecting error")
	}
}
