// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package covariance implements the propagation
// of the statistical uncertainties
// of the data and the smearing matrix
// into the covariance of an unfolded distribution.
//
// The smearing matrix is taken as a set of multinomial distributions,
// one for each cause,
// estimated from the events of the cause.
// The covariance of the unfolding matrix elements
// is calculated by the linear propagation
// of the covariance of the smearing probabilities,
// as described by G. D'Agostini (1995)
// Nucl. Instrum. Meth. A362: 487-498.
package covariance

import (
	"github.com/js-arias/unfold/response"
	"github.com/js-arias/unfold/sparse"
)

// SmearingCovariance calculates the covariance
// between elements of an unfolding matrix
// produced by the uncertainty of the smearing matrix.
type SmearingCovariance struct {
	u *response.Unfolding
	s *response.Smearing

	inv []float64 // inverse of the normalisation of each cause
	eff []float64 // efficiency of each cause

	// shared effect cache:
	// the terms of the covariance summed over all the causes
	diag  []float64
	cross *sparse.Matrix
}

// NewSmearingCovariance returns a new smearing covariance
// for an unfolding matrix
// and the smearing matrix used to build it.
func NewSmearingCovariance(u *response.Unfolding, s *response.Smearing) *SmearingCovariance {
	s.Finalise()
	n := u.Bins()
	sc := &SmearingCovariance{
		u:     u,
		s:     s,
		inv:   make([]float64, n),
		eff:   make([]float64, n),
		diag:  make([]float64, n),
		cross: sparse.New(),
	}

	for c := 0; c < n; c++ {
		sc.eff[c] = s.Efficiency(c)
		if nc := s.Norm(c); nc > 0 {
			sc.inv[c] = 1 / nc
		}

		row := u.Row(c)
		if len(row) == 0 || sc.inv[c] == 0 {
			continue
		}
		w := sc.eff[c] * sc.eff[c] * sc.inv[c]
		for _, ei := range row {
			sc.diag[ei.Col] += w * ei.Value * ei.Value / s.At(c, ei.Col)
			for _, ej := range row {
				sc.cross.Add(ei.Col, ej.Col, w*ei.Value*ej.Value)
			}
		}
	}
	return sc
}

// Common returns the terms of the covariance
// between the effects I and J
// that are shared by all causes.
func (sc *SmearingCovariance) common(i, j int) float64 {
	c := -sc.cross.At(i, j)
	if i == j {
		c += sc.diag[i]
	}
	return c
}

// ThisContribution returns the covariance
// between the unfolding matrix elements (K, I) and (L, J).
func (sc *SmearingCovariance) ThisContribution(i, j, k, l int) float64 {
	mKI := sc.u.At(k, i)
	if mKI == 0 {
		return 0
	}
	mLJ := sc.u.At(l, j)
	if mLJ == 0 {
		return 0
	}

	var dIJ float64
	if i == j {
		dIJ = 1
	}

	v := sc.common(i, j)
	tK := dIJ/sc.s.At(k, i) - 1/sc.eff[k]
	if k == l {
		v += sc.inv[k] * tK
	}
	v -= sc.inv[k] * sc.eff[k] * sc.u.At(k, j) * tK

	tL := dIJ/sc.s.At(l, j) - 1/sc.eff[l]
	v -= sc.inv[l] * sc.eff[l] * sc.u.At(l, i) * tL

	return mKI * mLJ * v
}
