// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package response

import (
	"fmt"
	"math"

	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/sparse"
)

// Unfolding is an unfolding matrix,
// the probability of a cause given an effect,
// divided by the efficiency of the cause.
//
// It only includes regular causes and effects.
type Unfolding struct {
	n    int
	m    *sparse.Matrix
	rows [][]sparse.Entry
}

// NewUnfolding returns the unfolding matrix
// of a smearing matrix
// using the Bayes theorem,
// with a prior distribution of the causes.
// The smearing matrix will be finalised.
func NewUnfolding(s *Smearing, prior *distribution.Distribution) (*Unfolding, error) {
	if prior.Len() != s.bad {
		return nil, fmt.Errorf("%w: prior with %d bins, matrix with %d bins", ErrMismatch, prior.Len(), s.bad)
	}
	s.Finalise()

	pc := make([]float64, s.bad)
	if in := prior.Integral(); in != 0 {
		for c, v := range prior.Values()[:s.bad] {
			pc[c] = v / in
		}
	}

	// marginal probability of the effects
	pe := make([]float64, s.bad)
	for c, p := range pc {
		if p <= 0 {
			continue
		}
		for _, e := range s.rows[c] {
			if e.Col >= s.bad {
				continue
			}
			pe[e.Col] += e.Value * p
		}
	}

	m := sparse.New()
	for c, p := range pc {
		if p <= 0 {
			continue
		}
		eff := s.eff[c]
		for _, e := range s.rows[c] {
			if e.Col >= s.bad {
				continue
			}
			v := e.Value * p / (pe[e.Col] * eff)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			m.Set(c, e.Col, v)
		}
	}

	return &Unfolding{
		n:    s.bad,
		m:    m,
		rows: m.CSR(s.bad),
	}, nil
}

// At returns an element of the unfolding matrix.
func (u *Unfolding) At(cause, effect int) float64 {
	return u.m.At(cause, effect)
}

// Bins returns the number of causes
// (and effects)
// of the matrix.
func (u *Unfolding) Bins() int {
	return u.n
}

// Len returns the number of non-zero elements.
func (u *Unfolding) Len() int {
	return u.m.Len()
}

// Row returns the non-zero elements of a cause,
// sorted by effect.
// The returned slice must not be modified.
func (u *Unfolding) Row(cause int) []sparse.Entry {
	if cause < 0 || cause >= len(u.rows) {
		return nil
	}
	return u.rows[cause]
}

// Update returns a new distribution of the causes,
// by applying the unfolding matrix
// to a distribution of effects.
// The bad bin of the result is empty.
func Update(data *distribution.Distribution, u *Unfolding) (*distribution.Distribution, error) {
	if data.Len() != u.n {
		return nil, fmt.Errorf("%w: data with %d bins, matrix with %d bins", ErrMismatch, data.Len(), u.n)
	}
	dv := data.Values()
	values := make([]float64, u.n+1)
	for c, row := range u.rows {
		var sum float64
		for _, e := range row {
			sum += dv[e.Col] * e.Value
		}
		values[c] = sum
	}
	return distribution.FromValues(data.Indexer(), values)
}
