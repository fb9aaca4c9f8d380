// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package response implements the response of a detector
// as a smearing matrix
// (the probability of a reconstructed effect
// given a true cause),
// and its Bayesian inverse,
// the unfolding matrix.
package response

import (
	"fmt"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/sparse"
	"go-hep.org/x/hep/hbook"
)

// Smearing is a smearing matrix.
//
// Rows are causes (truth bins)
// and columns are effects (reconstructed bins).
// Both use the flat index of an indexer.
// The index equal to the number of flat bins
// is the bad index:
// as a row it stores fake events
// (reconstructed events without a true cause);
// as a column it stores missed events
// (true events that were not reconstructed).
type Smearing struct {
	ix  binning.Indexer
	m   *sparse.Matrix
	bad int

	norm []float64
	eff  []float64

	rows      [][]sparse.Entry
	finalised bool
}

// NewSmearing returns an empty smearing matrix
// using the given indexer.
func NewSmearing(ix binning.Indexer) *Smearing {
	b := ix.Bins()
	return &Smearing{
		ix:   ix,
		m:    sparse.New(),
		bad:  b,
		norm: make([]float64, b+1),
	}
}

// Indexer returns the indexer of the smearing matrix.
func (s *Smearing) Indexer() binning.Indexer {
	return s.ix
}

// Bad returns the index of the bad row and column.
func (s *Smearing) Bad() int {
	return s.bad
}

// StoreTruthRecoPair stores an event
// with a true and a reconstructed value.
// The reconstructed weight is added to the matrix,
// and the truth weight to the normalisation
// of the cause.
func (s *Smearing) StoreTruthRecoPair(truth, reco []float64, truthWeight, recoWeight float64) error {
	if s.finalised {
		return ErrFinalised
	}
	c, err := s.ix.Index(truth)
	if err != nil {
		return fmt.Errorf("truth: %w", err)
	}
	e, err := s.ix.Index(reco)
	if err != nil {
		return fmt.Errorf("reco: %w", err)
	}
	s.m.Add(c, e, recoWeight)
	s.norm[c] += truthWeight
	return nil
}

// StoreUnreconstructedTruth stores a true event
// that was not reconstructed.
func (s *Smearing) StoreUnreconstructedTruth(truth []float64, w float64) error {
	if s.finalised {
		return ErrFinalised
	}
	c, err := s.ix.Index(truth)
	if err != nil {
		return fmt.Errorf("truth: %w", err)
	}
	s.m.Add(c, s.bad, w)
	s.norm[c] += w
	return nil
}

// StoreReconstructedFake stores a reconstructed event
// without a true cause.
func (s *Smearing) StoreReconstructedFake(reco []float64, w float64) error {
	if s.finalised {
		return ErrFinalised
	}
	e, err := s.ix.Index(reco)
	if err != nil {
		return fmt.Errorf("reco: %w", err)
	}
	s.m.Add(s.bad, e, w)
	s.norm[s.bad] += w
	return nil
}

// Finalise converts the stored weights
// into probabilities.
//
// The fake events are shared between all the causes
// with events,
// then each row is normalised,
// with the shared fakes added to its normalisation
// (so the fakes are divided by the number of populated causes
// rather than by the number of bins minus one,
// and every row adds to one),
// and the efficiency of the cause is calculated
// as the probability of being reconstructed
// in any bin.
// Causes without events take the shape
// of the fake events
// (or a uniform distribution if there are no fakes)
// with an efficiency of one.
//
// Finalise can be called several times,
// only the first call modifies the matrix.
func (s *Smearing) Finalise() {
	if s.finalised {
		return
	}
	s.finalised = true

	fake := s.m.Row(s.bad)
	var populated []int
	for c := 0; c < s.bad; c++ {
		if s.norm[c] > 0 {
			populated = append(populated, c)
		}
	}

	if len(populated) > 0 {
		n := float64(len(populated))
		for _, c := range populated {
			for _, f := range fake {
				share := f.Value / n
				s.m.Add(c, f.Col, share)
				s.norm[c] += share
			}
		}
	}

	var fakeSum float64
	for _, f := range fake {
		fakeSum += f.Value
	}

	s.eff = make([]float64, s.bad+1)
	for c := 0; c < s.bad; c++ {
		if s.norm[c] <= 0 {
			s.m.ClearRow(c)
			s.setFakeShape(c, fake, fakeSum)
			s.eff[c] = 1
			continue
		}
		var sum float64
		for _, e := range s.m.Row(c) {
			if e.Col == s.bad {
				continue
			}
			sum += e.Value
		}
		s.eff[c] = sum / s.norm[c]
		s.m.ScaleRow(c, 1/s.norm[c])
	}

	// the fake row keeps the shape of the fake events
	s.m.ClearRow(s.bad)
	s.setFakeShape(s.bad, fake, fakeSum)
	s.eff[s.bad] = 1

	s.rows = s.m.CSR(s.bad + 1)
}

func (s *Smearing) setFakeShape(c int, fake []sparse.Entry, sum float64) {
	if len(fake) == 0 || sum == 0 {
		v := 1 / float64(s.bad)
		for e := 0; e < s.bad; e++ {
			s.m.Set(c, e, v)
		}
		return
	}
	for _, f := range fake {
		s.m.Set(c, f.Col, f.Value/sum)
	}
}

// Finalised returns true if the matrix is already finalised.
func (s *Smearing) Finalised() bool {
	return s.finalised
}

// At returns the probability of an effect
// given a cause.
// If the matrix is not finalised,
// it will be finalised.
func (s *Smearing) At(cause, effect int) float64 {
	s.Finalise()
	return s.m.At(cause, effect)
}

// Efficiency returns the probability
// of a cause to be reconstructed.
// If the matrix is not finalised,
// it will be finalised.
func (s *Smearing) Efficiency(cause int) float64 {
	s.Finalise()
	if cause < 0 || cause >= len(s.eff) {
		return 0
	}
	return s.eff[cause]
}

// Norm returns the normalisation of a cause,
// i.e., the total weight stored for the cause.
// After finalisation,
// it includes the share of fake events.
func (s *Smearing) Norm(cause int) float64 {
	if cause < 0 || cause >= len(s.norm) {
		return 0
	}
	return s.norm[cause]
}

// Row returns the non-zero probabilities of a cause,
// sorted by effect.
// The returned slice must not be modified.
// If the matrix is not finalised,
// it will be finalised.
func (s *Smearing) Row(cause int) []sparse.Entry {
	s.Finalise()
	if cause < 0 || cause >= len(s.rows) {
		return nil
	}
	return s.rows[cause]
}

// Len returns the number of non-zero elements
// of the matrix.
func (s *Smearing) Len() int {
	return s.m.Len()
}

// Histogram returns the matrix as a two dimensional histogram,
// the X axis are the causes
// and the Y axis the effects.
// Both axis include the bad index.
// If the matrix is not finalised,
// it will be finalised.
func (s *Smearing) Histogram(name string) *hbook.H2D {
	s.Finalise()
	n := s.bad + 1
	h := hbook.NewH2D(n, 0, float64(n), n, 0, float64(n))
	for c, row := range s.rows {
		for _, e := range row {
			h.Fill(float64(c)+0.5, float64(e.Col)+0.5, e.Value)
		}
	}
	if name != "" {
		h.Annotation()["name"] = name
	}
	return h
}
