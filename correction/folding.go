// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import (
	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/response"
)

// Folding is a corrector
// that applies the response of the detector
// to the data,
// i.e., the data is taken as a true distribution
// and the result is the expected reconstructed distribution.
type Folding struct {
	core
}

// Correct folds the data.
func (f *Folding) Correct(opts Options) error {
	if f.finalised {
		return ErrFinalised
	}
	folded, err := response.Fold(f.data, f.mc.smearing)
	if err != nil {
		return err
	}
	if opts.ErrorMode > 0 {
		vars, err := response.FoldVariances(f.data, f.mc.smearing)
		if err != nil {
			return err
		}
		f.variances = vars
		if opts.ErrorMode > 1 {
			f.cov = diagonalCov(vars)
		}
	}
	f.finish(folded, f.mc.reco)
	return nil
}

// ClosureTest folds the simulated truth
// and compares it with the simulated reconstructed distribution.
// Iterations and smoothing are ignored.
func (f *Folding) ClosureTest(iterations int, smooth bool) (compare.Result, bool, error) {
	folded, err := response.Fold(f.mc.truth, f.mc.smearing)
	if err != nil {
		return compare.Result{}, false, err
	}
	return f.closure(folded, f.mc.reco)
}

// MonteCarloCrossCheck always returns 1,
// as the folding is not iterative.
func (f *Folding) MonteCarloCrossCheck(ref *distribution.Distribution, smooth bool) (int, error) {
	return 1, nil
}

// Clone returns a new empty folding corrector.
func (f *Folding) Clone(label string) Corrector {
	return &Folding{core: f.clone(label)}
}

// CloneShareSmearing returns a new folding corrector
// that shares the simulated events.
func (f *Folding) CloneShareSmearing() Corrector {
	return &Folding{core: f.share()}
}
