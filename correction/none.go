// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import (
	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/distribution"
)

// NoCorrection is a corrector
// that returns the data without any correction.
// The simulated reconstructed distribution
// is used as the truth.
type NoCorrection struct {
	core
}

// Correct copies the data.
func (n *NoCorrection) Correct(opts Options) error {
	if n.finalised {
		return ErrFinalised
	}
	if opts.ErrorMode > 0 {
		n.variances = poissonVariances(n.data, nil)
		if opts.ErrorMode > 1 {
			n.cov = diagonalCov(n.variances)
		}
	}
	n.finish(n.data.Clone(), n.mc.reco)
	return nil
}

// ClosureTest compares the simulated reconstructed distribution
// with the simulated truth.
func (n *NoCorrection) ClosureTest(iterations int, smooth bool) (compare.Result, bool, error) {
	return n.closure(n.mc.reco, n.mc.truth)
}

// MonteCarloCrossCheck always returns 1.
func (n *NoCorrection) MonteCarloCrossCheck(ref *distribution.Distribution, smooth bool) (int, error) {
	return 1, nil
}

// Clone returns a new empty corrector.
func (n *NoCorrection) Clone(label string) Corrector {
	return &NoCorrection{core: n.clone(label)}
}

// CloneShareSmearing returns a new corrector
// that shares the simulated events.
func (n *NoCorrection) CloneShareSmearing() Corrector {
	return &NoCorrection{core: n.share()}
}
