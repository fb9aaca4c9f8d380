// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import (
	"fmt"
	"log/slog"

	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/distribution"
)

// BinByBin is a corrector
// that multiplies each bin of the data
// by the ratio between the true
// and the reconstructed simulated events of the bin.
type BinByBin struct {
	core
	factors []float64
}

// Factors returns the bin-by-bin correction factors
// from the sum of the true and reconstructed events
// of each bin.
// The factor is 0 if there are no true events,
// and 1 if there are true events
// but no reconstructed events.
func Factors(truth, reco []float64) ([]float64, error) {
	if len(truth) != len(reco) {
		return nil, fmt.Errorf("correction: %d true bins, %d reconstructed bins", len(truth), len(reco))
	}
	f := make([]float64, len(truth))
	for i, t := range truth {
		switch {
		case t == 0:
			f[i] = 0
		case reco[i] == 0:
			f[i] = 1
		default:
			f[i] = t / reco[i]
		}
	}
	return f, nil
}

// Fallbacks returns the bins
// with true events
// but without reconstructed events.
func fallbacks(truth, reco []float64) []int {
	var bins []int
	for i, t := range truth {
		if t != 0 && reco[i] == 0 {
			bins = append(bins, i)
		}
	}
	return bins
}

func (b *BinByBin) setFactors() error {
	f, err := Factors(b.mc.truthSum, b.mc.recoSum)
	if err != nil {
		return err
	}
	if fb := fallbacks(b.mc.truthSum, b.mc.recoSum); len(fb) > 0 {
		b.cfg.Metrics.Fallbacks.Add(float64(len(fb)))
		b.cfg.Logger.Warn("bins without reconstructed events",
			slog.String("id", b.id),
			slog.Any("bins", fb),
		)
	}
	b.factors = f
	return nil
}

// Correct multiplies the data by the correction factors.
func (b *BinByBin) Correct(opts Options) error {
	if b.finalised {
		return ErrFinalised
	}
	if err := b.setFactors(); err != nil {
		return err
	}
	corrected, err := distribution.FromWeights(b.data, b.factors)
	if err != nil {
		return err
	}
	if opts.ErrorMode > 0 {
		b.variances = poissonVariances(b.data, b.factors)
		if opts.ErrorMode > 1 {
			b.cov = diagonalCov(b.variances)
		}
	}
	b.finish(corrected, b.mc.truth)
	return nil
}

// ClosureTest corrects the simulated reconstructed distribution
// and compares it with the simulated truth.
// Iterations and smoothing are ignored.
func (b *BinByBin) ClosureTest(iterations int, smooth bool) (compare.Result, bool, error) {
	if err := b.setFactors(); err != nil {
		return compare.Result{}, false, err
	}
	got, err := distribution.FromWeights(b.mc.reco, b.factors)
	if err != nil {
		return compare.Result{}, false, err
	}
	return b.closure(got, b.mc.truth)
}

// MonteCarloCrossCheck always returns 1,
// as the bin-by-bin correction is not iterative.
func (b *BinByBin) MonteCarloCrossCheck(ref *distribution.Distribution, smooth bool) (int, error) {
	return 1, nil
}

// Clone returns a new empty bin-by-bin corrector.
func (b *BinByBin) Clone(label string) Corrector {
	return &BinByBin{core: b.clone(label)}
}

// CloneShareSmearing returns a new bin-by-bin corrector
// that shares the simulated events.
func (b *BinByBin) CloneShareSmearing() Corrector {
	return &BinByBin{core: b.share()}
}
