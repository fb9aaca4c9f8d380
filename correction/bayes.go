// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import (
	"log/slog"
	"time"

	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/covariance"
	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/response"
)

// MaxCrossCheck is the maximum number of iterations
// of a Monte Carlo cross check.
const MaxCrossCheck = 10

// Bayes is a corrector
// that uses the iterative Bayesian unfolding.
type Bayes struct {
	core
}

// An iteration is the state of an iterative unfolding.
type iteration struct {
	s      *response.Smearing
	data   *distribution.Distribution
	prior  *distribution.Distribution
	smooth bool

	u *response.Unfolding
	n int
}

// Next makes a new iteration
// and returns the unfolded distribution.
// The unfolded distribution is the prior
// of the next iteration.
func (it *iteration) next() (*distribution.Distribution, error) {
	// the first prior is never smoothed
	if it.n > 0 && it.smooth {
		it.prior.Smooth(1)
	}
	u, err := response.NewUnfolding(it.s, it.prior)
	if err != nil {
		return nil, err
	}
	d, err := response.Update(it.data, u)
	if err != nil {
		return nil, err
	}
	it.u = u
	it.n++
	// keep an unmodified copy of the result
	it.prior = d.Clone()
	return d, nil
}

// Correct unfolds the data.
func (b *Bayes) Correct(opts Options) error {
	if b.finalised {
		return ErrFinalised
	}

	b.data.SetBadBin(b.mc.badRatio())
	b.mc.smearing.Finalise()

	it := &iteration{
		s:      b.mc.smearing,
		data:   b.data,
		prior:  b.mc.truth,
		smooth: opts.Smooth,
	}
	var cur *distribution.Distribution
	for i := 0; i < max(1, opts.Iterations); i++ {
		var err error
		cur, err = it.next()
		if err != nil {
			return err
		}
	}
	b.cfg.Metrics.Iterations.WithLabelValues(b.method).Add(float64(it.n))

	if err := b.errors(opts, it.u); err != nil {
		return err
	}
	b.finish(cur, b.mc.truth)
	return nil
}

func (b *Bayes) errors(opts Options, u *response.Unfolding) error {
	if opts.ErrorMode <= 0 {
		return nil
	}

	start := time.Now()
	mode := "variances"
	if opts.ErrorMode == 1 {
		vars, err := covariance.JustVariances(u, b.mc.smearing, b.data, b.data.Integral())
		if err != nil {
			return err
		}
		b.variances = vars
	} else {
		mode = "full"
		cov, err := covariance.New(u, b.mc.smearing, b.data, b.data.Integral(), opts.CPU)
		if err != nil {
			return err
		}
		b.cov = cov
		b.variances = covariance.Diagonal(cov)
	}
	d := time.Since(start)
	b.cfg.Metrics.CovarianceDuration.WithLabelValues(mode).Observe(d.Seconds())
	b.cfg.Logger.Debug("errors calculated",
		slog.String("id", b.id),
		slog.String("mode", mode),
		slog.Duration("duration", d),
	)
	return nil
}

// ClosureTest unfolds the simulated reconstructed distribution
// using the simulated truth as prior,
// and compares the result with the simulated truth.
// It finalises the smearing matrix.
func (b *Bayes) ClosureTest(iterations int, smooth bool) (compare.Result, bool, error) {
	b.mc.smearing.Finalise()
	it := &iteration{
		s:      b.mc.smearing,
		data:   b.mc.reco,
		prior:  b.mc.truth,
		smooth: smooth,
	}
	var cur *distribution.Distribution
	for i := 0; i < max(1, iterations); i++ {
		var err error
		cur, err = it.next()
		if err != nil {
			return compare.Result{}, false, err
		}
	}
	return b.closure(cur, b.mc.truth)
}

// MonteCarloCrossCheck unfolds the data
// and compares the result of each iteration
// with a reference distribution.
// It returns the number of iterations
// before the comparison becomes worse
// (either a larger chi-squared
// or a smaller Kolmogorov-Smirnov probability),
// up to MaxCrossCheck iterations.
// It finalises the smearing matrix.
func (b *Bayes) MonteCarloCrossCheck(ref *distribution.Distribution, smooth bool) (int, error) {
	b.mc.smearing.Finalise()
	it := &iteration{
		s:      b.mc.smearing,
		data:   b.data,
		prior:  b.mc.truth,
		smooth: smooth,
	}

	var prev compare.Result
	for i := 0; i < MaxCrossCheck; i++ {
		cur, err := it.next()
		if err != nil {
			return 0, err
		}
		r, err := compare.Distributions(cur, ref, false)
		if err != nil {
			return 0, err
		}
		b.cfg.Logger.Debug("cross check",
			slog.String("id", b.id),
			slog.Int("iteration", i+1),
			slog.Float64("chi2", r.Chi2),
			slog.Float64("ks", r.KS),
		)
		if i > 0 && (r.Chi2 > prev.Chi2 || r.KS < prev.KS) {
			return i, nil
		}
		prev = r
	}
	return MaxCrossCheck, nil
}

// Clone returns a new empty Bayesian corrector.
func (b *Bayes) Clone(label string) Corrector {
	return &Bayes{core: b.clone(label)}
}

// CloneShareSmearing returns a new Bayesian corrector
// that shares the simulated events.
func (b *Bayes) CloneShareSmearing() Corrector {
	return &Bayes{core: b.share()}
}
