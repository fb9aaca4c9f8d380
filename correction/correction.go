// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package correction implements the correction
// of measured distributions
// for the response of a detector.
//
// A corrector accumulates simulated (Monte Carlo) events,
// with a true and reconstructed value,
// and the measured data,
// and then corrects the data
// using one of the following methods:
//
//   - bayes, the iterative Bayesian unfolding
//     of G. D'Agostini (1995)
//     Nucl. Instrum. Meth. A362: 487-498.
//   - binbybin, a fixed correction factor for each bin.
//   - folding, that applies the detector response
//     to a true distribution.
//   - none, that returns the data without any correction.
//
// Correctors are not safe for concurrent use.
package correction

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/compare"
	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/metrics"
	"github.com/js-arias/unfold/response"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/mat"
)

// Correction methods.
const (
	MethodBayes    = "bayes"
	MethodBinByBin = "binbybin"
	MethodFolding  = "folding"
	MethodNone     = "none"
)

// Methods returns the names of the correction methods.
func Methods() []string {
	return []string{MethodBayes, MethodBinByBin, MethodFolding, MethodNone}
}

// A Corrector corrects a measured distribution
// using the response of a detector.
type Corrector interface {
	// Name returns the correction method.
	Name() string

	// Label returns the label of the prior.
	Label() string

	// ID returns the identifier of the corrector.
	ID() string

	// StoreTruthRecoPair stores a simulated event
	// that was reconstructed.
	// If usePrior is true,
	// the event is used in the prior,
	// otherwise it is only used
	// to build the response.
	StoreTruthRecoPair(truth, reco []float64, truthWeight, recoWeight float64, usePrior bool) error

	// StoreUnreconstructedTruth stores a simulated event
	// that was not reconstructed.
	StoreUnreconstructedTruth(truth []float64, w float64, usePrior bool) error

	// StoreReconstructedFake stores a reconstructed event
	// without a simulated cause.
	StoreReconstructedFake(reco []float64, w float64, usePrior bool) error

	// StoreDataValue stores a measured event.
	StoreDataValue(values []float64, w float64) error

	// Correct corrects the data.
	// After the correction the corrector is finalised.
	Correct(opts Options) error

	// ClosureTest corrects the simulated reconstructed distribution
	// and compares it with the simulated truth.
	ClosureTest(iterations int, smooth bool) (compare.Result, bool, error)

	// MonteCarloCrossCheck returns the number of iterations
	// before the comparison between the corrected data
	// and a reference distribution
	// becomes worse.
	MonteCarloCrossCheck(ref *distribution.Distribution, smooth bool) (int, error)

	Corrected() (*distribution.Distribution, error)
	Uncorrected() (*distribution.Distribution, error)
	Truth() (*distribution.Distribution, error)
	Smearing() (*response.Smearing, error)
	Variances() ([]float64, error)
	Covariance() (*mat.SymDense, error)

	CorrectedHistogram() (*hbook.H1D, error)
	UncorrectedHistogram() (*hbook.H1D, error)
	TruthHistogram() (*hbook.H1D, error)
	SmearingHistogram() (*hbook.H2D, error)

	// Clone returns a new empty corrector
	// with the same method and binning,
	// and a different prior label.
	Clone(label string) Corrector

	// CloneShareSmearing returns a new corrector
	// that shares the simulated events
	// of the corrector.
	// The clone ignores any simulated event
	// stored on it.
	CloneShareSmearing() Corrector
}

var (
	_ Corrector = (*Bayes)(nil)
	_ Corrector = (*BinByBin)(nil)
	_ Corrector = (*Folding)(nil)
	_ Corrector = (*NoCorrection)(nil)
)

// Options are the options of a correction.
type Options struct {
	// Maximum number of iterations,
	// at least one iteration is always done.
	Iterations int

	// Error mode:
	// 0 without errors,
	// 1 only variances,
	// 2 or more full covariance matrix.
	ErrorMode int

	// If true,
	// the prior of each iteration
	// (except the first one)
	// is smoothed.
	Smooth bool

	// Number of processors used for the covariance,
	// if zero all processors will be used.
	CPU int
}

// Config is the configuration of a corrector.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	IDs     IDGenerator
}

func (cfg Config) withDefaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Discard()
	}
	if cfg.IDs == nil {
		cfg.IDs = ids
	}
	return cfg
}

// New returns a new corrector
// of the indicated method.
func New(method string, ix binning.Indexer, label string, cfg Config) (Corrector, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	switch method {
	case MethodBayes:
		return &Bayes{core: newCore(method, ix, label, cfg)}, nil
	case MethodBinByBin:
		return &BinByBin{core: newCore(method, ix, label, cfg)}, nil
	case MethodFolding:
		return &Folding{core: newCore(method, ix, label, cfg)}, nil
	case MethodNone:
		return &NoCorrection{core: newCore(method, ix, label, cfg)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMethod, method)
}

// Core is the state shared by all correctors.
type core struct {
	method string
	label  string
	id     string
	cfg    Config

	ix     binning.Indexer
	mc     *monteCarlo
	shared bool

	data      *distribution.Distribution
	corrected *distribution.Distribution
	truth     *distribution.Distribution
	variances []float64
	cov       *mat.SymDense
	finalised bool
}

func newCore(method string, ix binning.Indexer, label string, cfg Config) core {
	cfg = cfg.withDefaults()
	return core{
		method: method,
		label:  label,
		id:     cfg.IDs.Next(),
		cfg:    cfg,
		ix:     ix,
		mc:     newMonteCarlo(ix),
		data:   distribution.New(ix),
	}
}

// Clone returns a new empty core
// with a copy of the binning.
func (c *core) clone(label string) core {
	return newCore(c.method, c.ix.Clone(), label, c.cfg)
}

// Share returns a new core
// that shares the simulated events.
func (c *core) share() core {
	return core{
		method: c.method,
		label:  c.label,
		id:     c.cfg.IDs.Next(),
		cfg:    c.cfg,
		ix:     c.ix,
		mc:     c.mc,
		shared: true,
		data:   distribution.New(c.ix),
	}
}

func (c *core) Name() string  { return c.method }
func (c *core) Label() string { return c.label }
func (c *core) ID() string    { return c.id }

func (c *core) StoreTruthRecoPair(truth, reco []float64, truthWeight, recoWeight float64, usePrior bool) error {
	if c.finalised {
		return ErrFinalised
	}
	if c.shared {
		return nil
	}
	return c.mc.storePair(truth, reco, truthWeight, recoWeight, usePrior)
}

func (c *core) StoreUnreconstructedTruth(truth []float64, w float64, usePrior bool) error {
	if c.finalised {
		return ErrFinalised
	}
	if c.shared {
		return nil
	}
	return c.mc.storeMiss(truth, w, usePrior)
}

func (c *core) StoreReconstructedFake(reco []float64, w float64, usePrior bool) error {
	if c.finalised {
		return ErrFinalised
	}
	if c.shared {
		return nil
	}
	return c.mc.storeFake(reco, w, usePrior)
}

func (c *core) StoreDataValue(values []float64, w float64) error {
	if c.finalised {
		return ErrFinalised
	}
	if err := c.data.StoreEvent(values, w); err != nil {
		return err
	}
	return c.ix.Store(values, w)
}

func (c *core) Corrected() (*distribution.Distribution, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.corrected, nil
}

func (c *core) Uncorrected() (*distribution.Distribution, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.data, nil
}

func (c *core) Truth() (*distribution.Distribution, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.truth, nil
}

func (c *core) Smearing() (*response.Smearing, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.mc.smearing, nil
}

func (c *core) Variances() ([]float64, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	if c.variances == nil {
		return nil, ErrNoVariances
	}
	return c.variances, nil
}

func (c *core) Covariance() (*mat.SymDense, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	if c.cov == nil {
		return nil, ErrNoCovariance
	}
	return c.cov, nil
}

func (c *core) histName(kind string) string {
	if c.label == "" {
		return fmt.Sprintf("%s_%s_%s", c.method, kind, c.id)
	}
	return fmt.Sprintf("%s_%s_%s_%s", c.method, kind, c.label, c.id)
}

func (c *core) CorrectedHistogram() (*hbook.H1D, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.corrected.Histogram(c.histName("corrected")), nil
}

func (c *core) UncorrectedHistogram() (*hbook.H1D, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.data.Histogram(c.histName("uncorrected")), nil
}

func (c *core) TruthHistogram() (*hbook.H1D, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.truth.Histogram(c.histName("truth")), nil
}

func (c *core) SmearingHistogram() (*hbook.H2D, error) {
	if !c.finalised {
		return nil, ErrNotFinalised
	}
	return c.mc.smearing.Histogram(c.histName("smearing")), nil
}

// Finish sets the results of a correction.
func (c *core) finish(corrected, truth *distribution.Distribution) {
	c.corrected = corrected
	c.truth = truth
	c.finalised = true
	c.cfg.Metrics.Corrections.WithLabelValues(c.method).Inc()
	c.cfg.Logger.Info("distribution corrected",
		slog.String("method", c.method),
		slog.String("label", c.label),
		slog.String("id", c.id),
		slog.Float64("data", c.data.Integral()),
		slog.Float64("corrected", corrected.Integral()),
	)
}

// Closure compares a corrected distribution
// with the expected one.
func (c *core) closure(got, want *distribution.Distribution) (compare.Result, bool, error) {
	r, err := compare.Distributions(got, want, true)
	if err != nil {
		return compare.Result{}, false, err
	}
	passed := r.Passed(histogramBins(c.ix))
	c.cfg.Metrics.Closures.WithLabelValues(c.method, metrics.Result(passed)).Inc()
	c.cfg.Logger.Info("closure test",
		slog.String("method", c.method),
		slog.String("label", c.label),
		slog.String("id", c.id),
		slog.Float64("chi2", r.Chi2),
		slog.Float64("ks", r.KS),
		slog.Float64("avg-deviation", r.AvgDeviation),
		slog.Float64("max-deviation", r.MaxDeviation),
		slog.Bool("passed", passed),
	)
	return r, passed, nil
}

// HistogramBins returns the number of bins
// of the histogram of a distribution.
func histogramBins(ix binning.Indexer) int {
	if ix.Dims() == 1 {
		return ix.NumBins(0)
	}
	return ix.Bins()
}

// DiagonalCov returns a covariance matrix
// with only variances.
func diagonalCov(vars []float64) *mat.SymDense {
	cov := mat.NewSymDense(len(vars), nil)
	for i, v := range vars {
		cov.SetSym(i, i, v)
	}
	return cov
}

// PoissonVariances returns the variances
// of the regular bins of a distribution
// multiplied by a squared factor.
func poissonVariances(d *distribution.Distribution, factors []float64) []float64 {
	vars := make([]float64, d.Len())
	for i, v := range d.Values()[:d.Len()] {
		f := 1.0
		if factors != nil {
			f = factors[i]
		}
		vars[i] = max(0, v*f*f)
	}
	return vars
}
