// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package metrics implements Prometheus collectors
// for the corrections of distributions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a set of collectors.
type Metrics struct {
	// Corrections counts the corrected distributions
	// by method.
	Corrections *prometheus.CounterVec

	// Iterations counts the unfolding iterations
	// by method.
	Iterations *prometheus.CounterVec

	// Fallbacks counts the bins of a bin-by-bin correction
	// with truth events but no reconstructed events.
	Fallbacks prometheus.Counter

	// Closures counts the closure tests
	// by method and result.
	Closures *prometheus.CounterVec

	// CovarianceDuration is the time used
	// to calculate the covariance
	// by error mode.
	CovarianceDuration *prometheus.HistogramVec
}

// New creates a new set of collectors
// registered in the given registerer.
// If reg is nil,
// the collectors are not registered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Corrections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unfold_corrections_total",
			Help: "Total corrected distributions by method",
		}, []string{"method"}),
		Iterations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unfold_iterations_total",
			Help: "Total unfolding iterations by method",
		}, []string{"method"}),
		Fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "unfold_binbybin_fallback_total",
			Help: "Total bin-by-bin bins with truth events but without reconstructed events",
		}),
		Closures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unfold_closure_tests_total",
			Help: "Total closure tests by method and result",
		}, []string{"method", "result"}),
		CovarianceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unfold_covariance_duration_seconds",
			Help:    "Covariance calculation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"mode"}),
	}
}

// Discard returns a set of collectors
// that are not registered.
func Discard() *Metrics {
	return New(nil)
}

// Result returns the label of a closure result.
func Result(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
