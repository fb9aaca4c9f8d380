// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package metrics_test

import (
	"testing"

	"github.com/js-arias/unfold/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Fallbacks.Inc()
	m.Fallbacks.Inc()
	m.Iterations.WithLabelValues("bayes").Add(4)
	m.Closures.WithLabelValues("bayes", metrics.Result(true)).Inc()
	m.CovarianceDuration.WithLabelValues("full").Observe(0.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Fallbacks))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Iterations.WithLabelValues("bayes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Closures.WithLabelValues("bayes", "passed")))

	n, err := testutil.GatherAndCount(reg, "unfold_binbybin_fallback_total", "unfold_covariance_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// registering twice in the same registry panics
	assert.Panics(t, func() { metrics.New(reg) })
}

func TestDiscard(t *testing.T) {
	a := metrics.Discard()
	b := metrics.Discard()
	a.Fallbacks.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Fallbacks))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Fallbacks))
	assert.Equal(t, "failed", metrics.Result(false))
}
