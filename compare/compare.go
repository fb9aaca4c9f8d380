// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package compare implements statistical comparisons
// between distributions.
//
// Distributions are compared with a chi-squared test
// between two unweighted histograms,
// and a Kolmogorov-Smirnov test
// on the cumulative shapes.
package compare

import (
	"fmt"
	"math"

	"github.com/js-arias/unfold/distribution"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Result is the result of a comparison.
type Result struct {
	// Chi-squared test
	Chi2   float64
	NDF    int
	PValue float64

	// Kolmogorov-Smirnov test
	Distance float64
	KS       float64

	// Ratio deviations from one,
	// only for closure tests
	Closure      bool
	AvgDeviation float64
	MaxDeviation float64
}

// Passed returns true if the result
// is compatible with the null hypothesis,
// for a histogram with the given number of bins.
func (r Result) Passed(bins int) bool {
	if r.Chi2 == 0 && r.KS == 1 {
		return true
	}
	if bins < 1 {
		return false
	}
	return r.Chi2 < float64(bins) && r.KS > 1/float64(bins)
}

// Perfect returns true if the compared distributions
// are identical.
func (r Result) Perfect() bool {
	return r.Chi2 == 0 && r.KS == 1
}

func (r Result) String() string {
	s := fmt.Sprintf("chi2 = %.6g (ndf = %d, p = %.6g), ks = %.6g", r.Chi2, r.NDF, r.PValue, r.KS)
	if r.Closure {
		s += fmt.Sprintf(", avg. deviation = %.6g, max. deviation = %.6g", r.AvgDeviation, r.MaxDeviation)
	}
	return s
}

// Distributions compares two distributions.
// The bad bin is not used in the comparison.
//
// If closure is true,
// a is taken as the corrected distribution
// and b as the expected one,
// and the result includes the average and maximum deviation
// of the ratio a/b from one.
func Distributions(a, b *distribution.Distribution, closure bool) (Result, error) {
	if a.Len() != b.Len() {
		return Result{}, fmt.Errorf("compare: distributions with %d and %d bins", a.Len(), b.Len())
	}
	return Histograms(a.Histogram(""), b.Histogram(""), closure)
}

// Histograms compares two histograms
// with the same binning.
// Underflow and overflow are not used.
func Histograms(ha, hb *hbook.H1D, closure bool) (Result, error) {
	if ha.Len() != hb.Len() {
		return Result{}, fmt.Errorf("compare: histograms with %d and %d bins", ha.Len(), hb.Len())
	}
	n := ha.Len()
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = ha.Value(i)
		b[i] = hb.Value(i)
	}

	r := Result{Closure: closure}
	r.Chi2, r.NDF = chi2UU(a, b)
	r.PValue = 1
	if r.NDF > 0 && !math.IsInf(r.Chi2, 0) {
		r.PValue = distuv.ChiSquared{K: float64(r.NDF)}.Survival(r.Chi2)
	} else if math.IsInf(r.Chi2, 0) {
		r.PValue = 0
	}
	r.Distance, r.KS = kolmogorov(a, b)
	if closure {
		r.AvgDeviation, r.MaxDeviation = deviations(a, b)
	}
	return r, nil
}

// Chi2UU returns the chi-squared between two histograms
// in which both histograms are unweighted,
// and the number of degrees of freedom.
func chi2UU(a, b []float64) (float64, int) {
	var na, nb float64
	for i := range a {
		na += a[i]
		nb += b[i]
	}
	if na == 0 && nb == 0 {
		return 0, 0
	}
	if na == 0 || nb == 0 {
		return math.Inf(1), 0
	}

	var chi2 float64
	var bins int
	for i := range a {
		s := a[i] + b[i]
		if s == 0 {
			continue
		}
		bins++
		d := nb*a[i] - na*b[i]
		chi2 += d * d / s
	}
	chi2 /= na * nb
	return chi2, bins - 1
}

// Kolmogorov returns the maximum distance
// between the cumulative distributions
// and the Kolmogorov probability of that distance.
func kolmogorov(a, b []float64) (float64, float64) {
	var x, xw, y, yw []float64
	var na, nb float64
	for i := range a {
		pos := float64(i) + 0.5
		if a[i] > 0 {
			x = append(x, pos)
			xw = append(xw, a[i])
			na += a[i]
		}
		if b[i] > 0 {
			y = append(y, pos)
			yw = append(yw, b[i])
			nb += b[i]
		}
	}
	if len(x) == 0 && len(y) == 0 {
		return 0, 1
	}
	if len(x) == 0 || len(y) == 0 {
		return 1, 0
	}

	d := stat.KolmogorovSmirnov(x, xw, y, yw)
	if d == 0 {
		return 0, 1
	}
	z := d * math.Sqrt(na*nb/(na+nb))
	return d, kolmogorovProb(z)
}

// KolmogorovProb returns the probability
// that the scaled distance between two cumulative distributions
// is greater than z.
func kolmogorovProb(z float64) float64 {
	z = math.Abs(z)
	switch {
	case z < 0.2:
		return 1
	case z < 0.755:
		// small z expansion
		const sqrt2Pi = 2.50662827463100050242
		v := 1 / (z * z)
		c := -math.Pi * math.Pi / 8
		s := math.Exp(c*v) + math.Exp(9*c*v) + math.Exp(25*c*v)
		return 1 - sqrt2Pi*s/z
	case z < 6.8116:
		terms := max(1, int(math.Round(3/z)))
		var p float64
		sign := 1.0
		for j := 1; j <= terms; j++ {
			p += sign * math.Exp(-2*float64(j*j)*z*z)
			sign = -sign
		}
		return 2 * p
	}
	return 0
}

// Deviations returns the average and maximum deviation
// of the ratio a/b from one,
// using only bins in which b is not empty.
func deviations(a, b []float64) (avg, maxDev float64) {
	var n int
	for i := range a {
		if b[i] == 0 {
			continue
		}
		d := math.Abs(a[i]/b[i] - 1)
		avg += d
		maxDev = max(maxDev, d)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return avg / float64(n), maxDev
}
