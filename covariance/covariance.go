// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package covariance

import (
	"fmt"
	"runtime"

	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/response"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// New returns the covariance matrix
// of the causes of an unfolding matrix
// applied to a data distribution.
//
// It includes the uncertainty of the smearing matrix
// and the multinomial uncertainty of the data,
// using total as the number of data events.
//
// The calculation runs in parallel over the rows.
// If cpu is zero,
// it will use all available processors.
func New(u *response.Unfolding, s *response.Smearing, data *distribution.Distribution, total float64, cpu int) (*mat.SymDense, error) {
	c, err := newContraction(u, s, data, total)
	if err != nil {
		return nil, err
	}

	if cpu <= 0 {
		cpu = runtime.NumCPU()
	}
	n := u.Bins()
	cov := mat.NewSymDense(n, nil)

	var g errgroup.Group
	g.SetLimit(cpu)
	for k := 0; k < n; k++ {
		if len(u.Row(k)) == 0 {
			continue
		}
		k := k
		g.Go(func() error {
			for l := k; l < n; l++ {
				if len(u.Row(l)) == 0 {
					continue
				}
				v := c.element(k, l)
				if k == l && v < 0 {
					v = 0
				}
				cov.SetSym(k, l, v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cov, nil
}

// JustVariances returns the variances of the causes
// of an unfolding matrix
// applied to a data distribution,
// i.e., the diagonal of the covariance matrix.
func JustVariances(u *response.Unfolding, s *response.Smearing, data *distribution.Distribution, total float64) ([]float64, error) {
	c, err := newContraction(u, s, data, total)
	if err != nil {
		return nil, err
	}

	vars := make([]float64, u.Bins())
	for k := range vars {
		if len(u.Row(k)) == 0 {
			continue
		}
		vars[k] = max(0, c.element(k, k))
	}
	return vars, nil
}

// Diagonal returns the diagonal of a covariance matrix.
// Negative values are set to zero.
func Diagonal(m mat.Symmetric) []float64 {
	n := m.SymmetricDim()
	d := make([]float64, n)
	for i := range d {
		d[i] = max(0, m.At(i, i))
	}
	return d
}

// A contraction sums the contribution of the smearing covariance
// and the data covariance
// over all the effects.
type contraction struct {
	u     *response.Unfolding
	sc    *SmearingCovariance
	data  []float64
	total float64
}

func newContraction(u *response.Unfolding, s *response.Smearing, data *distribution.Distribution, total float64) (*contraction, error) {
	if data.Len() != u.Bins() {
		return nil, fmt.Errorf("%w: data with %d bins, matrix with %d bins", response.ErrMismatch, data.Len(), u.Bins())
	}
	return &contraction{
		u:     u,
		sc:    NewSmearingCovariance(u, s),
		data:  data.Values(),
		total: total,
	}, nil
}

// DataCov returns the multinomial covariance
// of the effects I and J.
func (c *contraction) dataCov(i, j int) float64 {
	if c.total <= 0 {
		if i == j {
			return c.data[i]
		}
		return 0
	}
	if i == j {
		return c.data[i] * (1 - c.data[i]/c.total)
	}
	return -c.data[i] * c.data[j] / c.total
}

// Element returns the covariance between the causes K and L.
// Only effects with non-zero elements in the unfolding matrix
// and with data are visited.
func (c *contraction) element(k, l int) float64 {
	var v float64
	for _, ei := range c.u.Row(k) {
		i := ei.Col
		xi := c.data[i]
		if xi == 0 {
			continue
		}
		for _, ej := range c.u.Row(l) {
			j := ej.Col
			xj := c.data[j]
			if xj == 0 {
				continue
			}
			v += xi*xj*c.sc.ThisContribution(i, j, k, l) + ei.Value*ej.Value*c.dataCov(i, j)
		}
	}
	return v
}
