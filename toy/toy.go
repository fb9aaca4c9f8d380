// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package toy implements a toy Monte Carlo generator
// of true values smeared by a simple detector.
package toy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/js-arias/unfold/events"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrShape is returned for an invalid shape definition.
var ErrShape = errors.New("toy: invalid shape")

// A Shape is a continuous distribution
// of the true values of a dimension.
type Shape interface {
	// Rand returns a random value.
	Rand() float64

	// Quantile returns the value
	// with a cumulative probability p.
	Quantile(p float64) float64

	// String output for the function name and parameters.
	String() string
}

type quantileRander interface {
	Rand() float64
	Quantile(p float64) float64
}

type shape struct {
	name   string
	params []float64
	dist   quantileRander
}

func (s shape) Rand() float64              { return s.dist.Rand() }
func (s shape) Quantile(p float64) float64 { return s.dist.Quantile(p) }

func (s shape) String() string {
	ps := make([]string, len(s.params))
	for i, p := range s.params {
		ps[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return s.name + ":" + strings.Join(ps, ",")
}

// Shapes returns the names of the valid shapes.
func Shapes() []string {
	return []string{"uniform", "normal", "exponential", "gamma", "lognormal"}
}

// NewShape returns a shape from its name and parameters:
//
//   - uniform: min, max
//   - normal: mean, standard deviation
//   - exponential: rate
//   - gamma: shape, rate
//   - lognormal: mean and standard deviation of the log
func NewShape(name string, params []float64, src rand.Source) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	want := 2
	if name == "exponential" {
		want = 1
	}
	if len(params) != want {
		return nil, fmt.Errorf("%w: %s: got %d parameters, want %d", ErrShape, name, len(params), want)
	}
	for _, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: %s: invalid parameter %g", ErrShape, name, p)
		}
	}

	s := shape{
		name:   name,
		params: append([]float64(nil), params...),
	}
	switch name {
	case "uniform":
		if params[0] >= params[1] {
			return nil, fmt.Errorf("%w: uniform: invalid range [%g, %g)", ErrShape, params[0], params[1])
		}
		s.dist = distuv.Uniform{Min: params[0], Max: params[1], Src: src}
	case "normal":
		if params[1] <= 0 {
			return nil, fmt.Errorf("%w: normal: invalid standard deviation %g", ErrShape, params[1])
		}
		s.dist = distuv.Normal{Mu: params[0], Sigma: params[1], Src: src}
	case "exponential":
		if params[0] <= 0 {
			return nil, fmt.Errorf("%w: exponential: invalid rate %g", ErrShape, params[0])
		}
		s.dist = distuv.Exponential{Rate: params[0], Src: src}
	case "gamma":
		if params[0] <= 0 || params[1] <= 0 {
			return nil, fmt.Errorf("%w: gamma: invalid parameters %v", ErrShape, params)
		}
		s.dist = distuv.Gamma{Alpha: params[0], Beta: params[1], Src: src}
	case "lognormal":
		if params[1] <= 0 {
			return nil, fmt.Errorf("%w: lognormal: invalid standard deviation %g", ErrShape, params[1])
		}
		s.dist = distuv.LogNormal{Mu: params[0], Sigma: params[1], Src: src}
	default:
		return nil, fmt.Errorf("%w: unknown shape %q", ErrShape, name)
	}
	return s, nil
}

// ParseShape returns a shape from a string
// with the form "name:param,param",
// for example "normal:5,2".
func ParseShape(s string, src rand.Source) (Shape, error) {
	name, ps, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q: expecting parameters", ErrShape, s)
	}
	var params []float64
	for _, p := range strings.Split(ps, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrShape, s, err)
		}
		params = append(params, v)
	}
	return NewShape(name, params, src)
}

// Edges returns the edges of n bins
// of the same probability.
// Unbounded outer edges are set
// at half a bin of probability.
func Edges(s Shape, n int) []float64 {
	edges := make([]float64, n+1)
	for i := range edges {
		p := float64(i) / float64(n)
		v := s.Quantile(p)
		if math.IsInf(v, 0) {
			if i == 0 {
				v = s.Quantile(0.5 / float64(n))
			} else {
				v = s.Quantile(1 - 0.5/float64(n))
			}
		}
		edges[i] = v
	}
	return edges
}

// Detector is a detector
// with a gaussian resolution.
type Detector struct {
	// Resolution of each dimension.
	Sigma []float64

	// Bias of each dimension,
	// it can be empty.
	Bias []float64

	// Probability of reconstructing a true event.
	Efficiency float64

	// Expected number of fakes
	// per true event.
	FakeRate float64
}

// Generator generates events.
type Generator struct {
	truth []Shape
	det   Detector

	noise distuv.Normal
	eff   distuv.Bernoulli
	src   rand.Source
}

// New returns a generator
// for the given true shapes
// (one per dimension)
// and detector.
func New(truth []Shape, det Detector, src rand.Source) (*Generator, error) {
	if len(truth) == 0 {
		return nil, fmt.Errorf("%w: no dimensions", ErrShape)
	}
	if len(det.Sigma) != len(truth) {
		return nil, fmt.Errorf("toy: got %d resolutions, want %d", len(det.Sigma), len(truth))
	}
	if len(det.Bias) != 0 && len(det.Bias) != len(truth) {
		return nil, fmt.Errorf("toy: got %d bias values, want %d", len(det.Bias), len(truth))
	}
	if det.Efficiency <= 0 || det.Efficiency > 1 {
		return nil, fmt.Errorf("toy: invalid efficiency %g", det.Efficiency)
	}
	if det.FakeRate < 0 {
		return nil, fmt.Errorf("toy: invalid fake rate %g", det.FakeRate)
	}

	return &Generator{
		truth: truth,
		det:   det,
		noise: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		eff:   distuv.Bernoulli{P: det.Efficiency, Src: src},
		src:   src,
	}, nil
}

func (g *Generator) trueValues() []float64 {
	v := make([]float64, len(g.truth))
	for i, s := range g.truth {
		v[i] = s.Rand()
	}
	return v
}

func (g *Generator) smear(truth []float64) []float64 {
	v := make([]float64, len(truth))
	for i, t := range truth {
		v[i] = t + g.det.Sigma[i]*g.noise.Rand()
		if len(g.det.Bias) > 0 {
			v[i] += g.det.Bias[i]
		}
	}
	return v
}

// fakes return the number of fakes
// for a sample of n true events.
func (g *Generator) fakes(n int) int {
	if g.det.FakeRate == 0 {
		return 0
	}
	p := distuv.Poisson{Lambda: g.det.FakeRate * float64(n), Src: g.src}
	return int(p.Rand())
}

// MonteCarlo returns a simulated sample
// of n true events.
// Fake events are smeared values
// of an independent true event.
func (g *Generator) MonteCarlo(n int) []events.Event {
	evs := make([]events.Event, 0, n)
	for i := 0; i < n; i++ {
		t := g.trueValues()
		if g.eff.Rand() == 0 {
			evs = append(evs, events.Event{
				Kind:   events.Miss,
				Truth:  t,
				Weight: 1,
				Prior:  true,
			})
			continue
		}
		evs = append(evs, events.Event{
			Kind:       events.Pair,
			Truth:      t,
			Reco:       g.smear(t),
			Weight:     1,
			RecoWeight: 1,
			Prior:      true,
		})
	}
	for i, nf := 0, g.fakes(n); i < nf; i++ {
		evs = append(evs, events.Event{
			Kind:   events.Fake,
			Reco:   g.smear(g.trueValues()),
			Weight: 1,
			Prior:  true,
		})
	}
	return evs
}

// Data returns a measured sample
// from n true events.
func (g *Generator) Data(n int) []events.Event {
	var evs []events.Event
	for i := 0; i < n; i++ {
		t := g.trueValues()
		if g.eff.Rand() == 0 {
			continue
		}
		evs = append(evs, events.Event{
			Kind:   events.Data,
			Reco:   g.smear(t),
			Weight: 1,
		})
	}
	for i, nf := 0, g.fakes(n); i < nf; i++ {
		evs = append(evs, events.Event{
			Kind:   events.Data,
			Reco:   g.smear(g.trueValues()),
			Weight: 1,
		})
	}
	return evs
}
