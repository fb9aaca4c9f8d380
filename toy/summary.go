// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package toy

import (
	"github.com/js-arias/unfold/events"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is a summary of the values
// of a dimension of a sample.
type Summary struct {
	Weight float64
	Mean   float64
	StdDev float64
}

// Summarize returns the summary of the values
// of a dimension.
// If truth is true,
// it uses the true values,
// otherwise the reconstructed values.
func Summarize(evs []events.Event, dim int, truth bool) Summary {
	var x, w []float64
	for _, e := range evs {
		v := e.Reco
		ew := e.Weight
		if truth {
			v = e.Truth
		} else if e.Kind == events.Pair {
			ew = e.RecoWeight
		}
		if dim >= len(v) {
			continue
		}
		x = append(x, v[dim])
		w = append(w, ew)
	}
	if len(x) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(x, w)
	return Summary{
		Weight: floats.Sum(w),
		Mean:   mean,
		StdDev: std,
	}
}
