// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distribution

import "go-hep.org/x/hep/hbook"

// Histogram returns the distribution as a histogram.
//
// If the indexer has a single dimension
// the histogram uses the edges of the dimension,
// and the underflow and overflow bins
// are stored as the histogram underflow and overflow.
// Otherwise the histogram axis is the flat bin index.
// The bad bin is not included.
func (d *Distribution) Histogram(name string) *hbook.H1D {
	var h *hbook.H1D
	if d.ix.Dims() == 1 {
		edges := d.ix.Edges(0)
		n := len(edges) - 1
		h = hbook.NewH1DFromEdges(edges)
		for i := 0; i < d.Len(); i++ {
			w := d.w[i]
			if w == 0 {
				continue
			}
			var x float64
			switch {
			case i == 0:
				x = edges[0] - (edges[1] - edges[0])
			case i > n:
				x = edges[n] + (edges[n] - edges[n-1])
			default:
				x = (edges[i-1] + edges[i]) / 2
			}
			h.Fill(x, w)
		}
	} else {
		h = hbook.NewH1D(d.Len(), 0, float64(d.Len()))
		for i := 0; i < d.Len(); i++ {
			if d.w[i] == 0 {
				continue
			}
			h.Fill(float64(i)+0.5, d.w[i])
		}
	}
	if name != "" {
		h.Annotation()["name"] = name
	}
	return h
}
