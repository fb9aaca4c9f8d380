// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distribution

// Smooth replaces each regular bin of the first dimension
// with the average of 2*side+1 neighbours
// along the first dimension.
// Underflow and overflow bins of the first dimension
// are not modified.
//
// Neighbours outside the regular range
// are extrapolated as 2*center - mirrored,
// where mirrored is the neighbour at the opposite side
// of the central bin.
func (d *Distribution) Smooth(side int) {
	if side < 1 {
		return
	}
	n := d.ix.NumBins(0)
	if n < 2 {
		return
	}

	src := append([]float64(nil), d.w...)
	for f := 0; f < d.Len(); f++ {
		nd, err := d.ix.Split(f)
		if err != nil {
			continue
		}
		i := nd[0]
		if i < 1 || i > n {
			continue
		}

		// in the flat index, the first dimension
		// is the least significant
		base := f - i
		center := src[f]
		var sum float64
		for o := -side; o <= side; o++ {
			j := i + o
			if j >= 1 && j <= n {
				sum += src[base+j]
				continue
			}
			m := i - o
			if m >= 1 && m <= n {
				sum += 2*center - src[base+m]
				continue
			}
			sum += center
		}
		d.w[f] = sum / float64(2*side+1)
	}
	d.sum()
}
