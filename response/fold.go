// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package response

import (
	"fmt"

	"github.com/js-arias/unfold/distribution"
)

// Fold returns the distribution of effects
// expected from a distribution of causes.
// The missed events are stored in the bad bin
// of the result.
// The bad bin of the input is ignored
// as the fake events are already included
// in the smearing matrix.
func Fold(in *distribution.Distribution, s *Smearing) (*distribution.Distribution, error) {
	if in.Len() != s.bad {
		return nil, fmt.Errorf("%w: input with %d bins, matrix with %d bins", ErrMismatch, in.Len(), s.bad)
	}
	s.Finalise()

	iv := in.Values()
	values := make([]float64, s.bad+1)
	for c := 0; c < s.bad; c++ {
		if iv[c] == 0 {
			continue
		}
		for _, e := range s.rows[c] {
			values[e.Col] += iv[c] * e.Value
		}
	}
	return distribution.FromValues(in.Indexer(), values)
}

// FoldVariances returns the variance of each effect bin
// of a folded distribution,
// assuming Poisson causes.
func FoldVariances(in *distribution.Distribution, s *Smearing) ([]float64, error) {
	if in.Len() != s.bad {
		return nil, fmt.Errorf("%w: input with %d bins, matrix with %d bins", ErrMismatch, in.Len(), s.bad)
	}
	s.Finalise()

	iv := in.Values()
	vars := make([]float64, s.bad)
	for c := 0; c < s.bad; c++ {
		if iv[c] == 0 {
			continue
		}
		for _, e := range s.rows[c] {
			if e.Col >= s.bad {
				continue
			}
			vars[e.Col] += iv[c] * e.Value * e.Value
		}
	}
	return vars, nil
}
