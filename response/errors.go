// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package response

import "errors"

var (
	// ErrFinalised is returned when an event is stored
	// in a smearing matrix that is already finalised.
	ErrFinalised = errors.New("response: smearing matrix already finalised")

	// ErrMismatch is returned when a distribution
	// and a matrix have a different number of bins.
	ErrMismatch = errors.New("response: bin number mismatch")
)
