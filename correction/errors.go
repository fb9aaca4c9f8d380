// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import "errors"

var (
	// ErrFinalised is returned when a corrector is modified
	// after the correction.
	ErrFinalised = errors.New("correction: already finalised")

	// ErrNotFinalised is returned when a result is requested
	// before the correction.
	ErrNotFinalised = errors.New("correction: not yet finalised")

	// ErrMethod is returned for an unknown correction method.
	ErrMethod = errors.New("correction: unknown method")

	// ErrNoVariances is returned when the variances are requested
	// but they were not calculated.
	ErrNoVariances = errors.New("correction: variances not calculated")

	// ErrNoCovariance is returned when the covariance is requested
	// but it was not calculated.
	ErrNoCovariance = errors.New("correction: covariance not calculated")
)
