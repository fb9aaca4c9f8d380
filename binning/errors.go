// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package binning

import "errors"

var (
	// ErrDimension is returned when the number of values
	// (or indices)
	// does not match the dimensions of an indexer.
	ErrDimension = errors.New("binning: dimension mismatch")

	// ErrRange is returned when a bin index
	// is outside the indexer.
	ErrRange = errors.New("binning: index out of range")

	// ErrEdges is returned when the bin definition is invalid,
	// for example,
	// when custom edges are not strictly increasing.
	ErrEdges = errors.New("binning: invalid bin edges")
)
