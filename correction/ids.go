// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// An IDGenerator returns unique identifiers
// for correctors.
type IDGenerator interface {
	Next() string
}

// Sequence is an IDGenerator
// that returns consecutive numbers.
// It is safe for concurrent use.
type Sequence struct {
	n atomic.Uint64
}

// Next returns the next number of the sequence.
func (s *Sequence) Next() string {
	return strconv.FormatUint(s.n.Add(1), 10)
}

// UUIDs is an IDGenerator
// that returns random UUIDs.
type UUIDs struct{}

// Next returns a new random UUID.
func (UUIDs) Next() string {
	return uuid.NewString()
}

// ids is the identifier sequence used
// when none is defined in the configuration.
var ids = &Sequence{}
