// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package events implements reading and writing
// of weighted events
// and their use to feed a corrector.
package events

import (
	"errors"
	"fmt"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/distribution"
)

// Kind is the kind of an event.
type Kind string

// Valid event kinds.
const (
	// A simulated event
	// with a true and a reconstructed value.
	Pair Kind = "pair"

	// A simulated event
	// that was not reconstructed.
	Miss Kind = "miss"

	// A reconstructed event
	// without a true cause.
	Fake Kind = "fake"

	// A measured event.
	Data Kind = "data"
)

// ErrKind is returned for an unknown event kind.
var ErrKind = errors.New("events: unknown kind")

// ParseKind returns the kind of a string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case Pair, Miss, Fake, Data:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrKind, s)
}

// An Event is a weighted event.
type Event struct {
	Kind Kind

	// Values of the event.
	// Truth is empty for fake and data events,
	// Reco is empty for missed events.
	Truth []float64
	Reco  []float64

	// Weight is the weight of the event,
	// for pairs, it is the weight of the true value.
	Weight float64

	// RecoWeight is the weight of the reconstructed value
	// of a pair.
	RecoWeight float64

	// If Prior is true,
	// the simulated event is used in the prior.
	Prior bool
}

// Validate checks that an event has the values
// required by its kind.
func (e Event) Validate() error {
	switch e.Kind {
	case Pair:
		if len(e.Truth) == 0 || len(e.Reco) == 0 {
			return fmt.Errorf("events: pair without true or reconstructed values")
		}
	case Miss:
		if len(e.Truth) == 0 {
			return fmt.Errorf("events: missed event without true values")
		}
	case Fake, Data:
		if len(e.Reco) == 0 {
			return fmt.Errorf("events: %s event without reconstructed values", e.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrKind, e.Kind)
	}
	return nil
}

// Feed stores a set of events in a corrector.
func Feed(c correction.Corrector, evs []Event) error {
	for i, e := range evs {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		var err error
		switch e.Kind {
		case Pair:
			err = c.StoreTruthRecoPair(e.Truth, e.Reco, e.Weight, e.RecoWeight, e.Prior)
		case Miss:
			err = c.StoreUnreconstructedTruth(e.Truth, e.Weight, e.Prior)
		case Fake:
			err = c.StoreReconstructedFake(e.Reco, e.Weight, e.Prior)
		case Data:
			err = c.StoreDataValue(e.Reco, e.Weight)
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// Truth returns the distribution of the true values
// of a set of simulated events.
// Fake events are stored in the bad bin.
func Truth(ix binning.Indexer, evs []Event) (*distribution.Distribution, error) {
	d := distribution.New(ix)
	for i, e := range evs {
		switch e.Kind {
		case Pair, Miss:
			if err := d.StoreEvent(e.Truth, e.Weight); err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
		case Fake:
			d.StoreBadEvent(e.Weight)
		}
	}
	return d, nil
}

// Reco returns the distribution of the reconstructed values
// of a set of events.
// If data is true,
// only measured events are used,
// otherwise only simulated events are used,
// and missed events are stored in the bad bin.
func Reco(ix binning.Indexer, evs []Event, data bool) (*distribution.Distribution, error) {
	d := distribution.New(ix)
	for i, e := range evs {
		if (e.Kind == Data) != data {
			continue
		}
		w := e.Weight
		switch e.Kind {
		case Miss:
			d.StoreBadEvent(w)
			continue
		case Pair:
			w = e.RecoWeight
		}
		if err := d.StoreEvent(e.Reco, w); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return d, nil
}
