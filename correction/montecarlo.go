// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correction

import (
	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/distribution"
	"github.com/js-arias/unfold/response"
)

// MonteCarlo stores the simulated events
// that define the response of the detector.
//
// It can be shared by several correctors,
// but only one of them stores events.
type monteCarlo struct {
	ix       binning.Indexer
	smearing *response.Smearing

	// events used in the prior
	truth *distribution.Distribution
	reco  *distribution.Distribution

	// bin-by-bin sums of all events
	truthSum []float64
	recoSum  []float64

	paired float64
	missed float64
	faked  float64
}

func newMonteCarlo(ix binning.Indexer) *monteCarlo {
	return &monteCarlo{
		ix:       ix,
		smearing: response.NewSmearing(ix),
		truth:    distribution.New(ix),
		reco:     distribution.New(ix),
		truthSum: make([]float64, ix.Bins()+1),
		recoSum:  make([]float64, ix.Bins()+1),
	}
}

func (mc *monteCarlo) bad() int {
	return len(mc.truthSum) - 1
}

func (mc *monteCarlo) storePair(truth, reco []float64, tw, rw float64, usePrior bool) error {
	if err := mc.smearing.StoreTruthRecoPair(truth, reco, tw, rw); err != nil {
		return err
	}
	t, _ := mc.ix.Index(truth)
	r, _ := mc.ix.Index(reco)
	mc.truthSum[t] += tw
	mc.recoSum[r] += rw
	mc.paired += rw

	if usePrior {
		mc.truth.StoreEvent(truth, tw)
		mc.reco.StoreEvent(reco, rw)
	}
	return nil
}

func (mc *monteCarlo) storeMiss(truth []float64, w float64, usePrior bool) error {
	if err := mc.smearing.StoreUnreconstructedTruth(truth, w); err != nil {
		return err
	}
	t, _ := mc.ix.Index(truth)
	mc.truthSum[t] += w
	mc.recoSum[mc.bad()] += w
	mc.missed += w

	if usePrior {
		mc.truth.StoreEvent(truth, w)
		mc.reco.StoreBadEvent(w)
	}
	return nil
}

func (mc *monteCarlo) storeFake(reco []float64, w float64, usePrior bool) error {
	if err := mc.smearing.StoreReconstructedFake(reco, w); err != nil {
		return err
	}
	r, _ := mc.ix.Index(reco)
	mc.truthSum[mc.bad()] += w
	mc.recoSum[r] += w
	mc.faked += w

	if usePrior {
		mc.truth.StoreBadEvent(w)
		mc.reco.StoreEvent(reco, w)
	}
	return nil
}

// BadRatio returns the ratio between the missed events
// and the reconstructed events.
func (mc *monteCarlo) badRatio() float64 {
	rec := mc.paired + mc.faked
	if rec == 0 {
		return 0
	}
	return mc.missed / rec
}
