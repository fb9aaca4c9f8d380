// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package events_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/unfold/binning"
	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/events"
	"github.com/js-arias/unfold/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEvents = []events.Event{
	{Kind: events.Pair, Truth: []float64{1.5}, Reco: []float64{1.7}, Weight: 1, RecoWeight: 1, Prior: true},
	{Kind: events.Pair, Truth: []float64{2.5}, Reco: []float64{2.2}, Weight: 2, RecoWeight: 1.5, Prior: false},
	{Kind: events.Miss, Truth: []float64{0.5}, Weight: 1, Prior: true},
	{Kind: events.Fake, Reco: []float64{3.5}, Weight: 0.5, Prior: true},
	{Kind: events.Data, Reco: []float64{1.1}, Weight: 1},
	{Kind: events.Data, Reco: []float64{2.9}, Weight: 1},
}

func TestTSV(t *testing.T) {
	var w bytes.Buffer
	if err := events.WriteTSV(&w, testEvents); err != nil {
		t.Fatalf("unable to write TSV data: %v", err)
	}
	t.Logf("output:\n%s\n", w.String())

	evs, err := events.ReadTSV(strings.NewReader(w.String()))
	if err != nil {
		t.Fatalf("unable to read TSV data: %v", err)
	}
	if len(evs) != len(testEvents) {
		t.Fatalf("events: got %d, want %d", len(evs), len(testEvents))
	}
	for i, e := range evs {
		want := testEvents[i]
		if want.Kind == events.Data {
			// data events have no prior flag
			want.Prior = true
		}
		if want.Kind != events.Pair {
			// weight is the default recoweight
			want.RecoWeight = want.Weight
		}
		if !reflect.DeepEqual(e, want) {
			t.Errorf("event %d: got %+v, want %+v", i, e, want)
		}
	}
}

func TestReadDefaults(t *testing.T) {
	data := `# events
kind	truth	reco	weight
pair	1.5,0.2	1.7,0.3	2
miss	2.5,0.1		1
`
	evs, err := events.ReadTSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, evs, 2)

	assert.Equal(t, []float64{1.5, 0.2}, evs[0].Truth)
	assert.Equal(t, []float64{1.7, 0.3}, evs[0].Reco)
	assert.Equal(t, 2.0, evs[0].RecoWeight)
	assert.True(t, evs[0].Prior)
	assert.Nil(t, evs[1].Reco)
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"no weight": "kind\ttruth\treco\npair\t1\t1\n",
		"kind":      "kind\ttruth\treco\tweight\nsignal\t1\t1\t1\n",
		"values":    "kind\ttruth\treco\tweight\npair\t1,x\t1\t1\n",
		"missing":   "kind\ttruth\treco\tweight\npair\t1\t\t1\n",
		"prior":     "kind\ttruth\treco\tweight\tprior\nmiss\t1\t\t1\tmaybe\n",
	}
	for name, data := range tests {
		if _, err := events.ReadTSV(strings.NewReader(data)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}

	if _, err := events.ParseKind("signal"); !errors.Is(err, events.ErrKind) {
		t.Errorf("kind: got error %v, want %v", err, events.ErrKind)
	}
}

func TestDistributions(t *testing.T) {
	ix, err := binning.NewUniform(binning.Range{Min: 0, Max: 4, Bins: 4})
	require.NoError(t, err)

	truth, err := events.Truth(ix, testEvents)
	require.NoError(t, err)
	assert.Equal(t, 4.5, truth.Integral())
	assert.Equal(t, 0.5, truth.Bad())
	v, _ := truth.Bin(3)
	assert.Equal(t, 2.0, v)

	reco, err := events.Reco(ix, testEvents, false)
	require.NoError(t, err)
	assert.Equal(t, 4.0, reco.Integral())
	assert.Equal(t, 1.0, reco.Bad())
	v, _ = reco.Bin(3)
	assert.Equal(t, 1.5, v)

	data, err := events.Reco(ix, testEvents, true)
	require.NoError(t, err)
	assert.Equal(t, 2.0, data.Integral())
	assert.Equal(t, 0.0, data.Bad())
}

func TestFeed(t *testing.T) {
	ix, err := binning.NewUniform(binning.Range{Min: 0, Max: 4, Bins: 4})
	require.NoError(t, err)
	c, err := correction.New(correction.MethodNone, ix, "feed", correction.Config{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.Discard(),
	})
	require.NoError(t, err)

	require.NoError(t, events.Feed(c, testEvents))
	require.NoError(t, c.Correct(correction.Options{}))

	got, err := c.Corrected()
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Integral())

	bad := []events.Event{{Kind: events.Pair, Truth: []float64{1}, Weight: 1}}
	assert.Error(t, events.Feed(c, bad))
}
