// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var header = []string{
	"kind",
	"truth",
	"reco",
	"weight",
}

// ReadTSV reads a set of events
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - kind, the kind of the event,
//     either "pair", "miss", "fake" or "data"
//   - truth, the true values of the event
//     separated by commas
//   - reco, the reconstructed values of the event
//     separated by commas
//   - weight, the weight of the event
//
// Optionally it can contain the fields:
//
//   - recoweight, the weight of the reconstructed value of a pair,
//     by default it is the same as the weight
//   - prior, if false,
//     the simulated event is not used in the prior,
//     by default is true
//
// Here is an example file:
//
//	kind	truth	reco	weight
//	pair	1.5,0.2	1.7,0.3	1
//	miss	2.5,0.1		1
//	fake		6.2,0.8	1
//	data		4.4,0.5	1
func ReadTSV(r io.Reader) ([]Event, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	var evs []Event
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		var e Event
		f := "kind"
		e.Kind, err = ParseKind(strings.ToLower(strings.TrimSpace(row[fields[f]])))
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		f = "truth"
		e.Truth, err = parseValues(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		f = "reco"
		e.Reco, err = parseValues(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		f = "weight"
		e.Weight, err = strconv.ParseFloat(strings.TrimSpace(row[fields[f]]), 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		e.RecoWeight = e.Weight
		f = "recoweight"
		if i, ok := fields[f]; ok {
			if v := strings.TrimSpace(row[i]); v != "" {
				e.RecoWeight, err = strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
				}
			}
		}

		e.Prior = true
		f = "prior"
		if i, ok := fields[f]; ok {
			if v := strings.TrimSpace(row[i]); v != "" {
				e.Prior, err = strconv.ParseBool(v)
				if err != nil {
					return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
				}
			}
		}

		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		evs = append(evs, e)
	}
	return evs, nil
}

func parseValues(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fs := strings.Split(s, ",")
	vs := make([]float64, len(fs))
	for i, f := range fs {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

func formatValues(vs []float64) string {
	fs := make([]string, len(vs))
	for i, v := range vs {
		fs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(fs, ",")
}

// WriteTSV writes a set of events as a TSV file.
func WriteTSV(w io.Writer, evs []Event) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	head := append(append([]string{}, header...), "recoweight", "prior")
	if err := tab.Write(head); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, e := range evs {
		rw := ""
		if e.Kind == Pair {
			rw = strconv.FormatFloat(e.RecoWeight, 'g', -1, 64)
		}
		prior := ""
		if e.Kind != Data {
			prior = strconv.FormatBool(e.Prior)
		}
		row := []string{
			string(e.Kind),
			formatValues(e.Truth),
			formatValues(e.Reco),
			strconv.FormatFloat(e.Weight, 'g', -1, 64),
			rw,
			prior,
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
