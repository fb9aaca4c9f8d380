// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package binning

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads a bin definition from a TSV file.
//
// Uniform bins are defined with the following fields:
//
//   - dim, the dimension (starting from 0)
//   - min, the lower edge of the first bin
//   - max, the upper edge of the last bin
//   - bins, the number of bins
//
// Here is an example file:
//
//	# uniform bins
//	dim	min	max	bins
//	0	0	10	10
//	1	-2.5	2.5	5
//
// Custom bins are defined with the fields:
//
//   - dim, the dimension (starting from 0)
//   - edge, an edge of the dimension
//
// Edges must be given in increasing order.
// Here is an example file:
//
//	# custom bins
//	dim	edge
//	0	0
//	0	1
//	0	3
//	0	7
//	0	15
func ReadTSV(r io.Reader) (Indexer, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	if _, ok := fields["dim"]; !ok {
		return nil, fmt.Errorf("expecting field %q", "dim")
	}

	if _, ok := fields["edge"]; ok {
		return readCustom(tsv, fields)
	}
	for _, h := range []string{"min", "max", "bins"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}
	return readUniform(tsv, fields)
}

func readUniform(tsv *csv.Reader, fields map[string]int) (Indexer, error) {
	ranges := make(map[int]Range)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "dim"
		d, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		if _, dup := ranges[d]; dup {
			return nil, fmt.Errorf("on row %d: field %q: dimension %d already defined", ln, f, d)
		}

		var r Range
		f = "min"
		r.Min, err = strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "max"
		r.Max, err = strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "bins"
		r.Bins, err = strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		ranges[d] = r
	}

	rs := make([]Range, len(ranges))
	for i := range rs {
		r, ok := ranges[i]
		if !ok {
			return nil, fmt.Errorf("%w: dimension %d undefined", ErrEdges, i)
		}
		rs[i] = r
	}
	return NewUniform(rs...)
}

func readCustom(tsv *csv.Reader, fields map[string]int) (Indexer, error) {
	edges := make(map[int][]float64)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "dim"
		d, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "edge"
		e, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		edges[d] = append(edges[d], e)
	}

	es := make([][]float64, len(edges))
	for i := range es {
		e, ok := edges[i]
		if !ok {
			return nil, fmt.Errorf("%w: dimension %d undefined", ErrEdges, i)
		}
		es[i] = e
	}
	return NewCustom(es...)
}

// WriteTSV writes the bin definition of an indexer
// as a TSV file.
// Uniform indexers are written with the uniform layout,
// any other indexer is written as a list of edges.
func WriteTSV(w io.Writer, ix Indexer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if u, ok := ix.(*Uniform); ok {
		if err := tab.Write([]string{"dim", "min", "max", "bins"}); err != nil {
			return fmt.Errorf("unable to write header: %v", err)
		}
		for d, r := range u.Ranges() {
			row := []string{
				strconv.Itoa(d),
				strconv.FormatFloat(r.Min, 'g', -1, 64),
				strconv.FormatFloat(r.Max, 'g', -1, 64),
				strconv.Itoa(r.Bins),
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
		}
	} else {
		if err := tab.Write([]string{"dim", "edge"}); err != nil {
			return fmt.Errorf("unable to write header: %v", err)
		}
		for d := 0; d < ix.Dims(); d++ {
			for _, e := range ix.Edges(d) {
				row := []string{
					strconv.Itoa(d),
					strconv.FormatFloat(e, 'g', -1, 64),
				}
				if err := tab.Write(row); err != nil {
					return fmt.Errorf("when writing data: %v", err)
				}
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
