// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sparse implements a sparse matrix
// stored as a map of (row, column) cells.
package sparse

import (
	"cmp"
	"slices"
)

// Cell is the position of an element
// in a matrix.
type Cell struct {
	Row, Col int
}

// Entry is a non-zero element of a row.
type Entry struct {
	Col   int
	Value float64
}

// Matrix is a sparse matrix.
// Only non-zero elements are stored.
type Matrix struct {
	cells map[Cell]float64
	rows  map[int]map[int]bool
}

// New returns an empty sparse matrix.
func New() *Matrix {
	return &Matrix{
		cells: make(map[Cell]float64),
		rows:  make(map[int]map[int]bool),
	}
}

// Add adds a value to an element of the matrix.
func (m *Matrix) Add(row, col int, v float64) {
	if v == 0 {
		return
	}
	m.Set(row, col, m.cells[Cell{row, col}]+v)
}

// Set sets the value of an element of the matrix.
func (m *Matrix) Set(row, col int, v float64) {
	c := Cell{row, col}
	if v == 0 {
		if _, ok := m.cells[c]; !ok {
			return
		}
		delete(m.cells, c)
		r := m.rows[row]
		delete(r, col)
		if len(r) == 0 {
			delete(m.rows, row)
		}
		return
	}

	m.cells[c] = v
	r, ok := m.rows[row]
	if !ok {
		r = make(map[int]bool)
		m.rows[row] = r
	}
	r[col] = true
}

// At returns the value of an element of the matrix.
func (m *Matrix) At(row, col int) float64 {
	return m.cells[Cell{row, col}]
}

// Len returns the number of non-zero elements.
func (m *Matrix) Len() int {
	return len(m.cells)
}

// Rows returns the rows with non-zero elements,
// in increasing order.
func (m *Matrix) Rows() []int {
	rows := make([]int, 0, len(m.rows))
	for r := range m.rows {
		rows = append(rows, r)
	}
	slices.Sort(rows)
	return rows
}

// Row returns the non-zero elements of a row,
// sorted by column.
func (m *Matrix) Row(row int) []Entry {
	r := m.rows[row]
	if len(r) == 0 {
		return nil
	}
	es := make([]Entry, 0, len(r))
	for c := range r {
		es = append(es, Entry{Col: c, Value: m.cells[Cell{row, c}]})
	}
	slices.SortFunc(es, func(a, b Entry) int {
		return cmp.Compare(a.Col, b.Col)
	})
	return es
}

// RowSum returns the sum of the elements of a row.
func (m *Matrix) RowSum(row int) float64 {
	var sum float64
	for _, e := range m.Row(row) {
		sum += e.Value
	}
	return sum
}

// ClearRow removes all the elements of a row.
func (m *Matrix) ClearRow(row int) {
	for c := range m.rows[row] {
		delete(m.cells, Cell{row, c})
	}
	delete(m.rows, row)
}

// ScaleRow multiplies all the elements of a row
// by a factor.
func (m *Matrix) ScaleRow(row int, f float64) {
	if f == 0 {
		m.ClearRow(row)
		return
	}
	for c := range m.rows[row] {
		m.cells[Cell{row, c}] *= f
	}
}

// CSR returns the matrix as a vector of rows,
// each row with its non-zero elements sorted by column.
// The returned slice has n rows,
// elements with a row outside [0, n) are ignored.
func (m *Matrix) CSR(n int) [][]Entry {
	csr := make([][]Entry, n)
	for r := range m.rows {
		if r < 0 || r >= n {
			continue
		}
		csr[r] = m.Row(r)
	}
	return csr
}

// Transpose returns the transpose of the matrix
// as a vector of columns,
// each column with its non-zero elements sorted by row
// (the Col field of each entry holds the row).
func (m *Matrix) Transpose(n int) [][]Entry {
	t := make([][]Entry, n)
	for _, r := range m.Rows() {
		for _, e := range m.Row(r) {
			if e.Col < 0 || e.Col >= n {
				continue
			}
			t[e.Col] = append(t[e.Col], Entry{Col: r, Value: e.Value})
		}
	}
	return t
}

// Clone returns a copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	nm := New()
	for c, v := range m.cells {
		nm.Set(c.Row, c.Col, v)
	}
	return nm
}
