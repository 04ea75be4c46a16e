// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package matrix supplies a dense integer matrix type with the elementary
// row/column operations, extended Euclid, and Smith Normal Form reduction
// the autodiff core uses to invert integer-linear index-binding systems.
package matrix

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when U or V's shapes do not match the
// matrix being reduced.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Matrix is a dense, row-major integer matrix.
type Matrix struct {
	Rows, Cols int
	data       []int64
}

// New allocates a rows x cols matrix of zeroes.
func New(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, data: make([]int64, rows*cols)}
}

// Identity builds the n x n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}

	return m
}

// FromRows builds a matrix from literal row-major data; every row must have
// the same length.
func FromRows(rows [][]int64) *Matrix {
	if len(rows) == 0 {
		return New(0, 0)
	}

	m := New(len(rows), len(rows[0]))
	for i, row := range rows {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}

	return m
}

// Get returns the value at (row, col).
func (m *Matrix) Get(row, col int) int64 {
	return m.data[row*m.Cols+col]
}

// Set assigns the value at (row, col).
func (m *Matrix) Set(row, col int, v int64) {
	m.data[row*m.Cols+col] = v
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{Rows: m.Rows, Cols: m.Cols, data: make([]int64, len(m.data))}
	copy(out.data, m.data)

	return out
}

// SwapRow exchanges rows i and j.
func (m *Matrix) SwapRow(i, j int) {
	if i == j {
		return
	}

	for c := 0; c < m.Cols; c++ {
		m.data[i*m.Cols+c], m.data[j*m.Cols+c] = m.data[j*m.Cols+c], m.data[i*m.Cols+c]
	}
}

// SwapCol exchanges columns i and j.
func (m *Matrix) SwapCol(i, j int) {
	if i == j {
		return
	}

	for r := 0; r < m.Rows; r++ {
		m.data[r*m.Cols+i], m.data[r*m.Cols+j] = m.data[r*m.Cols+j], m.data[r*m.Cols+i]
	}
}

// ScaleRow multiplies row i by factor.
func (m *Matrix) ScaleRow(i int, factor int64) {
	for c := 0; c < m.Cols; c++ {
		m.data[i*m.Cols+c] *= factor
	}
}

// ScaleCol multiplies column j by factor.
func (m *Matrix) ScaleCol(j int, factor int64) {
	for r := 0; r < m.Rows; r++ {
		m.data[r*m.Cols+j] *= factor
	}
}

// AddRow performs row_j += factor * row_i.
func (m *Matrix) AddRow(i, j int, factor int64) {
	for c := 0; c < m.Cols; c++ {
		m.data[j*m.Cols+c] += factor * m.data[i*m.Cols+c]
	}
}

// AddCol performs col_j += factor * col_i.
func (m *Matrix) AddCol(i, j int, factor int64) {
	for r := 0; r < m.Rows; r++ {
		m.data[r*m.Cols+j] += factor * m.data[r*m.Cols+i]
	}
}

// RowTransform replaces rows (i, j) by (s*row_i + t*row_j, g*row_i + h*row_j).
// Callers supply (s, t, g, h) such that sh - tg = +/-1 so the transform is
// unimodular.
func (m *Matrix) RowTransform(i, j int, s, t, g, h int64) {
	for c := 0; c < m.Cols; c++ {
		ri := m.data[i*m.Cols+c]
		rj := m.data[j*m.Cols+c]
		m.data[i*m.Cols+c] = s*ri + t*rj
		m.data[j*m.Cols+c] = g*ri + h*rj
	}
}

// ColTransform replaces columns (i, j) by (s*col_i + t*col_j, g*col_i + h*col_j).
func (m *Matrix) ColTransform(i, j int, s, t, g, h int64) {
	for r := 0; r < m.Rows; r++ {
		ci := m.data[r*m.Cols+i]
		cj := m.data[r*m.Cols+j]
		m.data[r*m.Cols+i] = s*ci + t*cj
		m.data[r*m.Cols+j] = g*ci + h*cj
	}
}

// MulVec computes m * v for a column vector v of length m.Cols.
func (m *Matrix) MulVec(v []int64) []int64 {
	out := make([]int64, m.Rows)

	for r := 0; r < m.Rows; r++ {
		var sum int64
		for c := 0; c < m.Cols; c++ {
			sum += m.Get(r, c) * v[c]
		}

		out[r] = sum
	}

	return out
}

func (m *Matrix) String() string {
	s := ""

	for r := 0; r < m.Rows; r++ {
		s += "["
		for c := 0; c < m.Cols; c++ {
			if c > 0 {
				s += " "
			}

			s += fmt.Sprintf("%d", m.Get(r, c))
		}

		s += "]\n"
	}

	return s
}
