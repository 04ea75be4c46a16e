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
package matrix

// SmithNormalize reduces an r x c integer matrix a to diagonal form
// U*a*V = D with U (r x r) and V (c x c) both unimodular.
// It allocates U and V itself; use SmithNormalizeInto to reuse caller-owned
// buffers (which validates their shape and can fail with
// ErrDimensionMismatch).
func SmithNormalize(a *Matrix) (d, u, v *Matrix, dim int) {
	u = Identity(a.Rows)
	v = Identity(a.Cols)
	// SmithNormalizeInto cannot fail here: u and v were just sized to match.
	d, dim, _ = SmithNormalizeInto(a, u, v)

	return d, u, v, dim
}

// SmithNormalizeInto is SmithNormalize but writes the row/column transforms
// into caller-supplied U and V matrices (which must already carry whatever
// starting unimodular transform the caller wants composed with, typically
// Identity); it validates that U is r x r and V is c x c.
func SmithNormalizeInto(a *Matrix, u, v *Matrix) (d *Matrix, dim int, err error) {
	if u.Rows != a.Rows || u.Cols != a.Rows {
		return nil, 0, ErrDimensionMismatch
	}

	if v.Rows != a.Cols || v.Cols != a.Cols {
		return nil, 0, ErrDimensionMismatch
	}

	d = a.Clone()

	n := min(d.Rows, d.Cols)

	dim = 0

	for k := 0; k < n; k++ {
		if !movePivot(d, u, v, k) {
			break
		}

		for {
			c1 := zeroColumnBelow(d, u, k)
			c2 := zeroRowRight(d, v, k)

			if !c1 && !c2 {
				break
			}
		}

		if d.Get(k, k) == 0 {
			break
		}

		dim++
	}

	enforceDivisibility(d, u, v, dim)

	return d, dim, nil
}

// movePivot finds a non-zero entry in the submatrix rows/cols >= k and
// swaps it into position (k, k); returns false if the submatrix is all
// zero.
func movePivot(d, u, v *Matrix, k int) bool {
	if d.Get(k, k) != 0 {
		return true
	}

	for i := k; i < d.Rows; i++ {
		for j := k; j < d.Cols; j++ {
			if d.Get(i, j) != 0 {
				d.SwapRow(k, i)
				u.SwapRow(k, i)
				d.SwapCol(k, j)
				v.SwapCol(k, j)

				return true
			}
		}
	}

	return false
}

// zeroColumnBelow clears column k below the pivot using row operations,
// tracking the same transforms into u. Returns whether any entry needed
// clearing.
func zeroColumnBelow(d, u *Matrix, k int) bool {
	changed := false

	for i := k + 1; i < d.Rows; i++ {
		if d.Get(i, k) == 0 {
			continue
		}

		changed = true

		if d.Get(k, k) == 0 {
			d.SwapRow(k, i)
			u.SwapRow(k, i)

			continue
		}

		a := d.Get(k, k)
		b := d.Get(i, k)

		if b%a == 0 {
			q := b / a
			d.AddRow(k, i, -q)
			u.AddRow(k, i, -q)

			continue
		}

		g, s, t := ExtEuclid(a, b)
		gcoef, hcoef := -b/g, a/g
		d.RowTransform(k, i, s, t, gcoef, hcoef)
		u.RowTransform(k, i, s, t, gcoef, hcoef)
	}

	return changed
}

// zeroRowRight clears row k to the right of the pivot using column
// operations, tracking the same transforms into v.
func zeroRowRight(d, v *Matrix, k int) bool {
	changed := false

	for j := k + 1; j < d.Cols; j++ {
		if d.Get(k, j) == 0 {
			continue
		}

		changed = true

		if d.Get(k, k) == 0 {
			d.SwapCol(k, j)
			v.SwapCol(k, j)

			continue
		}

		a := d.Get(k, k)
		b := d.Get(k, j)

		if b%a == 0 {
			q := b / a
			d.AddCol(k, j, -q)
			v.AddCol(k, j, -q)

			continue
		}

		g, s, t := ExtEuclid(a, b)
		gcoef, hcoef := -b/g, a/g
		d.ColTransform(k, j, s, t, gcoef, hcoef)
		v.ColTransform(k, j, s, t, gcoef, hcoef)
	}

	return changed
}

// enforceDivisibility runs the second SNF sweep: whenever
// D[a][a] does not divide D[a+1][a+1], fold column a+1 into column a and
// restart reduction of the disturbed pivot pair.
func enforceDivisibility(d, u, v *Matrix, dim int) {
	if dim < 2 {
		return
	}

	restarted := true

	for restarted {
		restarted = false

		for a := 0; a < dim-1; a++ {
			if d.Get(a, a) == 0 {
				continue
			}

			if d.Get(a+1, a+1)%d.Get(a, a) == 0 {
				continue
			}

			d.AddCol(a+1, a, 1)
			v.AddCol(a+1, a, 1)

			for {
				c1 := zeroColumnBelow(d, u, a)
				c2 := zeroRowRight(d, v, a)

				if !c1 && !c2 {
					break
				}
			}

			restarted = true

			break
		}
	}
}
