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

// Package arith supplies the symbolic expression builders and the ExtRange
// interval type used by range inference and the autodiff core. ExtRange
// keeps an independent infinity flag per endpoint over machine int64
// bounds; tensor shapes and loop extents never approach big.Int territory.
package arith

import "fmt"

// ExtRange is a half-open integer interval [Left, Right) with independent
// infinity flags on each side.
type ExtRange struct {
	Left     int64
	Right    int64
	LeftInf  bool
	RightInf bool
}

// Unbounded is the interval (-inf, +inf).
var Unbounded = ExtRange{LeftInf: true, RightInf: true}

// NewExtRange builds a finite interval [left, right).
func NewExtRange(left, right int64) ExtRange {
	return ExtRange{Left: left, Right: right}
}

// NewLeftBounded builds [left, +inf).
func NewLeftBounded(left int64) ExtRange {
	return ExtRange{Left: left, RightInf: true}
}

// NewRightBounded builds (-inf, right).
func NewRightBounded(right int64) ExtRange {
	return ExtRange{Right: right, LeftInf: true}
}

// IsBounded reports whether both endpoints are finite.
func (r ExtRange) IsBounded() bool {
	return !r.LeftInf && !r.RightInf
}

// IsHalfOpenInfinite reports whether exactly one side is unbounded; such a
// range is a hard error wherever the autodiff core resolves a binding:
// a half-open infinite candidate indicates a
// malformed substitution, never a legitimate "unknown yet" placeholder
// (that case is represented by Unbounded, both sides infinite).
func (r ExtRange) IsHalfOpenInfinite() bool {
	return r.LeftInf != r.RightInf
}

// Shift returns the interval translated by delta: [Left+delta, Right+delta).
func (r ExtRange) Shift(delta int64) ExtRange {
	out := r
	if !r.LeftInf {
		out.Left = r.Left + delta
	}

	if !r.RightInf {
		out.Right = r.Right + delta
	}

	return out
}

// Negate flips the interval's endpoints. Half-open [L,R) contains the
// integers L..R-1, whose negation is -L..-(R-1); as a half-open interval
// that is [1-R, 1-L).
func (r ExtRange) Negate() ExtRange {
	var out ExtRange

	if r.RightInf {
		out.LeftInf = true
	} else {
		out.Left = 1 - r.Right
	}

	if r.LeftInf {
		out.RightInf = true
	} else {
		out.Right = 1 - r.Left
	}

	return out
}

// FloorModRange returns the interval produced by `a floormod k` for a
// positive integer literal k: always [0, k).
func FloorModRange(k int64) ExtRange {
	if k <= 0 {
		panic("FloorModRange requires a positive divisor")
	}

	return ExtRange{Left: 0, Right: k}
}

// FloorDiv returns the interval produced by `a floordiv k` for a non-zero
// integer literal k: for [L, R), produces
// [floor(L/k), floor((R+k-1)/k)); unbounded endpoints propagate.
func (r ExtRange) FloorDiv(k int64) (ExtRange, error) {
	if k == 0 {
		return ExtRange{}, ErrDivByZero
	}

	neg := k < 0

	kk := k
	if neg {
		kk = -k
	}

	work := r
	if neg {
		work = r.Negate()
	}

	var out ExtRange

	if work.LeftInf {
		out.LeftInf = true
	} else {
		out.Left = floorDivInt(work.Left, kk)
	}

	if work.RightInf {
		out.RightInf = true
	} else {
		out.Right = floorDivInt(work.Right+kk-1, kk)
	}

	return out, nil
}

// MulConst scales the interval's bounds by a non-zero integer literal c,
// widening the upper bound by |c|-1 to account for the truncation a
// subsequent floor-div by c would perform on the underlying values; this is
// the back-propagation rule for "a floordiv c" in range inference.
func (r ExtRange) MulConst(c int64) ExtRange {
	if c == 0 {
		return ExtRange{Left: 0, Right: 0}
	}

	neg := c < 0

	cc := c
	if neg {
		cc = -c
	}

	work := r
	if neg {
		work = r.Negate()
	}

	var out ExtRange

	if work.LeftInf {
		out.LeftInf = true
	} else {
		out.Left = work.Left * cc
	}

	if work.RightInf {
		out.RightInf = true
	} else {
		out.Right = work.Right*cc + (cc - 1)
	}

	return out
}

// Plus returns the exact interval sum {a + b : a in r, b in o}.
func (r ExtRange) Plus(o ExtRange) ExtRange {
	var out ExtRange

	if r.LeftInf || o.LeftInf {
		out.LeftInf = true
	} else {
		out.Left = r.Left + o.Left
	}

	if r.RightInf || o.RightInf {
		out.RightInf = true
	} else {
		out.Right = r.Right + o.Right - 1
	}

	return out
}

// Minus returns the exact interval difference {a - b : a in r, b in o}.
func (r ExtRange) Minus(o ExtRange) ExtRange {
	return r.Plus(o.Negate())
}

// Scale returns the exact image {c*a : a in r} as its covering interval,
// unlike MulConst, which widens for floor-div back-propagation.
func (r ExtRange) Scale(c int64) ExtRange {
	if c == 0 {
		return NewExtRange(0, 1)
	}

	if c < 0 {
		return r.Negate().Scale(-c)
	}

	var out ExtRange

	if r.LeftInf {
		out.LeftInf = true
	} else {
		out.Left = r.Left * c
	}

	if r.RightInf {
		out.RightInf = true
	} else {
		out.Right = (r.Right-1)*c + 1
	}

	return out
}

// DivByConst divides the interval's bounds by a non-zero integer literal c
// (floor division with a sign flip when c < 0); the back-propagation rule
// for "a * c" in range inference.
func (r ExtRange) DivByConst(c int64) (ExtRange, error) {
	if c == 0 {
		return ExtRange{}, ErrDivByZero
	}

	return r.FloorDiv(c)
}

// Intersect returns the largest interval contained in both r and o. The
// result may be empty (Left >= Right with both sides finite).
func (r ExtRange) Intersect(o ExtRange) ExtRange {
	var out ExtRange

	if r.LeftInf && o.LeftInf {
		out.LeftInf = true
	} else if r.LeftInf {
		out.Left = o.Left
	} else if o.LeftInf {
		out.Left = r.Left
	} else if r.Left > o.Left {
		out.Left = r.Left
	} else {
		out.Left = o.Left
	}

	if r.RightInf && o.RightInf {
		out.RightInf = true
	} else if r.RightInf {
		out.Right = o.Right
	} else if o.RightInf {
		out.Right = r.Right
	} else if r.Right < o.Right {
		out.Right = r.Right
	} else {
		out.Right = o.Right
	}

	return out
}

// Union returns the smallest interval containing both r and o.
func (r ExtRange) Union(o ExtRange) ExtRange {
	var out ExtRange

	if r.LeftInf || o.LeftInf {
		out.LeftInf = true
	} else if r.Left < o.Left {
		out.Left = r.Left
	} else {
		out.Left = o.Left
	}

	if r.RightInf || o.RightInf {
		out.RightInf = true
	} else if r.Right > o.Right {
		out.Right = r.Right
	} else {
		out.Right = o.Right
	}

	return out
}

// Contains reports whether v lies in [Left, Right).
func (r ExtRange) Contains(v int64) bool {
	if !r.LeftInf && v < r.Left {
		return false
	}

	if !r.RightInf && v >= r.Right {
		return false
	}

	return true
}

func (r ExtRange) String() string {
	left := fmt.Sprintf("%d", r.Left)
	if r.LeftInf {
		left = "-inf"
	}

	right := fmt.Sprintf("%d", r.Right)
	if r.RightInf {
		right = "+inf"
	}

	return fmt.Sprintf("[%s, %s)", left, right)
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
