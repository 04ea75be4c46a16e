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
package arith

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtRangeIsBounded(t *testing.T) {
	assert.True(t, NewExtRange(0, 10).IsBounded())
	assert.False(t, Unbounded.IsBounded())
	assert.False(t, NewLeftBounded(0).IsBounded())
	assert.False(t, NewRightBounded(10).IsBounded())
}

func TestExtRangeIsHalfOpenInfinite(t *testing.T) {
	assert.False(t, NewExtRange(0, 10).IsHalfOpenInfinite())
	assert.False(t, Unbounded.IsHalfOpenInfinite())
	assert.True(t, NewLeftBounded(0).IsHalfOpenInfinite())
	assert.True(t, NewRightBounded(10).IsHalfOpenInfinite())
}

func TestExtRangeShift(t *testing.T) {
	assert.Equal(t, NewExtRange(5, 15), NewExtRange(0, 10).Shift(5))
	assert.Equal(t, NewLeftBounded(5), NewLeftBounded(0).Shift(5))
	assert.Equal(t, NewRightBounded(15), NewRightBounded(10).Shift(5))
}

func TestExtRangeNegate(t *testing.T) {
	tests := []struct {
		name string
		in   ExtRange
		want ExtRange
	}{
		{"finite [0,10)", NewExtRange(0, 10), NewExtRange(-9, 1)},
		{"finite [-3,4)", NewExtRange(-3, 4), NewExtRange(-3, 4)},
		{"left bounded", NewLeftBounded(0), NewRightBounded(1)},
		{"right bounded", NewRightBounded(10), NewLeftBounded(-9)},
		{"unbounded", Unbounded, Unbounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Negate())
		})
	}
}

func TestFloorModRange(t *testing.T) {
	assert.Equal(t, NewExtRange(0, 8), FloorModRange(8))
	assert.Panics(t, func() { FloorModRange(0) })
	assert.Panics(t, func() { FloorModRange(-3) })
}

func TestExtRangeFloorDiv(t *testing.T) {
	tests := []struct {
		name string
		in   ExtRange
		k    int64
		want ExtRange
	}{
		{"[0,16) / 8", NewExtRange(0, 16), 8, NewExtRange(0, 2)},
		{"[0,17) / 8", NewExtRange(0, 17), 8, NewExtRange(0, 3)},
		{"[-8,8) / 8", NewExtRange(-8, 8), 8, NewExtRange(-1, 1)},
		{"[0,16) / -8", NewExtRange(0, 16), -8, NewExtRange(-2, 1)},
		{"left bounded / 8", NewLeftBounded(0), 8, NewLeftBounded(0)},
		{"right bounded / 8", NewRightBounded(16), 8, NewRightBounded(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.FloorDiv(tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtRangeFloorDivByZero(t *testing.T) {
	_, err := NewExtRange(0, 10).FloorDiv(0)
	assert.ErrorIs(t, err, ErrDivByZero)
}

func TestExtRangeMulConst(t *testing.T) {
	tests := []struct {
		name string
		in   ExtRange
		c    int64
		want ExtRange
	}{
		{"[0,2) * 8", NewExtRange(0, 2), 8, NewExtRange(0, 23)},
		{"[0,2) * -8", NewExtRange(0, 2), -8, NewExtRange(-8, 15)},
		{"* 0", NewExtRange(0, 2), 0, NewExtRange(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.MulConst(tt.c))
		})
	}
}

func TestExtRangeDivByConst(t *testing.T) {
	got, err := NewExtRange(0, 16).DivByConst(8)
	require.NoError(t, err)
	assert.Equal(t, NewExtRange(0, 2), got)

	_, err = NewExtRange(0, 16).DivByConst(0)
	assert.ErrorIs(t, err, ErrDivByZero)
}

func TestExtRangeUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b ExtRange
		want ExtRange
	}{
		{"disjoint finite", NewExtRange(0, 5), NewExtRange(10, 15), NewExtRange(0, 15)},
		{"overlapping finite", NewExtRange(0, 10), NewExtRange(5, 20), NewExtRange(0, 20)},
		{"one unbounded left", NewLeftBounded(0), NewExtRange(-10, 5), NewLeftBounded(-10)},
		{"one unbounded right", NewRightBounded(10), NewExtRange(5, 20), NewRightBounded(20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Union(tt.b))
			assert.Equal(t, tt.want, tt.b.Union(tt.a), "Union must be symmetric")
		})
	}
}

func TestExtRangeIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b ExtRange
		want ExtRange
	}{
		{"overlapping finite", NewExtRange(0, 10), NewExtRange(5, 20), NewExtRange(5, 10)},
		{"nested finite", NewExtRange(0, 10), NewExtRange(2, 4), NewExtRange(2, 4)},
		{"disjoint finite is empty", NewExtRange(0, 5), NewExtRange(10, 15), NewExtRange(10, 5)},
		{"unbounded is identity", Unbounded, NewExtRange(-3, 7), NewExtRange(-3, 7)},
		{"half bounded", NewLeftBounded(0), NewExtRange(-10, 5), NewExtRange(0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersect(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersect(tt.a), "Intersect must be symmetric")
		})
	}
}

func TestExtRangePlusMinus(t *testing.T) {
	assert.Equal(t, NewExtRange(3, 12), NewExtRange(0, 5).Plus(NewExtRange(3, 8)))
	assert.Equal(t, NewExtRange(-7, 2), NewExtRange(0, 5).Minus(NewExtRange(3, 8)))
	assert.Equal(t, Unbounded, Unbounded.Plus(NewExtRange(0, 5)))

	half := NewLeftBounded(0).Plus(NewExtRange(1, 3))
	assert.Equal(t, NewLeftBounded(1), half)
}

func TestExtRangeScale(t *testing.T) {
	// Exact image: {0, 1} * 8 = {0, 8}, covered by [0, 9).
	assert.Equal(t, NewExtRange(0, 9), NewExtRange(0, 2).Scale(8))
	assert.Equal(t, NewExtRange(-8, 1), NewExtRange(0, 2).Scale(-8))
	assert.Equal(t, NewExtRange(0, 1), NewExtRange(0, 2).Scale(0))
	assert.Equal(t, NewExtRange(0, 4), NewExtRange(0, 4).Scale(1))
}

func TestExtRangeContains(t *testing.T) {
	r := NewExtRange(0, 10)
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(9))
	assert.False(t, r.Contains(10))
	assert.False(t, r.Contains(-1))

	assert.True(t, NewLeftBounded(0).Contains(1_000_000))
	assert.True(t, NewRightBounded(0).Contains(-1_000_000))
}

func TestExtRangeString(t *testing.T) {
	assert.Equal(t, "[0, 10)", NewExtRange(0, 10).String())
	assert.Equal(t, "[-inf, +inf)", Unbounded.String())
	assert.Equal(t, "[0, +inf)", NewLeftBounded(0).String())
	assert.Equal(t, "[-inf, 10)", NewRightBounded(10).String())
}
