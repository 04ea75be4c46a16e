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
package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

func TestEliminateIndexFloorDivAndModReplacesFloorDiv(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	i := spatialIdx("i", 64)
	ctx.AddIndex(i, arith.NewExtRange(0, 64))

	e := ir.NewBinary(ir.FloorDiv, i, ir.NewIntImm(8))

	out, entries, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	q, ok := out.(*ir.Index)
	require.True(t, ok)
	assert.Same(t, entries[0].Quotient, q)
	assert.Equal(t, int64(0), mustIntImm(t, q.Dom.Begin))
	assert.Equal(t, int64(8), mustIntImm(t, q.Dom.Extent))
}

func TestEliminateIndexFloorDivAndModReplacesFloorMod(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	i := spatialIdx("i", 64)
	ctx.AddIndex(i, arith.NewExtRange(0, 64))

	e := ir.NewBinary(ir.FloorMod, i, ir.NewIntImm(8))

	out, entries, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	r, ok := out.(*ir.Index)
	require.True(t, ok)
	assert.Same(t, entries[0].Remainder, r)
	assert.Equal(t, int64(0), mustIntImm(t, r.Dom.Begin))
	assert.Equal(t, int64(8), mustIntImm(t, r.Dom.Extent))
}

// A FloorDiv and a FloorMod on the same (dividend, divisor) pair, appearing
// in sibling subexpressions, must resolve to the same pair of synthetic
// indices rather than independent ones.
func TestEliminateIndexFloorDivAndModSharesEntryAcrossSiblings(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	i := spatialIdx("i", 64)
	ctx.AddIndex(i, arith.NewExtRange(0, 64))

	div := ir.NewBinary(ir.FloorDiv, i, ir.NewIntImm(8))
	mod := ir.NewBinary(ir.FloorMod, i, ir.NewIntImm(8))
	e := ir.NewBinary(ir.Add, div, mod)

	out, entries, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	b, ok := out.(*ir.Binary)
	require.True(t, ok)
	assert.Same(t, entries[0].Quotient, b.A.(*ir.Index))
	assert.Same(t, entries[0].Remainder, b.B.(*ir.Index))
}

func TestEliminateIndexFloorDivAndModNonLiteralDivisorIsFatal(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	i := spatialIdx("i", 64)
	j := spatialIdx("j", 8)
	ctx.AddIndex(i, arith.NewExtRange(0, 64))
	ctx.AddIndex(j, arith.NewExtRange(0, 8))

	e := ir.NewBinary(ir.FloorDiv, i, j)

	_, _, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	assert.ErrorIs(t, err, ErrNonAffineIndex)
}

func TestEliminateIndexFloorDivAndModZeroDivisorIsFatal(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	i := spatialIdx("i", 64)
	ctx.AddIndex(i, arith.NewExtRange(0, 64))

	e := ir.NewBinary(ir.FloorDiv, i, ir.NewIntImm(0))

	_, _, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	assert.ErrorIs(t, err, arith.ErrDivByZero)
}

func TestEliminateIndexFloorDivAndModUnboundedDividendIsFatal(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	// i is never registered with ctx, so its range is unbounded.
	i := spatialIdx("i", 64)

	e := ir.NewBinary(ir.FloorDiv, i, ir.NewIntImm(8))

	_, _, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	assert.ErrorIs(t, err, ErrMalformedSubstitution)
}

func TestEliminateIndexFloorDivAndModLeavesPlainExpressionUntouched(t *testing.T) {
	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	i := spatialIdx("i", 64)
	ctx.AddIndex(i, arith.NewExtRange(0, 64))

	e := ir.NewBinary(ir.Add, i, ir.NewIntImm(1))

	out, entries, err := EliminateIndexFloorDivAndMod(e, ctx, gen)
	require.NoError(t, err)
	assert.Empty(t, entries)

	b, ok := out.(*ir.Binary)
	require.True(t, ok)
	assert.Same(t, i, b.A.(*ir.Index))
}
