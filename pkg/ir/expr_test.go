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
package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorgrad/tensorgrad/pkg/types"
)

func TestNewIntImmDefaultType(t *testing.T) {
	n := NewIntImm(5)
	assert.Equal(t, types.Int64, n.Ty)
	assert.Equal(t, KindIntImm, n.ExprKind())
}

func TestNewIntImmExplicitType(t *testing.T) {
	n := NewIntImm(5, types.Int32)
	assert.Equal(t, types.Int32, n.Ty)
}

func TestNewFloatImmDefaultType(t *testing.T) {
	n := NewFloatImm(1.5)
	assert.Equal(t, types.Float64, n.Ty)
}

func TestNewStringImmType(t *testing.T) {
	n := NewStringImm("hi")
	assert.Equal(t, types.String, n.Type().Kind)
}

func TestNewUnaryDerivesTypeFromOperand(t *testing.T) {
	a := NewIntImm(1, types.Int32)
	u := NewUnary(Neg, a)
	assert.Equal(t, types.Int32, u.Type())
}

func TestNewBinaryDerivesTypeFromA(t *testing.T) {
	a := NewFloatImm(1, types.Float32)
	b := NewIntImm(2, types.Int32)
	bin := NewBinary(Add, a, b)
	assert.Equal(t, types.Float32, bin.Type())
}

func TestNewCompareIsAlwaysBool1(t *testing.T) {
	c := NewCompare(EQ, NewIntImm(1, types.Int32), NewIntImm(2, types.Int32))
	assert.Equal(t, types.Bool1, c.Type())
}

func TestNewSelectDerivesTypeFromTrueValue(t *testing.T) {
	cond := NewCompare(EQ, NewIntImm(1), NewIntImm(1))
	s := NewSelect(cond, NewIntImm(1, types.Int32), NewFloatImm(2, types.Float32))
	assert.Equal(t, types.Int32, s.Type())
}

func TestNewCastChangesType(t *testing.T) {
	c := NewCast(types.Float32, NewIntImm(1, types.Int32))
	assert.Equal(t, types.Float32, c.Type())
}

func TestNewRampWidensLanes(t *testing.T) {
	r := NewRamp(NewIntImm(0, types.Int32), 1, 4)
	assert.Equal(t, uint16(4), r.Type().Lanes)
	assert.Equal(t, types.Int, r.Type().Kind)
}

func TestNewVarRejectsArityMismatch(t *testing.T) {
	_, err := NewVar("x", nil, []uint64{4}, types.Int32)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	var shapeErr *ShapeMismatchError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 1, shapeErr.Want)
	assert.Equal(t, 0, shapeErr.Got)
}

func TestNewVarAcceptsMatchingArity(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Spatial)

	v, err := NewVar("x", []Expr{idx}, []uint64{4}, types.Int32)
	require.NoError(t, err)
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, KindVar, v.ExprKind())
}

func TestMustNewVarPanicsOnMismatch(t *testing.T) {
	assert.Panics(t, func() {
		MustNewVar("x", nil, []uint64{4}, types.Int32)
	})
}

func TestMustNewVarSucceedsOnMatch(t *testing.T) {
	assert.NotPanics(t, func() {
		MustNewVar("x", nil, nil, types.Int32)
	})
}

func TestVarString(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Spatial)
	v := MustNewVar("x", []Expr{idx}, []uint64{4}, types.Int32)
	assert.Equal(t, "x[1 args]", v.String())
}

func TestIndexString(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Reduce)
	assert.Equal(t, "i", idx.String())
	assert.Equal(t, types.Int32, idx.Type())
}

func TestNewDomAlwaysInt32(t *testing.T) {
	d := NewDom(NewIntImm(0), NewIntImm(10))
	assert.Equal(t, types.Int32, d.Type())
}
