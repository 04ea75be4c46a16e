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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// varCollector records every Var name reached by recursive descent. It only
// overrides VisitVar; every other node kind falls back to
// BaseExprVisitor's default recursion, which must still dispatch back
// through varCollector (via Self) so that Vars nested under, say, a Binary
// or Call are still collected.
type varCollector struct {
	BaseExprVisitor
	names []string
}

func newVarCollector() *varCollector {
	c := &varCollector{}
	c.Self = c
	return c
}

func (c *varCollector) VisitVar(n *Var) error {
	c.names = append(c.names, n.Name)
	return c.BaseExprVisitor.VisitVar(n)
}

func TestWalkExprDefaultRecursionReachesNestedVars(t *testing.T) {
	x := MustNewVar("x", nil, nil, types.Int32)
	y := MustNewVar("y", nil, nil, types.Int32)
	e := NewBinary(Add, x, NewUnary(Neg, y))

	c := newVarCollector()
	require.NoError(t, WalkExpr(e, c))

	assert.Equal(t, []string{"x", "y"}, c.names)
}

func TestWalkExprVisitsCallArgsAndSelectBranches(t *testing.T) {
	x := MustNewVar("x", nil, nil, types.Int32)
	y := MustNewVar("y", nil, nil, types.Int32)
	z := MustNewVar("z", nil, nil, types.Int32)

	cond := NewCompare(EQ, x, y)
	sel := NewSelect(cond, y, z)
	call := NewCall("f", []Expr{sel, x}, Pure, types.Int32)

	c := newVarCollector()
	require.NoError(t, WalkExpr(call, c))

	assert.ElementsMatch(t, []string{"x", "y", "x", "y", "z"}, c.names)
}

func TestWalkExprVisitsVarArgsDomAndIndex(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Spatial)
	v := MustNewVar("x", []Expr{idx}, []uint64{4}, types.Int32)

	c := newVarCollector()
	require.NoError(t, WalkExpr(v, c))

	assert.Equal(t, []string{"x"}, c.names)
}

func TestWalkExprUnrecognisedNodeErrors(t *testing.T) {
	err := WalkExpr(fakeExpr{}, newVarCollector())
	require.Error(t, err)

	var unsupported *UnsupportedNodeError
	require.ErrorAs(t, err, &unsupported)
}

func TestBaseExprVisitorImmediatesAreNoOps(t *testing.T) {
	b := &BaseExprVisitor{}
	assert.NoError(t, b.VisitIntImm(NewIntImm(1)))
	assert.NoError(t, b.VisitUIntImm(NewUIntImm(1, types.Int32)))
	assert.NoError(t, b.VisitFloatImm(NewFloatImm(1)))
	assert.NoError(t, b.VisitStringImm(NewStringImm("s")))
}

// moveTargetCollector walks Stmt nodes and records every Var assigned by a
// Move, exercising BaseStmtVisitor's descent through LoopNest/IfThenElse and
// its optional Exprs delegation.
type moveTargetCollector struct {
	BaseStmtVisitor
	targets []string
}

func newMoveTargetCollector() *moveTargetCollector {
	c := &moveTargetCollector{}
	c.Self = c
	return c
}

func (c *moveTargetCollector) VisitMove(n *Move) error {
	c.targets = append(c.targets, n.Dst.Name)
	return c.BaseStmtVisitor.VisitMove(n)
}

func TestWalkStmtDescendsThroughLoopNestAndIfThenElse(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Spatial)
	y := MustNewVar("y", []Expr{idx}, []uint64{4}, types.Int32)
	z := MustNewVar("z", nil, nil, types.Int32)

	cond := NewCompare(EQ, NewIntImm(0), NewIntImm(0))
	ite := NewIfThenElse(cond, NewMove(z, NewIntImm(1), MemToMem), NewMove(z, NewIntImm(0), MemToMem))
	body := NewMove(y, NewIntImm(2), MemToMem)
	nest := NewLoopNest([]*Index{idx}, []Stmt{body, ite})

	c := newMoveTargetCollector()
	require.NoError(t, WalkStmt(nest, c))

	assert.Equal(t, []string{"y", "z", "z"}, c.targets)
}

func TestWalkStmtUnrecognisedNodeErrors(t *testing.T) {
	err := WalkStmt(nil, newMoveTargetCollector())
	require.Error(t, err)
}
