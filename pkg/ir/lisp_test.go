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

	"github.com/tensorgrad/tensorgrad/pkg/sexp"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

func TestLispOfExprImmediates(t *testing.T) {
	assert.Equal(t, "5", sexp.Format(LispOfExpr(NewIntImm(5)), 0))
	assert.Equal(t, "7", sexp.Format(LispOfExpr(NewUIntImm(7, types.Scalar(types.UInt, 32))), 0))
	assert.Equal(t, `"x"`, sexp.Format(LispOfExpr(NewStringImm("x")), 0))
}

func TestLispOfExprBinaryAndUnary(t *testing.T) {
	e := NewBinary(Add, NewIntImm(1), NewUnary(Neg, NewIntImm(2)))
	assert.Equal(t, "(+ 1 (- 2))", sexp.Format(LispOfExpr(e), 0))
}

func TestLispOfExprCompare(t *testing.T) {
	e := NewCompare(LT, NewIntImm(1), NewIntImm(2))
	assert.Equal(t, "(< 1 2)", sexp.Format(LispOfExpr(e), 0))
}

func TestLispOfExprVarAndIndex(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Spatial)
	v := MustNewVar("x", []Expr{idx}, []uint64{4}, types.Int32)

	assert.Equal(t, "i", sexp.Format(LispOfExpr(idx), 0))
	assert.Equal(t, "(x i)", sexp.Format(LispOfExpr(v), 0))
}

// fakeExpr satisfies Expr but matches none of LispOfExpr's cases, exercising
// its fallback placeholder rendering.
type fakeExpr struct{}

func (fakeExpr) ExprKind() NodeKind { return KindKernel }
func (fakeExpr) Type() types.Type   { return types.Int32 }
func (fakeExpr) exprNode()          {}

func TestLispOfExprUnsupportedFallsBackToPlaceholder(t *testing.T) {
	got := sexp.Format(LispOfExpr(fakeExpr{}), 0)
	assert.Contains(t, got, "<unsupported expr")
}

func TestLispOfStmtMove(t *testing.T) {
	dst := MustNewVar("y", nil, nil, types.Int32)
	mv := NewMove(dst, NewIntImm(9), MemToMem)

	assert.Equal(t, "(move y 9)", sexp.Format(LispOfStmt(mv), 0))
}

func TestLispOfStmtIfThenElseNoFalseCase(t *testing.T) {
	dst := MustNewVar("y", nil, nil, types.Int32)
	cond := NewCompare(EQ, NewIntImm(1), NewIntImm(1))
	ite := NewIfThenElse(cond, NewMove(dst, NewIntImm(1), MemToMem), nil)

	got := sexp.Format(LispOfStmt(ite), 0)
	assert.Equal(t, "(if (== 1 1) (move y 1))", got)
}

func TestLispOfStmtIfThenElseWithFalseCase(t *testing.T) {
	dst := MustNewVar("y", nil, nil, types.Int32)
	cond := NewCompare(EQ, NewIntImm(1), NewIntImm(1))
	ite := NewIfThenElse(cond, NewMove(dst, NewIntImm(1), MemToMem), NewMove(dst, NewIntImm(0), MemToMem))

	got := sexp.Format(LispOfStmt(ite), 0)
	assert.Equal(t, "(if (== 1 1) (move y 1) (move y 0))", got)
}

func TestLispOfStmtLoopNest(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(2)), Spatial)
	dst := MustNewVar("y", []Expr{idx}, []uint64{2}, types.Int32)
	body := NewMove(dst, NewIntImm(1), MemToMem)
	nest := NewLoopNest([]*Index{idx}, []Stmt{body})

	got := sexp.Format(LispOfStmt(nest), 0)
	assert.Equal(t, "(for (indices (i spatial 0 2)) (block (move (y i) 1)))", got)
}

func TestLispOfKernel(t *testing.T) {
	in := MustNewVar("a", nil, nil, types.Int32)
	out := MustNewVar("b", nil, nil, types.Int32)
	k := NewKernel("id", []*Var{in}, []*Var{out}, []Stmt{NewMove(out, in, MemToMem)}, CPU)

	got := sexp.Format(LispOfKernel(k), 0)
	assert.Equal(t, "(kernel id (inputs a:int32[]) (outputs b:int32[]) (block (move b a)))", got)
}
