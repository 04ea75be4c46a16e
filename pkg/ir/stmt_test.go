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

	"github.com/tensorgrad/tensorgrad/pkg/types"
)

func TestNewLoopNest(t *testing.T) {
	idx := NewIndex("i", NewDom(NewIntImm(0), NewIntImm(4)), Spatial)
	dst := MustNewVar("y", []Expr{idx}, []uint64{4}, types.Int32)
	body := NewMove(dst, NewIntImm(1), MemToMem)

	n := NewLoopNest([]*Index{idx}, []Stmt{body})
	assert.Equal(t, KindLoopNest, n.StmtKind())
	assert.Len(t, n.Indices, 1)
	assert.Len(t, n.Body, 1)
}

func TestNewIfThenElseFalseCaseOptional(t *testing.T) {
	dst := MustNewVar("y", nil, nil, types.Int32)
	cond := NewCompare(EQ, NewIntImm(1), NewIntImm(1))
	trueCase := NewMove(dst, NewIntImm(1), MemToMem)

	ite := NewIfThenElse(cond, trueCase, nil)
	assert.Equal(t, KindIfThenElse, ite.StmtKind())
	assert.Nil(t, ite.FalseCase)
}

func TestNewMove(t *testing.T) {
	dst := MustNewVar("y", nil, nil, types.Int32)
	mv := NewMove(dst, NewIntImm(9), RegToMem)

	assert.Equal(t, KindMove, mv.StmtKind())
	assert.Same(t, dst, mv.Dst)
	assert.Equal(t, RegToMem, mv.MoveKind)
}

func TestNewKernelAndGroupKind(t *testing.T) {
	in := MustNewVar("a", nil, nil, types.Int32)
	out := MustNewVar("b", nil, nil, types.Int32)
	k := NewKernel("id", []*Var{in}, []*Var{out}, []Stmt{NewMove(out, in, MemToMem)}, CPU)

	assert.Equal(t, "id", k.Name)
	assert.Equal(t, KindKernel, k.GroupKind())
	assert.Equal(t, CPU, k.Target)
}
