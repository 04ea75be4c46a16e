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
package emitter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

func gemmKernelForEmit() *ir.Kernel {
	m := ir.NewIndex("m", ir.NewDom(ir.NewIntImm(0), ir.NewIntImm(64)), ir.Spatial)
	n := ir.NewIndex("n", ir.NewDom(ir.NewIntImm(0), ir.NewIntImm(128)), ir.Spatial)
	k := ir.NewIndex("k", ir.NewDom(ir.NewIntImm(0), ir.NewIntImm(512)), ir.Reduce)

	a := ir.MustNewVar("A", []ir.Expr{m, k}, []uint64{64, 512}, types.Float32)
	b := ir.MustNewVar("B", []ir.Expr{k, n}, []uint64{512, 128}, types.Float32)
	y := ir.MustNewVar("Y", []ir.Expr{m, n}, []uint64{64, 128}, types.Float32)

	move := ir.NewMove(y, ir.NewBinary(ir.Add, y, ir.NewBinary(ir.Mul, a, b)), ir.MemToMem)
	inner := ir.NewLoopNest([]*ir.Index{k}, []ir.Stmt{move})
	mid := ir.NewLoopNest([]*ir.Index{n}, []ir.Stmt{inner})
	outer := ir.NewLoopNest([]*ir.Index{m}, []ir.Stmt{mid})

	return ir.NewKernel("gemm", []*ir.Var{a, b}, []*ir.Var{y}, []ir.Stmt{outer}, ir.CPU)
}

func TestEmitProducesFunctionSignatureAndNestedForLoops(t *testing.T) {
	var buf bytes.Buffer

	err := Emit(&buf, gemmKernelForEmit())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "void gemm(")
	assert.Contains(t, out, "const float *A")
	assert.Contains(t, out, "const float *B")
	assert.Contains(t, out, "float *Y")
	assert.Equal(t, 3, strings.Count(out, "for ("))
}

func TestEmitRejectsGPUTarget(t *testing.T) {
	k := gemmKernelForEmit()
	k.Target = ir.GPU

	var buf bytes.Buffer
	err := Emit(&buf, k)
	assert.ErrorIs(t, err, ErrUnsupportedTarget)
}
