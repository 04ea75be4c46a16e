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
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

const gemmSrc = `
kernel gemm(A: f32[64,512], B: f32[512,128]) -> (Y: f32[64,128]) {
  for m in 0..64 {
    for n in 0..128 {
      for k reduce in 0..512 {
        Y[m,n] = Y[m,n] + A[m,k] * B[k,n];
      }
    }
  }
}
`

func TestParseGemmKernelShape(t *testing.T) {
	kernel, err := Parse(gemmSrc)
	require.NoError(t, err)

	assert.Equal(t, "gemm", kernel.Name)
	require.Len(t, kernel.Inputs, 2)
	require.Len(t, kernel.Outputs, 1)
	assert.Equal(t, "A", kernel.Inputs[0].Name)
	assert.Equal(t, "B", kernel.Inputs[1].Name)
	assert.Equal(t, "Y", kernel.Outputs[0].Name)
	assert.Equal(t, []uint64{64, 512}, kernel.Inputs[0].Shape)
	assert.Equal(t, []uint64{512, 128}, kernel.Inputs[1].Shape)
	assert.Equal(t, []uint64{64, 128}, kernel.Outputs[0].Shape)
}

// Every reference to the same index name within its scope must resolve by
// pointer identity to the same *ir.Index, per pkg/ir's own Var/Index
// sharing invariant.
func TestParseSharesIndexIdentityAcrossReferences(t *testing.T) {
	kernel, err := Parse(gemmSrc)
	require.NoError(t, err)

	outer, ok := kernel.Body[0].(*ir.LoopNest)
	require.True(t, ok)
	require.Len(t, outer.Indices, 1)
	m := outer.Indices[0]

	require.Len(t, outer.Body, 1)
	mid, ok := outer.Body[0].(*ir.LoopNest)
	require.True(t, ok)
	require.Len(t, mid.Indices, 1)
	n := mid.Indices[0]

	require.Len(t, mid.Body, 1)
	inner, ok := mid.Body[0].(*ir.LoopNest)
	require.True(t, ok)
	require.Len(t, inner.Indices, 1)
	assert.Equal(t, ir.Reduce, inner.Indices[0].Kind)

	require.Len(t, inner.Body, 1)
	move, ok := inner.Body[0].(*ir.Move)
	require.True(t, ok)

	assert.Same(t, m, move.Dst.Args[0].(*ir.Index))
	assert.Same(t, n, move.Dst.Args[1].(*ir.Index))

	mul, ok := move.Src.(*ir.Binary)
	require.True(t, ok)
	assert.Equal(t, ir.Add, mul.Op)
}

// "//" is the floor-division operator, not a comment marker; "#" starts a
// line comment.
func TestParseFloorDivAndHashComments(t *testing.T) {
	kernel, err := Parse(`
# spreads X over Y: each X element feeds 8 consecutive Y elements
kernel pool(X: f32[8]) -> (Y: f32[64]) {
  for i in 0..64 {
    Y[i] = Y[i] + X[i // 8];  # floor-div access
  }
}
`)
	require.NoError(t, err)

	loop, ok := kernel.Body[0].(*ir.LoopNest)
	require.True(t, ok)

	move, ok := loop.Body[0].(*ir.Move)
	require.True(t, ok)

	add, ok := move.Src.(*ir.Binary)
	require.True(t, ok)

	access, ok := add.B.(*ir.Var)
	require.True(t, ok)
	require.Len(t, access.Args, 1)

	div, ok := access.Args[0].(*ir.Binary)
	require.True(t, ok)
	assert.Equal(t, ir.FloorDiv, div.Op)
}

func TestParseRejectsUnknownVariable(t *testing.T) {
	_, err := Parse(`
kernel bad(A: f32[4]) -> (Y: f32[4]) {
  for i in 0..4 {
    Y[i] = Y[i] + Z[i];
  }
}
`)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseRejectsLexicalError(t *testing.T) {
	_, err := Parse("kernel bad(A: f32[4]) -> (Y: f32[4]) { @ }")
	assert.Error(t, err)
}
