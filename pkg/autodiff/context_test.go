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

func TestNameGeneratorFreshFirstRequestUnchanged(t *testing.T) {
	g := NewNameGenerator()
	assert.Equal(t, "q", g.Fresh("q"))
}

func TestNameGeneratorFreshSuffixesRepeats(t *testing.T) {
	g := NewNameGenerator()
	assert.Equal(t, "q", g.Fresh("q"))
	assert.Equal(t, "q1", g.Fresh("q"))
	assert.Equal(t, "q2", g.Fresh("q"))
}

func TestNameGeneratorFreshTracksHintsIndependently(t *testing.T) {
	g := NewNameGenerator()
	assert.Equal(t, "q", g.Fresh("q"))
	assert.Equal(t, "r", g.Fresh("r"))
	assert.Equal(t, "q1", g.Fresh("q"))
}

func TestSubstituteContextAddIndex(t *testing.T) {
	c := NewSubstituteContext()
	i := idx("i")

	c.AddIndex(i, arith.NewExtRange(0, 8))

	assert.Equal(t, []string{"i"}, c.IndexNames)
	assert.Same(t, i, c.IndexMap["i"])
	assert.Equal(t, arith.NewExtRange(0, 8), c.RangeMap["i"])
}

func TestSubstituteContextMarkBoundBeginOnlySetsOnce(t *testing.T) {
	c := NewSubstituteContext()
	c.AddIndex(idx("i"), arith.NewExtRange(0, 8))
	c.MarkBoundBegin()
	assert.Equal(t, 1, c.BoundBegin)

	c.AddIndex(idx("j"), arith.NewExtRange(0, 8))
	c.MarkBoundBegin()
	assert.Equal(t, 1, c.BoundBegin, "a second MarkBoundBegin must not move an already-set boundary")
}

func TestSubstituteContextAddAndFindBound(t *testing.T) {
	c := NewSubstituteContext()
	i := idx("i")
	expr := ir.NewBinary(ir.Add, i, ir.NewIntImm(1))

	c.Add("q", idx("q"), expr, arith.NewExtRange(0, 4))

	name, ok := c.FindBound(ir.NewBinary(ir.Add, idx("i"), ir.NewIntImm(1)))
	require.True(t, ok)
	assert.Equal(t, "q", name)

	_, ok = c.FindBound(ir.NewIntImm(99))
	assert.False(t, ok)
}

func TestSubstituteContextCloneIsIndependent(t *testing.T) {
	c := NewSubstituteContext()
	c.AddIndex(idx("i"), arith.NewExtRange(0, 8))

	clone := c.Clone()
	clone.AddIndex(idx("j"), arith.NewExtRange(0, 4))

	assert.Equal(t, []string{"i"}, c.IndexNames, "mutating the clone must not affect the original")
	assert.Equal(t, []string{"i", "j"}, clone.IndexNames)
}

func TestSubstituteContextMergeFromAddsOnlyNewNames(t *testing.T) {
	c := NewSubstituteContext()
	c.AddIndex(idx("i"), arith.NewExtRange(0, 8))

	fork := c.Clone()
	fork.AddIndex(idx("j"), arith.NewExtRange(0, 4))
	fork.Add("q", idx("q"), ir.NewIntImm(7), arith.NewExtRange(0, 1))

	c.MergeFrom(fork)

	assert.Equal(t, []string{"i", "j", "q"}, c.IndexNames)
	assert.Equal(t, arith.NewExtRange(0, 4), c.RangeMap["j"])

	name, ok := c.FindBound(ir.NewIntImm(7))
	require.True(t, ok)
	assert.Equal(t, "q", name)
}

func TestSubstituteContextMergeFromIsIdempotent(t *testing.T) {
	c := NewSubstituteContext()
	c.AddIndex(idx("i"), arith.NewExtRange(0, 8))

	fork := c.Clone()
	fork.AddIndex(idx("j"), arith.NewExtRange(0, 4))

	c.MergeFrom(fork)
	c.MergeFrom(fork)

	assert.Equal(t, []string{"i", "j"}, c.IndexNames, "merging the same fork twice must not duplicate entries")
}
