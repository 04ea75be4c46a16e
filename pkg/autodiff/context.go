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

// Package autodiff implements index-space reverse-mode automatic
// differentiation over tensor loop nests. Given the right-hand side of a
// forward assignment whose accesses use affine (plus floor-div/floor-mod)
// index expressions, GradStmt symbolically inverts the integer system of
// index bindings and produces the reversed statement: for each point of
// the gradient tensor, a reduction over every forward index point whose
// access lands there.
package autodiff

import (
	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/equality"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

// NameGenerator hands out globally unique names derived from a hint. The
// first request for a given hint returns the hint unchanged; subsequent
// requests append a monotonically increasing suffix. This is the
// grow-only, single-threaded piece of mutable state the autodiff core
// touches: each call to GradStmt allocates its own
// NameGenerator, so concurrent gradient computations share nothing.
type NameGenerator struct {
	counts map[string]int
}

// NewNameGenerator constructs an empty NameGenerator.
func NewNameGenerator() *NameGenerator {
	return &NameGenerator{counts: map[string]int{}}
}

// Fresh returns a name derived from hint, guaranteed not to have been
// returned by this generator before.
func (g *NameGenerator) Fresh(hint string) string {
	n := g.counts[hint]
	g.counts[hint] = n + 1

	if n == 0 {
		return hint
	}

	return hint + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

// exprVarPair is one entry of SubstituteContext.expr2var: there is no hash
// function over Expr (see package equality's doc comment), so the reverse
// lookup from an expression's *value* to its bound synthetic name is a
// plain slice scanned with equality.ExprEqualByValue.
type exprVarPair struct {
	Expr ir.Expr
	Name string
}

// SubstituteContext is the sequenced work-state threaded through gradient
// synthesis.
type SubstituteContext struct {
	// IndexNames is the insertion-ordered list of every index name known to
	// this context, original and synthetic alike.
	IndexNames []string
	// IndexMap maps a name to its Index node.
	IndexMap map[string]*ir.Index
	// RangeMap maps a name to its currently known interval.
	RangeMap map[string]arith.ExtRange
	// Var2Expr maps a synthetic *bound* name to the expression it denotes.
	Var2Expr map[string]ir.Expr
	// Expr2Var is the reverse lookup by value-equality.
	Expr2Var []exprVarPair
	// BoundBegin is the position within IndexNames at which synthetic
	// substitution names begin; negative means "none yet".
	BoundBegin int
}

// NewSubstituteContext constructs an empty context with BoundBegin
// unset (-1).
func NewSubstituteContext() *SubstituteContext {
	return &SubstituteContext{
		IndexMap:   map[string]*ir.Index{},
		RangeMap:   map[string]arith.ExtRange{},
		Var2Expr:   map[string]ir.Expr{},
		BoundBegin: -1,
	}
}

// AddIndex records an original (non-synthetic) index and its range.
func (c *SubstituteContext) AddIndex(idx *ir.Index, r arith.ExtRange) {
	c.IndexNames = append(c.IndexNames, idx.Name)
	c.IndexMap[idx.Name] = idx
	c.RangeMap[idx.Name] = r
}

// MarkBoundBegin records the current length of IndexNames as the point at
// which synthetic substitution names begin, if not already set.
func (c *SubstituteContext) MarkBoundBegin() {
	if c.BoundBegin < 0 {
		c.BoundBegin = len(c.IndexNames)
	}
}

// FindBound returns the synthetic name already bound to an expression
// value-equal to expr, if any.
func (c *SubstituteContext) FindBound(expr ir.Expr) (string, bool) {
	for _, kv := range c.Expr2Var {
		if equality.ExprEqualByValue(kv.Expr, expr) {
			return kv.Name, true
		}
	}

	return "", false
}

// Add records a new synthetic index name bound to expr with the given
// range, keeping Var2Expr and Expr2Var in lockstep (the context's core
// invariant: every synthetic name appears in both).
func (c *SubstituteContext) Add(name string, idx *ir.Index, expr ir.Expr, r arith.ExtRange) {
	c.IndexNames = append(c.IndexNames, name)
	c.IndexMap[name] = idx
	c.RangeMap[name] = r
	c.Var2Expr[name] = expr
	c.Expr2Var = append(c.Expr2Var, exprVarPair{Expr: expr, Name: name})
}

// Clone returns a copy of the context with its own slices and maps (the
// *ir.Index and expression values in them are shared), so indices and
// bindings added to the copy do not change c.
func (c *SubstituteContext) Clone() *SubstituteContext {
	out := &SubstituteContext{
		IndexNames: append([]string(nil), c.IndexNames...),
		IndexMap:   make(map[string]*ir.Index, len(c.IndexMap)),
		RangeMap:   make(map[string]arith.ExtRange, len(c.RangeMap)),
		Var2Expr:   make(map[string]ir.Expr, len(c.Var2Expr)),
		Expr2Var:   append([]exprVarPair(nil), c.Expr2Var...),
		BoundBegin: c.BoundBegin,
	}

	for k, v := range c.IndexMap {
		out.IndexMap[k] = v
	}

	for k, v := range c.RangeMap {
		out.RangeMap[k] = v
	}

	for k, v := range c.Var2Expr {
		out.Var2Expr[k] = v
	}

	return out
}

// MergeFrom absorbs every index/range/binding of other that c does not
// already hold, such as those added to a Clone of c since it was made.
func (c *SubstituteContext) MergeFrom(other *SubstituteContext) {
	known := make(map[string]bool, len(c.IndexNames))
	for _, n := range c.IndexNames {
		known[n] = true
	}

	for _, n := range other.IndexNames {
		if known[n] {
			continue
		}

		known[n] = true

		c.IndexNames = append(c.IndexNames, n)
		c.IndexMap[n] = other.IndexMap[n]
		c.RangeMap[n] = other.RangeMap[n]

		if e, ok := other.Var2Expr[n]; ok {
			c.Var2Expr[n] = e
		}
	}

	for _, kv := range other.Expr2Var {
		if _, ok := c.FindBound(kv.Expr); !ok {
			c.Expr2Var = append(c.Expr2Var, kv)
		}
	}
}
