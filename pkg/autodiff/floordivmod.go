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
	"fmt"

	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/equality"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// FloorDivModEntry records one floor-div/floor-mod decomposition performed
// by EliminateIndexFloorDivAndMod: the quotient and remainder indices
// introduced for a given (dividend, divisor) pair are shared across every
// occurrence of that same pair, so that `a floordiv k` and `a floormod k`
// appearing in sibling subexpressions resolve to the very same pair of
// synthetic indices rather than independent ones.
type FloorDivModEntry struct {
	Dividend  ir.Expr
	Divisor   int64
	Quotient  *ir.Index
	Remainder *ir.Index
}

// Matches reports whether this entry already covers the given
// (dividend, divisor) pair, compared by value rather than pointer identity.
func (e *FloorDivModEntry) Matches(dividend ir.Expr, divisor int64) bool {
	return e.Divisor == divisor && equality.ExprEqualByValue(e.Dividend, dividend)
}

// floorDivModEliminator is a bottom-up Mutator that rewrites every
// `dividend floordiv k` and `dividend floormod k` subexpression (k a
// literal) into a reference to a synthetic bound Index, recording the
// binding's range and its Var2Expr entry on ctx as it goes. By the time a
// FloorDiv/FloorMod node is visited its own children have already been
// rebuilt, so dividend itself is already free of floor-div/floor-mod.
type floorDivModEliminator struct {
	ir.BaseExprMutator

	ctx     *SubstituteContext
	gen     *NameGenerator
	entries []*FloorDivModEntry
}

// EliminateIndexFloorDivAndMod rewrites expr so that it contains no
// FloorDiv or FloorMod node, replacing each occurrence with a fresh bound
// Index representing the quotient or remainder, and returns the entries
// created (new callers not already tracking their own list may ignore the
// return past its length).
func EliminateIndexFloorDivAndMod(expr ir.Expr, ctx *SubstituteContext, gen *NameGenerator) (ir.Expr, []*FloorDivModEntry, error) {
	e := &floorDivModEliminator{ctx: ctx, gen: gen}
	e.Self = e

	out, err := ir.RebuildExpr(expr, e)
	if err != nil {
		return nil, nil, err
	}

	return out, e.entries, nil
}

func (e *floorDivModEliminator) MutateBinary(n *ir.Binary) (ir.Expr, error) {
	rebuilt, err := e.BaseExprMutator.MutateBinary(n)
	if err != nil {
		return nil, err
	}

	b, ok := rebuilt.(*ir.Binary)
	if !ok {
		return rebuilt, nil
	}

	if !b.Op.IsFloorDivOrMod() {
		return b, nil
	}

	litB, ok := asIntLiteral(b.B)
	if !ok {
		return nil, fmt.Errorf("%w: floor-div/floor-mod requires a literal divisor", ErrNonAffineIndex)
	}

	if litB == 0 {
		return nil, arith.ErrDivByZero
	}

	q, r, err := e.solve(b.A, litB)
	if err != nil {
		return nil, err
	}

	if b.Op == ir.FloorDiv {
		return q, nil
	}

	return r, nil
}

func (e *floorDivModEliminator) solve(dividend ir.Expr, divisor int64) (*ir.Index, *ir.Index, error) {
	for _, entry := range e.entries {
		if entry.Matches(dividend, divisor) {
			return entry.Quotient, entry.Remainder, nil
		}
	}

	dividendRange, err := evalRangeForward(dividend, e.ctx.RangeMap)
	if err != nil {
		return nil, nil, err
	}

	if !dividendRange.IsBounded() {
		return nil, nil, fmt.Errorf("%w: dividend range is unbounded", ErrMalformedSubstitution)
	}

	quotientRange, err := dividendRange.FloorDiv(divisor)
	if err != nil {
		return nil, nil, err
	}

	absDivisor := divisor
	if absDivisor < 0 {
		absDivisor = -absDivisor
	}

	remainderRange := arith.FloorModRange(absDivisor)

	qName := e.gen.Fresh("q")
	rName := e.gen.Fresh("r")

	qIdx := ir.NewIndex(qName, ir.NewDom(
		ir.NewIntImm(quotientRange.Left, types.Int64),
		ir.NewIntImm(quotientRange.Right-quotientRange.Left, types.Int64),
	), ir.Unknown)

	rIdx := ir.NewIndex(rName, ir.NewDom(
		ir.NewIntImm(0, types.Int64),
		ir.NewIntImm(remainderRange.Right, types.Int64),
	), ir.Unknown)

	divisorLit := ir.NewIntImm(divisor, types.Int64)

	e.ctx.Add(qName, qIdx, ir.NewBinary(ir.FloorDiv, dividend, divisorLit), quotientRange)
	e.ctx.Add(rName, rIdx, ir.NewBinary(ir.FloorMod, dividend, divisorLit), remainderRange)

	entry := &FloorDivModEntry{Dividend: dividend, Divisor: divisor, Quotient: qIdx, Remainder: rIdx}
	e.entries = append(e.entries, entry)

	return qIdx, rIdx, nil
}

// evalRangeForward computes the range of an affine expression forward from
// the known ranges of its free indices, the dual of package rangeinfer's
// back-propagation.
func evalRangeForward(expr ir.Expr, ranges map[string]arith.ExtRange) (arith.ExtRange, error) {
	switch n := expr.(type) {
	case *ir.IntImm:
		return arith.NewExtRange(n.Value, n.Value+1), nil
	case *ir.Index:
		if r, ok := ranges[n.Name]; ok {
			return r, nil
		}

		return arith.Unbounded, nil
	case *ir.Unary:
		if n.Op == ir.Neg {
			inner, err := evalRangeForward(n.A, ranges)
			if err != nil {
				return arith.ExtRange{}, err
			}

			return inner.Negate(), nil
		}

		return arith.Unbounded, fmt.Errorf("%w: Not", ErrUnexpectedNode)
	case *ir.Binary:
		return evalRangeForwardBinary(n, ranges)
	default:
		return arith.ExtRange{}, fmt.Errorf("%w: %s", ErrUnexpectedNode, expr.ExprKind())
	}
}

func evalRangeForwardBinary(n *ir.Binary, ranges map[string]arith.ExtRange) (arith.ExtRange, error) {
	a, err := evalRangeForward(n.A, ranges)
	if err != nil {
		return arith.ExtRange{}, err
	}

	b, err := evalRangeForward(n.B, ranges)
	if err != nil {
		return arith.ExtRange{}, err
	}

	switch n.Op {
	case ir.Add:
		if a.IsBounded() && b.IsBounded() {
			return arith.NewExtRange(a.Left+b.Left, a.Right+b.Right-1), nil
		}

		return arith.Unbounded, nil
	case ir.Sub:
		if a.IsBounded() && b.IsBounded() {
			return arith.NewExtRange(a.Left-(b.Right-1), a.Right-b.Left), nil
		}

		return arith.Unbounded, nil
	case ir.Mul:
		if lit, ok := asIntLiteral(n.B); ok {
			return a.Scale(lit), nil
		}

		if lit, ok := asIntLiteral(n.A); ok {
			return b.Scale(lit), nil
		}

		return arith.Unbounded, nil
	case ir.FloorDiv:
		if lit, ok := asIntLiteral(n.B); ok {
			if lit == 0 {
				return arith.ExtRange{}, arith.ErrDivByZero
			}

			return a.FloorDiv(lit)
		}

		return arith.Unbounded, nil
	case ir.FloorMod:
		if lit, ok := asIntLiteral(n.B); ok {
			if lit <= 0 {
				return arith.ExtRange{}, arith.ErrDivByZero
			}

			return arith.FloorModRange(lit), nil
		}

		return arith.Unbounded, nil
	default:
		return arith.ExtRange{}, fmt.Errorf("%w: %s", ErrUnexpectedNode, n.Op)
	}
}

func asIntLiteral(e ir.Expr) (int64, bool) {
	if lit, ok := e.(*ir.IntImm); ok {
		return lit.Value, true
	}

	return 0, false
}
