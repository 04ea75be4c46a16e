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
//
// SPDX-License-Identifier: Apache-2.0

// Package simplify implements a unit-element-elimination and
// constant-folding simplifier. It is deliberately not a
// general algebraic normalizer: no commuting, no distributing, no common
// subexpression elimination, only constant folding and a fixed
// set of identities.
package simplify

import (
	"math"

	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

const floatEpsilon = 1e-20

// simplifier is a Mutator that applies the rewrite rules bottom-up, once
// children have already been simplified.
type simplifier struct {
	ir.BaseExprMutator
}

// Simplify rewrites expr bottom-up using constant folding and unit-element
// elimination; it is value-preserving for every concrete
// valuation of expr's free Index names.
func Simplify(expr ir.Expr) (ir.Expr, error) {
	s := &simplifier{}
	s.Self = s

	return ir.RebuildExpr(expr, s)
}

func (s *simplifier) MutateUnary(n *ir.Unary) (ir.Expr, error) {
	rebuilt, err := s.BaseExprMutator.MutateUnary(n)
	if err != nil {
		return nil, err
	}

	u, ok := rebuilt.(*ir.Unary)
	if !ok {
		return rebuilt, nil
	}

	switch u.Op {
	case ir.Neg:
		if lit, ok := u.A.(*ir.IntImm); ok {
			return ir.NewIntImm(-lit.Value, lit.Ty), nil
		}

		if inner, ok := u.A.(*ir.Unary); ok && inner.Op == ir.Neg {
			return inner.A, nil
		}
	case ir.Not:
		if lit, ok := u.A.(*ir.IntImm); ok {
			if lit.Value == 0 {
				return ir.NewIntImm(1, lit.Ty), nil
			}

			return ir.NewIntImm(0, lit.Ty), nil
		}

		if inner, ok := u.A.(*ir.Unary); ok && inner.Op == ir.Not {
			return inner.A, nil
		}
	}

	return u, nil
}

func (s *simplifier) MutateBinary(n *ir.Binary) (ir.Expr, error) {
	rebuilt, err := s.BaseExprMutator.MutateBinary(n)
	if err != nil {
		return nil, err
	}

	b, ok := rebuilt.(*ir.Binary)
	if !ok {
		return rebuilt, nil
	}

	if folded, ok := foldConstants(b); ok {
		return folded, nil
	}

	return eliminateUnits(b), nil
}

// foldConstants folds when both operands are IntImm or both are FloatImm;
// % folds under integer semantics only.
func foldConstants(b *ir.Binary) (ir.Expr, bool) {
	ai, aIsInt := b.A.(*ir.IntImm)
	bi, bIsInt := b.B.(*ir.IntImm)

	if aIsInt && bIsInt {
		if v, ok := foldInt(b.Op, ai.Value, bi.Value); ok {
			return ir.NewIntImm(v, ai.Ty), true
		}

		return nil, false
	}

	af, aIsFloat := b.A.(*ir.FloatImm)
	bf, bIsFloat := b.B.(*ir.FloatImm)

	if aIsFloat && bIsFloat {
		if v, ok := foldFloat(b.Op, af.Value, bf.Value); ok {
			return ir.NewFloatImm(v, af.Ty), true
		}
	}

	return nil, false
}

func foldInt(op ir.BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case ir.Add:
		return a + b, true
	case ir.Sub:
		return a - b, true
	case ir.Mul:
		return a * b, true
	case ir.Div:
		if b == 0 {
			return 0, false
		}

		return a / b, true
	case ir.Mod:
		if b == 0 {
			return 0, false
		}

		return a % b, true
	case ir.FloorDiv:
		if b == 0 {
			return 0, false
		}

		return floorDivInt(a, b), true
	case ir.FloorMod:
		if b == 0 {
			return 0, false
		}

		return floorModInt(a, b), true
	case ir.And:
		return boolToInt(a != 0 && b != 0), true
	case ir.Or:
		return boolToInt(a != 0 || b != 0), true
	default:
		return 0, false
	}
}

func foldFloat(op ir.BinaryOp, a, b float64) (float64, bool) {
	switch op {
	case ir.Add:
		return a + b, true
	case ir.Sub:
		return a - b, true
	case ir.Mul:
		return a * b, true
	case ir.Div:
		if b == 0 {
			return 0, false
		}

		return a / b, true
	default:
		return 0, false
	}
}

// eliminateUnits strips additive and multiplicative unit elements.
func eliminateUnits(b *ir.Binary) ir.Expr {
	switch b.Op {
	case ir.Add:
		if isZero(b.A) {
			return b.B
		}

		if isZero(b.B) {
			return b.A
		}
	case ir.Sub:
		if isZero(b.B) {
			return b.A
		}

		if isZero(b.A) {
			return ir.NewUnary(ir.Neg, b.B)
		}
	case ir.Mul:
		if isZero(b.A) {
			return b.A
		}

		if isZero(b.B) {
			return b.B
		}

		if isOne(b.A) {
			return b.B
		}

		if isOne(b.B) {
			return b.A
		}

		if isNegOne(b.A) {
			return ir.NewUnary(ir.Neg, b.B)
		}

		if isNegOne(b.B) {
			return ir.NewUnary(ir.Neg, b.A)
		}
	case ir.Div:
		if isZero(b.A) {
			return b.A
		}

		if isOne(b.B) {
			return b.A
		}

		if isNegOne(b.B) {
			return ir.NewUnary(ir.Neg, b.A)
		}
	case ir.Mod, ir.FloorMod:
		if isOne(b.B) || isNegOne(b.B) {
			return ir.NewIntImm(0, b.Ty)
		}
	}

	return b
}

func isZero(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.IntImm:
		return n.Value == 0
	case *ir.FloatImm:
		return math.Abs(n.Value) < floatEpsilon
	case *ir.UIntImm:
		return n.Value == 0
	default:
		return false
	}
}

func isOne(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.IntImm:
		return n.Value == 1
	case *ir.UIntImm:
		return n.Value == 1
	default:
		return false
	}
}

func isNegOne(e ir.Expr) bool {
	n, ok := e.(*ir.IntImm)
	return ok && n.Value == -1
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}

	return m
}
