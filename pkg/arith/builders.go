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
package arith

import (
	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// Builders are thin wrappers over the raw ir.New* constructors; they exist
// so that passes read "arith.Add(a, b)" rather than reaching for the IR
// package's node constructors directly, keeping the separation
// between the node definitions (pkg/ir/*.go) and the arithmetic helpers
// that assemble them (the builders in this file).

// Neg negates a.
func Neg(a ir.Expr) ir.Expr { return ir.NewUnary(ir.Neg, a) }

// Not logically negates a.
func Not(a ir.Expr) ir.Expr { return ir.NewUnary(ir.Not, a) }

// Add adds a and b.
func Add(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.Add, a, b) }

// Sub subtracts b from a.
func Sub(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.Sub, a, b) }

// Mul multiplies a and b.
func Mul(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.Mul, a, b) }

// Div truncating-divides a by b.
func Div(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.Div, a, b) }

// FloorDiv floor-divides a by b.
func FloorDiv(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.FloorDiv, a, b) }

// FloorMod computes the floor-remainder of a by b.
func FloorMod(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.FloorMod, a, b) }

// And is logical conjunction.
func And(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.And, a, b) }

// Or is logical disjunction.
func Or(a, b ir.Expr) ir.Expr { return ir.NewBinary(ir.Or, a, b) }

// Lt is less-than.
func Lt(a, b ir.Expr) ir.Expr { return ir.NewCompare(ir.LT, a, b) }

// Le is less-than-or-equal.
func Le(a, b ir.Expr) ir.Expr { return ir.NewCompare(ir.LE, a, b) }

// Eq is equality.
func Eq(a, b ir.Expr) ir.Expr { return ir.NewCompare(ir.EQ, a, b) }

// Ge is greater-than-or-equal.
func Ge(a, b ir.Expr) ir.Expr { return ir.NewCompare(ir.GE, a, b) }

// IntC is shorthand for a literal IntImm with the default Int64 type.
func IntC(v int64) ir.Expr { return ir.NewIntImm(v) }

// Conjoin folds a list of boolean conditions together with And, seeded with
// a literal "true" (UIntImm 1) when the list is empty.
func Conjoin(conds []ir.Expr) ir.Expr {
	seed := ir.Expr(ir.NewUIntImm(1, types.Bool1))

	var result ir.Expr = seed
	for i, c := range conds {
		if i == 0 {
			result = c
			continue
		}

		result = And(result, c)
	}

	return result
}
