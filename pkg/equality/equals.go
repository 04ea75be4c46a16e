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

// Package equality supplies structural (value) equality over Expr trees and
// the capture-free substitution passes (by pointer identity and by
// Index name) the autodiff core relies on.
package equality

import (
	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

// ExprEqualByValue recursively compares two expressions structurally: types
// must match at every level; Var equality requires name, per-argument
// equality and identical shape vectors; Index equality requires name,
// domain equality and matching kind. No hash function for Expr is defined
// (there is no canonical total order over the node graph cheap enough to
// hash), so this is the fallback used wherever pointer identity is not
// available, e.g. SubstituteContext.expr2var's linear scan.
func ExprEqualByValue(a, b ir.Expr) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.ExprKind() != b.ExprKind() {
		return false
	}

	if !a.Type().Equals(b.Type()) {
		return false
	}

	switch x := a.(type) {
	case *ir.IntImm:
		return x.Value == b.(*ir.IntImm).Value
	case *ir.UIntImm:
		return x.Value == b.(*ir.UIntImm).Value
	case *ir.FloatImm:
		return x.Value == b.(*ir.FloatImm).Value
	case *ir.StringImm:
		return x.Value == b.(*ir.StringImm).Value
	case *ir.Unary:
		y := b.(*ir.Unary)
		return x.Op == y.Op && ExprEqualByValue(x.A, y.A)
	case *ir.Binary:
		y := b.(*ir.Binary)
		return x.Op == y.Op && ExprEqualByValue(x.A, y.A) && ExprEqualByValue(x.B, y.B)
	case *ir.Compare:
		y := b.(*ir.Compare)
		return x.Op == y.Op && ExprEqualByValue(x.A, y.A) && ExprEqualByValue(x.B, y.B)
	case *ir.Select:
		y := b.(*ir.Select)
		return ExprEqualByValue(x.Cond, y.Cond) &&
			ExprEqualByValue(x.TrueValue, y.TrueValue) &&
			ExprEqualByValue(x.FalseValue, y.FalseValue)
	case *ir.Call:
		y := b.(*ir.Call)
		if x.FuncName != y.FuncName || x.CallKind != y.CallKind || len(x.Args) != len(y.Args) {
			return false
		}

		for i := range x.Args {
			if !ExprEqualByValue(x.Args[i], y.Args[i]) {
				return false
			}
		}

		return true
	case *ir.Cast:
		y := b.(*ir.Cast)
		return x.NewType.Equals(y.NewType) && ExprEqualByValue(x.Val, y.Val)
	case *ir.Ramp:
		y := b.(*ir.Ramp)
		return x.Stride == y.Stride && x.Lanes == y.Lanes && ExprEqualByValue(x.Base, y.Base)
	case *ir.Var:
		y := b.(*ir.Var)
		if x.Name != y.Name || len(x.Args) != len(y.Args) || len(x.Shape) != len(y.Shape) {
			return false
		}

		for i := range x.Shape {
			if x.Shape[i] != y.Shape[i] {
				return false
			}
		}

		for i := range x.Args {
			if !ExprEqualByValue(x.Args[i], y.Args[i]) {
				return false
			}
		}

		return true
	case *ir.Dom:
		y := b.(*ir.Dom)
		return ExprEqualByValue(x.Begin, y.Begin) && ExprEqualByValue(x.Extent, y.Extent)
	case *ir.Index:
		y := b.(*ir.Index)
		return x.Name == y.Name && x.Kind == y.Kind && ExprEqualByValue(x.Dom, y.Dom)
	default:
		return false
	}
}
