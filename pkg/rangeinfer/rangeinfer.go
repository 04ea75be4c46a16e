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

// Package rangeinfer implements range back-propagation:
// given an expression and an assumed range for its result,
// it walks the expression and records, for every named Index encountered,
// the range implied for that index by the surrounding structure. The data
// flow runs from parent to child, the reverse of ordinary interval
// evaluation.
package rangeinfer

import (
	"errors"
	"fmt"

	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

// ErrDivByZero is returned when a FloorDiv/FloorMod literal divisor is
// zero during inference.
var ErrDivByZero = errors.New("floordiv by zero during range inference")

// ErrUnsupportedOp is returned when the walk reaches a Binary operator this
// pass does not know how to invert.
var ErrUnsupportedOp = errors.New("unsupported operator in range inference")

// Infer walks expr assuming its overall result lies within target, and
// returns the tightest known range recorded for every named Index
// encountered along the way (ranges for the same index seen more than once
// are merged with Union).
func Infer(expr ir.Expr, target arith.ExtRange) (map[string]arith.ExtRange, error) {
	out := map[string]arith.ExtRange{}
	if err := infer(expr, target, out); err != nil {
		return nil, err
	}

	return out, nil
}

func infer(expr ir.Expr, cur arith.ExtRange, out map[string]arith.ExtRange) error {
	switch n := expr.(type) {
	case *ir.Index:
		if existing, ok := out[n.Name]; ok {
			out[n.Name] = existing.Union(cur)
		} else {
			out[n.Name] = cur
		}

		return nil
	case *ir.Unary:
		if n.Op == ir.Neg {
			return infer(n.A, cur.Negate(), out)
		}

		return fmt.Errorf("%w: Not in range-inference position", ErrUnsupportedOp)
	case *ir.Binary:
		return inferBinary(n, cur, out)
	case *ir.Cast:
		return infer(n.Val, cur, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOp, expr.ExprKind())
	}
}

func inferBinary(n *ir.Binary, cur arith.ExtRange, out map[string]arith.ExtRange) error {
	litA, aIsLit := asIntLiteral(n.A)
	litB, bIsLit := asIntLiteral(n.B)

	switch n.Op {
	case ir.Add:
		switch {
		case bIsLit && !aIsLit:
			return infer(n.A, cur.Shift(-litB), out)
		case aIsLit && !bIsLit:
			return infer(n.B, cur.Shift(-litA), out)
		default:
			return fmt.Errorf("%w: Add requires exactly one literal operand", ErrUnsupportedOp)
		}
	case ir.Sub:
		switch {
		case bIsLit && !aIsLit:
			// a - c: the result range shifts back up by c.
			return infer(n.A, cur.Shift(litB), out)
		case aIsLit && !bIsLit:
			// c - a: flip and shift.
			return infer(n.B, cur.Negate().Shift(litA), out)
		default:
			return fmt.Errorf("%w: Sub requires exactly one literal operand", ErrUnsupportedOp)
		}
	case ir.Mul:
		switch {
		case bIsLit && !aIsLit && litB != 0:
			r, err := cur.DivByConst(litB)
			if err != nil {
				return err
			}

			return infer(n.A, r, out)
		case aIsLit && !bIsLit && litA != 0:
			r, err := cur.DivByConst(litA)
			if err != nil {
				return err
			}

			return infer(n.B, r, out)
		default:
			return fmt.Errorf("%w: Mul requires exactly one non-zero literal operand", ErrUnsupportedOp)
		}
	case ir.FloorDiv:
		if !bIsLit {
			return fmt.Errorf("%w: FloorDiv requires a literal divisor", ErrUnsupportedOp)
		}

		if litB == 0 {
			return ErrDivByZero
		}

		return infer(n.A, cur.MulConst(litB), out)
	case ir.FloorMod:
		// Not currently inverted; this is a
		// warning condition upstream, not a hard failure, so simply record
		// the unbounded range for whatever indices appear beneath.
		return infer(n.A, arith.Unbounded, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOp, n.Op)
	}
}

func asIntLiteral(e ir.Expr) (int64, bool) {
	if lit, ok := e.(*ir.IntImm); ok {
		return lit.Value, true
	}

	return 0, false
}
