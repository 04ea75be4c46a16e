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

	"github.com/tensorgrad/tensorgrad/pkg/ir"
)

// Coefficients is the result of ExtractIndexCoefficients: an affine
// expression a1*i1 + a2*i2 + ... + an*in + c decomposed into its per-index
// coefficients and constant term.
type Coefficients struct {
	Terms    map[string]int64
	Constant int64
}

// ExtractIndexCoefficients decomposes an affine index expression (one
// already free of FloorDiv/FloorMod, see EliminateIndexFloorDivAndMod) into
// a linear combination of named indices plus a constant. It fails with
// ErrUnexpectedNode on any node kind that can never legally appear inside
// an index expression (Select, Compare, Call, Var, Cast, Ramp, Dom), and
// with ErrNonAffineIndex on a product of two non-literal subexpressions or
// on a residual FloorDiv/FloorMod/Div/Mod. Neg is the one legal Unary: it
// contributes coefficient -1 to everything beneath it.
func ExtractIndexCoefficients(expr ir.Expr) (*Coefficients, error) {
	c := &Coefficients{Terms: map[string]int64{}}
	if err := extractCoeffs(expr, 1, c); err != nil {
		return nil, err
	}

	return c, nil
}

func extractCoeffs(expr ir.Expr, scale int64, out *Coefficients) error {
	switch n := expr.(type) {
	case *ir.IntImm:
		out.Constant += scale * n.Value
		return nil
	case *ir.UIntImm:
		out.Constant += scale * int64(n.Value)
		return nil
	case *ir.Index:
		out.Terms[n.Name] += scale
		return nil
	case *ir.Unary:
		return extractUnary(n, scale, out)
	case *ir.Binary:
		return extractBinary(n, scale, out)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedNode, expr.ExprKind())
	}
}

func extractUnary(n *ir.Unary, scale int64, out *Coefficients) error {
	if n.Op != ir.Neg {
		return fmt.Errorf("%w: Not", ErrUnexpectedNode)
	}

	return extractCoeffs(n.A, -scale, out)
}

func extractBinary(n *ir.Binary, scale int64, out *Coefficients) error {
	switch n.Op {
	case ir.Add:
		if err := extractCoeffs(n.A, scale, out); err != nil {
			return err
		}

		return extractCoeffs(n.B, scale, out)
	case ir.Sub:
		if err := extractCoeffs(n.A, scale, out); err != nil {
			return err
		}

		return extractCoeffs(n.B, -scale, out)
	case ir.Mul:
		return extractMul(n, scale, out)
	case ir.FloorDiv, ir.FloorMod, ir.Div, ir.Mod:
		return fmt.Errorf("%w: %s not eliminated before coefficient extraction", ErrNonAffineIndex, n.Op)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedNode, n.Op)
	}
}

func extractMul(n *ir.Binary, scale int64, out *Coefficients) error {
	litA, aIsLit := asIntLiteral(n.A)
	litB, bIsLit := asIntLiteral(n.B)

	switch {
	case aIsLit && bIsLit:
		out.Constant += scale * litA * litB
		return nil
	case aIsLit && !bIsLit:
		return extractCoeffs(n.B, scale*litA, out)
	case bIsLit && !aIsLit:
		return extractCoeffs(n.A, scale*litB, out)
	default:
		return fmt.Errorf("%w: product of two non-literal index subexpressions", ErrNonAffineIndex)
	}
}
