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

// Package shapecheck is a dimension-compatibility checker: given a compiled
// ir.Kernel, it verifies that every tensor access stays within its declared
// Shape and that every tensor name is used consistently (same Shape, same
// element Type) throughout the kernel. Indices already carry concrete,
// statically-known Doms by the time a kernel reaches this pass, so there
// are no extents left to infer; the check performed here is that every
// axis expression's value range, computed forward from its free indices'
// declared Doms, actually lands inside the tensor's declared extent for
// that axis, plus a meet-style consistency check across repeated
// occurrences of a tensor name.
package shapecheck

import (
	"fmt"

	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// Check walks every statement of kernel and reports the first dimension
// incompatibility found: an out-of-range tensor access, a Var arity that
// disagrees with its declared Shape, or two accesses of the same tensor
// name disagreeing on Shape or element Type. A nil result means every
// access axis whose index range is bounded lies within its declared
// extent; an axis whose index range is unbounded is not checked.
func Check(kernel *ir.Kernel) error {
	c := &checker{
		ranges: map[string]arith.ExtRange{},
		shapes: map[string][]uint64{},
		types:  map[string]types.Type{},
	}

	for _, v := range kernel.Inputs {
		if err := c.recordDeclared(v); err != nil {
			return err
		}
	}

	for _, v := range kernel.Outputs {
		if err := c.recordDeclared(v); err != nil {
			return err
		}
	}

	for _, stmt := range kernel.Body {
		if err := c.visitStmt(stmt); err != nil {
			return err
		}
	}

	return nil
}

// checker carries the two pieces of state the walk accumulates: ranges is
// the current lexical scope's map from in-scope Index name to its Dom's
// range (pushed and popped around each LoopNest), and shapes/types record
// the first Shape/Type seen for each tensor name so later occurrences can
// be checked for agreement.
type checker struct {
	ranges map[string]arith.ExtRange
	shapes map[string][]uint64
	types  map[string]types.Type
}

// recordDeclared seeds the shape/type table from a kernel's header
// declaration. The declared Var's own Args are the parser's synthesized
// per-axis placeholders (needed to satisfy ir.NewVar's arity invariant at
// declaration time, see pkg/parser.parseParam) rather than a real access
// pattern, so they carry no information checkVar needs to validate.
func (c *checker) recordDeclared(v *ir.Var) error {
	c.shapes[v.Name] = v.Shape
	c.types[v.Name] = v.Ty

	return nil
}

func (c *checker) visitStmt(stmt ir.Stmt) error {
	switch n := stmt.(type) {
	case *ir.LoopNest:
		return c.visitLoopNest(n)
	case *ir.IfThenElse:
		return c.visitIfThenElse(n)
	case *ir.Move:
		return c.visitMove(n)
	default:
		return ir.NewUnsupportedNodeError(stmt.StmtKind(), "shapecheck")
	}
}

func (c *checker) visitLoopNest(n *ir.LoopNest) error {
	type saved struct {
		name  string
		had   bool
		prior arith.ExtRange
	}

	var restores []saved

	for _, idx := range n.Indices {
		prior, had := c.ranges[idx.Name]
		restores = append(restores, saved{name: idx.Name, had: had, prior: prior})
		c.ranges[idx.Name] = domRange(idx)
	}

	defer func() {
		for _, s := range restores {
			if s.had {
				c.ranges[s.name] = s.prior
			} else {
				delete(c.ranges, s.name)
			}
		}
	}()

	for _, stmt := range n.Body {
		if err := c.visitStmt(stmt); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) visitIfThenElse(n *ir.IfThenElse) error {
	if err := c.checkExpr(n.Cond); err != nil {
		return err
	}

	if err := c.visitStmt(n.TrueCase); err != nil {
		return err
	}

	if n.FalseCase != nil {
		return c.visitStmt(n.FalseCase)
	}

	return nil
}

func (c *checker) visitMove(n *ir.Move) error {
	if err := c.checkExpr(n.Dst); err != nil {
		return err
	}

	return c.checkExpr(n.Src)
}

// checkExpr walks expr for every Var access it contains and validates each
// one; it does not itself need to be a full ir.ExprVisitor since the only
// node kind it cares about is Var (everything else is checked by recursing
// into its children by hand, the same descent BaseExprVisitor would do).
func (c *checker) checkExpr(expr ir.Expr) error {
	switch n := expr.(type) {
	case *ir.IntImm, *ir.UIntImm, *ir.FloatImm, *ir.StringImm, *ir.Index:
		return nil
	case *ir.Unary:
		return c.checkExpr(n.A)
	case *ir.Binary:
		if err := c.checkExpr(n.A); err != nil {
			return err
		}

		return c.checkExpr(n.B)
	case *ir.Compare:
		if err := c.checkExpr(n.A); err != nil {
			return err
		}

		return c.checkExpr(n.B)
	case *ir.Select:
		if err := c.checkExpr(n.Cond); err != nil {
			return err
		}

		if err := c.checkExpr(n.TrueValue); err != nil {
			return err
		}

		return c.checkExpr(n.FalseValue)
	case *ir.Cast:
		return c.checkExpr(n.Val)
	case *ir.Call:
		for _, a := range n.Args {
			if err := c.checkExpr(a); err != nil {
				return err
			}
		}

		return nil
	case *ir.Ramp:
		return c.checkExpr(n.Base)
	case *ir.Var:
		return c.checkVar(n)
	default:
		return ir.NewUnsupportedNodeError(expr.ExprKind(), "shapecheck")
	}
}

func (c *checker) checkVar(v *ir.Var) error {
	if len(v.Args) != len(v.Shape) {
		return fmt.Errorf("%w: %s accessed with %d indices, declared with %d axes",
			ErrArityMismatch, v.Name, len(v.Args), len(v.Shape))
	}

	if prior, ok := c.shapes[v.Name]; ok {
		if !shapeEqual(prior, v.Shape) {
			return fmt.Errorf("%w: %s: %v vs %v", ErrShapeConflict, v.Name, prior, v.Shape)
		}
	} else {
		c.shapes[v.Name] = v.Shape
	}

	if prior, ok := c.types[v.Name]; ok {
		if !prior.Equals(v.Ty) {
			return fmt.Errorf("%w: %s", ErrTypeConflict, v.Name)
		}
	} else {
		c.types[v.Name] = v.Ty
	}

	for i, arg := range v.Args {
		if err := c.checkExpr(arg); err != nil {
			return err
		}

		r, err := evalRangeForward(arg, c.ranges)
		if err != nil {
			return err
		}

		if !r.IsBounded() {
			continue
		}

		if r.Left < 0 || r.Right > int64(v.Shape[i]) {
			return fmt.Errorf("%w: %s axis %d: indices range over [%d,%d), declared extent is %d",
				ErrOutOfBounds, v.Name, i, r.Left, r.Right, v.Shape[i])
		}
	}

	return nil
}

func shapeEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// domRange reads a literal [begin, begin+extent) range off an Index's Dom
// when both Begin and Extent are IntImm, and returns arith.Unbounded
// otherwise. The parser accepts non-literal loop bounds (e.g. "0..i"), so
// such Doms do reach this checker.
func domRange(idx *ir.Index) arith.ExtRange {
	begin, beginOK := idx.Dom.Begin.(*ir.IntImm)
	extent, extentOK := idx.Dom.Extent.(*ir.IntImm)

	if !beginOK || !extentOK {
		return arith.Unbounded
	}

	return arith.NewExtRange(begin.Value, begin.Value+extent.Value)
}

// evalRangeForward computes expr's value range forward from the known
// ranges of the indices it references, failing with ErrUnboundIndex if one
// is missing from scope. Deliberately not shared with pkg/autodiff's
// equivalent: this pass runs over plain surface kernels that may contain
// Select/Compare/Call nodes nowhere near an index position, so it needs
// its own dispatch even though the affine core overlaps.
func evalRangeForward(expr ir.Expr, ranges map[string]arith.ExtRange) (arith.ExtRange, error) {
	switch n := expr.(type) {
	case *ir.IntImm:
		return arith.NewExtRange(n.Value, n.Value+1), nil
	case *ir.Index:
		r, ok := ranges[n.Name]
		if !ok {
			return arith.ExtRange{}, fmt.Errorf("%w: %s", ErrUnboundIndex, n.Name)
		}

		return r, nil
	case *ir.Unary:
		if n.Op != ir.Neg {
			return arith.Unbounded, nil
		}

		inner, err := evalRangeForward(n.A, ranges)
		if err != nil {
			return arith.ExtRange{}, err
		}

		return inner.Negate(), nil
	case *ir.Binary:
		return evalRangeForwardBinary(n, ranges)
	default:
		// Anything else (Select, Call, Cast, ...) appearing inside an index
		// position cannot be range-evaluated statically; treat as unbounded
		// rather than failing the whole check over it.
		return arith.Unbounded, nil
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
		if lit, ok := asIntLiteral(n.B); ok && lit != 0 {
			return a.FloorDiv(lit)
		}

		return arith.Unbounded, nil
	case ir.FloorMod:
		if lit, ok := asIntLiteral(n.B); ok && lit > 0 {
			return arith.FloorModRange(lit), nil
		}

		return arith.Unbounded, nil
	default:
		return arith.Unbounded, nil
	}
}

func asIntLiteral(e ir.Expr) (int64, bool) {
	if lit, ok := e.(*ir.IntImm); ok {
		return lit.Value, true
	}

	return 0, false
}
