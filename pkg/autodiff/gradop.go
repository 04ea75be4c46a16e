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

	"github.com/sirupsen/logrus"

	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/equality"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// pathContribution is one occurrence of the differentiation target
// encountered while walking the forward expression: Value is the upstream
// adjoint scaled by every local derivative factor collected on the path
// down to this occurrence, and AxisExprs is the access pattern the target
// was read with at that occurrence.
type pathContribution struct {
	Occurrence int
	Value      ir.Expr
	AxisExprs  []ir.Expr
}

type gradState struct {
	target        *ir.Var
	occurrence    int
	contributions []pathContribution
}

// gradExpr walks a value-level expression tree computing the reverse-mode
// adjoint of every occurrence of target: Add/Sub pass the incoming adjoint
// through unchanged (negated on the right for Sub), Mul applies the product
// rule by scaling the adjoint with the other operand, Div applies the
// quotient rule, and
// FloorDiv/FloorMod contribute no gradient (locally constant almost
// everywhere) but are logged since silently dropping a real dependency
// would otherwise be invisible. Any other node kind reached while target
// still occurs beneath it (Select, Compare, Call, Cast, Ramp, Dom, Index,
// literals, And/Or) is not a node this pass knows how to differentiate
// through, and is fatal.
func gradExpr(expr ir.Expr, doutput ir.Expr, s *gradState) error {
	switch n := expr.(type) {
	case *ir.Var:
		if n.Name == s.target.Name {
			ordinal := s.occurrence
			s.occurrence++
			s.contributions = append(s.contributions, pathContribution{
				Occurrence: ordinal,
				Value:      doutput,
				AxisExprs:  n.Args,
			})
		}

		return nil
	case *ir.Unary:
		if n.Op == ir.Neg {
			return gradExpr(n.A, arith.Neg(doutput), s)
		}

		return failIfOccurs(s.target, n.A)
	case *ir.Binary:
		return gradBinary(n, doutput, s)
	default:
		return failIfOccurs(s.target, expr)
	}
}

func gradBinary(n *ir.Binary, doutput ir.Expr, s *gradState) error {
	switch n.Op {
	case ir.Add:
		if err := gradExpr(n.A, doutput, s); err != nil {
			return err
		}

		return gradExpr(n.B, doutput, s)
	case ir.Sub:
		if err := gradExpr(n.A, doutput, s); err != nil {
			return err
		}

		return gradExpr(n.B, arith.Neg(doutput), s)
	case ir.Mul:
		if err := gradExpr(n.A, arith.Mul(doutput, n.B), s); err != nil {
			return err
		}

		return gradExpr(n.B, arith.Mul(doutput, n.A), s)
	case ir.Div:
		if err := gradExpr(n.A, arith.Div(doutput, n.B), s); err != nil {
			return err
		}

		if !containsVar(n.B, s.target) {
			return nil
		}

		factor := arith.Neg(arith.Div(arith.Mul(doutput, n.A), arith.Mul(n.B, n.B)))

		return gradExpr(n.B, factor, s)
	case ir.FloorDiv, ir.FloorMod:
		if containsVar(n.A, s.target) || containsVar(n.B, s.target) {
			logrus.WithField("op", n.Op.String()).
				Warn("autodiff: differentiating through floor-div/floor-mod, treating as zero gradient")
		}

		return nil
	default:
		return failIfOccurs(s.target, n.A, n.B)
	}
}

func failIfOccurs(target *ir.Var, exprs ...ir.Expr) error {
	for _, e := range exprs {
		if containsVar(e, target) {
			return fmt.Errorf("%w: %s", ErrUndifferentiable, e.ExprKind())
		}
	}

	return nil
}

// varFinder is an ExprVisitor that records whether any access to a named
// tensor occurs anywhere within the walked tree. Matching is by name, not
// pointer identity: distinct occurrences of the same tensor legitimately
// carry distinct Args (e.g. A[i,j]*A[j,i]), so they are necessarily
// distinct *ir.Var allocations even though they denote the same tensor.
type varFinder struct {
	ir.BaseExprVisitor

	target *ir.Var
	found  bool
}

func (f *varFinder) VisitVar(n *ir.Var) error {
	if n.Name == f.target.Name {
		f.found = true
	}

	return f.BaseExprVisitor.VisitVar(n)
}

func containsVar(expr ir.Expr, target *ir.Var) bool {
	f := &varFinder{target: target}
	f.Self = f
	_ = ir.WalkExpr(expr, f)

	return f.found
}

// indexCollector is an ExprVisitor that records every distinct *ir.Index
// pointer reached during the walk, in first-encounter order.
type indexCollector struct {
	ir.BaseExprVisitor

	seen    map[*ir.Index]bool
	indices []*ir.Index
}

func (c *indexCollector) VisitIndex(n *ir.Index) error {
	if c.seen == nil {
		c.seen = map[*ir.Index]bool{}
	}

	if !c.seen[n] {
		c.seen[n] = true
		c.indices = append(c.indices, n)
	}

	return c.BaseExprVisitor.VisitIndex(n)
}

func collectIndices(expr ir.Expr) []*ir.Index {
	c := &indexCollector{}
	c.Self = c
	_ = ir.WalkExpr(expr, c)

	return c.indices
}

// domRange reads a literal [0, extent) or [begin, begin+extent) range off
// an Index's Dom when both Begin and Extent are IntImm, falling back to
// arith.Unbounded otherwise (a loop bound computed from something other
// than a literal is outside what range inference can track statically).
func domRange(idx *ir.Index) arith.ExtRange {
	begin, beginOK := idx.Dom.Begin.(*ir.IntImm)
	extent, extentOK := idx.Dom.Extent.(*ir.IntImm)

	if !beginOK || !extentOK {
		return arith.Unbounded
	}

	return arith.NewExtRange(begin.Value, begin.Value+extent.Value)
}

// GradStmt rewrites a single forward assignment (a Move whose Src is the
// expression being differentiated, indexed by allArgs) into a Move that
// accumulates the reverse-mode adjoint of gradTo, reading the upstream
// adjoint through dOutput.
//
// allArgs are the Move's own surrounding loop indices (renamed to globally
// unique names before anything else runs). callArgsIndex
// selects a single occurrence of gradTo to differentiate when gradTo is
// read more than once with distinct access patterns (e.g. A[i,j]*A[j,i]);
// pass -1 to sum the contribution of every occurrence, the common case.
func GradStmt(body *ir.Move, allArgs []*ir.Index, callArgsIndex int, gradTo *ir.Var, dOutput *ir.Var) (ir.Stmt, error) {
	seen := map[*ir.Index]bool{}
	for _, idx := range allArgs {
		if seen[idx] {
			return nil, ErrRepeatedAxisName
		}

		seen[idx] = true
	}

	ctx := NewSubstituteContext()
	gen := NewNameGenerator()

	// dOutput is read with the same shape as the forward output, i.e. only
	// the dst's own spatial axes, never the reduce axes that also appear
	// in allArgs. Record, before renaming, which position within allArgs
	// each of the dst's own access arguments occupies, so doutputAccess
	// below can be built over that subset instead of the full index list.
	dstAxisPositions := make([]int, len(body.Dst.Args))

	for ai, argExpr := range body.Dst.Args {
		idx, ok := argExpr.(*ir.Index)
		if !ok {
			return nil, fmt.Errorf("%w: dst axis %d of %s is not a bare Index", ErrUndifferentiable, ai, body.Dst.Name)
		}

		pos := -1

		for j, a := range allArgs {
			if a == idx {
				pos = j
				break
			}
		}

		if pos < 0 {
			return nil, fmt.Errorf("%w: dst axis %q of %s not found among allArgs", ErrUndifferentiable, idx.Name, body.Dst.Name)
		}

		dstAxisPositions[ai] = pos
	}

	renamed := make([]*ir.Index, len(allArgs))
	src := body.Src

	for i, idx := range allArgs {
		r := domRange(idx)
		newName := gen.Fresh(idx.Name)

		newIdx := idx
		if newName != idx.Name {
			newIdx = ir.NewIndex(newName, idx.Dom, idx.Kind)

			rewritten, err := equality.SubstituteByIdentity(src, idx, newIdx)
			if err != nil {
				return nil, err
			}

			src = rewritten
		}

		ctx.AddIndex(newIdx, r)
		renamed[i] = newIdx
	}

	ctx.MarkBoundBegin()

	srcAffine, entries, err := EliminateIndexFloorDivAndMod(src, ctx, gen)
	if err != nil {
		return nil, err
	}

	// A synthetic pair bound to `v // c` and
	// `v mod c` jointly imply the identity v == quotient*c + remainder.
	// Every other occurrence of the original index v, in particular
	// dOutput's own access pattern (which is never itself floor-div/mod'd),
	// must be rewritten through that identity before solveSubstitutions
	// runs, or the binding solved for the quotient never reaches v's other
	// uses. Restricted here to the case where the dividend is a bare
	// original Index; a
	// compound dividend has no single name to rewrite through and is left
	// to the Unknown-Index free-variable fallback in solveMultiBindings.
	identities := identitySubsFromFloorDivMod(entries)

	// doutputAccess is dOutput read at the dst's own (renamed) spatial
	// axes only, never the reduce axes.
	renamedArgs := make([]ir.Expr, len(dstAxisPositions))
	for i, pos := range dstAxisPositions {
		idx := renamed[pos]

		var e ir.Expr = idx
		if repl, ok := identities[idx.Name]; ok {
			e = repl
		}

		renamedArgs[i] = e
	}

	doutputAccess, err := ir.NewVar(dOutput.Name, renamedArgs, dOutput.Shape, dOutput.Ty)
	if err != nil {
		return nil, err
	}

	s := &gradState{target: gradTo}
	if err := gradExpr(srcAffine, doutputAccess, s); err != nil {
		return nil, err
	}

	if len(s.contributions) == 0 {
		return nil, fmt.Errorf("%w: %s does not occur in the forward expression", ErrUndifferentiable, gradTo.Name)
	}

	gradAxes := make([]*ir.Index, len(gradTo.Shape))
	gradAxisExprs := make([]ir.Expr, len(gradTo.Shape))

	for i, extent := range gradTo.Shape {
		name := gen.Fresh("g")
		axis := ir.NewIndex(name, ir.NewDom(ir.NewIntImm(0, types.Int64), ir.NewIntImm(int64(extent), types.Int64)), ir.Spatial)
		gradAxes[i] = axis
		gradAxisExprs[i] = axis
	}

	var terms []ir.Expr

	// Loop variables in first-encounter order: the gradient's own spatial
	// axes first, then whatever reduce axes the solved terms reference.
	loopIndexSet := map[*ir.Index]bool{}
	loopVars := make([]*ir.Index, 0, len(gradAxes))

	for _, axis := range gradAxes {
		loopIndexSet[axis] = true
		loopVars = append(loopVars, axis)
	}

	conflicts := newBindingConflictTracker(ctx)

	for _, contribution := range s.contributions {
		if callArgsIndex >= 0 && contribution.Occurrence != callArgsIndex {
			continue
		}

		if len(contribution.AxisExprs) != len(gradAxes) {
			return nil, fmt.Errorf("%w: %s accessed with %d axes, declared with %d",
				ErrUndifferentiable, gradTo.Name, len(contribution.AxisExprs), len(gradAxes))
		}

		unknowns := unknownNamesIn(contribution.AxisExprs, ctx)

		binding, err := solveSubstitutions(ctx, contribution.AxisExprs, gradAxes, unknowns, gen)
		if err != nil {
			return nil, err
		}

		for name := range binding.Substitutions {
			conflicts.markBound(name)
		}

		value, err := equality.SubstituteMap(contribution.Value, binding.Substitutions)
		if err != nil {
			return nil, err
		}

		if len(binding.Conditions) > 0 {
			cond := arith.Conjoin(binding.Conditions)
			value = arith.Mul(value, boolToNumeric(cond))
		}

		for _, idx := range collectIndices(value) {
			if !loopIndexSet[idx] {
				loopIndexSet[idx] = true
				loopVars = append(loopVars, idx)
			}
		}

		terms = append(terms, value)
	}

	var total ir.Expr = ir.NewIntImm(0, dOutput.Ty)
	for _, t := range terms {
		total = arith.Add(total, t)
	}

	// Every surviving non-gradient axis accumulates into the adjoint;
	// reclassify the ones the forward statement had as Spatial (or the
	// floor-div/mod elimination left Unknown) as Reduce.
	for i := len(gradAxes); i < len(loopVars); i++ {
		idx := loopVars[i]
		if idx.Kind == ir.Reduce {
			continue
		}

		reduce := ir.NewIndex(idx.Name, idx.Dom, ir.Reduce)

		rewritten, err := equality.SubstituteByIdentity(total, idx, reduce)
		if err != nil {
			return nil, err
		}

		total = rewritten
		loopVars[i] = reduce
	}

	dst, err := ir.NewVar("d"+gradTo.Name, gradAxisExprs, gradTo.Shape, gradTo.Ty)
	if err != nil {
		return nil, err
	}

	move := ir.NewMove(dst, total, ir.MemToMem)

	return ir.NewLoopNest(loopVars, []ir.Stmt{move}), nil
}

// identitySubsFromFloorDivMod builds the v -> quotient*divisor + remainder
// replacement for every FloorDivModEntry whose dividend is a bare Index.
func identitySubsFromFloorDivMod(entries []*FloorDivModEntry) map[string]ir.Expr {
	out := map[string]ir.Expr{}

	for _, e := range entries {
		dividend, ok := e.Dividend.(*ir.Index)
		if !ok {
			continue
		}

		divisor := ir.NewIntImm(e.Divisor, types.Int64)
		out[dividend.Name] = arith.Add(arith.Mul(divisor, ir.Expr(e.Quotient)), ir.Expr(e.Remainder))
	}

	return out
}

// unknownNamesIn returns the names, known to ctx, of every Index appearing
// within exprs: these are the forward loop indices that solveSubstitutions
// must resolve in terms of gradTo's own axes.
func unknownNamesIn(exprs []ir.Expr, ctx *SubstituteContext) []string {
	seen := map[string]bool{}

	var names []string

	for _, e := range exprs {
		for _, idx := range collectIndices(e) {
			if _, known := ctx.IndexMap[idx.Name]; !known {
				continue
			}

			if seen[idx.Name] {
				continue
			}

			seen[idx.Name] = true

			names = append(names, idx.Name)
		}
	}

	return names
}

// boolToNumeric casts a Bool1-typed condition expression into dOutput's
// numeric domain so it can be used as a multiplicative mask.
func boolToNumeric(cond ir.Expr) ir.Expr {
	return ir.NewCast(types.Int64, cond)
}
