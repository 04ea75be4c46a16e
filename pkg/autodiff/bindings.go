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

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"

	"github.com/tensorgrad/tensorgrad/pkg/arith"
	"github.com/tensorgrad/tensorgrad/pkg/equality"
	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/matrix"
	"github.com/tensorgrad/tensorgrad/pkg/rangeinfer"
	"github.com/tensorgrad/tensorgrad/pkg/simplify"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// bindingConflictTracker flags when two distinct occurrences of the
// differentiation target (whose solved bindings are merged into one set of
// summed contributions)
// resolve the *same* ctx index to a binding: each index's ctx.IndexNames
// position is a bit, set the first time any occurrence's solve touches it.
// A second hit is not itself an error (two summed terms may legitimately
// both range over the same reduce index), so it is logged rather than
// propagated.
type bindingConflictTracker struct {
	ctx  *SubstituteContext
	seen *bitset.BitSet
}

func newBindingConflictTracker(ctx *SubstituteContext) *bindingConflictTracker {
	return &bindingConflictTracker{ctx: ctx, seen: bitset.New(uint(len(ctx.IndexNames)))}
}

// markBound records that name was just bound by solving one occurrence's
// substitution system, logging a debug-level note each time a later
// occurrence reuses an index that is already marked.
func (t *bindingConflictTracker) markBound(name string) {
	pos := -1

	for i, n := range t.ctx.IndexNames {
		if n == name {
			pos = i
			break
		}
	}

	if pos < 0 {
		return
	}

	u := uint(pos)
	if t.seen.Test(u) {
		logrus.WithField("index", name).Debug("autodiff: index bound by more than one occurrence's substitution")
		return
	}

	t.seen.Set(u)
}

// LinearEquation is one row of the integer-linear system solveMultiBindings
// inverts: Coeffs holds the coefficient of every entry of Unknowns (in
// order), and RHS is the affine expression, built from already-known
// indices, that the combination must equal.
type LinearEquation struct {
	Coeffs []int64
	RHS    ir.Expr
}

// Binding is the result of solving one index-binding system: Substitutions
// maps each unknown's name to the expression it resolves to (in terms of
// known indices and any newly introduced free parameters), and Conditions
// holds the extra range-check / divisibility-check expressions the
// resolution was only valid under (conjoined via arith.Conjoin by the
// caller).
type Binding struct {
	Substitutions map[string]ir.Expr
	Conditions    []ir.Expr
}

// solveMultiBindings inverts the system "Coeffs . unknowns == RHS" for
// every row, using Smith Normal Form to diagonalize the coefficient matrix
// (pkg/matrix), then propagating the (possibly non-unit) diagonal entries
// into either an exact quotient (divisor 1) or a floor-div quotient plus a
// floor-mod-zero side condition (divisor > 1): the general integer
// parametrization of an underdetermined or rank-deficient linear system.
func solveMultiBindings(ctx *SubstituteContext, unknowns []string, rows []LinearEquation, gen *NameGenerator) (*Binding, error) {
	if len(rows) == 0 {
		return &Binding{Substitutions: map[string]ir.Expr{}}, nil
	}

	m := len(rows)
	n := len(unknowns)

	a := matrix.New(m, n)
	for i, row := range rows {
		if len(row.Coeffs) != n {
			return nil, fmt.Errorf("%w: row %d has %d coefficients, want %d", ErrUnsolvableBinding, i, len(row.Coeffs), n)
		}

		for j, c := range row.Coeffs {
			a.Set(i, j, c)
		}
	}

	d, u, v, dim := matrix.SmithNormalize(a)

	// y = U * b, the RHS vector transformed into the diagonalized basis.
	y := make([]ir.Expr, m)
	for i := 0; i < m; i++ {
		terms := make([]ir.Expr, m)
		coeffs := make([]int64, m)

		for j := 0; j < m; j++ {
			coeffs[j] = u.Get(i, j)
			terms[j] = rows[j].RHS
		}

		y[i] = linearCombo(coeffs, terms)
	}

	z := make([]ir.Expr, n)

	var conditions []ir.Expr

	for i := 0; i < dim; i++ {
		diag := d.Get(i, i)

		switch diag {
		case 1:
			z[i] = y[i]
		case -1:
			z[i] = arith.Neg(y[i])
		default:
			// Solving diag*w == y[i] for a non-unit diagonal entry: the
			// quotient is exact only when diag divides y[i], which becomes a
			// runtime agreement condition. A negative entry folds its sign
			// into the numerator.
			numerator := y[i]
			if diag < 0 {
				numerator = arith.Neg(y[i])
				diag = -diag
			}

			divisorLit := ir.NewIntImm(diag, types.Int64)
			z[i] = ir.NewBinary(ir.FloorDiv, numerator, divisorLit)

			remainder := ir.NewBinary(ir.FloorMod, numerator, divisorLit)
			conditions = append(conditions, ir.NewCompare(ir.EQ, remainder, ir.NewIntImm(0, types.Int64)))
		}
	}

	// Rows beyond the rank of the system impose pure agreement conditions:
	// their transformed RHS must vanish identically.
	for i := dim; i < m; i++ {
		conditions = append(conditions, ir.NewCompare(ir.EQ, y[i], ir.NewIntImm(0, types.Int64)))
	}

	// Columns beyond the rank are genuinely free: the system does not
	// constrain them, so each becomes a fresh reduce index. Its eventual
	// Dom is resolved below, once the unknowns' own known ranges have been
	// back-propagated onto it; until then it carries
	// a placeholder empty domain that must never survive to the caller.
	freeIdxs := make([]*ir.Index, 0, n-dim)

	for j := dim; j < n; j++ {
		name := gen.Fresh("f")
		freeIdx := ir.NewIndex(name, ir.NewDom(ir.NewIntImm(0, types.Int64), ir.NewIntImm(0, types.Int64)), ir.Reduce)
		z[j] = freeIdx
		freeIdxs = append(freeIdxs, freeIdx)
	}

	subs := make(map[string]ir.Expr, n)

	for k, name := range unknowns {
		terms := make([]ir.Expr, n)
		coeffs := make([]int64, n)

		for j := 0; j < n; j++ {
			coeffs[j] = v.Get(k, j)
			terms[j] = z[j]
		}

		expr := linearCombo(coeffs, terms)

		simplified, err := simplify.Simplify(expr)
		if err != nil {
			return nil, err
		}

		subs[name] = simplified
	}

	if len(freeIdxs) > 0 {
		if err := resolveFreeRanges(ctx, subs, freeIdxs); err != nil {
			return nil, err
		}
	}

	conditions = append(conditions, boundConditions(ctx, unknowns, subs)...)

	simplifiedConditions := make([]ir.Expr, 0, len(conditions))

	for _, c := range conditions {
		sc, err := simplify.Simplify(c)
		if err != nil {
			return nil, err
		}

		simplifiedConditions = append(simplifiedConditions, sc)
	}

	return &Binding{Substitutions: subs, Conditions: simplifiedConditions}, nil
}

// resolveFreeRanges gives every freshly introduced free index a concrete,
// zero-based range: each unknown's substitution expression, together with
// that unknown's already-known range, is an interval constraint on any free
// index occurring in it, and the loop bound is the intersection of every
// such constraint (the values outside any one of them contribute nothing;
// boundConditions guards the remainder). Affine expressions are inverted
// through their extracted coefficients; anything non-affine falls back to
// rangeinfer's literal-pattern rules, and occurrences neither can handle
// are skipped. subs' expressions are rewritten in place (by pointer
// identity) to shift each free index onto a zero-based domain when the
// resolved range does not already begin at zero. An index for which no
// bounded range can be resolved from any of its occurrences is a hard
// error: a reduce loop without a known trip count cannot be emitted.
func resolveFreeRanges(ctx *SubstituteContext, subs map[string]ir.Expr, freeIdxs []*ir.Index) error {
	free := make(map[string]*ir.Index, len(freeIdxs))
	for _, idx := range freeIdxs {
		free[idx.Name] = idx
	}

	inferred := map[string]arith.ExtRange{}

	narrow := func(name string, r arith.ExtRange) {
		if existing, ok := inferred[name]; ok {
			inferred[name] = existing.Intersect(r)
		} else {
			inferred[name] = r
		}
	}

	for name, expr := range subs {
		target, ok := ctx.RangeMap[name]
		if !ok || !target.IsBounded() {
			continue
		}

		coeffs, err := ExtractIndexCoefficients(expr)
		if err != nil {
			// Non-affine (e.g. a floor-div from a non-unit diagonal): try
			// the literal-pattern back-propagation rules instead.
			if found, ferr := rangeinfer.Infer(expr, target); ferr == nil {
				for n, r := range found {
					if _, isFree := free[n]; isFree {
						narrow(n, r)
					}
				}
			}

			continue
		}

		occRanges := occurrenceRanges(ctx, expr)

		for fname := range free {
			cf := coeffs.Terms[fname]
			if cf == 0 {
				continue
			}

			// target = cf*f + rest  =>  f = (target - rest) / cf.
			rest := target.Shift(-coeffs.Constant)
			solvable := true

			for oname, c := range coeffs.Terms {
				if oname == fname || c == 0 {
					continue
				}

				or, ok := occRanges[oname]
				if !ok || !or.IsBounded() {
					solvable = false
					break
				}

				rest = rest.Minus(or.Scale(c))
			}

			if !solvable {
				continue
			}

			fr, err := rest.FloorDiv(cf)
			if err != nil {
				continue
			}

			narrow(fname, fr)
		}
	}

	for _, idx := range freeIdxs {
		r, ok := inferred[idx.Name]
		if !ok || !r.IsBounded() || r.Right <= r.Left {
			return fmt.Errorf("%w: %s", ErrIndeterminateRange, idx.Name)
		}

		if r.Left != 0 {
			shifted := arith.Add(ir.Expr(idx), ir.NewIntImm(r.Left, types.Int64))

			for name, expr := range subs {
				rewritten, err := equality.SubstituteByIdentity(expr, idx, shifted)
				if err != nil {
					return err
				}

				subs[name] = rewritten
			}
		}

		idx.Dom = ir.NewDom(ir.NewIntImm(0, types.Int64), ir.NewIntImm(r.Right-r.Left, types.Int64))

		ctx.AddIndex(idx, arith.NewExtRange(0, r.Right-r.Left))
	}

	return nil
}

// occurrenceRanges maps the name of every Index occurring in expr to its
// known range, from ctx when the context tracks it and from the Index's own
// literal Dom otherwise (gradient axes are built with literal Doms but are
// deliberately never entered into the forward context).
func occurrenceRanges(ctx *SubstituteContext, expr ir.Expr) map[string]arith.ExtRange {
	out := map[string]arith.ExtRange{}

	for _, idx := range collectIndices(expr) {
		if r, ok := ctx.RangeMap[idx.Name]; ok {
			out[idx.Name] = r
			continue
		}

		out[idx.Name] = domRange(idx)
	}

	return out
}

// boundConditions emits "L <= expr && expr < R" for every substitution
// whose expression is not simply a loop index already confined to the
// unknown's own range [L, R): the solved binding is only meaningful where
// it lands inside the forward domain it replaces.
func boundConditions(ctx *SubstituteContext, unknowns []string, subs map[string]ir.Expr) []ir.Expr {
	var out []ir.Expr

	for _, name := range unknowns {
		expr, ok := subs[name]
		if !ok {
			continue
		}

		target, ok := ctx.RangeMap[name]
		if !ok || !target.IsBounded() {
			continue
		}

		if idx, isIdx := expr.(*ir.Index); isIdx {
			r, known := ctx.RangeMap[idx.Name]
			if !known {
				r = domRange(idx)
			}

			if r.IsBounded() && r.Left >= target.Left && r.Right <= target.Right {
				continue
			}
		}

		out = append(out,
			arith.Ge(expr, ir.NewIntImm(target.Left, types.Int64)),
			arith.Lt(expr, ir.NewIntImm(target.Right, types.Int64)))
	}

	return out
}

// solveSubstitutions is the convenience entry point used by GradStmt's
// tensor-access rule: axisExprs[i] is the forward index
// expression a tensor access supplies for its i'th declared axis (affine in
// unknowns), and targets[i] is the already-bound loop index the adjoint
// walk is iterating that axis with. It builds one equation per axis,
// "axisExprs[i] == targets[i]", and solves the resulting system via
// solveMultiBindings.
func solveSubstitutions(ctx *SubstituteContext, axisExprs []ir.Expr, targets []*ir.Index, unknowns []string, gen *NameGenerator) (*Binding, error) {
	if len(axisExprs) != len(targets) {
		return nil, fmt.Errorf("%w: %d axis expressions but %d targets", ErrUnsolvableBinding, len(axisExprs), len(targets))
	}

	rows := make([]LinearEquation, len(axisExprs))

	for i, expr := range axisExprs {
		coeffs, err := ExtractIndexCoefficients(expr)
		if err != nil {
			return nil, err
		}

		row := make([]int64, len(unknowns))

		for j, name := range unknowns {
			row[j] = coeffs.Terms[name]
		}

		// axisExprs[i] == targets[i]  =>  (coeffs . unknowns) == targets[i] - constant
		rhs := ir.Expr(targets[i])
		if coeffs.Constant != 0 {
			rhs = ir.NewBinary(ir.Sub, rhs, ir.NewIntImm(coeffs.Constant, types.Int64))
		}

		rows[i] = LinearEquation{Coeffs: row, RHS: rhs}
	}

	return solveMultiBindings(ctx, unknowns, rows, gen)
}

func linearCombo(coeffs []int64, terms []ir.Expr) ir.Expr {
	var acc ir.Expr

	for j, c := range coeffs {
		if c == 0 {
			continue
		}

		var term ir.Expr

		switch c {
		case 1:
			term = terms[j]
		case -1:
			term = arith.Neg(terms[j])
		default:
			term = arith.Mul(ir.NewIntImm(c, types.Int64), terms[j])
		}

		if acc == nil {
			acc = term
		} else {
			acc = arith.Add(acc, term)
		}
	}

	if acc == nil {
		return ir.NewIntImm(0, types.Int64)
	}

	return acc
}
