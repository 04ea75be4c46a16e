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
package ir

// ExprMutator is the tree-rebuilding traversal capability: one method per
// Expr node kind, each returning a (possibly identical) replacement. A pass
// which does not expect a given kind should override that method to return
// an UnsupportedNodeError.
type ExprMutator interface {
	MutateIntImm(*IntImm) (Expr, error)
	MutateUIntImm(*UIntImm) (Expr, error)
	MutateFloatImm(*FloatImm) (Expr, error)
	MutateStringImm(*StringImm) (Expr, error)
	MutateUnary(*Unary) (Expr, error)
	MutateBinary(*Binary) (Expr, error)
	MutateCompare(*Compare) (Expr, error)
	MutateSelect(*Select) (Expr, error)
	MutateCall(*Call) (Expr, error)
	MutateCast(*Cast) (Expr, error)
	MutateRamp(*Ramp) (Expr, error)
	MutateVar(*Var) (Expr, error)
	MutateDom(*Dom) (Expr, error)
	MutateIndex(*Index) (Expr, error)
}

// RebuildExpr dispatches e to the matching method of m.
func RebuildExpr(e Expr, m ExprMutator) (Expr, error) {
	switch n := e.(type) {
	case *IntImm:
		return m.MutateIntImm(n)
	case *UIntImm:
		return m.MutateUIntImm(n)
	case *FloatImm:
		return m.MutateFloatImm(n)
	case *StringImm:
		return m.MutateStringImm(n)
	case *Unary:
		return m.MutateUnary(n)
	case *Binary:
		return m.MutateBinary(n)
	case *Compare:
		return m.MutateCompare(n)
	case *Select:
		return m.MutateSelect(n)
	case *Call:
		return m.MutateCall(n)
	case *Cast:
		return m.MutateCast(n)
	case *Ramp:
		return m.MutateRamp(n)
	case *Var:
		return m.MutateVar(n)
	case *Dom:
		return m.MutateDom(n)
	case *Index:
		return m.MutateIndex(n)
	default:
		return nil, NewUnsupportedNodeError(0, "RebuildExpr: unrecognised node")
	}
}

// BaseExprMutator supplies the "default method rebuilds the node with
// mutated children, sharing unchanged subtrees" behaviour required of a
// Mutator. Embed it and set Self as described on BaseExprVisitor.
type BaseExprMutator struct {
	Self ExprMutator
}

func (b *BaseExprMutator) self() ExprMutator {
	if b.Self != nil {
		return b.Self
	}

	return b
}

func (b *BaseExprMutator) MutateIntImm(n *IntImm) (Expr, error)       { return n, nil }
func (b *BaseExprMutator) MutateUIntImm(n *UIntImm) (Expr, error)     { return n, nil }
func (b *BaseExprMutator) MutateFloatImm(n *FloatImm) (Expr, error)   { return n, nil }
func (b *BaseExprMutator) MutateStringImm(n *StringImm) (Expr, error) { return n, nil }

func (b *BaseExprMutator) MutateUnary(n *Unary) (Expr, error) {
	a, err := RebuildExpr(n.A, b.self())
	if err != nil {
		return nil, err
	}

	if a == n.A {
		return n, nil
	}

	return &Unary{Op: n.Op, A: a, Ty: n.Ty}, nil
}

func (b *BaseExprMutator) MutateBinary(n *Binary) (Expr, error) {
	a, err := RebuildExpr(n.A, b.self())
	if err != nil {
		return nil, err
	}

	bb, err := RebuildExpr(n.B, b.self())
	if err != nil {
		return nil, err
	}

	if a == n.A && bb == n.B {
		return n, nil
	}

	return &Binary{Op: n.Op, A: a, B: bb, Ty: n.Ty}, nil
}

func (b *BaseExprMutator) MutateCompare(n *Compare) (Expr, error) {
	a, err := RebuildExpr(n.A, b.self())
	if err != nil {
		return nil, err
	}

	bb, err := RebuildExpr(n.B, b.self())
	if err != nil {
		return nil, err
	}

	if a == n.A && bb == n.B {
		return n, nil
	}

	return &Compare{Op: n.Op, A: a, B: bb}, nil
}

func (b *BaseExprMutator) MutateSelect(n *Select) (Expr, error) {
	cond, err := RebuildExpr(n.Cond, b.self())
	if err != nil {
		return nil, err
	}

	tv, err := RebuildExpr(n.TrueValue, b.self())
	if err != nil {
		return nil, err
	}

	fv, err := RebuildExpr(n.FalseValue, b.self())
	if err != nil {
		return nil, err
	}

	if cond == n.Cond && tv == n.TrueValue && fv == n.FalseValue {
		return n, nil
	}

	return &Select{Cond: cond, TrueValue: tv, FalseValue: fv}, nil
}

func (b *BaseExprMutator) MutateCall(n *Call) (Expr, error) {
	args, changed, err := rebuildExprSlice(n.Args, b.self())
	if err != nil {
		return nil, err
	}

	if !changed {
		return n, nil
	}

	return &Call{FuncName: n.FuncName, Args: args, CallKind: n.CallKind, Ty: n.Ty}, nil
}

func (b *BaseExprMutator) MutateCast(n *Cast) (Expr, error) {
	val, err := RebuildExpr(n.Val, b.self())
	if err != nil {
		return nil, err
	}

	if val == n.Val {
		return n, nil
	}

	return &Cast{NewType: n.NewType, Val: val}, nil
}

func (b *BaseExprMutator) MutateRamp(n *Ramp) (Expr, error) {
	base, err := RebuildExpr(n.Base, b.self())
	if err != nil {
		return nil, err
	}

	if base == n.Base {
		return n, nil
	}

	return &Ramp{Base: base, Stride: n.Stride, Lanes: n.Lanes}, nil
}

func (b *BaseExprMutator) MutateVar(n *Var) (Expr, error) {
	args, changed, err := rebuildExprSlice(n.Args, b.self())
	if err != nil {
		return nil, err
	}

	if !changed {
		return n, nil
	}

	return &Var{Name: n.Name, Args: args, Shape: n.Shape, Ty: n.Ty}, nil
}

func (b *BaseExprMutator) MutateDom(n *Dom) (Expr, error) {
	begin, err := RebuildExpr(n.Begin, b.self())
	if err != nil {
		return nil, err
	}

	extent, err := RebuildExpr(n.Extent, b.self())
	if err != nil {
		return nil, err
	}

	if begin == n.Begin && extent == n.Extent {
		return n, nil
	}

	return &Dom{Begin: begin, Extent: extent}, nil
}

func (b *BaseExprMutator) MutateIndex(n *Index) (Expr, error) {
	dom, err := RebuildExpr(n.Dom, b.self())
	if err != nil {
		return nil, err
	}

	if dom == Expr(n.Dom) {
		return n, nil
	}

	domNode, ok := dom.(*Dom)
	if !ok {
		return nil, &ShapeMismatchError{Context: "Index.Dom must remain a Dom", Want: 1, Got: 0}
	}

	return &Index{Name: n.Name, Dom: domNode, Kind: n.Kind, Ty: n.Ty}, nil
}

func rebuildExprSlice(exprs []Expr, m ExprMutator) ([]Expr, bool, error) {
	var out []Expr

	changed := false

	for i, e := range exprs {
		ne, err := RebuildExpr(e, m)
		if err != nil {
			return nil, false, err
		}

		if ne != e && !changed {
			changed = true

			out = make([]Expr, len(exprs))
			copy(out, exprs[:i])
		}

		if changed {
			out[i] = ne
		}
	}

	if !changed {
		return exprs, false, nil
	}

	return out, true, nil
}
