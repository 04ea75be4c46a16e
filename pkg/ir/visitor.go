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

// ExprVisitor is the read-only traversal capability: one method per Expr
// node kind. A pass which does not expect to encounter a given kind should
// override that method to return an UnsupportedNodeError.
type ExprVisitor interface {
	VisitIntImm(*IntImm) error
	VisitUIntImm(*UIntImm) error
	VisitFloatImm(*FloatImm) error
	VisitStringImm(*StringImm) error
	VisitUnary(*Unary) error
	VisitBinary(*Binary) error
	VisitCompare(*Compare) error
	VisitSelect(*Select) error
	VisitCall(*Call) error
	VisitCast(*Cast) error
	VisitRamp(*Ramp) error
	VisitVar(*Var) error
	VisitDom(*Dom) error
	VisitIndex(*Index) error
}

// WalkExpr dispatches e to the matching method of v.
func WalkExpr(e Expr, v ExprVisitor) error {
	switch n := e.(type) {
	case *IntImm:
		return v.VisitIntImm(n)
	case *UIntImm:
		return v.VisitUIntImm(n)
	case *FloatImm:
		return v.VisitFloatImm(n)
	case *StringImm:
		return v.VisitStringImm(n)
	case *Unary:
		return v.VisitUnary(n)
	case *Binary:
		return v.VisitBinary(n)
	case *Compare:
		return v.VisitCompare(n)
	case *Select:
		return v.VisitSelect(n)
	case *Call:
		return v.VisitCall(n)
	case *Cast:
		return v.VisitCast(n)
	case *Ramp:
		return v.VisitRamp(n)
	case *Var:
		return v.VisitVar(n)
	case *Dom:
		return v.VisitDom(n)
	case *Index:
		return v.VisitIndex(n)
	default:
		return NewUnsupportedNodeError(0, "WalkExpr: unrecognised node")
	}
}

// BaseExprVisitor supplies the "default method recurses into children in
// their natural order" behaviour required of a Visitor. Embed it in a
// concrete visitor and set Self to the outer, fully-overridden value before
// use; recursive descent always goes through Self so overridden methods are
// honoured even when reached via the default implementation of a sibling
// method (Go has no virtual dispatch through embedding, so this is the
// standard workaround: a self-reference threaded explicitly).
type BaseExprVisitor struct {
	Self ExprVisitor
}

func (b *BaseExprVisitor) self() ExprVisitor {
	if b.Self != nil {
		return b.Self
	}

	return b
}

func (b *BaseExprVisitor) VisitIntImm(*IntImm) error       { return nil }
func (b *BaseExprVisitor) VisitUIntImm(*UIntImm) error     { return nil }
func (b *BaseExprVisitor) VisitFloatImm(*FloatImm) error   { return nil }
func (b *BaseExprVisitor) VisitStringImm(*StringImm) error { return nil }

func (b *BaseExprVisitor) VisitUnary(n *Unary) error {
	return WalkExpr(n.A, b.self())
}

func (b *BaseExprVisitor) VisitBinary(n *Binary) error {
	if err := WalkExpr(n.A, b.self()); err != nil {
		return err
	}

	return WalkExpr(n.B, b.self())
}

func (b *BaseExprVisitor) VisitCompare(n *Compare) error {
	if err := WalkExpr(n.A, b.self()); err != nil {
		return err
	}

	return WalkExpr(n.B, b.self())
}

func (b *BaseExprVisitor) VisitSelect(n *Select) error {
	if err := WalkExpr(n.Cond, b.self()); err != nil {
		return err
	}

	if err := WalkExpr(n.TrueValue, b.self()); err != nil {
		return err
	}

	return WalkExpr(n.FalseValue, b.self())
}

func (b *BaseExprVisitor) VisitCall(n *Call) error {
	for _, a := range n.Args {
		if err := WalkExpr(a, b.self()); err != nil {
			return err
		}
	}

	return nil
}

func (b *BaseExprVisitor) VisitCast(n *Cast) error {
	return WalkExpr(n.Val, b.self())
}

func (b *BaseExprVisitor) VisitRamp(n *Ramp) error {
	return WalkExpr(n.Base, b.self())
}

func (b *BaseExprVisitor) VisitVar(n *Var) error {
	for _, a := range n.Args {
		if err := WalkExpr(a, b.self()); err != nil {
			return err
		}
	}

	return nil
}

func (b *BaseExprVisitor) VisitDom(n *Dom) error {
	if err := WalkExpr(n.Begin, b.self()); err != nil {
		return err
	}

	return WalkExpr(n.Extent, b.self())
}

func (b *BaseExprVisitor) VisitIndex(n *Index) error {
	return WalkExpr(n.Dom, b.self())
}
