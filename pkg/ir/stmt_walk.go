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

// StmtVisitor is the read-only traversal capability over the Stmt sort.
type StmtVisitor interface {
	VisitLoopNest(*LoopNest) error
	VisitIfThenElse(*IfThenElse) error
	VisitMove(*Move) error
}

// WalkStmt dispatches s to the matching method of v.
func WalkStmt(s Stmt, v StmtVisitor) error {
	switch n := s.(type) {
	case *LoopNest:
		return v.VisitLoopNest(n)
	case *IfThenElse:
		return v.VisitIfThenElse(n)
	case *Move:
		return v.VisitMove(n)
	default:
		return NewUnsupportedNodeError(0, "WalkStmt: unrecognised node")
	}
}

// BaseStmtVisitor supplies default recursive descent over Stmt nodes; its
// Exprs field is consulted to additionally walk any Expr subexpressions a
// concrete visitor also cares about (nil means "don't descend into Exprs").
type BaseStmtVisitor struct {
	Self  StmtVisitor
	Exprs ExprVisitor
}

func (b *BaseStmtVisitor) self() StmtVisitor {
	if b.Self != nil {
		return b.Self
	}

	return b
}

func (b *BaseStmtVisitor) VisitLoopNest(n *LoopNest) error {
	for _, stmt := range n.Body {
		if err := WalkStmt(stmt, b.self()); err != nil {
			return err
		}
	}

	return nil
}

func (b *BaseStmtVisitor) VisitIfThenElse(n *IfThenElse) error {
	if b.Exprs != nil {
		if err := WalkExpr(n.Cond, b.Exprs); err != nil {
			return err
		}
	}

	if err := WalkStmt(n.TrueCase, b.self()); err != nil {
		return err
	}

	if n.FalseCase != nil {
		return WalkStmt(n.FalseCase, b.self())
	}

	return nil
}

func (b *BaseStmtVisitor) VisitMove(n *Move) error {
	if b.Exprs == nil {
		return nil
	}

	if err := WalkExpr(n.Dst, b.Exprs); err != nil {
		return err
	}

	return WalkExpr(n.Src, b.Exprs)
}
