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
package ir

import (
	"fmt"

	"github.com/tensorgrad/tensorgrad/pkg/sexp"
)

// LispOfKernel converts kernel to its S-expression form via per-node-kind
// dispatch (lispOfExpr/lispOfStmt below).
func LispOfKernel(k *Kernel) sexp.SExp {
	arr := []sexp.SExp{
		sexp.NewSymbol("kernel"),
		sexp.NewSymbol(k.Name),
		lispOfVarList("inputs", k.Inputs),
		lispOfVarList("outputs", k.Outputs),
		lispOfStmts(k.Body),
	}

	return sexp.NewList(arr)
}

func lispOfVarList(label string, vars []*Var) sexp.SExp {
	arr := make([]sexp.SExp, 1+len(vars))
	arr[0] = sexp.NewSymbol(label)

	for i, v := range vars {
		arr[i+1] = sexp.NewSymbol(fmt.Sprintf("%s:%s%v", v.Name, v.Ty.String(), v.Shape))
	}

	return sexp.NewList(arr)
}

func lispOfStmts(stmts []Stmt) sexp.SExp {
	arr := make([]sexp.SExp, 1+len(stmts))
	arr[0] = sexp.NewSymbol("block")

	for i, s := range stmts {
		arr[i+1] = LispOfStmt(s)
	}

	return sexp.NewList(arr)
}

// LispOfStmt converts a single statement to its S-expression form.
func LispOfStmt(stmt Stmt) sexp.SExp {
	switch n := stmt.(type) {
	case *LoopNest:
		return lispOfLoopNest(n)
	case *IfThenElse:
		return lispOfIfThenElse(n)
	case *Move:
		return lispOfMove(n)
	default:
		return sexp.NewSymbol(fmt.Sprintf("<unsupported stmt %s>", stmt.StmtKind()))
	}
}

func lispOfLoopNest(n *LoopNest) sexp.SExp {
	idxArr := make([]sexp.SExp, 1+len(n.Indices))
	idxArr[0] = sexp.NewSymbol("indices")

	for i, idx := range n.Indices {
		idxArr[i+1] = lispOfIndexDecl(idx)
	}

	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("for"),
		sexp.NewList(idxArr),
		lispOfStmts(n.Body),
	})
}

func lispOfIndexDecl(idx *Index) sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol(idx.Name),
		sexp.NewSymbol(idx.Kind.String()),
		LispOfExpr(idx.Dom.Begin),
		LispOfExpr(idx.Dom.Extent),
	})
}

func lispOfIfThenElse(n *IfThenElse) sexp.SExp {
	arr := []sexp.SExp{
		sexp.NewSymbol("if"),
		LispOfExpr(n.Cond),
		LispOfStmt(n.TrueCase),
	}

	if n.FalseCase != nil {
		arr = append(arr, LispOfStmt(n.FalseCase))
	}

	return sexp.NewList(arr)
}

func lispOfMove(n *Move) sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("move"),
		LispOfExpr(n.Dst),
		LispOfExpr(n.Src),
	})
}

// LispOfExpr converts a single expression to its S-expression form.
func LispOfExpr(e Expr) sexp.SExp {
	switch n := e.(type) {
	case *IntImm:
		return sexp.NewSymbol(fmt.Sprintf("%d", n.Value))
	case *UIntImm:
		return sexp.NewSymbol(fmt.Sprintf("%d", n.Value))
	case *FloatImm:
		return sexp.NewSymbol(fmt.Sprintf("%g", n.Value))
	case *StringImm:
		return sexp.NewSymbol(fmt.Sprintf("%q", n.Value))
	case *Unary:
		return sexp.NewList([]sexp.SExp{sexp.NewSymbol(n.Op.String()), LispOfExpr(n.A)})
	case *Binary:
		return sexp.NewList([]sexp.SExp{sexp.NewSymbol(n.Op.String()), LispOfExpr(n.A), LispOfExpr(n.B)})
	case *Compare:
		return sexp.NewList([]sexp.SExp{sexp.NewSymbol(n.Op.String()), LispOfExpr(n.A), LispOfExpr(n.B)})
	case *Select:
		return sexp.NewList([]sexp.SExp{
			sexp.NewSymbol("select"), LispOfExpr(n.Cond), LispOfExpr(n.TrueValue), LispOfExpr(n.FalseValue),
		})
	case *Call:
		arr := make([]sexp.SExp, 2+len(n.Args))
		arr[0] = sexp.NewSymbol("call")
		arr[1] = sexp.NewSymbol(n.FuncName)

		for i, a := range n.Args {
			arr[i+2] = LispOfExpr(a)
		}

		return sexp.NewList(arr)
	case *Cast:
		return sexp.NewList([]sexp.SExp{sexp.NewSymbol(":" + n.NewType.String()), LispOfExpr(n.Val)})
	case *Ramp:
		return sexp.NewList([]sexp.SExp{
			sexp.NewSymbol("ramp"), LispOfExpr(n.Base),
			sexp.NewSymbol(fmt.Sprintf("%d", n.Stride)), sexp.NewSymbol(fmt.Sprintf("%d", n.Lanes)),
		})
	case *Var:
		if len(n.Args) == 0 {
			return sexp.NewSymbol(n.Name)
		}

		arr := make([]sexp.SExp, 1+len(n.Args))
		arr[0] = sexp.NewSymbol(n.Name)

		for i, a := range n.Args {
			arr[i+1] = LispOfExpr(a)
		}

		return sexp.NewList(arr)
	case *Index:
		return sexp.NewSymbol(n.Name)
	case *Dom:
		return sexp.NewList([]sexp.SExp{sexp.NewSymbol("dom"), LispOfExpr(n.Begin), LispOfExpr(n.Extent)})
	default:
		return sexp.NewSymbol(fmt.Sprintf("<unsupported expr %s>", e.ExprKind()))
	}
}
