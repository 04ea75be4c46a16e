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

// GradKernel is the module-level entry point the CLI's "grad" subcommand
// drives: it locates the single statement within kernel that assigns
// output, differentiates it with respect to wrt via GradStmt, and wraps the
// result into a standalone gradient Kernel whose inputs are kernel's own
// inputs plus the upstream adjoint "d"+output, and whose sole output is the
// adjoint of wrt. It is the Kernel-level driver GradStmt's own
// body/allArgs/callArgsIndex contract needs
// whenever the caller only has a whole compiled kernel and two tensor
// names, which is exactly the CLI's situation.
func GradKernel(kernel *ir.Kernel, wrt, output string) (*ir.Kernel, error) {
	move, allArgs, ok := findDefiningMove(kernel.Body, output, nil)
	if !ok {
		return nil, fmt.Errorf("%w: no statement assigns %q", ErrUndifferentiable, output)
	}

	gradTo, ok := findDeclaredVar(kernel, wrt)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a declared input or output", ErrUndifferentiable, wrt)
	}

	outVar, ok := findDeclaredVar(kernel, output)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a declared input or output", ErrUndifferentiable, output)
	}

	dOutput := &ir.Var{Name: "d" + output, Shape: outVar.Shape, Ty: outVar.Ty}

	result, err := GradStmt(move, allArgs, -1, gradTo, dOutput)
	if err != nil {
		return nil, err
	}

	loopNest, ok := result.(*ir.LoopNest)
	if !ok || len(loopNest.Body) != 1 {
		return nil, fmt.Errorf("%w: GradStmt returned an unexpected shape", ErrUndifferentiable)
	}

	dst, ok := loopNest.Body[0].(*ir.Move)
	if !ok {
		return nil, fmt.Errorf("%w: GradStmt returned an unexpected shape", ErrUndifferentiable)
	}

	inputs := make([]*ir.Var, 0, len(kernel.Inputs)+1)
	inputs = append(inputs, kernel.Inputs...)
	inputs = append(inputs, &ir.Var{Name: dOutput.Name, Shape: dOutput.Shape, Ty: dOutput.Ty})

	return ir.NewKernel(kernel.Name+"_grad", inputs, []*ir.Var{dst.Dst}, []ir.Stmt{result}, kernel.Target), nil
}

// findDefiningMove walks stmts (descending into LoopNest and IfThenElse)
// for the Move whose dst tensor is named output, returning it together
// with every Index declared by a LoopNest enclosing it, outermost first
// (GradStmt's allArgs).
func findDefiningMove(stmts []ir.Stmt, output string, acc []*ir.Index) (*ir.Move, []*ir.Index, bool) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ir.LoopNest:
			inner := make([]*ir.Index, 0, len(acc)+len(n.Indices))
			inner = append(inner, acc...)
			inner = append(inner, n.Indices...)

			if mv, all, ok := findDefiningMove(n.Body, output, inner); ok {
				return mv, all, true
			}
		case *ir.IfThenElse:
			if mv, all, ok := findDefiningMove([]ir.Stmt{n.TrueCase}, output, acc); ok {
				return mv, all, true
			}

			if n.FalseCase != nil {
				if mv, all, ok := findDefiningMove([]ir.Stmt{n.FalseCase}, output, acc); ok {
					return mv, all, true
				}
			}
		case *ir.Move:
			if n.Dst.Name == output {
				return n, acc, true
			}
		}
	}

	return nil, nil, false
}

func findDeclaredVar(kernel *ir.Kernel, name string) (*ir.Var, bool) {
	for _, v := range kernel.Inputs {
		if v.Name == name {
			return v, true
		}
	}

	for _, v := range kernel.Outputs {
		if v.Name == name {
			return v, true
		}
	}

	return nil, false
}
