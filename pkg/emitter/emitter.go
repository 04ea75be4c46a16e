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

// Package emitter lowers a compiled ir.Kernel into flat C source:
// LoopNest becomes a nest of "for" statements, Move becomes an
// assignment against a row-major flattened array index, and IfThenElse
// maps directly onto C's own if/else. An indent-tracking printer walks a
// switch over the concrete node types, writing into the caller's
// io.Writer in a single pass.
package emitter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tensorgrad/tensorgrad/pkg/ir"
	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// Emit lowers kernel into C source, writing it to w. Only ir.CPU kernels
// are supported; ir.GPU is accepted at the IR level (see ir.Target's doc
// comment) but rejected here with ErrUnsupportedTarget.
func Emit(w io.Writer, kernel *ir.Kernel) error {
	if kernel.Target != ir.CPU {
		return fmt.Errorf("%w: kernel %q targets %s", ErrUnsupportedTarget, kernel.Name, kernel.Target)
	}

	bw := bufio.NewWriter(w)
	e := &emitter{w: bw}

	e.header(kernel.Name)
	e.signature(kernel)

	if e.err == nil {
		e.indent++
		for _, stmt := range kernel.Body {
			e.emitStmt(stmt)
		}
		e.indent--
		e.printf("}\n")
	}

	if e.err != nil {
		return e.err
	}

	return bw.Flush()
}

type emitter struct {
	w      *bufio.Writer
	indent int
	err    error
}

func (e *emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}

	_, err := fmt.Fprintf(e.w, format, args...)
	if err != nil {
		e.err = err
	}
}

func (e *emitter) writeIndent() {
	e.printf("%s", strings.Repeat("    ", e.indent))
}

func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// header stamps a short provenance comment on the generated translation
// unit.
func (e *emitter) header(name string) {
	e.printf("/* Generated from kernel \"%s\" on %s. Do not edit by hand. */\n\n",
		name, time.Now().UTC().Format("2006-01-02"))
	e.printf("#include <stdint.h>\n\n")
	e.printf("static inline int64_t tg_floordiv(int64_t a, int64_t b) {\n")
	e.printf("    int64_t q = a / b;\n")
	e.printf("    if ((a %% b != 0) && ((a < 0) != (b < 0))) { q--; }\n")
	e.printf("    return q;\n")
	e.printf("}\n\n")
	e.printf("static inline int64_t tg_floormod(int64_t a, int64_t b) {\n")
	e.printf("    int64_t m = a %% b;\n")
	e.printf("    if (m != 0 && ((m < 0) != (b < 0))) { m += b; }\n")
	e.printf("    return m;\n")
	e.printf("}\n\n")
}

func (e *emitter) signature(kernel *ir.Kernel) {
	e.printf("void %s(", kernel.Name)

	first := true

	for _, v := range kernel.Inputs {
		if !first {
			e.printf(", ")
		}

		first = false
		e.printf("const %s *%s", cType(v.Ty), v.Name)
	}

	for _, v := range kernel.Outputs {
		if !first {
			e.printf(", ")
		}

		first = false
		e.printf("%s *%s", cType(v.Ty), v.Name)
	}

	e.printf(") {\n")
}

func (e *emitter) emitStmt(stmt ir.Stmt) {
	if e.err != nil {
		return
	}

	switch n := stmt.(type) {
	case *ir.LoopNest:
		e.emitLoopNest(n)
	case *ir.IfThenElse:
		e.emitIfThenElse(n)
	case *ir.Move:
		e.emitMove(n)
	default:
		e.fail(fmt.Errorf("%w: %s", ErrUnsupportedNode, stmt.StmtKind()))
	}
}

func (e *emitter) emitLoopNest(n *ir.LoopNest) {
	if len(n.Indices) == 0 {
		// A bare grouping block (e.g. an if-branch's body): no loop header.
		for _, s := range n.Body {
			e.emitStmt(s)
		}

		return
	}

	idx := n.Indices[0]

	begin, err := e.exprString(idx.Dom.Begin)
	if err != nil {
		e.fail(err)
		return
	}

	extent, err := e.exprString(idx.Dom.Extent)
	if err != nil {
		e.fail(err)
		return
	}

	e.writeIndent()
	e.printf("for (int32_t %s = %s; %s < (%s) + (%s); %s++) {\n", idx.Name, begin, idx.Name, begin, extent, idx.Name)

	e.indent++

	if len(n.Indices) > 1 {
		e.emitLoopNest(&ir.LoopNest{Indices: n.Indices[1:], Body: n.Body})
	} else {
		for _, s := range n.Body {
			e.emitStmt(s)
		}
	}

	e.indent--
	e.writeIndent()
	e.printf("}\n")
}

func (e *emitter) emitIfThenElse(n *ir.IfThenElse) {
	cond, err := e.exprString(n.Cond)
	if err != nil {
		e.fail(err)
		return
	}

	e.writeIndent()
	e.printf("if (%s) {\n", cond)
	e.indent++
	e.emitStmt(n.TrueCase)
	e.indent--
	e.writeIndent()
	e.printf("}\n")

	if n.FalseCase != nil {
		e.writeIndent()
		e.printf("else {\n")
		e.indent++
		e.emitStmt(n.FalseCase)
		e.indent--
		e.writeIndent()
		e.printf("}\n")
	}
}

func (e *emitter) emitMove(n *ir.Move) {
	dst, err := e.exprString(n.Dst)
	if err != nil {
		e.fail(err)
		return
	}

	src, err := e.exprString(n.Src)
	if err != nil {
		e.fail(err)
		return
	}

	e.writeIndent()
	e.printf("%s = %s;\n", dst, src)
}

// exprString renders expr as a single C expression, accumulating any error
// into e.err's style but returning it directly since expression rendering
// nests arbitrarily deep inside a single statement.
func (e *emitter) exprString(expr ir.Expr) (string, error) {
	var sb strings.Builder
	if err := writeExpr(&sb, expr); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func writeExpr(sb *strings.Builder, expr ir.Expr) error {
	switch n := expr.(type) {
	case *ir.IntImm:
		fmt.Fprintf(sb, "%d", n.Value)
		return nil
	case *ir.UIntImm:
		fmt.Fprintf(sb, "%duLL", n.Value)
		return nil
	case *ir.FloatImm:
		fmt.Fprintf(sb, "%g", n.Value)
		return nil
	case *ir.StringImm:
		fmt.Fprintf(sb, "%q", n.Value)
		return nil
	case *ir.Index:
		sb.WriteString(n.Name)
		return nil
	case *ir.Unary:
		return writeUnary(sb, n)
	case *ir.Binary:
		return writeBinary(sb, n)
	case *ir.Compare:
		return writeCompare(sb, n)
	case *ir.Select:
		return writeSelect(sb, n)
	case *ir.Cast:
		return writeCast(sb, n)
	case *ir.Call:
		return writeCall(sb, n)
	case *ir.Var:
		return writeVarAccess(sb, n)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedNode, expr.ExprKind())
	}
}

func writeUnary(sb *strings.Builder, n *ir.Unary) error {
	sb.WriteString(n.Op.String())
	sb.WriteString("(")

	if err := writeExpr(sb, n.A); err != nil {
		return err
	}

	sb.WriteString(")")

	return nil
}

func writeBinary(sb *strings.Builder, n *ir.Binary) error {
	switch n.Op {
	case ir.FloorDiv:
		return writeCallLike(sb, "tg_floordiv", n.A, n.B)
	case ir.FloorMod:
		return writeCallLike(sb, "tg_floormod", n.A, n.B)
	default:
		sb.WriteString("(")

		if err := writeExpr(sb, n.A); err != nil {
			return err
		}

		fmt.Fprintf(sb, " %s ", n.Op.String())

		if err := writeExpr(sb, n.B); err != nil {
			return err
		}

		sb.WriteString(")")

		return nil
	}
}

func writeCallLike(sb *strings.Builder, name string, a, b ir.Expr) error {
	fmt.Fprintf(sb, "%s(", name)

	if err := writeExpr(sb, a); err != nil {
		return err
	}

	sb.WriteString(", ")

	if err := writeExpr(sb, b); err != nil {
		return err
	}

	sb.WriteString(")")

	return nil
}

func writeCompare(sb *strings.Builder, n *ir.Compare) error {
	sb.WriteString("(")

	if err := writeExpr(sb, n.A); err != nil {
		return err
	}

	fmt.Fprintf(sb, " %s ", n.Op.String())

	if err := writeExpr(sb, n.B); err != nil {
		return err
	}

	sb.WriteString(")")

	return nil
}

func writeSelect(sb *strings.Builder, n *ir.Select) error {
	sb.WriteString("(")

	if err := writeExpr(sb, n.Cond); err != nil {
		return err
	}

	sb.WriteString(" ? ")

	if err := writeExpr(sb, n.TrueValue); err != nil {
		return err
	}

	sb.WriteString(" : ")

	if err := writeExpr(sb, n.FalseValue); err != nil {
		return err
	}

	sb.WriteString(")")

	return nil
}

func writeCast(sb *strings.Builder, n *ir.Cast) error {
	fmt.Fprintf(sb, "(%s)(", cType(n.NewType))

	if err := writeExpr(sb, n.Val); err != nil {
		return err
	}

	sb.WriteString(")")

	return nil
}

func writeCall(sb *strings.Builder, n *ir.Call) error {
	fmt.Fprintf(sb, "%s(", n.FuncName)

	for i, arg := range n.Args {
		if i > 0 {
			sb.WriteString(", ")
		}

		if err := writeExpr(sb, arg); err != nil {
			return err
		}
	}

	sb.WriteString(")")

	return nil
}

// writeVarAccess renders a Var access as a flattened, row-major array
// index: A[i,j] over a declared Shape [R, C] becomes A[(i)*C + (j)].
func writeVarAccess(sb *strings.Builder, n *ir.Var) error {
	fmt.Fprintf(sb, "%s[", n.Name)

	strides := rowMajorStrides(n.Shape)

	for i, arg := range n.Args {
		if i > 0 {
			sb.WriteString(" + ")
		}

		sb.WriteString("(")

		if err := writeExpr(sb, arg); err != nil {
			return err
		}

		sb.WriteString(")")

		if strides[i] != 1 {
			fmt.Fprintf(sb, "*%d", strides[i])
		}
	}

	sb.WriteString("]")

	return nil
}

func rowMajorStrides(shape []uint64) []uint64 {
	strides := make([]uint64, len(shape))

	acc := uint64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}

	return strides
}

// cType maps a scalar type descriptor to its C spelling. Lane widths above
// 1 are not supported (Ramp is rejected by writeExpr before reaching here).
func cType(t types.Type) string {
	switch t.Kind {
	case types.Int:
		return fmt.Sprintf("int%d_t", t.Bits)
	case types.UInt:
		return fmt.Sprintf("uint%d_t", t.Bits)
	case types.Float:
		if t.Bits == 32 {
			return "float"
		}

		return "double"
	case types.Bool:
		return "int"
	case types.String:
		return "const char *"
	default:
		return "void *"
	}
}
