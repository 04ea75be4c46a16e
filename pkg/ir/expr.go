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

import (
	"fmt"

	"github.com/tensorgrad/tensorgrad/pkg/types"
)

// Expr is any IR node which produces a value. Nodes are immutable once
// constructed; pointer identity is the preferred notion of "same node" (two
// references to the same Var denote the same tensor), though ExprEqualByValue
// (package equality) gives a structural alternative where identity is not
// available, e.g. after independent parses.
type Expr interface {
	// ExprKind identifies the concrete node kind for dispatch.
	ExprKind() NodeKind
	// Type returns this expression's scalar type descriptor.
	Type() types.Type
	// exprNode is unexported so only this package's node types satisfy Expr.
	exprNode()
}

// IntImm is a signed 64-bit integer literal.
type IntImm struct {
	Value int64
	Ty    types.Type
}

// NewIntImm constructs an IntImm with type Int64 unless ty is supplied.
func NewIntImm(value int64, ty ...types.Type) *IntImm {
	t := types.Int64
	if len(ty) > 0 {
		t = ty[0]
	}

	return &IntImm{Value: value, Ty: t}
}

func (n *IntImm) ExprKind() NodeKind { return KindIntImm }
func (n *IntImm) Type() types.Type   { return n.Ty }
func (n *IntImm) exprNode()          {}

// UIntImm is an unsigned 64-bit integer literal.
type UIntImm struct {
	Value uint64
	Ty    types.Type
}

// NewUIntImm constructs a UIntImm node.
func NewUIntImm(value uint64, ty types.Type) *UIntImm {
	return &UIntImm{Value: value, Ty: ty}
}

func (n *UIntImm) ExprKind() NodeKind { return KindUIntImm }
func (n *UIntImm) Type() types.Type   { return n.Ty }
func (n *UIntImm) exprNode()          {}

// FloatImm is a 64-bit floating point literal.
type FloatImm struct {
	Value float64
	Ty    types.Type
}

// NewFloatImm constructs a FloatImm with type Float64 unless ty is supplied.
func NewFloatImm(value float64, ty ...types.Type) *FloatImm {
	t := types.Float64
	if len(ty) > 0 {
		t = ty[0]
	}

	return &FloatImm{Value: value, Ty: t}
}

func (n *FloatImm) ExprKind() NodeKind { return KindFloatImm }
func (n *FloatImm) Type() types.Type   { return n.Ty }
func (n *FloatImm) exprNode()          {}

// StringImm is a literal string constant.
type StringImm struct {
	Value string
}

// NewStringImm constructs a StringImm node.
func NewStringImm(value string) *StringImm {
	return &StringImm{Value: value}
}

func (n *StringImm) ExprKind() NodeKind { return KindStringImm }
func (n *StringImm) Type() types.Type   { return types.Scalar(types.String, 0) }
func (n *StringImm) exprNode()          {}

// Unary applies a unary operator to a single operand.
type Unary struct {
	Op UnaryOp
	A  Expr
	Ty types.Type
}

// NewUnary constructs a Unary node.
func NewUnary(op UnaryOp, a Expr) *Unary {
	return &Unary{Op: op, A: a, Ty: a.Type()}
}

func (n *Unary) ExprKind() NodeKind { return KindUnary }
func (n *Unary) Type() types.Type   { return n.Ty }
func (n *Unary) exprNode()          {}

// Binary applies a binary operator across two operands.
type Binary struct {
	Op BinaryOp
	A  Expr
	B  Expr
	Ty types.Type
}

// NewBinary constructs a Binary node. The result type is taken from A; the
// caller is responsible for having already inserted any necessary Cast.
func NewBinary(op BinaryOp, a, b Expr) *Binary {
	return &Binary{Op: op, A: a, B: b, Ty: a.Type()}
}

func (n *Binary) ExprKind() NodeKind { return KindBinary }
func (n *Binary) Type() types.Type   { return n.Ty }
func (n *Binary) exprNode()          {}

// Compare produces a Bool1 result from comparing two operands.
type Compare struct {
	Op CompareOp
	A  Expr
	B  Expr
}

// NewCompare constructs a Compare node.
func NewCompare(op CompareOp, a, b Expr) *Compare {
	return &Compare{Op: op, A: a, B: b}
}

func (n *Compare) ExprKind() NodeKind { return KindCompare }
func (n *Compare) Type() types.Type   { return types.Bool1 }
func (n *Compare) exprNode()          {}

// Select is a ternary conditional expression.
type Select struct {
	Cond       Expr
	TrueValue  Expr
	FalseValue Expr
}

// NewSelect constructs a Select node.
func NewSelect(cond, trueValue, falseValue Expr) *Select {
	return &Select{Cond: cond, TrueValue: trueValue, FalseValue: falseValue}
}

func (n *Select) ExprKind() NodeKind { return KindSelect }
func (n *Select) Type() types.Type   { return n.TrueValue.Type() }
func (n *Select) exprNode()          {}

// Call invokes a named function with zero or more argument expressions.
type Call struct {
	FuncName string
	Args     []Expr
	CallKind CallKind
	Ty       types.Type
}

// NewCall constructs a Call node.
func NewCall(funcName string, args []Expr, kind CallKind, ty types.Type) *Call {
	return &Call{FuncName: funcName, Args: args, CallKind: kind, Ty: ty}
}

func (n *Call) ExprKind() NodeKind { return KindCall }
func (n *Call) Type() types.Type   { return n.Ty }
func (n *Call) exprNode()          {}

// Cast changes the type of val to NewType without changing its value
// (subject to the usual numeric conversion rules of the target type).
type Cast struct {
	NewType types.Type
	Val     Expr
}

// NewCast constructs a Cast node.
func NewCast(newType types.Type, val Expr) *Cast {
	return &Cast{NewType: newType, Val: val}
}

func (n *Cast) ExprKind() NodeKind { return KindCast }
func (n *Cast) Type() types.Type   { return n.NewType }
func (n *Cast) exprNode()          {}

// Ramp represents base, base+stride, base+2*stride, ... for Lanes elements.
type Ramp struct {
	Base   Expr
	Stride uint16
	Lanes  uint16
}

// NewRamp constructs a Ramp node.
func NewRamp(base Expr, stride, lanes uint16) *Ramp {
	return &Ramp{Base: base, Stride: stride, Lanes: lanes}
}

func (n *Ramp) ExprKind() NodeKind { return KindRamp }
func (n *Ramp) Type() types.Type   { return n.Base.Type().WithLanes(n.Lanes) }
func (n *Ramp) exprNode()          {}

// Var is a named, possibly multi-dimensional tensor access. Each access is
// its own Var node (the parser builds a fresh one per reference), so the
// passes of this engine match occurrences of the same tensor by Name, not
// by pointer identity.
type Var struct {
	Name  string
	Args  []Expr
	Shape []uint64
	Ty    types.Type
}

// NewVar constructs a Var node. It returns ErrShapeMismatch if len(args) !=
// len(shape), per the Var arity invariant.
func NewVar(name string, args []Expr, shape []uint64, ty types.Type) (*Var, error) {
	if len(args) != len(shape) {
		return nil, &ShapeMismatchError{Context: "Var " + name, Want: len(shape), Got: len(args)}
	}

	return &Var{Name: name, Args: args, Shape: shape, Ty: ty}, nil
}

// MustNewVar is like NewVar but panics on a shape mismatch; intended for use
// in tests and passes which have already validated shape elsewhere.
func MustNewVar(name string, args []Expr, shape []uint64, ty types.Type) *Var {
	v, err := NewVar(name, args, shape, ty)
	if err != nil {
		panic(err)
	}

	return v
}

func (n *Var) ExprKind() NodeKind { return KindVar }
func (n *Var) Type() types.Type   { return n.Ty }
func (n *Var) exprNode()          {}

func (n *Var) String() string {
	return fmt.Sprintf("%s[%d args]", n.Name, len(n.Args))
}

// Dom describes a half-open integer domain [Begin, Begin+Extent).
type Dom struct {
	Begin  Expr
	Extent Expr
}

// NewDom constructs a Dom node.
func NewDom(begin, extent Expr) *Dom {
	return &Dom{Begin: begin, Extent: extent}
}

func (n *Dom) ExprKind() NodeKind { return KindDom }
func (n *Dom) Type() types.Type   { return types.Int32 }
func (n *Dom) exprNode()          {}

// Index is a named loop variable ranging over a Dom. A LoopNest owns its
// Index nodes; the body may reference them as subexpressions but never
// redefines them.
type Index struct {
	Name string
	Dom  *Dom
	Kind IndexKind
	Ty   types.Type
}

// NewIndex constructs an Index node.
func NewIndex(name string, dom *Dom, kind IndexKind) *Index {
	return &Index{Name: name, Dom: dom, Kind: kind, Ty: types.Int32}
}

func (n *Index) ExprKind() NodeKind { return KindIndex }
func (n *Index) Type() types.Type   { return n.Ty }
func (n *Index) exprNode()          {}

func (n *Index) String() string {
	return n.Name
}
