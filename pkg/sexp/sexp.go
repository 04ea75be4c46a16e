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

// Package sexp is a minimal Lisp-like tree representation used to render an
// ir.Kernel for human inspection: a Symbol/List split plus a width-aware
// formatter that tries one line and falls back to one child per line.
package sexp

import "strings"

// SExp is either a Symbol (a leaf) or a List (zero or more SExp children).
type SExp interface {
	// oneLine renders this node with no wrapping, for the fits-on-one-line
	// check Format performs before falling back to multi-line.
	oneLine() string
}

// Symbol is an atomic, unparenthesized token.
type Symbol string

// NewSymbol constructs a Symbol node.
func NewSymbol(s string) Symbol { return Symbol(s) }

func (s Symbol) oneLine() string { return string(s) }

// List is a parenthesized sequence of child nodes.
type List struct {
	Elements []SExp
}

// NewList constructs a List node from its children.
func NewList(elements []SExp) *List { return &List{Elements: elements} }

func (l *List) oneLine() string {
	var b strings.Builder

	b.WriteByte('(')

	for i, e := range l.Elements {
		if i != 0 {
			b.WriteByte(' ')
		}

		b.WriteString(e.oneLine())
	}

	b.WriteByte(')')

	return b.String()
}

// Format renders n wrapped to at most width columns per line. A List whose
// one-line rendering already fits (accounting for the current indent) is
// kept flat; otherwise it is split one child per line, each indented two
// spaces deeper than its parent, recursing the same decision into every
// child. width <= 0 disables wrapping (always render flat).
func Format(n SExp, width int) string {
	var b strings.Builder

	formatAt(n, 0, width, &b)

	return b.String()
}

func formatAt(n SExp, indent, width int, b *strings.Builder) {
	list, ok := n.(*List)
	if !ok {
		b.WriteString(n.oneLine())
		return
	}

	flat := list.oneLine()
	if width <= 0 || indent+len(flat) <= width || len(list.Elements) == 0 {
		b.WriteString(flat)
		return
	}

	b.WriteByte('(')

	for i, e := range list.Elements {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", indent+2))
		formatAt(e, indent+2, width, b)

		if i == len(list.Elements)-1 {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", indent))
		}
	}

	b.WriteByte(')')
}
