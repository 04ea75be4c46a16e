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
package sexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolOneLine(t *testing.T) {
	assert.Equal(t, "foo", NewSymbol("foo").oneLine())
}

func TestListOneLine(t *testing.T) {
	l := NewList([]SExp{NewSymbol("+"), NewSymbol("1"), NewSymbol("2")})
	assert.Equal(t, "(+ 1 2)", l.oneLine())
}

func TestListOneLineEmpty(t *testing.T) {
	l := NewList(nil)
	assert.Equal(t, "()", l.oneLine())
}

func TestFormatFlatWhenFits(t *testing.T) {
	l := NewList([]SExp{NewSymbol("+"), NewSymbol("1"), NewSymbol("2")})
	assert.Equal(t, "(+ 1 2)", Format(l, 80))
}

func TestFormatDisabledWrapping(t *testing.T) {
	l := NewList([]SExp{NewSymbol("+"), NewSymbol("1"), NewSymbol("2")})
	assert.Equal(t, "(+ 1 2)", Format(l, 0))
}

func TestFormatWrapsWhenTooWide(t *testing.T) {
	l := NewList([]SExp{
		NewSymbol("kernel"),
		NewSymbol("matmul"),
		NewSymbol("inputs"),
		NewSymbol("outputs"),
	})

	got := Format(l, 10)
	want := "(\n  kernel\n  matmul\n  inputs\n  outputs\n)"
	assert.Equal(t, want, got)
}

func TestFormatRecursesIntoNestedLists(t *testing.T) {
	inner := NewList([]SExp{NewSymbol("a"), NewSymbol("b")})
	outer := NewList([]SExp{NewSymbol("top"), inner})

	// Neither the outer nor the inner list fits at width 5, so both wrap.
	got := Format(outer, 5)
	want := "(\n  top\n  (\n    a\n    b\n  )\n)"
	assert.Equal(t, want, got)
}

func TestFormatEmptyListNeverWraps(t *testing.T) {
	l := NewList(nil)
	assert.Equal(t, "()", Format(l, 1))
}
