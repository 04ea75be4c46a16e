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

// NodeKind discriminates every concrete IR node. Expr nodes, Stmt nodes and
// the single Group node (Kernel) all share this one enumeration so that a
// single UnsupportedNodeError can name any of them.
type NodeKind uint8

const (
	// KindIntImm identifies *IntImm.
	KindIntImm NodeKind = iota
	// KindUIntImm identifies *UIntImm.
	KindUIntImm
	// KindFloatImm identifies *FloatImm.
	KindFloatImm
	// KindStringImm identifies *StringImm.
	KindStringImm
	// KindUnary identifies *Unary.
	KindUnary
	// KindBinary identifies *Binary.
	KindBinary
	// KindCompare identifies *Compare.
	KindCompare
	// KindSelect identifies *Select.
	KindSelect
	// KindCall identifies *Call.
	KindCall
	// KindCast identifies *Cast.
	KindCast
	// KindRamp identifies *Ramp.
	KindRamp
	// KindVar identifies *Var.
	KindVar
	// KindDom identifies *Dom.
	KindDom
	// KindIndex identifies *Index.
	KindIndex
	// KindLoopNest identifies *LoopNest.
	KindLoopNest
	// KindIfThenElse identifies *IfThenElse.
	KindIfThenElse
	// KindMove identifies *Move.
	KindMove
	// KindKernel identifies *Kernel.
	KindKernel
)

var kindNames = [...]string{
	"IntImm", "UIntImm", "FloatImm", "StringImm",
	"Unary", "Binary", "Compare", "Select", "Call", "Cast", "Ramp",
	"Var", "Dom", "Index",
	"LoopNest", "IfThenElse", "Move",
	"Kernel",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Unknown"
}
