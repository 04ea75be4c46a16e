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
package equality

import "github.com/tensorgrad/tensorgrad/pkg/ir"

// identitySubstitutor replaces an Index node whose pointer identity matches
// Key with Replacement, wherever it occurs as a subexpression.
type identitySubstitutor struct {
	ir.BaseExprMutator

	Key         *ir.Index
	Replacement ir.Expr
}

// SubstituteByIdentity replaces every occurrence of the Index node key
// (matched by pointer identity) within expr with replacement. Unchanged
// subtrees are shared with the original.
func SubstituteByIdentity(expr ir.Expr, key *ir.Index, replacement ir.Expr) (ir.Expr, error) {
	m := &identitySubstitutor{Key: key, Replacement: replacement}
	m.Self = m

	return ir.RebuildExpr(expr, m)
}

func (s *identitySubstitutor) MutateIndex(n *ir.Index) (ir.Expr, error) {
	if n == s.Key {
		return s.Replacement, nil
	}

	return s.BaseExprMutator.MutateIndex(n)
}

// nameSubstitutor replaces any Index whose Name matches Target with
// Replacement, regardless of pointer identity.
type nameSubstitutor struct {
	ir.BaseExprMutator

	Target      string
	Replacement ir.Expr
}

// SubstituteByName replaces every Index named target within expr with
// replacement. Unchanged subtrees are shared with the original.
func SubstituteByName(expr ir.Expr, target string, replacement ir.Expr) (ir.Expr, error) {
	m := &nameSubstitutor{Target: target, Replacement: replacement}
	m.Self = m

	return ir.RebuildExpr(expr, m)
}

func (s *nameSubstitutor) MutateIndex(n *ir.Index) (ir.Expr, error) {
	if n.Name == s.Target {
		return s.Replacement, nil
	}

	return s.BaseExprMutator.MutateIndex(n)
}

// SubstituteMap applies SubstituteByName repeatedly for every entry of
// bindings (order is unspecified across distinct names but each name is
// applied in full across the whole tree before the next, which is safe
// because no binding in practice introduces a new occurrence of another
// bound name).
func SubstituteMap(expr ir.Expr, bindings map[string]ir.Expr) (ir.Expr, error) {
	cur := expr

	for name, repl := range bindings {
		next, err := SubstituteByName(cur, name, repl)
		if err != nil {
			return nil, err
		}

		cur = next
	}

	return cur, nil
}
