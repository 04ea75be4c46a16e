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

import "errors"

var (
	// ErrUndifferentiable is returned when gradExpr reaches a node kind that
	// has no differentiation rule (Select, Compare, Call, Cast, Ramp, Dom,
	// Index, or any immediate literal appearing outside a coefficient
	// position) while the target still occurs beneath it; every one of these
	// is fatal rather than silently producing a zero gradient.
	ErrUndifferentiable = errors.New("expression is not differentiable in this position")

	// ErrRepeatedAxisName is returned when the caller-supplied forward
	// indices in allArgs contain the same *ir.Index pointer more than once.
	ErrRepeatedAxisName = errors.New("repeated axis name in forward indices")

	// ErrUnexpectedNode is returned by ExtractIndexCoefficients when it
	// meets a node kind that can never legally occur inside an affine index
	// expression (Select, Compare, Call, Var, Cast, Ramp, Dom).
	ErrUnexpectedNode = errors.New("unexpected node kind while extracting index coefficients")

	// ErrNonAffineIndex is returned when an index expression is not affine
	// in its indices: it still contains a Div, Mod, floor-div or floor-mod
	// when coefficient extraction runs, it multiplies two non-literal
	// subexpressions, or it floor-divides/floor-mods by a non-literal divisor
	// (EliminateIndexFloorDivAndMod).
	ErrNonAffineIndex = errors.New("non-affine index expression")

	// ErrUnsolvableBinding is returned when an index binding system is
	// malformed: a coefficient row of solveMultiBindings has the wrong
	// width, or solveSubstitutions gets a different number of axis
	// expressions and targets. A Smith Normal Form diagonal entry that does
	// not divide its right-hand side does not produce this error; it becomes
	// a divisibility condition on the solved binding.
	ErrUnsolvableBinding = errors.New("unsolvable index binding system")

	// ErrMalformedSubstitution is returned when a resolved binding's range
	// is half-open infinite (see arith.ExtRange.IsHalfOpenInfinite).
	ErrMalformedSubstitution = errors.New("malformed substitution: half-open infinite range")

	// ErrIndeterminateRange is returned when a freshly introduced reduce
	// index, synthesized for an unconstrained column of solveMultiBindings'
	// system, cannot be given a bounded range by back-propagating the
	// already-known ranges of the unknowns it participates in: a reduce
	// loop without a known trip count cannot be emitted.
	ErrIndeterminateRange = errors.New("cannot determine a bounded range for an introduced reduce index")
)
