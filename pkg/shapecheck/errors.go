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
package shapecheck

import "errors"

var (
	// ErrArityMismatch is returned when a Var access supplies a different
	// number of index arguments than its declared Shape has axes.
	ErrArityMismatch = errors.New("tensor access arity does not match declared shape")

	// ErrShapeConflict is returned when the same tensor name is accessed
	// with two different declared Shapes within one kernel.
	ErrShapeConflict = errors.New("tensor accessed with conflicting shapes")

	// ErrTypeConflict is returned when the same tensor name is accessed
	// with two different declared element Types within one kernel.
	ErrTypeConflict = errors.New("tensor accessed with conflicting element types")

	// ErrOutOfBounds is returned when an axis's index expression can take
	// a value outside [0, shape[axis]) over the full domain of the indices
	// it references.
	ErrOutOfBounds = errors.New("tensor access out of declared bounds")

	// ErrUnboundIndex is returned when an index expression references an
	// Index name that is not currently in scope (no enclosing LoopNest
	// declares it), so no range is known for it.
	ErrUnboundIndex = errors.New("index used outside any enclosing loop nest")
)
