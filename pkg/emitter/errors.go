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
package emitter

import "errors"

var (
	// ErrUnsupportedNode is returned when the emitter is asked to lower a
	// node kind that has no direct C representation (Ramp, a raw Dom
	// reached outside an Index's declaration).
	ErrUnsupportedNode = errors.New("emitter: node kind has no C lowering")
	// ErrUnsupportedTarget is returned for a Kernel whose Target is not CPU.
	ErrUnsupportedTarget = errors.New("emitter: only the CPU target is implemented")
)
