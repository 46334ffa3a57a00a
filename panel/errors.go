// Copyright 2025 Assaying Anomalies

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package panel

import "github.com/stockparfait/errors"

// Fatal error conditions of the panel pipeline. All of them abort the run
// with no partial output. Insufficient data, by contrast, is never an error:
// it is absorbed locally as missing cells and logged as a warning.
var (
	// ErrEmptyUniverse: filtering left no securities or no periods to build
	// the axes from.
	ErrEmptyUniverse = errors.Reason("empty universe")

	// ErrDuplicateObservation: two raw records map to the same
	// (period, security) cell, an input integrity violation.
	ErrDuplicateObservation = errors.Reason("duplicate observation")

	// ErrAxisMismatch: a matrix or vector disagrees with the canonical axes
	// in dimensions or ordering, which indicates a programming error in a
	// pipeline component.
	ErrAxisMismatch = errors.Reason("axis mismatch")
)
