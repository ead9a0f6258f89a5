// Copyright 2024 The StreamQL Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aggregation

import goerrors "gopkg.in/src-d/go-errors.v1"

// These are the aggregation-side error kinds. A missing group during
// Delete or Update is returned as an error rather than asserted on, since
// it reflects an upstream invariant violation rather than a programmer
// bug.
var (
	// ErrGroupNotFound is returned when a Delete or Update is received for
	// a dimension key with no live group — an upstream invariant violation
	// (Delete without a matching prior Insert).
	ErrGroupNotFound = goerrors.NewKind("aggregation: no group for key %d during %s")
)
