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

package join

import goerrors "gopkg.in/src-d/go-errors.v1"

// JoinError is the join-side error kind family.
var (
	// ErrInvalidSource is returned when an event arrives on a port that
	// belongs to neither branch of the join.
	ErrInvalidSource = goerrors.NewKind("join: event on port %d matches neither branch")

	// ErrInvalidLookupKey is returned when a leaf is asked to resolve a
	// composite key, which only an operator node can split.
	ErrInvalidLookupKey = goerrors.NewKind("join: leaf cannot resolve composite lookup key")

	// ErrInvalidJoinKey is returned when an operator node is asked to
	// resolve a leaf (non-composite) key, which only a leaf can hold.
	ErrInvalidJoinKey = goerrors.NewKind("join: operator cannot resolve leaf lookup key")

	// ErrHistoryRecordNotFound is returned when a lookup key references a
	// record no longer (or never) present in a leaf's record store.
	ErrHistoryRecordNotFound = goerrors.NewKind("join: no stored record for content hash %d")
)
