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

// Package join implements the binary incremental hash join: a leaf
// (JoinTable) holding one side's materialized rows, and an operator node
// (JoinOperator) that can itself act as a leaf to a parent join, forming
// a tree over an arbitrary number of input streams.
package join

import (
	"fmt"

	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/types"
)

// JoinAction is the two-valued action a join source propagates upward:
// unlike types.OperationType, a join never needs to represent Update
// directly — callers decompose an Update into a Delete of the old row
// followed by an Insert of the new one before entering the join tree.
type JoinAction int

const (
	JoinInsert JoinAction = iota
	JoinDelete
)

func (a JoinAction) String() string {
	if a == JoinInsert {
		return "Insert"
	}
	return "Delete"
}

// JoinLookupKey is the recursive key a join source hands back for every
// row it produces: a leaf returns a Lookup key (the row's content hash);
// an operator returns a Composite key pairing its two children's keys,
// either of which is nil when that side is the unmatched placeholder of
// an outer join.
type JoinLookupKey struct {
	isLookup bool
	hash     uint64
	left     *JoinLookupKey
	right    *JoinLookupKey
}

func NewLookupKey(hash uint64) *JoinLookupKey {
	return &JoinLookupKey{isLookup: true, hash: hash}
}

func NewCompositeLookupKey(left, right *JoinLookupKey) *JoinLookupKey {
	return &JoinLookupKey{left: left, right: right}
}

// Equal does a structural comparison, used to find the one matching
// index entry a Delete must retract.
func (k *JoinLookupKey) Equal(other *JoinLookupKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.isLookup != other.isLookup {
		return false
	}
	if k.isLookup {
		return k.hash == other.hash
	}
	return k.left.Equal(other.left) && k.right.Equal(other.right)
}

func (k *JoinLookupKey) String() string {
	if k == nil {
		return "<nil>"
	}
	if k.isLookup {
		return fmt.Sprintf("Lookup(%d)", k.hash)
	}
	return fmt.Sprintf("Composite(%s, %s)", k.left, k.right)
}

// JoinRecord pairs a row produced by a JoinSource with the action that
// produced it and the lookup key future joins should use to find it
// again.
type JoinRecord struct {
	Action JoinAction
	Record types.Record
	Key    *JoinLookupKey
}

// JoinSource is implemented by both a leaf (JoinTable) and an interior
// node (JoinOperator), so joins compose into trees without the tree
// walker caring which kind of node it is at.
type JoinSource interface {
	Ports() []core.PortHandle
	OutputSchema() types.Schema
	Execute(action JoinAction, fromPort core.PortHandle, record types.Record) ([]JoinRecord, error)
	Lookup(key *JoinLookupKey) ([]types.Record, error)
}

func portsContain(ports []core.PortHandle, port core.PortHandle) bool {
	for _, p := range ports {
		if p == port {
			return true
		}
	}
	return false
}

// joinRecords concatenates two matched rows into the output row of a
// join, left fields first.
func joinRecords(left, right types.Record) types.Record {
	return types.Concat(left, right)
}

func recordsEqual(a, b types.Record) bool {
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if !a.Values[i].Equal(b.Values[i]) {
			return false
		}
	}
	return true
}
