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

import (
	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/types"
)

// JoinTable is a join tree leaf: the materialized rows of one input
// stream, keyed by content hash so a later Delete or Lookup can find the
// exact row again.
type JoinTable struct {
	port   core.PortHandle
	schema types.Schema
	store  *Multimap[types.Record]
}

func NewJoinTable(port core.PortHandle, schema types.Schema) *JoinTable {
	return &JoinTable{port: port, schema: schema, store: NewMultimap[types.Record]()}
}

func (t *JoinTable) Ports() []core.PortHandle { return []core.PortHandle{t.port} }

func (t *JoinTable) OutputSchema() types.Schema { return t.schema }

// Execute stores or retracts record by its content hash and hands back
// the Lookup key future joins must present to retrieve it.
func (t *JoinTable) Execute(action JoinAction, fromPort core.PortHandle, record types.Record) ([]JoinRecord, error) {
	if fromPort != t.port {
		return nil, ErrInvalidSource.New(int32(fromPort))
	}
	hash := types.HashRecordContent(record.Values)
	switch action {
	case JoinInsert:
		t.store.Put(hash, record.Clone())
	case JoinDelete:
		t.store.Remove(hash, func(r types.Record) bool { return recordsEqual(r, record) })
	}
	return []JoinRecord{{Action: action, Record: record, Key: NewLookupKey(hash)}}, nil
}

func (t *JoinTable) Lookup(key *JoinLookupKey) ([]types.Record, error) {
	if key == nil || !key.isLookup {
		return nil, ErrInvalidLookupKey.New()
	}
	recs := t.store.GetMany(key.hash)
	if len(recs) == 0 {
		return nil, ErrHistoryRecordNotFound.New(key.hash)
	}
	return recs, nil
}
