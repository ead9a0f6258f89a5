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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/types"
)

func TestJoinTableInsertAndLookup(t *testing.T) {
	schema := types.NewSchema(types.Column{Name: "id", Type: types.Int})
	tbl := NewJoinTable(core.PortHandle(0), schema)

	rec := types.NewRecord(types.IntField(1))
	out, err := tbl.Execute(JoinInsert, core.PortHandle(0), rec)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, JoinInsert, out[0].Action)

	found, err := tbl.Lookup(out[0].Key)
	require.NoError(t, err)
	require.Equal(t, []types.Record{rec}, found)
}

func TestJoinTableDeleteThenLookupErrors(t *testing.T) {
	schema := types.NewSchema(types.Column{Name: "id", Type: types.Int})
	tbl := NewJoinTable(core.PortHandle(0), schema)

	rec := types.NewRecord(types.IntField(1))
	out, err := tbl.Execute(JoinInsert, core.PortHandle(0), rec)
	require.NoError(t, err)
	key := out[0].Key

	_, err = tbl.Execute(JoinDelete, core.PortHandle(0), rec)
	require.NoError(t, err)

	_, err = tbl.Lookup(key)
	require.Error(t, err)
}

func TestJoinTableWrongPortErrors(t *testing.T) {
	schema := types.NewSchema(types.Column{Name: "id", Type: types.Int})
	tbl := NewJoinTable(core.PortHandle(0), schema)

	_, err := tbl.Execute(JoinInsert, core.PortHandle(5), types.NewRecord(types.IntField(1)))
	require.Error(t, err)
}

func TestJoinTableCompositeKeyRejected(t *testing.T) {
	schema := types.NewSchema(types.Column{Name: "id", Type: types.Int})
	tbl := NewJoinTable(core.PortHandle(0), schema)

	_, err := tbl.Lookup(NewCompositeLookupKey(nil, nil))
	require.Error(t, err)
}
