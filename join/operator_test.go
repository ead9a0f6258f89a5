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

const (
	leftPort  core.PortHandle = 0
	rightPort core.PortHandle = 1
)

func schemas() (types.Schema, types.Schema) {
	left := types.NewSchema(
		types.Column{Name: "id", Type: types.Int},
		types.Column{Name: "name", Type: types.String},
	)
	right := types.NewSchema(
		types.Column{Name: "id", Type: types.Int},
		types.Column{Name: "amount", Type: types.Int},
	)
	return left, right
}

func newInnerOperator() *JoinOperator {
	leftSchema, rightSchema := schemas()
	left := NewJoinTable(leftPort, leftSchema)
	right := NewJoinTable(rightPort, rightSchema)
	out := leftSchema.Concat(rightSchema)
	return NewJoinOperator(InnerJoin, out, left, []int{0}, right, []int{0})
}

func TestInnerJoinMatchesBothDirections(t *testing.T) {
	o := newInnerOperator()

	recs, err := o.Execute(JoinInsert, rightPort, types.NewRecord(types.IntField(1), types.IntField(100)))
	require.NoError(t, err)
	require.Empty(t, recs)

	recs, err = o.Execute(JoinInsert, leftPort, types.NewRecord(types.IntField(1), types.StringField("a")))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, JoinInsert, recs[0].Action)
	require.Equal(t, types.NewRecord(types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(100)), recs[0].Record)

	recs, err = o.Execute(JoinInsert, rightPort, types.NewRecord(types.IntField(1), types.IntField(200)))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, JoinInsert, recs[0].Action)
	require.Equal(t, types.NewRecord(types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(200)), recs[0].Record)
}

// TestInnerJoinDeleteRemovesOnlyOneIndexEntry exercises the bug fix
// called for explicitly: deleting one right row sharing a join key with
// another live right row must not drop the other row's index entry too.
func TestInnerJoinDeleteRemovesOnlyOneIndexEntry(t *testing.T) {
	o := newInnerOperator()

	_, err := o.Execute(JoinInsert, rightPort, types.NewRecord(types.IntField(1), types.IntField(100)))
	require.NoError(t, err)
	_, err = o.Execute(JoinInsert, leftPort, types.NewRecord(types.IntField(1), types.StringField("a")))
	require.NoError(t, err)
	_, err = o.Execute(JoinInsert, rightPort, types.NewRecord(types.IntField(1), types.IntField(200)))
	require.NoError(t, err)

	recs, err := o.Execute(JoinDelete, rightPort, types.NewRecord(types.IntField(1), types.IntField(100)))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, JoinDelete, recs[0].Action)
	require.Equal(t, types.NewRecord(types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(100)), recs[0].Record)

	recs, err = o.Execute(JoinDelete, leftPort, types.NewRecord(types.IntField(1), types.StringField("a")))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, JoinDelete, recs[0].Action)
	require.Equal(t, types.NewRecord(types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(200)), recs[0].Record)
}

func nullRight() types.Record {
	_, rightSchema := schemas()
	return types.FromSchema(rightSchema)
}

func TestLeftOuterJoinZeroCrossing(t *testing.T) {
	leftSchema, rightSchema := schemas()
	left := NewJoinTable(leftPort, leftSchema)
	right := NewJoinTable(rightPort, rightSchema)
	out := leftSchema.Concat(rightSchema)
	o := NewJoinOperator(LeftOuterJoin, out, left, []int{0}, right, []int{0})

	// Left row arrives with no right match: preserved with a null right side.
	recs, err := o.Execute(JoinInsert, leftPort, types.NewRecord(types.IntField(1), types.StringField("a")))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, JoinInsert, recs[0].Action)
	require.Equal(t, types.Concat(types.NewRecord(types.IntField(1), types.StringField("a")), nullRight()), recs[0].Record)

	// First matching right row crosses zero: retract the null placeholder,
	// insert the real joined row.
	recs, err = o.Execute(JoinInsert, rightPort, types.NewRecord(types.IntField(1), types.IntField(100)))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, JoinDelete, recs[0].Action)
	require.Equal(t, types.Concat(types.NewRecord(types.IntField(1), types.StringField("a")), nullRight()), recs[0].Record)
	require.Equal(t, JoinInsert, recs[1].Action)
	require.Equal(t, types.NewRecord(types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(100)), recs[1].Record)

	// Removing the only matching right row crosses back to zero: retract
	// the real joined row, restore the null placeholder.
	recs, err = o.Execute(JoinDelete, rightPort, types.NewRecord(types.IntField(1), types.IntField(100)))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, JoinDelete, recs[0].Action)
	require.Equal(t, types.NewRecord(types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(100)), recs[0].Record)
	require.Equal(t, JoinInsert, recs[1].Action)
	require.Equal(t, types.Concat(types.NewRecord(types.IntField(1), types.StringField("a")), nullRight()), recs[1].Record)

	// Left row leaves: the placeholder row it was last seen as is retracted.
	recs, err = o.Execute(JoinDelete, leftPort, types.NewRecord(types.IntField(1), types.StringField("a")))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, JoinDelete, recs[0].Action)
	require.Equal(t, types.Concat(types.NewRecord(types.IntField(1), types.StringField("a")), nullRight()), recs[0].Record)
}

func TestJoinInvalidSourcePort(t *testing.T) {
	o := newInnerOperator()
	_, err := o.Execute(JoinInsert, core.PortHandle(99), types.NewRecord(types.IntField(1)))
	require.Error(t, err)
}
