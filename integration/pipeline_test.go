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

// Package integration wires the three processors together the way a
// scheduler would: one processor's emitted operations become the next
// processor's input. It exists to check that the chained behavior
// matches re-evaluating the whole expression over the materialized
// input, not just that each processor is correct in isolation.
package integration

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql-core/aggregation"
	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/expression"
	"github.com/streamql/streamql-core/join"
	"github.com/streamql/streamql-core/projection"
	"github.com/streamql/streamql-core/types"
)

// capturingForwarder records every emitted Operation in order, standing
// in for a scheduler's inter-node channel.
type capturingForwarder struct {
	ops []types.Operation
}

func (f *capturingForwarder) Send(op types.Operation, _ core.PortHandle) error {
	f.ops = append(f.ops, op)
	return nil
}

// materialize replays a sequence of operations into a multiset of live
// rows, the way a downstream table would, so two differently-phrased
// change streams can be compared by their end state.
func materialize(ops []types.Operation) []types.Record {
	var live []types.Record
	remove := func(rec types.Record) {
		for i, r := range live {
			if recordEqual(r, rec) {
				live = append(live[:i], live[i+1:]...)
				return
			}
		}
	}
	for _, op := range ops {
		switch op.Type {
		case types.Insert:
			live = append(live, op.New)
		case types.Delete:
			remove(op.Old)
		case types.Update:
			remove(op.Old)
			live = append(live, op.New)
		}
	}
	return live
}

func recordEqual(a, b types.Record) bool {
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

func TestProjectionThenAggregationMaterializesConsistently(t *testing.T) {
	inputSchema := types.NewSchema(
		types.Column{Name: "a", Type: types.Int},
		types.Column{Name: "b", Type: types.Int},
	)
	proj := projection.NewProcessor(
		[]expression.Expression{
			expression.NewColumn(0), // group key passthrough
			expression.NewArithmetic(expression.Add, expression.NewColumn(0), expression.NewColumn(1)),
		},
		inputSchema,
	)
	projectedSchema := types.NewSchema(
		types.Column{Name: "a", Type: types.Int},
		types.Column{Name: "a_plus_b", Type: types.Int},
	)
	// The aggregation's own projection selects only the grouped column
	// and the measure: a_plus_b varies per row within the group and has
	// no place in a grouped projection, same as in a GROUP BY query.
	aggSchema := types.NewSchema(
		types.Column{Name: "a", Type: types.Int},
		types.Column{Name: "cnt", Type: types.Int},
	)
	agg := aggregation.NewProcessor(
		[]expression.Expression{expression.NewColumn(0)},
		[]aggregation.Measure{{Type: aggregation.CountType, ReturnType: types.Int}},
		[]expression.Expression{expression.NewColumn(0), expression.NewColumn(2)},
		projectedSchema,
		aggSchema,
	)

	fwd := &capturingForwarder{}
	drive := func(op types.Operation) {
		projFwd := &capturingForwarder{}
		require.NoError(t, proj.Process(core.DefaultPortHandle, op, projFwd))
		for _, pOp := range projFwd.ops {
			require.NoError(t, agg.Process(core.DefaultPortHandle, pOp, fwd))
		}
	}

	drive(types.NewInsert(types.NewRecord(types.IntField(1), types.IntField(10))))
	drive(types.NewInsert(types.NewRecord(types.IntField(1), types.IntField(20))))
	drive(types.NewDelete(types.NewRecord(types.IntField(1), types.IntField(10))))

	live := materialize(fwd.ops)
	require.Len(t, live, 1)
	require.Empty(t, cmp.Diff(types.IntField(1), live[0].Values[0]))
	require.Empty(t, cmp.Diff(types.IntField(1), live[0].Values[1]))
}

func TestInnerJoinMaterializesJoinedRow(t *testing.T) {
	leftSchema := types.NewSchema(
		types.Column{Name: "id", Type: types.Int},
		types.Column{Name: "name", Type: types.String},
	)
	rightSchema := types.NewSchema(
		types.Column{Name: "id", Type: types.Int},
		types.Column{Name: "amount", Type: types.Int},
	)
	joined := leftSchema.Concat(rightSchema)

	left := join.NewJoinTable(core.PortHandle(0), leftSchema)
	right := join.NewJoinTable(core.PortHandle(1), rightSchema)
	operator := join.NewJoinOperator(join.InnerJoin, joined, left, []int{0}, right, []int{0})

	fwd := &capturingForwarder{}
	require.NoError(t, operator.Process(core.PortHandle(0), types.NewInsert(
		types.NewRecord(types.IntField(1), types.StringField("a")),
	), fwd))
	require.NoError(t, operator.Process(core.PortHandle(1), types.NewInsert(
		types.NewRecord(types.IntField(1), types.IntField(100)),
	), fwd))

	live := materialize(fwd.ops)
	require.Len(t, live, 1)
	require.Equal(t, types.NewRecord(
		types.IntField(1), types.StringField("a"), types.IntField(1), types.IntField(100),
	), live[0])
}
