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
	"github.com/sirupsen/logrus"

	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/log"
	"github.com/streamql/streamql-core/types"
)

// JoinType selects which side, if either, is preserved when it has no
// match on the other branch.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER"
	case LeftOuterJoin:
		return "LEFT OUTER"
	case RightOuterJoin:
		return "RIGHT OUTER"
	default:
		return "UNKNOWN"
	}
}

// JoinOperator is an interior join-tree node: a binary incremental hash
// join over two JoinSource branches, keyed on an equi-join condition
// given as column indexes into each branch's output schema.
type JoinOperator struct {
	joinType JoinType
	schema   types.Schema

	left, right                       JoinSource
	leftJoinKeyIndexes, rightJoinKeyIndexes []int

	leftIndex, rightIndex *Multimap[*JoinLookupKey]

	log *logrus.Entry
}

func NewJoinOperator(
	joinType JoinType,
	schema types.Schema,
	left JoinSource,
	leftJoinKeyIndexes []int,
	right JoinSource,
	rightJoinKeyIndexes []int,
) *JoinOperator {
	return &JoinOperator{
		joinType:            joinType,
		schema:               schema,
		left:                 left,
		right:                right,
		leftJoinKeyIndexes:   leftJoinKeyIndexes,
		rightJoinKeyIndexes:  rightJoinKeyIndexes,
		leftIndex:            NewMultimap[*JoinLookupKey](),
		rightIndex:           NewMultimap[*JoinLookupKey](),
		log:                  log.NewInstance("join").WithField("type", joinType.String()),
	}
}

var _ core.Processor = (*JoinOperator)(nil)

func (o *JoinOperator) Ports() []core.PortHandle {
	return append(append([]core.PortHandle{}, o.left.Ports()...), o.right.Ports()...)
}

func (o *JoinOperator) OutputSchema() types.Schema { return o.schema }

func (o *JoinOperator) Commit(core.Epoch) error { return nil }

// Process adapts the core.Processor contract to the JoinSource tree: an
// Update is decomposed into a Delete of the old row followed by an
// Insert of the new one, since the join tree only ever propagates
// JoinAction, not a three-way operation type.
func (o *JoinOperator) Process(fromPort core.PortHandle, op types.Operation, fw core.Forwarder) error {
	span := core.StartSpan("join", fromPort)
	defer span.Finish()

	var recs []JoinRecord
	switch op.Type {
	case types.Insert:
		out, err := o.Execute(JoinInsert, fromPort, op.New)
		if err != nil {
			return core.WrapInternal(err)
		}
		recs = out
	case types.Delete:
		out, err := o.Execute(JoinDelete, fromPort, op.Old)
		if err != nil {
			return core.WrapInternal(err)
		}
		recs = out
	case types.Update:
		delRecs, err := o.Execute(JoinDelete, fromPort, op.Old)
		if err != nil {
			return core.WrapInternal(err)
		}
		insRecs, err := o.Execute(JoinInsert, fromPort, op.New)
		if err != nil {
			return core.WrapInternal(err)
		}
		recs = append(delRecs, insRecs...)
	}

	for _, r := range recs {
		var emitted types.Operation
		if r.Action == JoinInsert {
			emitted = types.NewInsert(r.Record)
		} else {
			emitted = types.NewDelete(r.Record)
		}
		if err := fw.Send(emitted, core.DefaultPortHandle); err != nil {
			return err
		}
	}
	return nil
}

// Execute routes an event to whichever branch owns fromPort, updates
// that branch's lookup index, and performs the join, dispatching by
// JoinType and by which side the event arrived on.
func (o *JoinOperator) Execute(action JoinAction, fromPort core.PortHandle, record types.Record) ([]JoinRecord, error) {
	if portsContain(o.left.Ports(), fromPort) {
		leftRecs, err := o.left.Execute(action, fromPort, record)
		if err != nil {
			return nil, err
		}
		var out []JoinRecord
		for _, lr := range leftRecs {
			key := types.HashFields(lr.Record.GetFieldsByIndexes(o.leftJoinKeyIndexes))
			o.updateLeftIndex(lr.Action, key, lr.Key)

			var joined []JoinRecord
			switch o.joinType {
			case InnerJoin:
				joined, err = o.innerJoinLeft(lr.Action, key, lr.Record, lr.Key)
			case LeftOuterJoin:
				joined, err = o.leftJoin(lr.Action, key, lr.Record, lr.Key)
			case RightOuterJoin:
				joined, err = o.rightJoinReverse(lr.Action, key, lr.Record, lr.Key)
			}
			if err != nil {
				return nil, err
			}
			o.log.WithField("key", key).WithField("action", lr.Action).Trace("left branch event")
			out = append(out, joined...)
		}
		return out, nil
	}

	if portsContain(o.right.Ports(), fromPort) {
		rightRecs, err := o.right.Execute(action, fromPort, record)
		if err != nil {
			return nil, err
		}
		var out []JoinRecord
		for _, rr := range rightRecs {
			key := types.HashFields(rr.Record.GetFieldsByIndexes(o.rightJoinKeyIndexes))
			o.updateRightIndex(rr.Action, key, rr.Key)

			var joined []JoinRecord
			switch o.joinType {
			case InnerJoin:
				joined, err = o.innerJoinRight(rr.Action, key, rr.Record, rr.Key)
			case RightOuterJoin:
				joined, err = o.rightJoin(rr.Action, key, rr.Record, rr.Key)
			case LeftOuterJoin:
				joined, err = o.leftJoinReverse(rr.Action, key, rr.Record, rr.Key)
			}
			if err != nil {
				return nil, err
			}
			o.log.WithField("key", key).WithField("action", rr.Action).Trace("right branch event")
			out = append(out, joined...)
		}
		return out, nil
	}

	return nil, ErrInvalidSource.New(int32(fromPort))
}

// Lookup resolves a composite key produced by this operator back into
// the concrete joined rows, recursing into both branches. A nil half of
// the key stands for the unmatched placeholder side of an outer join.
func (o *JoinOperator) Lookup(key *JoinLookupKey) ([]types.Record, error) {
	if key == nil || key.isLookup {
		return nil, ErrInvalidJoinKey.New()
	}

	leftRecs, err := o.lookupOrPlaceholder(o.left, key.left)
	if err != nil {
		return nil, err
	}
	rightRecs, err := o.lookupOrPlaceholder(o.right, key.right)
	if err != nil {
		return nil, err
	}

	out := make([]types.Record, 0, len(leftRecs)*len(rightRecs))
	for _, l := range leftRecs {
		for _, r := range rightRecs {
			out = append(out, joinRecords(l, r))
		}
	}
	return out, nil
}

func (o *JoinOperator) lookupOrPlaceholder(source JoinSource, key *JoinLookupKey) ([]types.Record, error) {
	if key == nil {
		return []types.Record{types.FromSchema(source.OutputSchema())}, nil
	}
	return source.Lookup(key)
}

func (o *JoinOperator) innerJoinLeft(action JoinAction, key uint64, leftRecord types.Record, leftKey *JoinLookupKey) ([]JoinRecord, error) {
	var out []JoinRecord
	for _, rightKey := range o.rightIndex.GetMany(key) {
		rightRecs, err := o.right.Lookup(rightKey)
		if err != nil {
			return nil, err
		}
		for _, rightRec := range rightRecs {
			out = append(out, JoinRecord{
				Action: action,
				Record: joinRecords(leftRecord, rightRec),
				Key:    NewCompositeLookupKey(leftKey, rightKey),
			})
		}
	}
	return out, nil
}

func (o *JoinOperator) innerJoinRight(action JoinAction, key uint64, rightRecord types.Record, rightKey *JoinLookupKey) ([]JoinRecord, error) {
	var out []JoinRecord
	for _, leftKey := range o.leftIndex.GetMany(key) {
		leftRecs, err := o.left.Lookup(leftKey)
		if err != nil {
			return nil, err
		}
		for _, leftRec := range leftRecs {
			out = append(out, JoinRecord{
				Action: action,
				Record: joinRecords(leftRec, rightRecord),
				Key:    NewCompositeLookupKey(leftKey, rightKey),
			})
		}
	}
	return out, nil
}

func (o *JoinOperator) leftJoin(action JoinAction, key uint64, leftRecord types.Record, leftKey *JoinLookupKey) ([]JoinRecord, error) {
	rightKeys := o.rightIndex.GetMany(key)
	if len(rightKeys) == 0 {
		placeholder := types.FromSchema(o.right.OutputSchema())
		return []JoinRecord{{
			Action: action,
			Record: joinRecords(leftRecord, placeholder),
			Key:    NewCompositeLookupKey(leftKey, nil),
		}}, nil
	}

	var out []JoinRecord
	for _, rightKey := range rightKeys {
		rightRecs, err := o.right.Lookup(rightKey)
		if err != nil {
			return nil, err
		}
		for _, rightRec := range rightRecs {
			out = append(out, JoinRecord{
				Action: action,
				Record: joinRecords(leftRecord, rightRec),
				Key:    NewCompositeLookupKey(leftKey, rightKey),
			})
		}
	}
	return out, nil
}

func (o *JoinOperator) rightJoin(action JoinAction, key uint64, rightRecord types.Record, rightKey *JoinLookupKey) ([]JoinRecord, error) {
	leftKeys := o.leftIndex.GetMany(key)
	if len(leftKeys) == 0 {
		placeholder := types.FromSchema(o.left.OutputSchema())
		return []JoinRecord{{
			Action: action,
			Record: joinRecords(placeholder, rightRecord),
			Key:    NewCompositeLookupKey(nil, rightKey),
		}}, nil
	}

	var out []JoinRecord
	for _, leftKey := range leftKeys {
		leftRecs, err := o.left.Lookup(leftKey)
		if err != nil {
			return nil, err
		}
		for _, leftRec := range leftRecs {
			out = append(out, JoinRecord{
				Action: action,
				Record: joinRecords(leftRec, rightRecord),
				Key:    NewCompositeLookupKey(leftKey, rightKey),
			})
		}
	}
	return out, nil
}

// rightJoinReverse handles a left-branch event under a right outer join:
// the left row is the side that may be unmatched, so an insert or delete
// that crosses a matching right row from zero to one match (or back)
// must retract the right row's null-left placeholder and replace it with
// (or revert it from) the real joined row.
func (o *JoinOperator) rightJoinReverse(action JoinAction, key uint64, leftRecord types.Record, leftKey *JoinLookupKey) ([]JoinRecord, error) {
	rightKeys := o.rightIndex.GetMany(key)
	if len(rightKeys) == 0 {
		return nil, nil
	}

	var out []JoinRecord
	for _, rightKey := range rightKeys {
		rightRecs, err := o.right.Lookup(rightKey)
		if err != nil {
			return nil, err
		}
		for _, rightRec := range rightRecs {
			leftMatchCount := o.leftMatchingCount(action, rightRec)
			joined := joinRecords(leftRecord, rightRec)
			joinKey := NewCompositeLookupKey(leftKey, rightKey)

			if leftMatchCount > 0 {
				out = append(out, JoinRecord{Action: action, Record: joined, Key: joinKey})
				continue
			}

			placeholder := types.FromSchema(o.left.OutputSchema())
			placeholderJoined := joinRecords(placeholder, rightRec)
			placeholderKey := NewCompositeLookupKey(nil, rightKey)

			switch action {
			case JoinInsert:
				out = append(out, JoinRecord{Action: JoinDelete, Record: placeholderJoined, Key: placeholderKey})
				out = append(out, JoinRecord{Action: JoinInsert, Record: joined, Key: joinKey})
			case JoinDelete:
				out = append(out, JoinRecord{Action: JoinDelete, Record: joined, Key: joinKey})
				out = append(out, JoinRecord{Action: JoinInsert, Record: placeholderJoined, Key: placeholderKey})
			}
		}
	}
	return out, nil
}

// leftJoinReverse is rightJoinReverse's mirror image for a right-branch
// event under a left outer join.
func (o *JoinOperator) leftJoinReverse(action JoinAction, key uint64, rightRecord types.Record, rightKey *JoinLookupKey) ([]JoinRecord, error) {
	leftKeys := o.leftIndex.GetMany(key)
	if len(leftKeys) == 0 {
		return nil, nil
	}

	var out []JoinRecord
	for _, leftKey := range leftKeys {
		leftRecs, err := o.left.Lookup(leftKey)
		if err != nil {
			return nil, err
		}
		for _, leftRec := range leftRecs {
			rightMatchCount := o.rightMatchingCount(action, leftRec)
			joined := joinRecords(leftRec, rightRecord)
			joinKey := NewCompositeLookupKey(leftKey, rightKey)

			if rightMatchCount > 0 {
				out = append(out, JoinRecord{Action: action, Record: joined, Key: joinKey})
				continue
			}

			placeholder := types.FromSchema(o.right.OutputSchema())
			placeholderJoined := joinRecords(leftRec, placeholder)
			placeholderKey := NewCompositeLookupKey(leftKey, nil)

			switch action {
			case JoinInsert:
				out = append(out, JoinRecord{Action: JoinDelete, Record: placeholderJoined, Key: placeholderKey})
				out = append(out, JoinRecord{Action: JoinInsert, Record: joined, Key: joinKey})
			case JoinDelete:
				out = append(out, JoinRecord{Action: JoinDelete, Record: joined, Key: joinKey})
				out = append(out, JoinRecord{Action: JoinInsert, Record: placeholderJoined, Key: placeholderKey})
			}
		}
	}
	return out, nil
}

// leftMatchingCount reports how many left rows other than the in-flight
// one match rightRecord's join key. It reads the post-event index count
// (the insert/delete has already been applied to leftIndex by the time
// this runs) and subtracts one on Insert; on Delete the removed row is
// already gone from the count.
func (o *JoinOperator) leftMatchingCount(action JoinAction, rightRecord types.Record) int {
	key := types.HashFields(rightRecord.GetFieldsByIndexes(o.rightJoinKeyIndexes))
	count := o.leftIndex.Count(key)
	if action == JoinInsert {
		count--
	}
	return count
}

func (o *JoinOperator) rightMatchingCount(action JoinAction, leftRecord types.Record) int {
	key := types.HashFields(leftRecord.GetFieldsByIndexes(o.leftJoinKeyIndexes))
	count := o.rightIndex.Count(key)
	if action == JoinInsert {
		count--
	}
	return count
}

// updateLeftIndex keeps leftIndex in sync with the left branch's own
// output. Delete removes exactly the one entry matching value, never
// the whole bucket for key — a bucket holds one entry per live left row
// sharing that join key, and wiping it on a single delete would silently
// drop every other still-live row under that key.
func (o *JoinOperator) updateLeftIndex(action JoinAction, key uint64, value *JoinLookupKey) {
	switch action {
	case JoinInsert:
		o.leftIndex.Put(key, value)
	case JoinDelete:
		o.leftIndex.Remove(key, func(v *JoinLookupKey) bool { return v.Equal(value) })
	}
}

func (o *JoinOperator) updateRightIndex(action JoinAction, key uint64, value *JoinLookupKey) {
	switch action {
	case JoinInsert:
		o.rightIndex.Put(key, value)
	case JoinDelete:
		o.rightIndex.Remove(key, func(v *JoinLookupKey) bool { return v.Equal(value) })
	}
}
