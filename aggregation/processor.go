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

import (
	"github.com/sirupsen/logrus"

	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/expression"
	"github.com/streamql/streamql-core/log"
	"github.com/streamql/streamql-core/types"
)

const defaultSegmentKeySentinel = "STREAMQL_DEFAULT_SEGMENT_KEY"

// Measure is one declared aggregate expression: its argument expressions
// (evaluated against the input schema) and the aggregator type to drive
// with them.
type Measure struct {
	Args       []expression.Expression
	Type       AggregatorType
	ReturnType types.FieldType
}

// NewMeasureFromExpression is the constructor a planner uses to turn a
// parsed measure expression into a Measure, unpacking it via
// TypeFromExpression, the aggregator factory.
func NewMeasureFromExpression(expr expression.Expression, inputSchema types.Schema) (Measure, error) {
	aggrType, args, err := TypeFromExpression(expr, inputSchema)
	if err != nil {
		return Measure{}, err
	}
	retType, err := expr.GetType(inputSchema)
	if err != nil {
		return Measure{}, err
	}
	return Measure{Args: args, Type: aggrType, ReturnType: retType.ReturnType}, nil
}

// groupState is the per-group aggregation state: count of live input
// rows, one Aggregator per measure, and the last emitted measure values.
type groupState struct {
	count  uint64
	states []Aggregator
	values []types.Field // nil until the first successful insert
}

func newGroupState(measures []Measure) *groupState {
	states := make([]Aggregator, len(measures))
	for i, m := range measures {
		a := FromType(m.Type)
		a.Init(m.ReturnType)
		states[i] = a
	}
	return &groupState{states: states}
}

// aggregatorOp is the internal tri-state shared by calcAndFillMeasures so
// a single helper drives insert, delete and update instead of three
// near-duplicate loops.
type aggregatorOp int

const (
	opInsert aggregatorOp = iota
	opDelete
	opUpdate
)

// Processor is the grouped multi-aggregate processor.
type Processor struct {
	dimensions        []expression.Expression
	measures          []Measure
	projections       []expression.Expression
	inputSchema       types.Schema
	aggregationSchema types.Schema

	groups            map[uint64]*groupState
	defaultSegmentKey uint64

	log *logrus.Entry
}

func NewProcessor(
	dimensions []expression.Expression,
	measures []Measure,
	projections []expression.Expression,
	inputSchema types.Schema,
	aggregationSchema types.Schema,
) *Processor {
	return &Processor{
		dimensions:        dimensions,
		measures:          measures,
		projections:       projections,
		inputSchema:       inputSchema,
		aggregationSchema: aggregationSchema,
		groups:            make(map[uint64]*groupState),
		defaultSegmentKey: types.HashFields([]types.Field{types.StringField(defaultSegmentKeySentinel)}),
		log:               log.NewInstance("aggregation"),
	}
}

var _ core.Processor = (*Processor)(nil)

func (p *Processor) Commit(core.Epoch) error { return nil }

func (p *Processor) Process(fromPort core.PortHandle, op types.Operation, fw core.Forwarder) error {
	span := core.StartSpan("aggregation", fromPort)
	defer span.Finish()

	ops, err := p.Aggregate(op)
	if err != nil {
		return core.WrapInternal(err)
	}
	for _, o := range ops {
		if err := fw.Send(o, core.DefaultPortHandle); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate dispatches a single input Operation to the group table and
// returns the Operations it produces. It is the pure core of Process,
// kept separate so tests can exercise it without a Forwarder.
func (p *Processor) Aggregate(op types.Operation) ([]types.Operation, error) {
	switch op.Type {
	case types.Insert:
		out, err := p.aggInsert(op.New)
		if err != nil {
			return nil, err
		}
		return []types.Operation{out}, nil
	case types.Delete:
		out, err := p.aggDelete(op.Old)
		if err != nil {
			return nil, err
		}
		return []types.Operation{out}, nil
	case types.Update:
		oldKey, err := p.key(op.Old)
		if err != nil {
			return nil, err
		}
		newKey, err := p.key(op.New)
		if err != nil {
			return nil, err
		}
		if oldKey == newKey {
			out, err := p.aggUpdate(op.Old, op.New, oldKey)
			if err != nil {
				return nil, err
			}
			return []types.Operation{out}, nil
		}
		del, err := p.aggDelete(op.Old)
		if err != nil {
			return nil, err
		}
		ins, err := p.aggInsert(op.New)
		if err != nil {
			return nil, err
		}
		return []types.Operation{del, ins}, nil
	default:
		return nil, ErrGroupNotFound.New(0, "unknown operation type")
	}
}

func (p *Processor) key(record types.Record) (uint64, error) {
	if len(p.dimensions) == 0 {
		return p.defaultSegmentKey, nil
	}
	fields := make([]types.Field, len(p.dimensions))
	for i, dim := range p.dimensions {
		f, err := dim.Evaluate(record, p.inputSchema)
		if err != nil {
			return 0, err
		}
		fields[i] = f
	}
	return types.HashFields(fields), nil
}

func (p *Processor) aggInsert(newRecord types.Record) (types.Operation, error) {
	key, err := p.key(newRecord)
	if err != nil {
		return types.Operation{}, err
	}
	state, ok := p.groups[key]
	if !ok {
		state = newGroupState(p.measures)
		p.groups[key] = state
	}

	outDelete := make([]types.Field, 0, len(p.measures))
	outInsert := make([]types.Field, 0, len(p.measures))
	newValues, err := p.calcAndFillMeasures(state, nil, &newRecord, &outDelete, &outInsert, opInsert)
	if err != nil {
		return types.Operation{}, err
	}

	var result types.Operation
	if state.count == 0 {
		proj, err := p.buildProjection(newRecord, outInsert)
		if err != nil {
			return types.Operation{}, err
		}
		result = types.NewInsert(proj)
	} else {
		newProj, err := p.buildProjection(newRecord, outInsert)
		if err != nil {
			return types.Operation{}, err
		}
		oldProj, err := p.buildProjection(newRecord, outDelete)
		if err != nil {
			return types.Operation{}, err
		}
		result = types.NewUpdate(oldProj, newProj)
	}

	state.count++
	state.values = newValues
	p.log.WithField("key", key).WithField("count", state.count).Trace("insert")
	return result, nil
}

func (p *Processor) aggDelete(oldRecord types.Record) (types.Operation, error) {
	key, err := p.key(oldRecord)
	if err != nil {
		return types.Operation{}, err
	}
	state, ok := p.groups[key]
	if !ok {
		return types.Operation{}, ErrGroupNotFound.New(key, "DELETE")
	}

	outDelete := make([]types.Field, 0, len(p.measures))
	outInsert := make([]types.Field, 0, len(p.measures))
	newValues, err := p.calcAndFillMeasures(state, &oldRecord, nil, &outDelete, &outInsert, opDelete)
	if err != nil {
		return types.Operation{}, err
	}

	var result types.Operation
	if state.count == 1 {
		delete(p.groups, key)
		oldProj, err := p.buildProjection(oldRecord, outDelete)
		if err != nil {
			return types.Operation{}, err
		}
		result = types.NewDelete(oldProj)
	} else {
		state.count--
		state.values = newValues
		newProj, err := p.buildProjection(oldRecord, outInsert)
		if err != nil {
			return types.Operation{}, err
		}
		oldProj, err := p.buildProjection(oldRecord, outDelete)
		if err != nil {
			return types.Operation{}, err
		}
		result = types.NewUpdate(oldProj, newProj)
	}
	p.log.WithField("key", key).Trace("delete")
	return result, nil
}

func (p *Processor) aggUpdate(oldRecord, newRecord types.Record, key uint64) (types.Operation, error) {
	state, ok := p.groups[key]
	if !ok {
		return types.Operation{}, ErrGroupNotFound.New(key, "UPDATE")
	}

	outDelete := make([]types.Field, 0, len(p.measures))
	outInsert := make([]types.Field, 0, len(p.measures))
	newValues, err := p.calcAndFillMeasures(state, &oldRecord, &newRecord, &outDelete, &outInsert, opUpdate)
	if err != nil {
		return types.Operation{}, err
	}

	newProj, err := p.buildProjection(newRecord, outInsert)
	if err != nil {
		return types.Operation{}, err
	}
	oldProj, err := p.buildProjection(oldRecord, outDelete)
	if err != nil {
		return types.Operation{}, err
	}
	state.values = newValues
	p.log.WithField("key", key).Trace("update")
	return types.NewUpdate(oldProj, newProj), nil
}

// calcAndFillMeasures runs every measure's aggregator through op, appending
// the prior value (when one exists) to outDelete and the new value to
// outInsert, in measure-declaration order. It returns the full new value
// vector, which becomes the group's next state.values.
func (p *Processor) calcAndFillMeasures(
	state *groupState,
	deletedRecord, insertedRecord *types.Record,
	outDelete, outInsert *[]types.Field,
	op aggregatorOp,
) ([]types.Field, error) {
	newFields := make([]types.Field, 0, len(p.measures))

	for idx, measure := range p.measures {
		aggr := state.states[idx]
		var priorVal *types.Field
		if state.values != nil {
			priorVal = &state.values[idx]
		}

		var newVal types.Field
		var err error
		switch op {
		case opInsert:
			args, evalErr := evalArgs(measure.Args, *insertedRecord, p.inputSchema)
			if evalErr != nil {
				return nil, evalErr
			}
			if priorVal != nil {
				*outDelete = append(*outDelete, *priorVal)
			}
			newVal, err = aggr.Insert(args)
		case opDelete:
			args, evalErr := evalArgs(measure.Args, *deletedRecord, p.inputSchema)
			if evalErr != nil {
				return nil, evalErr
			}
			if priorVal != nil {
				*outDelete = append(*outDelete, *priorVal)
			}
			newVal, err = aggr.Delete(args)
		case opUpdate:
			oldArgs, evalErr := evalArgs(measure.Args, *deletedRecord, p.inputSchema)
			if evalErr != nil {
				return nil, evalErr
			}
			newArgs, evalErr := evalArgs(measure.Args, *insertedRecord, p.inputSchema)
			if evalErr != nil {
				return nil, evalErr
			}
			if priorVal != nil {
				*outDelete = append(*outDelete, *priorVal)
			}
			newVal, err = aggr.Update(oldArgs, newArgs)
		}
		if err != nil {
			return nil, err
		}

		*outInsert = append(*outInsert, newVal)
		newFields = append(newFields, newVal)
	}
	return newFields, nil
}

func evalArgs(args []expression.Expression, record types.Record, schema types.Schema) ([]types.Field, error) {
	out := make([]types.Field, len(args))
	for i, arg := range args {
		f, err := arg.Evaluate(record, schema)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// concatView evaluates projections over a logical concatenation of the
// original record's fields and the newly computed measure fields, without
// mutating the caller's Record.
type concatView struct {
	base     []types.Field
	measures []types.Field
}

func (p *Processor) buildProjection(original types.Record, measures []types.Field) (types.Record, error) {
	view := concatView{base: original.Values, measures: measures}
	out := make([]types.Field, len(p.projections))
	for i, proj := range p.projections {
		f, err := proj.Evaluate(viewRecord(view), p.aggregationSchema)
		if err != nil {
			return types.Record{}, err
		}
		out[i] = f
	}
	return types.NewRecord(out...), nil
}

// viewRecord materializes a concatView as a types.Record for expressions
// that only read Record.Values by index (Column, Arithmetic, ...). It
// still allocates one slice, but never touches original's backing array.
func viewRecord(v concatView) types.Record {
	values := make([]types.Field, len(v.base)+len(v.measures))
	copy(values, v.base)
	copy(values[len(v.base):], v.measures)
	return types.Record{Values: values}
}
