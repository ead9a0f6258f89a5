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

// Package aggregation implements the per-measure aggregator capability
// and the grouped Aggregation processor.
package aggregation

import (
	"fmt"

	"github.com/streamql/streamql-core/expression"
	"github.com/streamql/streamql-core/types"
)

// AggregatorType names a measure's incremental aggregator kind.
type AggregatorType int

const (
	CountType AggregatorType = iota
	SumType
	AvgType
	MinType
	MaxType
)

func (t AggregatorType) String() string {
	switch t {
	case CountType:
		return "COUNT"
	case SumType:
		return "SUM"
	case AvgType:
		return "AVG"
	case MinType:
		return "MIN"
	case MaxType:
		return "MAX"
	default:
		return fmt.Sprintf("AggregatorType(%d)", int(t))
	}
}

// Aggregator is the per-measure incremental state machine.
// Implementations must be monoidal enough that insert;...;delete of a
// matched pair leaves state equivalent to never having inserted.
type Aggregator interface {
	Init(returnType types.FieldType)
	Insert(fields []types.Field) (types.Field, error)
	Delete(fields []types.Field) (types.Field, error)
	Update(oldFields, newFields []types.Field) (types.Field, error)
}

// FromType constructs a fresh Aggregator for the given type.
func FromType(t AggregatorType) Aggregator {
	switch t {
	case CountType:
		return &countAggregator{}
	case SumType:
		return &sumAggregator{}
	case AvgType:
		return &avgAggregator{}
	case MinType:
		return &minMaxAggregator{isMin: true}
	case MaxType:
		return &minMaxAggregator{isMin: false}
	default:
		panic(fmt.Sprintf("aggregation: unknown aggregator type %v", t))
	}
}

// measureCall is the expression.Expression shape recognized by
// TypeFromExpression: a named aggregate function applied to argument
// expressions, e.g. SUM(b) -> measureCall{Name: "SUM", Args: [Column(1)]}.
// A production expression compiler would recognize its own call-node type;
// this is the minimal shape a planner needs to produce.
type measureCall struct {
	Name string
	Args []expression.Expression
}

func NewMeasureCall(name string, args ...expression.Expression) expression.Expression {
	return &measureCall{Name: name, Args: args}
}

func (m *measureCall) Evaluate(types.Record, types.Schema) (types.Field, error) {
	return types.Field{}, expression.ErrEval.New("measure call expressions are not directly evaluable; they are unpacked by TypeFromExpression")
}

func (m *measureCall) GetType(schema types.Schema) (expression.ExpressionType, error) {
	if len(m.Args) == 0 {
		return expression.ExpressionType{ReturnType: types.Int}, nil
	}
	return m.Args[0].GetType(schema)
}

func (m *measureCall) String() string {
	return m.Name + "(...)"
}

// TypeFromExpression unpacks a measure expression into its aggregator
// type and argument expressions.
func TypeFromExpression(expr expression.Expression, _ types.Schema) (AggregatorType, []expression.Expression, error) {
	call, ok := expr.(*measureCall)
	if !ok {
		return 0, nil, expression.ErrEval.New(fmt.Sprintf("expression %s is not a recognized aggregate call", expr))
	}
	switch call.Name {
	case "COUNT":
		return CountType, call.Args, nil
	case "SUM":
		return SumType, call.Args, nil
	case "AVG":
		return AvgType, call.Args, nil
	case "MIN":
		return MinType, call.Args, nil
	case "MAX":
		return MaxType, call.Args, nil
	default:
		return 0, nil, expression.ErrEval.New(fmt.Sprintf("unknown aggregate function %q", call.Name))
	}
}
