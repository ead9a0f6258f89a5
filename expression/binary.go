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

package expression

import (
	"fmt"

	"github.com/streamql/streamql-core/types"
)

// BinaryOp is an arithmetic operator over Int/Float fields.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	default:
		return "?"
	}
}

// Arithmetic evaluates Left <op> Right, promoting to Float if either side
// is a Float.
type Arithmetic struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func NewArithmetic(op BinaryOp, left, right Expression) *Arithmetic {
	return &Arithmetic{Op: op, Left: left, Right: right}
}

func (a *Arithmetic) Evaluate(record types.Record, schema types.Schema) (types.Field, error) {
	l, err := a.Left.Evaluate(record, schema)
	if err != nil {
		return types.Field{}, err
	}
	r, err := a.Right.Evaluate(record, schema)
	if err != nil {
		return types.Field{}, err
	}
	if l.IsNull() || r.IsNull() {
		return types.Field{}, ErrEval.New(fmt.Sprintf("arithmetic on null operand in %s", a))
	}

	if l.Type == types.Float || r.Type == types.Float {
		lf, err := asFloat(l)
		if err != nil {
			return types.Field{}, err
		}
		rf, err := asFloat(r)
		if err != nil {
			return types.Field{}, err
		}
		return types.FloatField(applyFloat(a.Op, lf, rf)), nil
	}

	if l.Type != types.Int || r.Type != types.Int {
		return types.Field{}, ErrEval.New(fmt.Sprintf("non-numeric operand in %s", a))
	}
	li := l.Value.(int64)
	ri := r.Value.(int64)
	return types.IntField(applyInt(a.Op, li, ri)), nil
}

func asFloat(f types.Field) (float64, error) {
	switch f.Type {
	case types.Float:
		return f.Value.(float64), nil
	case types.Int:
		return float64(f.Value.(int64)), nil
	default:
		return 0, ErrEval.New(fmt.Sprintf("cannot treat %s as numeric", f.Type))
	}
}

func applyFloat(op BinaryOp, l, r float64) float64 {
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	default:
		return 0
	}
}

func applyInt(op BinaryOp, l, r int64) int64 {
	switch op {
	case Add:
		return l + r
	case Sub:
		return l - r
	case Mul:
		return l * r
	default:
		return 0
	}
}

func (a *Arithmetic) GetType(schema types.Schema) (ExpressionType, error) {
	lt, err := a.Left.GetType(schema)
	if err != nil {
		return ExpressionType{}, err
	}
	rt, err := a.Right.GetType(schema)
	if err != nil {
		return ExpressionType{}, err
	}
	if lt.ReturnType == types.Float || rt.ReturnType == types.Float {
		return ExpressionType{ReturnType: types.Float}, nil
	}
	return ExpressionType{ReturnType: types.Int}, nil
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}
