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

// Literal always evaluates to the same Field, regardless of the input
// record.
type Literal struct {
	field types.Field
}

func NewLiteral(field types.Field) *Literal {
	return &Literal{field: field}
}

func (l *Literal) Evaluate(types.Record, types.Schema) (types.Field, error) {
	return l.field, nil
}

func (l *Literal) GetType(types.Schema) (ExpressionType, error) {
	return ExpressionType{ReturnType: l.field.Type}, nil
}

func (l *Literal) String() string {
	return fmt.Sprintf("Literal(%s)", l.field)
}

// Column evaluates to the field at a fixed position in the record.
type Column struct {
	Index int
}

func NewColumn(index int) *Column {
	return &Column{Index: index}
}

func (c *Column) Evaluate(record types.Record, _ types.Schema) (types.Field, error) {
	if c.Index < 0 || c.Index >= len(record.Values) {
		return types.Field{}, ErrEval.New(fmt.Sprintf("column index %d out of range (record has %d fields)", c.Index, len(record.Values)))
	}
	return record.Values[c.Index], nil
}

func (c *Column) GetType(schema types.Schema) (ExpressionType, error) {
	if c.Index < 0 || c.Index >= len(schema.Columns) {
		return ExpressionType{}, ErrEval.New(fmt.Sprintf("column index %d out of range (schema has %d columns)", c.Index, len(schema.Columns)))
	}
	col := schema.Columns[c.Index]
	return ExpressionType{ReturnType: col.Type, Nullable: col.Nullable}, nil
}

func (c *Column) String() string {
	return fmt.Sprintf("Column(%d)", c.Index)
}
