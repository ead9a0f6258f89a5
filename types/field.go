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

// Package types holds the data model shared by every operator: Field,
// Record, Schema and Operation.
package types

import (
	"fmt"
	"time"
)

// FieldType tags the payload carried by a Field.
type FieldType int

const (
	Null FieldType = iota
	Int
	Float
	Decimal
	String
	Binary
	Boolean
	Timestamp
)

func (t FieldType) String() string {
	switch t {
	case Null:
		return "NULL"
	case Int:
		return "INT"
	case Float:
		return "FLOAT"
	case Decimal:
		return "DECIMAL"
	case String:
		return "STRING"
	case Binary:
		return "BINARY"
	case Boolean:
		return "BOOLEAN"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// Field is a tagged value. Equality and hashing are defined by tag+payload;
// two Null fields compare equal for grouping and join-key purposes even
// though SQL tri-valued logic (handled by the expression evaluator, not
// here) would treat them as unknown.
type Field struct {
	Type  FieldType
	Value interface{}
}

func NullField() Field                { return Field{Type: Null} }
func IntField(v int64) Field          { return Field{Type: Int, Value: v} }
func FloatField(v float64) Field      { return Field{Type: Float, Value: v} }
func DecimalField(v string) Field     { return Field{Type: Decimal, Value: v} }
func StringField(v string) Field      { return Field{Type: String, Value: v} }
func BinaryField(v []byte) Field      { return Field{Type: Binary, Value: v} }
func BooleanField(v bool) Field       { return Field{Type: Boolean, Value: v} }
func TimestampField(v time.Time) Field {
	return Field{Type: Timestamp, Value: v}
}

// IsNull reports whether the field carries no value.
func (f Field) IsNull() bool { return f.Type == Null }

// Equal is total and reflexive, except
// that two nulls are always equal to each other.
func (f Field) Equal(other Field) bool {
	if f.Type != other.Type {
		return false
	}
	if f.Type == Null {
		return true
	}
	switch f.Type {
	case Binary:
		a, aok := f.Value.([]byte)
		b, bok := other.Value.([]byte)
		if !aok || !bok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	default:
		return f.Value == other.Value
	}
}

func (f Field) String() string {
	if f.IsNull() {
		return "NULL"
	}
	return fmt.Sprintf("%v", f.Value)
}
