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

package types

// Column is a single typed column descriptor.
type Column struct {
	Name     string
	Type     FieldType
	Nullable bool
}

// Schema is an ordered list of column descriptors. It is consumed by the
// expression evaluator and by FromSchema, which sizes an outer join's null
// placeholder row from it; processors otherwise treat Records as opaque
// field sequences.
type Schema struct {
	Columns []Column
}

func NewSchema(columns ...Column) Schema {
	return Schema{Columns: columns}
}

func (s Schema) Len() int { return len(s.Columns) }

// Concat returns a new schema whose columns are s's followed by other's,
// used to build the output schema of a join or an aggregation view.
func (s Schema) Concat(other Schema) Schema {
	out := make([]Column, 0, len(s.Columns)+len(other.Columns))
	out = append(out, s.Columns...)
	out = append(out, other.Columns...)
	return Schema{Columns: out}
}
