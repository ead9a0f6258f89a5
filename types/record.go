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

// Lifetime is an opaque annotation propagated verbatim by the projection
// processor. The aggregation processor does not propagate it.
type Lifetime struct {
	// Reference is left for the scheduler/collaborator that defined the
	// lifetime; the operator core never interprets it.
	Reference uint64
}

// Record is an ordered sequence of Fields. Records carry no identity
// beyond their field sequence.
type Record struct {
	Values   []Field
	Lifetime *Lifetime
}

func NewRecord(values ...Field) Record {
	return Record{Values: values}
}

// FromSchema produces a record with one null field per column, used as the
// placeholder row for the missing side of an outer join.
func FromSchema(schema Schema) Record {
	values := make([]Field, len(schema.Columns))
	for i := range values {
		values[i] = NullField()
	}
	return Record{Values: values}
}

// GetFieldsByIndexes returns the fields at the given positions, preserving
// order. Used to extract a dimension tuple or a join key from a record.
func (r Record) GetFieldsByIndexes(idxs []int) []Field {
	out := make([]Field, len(idxs))
	for i, idx := range idxs {
		out[i] = r.Values[idx]
	}
	return out
}

// SetLifetime attaches a lifetime annotation to the record.
func (r *Record) SetLifetime(l *Lifetime) {
	r.Lifetime = l
}

// Concat returns a new record whose fields are l's followed by r's,
// with no lifetime — used to build a joined row.
func Concat(l, r Record) Record {
	values := make([]Field, 0, len(l.Values)+len(r.Values))
	values = append(values, l.Values...)
	values = append(values, r.Values...)
	return Record{Values: values}
}

// Clone returns a record with its own backing array, since join leaves
// must not alias the caller's slice once stored.
func (r Record) Clone() Record {
	values := make([]Field, len(r.Values))
	copy(values, r.Values)
	return Record{Values: values, Lifetime: r.Lifetime}
}
