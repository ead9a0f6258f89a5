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

import "github.com/streamql/streamql-core/types"

// minMaxAggregator maintains the full multiset of contributing values,
// keyed by value with a live count, so that deleting the current
// min/max can recompute the next-best value in O(n) instead of losing
// track of it entirely. A Fenwick tree or ordered map would make this
// O(log n); at the scale this library targets (per-group state, not
// per-table), the linear rescan is the simpler and sufficiently fast
// choice.
type minMaxAggregator struct {
	isMin      bool
	returnType types.FieldType
	counts     map[float64]int
}

func (m *minMaxAggregator) Init(returnType types.FieldType) {
	m.returnType = returnType
	m.counts = make(map[float64]int)
}

func (m *minMaxAggregator) field() types.Field {
	if m.returnType == types.Int {
		return types.IntField(int64(m.best()))
	}
	return types.FloatField(m.best())
}

func (m *minMaxAggregator) best() float64 {
	var best float64
	first := true
	for v, c := range m.counts {
		if c <= 0 {
			continue
		}
		if first || (m.isMin && v < best) || (!m.isMin && v > best) {
			best = v
			first = false
		}
	}
	return best
}

func (m *minMaxAggregator) add(v float64) {
	m.counts[v]++
}

func (m *minMaxAggregator) remove(v float64) {
	m.counts[v]--
	if m.counts[v] <= 0 {
		delete(m.counts, v)
	}
}

func (m *minMaxAggregator) Insert(fields []types.Field) (types.Field, error) {
	v, err := argValue(fields)
	if err != nil {
		return types.Field{}, err
	}
	m.add(v)
	return m.field(), nil
}

func (m *minMaxAggregator) Delete(fields []types.Field) (types.Field, error) {
	v, err := argValue(fields)
	if err != nil {
		return types.Field{}, err
	}
	m.remove(v)
	return m.field(), nil
}

// Update folds the old and new contributing values into the running
// multiset directly, in one pass, rather than composing Delete+Insert:
// the multiset only needs one best() scan to reflect both changes, not
// two.
func (m *minMaxAggregator) Update(oldFields, newFields []types.Field) (types.Field, error) {
	ov, err := argValue(oldFields)
	if err != nil {
		return types.Field{}, err
	}
	nv, err := argValue(newFields)
	if err != nil {
		return types.Field{}, err
	}
	m.remove(ov)
	m.add(nv)
	return m.field(), nil
}
