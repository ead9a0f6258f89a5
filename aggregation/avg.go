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

// avgAggregator tracks a running sum and count, dividing on read. This
// keeps delete/update O(1) without having to remember every contributing
// value (unlike minMaxAggregator, the average of a multiset needs only
// its sum and size, not the whole multiset).
type avgAggregator struct {
	sum   float64
	count int64
}

func (a *avgAggregator) Init(types.FieldType) {}

func (a *avgAggregator) value() types.Field {
	if a.count == 0 {
		return types.FloatField(0)
	}
	return types.FloatField(a.sum / float64(a.count))
}

func (a *avgAggregator) Insert(fields []types.Field) (types.Field, error) {
	v, err := argValue(fields)
	if err != nil {
		return types.Field{}, err
	}
	a.sum += v
	a.count++
	return a.value(), nil
}

func (a *avgAggregator) Delete(fields []types.Field) (types.Field, error) {
	v, err := argValue(fields)
	if err != nil {
		return types.Field{}, err
	}
	a.sum -= v
	a.count--
	return a.value(), nil
}

func (a *avgAggregator) Update(oldFields, newFields []types.Field) (types.Field, error) {
	ov, err := argValue(oldFields)
	if err != nil {
		return types.Field{}, err
	}
	nv, err := argValue(newFields)
	if err != nil {
		return types.Field{}, err
	}
	a.sum += nv - ov
	return a.value(), nil
}
