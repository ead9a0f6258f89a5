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
	"github.com/spf13/cast"

	"github.com/streamql/streamql-core/types"
)

// sumAggregator accumulates a running sum. Measures may carry Int, Float
// or Decimal fields interchangeably, so every argument is coerced via
// spf13/cast before being folded in.
type sumAggregator struct {
	sum        float64
	returnType types.FieldType
}

func (s *sumAggregator) Init(returnType types.FieldType) {
	s.returnType = returnType
}

func (s *sumAggregator) field() types.Field {
	if s.returnType == types.Int {
		return types.IntField(int64(s.sum))
	}
	return types.FloatField(s.sum)
}

func (s *sumAggregator) Insert(fields []types.Field) (types.Field, error) {
	v, err := argValue(fields)
	if err != nil {
		return types.Field{}, err
	}
	s.sum += v
	return s.field(), nil
}

func (s *sumAggregator) Delete(fields []types.Field) (types.Field, error) {
	v, err := argValue(fields)
	if err != nil {
		return types.Field{}, err
	}
	s.sum -= v
	return s.field(), nil
}

func (s *sumAggregator) Update(oldFields, newFields []types.Field) (types.Field, error) {
	ov, err := argValue(oldFields)
	if err != nil {
		return types.Field{}, err
	}
	nv, err := argValue(newFields)
	if err != nil {
		return types.Field{}, err
	}
	s.sum += nv - ov
	return s.field(), nil
}

// argValue coerces the first (and for Sum/Avg/Min/Max, only) argument
// field to float64, treating a null argument as zero contribution.
func argValue(fields []types.Field) (float64, error) {
	if len(fields) == 0 || fields[0].IsNull() {
		return 0, nil
	}
	return cast.ToFloat64E(fields[0].Value)
}
