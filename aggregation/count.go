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

// countAggregator implements COUNT(*)/COUNT(expr): every insert/delete
// changes the running row count by one regardless of the evaluated
// argument fields' values.
type countAggregator struct {
	count int64
}

func (c *countAggregator) Init(types.FieldType) {}

func (c *countAggregator) Insert([]types.Field) (types.Field, error) {
	c.count++
	return types.IntField(c.count), nil
}

func (c *countAggregator) Delete([]types.Field) (types.Field, error) {
	c.count--
	return types.IntField(c.count), nil
}

func (c *countAggregator) Update([]types.Field, []types.Field) (types.Field, error) {
	return types.IntField(c.count), nil
}
