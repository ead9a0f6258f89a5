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

package join

// Multimap is a generic one-key-to-many-values index keyed by a 64-bit
// hash, backing both a join leaf's record store and a join operator's
// per-side lookup-key index.
//
// Remove deletes exactly one matching entry from a bucket, never the
// whole bucket: a bucket can legitimately hold several values under the
// same key (two distinct rows that hash to the same join key, or two
// equal-content rows in a leaf's record store), and a single Delete event
// must retract exactly one of them.
type Multimap[V any] struct {
	buckets map[uint64][]V
}

func NewMultimap[V any]() *Multimap[V] {
	return &Multimap[V]{buckets: make(map[uint64][]V)}
}

func (m *Multimap[V]) Put(key uint64, value V) {
	m.buckets[key] = append(m.buckets[key], value)
}

// GetMany returns the bucket for key, or nil if empty. The caller must
// not mutate the returned slice.
func (m *Multimap[V]) GetMany(key uint64) []V {
	return m.buckets[key]
}

func (m *Multimap[V]) Count(key uint64) int {
	return len(m.buckets[key])
}

// Remove deletes the first entry in key's bucket for which eq returns
// true, and reports whether one was found.
func (m *Multimap[V]) Remove(key uint64, eq func(V) bool) (V, bool) {
	bucket := m.buckets[key]
	for i, v := range bucket {
		if eq(v) {
			bucket = append(bucket[:i:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(m.buckets, key)
			} else {
				m.buckets[key] = bucket
			}
			return v, true
		}
	}
	var zero V
	return zero, false
}
