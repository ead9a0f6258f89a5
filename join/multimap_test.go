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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultimapPutAndGetMany(t *testing.T) {
	m := NewMultimap[string]()
	m.Put(1, "a")
	m.Put(1, "b")
	m.Put(2, "c")

	require.ElementsMatch(t, []string{"a", "b"}, m.GetMany(1))
	require.Equal(t, 2, m.Count(1))
	require.Equal(t, 1, m.Count(2))
	require.Equal(t, 0, m.Count(3))
}

// TestMultimapRemoveOnlyRemovesOneEntry is the direct regression test for
// the bug fix: removing one value sharing a key with another live value
// must leave the other value's bucket entry intact.
func TestMultimapRemoveOnlyRemovesOneEntry(t *testing.T) {
	m := NewMultimap[string]()
	m.Put(1, "a")
	m.Put(1, "b")

	v, ok := m.Remove(1, func(s string) bool { return s == "a" })
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Equal(t, []string{"b"}, m.GetMany(1))
	require.Equal(t, 1, m.Count(1))

	_, ok = m.Remove(1, func(s string) bool { return s == "a" })
	require.False(t, ok)

	v, ok = m.Remove(1, func(s string) bool { return s == "b" })
	require.True(t, ok)
	require.Equal(t, "b", v)
	require.Equal(t, 0, m.Count(1))
	require.Nil(t, m.GetMany(1))
}
