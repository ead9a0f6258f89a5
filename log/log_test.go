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

package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/streamql/streamql-core/config"
)

func TestNewInstanceTagsProcessorAndInstance(t *testing.T) {
	e1 := NewInstance("aggregation")
	e2 := NewInstance("aggregation")

	require.Equal(t, "aggregation", e1.Data["processor"])
	require.NotEqual(t, e1.Data["instance"], e2.Data["instance"])
}

func TestApplyConfigSetsLevel(t *testing.T) {
	ApplyConfig(config.LogConfig{Level: "warn"})
	require.Equal(t, logrus.WarnLevel, root.GetLevel())

	ApplyConfig(config.LogConfig{Level: "not-a-level"})
	require.Equal(t, logrus.WarnLevel, root.GetLevel())
}
