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

// Package log centralizes the logrus configuration every processor logs
// through: one shared logger, a per-instance correlation ID, and the
// level/format knobs config.OperatorConfig exposes.
package log

import (
	"sync"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/streamql/streamql-core/config"
)

var (
	root     = logrus.New()
	initOnce sync.Once
)

// ApplyConfig sets the root logger's level and format from the log
// section of an OperatorConfig. An unparseable level leaves the current
// level in place.
func ApplyConfig(cfg config.LogConfig) {
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		root.SetLevel(lvl)
	}
	if cfg.JSON {
		root.SetFormatter(&logrus.JSONFormatter{})
	} else {
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// NewInstance returns a logger entry scoped to one processor instance,
// tagged with its kind and a fresh correlation ID so interleaved log
// lines from several instances of the same processor kind can be told
// apart.
func NewInstance(kind string) *logrus.Entry {
	initOnce.Do(func() {
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return root.WithField("processor", kind).WithField("instance", uuid.NewV4().String())
}
