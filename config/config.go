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

// Package config loads the operator-wide settings a deployment tunes
// without recompiling: log level/format and a tracing on/off switch.
// None of it changes operator semantics. The tracing switch is only
// carried in the document; core.StartSpan does not read it.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// OperatorConfig is the top-level TOML document shape, e.g.:
//
//	[log]
//	level = "trace"
//	json = false
//
//	[tracing]
//	enabled = false
type OperatorConfig struct {
	Log     LogConfig     `toml:"log"`
	Tracing TracingConfig `toml:"tracing"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type TracingConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no file is supplied: info
// level, text formatting, tracing off.
func Default() OperatorConfig {
	return OperatorConfig{Log: LogConfig{Level: "info", JSON: false}}
}

// LoadFile parses a TOML document at path into an OperatorConfig, layered
// over Default so a file only needs to set the fields it overrides.
func LoadFile(path string) (OperatorConfig, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return OperatorConfig{}, errors.Wrap(err, "config: decode")
	}
	return cfg, nil
}
