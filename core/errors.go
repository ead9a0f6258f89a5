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

package core

import (
	"github.com/pkg/errors"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrInternal is the ExecutionError surfaced to the scheduler whenever a
// PipelineError or JoinError crosses the processor boundary.
var ErrInternal = goerrors.NewKind("internal error: %s")

// WrapInternal wraps an aggregation/join-side error as an ExecutionError,
// keeping the original error's message in the wrapped chain so the
// call-site trail pkg/errors records survives alongside the typed kind.
func WrapInternal(cause error) error {
	if cause == nil {
		return nil
	}
	return errors.Wrap(ErrInternal.New(cause.Error()), "execution")
}
