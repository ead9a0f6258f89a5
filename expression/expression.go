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

// Package expression defines the evaluator contract the three operators
// consume, along with a small reference implementation (literal, column
// reference, binary arithmetic) sufficient to drive scenario tests. A
// production deployment supplies its own compiled Expression
// implementations; the operators never depend on this package's concrete
// types, only on the Expression interface.
package expression

import (
	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/streamql/streamql-core/types"
)

// ErrEval is returned by Evaluate on any evaluation failure (type
// mismatch, null arithmetic, invalid index). Evaluation errors propagate
// out of the operator, wrapped by core.WrapInternal at Process, and are
// fatal to the current event.
var ErrEval = goerrors.NewKind("evaluation error: %s")

// ExpressionType describes what an expression evaluates to.
type ExpressionType struct {
	ReturnType types.FieldType
	Nullable   bool
}

// Expression is the pure function (Record, Schema) -> Field consumed by
// every processor.
type Expression interface {
	Evaluate(record types.Record, schema types.Schema) (types.Field, error)
	GetType(schema types.Schema) (ExpressionType, error)
	String() string
}
