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

// Package projection implements the stateless row-evaluator processor.
package projection

import (
	"github.com/sirupsen/logrus"

	"github.com/streamql/streamql-core/core"
	"github.com/streamql/streamql-core/expression"
	"github.com/streamql/streamql-core/log"
	"github.com/streamql/streamql-core/types"
)

// Processor evaluates a fixed list of expressions against every incoming
// row. It carries no per-key state: each event maps to exactly one output
// event of the same kind, with every field recomputed from scratch.
type Processor struct {
	expressions []expression.Expression
	inputSchema types.Schema

	log *logrus.Entry
}

func NewProcessor(expressions []expression.Expression, inputSchema types.Schema) *Processor {
	return &Processor{
		expressions: expressions,
		inputSchema: inputSchema,
		log:         log.NewInstance("projection"),
	}
}

var _ core.Processor = (*Processor)(nil)

func (p *Processor) Commit(core.Epoch) error { return nil }

func (p *Processor) Process(fromPort core.PortHandle, op types.Operation, fw core.Forwarder) error {
	span := core.StartSpan("projection", fromPort)
	defer span.Finish()

	out, err := p.Project(op)
	if err != nil {
		return core.WrapInternal(err)
	}
	return fw.Send(out, core.DefaultPortHandle)
}

// Project evaluates the configured expressions against op's record(s) and
// returns the corresponding output Operation, preserving op's type and
// carrying the input record's lifetime annotation onto the new record.
func (p *Processor) Project(op types.Operation) (types.Operation, error) {
	switch op.Type {
	case types.Insert:
		out, err := p.eval(op.New)
		if err != nil {
			return types.Operation{}, err
		}
		p.log.Trace("insert")
		return types.NewInsert(out), nil
	case types.Delete:
		out, err := p.eval(op.Old)
		if err != nil {
			return types.Operation{}, err
		}
		p.log.Trace("delete")
		return types.NewDelete(out), nil
	case types.Update:
		oldOut, err := p.eval(op.Old)
		if err != nil {
			return types.Operation{}, err
		}
		newOut, err := p.eval(op.New)
		if err != nil {
			return types.Operation{}, err
		}
		p.log.Trace("update")
		return types.NewUpdate(oldOut, newOut), nil
	default:
		return types.Operation{}, expression.ErrEval.New("unknown operation type in projection")
	}
}

func (p *Processor) eval(record types.Record) (types.Record, error) {
	values := make([]types.Field, len(p.expressions))
	for i, expr := range p.expressions {
		f, err := expr.Evaluate(record, p.inputSchema)
		if err != nil {
			return types.Record{}, err
		}
		values[i] = f
	}
	out := types.NewRecord(values...)
	out.SetLifetime(record.Lifetime)
	return out, nil
}
