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

// Package core holds the capabilities every processor is built against:
// the Processor/Forwarder contract, port handles, epochs, and the
// ExecutionError wrapper that crosses the processor boundary.
package core

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/streamql/streamql-core/types"
)

// PortHandle identifies an input or output port on a dataflow node.
type PortHandle int32

// DefaultPortHandle is the single output port of a single-output processor.
const DefaultPortHandle PortHandle = -1

// Epoch is the scheduler's checkpoint handle. Commit(epoch) is a no-op
// hook; the operator core does not interpret its contents.
type Epoch struct {
	ID uint64
}

// Forwarder is the capability the scheduler supplies for emitting events.
// Ordering is preserved: events sent within a single Process call are
// observed downstream in the order sent.
type Forwarder interface {
	Send(op types.Operation, port PortHandle) error
}

// Processor is a node in the dataflow graph with one or more typed input
// ports and one output port.
type Processor interface {
	Process(fromPort PortHandle, op types.Operation, fw Forwarder) error
	Commit(epoch Epoch) error
}

// StartSpan opens a span for a single Process call using the globally
// registered opentracing.Tracer (a no-op tracer unless a caller installs
// one via opentracing.SetGlobalTracer). This is pure observability
// scaffolding: it never changes emitted events or errors.
func StartSpan(processorKind string, port PortHandle) opentracing.Span {
	span := opentracing.StartSpan(processorKind + ".process")
	span.SetTag("port", int32(port))
	return span
}
