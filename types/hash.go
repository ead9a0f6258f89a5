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

package types

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/mitchellh/hashstructure"
)

// HashFields computes a stable, seedless 64-bit hash of a field tuple. It
// backs both the aggregation group-key hash and the join-key hash: both
// need a hash over a short, heterogeneous sequence of Fields,
// which is exactly what hashstructure is built for — no bespoke byte
// encoding required, and the same hash is produced for identical field
// sequences within a process.
func HashFields(fields []Field) uint64 {
	plain := make([]interface{}, len(fields))
	for i, f := range fields {
		plain[i] = fieldHashPayload(f)
	}
	h, err := hashstructure.Hash(plain, nil)
	if err != nil {
		// hashstructure only errors on unsupported payload kinds (channels,
		// funcs); fieldHashPayload never produces one.
		panic(fmt.Sprintf("types: unhashable field tuple: %v", err))
	}
	return h
}

// fieldHashPayload wraps a Field as a plain struct of its type tag and
// payload (only the tag for a null), so hashstructure hashes tag and value
// together. The payload is passed through as stored, not converted.
func fieldHashPayload(f Field) interface{} {
	if f.IsNull() {
		return struct{ Null FieldType }{Null}
	}
	return struct {
		T FieldType
		V interface{}
	}{f.Type, f.Value}
}

// HashRecordContent computes the content-hash used to key a join leaf's
// record store. It uses xxhash over a canonical byte encoding,
// distinct from HashFields's reflection-based tuple hash: a record's full
// value list is exactly the byte stream xxhash wants, with no need to
// lean on reflection for what is, at this point, already a flat sequence
// of typed payloads.
func HashRecordContent(values []Field) uint64 {
	d := xxhash.New()
	for _, f := range values {
		writeFieldBytes(d, f)
	}
	return d.Sum64()
}

func writeFieldBytes(d *xxhash.Digest, f Field) {
	var tagBuf [1]byte
	tagBuf[0] = byte(f.Type)
	_, _ = d.Write(tagBuf[:])
	if f.IsNull() {
		return
	}
	switch f.Type {
	case Int:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(f.Value.(int64)))
		_, _ = d.Write(buf[:])
	case Float:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(f.Value.(float64)*1e9)))
		_, _ = d.Write(buf[:])
	case Boolean:
		if f.Value.(bool) {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
	case Decimal, String:
		_, _ = d.Write([]byte(fmt.Sprint(f.Value)))
	case Binary:
		_, _ = d.Write(f.Value.([]byte))
	case Timestamp:
		_, _ = d.Write([]byte(fmt.Sprint(f.Value)))
	default:
		_, _ = d.Write([]byte(fmt.Sprint(f.Value)))
	}
}
