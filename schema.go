// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package avro

import (
	"encoding/json"
	"fmt"
)

// Schema is a compiled Avro schema: the named-type registry it populated
// and the root Codec compiled from the top-level type. It is the external
// interface component H names (parse once, encode/decode many times).
type Schema struct {
	opts Options
	reg  *registry
	root *Codec
}

// Parse compiles source — a JSON document string, or an already-decoded
// generic value (string/map[string]interface{}/[]interface{}, as
// produced by encoding/json.Unmarshal into interface{}) — into a Schema.
//
// Grounded on hamba/avro's schema_parse.go top-level Parse/ParseBytes
// entry points, adapted to this module's function-field Codec and
// registry types rather than hamba's reflection-driven type graph.
func Parse(source interface{}, opts ...OptionFunc) (*Schema, error) {
	o := NewOptions(opts...)

	var decoded interface{}
	switch v := source.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil, newSchemaParseErr(SubUnknownType, "cannot parse schema JSON: %s", err)
		}
	case []byte:
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, newSchemaParseErr(SubUnknownType, "cannot parse schema JSON: %s", err)
		}
	default:
		decoded = source
	}

	reg := newRegistry(o)
	cb := &codecBuilder{reg: reg, opts: o}

	root, err := buildCodec(nullNamespace, decoded, cb)
	if err != nil {
		return nil, err
	}

	root.schemaCanonical = canonicalForm(root)
	for _, fullName := range reg.names() {
		if c, ok := reg.get(fullName); ok && c.schemaCanonical == "" {
			c.schemaCanonical = canonicalForm(c)
		}
	}

	return &Schema{opts: o, reg: reg, root: root}, nil
}

// MustParse is like Parse but panics on error, for schemas fixed at
// compile time (e.g. the ocf package's container file header schema).
func MustParse(source interface{}, opts ...OptionFunc) *Schema {
	s, err := Parse(source, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewCodec is a convenience entry point mirroring goavro's long-standing
// NewCodec(jsonSchema string, ...) signature: parse a schema and return
// just its root Codec, for callers that only need one compiled type and
// don't care about the rest of the named-type registry.
func NewCodec(schemaJSON string, opts ...OptionFunc) (*Codec, error) {
	s, err := Parse(schemaJSON, opts...)
	if err != nil {
		return nil, err
	}
	return s.root, nil
}

// Root returns the Codec compiled from the schema's top-level type.
func (s *Schema) Root() *Codec { return s.root }

// NamedTypes returns the fully qualified names of every named type
// (record, enum, fixed) registered while compiling this schema, in a
// stable (sorted) order.
func (s *Schema) NamedTypes() []string {
	var named []string
	for _, fullName := range s.reg.names() {
		if c, ok := s.reg.get(fullName); ok && (c.Typ == TypeRecord || c.Typ == TypeEnum || c.Typ == TypeFixed) {
			named = append(named, fullName)
		}
	}
	return sortedNames(named)
}

// NamedType looks up a named type registered during compilation, e.g. to
// encode/decode a value whose type is buried inside a union or wasn't the
// schema's top-level type.
func (s *Schema) NamedType(fullName string) (*Codec, bool) {
	return s.reg.get(fullName)
}

// CanonicalForm returns the schema's Parsing Canonical Form.
func (s *Schema) CanonicalForm() string {
	return s.root.schemaCanonical
}

// Fingerprint computes a fingerprint of the schema's Parsing Canonical
// Form using the named algorithm ("", "rabin", "md5", or "sha256"). Per
// the fingerprint_returns_digest option, the result is raw digest bytes
// by default; with that option disabled, a "" or "rabin" fingerprint is
// returned instead as its little-endian uint64 integer value, matching
// the Avro spec's own CRC-64-AVRO definition.
func (s *Schema) Fingerprint(algorithm string) (interface{}, error) {
	digest, err := fingerprintBytes(s.root.schemaCanonical, algorithm)
	if err != nil {
		return nil, err
	}
	if !s.opts.FingerprintReturnsDigest && (algorithm == "" || algorithm == "rabin") {
		var v uint64
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(digest[i])
		}
		return v, nil
	}
	return digest, nil
}

// BinaryFromNative encodes datum as Avro binary using the schema's root
// type, per component A/H.
func (s *Schema) BinaryFromNative(buf []byte, datum interface{}) ([]byte, error) {
	return s.root.BinaryFromNative(buf, datum)
}

// NativeFromBinary decodes one Avro binary value using the schema's root
// type, returning the decoded value and the unconsumed remainder of buf.
func (s *Schema) NativeFromBinary(buf []byte) (interface{}, []byte, error) {
	return s.root.NativeFromBinary(buf)
}

// TextualFromNative encodes datum as Avro JSON using the schema's root
// type.
func (s *Schema) TextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	return s.root.TextualFromNative(buf, datum)
}

// NativeFromTextual decodes one Avro JSON value using the schema's root
// type.
func (s *Schema) NativeFromTextual(buf []byte) (interface{}, []byte, error) {
	return s.root.NativeFromTextual(buf)
}

func (s *Schema) String() string {
	return fmt.Sprintf("Schema(%s)", s.root.FullName())
}
