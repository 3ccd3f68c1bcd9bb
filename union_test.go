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
	"testing"
)

type colors struct {
	val string
}

func (c colors) Str() string { return c.val }

func TestUnionTwoMembers(t *testing.T) {
	testBinaryCodecPass(t, `["null","int"]`, nil, []byte("\x00"))
	testBinaryCodecPass(t, `["null","int"]`, int32(3), []byte("\x02\x06"))
	testBinaryCodecPass(t, `["null","long"]`, int64(3), []byte("\x02\x06"))
}

func TestUnionPromotesIntToLong(t *testing.T) {
	// a bare int32 datum against a union declaring only "long" promotes.
	testBinaryEncodePass(t, `["null","long"]`, int32(3), []byte("\x02\x06"))
}

func TestUnionArbitraryArity(t *testing.T) {
	schema := `["null","boolean","int","long","float","double","bytes","string"]`
	testBinaryCodecPass(t, schema, nil, []byte{0})
	testBinaryCodecPass(t, schema, true, []byte{2, 1})
	testBinaryCodecPass(t, schema, int32(3), []byte{4, 6})
	testBinaryCodecPass(t, schema, "hi", []byte{14, 4, 'h', 'i'})

	c, err := NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}
	big := int64(1) << 40
	buf, err := c.BinaryFromNative(nil, big)
	if err != nil {
		t.Fatal(err)
	}
	value, rest, err := c.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("GOT: %d bytes remaining; WANT: 0", len(rest))
	}
	if value != big {
		t.Errorf("GOT: %v; WANT: %v", value, big)
	}
}

func TestUnionDuplicateCategoryRejected(t *testing.T) {
	_, err := NewCodec(`["string","string"]`)
	ensureError(t, err, "duplicate category")
}

func TestUnionEnumDispatch(t *testing.T) {
	schema := `["null", {"type":"enum","name":"colors","symbols":["red","green","blue"]}]`
	testBinaryCodecPass(t, schema, "green", []byte{2, 2})
}

func TestUnionEnumDispatchViaAvroEnum(t *testing.T) {
	schema := `["null", {"type":"enum","name":"colors","symbols":["red","green","blue"]}]`
	testBinaryEncodePass(t, schema, colors{"green"}, []byte{2, 2})
}

func TestUnionEncodeFailsOnUnknownSymbol(t *testing.T) {
	schema := `["null", {"type":"enum","name":"colors","symbols":["red","green","blue"]}]`
	testBinaryEncodeFail(t, schema, "brown", "no member schema types support datum")
}

func TestUnionRecordDispatchByStructuralMatch(t *testing.T) {
	schema := `[
		{"type":"record","name":"Cat","fields":[{"name":"lives","type":"int"}]},
		{"type":"record","name":"Dog","fields":[{"name":"breed","type":"string"}]}
	]`
	c, err := NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := c.BinaryFromNative(nil, map[string]interface{}{"breed": "terrier"})
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := c.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := value.(*Record)
	if !ok {
		t.Fatalf("GOT: %T; WANT: *Record", value)
	}
	if rec.Codec().FullName() != "Dog" {
		t.Errorf("GOT: %s; WANT: Dog", rec.Codec().FullName())
	}
}

func TestUnionTupleNotation(t *testing.T) {
	schema := `[
		{"type":"record","name":"Cat","fields":[{"name":"lives","type":"int"}]},
		{"type":"record","name":"Dog","fields":[{"name":"breed","type":"string"}]}
	]`
	c, err := NewCodec(schema, WithAllowTupleNotation(true))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := c.BinaryFromNative(nil, map[string]interface{}{"Cat": map[string]interface{}{"lives": int32(9)}})
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := c.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	rec := value.(*Record)
	if rec.Codec().FullName() != "Cat" {
		t.Errorf("GOT: %s; WANT: Cat", rec.Codec().FullName())
	}
}

func TestUnionAmbiguousStructuralMatchFails(t *testing.T) {
	schema := `[
		{"type":"record","name":"A","fields":[{"name":"x","type":"int"}]},
		{"type":"record","name":"B","fields":[{"name":"x","type":"int"}]}
	]`
	testBinaryEncodeFail(t, schema, map[string]interface{}{"x": int32(1)}, "more than one record member")
}

func TestUnionNoMatchFails(t *testing.T) {
	testBinaryEncodeFail(t, `["null","int"]`, "a string", "no member schema types support datum")
}
