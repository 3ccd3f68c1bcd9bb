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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/mohae/deepcopy"
)

var morePositiveThanMaxBlockCount, morePositiveThanMaxBlockSize, moreNegativeThanMaxBlockCount, mostNegativeBlockCount []byte

func init() {
	c, err := NewCodec(`"long"`)
	if err != nil {
		panic(err)
	}

	morePositiveThanMaxBlockCount, err = c.BinaryFromNative(nil, int64(MaxBlockCount+1))
	if err != nil {
		panic(err)
	}

	morePositiveThanMaxBlockSize, err = c.BinaryFromNative(nil, int64(MaxBlockSize+1))
	if err != nil {
		panic(err)
	}

	moreNegativeThanMaxBlockCount, err = c.BinaryFromNative(nil, -int64(MaxBlockCount+1))
	if err != nil {
		panic(err)
	}

	mostNegativeBlockCount, err = c.BinaryFromNative(nil, int64(math.MinInt64))
	if err != nil {
		panic(err)
	}
}

// ensureError checks that err is non-nil and its message contains every
// substring in contains.
func ensureError(t *testing.T, err error, contains ...string) {
	t.Helper()
	if err == nil {
		if len(contains) > 0 {
			t.Fatalf("GOT: %v; WANT: error containing %q", err, contains)
		}
		return
	}
	if len(contains) == 0 {
		t.Fatalf("GOT: %v; WANT: no error", err)
	}
	for _, c := range contains {
		if !strings.Contains(err.Error(), c) {
			t.Errorf("GOT: %v; WANT: error containing %q", err, c)
		}
	}
}

func testBinaryDecodeFail(t *testing.T, schema string, buf []byte, errorMessage string) {
	t.Helper()
	c, err := NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}
	value, newBuffer, err := c.NativeFromBinary(buf)
	ensureError(t, err, errorMessage)
	if value != nil {
		t.Errorf("GOT: %v; WANT: %v", value, nil)
	}
	if !bytes.Equal(buf, newBuffer) {
		t.Errorf("GOT: %v; WANT: %v", newBuffer, buf)
	}
}

func testBinaryEncodeFail(t *testing.T, schema string, datum interface{}, errorMessage string) {
	t.Helper()
	c, err := NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := c.BinaryFromNative(nil, datum)
	ensureError(t, err, errorMessage)
	if buf != nil {
		t.Errorf("GOT: %v; WANT: %v", buf, nil)
	}
}

func testBinaryEncodeFailBadDatumType(t *testing.T, schema string, datum interface{}) {
	t.Helper()
	testBinaryEncodeFail(t, schema, datum, "received: ")
}

func testBinaryDecodeFailShortBuffer(t *testing.T, schema string, buf []byte) {
	t.Helper()
	testBinaryDecodeFail(t, schema, buf, "short buffer")
}

func testBinaryDecodePass(t *testing.T, schema string, datum interface{}, encoded []byte) {
	t.Helper()
	codec, err := NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}

	value, remaining, err := codec.NativeFromBinary(encoded)
	if err != nil {
		t.Fatalf("schema: %s; %s", schema, err)
	}

	if actual, expected := len(remaining), 0; actual != expected {
		t.Errorf("schema: %s; Datum: %v; Actual: %#v; Expected: %#v", schema, datum, actual, expected)
	}

	datumCopy := deepcopy.Copy(datum)

	if reflect.DeepEqual(value, datumCopy) {
		return
	}

	actual := fmt.Sprintf("%v", value)

	if value != nil {
		if reflect.TypeOf(value).Kind() == reflect.Ptr {
			var concreteValue interface{}
			if reflect.ValueOf(value).IsNil() {
				concreteValue = nil
			} else {
				concreteValue = reflect.Indirect(reflect.ValueOf(value)).Interface()
			}
			actual = fmt.Sprintf("%v", concreteValue)
		} else if reflect.TypeOf(value).Kind() == reflect.Map {
			concreteValue := make(map[string]interface{})
			for k, v := range value.(map[string]interface{}) {
				if v != nil && reflect.TypeOf(v).Kind() == reflect.Ptr {
					concreteValue[k] = reflect.Indirect(reflect.ValueOf(v)).Interface()
				} else {
					concreteValue[k] = v
				}
			}
			actual = fmt.Sprintf("%v", concreteValue)
		}
	}

	var concreteDatum interface{}

	if datumCopy == nil {
		concreteDatum = nil
	} else if reflect.TypeOf(datumCopy).Kind() == reflect.Ptr {
		if reflect.ValueOf(datumCopy).IsNil() {
			concreteDatum = nil
		} else {
			concreteDatum = reflect.Indirect(reflect.ValueOf(datumCopy)).Interface()
		}
	} else if reflect.TypeOf(datumCopy).Kind() == reflect.Map {
		unwrapped := make(map[string]interface{})
		for k, v := range datumCopy.(map[string]interface{}) {
			if v != nil && reflect.TypeOf(v).Kind() == reflect.Ptr {
				unwrapped[k] = reflect.Indirect(reflect.ValueOf(v)).Interface()
			} else {
				unwrapped[k] = v
			}
		}
		concreteDatum = unwrapped
	} else {
		concreteDatum = reflect.Indirect(reflect.ValueOf(datumCopy)).Interface()
	}

	expected := fmt.Sprintf("%v", concreteDatum)

	enumType, ok := concreteDatum.(avroEnum)
	if ok {
		expected = enumType.Str()
	}

	if actual != expected {
		// logical binary types (math/big.Rat, etc) don't survive deepcopy
		// cleanly, so fall back to comparing against the original datum.
		originalExpected := fmt.Sprintf("%v", datum)

		if actual != originalExpected {
			t.Errorf("schema: %s; Datum: %v; Actual: %#v; Expected: %#v", schema, datum, actual, expected)
		} else {
			return
		}

		expectedBytes, err := json.Marshal(concreteDatum)
		if err != nil {
			t.Error(err)
		}

		actualBytes, err := json.Marshal(value)
		if err != nil {
			t.Error(err)
		}

		if !bytes.Equal(actualBytes, expectedBytes) {
			t.Errorf("schema: %s; Datum: %v; Actual: %#v; Expected: %#v", schema, concreteDatum, actual, expected)
		}
	}
}

func testBinaryEncodePass(t *testing.T, schema string, datum interface{}, expected []byte) {
	t.Helper()
	codec, err := NewCodec(schema)
	if err != nil {
		t.Fatalf("Schema: %q %s", schema, err)
	}

	actual, err := codec.BinaryFromNative(nil, datum)
	if err != nil {
		t.Fatalf("schema: %s; Datum: %v; %s", schema, datum, err)
	}
	if !bytes.Equal(actual, expected) {
		t.Errorf("schema: %s; Datum: %v; Actual: %#v; Expected: %#v", schema, datum, actual, expected)
	}
}

// testBinaryCodecPass does a bi-directional codec check, by encoding datum to
// bytes, then decoding bytes back to datum.
func testBinaryCodecPass(t *testing.T, schema string, datum interface{}, buf []byte) {
	t.Helper()
	testBinaryDecodePass(t, schema, datum, buf)
	testBinaryEncodePass(t, schema, datum, buf)
}

func TestBinaryPrimitives(t *testing.T) {
	testBinaryCodecPass(t, `"null"`, nil, nil)
	testBinaryCodecPass(t, `"boolean"`, true, []byte{1})
	testBinaryCodecPass(t, `"boolean"`, false, []byte{0})
	testBinaryCodecPass(t, `"int"`, int32(3), []byte{6})
	testBinaryCodecPass(t, `"long"`, int64(3), []byte{6})
	testBinaryCodecPass(t, `"string"`, "foo", []byte{6, 'f', 'o', 'o'})
	testBinaryCodecPass(t, `"bytes"`, []byte("foo"), []byte{6, 'f', 'o', 'o'})
}

func TestBinaryShortBuffer(t *testing.T) {
	testBinaryDecodeFailShortBuffer(t, `"int"`, []byte{})
	testBinaryDecodeFailShortBuffer(t, `"string"`, []byte{6, 'f'})
}

func TestBinaryVarintOverflow(t *testing.T) {
	// 6 groups for int (max 5), every byte a continuation except the last:
	// over-long, but the final byte still terminates cleanly.
	testBinaryDecodeFail(t, `"int"`, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, "varint overflow")
	// 11 groups for long (max 10), same shape.
	testBinaryDecodeFail(t, `"long"`, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, "varint overflow")
}

func TestBinaryEncodeFailBadDatumType(t *testing.T) {
	testBinaryEncodeFailBadDatumType(t, `"int"`, "not an int")
	testBinaryEncodeFailBadDatumType(t, `"string"`, 42)
}

func TestBinaryArray(t *testing.T) {
	testBinaryCodecPass(t, `{"type":"array","items":"int"}`, []interface{}{int32(1), int32(2)},
		[]byte{4, 2, 4, 0})
}

func TestBinaryMap(t *testing.T) {
	testBinaryCodecPass(t, `{"type":"map","values":"int"}`,
		map[string]interface{}{"a": int32(1)},
		[]byte{2, 2, 'a', 2, 0})
}

func TestBinaryRecord(t *testing.T) {
	schema := `{"type":"record","name":"r","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`
	c, err := NewCodec(schema)
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecord(c)
	rec.Set("a", int32(1))
	rec.Set("b", "x")
	buf, err := c.BinaryFromNative(nil, rec)
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := c.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	decoded, ok := value.(*Record)
	if !ok {
		t.Fatalf("GOT: %T; WANT: *Record", value)
	}
	if v, _ := decoded.Get("a"); v != int32(1) {
		t.Errorf("GOT: %v; WANT: 1", v)
	}
	if v, _ := decoded.Get("b"); v != "x" {
		t.Errorf("GOT: %v; WANT: x", v)
	}
}
