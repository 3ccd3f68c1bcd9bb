package avro

import (
	"testing"
)

func mustSchema(t *testing.T, schema string) *Schema {
	t.Helper()
	s, err := Parse(schema)
	if err != nil {
		t.Fatalf("schema: %s; %s", schema, err)
	}
	return s
}

func TestResolutionEqualPrimitive(t *testing.T) {
	writer := mustSchema(t, `"int"`)
	reader := mustSchema(t, `"int"`)
	buf, err := writer.BinaryFromNative(nil, int32(3))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, rest, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("GOT: %d bytes remaining; WANT: 0", len(rest))
	}
	if value != int32(3) {
		t.Errorf("GOT: %v; WANT: 3", value)
	}
}

func TestResolutionPromotesIntToLong(t *testing.T) {
	writer := mustSchema(t, `"int"`)
	reader := mustSchema(t, `"long"`)
	buf, err := writer.BinaryFromNative(nil, int32(3))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if value != int64(3) {
		t.Errorf("GOT: %v (%T); WANT: int64(3)", value, value)
	}
}

func TestResolutionPromotesStringToBytes(t *testing.T) {
	writer := mustSchema(t, `"string"`)
	reader := mustSchema(t, `"bytes"`)
	buf, err := writer.BinaryFromNative(nil, "hi")
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(value.([]byte)) != "hi" {
		t.Errorf("GOT: %v; WANT: hi", value)
	}
}

func TestResolutionRejectsIncompatiblePrimitives(t *testing.T) {
	writer := mustSchema(t, `"string"`)
	reader := mustSchema(t, `"int"`)
	_, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	ensureError(t, err, "no promotion rule")
}

func TestResolutionRecordFieldAddedWithDefault(t *testing.T) {
	writer := mustSchema(t, `{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`)
	reader := mustSchema(t, `{"type":"record","name":"r","fields":[
		{"name":"a","type":"int"},
		{"name":"b","type":"string","default":"z"}
	]}`)
	rec := NewRecord(writer.Root())
	rec.Set("a", int32(1))
	buf, err := writer.BinaryFromNative(nil, rec)
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	out := value.(*Record)
	if v, _ := out.Get("a"); v != int32(1) {
		t.Errorf("GOT a=%v; WANT 1", v)
	}
	if v, _ := out.Get("b"); v != "z" {
		t.Errorf("GOT b=%v; WANT z", v)
	}
}

func TestResolutionRecordFieldRemovedIsSkipped(t *testing.T) {
	writer := mustSchema(t, `{"type":"record","name":"r","fields":[
		{"name":"a","type":"int"},
		{"name":"doomed","type":"string"}
	]}`)
	reader := mustSchema(t, `{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`)
	rec := NewRecord(writer.Root())
	rec.Set("a", int32(1))
	rec.Set("doomed", "gone")
	buf, err := writer.BinaryFromNative(nil, rec)
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, rest, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Errorf("GOT: %d bytes remaining; WANT: 0", len(rest))
	}
	out := value.(*Record)
	if v, _ := out.Get("a"); v != int32(1) {
		t.Errorf("GOT a=%v; WANT 1", v)
	}
}

func TestResolutionRecordMissingReaderFieldFails(t *testing.T) {
	writer := mustSchema(t, `{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`)
	reader := mustSchema(t, `{"type":"record","name":"r","fields":[
		{"name":"a","type":"int"},
		{"name":"b","type":"string"}
	]}`)
	_, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	ensureError(t, err, "MissingReaderField")
}

func TestResolutionEnumUnknownSymbolFallsBackToDefault(t *testing.T) {
	writer := mustSchema(t, `{"type":"enum","name":"colors","symbols":["red","green","blue"]}`)
	reader := mustSchema(t, `{"type":"enum","name":"colors","symbols":["red","blue"],"default":"red"}`)
	buf, err := writer.BinaryFromNative(nil, "green")
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if value != "red" {
		t.Errorf("GOT: %v; WANT: red", value)
	}
}

func TestResolutionEnumUnknownSymbolNoDefaultFails(t *testing.T) {
	writer := mustSchema(t, `{"type":"enum","name":"colors","symbols":["red","green","blue"]}`)
	reader := mustSchema(t, `{"type":"enum","name":"colors","symbols":["red","blue"]}`)
	buf, err := writer.BinaryFromNative(nil, "green")
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = resolved.NativeFromBinary(buf)
	ensureError(t, err, "EnumMismatch")
}

func TestResolutionRecordResolvesByReaderAlias(t *testing.T) {
	writer := mustSchema(t, `{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`)
	reader := mustSchema(t, `{"type":"record","name":"renamed","aliases":["r"],"fields":[{"name":"a","type":"int"}]}`)
	rec := NewRecord(writer.Root())
	rec.Set("a", int32(1))
	buf, err := writer.BinaryFromNative(nil, rec)
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := value.(*Record).Get("a"); v != int32(1) {
		t.Errorf("GOT a=%v; WANT 1", v)
	}
}

func TestResolutionRecordNameMismatchFails(t *testing.T) {
	writer := mustSchema(t, `{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`)
	reader := mustSchema(t, `{"type":"record","name":"different","fields":[{"name":"a","type":"int"}]}`)
	_, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	ensureError(t, err, "names do not match")
}

func TestResolutionArrayElementPromotes(t *testing.T) {
	writer := mustSchema(t, `{"type":"array","items":"int"}`)
	reader := mustSchema(t, `{"type":"array","items":"long"}`)
	buf, err := writer.BinaryFromNative(nil, []interface{}{int32(1), int32(2)})
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	items := value.([]interface{})
	if len(items) != 2 || items[0] != int64(1) || items[1] != int64(2) {
		t.Errorf("GOT: %v; WANT: [1 2] as int64", items)
	}
}

func TestResolutionWriterUnionResolvesSelectedBranch(t *testing.T) {
	writer := mustSchema(t, `["null","int"]`)
	reader := mustSchema(t, `"long"`)
	buf, err := writer.BinaryFromNative(nil, int32(5))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if value != int64(5) {
		t.Errorf("GOT: %v; WANT: int64(5)", value)
	}
}

func TestResolutionReaderUnionSelectsCompatibleBranch(t *testing.T) {
	writer := mustSchema(t, `"int"`)
	reader := mustSchema(t, `["null","long"]`)
	buf, err := writer.BinaryFromNative(nil, int32(5))
	if err != nil {
		t.Fatal(err)
	}
	resolved, err := Resolve(writer.Root(), reader.Root(), NewOptions())
	if err != nil {
		t.Fatal(err)
	}
	value, _, err := resolved.NativeFromBinary(buf)
	if err != nil {
		t.Fatal(err)
	}
	if value != int64(5) {
		t.Errorf("GOT: %v; WANT: int64(5)", value)
	}
}
