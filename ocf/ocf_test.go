package ocf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/corvidlabs/avro"
)

const personSchemaJSON = `{
	"type": "record",
	"name": "Person",
	"fields": [
		{"name": "name", "type": "string"},
		{"name": "age", "type": "int"}
	]
}`

func encodeDecodeRoundTrip(t *testing.T, codec CodecName) {
	t.Helper()
	schema, err := avro.Parse(personSchemaJSON)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(schema, &buf, WithCodec(codec), WithBlockLength(2))
	if err != nil {
		t.Fatal(err)
	}

	people := []map[string]interface{}{
		{"name": "ada", "age": int32(36)},
		{"name": "alan", "age": int32(41)},
		{"name": "grace", "age": int32(85)},
	}
	for _, p := range people {
		if err := enc.Encode(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	dec, err := NewDecoder(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}

	var got []map[string]interface{}
	for dec.HasNext() {
		v, err := dec.Next()
		if err != nil {
			t.Fatal(err)
		}
		rec := v.(*avro.Record)
		name, _ := rec.Get("name")
		age, _ := rec.Get("age")
		got = append(got, map[string]interface{}{"name": name, "age": age})
	}

	if len(got) != len(people) {
		t.Fatalf("GOT: %d records; WANT: %d", len(got), len(people))
	}
	for i, p := range people {
		if got[i]["name"] != p["name"] || got[i]["age"] != p["age"] {
			t.Errorf("record %d: GOT: %v; WANT: %v", i, got[i], p)
		}
	}
}

func TestOCFRoundTripNull(t *testing.T) {
	encodeDecodeRoundTrip(t, Null)
}

func TestOCFRoundTripDeflate(t *testing.T) {
	encodeDecodeRoundTrip(t, Deflate)
}

func TestOCFRoundTripSnappy(t *testing.T) {
	encodeDecodeRoundTrip(t, Snappy)
}

func TestOCFRoundTripZStandard(t *testing.T) {
	encodeDecodeRoundTrip(t, ZStandard)
}

func TestOCFMetadataCarriesWriterSchema(t *testing.T) {
	schema, err := avro.Parse(personSchemaJSON)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	enc, err := NewEncoder(schema, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(map[string]interface{}{"name": "ada", "age": int32(36)}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	dec, err := NewDecoder(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(dec.Metadata()[schemaKey]) != schema.CanonicalForm() {
		t.Errorf("metadata schema mismatch")
	}
	if string(dec.Metadata()[codecKey]) != string(Null) {
		t.Errorf("GOT codec: %s; WANT: null", dec.Metadata()[codecKey])
	}
}

func TestOCFTruncatedBlockReportsErr(t *testing.T) {
	schema, err := avro.Parse(personSchemaJSON)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(schema, &buf, WithBlockLength(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(map[string]interface{}{"name": "ada", "age": int32(36)}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(map[string]interface{}{"name": "alan", "age": int32(41)}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	truncated := buf.Bytes()[:buf.Len()-1]

	dec, err := NewDecoder(bytes.NewReader(truncated), nil)
	if err != nil {
		t.Fatal(err)
	}

	var got []interface{}
	for dec.HasNext() {
		v, err := dec.Next()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}

	if len(got) != 1 {
		t.Fatalf("GOT: %d records decoded before the truncation hit; WANT: 1", len(got))
	}

	if dec.Err() == nil {
		t.Fatal("GOT: nil Err() after a truncated final block; WANT: a TruncatedBlock error")
	}
	if !errors.Is(dec.Err(), avro.ErrSentinelTruncatedBlock) {
		t.Errorf("GOT: %v; WANT: an avro.ErrSentinelTruncatedBlock-kind error", dec.Err())
	}

	// A follow-up Next() call (without HasNext) surfaces the same error
	// rather than the generic "no data available" message.
	if _, err := dec.Next(); !errors.Is(err, avro.ErrSentinelTruncatedBlock) {
		t.Errorf("GOT: %v; WANT: the sticky TruncatedBlock error", err)
	}
}

func TestOCFCleanEOFReportsNoErr(t *testing.T) {
	schema, err := avro.Parse(personSchemaJSON)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	enc, err := NewEncoder(schema, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(map[string]interface{}{"name": "ada", "age": int32(36)}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	dec, err := NewDecoder(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	for dec.HasNext() {
		if _, err := dec.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if dec.Err() != nil {
		t.Errorf("GOT: %v; WANT: nil Err() after a clean end of file", dec.Err())
	}
}

func TestOCFResolvesAgainstReaderSchema(t *testing.T) {
	writerSchema, err := avro.Parse(personSchemaJSON)
	if err != nil {
		t.Fatal(err)
	}
	readerSchemaJSON := `{
		"type": "record",
		"name": "Person",
		"fields": [
			{"name": "name", "type": "string"},
			{"name": "age", "type": "long"},
			{"name": "nickname", "type": "string", "default": "n/a"}
		]
	}`
	readerSchema, err := avro.Parse(readerSchemaJSON)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(writerSchema, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(map[string]interface{}{"name": "ada", "age": int32(36)}); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	dec, err := NewDecoder(&buf, readerSchema)
	if err != nil {
		t.Fatal(err)
	}
	if !dec.HasNext() {
		t.Fatal("expected one record")
	}
	v, err := dec.Next()
	if err != nil {
		t.Fatal(err)
	}
	rec := v.(*avro.Record)
	age, _ := rec.Get("age")
	if age != int64(36) {
		t.Errorf("GOT age: %v (%T); WANT: int64(36)", age, age)
	}
	nickname, _ := rec.Get("nickname")
	if nickname != "n/a" {
		t.Errorf("GOT nickname: %v; WANT: n/a", nickname)
	}
}
