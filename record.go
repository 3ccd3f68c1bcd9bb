package avro

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// Record is a host-language record instance: an ordered vector of field
// values plus a back-pointer to the Codec (and hence Schema) it was built
// from. Per spec.md §9's design notes, the Codec pointer plays the role of
// "schema_id" — a stable per-compilation identity used to short-circuit
// same-schema encodes and to drive cross-schema adaptation.
type Record struct {
	codec  *Codec
	Values []interface{}
}

// NewRecord constructs a zero-valued Record for codec, one slot per
// declared field, each set to nil (callers fill them in with Set).
func NewRecord(codec *Codec) *Record {
	if codec.Typ != TypeRecord {
		panic("avro: NewRecord requires a record Codec")
	}
	return &Record{codec: codec, Values: make([]interface{}, len(codec.fields))}
}

// Codec returns the record Codec this instance was constructed from.
func (r *Record) Codec() *Codec { return r.codec }

// Get returns the value of the named field, and whether that field
// exists on this record's Codec.
func (r *Record) Get(fieldName string) (interface{}, bool) {
	for i, f := range r.codec.fields {
		if f.Name == fieldName {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Set assigns the named field's value. It panics if fieldName is not
// declared on the record's Codec, mirroring a programming error rather
// than a data error.
func (r *Record) Set(fieldName string, value interface{}) {
	for i, f := range r.codec.fields {
		if f.Name == fieldName {
			r.Values[i] = value
			return
		}
	}
	panic(fmt.Sprintf("avro: record %q has no field %q", r.codec.FullName(), fieldName))
}

// newRecordCodec builds a Codec for a named record type with the given
// ordered fields. Field-name uniqueness (spec.md §3 data model) must
// already have been checked by the caller (codec_builder.go), since it
// needs the enclosing namespace context to produce a good error.
func newRecordCodec(n *name, fields []*Field, opts Options) *Codec {
	indexOf := make(map[string]int, len(fields))
	for i, f := range fields {
		indexOf[f.Name] = i
	}

	c := &Codec{
		Typ:      TypeRecord,
		typeName: n,
		fields:   fields,
		opts:     opts,
	}

	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		values := make([]interface{}, len(fields))
		for i, f := range fields {
			v, rest, err := f.Type.nativeFromBinary(buf)
			if err != nil {
				return nil, buf, newErr(ErrInvalidValue, "cannot decode binary record %q field %q: %s", n.fullName(), f.Name, err)
			}
			buf = rest
			values[i] = v
		}
		if opts.RecordDecodesToDict {
			m := make(map[string]interface{}, len(fields))
			for i, f := range fields {
				m[f.Name] = values[i]
			}
			return m, buf, nil
		}
		return &Record{codec: c, Values: values}, buf, nil
	}

	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		values, err := resolveRecordSource(c, datum, opts)
		if err != nil {
			return nil, err
		}
		for i, f := range fields {
			var encErr error
			buf, encErr = f.Type.binaryFromNative(buf, values[i])
			if encErr != nil {
				return nil, newErr(ErrInvalidValue, "cannot encode binary record %q field %q: %s", n.fullName(), f.Name, encErr)
			}
		}
		return buf, nil
	}

	c.nativeFromTextual = func(buf []byte) (interface{}, []byte, error) {
		buf = skipJSONWhitespace(buf)
		if len(buf) == 0 || buf[0] != '{' {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual record %q: expected '{'", n.fullName())
		}
		buf = skipJSONWhitespace(buf[1:])
		values := make([]interface{}, len(fields))
		seen := make([]bool, len(fields))
		for len(buf) > 0 && buf[0] != '}' {
			key, rest, err := scanJSONString(buf)
			if err != nil {
				return nil, buf, err
			}
			buf = skipJSONWhitespace(rest)
			if len(buf) == 0 || buf[0] != ':' {
				return nil, buf, newErr(ErrInvalidValue, "cannot decode textual record %q: expected ':'", n.fullName())
			}
			buf = skipJSONWhitespace(buf[1:])
			idx, ok := indexOf[key]
			if !ok {
				return nil, buf, newErr(ErrUnknownField, "record %q has no field %q", n.fullName(), key)
			}
			v, rest, err := fields[idx].Type.nativeFromTextual(buf)
			if err != nil {
				return nil, buf, err
			}
			values[idx] = v
			seen[idx] = true
			buf = skipJSONWhitespace(rest)
			if len(buf) > 0 && buf[0] == ',' {
				buf = skipJSONWhitespace(buf[1:])
			}
		}
		if len(buf) == 0 || buf[0] != '}' {
			return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode textual record %q: expected '}'", n.fullName())
		}
		for i, f := range fields {
			if !seen[i] {
				if !f.HasDefault {
					return nil, buf, newErr(ErrMissingField, "record %q missing field %q", n.fullName(), f.Name)
				}
				values[i] = deepcopy.Copy(f.Default)
			}
		}
		if opts.RecordDecodesToDict {
			m := make(map[string]interface{}, len(fields))
			for i, f := range fields {
				m[f.Name] = values[i]
			}
			return m, buf[1:], nil
		}
		return &Record{codec: c, Values: values}, buf[1:], nil
	}

	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		values, err := resolveRecordSource(c, datum, opts)
		if err != nil {
			return nil, err
		}
		buf = append(buf, '{')
		for i, f := range fields {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf, err = stringTextualFromNative(buf, f.Name)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ':')
			buf, err = f.Type.textualFromNative(buf, values[i])
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	}

	return c
}

// resolveRecordSource implements spec.md §4.E record encoding: resolve the
// source value (Record instance, map, or cross-schema Record) to an
// ordered vector of field values, filling in defaults and rejecting
// missing/unknown fields per Options.
func resolveRecordSource(c *Codec, datum interface{}, opts Options) ([]interface{}, error) {
	switch v := datum.(type) {
	case *Record:
		if v.codec == c {
			return v.Values, nil
		}
		if !opts.AdaptRecordTypes {
			return nil, newErr(ErrRecordNotAdaptable, "record %q: instance from a different schema compilation, adapt_record_types is disabled", c.FullName())
		}
		return adaptRecord(c, v)
	case map[string]interface{}:
		if !opts.RecordCanEncodeDict {
			return nil, newErr(ErrInvalidValue, "record %q: mapping values are disabled (record_can_encode_dict=false)", c.FullName())
		}
		return fieldValuesFromMap(c, v, opts)
	default:
		return nil, newErr(ErrInvalidValue, "cannot encode binary record %q: received: %T", c.FullName(), datum)
	}
}

func fieldValuesFromMap(c *Codec, m map[string]interface{}, opts Options) ([]interface{}, error) {
	values := make([]interface{}, len(c.fields))
	used := make(map[string]bool, len(m))
	for i, f := range c.fields {
		if v, ok := m[f.Name]; ok {
			values[i] = v
			used[f.Name] = true
			continue
		}
		if opts.RecordEncodeUseDefaults && f.HasDefault {
			values[i] = deepcopy.Copy(f.Default)
			continue
		}
		return nil, newErr(ErrMissingField, "record %q missing field %q", c.FullName(), f.Name)
	}
	if !opts.RecordAllowExtraFields {
		for k := range m {
			if !used[k] {
				return nil, newErr(ErrUnknownField, "record %q has no field %q", c.FullName(), k)
			}
		}
	}
	return values, nil
}
