package avro

import (
	"encoding/base64"
	"strconv"
)

func newBytesCodec(opts Options) *Codec {
	c := &Codec{
		Typ:             TypeBytes,
		typeName:        &name{"bytes", nullNamespace},
		schemaOriginal:  `"bytes"`,
		schemaCanonical: `"bytes"`,
		opts:            opts,
	}
	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		v, rest, err := bytesNativeFromBinary(buf)
		return v, rest, err
	}
	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		b, err := c.coerceToBytes(datum)
		if err != nil {
			return nil, err
		}
		return bytesBinaryFromNative(buf, b), nil
	}
	c.nativeFromTextual = bytesNativeFromTextual
	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		b, err := c.coerceToBytes(datum)
		if err != nil {
			return nil, err
		}
		return bytesTextualFromNative(buf, b)
	}
	return c
}

// coerceToBytes accepts a []byte directly, or (when TypesStrToBytes is
// set) a string UTF-8 encoded into bytes, per Options table component B.
func (c *Codec) coerceToBytes(datum interface{}) ([]byte, error) {
	switch v := datum.(type) {
	case []byte:
		return v, nil
	case string:
		if c.opts.TypesStrToBytes {
			return []byte(v), nil
		}
		return nil, newErr(ErrInvalidValue, "cannot encode binary bytes: received string but types_str_to_bytes is disabled")
	default:
		return nil, newErr(ErrInvalidValue, "cannot encode binary bytes: received: %T", datum)
	}
}

func bytesNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	s, rest, err := scanJSONString(buf)
	if err != nil {
		return nil, buf, err
	}
	// Avro JSON encodes bytes as a string of raw codepoints in [0,255];
	// accept base64 too for host-side convenience round-tripping.
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return decoded, rest, nil
	}
	raw := make([]byte, len(s))
	for i, r := range []rune(s) {
		raw[i] = byte(r)
	}
	return raw, rest, nil
}

func bytesTextualFromNative(buf []byte, in []byte) ([]byte, error) {
	quoted := strconv.Quote(string(in))
	return append(buf, quoted...), nil
}
