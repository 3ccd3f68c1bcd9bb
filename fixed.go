package avro

import (
	"encoding/base64"
	"fmt"
)

// newFixedCodec builds a Codec for a named fixed-length byte type.
func newFixedCodec(n *name, size int) (*Codec, error) {
	if size < 0 {
		return nil, newSchemaParseErr(SubInvalidName, "fixed %q size must be non-negative", n.fullName())
	}
	c := &Codec{
		Typ:       TypeFixed,
		typeName:  n,
		fixedSize: size,
	}
	c.schemaOriginal = fmt.Sprintf(`{"type":"fixed","name":%q,"size":%d}`, n.fullName(), size)
	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		if len(buf) < size {
			return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode fixed %q: need %d bytes, have %d", n.fullName(), size, len(buf))
		}
		out := make([]byte, size)
		copy(out, buf[:size])
		return out, buf[size:], nil
	}
	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		b, ok := datum.([]byte)
		if !ok {
			if s, ok := datum.(string); ok {
				b = []byte(s)
			} else {
				return nil, newErr(ErrInvalidValue, "cannot encode binary fixed %q: received: %T", n.fullName(), datum)
			}
		}
		if len(b) != size {
			return nil, newErr(ErrInvalidValue, "cannot encode binary fixed %q: expected %d bytes, received %d", n.fullName(), size, len(b))
		}
		return append(buf, b...), nil
	}
	c.nativeFromTextual = func(buf []byte) (interface{}, []byte, error) {
		s, rest, err := scanJSONString(buf)
		if err != nil {
			return nil, buf, err
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil || len(decoded) != size {
			raw := []byte(s)
			if len(raw) != size {
				return nil, buf, newErr(ErrInvalidValue, "cannot decode textual fixed %q: wrong size", n.fullName())
			}
			return raw, rest, nil
		}
		return decoded, rest, nil
	}
	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		b, ok := datum.([]byte)
		if !ok || len(b) != size {
			return nil, newErr(ErrInvalidValue, "cannot encode textual fixed %q: received: %T", n.fullName(), datum)
		}
		return bytesTextualFromNative(buf, b)
	}
	return c, nil
}
