package avro

import "fmt"

// newMapCodec builds a Codec for a map with string keys and the given
// value type. Wire shape mirrors array: blocks of (count, key, value)
// pairs terminated by a zero-length block.
func newMapCodec(values *Codec) *Codec {
	c := &Codec{
		Typ:        TypeMap,
		typeName:   &name{"map", nullNamespace},
		itemsCodec: values,
	}
	c.schemaOriginal = fmt.Sprintf(`{"type":"map","values":%s}`, values.schemaOriginal)

	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		out := make(map[string]interface{})
		for {
			v, rest, err := longNativeFromBinary(buf)
			if err != nil {
				return nil, buf, err
			}
			buf = rest
			count := v.(int64)
			if count == 0 {
				break
			}
			if count < 0 {
				if _, rest, err := longNativeFromBinary(buf); err == nil {
					buf = rest
				} else {
					return nil, buf, err
				}
				count = -count
			}
			for i := int64(0); i < count; i++ {
				key, rest, err := stringNativeFromBinary(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				val, rest, err := values.nativeFromBinary(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				out[key] = val
			}
		}
		return out, buf, nil
	}

	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		m, err := toStringMap(datum)
		if err != nil {
			return nil, newErr(ErrInvalidValue, "cannot encode binary map: %s", err)
		}
		if len(m) > 0 {
			buf, _ = longBinaryFromNative(buf, int64(len(m)))
			for k, v := range m {
				buf = stringBinaryFromNative(buf, k)
				buf, err = values.binaryFromNative(buf, v)
				if err != nil {
					return nil, err
				}
			}
		}
		buf, _ = longBinaryFromNative(buf, int64(0))
		return buf, nil
	}

	c.nativeFromTextual = func(buf []byte) (interface{}, []byte, error) {
		buf = skipJSONWhitespace(buf)
		if len(buf) == 0 || buf[0] != '{' {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual map: expected '{'")
		}
		buf = skipJSONWhitespace(buf[1:])
		out := make(map[string]interface{})
		for len(buf) > 0 && buf[0] != '}' {
			key, rest, err := scanJSONString(buf)
			if err != nil {
				return nil, buf, err
			}
			buf = skipJSONWhitespace(rest)
			if len(buf) == 0 || buf[0] != ':' {
				return nil, buf, newErr(ErrInvalidValue, "cannot decode textual map: expected ':'")
			}
			buf = skipJSONWhitespace(buf[1:])
			val, rest, err := values.nativeFromTextual(buf)
			if err != nil {
				return nil, buf, err
			}
			out[key] = val
			buf = skipJSONWhitespace(rest)
			if len(buf) > 0 && buf[0] == ',' {
				buf = skipJSONWhitespace(buf[1:])
			}
		}
		if len(buf) == 0 || buf[0] != '}' {
			return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode textual map: expected '}'")
		}
		return out, buf[1:], nil
	}
	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		m, err := toStringMap(datum)
		if err != nil {
			return nil, newErr(ErrInvalidValue, "cannot encode textual map: %s", err)
		}
		buf = append(buf, '{')
		first := true
		for k, v := range m {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf, err = stringTextualFromNative(buf, k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ':')
			buf, err = values.textualFromNative(buf, v)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	}
	return c
}

func toStringMap(datum interface{}) (map[string]interface{}, error) {
	switch v := datum.(type) {
	case map[string]interface{}:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, newErr(ErrInvalidValue, "expected map[string]interface{}; received: %T", datum)
	}
}
