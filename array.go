package avro

import "fmt"

// newArrayCodec builds a Codec for an array of the given element type.
// Arrays are encoded as a series of blocks: a long count (negative count
// means the block is followed by a byte-length, and its absolute value is
// the item count) followed by that many items, terminated by a
// zero-length block.
func newArrayCodec(items *Codec) *Codec {
	c := &Codec{
		Typ:        TypeArray,
		typeName:   &name{"array", nullNamespace},
		itemsCodec: items,
	}
	c.schemaOriginal = fmt.Sprintf(`{"type":"array","items":%s}`, items.schemaOriginal)

	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		var out []interface{}
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
				// negated count; a byte-length follows so a reader that
				// doesn't understand the element type can skip the block
				sizeV, rest, err := longNativeFromBinary(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				count = -count
				_ = sizeV
			}
			for i := int64(0); i < count; i++ {
				item, rest, err := items.nativeFromBinary(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				out = append(out, item)
			}
		}
		if out == nil {
			out = []interface{}{}
		}
		return out, buf, nil
	}

	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		slice, err := toInterfaceSlice(datum)
		if err != nil {
			return nil, newErr(ErrInvalidValue, "cannot encode binary array: %s", err)
		}
		var encErr error
		if len(slice) > 0 {
			buf, _ = longBinaryFromNative(buf, int64(len(slice)))
			for _, item := range slice {
				buf, encErr = items.binaryFromNative(buf, item)
				if encErr != nil {
					return nil, encErr
				}
			}
		}
		buf, _ = longBinaryFromNative(buf, int64(0))
		return buf, nil
	}

	c.nativeFromTextual = func(buf []byte) (interface{}, []byte, error) {
		buf = skipJSONWhitespace(buf)
		if len(buf) == 0 || buf[0] != '[' {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual array: expected '['")
		}
		buf = buf[1:]
		out := []interface{}{}
		buf = skipJSONWhitespace(buf)
		for len(buf) > 0 && buf[0] != ']' {
			v, rest, err := items.nativeFromTextual(buf)
			if err != nil {
				return nil, buf, err
			}
			out = append(out, v)
			buf = skipJSONWhitespace(rest)
			if len(buf) > 0 && buf[0] == ',' {
				buf = skipJSONWhitespace(buf[1:])
			}
		}
		if len(buf) == 0 || buf[0] != ']' {
			return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode textual array: expected ']'")
		}
		return out, buf[1:], nil
	}
	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		slice, err := toInterfaceSlice(datum)
		if err != nil {
			return nil, newErr(ErrInvalidValue, "cannot encode textual array: %s", err)
		}
		buf = append(buf, '[')
		for i, item := range slice {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf, err = items.textualFromNative(buf, item)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	}
	return c
}

func toInterfaceSlice(datum interface{}) ([]interface{}, error) {
	switch v := datum.(type) {
	case []interface{}:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, newErr(ErrInvalidValue, "expected array/slice; received: %T", datum)
	}
}
