package avro

import "strconv"

func newLongCodec() *Codec {
	return &Codec{
		Typ:               TypeLong,
		typeName:          &name{"long", nullNamespace},
		schemaOriginal:    `"long"`,
		schemaCanonical:   `"long"`,
		nativeFromBinary:  longNativeFromBinary,
		binaryFromNative:  longBinaryFromNative,
		nativeFromTextual: longNativeFromTextual,
		textualFromNative: longTextualFromNative,
	}
}

func longNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	end := scanJSONNumber(buf)
	if end == 0 {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual long")
	}
	n, err := strconv.ParseInt(string(buf[:end]), 10, 64)
	if err != nil {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual long: %s", err)
	}
	return n, buf[end:], nil
}

func longTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	var n int64
	switch v := datum.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	default:
		return nil, newErr(ErrInvalidValue, "cannot encode textual long: received: %T", datum)
	}
	return append(buf, strconv.FormatInt(n, 10)...), nil
}
