package avro

import "strconv"

func newIntCodec() *Codec {
	return &Codec{
		Typ:               TypeInt,
		typeName:          &name{"int", nullNamespace},
		schemaOriginal:    `"int"`,
		schemaCanonical:   `"int"`,
		nativeFromBinary:  func(buf []byte) (interface{}, []byte, error) { return intNativeFromBinary(buf) },
		binaryFromNative:  intBinaryFromNative,
		nativeFromTextual: intNativeFromTextual,
		textualFromNative: intTextualFromNative,
	}
}

func intNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	end := scanJSONNumber(buf)
	if end == 0 {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual int")
	}
	n, err := strconv.ParseInt(string(buf[:end]), 10, 32)
	if err != nil {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual int: %s", err)
	}
	return int32(n), buf[end:], nil
}

func intTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	var n int32
	switch v := datum.(type) {
	case int32:
		n = v
	case int:
		n = int32(v)
	case int64:
		n = int32(v)
	default:
		return nil, newErr(ErrInvalidValue, "cannot encode textual int: received: %T", datum)
	}
	return append(buf, strconv.FormatInt(int64(n), 10)...), nil
}

// scanJSONNumber returns the length of a leading JSON number token (sign,
// digits, optional fraction/exponent) in buf, or 0 if none is present.
func scanJSONNumber(buf []byte) int {
	i := 0
	if i < len(buf) && (buf[i] == '-' || buf[i] == '+') {
		i++
	}
	start := i
	for i < len(buf) && (buf[i] >= '0' && buf[i] <= '9' || buf[i] == '.' || buf[i] == 'e' || buf[i] == 'E' || buf[i] == '+' || buf[i] == '-') {
		i++
	}
	if i == start {
		return 0
	}
	return i
}
