package avro

func newBooleanCodec() *Codec {
	return &Codec{
		Typ:              TypeBoolean,
		typeName:         &name{"boolean", nullNamespace},
		schemaOriginal:   `"boolean"`,
		schemaCanonical:  `"boolean"`,
		nativeFromBinary: func(buf []byte) (interface{}, []byte, error) {
			v, rest, err := booleanNativeFromBinary(buf)
			return v, rest, err
		},
		binaryFromNative: func(buf []byte, datum interface{}) ([]byte, error) {
			v, ok := datum.(bool)
			if !ok {
				return nil, newErr(ErrInvalidValue, "cannot encode binary boolean: received: %T", datum)
			}
			return booleanBinaryFromNative(buf, v), nil
		},
		nativeFromTextual: booleanNativeFromTextual,
		textualFromNative: booleanTextualFromNative,
	}
}

func booleanNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	if len(buf) >= 4 && string(buf[:4]) == "true" {
		return true, buf[4:], nil
	}
	if len(buf) >= 5 && string(buf[:5]) == "false" {
		return false, buf[5:], nil
	}
	return nil, buf, newErr(ErrInvalidValue, "cannot decode textual boolean")
}

func booleanTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	v, ok := datum.(bool)
	if !ok {
		return nil, newErr(ErrInvalidValue, "cannot encode textual boolean: received: %T", datum)
	}
	if v {
		return append(buf, "true"...), nil
	}
	return append(buf, "false"...), nil
}
