package avro

import "strconv"

func newDoubleCodec() *Codec {
	return &Codec{
		Typ:             TypeDouble,
		typeName:        &name{"double", nullNamespace},
		schemaOriginal:  `"double"`,
		schemaCanonical: `"double"`,
		nativeFromBinary: func(buf []byte) (interface{}, []byte, error) {
			v, rest, err := doubleNativeFromBinary(buf)
			return v, rest, err
		},
		binaryFromNative: func(buf []byte, datum interface{}) ([]byte, error) {
			f, err := toFloat64(datum)
			if err != nil {
				return nil, err
			}
			return doubleBinaryFromNative(buf, f), nil
		},
		nativeFromTextual: doubleNativeFromTextual,
		textualFromNative: doubleTextualFromNative,
	}
}

func toFloat64(datum interface{}) (float64, error) {
	switch v := datum.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, newErr(ErrInvalidValue, "cannot encode binary double: received: %T", datum)
	}
}

func doubleNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	end := scanJSONNumber(buf)
	if end == 0 {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual double")
	}
	f, err := strconv.ParseFloat(string(buf[:end]), 64)
	if err != nil {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual double: %s", err)
	}
	return f, buf[end:], nil
}

func doubleTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	f, err := toFloat64(datum)
	if err != nil {
		return nil, err
	}
	return append(buf, strconv.FormatFloat(f, 'g', -1, 64)...), nil
}
