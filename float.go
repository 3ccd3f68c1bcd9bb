package avro

import "strconv"

func newFloatCodec() *Codec {
	return &Codec{
		Typ:            TypeFloat,
		typeName:       &name{"float", nullNamespace},
		schemaOriginal: `"float"`,
		schemaCanonical: `"float"`,
		nativeFromBinary: func(buf []byte) (interface{}, []byte, error) {
			v, rest, err := floatNativeFromBinary(buf)
			return v, rest, err
		},
		binaryFromNative: func(buf []byte, datum interface{}) ([]byte, error) {
			f, err := toFloat32(datum)
			if err != nil {
				return nil, err
			}
			return floatBinaryFromNative(buf, f), nil
		},
		nativeFromTextual: floatNativeFromTextual,
		textualFromNative: floatTextualFromNative,
	}
}

func toFloat32(datum interface{}) (float32, error) {
	switch v := datum.(type) {
	case float32:
		return v, nil
	case float64:
		// downcast allowed iff bit-exact, per spec.md §4.D value categorization
		f := float32(v)
		if float64(f) != v {
			return 0, newErr(ErrInvalidValue, "cannot encode binary float: value %v loses precision", v)
		}
		return f, nil
	case int32:
		return float32(v), nil
	case int64:
		return float32(v), nil
	case int:
		return float32(v), nil
	default:
		return 0, newErr(ErrInvalidValue, "cannot encode binary float: received: %T", datum)
	}
}

func floatNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	end := scanJSONNumber(buf)
	if end == 0 {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual float")
	}
	f, err := strconv.ParseFloat(string(buf[:end]), 32)
	if err != nil {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode textual float: %s", err)
	}
	return float32(f), buf[end:], nil
}

func floatTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	f, err := toFloat32(datum)
	if err != nil {
		return nil, err
	}
	return append(buf, strconv.FormatFloat(float64(f), 'g', -1, 32)...), nil
}
