package avro

import "bytes"

func newNullCodec() *Codec {
	return &Codec{
		Typ:               TypeNull,
		typeName:          &name{"null", nullNamespace},
		schemaOriginal:    `"null"`,
		schemaCanonical:   `"null"`,
		nativeFromBinary:  nullNativeFromBinary,
		binaryFromNative:  nullBinaryFromNative,
		nativeFromTextual: nullNativeFromTextual,
		textualFromNative: nullTextualFromNative,
	}
}

func nullNativeFromBinary(buf []byte) (interface{}, []byte, error) {
	return nil, buf, nil
}

func nullBinaryFromNative(buf []byte, datum interface{}) ([]byte, error) {
	if datum != nil {
		return nil, newErr(ErrInvalidValue, "cannot encode binary null: received: %T", datum)
	}
	return buf, nil
}

func nullNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	if len(buf) >= 4 && bytes.Equal(buf[:4], []byte("null")) {
		return nil, buf[4:], nil
	}
	return nil, buf, newErr(ErrInvalidValue, "cannot decode textual null")
}

func nullTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	if datum != nil {
		return nil, newErr(ErrInvalidValue, "cannot encode textual null: received: %T", datum)
	}
	return append(buf, "null"...), nil
}
