package avro

import (
	"encoding/json"
	"strconv"
	"unicode/utf8"
)

func newStringCodec(opts Options) *Codec {
	return &Codec{
		Typ:             TypeString,
		typeName:        &name{"string", nullNamespace},
		schemaOriginal:  `"string"`,
		schemaCanonical: `"string"`,
		opts:            opts,
		nativeFromBinary: func(buf []byte) (interface{}, []byte, error) {
			v, rest, err := stringNativeFromBinary(buf)
			if err != nil {
				return nil, buf, err
			}
			return v, rest, nil
		},
		binaryFromNative: func(buf []byte, datum interface{}) ([]byte, error) {
			s, ok := datum.(string)
			if !ok {
				return nil, newErr(ErrInvalidValue, "cannot encode binary string: received: %T", datum)
			}
			if !utf8.ValidString(s) {
				return nil, newErr(ErrInvalidUtf8, "cannot encode binary string: invalid UTF-8")
			}
			return stringBinaryFromNative(buf, s), nil
		},
		nativeFromTextual: stringNativeFromTextual,
		textualFromNative: stringTextualFromNative,
	}
}

func stringNativeFromTextual(buf []byte) (interface{}, []byte, error) {
	s, rest, err := scanJSONString(buf)
	if err != nil {
		return nil, buf, err
	}
	return s, rest, nil
}

func stringTextualFromNative(buf []byte, datum interface{}) ([]byte, error) {
	s, ok := datum.(string)
	if !ok {
		return nil, newErr(ErrInvalidValue, "cannot encode textual string: received: %T", datum)
	}
	return append(buf, strconv.Quote(s)...), nil
}

// scanJSONString decodes one leading double-quoted JSON string token from
// buf, returning the decoded string and the remaining bytes.
func scanJSONString(buf []byte) (string, []byte, error) {
	if len(buf) == 0 || buf[0] != '"' {
		return "", buf, newErr(ErrInvalidValue, "cannot decode textual string: expected '\"'")
	}
	i := 1
	for i < len(buf) {
		if buf[i] == '\\' {
			i += 2
			continue
		}
		if buf[i] == '"' {
			var s string
			if err := json.Unmarshal(buf[:i+1], &s); err != nil {
				return "", buf, newErr(ErrInvalidValue, "cannot decode textual string: %s", err)
			}
			return s, buf[i+1:], nil
		}
		i++
	}
	return "", buf, newErr(ErrTruncatedInput, "short buffer: cannot decode textual string")
}
