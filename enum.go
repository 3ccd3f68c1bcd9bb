package avro

import "fmt"

// newEnumCodec builds a Codec for a named enum type: an ordered set of
// unique symbols, with the first symbol as default unless overridden.
func newEnumCodec(n *name, symbols []string, defaultSymbol string, hasDefault bool) (*Codec, error) {
	if len(symbols) == 0 {
		return nil, newSchemaParseErr(SubInvalidName, "enum %q must declare at least one symbol", n.fullName())
	}
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if seen[s] {
			return nil, newSchemaParseErr(SubDuplicateName, "enum %q has duplicate symbol %q", n.fullName(), s)
		}
		seen[s] = true
	}
	if hasDefault && !seen[defaultSymbol] {
		return nil, newSchemaParseErr(SubInvalidDefault, "enum %q default %q is not a declared symbol", n.fullName(), defaultSymbol)
	}

	indexOf := make(map[string]int32, len(symbols))
	for i, s := range symbols {
		indexOf[s] = int32(i)
	}

	c := &Codec{
		Typ:            TypeEnum,
		typeName:       n,
		symbols:        symbols,
		enumDefault:    defaultSymbol,
		hasEnumDefault: hasDefault,
	}
	c.schemaOriginal = fmt.Sprintf(`{"type":"enum","name":%q,"symbols":%q}`, n.fullName(), symbols)

	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		idx, rest, err := intNativeFromBinary(buf)
		if err != nil {
			return nil, buf, err
		}
		i := idx.(int32)
		if i < 0 || int(i) >= len(symbols) {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode binary enum %q: index %d out of range", n.fullName(), i)
		}
		return symbols[i], rest, nil
	}
	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		s, ok := symbolOf(datum)
		if !ok {
			return nil, newErr(ErrInvalidValue, "cannot encode binary enum %q: received: %T", n.fullName(), datum)
		}
		i, ok := indexOf[s]
		if !ok {
			return nil, newErr(ErrInvalidValue, "cannot encode binary enum %q: symbol %q not declared", n.fullName(), s)
		}
		return intBinaryFromNative(buf, i)
	}
	c.nativeFromTextual = func(buf []byte) (interface{}, []byte, error) {
		s, rest, err := scanJSONString(buf)
		if err != nil {
			return nil, buf, err
		}
		if _, ok := indexOf[s]; !ok {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual enum %q: symbol %q not declared", n.fullName(), s)
		}
		return s, rest, nil
	}
	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		s, ok := symbolOf(datum)
		if !ok {
			return nil, newErr(ErrInvalidValue, "cannot encode textual enum %q: received: %T", n.fullName(), datum)
		}
		return stringTextualFromNative(buf, s)
	}
	return c, nil
}

// avroEnum is the host-language contract for an enum value: any type that
// can report its own symbol. Decoded enum values are plain strings in this
// module, but encode accepts anything satisfying avroEnum too.
type avroEnum interface {
	Str() string
}

func symbolOf(datum interface{}) (string, bool) {
	switch v := datum.(type) {
	case string:
		return v, true
	case avroEnum:
		return v.Str(), true
	default:
		return "", false
	}
}
