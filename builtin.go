package avro

// builtinCodecsWithOptions constructs the registry's bootstrap map of
// primitive Codecs, keyed by their type name. Grounded on joshng-goavro's
// builtinSymbolTable(), generalized to accept Options so bytes/string
// coercion behavior (types_str_to_bytes) is available at compile time.
func builtinCodecsWithOptions(opts Options) map[string]*Codec {
	stringCodec := newStringCodec(opts)
	if opts.StringTypesDefaultToLogicalUUID {
		// Bare "string" fields validate/round-trip as canonical UUID
		// strings by default, per the string_types_default_to_logical_uuid
		// option; a schema that wants an unconstrained string must say so
		// with an explicit logicalType that fails to wrap (wrapLogical
		// falls back to the physical type on a bad pairing).
		if wrapped, err := wrapLogical(stringCodec, "uuid", nil, opts); err == nil {
			stringCodec = wrapped
		}
	}
	return map[string]*Codec{
		"null":    newNullCodec(),
		"boolean": newBooleanCodec(),
		"int":     newIntCodec(),
		"long":    newLongCodec(),
		"float":   newFloatCodec(),
		"double":  newDoubleCodec(),
		"bytes":   newBytesCodec(opts),
		"string":  stringCodec,
	}
}
