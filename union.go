// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package avro

// codecInfo is a set of quick lookups: it holds all the lookup info for
// the list of member types of a union, keyed by each member's category
// key (spec.md §4.D), so dispatch never needs to re-derive a category at
// encode/decode time.
type codecInfo struct {
	allowedTypes   []string          // category keys, in declaration order, used for error reporting
	codecFromIndex []*Codec
	codecFromName  map[string]*Codec // category key -> member Codec
	indexFromName  map[string]int    // category key -> branch index
	opts           Options
}

// makeCodecInfo builds the lookup indices for an already-compiled slice of
// union member Codecs, enforcing spec.md invariant 2: no two branches may
// share a category key, except that int+long and float+double may coexist
// because those promotions are total.
func makeCodecInfo(members []*Codec, opts Options) (codecInfo, error) {
	allowedTypes := make([]string, len(members))
	codecFromIndex := make([]*Codec, len(members))
	codecFromName := make(map[string]*Codec, len(members))
	indexFromName := make(map[string]int, len(members))

	for i, m := range members {
		key := m.CategoryKey()
		if _, ok := indexFromName[key]; ok {
			return codecInfo{}, newSchemaParseErr(SubInvalidUnion, "union member %d: duplicate category %q", i+1, key)
		}
		allowedTypes[i] = key
		codecFromIndex[i] = m
		codecFromName[key] = m
		indexFromName[key] = i
	}

	return codecInfo{
		allowedTypes:   allowedTypes,
		codecFromIndex: codecFromIndex,
		codecFromName:  codecFromName,
		indexFromName:  indexFromName,
		opts:           opts,
	}, nil
}

// newUnionCodec builds a Codec for a union of the given ordered member
// Codecs. The union's own schemaOriginal is set to the first member's type
// name, per goavro's long-standing convention (to support record field
// default values, which validate against the first declared branch).
func newUnionCodec(members []*Codec, opts Options) (*Codec, error) {
	if len(members) == 0 && !opts.AllowEmptyUnions {
		return nil, newSchemaParseErr(SubInvalidUnion, "union must have one or more members (allow_empty_unions is disabled)")
	}

	cr, err := makeCodecInfo(members, opts)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		Typ:      TypeUnion,
		typeName: &name{"union", nullNamespace},
		union:    &cr,
		opts:     opts,
	}
	if len(members) > 0 {
		c.schemaOriginal = members[0].schemaOriginal
	}

	c.nativeFromBinary = unionNativeFromBinary(&cr)
	c.binaryFromNative = unionBinaryFromNative(&cr)
	c.nativeFromTextual = unionNativeFromTextual(&cr)
	c.textualFromNative = unionTextualFromNative(&cr)
	return c, nil
}

func unionNativeFromBinary(cr *codecInfo) func(buf []byte) (interface{}, []byte, error) {
	return func(buf []byte) (interface{}, []byte, error) {
		if len(cr.allowedTypes) == 0 {
			return nil, buf, newErr(ErrDispatchNoMatch, "cannot decode binary union: union has no members")
		}

		decoded, rest, err := longNativeFromBinary(buf)
		if err != nil {
			return nil, buf, err
		}
		index := decoded.(int64)
		if index < 0 || index >= int64(len(cr.codecFromIndex)) {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode binary union: index ought to be between 0 and %d; read index: %d", len(cr.codecFromIndex)-1, index)
		}
		c := cr.codecFromIndex[index]
		value, rest, err := c.nativeFromBinary(rest)
		if err != nil {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode binary union item %d: %s", index+1, err)
		}
		if value == nil {
			return nil, rest, nil
		}
		return value, rest, nil
	}
}

func unionBinaryFromNative(cr *codecInfo) func(buf []byte, datum interface{}) ([]byte, error) {
	return func(buf []byte, datum interface{}) ([]byte, error) {
		index, value, err := dispatchUnion(cr, datum)
		if err != nil {
			return nil, err
		}
		c := cr.codecFromIndex[index]
		buf, _ = longBinaryFromNative(buf, int64(index))
		return c.binaryFromNative(buf, value)
	}
}

func unionNativeFromTextual(cr *codecInfo) func(buf []byte) (interface{}, []byte, error) {
	return func(buf []byte) (interface{}, []byte, error) {
		buf = skipJSONWhitespace(buf)
		if len(buf) >= 4 && string(buf[:4]) == "null" {
			if _, ok := cr.indexFromName["null"]; ok {
				return nil, buf[4:], nil
			}
		}
		if len(buf) == 0 || buf[0] != '{' {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual union: expected object wrapper")
		}
		buf = skipJSONWhitespace(buf[1:])
		key, rest, err := scanJSONString(buf)
		if err != nil {
			return nil, buf, err
		}
		c, ok := cr.codecFromName[key]
		if !ok {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual union: unknown member %q", key)
		}
		rest = skipJSONWhitespace(rest)
		if len(rest) == 0 || rest[0] != ':' {
			return nil, buf, newErr(ErrInvalidValue, "cannot decode textual union: expected ':'")
		}
		rest = skipJSONWhitespace(rest[1:])
		value, rest, err := c.nativeFromTextual(rest)
		if err != nil {
			return nil, buf, err
		}
		rest = skipJSONWhitespace(rest)
		if len(rest) == 0 || rest[0] != '}' {
			return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode textual union: expected '}'")
		}
		return value, rest[1:], nil
	}
}

func unionTextualFromNative(cr *codecInfo) func(buf []byte, datum interface{}) ([]byte, error) {
	return func(buf []byte, datum interface{}) ([]byte, error) {
		index, value, err := dispatchUnion(cr, datum)
		if err != nil {
			return nil, err
		}
		c := cr.codecFromIndex[index]
		key := cr.allowedTypes[index]
		if key == "null" {
			return append(buf, "null"...), nil
		}
		buf = append(buf, '{')
		buf, err = stringTextualFromNative(buf, key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, ':')
		buf, err = c.textualFromNative(buf, value)
		if err != nil {
			return nil, err
		}
		return append(buf, '}'), nil
	}
}

// dispatchUnion implements spec.md §4.D: categorize datum, locate the
// matching branch, and return its index together with the (possibly
// unwrapped) value to hand to that branch's own encoder.
func dispatchUnion(cr *codecInfo, datum interface{}) (int, interface{}, error) {
	if len(cr.allowedTypes) == 0 {
		return 0, nil, newErr(ErrDispatchNoMatch, "cannot encode union: union has no members")
	}

	// Explicit branch selectors take priority over value categorization.
	if idx, value, ok, err := explicitBranchSelector(cr, datum); err != nil {
		return 0, nil, err
	} else if ok {
		return idx, value, nil
	}

	if datum == nil {
		if idx, ok := cr.indexFromName["null"]; ok {
			return idx, nil, nil
		}
		return 0, nil, newErr(ErrDispatchNoMatch, "cannot encode binary union: no member accepts null; allowed: %v", cr.allowedTypes)
	}

	category, err := categoryForValue(cr, datum)
	if err != nil {
		return 0, nil, err
	}
	if idx, ok := cr.indexFromName[category]; ok {
		return idx, datum, nil
	}

	// Promotion fallbacks: int->long, float->double are total.
	if category == "int" {
		if idx, ok := cr.indexFromName["long"]; ok {
			return idx, datum, nil
		}
	}
	if category == "float" {
		if idx, ok := cr.indexFromName["double"]; ok {
			return idx, datum, nil
		}
	}
	if category == "string" && cr.opts.TypesStrToBytes {
		if idx, ok := cr.indexFromName["bytes"]; ok {
			return idx, datum, nil
		}
	}

	return 0, nil, newErr(ErrDispatchNoMatch, "cannot encode binary union: no member schema types support datum: allowed types: %v; received: %T", cr.allowedTypes, datum)
}

// explicitBranchSelector handles the three mapping sub-cases of spec.md
// §4.D step 9, in the documented priority order: -type hint first, then
// tuple notation, then structural record/map matching.
func explicitBranchSelector(cr *codecInfo, datum interface{}) (int, interface{}, bool, error) {
	m, ok := datum.(map[string]interface{})
	if !ok {
		return 0, nil, false, nil
	}

	if cr.opts.RecordValuesTypeHint {
		if hint, ok := m["-type"].(string); ok {
			for idx, c := range cr.codecFromIndex {
				if c.Typ == TypeRecord && (c.FullName() == hint || splitName(c.FullName()) == hint) {
					stripped := make(map[string]interface{}, len(m)-1)
					for k, v := range m {
						if k != "-type" {
							stripped[k] = v
						}
					}
					return idx, stripped, true, nil
				}
			}
			return 0, nil, false, newErr(ErrDispatchNoMatch, "cannot encode union: -type %q does not name a member record", hint)
		}
	}

	if cr.opts.AllowTupleNotation && len(m) == 1 {
		for key, value := range m {
			if idx, ok := cr.indexFromName[key]; ok {
				return idx, value, true, nil
			}
			for idx, c := range cr.codecFromIndex {
				if c.Typ == TypeRecord && c.FullName() == key {
					return idx, value, true, nil
				}
			}
		}
	}

	// Structural record match: a record branch whose field set is a
	// superset of the mapping's keys.
	matches := make([]int, 0, 1)
	for idx, c := range cr.codecFromIndex {
		if c.Typ != TypeRecord {
			continue
		}
		if recordAcceptsMapKeys(c, m) {
			matches = append(matches, idx)
		}
	}
	if len(matches) == 1 {
		return matches[0], m, true, nil
	}
	if len(matches) > 1 {
		return 0, nil, false, newErr(ErrDispatchAmbiguous, "cannot encode union: mapping matches more than one record member")
	}

	// Fall back to a map branch.
	for idx, c := range cr.codecFromIndex {
		if c.Typ == TypeMap {
			return idx, m, true, nil
		}
	}

	if len(m) > 0 {
		return 0, nil, false, newErr(ErrDispatchAmbiguous, "cannot encode union: mapping does not match any record or map member")
	}
	return 0, nil, false, nil
}

func recordAcceptsMapKeys(rec *Codec, m map[string]interface{}) bool {
	declared := make(map[string]bool, len(rec.fields))
	for _, f := range rec.fields {
		declared[f.Name] = true
	}
	for k := range m {
		if !declared[k] {
			if !rec.opts.RecordAllowExtraFields {
				return false
			}
			continue
		}
	}
	for _, f := range rec.fields {
		if _, ok := m[f.Name]; !ok && !(f.HasDefault && rec.opts.RecordEncodeUseDefaults) {
			return false
		}
	}
	return true
}

// categoryForValue implements spec.md §4.D's value categorization.
func categoryForValue(cr *codecInfo, datum interface{}) (string, error) {
	switch v := datum.(type) {
	case bool:
		return "boolean", nil
	case int32:
		return "int", nil
	case int:
		if v >= -(1<<31) && v <= (1<<31-1) {
			return "int", nil
		}
		return "long", nil
	case int64:
		if v >= -(1<<31) && v <= (1<<31-1) {
			return "int", nil
		}
		return "long", nil
	case float32:
		return "float", nil
	case float64:
		return "double", nil
	case []byte:
		return "bytes", nil
	case string:
		// A host string prefers the string branch even when bytes is also
		// present and types_str_to_bytes is enabled (spec.md §9 open
		// question, resolved in favor of string). Without a string branch,
		// a string naming a declared symbol of an enum member selects that
		// enum; otherwise it is categorized as bytes.
		if _, ok := cr.indexFromName["string"]; ok {
			return "string", nil
		}
		for _, c := range cr.codecFromIndex {
			if c.Typ != TypeEnum {
				continue
			}
			for _, s := range c.symbols {
				if s == v {
					return c.CategoryKey(), nil
				}
			}
		}
		return "bytes", nil
	case []interface{}:
		return "array", nil
	case *Record:
		return "record:" + v.codec.FullName(), nil
	case avroEnum:
		symbol := v.Str()
		for _, c := range cr.codecFromIndex {
			if c.Typ != TypeEnum {
				continue
			}
			for _, s := range c.symbols {
				if s == symbol {
					return c.CategoryKey(), nil
				}
			}
		}
		return "", newErr(ErrDispatchNoMatch, "cannot categorize enum value %q: no member enum declares that symbol", symbol)
	default:
		return "", newErr(ErrDispatchNoMatch, "cannot categorize value of type %T", datum)
	}
}
