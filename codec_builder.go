package avro

import (
	"fmt"
	"sort"
)

// codecBuilder threads compile-time-only state through a single Schema
// compilation: the Options in effect and the enclosing registry. Grounded
// on union.go's `cb *codecBuilder` parameter to buildCodec, generalized
// from "unused placeholder" to the actual per-compile state bag.
type codecBuilder struct {
	reg  *registry
	opts Options
}

// buildCodec is the schema compiler's recursive-descent entry point
// (component E). schema is a structured value as produced by decoding an
// Avro JSON schema document: nil, bool, float64/int, string,
// []interface{}, or map[string]interface{}.
func buildCodec(enclosingNamespace string, schema interface{}, cb *codecBuilder) (*Codec, error) {
	switch v := schema.(type) {
	case nil:
		return nil, newSchemaParseErr(SubUnknownType, "schema ought not be nil")

	case string:
		return buildCodecForTypeDescribedByString(enclosingNamespace, v, cb)

	case map[string]interface{}:
		return buildCodecForTypeDescribedByMap(enclosingNamespace, v, cb)

	case []interface{}:
		return buildCodecForTypeDescribedBySlice(enclosingNamespace, v, cb)

	default:
		return nil, newSchemaParseErr(SubUnknownType, "schema ought to be one of: string, map, array; received: %T", schema)
	}
}

func buildCodecForTypeDescribedByString(enclosingNamespace, typeName string, cb *codecBuilder) (*Codec, error) {
	if c, ok := cb.reg.get(typeName); ok {
		return c, nil
	}
	qualified, _ := qualify(enclosingNamespace, typeName)
	if c, ok := cb.reg.get(qualified); ok {
		return c, nil
	}
	return nil, newSchemaParseErr(SubUnknownType, "%q is not a known primitive type or previously registered name", typeName)
}

func buildCodecForTypeDescribedBySlice(enclosingNamespace string, arr []interface{}, cb *codecBuilder) (*Codec, error) {
	members := make([]*Codec, len(arr))
	for i, item := range arr {
		m, err := buildCodec(enclosingNamespace, item, cb)
		if err != nil {
			return nil, fmt.Errorf("union item %d ought to be valid Avro type: %w", i+1, err)
		}
		members[i] = m
	}
	return newUnionCodec(members, cb.opts)
}

func buildCodecForTypeDescribedByMap(enclosingNamespace string, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	if arr, ok := m["type"].([]interface{}); ok {
		return buildCodecForTypeDescribedBySlice(enclosingNamespace, arr, cb)
	}

	typeStr, ok := m["type"].(string)
	if !ok {
		return nil, newSchemaParseErr(SubUnknownType, "map schema requires a string or array \"type\" key: %+v", m)
	}

	switch typeStr {
	case "record", "error":
		return buildRecordCodec(enclosingNamespace, m, cb)
	case "enum":
		return buildEnumCodec(enclosingNamespace, m, cb)
	case "array":
		return buildArrayCodec(enclosingNamespace, m, cb)
	case "map":
		return buildMapCodec(enclosingNamespace, m, cb)
	case "fixed":
		return buildFixedCodec(enclosingNamespace, m, cb)
	default:
		physical, err := buildCodecForTypeDescribedByString(enclosingNamespace, typeStr, cb)
		if err != nil {
			return nil, err
		}
		return maybeWrapLogical(physical, m, cb)
	}
}

func maybeWrapLogical(physical *Codec, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	logicalName, ok := m["logicalType"].(string)
	if !ok {
		return physical, nil
	}
	params := map[string]interface{}{}
	for _, key := range []string{"precision", "scale", "size"} {
		if v, ok := m[key]; ok {
			params[key] = v
		}
	}
	return wrapLogical(physical, logicalName, params, cb.opts)
}

// nameAndNamespace resolves a named type's (simple name, namespace) pair
// per spec.md §3's name-qualification rule: a dotted name is already fully
// qualified and wins outright; otherwise an explicit namespace key applies,
// falling back to the enclosing namespace.
func nameAndNamespace(enclosingNamespace string, m map[string]interface{}) (*name, error) {
	simple, ok := m["name"].(string)
	if !ok || simple == "" {
		return nil, newSchemaParseErr(SubInvalidName, "name key required and must be a non-empty string")
	}
	if qualified, ns := qualify("", simple); ns != "" || qualified != simple {
		return &name{simple, ns}, nil
	}
	if explicitNS, ok := m["namespace"].(string); ok {
		return &name{simple, explicitNS}, nil
	}
	return &name{simple, enclosingNamespace}, nil
}

// registerTypeAliases implements spec.md §3 invariant 1: a named type's
// own "aliases" key registers each alias as a read-only indirection to
// the same Codec, resolved in the type's own namespace the same way its
// primary name is (qualify).
func registerTypeAliases(n *name, m map[string]interface{}, c *Codec, cb *codecBuilder) error {
	rawAliases, ok := m["aliases"].([]interface{})
	if !ok {
		return nil
	}
	aliases := make([]string, 0, len(rawAliases))
	for _, a := range rawAliases {
		alias, ok := a.(string)
		if !ok {
			continue
		}
		qualified, _ := qualify(n.namespace, alias)
		if err := cb.reg.registerAlias(qualified, n.fullName()); err != nil {
			return err
		}
		aliases = append(aliases, qualified)
	}
	c.typeAliases = aliases
	return nil
}

func buildRecordCodec(enclosingNamespace string, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	n, err := nameAndNamespace(enclosingNamespace, m)
	if err != nil {
		return nil, err
	}
	recordNamespace := n.namespace

	rawFields, ok := m["fields"].([]interface{})
	if !ok {
		return nil, newSchemaParseErr(SubInvalidName, "record %q must have an array of fields", n.fullName())
	}

	// Register a placeholder before compiling the body so recursive
	// self-references resolve (spec.md §4.C step 2).
	placeholder := &Codec{Typ: TypeRecord, typeName: n, opts: cb.opts}
	if err := cb.reg.register(n.fullName(), placeholder); err != nil {
		return nil, err
	}

	fields := make([]*Field, len(rawFields))
	seen := make(map[string]bool, len(rawFields))
	for i, rf := range rawFields {
		fm, ok := rf.(map[string]interface{})
		if !ok {
			return nil, newSchemaParseErr(SubInvalidName, "record %q field %d must be an object", n.fullName(), i)
		}
		fname, ok := fm["name"].(string)
		if !ok || fname == "" {
			return nil, newSchemaParseErr(SubInvalidName, "record %q field %d requires a name", n.fullName(), i)
		}
		if seen[fname] {
			return nil, newSchemaParseErr(SubDuplicateName, "record %q has duplicate field name %q", n.fullName(), fname)
		}
		seen[fname] = true

		ftypeSchema, ok := fm["type"]
		if !ok {
			return nil, newSchemaParseErr(SubInvalidName, "record %q field %q requires a type", n.fullName(), fname)
		}
		ftype, err := buildCodec(recordNamespace, ftypeSchema, cb)
		if err != nil {
			return nil, fmt.Errorf("record %q field %q: %w", n.fullName(), fname, err)
		}

		field := &Field{Name: fname, Type: ftype, Order: "ascending"}
		if order, ok := fm["order"].(string); ok {
			field.Order = order
		}
		if aliases, ok := fm["aliases"].([]interface{}); ok {
			for _, a := range aliases {
				if s, ok := a.(string); ok {
					field.Aliases = append(field.Aliases, s)
				}
			}
		}
		if def, ok := fm["default"]; ok {
			field.HasDefault = true
			field.Default = def
		}
		fields[i] = field
	}

	// Replace the placeholder's contents in place so already-captured
	// pointers (from recursive references) see the finished record.
	finished := newRecordCodec(n, fields, cb.opts)
	*placeholder = *finished

	if err := registerTypeAliases(n, m, placeholder, cb); err != nil {
		return nil, err
	}

	if err := validateRecordDefaults(placeholder, cb.opts); err != nil {
		return nil, err
	}

	return placeholder, nil
}

// validateRecordDefaults implements spec.md §4.C step 6: every field
// default must validate (coerce) against its field's type. The coerced,
// natively-typed value replaces the field's raw encoding/json value (e.g.
// float64 -> int32/int64 for int/long fields), so every later consumer
// (binary/textual encode, resolution's reader-default fallback) sees a
// value its type's own binaryFromNative/etc already know how to handle.
func validateRecordDefaults(rec *Codec, opts Options) error {
	for _, f := range rec.fields {
		if !f.HasDefault {
			continue
		}
		coerced, err := coerceDefault(f.Type, f.Default, opts)
		if err != nil {
			if opts.AllowInvalidDefaultValues {
				continue
			}
			return newSchemaParseErr(SubInvalidDefault, "record %q field %q: default does not validate: %s", rec.FullName(), f.Name, err)
		}
		f.Default = coerced
	}
	return nil
}

// coerceDefault validates (and normalizes) a JSON-decoded default value
// against its declared field type, switching on the type and accepting the
// loosely-typed values `encoding/json` produces (float64 for all numbers,
// etc), which it converts to the type's native Go value.
func coerceDefault(t *Codec, def interface{}, opts Options) (interface{}, error) {
	switch t.Typ {
	case TypeNull:
		if def != nil {
			return nil, newErr(ErrInvalidValue, "expected null default")
		}
		return nil, nil
	case TypeBoolean:
		b, ok := def.(bool)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected boolean default")
		}
		return b, nil
	case TypeInt:
		f, ok := def.(float64)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected numeric default")
		}
		return int32(f), nil
	case TypeLong:
		f, ok := def.(float64)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected numeric default")
		}
		return int64(f), nil
	case TypeFloat:
		f, ok := def.(float64)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected numeric default")
		}
		return float32(f), nil
	case TypeDouble:
		f, ok := def.(float64)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected numeric default")
		}
		return f, nil
	case TypeBytes, TypeFixed:
		s, ok := def.(string)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected string-encoded default")
		}
		raw := make([]byte, len([]rune(s)))
		for i, r := range []rune(s) {
			raw[i] = byte(r)
		}
		return raw, nil
	case TypeString:
		s, ok := def.(string)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected string default")
		}
		return s, nil
	case TypeEnum:
		s, ok := def.(string)
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected string default")
		}
		found := false
		for _, sym := range t.symbols {
			if sym == s {
				found = true
				break
			}
		}
		if !found {
			return nil, newErr(ErrInvalidValue, "default %q is not a declared symbol", s)
		}
		return s, nil
	case TypeArray:
		arr, ok := def.([]interface{})
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected array default")
		}
		coerced := make([]interface{}, len(arr))
		for i, el := range arr {
			v, err := coerceDefault(t.itemsCodec, el, opts)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			coerced[i] = v
		}
		return coerced, nil
	case TypeMap:
		mv, ok := def.(map[string]interface{})
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected map default")
		}
		coerced := make(map[string]interface{}, len(mv))
		for k, el := range mv {
			v, err := coerceDefault(t.itemsCodec, el, opts)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			coerced[k] = v
		}
		return coerced, nil
	case TypeRecord:
		mv, ok := def.(map[string]interface{})
		if !ok {
			return nil, newErr(ErrInvalidValue, "expected record default")
		}
		coerced := make(map[string]interface{}, len(t.fields))
		for _, f := range t.fields {
			v, ok := mv[f.Name]
			if !ok {
				if f.HasDefault {
					coerced[f.Name] = f.Default
					continue
				}
				return nil, newErr(ErrMissingField, "record default missing field %q", f.Name)
			}
			coercedField, err := coerceDefault(f.Type, v, opts)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			coerced[f.Name] = coercedField
		}
		return coerced, nil
	case TypeUnion:
		if len(t.union.codecFromIndex) == 0 {
			return nil, newErr(ErrInvalidValue, "empty union has no default")
		}
		// Per spec.md §4.C/§4.D, a union default validates against the
		// first member unless allow_union_default_any_member is set.
		if v, err := coerceDefault(t.union.codecFromIndex[0], def, opts); err == nil {
			return v, nil
		}
		if opts.AllowUnionDefaultAnyMember {
			for _, m := range t.union.codecFromIndex[1:] {
				if v, err := coerceDefault(m, def, opts); err == nil {
					return v, nil
				}
			}
		}
		return nil, newErr(ErrInvalidValue, "union default does not validate against the first member")
	default:
		return def, nil
	}
}

func buildEnumCodec(enclosingNamespace string, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	n, err := nameAndNamespace(enclosingNamespace, m)
	if err != nil {
		return nil, err
	}
	rawSymbols, ok := m["symbols"].([]interface{})
	if !ok {
		return nil, newSchemaParseErr(SubInvalidName, "enum %q must have a symbols array", n.fullName())
	}
	symbols := make([]string, len(rawSymbols))
	for i, s := range rawSymbols {
		str, ok := s.(string)
		if !ok {
			return nil, newSchemaParseErr(SubInvalidName, "enum %q symbol %d must be a string", n.fullName(), i)
		}
		symbols[i] = str
	}
	defaultSymbol, hasDefault := m["default"].(string)

	c, err := newEnumCodec(n, symbols, defaultSymbol, hasDefault)
	if err != nil {
		return nil, err
	}
	if err := cb.reg.register(n.fullName(), c); err != nil {
		return nil, err
	}
	if err := registerTypeAliases(n, m, c, cb); err != nil {
		return nil, err
	}
	return c, nil
}

func buildArrayCodec(enclosingNamespace string, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	itemsSchema, ok := m["items"]
	if !ok {
		return nil, newSchemaParseErr(SubUnknownType, "array schema requires an items key")
	}
	items, err := buildCodec(enclosingNamespace, itemsSchema, cb)
	if err != nil {
		return nil, fmt.Errorf("array items: %w", err)
	}
	return newArrayCodec(items), nil
}

func buildMapCodec(enclosingNamespace string, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	valuesSchema, ok := m["values"]
	if !ok {
		return nil, newSchemaParseErr(SubUnknownType, "map schema requires a values key")
	}
	values, err := buildCodec(enclosingNamespace, valuesSchema, cb)
	if err != nil {
		return nil, fmt.Errorf("map values: %w", err)
	}
	return newMapCodec(values), nil
}

func buildFixedCodec(enclosingNamespace string, m map[string]interface{}, cb *codecBuilder) (*Codec, error) {
	n, err := nameAndNamespace(enclosingNamespace, m)
	if err != nil {
		return nil, err
	}
	sizeF, ok := m["size"].(float64)
	if !ok {
		return nil, newSchemaParseErr(SubInvalidName, "fixed %q requires a numeric size", n.fullName())
	}
	c, err := newFixedCodec(n, int(sizeF))
	if err != nil {
		return nil, err
	}
	if err := cb.reg.register(n.fullName(), c); err != nil {
		return nil, err
	}
	if err := registerTypeAliases(n, m, c, cb); err != nil {
		return nil, err
	}
	return maybeWrapLogical(c, m, cb)
}

// sortedNames is a small helper used by Schema.NamedTypes to present a
// deterministic, alphabetically sorted order that does not depend on the
// order in which names were registered.
func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
