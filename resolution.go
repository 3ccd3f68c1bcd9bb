package avro

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// ResolvedDecoder is schema resolution's output (component G): a
// decode-only function compiled once from a (writer, reader) schema
// pair, holding pre-computed per-field/per-branch decision tables so the
// hot decode path never re-derives a name match or promotion rule.
//
// Grounded on hamba/avro's skip-decoder family
// (f3fc6787_hamba-avro__codec_skip.go.go createSkipDecoder/
// skipDecoderOf*), generalized from "decode and discard" to "decode and
// reshape into the reader's value", using this module's function-field
// idiom instead of hamba's ValDecoder interface.
type ResolvedDecoder struct {
	nativeFromBinary func(buf []byte) (interface{}, []byte, error)
}

// NativeFromBinary decodes bytes produced under the writer schema into a
// value shaped by the reader schema.
func (d *ResolvedDecoder) NativeFromBinary(buf []byte) (interface{}, []byte, error) {
	return d.nativeFromBinary(buf)
}

// Resolve compiles a ResolvedDecoder for reading data written under
// writer into values shaped by reader, per spec.md §4.G.
func Resolve(writer, reader *Codec, opts Options) (*ResolvedDecoder, error) {
	fn, err := resolveNode(writer, reader, opts)
	if err != nil {
		return nil, err
	}
	return &ResolvedDecoder{nativeFromBinary: fn}, nil
}

type decodeFn func(buf []byte) (interface{}, []byte, error)

// namesMatch implements spec.md §4.G's named-type matching rule: a
// writer record/enum resolves against a reader record/enum of the same
// full name, or one the reader has renamed from (listed in the reader's
// own "aliases"), matching registerAlias's read-only indirection.
func namesMatch(writer, reader *Codec) bool {
	if writer.FullName() == reader.FullName() {
		return true
	}
	for _, alias := range reader.typeAliases {
		if alias == writer.FullName() {
			return true
		}
	}
	return false
}

func resolveNode(writer, reader *Codec, opts Options) (decodeFn, error) {
	// A union on either side is handled before logical/physical unwrapping,
	// since union branches themselves carry their own logical types.
	if writer.Typ == TypeUnion {
		return resolveFromWriterUnion(writer, reader, opts)
	}
	if reader.Typ == TypeUnion {
		return resolveIntoReaderUnion(writer, reader, opts)
	}

	// Logical types resolve on their physical shape; the logical
	// conversion still applies to whichever side declares it, applied
	// after the physical-level bytes are decoded.
	writerPhysical, readerPhysical := writer, reader
	if writer.logical != nil {
		writerPhysical = writer.physical
	}
	if reader.logical != nil {
		readerPhysical = reader.physical
	}

	switch {
	case writerPhysical.Typ == readerPhysical.Typ && writerPhysical.Typ == TypeRecord:
		return resolveRecord(writerPhysical, readerPhysical, opts)
	case writerPhysical.Typ == readerPhysical.Typ && writerPhysical.Typ == TypeEnum:
		return resolveEnum(writerPhysical, readerPhysical)
	case writerPhysical.Typ == TypeArray && readerPhysical.Typ == TypeArray:
		return resolveArray(writerPhysical, readerPhysical, opts)
	case writerPhysical.Typ == TypeMap && readerPhysical.Typ == TypeMap:
		return resolveMap(writerPhysical, readerPhysical, opts)
	case writerPhysical.Typ == TypeFixed && readerPhysical.Typ == TypeFixed:
		if writerPhysical.fixedSize != readerPhysical.fixedSize {
			return nil, newErr(ErrResolution, "cannot resolve fixed %q (size %d) against fixed %q (size %d)",
				writerPhysical.FullName(), writerPhysical.fixedSize, readerPhysical.FullName(), readerPhysical.fixedSize)
		}
		return applyReaderLogical(reader, writerPhysical.nativeFromBinary), nil
	default:
		return resolvePrimitive(writerPhysical, readerPhysical, reader)
	}
}

// applyReaderLogical wraps a physical-level decode function with the
// reader's own logical-type conversion, if it declares one; this lets a
// resolved decoder honor a reader-side logical annotation the writer
// never had (or vice versa, since the physical decode already ran).
func applyReaderLogical(reader *Codec, physicalDecode decodeFn) decodeFn {
	if reader.logical == nil {
		return physicalDecode
	}
	info := reader.logical
	return func(buf []byte) (interface{}, []byte, error) {
		raw, rest, err := physicalDecode(buf)
		if err != nil {
			return nil, buf, err
		}
		logical, convErr := info.fromNative(raw)
		if convErr != nil {
			return raw, rest, nil
		}
		return logical, rest, nil
	}
}

func resolvePrimitive(writerPhysical, readerPhysical, reader *Codec) (decodeFn, error) {
	decode := func(buf []byte) (interface{}, []byte, error) {
		v, rest, err := writerPhysical.nativeFromBinary(buf)
		if err != nil {
			return nil, buf, err
		}
		promoted, err := promote(writerPhysical.Typ, readerPhysical.Typ, v)
		if err != nil {
			return nil, buf, err
		}
		return promoted, rest, nil
	}
	if writerPhysical.Typ == readerPhysical.Typ {
		return applyReaderLogical(reader, decode), nil
	}
	if !promotionAllowed(writerPhysical.Typ, readerPhysical.Typ) {
		return nil, newErr(ErrResolution, "cannot resolve %s (writer) against %s (reader): no promotion rule",
			writerPhysical.Typ, readerPhysical.Typ)
	}
	return applyReaderLogical(reader, decode), nil
}

func promotionAllowed(from, to CodecType) bool {
	switch from {
	case TypeInt:
		return to == TypeLong || to == TypeFloat || to == TypeDouble
	case TypeLong:
		return to == TypeFloat || to == TypeDouble
	case TypeFloat:
		return to == TypeDouble
	case TypeString:
		return to == TypeBytes
	case TypeBytes:
		return to == TypeString
	default:
		return false
	}
}

func promote(from, to CodecType, v interface{}) (interface{}, error) {
	if from == to {
		return v, nil
	}
	switch from {
	case TypeInt:
		n := v.(int32)
		switch to {
		case TypeLong:
			return int64(n), nil
		case TypeFloat:
			return float32(n), nil
		case TypeDouble:
			return float64(n), nil
		}
	case TypeLong:
		n := v.(int64)
		switch to {
		case TypeFloat:
			return float32(n), nil
		case TypeDouble:
			return float64(n), nil
		}
	case TypeFloat:
		if to == TypeDouble {
			return float64(v.(float32)), nil
		}
	case TypeString:
		if to == TypeBytes {
			return []byte(v.(string)), nil
		}
	case TypeBytes:
		if to == TypeString {
			return string(v.([]byte)), nil
		}
	}
	return nil, newErr(ErrResolution, "cannot promote %s to %s", from, to)
}

// resolveRecord implements spec.md §4.G's record resolution: match
// reader fields to writer fields by name (or alias), fall back to the
// reader's own default, and error MissingReaderField when neither is
// available. Writer-only fields are decoded with a skip decoder and
// discarded.
func resolveRecord(writer, reader *Codec, opts Options) (decodeFn, error) {
	if !namesMatch(writer, reader) {
		return nil, newErr(ErrResolution, "cannot resolve record %q against reader record %q: names do not match (nor does either alias the other)",
			writer.FullName(), reader.FullName())
	}

	readerIndexByName := make(map[string]int, len(reader.fields))
	for i, f := range reader.fields {
		readerIndexByName[f.Name] = i
		for _, alias := range f.Aliases {
			readerIndexByName[alias] = i
		}
	}

	type writerStep struct {
		readerIndex int // -1 means "writer-only field, skip"
		decode      decodeFn
	}
	steps := make([]writerStep, len(writer.fields))
	matched := make([]bool, len(reader.fields))

	for i, wf := range writer.fields {
		if ri, ok := readerIndexByName[wf.Name]; ok {
			fn, err := resolveNode(wf.Type, reader.fields[ri].Type, opts)
			if err != nil {
				return nil, fmt.Errorf("record %q field %q: %w", reader.FullName(), wf.Name, err)
			}
			steps[i] = writerStep{readerIndex: ri, decode: fn}
			matched[ri] = true
			continue
		}
		steps[i] = writerStep{readerIndex: -1, decode: skipDecoder(wf.Type)}
	}

	for i, rf := range reader.fields {
		if !matched[i] && !rf.HasDefault {
			return nil, newErr(ErrResolution, "record %q: reader field %q has no writer match and no default (MissingReaderField)", reader.FullName(), rf.Name)
		}
	}

	return func(buf []byte) (interface{}, []byte, error) {
		values := make([]interface{}, len(reader.fields))
		for i, rf := range reader.fields {
			if rf.HasDefault && !matched[i] {
				values[i] = deepcopy.Copy(rf.Default)
			}
		}
		for _, step := range steps {
			v, rest, err := step.decode(buf)
			if err != nil {
				return nil, buf, err
			}
			buf = rest
			if step.readerIndex >= 0 {
				values[step.readerIndex] = v
			}
		}
		if opts.RecordDecodesToDict {
			m := make(map[string]interface{}, len(reader.fields))
			for i, f := range reader.fields {
				m[f.Name] = values[i]
			}
			return m, buf, nil
		}
		return &Record{codec: reader, Values: values}, buf, nil
	}, nil
}

// resolveEnum implements spec.md §4.G's enum resolution: map writer
// symbols to reader symbols by name; a writer symbol absent from the
// reader falls back to the reader's default, else EnumMismatch.
func resolveEnum(writer, reader *Codec) (decodeFn, error) {
	if !namesMatch(writer, reader) {
		return nil, newErr(ErrResolution, "cannot resolve enum %q against reader enum %q: names do not match (nor does either alias the other)",
			writer.FullName(), reader.FullName())
	}

	readerHas := make(map[string]bool, len(reader.symbols))
	for _, s := range reader.symbols {
		readerHas[s] = true
	}
	return func(buf []byte) (interface{}, []byte, error) {
		idx, rest, err := intNativeFromBinary(buf)
		if err != nil {
			return nil, buf, err
		}
		i := idx.(int32)
		if i < 0 || int(i) >= len(writer.symbols) {
			return nil, buf, newErr(ErrResolution, "enum %q: writer index %d out of range", writer.FullName(), i)
		}
		symbol := writer.symbols[i]
		if readerHas[symbol] {
			return symbol, rest, nil
		}
		if reader.hasEnumDefault {
			return reader.enumDefault, rest, nil
		}
		return nil, buf, newErr(ErrResolution, "enum %q: writer symbol %q unknown to reader and reader has no default (EnumMismatch)", reader.FullName(), symbol)
	}, nil
}

func resolveArray(writer, reader *Codec, opts Options) (decodeFn, error) {
	elemDecode, err := resolveNode(writer.itemsCodec, reader.itemsCodec, opts)
	if err != nil {
		return nil, fmt.Errorf("array items: %w", err)
	}
	return func(buf []byte) (interface{}, []byte, error) {
		var out []interface{}
		for {
			v, rest, err := longNativeFromBinary(buf)
			if err != nil {
				return nil, buf, err
			}
			buf = rest
			count := v.(int64)
			if count == 0 {
				break
			}
			if count < 0 {
				if _, rest, err := longNativeFromBinary(buf); err == nil {
					buf = rest
				} else {
					return nil, buf, err
				}
				count = -count
			}
			for i := int64(0); i < count; i++ {
				item, rest, err := elemDecode(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				out = append(out, item)
			}
		}
		if out == nil {
			out = []interface{}{}
		}
		return out, buf, nil
	}, nil
}

func resolveMap(writer, reader *Codec, opts Options) (decodeFn, error) {
	valDecode, err := resolveNode(writer.itemsCodec, reader.itemsCodec, opts)
	if err != nil {
		return nil, fmt.Errorf("map values: %w", err)
	}
	return func(buf []byte) (interface{}, []byte, error) {
		out := make(map[string]interface{})
		for {
			v, rest, err := longNativeFromBinary(buf)
			if err != nil {
				return nil, buf, err
			}
			buf = rest
			count := v.(int64)
			if count == 0 {
				break
			}
			if count < 0 {
				if _, rest, err := longNativeFromBinary(buf); err == nil {
					buf = rest
				} else {
					return nil, buf, err
				}
				count = -count
			}
			for i := int64(0); i < count; i++ {
				key, rest, err := stringNativeFromBinary(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				val, rest, err := valDecode(buf)
				if err != nil {
					return nil, buf, err
				}
				buf = rest
				out[key] = val
			}
		}
		return out, buf, nil
	}, nil
}

func resolveFromWriterUnion(writer, reader *Codec, opts Options) (decodeFn, error) {
	branches := make([]decodeFn, len(writer.union.codecFromIndex))
	var firstErr error
	resolved := 0
	for i, wm := range writer.union.codecFromIndex {
		fn, err := resolveNode(wm, reader, opts)
		if err != nil {
			// A branch the reader cannot accept fails only when the data
			// actually selects it.
			branchErr := fmt.Errorf("union branch %d: %w", i+1, err)
			if firstErr == nil {
				firstErr = branchErr
			}
			branches[i] = func(buf []byte) (interface{}, []byte, error) { return nil, buf, branchErr }
			continue
		}
		branches[i] = fn
		resolved++
	}
	if resolved == 0 && firstErr != nil {
		return nil, firstErr
	}
	return func(buf []byte) (interface{}, []byte, error) {
		idx, rest, err := longNativeFromBinary(buf)
		if err != nil {
			return nil, buf, err
		}
		i := idx.(int64)
		if i < 0 || int(i) >= len(branches) {
			return nil, buf, newErr(ErrResolution, "union: writer index %d out of range", i)
		}
		return branches[i](rest)
	}, nil
}

// resolveIntoReaderUnion handles a non-union writer against a union
// reader: select the first reader branch compatible with the writer's
// type (spec.md §4.G).
func resolveIntoReaderUnion(writer, reader *Codec, opts Options) (decodeFn, error) {
	for _, rm := range reader.union.codecFromIndex {
		if fn, err := resolveNode(writer, rm, opts); err == nil {
			return fn, nil
		}
	}
	return nil, newErr(ErrResolution, "union: no reader branch in %q accepts writer type %s", reader.FullName(), writer.Typ)
}

// skipDecoder builds a decode-and-discard function for a writer-only
// field, grounded on hamba/avro's createSkipDecoder family: it still
// decodes with the writer's own Codec (consuming exactly as many bytes
// as a real decode would), then throws the value away.
func skipDecoder(writer *Codec) decodeFn {
	return func(buf []byte) (interface{}, []byte, error) {
		_, rest, err := writer.nativeFromBinary(buf)
		return nil, rest, err
	}
}
