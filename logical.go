package avro

// wrapLogical attempts to layer a logical-type interpretation over an
// already-compiled physical Codec, per spec.md §4.F. Each logical type
// declares its own (physical-type compatibility, parameter validation,
// bidirectional value mapping). If the logical name is unrecognized, or
// its parameters don't validate against the physical type, the physical
// Codec is returned unchanged (spec.md §4.C step 5) — this is a
// compile-time decision, separate from the runtime fallback in §4.F.
func wrapLogical(physical *Codec, logicalName string, params map[string]interface{}, opts Options) (*Codec, error) {
	if !opts.LogicalTypes {
		return physical, nil
	}

	var info *logicalInfo
	var err error
	switch logicalName {
	case "decimal":
		info, err = newDecimalLogical(physical, params, opts)
	case "uuid":
		info, err = newUUIDLogical(physical)
	case "date":
		info, err = newDateLogical(physical)
	case "time-millis":
		info, err = newTimeMillisLogical(physical)
	case "time-micros":
		info, err = newTimeMicrosLogical(physical)
	case "timestamp-millis":
		info, err = newTimestampMillisLogical(physical, opts)
	case "timestamp-micros":
		info, err = newTimestampMicrosLogical(physical)
	case "duration":
		info, err = newDurationLogical(physical)
	default:
		return physical, nil
	}
	if err != nil || info == nil {
		// Unrecognized parameters for this (type, logicalType) pair: keep
		// the underlying physical type, per spec.md §4.C step 5.
		return physical, nil
	}

	logicalCodec := *physical
	c := &logicalCodec
	c.logical = info
	c.physical = physical

	c.nativeFromBinary = func(buf []byte) (interface{}, []byte, error) {
		raw, rest, err := physical.nativeFromBinary(buf)
		if err != nil {
			return nil, buf, err
		}
		logical, convErr := info.fromNative(raw)
		if convErr != nil {
			// silent fallback to the raw physical value, per spec.md §4.F
			return raw, rest, nil
		}
		return logical, rest, nil
	}
	c.binaryFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		raw, convErr := info.toNative(datum)
		if convErr != nil {
			// fall back to encoding datum directly against the physical type
			return physical.binaryFromNative(buf, datum)
		}
		return physical.binaryFromNative(buf, raw)
	}
	c.nativeFromTextual = func(buf []byte) (interface{}, []byte, error) {
		raw, rest, err := physical.nativeFromTextual(buf)
		if err != nil {
			return nil, buf, err
		}
		logical, convErr := info.fromNative(raw)
		if convErr != nil {
			return raw, rest, nil
		}
		return logical, rest, nil
	}
	c.textualFromNative = func(buf []byte, datum interface{}) ([]byte, error) {
		raw, convErr := info.toNative(datum)
		if convErr != nil {
			return physical.textualFromNative(buf, datum)
		}
		return physical.textualFromNative(buf, raw)
	}

	return c, nil
}

func paramInt(params map[string]interface{}, key string) (int, bool) {
	if params == nil {
		return 0, false
	}
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
