package avro

import "time"

// newDateLogical wraps int: value is days since the Unix epoch (UTC).
func newDateLogical(physical *Codec) (*logicalInfo, error) {
	if physical.Typ != TypeInt {
		return nil, newErr(ErrInvalidValue, "date must wrap int")
	}
	info := &logicalInfo{logicalName: "date"}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		days, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		return time.Unix(days*86400, 0).UTC(), nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		t, ok := logical.(time.Time)
		if !ok {
			return nil, newErr(ErrInvalidValue, "date: expected time.Time, got %T", logical)
		}
		days := t.UTC().Unix() / 86400
		return int32(days), nil
	}
	return info, nil
}

// newTimeMillisLogical wraps int: milliseconds since midnight.
func newTimeMillisLogical(physical *Codec) (*logicalInfo, error) {
	if physical.Typ != TypeInt {
		return nil, newErr(ErrInvalidValue, "time-millis must wrap int")
	}
	info := &logicalInfo{logicalName: "time-millis"}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		ms, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		d, ok := logical.(time.Duration)
		if !ok {
			return nil, newErr(ErrInvalidValue, "time-millis: expected time.Duration, got %T", logical)
		}
		return int32(d / time.Millisecond), nil
	}
	return info, nil
}

// newTimeMicrosLogical wraps long: microseconds since midnight.
func newTimeMicrosLogical(physical *Codec) (*logicalInfo, error) {
	if physical.Typ != TypeLong {
		return nil, newErr(ErrInvalidValue, "time-micros must wrap long")
	}
	info := &logicalInfo{logicalName: "time-micros"}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		us, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		return time.Duration(us) * time.Microsecond, nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		d, ok := logical.(time.Duration)
		if !ok {
			return nil, newErr(ErrInvalidValue, "time-micros: expected time.Duration, got %T", logical)
		}
		return int64(d / time.Microsecond), nil
	}
	return info, nil
}

// newTimestampMillisLogical wraps long: milliseconds since the Unix
// epoch. When AlternateTimestampMillisEncoding is set, encoding derives
// the millisecond count from UnixNano through a float64 count of seconds,
// which can round differently from UnixMilli; decoding does not consult
// the option.
func newTimestampMillisLogical(physical *Codec, opts Options) (*logicalInfo, error) {
	if physical.Typ != TypeLong {
		return nil, newErr(ErrInvalidValue, "timestamp-millis must wrap long")
	}
	info := &logicalInfo{logicalName: "timestamp-millis"}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		ms, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		t, ok := logical.(time.Time)
		if !ok {
			return nil, newErr(ErrInvalidValue, "timestamp-millis: expected time.Time, got %T", logical)
		}
		if opts.AlternateTimestampMillisEncoding {
			return int64(float64(t.UnixNano()) / 1e9 * 1000), nil
		}
		return t.UnixMilli(), nil
	}
	return info, nil
}

// newTimestampMicrosLogical wraps long: microseconds since the Unix epoch.
func newTimestampMicrosLogical(physical *Codec) (*logicalInfo, error) {
	if physical.Typ != TypeLong {
		return nil, newErr(ErrInvalidValue, "timestamp-micros must wrap long")
	}
	info := &logicalInfo{logicalName: "timestamp-micros"}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		us, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		return time.UnixMicro(us).UTC(), nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		t, ok := logical.(time.Time)
		if !ok {
			return nil, newErr(ErrInvalidValue, "timestamp-micros: expected time.Time, got %T", logical)
		}
		return t.UnixMicro(), nil
	}
	return info, nil
}

func asInt64(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, newErr(ErrInvalidValue, "expected integer, got %T", raw)
	}
}
