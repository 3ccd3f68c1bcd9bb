package avro

import "encoding/binary"

// Duration is the host value representation for the "duration" logical
// type: three independent little-endian uint32 components, per spec.md
// §4.F (months, days, millis are not convertible into each other, so no
// single total-ordering type fits — a struct is the natural host shape).
type Duration struct {
	Months uint32
	Days   uint32
	Millis uint32
}

// newDurationLogical wraps fixed(12): three little-endian uint32 fields.
func newDurationLogical(physical *Codec) (*logicalInfo, error) {
	if physical.Typ != TypeFixed || physical.fixedSize != 12 {
		return nil, newErr(ErrInvalidValue, "duration must wrap fixed(12)")
	}
	info := &logicalInfo{logicalName: "duration", size: 12}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		b, ok := raw.([]byte)
		if !ok || len(b) != 12 {
			return nil, newErr(ErrInvalidValue, "duration: expected 12 bytes, got %T", raw)
		}
		return Duration{
			Months: binary.LittleEndian.Uint32(b[0:4]),
			Days:   binary.LittleEndian.Uint32(b[4:8]),
			Millis: binary.LittleEndian.Uint32(b[8:12]),
		}, nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		d, ok := logical.(Duration)
		if !ok {
			return nil, newErr(ErrInvalidValue, "duration: expected avro.Duration, got %T", logical)
		}
		b := make([]byte, 12)
		binary.LittleEndian.PutUint32(b[0:4], d.Months)
		binary.LittleEndian.PutUint32(b[4:8], d.Days)
		binary.LittleEndian.PutUint32(b[8:12], d.Millis)
		return b, nil
	}
	return info, nil
}
