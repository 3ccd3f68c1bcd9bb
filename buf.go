package avro

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// MaxBlockCount and MaxBlockSize are sanity ceilings for decoded counts
// and lengths. bytesNativeFromBinary rejects a bytes/string length above
// MaxBlockSize before allocating, so a corrupt or hostile length prefix
// cannot cause a multi-exabyte allocation. The array, map and
// container-file block decoders do not check their counts or sizes
// against either constant.
const (
	MaxBlockCount = math.MaxInt32
	MaxBlockSize  = math.MaxInt32
)

// longBinaryFromNative ZigZag+LEB128 encodes an integer value (accepting
// int, int32, or int64) and appends it to buf.
func longBinaryFromNative(buf []byte, datum interface{}) ([]byte, error) {
	var in int64
	switch v := datum.(type) {
	case int64:
		in = v
	case int:
		in = int64(v)
	case int32:
		in = int64(v)
	default:
		return nil, newErr(ErrInvalidValue, "cannot encode binary long: expected int, int32, or int64; received: %T", datum)
	}
	return appendVarint(buf, in), nil
}

func appendVarint(buf []byte, in int64) []byte {
	encoded := uint64((in << 1) ^ (in >> 63))
	for encoded >= 0x80 {
		buf = append(buf, byte(encoded)|0x80)
		encoded >>= 7
	}
	return append(buf, byte(encoded))
}

// longNativeFromBinary decodes a ZigZag+LEB128 varint with the 10-group
// ceiling spec.md specifies for long. The group ceiling is a parameter of
// varintNativeFromBinary: this function passes 10, and
// intNativeFromBinary passes 5 for int.
func longNativeFromBinary(buf []byte) (interface{}, []byte, error) {
	return varintNativeFromBinary(buf, 10)
}

func varintNativeFromBinary(buf []byte, maxGroups int) (interface{}, []byte, error) {
	var value, shift uint64
	var offset int
	for {
		if offset >= len(buf) {
			return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode varint")
		}
		// Reject before reading a (maxGroups+1)-th byte at all, so an
		// over-long encoding whose final byte happens to terminate (no
		// continuation bit) is still caught, not just one whose
		// maxGroups-th byte carries a continuation bit.
		if offset >= maxGroups {
			return nil, buf, newErr(ErrIntegerOverflow, "varint overflow: more than %d groups", maxGroups)
		}
		b := buf[offset]
		offset++
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	decoded := int64(value>>1) ^ -int64(value&1)
	return decoded, buf[offset:], nil
}

// intNativeFromBinary decodes a value as component A requires for the
// 32-bit int type: same ZigZag/LEB128 coding, but failing with
// IntegerOverflow past 5 groups rather than 10.
func intNativeFromBinary(buf []byte) (interface{}, []byte, error) {
	v, rest, err := varintNativeFromBinary(buf, 5)
	if err != nil {
		return nil, buf, err
	}
	n := v.(int64)
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, buf, newErr(ErrIntegerOverflow, "value out of range for int: %d", n)
	}
	return int32(n), rest, nil
}

func intBinaryFromNative(buf []byte, datum interface{}) ([]byte, error) {
	var in int32
	switch v := datum.(type) {
	case int32:
		in = v
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, newErr(ErrInvalidValue, "cannot encode binary int: value out of range: %d", v)
		}
		in = int32(v)
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, newErr(ErrInvalidValue, "cannot encode binary int: value out of range: %d", v)
		}
		in = int32(v)
	default:
		return nil, newErr(ErrInvalidValue, "cannot encode binary int: expected int, int32, or int64; received: %T", datum)
	}
	return appendVarint(buf, int64(in)), nil
}

func floatBinaryFromNative(buf []byte, in float32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(in))
	return append(buf, tmp[:]...)
}

func floatNativeFromBinary(buf []byte) (float32, []byte, error) {
	if len(buf) < 4 {
		return 0, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode binary float")
	}
	bits := binary.LittleEndian.Uint32(buf[:4])
	return math.Float32frombits(bits), buf[4:], nil
}

func doubleBinaryFromNative(buf []byte, in float64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(in))
	return append(buf, tmp[:]...)
}

func doubleNativeFromBinary(buf []byte) (float64, []byte, error) {
	if len(buf) < 8 {
		return 0, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode binary double")
	}
	bits := binary.LittleEndian.Uint64(buf[:8])
	return math.Float64frombits(bits), buf[8:], nil
}

// bytesNativeFromBinary reads a long-encoded length followed by that many
// raw bytes.
func bytesNativeFromBinary(buf []byte) ([]byte, []byte, error) {
	v, rest, err := varintNativeFromBinary(buf, 10)
	if err != nil {
		return nil, buf, err
	}
	size := v.(int64)
	if size < 0 || size > MaxBlockSize {
		return nil, buf, newErr(ErrInvalidValue, "cannot decode binary bytes: invalid length: %d", size)
	}
	if int64(len(rest)) < size {
		return nil, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode binary bytes: need %d bytes, have %d", size, len(rest))
	}
	out := make([]byte, size)
	copy(out, rest[:size])
	return out, rest[size:], nil
}

func bytesBinaryFromNative(buf []byte, in []byte) []byte {
	buf = appendVarint(buf, int64(len(in)))
	return append(buf, in...)
}

// stringNativeFromBinary decodes a long-encoded length followed by that
// many raw, UTF-8-validated bytes.
func stringNativeFromBinary(buf []byte) (string, []byte, error) {
	raw, rest, err := bytesNativeFromBinary(buf)
	if err != nil {
		return "", buf, err
	}
	if !utf8.Valid(raw) {
		return "", buf, newErr(ErrInvalidUtf8, "cannot decode binary string: invalid UTF-8")
	}
	return string(raw), rest, nil
}

func stringBinaryFromNative(buf []byte, in string) []byte {
	return bytesBinaryFromNative(buf, []byte(in))
}

func booleanNativeFromBinary(buf []byte) (bool, []byte, error) {
	if len(buf) < 1 {
		return false, buf, newErr(ErrTruncatedInput, "short buffer: cannot decode binary boolean")
	}
	return buf[0] != 0, buf[1:], nil
}

func booleanBinaryFromNative(buf []byte, in bool) []byte {
	if in {
		return append(buf, 1)
	}
	return append(buf, 0)
}
