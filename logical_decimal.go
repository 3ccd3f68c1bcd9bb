package avro

import (
	"math"
	"math/big"
)

// newDecimalLogical validates decimal's (precision, scale) parameters
// against the underlying physical type (bytes, or fixed of a given size)
// per spec.md §4.F, and returns the bidirectional big.Rat<->bytes mapping.
// Host decimal values are represented as *big.Rat, matching goavro's own
// convention (see binary_test.go's comment calling out "logical binary
// types (math/big.Rat, etc)" as needing special-cased test comparison).
func newDecimalLogical(physical *Codec, params map[string]interface{}, opts Options) (*logicalInfo, error) {
	if physical.Typ != TypeBytes && physical.Typ != TypeFixed {
		return nil, newErr(ErrInvalidValue, "decimal must wrap bytes or fixed")
	}
	precision, ok := paramInt(params, "precision")
	if !ok || precision <= 0 {
		return nil, newErr(ErrInvalidValue, "decimal requires a positive precision")
	}
	scale, _ := paramInt(params, "scale")
	if scale < 0 || scale > precision {
		return nil, newErr(ErrInvalidValue, "decimal scale must be between 0 and precision")
	}
	if physical.Typ == TypeFixed {
		maxPrecision := int(math.Floor(math.Log10(2) * (8*float64(physical.fixedSize) - 1)))
		if precision > maxPrecision {
			return nil, newErr(ErrInvalidValue, "decimal precision %d exceeds fixed(%d) capacity", precision, physical.fixedSize)
		}
	}

	scaleFactor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)

	info := &logicalInfo{
		logicalName: "decimal",
		precision:   precision,
		scale:       scale,
	}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		b, ok := raw.([]byte)
		if !ok {
			return nil, newErr(ErrInvalidValue, "decimal: expected bytes, got %T", raw)
		}
		unscaled := bigIntFromTwosComplement(b)
		if opts.DecimalCheckExpOverflow {
			limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
			abs := new(big.Int).Abs(unscaled)
			if abs.Cmp(limit) >= 0 {
				return nil, newErr(ErrInvalidValue, "decimal: unscaled value exceeds declared precision %d", precision)
			}
		}
		return new(big.Rat).SetFrac(unscaled, scaleFactor), nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		r, ok := logical.(*big.Rat)
		if !ok {
			return nil, newErr(ErrInvalidValue, "decimal: expected *big.Rat, got %T", logical)
		}
		scaled := new(big.Int).Mul(r.Num(), scaleFactor)
		scaled.Div(scaled, r.Denom())
		if opts.DecimalCheckExpOverflow {
			limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
			abs := new(big.Int).Abs(scaled)
			if abs.Cmp(limit) >= 0 {
				return nil, newErr(ErrInvalidValue, "decimal: value exceeds declared precision %d", precision)
			}
		}
		raw := twosComplementFromBigInt(scaled)
		if physical.Typ == TypeFixed {
			if len(raw) > physical.fixedSize {
				return nil, newErr(ErrInvalidValue, "decimal: unscaled value does not fit in fixed(%d)", physical.fixedSize)
			}
			padded := make([]byte, physical.fixedSize)
			signByte := byte(0)
			if scaled.Sign() < 0 {
				signByte = 0xff
			}
			for i := range padded {
				padded[i] = signByte
			}
			copy(padded[physical.fixedSize-len(raw):], raw)
			return padded, nil
		}
		return raw, nil
	}
	return info, nil
}

// bigIntFromTwosComplement decodes a big-endian two's-complement integer.
func bigIntFromTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	negative := b[0]&0x80 != 0
	if !negative {
		return new(big.Int).SetBytes(b)
	}
	inverted := make([]byte, len(b))
	for i, v := range b {
		inverted[i] = ^v
	}
	magnitude := new(big.Int).SetBytes(inverted)
	magnitude.Add(magnitude, big.NewInt(1))
	return magnitude.Neg(magnitude)
}

// twosComplementFromBigInt encodes n as a minimal-length big-endian
// two's-complement byte slice.
func twosComplementFromBigInt(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	magnitude := new(big.Int).Neg(n)
	nBytes := (new(big.Int).Sub(magnitude, big.NewInt(1)).BitLen() + 8) / 8
	if nBytes == 0 {
		nBytes = 1
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	twos := new(big.Int).Sub(mod, magnitude)
	b := twos.Bytes()
	out := make([]byte, nBytes)
	copy(out[nBytes-len(b):], b)
	if out[0]&0x80 == 0 {
		out = append([]byte{0xff}, out...)
	}
	return out
}
