package avro

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// canonicalForm computes the Avro Parsing Canonical Form (PCF) of a
// compiled Codec tree: non-essential metadata stripped, names fully
// qualified, record fields kept in declaration order, logical-type
// annotations stripped (PCF only describes the physical wire shape).
//
// Grounded on operasoftware-osp-goavro's canonical.go (pcfObject/pcfArray/
// pcfString/pcfNumber walk over a raw JSON schema tree); generalized here
// to walk the already-compiled Codec graph instead, tracking which named
// types have already been fully expanded so a second reference to a
// recursive type emits just its name, per the Avro spec.
func canonicalForm(c *Codec) string {
	seen := make(map[string]bool)
	return pcfCodec(c, seen)
}

func pcfCodec(c *Codec, seen map[string]bool) string {
	if c.logical != nil {
		return pcfCodec(c.physical, seen)
	}
	switch c.Typ {
	case TypeNull, TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBytes, TypeString:
		return strconv.Quote(c.Typ.String())

	case TypeFixed:
		full := c.FullName()
		if seen[full] {
			return strconv.Quote(full)
		}
		seen[full] = true
		return fmt.Sprintf(`{"name":%s,"type":"fixed","size":%d}`, strconv.Quote(full), c.fixedSize)

	case TypeEnum:
		full := c.FullName()
		if seen[full] {
			return strconv.Quote(full)
		}
		seen[full] = true
		syms := make([]string, len(c.symbols))
		for i, s := range c.symbols {
			syms[i] = strconv.Quote(s)
		}
		return fmt.Sprintf(`{"name":%s,"type":"enum","symbols":[%s]}`, strconv.Quote(full), strings.Join(syms, ","))

	case TypeArray:
		return fmt.Sprintf(`{"type":"array","items":%s}`, pcfCodec(c.itemsCodec, seen))

	case TypeMap:
		return fmt.Sprintf(`{"type":"map","values":%s}`, pcfCodec(c.itemsCodec, seen))

	case TypeRecord:
		full := c.FullName()
		if seen[full] {
			return strconv.Quote(full)
		}
		seen[full] = true
		parts := make([]string, len(c.fields))
		for i, f := range c.fields {
			parts[i] = fmt.Sprintf(`{"name":%s,"type":%s}`, strconv.Quote(f.Name), pcfCodec(f.Type, seen))
		}
		return fmt.Sprintf(`{"name":%s,"type":"record","fields":[%s]}`, strconv.Quote(full), strings.Join(parts, ","))

	case TypeUnion:
		parts := make([]string, len(c.union.codecFromIndex))
		for i, m := range c.union.codecFromIndex {
			parts[i] = pcfCodec(m, seen)
		}
		return "[" + strings.Join(parts, ",") + "]"

	default:
		return strconv.Quote(c.Typ.String())
	}
}

// rabinTable is the fixed 64-bit lookup table the Avro specification
// defines for schema fingerprinting (Rabin, built LSB-first from the
// fingerprint's empty value 0xc15d213aa4d7a795 used as the polynomial).
var rabinTable = func() [256]uint64 {
	var table [256]uint64
	for i := 0; i < 256; i++ {
		fp := uint64(i)
		for j := 0; j < 8; j++ {
			if fp&1 != 0 {
				fp = (fp >> 1) ^ 0xc15d213aa4d7a795
			} else {
				fp >>= 1
			}
		}
		table[i] = fp
	}
	return table
}()

// rabinFingerprint computes the Avro-spec Rabin-64 fingerprint of the
// given Parsing Canonical Form string.
func rabinFingerprint(pcf string) uint64 {
	fp := uint64(0xc15d213aa4d7a795)
	for i := 0; i < len(pcf); i++ {
		fp = (fp >> 8) ^ rabinTable[(byte(fp)^pcf[i])&0xff]
	}
	return fp
}

// fingerprintBytes computes a schema fingerprint using the named
// algorithm: "rabin" (default, 64-bit, matches the Avro spec's own
// algorithm), "md5", or "sha256".
func fingerprintBytes(pcf string, algorithm string) ([]byte, error) {
	switch algorithm {
	case "", "rabin":
		fp := rabinFingerprint(pcf)
		out := make([]byte, 8)
		for i := 0; i < 8; i++ {
			out[i] = byte(fp >> (8 * i))
		}
		return out, nil
	case "md5":
		sum := md5.Sum([]byte(pcf))
		return sum[:], nil
	case "sha256":
		sum := sha256.Sum256([]byte(pcf))
		return sum[:], nil
	default:
		return nil, newErr(ErrInvalidValue, "unknown fingerprint algorithm: %q", algorithm)
	}
}
