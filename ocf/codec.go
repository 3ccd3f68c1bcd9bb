package ocf

import (
	"bytes"
	"compress/bzip2"
	"compress/flate"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/corvidlabs/avro"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// CodecName names an Object Container File block compression codec, per
// the Avro spec's avro.codec metadata value.
type CodecName string

const (
	Null      CodecName = "null"
	Deflate   CodecName = "deflate"
	Snappy    CodecName = "snappy"
	ZStandard CodecName = "zstandard"
	BZip2     CodecName = "bzip2"
	XZ        CodecName = "xz"
)

// Codec compresses/decompresses one OCF data block. Unlike hamba/avro's
// Codec, Encode returns an error: bzip2 has no Go stdlib writer and xz has
// no wired dependency at all, so "cannot encode with this codec" needs a
// real error return rather than silently passing bytes through.
type Codec interface {
	Encode(b []byte) ([]byte, error)
	Decode(b []byte) ([]byte, error)
}

type nullCodec struct{}

func (nullCodec) Encode(b []byte) ([]byte, error) { return b, nil }
func (nullCodec) Decode(b []byte) ([]byte, error) { return b, nil }

type deflateCodec struct {
	level int
}

func (c deflateCodec) Encode(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	level := c.level
	if level < flate.HuffmanOnly {
		level = flate.DefaultCompression
	}
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Decode(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	return io.ReadAll(r)
}

type snappyCodec struct{}

// Decode strips the trailing CRC32 checksum the Avro spec requires
// snappy blocks to carry, which golang/snappy's block decoder doesn't
// expect to see.
func (snappyCodec) Decode(b []byte) ([]byte, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("ocf: snappy block too short to carry a checksum")
	}
	return snappy.Decode(nil, b[:len(b)-4])
}

func (snappyCodec) Encode(b []byte) ([]byte, error) {
	encoded := snappy.Encode(nil, b)
	crc := crc32Checksum(b)
	out := make([]byte, 0, len(encoded)+4)
	out = append(out, encoded...)
	out = append(out, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
	return out, nil
}

type zstandardCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstandardCodec() (*zstandardCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &zstandardCodec{enc: enc, dec: dec}, nil
}

func (c *zstandardCodec) Encode(b []byte) ([]byte, error) {
	return c.enc.EncodeAll(b, nil), nil
}

func (c *zstandardCodec) Decode(b []byte) ([]byte, error) {
	return c.dec.DecodeAll(b, nil)
}

type bzip2Codec struct{}

func (bzip2Codec) Decode(b []byte) ([]byte, error) {
	return io.ReadAll(bzip2.NewReader(bytes.NewReader(b)))
}

func (bzip2Codec) Encode([]byte) ([]byte, error) {
	return nil, unsupportedCodecErr(BZip2, "compress/bzip2 only implements a reader")
}

type xzCodec struct{}

func (xzCodec) Encode([]byte) ([]byte, error) {
	return nil, unsupportedCodecErr(XZ, "no xz codec wired")
}

func (xzCodec) Decode([]byte) ([]byte, error) {
	return nil, unsupportedCodecErr(XZ, "no xz codec wired")
}

// crc32Checksum computes the big-endian CRC-32 (IEEE) the Avro spec
// requires trailing each snappy-compressed OCF block.
func crc32Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

func unsupportedCodecErr(name CodecName, why string) error {
	return &avro.Error{Kind: avro.ErrUnsupportedCodec, Message: fmt.Sprintf("ocf: unsupported codec %q: %s", name, why)}
}

// resolveCodec looks up the Codec for name, configuring the deflate
// compression level when given (-1, or any level below flate.HuffmanOnly,
// uses flate's default compression).
func resolveCodec(name CodecName, deflateLevel int) (Codec, error) {
	switch name {
	case "", Null:
		return nullCodec{}, nil
	case Deflate:
		return deflateCodec{level: deflateLevel}, nil
	case Snappy:
		return snappyCodec{}, nil
	case ZStandard:
		return newZstandardCodec()
	case BZip2:
		return bzip2Codec{}, nil
	case XZ:
		return xzCodec{}, nil
	default:
		return nil, fmt.Errorf("ocf: unknown codec %q", name)
	}
}
