// Package ocf implements Avro Object Container File encoding and
// decoding: the header/metadata/sync-marker framing defined by the Avro
// specification around a stream of schema-compiled binary values.
package ocf

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/corvidlabs/avro"
)

const (
	schemaKey = "avro.schema"
	codecKey  = "avro.codec"
)

var magicBytes = [4]byte{'O', 'b', 'j', 1}

// headerSchema is the Avro schema of a container file header, grounded
// directly on the Avro specification's own header record.
var headerSchema = avro.MustParse(`{
	"type": "record",
	"name": "org.apache.avro.file.Header",
	"fields": [
		{"name": "magic", "type": {"type": "fixed", "name": "Magic", "size": 4}},
		{"name": "meta", "type": {"type": "map", "values": "bytes"}},
		{"name": "sync", "type": {"type": "fixed", "name": "Sync", "size": 16}}
	]
}`, avro.WithRecordDecodesToDict(true))

// longCodec encodes/decodes the bare Avro long values (block count,
// block size) that frame each data block outside of any record.
var longCodec, _ = avro.NewCodec(`"long"`)

// Header is the decoded form of a container file's header block.
type Header struct {
	Magic [4]byte
	Meta  map[string][]byte
	Sync  [16]byte
}

func decodeHeader(buf []byte) (Header, []byte, error) {
	value, rest, err := headerSchema.Root().NativeFromBinary(buf)
	if err != nil {
		return Header{}, buf, err
	}
	m := value.(map[string]interface{})
	var h Header
	copy(h.Magic[:], m["magic"].([]byte))
	copy(h.Sync[:], m["sync"].([]byte))
	h.Meta = make(map[string][]byte, len(m["meta"].(map[string]interface{})))
	for k, v := range m["meta"].(map[string]interface{}) {
		h.Meta[k] = v.([]byte)
	}
	return h, rest, nil
}

func encodeHeader(h Header) ([]byte, error) {
	meta := make(map[string]interface{}, len(h.Meta))
	for k, v := range h.Meta {
		meta[k] = v
	}
	datum := map[string]interface{}{
		"magic": h.Magic[:],
		"meta":  meta,
		"sync":  h.Sync[:],
	}
	return headerSchema.Root().BinaryFromNative(nil, datum)
}

// Decoder reads and decodes Avro values from a container file, one data
// block at a time. When constructed with a non-nil reader schema, each
// value is resolved from the file's own writer schema via avro.Resolve
// (component G); otherwise values are resolved from the writer schema
// against itself.
type Decoder struct {
	buf   []byte // unconsumed remainder of the whole file
	meta  map[string][]byte
	sync  [16]byte
	codec Codec
	rd    *avro.ResolvedDecoder

	pending []byte // undecoded remainder of the current block's values
	count   int64
	err     error // sticky: set by HasNext from readBlock's error, surfaced by Err/Next, not by HasNext
}

// NewDecoder reads the container file header from r and prepares to
// decode its data blocks against reader. If reader is nil, the file's
// own writer schema is resolved against itself.
func NewDecoder(r io.Reader, reader *avro.Schema) (*Decoder, error) {
	whole, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ocf: decoder: %w", err)
	}

	h, rest, err := decodeHeader(whole)
	if err != nil {
		return nil, fmt.Errorf("ocf: decoder: header: %w", err)
	}
	if h.Magic != magicBytes {
		return nil, errors.New("ocf: decoder: invalid avro object container file (bad magic)")
	}

	writerSchema, err := avro.Parse(string(h.Meta[schemaKey]))
	if err != nil {
		return nil, fmt.Errorf("ocf: decoder: writer schema: %w", err)
	}

	codec, err := resolveCodec(CodecName(h.Meta[codecKey]), -1)
	if err != nil {
		return nil, err
	}

	var rd *avro.ResolvedDecoder
	if reader != nil {
		rd, err = avro.Resolve(writerSchema.Root(), reader.Root(), avro.NewOptions())
	} else {
		rd, err = avro.Resolve(writerSchema.Root(), writerSchema.Root(), avro.NewOptions())
	}
	if err != nil {
		return nil, fmt.Errorf("ocf: decoder: %w", err)
	}

	return &Decoder{buf: rest, meta: h.Meta, sync: h.Sync, codec: codec, rd: rd}, nil
}

// Metadata returns the header metadata, including the raw writer schema
// JSON and codec name.
func (d *Decoder) Metadata() map[string][]byte { return d.meta }

// Err returns the error (if any) that ended iteration: a clean end of
// file surfaces as nil, anything else (a truncated block, a corrupt sync
// marker) surfaces as the avro.Error that caused HasNext to return false.
func (d *Decoder) Err() error { return d.err }

// HasNext reports whether another value is available, reading the next
// block's framing if the current block is exhausted. A false return
// after a non-EOF failure leaves the failure in Err/Next rather than
// silently treating it like a clean end of file.
func (d *Decoder) HasNext() bool {
	if d.count <= 0 {
		count, err := d.readBlock()
		if err != nil {
			if err != io.EOF {
				d.err = err
			}
			return false
		}
		d.count = count
	}
	return d.count > 0
}

// Next decodes the next value from the current block. If the prior
// HasNext call ended iteration because of a block-framing error, that
// error is returned here instead of the generic "no data" message.
func (d *Decoder) Next() (interface{}, error) {
	if d.count <= 0 {
		if d.err != nil {
			return nil, d.err
		}
		return nil, errors.New("ocf: decoder: no data available, call HasNext first")
	}
	value, rest, err := d.rd.NativeFromBinary(d.pending)
	if err != nil {
		return nil, err
	}
	d.pending = rest
	d.count--
	return value, nil
}

func (d *Decoder) readBlock() (int64, error) {
	if len(d.buf) == 0 {
		return 0, io.EOF
	}
	countVal, rest, err := longCodec.NativeFromBinary(d.buf)
	if err != nil {
		return 0, &avro.Error{Kind: avro.ErrTruncatedBlock, Message: fmt.Sprintf("cannot read block count: %s", err)}
	}
	sizeVal, rest, err := longCodec.NativeFromBinary(rest)
	if err != nil {
		return 0, &avro.Error{Kind: avro.ErrTruncatedBlock, Message: fmt.Sprintf("cannot read block size: %s", err)}
	}
	count := countVal.(int64)
	size := sizeVal.(int64)
	if size < 0 || int64(len(rest)) < size {
		return 0, &avro.Error{Kind: avro.ErrTruncatedBlock, Message: fmt.Sprintf("block declares %d bytes, only %d remain", size, len(rest))}
	}
	data := rest[:size]
	rest = rest[size:]

	if count > 0 {
		decoded, err := d.codec.Decode(data)
		if err != nil {
			return 0, &avro.Error{Kind: avro.ErrTruncatedBlock, Message: fmt.Sprintf("cannot decompress block: %s", err), Wrapped: err}
		}
		d.pending = decoded
	}

	if len(rest) < 16 {
		return 0, &avro.Error{Kind: avro.ErrTruncatedBlock, Message: "block truncated before its sync marker"}
	}
	var sync [16]byte
	copy(sync[:], rest[:16])
	rest = rest[16:]
	if sync != d.sync {
		return 0, &avro.Error{Kind: avro.ErrCorruptSync, Message: "sync marker does not match the header's"}
	}

	d.buf = rest
	return count, nil
}

// encoderConfig bundles an Encoder's construction-time settings.
type encoderConfig struct {
	blockLength int
	codecName   CodecName
	deflateLvl  int
	metadata    map[string][]byte
}

// EncoderFunc configures an Encoder at construction time.
type EncoderFunc func(cfg *encoderConfig)

// WithBlockLength sets the number of values buffered per block.
func WithBlockLength(n int) EncoderFunc {
	return func(cfg *encoderConfig) { cfg.blockLength = n }
}

// WithCodec sets the block compression codec.
func WithCodec(name CodecName) EncoderFunc {
	return func(cfg *encoderConfig) { cfg.codecName = name }
}

// WithCompressionLevel selects the deflate codec at the given level.
func WithCompressionLevel(level int) EncoderFunc {
	return func(cfg *encoderConfig) {
		cfg.codecName = Deflate
		cfg.deflateLvl = level
	}
}

// WithMetadata adds entries to the header metadata map.
func WithMetadata(meta map[string][]byte) EncoderFunc {
	return func(cfg *encoderConfig) { cfg.metadata = meta }
}

// Encoder writes an Avro Object Container File to an output stream,
// buffering encoded values into fixed-size blocks.
type Encoder struct {
	w     io.Writer
	buf   bytes.Buffer
	sync  [16]byte
	codec Codec
	root  *avro.Codec

	blockLength int
	count       int
}

// NewEncoder returns an Encoder writing values compiled under schema to
// w, starting a new container file with a freshly generated sync marker.
func NewEncoder(schema *avro.Schema, w io.Writer, opts ...EncoderFunc) (*Encoder, error) {
	cfg := encoderConfig{
		blockLength: 100,
		codecName:   Null,
		deflateLvl:  -1,
		metadata:    map[string][]byte{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec, err := resolveCodec(cfg.codecName, cfg.deflateLvl)
	if err != nil {
		return nil, err
	}

	cfg.metadata[schemaKey] = []byte(schema.CanonicalForm())
	cfg.metadata[codecKey] = []byte(cfg.codecName)

	h := Header{Meta: cfg.metadata}
	copy(h.Magic[:], magicBytes[:])
	if _, err := rand.Read(h.Sync[:]); err != nil {
		return nil, err
	}

	headerBytes, err := encodeHeader(h)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(headerBytes); err != nil {
		return nil, err
	}

	return &Encoder{
		w:           w,
		sync:        h.Sync,
		codec:       codec,
		root:        schema.Root(),
		blockLength: cfg.blockLength,
	}, nil
}

// Encode appends v, encoded under the Encoder's schema, to the current
// block, flushing the block once it reaches the configured length.
func (e *Encoder) Encode(v interface{}) error {
	encoded, err := e.root.BinaryFromNative(nil, v)
	if err != nil {
		return err
	}
	e.buf.Write(encoded)
	e.count++
	if e.count >= e.blockLength {
		return e.flushBlock()
	}
	return nil
}

// Flush writes any buffered values as a final block.
func (e *Encoder) Flush() error {
	if e.count == 0 {
		return nil
	}
	return e.flushBlock()
}

// Close flushes any pending block. It does not close the underlying
// writer.
func (e *Encoder) Close() error { return e.Flush() }

func (e *Encoder) flushBlock() error {
	countBytes, err := longCodec.BinaryFromNative(nil, int64(e.count))
	if err != nil {
		return err
	}
	if _, err := e.w.Write(countBytes); err != nil {
		return err
	}

	compressed, err := e.codec.Encode(e.buf.Bytes())
	if err != nil {
		return err
	}

	sizeBytes, err := longCodec.BinaryFromNative(nil, int64(len(compressed)))
	if err != nil {
		return err
	}
	if _, err := e.w.Write(sizeBytes); err != nil {
		return err
	}
	if _, err := e.w.Write(compressed); err != nil {
		return err
	}
	if _, err := e.w.Write(e.sync[:]); err != nil {
		return err
	}

	e.count = 0
	e.buf.Reset()
	return nil
}
