package frame

import (
	"fmt"

	"github.com/kdbgo/qipc/codec"
	"github.com/kdbgo/qipc/compress"
	"github.com/kdbgo/qipc/errs"
	"github.com/kdbgo/qipc/internal/options"
	"github.com/kdbgo/qipc/internal/pool"
	"github.com/kdbgo/qipc/value"
)

// Decoded is the result of a single successful Decoder.Decode call.
type Decoded struct {
	Type  MessageType
	Value value.V
}

// Decoder is a stateful, pull-model frame decoder. Feed appends bytes read
// from a transport; Decode attempts to extract one complete frame from
// whatever has been fed so far. Between calls the internal buffer retains
// every unconsumed byte, so abandoning a Decode call (e.g. via context
// cancellation in the caller) never loses data: the next call on the same
// Decoder resumes with the same buffered state. This is the
// cancellation-safety contract described for the stream client.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	cfg Config
	buf *pool.ByteBuffer
}

// NewDecoder builds a Decoder with DefaultConfig adjusted by opts.
func NewDecoder(opts ...Option) (*Decoder, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Decoder{
		cfg: cfg,
		buf: pool.NewByteBuffer(pool.FrameBufferDefaultSize),
	}, nil
}

// Feed appends data to the decoder's internal buffer.
func (d *Decoder) Feed(data []byte) {
	d.buf.Grow(len(data))
	d.buf.MustWrite(data)
}

// Buffered returns the number of bytes currently held, unconsumed, in the
// decoder's internal buffer.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}

// ErrNeedMore is returned by Decode when the buffered bytes do not yet
// contain a complete frame; the caller should Feed more bytes and retry.
var ErrNeedMore = fmt.Errorf("frame: need more data")

// Decode attempts to extract one complete frame from the buffered bytes.
// On success, the consumed bytes are dropped from the buffer and any
// remaining bytes (the start of the next frame, if already fed) are kept.
// On ErrNeedMore, the buffer is left entirely untouched.
func (d *Decoder) Decode() (Decoded, error) {
	strict := d.cfg.ValidationMode == ValidationStrict

	raw := d.buf.Bytes()
	if len(raw) < HeaderSize {
		return Decoded{}, ErrNeedMore
	}

	header, err := ParseHeader(raw, strict)
	if err != nil {
		return Decoded{}, err
	}

	if int(header.TotalLength) > d.cfg.MaxTotalBytes {
		return Decoded{}, fmt.Errorf("%w: frame length %d exceeds limit %d", errs.ErrFrameTooLarge, header.TotalLength, d.cfg.MaxTotalBytes)
	}

	if len(raw) < int(header.TotalLength) {
		return Decoded{}, ErrNeedMore
	}

	payload := make([]byte, header.PayloadLength())
	copy(payload, raw[HeaderSize:header.TotalLength])
	d.buf.Discard(int(header.TotalLength))

	if header.Compressed {
		codecImpl := compress.NewBlockLZCodecWithLimit(header.Engine, d.cfg.MaxDecompressedSize)
		decompressed, err := codecImpl.Decompress(payload)
		if err != nil {
			return Decoded{}, err
		}
		payload = decompressed
	}

	limits := codec.Limits{
		MaxListSize:   d.cfg.MaxListSize,
		MaxDepth:      d.cfg.MaxDepth,
		MaxTotalBytes: d.cfg.MaxTotalBytes,
	}

	v, err := codec.Decode(payload, header.Engine, limits)
	if err != nil {
		return Decoded{}, err
	}

	return Decoded{Type: header.Type, Value: v}, nil
}
