package frame

import (
	"fmt"

	"github.com/kdbgo/qipc/codec"
	"github.com/kdbgo/qipc/compress"
	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/internal/options"
	"github.com/kdbgo/qipc/internal/pool"
	"github.com/kdbgo/qipc/value"
)

// Encoder serializes values into framed, optionally compressed byte
// sequences ready to write to a transport. An Encoder is not safe for
// concurrent use; stream.Stream serializes writes per §5's single-threaded
// cooperative model.
type Encoder struct {
	cfg Config
}

// NewEncoder builds an Encoder with DefaultConfig adjusted by opts.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// SetIsLocal updates whether the connection is treated as local, affecting
// Auto-mode compression decisions for subsequent Encode calls.
func (e *Encoder) SetIsLocal(isLocal bool) {
	e.cfg.IsLocal = isLocal
}

// Encode serializes v as a frame of the given message type: header,
// optionally followed by a compressed payload, written into a single
// contiguous byte slice.
func (e *Encoder) Encode(v value.V, msgType MessageType) ([]byte, error) {
	engine := endian.HostEngine()

	payload, err := codec.Encode(v, engine)
	if err != nil {
		return nil, fmt.Errorf("frame: encoding payload: %w", err)
	}

	payloadOut, compressed, err := e.maybeCompress(payload, engine)
	if err != nil {
		return nil, err
	}

	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	header := Header{
		Engine:      engine,
		Type:        msgType,
		Compressed:  compressed,
		TotalLength: uint32(HeaderSize + len(payloadOut)),
	}
	headerBytes := header.Bytes()

	buf.MustWrite(headerBytes[:])
	buf.MustWrite(payloadOut)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// maybeCompress applies the Auto/Always/Never compression decision from
// §4.5 step 2, falling back to the uncompressed payload when compression
// would not be beneficial.
func (e *Encoder) maybeCompress(payload []byte, engine endian.EndianEngine) ([]byte, bool, error) {
	if e.cfg.CompressionMode == CompressionNever {
		return payload, false, nil
	}

	if len(payload) <= CompressionThreshold {
		return payload, false, nil
	}

	if e.cfg.CompressionMode == CompressionAuto && e.cfg.IsLocal {
		return payload, false, nil
	}

	codecImpl := compress.NewBlockLZCodec(engine)
	compressed, err := codecImpl.Compress(payload)
	if err != nil {
		return payload, false, nil
	}

	return compressed, true, nil
}
