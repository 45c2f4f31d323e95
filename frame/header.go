package frame

import (
	"fmt"

	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/errs"
)

// HeaderSize is the fixed 8-byte header length: endianness, message type,
// compressed flag, one reserved byte, and a 4-byte total length.
const HeaderSize = 8

// MessageType identifies byte 1 of the header.
type MessageType byte

const (
	MessageAsync    MessageType = 0
	MessageSync     MessageType = 1
	MessageResponse MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageAsync:
		return "async"
	case MessageSync:
		return "sync"
	case MessageResponse:
		return "response"
	default:
		return fmt.Sprintf("MessageType(%d)", byte(t))
	}
}

// Header is the 8-byte frame header preceding every payload.
type Header struct {
	Engine      endian.EndianEngine
	Type        MessageType
	Compressed  bool
	TotalLength uint32 // includes HeaderSize
}

// ParseHeader decodes the 8-byte header from buf. In strict mode, a
// compressed byte outside {0,1} or a message type outside {0,1,2} is
// rejected as errs.ErrInvalidHeader; lenient mode accepts any byte value
// (non-zero compressed is treated as true, unrecognized message types pass
// through as their raw value).
func ParseHeader(buf []byte, strict bool) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrShortHeader, HeaderSize, len(buf))
	}

	engine := endian.FromHeaderByte(buf[0])

	msgType := buf[1]
	if strict && msgType > byte(MessageResponse) {
		return Header{}, fmt.Errorf("%w: message type %d out of range", errs.ErrInvalidHeader, msgType)
	}

	compressedByte := buf[2]
	if strict && compressedByte > 1 {
		return Header{}, fmt.Errorf("%w: compressed flag %d out of range", errs.ErrInvalidHeader, compressedByte)
	}

	length := engine.Uint32(buf[4:8])
	if length < HeaderSize {
		return Header{}, fmt.Errorf("%w: total length %d shorter than header", errs.ErrInvalidHeader, length)
	}

	return Header{
		Engine:      engine,
		Type:        MessageType(msgType),
		Compressed:  compressedByte != 0,
		TotalLength: length,
	}, nil
}

// Bytes encodes h into an 8-byte header using h.Engine.
func (h Header) Bytes() [HeaderSize]byte {
	var out [HeaderSize]byte

	out[0] = endian.HeaderByte(h.Engine)
	out[1] = byte(h.Type)
	if h.Compressed {
		out[2] = 1
	}
	out[3] = 0
	h.Engine.PutUint32(out[4:8], h.TotalLength)

	return out
}

// PayloadLength returns the number of payload bytes following the header.
func (h Header) PayloadLength() int {
	return int(h.TotalLength) - HeaderSize
}
