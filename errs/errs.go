// Package errs defines the closed set of sentinel errors used throughout qipc.
//
// Every fallible operation in the value, codec, compress, frame, and stream
// packages returns one of these sentinels (optionally wrapped with
// fmt.Errorf("%w: ...") to add call-site context such as an offset or a type
// byte). Callers compare against these with errors.Is; the exact wrapping
// text is not part of the contract.
package errs

import "errors"

// Value API errors (§7): local, recoverable, raised by value.V accessors
// and structural/indexing operations.
var (
	ErrWrongType          = errors.New("qipc: wrong type")
	ErrIndexOutOfBounds   = errors.New("qipc: index out of bounds")
	ErrKeyNotFound        = errors.New("qipc: key not found")
	ErrUnsupportedKeyType = errors.New("qipc: unsupported key type")
)

// Decode errors (§7): raised by codec.Decode on malformed or adversarial
// byte input. Never accompanied by a panic.
var (
	ErrShortRead      = errors.New("qipc: short read")
	ErrInvalidType    = errors.New("qipc: invalid type byte")
	ErrInvalidSymbol  = errors.New("qipc: invalid symbol")
	ErrInvalidUTF8    = errors.New("qipc: invalid utf-8")
	ErrListTooLarge   = errors.New("qipc: list too large")
	ErrNestingTooDeep = errors.New("qipc: nesting too deep")
	ErrAttributeInvalid = errors.New("qipc: invalid attribute")
	ErrInvalidValue   = errors.New("qipc: invalid value")
)

// Encode errors (§7): raised by codec.Encode when a value violates an
// invariant or uses a type the encoder does not support.
var (
	ErrUnsupportedType = errors.New("qipc: unsupported type")
)

// Compression errors (§7): raised by compress.Compress/compress.Decompress.
var (
	ErrDecompressionBomb     = errors.New("qipc: decompression bomb")
	ErrInvalidBackReference  = errors.New("qipc: invalid back-reference")
	ErrCorruptCompressedData = errors.New("qipc: corrupt compressed data")
	ErrNotBeneficial         = errors.New("qipc: compression not beneficial")
)

// Framing errors (§7): raised by frame.Decoder/frame.Encoder.
var (
	ErrShortHeader   = errors.New("qipc: short header")
	ErrInvalidHeader = errors.New("qipc: invalid header")
	ErrFrameTooLarge = errors.New("qipc: frame too large")
)

// Transport errors (§7): raised by stream.Stream.
var (
	ErrConnectionClosed = errors.New("qipc: connection closed")
	ErrIO               = errors.New("qipc: io error")
	ErrAuthFailed       = errors.New("qipc: authentication failed")
)
