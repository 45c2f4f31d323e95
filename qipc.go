// Package qipc implements the kdb+ IPC wire protocol: a typed value model,
// a binary encoder/decoder, the kdb+ block-LZ compression scheme, a
// cancellation-safe frame codec, and a stream client for talking to (or
// acting as) a kdb+ process over TCP, TLS, or a Unix domain socket.
//
// # Core features
//
//   - A single tagged value type (value.V) covering every kdb+ wire shape:
//     atoms, vectors, compound lists, dictionaries, tables, keyed tables,
//     and opaque function payloads — with panicking convenience accessors
//     paired with non-panicking Try* counterparts.
//   - Either-endian decode, host-endian encode, per §1 of the protocol.
//   - Bounded-allocation decoding: every length is checked against
//     configured limits before anything is allocated, so adversarial input
//     cannot exhaust memory.
//   - The proprietary kdb+ block-LZ compression scheme used by `-18!`/
//     `-19!`, not a generic compression container.
//   - A pull-model frame decoder safe to drive from a cancellable read
//     loop: an abandoned decode call never loses buffered bytes.
//   - A stream client handling transport selection, the credential
//     handshake, and the synchronous/asynchronous request API.
//
// # Basic usage
//
// Connecting to a kdb+ process and issuing a synchronous request:
//
//	s, err := qipc.Connect(stream.MethodTCP, "localhost", 5000,
//	    stream.Credential{User: "user", Password: "pass"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Shutdown()
//
//	result, err := s.SendSync(ctx, value.CompoundVector([]value.V{
//	    value.Symbol("til"), value.Long(10),
//	}))
//
// Encoding and decoding a value directly, without a transport:
//
//	payload, err := qipc.Encode(value.Long(42))
//	v, err := qipc.Decode(payload)
//
// # Package structure
//
// This file provides convenient top-level wrappers around the value,
// codec, frame, and stream packages for the most common use cases. For
// fine-grained control (custom limits, compression modes, validation
// strictness), use those packages directly.
package qipc

import (
	"context"

	"github.com/kdbgo/qipc/codec"
	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/stream"
	"github.com/kdbgo/qipc/value"
)

// Encode serializes v to payload bytes using host-endian byte order, with
// no frame header. Use frame.Encoder directly to produce a full frame.
//
// Parameters:
//   - v: the value to serialize
//
// Returns:
//   - []byte: the encoded payload
//   - error: an UnsupportedType or InvalidValue error if v cannot be encoded
func Encode(v value.V) ([]byte, error) {
	return codec.Encode(v, endian.HostEngine())
}

// Decode deserializes payload bytes (no frame header) using host-endian
// byte order and the default resource limits.
//
// Parameters:
//   - payload: the encoded bytes, as produced by Encode or extracted from
//     a frame by the frame package
//
// Returns:
//   - value.V: the decoded value
//   - error: a typed decode error (see errs) on malformed input
func Decode(payload []byte) (value.V, error) {
	return codec.Decode(payload, endian.HostEngine(), codec.DefaultLimits())
}

// Connect opens a stream to a kdb+ process at host:port over method,
// completing the credential handshake before returning.
//
// Parameters:
//   - method: stream.MethodTCP, stream.MethodTLS, or stream.MethodUnix
//   - host: hostname or IP address (ignored for stream.MethodUnix)
//   - port: TCP port, or the port component of the derived Unix socket path
//   - cred: the username/password presented during the handshake
//   - opts: optional stream configuration (see stream.Option)
//
// Returns:
//   - *stream.Stream: the connected, handshaken stream
//   - error: a dial, handshake, or configuration error
//
// Example:
//
//	s, err := qipc.Connect(stream.MethodTCP, "localhost", 5000,
//	    stream.Credential{User: "kdb", Password: "kdb"})
func Connect(method stream.Method, host string, port int, cred stream.Credential, opts ...stream.Option) (*stream.Stream, error) {
	return stream.Connect(method, host, port, cred, opts...)
}

// Accept waits for one inbound connection on host:port over method,
// completing the server side of the handshake against accounts (or
// accepting any credential if accounts is nil).
//
// Parameters:
//   - method: stream.MethodTCP, stream.MethodTLS, or stream.MethodUnix
//   - host: address to bind
//   - port: TCP port, or the port component of the derived Unix socket path
//   - accounts: credential file loaded with stream.LoadAccountFile, or nil
//   - opts: optional stream configuration
//
// Returns:
//   - *stream.Stream: the accepted, handshaken stream
//   - error: a listen, accept, or handshake error
func Accept(method stream.Method, host string, port int, accounts stream.AccountFile, opts ...stream.Option) (*stream.Stream, error) {
	return stream.Accept(method, host, port, accounts, opts...)
}

// SendSync is a convenience wrapper around Stream.SendSync using a
// background context; prefer calling s.SendSync(ctx, v) directly when the
// caller needs cancellation.
func SendSync(s *stream.Stream, v value.V) (value.V, error) {
	return s.SendSync(context.Background(), v)
}
