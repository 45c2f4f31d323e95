// Package frame implements the 8-byte kdb+ IPC frame header and the
// stateful encode/decode layer sitting between a buffered byte transport
// and the value codec.
//
// Decoder is a pull-model parser: Feed appends bytes as they arrive from
// the transport, and Decode extracts one complete frame if the buffer
// holds enough bytes, otherwise returns ErrNeedMore without consuming
// anything. This makes Decoder safe to drive from a cancellable read loop
// — an abandoned Decode call leaves the buffer exactly as it was, so the
// next call resumes cleanly once more bytes have been fed.
//
// Encoder mirrors the compression decision kdb+ itself makes: compress
// only when the payload is large enough and the connection is not local,
// falling back to an uncompressed frame when the attempt would not shrink
// the payload enough to be worth it.
package frame
