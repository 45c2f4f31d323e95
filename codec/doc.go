// Package codec implements the kdb+ IPC payload serialization engine: Encode
// turns a value.V into host-endian bytes, and Decode turns either-endian
// bytes back into a value.V under strict, bounded-allocation validation.
//
// Neither function touches the 8-byte frame header or block-LZ compression
// — those live in the frame and compress packages respectively. Encode/Decode
// operate purely on the payload region of a frame, independent of whatever
// header or compression wraps it.
package codec
