// Package compress implements the kdb+ block-LZ compression scheme used by
// IPC's `-18!` (compress) / `-19!` (decompress) primitives.
//
// # Wire shape
//
// A compressed payload is 4 bytes of uncompressed size U (in the frame's
// endianness) followed by a stream of blocks. Each block starts with a
// 1-byte command mask describing, for up to 8 following tokens, whether
// each token is a literal byte or a 2-byte back-reference (offset, length).
// The offset byte is the distance back from the end of the output emitted
// so far, and the length byte is the match length minus 3. Only the
// compressor keeps a 256-entry table (the last input position of each byte
// value); decompression keeps no hash table and resolves each offset
// directly against the bytes already emitted.
//
// # Architecture
//
// The Compressor/Decompressor/Codec interfaces support a single concrete
// implementation rather than a registry of interchangeable algorithms:
// generic LZ4/S2/Zstd libraries produce their own container formats and
// cannot emit bytes a real kdb+ peer would recognize as `-18!` output, so
// there is exactly one Codec here, not a pluggable set.
package compress
