package compress

import (
	"fmt"

	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/errs"
)

// DefaultMaxDecompressedSize is the spec-mandated MAX_DECOMPRESSED_SIZE
// (§5): 256 MiB. Decompress rejects any payload declaring a larger
// uncompressed size as a decompression bomb.
const DefaultMaxDecompressedSize = 256 << 20

const (
	minMatchLen = 3
	maxMatchLen = 255
	hashSize    = 256
)

// BlockLZCodec implements the kdb+ block-LZ scheme behind IPC's `-18!`
// (compress) / `-19!` (decompress) primitives. engine selects the byte
// order of the 4-byte uncompressed-size prefix: the encode side always
// uses the host's native order (spec §1), the decode side uses whatever
// order the frame header declares.
type BlockLZCodec struct {
	engine              endian.EndianEngine
	maxDecompressedSize int
}

// NewBlockLZCodec returns a codec using engine for the size prefix and the
// default decompression-bomb limit.
func NewBlockLZCodec(engine endian.EndianEngine) *BlockLZCodec {
	return &BlockLZCodec{engine: engine, maxDecompressedSize: DefaultMaxDecompressedSize}
}

// NewBlockLZCodecWithLimit is NewBlockLZCodec with an overridden
// decompression-bomb limit, for callers that configure
// MAX_DECOMPRESSED_SIZE explicitly.
func NewBlockLZCodecWithLimit(engine endian.EndianEngine, maxDecompressedSize int) *BlockLZCodec {
	return &BlockLZCodec{engine: engine, maxDecompressedSize: maxDecompressedSize}
}

// Compress implements Compressor. It returns errs.ErrNotBeneficial if the
// compressed form would be at least half the size of the input — the
// caller is expected to fall back to sending the uncompressed payload.
func (c *BlockLZCodec) Compress(data []byte) ([]byte, error) {
	u := len(data)

	out := make([]byte, 4, 4+u)
	c.engine.PutUint32(out, uint32(u))

	// hash maps the low byte of the most recently emitted 2-byte pair to
	// the absolute input position it was emitted from.
	var hash [hashSize]int
	for i := range hash {
		hash[i] = -1
	}

	var (
		blockStart int // position of the pending command byte in out
		tokenCount int
		command    byte
		pos        int
	)

	flushBlock := func() {
		if tokenCount > 0 {
			out[blockStart] = command
		}
	}
	startBlock := func() {
		out = append(out, 0)
		blockStart = len(out) - 1
		tokenCount = 0
		command = 0
	}

	startBlock()

	for pos < u {
		if tokenCount == 8 {
			flushBlock()
			startBlock()
		}

		matchOffset, matchLen := findMatch(data, pos, hash)

		if matchLen >= minMatchLen && pos-matchOffset <= 255 {
			offset := pos - matchOffset
			out = append(out, byte(offset), byte(matchLen-minMatchLen))
			command |= 1 << uint(tokenCount)

			for i := 0; i < matchLen && pos+1 < u; i++ {
				hash[data[pos]] = pos
				pos++
			}
			pos = matchOffset + offset + matchLen
		} else {
			out = append(out, data[pos])
			if pos+1 < u {
				hash[data[pos]] = pos
			}
			pos++
		}

		tokenCount++
	}
	flushBlock()

	if len(out) >= u/2 && u > 0 {
		return nil, errs.ErrNotBeneficial
	}

	return out, nil
}

// findMatch measures how far the input starting at pos repeats the input at
// the single earlier position the hash table holds for data[pos], capped at
// maxMatchLen; other earlier positions are not searched.
func findMatch(data []byte, pos int, hash [hashSize]int) (matchPos, length int) {
	if pos+1 >= len(data) {
		return 0, 0
	}

	cand := hash[data[pos]]
	if cand < 0 || cand >= pos {
		return 0, 0
	}

	length = 0
	max := len(data) - pos
	if max > maxMatchLen {
		max = maxMatchLen
	}
	for length < max && data[cand+length] == data[pos+length] {
		length++
	}

	return cand, length
}

// Decompress implements Decompressor.
func (c *BlockLZCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: payload shorter than 4-byte size prefix", errs.ErrCorruptCompressedData)
	}

	u := int(c.engine.Uint32(data))
	if u > c.maxDecompressedSize {
		return nil, fmt.Errorf("%w: declared size %d exceeds limit %d", errs.ErrDecompressionBomb, u, c.maxDecompressedSize)
	}

	out := make([]byte, 0, u)
	pos := 4

	for len(out) < u {
		if pos >= len(data) {
			return nil, fmt.Errorf("%w: truncated block stream", errs.ErrCorruptCompressedData)
		}
		command := data[pos]
		pos++

		for tok := 0; tok < 8 && len(out) < u; tok++ {
			if pos >= len(data) {
				return nil, fmt.Errorf("%w: truncated token stream", errs.ErrCorruptCompressedData)
			}

			if command&(1<<uint(tok)) != 0 {
				if pos+1 >= len(data) {
					return nil, fmt.Errorf("%w: truncated back-reference", errs.ErrCorruptCompressedData)
				}
				offset := int(data[pos])
				length := int(data[pos+1]) + minMatchLen
				pos += 2

				if offset <= 0 || offset > len(out) || length < minMatchLen {
					return nil, fmt.Errorf("%w: offset=%d length=%d output_len=%d", errs.ErrInvalidBackReference, offset, length, len(out))
				}
				if len(out)+length > u {
					return nil, fmt.Errorf("%w: back-reference overruns declared size", errs.ErrCorruptCompressedData)
				}

				srcPos := len(out) - offset
				for i := 0; i < length; i++ {
					out = append(out, out[srcPos+i])
				}
			} else {
				if len(out)+1 > u {
					return nil, fmt.Errorf("%w: literal overruns declared size", errs.ErrCorruptCompressedData)
				}
				out = append(out, data[pos])
				pos++
			}
		}
	}

	return out, nil
}
