package compress

// Compressor compresses a payload using the kdb+ block-LZ algorithm.
type Compressor interface {
	// Compress compresses data and returns the compressed result, or
	// ErrNotBeneficial if compression would not shrink the payload enough
	// to be worth the round trip (see §4.4's ½×U abort rule).
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a kdb+ block-LZ payload.
type Decompressor interface {
	// Decompress decompresses data and returns the original bytes. It
	// rejects payloads whose declared uncompressed size exceeds the
	// configured bomb limit, and any back-reference that does not point
	// strictly within the bytes already emitted.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats reports the outcome of a single compress operation, for
// callers that want to log or monitor the space saved.
type CompressionStats struct {
	OriginalSize   int64
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size. Values below
// 1.0 indicate the payload shrank.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage (0-100).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}
