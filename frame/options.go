package frame

import (
	"github.com/kdbgo/qipc/compress"
	"github.com/kdbgo/qipc/internal/options"
)

// CompressionMode controls when Encoder attempts block-LZ compression.
type CompressionMode int

const (
	// CompressionAuto compresses only when the payload exceeds the
	// threshold and the connection is not local.
	CompressionAuto CompressionMode = iota
	CompressionAlways
	CompressionNever
)

// ValidationMode controls how strictly Decoder validates header fields.
type ValidationMode int

const (
	ValidationStrict ValidationMode = iota
	ValidationLenient
)

// CompressionThreshold is the payload size, in bytes, at or below which the
// encoder never compresses, in both Auto and Always modes.
const CompressionThreshold = 2000

// Config holds the mutable per-codec settings shared by Encoder and
// Decoder. Both are configured through the same functional-options
// surface so callers write frame.NewEncoder(frame.WithIsLocal(true)) and
// frame.NewDecoder(frame.WithValidationMode(frame.ValidationLenient)) alike.
type Config struct {
	CompressionMode     CompressionMode
	ValidationMode      ValidationMode
	IsLocal             bool
	MaxTotalBytes       int
	MaxListSize         int
	MaxDepth            int
	MaxDecompressedSize int
}

// DefaultConfig returns the spec-mandated defaults: Auto compression,
// strict validation, remote connection, 1 GiB total bytes, 10^9 element
// lists, depth 64, 256 MiB decompressed payloads.
func DefaultConfig() Config {
	return Config{
		CompressionMode:     CompressionAuto,
		ValidationMode:      ValidationStrict,
		IsLocal:             false,
		MaxTotalBytes:       1 << 30,
		MaxListSize:         1_000_000_000,
		MaxDepth:            64,
		MaxDecompressedSize: compress.DefaultMaxDecompressedSize,
	}
}

// Option configures a Config.
type Option = options.Option[*Config]

// WithCompressionMode overrides CompressionMode.
func WithCompressionMode(mode CompressionMode) Option {
	return options.NoError(func(c *Config) {
		c.CompressionMode = mode
	})
}

// WithValidationMode overrides ValidationMode.
func WithValidationMode(mode ValidationMode) Option {
	return options.NoError(func(c *Config) {
		c.ValidationMode = mode
	})
}

// WithIsLocal marks the connection as local, which disables Auto-mode
// compression regardless of payload size.
func WithIsLocal(isLocal bool) Option {
	return options.NoError(func(c *Config) {
		c.IsLocal = isLocal
	})
}

// WithMaxTotalBytes overrides the maximum accepted frame size.
func WithMaxTotalBytes(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxTotalBytes = n
	})
}

// WithMaxListSize overrides the decoder's maximum vector/compound length.
func WithMaxListSize(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxListSize = n
	})
}

// WithMaxDepth overrides the decoder's maximum container nesting depth.
func WithMaxDepth(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxDepth = n
	})
}

// WithMaxDecompressedSize overrides the decompression-bomb limit applied
// to compressed frame payloads.
func WithMaxDecompressedSize(n int) Option {
	return options.NoError(func(c *Config) {
		c.MaxDecompressedSize = n
	})
}
