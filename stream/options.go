package stream

import (
	"time"

	"go.uber.org/zap"

	"github.com/kdbgo/qipc/frame"
	"github.com/kdbgo/qipc/internal/options"
)

// Config holds the mutable settings of a Stream, configured through
// functional options at Connect/Accept time.
type Config struct {
	DialTimeout  time.Duration
	FrameOptions []frame.Option
	Logger       *zap.Logger
	AsyncQueue   int
}

// DefaultConfig returns a Config with a 10s dial timeout, a no-op logger,
// and a 64-entry buffered queue for async frames received while a sync
// request is outstanding.
func DefaultConfig() Config {
	return Config{
		DialTimeout: 10 * time.Second,
		Logger:      zap.NewNop(),
		AsyncQueue:  64,
	}
}

// Option configures a Config.
type Option = options.Option[*Config]

// WithDialTimeout overrides the connect-time dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return options.NoError(func(c *Config) {
		c.DialTimeout = d
	})
}

// WithFrameOptions passes through configuration to the underlying
// frame.Encoder/frame.Decoder (e.g. frame.WithIsLocal, frame.WithCompressionMode).
func WithFrameOptions(opts ...frame.Option) Option {
	return options.NoError(func(c *Config) {
		c.FrameOptions = append(c.FrameOptions, opts...)
	})
}

// WithLogger sets the zap.Logger used for connection lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = logger
	})
}

// WithAsyncQueueSize overrides the buffered channel size for async frames
// received while SendSync is waiting on a response.
func WithAsyncQueueSize(n int) Option {
	return options.NoError(func(c *Config) {
		c.AsyncQueue = n
	})
}
