package codec

// Limits bounds decoder allocation against untrusted input. Every length
// read from the wire is checked against these before anything is allocated
// — see §5 "No allocation is sized by untrusted input without a prior limit
// check."
type Limits struct {
	// MaxListSize is the maximum element count of any vector, compound
	// list, or opaque nested-value count.
	MaxListSize int
	// MaxDepth is the maximum container nesting depth (compound,
	// dictionary, table, keyed table, opaque nested values all count).
	MaxDepth int
	// MaxTotalBytes is the maximum size of a single frame. Decode itself
	// does not check it; frame.Decoder rejects a frame whose header length
	// exceeds its MaxTotalBytes setting before copying the payload.
	MaxTotalBytes int
}

// DefaultLimits returns the spec-mandated defaults: 10^9 element vectors,
// depth 64, 1 GiB payloads.
func DefaultLimits() Limits {
	return Limits{
		MaxListSize:   1_000_000_000,
		MaxDepth:      64,
		MaxTotalBytes: 1 << 30,
	}
}
