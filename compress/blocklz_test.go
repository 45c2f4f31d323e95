package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/errs"
)

func TestBlockLZRoundTrip(t *testing.T) {
	cases := [][]byte{
		bytes.Repeat([]byte("abcabcabcabcabcabcabcabcabcabc"), 20),
		[]byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
		bytes.Repeat([]byte{0xAA}, 1000),
	}

	for _, data := range cases {
		codec := NewBlockLZCodec(endian.GetLittleEndianEngine())

		compressed, err := codec.Compress(data)
		if err == errs.ErrNotBeneficial {
			continue
		}
		require.NoError(t, err)

		got, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestBlockLZEmptyInput(t *testing.T) {
	codec := NewBlockLZCodec(endian.GetLittleEndianEngine())

	compressed, err := codec.Compress(nil)
	require.NoError(t, err)

	got, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestBlockLZNotBeneficial(t *testing.T) {
	codec := NewBlockLZCodec(endian.GetLittleEndianEngine())

	// High-entropy random-looking data compresses poorly.
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i*137 + 7)
	}

	_, err := codec.Compress(data)
	require.ErrorIs(t, err, errs.ErrNotBeneficial)
}

func TestBlockLZDecompressionBomb(t *testing.T) {
	codec := NewBlockLZCodecWithLimit(endian.GetLittleEndianEngine(), 1024)

	payload := make([]byte, 4)
	codec.engine.PutUint32(payload, 1<<20)

	_, err := codec.Decompress(payload)
	require.ErrorIs(t, err, errs.ErrDecompressionBomb)
}

func TestBlockLZShortInput(t *testing.T) {
	codec := NewBlockLZCodec(endian.GetLittleEndianEngine())

	_, err := codec.Decompress([]byte{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrCorruptCompressedData)
}

func TestBlockLZInvalidBackReference(t *testing.T) {
	codec := NewBlockLZCodec(endian.GetLittleEndianEngine())

	// U=5, one command byte with bit0 set (back-reference) pointing past
	// the (empty) output.
	payload := []byte{5, 0, 0, 0, 0b00000001, 3, 2}
	_, err := codec.Decompress(payload)
	require.ErrorIs(t, err, errs.ErrInvalidBackReference)
}

func TestBlockLZCorruptTruncated(t *testing.T) {
	codec := NewBlockLZCodec(endian.GetLittleEndianEngine())

	// U=10 but no block bytes follow.
	payload := []byte{10, 0, 0, 0}
	_, err := codec.Decompress(payload)
	require.ErrorIs(t, err, errs.ErrCorruptCompressedData)
}

func TestBlockLZBigEndian(t *testing.T) {
	data := bytes.Repeat([]byte("hello world, hello world, hello world"), 5)

	codec := NewBlockLZCodec(endian.GetBigEndianEngine())
	compressed, err := codec.Compress(data)
	require.NoError(t, err)

	got, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}
