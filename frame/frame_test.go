package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdbgo/qipc/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	frameBytes, err := enc.Encode(value.Long(42), MessageSync)
	require.NoError(t, err)

	dec, err := NewDecoder()
	require.NoError(t, err)
	dec.Feed(frameBytes)

	got, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, MessageSync, got.Type)
	require.Equal(t, int64(42), got.Value.LongVal())
	require.Equal(t, 0, dec.Buffered())
}

func TestDecodeNeedsMoreData(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	frameBytes, err := enc.Encode(value.Symbol("hello"), MessageAsync)
	require.NoError(t, err)

	dec, err := NewDecoder()
	require.NoError(t, err)

	// Feed one byte at a time; Decode must return ErrNeedMore until the
	// whole frame has arrived, and must never lose already-fed bytes.
	for i := 0; i < len(frameBytes)-1; i++ {
		dec.Feed(frameBytes[i : i+1])
		_, err := dec.Decode()
		require.ErrorIs(t, err, ErrNeedMore)
	}

	dec.Feed(frameBytes[len(frameBytes)-1:])
	got, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, MessageAsync, got.Type)
}

func TestDecodePreservesTrailingBytes(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	first, err := enc.Encode(value.Int(1), MessageAsync)
	require.NoError(t, err)
	second, err := enc.Encode(value.Int(2), MessageAsync)
	require.NoError(t, err)

	dec, err := NewDecoder()
	require.NoError(t, err)
	dec.Feed(append(append([]byte{}, first...), second...))

	got1, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, int32(1), got1.Value.IntVal())

	got2, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, int32(2), got2.Value.IntVal())
}

func TestEncodeCompressesLargePayload(t *testing.T) {
	enc, err := NewEncoder(WithCompressionMode(CompressionAlways))
	require.NoError(t, err)

	data := bytes.Repeat([]byte("x"), 5000)
	v := value.CharVector(string(data))

	frameBytes, err := enc.Encode(v, MessageAsync)
	require.NoError(t, err)

	header, err := ParseHeader(frameBytes, true)
	require.NoError(t, err)
	require.True(t, header.Compressed)

	dec, err := NewDecoder()
	require.NoError(t, err)
	dec.Feed(frameBytes)
	got, err := dec.Decode()
	require.NoError(t, err)
	chars, err := got.Value.TryChars()
	require.NoError(t, err)
	require.Equal(t, data, chars)
}

func TestEncodeLocalSkipsCompression(t *testing.T) {
	enc, err := NewEncoder(WithIsLocal(true))
	require.NoError(t, err)

	data := bytes.Repeat([]byte("y"), 5000)
	frameBytes, err := enc.Encode(value.CharVector(string(data)), MessageAsync)
	require.NoError(t, err)

	header, err := ParseHeader(frameBytes, true)
	require.NoError(t, err)
	require.False(t, header.Compressed)
}

func TestDecodeRejectsOversizedFrame(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	frameBytes, err := enc.Encode(value.Long(1), MessageAsync)
	require.NoError(t, err)

	dec, err := NewDecoder(WithMaxTotalBytes(4))
	require.NoError(t, err)
	dec.Feed(frameBytes)

	_, err = dec.Decode()
	require.Error(t, err)
}

func TestParseHeaderStrictRejectsInvalidMessageType(t *testing.T) {
	buf := make([]byte, HeaderSize)
	buf[0] = 1
	buf[1] = 9 // invalid message type
	buf[4] = HeaderSize

	_, err := ParseHeader(buf, true)
	require.Error(t, err)

	// Lenient mode accepts it.
	h, err := ParseHeader(buf, false)
	require.NoError(t, err)
	require.Equal(t, MessageType(9), h.Type)
}
