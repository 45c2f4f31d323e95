package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/errs"
	"github.com/kdbgo/qipc/value"
)

func roundTrip(t *testing.T, v value.V) value.V {
	t.Helper()

	payload, err := Encode(v, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	got, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.NoError(t, err)

	return got
}

func TestRoundTripAtoms(t *testing.T) {
	cases := []struct {
		name string
		v    value.V
	}{
		{"bool", value.Bool(true)},
		{"byte", value.Byte(0xAB)},
		{"short", value.Short(-7)},
		{"int", value.Int(1234)},
		{"long", value.Long(42)},
		{"real", value.Real(1.5)},
		{"float", value.Float(3.14159)},
		{"char", value.Char('x')},
		{"symbol", value.Symbol("abc")},
		{"timestamp", value.Timestamp(123456789)},
		{"month", value.Month(5)},
		{"date", value.Date(100)},
		{"datetime", value.Datetime(12345.5)},
		{"timespan", value.Timespan(987654321)},
		{"minute", value.Minute(42)},
		{"second", value.Second(59)},
		{"time", value.Time(86399000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := roundTrip(t, tc.v)
			require.Equal(t, tc.v.Code(), got.Code())
			require.Equal(t, tc.v.String(), got.String())
		})
	}
}

func TestLongAtomWireBytes(t *testing.T) {
	payload, err := Encode(value.Long(42), endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Equal(t, []byte{0xF9, 0x2A, 0, 0, 0, 0, 0, 0, 0}, payload)
}

func TestSymbolVectorWithAttribute(t *testing.T) {
	v := value.SymbolVector([]string{"a", "b", "c"}).WithAttribute(value.AttrSorted)

	payload, err := Encode(v, endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Equal(t, []byte{0x0B, 0x01, 0x03, 0, 0, 0, 'a', 0, 'b', 0, 'c', 0}, payload)

	got, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.NoError(t, err)
	require.Equal(t, value.AttrSorted, got.Attribute())
	symbols, err := got.TrySymbols()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, symbols)
}

func TestRoundTripVectors(t *testing.T) {
	cases := []struct {
		name string
		v    value.V
	}{
		{"bools", value.BoolVector([]bool{true, false, true})},
		{"bytes", value.ByteVector([]byte{1, 2, 3})},
		{"shorts", value.ShortVector([]int16{-1, 0, 1})},
		{"ints", value.IntVector([]int32{1, 2, 3})},
		{"longs", value.LongVector([]int64{1, 2, 3})},
		{"reals", value.RealVector([]float32{1.5, 2.5})},
		{"floats", value.FloatVector([]float64{1.5, 2.5})},
		{"chars", value.CharVector("hello")},
		{"symbols", value.SymbolVector([]string{"x", "y"})},
		{"timestamps", value.TimestampVector([]int64{1, 2})},
		{"dates", value.DateVector([]int32{1, 2})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := roundTrip(t, tc.v)
			require.Equal(t, tc.v.Code(), got.Code())
			require.Equal(t, tc.v.Len(), got.Len())
			require.Equal(t, tc.v.String(), got.String())
		})
	}
}

func TestRoundTripCompound(t *testing.T) {
	v := value.CompoundVector([]value.V{
		value.Long(1),
		value.Symbol("x"),
		value.IntVector([]int32{1, 2, 3}),
	})

	got := roundTrip(t, v)
	require.Equal(t, value.KindCompound, got.Kind())
	require.Equal(t, 3, got.Len())
	require.Equal(t, int64(1), got.At(0).LongVal())
}

func TestRoundTripDict(t *testing.T) {
	d := value.Dict(value.SymbolVector([]string{"a", "b"}), value.IntVector([]int32{1, 2}))

	got := roundTrip(t, d)
	require.Equal(t, value.KindDict, got.Kind())
	val, err := got.TryValueForKey(value.Symbol("b"))
	require.NoError(t, err)
	require.Equal(t, int32(2), val.IntVal())
}

func TestRoundTripTable(t *testing.T) {
	tbl, err := value.TryTable(
		value.SymbolVector([]string{"a", "b"}),
		value.CompoundVector([]value.V{
			value.IntVector([]int32{1, 2}),
			value.SymbolVector([]string{"x", "y"}),
		}),
	)
	require.NoError(t, err)

	got := roundTrip(t, tbl)
	require.Equal(t, value.KindTable, got.Kind())
	col, err := got.TryColumnByName("b")
	require.NoError(t, err)
	symbols, _ := col.TrySymbols()
	require.Equal(t, []string{"x", "y"}, symbols)
}

func TestTableWireBytes(t *testing.T) {
	tbl, err := value.TryTable(
		value.SymbolVector([]string{"a", "b"}),
		value.CompoundVector([]value.V{
			value.IntVector([]int32{1, 2}),
			value.SymbolVector([]string{"x", "y"}),
		}),
	)
	require.NoError(t, err)

	payload, err := Encode(tbl, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	require.Equal(t, byte(0x62), payload[0]) // table
	require.Equal(t, byte(0x00), payload[1]) // attribute
	require.Equal(t, byte(0x63), payload[2]) // embedded dict
}

func TestRoundTripKeyedTable(t *testing.T) {
	keyTbl, _ := value.TryTable(value.SymbolVector([]string{"id"}), value.CompoundVector([]value.V{value.IntVector([]int32{1, 2})}))
	valTbl, _ := value.TryTable(value.SymbolVector([]string{"name"}), value.CompoundVector([]value.V{value.SymbolVector([]string{"x", "y"})}))
	kt := value.KeyedTable(keyTbl, valTbl)

	got := roundTrip(t, kt)
	require.Equal(t, value.KindKeyedTable, got.Kind())
}

func TestRoundTripOpaqueForeign(t *testing.T) {
	// The raw span of a foreign payload begins with its 4-byte length prefix.
	v := value.Opaque(value.CodeForeign, []byte{4, 0, 0, 0, 1, 2, 3, 4})

	payload, err := Encode(v, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	got, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.NoError(t, err)
	require.Equal(t, value.KindFunction, got.Kind())
	require.Equal(t, value.CodeForeign, got.Code())
}

func TestRoundTripOpaqueBinaryPrimitive(t *testing.T) {
	v := value.Opaque(value.CodeFuncBinary, []byte{7})

	payload, err := Encode(v, endian.GetLittleEndianEngine())
	require.NoError(t, err)

	got, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.NoError(t, err)
	require.Equal(t, value.KindFunction, got.Kind())
	require.Equal(t, value.CodeFuncBinary, got.Code())
}

func TestRoundTripNull(t *testing.T) {
	got := roundTrip(t, value.Null())
	require.True(t, got.IsNull())
}

func TestRoundTripError(t *testing.T) {
	got := roundTrip(t, value.Error("type error"))
	require.Equal(t, value.KindError, got.Kind())
	msg, err := got.ErrMsg()
	require.NoError(t, err)
	require.Equal(t, "type error", msg)
}

func TestEncodeEnumRejected(t *testing.T) {
	_, err := Encode(value.EnumAtom(3), endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestDecodeShortReadNeverPanics(t *testing.T) {
	payloads := [][]byte{
		{},
		{0xF9},             // long atom type byte, no payload
		{0x06, 0x00},        // int vector type+attr, no length
		{0x06, 0x00, 0x01, 0, 0, 0}, // int vector claiming 1 element, no data
	}

	for _, p := range payloads {
		require.NotPanics(t, func() {
			_, err := Decode(p, endian.GetLittleEndianEngine(), DefaultLimits())
			require.Error(t, err)
		})
	}
}

func TestDecodeListTooLarge(t *testing.T) {
	limits := Limits{MaxListSize: 10, MaxDepth: 64, MaxTotalBytes: 1 << 20}

	payload := []byte{0x06, 0x00, 0xFF, 0xFF, 0xFF, 0x7F} // int vector claiming ~2^31-1 elements
	_, err := Decode(payload, endian.GetLittleEndianEngine(), limits)
	require.ErrorIs(t, err, errs.ErrListTooLarge)
}

func TestDecodeNestingTooDeep(t *testing.T) {
	limits := Limits{MaxListSize: 1000, MaxDepth: 2, MaxTotalBytes: 1 << 20}

	// Three nested compound lists of length 1, each wrapping the next.
	inner, err := Encode(value.CompoundVector([]value.V{value.Long(1)}), endian.GetLittleEndianEngine())
	require.NoError(t, err)

	mid := append([]byte{0x00, 0x01, 0, 0, 0}, inner...)
	outer := append([]byte{0x00, 0x01, 0, 0, 0}, mid...)

	_, err = Decode(outer, endian.GetLittleEndianEngine(), limits)
	require.ErrorIs(t, err, errs.ErrNestingTooDeep)
}

func TestDecodeSymbolVectorLengthBoundedByRemainingBytes(t *testing.T) {
	// Symbol vector (type 11), no attribute, claiming 1e9 elements with
	// zero bytes of symbol data following: must fail on remaining-bytes
	// validation rather than allocating a billion-string slice.
	payload := []byte{11, 0, 0x00, 0xCA, 0x9A, 0x3B}
	_, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrShortRead)
}

func TestDecodeCompoundLengthBoundedByRemainingBytes(t *testing.T) {
	// Compound list (type 0) claiming 1e9 elements with nothing behind it.
	payload := []byte{0, 0x00, 0xCA, 0x9A, 0x3B}
	_, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrShortRead)
}

func TestDecodeInvalidSymbolMissingTerminator(t *testing.T) {
	payload := []byte{0xF5, 'a', 'b', 'c'} // symbol atom type byte, no NUL
	_, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.ErrorIs(t, err, errs.ErrInvalidSymbol)
}

func TestDecodeUnknownTypeByte(t *testing.T) {
	payload := []byte{120} // not a recognized positive type code
	_, err := Decode(payload, endian.GetLittleEndianEngine(), DefaultLimits())
	require.ErrorIs(t, err, errs.ErrInvalidType)
}

func TestBigEndianRoundTrip(t *testing.T) {
	v := value.IntVector([]int32{1, 2, 3})

	payload, err := Encode(v, endian.GetBigEndianEngine())
	require.NoError(t, err)

	got, err := Decode(payload, endian.GetBigEndianEngine(), DefaultLimits())
	require.NoError(t, err)
	ints, _ := got.TryInts()
	require.Equal(t, []int32{1, 2, 3}, ints)
}
