package value

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kdbgo/qipc/errs"
)

func TestAtomConstructorsAndAccessors(t *testing.T) {
	t.Run("long", func(t *testing.T) {
		v := Long(42)
		require.Equal(t, KindAtom, v.Kind())
		require.Equal(t, -CodeLong, v.Code())
		got, err := v.TryLong()
		require.NoError(t, err)
		require.Equal(t, int64(42), got)
	})

	t.Run("wrong type returns ErrWrongType", func(t *testing.T) {
		v := Long(42)
		_, err := v.TryInt()
		require.ErrorIs(t, err, errs.ErrWrongType)
	})

	t.Run("panicking accessor panics on mismatch", func(t *testing.T) {
		v := Long(42)
		require.Panics(t, func() { v.IntVal() })
	})
}

func TestSymbol(t *testing.T) {
	t.Run("valid symbol round-trips", func(t *testing.T) {
		v := Symbol("abc")
		got, err := v.TrySymbolAtom()
		require.NoError(t, err)
		require.Equal(t, "abc", got)
	})

	t.Run("embedded NUL rejected", func(t *testing.T) {
		_, err := TrySymbol("a\x00b")
		require.ErrorIs(t, err, errs.ErrInvalidValue)
	})

	t.Run("invalid utf8 rejected", func(t *testing.T) {
		_, err := TrySymbol(string([]byte{0xff, 0xfe}))
		require.ErrorIs(t, err, errs.ErrInvalidValue)
	})

	t.Run("Symbol panics on invalid input", func(t *testing.T) {
		require.Panics(t, func() { Symbol("bad\x00") })
	})
}

func TestVectorPushPopAt(t *testing.T) {
	v := IntVector([]int32{1, 2, 3})
	require.Equal(t, 3, v.Len())

	v.Push(Int(4))
	require.Equal(t, 4, v.Len())
	require.Equal(t, int32(4), v.At(3).IntVal())

	popped := v.Pop()
	require.Equal(t, int32(4), popped.IntVal())
	require.Equal(t, 3, v.Len())

	v.SetAt(0, Int(100))
	require.Equal(t, int32(100), v.At(0).IntVal())
}

func TestVectorPushTypeMismatch(t *testing.T) {
	v := IntVector([]int32{1})
	err := v.TryPush(Long(2))
	require.ErrorIs(t, err, errs.ErrWrongType)
}

func TestVectorOutOfBounds(t *testing.T) {
	v := IntVector([]int32{1, 2})
	_, err := v.TryAt(5)
	require.ErrorIs(t, err, errs.ErrIndexOutOfBounds)
}

func TestCompoundVector(t *testing.T) {
	v := CompoundVector([]V{Long(1), Symbol("x"), Float(2.5)})
	require.Equal(t, 3, v.Len())
	require.Equal(t, int64(1), v.At(0).LongVal())
	require.Equal(t, "x", v.At(1).SymbolVal())
}

func TestDictBasics(t *testing.T) {
	keys := SymbolVector([]string{"a", "b", "c"})
	values := IntVector([]int32{1, 2, 3})
	d := Dict(keys, values)

	require.Equal(t, KindDict, d.Kind())
	require.Equal(t, 3, d.Len())

	pos, err := d.FindByKey(Symbol("b"))
	require.NoError(t, err)
	require.Equal(t, 1, pos)

	val, err := d.TryValueForKey(Symbol("c"))
	require.NoError(t, err)
	require.Equal(t, int32(3), val.IntVal())

	_, err = d.FindByKey(Symbol("nope"))
	require.ErrorIs(t, err, errs.ErrKeyNotFound)
}

func TestDictShapeMismatch(t *testing.T) {
	keys := SymbolVector([]string{"a", "b"})
	values := IntVector([]int32{1})
	_, err := TryDict(keys, values)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestSetValuePreservesVectorKind(t *testing.T) {
	keys := SymbolVector([]string{"a", "b"})
	values := IntVector([]int32{10, 20})
	d := Dict(keys, values)

	err := d.SetValue(Symbol("a"), Int(99))
	require.NoError(t, err)

	got, err := d.TryValueForKey(Symbol("a"))
	require.NoError(t, err)
	require.Equal(t, int32(99), got.IntVal())
}

func TestTableAndColumnByName(t *testing.T) {
	names := SymbolVector([]string{"a", "b"})
	cols := CompoundVector([]V{
		IntVector([]int32{1, 2}),
		SymbolVector([]string{"x", "y"}),
	})

	tbl, err := TryTable(names, cols)
	require.NoError(t, err)
	require.Equal(t, KindTable, tbl.Kind())
	require.Equal(t, 2, tbl.Len())

	col, err := tbl.TryColumnByName("b")
	require.NoError(t, err)
	symbols, err := col.TrySymbols()
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, symbols)
}

func TestTableColumnLengthMismatchRejected(t *testing.T) {
	names := SymbolVector([]string{"a", "b"})
	cols := CompoundVector([]V{
		IntVector([]int32{1, 2}),
		SymbolVector([]string{"x"}),
	})

	_, err := TryTable(names, cols)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestFlip(t *testing.T) {
	keys := SymbolVector([]string{"a"})
	values := CompoundVector([]V{IntVector([]int32{1, 2, 3})})
	d := Dict(keys, values)

	tbl, err := Flip(d)
	require.NoError(t, err)
	require.Equal(t, KindTable, tbl.Kind())
	require.Equal(t, 3, tbl.Len())
}

func TestKeyedTable(t *testing.T) {
	keyTbl, err := TryTable(SymbolVector([]string{"id"}), CompoundVector([]V{IntVector([]int32{1, 2})}))
	require.NoError(t, err)
	valTbl, err := TryTable(SymbolVector([]string{"name"}), CompoundVector([]V{SymbolVector([]string{"x", "y"})}))
	require.NoError(t, err)

	kt := KeyedTable(keyTbl, valTbl)
	require.Equal(t, KindKeyedTable, kt.Kind())

	got, err := kt.TryKeyTable()
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
}

func TestKeyedTableRowCountMismatch(t *testing.T) {
	keyTbl, _ := TryTable(SymbolVector([]string{"id"}), CompoundVector([]V{IntVector([]int32{1, 2})}))
	valTbl, _ := TryTable(SymbolVector([]string{"name"}), CompoundVector([]V{SymbolVector([]string{"x"})}))

	_, err := TryKeyedTable(keyTbl, valTbl)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestAttributeRoundTrip(t *testing.T) {
	v := SymbolVector([]string{"a", "b", "c"}).WithAttribute(AttrSorted)
	require.Equal(t, AttrSorted, v.Attribute())
}

func TestOpaqueRoundTrip(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	v := Opaque(CodeForeign, raw)
	require.Equal(t, KindFunction, v.Kind())
	got, err := v.TryRawBytes()
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestEnumMarker(t *testing.T) {
	v := EnumAtom(7)
	require.True(t, v.IsEnum())
	require.Equal(t, int32(7), v.IntVal())
}

func TestErrorValue(t *testing.T) {
	v := Error("boom")
	require.Equal(t, KindError, v.Kind())
	msg, err := v.ErrMsg()
	require.NoError(t, err)
	require.Equal(t, "boom", msg)

	_, err = Long(1).ErrMsg()
	require.True(t, errors.Is(err, errs.ErrWrongType))
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		name string
		v    V
		want string
	}{
		{"long atom", Long(42), "42"},
		{"symbol atom", Symbol("abc"), "`abc"},
		{"int vector", IntVector([]int32{1, 2, 3}), "1i 2i 3i"},
		{"symbol vector", SymbolVector([]string{"a", "b", "c"}), "`a`b`c"},
		{"null", Null(), "::"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.v.String())
		})
	}
}
