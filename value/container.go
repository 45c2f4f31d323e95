package value

import (
	"fmt"

	"github.com/kdbgo/qipc/errs"
)

// Dict constructs a type-99 dictionary from parallel keys/values vectors.
// keys and values must be vector- or compound-shaped and of equal length;
// panics if not, use TryDict for the fallible form.
func Dict(keys, values V) V {
	v, err := TryDict(keys, values)
	mustNot(err)

	return v
}

func TryDict(keys, values V) (V, error) {
	if err := checkDictShape(keys, values); err != nil {
		return V{}, err
	}

	return V{kind: KindDict, code: CodeDict, keys: &keys, values: &values}, nil
}

// SortedDict constructs a type-127 sorted dictionary: same shape as Dict,
// with the sorted attribute set on the keys vector.
func SortedDict(keys, values V) V {
	v, err := TryDict(keys, values)
	mustNot(err)
	v.code = CodeSortedDict
	v.keys.attr = AttrSorted

	return v
}

func checkDictShape(keys, values V) error {
	if keys.kind != KindVector && keys.kind != KindCompound {
		return fmt.Errorf("%w: dict keys must be vector-shaped, got %s", errs.ErrWrongType, keys.kind)
	}
	if values.kind != KindVector && values.kind != KindCompound {
		return fmt.Errorf("%w: dict values must be vector-shaped, got %s", errs.ErrWrongType, values.kind)
	}
	if keys.Len() != values.Len() {
		return fmt.Errorf("%w: dict keys length %d != values length %d", errs.ErrInvalidValue, keys.Len(), values.Len())
	}

	return nil
}

// Keys returns the key side of a dictionary or table. Panics if v is
// neither; use TryKeys for the fallible form.
func (v *V) Keys() V {
	r, err := v.TryKeys()
	mustNot(err)

	return r
}

func (v *V) TryKeys() (V, error) {
	if v.kind != KindDict && v.kind != KindTable {
		return V{}, fmt.Errorf("%w: Keys on %s", errs.ErrWrongType, v.kind)
	}

	return *v.keys, nil
}

// Values returns the value side of a dictionary or table. Panics if v is
// neither; use TryValues for the fallible form.
func (v *V) Values() V {
	r, err := v.TryValues()
	mustNot(err)

	return r
}

func (v *V) TryValues() (V, error) {
	if v.kind != KindDict && v.kind != KindTable {
		return V{}, fmt.Errorf("%w: Values on %s", errs.ErrWrongType, v.kind)
	}

	return *v.values, nil
}

// FindByKey returns the ordinal position of key within a dictionary's keys
// vector, by equality. Supported key kinds: symbol, long, int, float.
func (v *V) FindByKey(key V) (int, error) {
	if v.kind != KindDict && v.kind != KindTable {
		return -1, fmt.Errorf("%w: FindByKey on %s", errs.ErrWrongType, v.kind)
	}

	n := v.keys.Len()
	for i := 0; i < n; i++ {
		elt, err := v.keys.TryAt(i)
		if err != nil {
			return -1, err
		}
		eq, err := elt.equalKey(key)
		if err != nil {
			return -1, err
		}
		if eq {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: key not present", errs.ErrKeyNotFound)
}

func (v *V) equalKey(other V) (bool, error) {
	if v.kind != KindAtom || other.kind != KindAtom {
		return false, fmt.Errorf("%w: key comparison requires atoms", errs.ErrUnsupportedKeyType)
	}

	switch v.code {
	case -CodeSymbol:
		if other.code != -CodeSymbol {
			return false, nil
		}
		return v.str == other.str, nil
	case -CodeLong:
		if other.code != -CodeLong {
			return false, nil
		}
		return v.i64 == other.i64, nil
	case -CodeInt:
		if other.code != -CodeInt {
			return false, nil
		}
		return v.i32 == other.i32, nil
	case -CodeFloat:
		if other.code != -CodeFloat {
			return false, nil
		}
		return v.f64 == other.f64, nil
	default:
		return false, fmt.Errorf("%w: key type code %d", errs.ErrUnsupportedKeyType, v.code)
	}
}

// SetValue finds key in a dictionary and replaces the corresponding
// element on the value side with newVal, preserving the existing value-side
// kind: if values is a typed vector, newVal must be the matching atom kind
// and its scalar payload replaces the element in place; if values is a
// compound vector, newVal replaces the element as-is.
func (v *V) SetValue(key, newVal V) error {
	if v.kind != KindDict && v.kind != KindTable {
		return fmt.Errorf("%w: SetValue on %s", errs.ErrWrongType, v.kind)
	}

	pos, err := v.FindByKey(key)
	if err != nil {
		return err
	}

	return v.values.TrySetAt(pos, newVal)
}

// Table constructs a type-98 table from a symbol vector of column names and
// a compound vector of equal-length columns. Panics on shape violation; use
// TryTable for the fallible form.
func Table(columnNames V, columns V) V {
	v, err := TryTable(columnNames, columns)
	mustNot(err)

	return v
}

func TryTable(columnNames V, columns V) (V, error) {
	if columnNames.kind != KindVector || columnNames.code != CodeSymbol {
		return V{}, fmt.Errorf("%w: table column names must be a symbol vector", errs.ErrWrongType)
	}
	if columns.kind != KindCompound {
		return V{}, fmt.Errorf("%w: table columns must be a compound vector", errs.ErrWrongType)
	}
	if columnNames.Len() != columns.Len() {
		return V{}, fmt.Errorf("%w: table column names length %d != columns length %d", errs.ErrInvalidValue, columnNames.Len(), columns.Len())
	}

	rowCount := -1
	for i, col := range columns.items {
		if col.kind != KindVector && col.kind != KindCompound {
			return V{}, fmt.Errorf("%w: table column %d is not vector-shaped", errs.ErrInvalidValue, i)
		}
		if rowCount == -1 {
			rowCount = col.Len()
		} else if col.Len() != rowCount {
			return V{}, fmt.Errorf("%w: table column %d length %d != row count %d", errs.ErrInvalidValue, i, col.Len(), rowCount)
		}
	}

	dict, err := TryDict(columnNames, columns)
	if err != nil {
		return V{}, err
	}
	dict.kind = KindTable
	dict.code = CodeTable

	return dict, nil
}

// Flip turns a symbols!compound-of-columns dictionary into a table — the q
// `flip` primitive's wire-level shape change. The input dictionary is not
// mutated; Flip returns a new table sharing the same column data.
func Flip(d V) (V, error) {
	if d.kind != KindDict {
		return V{}, fmt.Errorf("%w: Flip on %s", errs.ErrWrongType, d.kind)
	}

	return TryTable(*d.keys, *d.values)
}

// ColumnByName returns the column vector named name from a table. Panics if
// v is not a table or name is absent; use TryColumnByName for the fallible
// form.
func (v *V) ColumnByName(name string) V {
	r, err := v.TryColumnByName(name)
	mustNot(err)

	return r
}

func (v *V) TryColumnByName(name string) (V, error) {
	if v.kind != KindTable {
		return V{}, fmt.Errorf("%w: ColumnByName on %s", errs.ErrWrongType, v.kind)
	}

	pos, err := v.FindByKey(Symbol(name))
	if err != nil {
		return V{}, err
	}

	return v.values.TryAt(pos)
}

// KeyedTable constructs a keyed table from a key-table and a value-table of
// equal row counts.
func KeyedTable(keyTable, valueTable V) V {
	v, err := TryKeyedTable(keyTable, valueTable)
	mustNot(err)

	return v
}

func TryKeyedTable(keyTable, valueTable V) (V, error) {
	if keyTable.kind != KindTable || valueTable.kind != KindTable {
		return V{}, fmt.Errorf("%w: KeyedTable requires two tables", errs.ErrWrongType)
	}
	if keyTable.Len() != valueTable.Len() {
		return V{}, fmt.Errorf("%w: keyed table row count mismatch %d != %d", errs.ErrInvalidValue, keyTable.Len(), valueTable.Len())
	}

	return V{kind: KindKeyedTable, code: CodeDict, keyTable: &keyTable, valueTable: &valueTable}, nil
}

// KeyTable and ValueTable return the two halves of a keyed table.
func (v *V) KeyTable() V {
	r, err := v.TryKeyTable()
	mustNot(err)

	return r
}

func (v *V) TryKeyTable() (V, error) {
	if v.kind != KindKeyedTable {
		return V{}, fmt.Errorf("%w: KeyTable on %s", errs.ErrWrongType, v.kind)
	}

	return *v.keyTable, nil
}

func (v *V) ValueTable() V {
	r, err := v.TryValueTable()
	mustNot(err)

	return r
}

func (v *V) TryValueTable() (V, error) {
	if v.kind != KindKeyedTable {
		return V{}, fmt.Errorf("%w: ValueTable on %s", errs.ErrWrongType, v.kind)
	}

	return *v.valueTable, nil
}

// Ordinal indexes a dictionary by position 0 (keys) or 1 (values), the
// shorthand q uses for `d[0]`/`d[1]`. Panics on any other ordinal or a
// non-dictionary receiver; use TryOrdinal for the fallible form.
func (v *V) Ordinal(i int) V {
	r, err := v.TryOrdinal(i)
	mustNot(err)

	return r
}

func (v *V) TryOrdinal(i int) (V, error) {
	if v.kind != KindDict && v.kind != KindTable {
		return V{}, fmt.Errorf("%w: Ordinal on %s", errs.ErrWrongType, v.kind)
	}

	switch i {
	case 0:
		return *v.keys, nil
	case 1:
		return *v.values, nil
	default:
		return V{}, fmt.Errorf("%w: dictionary ordinal %d", errs.ErrIndexOutOfBounds, i)
	}
}

// ValueForKey looks up key in a dictionary and returns the corresponding
// value-side element. Panics if key is absent; use TryValueForKey for the
// fallible form.
func (v *V) ValueForKey(key V) V {
	r, err := v.TryValueForKey(key)
	mustNot(err)

	return r
}

func (v *V) TryValueForKey(key V) (V, error) {
	pos, err := v.FindByKey(key)
	if err != nil {
		return V{}, err
	}

	return v.values.TryAt(pos)
}

// Opaque constructs a preserved opaque function payload for sub-shape code
// (100, 101, 102, 104, 105, 106-111, or 112) wrapping the raw wire bytes exactly
// as they must be re-emitted.
func Opaque(code Code, raw []byte) V {
	return V{kind: KindFunction, code: code, raw: raw}
}

// RawBytes returns the preserved bytes of an opaque function/foreign
// payload. Panics if v is not such a value; use TryRawBytes for the
// fallible form.
func (v *V) RawBytes() []byte {
	r, err := v.TryRawBytes()
	mustNot(err)

	return r
}

func (v *V) TryRawBytes() ([]byte, error) {
	if v.kind != KindFunction {
		return nil, fmt.Errorf("%w: RawBytes on %s", errs.ErrWrongType, v.kind)
	}

	return v.raw, nil
}
