package value

import (
	"fmt"
	"unicode/utf8"

	"github.com/kdbgo/qipc/errs"
)

// ---- Typed vector constructors ----
//
// Each constructor defaults to AttrNone; use WithAttribute to set one.

func BoolVector(vals []bool) V     { return V{kind: KindVector, code: CodeBool, bools: vals} }
func GUIDVector(vals [][16]byte) V { return V{kind: KindVector, code: CodeGUID, guids: vals} }
func ByteVector(vals []byte) V     { return V{kind: KindVector, code: CodeByte, bytes: vals} }
func ShortVector(vals []int16) V   { return V{kind: KindVector, code: CodeShort, shorts: vals} }
func IntVector(vals []int32) V     { return V{kind: KindVector, code: CodeInt, ints: vals} }
func LongVector(vals []int64) V    { return V{kind: KindVector, code: CodeLong, longs: vals} }
func RealVector(vals []float32) V  { return V{kind: KindVector, code: CodeReal, reals: vals} }
func FloatVector(vals []float64) V { return V{kind: KindVector, code: CodeFloat, floats: vals} }

// CharVector constructs a type-10 char vector (a q "string"): raw bytes
// with no terminator, length carried by the wire length prefix.
func CharVector(s string) V { return V{kind: KindVector, code: CodeChar, chars: []byte(s)} }

// SymbolVector constructs a symbol vector. Every element must be valid
// UTF-8 with no embedded NUL; use TrySymbolVector for the fallible form.
func SymbolVector(vals []string) V {
	v, err := TrySymbolVector(vals)
	if err != nil {
		panic(err)
	}

	return v
}

func TrySymbolVector(vals []string) (V, error) {
	for _, s := range vals {
		if !utf8.ValidString(s) {
			return V{}, fmt.Errorf("%w: symbol %q", errs.ErrInvalidValue, s)
		}
		for i := 0; i < len(s); i++ {
			if s[i] == 0 {
				return V{}, fmt.Errorf("%w: symbol %q contains NUL", errs.ErrInvalidValue, s)
			}
		}
	}

	return V{kind: KindVector, code: CodeSymbol, symbols: vals}, nil
}

func TimestampVector(vals []int64) V   { return V{kind: KindVector, code: CodeTimestamp, longs: vals} }
func MonthVector(vals []int32) V       { return V{kind: KindVector, code: CodeMonth, ints: vals} }
func DateVector(vals []int32) V        { return V{kind: KindVector, code: CodeDate, ints: vals} }
func DatetimeVector(vals []float64) V  { return V{kind: KindVector, code: CodeDatetime, floats: vals} }
func TimespanVector(vals []int64) V    { return V{kind: KindVector, code: CodeTimespan, longs: vals} }
func MinuteVector(vals []int32) V      { return V{kind: KindVector, code: CodeMinute, ints: vals} }
func SecondVector(vals []int32) V      { return V{kind: KindVector, code: CodeSecond, ints: vals} }
func TimeVector(vals []int32) V        { return V{kind: KindVector, code: CodeTime, ints: vals} }

// EnumVector constructs a vector representing decoded enum indices.
func EnumVector(indices []int32) V {
	return V{kind: KindVector, code: CodeInt, ints: indices, enum: true}
}

// WithAttribute returns a copy of v with its attribute set to a. Panics if
// v is not vector-shaped (vector, table, or sorted-dict keys).
func (v V) WithAttribute(a Attribute) V {
	if v.kind != KindVector && v.kind != KindTable {
		panic(fmt.Errorf("%w: WithAttribute on %s", errs.ErrWrongType, v.kind))
	}
	v.attr = a

	return v
}

// ---- Typed vector accessors ----

func (v *V) TryBools() ([]bool, error)     { return v.bools, v.checkVector(CodeBool) }
func (v *V) TryGUIDs() ([][16]byte, error) { return v.guids, v.checkVector(CodeGUID) }
func (v *V) TryBytes() ([]byte, error)     { return v.bytes, v.checkVector(CodeByte) }
func (v *V) TryShorts() ([]int16, error)   { return v.shorts, v.checkVector(CodeShort) }
func (v *V) TryChars() ([]byte, error)     { return v.chars, v.checkVector(CodeChar) }
func (v *V) TrySymbols() ([]string, error) { return v.symbols, v.checkVector(CodeSymbol) }

// TryInts returns the underlying int32 slice of a vector backed by one of
// the 4-byte integer codes (int, month, date, minute, second, time) — they
// share a single storage field since their wire widths and Go
// representation are identical; only the Code distinguishes their meaning.
func (v *V) TryInts() ([]int32, error) {
	return v.ints, v.checkVectorFamily(CodeInt, CodeMonth, CodeDate, CodeMinute, CodeSecond, CodeTime)
}

// TryLongs returns the underlying int64 slice of a vector backed by one of
// the 8-byte integer codes (long, timestamp, timespan).
func (v *V) TryLongs() ([]int64, error) {
	return v.longs, v.checkVectorFamily(CodeLong, CodeTimestamp, CodeTimespan)
}

func (v *V) TryReals() ([]float32, error) { return v.reals, v.checkVector(CodeReal) }

// TryFloats returns the underlying float64 slice of a vector backed by one
// of the 8-byte float codes (float, datetime).
func (v *V) TryFloats() ([]float64, error) {
	return v.floats, v.checkVectorFamily(CodeFloat, CodeDatetime)
}

func (v *V) checkVector(code Code) error {
	return v.checkVectorFamily(code)
}

func (v *V) checkVectorFamily(codes ...Code) error {
	if v.kind != KindVector {
		return fmt.Errorf("%w: expected vector, got kind=%s", errs.ErrWrongType, v.kind)
	}
	for _, c := range codes {
		if v.code == c {
			return nil
		}
	}

	return fmt.Errorf("%w: vector code %d not in expected set %v", errs.ErrWrongType, v.code, codes)
}

// Len returns the element count of a vector or compound list, the key count
// of a dictionary, or the row count of a table (the length of its first
// column) or keyed table. Panics on a non-structural value; use TryLen for
// the fallible form.
func (v *V) Len() int {
	n, err := v.TryLen()
	mustNot(err)

	return n
}

// TryLen is the non-panicking variant of Len.
func (v *V) TryLen() (int, error) {
	switch v.kind {
	case KindVector:
		return v.vectorLen(), nil
	case KindCompound:
		return len(v.items), nil
	case KindDict:
		return v.keys.Len(), nil
	case KindTable:
		if len(v.values.items) == 0 {
			return 0, nil
		}
		return v.values.items[0].Len(), nil
	case KindKeyedTable:
		return v.keyTable.Len(), nil
	default:
		return 0, fmt.Errorf("%w: Len on %s", errs.ErrWrongType, v.kind)
	}
}

func (v *V) vectorLen() int {
	switch v.code {
	case CodeBool:
		return len(v.bools)
	case CodeGUID:
		return len(v.guids)
	case CodeByte:
		return len(v.bytes)
	case CodeShort:
		return len(v.shorts)
	case CodeInt, CodeMonth, CodeDate, CodeMinute, CodeSecond, CodeTime:
		return len(v.ints)
	case CodeLong, CodeTimestamp, CodeTimespan:
		return len(v.longs)
	case CodeReal:
		return len(v.reals)
	case CodeFloat, CodeDatetime:
		return len(v.floats)
	case CodeChar:
		return len(v.chars)
	case CodeSymbol:
		return len(v.symbols)
	default:
		return 0
	}
}

// Push appends elt to a vector or compound list in place, enforcing that a
// typed vector only accepts an atom of the matching code. Panics on a
// shape/type mismatch; use TryPush for the fallible form.
func (v *V) Push(elt V) {
	mustNot(v.TryPush(elt))
}

func (v *V) TryPush(elt V) error {
	switch v.kind {
	case KindCompound:
		v.items = append(v.items, elt)
		return nil
	case KindVector:
		return v.pushTyped(elt)
	default:
		return fmt.Errorf("%w: Push on %s", errs.ErrWrongType, v.kind)
	}
}

func (v *V) pushTyped(elt V) error {
	if elt.kind != KindAtom || elt.code != v.code.Atom() {
		return fmt.Errorf("%w: Push element code %d into vector code %d", errs.ErrWrongType, elt.code, v.code)
	}

	switch v.code {
	case CodeBool:
		v.bools = append(v.bools, elt.b)
	case CodeGUID:
		v.guids = append(v.guids, elt.g)
	case CodeByte:
		v.bytes = append(v.bytes, elt.i8)
	case CodeShort:
		v.shorts = append(v.shorts, elt.i16)
	case CodeInt, CodeMonth, CodeDate, CodeMinute, CodeSecond, CodeTime:
		v.ints = append(v.ints, elt.i32)
	case CodeLong, CodeTimestamp, CodeTimespan:
		v.longs = append(v.longs, elt.i64)
	case CodeReal:
		v.reals = append(v.reals, elt.f32)
	case CodeFloat, CodeDatetime:
		v.floats = append(v.floats, elt.f64)
	case CodeChar:
		v.chars = append(v.chars, elt.i8)
	case CodeSymbol:
		v.symbols = append(v.symbols, elt.str)
	default:
		return fmt.Errorf("%w: Push unsupported vector code %d", errs.ErrUnsupportedKeyType, v.code)
	}

	return nil
}

// Pop removes and returns the last element of a vector or compound list.
// Panics if v is empty or not structural; use TryPop for the fallible form.
func (v *V) Pop() V {
	r, err := v.TryPop()
	mustNot(err)

	return r
}

func (v *V) TryPop() (V, error) {
	n, err := v.TryLen()
	if err != nil {
		return V{}, err
	}
	if n == 0 {
		return V{}, fmt.Errorf("%w: Pop on empty %s", errs.ErrIndexOutOfBounds, v.kind)
	}

	elt, err := v.TryAt(n - 1)
	if err != nil {
		return V{}, err
	}

	switch v.kind {
	case KindCompound:
		v.items = v.items[:n-1]
	case KindVector:
		v.truncateTyped(n - 1)
	}

	return elt, nil
}

func (v *V) truncateTyped(n int) {
	switch v.code {
	case CodeBool:
		v.bools = v.bools[:n]
	case CodeGUID:
		v.guids = v.guids[:n]
	case CodeByte:
		v.bytes = v.bytes[:n]
	case CodeShort:
		v.shorts = v.shorts[:n]
	case CodeInt, CodeMonth, CodeDate, CodeMinute, CodeSecond, CodeTime:
		v.ints = v.ints[:n]
	case CodeLong, CodeTimestamp, CodeTimespan:
		v.longs = v.longs[:n]
	case CodeReal:
		v.reals = v.reals[:n]
	case CodeFloat, CodeDatetime:
		v.floats = v.floats[:n]
	case CodeChar:
		v.chars = v.chars[:n]
	case CodeSymbol:
		v.symbols = v.symbols[:n]
	}
}

// At returns the element at ordinal i of a vector or compound list, boxed
// as an atom V for a vector. Panics on an out-of-bounds index or a
// non-structural value; use TryAt for the fallible form.
func (v *V) At(i int) V {
	r, err := v.TryAt(i)
	mustNot(err)

	return r
}

func (v *V) TryAt(i int) (V, error) {
	n, err := v.TryLen()
	if err != nil {
		return V{}, err
	}
	if i < 0 || i >= n {
		return V{}, fmt.Errorf("%w: index %d, length %d", errs.ErrIndexOutOfBounds, i, n)
	}

	if v.kind == KindCompound {
		return v.items[i], nil
	}

	switch v.code {
	case CodeBool:
		return Bool(v.bools[i]), nil
	case CodeGUID:
		return GUID(v.guids[i]), nil
	case CodeByte:
		return Byte(v.bytes[i]), nil
	case CodeShort:
		return Short(v.shorts[i]), nil
	case CodeInt:
		return Int(v.ints[i]), nil
	case CodeMonth:
		return Month(v.ints[i]), nil
	case CodeDate:
		return Date(v.ints[i]), nil
	case CodeMinute:
		return Minute(v.ints[i]), nil
	case CodeSecond:
		return Second(v.ints[i]), nil
	case CodeTime:
		return Time(v.ints[i]), nil
	case CodeLong:
		return Long(v.longs[i]), nil
	case CodeTimestamp:
		return Timestamp(v.longs[i]), nil
	case CodeTimespan:
		return Timespan(v.longs[i]), nil
	case CodeReal:
		return Real(v.reals[i]), nil
	case CodeFloat:
		return Float(v.floats[i]), nil
	case CodeDatetime:
		return Datetime(v.floats[i]), nil
	case CodeChar:
		return Char(v.chars[i]), nil
	case CodeSymbol:
		r, err := TrySymbol(v.symbols[i])
		return r, err
	default:
		return V{}, fmt.Errorf("%w: At unsupported vector code %d", errs.ErrUnsupportedKeyType, v.code)
	}
}

// SetAt replaces the element at ordinal i in place. Panics on an
// out-of-bounds index, shape mismatch, or atom-code mismatch against a
// typed vector; use TrySetAt for the fallible form.
func (v *V) SetAt(i int, elt V) {
	mustNot(v.TrySetAt(i, elt))
}

func (v *V) TrySetAt(i int, elt V) error {
	n, err := v.TryLen()
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return fmt.Errorf("%w: index %d, length %d", errs.ErrIndexOutOfBounds, i, n)
	}

	if v.kind == KindCompound {
		v.items[i] = elt
		return nil
	}

	if elt.kind != KindAtom || elt.code != v.code.Atom() {
		return fmt.Errorf("%w: SetAt element code %d into vector code %d", errs.ErrWrongType, elt.code, v.code)
	}

	switch v.code {
	case CodeBool:
		v.bools[i] = elt.b
	case CodeGUID:
		v.guids[i] = elt.g
	case CodeByte:
		v.bytes[i] = elt.i8
	case CodeShort:
		v.shorts[i] = elt.i16
	case CodeInt, CodeMonth, CodeDate, CodeMinute, CodeSecond, CodeTime:
		v.ints[i] = elt.i32
	case CodeLong, CodeTimestamp, CodeTimespan:
		v.longs[i] = elt.i64
	case CodeReal:
		v.reals[i] = elt.f32
	case CodeFloat, CodeDatetime:
		v.floats[i] = elt.f64
	case CodeChar:
		v.chars[i] = elt.i8
	case CodeSymbol:
		v.symbols[i] = elt.str
	default:
		return fmt.Errorf("%w: SetAt unsupported vector code %d", errs.ErrUnsupportedKeyType, v.code)
	}

	return nil
}

// CompoundVector constructs a type-0 mixed list from heterogeneous items.
func CompoundVector(items []V) V { return V{kind: KindCompound, code: CodeCompound, items: items} }

// Items returns the elements of a compound list. Panics if v is not
// compound; use TryItems for the fallible form.
func (v *V) Items() []V {
	r, err := v.TryItems()
	mustNot(err)

	return r
}

func (v *V) TryItems() ([]V, error) {
	if v.kind != KindCompound {
		return nil, fmt.Errorf("%w: Items on %s", errs.ErrWrongType, v.kind)
	}

	return v.items, nil
}
