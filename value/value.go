package value

import (
	"fmt"
	"unicode/utf8"

	"github.com/kdbgo/qipc/errs"
)

// MaxDepth is the default nesting limit, the same value as
// codec.DefaultLimits().MaxDepth, which the decoder enforces. The
// constructors in this package do not check nesting depth. A vector/atom
// does not nest, so it never contributes to depth.
const MaxDepth = 64

// MaxListSize is the default maximum element count of any vector, compound,
// or opaque-sub-list shape. The decoder additionally clamps this against
// the bytes actually remaining in the frame before allocating (see codec
// package), so this constant is a ceiling, not a promise that this many
// elements fit in memory.
const MaxListSize = 1_000_000_000

// V is the tagged, recursive q value. Exactly one payload field-group is
// meaningful for a given (Kind, Code) pair; all others are zero.
type V struct {
	kind Kind
	code Code
	attr Attribute
	enum bool // set by EnumAtom/EnumVector

	// Atom payload (meaningful when kind == KindAtom).
	b   bool
	g   [16]byte
	i8  byte
	i16 int16
	i32 int32
	i64 int64
	f32 float32
	f64 float64
	str string // symbol atom

	// Vector payload (meaningful when kind == KindVector); exactly one
	// slice is non-nil, selected by code.Vector().
	bools   []bool
	guids   [][16]byte
	bytes   []byte
	shorts  []int16
	ints    []int32
	longs   []int64
	reals   []float32
	floats  []float64
	chars   []byte // char vector (type 10): raw bytes, no NUL terminator
	symbols []string

	// Compound payload (meaningful when kind == KindCompound).
	items []V

	// Dict/table payload (meaningful when kind == KindDict/KindTable).
	keys   *V
	values *V

	// Keyed table payload (meaningful when kind == KindKeyedTable).
	keyTable   *V
	valueTable *V

	// Function/opaque payload (meaningful when kind == KindFunction).
	raw []byte

	// Error payload (meaningful when kind == KindError).
	errMsg string
}

// Kind returns the structural classification of v.
func (v *V) Kind() Kind { return v.kind }

// Code returns the wire type code of v.
func (v *V) Code() Code { return v.code }

// Attribute returns the vector attribute flag of v (zero value AttrNone for
// non-vector-shaped values).
func (v *V) Attribute() Attribute { return v.attr }

// IsEnum reports whether v carries the enum marker set by EnumAtom or
// EnumVector. Its Kind is still KindAtom/KindVector with Code
// CodeInt/-CodeInt; Encode refuses to re-encode a V with this flag set.
// codec.Decode never sets the marker: it rejects enum type codes with
// ErrInvalidType.
func (v *V) IsEnum() bool { return v.enum }

// Null constructs the unit null value.
func Null() V { return V{kind: KindNull} }

// IsNull reports whether v is the unit null value.
func (v *V) IsNull() bool { return v.kind == KindNull }

// Error constructs an error value carrying msg.
func Error(msg string) V { return V{kind: KindError, code: CodeError, errMsg: msg} }

// ErrMsg returns the message of an error value, or an error if v is not one.
func (v V) ErrMsg() (string, error) {
	if v.kind != KindError {
		return "", fmt.Errorf("%w: ErrMsg on %s", errs.ErrWrongType, v.kind)
	}

	return v.errMsg, nil
}

// ---- Atom constructors ----

func Bool(b bool) V        { return V{kind: KindAtom, code: -CodeBool, b: b} }
func GUID(g [16]byte) V    { return V{kind: KindAtom, code: -CodeGUID, g: g} }
func Byte(b byte) V        { return V{kind: KindAtom, code: -CodeByte, i8: b} }
func Short(i int16) V      { return V{kind: KindAtom, code: -CodeShort, i16: i} }
func Int(i int32) V        { return V{kind: KindAtom, code: -CodeInt, i32: i} }
func Long(i int64) V       { return V{kind: KindAtom, code: -CodeLong, i64: i} }
func Real(f float32) V     { return V{kind: KindAtom, code: -CodeReal, f32: f} }
func Float(f float64) V    { return V{kind: KindAtom, code: -CodeFloat, f64: f} }
func Char(c byte) V        { return V{kind: KindAtom, code: -CodeChar, i8: c} }

// Symbol constructs a symbol atom. name must be valid UTF-8 and must not
// contain a NUL byte (the wire terminator); violating either panics, since
// symbol content is produced by the caller, not untrusted wire bytes — use
// TrySymbol for a non-panicking variant.
func Symbol(name string) V {
	v, err := TrySymbol(name)
	if err != nil {
		panic(err)
	}

	return v
}

// TrySymbol is the non-panicking variant of Symbol.
func TrySymbol(name string) (V, error) {
	if !utf8.ValidString(name) {
		return V{}, fmt.Errorf("%w: symbol %q", errs.ErrInvalidValue, name)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return V{}, fmt.Errorf("%w: symbol %q contains NUL", errs.ErrInvalidValue, name)
		}
	}

	return V{kind: KindAtom, code: -CodeSymbol, str: name}, nil
}

func Timestamp(nsSince2000 int64) V { return V{kind: KindAtom, code: -CodeTimestamp, i64: nsSince2000} }
func Month(monthsSince2000 int32) V { return V{kind: KindAtom, code: -CodeMonth, i32: monthsSince2000} }
func Date(daysSince2000 int32) V    { return V{kind: KindAtom, code: -CodeDate, i32: daysSince2000} }
func Datetime(days float64) V       { return V{kind: KindAtom, code: -CodeDatetime, f64: days} }
func Timespan(ns int64) V           { return V{kind: KindAtom, code: -CodeTimespan, i64: ns} }
func Minute(minutesSinceMidnight int32) V { return V{kind: KindAtom, code: -CodeMinute, i32: minutesSinceMidnight} }
func Second(secondsSinceMidnight int32) V { return V{kind: KindAtom, code: -CodeSecond, i32: secondsSinceMidnight} }
func Time(msSinceMidnight int32) V  { return V{kind: KindAtom, code: -CodeTime, i32: msSinceMidnight} }

// EnumAtom constructs an atom representing a decoded enum index. Encode
// refuses to serialize it (spec: "encoding of enums is not supported").
func EnumAtom(index int32) V {
	return V{kind: KindAtom, code: -CodeInt, i32: index, enum: true}
}

// ---- Atom accessors ----

func (v *V) TryBool() (bool, error)     { return v.b, v.checkAtom(-CodeBool) }
func (v *V) TryGUID() ([16]byte, error) { return v.g, v.checkAtom(-CodeGUID) }
func (v *V) TryByte() (byte, error)     { return v.i8, v.checkAtom(-CodeByte) }
func (v *V) TryShort() (int16, error)   { return v.i16, v.checkAtom(-CodeShort) }
func (v *V) TryInt() (int32, error)     { return v.i32, v.checkAtom(-CodeInt) }
func (v *V) TryLong() (int64, error)    { return v.i64, v.checkAtom(-CodeLong) }
func (v *V) TryReal() (float32, error)  { return v.f32, v.checkAtom(-CodeReal) }
func (v *V) TryFloat() (float64, error) { return v.f64, v.checkAtom(-CodeFloat) }
func (v *V) TryChar() (byte, error)     { return v.i8, v.checkAtom(-CodeChar) }
func (v *V) TrySymbolAtom() (string, error) { return v.str, v.checkAtom(-CodeSymbol) }

func (v *V) checkAtom(code Code) error {
	if v.kind != KindAtom || v.code != code {
		return fmt.Errorf("%w: expected atom code %d, got kind=%s code=%d", errs.ErrWrongType, code, v.kind, v.code)
	}

	return nil
}

// Bool panics if v is not a bool atom; use TryBool for the fallible form.
func (v *V) Bool() bool { r, err := v.TryBool(); mustNot(err); return r }
func (v *V) GUIDVal() [16]byte { r, err := v.TryGUID(); mustNot(err); return r }
func (v *V) ByteVal() byte { r, err := v.TryByte(); mustNot(err); return r }
func (v *V) ShortVal() int16 { r, err := v.TryShort(); mustNot(err); return r }
func (v V) IntVal() int32 { r, err := v.TryInt(); mustNot(err); return r }
func (v V) LongVal() int64 { r, err := v.TryLong(); mustNot(err); return r }
func (v *V) RealVal() float32 { r, err := v.TryReal(); mustNot(err); return r }
func (v *V) FloatVal() float64 { r, err := v.TryFloat(); mustNot(err); return r }
func (v *V) CharVal() byte { r, err := v.TryChar(); mustNot(err); return r }
func (v V) SymbolVal() string { r, err := v.TrySymbolAtom(); mustNot(err); return r }

func mustNot(err error) {
	if err != nil {
		panic(err)
	}
}
