package codec

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/errs"
	"github.com/kdbgo/qipc/value"
)

// Decode parses payload bytes into a value.V, honoring engine's byte order
// and limits. It never panics on malformed or adversarial input — every
// read is bounds-checked and every length validated against both the
// remaining bytes and limits before anything is allocated.
func Decode(data []byte, engine endian.EndianEngine, limits Limits) (value.V, error) {
	d := &decoder{
		data:     data,
		engine:   engine,
		limits:   limits,
		interned: make(map[uint64]string),
	}

	return d.decodeValue()
}

type decoder struct {
	data     []byte
	pos      int
	engine   endian.EndianEngine
	limits   Limits
	depth    int
	interned map[uint64]string // xxhash(symbol bytes) -> interned string, avoids re-allocating repeated symbols
}

func (d *decoder) need(n int) error {
	if n < 0 || d.pos+n > len(d.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrShortRead, n, d.pos, len(d.data)-d.pos)
	}

	return nil
}

func (d *decoder) decodeValue() (value.V, error) {
	if err := d.need(1); err != nil {
		return value.V{}, err
	}
	code := value.Code(int8(d.data[d.pos]))
	d.pos++

	switch {
	case code == value.CodeCompound:
		return d.decodeCompound()
	case code < 0:
		return d.decodeAtom(code)
	case code.IsVector():
		return d.decodeVector(code)
	case code == value.CodeTable:
		return d.decodeTable()
	case code == value.CodeDict:
		return d.decodeDict(false)
	case code == value.CodeSortedDict:
		return d.decodeDict(true)
	case code.IsOpaque():
		return d.decodeOpaque(code)
	default:
		return value.V{}, fmt.Errorf("%w: type byte %d", errs.ErrInvalidType, code)
	}
}

func (d *decoder) enterContainer() error {
	d.depth++
	if d.depth > d.limits.MaxDepth {
		return fmt.Errorf("%w: depth %d exceeds limit %d", errs.ErrNestingTooDeep, d.depth, d.limits.MaxDepth)
	}

	return nil
}

func (d *decoder) leaveContainer() { d.depth-- }

func (d *decoder) readUint16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	n := d.engine.Uint16(d.data[d.pos:])
	d.pos += 2

	return n, nil
}

func (d *decoder) readUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	n := d.engine.Uint32(d.data[d.pos:])
	d.pos += 4

	return n, nil
}

func (d *decoder) readUint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	n := d.engine.Uint64(d.data[d.pos:])
	d.pos += 8

	return n, nil
}

// readSymbol reads a NUL-terminated, UTF-8-validated string, interning
// repeats so that a symbol vector with many duplicate names (table column
// values are a common case) doesn't allocate once per occurrence.
func (d *decoder) readSymbol() (string, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 0 {
		d.pos++
	}
	if d.pos >= len(d.data) {
		d.pos = start

		return "", fmt.Errorf("%w: unterminated symbol at offset %d", errs.ErrInvalidSymbol, start)
	}

	raw := d.data[start:d.pos]
	d.pos++ // consume NUL

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: symbol at offset %d", errs.ErrInvalidUTF8, start)
	}

	h := xxhash.Sum64(raw)
	if s, ok := d.interned[h]; ok && s == string(raw) {
		return s, nil
	}
	s := string(raw)
	d.interned[h] = s

	return s, nil
}

func (d *decoder) decodeAtom(code value.Code) (value.V, error) {
	switch code {
	case -value.CodeBool:
		if err := d.need(1); err != nil {
			return value.V{}, err
		}
		b := d.data[d.pos] != 0
		d.pos++

		return value.Bool(b), nil
	case -value.CodeGUID:
		if err := d.need(16); err != nil {
			return value.V{}, err
		}
		var g [16]byte
		copy(g[:], d.data[d.pos:d.pos+16])
		d.pos += 16

		return value.GUID(g), nil
	case -value.CodeByte:
		if err := d.need(1); err != nil {
			return value.V{}, err
		}
		b := d.data[d.pos]
		d.pos++

		return value.Byte(b), nil
	case -value.CodeChar:
		if err := d.need(1); err != nil {
			return value.V{}, err
		}
		c := d.data[d.pos]
		d.pos++

		return value.Char(c), nil
	case -value.CodeShort:
		n, err := d.readUint16()
		if err != nil {
			return value.V{}, err
		}

		return value.Short(int16(n)), nil
	case -value.CodeInt:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Int(int32(n)), nil
	case -value.CodeMonth:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Month(int32(n)), nil
	case -value.CodeDate:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Date(int32(n)), nil
	case -value.CodeMinute:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Minute(int32(n)), nil
	case -value.CodeSecond:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Second(int32(n)), nil
	case -value.CodeTime:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Time(int32(n)), nil
	case -value.CodeLong:
		n, err := d.readUint64()
		if err != nil {
			return value.V{}, err
		}

		return value.Long(int64(n)), nil
	case -value.CodeTimestamp:
		n, err := d.readUint64()
		if err != nil {
			return value.V{}, err
		}

		return value.Timestamp(int64(n)), nil
	case -value.CodeTimespan:
		n, err := d.readUint64()
		if err != nil {
			return value.V{}, err
		}

		return value.Timespan(int64(n)), nil
	case -value.CodeReal:
		n, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}

		return value.Real(math.Float32frombits(n)), nil
	case -value.CodeFloat:
		n, err := d.readUint64()
		if err != nil {
			return value.V{}, err
		}

		return value.Float(math.Float64frombits(n)), nil
	case -value.CodeDatetime:
		n, err := d.readUint64()
		if err != nil {
			return value.V{}, err
		}

		return value.Datetime(math.Float64frombits(n)), nil
	case -value.CodeSymbol:
		s, err := d.readSymbol()
		if err != nil {
			return value.V{}, err
		}

		return value.Symbol(s), nil
	case value.CodeError:
		s, err := d.readSymbol()
		if err != nil {
			return value.V{}, err
		}

		return value.Error(s), nil
	default:
		return value.V{}, fmt.Errorf("%w: atom type byte %d", errs.ErrInvalidType, code)
	}
}

// elemWidth returns the fixed per-element byte width of a vector's storage
// family, or 0 for variable-width families (char raw bytes without
// per-element framing still have a known width of 1; symbol is the only
// zero/variable case).
func elemWidth(code value.Code) int {
	switch code {
	case value.CodeBool, value.CodeByte, value.CodeChar:
		return 1
	case value.CodeGUID:
		return 16
	case value.CodeShort:
		return 2
	case value.CodeInt, value.CodeMonth, value.CodeDate, value.CodeMinute, value.CodeSecond, value.CodeTime, value.CodeReal:
		return 4
	case value.CodeLong, value.CodeTimestamp, value.CodeTimespan, value.CodeFloat, value.CodeDatetime:
		return 8
	default:
		return 0
	}
}

func (d *decoder) decodeVector(code value.Code) (value.V, error) {
	if err := d.need(1); err != nil {
		return value.V{}, err
	}
	attr := value.Attribute(d.data[d.pos])
	d.pos++

	ln, err := d.readUint32()
	if err != nil {
		return value.V{}, err
	}
	n := int(int32(ln))
	if n < 0 || n > d.limits.MaxListSize {
		return value.V{}, fmt.Errorf("%w: vector length %d exceeds limit %d", errs.ErrListTooLarge, n, d.limits.MaxListSize)
	}

	if w := elemWidth(code); w > 0 {
		if err := d.need(w * n); err != nil {
			return value.V{}, err
		}
	} else {
		// Variable-width family (symbol): each element still consumes at
		// least 1 byte (an empty symbol is just its NUL terminator), so a
		// length claiming more elements than remaining bytes is malformed
		// regardless of MaxListSize.
		if err := d.need(n); err != nil {
			return value.V{}, err
		}
	}

	var v value.V
	switch code {
	case value.CodeBool:
		vals := make([]bool, n)
		for i := 0; i < n; i++ {
			vals[i] = d.data[d.pos] != 0
			d.pos++
		}
		v = value.BoolVector(vals)
	case value.CodeGUID:
		vals := make([][16]byte, n)
		for i := 0; i < n; i++ {
			copy(vals[i][:], d.data[d.pos:d.pos+16])
			d.pos += 16
		}
		v = value.GUIDVector(vals)
	case value.CodeByte:
		vals := make([]byte, n)
		copy(vals, d.data[d.pos:d.pos+n])
		d.pos += n
		v = value.ByteVector(vals)
	case value.CodeChar:
		vals := make([]byte, n)
		copy(vals, d.data[d.pos:d.pos+n])
		d.pos += n
		v = value.CharVector(string(vals))
	case value.CodeShort:
		vals := make([]int16, n)
		for i := 0; i < n; i++ {
			vals[i] = int16(d.engine.Uint16(d.data[d.pos:]))
			d.pos += 2
		}
		v = value.ShortVector(vals)
	case value.CodeInt, value.CodeMonth, value.CodeDate, value.CodeMinute, value.CodeSecond, value.CodeTime:
		vals := make([]int32, n)
		for i := 0; i < n; i++ {
			vals[i] = int32(d.engine.Uint32(d.data[d.pos:]))
			d.pos += 4
		}
		v = vectorFromInt32s(code, vals)
	case value.CodeLong, value.CodeTimestamp, value.CodeTimespan:
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			vals[i] = int64(d.engine.Uint64(d.data[d.pos:]))
			d.pos += 8
		}
		v = vectorFromInt64s(code, vals)
	case value.CodeReal:
		vals := make([]float32, n)
		for i := 0; i < n; i++ {
			vals[i] = math.Float32frombits(d.engine.Uint32(d.data[d.pos:]))
			d.pos += 4
		}
		v = value.RealVector(vals)
	case value.CodeFloat, value.CodeDatetime:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = math.Float64frombits(d.engine.Uint64(d.data[d.pos:]))
			d.pos += 8
		}
		v = vectorFromFloat64s(code, vals)
	case value.CodeSymbol:
		vals := make([]string, n)
		for i := 0; i < n; i++ {
			s, err := d.readSymbol()
			if err != nil {
				return value.V{}, err
			}
			vals[i] = s
		}
		sv, err := value.TrySymbolVector(vals)
		if err != nil {
			return value.V{}, err
		}
		v = sv
	default:
		return value.V{}, fmt.Errorf("%w: vector type byte %d", errs.ErrInvalidType, code)
	}

	if attr != value.AttrNone {
		if attr > value.AttrGrouped {
			return value.V{}, fmt.Errorf("%w: attribute byte %d", errs.ErrAttributeInvalid, attr)
		}
		v = v.WithAttribute(attr)
	}

	return v, nil
}

func vectorFromInt32s(code value.Code, vals []int32) value.V {
	switch code {
	case value.CodeMonth:
		return value.MonthVector(vals)
	case value.CodeDate:
		return value.DateVector(vals)
	case value.CodeMinute:
		return value.MinuteVector(vals)
	case value.CodeSecond:
		return value.SecondVector(vals)
	case value.CodeTime:
		return value.TimeVector(vals)
	default:
		return value.IntVector(vals)
	}
}

func vectorFromInt64s(code value.Code, vals []int64) value.V {
	switch code {
	case value.CodeTimestamp:
		return value.TimestampVector(vals)
	case value.CodeTimespan:
		return value.TimespanVector(vals)
	default:
		return value.LongVector(vals)
	}
}

func vectorFromFloat64s(code value.Code, vals []float64) value.V {
	if code == value.CodeDatetime {
		return value.DatetimeVector(vals)
	}

	return value.FloatVector(vals)
}

func (d *decoder) decodeCompound() (value.V, error) {
	ln, err := d.readUint32()
	if err != nil {
		return value.V{}, err
	}
	n := int(int32(ln))
	if n < 0 || n > d.limits.MaxListSize {
		return value.V{}, fmt.Errorf("%w: compound length %d exceeds limit %d", errs.ErrListTooLarge, n, d.limits.MaxListSize)
	}
	// Every element needs at least a 1-byte type code, so n can't exceed
	// the remaining bytes even before limit validation makes this moot.
	if err := d.need(n); err != nil {
		return value.V{}, err
	}

	if err := d.enterContainer(); err != nil {
		return value.V{}, err
	}
	defer d.leaveContainer()

	items := make([]value.V, n)
	for i := 0; i < n; i++ {
		elt, err := d.decodeValue()
		if err != nil {
			return value.V{}, err
		}
		items[i] = elt
	}

	return value.CompoundVector(items), nil
}

func (d *decoder) decodeDict(sorted bool) (value.V, error) {
	if err := d.enterContainer(); err != nil {
		return value.V{}, err
	}
	defer d.leaveContainer()

	keys, err := d.decodeValue()
	if err != nil {
		return value.V{}, err
	}
	values, err := d.decodeValue()
	if err != nil {
		return value.V{}, err
	}

	if sorted {
		v, err := value.TryDict(keys, values)
		if err != nil {
			return value.V{}, fmt.Errorf("%w: %v", errs.ErrInvalidValue, err)
		}

		return value.SortedDict(v.Keys(), v.Values()), nil
	}

	if keys.Kind() == value.KindTable && values.Kind() == value.KindTable {
		kt, err := value.TryKeyedTable(keys, values)
		if err != nil {
			return value.V{}, fmt.Errorf("%w: %v", errs.ErrInvalidValue, err)
		}

		return kt, nil
	}

	v, err := value.TryDict(keys, values)
	if err != nil {
		return value.V{}, fmt.Errorf("%w: %v", errs.ErrInvalidValue, err)
	}

	return v, nil
}

func (d *decoder) decodeTable() (value.V, error) {
	if err := d.need(1); err != nil {
		return value.V{}, err
	}
	attr := value.Attribute(d.data[d.pos])
	d.pos++

	if err := d.enterContainer(); err != nil {
		return value.V{}, err
	}
	embedded, err := d.decodeValue()
	d.leaveContainer()
	if err != nil {
		return value.V{}, err
	}
	if embedded.Kind() != value.KindDict {
		return value.V{}, fmt.Errorf("%w: table embedded dict had kind %s", errs.ErrInvalidValue, embedded.Kind())
	}

	tbl, err := value.TryTable(embedded.Keys(), embedded.Values())
	if err != nil {
		return value.V{}, fmt.Errorf("%w: %v", errs.ErrInvalidValue, err)
	}

	return tbl.WithAttribute(attr), nil
}

// decodeOpaque reads a known-but-uninterpreted function payload sub-shape,
// preserving its exact wire span for byte-identical re-emission.
func (d *decoder) decodeOpaque(code value.Code) (value.V, error) {
	start := d.pos

	switch {
	case code == value.CodeFuncLambda:
		if _, err := d.readSymbol(); err != nil {
			return value.V{}, err
		}
		if _, err := d.decodeValue(); err != nil { // body: a char vector
			return value.V{}, err
		}
	case code == value.CodeFuncUnary:
		if err := d.need(1); err != nil {
			return value.V{}, err
		}
		tag := d.data[d.pos]
		d.pos++
		if tag == 0 {
			return value.Null(), nil
		}
	case code == value.CodeFuncBinary: // binary primitive, tagged the same way as unary
		if err := d.need(1); err != nil {
			return value.V{}, err
		}
		d.pos++
	case code == value.CodeFuncProjection, code == value.CodeFuncComposite:
		ln, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}
		n := int(int32(ln))
		if n < 0 || n > d.limits.MaxListSize {
			return value.V{}, fmt.Errorf("%w: opaque nested count %d exceeds limit %d", errs.ErrListTooLarge, n, d.limits.MaxListSize)
		}
		if err := d.enterContainer(); err != nil {
			return value.V{}, err
		}
		for i := 0; i < n; i++ {
			if _, err := d.decodeValue(); err != nil {
				d.leaveContainer()
				return value.V{}, err
			}
		}
		d.leaveContainer()
	case code.IsAdverb():
		if err := d.enterContainer(); err != nil {
			return value.V{}, err
		}
		_, err := d.decodeValue()
		d.leaveContainer()
		if err != nil {
			return value.V{}, err
		}
	case code == value.CodeForeign:
		ln, err := d.readUint32()
		if err != nil {
			return value.V{}, err
		}
		n := int(int32(ln))
		if n < 0 || n > d.limits.MaxListSize {
			return value.V{}, fmt.Errorf("%w: foreign payload length %d exceeds limit %d", errs.ErrListTooLarge, n, d.limits.MaxListSize)
		}
		if err := d.need(n); err != nil {
			return value.V{}, err
		}
		d.pos += n
	default:
		return value.V{}, fmt.Errorf("%w: opaque type byte %d", errs.ErrInvalidType, code)
	}

	raw := make([]byte, d.pos-start)
	copy(raw, d.data[start:d.pos])

	return value.Opaque(code, raw), nil
}
