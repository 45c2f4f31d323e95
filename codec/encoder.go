package codec

import (
	"fmt"
	"math"

	"github.com/kdbgo/qipc/endian"
	"github.com/kdbgo/qipc/errs"
	"github.com/kdbgo/qipc/internal/pool"
	"github.com/kdbgo/qipc/value"
)

// Encode serializes v to payload bytes (no frame header) in engine's byte
// order. The frame encoder always calls this with endian.HostEngine() per
// §1's "host-endian on send."
func Encode(v value.V, engine endian.EndianEngine) ([]byte, error) {
	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	if err := encodeValue(buf, v, engine); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

func encodeValue(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	if v.IsEnum() {
		return fmt.Errorf("%w: encoding of enums is not supported", errs.ErrUnsupportedType)
	}

	switch v.Kind() {
	case value.KindNull:
		buf.MustWrite([]byte{byte(int8(value.CodeFuncUnary)), 0})
		return nil
	case value.KindError:
		buf.MustWrite([]byte{byte(int8(-128))})
		msg, _ := v.ErrMsg()
		writeCString(buf, msg)

		return nil
	case value.KindAtom:
		return encodeAtom(buf, v, engine)
	case value.KindVector:
		return encodeVector(buf, v, engine)
	case value.KindCompound:
		return encodeCompound(buf, v, engine)
	case value.KindDict:
		return encodeDict(buf, v, engine)
	case value.KindTable:
		return encodeTable(buf, v, engine)
	case value.KindKeyedTable:
		return encodeKeyedTable(buf, v, engine)
	case value.KindFunction:
		return encodeOpaque(buf, v)
	default:
		return fmt.Errorf("%w: kind %s", errs.ErrUnsupportedType, v.Kind())
	}
}

func encodeAtom(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	buf.MustWrite([]byte{byte(int8(v.Code()))})

	switch v.Code() {
	case -value.CodeBool:
		b, _ := v.TryBool()
		if b {
			buf.MustWrite([]byte{1})
		} else {
			buf.MustWrite([]byte{0})
		}
	case -value.CodeGUID:
		g, _ := v.TryGUID()
		buf.MustWrite(g[:])
	case -value.CodeByte:
		b, _ := v.TryByte()
		buf.MustWrite([]byte{b})
	case -value.CodeShort:
		n, _ := v.TryShort()
		writeUint16(buf, engine, uint16(n))
	case -value.CodeInt, -value.CodeMonth, -value.CodeDate, -value.CodeMinute, -value.CodeSecond, -value.CodeTime:
		n, err := intAtomPayload(v)
		if err != nil {
			return err
		}
		writeUint32(buf, engine, uint32(n))
	case -value.CodeLong, -value.CodeTimestamp, -value.CodeTimespan:
		n, err := longAtomPayload(v)
		if err != nil {
			return err
		}
		writeUint64(buf, engine, uint64(n))
	case -value.CodeReal:
		f, _ := v.TryReal()
		writeUint32(buf, engine, math.Float32bits(f))
	case -value.CodeFloat:
		f, _ := v.TryFloat()
		writeUint64(buf, engine, math.Float64bits(f))
	case -value.CodeDatetime:
		f, _ := v.TryFloat()
		writeUint64(buf, engine, math.Float64bits(f))
	case -value.CodeChar:
		c, _ := v.TryChar()
		buf.MustWrite([]byte{c})
	case -value.CodeSymbol:
		s, _ := v.TrySymbolAtom()
		writeCString(buf, s)
	default:
		return fmt.Errorf("%w: atom code %d", errs.ErrUnsupportedType, v.Code())
	}

	return nil
}

// intAtomPayload extracts the int32 payload of an atom whose code shares
// the 4-byte integer family (int, month, date, minute, second, time).
func intAtomPayload(v value.V) (int32, error) {
	switch v.Code() {
	case -value.CodeInt:
		return v.TryInt()
	case -value.CodeMonth, -value.CodeDate, -value.CodeMinute, -value.CodeSecond, -value.CodeTime:
		// TryInt accepts only -CodeInt but still returns the shared int32
		// payload, so its code-mismatch error is ignored here.
		n, _ := v.TryInt()
		return n, nil
	default:
		return 0, fmt.Errorf("%w: not a 4-byte temporal atom code %d", errs.ErrWrongType, v.Code())
	}
}

func longAtomPayload(v value.V) (int64, error) {
	switch v.Code() {
	case -value.CodeLong:
		return v.TryLong()
	case -value.CodeTimestamp, -value.CodeTimespan:
		n, _ := v.TryLong() // shared int64 payload; see intAtomPayload
		return n, nil
	default:
		return 0, fmt.Errorf("%w: not an 8-byte temporal atom code %d", errs.ErrWrongType, v.Code())
	}
}

func encodeVector(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	buf.MustWrite([]byte{byte(v.Code()), byte(v.Attribute())})
	writeUint32(buf, engine, uint32(v.Len()))

	switch v.Code() {
	case value.CodeBool:
		vals, _ := v.TryBools()
		for _, b := range vals {
			if b {
				buf.MustWrite([]byte{1})
			} else {
				buf.MustWrite([]byte{0})
			}
		}
	case value.CodeGUID:
		vals, _ := v.TryGUIDs()
		for _, g := range vals {
			buf.MustWrite(g[:])
		}
	case value.CodeByte:
		vals, _ := v.TryBytes()
		buf.MustWrite(vals)
	case value.CodeShort:
		vals, _ := v.TryShorts()
		for _, n := range vals {
			writeUint16(buf, engine, uint16(n))
		}
	case value.CodeInt, value.CodeMonth, value.CodeDate, value.CodeMinute, value.CodeSecond, value.CodeTime:
		vals, _ := v.TryInts()
		for _, n := range vals {
			writeUint32(buf, engine, uint32(n))
		}
	case value.CodeLong, value.CodeTimestamp, value.CodeTimespan:
		vals, _ := v.TryLongs()
		for _, n := range vals {
			writeUint64(buf, engine, uint64(n))
		}
	case value.CodeReal:
		vals, _ := v.TryReals()
		for _, f := range vals {
			writeUint32(buf, engine, math.Float32bits(f))
		}
	case value.CodeFloat, value.CodeDatetime:
		vals, _ := v.TryFloats()
		for _, f := range vals {
			writeUint64(buf, engine, math.Float64bits(f))
		}
	case value.CodeChar:
		vals, _ := v.TryChars()
		buf.MustWrite(vals)
	case value.CodeSymbol:
		vals, _ := v.TrySymbols()
		for _, s := range vals {
			writeCString(buf, s)
		}
	default:
		return fmt.Errorf("%w: vector code %d", errs.ErrUnsupportedType, v.Code())
	}

	return nil
}

func encodeCompound(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	items, _ := v.TryItems()
	buf.MustWrite([]byte{byte(value.CodeCompound)})
	writeUint32(buf, engine, uint32(len(items)))

	for i := range items {
		if err := encodeValue(buf, items[i], engine); err != nil {
			return err
		}
	}

	return nil
}

func encodeDict(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	buf.MustWrite([]byte{byte(v.Code())})

	keys, _ := v.TryKeys()
	values, _ := v.TryValues()
	if err := encodeValue(buf, keys, engine); err != nil {
		return err
	}

	return encodeValue(buf, values, engine)
}

func encodeTable(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	buf.MustWrite([]byte{byte(value.CodeTable), byte(v.Attribute())})

	keys, _ := v.TryKeys()
	values, _ := v.TryValues()
	embedded, err := value.TryDict(keys, values)
	if err != nil {
		return fmt.Errorf("%w: table invariant violated: %v", errs.ErrInvalidValue, err)
	}

	return encodeValue(buf, embedded, engine)
}

func encodeKeyedTable(buf *pool.ByteBuffer, v value.V, engine endian.EndianEngine) error {
	buf.MustWrite([]byte{byte(value.CodeDict)})

	keyTable, _ := v.TryKeyTable()
	valueTable, _ := v.TryValueTable()
	if err := encodeValue(buf, keyTable, engine); err != nil {
		return err
	}

	return encodeValue(buf, valueTable, engine)
}

func encodeOpaque(buf *pool.ByteBuffer, v value.V) error {
	raw, _ := v.TryRawBytes()
	buf.MustWrite([]byte{byte(v.Code())})
	buf.MustWrite(raw)

	return nil
}

func writeCString(buf *pool.ByteBuffer, s string) {
	buf.MustWrite([]byte(s))
	buf.MustWrite([]byte{0})
}

func writeUint16(buf *pool.ByteBuffer, engine endian.EndianEngine, n uint16) {
	var tmp [2]byte
	engine.PutUint16(tmp[:], n)
	buf.MustWrite(tmp[:])
}

func writeUint32(buf *pool.ByteBuffer, engine endian.EndianEngine, n uint32) {
	var tmp [4]byte
	engine.PutUint32(tmp[:], n)
	buf.MustWrite(tmp[:])
}

func writeUint64(buf *pool.ByteBuffer, engine endian.EndianEngine, n uint64) {
	var tmp [8]byte
	engine.PutUint64(tmp[:], n)
	buf.MustWrite(tmp[:])
}
