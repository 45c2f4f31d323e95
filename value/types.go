// Package value implements the tagged, recursive q value model (V): the
// in-memory representation every atom, typed vector, compound list,
// dictionary, table, and opaque function payload the kdb+ IPC wire protocol
// admits is decoded into, and every value the codec encodes is built from.
//
// V is a single struct rather than an interface-per-kind hierarchy, matching
// how the wire format itself works: one type byte selects the shape, and a
// handful of fixed fields hold whichever payload that shape needs. This
// keeps decode a flat type-byte dispatch (see the codec package) instead of
// a constructor-per-type switch feeding an interface.
package value

// Code is a kdb+ IPC wire type byte. Atom codes are negative (-1..-19),
// vector codes are positive (1..19), 0 is a compound (mixed) list, 98 is a
// table, 99 a dictionary, 127 a sorted dictionary, and 100-112 are opaque
// function payload sub-shapes.
type Code int8

// Atom and vector type codes, mirroring real kdb+ (q)ipc.c. Atom codes are
// the negation of the corresponding vector code.
const (
	CodeBool      Code = 1
	CodeGUID      Code = 2
	CodeByte      Code = 4
	CodeShort     Code = 5
	CodeInt       Code = 6
	CodeLong      Code = 7
	CodeReal      Code = 8
	CodeFloat     Code = 9
	CodeChar      Code = 10
	CodeSymbol    Code = 11
	CodeTimestamp Code = 12
	CodeMonth     Code = 13
	CodeDate      Code = 14
	CodeDatetime  Code = 15
	CodeTimespan  Code = 16
	CodeMinute    Code = 17
	CodeSecond    Code = 18
	CodeTime      Code = 19

	CodeCompound     Code = 0
	CodeTable        Code = 98
	CodeDict         Code = 99
	CodeSortedDict   Code = 127
	CodeError        Code = -128 // synthetic; real kdb+ encodes errors as type 10 (string) preceded by -128

	// Opaque function payload sub-shapes (decode-only, preserved verbatim).
	CodeFuncLambda     Code = 100
	CodeFuncUnary      Code = 101
	CodeFuncBinary     Code = 102
	CodeFuncProjection Code = 104
	CodeFuncComposite  Code = 105
	CodeAdverbFirst    Code = 106
	CodeAdverbLast     Code = 111
	CodeForeign        Code = 112
)

// IsAtom reports whether c is an atom's negative type code.
func (c Code) IsAtom() bool { return c < 0 }

// IsVector reports whether c is a typed vector's positive type code (1..19).
func (c Code) IsVector() bool { return c >= 1 && c <= 19 }

// IsAdverb reports whether c falls in the opaque adverb sub-range (106..111).
func (c Code) IsAdverb() bool { return c >= CodeAdverbFirst && c <= CodeAdverbLast }

// IsOpaque reports whether c is any opaque function payload sub-shape.
func (c Code) IsOpaque() bool {
	switch {
	case c == CodeFuncLambda, c == CodeFuncUnary, c == CodeFuncBinary, c == CodeFuncProjection, c == CodeFuncComposite:
		return true
	case c.IsAdverb():
		return true
	case c == CodeForeign:
		return true
	}

	return false
}

// Vector returns the vector code matching an atom code, and vice versa.
func (c Code) Vector() Code {
	if c < 0 {
		return -c
	}

	return c
}

// Atom returns the atom code matching a vector code, and vice versa.
func (c Code) Atom() Code {
	if c > 0 {
		return -c
	}

	return c
}

// Attribute is a per-vector metadata flag that survives round-trip and
// affects q's query planner. It has no effect on this library's own
// behavior beyond being preserved.
type Attribute byte

const (
	AttrNone   Attribute = 0
	AttrSorted Attribute = 1
	AttrUnique Attribute = 2
	AttrParted Attribute = 3
	AttrGrouped Attribute = 4
)

// String renders the attribute the way q's `-21!` / meta display does.
func (a Attribute) String() string {
	switch a {
	case AttrSorted:
		return "s"
	case AttrUnique:
		return "u"
	case AttrParted:
		return "p"
	case AttrGrouped:
		return "g"
	default:
		return ""
	}
}

// Kind classifies the shape of a V independent of its wire type code,
// driving which payload field is populated and which accessor applies.
type Kind uint8

const (
	KindNull Kind = iota
	KindAtom
	KindVector
	KindCompound
	KindDict
	KindTable
	KindKeyedTable
	KindFunction
	KindError
)

// String names the kind, used by Display and error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindAtom:
		return "atom"
	case KindVector:
		return "vector"
	case KindCompound:
		return "compound"
	case KindDict:
		return "dict"
	case KindTable:
		return "table"
	case KindKeyedTable:
		return "keyed table"
	case KindFunction:
		return "function"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}
