// Package value implements Sky's typed-value codec: a self-describing,
// MessagePack-shaped binary encoding for the handful of scalar and
// container shapes the wire protocol needs.
//
// Every encoded value begins with a one-byte kind marker (format.ValueKind)
// sufficient to discriminate its type without reading further, so a decoder
// can Peek a value's kind before committing to Read it — needed wherever the
// schema is implicit, such as the add_event data map.
package value

import (
	"math"

	"github.com/skydb/sky/endian"
	"github.com/skydb/sky/errs"
	"github.com/skydb/sky/format"
)

// engine is the wire byte order for every multi-byte field the codec
// writes: all multi-byte integers are big-endian.
var engine = endian.GetBigEndianEngine()

// Value is the tagged union of one of string, int, double, or boolean. The
// zero Value has Kind == format.KindNil and
// represents nothing — absence from a data map is how "no value" is
// expressed, never a Value with a nil-like payload.
type Value struct {
	Kind    format.ValueKind
	Str     string
	Int     int64
	Double  float64
	Boolean bool
	Map     []MapEntry // valid when Kind == format.KindMap
}

// String constructs a string-kind Value.
func String(s string) Value { return Value{Kind: format.KindString, Str: s} }

// Int constructs a signed-int-kind Value.
func Int(i int64) Value { return Value{Kind: format.KindInt, Int: i} }

// Uint constructs an unsigned-int-kind Value. Used for protocol fields
// (object_id, counts) rather than event data, which never declares an
// unsigned property type.
func Uint(u uint64) Value { return Value{Kind: format.KindUint, Int: int64(u)} }

// Double constructs a double-kind Value.
func Double(f float64) Value { return Value{Kind: format.KindDouble, Double: f} }

// Map constructs a map-kind Value, letting a map nest inside another map's
// entry (the envelope's top-level map and its "data" field are both
// map-kind values under this representation).
func Map(entries []MapEntry) Value { return Value{Kind: format.KindMap, Map: entries} }

// Bool constructs a boolean-kind Value.
func Bool(b bool) Value {
	k := format.KindBoolFalse
	if b {
		k = format.KindBoolTrue
	}

	return Value{Kind: k, Boolean: b}
}

// Uint64 returns v's payload as an unsigned 64-bit integer, valid when
// v.Kind is KindUint.
func (v Value) Uint64() uint64 { return uint64(v.Int) }

// SizeOf returns the number of bytes Write(v) would produce.
func SizeOf(v Value) int {
	switch v.Kind {
	case format.KindNil:
		return 1
	case format.KindUint, format.KindInt, format.KindDouble:
		return 1 + 8
	case format.KindBoolTrue, format.KindBoolFalse:
		return 1
	case format.KindString:
		return 1 + 4 + len(v.Str)
	case format.KindMap:
		return SizeOfMap(v.Map)
	default:
		return 1
	}
}

// SizeOfMap returns the number of bytes Write would produce for a map whose
// entries are the given (key, value) pairs, each key a raw byte string.
func SizeOfMap(entries []MapEntry) int {
	n := 1 + 4 // kind byte + uint32 count
	for _, e := range entries {
		n += 4 + len(e.Key) // key length prefix + key bytes
		n += SizeOf(e.Value)
	}

	return n
}

// MapEntry is one key/value pair of a wire-level map, keyed by raw bytes
// (property or action names, or protocol field names).
type MapEntry struct {
	Key   string
	Value Value
}

// Field looks up key in a decoded map's entries, used throughout the
// message/processor layer to pull named fields out of an envelope's data
// map without hand-rolling a linear scan at every call site.
func Field(entries []MapEntry, key string) (Value, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.Value, true
		}
	}

	return Value{}, false
}

// Write appends the wire encoding of v to dst and returns the grown slice.
func Write(dst []byte, v Value) []byte {
	switch v.Kind {
	case format.KindNil:
		return append(dst, byte(format.KindNil))
	case format.KindUint:
		dst = append(dst, byte(format.KindUint))
		return engine.AppendUint64(dst, uint64(v.Int))
	case format.KindInt:
		dst = append(dst, byte(format.KindInt))
		return engine.AppendUint64(dst, uint64(v.Int))
	case format.KindDouble:
		dst = append(dst, byte(format.KindDouble))
		return engine.AppendUint64(dst, math.Float64bits(v.Double))
	case format.KindBoolTrue:
		return append(dst, byte(format.KindBoolTrue))
	case format.KindBoolFalse:
		return append(dst, byte(format.KindBoolFalse))
	case format.KindString:
		dst = append(dst, byte(format.KindString))
		dst = engine.AppendUint32(dst, uint32(len(v.Str)))
		return append(dst, v.Str...)
	case format.KindMap:
		return WriteMap(dst, v.Map)
	default:
		return append(dst, byte(format.KindNil))
	}
}

// WriteMap appends a wire-level map of entries to dst.
func WriteMap(dst []byte, entries []MapEntry) []byte {
	dst = append(dst, byte(format.KindMap))
	dst = engine.AppendUint32(dst, uint32(len(entries)))
	for _, e := range entries {
		dst = engine.AppendUint32(dst, uint32(len(e.Key)))
		dst = append(dst, e.Key...)
		dst = Write(dst, e.Value)
	}

	return dst
}

// PeekKind reports the kind of the next value in src without consuming any
// bytes, so a decoder can decide how to read it. Returns an error if src is
// empty or the leading byte is not a recognized kind marker.
func PeekKind(src []byte) (format.ValueKind, error) {
	if len(src) < 1 {
		return format.KindNil, errs.DecodeError(0, errs.ErrShortRead)
	}

	k := format.ValueKind(src[0])
	switch k {
	case format.KindUint, format.KindInt, format.KindDouble, format.KindBoolTrue,
		format.KindBoolFalse, format.KindString, format.KindMap:
		return k, nil
	default:
		return format.KindNil, errs.DecodeError(0, errs.ErrUnknownKind)
	}
}

// Read decodes one Value from the front of src, returning the value and the
// number of bytes consumed.
func Read(src []byte) (Value, int, error) {
	kind, err := PeekKind(src)
	if err != nil {
		return Value{}, 0, err
	}

	switch kind {
	case format.KindBoolTrue:
		return Value{Kind: format.KindBoolTrue, Boolean: true}, 1, nil
	case format.KindBoolFalse:
		return Value{Kind: format.KindBoolFalse, Boolean: false}, 1, nil
	case format.KindUint, format.KindInt, format.KindDouble:
		if len(src) < 9 {
			return Value{}, 0, errs.DecodeError(1, errs.ErrTruncatedInteger)
		}

		raw := engine.Uint64(src[1:9])
		switch kind {
		case format.KindUint:
			return Value{Kind: format.KindUint, Int: int64(raw)}, 9, nil
		case format.KindInt:
			return Value{Kind: format.KindInt, Int: int64(raw)}, 9, nil
		default:
			return Value{Kind: format.KindDouble, Double: math.Float64frombits(raw)}, 9, nil
		}
	case format.KindString:
		if len(src) < 5 {
			return Value{}, 0, errs.DecodeError(1, errs.ErrMalformedLength)
		}

		n := int(engine.Uint32(src[1:5]))
		if n < 0 || len(src) < 5+n {
			return Value{}, 0, errs.DecodeError(5, errs.ErrShortRead)
		}

		return Value{Kind: format.KindString, Str: string(src[5 : 5+n])}, 5 + n, nil
	case format.KindMap:
		entries, n, err := ReadMap(src)
		if err != nil {
			return Value{}, 0, err
		}

		return Value{Kind: format.KindMap, Map: entries}, n, nil
	default:
		return Value{}, 0, errs.DecodeError(0, errs.ErrUnknownKind)
	}
}

// ReadMap decodes a wire-level map from the front of src, returning the
// entries and the number of bytes consumed. The caller's schema determines
// what to do with each key; ReadMap itself is schema-agnostic.
func ReadMap(src []byte) ([]MapEntry, int, error) {
	kind, err := PeekKind(src)
	if err != nil {
		return nil, 0, err
	}

	if kind != format.KindMap {
		return nil, 0, errs.DecodeError(0, errs.ErrUnknownKind)
	}

	if len(src) < 5 {
		return nil, 0, errs.DecodeError(1, errs.ErrMalformedLength)
	}

	count := int(engine.Uint32(src[1:5]))
	off := 5
	entries := make([]MapEntry, 0, count)

	for i := 0; i < count; i++ {
		if len(src) < off+4 {
			return nil, 0, errs.DecodeError(off, errs.ErrMalformedLength)
		}

		keyLen := int(engine.Uint32(src[off : off+4]))
		off += 4

		if keyLen < 0 || len(src) < off+keyLen {
			return nil, 0, errs.DecodeError(off, errs.ErrShortRead)
		}

		key := string(src[off : off+keyLen])
		off += keyLen

		v, n, err := Read(src[off:])
		if err != nil {
			return nil, 0, err
		}

		off += n
		entries = append(entries, MapEntry{Key: key, Value: v})
	}

	return entries, off, nil
}
