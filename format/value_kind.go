package format

// ValueKind discriminates the tagged union carried by the typed-value codec.
// It is also the leading byte written to the wire for every encoded value,
// so decoders can peek one byte and know how much more to read.
type ValueKind uint8

const (
	// KindNil marks an absent value. Never written for a map entry (absence
	// from the map is how "no value" is represented instead), but used as
	// the zero value of ValueKind and as the PeekKind result for an empty
	// source.
	KindNil ValueKind = 0x00

	KindUint    ValueKind = 0xC1 // unsigned 64-bit integer, big-endian
	KindInt     ValueKind = 0xC2 // signed 64-bit integer, big-endian
	KindDouble  ValueKind = 0xC3 // IEEE-754 64-bit float, big-endian
	KindBoolTrue  ValueKind = 0xC4 // boolean true, no trailing bytes
	KindBoolFalse ValueKind = 0xC5 // boolean false, no trailing bytes
	KindString  ValueKind = 0xC6 // uint32 length prefix + raw bytes
	KindMap     ValueKind = 0xC7 // uint32 count prefix + count*(key,value) pairs
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindUint:
		return "Uint"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindBoolTrue:
		return "BoolTrue"
	case KindBoolFalse:
		return "BoolFalse"
	case KindString:
		return "String"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// IsBool reports whether the kind is one of the two boolean markers.
func (k ValueKind) IsBool() bool {
	return k == KindBoolTrue || k == KindBoolFalse
}

// IsScalar reports whether k is one of the four value kinds a Property may
// declare (string, int, double, boolean). KindMap and KindNil are wire-only
// shapes and are never a property's declared data type.
func (k ValueKind) IsScalar() bool {
	switch k {
	case KindString, KindInt, KindUint, KindDouble, KindBoolTrue, KindBoolFalse:
		return true
	default:
		return false
	}
}

// dataTypeNames maps the protocol's lowercase data_type strings to the
// ValueKind a Property declares. KindBoolTrue stands in for "boolean" since
// a declared property type, unlike an encoded value, carries no concrete
// true/false state.
var dataTypeNames = map[string]ValueKind{
	"string":  KindString,
	"int":     KindInt,
	"double":  KindDouble,
	"boolean": KindBoolTrue,
}

// ParseDataType resolves a property's declared data_type name to a
// ValueKind. Reports ok=false for anything other than the four supported
// names.
func ParseDataType(name string) (ValueKind, bool) {
	k, ok := dataTypeNames[name]
	return k, ok
}

// DataTypeName returns the protocol-facing name for a property's declared
// data type. Returns "unknown" if k is not one of the four valid declared
// types — call sites are expected to only hold Property.DataType values,
// which are validated at add_property time.
func (k ValueKind) DataTypeName() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBoolTrue:
		return "boolean"
	default:
		return "unknown"
	}
}

// SameDataType reports whether an encoded value's kind matches a property's
// declared data type, treating KindBoolTrue/KindBoolFalse as interchangeable
// boolean representations.
func (k ValueKind) SameDataType(declared ValueKind) bool {
	if k.IsBool() && declared.IsBool() {
		return true
	}

	return k == declared
}
