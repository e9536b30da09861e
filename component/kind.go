package component

import "reflect"

// Kind identifies the primitive type of a configurable field.
// The set is closed; fields of any other Go type are recorded as KindInvalid.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	// KindString is an owned, nullable string (Go *string). nil is the absent value.
	KindString
	// KindConstString is a borrowed string (Go string). "" is the absent value.
	KindConstString
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindBool:        "bool",
	KindInt8:        "int8",
	KindUint8:       "uint8",
	KindInt16:       "int16",
	KindUint16:      "uint16",
	KindInt32:       "int32",
	KindUint32:      "uint32",
	KindInt64:       "int64",
	KindUint64:      "uint64",
	KindFloat32:     "float32",
	KindFloat64:     "float64",
	KindString:      "string",
	KindConstString: "const string",
}

// String returns the human readable kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindConstString
}

// KindOf maps a Go type to its Kind. Named types map by their underlying kind.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindInvalid
	}

	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int8:
		return KindInt8
	case reflect.Uint8:
		return KindUint8
	case reflect.Int16:
		return KindInt16
	case reflect.Uint16:
		return KindUint16
	case reflect.Int32:
		return KindInt32
	case reflect.Uint32:
		return KindUint32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.String:
		return KindConstString
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.String {
			return KindString
		}
	}

	return KindInvalid
}
