package component

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	B   bool
	I8  int8
	U8  uint8
	I16 int16
	U16 uint16
	I32 int32
	U32 uint32
	I64 int64
	U64 uint64
	F32 float32
	F64 float64
	S   *string
	C   string
	X   []int
}

func sampleField(t *testing.T, s *sample, name string) reflect.Value {
	t.Helper()
	v := reflect.ValueOf(s).Elem().FieldByName(name)
	require.True(t, v.IsValid(), "no field %s", name)
	return v
}

func TestEncode(t *testing.T) {
	str := "hello"
	s := &sample{
		B: true, I8: -8, U8: 200, I16: -1600, U16: 60000, I32: -320000,
		U32: 4000000000, I64: math.MinInt64, U64: math.MaxUint64,
		F32: 1.5, F64: -2.25, S: &str, C: "borrowed",
	}

	tests := []struct {
		field string
		kind  Kind
		want  string
	}{
		{"B", KindBool, "true"},
		{"I8", KindInt8, "-8"},
		{"U8", KindUint8, "200"},
		{"I16", KindInt16, "-1600"},
		{"U16", KindUint16, "60000"},
		{"I32", KindInt32, "-320000"},
		{"U32", KindUint32, "4000000000"},
		{"I64", KindInt64, "-9223372036854775808"},
		{"U64", KindUint64, "18446744073709551615"},
		{"F32", KindFloat32, "1.500000"},
		{"F64", KindFloat64, "-2.250000"},
		{"S", KindString, "hello"},
		{"C", KindConstString, "borrowed"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.kind, sampleField(t, s, tt.field)))
		})
	}
}

func TestEncode_AbsentStrings(t *testing.T) {
	s := &sample{}
	assert.Equal(t, "", Encode(KindString, sampleField(t, s, "S")))
	assert.Equal(t, "", Encode(KindConstString, sampleField(t, s, "C")))
	assert.Equal(t, "false", Encode(KindBool, sampleField(t, s, "B")))
}

func TestEncode_Unsupported(t *testing.T) {
	s := &sample{}
	assert.Equal(t, unsupportedText, Encode(KindInvalid, sampleField(t, s, "X")))
	assert.Equal(t, unsupportedText, Encode(KindInt32, sampleField(t, s, "B")))
}

func TestEncodeTo_Truncates(t *testing.T) {
	s := &sample{I64: 123456789}
	buf := make([]byte, 0, 4)
	assert.Equal(t, "1234", string(EncodeTo(buf, KindInt64, sampleField(t, s, "I64"))))

	big := make([]byte, 0, 64)
	assert.Equal(t, "123456789", string(EncodeTo(big, KindInt64, sampleField(t, s, "I64"))))
}

func TestDecode_RoundTrip(t *testing.T) {
	str := "owned"
	src := &sample{
		B: true, I8: math.MinInt8, U8: math.MaxUint8, I16: math.MinInt16, U16: math.MaxUint16,
		I32: math.MinInt32, U32: math.MaxUint32, I64: math.MaxInt64, U64: math.MaxUint64,
		F32: 3.25, F64: 1234.5, S: &str, C: "borrowed",
	}
	fields := map[string]Kind{
		"B": KindBool, "I8": KindInt8, "U8": KindUint8, "I16": KindInt16, "U16": KindUint16,
		"I32": KindInt32, "U32": KindUint32, "I64": KindInt64, "U64": KindUint64,
		"F32": KindFloat32, "F64": KindFloat64, "S": KindString, "C": KindConstString,
	}

	dst := &sample{}
	for name, kind := range fields {
		text := Encode(kind, sampleField(t, src, name))
		require.NoError(t, Decode(sampleField(t, dst, name), text, kind), name)
	}

	require.NotNil(t, dst.S)
	assert.Equal(t, "owned", *dst.S)
	assert.NotSame(t, src.S, dst.S, "decoded string must be an independent copy")
	dst.S = nil
	src.S = nil
	assert.Equal(t, src, dst)
}

func TestDecode_Bool(t *testing.T) {
	tests := []struct {
		text    string
		start   bool
		want    bool
		wantErr bool
	}{
		{"true", false, true, false},
		{"1", false, true, false},
		{"false", true, false, false},
		{"0", true, false, false},
		{"yes", true, true, true},
		{"TRUE", false, false, true},
		{"", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s := &sample{B: tt.start}
			err := Decode(sampleField(t, s, "B"), tt.text, KindBool)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, s.B)
		})
	}
}

func TestDecode_PermissiveNumbers(t *testing.T) {
	s := &sample{I32: 7, U8: 9, F64: 1}

	require.NoError(t, Decode(sampleField(t, s, "I32"), "42abc", KindInt32))
	assert.Equal(t, int32(42), s.I32)

	require.NoError(t, Decode(sampleField(t, s, "I32"), "abc", KindInt32))
	assert.Equal(t, int32(0), s.I32)

	require.NoError(t, Decode(sampleField(t, s, "I32"), "  -17", KindInt32))
	assert.Equal(t, int32(-17), s.I32)

	require.NoError(t, Decode(sampleField(t, s, "U8"), "300", KindUint8))
	assert.Equal(t, uint8(44), s.U8, "integers wrap to the field width")

	require.NoError(t, Decode(sampleField(t, s, "U8"), "-1", KindUint8))
	assert.Equal(t, uint8(255), s.U8)

	require.NoError(t, Decode(sampleField(t, s, "F64"), "2.5kg", KindFloat64))
	assert.Equal(t, 2.5, s.F64)

	require.NoError(t, Decode(sampleField(t, s, "F64"), "1e3x", KindFloat64))
	assert.Equal(t, 1000.0, s.F64)

	require.NoError(t, Decode(sampleField(t, s, "F64"), "nothing", KindFloat64))
	assert.Equal(t, 0.0, s.F64)
}

func TestDecode_Strings(t *testing.T) {
	old := "old"
	s := &sample{S: &old, C: "old"}

	require.NoError(t, Decode(sampleField(t, s, "S"), "", KindString))
	assert.Nil(t, s.S)

	require.NoError(t, Decode(sampleField(t, s, "S"), "new", KindString))
	require.NotNil(t, s.S)
	assert.Equal(t, "new", *s.S)
	assert.Equal(t, "old", old, "the replaced string must not be written through")

	require.NoError(t, Decode(sampleField(t, s, "C"), "", KindConstString))
	assert.Equal(t, "", s.C)
}

func TestDecode_InvalidKind(t *testing.T) {
	s := &sample{}
	assert.ErrorIs(t, Decode(sampleField(t, s, "X"), "1", KindInvalid), ErrInvalidFieldType)
	assert.ErrorIs(t, Decode(sampleField(t, s, "B"), "1", KindInt32), ErrInvalidFieldType)
	assert.ErrorIs(t, Decode(reflect.ValueOf(int32(1)), "1", KindInt32), ErrInvalidFieldType)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindString, KindOf(reflect.TypeFor[*string]()))
	assert.Equal(t, KindConstString, KindOf(reflect.TypeFor[string]()))
	assert.Equal(t, KindUint64, KindOf(reflect.TypeFor[uint64]()))
	assert.Equal(t, KindInvalid, KindOf(reflect.TypeFor[[]int]()))
	assert.Equal(t, KindInvalid, KindOf(reflect.TypeFor[int]()))
}
