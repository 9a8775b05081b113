package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skydb/sky/format"
)

func TestRoundTrip(t *testing.T) {
	cases := []Value{
		Uint(42),
		Int(-7),
		Double(3.14159),
		Bool(true),
		Bool(false),
		String("hello world"),
		String(""),
	}

	for _, v := range cases {
		t.Run(v.Kind.String(), func(t *testing.T) {
			buf := Write(nil, v)
			require.Equal(t, SizeOf(v), len(buf))

			got, n, err := Read(buf)
			require.NoError(t, err)
			require.Equal(t, len(buf), n)
			require.Equal(t, v, got)
		})
	}
}

func TestPeekKindDoesNotConsume(t *testing.T) {
	buf := Write(nil, String("abc"))

	kind, err := PeekKind(buf)
	require.NoError(t, err)
	require.Equal(t, format.KindString, kind)

	// Peeking again must yield the same result; Peek must not mutate buf.
	kind2, err := PeekKind(buf)
	require.NoError(t, err)
	require.Equal(t, kind, kind2)

	v, n, err := Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, "abc", v.Str)
}

func TestReadErrors(t *testing.T) {
	t.Run("EmptySource", func(t *testing.T) {
		_, _, err := Read(nil)
		require.Error(t, err)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, _, err := Read([]byte{0xFF})
		require.Error(t, err)
	})

	t.Run("TruncatedInteger", func(t *testing.T) {
		_, _, err := Read([]byte{byte(format.KindInt), 1, 2, 3})
		require.Error(t, err)
	})

	t.Run("MalformedStringLength", func(t *testing.T) {
		_, _, err := Read([]byte{byte(format.KindString), 0, 0})
		require.Error(t, err)
	})

	t.Run("ShortStringBody", func(t *testing.T) {
		buf := []byte{byte(format.KindString), 0, 0, 0, 10, 'a', 'b'}
		_, _, err := Read(buf)
		require.Error(t, err)
	})
}

func TestMapRoundTrip(t *testing.T) {
	entries := []MapEntry{
		{Key: "gender", Value: String("m")},
		{Key: "age", Value: Int(30)},
		{Key: "score", Value: Double(9.5)},
		{Key: "active", Value: Bool(true)},
	}

	buf := WriteMap(nil, entries)
	require.Equal(t, SizeOfMap(entries), len(buf))

	got, n, err := ReadMap(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, entries, got)
}

func TestMapEmpty(t *testing.T) {
	buf := WriteMap(nil, nil)
	got, n, err := ReadMap(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Empty(t, got)
}

func TestNestedMapValueRoundTrip(t *testing.T) {
	v := Map([]MapEntry{
		{Key: "name", Value: String("add_event")},
		{Key: "data", Value: Map([]MapEntry{
			{Key: "gender", Value: String("m")},
			{Key: "age", Value: Int(30)},
		})},
	})

	buf := Write(nil, v)
	require.Equal(t, SizeOf(v), len(buf))

	got, n, err := Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, v, got)
}

func TestDataTypeRoundTrip(t *testing.T) {
	for _, name := range []string{"string", "int", "double", "boolean"} {
		kind, ok := format.ParseDataType(name)
		require.True(t, ok)
		require.Equal(t, name, kind.DataTypeName())
	}

	_, ok := format.ParseDataType("nope")
	require.False(t, ok)
}
