package cursor_test

import (
	"encoding/binary"
	"testing"

	"github.com/skydb/sky/block"
	"github.com/skydb/sky/cursor"
	"github.com/skydb/sky/format"
	"github.com/skydb/sky/value"
	"github.com/stretchr/testify/require"
)

func scratchEngineUint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

func openStore(t *testing.T, blockSize uint32) *block.Store {
	t.Helper()

	s, err := block.Open(t.TempDir(), block.Config{BlockSize: blockSize, Compression: format.CompressionNone}, nil)
	require.NoError(t, err)

	return s
}

func TestCursorWalksEventsInOrder(t *testing.T) {
	s := openStore(t, block.DefaultBlockSize)

	for _, ts := range []int64{5, 1, 3, 2, 4} {
		require.NoError(t, s.Insert(block.Event{ObjectID: 1, Timestamp: ts}))
	}

	c := cursor.New(1, s)
	defer c.Close()

	var got []int64
	for c.Next() {
		got = append(got, c.Current().Timestamp)
	}

	require.NoError(t, c.Err())
	require.True(t, c.EOF())
	require.Equal(t, []int64{1, 2, 3, 4, 5}, got)
}

func TestCursorEmptyObjectIsImmediateEOF(t *testing.T) {
	s := openStore(t, block.DefaultBlockSize)

	c := cursor.New(999, s)
	defer c.Close()

	require.False(t, c.Next())
	require.NoError(t, c.Err())
	require.True(t, c.EOF())
}

func TestCursorTransparentlySpansContinuationBlocks(t *testing.T) {
	s := openStore(t, 256)

	const total = 50
	for i := 0; i < total; i++ {
		e := block.Event{
			ObjectID:  7,
			Timestamp: int64(i),
			Data:      map[uint16]value.Value{1: value.String("padding-to-force-a-split")},
		}
		require.NoError(t, s.Insert(e))
	}

	c := cursor.New(7, s)
	defer c.Close()

	count := 0
	last := int64(-1)

	for c.Next() {
		require.GreaterOrEqual(t, c.Current().Timestamp, last)
		last = c.Current().Timestamp
		count++
	}

	require.NoError(t, c.Err())
	require.Equal(t, total, count)
}

func TestCursorDataDescriptorMaterializesBoundProperties(t *testing.T) {
	s := openStore(t, block.DefaultBlockSize)

	require.NoError(t, s.Insert(block.Event{
		ObjectID:  9,
		Timestamp: 1,
		Data: map[uint16]value.Value{
			1: value.Int(42),
			2: value.Bool(true),
		},
	}))
	require.NoError(t, s.Insert(block.Event{
		ObjectID:  9,
		Timestamp: 2,
		Data:      map[uint16]value.Value{1: value.Int(7)},
	}))

	c := cursor.New(9, s)
	defer c.Close()

	scratch := make([]byte, 9)
	c.SetDataDescriptor(cursor.DataDescriptor{
		{PropertyID: 1, Offset: 0, Width: 8},
		{PropertyID: 2, Offset: 8, Width: 1},
	}, scratch)

	require.True(t, c.Next())
	require.Equal(t, int64(42), int64(scratchEngineUint64(scratch[0:8])))
	require.Equal(t, byte(1), scratch[8])

	require.True(t, c.Next())
	require.Equal(t, int64(7), int64(scratchEngineUint64(scratch[0:8])))
	require.Equal(t, byte(0), scratch[8], "property 2 absent from second event must read back cleared")

	require.False(t, c.Next())
}

func TestCursorDataDescriptorSkipsOutOfBoundsSlot(t *testing.T) {
	s := openStore(t, block.DefaultBlockSize)

	require.NoError(t, s.Insert(block.Event{
		ObjectID:  11,
		Timestamp: 1,
		Data:      map[uint16]value.Value{1: value.Int(1)},
	}))

	c := cursor.New(11, s)
	defer c.Close()

	scratch := make([]byte, 4)
	c.SetDataDescriptor(cursor.DataDescriptor{{PropertyID: 1, Offset: 0, Width: 8}}, scratch)

	require.True(t, c.Next())
	require.Equal(t, []byte{0, 0, 0, 0}, scratch)
}

func TestCursorAllIteratorStopsEarly(t *testing.T) {
	s := openStore(t, block.DefaultBlockSize)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Insert(block.Event{ObjectID: 3, Timestamp: int64(i)}))
	}

	c := cursor.New(3, s)

	seen := 0
	for range c.All() {
		seen++
		if seen == 2 {
			break
		}
	}

	require.Equal(t, 2, seen)
}
