package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockFindAndInsertEmptyPath(t *testing.T) {
	b := &Block{}

	i := b.insertEmptyPath(10)
	require.Equal(t, 0, i)

	i = b.insertEmptyPath(30)
	require.Equal(t, 1, i)

	i = b.insertEmptyPath(20)
	require.Equal(t, 1, i)

	ids := make([]uint64, len(b.paths))
	for j, p := range b.paths {
		ids[j] = p.ObjectID
	}
	require.Equal(t, []uint64{10, 20, 30}, ids)

	idx, found := b.findPathIndex(20)
	require.True(t, found)
	require.Equal(t, 1, idx)

	_, found = b.findPathIndex(99)
	require.False(t, found)
}

func TestBlockEncodedSizeAndRange(t *testing.T) {
	b := &Block{}
	b.insertEmptyPath(5)
	b.insertEmptyPath(9)

	b.paths[0].appendEvent(Event{ObjectID: 5, Timestamp: 100})
	b.paths[1].appendEvent(Event{ObjectID: 9, Timestamp: 200})

	b.recomputeRange()

	require.EqualValues(t, 5, b.hdr.ObjectIDLo)
	require.EqualValues(t, 9, b.hdr.ObjectIDHi)
	require.Equal(t, int64(200), b.hdr.MaxTS)
	require.Equal(t, HeaderSize+b.paths[0].size()+b.paths[1].size(), b.encodedSize())
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Version:      Version,
		Spanning:     true,
		ObjectIDLo:   1,
		ObjectIDHi:   100,
		MinTS:        10,
		MaxTS:        99,
		ContinuesSeq: 3,
		Checksum:     0xDEADBEEF,
	}

	got, err := ParseHeader(h.Bytes())
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestParseHeaderRejectsBadMagicAndSize(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.Error(t, err)

	bad := Header{}.Bytes()
	bad[0] = 0x00
	_, err = ParseHeader(bad)
	require.Error(t, err)
}
