package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathAppendAndInsertSortedTailFastPath(t *testing.T) {
	p := Path{ObjectID: 1}

	p.appendEvent(Event{ObjectID: 1, Timestamp: 10})
	require.NoError(t, p.insertSorted(Event{ObjectID: 1, Timestamp: 20}))
	require.NoError(t, p.insertSorted(Event{ObjectID: 1, Timestamp: 30}))

	require.Equal(t, 3, p.Count)
	require.Equal(t, int64(30), p.MaxTS)

	events, err := p.decodeEvents()
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20, 30}, timestamps(events))
}

func TestPathInsertSortedOutOfOrderSplicesAndRebuilds(t *testing.T) {
	p := Path{ObjectID: 1}

	for _, ts := range []int64{10, 30, 50} {
		require.NoError(t, p.insertSorted(Event{ObjectID: 1, Timestamp: ts}))
	}

	require.NoError(t, p.insertSorted(Event{ObjectID: 1, Timestamp: 20}))
	require.NoError(t, p.insertSorted(Event{ObjectID: 1, Timestamp: 5}))

	events, err := p.decodeEvents()
	require.NoError(t, err)
	require.Equal(t, []int64{5, 10, 20, 30, 50}, timestamps(events))
	require.Equal(t, int64(50), p.MaxTS)
}

func TestPathEncodeDecodeRoundTrip(t *testing.T) {
	p := Path{ObjectID: 9}
	for _, ts := range []int64{1, 2, 3} {
		p.appendEvent(Event{ObjectID: 9, Timestamp: ts})
	}

	buf := encodePath(nil, p)

	got, n, err := decodePath(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, p.ObjectID, got.ObjectID)
	require.Equal(t, p.Count, got.Count)
	require.Equal(t, p.MaxTS, got.MaxTS)
}

func TestDecodePathShortRead(t *testing.T) {
	_, _, err := decodePath([]byte{1, 2, 3})
	require.Error(t, err)
}

func timestamps(events []Event) []int64 {
	ts := make([]int64, len(events))
	for i, e := range events {
		ts[i] = e.Timestamp
	}

	return ts
}
