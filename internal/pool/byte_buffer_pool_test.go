package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, len(bb.B), "new buffer should have zero length")
	assert.Equal(t, 1024, cap(bb.B), "new buffer should have specified capacity")
}

func TestByteBuffer_Bytes(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	bb.B = append(bb.B, []byte("encoded-path")...)

	assert.Equal(t, []byte("encoded-path"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	bb.B = append(bb.B, []byte("some data")...)
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, len(bb.B), "Reset should clear the buffer length")
	assert.Equal(t, originalCap, cap(bb.B), "Reset should preserve capacity")
}

func TestByteBuffer_Len(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	bb.B = append(bb.B, []byte("test")...)

	assert.Equal(t, 4, bb.Len())
}

func TestByteBuffer_Grow_SufficientCapacity(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	originalCap := cap(bb.B)

	bb.Grow(100)

	assert.Equal(t, originalCap, cap(bb.B), "should not reallocate when capacity is sufficient")
}

func TestByteBuffer_Grow_ForcesReallocation(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	bb.B = append(bb.B, make([]byte, blockBufferDefaultSize)...) // fill to capacity

	bb.Grow(1024)

	assert.GreaterOrEqual(t, cap(bb.B), blockBufferDefaultSize+1024, "should have at least requested capacity")
	assert.Equal(t, blockBufferDefaultSize, len(bb.B), "length should not change")
}

func TestByteBuffer_Grow_PreservesData(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	testData := []byte("important data that must be preserved")
	bb.B = append(bb.B, testData...)

	bb.Grow(blockBufferDefaultSize * 2) // force reallocation

	assert.Equal(t, testData, bb.B, "data should be preserved after growth")
}

func TestByteBuffer_Grow_LargeBufferGrowsByQuarter(t *testing.T) {
	bb := NewByteBuffer(blockBufferDefaultSize)
	largeSize := 4*blockBufferDefaultSize + 1024
	bb.B = make([]byte, largeSize)

	bb.Grow(2048)

	assert.Equal(t, largeSize+largeSize/4, cap(bb.B), "should grow by a quarter of the current capacity")
}

func TestByteBufferPool_GetPutRoundTrip(t *testing.T) {
	pool := NewByteBufferPool(8192, 65536)

	bb := pool.Get()
	require.NotNil(t, bb)
	assert.GreaterOrEqual(t, cap(bb.B), 8192, "buffer should have at least default size")

	bb.B = append(bb.B, []byte("path record bytes")...)
	pool.Put(bb)
}

func TestByteBufferPool_PutResetsBuffer(t *testing.T) {
	pool := NewByteBufferPool(1024, 0)

	bb := pool.Get()
	bb.B = append(bb.B, []byte("sensitive path data")...)
	pool.Put(bb)

	bb2 := pool.Get()
	assert.Equal(t, 0, len(bb2.B), "buffer returned from the pool should be reset")
}

func TestByteBufferPool_DiscardsBuffersOverThreshold(t *testing.T) {
	pool := NewByteBufferPool(1024, 4096)

	bb := pool.Get()
	bb.Grow(10000) // grow past the 4096 threshold
	require.Greater(t, cap(bb.B), 4096)

	pool.Put(bb)

	bb2 := pool.Get()
	assert.LessOrEqual(t, cap(bb2.B), 4096, "should not hand back a buffer larger than the threshold")
}

func TestByteBufferPool_NoThresholdKeepsLargeBuffers(t *testing.T) {
	pool := NewByteBufferPool(1024, 0) // 0 means no limit

	bb := pool.Get()
	bb.Grow(1024 * 1024)
	pool.Put(bb)

	bb2 := pool.Get()
	require.NotNil(t, bb2)
}

func TestByteBufferPool_PutNilIsNoop(t *testing.T) {
	pool := NewByteBufferPool(1024, 4096)

	assert.NotPanics(t, func() {
		pool.Put(nil)
	})
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	pool := NewByteBufferPool(blockBufferDefaultSize, blockBufferDefaultSize*4)

	const numGoroutines = 50
	const numIterations = 200

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				bb := pool.Get()
				bb.B = append(bb.B, []byte("concurrent path record")...)
				pool.Put(bb)
			}
		}()
	}

	wg.Wait()
}
