package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushReject(t *testing.T) {
	sq := NewStageQueue[int](Reject(1), Drop)
	assert.Equal(t, 1, sq.Capacity())

	assert.True(t, sq.Push(31))
	assert.False(t, sq.Push(42))
	assert.Equal(t, 1, sq.Capacity())

	_, ok := sq.Pop()
	assert.False(t, ok)

	result := sq.Sync()
	assert.Equal(t, SyncResult{Received: 1}, result)

	v, ok := sq.Pop()
	require.True(t, ok)
	assert.Equal(t, 31, v)

	_, ok = sq.Pop()
	assert.False(t, ok)

	assert.True(t, sq.Push(53))
	assert.Equal(t, 1, sq.Capacity())
}

func TestRejectCapLaw(t *testing.T) {
	const cap = 7
	sq := NewStageQueue[int](Reject(cap), Drop)

	for i := 0; i < cap; i++ {
		require.True(t, sq.Push(i))
	}
	// every further push is rejected and leaves the back stage unchanged
	for i := 0; i < 3; i++ {
		assert.False(t, sq.Push(100+i))
	}

	result := sq.Sync()
	assert.Equal(t, cap, result.Received)
	assert.Equal(t, cap, sq.Len())
	for i := 0; i < cap; i++ {
		v, ok := sq.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestPushForget(t *testing.T) {
	sq := NewStageQueue[int](Forget(1), Drop)
	assert.Equal(t, 1, sq.Capacity())

	assert.True(t, sq.Push(31))
	assert.True(t, sq.Push(42))
	assert.Equal(t, 1, sq.Capacity())

	sq.Sync()

	v, ok := sq.Pop()
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = sq.Pop()
	assert.False(t, ok)
}

func TestForgetKeepsMostRecent(t *testing.T) {
	const cap = 4
	sq := NewStageQueue[int](Forget(cap), Drop)

	for i := 0; i < 10; i++ {
		require.True(t, sq.Push(i))
	}

	result := sq.Sync()
	assert.Equal(t, cap, result.Received)

	// the retained items are the most recent `cap` in FIFO order
	for i := 10 - cap; i < 10; i++ {
		v, ok := sq.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestPushResize(t *testing.T) {
	sq := NewStageQueue[int](Resize(), Drop)
	assert.Equal(t, 0, sq.Capacity())

	// capacity never decreases and push never fails
	last := 0
	for i := 0; i < 100; i++ {
		require.True(t, sq.Push(i))
		assert.GreaterOrEqual(t, sq.Capacity(), last)
		last = sq.Capacity()
	}

	sq.Sync()
	assert.Equal(t, 100, sq.Len())
	for i := 0; i < 100; i++ {
		v, ok := sq.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestKeepRetentionLaw(t *testing.T) {
	const cap = 5
	sq := NewStageQueue[int](Forget(cap), Keep)

	next := 0
	push := func(n int) {
		for i := 0; i < n; i++ {
			require.True(t, sq.Push(next))
			next++
		}
	}

	push(3)
	result := sq.Sync()
	assert.Equal(t, 3, result.Received)
	assert.Equal(t, 0, result.Forgotten)
	assert.Equal(t, 3, sq.Len())

	// |front| = min(|front|+|back|, cap), oldest evicted first
	push(4)
	result = sq.Sync()
	assert.Equal(t, 4, result.Received)
	assert.Equal(t, 2, result.Forgotten)
	assert.Equal(t, cap, sq.Len())

	v, ok := sq.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestKeepResizeAppends(t *testing.T) {
	sq := NewStageQueue[int](Resize(), Keep)

	require.True(t, sq.Push(1))
	sq.Sync()
	require.True(t, sq.Push(2))
	sq.Sync()

	assert.Equal(t, 2, sq.Len())
	v, _ := sq.Pop()
	assert.Equal(t, 1, v)
	v, _ = sq.Pop()
	assert.Equal(t, 2, v)
}

func TestKeepRejectIsIllegal(t *testing.T) {
	assert.Panics(t, func() {
		NewStageQueue[int](Reject(1), Keep)
	})
}

func TestEnforceEmpty(t *testing.T) {
	sq := NewStageQueue[int](Reject(4), EnforceEmpty)

	require.True(t, sq.Push(1))
	require.True(t, sq.Push(2))

	result := sq.Sync()
	assert.False(t, result.EnforceEmptyViolation)
	assert.Equal(t, 2, result.Received)

	// one item left in the front at the next sync
	_, ok := sq.Pop()
	require.True(t, ok)
	require.True(t, sq.Push(3))

	result = sq.Sync()
	assert.True(t, result.EnforceEmptyViolation)
	assert.Equal(t, 1, result.Received)
	assert.Equal(t, 1, result.Dropped)

	// violation or not, the front holds exactly the pre-sync back contents
	assert.Equal(t, 1, sq.Len())
	v, _ := sq.Pop()
	assert.Equal(t, 3, v)
}
