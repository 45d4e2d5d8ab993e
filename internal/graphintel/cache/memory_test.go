package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	c := NewMemory(8)
	defer c.Close()

	key := SnapshotKey("calibrated", "0xabc", "full", "v1")
	require.NoError(t, c.Put(key, []byte(`{"ok":true}`), 100, 60))

	got, hit, err := c.Get(key, 120)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte(`{"ok":true}`), got)

	// expired at nowTs past expireTs
	_, hit, err = c.Get(key, 161)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestMemoryMissOnUnknownKey(t *testing.T) {
	c := NewMemory(0)
	defer c.Close()

	_, hit, err := c.Get([]byte("nope"), 0)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestMemoryEvictSkipsOverwrittenGeneration(t *testing.T) {
	c := NewMemory(4)
	defer c.Close()

	key := []byte("k")
	require.NoError(t, c.Put(key, []byte("old"), 100, 10)) // expires 110
	require.NoError(t, c.Put(key, []byte("new"), 105, 60)) // expires 165

	// evict at 120: the old queue entry is expired, but the map now holds
	// the newer generation, which must survive
	require.NoError(t, c.Evict(120))

	got, hit, err := c.Get(key, 130)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte("new"), got)

	require.NoError(t, c.Evict(200))
	_, hit, _ = c.Get(key, 130)
	require.False(t, hit)
}

func TestMemoryClosed(t *testing.T) {
	c := NewMemory(1)
	require.NoError(t, c.Close())

	require.ErrorIs(t, c.Put([]byte("k"), []byte("v"), 0, 1), ErrClosed)
	_, _, err := c.Get([]byte("k"), 0)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Evict(0), ErrClosed)
}

func TestSnapshotKeyVersionSensitive(t *testing.T) {
	a := SnapshotKey("calibrated", "0xabc", "full", "v1")
	b := SnapshotKey("calibrated", "0xabc", "full", "v2")
	require.NotEqual(t, a, b)
	require.Equal(t, a, SnapshotKey("calibrated", "0xabc", "full", "v1"))
}
