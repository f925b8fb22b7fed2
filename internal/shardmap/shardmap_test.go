package shardmap_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvogel/ledgerd/internal/shardmap"
)

func TestMapGetPutContains(t *testing.T) {
	m := shardmap.New[uint32, string](4)

	_, ok := m.Get(1)
	assert.False(t, ok)
	assert.False(t, m.Contains(1))

	m.Put(1, "one")
	v, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)
	assert.True(t, m.Contains(1))
}

func TestMapShardCountRoundsUpToPowerOfTwo(t *testing.T) {
	m := shardmap.New[uint32, int](5)
	for i := uint32(0); i < 100; i++ {
		m.Put(i, int(i))
	}
	assert.Equal(t, 100, m.Len())
}

func TestMapUpdateAtomicReadModifyWrite(t *testing.T) {
	m := shardmap.New[uint32, int](4)
	m.Put(1, 10)

	err := m.Update(1, func(current int, ok bool) (int, bool, error) {
		require.True(t, ok)
		return current + 5, true, nil
	})
	require.NoError(t, err)

	v, _ := m.Get(1)
	assert.Equal(t, 15, v)
}

func TestMapUpdateErrorLeavesValueUnchanged(t *testing.T) {
	m := shardmap.New[uint32, int](4)
	m.Put(1, 10)

	boom := assert.AnError
	err := m.Update(1, func(current int, ok bool) (int, bool, error) {
		return 0, true, boom
	})
	assert.ErrorIs(t, err, boom)

	v, _ := m.Get(1)
	assert.Equal(t, 10, v)
}

func TestMapUpdateCanDeclineToStore(t *testing.T) {
	m := shardmap.New[uint32, int](4)
	m.Put(1, 10)

	err := m.Update(1, func(current int, ok bool) (int, bool, error) {
		return 999, false, nil
	})
	require.NoError(t, err)

	v, _ := m.Get(1)
	assert.Equal(t, 10, v)
}

func TestMapDelete(t *testing.T) {
	m := shardmap.New[uint32, int](4)
	m.Put(1, 10)
	m.Delete(1)
	assert.False(t, m.Contains(1))
}

func TestMapForEachVisitsEveryEntry(t *testing.T) {
	m := shardmap.New[uint32, int](8)
	want := map[uint32]int{}
	for i := uint32(0); i < 50; i++ {
		m.Put(i, int(i)*2)
		want[i] = int(i) * 2
	}

	got := map[uint32]int{}
	m.ForEach(func(key uint32, value int) bool {
		got[key] = value
		return true
	})
	assert.Equal(t, want, got)
}

func TestMapForEachStopsEarly(t *testing.T) {
	m := shardmap.New[uint32, int](8)
	for i := uint32(0); i < 50; i++ {
		m.Put(i, int(i))
	}

	visited := 0
	m.ForEach(func(key uint32, value int) bool {
		visited++
		return visited < 5
	})
	assert.Equal(t, 5, visited)
}

func TestMapConcurrentAccessIsRaceFree(t *testing.T) {
	m := shardmap.New[uint32, int](16)
	const writers = 8
	const perWriter = 500

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(base uint32) {
			defer wg.Done()
			for i := uint32(0); i < perWriter; i++ {
				key := base*perWriter + i
				m.Put(key, int(key))
				_ = m.Update(key, func(current int, ok bool) (int, bool, error) {
					return current + 1, true, nil
				})
			}
		}(uint32(w))
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, m.Len())
}
