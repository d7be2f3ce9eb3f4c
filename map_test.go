/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap_Basic(t *testing.T) {
	require := require.New(t)
	pool := NewArena(0)

	m, err := NewMap(NewAllocator[Pair[int, string]](pool))
	require.NoError(err)
	// the sentinel lives in the pool too
	require.Equal(uint64(1), pool.Stats().BlocksInUse)

	require.NoError(m.Set(3, "Three"))
	require.NoError(m.Set(1, "One"))
	require.NoError(m.Set(2, "Two"))
	require.Equal(3, m.Len())

	keys := []int{}
	values := []string{}
	for k, v := range m.All() {
		keys = append(keys, k)
		values = append(values, v)
	}
	require.Equal([]int{1, 2, 3}, keys)
	require.Equal([]string{"One", "Two", "Three"}, values)

	v, ok := m.Get(2)
	require.True(ok)
	require.Equal("Two", v)
	_, ok = m.Get(4)
	require.False(ok)
	require.True(m.Has(1))
	require.Nil(m.Ptr(4))

	// Set replaces
	require.NoError(m.Set(2, "Deux"))
	require.Equal(3, m.Len())
	*m.Ptr(1) = "Un"
	v, _ = m.Get(1)
	require.Equal("Un", v)

	k, v, ok := m.Min()
	require.True(ok)
	require.Equal(1, k)
	require.Equal("Un", v)
	k, _, ok = m.Max()
	require.True(ok)
	require.Equal(3, k)

	require.True(m.Delete(2))
	require.False(m.Delete(2))
	require.False(m.Has(2))
	require.Equal(uint64(3), pool.Stats().BlocksInUse)

	m.Release()
	require.Zero(pool.Stats().BlocksInUse)
	m.Release()
}

func TestMap_Empty(t *testing.T) {
	require := require.New(t)
	m, err := NewMap(NewAllocator[Pair[string, int]](NewArena(0)))
	require.NoError(err)

	_, _, ok := m.Min()
	require.False(ok)
	_, _, ok = m.Max()
	require.False(ok)
	for range m.All() {
		t.Fatal()
	}
	require.False(m.Delete("x"))
	m.Release()
}

func TestMap_RandomizedKeepsInvariants(t *testing.T) {
	require := require.New(t)
	pool := NewArena(0)
	m, err := NewMap(NewAllocator[Pair[int, int]](pool))
	require.NoError(err)

	rnd := rand.New(rand.NewSource(1))
	expected := map[int]int{}
	for i := 0; i < 2000; i++ {
		key := rnd.Intn(500)
		if rnd.Intn(3) == 0 {
			_, exists := expected[key]
			require.Equal(exists, m.Delete(key))
			delete(expected, key)
		} else {
			require.NoError(m.Set(key, i))
			expected[key] = i
		}
		if i%100 == 0 {
			requireRBInvariants(t, m)
		}
	}
	requireRBInvariants(t, m)
	require.Equal(len(expected), m.Len())
	require.Equal(uint64(len(expected)+1), pool.Stats().BlocksInUse)

	keys := []int{}
	for k, v := range m.All() {
		keys = append(keys, k)
		require.Equal(expected[k], v)
	}
	require.True(slices.IsSorted(keys))

	backward := []int{}
	for k := range m.Backward() {
		backward = append(backward, k)
	}
	slices.Reverse(backward)
	require.Equal(keys, backward)

	m.Release()
	require.Zero(pool.Stats().BlocksInUse)
}

func TestMapFunc(t *testing.T) {
	require := require.New(t)
	m, err := NewMapFunc[string, int](NewAllocator[Pair[string, int]](NewArena(0)), func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	require.NoError(err)
	require.NoError(m.Set("b", 1))
	require.NoError(m.Set("A", 2))
	require.NoError(m.Set("B", 3))

	keys := []string{}
	for k := range m.All() {
		keys = append(keys, k)
	}
	require.Equal([]string{"A", "b"}, keys)
	v, _ := m.Get("b")
	require.Equal(3, v)
	m.Release()
}

func TestMap_AllocationFailure(t *testing.T) {
	require := require.New(t)
	_, err := NewMap(NewAllocator[Pair[int, int]](NewArena(8)))
	require.ErrorIs(err, ErrBadAlloc)

	// room for the sentinel and one node
	pool := NewArena(2 * 64)
	m, err := NewMap(NewAllocator[Pair[int, [3]int64]](pool))
	require.NoError(err)
	require.NoError(m.Set(1, [3]int64{1}))
	require.ErrorIs(m.Set(2, [3]int64{2}), ErrPoolExhausted)
	require.Equal(1, m.Len())
	m.Release()
}

func requireRBInvariants[K, V any](t *testing.T, m *Map[K, V]) {
	t.Helper()
	require := require.New(t)
	require.Equal(black, m.root.color)
	require.Equal(black, m.sentinel.color)

	count := 0
	var walk func(n *mapNode[K, V]) int
	walk = func(n *mapNode[K, V]) int {
		if n == m.sentinel {
			return 1
		}
		count++
		if n.left != m.sentinel {
			require.Same(n, n.left.parent)
			require.Negative(m.compare(n.left.key, n.key))
		}
		if n.right != m.sentinel {
			require.Same(n, n.right.parent)
			require.Positive(m.compare(n.right.key, n.key))
		}
		if n.color == red {
			require.Equal(black, n.left.color)
			require.Equal(black, n.right.color)
		}
		lh := walk(n.left)
		rh := walk(n.right)
		require.Equal(lh, rh)
		if n.color == black {
			return lh + 1
		}
		return lh
	}
	walk(m.root)
	require.Equal(m.Len(), count)
}
