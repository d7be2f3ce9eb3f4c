/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func TestBlocksInUse(t *testing.T) {
	require := require.New(t)
	before := GetBlocksInUse()
	pool := NewArena(0)

	h, err := NewHolder(NewAllocator[int](pool), 1)
	require.NoError(err)
	v, err := NewVector(NewAllocator[int](pool), 1, 2, 3)
	require.NoError(err)
	require.Equal(before+2, GetBlocksInUse())

	ReleaseAll(h, v, nil)
	require.Equal(before, GetBlocksInUse())
}

func TestNonReleasedTrackInDebugMode(t *testing.T) {
	require := require.New(t)
	SetDebug(true)
	defer SetDebug(false)
	pool := NewArena(0)

	holders := []*Holder[int]{}
	for i := 0; i < 10; i++ {
		h, err := NewHolder(NewAllocator[int](pool), i)
		require.NoError(err)
		holders = append(holders, h)
	}
	f, err := Wrap[int, int](pool, counter{})
	require.NoError(err)

	holders[5].Release()

	// prints code points where blocks were allocated but not released
	buf := bytes.NewBuffer(nil)
	PrintNonReleased(buf)
	out := buf.String()
	require.Contains(out, "blocks allocated from pools but not released:")
	require.Contains(out, "9 not released allocated at:")
	require.Contains(out, "1 not released allocated at:")
	require.Contains(out, "TestNonReleasedTrackInDebugMode")
	PrintNonReleased(os.Stdout)

	for i, h := range holders {
		if i != 5 {
			h.Release()
		}
	}
	f.Release()

	// prints nothing
	buf.Reset()
	PrintNonReleased(buf)
	require.Empty(buf.String())
	require.Zero(pool.Stats().BlocksInUse)
}

func TestMemoryReport(t *testing.T) {
	require := require.New(t)
	pool := NewArena(2000)

	r := ReadMemory(pool)
	require.Equal(uint64(2000), r.PoolFree)
	require.False(r.PoolUnbounded)
	require.True(strings.HasPrefix(r.String(), "free heap: "))
	require.True(strings.HasSuffix(r.String(), "free pool: 2.0 kB"))

	r = ReadMemory(NewArena(0))
	require.True(r.PoolUnbounded)
	require.True(strings.HasSuffix(r.String(), "free pool: unbounded"))
}

func TestSetDefaultPool(t *testing.T) {
	require := require.New(t)
	prev := DefaultPool()
	defer SetDefaultPool(prev)

	pool := NewArena(100)
	SetDefaultPool(pool)
	h, err := NewHolder(Allocator[int64]{}, 5)
	require.NoError(err)
	require.Equal(uint64(92), pool.Stats().FreeBytes)
	h.Release()

	SetDefaultPool(nil)
	require.False(pool == DefaultPool())
	require.True(DefaultPool().Stats().Unbounded)
}

func TestSetDefaultPool_KeepsPoolOfExistingObjects(t *testing.T) {
	require := require.New(t)
	prev := DefaultPool()
	defer SetDefaultPool(prev)

	first := NewArena(0)
	SetDefaultPool(first)

	f, err := WrapFunc(nil, func(a int) int { return a + 1 })
	require.NoError(err)
	h, err := NewHolder(Allocator[int64]{}, 5)
	require.NoError(err)
	v, err := NewVector(Allocator[int]{}, 1, 2, 3)
	require.NoError(err)
	m, err := NewMap(Allocator[Pair[string, int]]{})
	require.NoError(err)
	require.NoError(m.Set("a", 1))
	require.NotZero(first.Stats().BlocksInUse)

	SetDefaultPool(NewArena(0))
	require.True(v.Allocator().Pool() == first)

	res, err := f.Call(1)
	require.NoError(err)
	require.Equal(2, res)
	require.NotPanics(func() {
		f.Release()
		h.Release()
		v.Release()
		m.Release()
	})
	require.Zero(first.Stats().BlocksInUse)
	require.Zero(DefaultPool().Stats().BlocksInUse)
}

func TestStackTrace(t *testing.T) {
	require := require.New(t)
	st := getStackTrace()
	require.NotEmpty(st)
	fns := []string{}
	for _, sf := range st {
		fns = append(fns, sf.fn)
	}
	require.True(slices.Contains(fns, "testing.tRunner"))
	require.True(strings.HasSuffix(st.string(), "\n"))
}
