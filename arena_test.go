/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"math"
	"runtime"
	"strconv"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestArena_Stats(t *testing.T) {
	require := require.New(t)
	pool := NewArena(100)
	require.Equal(PoolStats{Capacity: 100, FreeBytes: 100}, pool.Stats())

	p, err := pool.Allocate(Layout{Size: 30, Align: 1})
	require.NoError(err)
	require.NotNil(p)
	require.Equal(PoolStats{Capacity: 100, InUseBytes: 30, FreeBytes: 70, BlocksInUse: 1}, pool.Stats())

	_, err = pool.Allocate(Layout{Size: 71, Align: 1})
	require.ErrorIs(err, ErrPoolExhausted)

	pool.Free(p)
	require.Equal(PoolStats{Capacity: 100, FreeBytes: 100}, pool.Stats())

	unbounded := NewArena(0).Stats()
	require.True(unbounded.Unbounded)
	require.Equal(uint64(math.MaxUint64), unbounded.FreeBytes)
}

func TestArena_Free(t *testing.T) {
	require := require.New(t)
	pool := NewArena(0)

	// nil is a no-op
	pool.Free(nil)

	// foreign block
	var x int
	require.Panics(func() { pool.Free(unsafe.Pointer(&x)) })

	p, err := pool.Allocate(Layout{Size: 8, Align: 8})
	require.NoError(err)
	pool.Free(p)

	// unable to free the same block twice
	require.Panics(func() { pool.Free(p) })
}

func TestArena_BlocksAreTracedByGC(t *testing.T) {
	require := require.New(t)
	alloc := NewAllocator[*string](NewArena(0))

	block, err := alloc.Allocate(100)
	require.NoError(err)
	for i := range block {
		s := strconv.Itoa(i)
		block[i] = &s
	}
	runtime.GC()
	runtime.GC()
	for i := range block {
		require.Equal(strconv.Itoa(i), *block[i])
	}
	clear(block)
	alloc.Deallocate(block, len(block))
}
