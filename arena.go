/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"fmt"
	"math"
	"reflect"
	"runtime/debug"
	"unsafe"
)

// NewArena creates a bounded pool living in the Go heap. capacity 0 means unbounded
// Every block is a separate typed allocation so the garbage collector traces pointers stored in blocks
// useful as the default pool and as a fake secondary memory in tests
func NewArena(capacity uint64) IPool {
	res := &implArena{
		capacity: capacity,
		blocks:   map[uintptr]arenaBlock{},
	}
	RegisterBlocksInUseCounter(func() uint64 { return res.Stats().BlocksInUse })
	return res
}

func (a *implArena) Allocate(l Layout) (unsafe.Pointer, error) {
	size := uint64(l.Size)
	if ceiling := arenaRequestCeiling(); size > ceiling {
		return nil, fmt.Errorf("%w: %d bytes requested, a single heap block is limited to %d bytes", ErrPoolExhausted, size, ceiling)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.capacity > 0 && size > a.capacity-a.inUseBytes {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d bytes free", ErrPoolExhausted, size,
			a.capacity-a.inUseBytes, a.capacity)
	}
	var mem unsafe.Pointer
	if l.Elem != nil && l.Count > 0 && uintptr(l.Count)*l.Elem.Size() >= l.Size {
		mem = reflect.New(reflect.ArrayOf(l.Count, l.Elem)).UnsafePointer()
	} else {
		raw := make([]byte, max(l.Size, 1))
		mem = unsafe.Pointer(unsafe.SliceData(raw))
	}
	a.blocks[uintptr(mem)] = arenaBlock{size: l.Size, mem: mem}
	a.inUseBytes += size
	return mem, nil
}

func (a *implArena) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.blocks[uintptr(p)]
	if !ok {
		panic(fmt.Sprintf("block %p is not allocated by this arena", p))
	}
	delete(a.blocks, uintptr(p))
	a.inUseBytes -= uint64(b.size)
}

func (a *implArena) Stats() PoolStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := PoolStats{
		Capacity:    a.capacity,
		InUseBytes:  a.inUseBytes,
		BlocksInUse: uint64(len(a.blocks)),
	}
	if a.capacity == 0 {
		res.Unbounded = true
		res.FreeBytes = math.MaxUint64 - a.inUseBytes
	} else {
		res.FreeBytes = a.capacity - a.inUseBytes
	}
	return res
}

// arenaRequestCeiling is the largest block the Go heap is asked for: the soft memory limit if set, physical memory otherwise
// larger requests would end in a fatal runtime out-of-memory instead of an error
func arenaRequestCeiling() uint64 {
	res := physicalMemory
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 && uint64(limit) < res {
		res = uint64(limit)
	}
	return res
}
