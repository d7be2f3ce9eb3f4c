//go:build linux || darwin || freebsd

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
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

type implMmapPool struct {
	mu          sync.Mutex
	capacity    uint64
	pageSize    uint64
	mappedBytes uint64
	blocks      map[uintptr][]byte
}

// NewMmapPool creates a pool of off-heap memory. Each block is a separate anonymous private mapping
// rounded up to the page size, capacity (0 means unbounded) limits the total mapped bytes
// The garbage collector does not see this memory so element types holding Go pointers are rejected by ErrPointerLayout
func NewMmapPool(capacity uint64) (IPool, error) {
	res := &implMmapPool{
		capacity: capacity,
		pageSize: uint64(unix.Getpagesize()),
		blocks:   map[uintptr][]byte{},
	}
	RegisterBlocksInUseCounter(func() uint64 { return res.Stats().BlocksInUse })
	return res, nil
}

func (p *implMmapPool) Allocate(l Layout) (unsafe.Pointer, error) {
	if l.HasPointers() {
		return nil, fmt.Errorf("%w: %s", ErrPointerLayout, l.Elem)
	}
	size := (max(uint64(l.Size), 1) + p.pageSize - 1) / p.pageSize * p.pageSize
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: %d bytes do not fit a mapping", ErrPoolExhausted, l.Size)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.capacity > 0 && size > p.capacity-p.mappedBytes {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d bytes free", ErrPoolExhausted, size,
			p.capacity-p.mappedBytes, p.capacity)
	}
	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrPoolExhausted, size, err)
	}
	addr := unsafe.Pointer(unsafe.SliceData(mem))
	p.blocks[uintptr(addr)] = mem
	p.mappedBytes += size
	return addr, nil
}

func (p *implMmapPool) Free(addr unsafe.Pointer) {
	if addr == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	mem, ok := p.blocks[uintptr(addr)]
	if !ok {
		panic(fmt.Sprintf("block %p is not mapped by this pool", addr))
	}
	if err := unix.Munmap(mem); err != nil {
		panic(fmt.Sprintf("munmap block %p: %v", addr, err))
	}
	delete(p.blocks, uintptr(addr))
	p.mappedBytes -= uint64(len(mem))
}

func (p *implMmapPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := PoolStats{
		Capacity:    p.capacity,
		InUseBytes:  p.mappedBytes,
		BlocksInUse: uint64(len(p.blocks)),
	}
	if p.capacity == 0 {
		res.Unbounded = true
		res.FreeBytes = math.MaxUint64 - p.mappedBytes
	} else {
		res.FreeBytes = p.capacity - p.mappedBytes
	}
	return res
}
