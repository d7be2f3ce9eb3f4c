/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"unsafe"
)

// countingPool wraps a pool and counts primitive calls
type countingPool struct {
	IPool
	allocs int
	frees  int
}

func newCountingPool(capacity uint64) *countingPool {
	return &countingPool{IPool: NewArena(capacity)}
}

func (p *countingPool) Allocate(l Layout) (unsafe.Pointer, error) {
	p.allocs++
	return p.IPool.Allocate(l)
}

func (p *countingPool) Free(ptr unsafe.Pointer) {
	p.frees++
	p.IPool.Free(ptr)
}

// nilPool reports no failure but returns no block
type nilPool struct{}

func (nilPool) Allocate(Layout) (unsafe.Pointer, error) { return nil, nil }
func (nilPool) Free(unsafe.Pointer)                     {}
func (nilPool) Stats() PoolStats                        { return PoolStats{} }

// hooked counts Init/Cleanup hook calls
type hooked struct {
	inits    *int
	cleanups *int
	value    int
}

func (h *hooked) Init() {
	*h.inits++
}

func (h *hooked) Cleanup() {
	*h.cleanups++
}
