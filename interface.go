/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"reflect"
	"unsafe"
)

// IPool is the secondary memory source the allocators broker to.
// Use NewArena(), NewMmapPool() or supply your own implementation.
type IPool interface {
	// Allocate returns the address of a block of at least l.Size bytes aligned to l.Align.
	// Returned memory must be treated as uninitialized.
	// Must return a non-nil error if the pool can not satisfy the request, never a fallback block
	Allocate(l Layout) (unsafe.Pointer, error)

	// Free releases a block obtained from Allocate. Free(nil) is a no-op
	Free(p unsafe.Pointer)

	// Stats is read-only introspection, used for reporting only
	Stats() PoolStats
}

// Layout describes one allocation request. Size is the byte count.
// Elem and Count describe the typed content so pools may allocate memory the garbage collector can scan.
// Elem is nil for raw byte requests
type Layout struct {
	Size  uintptr
	Align uintptr
	Elem  reflect.Type
	Count int
}

// PoolStats s.e.
// FreeBytes of an unbounded pool is computed against the whole address space
type PoolStats struct {
	Capacity    uint64
	InUseBytes  uint64
	FreeBytes   uint64
	BlocksInUse uint64
	Unbounded   bool
}

// IReleaser is implemented by every value that owns pool blocks
// Release destroys the owned objects and returns their blocks to the pool
type IReleaser interface {
	Release()
}

// Callable is a value invokable with a single argument
// Multiple arguments are passed as a tuple, see Pair, Triple and Wrap2
type Callable[A, R any] interface {
	Call(a A) R
}

// Callable2 is a two-argument callable, see Wrap2
type Callable2[A, B, R any] interface {
	Call(a A, b B) R
}

// Cloner may be implemented by types stored in a Holder to control Holder.Clone()
type Cloner[T any] interface {
	Clone() T
}
