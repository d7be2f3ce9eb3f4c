/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"fmt"
	"reflect"
	"unsafe"
)

var defaultPool IPool = NewArena(0)

// DefaultPool returns the pool used by zero-value allocators
func DefaultPool() IPool {
	return defaultPool
}

// SetDefaultPool replaces the pool used by zero-value allocators, nil restores a new unbounded arena
// holders, functions and containers created before keep the pool they were created with
func SetDefaultPool(pool IPool) {
	if pool == nil {
		pool = NewArena(0)
	}
	defaultPool = pool
}

func NewAllocator[T any](pool IPool) Allocator[T] {
	return Allocator[T]{pool: pool}
}

// Rebind returns the allocator over U that brokers to the same pool as a
func Rebind[U, T any](a Allocator[T]) Allocator[U] {
	return Allocator[U]{pool: a.pool}
}

// pinned returns the allocator bound to the pool a brokers to now, so later SetDefaultPool() does not affect it
func (a Allocator[T]) pinned() Allocator[T] {
	return Allocator[T]{pool: a.Pool()}
}

// Pool returns the pool the allocator brokers to
func (a Allocator[T]) Pool() IPool {
	if a.pool == nil {
		return defaultPool
	}
	return a.pool
}

// Equal reports whether storage allocated by a may be deallocated by b
func (a Allocator[T]) Equal(b Allocator[T]) bool {
	return a.Pool() == b.Pool()
}

// Allocate returns uninitialized storage for n elements of T
// error satisfies errors.Is(err, ErrBadAlloc) if n*sizeof(T) overflows (the pool is not called then) or the pool fails
func (a Allocator[T]) Allocate(n int) ([]T, error) {
	var zero T
	size := unsafe.Sizeof(zero)
	if n < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", ErrBadAlloc, n)
	}
	if size != 0 && uintptr(n) > ^uintptr(0)/size {
		return nil, fmt.Errorf("%w: %d elements of %d bytes overflow size arithmetic", ErrBadAlloc, n, size)
	}
	if n == 0 {
		return nil, nil
	}
	if size == 0 {
		// zero-sized elements occupy no pool memory
		return make([]T, n), nil
	}
	l := Layout{
		Size:  uintptr(n) * size,
		Align: unsafe.Alignof(zero),
		Elem:  reflect.TypeFor[T](),
		Count: n,
	}
	p, err := a.Pool().Allocate(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrBadAlloc, l.Size, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %d bytes: pool returned no block", ErrBadAlloc, l.Size)
	}
	if isDebug {
		trackBlock(p)
	}
	return unsafe.Slice((*T)(p), n), nil
}

// Deallocate releases storage obtained from Allocate. Elements must be destroyed already
// block must be the slice returned by Allocate (resliced from index 0 only). Empty block is a no-op
// n is unused: the pool knows the block size
func (a Allocator[T]) Deallocate(block []T, n int) {
	var zero T
	if cap(block) == 0 || unsafe.Sizeof(zero) == 0 {
		return
	}
	p := unsafe.Pointer(unsafe.SliceData(block))
	if isDebug {
		untrackBlock(p)
	}
	a.Pool().Free(p)
}

// Construct copies value into the storage at p. No allocation happens
// calls Init() if *T implements it
func (a Allocator[T]) Construct(p *T, value T) {
	*p = value
	if initer, ok := any(p).(interface{ Init() }); ok {
		initer.Init()
	}
}

// Destroy ends the life of the T at p without releasing the storage
// calls Cleanup() if *T implements it, then zeroes the storage
func (a Allocator[T]) Destroy(p *T) {
	if cleaner, ok := any(p).(interface{ Cleanup() }); ok {
		cleaner.Cleanup()
	}
	var zero T
	*p = zero
}

// relocate moves the live elements to dst without running Init/Cleanup hooks
func relocate[T any](dst, src []T) {
	copy(dst, src)
	clear(src)
}

// hasPointers reports whether values of t hold anything the garbage collector must trace
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// HasPointers reports whether the requested content holds Go pointers
func (l Layout) HasPointers() bool {
	return l.Elem != nil && l.Count > 0 && hasPointers(l.Elem)
}
