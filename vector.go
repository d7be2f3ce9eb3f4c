/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import "iter"

const minVectorCapacity = 4

// NewVector creates a Vector holding values
func NewVector[T any](alloc Allocator[T], values ...T) (*Vector[T], error) {
	res := &Vector[T]{alloc: alloc.pinned()}
	if err := res.Append(values...); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

func (v *Vector[T]) Len() int {
	return len(v.data)
}

func (v *Vector[T]) Cap() int {
	return cap(v.data)
}

// Allocator returns the allocator the vector stores its elements by
func (v *Vector[T]) Allocator() Allocator[T] {
	return v.alloc
}

// Reserve makes capacity at least n. Existing elements are relocated into a new block
func (v *Vector[T]) Reserve(n int) error {
	if n <= cap(v.data) {
		return nil
	}
	block, err := v.alloc.Allocate(n)
	if err != nil {
		return err
	}
	old := v.data
	relocate(block, old)
	v.data = block[:len(old)]
	v.alloc.Deallocate(old[:cap(old)], cap(old))
	return nil
}

// Append adds values to the end. On allocation failure the vector is unchanged
func (v *Vector[T]) Append(values ...T) error {
	need := len(v.data) + len(values)
	if need > cap(v.data) {
		if err := v.Reserve(max(need, 2*cap(v.data), minVectorCapacity)); err != nil {
			return err
		}
	}
	for _, value := range values {
		i := len(v.data)
		v.data = v.data[:i+1]
		v.alloc.Construct(&v.data[i], value)
	}
	return nil
}

// At panics if i is out of range
func (v *Vector[T]) At(i int) T {
	return v.data[i]
}

// Ptr returns the address of element i. Valid until the vector grows or is released
func (v *Vector[T]) Ptr(i int) *T {
	return &v.data[i]
}

// Set replaces element i
func (v *Vector[T]) Set(i int, value T) {
	v.alloc.Destroy(&v.data[i])
	v.alloc.Construct(&v.data[i], value)
}

// Pop removes the last element and returns it. Ownership of its content passes to the caller
func (v *Vector[T]) Pop() (T, bool) {
	var zero T
	if len(v.data) == 0 {
		return zero, false
	}
	i := len(v.data) - 1
	res := v.data[i]
	v.data[i] = zero
	v.data = v.data[:i]
	return res, true
}

// Slice returns a view of the elements. Valid until the vector grows or is released
func (v *Vector[T]) Slice() []T {
	return v.data
}

func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, value := range v.data {
			if !yield(i, value) {
				return
			}
		}
	}
}

func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.data {
			if !yield(value) {
				return
			}
		}
	}
}

// Clear destroys all elements, keeps the capacity
func (v *Vector[T]) Clear() {
	for i := range v.data {
		v.alloc.Destroy(&v.data[i])
	}
	v.data = v.data[:0]
}

// Release destroys all elements and returns the block to the pool. The vector stays usable and empty
func (v *Vector[T]) Release() {
	v.Clear()
	v.alloc.Deallocate(v.data[:cap(v.data)], cap(v.data))
	v.data = nil
}
