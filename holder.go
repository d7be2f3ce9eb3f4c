/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

// NewHolder allocates one T from the pool and constructs it as a copy of value
// no Holder exists if allocation fails
func NewHolder[T any](alloc Allocator[T], value T) (*Holder[T], error) {
	alloc = alloc.pinned()
	block, err := alloc.Allocate(1)
	if err != nil {
		return nil, err
	}
	alloc.Construct(&block[0], value)
	return &Holder[T]{alloc: alloc, block: block}, nil
}

// NewHolderFunc allocates one T from the pool and constructs it in place by ctor
// ctor receives zeroed storage. If ctor fails the block is released and the error is returned
func NewHolderFunc[T any](alloc Allocator[T], ctor func(obj *T) error) (*Holder[T], error) {
	alloc = alloc.pinned()
	block, err := alloc.Allocate(1)
	if err != nil {
		return nil, err
	}
	obj := &block[0]
	var zero T
	*obj = zero
	if err := ctor(obj); err != nil {
		*obj = zero
		alloc.Deallocate(block, 1)
		return nil, err
	}
	if initer, ok := any(obj).(interface{ Init() }); ok {
		initer.Init()
	}
	return &Holder[T]{alloc: alloc, block: block}, nil
}

// Get returns the owned object. Fields and methods of T are reachable through it
// panics if released
func (h *Holder[T]) Get() *T {
	if h.isReleased {
		panic("holder is released")
	}
	return &h.block[0]
}

// Release destroys the object and returns its block to the pool
// panics if released already
func (h *Holder[T]) Release() {
	if h.isReleased {
		panic("already released")
	}
	h.alloc.Destroy(&h.block[0])
	h.alloc.Deallocate(h.block, 1)
	h.block = nil
	h.isReleased = true
}

func (h *Holder[T]) IsReleased() bool {
	return h.isReleased
}

// Clone constructs a new Holder over the same pool holding a copy of the object
// the copy is made by Clone() if T implements Cloner[T], by assignment otherwise
func (h *Holder[T]) Clone() (*Holder[T], error) {
	obj := h.Get()
	if cloner, ok := any(obj).(Cloner[T]); ok {
		return NewHolder(h.alloc, cloner.Clone())
	}
	return NewHolder(h.alloc, *obj)
}

// Move transfers the object to a new Holder without touching the pool. h becomes released
func (h *Holder[T]) Move() *Holder[T] {
	if h.isReleased {
		panic("holder is released")
	}
	res := &Holder[T]{alloc: h.alloc, block: h.block}
	h.block = nil
	h.isReleased = true
	return res
}
