/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"iter"
	"unsafe"
)

// NewList creates a List holding values. Nodes are allocated by alloc rebound to the node type
func NewList[T any](alloc Allocator[T], values ...T) (*List[T], error) {
	alloc = alloc.pinned()
	res := &List[T]{
		nodes:  Rebind[listNode[T]](alloc),
		values: alloc,
	}
	for _, value := range values {
		if err := res.PushBack(value); err != nil {
			res.Release()
			return nil, err
		}
	}
	return res, nil
}

func (l *List[T]) Len() int {
	return l.len
}

func (l *List[T]) newNode(value T) (*listNode[T], error) {
	block, err := l.nodes.Allocate(1)
	if err != nil {
		return nil, err
	}
	n := &block[0]
	l.nodes.Construct(n, listNode[T]{})
	l.values.Construct(&n.value, value)
	return n, nil
}

// freeNode returns the node block to the pool, the value is destroyed only if destroyValue
func (l *List[T]) freeNode(n *listNode[T], destroyValue bool) {
	if destroyValue {
		l.values.Destroy(&n.value)
	}
	l.nodes.Destroy(n)
	l.nodes.Deallocate(unsafe.Slice(n, 1), 1)
}

func (l *List[T]) PushBack(value T) error {
	n, err := l.newNode(value)
	if err != nil {
		return err
	}
	n.prev = l.tail
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.len++
	return nil
}

func (l *List[T]) PushFront(value T) error {
	n, err := l.newNode(value)
	if err != nil {
		return err
	}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return nil
}

func (l *List[T]) Front() (T, bool) {
	if l.head == nil {
		var zero T
		return zero, false
	}
	return l.head.value, true
}

func (l *List[T]) Back() (T, bool) {
	if l.tail == nil {
		var zero T
		return zero, false
	}
	return l.tail.value, true
}

// PopFront removes the first element and returns it. Ownership of its content passes to the caller
func (l *List[T]) PopFront() (T, bool) {
	n := l.head
	if n == nil {
		var zero T
		return zero, false
	}
	l.unlink(n)
	res := n.value
	l.freeNode(n, false)
	return res, true
}

// PopBack removes the last element and returns it. Ownership of its content passes to the caller
func (l *List[T]) PopBack() (T, bool) {
	n := l.tail
	if n == nil {
		var zero T
		return zero, false
	}
	l.unlink(n)
	res := n.value
	l.freeNode(n, false)
	return res, true
}

func (l *List[T]) unlink(n *listNode[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.len--
}

func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.tail; n != nil; n = n.prev {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Release destroys all elements and returns all nodes to the pool. The list stays usable and empty
func (l *List[T]) Release() {
	for n := l.head; n != nil; {
		next := n.next
		l.freeNode(n, true)
		n = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}
