/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"cmp"
	"iter"
	"unsafe"
)

// NewMap creates an ordered map. alloc is parameterized over the key-value pair
// and rebound to the tree node type
func NewMap[K cmp.Ordered, V any](alloc Allocator[Pair[K, V]]) (*Map[K, V], error) {
	return NewMapFunc[K, V](alloc, cmp.Compare[K])
}

// NewMapFunc creates a map ordered by compare
func NewMapFunc[K, V any](alloc Allocator[Pair[K, V]], compare func(a, b K) int) (*Map[K, V], error) {
	alloc = alloc.pinned()
	res := &Map[K, V]{
		nodes:   Rebind[mapNode[K, V]](alloc),
		values:  Rebind[V](alloc),
		compare: compare,
	}
	block, err := res.nodes.Allocate(1)
	if err != nil {
		return nil, err
	}
	res.sentinel = &block[0]
	res.nodes.Construct(res.sentinel, mapNode[K, V]{color: black})
	res.root = res.sentinel
	return res, nil
}

func (m *Map[K, V]) Len() int {
	return m.size
}

// Set inserts the key or replaces its value
func (m *Map[K, V]) Set(key K, value V) error {
	y := m.sentinel
	x := m.root
	for x != m.sentinel {
		y = x
		c := m.compare(key, x.key)
		switch {
		case c < 0:
			x = x.left
		case c > 0:
			x = x.right
		default:
			m.values.Destroy(&x.value)
			m.values.Construct(&x.value, value)
			return nil
		}
	}

	block, err := m.nodes.Allocate(1)
	if err != nil {
		return err
	}
	z := &block[0]
	m.nodes.Construct(z, mapNode[K, V]{
		key:    key,
		color:  red,
		left:   m.sentinel,
		right:  m.sentinel,
		parent: y,
	})
	m.values.Construct(&z.value, value)

	if y == m.sentinel {
		m.root = z
	} else if m.compare(key, y.key) < 0 {
		y.left = z
	} else {
		y.right = z
	}
	m.insertFixup(z)
	m.size++
	return nil
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	n := m.search(key)
	if n == m.sentinel {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Ptr returns the address of the value stored for key, nil if absent
func (m *Map[K, V]) Ptr(key K) *V {
	n := m.search(key)
	if n == m.sentinel {
		return nil
	}
	return &n.value
}

func (m *Map[K, V]) Has(key K) bool {
	return m.search(key) != m.sentinel
}

// Delete removes the key and destroys its value. Returns false if absent
func (m *Map[K, V]) Delete(key K) bool {
	z := m.search(key)
	if z == m.sentinel {
		return false
	}
	m.deleteNode(z)
	m.size--
	m.freeNode(z)
	return true
}

func (m *Map[K, V]) Min() (K, V, bool) {
	n := m.minNode(m.root)
	if n == m.sentinel {
		var k K
		var v V
		return k, v, false
	}
	return n.key, n.value, true
}

func (m *Map[K, V]) Max() (K, V, bool) {
	n := m.maxNode(m.root)
	if n == m.sentinel {
		var k K
		var v V
		return k, v, false
	}
	return n.key, n.value, true
}

// All iterates in ascending key order
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.minNode(m.root); n != m.sentinel; n = m.next(n) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Backward iterates in descending key order
func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.maxNode(m.root); n != m.sentinel; n = m.prev(n) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Release destroys all entries and returns all nodes, the sentinel included, to the pool
// the map must not be used afterwards
func (m *Map[K, V]) Release() {
	if m.sentinel == nil {
		return
	}
	m.freeSubtree(m.root)
	sentinel := m.sentinel
	m.nodes.Destroy(sentinel)
	m.nodes.Deallocate(unsafe.Slice(sentinel, 1), 1)
	m.root = nil
	m.sentinel = nil
	m.size = 0
}

/******************** Internal helpers ********************/

func (m *Map[K, V]) freeNode(n *mapNode[K, V]) {
	m.values.Destroy(&n.value)
	m.nodes.Destroy(n)
	m.nodes.Deallocate(unsafe.Slice(n, 1), 1)
}

func (m *Map[K, V]) freeSubtree(n *mapNode[K, V]) {
	if n == m.sentinel {
		return
	}
	m.freeSubtree(n.left)
	m.freeSubtree(n.right)
	m.freeNode(n)
}

func (m *Map[K, V]) search(key K) *mapNode[K, V] {
	n := m.root
	for n != m.sentinel {
		c := m.compare(key, n.key)
		switch {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n
		}
	}
	return m.sentinel
}

func (m *Map[K, V]) minNode(n *mapNode[K, V]) *mapNode[K, V] {
	if n == m.sentinel {
		return m.sentinel
	}
	for n.left != m.sentinel {
		n = n.left
	}
	return n
}

func (m *Map[K, V]) maxNode(n *mapNode[K, V]) *mapNode[K, V] {
	if n == m.sentinel {
		return m.sentinel
	}
	for n.right != m.sentinel {
		n = n.right
	}
	return n
}

func (m *Map[K, V]) next(n *mapNode[K, V]) *mapNode[K, V] {
	if n.right != m.sentinel {
		return m.minNode(n.right)
	}
	p := n.parent
	for p != m.sentinel && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (m *Map[K, V]) prev(n *mapNode[K, V]) *mapNode[K, V] {
	if n.left != m.sentinel {
		return m.maxNode(n.left)
	}
	p := n.parent
	for p != m.sentinel && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (m *Map[K, V]) leftRotate(x *mapNode[K, V]) {
	y := x.right
	x.right = y.left
	if y.left != m.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == m.sentinel {
		m.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (m *Map[K, V]) rightRotate(y *mapNode[K, V]) {
	x := y.left
	y.left = x.right
	if x.right != m.sentinel {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == m.sentinel {
		m.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

func (m *Map[K, V]) insertFixup(z *mapNode[K, V]) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					m.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				m.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					m.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				m.leftRotate(z.parent.parent)
			}
		}
	}
	m.root.color = black
}

func (m *Map[K, V]) transplant(u, v *mapNode[K, V]) {
	if u.parent == m.sentinel {
		m.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (m *Map[K, V]) deleteNode(z *mapNode[K, V]) {
	y := z
	yOrigColor := y.color
	var x *mapNode[K, V]

	if z.left == m.sentinel {
		x = z.right
		m.transplant(z, z.right)
	} else if z.right == m.sentinel {
		x = z.left
		m.transplant(z, z.left)
	} else {
		y = m.minNode(z.right)
		yOrigColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			m.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		m.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOrigColor == black {
		m.deleteFixup(x)
	}
	// the sentinel parent may point at z now
	m.sentinel.parent = m.sentinel
}

func (m *Map[K, V]) deleteFixup(x *mapNode[K, V]) {
	for x != m.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				m.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					m.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				m.leftRotate(x.parent)
				x = m.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				m.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					m.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				m.rightRotate(x.parent)
				x = m.root
			}
		}
	}
	x.color = black
}
