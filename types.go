/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"sync"
	"unsafe"
)

// Allocator brokers typed allocation requests to a pool.
// Zero value uses DefaultPool(). Allocators over the same pool are interchangeable
type Allocator[T any] struct {
	pool IPool
}

// Holder owns exactly one T living in pool memory
// Create by NewHolder() or NewHolderFunc(), destroy by Release()
type Holder[T any] struct {
	noCopy     noCopy
	alloc      Allocator[T]
	block      []T
	isReleased bool
}

// Function is a type-erased callable whose state lives in pool memory
// Zero value is empty. Copy by Clone() or Assign(), never by assignment
type Function[A, R any] struct {
	noCopy noCopy
	pool   IPool
	rec    record[A, R]
}

// record is the pool-resident callable: invoke, clone and destroy bound to the concrete callable type
type record[A, R any] interface {
	invoke(a A) R
	clone(pool IPool) (record[A, R], error)
	destroy(pool IPool)
	target() any
}

type boundRecord[C Callable[A, R], A, R any] struct {
	c C
}

type adapter2[C Callable2[A, B, R], A, B, R any] struct {
	c C
}

// Func adapts an ordinary func to Callable
// note: state captured by the closure is shared between clones, wrap a value type implementing Callable by Wrap() for independent copies
type Func[A, R any] func(a A) R

type implArena struct {
	mu         sync.Mutex
	capacity   uint64
	inUseBytes uint64
	blocks     map[uintptr]arenaBlock
}

type arenaBlock struct {
	size uintptr
	// keeps the block reachable until Free()
	mem unsafe.Pointer
}

// Vector is a growable contiguous sequence stored in one pool block
type Vector[T any] struct {
	alloc Allocator[T]
	data  []T
}

// String is a byte string stored in pool memory
type String struct {
	buf Vector[byte]
}

// List is a doubly linked list with pool-resident nodes
type List[T any] struct {
	nodes  Allocator[listNode[T]]
	values Allocator[T]
	head   *listNode[T]
	tail   *listNode[T]
	len    int
}

type listNode[T any] struct {
	prev  *listNode[T]
	next  *listNode[T]
	value T
}

type color uint8

const (
	red   color = 0
	black color = 1
)

// Map is an ordered map on a red-black tree with pool-resident nodes
type Map[K, V any] struct {
	nodes    Allocator[mapNode[K, V]]
	values   Allocator[V]
	compare  func(a, b K) int
	root     *mapNode[K, V]
	sentinel *mapNode[K, V]
	size     int
}

type mapNode[K, V any] struct {
	key    K
	value  V
	color  color
	left   *mapNode[K, V]
	right  *mapNode[K, V]
	parent *mapNode[K, V]
}

// Pair is an ordinary two-element tuple. Not pool backed
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is an ordinary three-element tuple. Not pool backed
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// MemoryReport is the free memory read-out of the default heap and a pool
type MemoryReport struct {
	HeapFree      uint64
	PoolFree      uint64
	PoolUnbounded bool
}

type stackFrame struct {
	fn   string
	file string
	line int
}

type stackTrace []stackFrame

// noCopy makes `go vet` report copies of owning values
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
