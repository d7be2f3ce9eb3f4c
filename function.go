/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import "unsafe"

// Wrap copies c into a block of the pool sized for C and returns the bound Function
// nil pool means DefaultPool() at the moment of the call
// e.g. Wrap[int, string](pool, myCallable{})
func Wrap[A, R any, C Callable[A, R]](pool IPool, c C) (*Function[A, R], error) {
	if pool == nil {
		pool = DefaultPool()
	}
	rec, err := newRecord[C, A, R](pool, c)
	if err != nil {
		return nil, err
	}
	return &Function[A, R]{pool: pool, rec: rec}, nil
}

// WrapFunc wraps an ordinary func. Closure state is shared between clones
// use Wrap with a value type implementing Callable when clones must not share state
func WrapFunc[A, R any](pool IPool, fn func(a A) R) (*Function[A, R], error) {
	return Wrap[A, R](pool, Func[A, R](fn))
}

// Wrap2 wraps a two-argument callable, arguments are passed as Pair. See Call2
func Wrap2[A, B, R any, C Callable2[A, B, R]](pool IPool, c C) (*Function[Pair[A, B], R], error) {
	return Wrap[Pair[A, B], R](pool, adapter2[C, A, B, R]{c: c})
}

// Call2 calls a Function made by Wrap2
func Call2[A, B, R any](f *Function[Pair[A, B], R], a A, b B) (R, error) {
	return f.Call(MakePair(a, b))
}

// Call invokes the wrapped callable. Returns ErrBadFunctionCall if f is empty
func (f *Function[A, R]) Call(a A) (R, error) {
	if f.rec == nil {
		var zero R
		return zero, ErrBadFunctionCall
	}
	return f.rec.invoke(a), nil
}

// Bound reports whether f holds a callable
func (f *Function[A, R]) Bound() bool {
	return f.rec != nil
}

// Clone returns an independent Function holding a copy of the wrapped callable in a fresh block of the same pool
// clone of an empty Function is empty
func (f *Function[A, R]) Clone() (*Function[A, R], error) {
	res := &Function[A, R]{pool: f.pool}
	if f.rec == nil {
		return res, nil
	}
	rec, err := f.rec.clone(f.pool)
	if err != nil {
		return nil, err
	}
	res.rec = rec
	return res, nil
}

// Assign releases the callable held by f and makes f hold a copy of the callable of src
// self-assignment is a no-op. If the copy can not be allocated f is left empty
func (f *Function[A, R]) Assign(src *Function[A, R]) error {
	if f == src {
		return nil
	}
	f.Release()
	f.pool = src.pool
	if src.rec == nil {
		return nil
	}
	rec, err := src.rec.clone(src.pool)
	if err != nil {
		return err
	}
	f.rec = rec
	return nil
}

// Release destroys the wrapped callable and returns its block to the pool. f becomes empty
// releasing an empty Function is a no-op
func (f *Function[A, R]) Release() {
	if f.rec == nil {
		return
	}
	f.rec.destroy(f.pool)
	f.rec = nil
}

// Target returns the pool-resident callable if f wraps a C
func Target[C, A, R any](f *Function[A, R]) (*C, bool) {
	if f.rec == nil {
		return nil, false
	}
	res, ok := f.rec.target().(*C)
	return res, ok
}

func (fn Func[A, R]) Call(a A) R {
	return fn(a)
}

func newRecord[C Callable[A, R], A, R any](pool IPool, c C) (record[A, R], error) {
	alloc := NewAllocator[boundRecord[C, A, R]](pool)
	block, err := alloc.Allocate(1)
	if err != nil {
		return nil, err
	}
	alloc.Construct(&block[0], boundRecord[C, A, R]{c: c})
	return &block[0], nil
}

func (r *boundRecord[C, A, R]) invoke(a A) R {
	return r.c.Call(a)
}

func (r *boundRecord[C, A, R]) clone(pool IPool) (record[A, R], error) {
	return newRecord[C, A, R](pool, r.c)
}

func (r *boundRecord[C, A, R]) destroy(pool IPool) {
	alloc := NewAllocator[boundRecord[C, A, R]](pool)
	alloc.Destroy(r)
	alloc.Deallocate(unsafe.Slice(r, 1), 1)
}

func (r *boundRecord[C, A, R]) target() any {
	if u, ok := any(&r.c).(interface{ unwrap() any }); ok {
		return u.unwrap()
	}
	return &r.c
}

func (a adapter2[C, A, B, R]) Call(p Pair[A, B]) R {
	return a.c.Call(p.First, p.Second)
}

func (a *adapter2[C, A, B, R]) unwrap() any {
	return &a.c
}
