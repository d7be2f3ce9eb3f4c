/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import "bytes"

// NewString creates a String with the content of s
func NewString(alloc Allocator[byte], s string) (*String, error) {
	res := &String{buf: Vector[byte]{alloc: alloc.pinned()}}
	if err := res.Append(s); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// Append adds s to the end. On allocation failure the string is unchanged
func (s *String) Append(str string) error {
	data := s.buf.data
	need := len(data) + len(str)
	if need > cap(data) {
		if err := s.buf.Reserve(max(need, 2*cap(data), minVectorCapacity)); err != nil {
			return err
		}
	}
	// fits the reserved block, append never reallocates here
	s.buf.data = append(s.buf.data, str...)
	return nil
}

func (s *String) AppendByte(b byte) error {
	return s.buf.Append(b)
}

func (s *String) Len() int {
	return s.buf.Len()
}

// String copies the content to the Go heap
func (s *String) String() string {
	return string(s.buf.data)
}

// Bytes returns a view of the content. Valid until the string grows or is released
func (s *String) Bytes() []byte {
	return s.buf.data
}

func (s *String) Equal(other *String) bool {
	return bytes.Equal(s.buf.data, other.buf.data)
}

func (s *String) EqualString(other string) bool {
	return string(s.buf.data) == other
}

func (s *String) Compare(other *String) int {
	return bytes.Compare(s.buf.data, other.buf.data)
}

// Clone creates a copy in a new block of the same pool
func (s *String) Clone() (*String, error) {
	return NewString(s.buf.alloc, s.String())
}

// Release returns the block to the pool. The string stays usable and empty
func (s *String) Release() {
	s.buf.Release()
}
