// Copyright 2025 The memcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package slice provides a non-owning, bounds-checked view over contiguous
// storage.
//
// A slice never owns memory: it is carved out of storage some other owner
// allocated, often a buffer, and its validity is bounded by that storage's
// lifetime. Any operation that reallocates the underlying storage invalidates
// every outstanding view into it; this is caller discipline, not something
// the view can detect.
//
// Slice is the untyped engine and Of and Boxed are layout-identical typed
// views over it, exactly as in the buffer package.
package slice

import "unsafe"

// Slice is the untyped view engine: a length and a borrowed address.
type Slice struct {
	len  int
	data unsafe.Pointer
}

// Make constructs a view over n elements starting at p. The underlying
// memory is not validated in any way; that is the caller's responsibility.
func Make(n int, p unsafe.Pointer) Slice {
	return Slice{len: n, data: p}
}

// Len returns the number of elements in view.
func (s Slice) Len() int { return s.len }

// AddrOf returns the address of the index-th element, or nil when index is
// out of bounds. It never dereferences the underlying memory.
func (s Slice) AddrOf(index, elemSize int) unsafe.Pointer {
	if index < 0 || index >= s.len {
		return nil
	}
	return unsafe.Add(s.data, index*elemSize)
}

// Advance drops up to n elements from the front of the view, clamping n to
// the current length. Only the view's own fields change; the underlying
// storage is untouched.
func (s *Slice) Advance(n, elemSize int) {
	if n <= 0 {
		return
	}
	if n > s.len {
		n = s.len
	}
	s.len -= n
	s.data = unsafe.Add(s.data, n*elemSize)
}

// Shrink drops up to n elements from the back of the view, clamping n to the
// current length.
func (s *Slice) Shrink(n int) {
	if n <= 0 {
		return
	}
	if n > s.len {
		n = s.len
	}
	s.len -= n
}
