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

package slice

import "unsafe"

// Boxed is a view over storage holding pointers to T rather than inline T
// values, so the effective element size is always a single machine word. The
// same ownership caveats as buffer.Boxed apply: the view does not keep
// referents alive for the garbage collector.
type Boxed[T any] struct {
	len  int
	data unsafe.Pointer
}

var (
	_ [unsafe.Sizeof(Boxed[int64]{}) - unsafe.Sizeof(Slice{})]struct{}
	_ [unsafe.Sizeof(Slice{}) - unsafe.Sizeof(Boxed[int64]{})]struct{}
	_ [unsafe.Offsetof(Boxed[int64]{}.len) - unsafe.Offsetof(Slice{}.len)]struct{}
	_ [unsafe.Offsetof(Boxed[int64]{}.data) - unsafe.Offsetof(Slice{}.data)]struct{}
)

const boxSize = int(unsafe.Sizeof(uintptr(0)))

// MakeBoxed constructs a boxed view over n pointer slots starting at p.
func MakeBoxed[T any](n int, p **T) Boxed[T] {
	return Boxed[T]{len: n, data: unsafe.Pointer(p)}
}

func (s *Boxed[T]) raw() *Slice { return (*Slice)(unsafe.Pointer(s)) }

// Len returns the number of elements in view.
func (s Boxed[T]) Len() int { return s.len }

// AddrOf returns a reference to the index-th pointer slot, or false when
// index is out of bounds.
func (s Boxed[T]) AddrOf(index int) (**T, bool) {
	p := s.raw().AddrOf(index, boxSize)
	if p == nil {
		return nil, false
	}
	return (**T)(p), true
}

// Advance drops up to n elements from the front of the view.
func (s *Boxed[T]) Advance(n int) {
	s.raw().Advance(n, boxSize)
}

// Shrink drops up to n elements from the back of the view.
func (s *Boxed[T]) Shrink(n int) {
	s.raw().Shrink(n)
}
