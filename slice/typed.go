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

// Of is a view over inline elements of type T, reinterpreting itself as the
// untyped engine for all mechanics.
type Of[T any] struct {
	len  int
	data unsafe.Pointer
}

// The reinterpretation is only sound if every specialization shares the
// engine's exact size and field offsets. The field types do not mention T, so
// checking one instantiation checks them all.
var (
	_ [unsafe.Sizeof(Of[int64]{}) - unsafe.Sizeof(Slice{})]struct{}
	_ [unsafe.Sizeof(Slice{}) - unsafe.Sizeof(Of[int64]{})]struct{}
	_ [unsafe.Offsetof(Of[int64]{}.len) - unsafe.Offsetof(Slice{}.len)]struct{}
	_ [unsafe.Offsetof(Of[int64]{}.data) - unsafe.Offsetof(Slice{}.data)]struct{}
)

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// MakeOf constructs a typed view over n elements starting at p.
func MakeOf[T any](n int, p *T) Of[T] {
	return Of[T]{len: n, data: unsafe.Pointer(p)}
}

func (s *Of[T]) raw() *Slice { return (*Slice)(unsafe.Pointer(s)) }

// Len returns the number of elements in view.
func (s Of[T]) Len() int { return s.len }

// AddrOf returns a reference to the index-th element, or false when index is
// out of bounds.
func (s Of[T]) AddrOf(index int) (*T, bool) {
	p := s.raw().AddrOf(index, sizeOf[T]())
	if p == nil {
		return nil, false
	}
	return (*T)(p), true
}

// Advance drops up to n elements from the front of the view.
func (s *Of[T]) Advance(n int) {
	s.raw().Advance(n, sizeOf[T]())
}

// Shrink drops up to n elements from the back of the view.
func (s *Of[T]) Shrink(n int) {
	s.raw().Shrink(n)
}
