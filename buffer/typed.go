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

package buffer

import (
	"unsafe"

	"github.com/chimlib/memcore/memory"
	"github.com/chimlib/memcore/slice"
)

// Of is a buffer of inline elements of type T. It is a typed view over the
// untyped engine: every method reinterprets the receiver as a *Buffer and
// supplies the element size, so the mechanics live in one place.
type Of[T any] struct {
	cap  int
	len  int
	data []byte
}

// The reinterpretation above is only sound if every specialization shares the
// engine's exact size and field offsets. The field types do not mention T, so
// checking one instantiation checks them all.
var (
	_ [unsafe.Sizeof(Of[int64]{}) - unsafe.Sizeof(Buffer{})]struct{}
	_ [unsafe.Sizeof(Buffer{}) - unsafe.Sizeof(Of[int64]{})]struct{}
	_ [unsafe.Offsetof(Of[int64]{}.cap) - unsafe.Offsetof(Buffer{}.cap)]struct{}
	_ [unsafe.Offsetof(Of[int64]{}.len) - unsafe.Offsetof(Buffer{}.len)]struct{}
	_ [unsafe.Offsetof(Of[int64]{}.data) - unsafe.Offsetof(Buffer{}.data)]struct{}
)

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func (b *Of[T]) raw() *Buffer { return (*Buffer)(unsafe.Pointer(b)) }

// Len returns the number of elements currently held.
func (b *Of[T]) Len() int { return b.len }

// Cap returns the capacity in elements.
func (b *Of[T]) Cap() int { return b.cap }

// Init allocates storage for cap0 elements. See Buffer.Init.
func (b *Of[T]) Init(mem memory.Allocator, cap0 int) error {
	return b.raw().Init(mem, cap0, sizeOf[T]())
}

// Deinit releases the storage and zeroes length and capacity.
func (b *Of[T]) Deinit(mem memory.Allocator) {
	b.raw().Deinit(mem)
}

// Push appends a copy of v. See Buffer.Push.
func (b *Of[T]) Push(mem memory.Allocator, v T) error {
	return b.raw().Push(mem, unsafe.Pointer(&v), sizeOf[T]())
}

// Peek returns a reference to the last element, or false when empty. The
// reference aliases internal storage and is invalidated by the next mutating
// operation.
func (b *Of[T]) Peek() (*T, bool) {
	p := b.raw().Peek(sizeOf[T]())
	if p == nil {
		return nil, false
	}
	return (*T)(p), true
}

// Pop removes the last element and returns a reference to its slot, or false
// when empty. The reference is transient; see Buffer.Pop.
func (b *Of[T]) Pop() (*T, bool) {
	p := b.raw().Pop(sizeOf[T]())
	if p == nil {
		return nil, false
	}
	return (*T)(p), true
}

// Resize changes the capacity to newCap elements, truncating the length if
// needed. See Buffer.Resize.
func (b *Of[T]) Resize(mem memory.Allocator, newCap int) error {
	return b.raw().Resize(mem, newCap, sizeOf[T]())
}

// View borrows the live elements as a slice view. The view is invalidated by
// the next operation that reallocates the buffer (Push when full, Resize,
// Deinit).
func (b *Of[T]) View() slice.Of[T] {
	if b.len == 0 {
		return slice.MakeOf[T](0, nil)
	}
	return slice.MakeOf(b.len, (*T)(unsafe.Pointer(&b.data[0])))
}
