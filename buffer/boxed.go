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
)

// Boxed is a buffer that stores one level of indirection: its elements are
// pointers to T rather than inline T values, so the effective element size is
// always a single machine word. This allows holding elements of unknown or
// variable size behind a uniform container.
//
// The stored pointers live in allocator-owned bytes the garbage collector
// does not trace. The container therefore does not keep referents alive:
// callers must either hold their own references for the life of the buffer,
// or box pointers into manually managed memory such as a mallocator block.
type Boxed[T any] struct {
	cap  int
	len  int
	data []byte
}

var (
	_ [unsafe.Sizeof(Boxed[int64]{}) - unsafe.Sizeof(Buffer{})]struct{}
	_ [unsafe.Sizeof(Buffer{}) - unsafe.Sizeof(Boxed[int64]{})]struct{}
	_ [unsafe.Offsetof(Boxed[int64]{}.cap) - unsafe.Offsetof(Buffer{}.cap)]struct{}
	_ [unsafe.Offsetof(Boxed[int64]{}.len) - unsafe.Offsetof(Buffer{}.len)]struct{}
	_ [unsafe.Offsetof(Boxed[int64]{}.data) - unsafe.Offsetof(Buffer{}.data)]struct{}
)

const boxSize = int(unsafe.Sizeof(uintptr(0)))

func (b *Boxed[T]) raw() *Buffer { return (*Buffer)(unsafe.Pointer(b)) }

// Len returns the number of elements currently held.
func (b *Boxed[T]) Len() int { return b.len }

// Cap returns the capacity in elements.
func (b *Boxed[T]) Cap() int { return b.cap }

// Init allocates storage for cap0 pointer slots. See Buffer.Init.
func (b *Boxed[T]) Init(mem memory.Allocator, cap0 int) error {
	return b.raw().Init(mem, cap0, boxSize)
}

// Deinit releases the storage. Referents of the stored pointers are not
// touched.
func (b *Boxed[T]) Deinit(mem memory.Allocator) {
	b.raw().Deinit(mem)
}

// Push appends the pointer v. See Buffer.Push.
func (b *Boxed[T]) Push(mem memory.Allocator, v *T) error {
	return b.raw().Push(mem, unsafe.Pointer(&v), boxSize)
}

// Peek returns the last stored pointer, or false when empty.
func (b *Boxed[T]) Peek() (*T, bool) {
	p := b.raw().Peek(boxSize)
	if p == nil {
		return nil, false
	}
	return *(**T)(p), true
}

// Pop removes and returns the last stored pointer, or false when empty.
// Unlike the inline variants the returned value is the element itself, not a
// reference into the buffer, so it remains valid after further mutations.
func (b *Boxed[T]) Pop() (*T, bool) {
	p := b.raw().Pop(boxSize)
	if p == nil {
		return nil, false
	}
	return *(**T)(p), true
}

// Resize changes the capacity to newCap slots. See Buffer.Resize.
func (b *Boxed[T]) Resize(mem memory.Allocator, newCap int) error {
	return b.raw().Resize(mem, newCap, boxSize)
}
