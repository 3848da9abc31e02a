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

// Package buffer provides a growable, exclusively owned array driven by an
// injected allocator.
//
// Buffer is the untyped engine: it tracks capacity and length in elements and
// takes the element size as a parameter on every operation, so a single
// implementation serves every element type. Of and Boxed are thin typed views
// over the same representation; they add type safety without re-implementing
// any of the mechanics.
//
// A buffer never allocates through global state: every operation that may
// touch storage takes the allocator capability explicitly, and the same
// allocator must be used for the whole life of one buffer. Element types may
// not have size zero.
package buffer

import (
	"math"
	"unsafe"

	"github.com/JohnCGriffin/overflow"
	"golang.org/x/xerrors"

	"github.com/chimlib/memcore/internal/debug"
	"github.com/chimlib/memcore/memory"
)

var (
	// ErrZeroCapacity is returned when a zero capacity is requested. A zero
	// capacity almost always indicates a bug in the caller, so it fails
	// rather than being rounded up.
	ErrZeroCapacity = xerrors.New("buffer: capacity must not be zero")

	// ErrCapacityOverflow is returned when capacity times element size does
	// not fit in an int, or when doubling the capacity would overflow.
	ErrCapacityOverflow = xerrors.New("buffer: capacity overflow")
)

// Buffer is the untyped growable array engine.
//
// The layout of this struct is a contract: every typed specialization in this
// package mirrors it field for field and reinterprets itself as a *Buffer.
type Buffer struct {
	cap  int
	len  int
	data []byte
}

// Len returns the number of elements currently held.
func (b *Buffer) Len() int { return b.len }

// Cap returns the capacity in elements.
func (b *Buffer) Cap() int { return b.cap }

// Init allocates storage for cap0 elements of elemSize bytes each and resets
// the length to zero. It does not release any storage the receiver may
// already own. Fails on zero capacity, on capacity overflow, or when the
// allocator cannot satisfy the request; on failure the receiver is left
// unchanged.
func (b *Buffer) Init(mem memory.Allocator, cap0, elemSize int) error {
	debug.Assert(elemSize > 0, "buffer: element size must be positive")
	if cap0 == 0 {
		return ErrZeroCapacity
	}
	size, ok := overflow.Mul(cap0, elemSize)
	if !ok || size < 0 {
		return ErrCapacityOverflow
	}
	data := mem.Allocate(size)
	if data == nil {
		return xerrors.Errorf("buffer: init: %w", memory.ErrOutOfMemory)
	}
	b.data = data
	b.cap = cap0
	b.len = 0
	return nil
}

// Deinit releases the storage and zeroes length and capacity. Objects the
// elements themselves own are not touched.
func (b *Buffer) Deinit(mem memory.Allocator) {
	b.cap = 0
	b.len = 0
	mem.Free(b.data)
	b.data = nil
}

// Push copies elemSize bytes from elem to the tail slot, doubling the
// capacity first when the buffer is full. Amortized O(1). On failure the
// buffer is left exactly as it was, including its storage pointer.
func (b *Buffer) Push(mem memory.Allocator, elem unsafe.Pointer, elemSize int) error {
	debug.Assert(b.cap != 0, "buffer: push on uninitialized buffer")
	if b.len == b.cap {
		if b.cap >= math.MaxInt/2 {
			return ErrCapacityOverflow
		}
		newCap := b.cap * 2
		size, ok := overflow.Mul(newCap, elemSize)
		if !ok || size < 0 {
			return ErrCapacityOverflow
		}
		data := mem.Reallocate(size, b.data)
		if data == nil {
			return xerrors.Errorf("buffer: push: %w", memory.ErrOutOfMemory)
		}
		b.data = data
		b.cap = newCap
	}
	copy(b.data[b.len*elemSize:(b.len+1)*elemSize], unsafe.Slice((*byte)(elem), elemSize))
	b.len++
	return nil
}

// Peek returns the address of the last element, or nil when empty. The
// address aliases internal storage: it is invalidated by the next mutating
// operation on the buffer.
func (b *Buffer) Peek(elemSize int) unsafe.Pointer {
	if b.len == 0 {
		return nil
	}
	return unsafe.Pointer(&b.data[(b.len-1)*elemSize])
}

// Pop removes the last element and returns the address of the slot it
// occupied, or nil when empty. The bytes stay physically present until
// overwritten, so the caller must copy anything it wants to keep before the
// next mutating operation.
func (b *Buffer) Pop(elemSize int) unsafe.Pointer {
	if b.len == 0 {
		return nil
	}
	b.len--
	return unsafe.Pointer(&b.data[b.len*elemSize])
}

// Resize reallocates the storage to hold exactly newCap elements. When newCap
// is below the current length, the length is truncated and the data beyond it
// is discarded. As with Init, a zero capacity fails. On failure the buffer is
// left unchanged.
func (b *Buffer) Resize(mem memory.Allocator, newCap, elemSize int) error {
	if newCap == 0 {
		return ErrZeroCapacity
	}
	size, ok := overflow.Mul(newCap, elemSize)
	if !ok || size < 0 {
		return ErrCapacityOverflow
	}
	data := mem.Reallocate(size, b.data)
	if data == nil {
		return xerrors.Errorf("buffer: resize: %w", memory.ErrOutOfMemory)
	}
	b.data = data
	b.cap = newCap
	if newCap < b.len {
		b.len = newCap
	}
	return nil
}
