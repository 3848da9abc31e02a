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

package memory

import (
	"github.com/chimlib/memcore/align"
	"github.com/chimlib/memcore/internal/debug"
)

// alignedFallback emulates an aligned reallocation on top of an Allocator
// that only offers aligned allocation and plain reallocation.
type alignedFallback struct {
	mem Allocator
}

// NewAlignedAllocator wraps mem in an AlignedAllocator.
//
// When mem itself provides AllocateAligned (as GoAllocator and Mallocator
// do), fresh aligned blocks come from it directly. Otherwise they are
// obtained by over-allocating from mem and shifting to the next boundary,
// which requires mem to tolerate interior slices in Reallocate and Free;
// Go-heap allocators do.
//
// ReallocateAligned is emulated: the block is plainly reallocated, and the
// copy into a fresh aligned block is only paid when the reallocation result
// does not already satisfy the requested alignment.
func NewAlignedAllocator(mem Allocator) AlignedAllocator {
	return &alignedFallback{mem: mem}
}

type alignedAllocFunc interface {
	AllocateAligned(size, alignment int) []byte
}

func (a *alignedFallback) AllocateAligned(size, alignment int) []byte {
	if !align.IsPowerOfTwo(alignment) || size < 0 {
		return nil
	}
	if aa, ok := a.mem.(alignedAllocFunc); ok {
		return aa.AllocateAligned(size, alignment)
	}
	return allocAlignedShift(a.mem, size, alignment)
}

// ReallocateAligned grows or shrinks b to size bytes at the requested
// alignment.
//
// A fresh aligned block is reserved before the original is touched: if the
// reservation fails the caller still holds b, valid and unchanged, matching
// the plain Reallocate failure contract. The plain reallocation that follows
// must itself be validated before its address is tested — a nil result is
// indistinguishable from a zero, "aligned" address otherwise, and would
// silently lose the payload under allocation pressure.
func (a *alignedFallback) ReallocateAligned(size, alignment int, b []byte) []byte {
	if b == nil {
		return a.AllocateAligned(size, alignment)
	}
	if size == 0 {
		a.mem.Free(b)
		return nil
	}
	if !align.IsPowerOfTwo(alignment) {
		return nil
	}

	reserve := a.AllocateAligned(size, alignment)
	if reserve == nil {
		return nil
	}

	// Reallocating first is also what guarantees there are size valid bytes
	// to copy out of: the original block may be smaller than size.
	attempt := a.mem.Reallocate(size, b)
	if attempt == nil {
		a.mem.Free(reserve)
		return nil
	}
	if blockAligned(attempt, alignment) {
		a.mem.Free(reserve)
		return attempt
	}

	debug.Log("memory: aligned reallocate: result misaligned, copying into reservation")
	copy(reserve, attempt[:size])
	a.mem.Free(attempt)
	return reserve
}

func (a *alignedFallback) Free(b []byte) { a.mem.Free(b) }

var _ AlignedAllocator = (*alignedFallback)(nil)
