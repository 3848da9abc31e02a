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
	"github.com/chimlib/memcore/arch"
)

// GoAllocator hands out Go-heap memory aligned to the cache line size.
// Go does not guarantee that make([]byte, n) is aligned beyond the maximum
// fundamental alignment, so blocks are over-allocated and shifted to the next
// boundary. Free is a no-op; the garbage collector reclaims blocks once the
// last slice into them is dropped, which also makes interior slices safe to
// pass back.
type GoAllocator struct{}

func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

func (a *GoAllocator) Allocate(size int) []byte {
	return a.AllocateAligned(size, arch.Current().CacheLine)
}

// AllocateAligned returns a zeroed block of size bytes whose address is a
// multiple of alignment, which must be an exact power of two. Returns nil on
// a bad alignment; never fails otherwise.
func (a *GoAllocator) AllocateAligned(size, alignment int) []byte {
	if !align.IsPowerOfTwo(alignment) || size < 0 {
		return nil
	}
	buf := make([]byte, size+alignment) // padding for the alignment shift
	addr := int(addressOf(buf))
	next := align.Up(addr, alignment)
	if addr != next {
		shift := next - addr
		return buf[shift : size+shift : size+shift]
	}
	return buf[:size:size]
}

func (a *GoAllocator) Reallocate(size int, b []byte) []byte {
	if b == nil {
		return a.Allocate(size)
	}
	if size == 0 {
		a.Free(b)
		return nil
	}
	if size == len(b) {
		return b
	}

	newBuf := a.Allocate(size)
	copy(newBuf, b)
	return newBuf
}

// ReallocateAligned resizes b while keeping the result aligned. Fresh growth
// always moves on the Go heap, so unlike NewAlignedAllocator there is no
// in-place cheap path to exploit.
func (a *GoAllocator) ReallocateAligned(size, alignment int, b []byte) []byte {
	if b == nil {
		return a.AllocateAligned(size, alignment)
	}
	if size == 0 {
		a.Free(b)
		return nil
	}
	if !align.IsPowerOfTwo(alignment) {
		return nil
	}

	newBuf := a.AllocateAligned(size, alignment)
	copy(newBuf, b)
	return newBuf
}

func (a *GoAllocator) Free(b []byte) {}

var (
	_ Allocator        = (*GoAllocator)(nil)
	_ AlignedAllocator = (*GoAllocator)(nil)
)
