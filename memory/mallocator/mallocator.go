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

// Package mallocator provides an allocator backed by manually managed,
// off-Go-heap memory (modernc.org/memory). Its blocks are invisible to the
// garbage collector, which makes its pointers suitable for bit-packing in the
// tagptr package.
package mallocator

import (
	"runtime"
	"sync"
	"unsafe"

	libmem "modernc.org/memory"

	"github.com/chimlib/memcore/align"
	"github.com/chimlib/memcore/arch"
	"github.com/chimlib/memcore/memory"
)

// Mallocator allocates via a malloc-style manual allocator. Blocks are
// zero-initialized like Go heap memory. It implements both memory.Allocator
// and memory.AlignedAllocator.
//
// Every block is laid out as [padding][base address][user bytes]: the word
// immediately ahead of the user bytes records where the underlying allocation
// started, so Free can recover it regardless of the alignment shift. That is
// also why interior slices must not be passed back, only the exact slice a
// request returned.
type Mallocator struct {
	mu        sync.Mutex
	alloc     libmem.Allocator
	allocated int64
}

func NewMallocator() *Mallocator {
	m := &Mallocator{}
	runtime.SetFinalizer(m, func(m *Mallocator) { m.alloc.Close() })
	return m
}

const wordSize = int(unsafe.Sizeof(uintptr(0)))

func (m *Mallocator) allocate(size, alignment int) []byte {
	if size < 0 {
		panic("mallocator: negative size")
	}
	if !align.IsPowerOfTwo(alignment) {
		return nil
	}
	if alignment < wordSize {
		// the header word needs this much room anyway
		alignment = wordSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// One extra byte keeps the user address recoverable for zero-size blocks.
	total := size + alignment + wordSize + 1
	base, err := m.alloc.UintptrCalloc(total)
	if err != nil || base == 0 {
		return nil
	}
	user := align.Up(base+uintptr(wordSize), uintptr(alignment))
	*(*uintptr)(unsafe.Pointer(user - uintptr(wordSize))) = base

	m.allocated += int64(size)
	return unsafe.Slice((*byte)(unsafe.Pointer(user)), size+1)[: size : size+1]
}

func (m *Mallocator) Allocate(size int) []byte {
	return m.allocate(size, arch.Current().MaxAlign)
}

func (m *Mallocator) AllocateAligned(size, alignment int) []byte {
	return m.allocate(size, alignment)
}

func (m *Mallocator) Reallocate(size int, b []byte) []byte {
	return m.ReallocateAligned(size, arch.Current().MaxAlign, b)
}

// ReallocateAligned always moves: resizing in place would disturb the header
// word and the alignment shift of the underlying block.
func (m *Mallocator) ReallocateAligned(size, alignment int, b []byte) []byte {
	if b == nil {
		return m.allocate(size, alignment)
	}
	if size < 0 {
		panic("mallocator: negative size")
	}
	if size == 0 {
		m.Free(b)
		return nil
	}
	out := m.allocate(size, alignment)
	if out == nil {
		return nil
	}
	copy(out, b)
	m.Free(b)
	return out
}

func (m *Mallocator) Free(b []byte) {
	if b == nil {
		return
	}
	user := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	base := *(*uintptr)(unsafe.Pointer(user - uintptr(wordSize)))

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.alloc.UintptrFree(base); err != nil {
		panic("mallocator: " + err.Error())
	}
	m.allocated -= int64(len(b))
}

// AllocatedBytes returns the live user bytes handed out and not yet freed.
func (m *Mallocator) AllocatedBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocated
}

func (m *Mallocator) AssertSize(t memory.TestingT, sz int) {
	cur := m.AllocatedBytes()
	if int64(sz) != cur {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, cur)
	}
}

var (
	_ memory.Allocator        = (*Mallocator)(nil)
	_ memory.AlignedAllocator = (*Mallocator)(nil)
)
