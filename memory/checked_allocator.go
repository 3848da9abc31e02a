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
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"
)

// CheckedAllocator wraps an Allocator and records every live block together
// with the call site that produced it, so tests can assert that all storage
// was returned.
type CheckedAllocator struct {
	mem Allocator
	sz  int64

	allocs sync.Map
}

func NewCheckedAllocator(mem Allocator) *CheckedAllocator {
	return &CheckedAllocator{mem: mem}
}

func (a *CheckedAllocator) CurrentAlloc() int { return int(atomic.LoadInt64(&a.sz)) }

func (a *CheckedAllocator) Allocate(size int) []byte {
	out := a.mem.Allocate(size)
	if out == nil || size == 0 {
		return out
	}
	atomic.AddInt64(&a.sz, int64(size))

	ptr := uintptr(unsafe.Pointer(&out[0]))
	if pc, _, l, ok := runtime.Caller(allocFrames); ok {
		a.allocs.Store(ptr, &dalloc{pc: pc, line: l, sz: size})
	}
	return out
}

// AllocateAligned lets the tracking wrapper participate in the aligned
// allocation path: blocks are obtained through the wrapped allocator's
// aligned primitive when it has one, so the address recorded here is the same
// one Free will later see.
func (a *CheckedAllocator) AllocateAligned(size, alignment int) []byte {
	var out []byte
	if aa, ok := a.mem.(alignedAllocFunc); ok {
		out = aa.AllocateAligned(size, alignment)
	} else {
		out = allocAlignedShift(a.mem, size, alignment)
	}
	if out == nil || size == 0 {
		return out
	}
	atomic.AddInt64(&a.sz, int64(size))

	ptr := uintptr(unsafe.Pointer(&out[0]))
	if pc, _, l, ok := runtime.Caller(allocFrames); ok {
		a.allocs.Store(ptr, &dalloc{pc: pc, line: l, sz: size})
	}
	return out
}

func (a *CheckedAllocator) Reallocate(size int, b []byte) []byte {
	if b == nil {
		return a.Allocate(size)
	}

	out := a.mem.Reallocate(size, b)
	if size != 0 && out == nil {
		// failed request: b is still live, keep its record
		return nil
	}
	atomic.AddInt64(&a.sz, int64(size-len(b)))
	// zero-length blocks have no address and no record, same as in Free
	if len(b) != 0 {
		a.allocs.Delete(uintptr(unsafe.Pointer(&b[0])))
	}
	if size == 0 {
		return out
	}

	newptr := uintptr(unsafe.Pointer(&out[0]))
	if pc, _, l, ok := runtime.Caller(reallocFrames); ok {
		a.allocs.Store(newptr, &dalloc{pc: pc, line: l, sz: size})
	}
	return out
}

func (a *CheckedAllocator) Free(b []byte) {
	defer a.mem.Free(b)

	if len(b) == 0 {
		return
	}
	atomic.AddInt64(&a.sz, int64(len(b)*-1))

	ptr := uintptr(unsafe.Pointer(&b[0]))
	a.allocs.Delete(ptr)
}

// typically the allocations are happening through the buffer package, not by
// consumers calling allocate/reallocate directly. As a result, we want to skip
// the caller frames of the inner workings of the buffer in order to find the
// caller that actually triggered the allocation via a call to Push/Resize/etc.
const (
	defAllocFrames   = 4
	defReallocFrames = 3
)

// Use the environment variables MEMCORE_CHECKED_ALLOC_FRAMES and
// MEMCORE_CHECKED_REALLOC_FRAMES to control how many frames up it checks when
// storing the caller for allocations/reallocs when using this to find leaks.
var allocFrames, reallocFrames int = defAllocFrames, defReallocFrames

func init() {
	if val, ok := os.LookupEnv("MEMCORE_CHECKED_ALLOC_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			allocFrames = f
		}
	}

	if val, ok := os.LookupEnv("MEMCORE_CHECKED_REALLOC_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			reallocFrames = f
		}
	}
}

type dalloc struct {
	pc   uintptr
	line int
	sz   int
}

// TestingT is the subset of testing.TB the tracking helpers report through.
type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

func (a *CheckedAllocator) AssertSize(t TestingT, sz int) {
	a.allocs.Range(func(_, value interface{}) bool {
		info := value.(*dalloc)
		f := runtime.FuncForPC(info.pc)
		t.Errorf("LEAK of %d bytes FROM %s line %d\n", info.sz, f.Name(), info.line)
		return true
	})

	if int(atomic.LoadInt64(&a.sz)) != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, a.sz)
	}
}

// CheckedAllocatorScope snapshots the live byte count so a sub-section of a
// test can assert it released everything it allocated.
type CheckedAllocatorScope struct {
	alloc *CheckedAllocator
	sz    int
}

func NewCheckedAllocatorScope(alloc *CheckedAllocator) *CheckedAllocatorScope {
	sz := atomic.LoadInt64(&alloc.sz)
	return &CheckedAllocatorScope{alloc: alloc, sz: int(sz)}
}

func (c *CheckedAllocatorScope) CheckSize(t TestingT) {
	sz := int(atomic.LoadInt64(&c.alloc.sz))
	if c.sz != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", c.sz, sz)
	}
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
)
