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

// Package arch exposes the platform constants the rest of the module builds
// on: the maximum fundamental alignment, the number of pointer bits that
// alignment leaves free for tagging, the machine word width and the cache
// line size. Everything is computed exactly once at process start and is
// immutable afterwards.
package arch

import (
	"math/bits"
	"unsafe"

	"github.com/klauspost/cpuid/v2"
)

// Info holds the platform constants computed at startup.
type Info struct {
	// MaxAlign is the maximum fundamental alignment: every pointer
	// returned by the Go runtime, and by any well-behaved allocator, is a
	// multiple of this value. Always a power of two.
	MaxAlign int

	// TagBits is log2(MaxAlign): the number of low pointer bits guaranteed
	// to be zero on a maximally aligned address, and therefore the tag bit
	// budget of the tagptr package.
	TagBits int

	// WordBytes is the size of a machine word (uintptr) in bytes.
	WordBytes int

	// CacheLine is the detected first-level cache line size in bytes, or
	// 64 when detection is unavailable. Always a power of two.
	CacheLine int
}

// maxAlignProbe carries one field of every fundamental type with the largest
// alignment requirements. Its alignment is the platform's maximum fundamental
// alignment, the Go analogue of C's max_align_t.
type maxAlignProbe struct {
	a int64
	b float64
	c complex128
	d unsafe.Pointer
}

const fallbackCacheLine = 64

var current Info

func init() {
	maxAlign := int(unsafe.Alignof(maxAlignProbe{}))
	if maxAlign&(maxAlign-1) != 0 {
		panic("arch: maximum fundamental alignment is not a power of two")
	}

	line := cpuid.CPU.CacheLine
	if line <= 0 || line&(line-1) != 0 {
		line = fallbackCacheLine
	}

	current = Info{
		MaxAlign:  maxAlign,
		TagBits:   bits.TrailingZeros(uint(maxAlign)),
		WordBytes: int(unsafe.Sizeof(uintptr(0))),
		CacheLine: line,
	}
}

// Current returns the platform constants. The returned value is a copy; the
// underlying configuration never changes after init.
func Current() Info { return current }
