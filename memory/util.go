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
	"unsafe"

	"github.com/chimlib/memcore/align"
)

func addressOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// blockAligned reports whether the first byte of b sits on a multiple of
// alignment. An empty block has no address and is considered unaligned.
func blockAligned(b []byte, alignment int) bool {
	if len(b) == 0 {
		return false
	}
	return align.IsAligned(addressOf(b), uintptr(alignment))
}

// allocAlignedShift obtains an aligned block from an allocator without an
// aligned primitive by over-allocating and shifting to the next boundary.
// The resulting slice points into the interior of the underlying block, so
// mem must tolerate interior slices in Reallocate and Free; Go-heap
// allocators do.
func allocAlignedShift(mem Allocator, size, alignment int) []byte {
	if !align.IsPowerOfTwo(alignment) || size < 0 {
		return nil
	}
	buf := mem.Allocate(size + alignment)
	if buf == nil {
		return nil
	}
	shift := align.Up(addressOf(buf), uintptr(alignment)) - addressOf(buf)
	return buf[shift : uintptr(size)+shift : uintptr(size)+shift]
}
