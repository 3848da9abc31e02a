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

// Package tagptr packs a small integer into the low bits of a pointer.
//
// A pointer aligned to the platform's maximum fundamental alignment has its
// low arch.Current().TagBits bits clear, so those bits can carry a tag as
// long as they are stripped before any dereference. The packed word never
// leaves this package in raw form: Pointer stores only the combined bit
// pattern and exposes pack, unwrap and retag operations, so the alignment
// invariant is enforced at the type boundary.
//
// The packed word is an integer, not a pointer, as far as the garbage
// collector is concerned. Pack pointers into manually managed memory (such
// as mallocator blocks) or memory the caller otherwise keeps alive.
package tagptr

import (
	"unsafe"

	"github.com/chimlib/memcore/arch"
)

// Pointer is a tagged pointer: a single machine word interpreted two ways,
// as a pointer with its low tag bits cleared, or as the tag occupying
// exactly those bits. The zero value is a nil pointer with a zero tag.
type Pointer struct {
	bits uintptr
}

// Taggable reports whether p's address has all tag bits clear, i.e. whether
// it can carry a tag without losing pointer bits.
func Taggable(p unsafe.Pointer) bool {
	return uintptr(p)&bitsMask() == 0
}

// MaxTag returns the largest representable tag value.
func MaxTag() uintptr { return bitsMask() }

func bitsMask() uintptr {
	return (uintptr(1) << arch.Current().TagBits) - 1
}

// Pack combines p and tag. It panics when p is not taggable or tag does not
// fit the bit budget: both are contract violations, checked in every build
// mode because the failure otherwise surfaces as memory corruption far from
// its cause.
func Pack(p unsafe.Pointer, tag uintptr) Pointer {
	if !Taggable(p) {
		panic("tagptr: pointer is not sufficiently aligned for tagging")
	}
	return Pointer{bits: uintptr(p)}.WithTag(tag)
}

// Pointer strips the tag and returns the address. Every dereference must go
// through this; the packed form itself is never a valid address.
func (t Pointer) Pointer() unsafe.Pointer {
	return unsafe.Pointer(t.bits &^ bitsMask())
}

// Tag returns the tag bits.
func (t Pointer) Tag() uintptr {
	return t.bits & bitsMask()
}

// WithTag returns a copy with the tag replaced and the pointer bits
// untouched. Like Pack, it panics on an out-of-range tag.
func (t Pointer) WithTag(tag uintptr) Pointer {
	if tag > bitsMask() {
		panic("tagptr: tag does not fit in the available bits")
	}
	return Pointer{bits: t.bits&^bitsMask() | tag}
}
