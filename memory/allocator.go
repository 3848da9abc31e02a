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

import "golang.org/x/xerrors"

// ErrOutOfMemory is reported by consumers of an Allocator (such as the buffer
// package) when a request returned nil.
var ErrOutOfMemory = xerrors.New("memory: allocation failed")

// Allocator is the capability through which all storage in this module is
// managed. It subsumes malloc, realloc and free.
//
// The contract, shared by every implementation:
//
//   - Allocate returns a block of exactly size bytes, or nil if the request
//     cannot be satisfied.
//   - Reallocate resizes b, possibly moving it. On success the returned block
//     holds the first min(size, len(b)) bytes of b and the passed slice must
//     no longer be used. On failure it returns nil and b remains valid and
//     unchanged. Reallocate(size, nil) allocates; Reallocate(0, b) releases b
//     and returns nil.
//   - Free releases b. Free(nil) is a no-op.
//
// Failure is always reported through a nil return, never by aborting, so
// callers can keep their receivers in the pre-call state.
type Allocator interface {
	Allocate(size int) []byte
	Reallocate(size int, b []byte) []byte
	Free(b []byte)
}

// AlignedAllocator is an Allocator whose blocks additionally satisfy a
// caller-supplied alignment. The alignment argument must be an exact power of
// two; requests with any other alignment fail without touching their input.
//
// The platform offers no aligned reallocation primitive, so
// ReallocateAligned is typically emulated; see NewAlignedAllocator.
type AlignedAllocator interface {
	AllocateAligned(size, alignment int) []byte
	ReallocateAligned(size, alignment int, b []byte) []byte
	Free(b []byte)
}

// DefaultAllocator is a default implementation of Allocator and can be used
// anywhere an Allocator is required.
//
// DefaultAllocator is safe to use from multiple goroutines.
var DefaultAllocator Allocator = NewGoAllocator()
