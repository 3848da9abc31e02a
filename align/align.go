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

// Package align provides power-of-two alignment arithmetic for sizes and
// addresses.
package align

import (
	"golang.org/x/exp/constraints"

	"github.com/chimlib/memcore/internal/debug"
)

// Integer is the set of types alignment arithmetic applies to.
type Integer interface {
	constraints.Integer
}

// IsPowerOfTwo reports whether v is an exact power of two. Zero and negative
// values are not powers of two.
func IsPowerOfTwo[T Integer](v T) bool {
	return v > 0 && v&(v-1) == 0
}

// Up rounds x up to the nearest multiple of pow2.
//
// pow2 must be an exact power of two and x must be non-negative; the result
// is unspecified otherwise.
func Up[T Integer](x, pow2 T) T {
	debug.Assert(IsPowerOfTwo(pow2), "align: Up: alignment is not a power of two")
	mask := pow2 - 1
	return (x + mask) &^ mask
}

// Down rounds x down to the nearest multiple of pow2.
//
// pow2 must be an exact power of two and x must be non-negative; the result
// is unspecified otherwise.
func Down[T Integer](x, pow2 T) T {
	debug.Assert(IsPowerOfTwo(pow2), "align: Down: alignment is not a power of two")
	return x &^ (pow2 - 1)
}

// IsAligned reports whether x is a multiple of pow2.
//
// pow2 must be an exact power of two.
func IsAligned[T Integer](x, pow2 T) bool {
	debug.Assert(IsPowerOfTwo(pow2), "align: IsAligned: alignment is not a power of two")
	return x&(pow2-1) == 0
}
