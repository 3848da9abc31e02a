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

// Package memory provides the allocator capability the rest of the module is
// built on: a plain realloc-style Allocator, an alignment-aware variant, and
// tracking wrappers for tests.
package memory

// Set assigns the value c to every element of the slice buf.
func Set(buf []byte, c byte) {
	for i := range buf {
		buf[i] = c
	}
}
