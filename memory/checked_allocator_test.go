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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAllocatorBalance(t *testing.T) {
	mem := NewCheckedAllocator(NewGoAllocator())

	buf1 := mem.Allocate(64)
	assert.Equal(t, 64, mem.CurrentAlloc())

	buf2 := mem.Allocate(128)
	assert.Equal(t, 192, mem.CurrentAlloc())

	buf2 = mem.Reallocate(256, buf2)
	assert.Equal(t, 320, mem.CurrentAlloc())

	mem.Free(buf1)
	mem.Free(buf2)
	assert.Zero(t, mem.CurrentAlloc())
	mem.AssertSize(t, 0)
}

func TestCheckedAllocatorScope(t *testing.T) {
	mem := NewCheckedAllocator(NewGoAllocator())
	outer := mem.Allocate(32)

	scope := NewCheckedAllocatorScope(mem)
	inner := mem.Allocate(16)
	mem.Free(inner)
	scope.CheckSize(t)

	mem.Free(outer)
	mem.AssertSize(t, 0)
}

// Reallocating the wrapper's own zero-length output must work like any other
// reallocation: no record exists for it, so there is nothing to move.
func TestCheckedAllocatorReallocZeroLengthBlock(t *testing.T) {
	mem := NewCheckedAllocator(NewGoAllocator())

	empty := mem.Allocate(0)
	require.NotNil(t, empty)
	assert.Zero(t, mem.CurrentAlloc())

	buf := mem.Reallocate(32, empty)
	require.NotNil(t, buf)
	assert.Equal(t, 32, mem.CurrentAlloc())

	mem.Free(buf)
	mem.AssertSize(t, 0)
}

func TestCheckedAllocatorFailedReallocKeepsRecord(t *testing.T) {
	flaky := &flakyAllocator{mem: NewGoAllocator(), budget: 1}
	mem := NewCheckedAllocator(flaky)

	buf := mem.Allocate(64)
	assert.Equal(t, 64, mem.CurrentAlloc())

	out := mem.Reallocate(128, buf)
	assert.Nil(t, out)
	assert.Equal(t, 64, mem.CurrentAlloc(), "failed request must not change accounting")

	mem.Free(buf)
	mem.AssertSize(t, 0)
}
