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

package tagptr_test

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimlib/memcore/arch"
	"github.com/chimlib/memcore/memory/mallocator"
	"github.com/chimlib/memcore/tagptr"
)

// Pack/unwrap must be bit-exact for every representable tag on a maximally
// aligned pointer. The pointers come from manually managed memory, the
// intended habitat of tagged pointers.
func TestPackRoundtrip(t *testing.T) {
	mem := mallocator.NewMallocator()
	buf := mem.Allocate(64)
	defer mem.Free(buf)

	p := unsafe.Pointer(&buf[0])
	require.True(t, tagptr.Taggable(p), "mallocator blocks satisfy the maximum fundamental alignment")

	for tag := uintptr(0); tag <= tagptr.MaxTag(); tag++ {
		t.Run(fmt.Sprintf("tag%d", tag), func(t *testing.T) {
			tp := tagptr.Pack(p, tag)
			assert.Equal(t, p, tp.Pointer())
			assert.Equal(t, tag, tp.Tag())
		})
	}
}

func TestWithTag(t *testing.T) {
	mem := mallocator.NewMallocator()
	buf := mem.Allocate(16)
	defer mem.Free(buf)
	p := unsafe.Pointer(&buf[0])

	tp := tagptr.Pack(p, 1)
	retagged := tp.WithTag(tagptr.MaxTag())

	assert.Equal(t, p, retagged.Pointer(), "retag leaves the pointer bits untouched")
	assert.Equal(t, tagptr.MaxTag(), retagged.Tag())
	assert.Equal(t, uintptr(1), tp.Tag(), "original value is unchanged")
}

func TestTaggable(t *testing.T) {
	info := arch.Current()
	mem := mallocator.NewMallocator()
	buf := mem.Allocate(info.MaxAlign * 2)
	defer mem.Free(buf)

	assert.True(t, tagptr.Taggable(unsafe.Pointer(&buf[0])))
	if info.TagBits > 0 {
		assert.False(t, tagptr.Taggable(unsafe.Pointer(&buf[1])))
	}
}

func TestMaxTag(t *testing.T) {
	info := arch.Current()
	assert.Equal(t, uintptr(1)<<info.TagBits-1, tagptr.MaxTag())
}

func TestPackContractViolations(t *testing.T) {
	mem := mallocator.NewMallocator()
	buf := mem.Allocate(16)
	defer mem.Free(buf)
	p := unsafe.Pointer(&buf[0])

	if arch.Current().TagBits > 0 {
		assert.Panics(t, func() {
			tagptr.Pack(unsafe.Pointer(&buf[1]), 0)
		}, "untaggable pointer")
	}

	assert.Panics(t, func() {
		tagptr.Pack(p, tagptr.MaxTag()+1)
	}, "tag out of range")

	assert.Panics(t, func() {
		tagptr.Pack(p, 0).WithTag(tagptr.MaxTag() + 1)
	}, "retag out of range")
}

func TestZeroValue(t *testing.T) {
	var tp tagptr.Pointer
	assert.Nil(t, tp.Pointer())
	assert.Zero(t, tp.Tag())
}
