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

package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimlib/memcore/buffer"
	"github.com/chimlib/memcore/memory"
)

// limitAllocator fails every request once its budget of successful
// allocations is spent.
type limitAllocator struct {
	mem    memory.Allocator
	budget int
}

func (a *limitAllocator) Allocate(size int) []byte {
	if a.budget <= 0 {
		return nil
	}
	a.budget--
	return a.mem.Allocate(size)
}

func (a *limitAllocator) Reallocate(size int, b []byte) []byte {
	if size != 0 && a.budget <= 0 {
		return nil
	}
	if size != 0 {
		a.budget--
	}
	return a.mem.Reallocate(size, b)
}

func (a *limitAllocator) Free(b []byte) { a.mem.Free(b) }

// Initialize with capacity 4, push five 4-byte values: the fifth push doubles
// the capacity to 8 and peek sees the last value.
func TestPushGrowth(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var buf buffer.Of[uint32]
	require.NoError(t, buf.Init(mem, 4))
	defer buf.Deinit(mem)

	for _, v := range []uint32{1, 2, 3, 4} {
		require.NoError(t, buf.Push(mem, v))
	}
	assert.Equal(t, 4, buf.Cap())

	require.NoError(t, buf.Push(mem, 5))
	assert.Equal(t, 8, buf.Cap())
	assert.Equal(t, 5, buf.Len())

	top, ok := buf.Peek()
	require.True(t, ok)
	assert.Equal(t, uint32(5), *top)
}

func TestPushPopRoundtrip(t *testing.T) {
	mem := memory.DefaultAllocator

	var buf buffer.Of[int64]
	require.NoError(t, buf.Init(mem, 2))
	defer buf.Deinit(mem)

	require.NoError(t, buf.Push(mem, 7))
	lenBefore := buf.Len()
	require.NoError(t, buf.Push(mem, 42))

	v, ok := buf.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(42), *v)
	assert.Equal(t, lenBefore, buf.Len())

	v, ok = buf.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(7), *v)

	_, ok = buf.Pop()
	assert.False(t, ok, "pop on empty buffer")
	_, ok = buf.Peek()
	assert.False(t, ok, "peek on empty buffer")
}

func TestPushedValuesRetrievable(t *testing.T) {
	mem := memory.DefaultAllocator

	var buf buffer.Of[uint16]
	require.NoError(t, buf.Init(mem, 1))
	defer buf.Deinit(mem)

	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, buf.Push(mem, uint16(i)))
	}
	assert.Equal(t, n, buf.Len())

	view := buf.View()
	for i := 0; i < n; i++ {
		p, ok := view.AddrOf(i)
		require.True(t, ok)
		assert.Equal(t, uint16(i), *p)
	}
}

func TestResizeTruncates(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var buf buffer.Of[uint32]
	require.NoError(t, buf.Init(mem, 8))
	defer buf.Deinit(mem)

	for i := uint32(0); i < 6; i++ {
		require.NoError(t, buf.Push(mem, i))
	}

	require.NoError(t, buf.Resize(mem, 3))
	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, 3, buf.Cap())

	// a subsequent push appends at the truncation point
	require.NoError(t, buf.Push(mem, 99))
	assert.Equal(t, 4, buf.Len())
	v, ok := buf.Peek()
	require.True(t, ok)
	assert.Equal(t, uint32(99), *v)

	p, ok := buf.View().AddrOf(3)
	require.True(t, ok)
	assert.Equal(t, uint32(99), *p)
}

func TestInitErrors(t *testing.T) {
	mem := memory.DefaultAllocator

	var buf buffer.Of[uint64]
	assert.ErrorIs(t, buf.Init(mem, 0), buffer.ErrZeroCapacity)

	// capacity * element size must not overflow
	hugeCap := int(^uint(0)>>1)/4 + 1
	assert.ErrorIs(t, buf.Init(mem, hugeCap), buffer.ErrCapacityOverflow)
}

func TestResizeZeroFails(t *testing.T) {
	mem := memory.DefaultAllocator

	var buf buffer.Of[byte]
	require.NoError(t, buf.Init(mem, 4))
	defer buf.Deinit(mem)

	assert.ErrorIs(t, buf.Resize(mem, 0), buffer.ErrZeroCapacity)
	assert.Equal(t, 4, buf.Cap())
}

func TestFailedGrowthLeavesBufferIntact(t *testing.T) {
	mem := &limitAllocator{mem: memory.NewGoAllocator(), budget: 1}

	var buf buffer.Of[uint32]
	require.NoError(t, buf.Init(mem, 2))

	require.NoError(t, buf.Push(mem, 11))
	require.NoError(t, buf.Push(mem, 22))

	// growth needs an allocation the budget no longer allows
	err := buf.Push(mem, 33)
	assert.ErrorIs(t, err, memory.ErrOutOfMemory)

	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, 2, buf.Cap())
	v, ok := buf.Peek()
	require.True(t, ok)
	assert.Equal(t, uint32(22), *v)
}

func TestDeinitZeroes(t *testing.T) {
	mem := memory.DefaultAllocator

	var buf buffer.Of[int32]
	require.NoError(t, buf.Init(mem, 4))
	require.NoError(t, buf.Push(mem, 1))

	buf.Deinit(mem)
	assert.Zero(t, buf.Len())
	assert.Zero(t, buf.Cap())
}

func TestBoxed(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, b, c := "alpha", "beta", "gamma"

	var buf buffer.Boxed[string]
	require.NoError(t, buf.Init(mem, 2))
	defer buf.Deinit(mem)

	require.NoError(t, buf.Push(mem, &a))
	require.NoError(t, buf.Push(mem, &b))
	require.NoError(t, buf.Push(mem, &c))
	assert.Equal(t, 4, buf.Cap(), "boxed growth doubles like the inline variant")

	top, ok := buf.Peek()
	require.True(t, ok)
	assert.Same(t, &c, top)
	assert.Equal(t, "gamma", *top)

	for _, want := range []*string{&c, &b, &a} {
		got, ok := buf.Pop()
		require.True(t, ok)
		assert.Same(t, want, got)
	}
	_, ok = buf.Pop()
	assert.False(t, ok)
}

func TestBytes(t *testing.T) {
	mem := memory.DefaultAllocator

	var buf buffer.Bytes
	require.NoError(t, buf.Init(mem, 4))
	defer buf.Deinit(mem)

	for _, c := range []byte("chim") {
		require.NoError(t, buf.Push(mem, c))
	}
	v, ok := buf.Peek()
	require.True(t, ok)
	assert.Equal(t, byte('m'), *v)
}

func TestUntypedEngineDirectly(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var raw buffer.Buffer
	require.NoError(t, raw.Init(mem, 4, 8))
	assert.Equal(t, 4, raw.Cap())
	assert.Zero(t, raw.Len())
	raw.Deinit(mem)
}
