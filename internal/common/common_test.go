package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberEndianness(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04}
	assert.Equal(t, uint32(0x04030201), Number(b))
	assert.Equal(t, uint32(0x01020304), NumberBE(b))

	out := make([]byte, NumberSize)
	PutNumber(out, 0xdeadbeef)
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, out)
	PutNumberBE(out, 0xdeadbeef)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out)

	assert.Equal(t, []byte{9, 7, 0, 0, 0}, AppendNumber([]byte{9}, 7))
}

func TestNumberAt(t *testing.T) {
	b := []byte{0, 1, 0, 0, 0, 2, 0, 0}
	v, ok := NumberAt(b, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(1), v)

	v, ok = NumberAt(b, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(2), v)

	for _, off := range []uint64{5, 8, math.MaxUint64 - 2} {
		_, ok = NumberAt(b, off)
		assert.False(t, ok, "offset %d", off)
	}
}

func TestMulAddDoesNotWrap(t *testing.T) {
	assert.Equal(t, uint64(14), MulAdd(3, 4, 2))
	got := MulAdd(math.MaxUint32, math.MaxUint32, math.MaxUint32)
	assert.Equal(t, uint64(math.MaxUint32)*math.MaxUint32+math.MaxUint32, got)
}
