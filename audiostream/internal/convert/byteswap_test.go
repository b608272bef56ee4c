// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteSwap16(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	ByteSwap(data, 2)
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, data)
}

func TestByteSwap32(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	ByteSwap(data, 4)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, data)
}

func TestByteSwapIsInvolution(t *testing.T) {
	for _, size := range []int{2, 4} {
		data := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
		original := append([]byte(nil), data...)
		ByteSwap(data, size)
		ByteSwap(data, size)
		assert.Equal(t, original, data)
	}
}

func TestNeedsByteSwap(t *testing.T) {
	assert.True(t, NeedsByteSwap(Tag{BigEndian: true, ByteSize: 2}))
	assert.False(t, NeedsByteSwap(Tag{BigEndian: false, ByteSize: 2}))
	assert.False(t, NeedsByteSwap(Tag{BigEndian: true, ByteSize: 1}))
}
