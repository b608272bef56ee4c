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

func s16Bytes(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		b[2*i] = byte(s)
		b[2*i+1] = byte(uint16(s) >> 8)
	}
	return b
}

func TestS16RoundTripExtremes(t *testing.T) {
	in := s16Bytes(0, 1, -1, 32767, -32768, 16384, -16384)
	floats := make([]float32, len(in)/2)
	ToFloat32(floats, in, Tag{ByteSize: 2, Signed: true})

	out := make([]byte, len(in))
	FromFloat32(out, floats, Tag{ByteSize: 2, Signed: true})
	assert.Equal(t, in, out)
}

func TestS16FastPathMatchesScalar(t *testing.T) {
	if !hasFastPath {
		t.Skip("no AVX2 fast path available on this build")
	}
	in := s16Bytes(0, 1, -1, 2, -2, 1000, -1000, 32767, -32768, 12345, -12345, 7, -7, 0, 1)

	fast := make([]float32, len(in)/2)
	s16ToFloat32Fast(fast, in)

	scalar := make([]float32, len(in)/2)
	s16ToFloat32(scalar, in)

	assert.Equal(t, scalar, fast)

	backFast := make([]byte, len(in))
	float32ToS16Fast(backFast, fast)
	backScalar := make([]byte, len(in))
	float32ToS16(backScalar, scalar)
	assert.Equal(t, backScalar, backFast)
}

func TestU8ToFloat32Range(t *testing.T) {
	in := []byte{0, 128, 255}
	out := make([]float32, 3)
	ToFloat32(out, in, Tag{ByteSize: 1, Signed: false})
	assert.InDelta(t, -1.0, out[0], 1e-6)
	assert.InDelta(t, 0.0, out[1], 1e-6)
	assert.InDelta(t, float64(127)/128.0, out[2], 1e-6)
}

func TestFloat32ToS16Saturates(t *testing.T) {
	in := []float32{2.0, -2.0, 0.0}
	out := make([]byte, 6)
	FromFloat32(out, in, Tag{ByteSize: 2, Signed: true})

	v0 := int16(uint16(out[0]) | uint16(out[1])<<8)
	v1 := int16(uint16(out[2]) | uint16(out[3])<<8)
	assert.Equal(t, int16(32767), v0)
	assert.Equal(t, int16(-32768), v1)
}

func TestFloatPassthroughEncodeDecode(t *testing.T) {
	src := []float32{0.5, -0.25, 1.0, -1.0}
	bytes := make([]byte, len(src)*4)
	FromFloat32(bytes, src, Tag{Float: true, ByteSize: 4})

	dst := make([]float32, len(src))
	ToFloat32(dst, bytes, Tag{Float: true, ByteSize: 4})
	assert.Equal(t, src, dst)
}
