// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package convert

import "math"

const (
	divBy128        = 1.0 / 128.0
	divBy32768      = 1.0 / 32768.0
	divBy2147483648 = 1.0 / 2147483648.0
)

// ToFloat32 dispatches src (already in host byte order, tagged by
// srcTag) to float32 samples at unit gain, per §4.2 step 2. F32 sources
// are decoded from their little-endian bytes.
func ToFloat32(dst []float32, src []byte, srcTag Tag) {
	switch {
	case srcTag.Float:
		decodeFloat32(dst, src)
	case srcTag.ByteSize == 1 && srcTag.Signed:
		s8ToFloat32(dst, src)
	case srcTag.ByteSize == 1 && !srcTag.Signed:
		u8ToFloat32(dst, src)
	case srcTag.ByteSize == 2 && hasFastPath:
		s16ToFloat32Fast(dst, src)
	case srcTag.ByteSize == 2:
		s16ToFloat32(dst, src)
	case srcTag.ByteSize == 4:
		s32ToFloat32(dst, src)
	}
}

// FromFloat32 dispatches float32 samples to dst in dstTag's encoding,
// saturating to the destination's range with round-to-nearest, per §4.2
// step 4. F32 destinations are encoded as little-endian bytes.
func FromFloat32(dst []byte, src []float32, dstTag Tag) {
	switch {
	case dstTag.Float:
		encodeFloat32(dst, src)
	case dstTag.ByteSize == 1 && dstTag.Signed:
		float32ToS8(dst, src)
	case dstTag.ByteSize == 1 && !dstTag.Signed:
		float32ToU8(dst, src)
	case dstTag.ByteSize == 2 && hasFastPath:
		float32ToS16Fast(dst, src)
	case dstTag.ByteSize == 2:
		float32ToS16(dst, src)
	case dstTag.ByteSize == 4:
		float32ToS32(dst, src)
	}
}

func s8ToFloat32(dst []float32, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[i] = float32(int8(src[i])) * divBy128
	}
}

func u8ToFloat32(dst []float32, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[i] = (float32(src[i]) - 128.0) * divBy128
	}
}

func s16ToFloat32(dst []float32, src []byte) {
	n := len(src) / 2
	for i := 0; i < n; i++ {
		v := int16(uint16(src[2*i]) | uint16(src[2*i+1])<<8)
		dst[i] = float32(v) * divBy32768
	}
}

func s32ToFloat32(dst []float32, src []byte) {
	n := len(src) / 4
	for i := 0; i < n; i++ {
		v := int32(uint32(src[4*i]) | uint32(src[4*i+1])<<8 | uint32(src[4*i+2])<<16 | uint32(src[4*i+3])<<24)
		dst[i] = float32(v) * divBy2147483648
	}
}

func float32ToS8(dst []byte, src []float32) {
	for i, f := range src {
		dst[i] = byte(int8(clampRound(f*128.0, -128, 127)))
	}
}

func float32ToU8(dst []byte, src []float32) {
	for i, f := range src {
		dst[i] = byte(int32(clampRound(f*128.0+128.0, 0, 255)))
	}
}

func float32ToS16(dst []byte, src []float32) {
	for i, f := range src {
		v := int16(clampRound(f*32768.0, -32768, 32767))
		dst[2*i] = byte(v)
		dst[2*i+1] = byte(v >> 8)
	}
}

func float32ToS32(dst []byte, src []float32) {
	for i, f := range src {
		v := int32(clampRound(float64(f)*2147483648.0, -2147483648, 2147483647))
		dst[4*i] = byte(v)
		dst[4*i+1] = byte(v >> 8)
		dst[4*i+2] = byte(v >> 16)
		dst[4*i+3] = byte(v >> 24)
	}
}

// clampRound rounds to nearest and clamps to [lo, hi], in that order —
// matching §4.2's "saturating round-to-nearest".
func clampRound(v float32, lo, hi float64) float64 {
	r := math.RoundToEven(float64(v))
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

// decodeFloat32 reads little-endian IEEE-754 float32 samples out of src
// into dst. Only reached when the caller couldn't take the F32-to-F32
// memcpy fast path (e.g. mixed with a channel remap in between).
func decodeFloat32(dst []float32, src []byte) {
	n := len(src) / 4
	for i := 0; i < n; i++ {
		bits := uint32(src[4*i]) | uint32(src[4*i+1])<<8 | uint32(src[4*i+2])<<16 | uint32(src[4*i+3])<<24
		dst[i] = math.Float32frombits(bits)
	}
}

// encodeFloat32 writes src as little-endian IEEE-754 float32 samples
// into dst.
func encodeFloat32(dst []byte, src []float32) {
	for i, f := range src {
		bits := math.Float32bits(f)
		dst[4*i] = byte(bits)
		dst[4*i+1] = byte(bits >> 8)
		dst[4*i+2] = byte(bits >> 16)
		dst[4*i+3] = byte(bits >> 24)
	}
}
