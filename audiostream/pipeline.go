// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import "github.com/rapidaai/audiostream/internal/convert"

// converter owns the float32 scratch slices used by the format/channel
// pipeline of §4.2, grown on demand and never shrunk, so steady-state
// conversion at a stable spec pair is allocation-free after warmup.
type converter struct {
	srcFloat []float32
	dstFloat []float32
	out      []byte
}

// floatScratch grows *buf to at least n elements, discarding its old
// content, and returns it. A free function rather than a method since
// callers outside converter (the resample pull path) need the same
// grow-don't-shrink scratch discipline over their own persistent slices.
func floatScratch(buf *[]float32, n int) []float32 {
	if cap(*buf) < n {
		*buf = make([]float32, n)
	} else {
		*buf = (*buf)[:n]
	}
	return *buf
}

// byteScratch is floatScratch's []byte counterpart.
func byteScratch(buf *[]byte, n int) []byte {
	if cap(*buf) < n {
		*buf = make([]byte, n)
	} else {
		*buf = (*buf)[:n]
	}
	return *buf
}

// convert transforms frameCount frames of src (encoded per srcSpec, host
// byte order layout exactly as it arrived, mutable scratch the caller
// does not need back) into dstSpec's encoding, returning a slice owned
// by c valid until the next call. Callers must have already special-
// cased srcSpec.Equal(dstSpec) as a pure passthrough; this always
// performs the full byteswap -> float32 -> remap -> byteswap pipeline.
func (c *converter) convert(srcSpec, dstSpec Spec, src []byte) []byte {
	frameCount := len(src) / srcSpec.FrameSize()

	if srcSpec.Format.BigEndian() {
		convert.ByteSwap(src, srcSpec.Format.ByteSize())
	}

	srcCh := srcSpec.Channels
	dstCh := dstSpec.Channels

	srcFloats := floatScratch(&c.srcFloat, frameCount*srcCh)
	convert.ToFloat32(srcFloats, src, srcSpec.Format.littleEndianEquivalent().tag())

	var dstFloats []float32
	if srcCh == dstCh {
		dstFloats = srcFloats
	} else {
		dstFloats = floatScratch(&c.dstFloat, frameCount*dstCh)
		m := channelMatrix(srcCh, dstCh)
		convert.ApplyChannelMatrix(dstFloats, srcFloats, m, frameCount, srcCh, dstCh)
	}

	c.out = byteScratch(&c.out, frameCount*dstSpec.FrameSize())
	convert.FromFloat32(c.out, dstFloats, dstSpec.Format.littleEndianEquivalent().tag())

	if dstSpec.Format.BigEndian() {
		convert.ByteSwap(c.out, dstSpec.Format.ByteSize())
	}
	return c.out
}
