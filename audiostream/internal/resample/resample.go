// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package resample

import "math"

// Rate computes the 32.32 fixed-point resample_rate of §4.3:
// (src_freq << 32) / dst_freq, or 0 when src == dst (no resampling
// needed).
func Rate(srcFreq, dstFreq int) int64 {
	if srcFreq == dstFreq {
		return 0
	}
	return (int64(srcFreq) << 32) / int64(dstFreq)
}

// AvailableOutputFrames returns how many destination frames inputFrames
// source frames can produce at the given rate/offset, per
// GetResamplerAvailableOutputFrames.
func AvailableOutputFrames(inputFrames int, rate, offset int64) int {
	out := ((int64(inputFrames) << 32) - offset + rate - 1) / rate
	return clampInt(out)
}

// NeededInputFrames returns how many source frames must be read to
// produce outputFrames destination frames at the given rate/offset, per
// GetResamplerNeededInputFrames.
func NeededInputFrames(outputFrames int, rate, offset int64) int {
	in := (int64(outputFrames-1)*rate+offset)>>32 + 1
	return clampInt(in)
}

func clampInt(v int64) int {
	if v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// Resample convolves inbuf (chans-interleaved; frameOffset frames of left
// padding, then inFrames real input frames, then right padding, per §4.3
// step 4) into outbuf (outFrames frames). srcpos==0 refers to the first
// real input frame (frameOffset frames into inbuf), matching
// ResampleAudio's convention of indexing relative to the input pointer
// while still being able to read negative offsets out of the
// contiguous left padding. Advances *offset across the call so repeated
// calls preserve phase continuity, per §4.3 step 6.
// filter is caller-owned scratch of length t.SamplesPerFrame(), reused
// across calls to keep steady-state resampling allocation-free.
func (t *Table) Resample(chans int, inbuf []float32, frameOffset, inFrames int, outbuf []float32, outFrames int, rate int64, offset *int64, filter []float32) {
	srcpos := *offset

	for i := 0; i < outFrames; i++ {
		srcIndex := int(int32(srcpos >> 32))
		fraction := uint32(srcpos & 0xFFFFFFFF)
		srcpos += rate

		t.Lookup(fraction, filter)

		start := (frameOffset + srcIndex - (t.zeroCrossings - 1)) * chans
		src := inbuf[start : start+t.samplesPerFrame*chans]
		dst := outbuf[i*chans : i*chans+chans]
		convolveFrame(src, dst, filter, chans, t.samplesPerFrame)
	}

	*offset = srcpos - (int64(inFrames) << 32)
}

// convolveFrame computes, for each channel, the dot product of the
// 2*zeroCrossings taps around the current source position with the
// already phase-interpolated filter bank. No clamping: per §4.3's
// "Numeric semantics", saturation happens only at integer conversion.
func convolveFrame(src, dst, filter []float32, chans, samplesPerFrame int) {
	for c := 0; c < chans; c++ {
		var acc float32
		for i := 0; i < samplesPerFrame; i++ {
			acc += src[i*chans+c] * filter[i]
		}
		dst[c] = acc
	}
}
