// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package resample implements the windowed-sinc bandlimited resampler of
// §4.3: a process-wide, once-built filter table; 32.32 fixed-point phase
// tracking; and the per-frame convolution that turns input_frames source
// samples into output_frames destination samples at an arbitrary ratio.
package resample

import (
	"math"
	"sync"
)

// Table is the process-wide, immutable filter bank described by §4.3 and
// §9's "shared resource policy": built once by Setup, read without
// locking from then on by every stream's resample pass.
type Table struct {
	zeroCrossings          int
	samplesPerZeroCrossing int
	samplesPerFrame        int // 2 * zeroCrossings
	interpBits             uint
	full                   []float32 // (samplesPerZeroCrossing+1) banks of samplesPerFrame taps each
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Setup builds the process-wide filter table on its first call with the
// given parameters; later calls are no-ops and return the table built by
// the first caller, matching SDL_SetupAudioResampler's one-time-init
// contract (§9: "process-wide immutable after one-time init, readable
// without locking").
func Setup(zeroCrossings, samplesPerZeroCrossing int) *Table {
	defaultTableOnce.Do(func() {
		defaultTable = buildTable(zeroCrossings, samplesPerZeroCrossing)
	})
	return defaultTable
}

// log2 returns the base-2 logarithm of a power-of-two n, used to derive
// RESAMPLER_FILTER_INTERP_BITS (= 32 - bits_per_zero_crossing) from the
// configured phase count.
func log2(n int) uint {
	var bits uint
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}

// buildTable precomputes a Blackman-windowed sinc kernel across
// (samplesPerZeroCrossing+1) fractional phases and 2*zeroCrossings taps
// per phase, mirroring RESAMPLER_FULL_FILTER_SIZE's layout: bank p, tap t
// holds the filter weight for the source sample at integer offset
// t-(zeroCrossings-1) relative to srcindex, when the true (fractional)
// output position is srcindex + p/samplesPerZeroCrossing.
func buildTable(zeroCrossings, samplesPerZeroCrossing int) *Table {
	n := zeroCrossings
	p := samplesPerZeroCrossing
	samplesPerFrame := 2 * n

	t := &Table{
		zeroCrossings:          n,
		samplesPerZeroCrossing: p,
		samplesPerFrame:        samplesPerFrame,
		interpBits:             32 - log2(p),
		full:                   make([]float32, samplesPerFrame*(p+1)),
	}

	for bank := 0; bank <= p; bank++ {
		frac := float64(bank) / float64(p)
		row := t.full[bank*samplesPerFrame : (bank+1)*samplesPerFrame]
		for tap := 0; tap < samplesPerFrame; tap++ {
			x := float64(tap) - float64(n-1) - frac
			row[tap] = float32(sincWindowed(x, n))
		}
	}
	return t
}

// sincWindowed evaluates normalized sinc(x) shaped by a Blackman window
// spanning +/- n, the textbook bandlimited-interpolation kernel: zero
// beyond the window's support, 1 at x == 0.
func sincWindowed(x float64, n int) float64 {
	if x <= -float64(n) || x >= float64(n) {
		return 0
	}
	var s float64
	if x == 0 {
		s = 1
	} else {
		px := math.Pi * x
		s = math.Sin(px) / px
	}
	// Blackman window over [-n, n].
	w := 0.42 + 0.5*math.Cos(math.Pi*x/float64(n)) + 0.08*math.Cos(2*math.Pi*x/float64(n))
	return s * w
}

// Lookup returns the interpolated 2*zeroCrossings-tap filter for the
// given 32-bit fractional phase (the low 32 bits of a 32.32 source
// position) and the linear-interpolation weight between the two nearest
// precomputed banks, per §4.3 step 6's "top log2(PHASES) bits select the
// bank, remaining bits are the interpolation weight".
func (t *Table) Lookup(fraction uint32, filter []float32) float32 {
	bank := int(fraction >> t.interpBits)
	interpRange := uint32(1) << t.interpBits
	interp := float32(fraction&(interpRange-1)) * (1.0 / float32(interpRange))

	lo := t.full[bank*t.samplesPerFrame : (bank+1)*t.samplesPerFrame]
	hi := t.full[(bank+1)*t.samplesPerFrame : (bank+2)*t.samplesPerFrame]
	for i := range filter {
		filter[i] = lo[i]*(1-interp) + hi[i]*interp
	}
	return interp
}

// ZeroCrossings returns the configured lobe count per side.
func (t *Table) ZeroCrossings() int { return t.zeroCrossings }

// SamplesPerFrame returns 2*ZeroCrossings, the number of taps convolved
// per output frame.
func (t *Table) SamplesPerFrame() int { return t.samplesPerFrame }

// PaddingFrames is ZERO_CROSSINGS + 1 source frames, the history and
// lookahead depth required on each side of a resample, per §3/§4.3.
func (t *Table) PaddingFrames() int { return t.zeroCrossings + 1 }
