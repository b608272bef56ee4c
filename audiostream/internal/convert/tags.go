// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package convert implements the format & channel conversion pipeline of
// §4.2: byteswap, integer<->float32, and channel remap, table-driven with
// a mandatory scalar fallback and a CPU-feature-gated fast path for the
// hot loops. It knows nothing about audiostream.Format; callers describe
// a format with a Tag so this package stays free of an import cycle.
package convert

// Tag is the minimal description of a PCM sample encoding the converter
// needs: byte width, signedness, float-vs-int, and endianness.
type Tag struct {
	ByteSize  int
	Signed    bool
	Float     bool
	BigEndian bool
}
