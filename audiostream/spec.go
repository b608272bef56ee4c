// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package audiostream implements a bidirectional, format-transcoding,
// sample-rate-converting audio queue: the core of a cross-platform
// multimedia library's stream object. It accepts PCM bytes in one
// format/channel-layout/rate on the input side and emits PCM bytes in a
// potentially different format/channel-layout/rate on the output side,
// preserving sample continuity across format changes, rate changes,
// partial buffers, and concurrent producer/consumer access.
package audiostream

import (
	"fmt"

	"github.com/rapidaai/audiostream/internal/convert"
)

// Format is one of the eight PCM sample encodings the engine understands.
type Format uint8

const (
	FormatU8 Format = iota
	FormatS8
	FormatS16LE
	FormatS16BE
	FormatS32LE
	FormatS32BE
	FormatF32LE
	FormatF32BE
)

const (
	MinChannels = 1
	MaxChannels = 8
	MinFreq     = 4000
	MaxFreq     = 192000

	MinFrequencyRatio = 0.01
	MaxFrequencyRatio = 100.0
)

// BitSize returns 8, 16, or 32.
func (f Format) BitSize() int {
	switch f {
	case FormatU8, FormatS8:
		return 8
	case FormatS16LE, FormatS16BE:
		return 16
	default:
		return 32
	}
}

// ByteSize returns BitSize()/8.
func (f Format) ByteSize() int {
	return f.BitSize() / 8
}

// BigEndian reports whether the in-memory byte order is big-endian.
func (f Format) BigEndian() bool {
	return f == FormatS16BE || f == FormatS32BE || f == FormatF32BE
}

// Signed reports whether the integer format is two's-complement signed.
// Meaningless (returns true) for float formats.
func (f Format) Signed() bool {
	return f != FormatU8
}

// Float reports whether the format stores IEEE-754 float32 samples.
func (f Format) Float() bool {
	return f == FormatF32LE || f == FormatF32BE
}

// SilenceByte is the byte value that represents digital silence when the
// buffer is memset with it: 0x80 for unsigned 8-bit, 0 for everything else
// (signed integer formats and float are already zero-centered).
func (f Format) SilenceByte() byte {
	if f == FormatU8 {
		return 0x80
	}
	return 0
}

// littleEndianEquivalent strips the endianness bit, used to dispatch the
// to/from-float32 converters which only care about bit width + signedness.
func (f Format) littleEndianEquivalent() Format {
	switch f {
	case FormatS16BE:
		return FormatS16LE
	case FormatS32BE:
		return FormatS32LE
	case FormatF32BE:
		return FormatF32LE
	default:
		return f
	}
}

func (f Format) String() string {
	switch f {
	case FormatU8:
		return "U8"
	case FormatS8:
		return "S8"
	case FormatS16LE:
		return "S16LE"
	case FormatS16BE:
		return "S16BE"
	case FormatS32LE:
		return "S32LE"
	case FormatS32BE:
		return "S32BE"
	case FormatF32LE:
		return "F32LE"
	case FormatF32BE:
		return "F32BE"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

func validFormat(f Format) bool {
	return f <= FormatF32BE
}

// tag returns the convert.Tag describing this format, for handoff into
// the endianness-agnostic internal/convert package.
func (f Format) tag() convert.Tag {
	return convert.Tag{
		ByteSize:  f.ByteSize(),
		Signed:    f.Signed(),
		Float:     f.Float(),
		BigEndian: f.BigEndian(),
	}
}

// Spec is the (format, channels, freq) triple every track and every side
// of a stream is pinned to. Channel interleaving order for a given
// channel count follows the fixed layout table below.
type Spec struct {
	Format   Format
	Channels int
	Freq     int
}

// Validate enforces §3's bounds: channels in 1..=8, freq in 4000..=192000,
// and a known format tag.
func (s Spec) Validate() error {
	if !validFormat(s.Format) {
		return fmt.Errorf("%w: unknown format %v", ErrInvalidParameter, s.Format)
	}
	if s.Channels < MinChannels || s.Channels > MaxChannels {
		return fmt.Errorf("%w: channels %d out of range [%d,%d]", ErrInvalidParameter, s.Channels, MinChannels, MaxChannels)
	}
	if s.Freq < MinFreq || s.Freq > MaxFreq {
		return fmt.Errorf("%w: freq %d out of range [%d,%d]", ErrInvalidParameter, s.Freq, MinFreq, MaxFreq)
	}
	return nil
}

// FrameSize is bytes-per-sample * channels: the size of one interleaved
// frame in this spec.
func (s Spec) FrameSize() int {
	return s.Format.ByteSize() * s.Channels
}

// Equal compares format/channels/freq; two zero Specs are equal.
func (s Spec) Equal(o Spec) bool {
	return s.Format == o.Format && s.Channels == o.Channels && s.Freq == o.Freq
}

// IsZero reports whether the spec has never been set (Channels == 0).
func (s Spec) IsZero() bool {
	return s.Channels == 0
}

// channelName enumerates the canonical speaker positions used to build
// the per-channel-count interleaving tables in §3.
type channelName int

const (
	chFL channelName = iota
	chFR
	chFC
	chLFE
	chBL
	chBR
	chBC
	chSL
	chSR
)

// channelLayouts is the fixed interleave order for each channel count,
// 1..=8, exactly as specified in §3's table.
var channelLayouts = [MaxChannels + 1][]channelName{
	1: {chFC},
	2: {chFL, chFR},
	3: {chFL, chFR, chLFE},
	4: {chFL, chFR, chBL, chBR},
	5: {chFL, chFR, chLFE, chBL, chBR},
	6: {chFL, chFR, chFC, chLFE, chBL, chBR},
	7: {chFL, chFR, chFC, chLFE, chBC, chSL, chSR},
	8: {chFL, chFR, chFC, chLFE, chBL, chBR, chSL, chSR},
}

// ChannelLayout returns the speaker name at each interleaved position for
// the given channel count, or nil if channels is out of [1,8].
func ChannelLayout(channels int) []string {
	if channels < MinChannels || channels > MaxChannels {
		return nil
	}
	names := make([]string, len(channelLayouts[channels]))
	for i, c := range channelLayouts[channels] {
		names[i] = c.String()
	}
	return names
}

func (c channelName) String() string {
	switch c {
	case chFL:
		return "FL"
	case chFR:
		return "FR"
	case chFC:
		return "FC"
	case chLFE:
		return "LFE"
	case chBL:
		return "BL"
	case chBR:
		return "BR"
	case chBC:
		return "BC"
	case chSL:
		return "SL"
	case chSR:
		return "SR"
	default:
		return "?"
	}
}

// MaxFrameSize returns max(byte_size(src), byte_size(dst), 4) *
// max(src_ch, dst_ch), the scratch-buffer sizing helper from §4.2.
func MaxFrameSize(srcFmt Format, srcCh int, dstFmt Format, dstCh int) int {
	byteSize := srcFmt.ByteSize()
	if dstFmt.ByteSize() > byteSize {
		byteSize = dstFmt.ByteSize()
	}
	if byteSize < 4 {
		byteSize = 4
	}
	chans := srcCh
	if dstCh > chans {
		chans = dstCh
	}
	return byteSize * chans
}
