// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import (
	"errors"
	"testing"

	"github.com/rapidaai/audiostream/internal/config"
)

func mono16(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		b[2*i] = byte(s)
		b[2*i+1] = byte(uint16(s) >> 8)
	}
	return b
}

func drain(t *testing.T, s *AudioStream, chunkBytes int) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, chunkBytes)
	for {
		n, err := s.Get(buf)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	return out
}

func TestIdentityPassthrough(t *testing.T) {
	spec := Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}
	s, err := Create(spec, spec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	in := mono16(100, -200, 300, -400, 32767, -32768)
	if err := s.Put(in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := drain(t, s, 4096)
	if len(out) != len(in) {
		t.Fatalf("got %d bytes, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("byte %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestGetAvailableBeforeDstSpecSet(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}, Spec{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	// Put must not panic even though dstSpec is still unset (availableFrames
	// has to short-circuit before reaching resample.Rate's division).
	if err := s.Put(mono16(1, 2, 3, 4)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	avail, err := s.GetAvailable()
	if err != nil {
		t.Fatalf("GetAvailable: %v", err)
	}
	if avail != 0 {
		t.Fatalf("GetAvailable with unset dst spec = %d, want 0", avail)
	}
}

func TestDownsampleProducesFewerFrames(t *testing.T) {
	src := Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}
	dst := Spec{Format: FormatS16LE, Channels: 1, Freq: 24000}
	s, err := Create(src, dst)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	samples := make([]int16, 4800)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	if err := s.Put(mono16(samples...)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := drain(t, s, 8192)
	gotFrames := len(out) / dst.FrameSize()
	wantFrames := len(samples) / 2
	// Resampler boundary effects mean an exact match isn't required, but
	// the count must land close to half the input.
	diff := gotFrames - wantFrames
	if diff < -4 || diff > 4 {
		t.Fatalf("downsample 48k->24k produced %d frames, want close to %d", gotFrames, wantFrames)
	}
}

func TestFormatChangeMidStreamKeepsTracksSeparate(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 16000}, Spec{Format: FormatS16LE, Channels: 1, Freq: 16000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	first := mono16(1, 2, 3, 4)
	if err := s.Put(first); err != nil {
		t.Fatalf("Put 1: %v", err)
	}

	if err := s.SetFormat(Spec{Format: FormatS16LE, Channels: 1, Freq: 8000}, Spec{}); err != nil {
		t.Fatalf("SetFormat: %v", err)
	}

	second := mono16(10, 20)
	if err := s.Put(second); err != nil {
		t.Fatalf("Put 2: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := len(s.q.tracks); got != 2 {
		t.Fatalf("queue has %d tracks after a spec change mid-stream, want 2", got)
	}

	out := drain(t, s, 4096)
	if len(out) == 0 {
		t.Fatalf("expected some output after draining both tracks")
	}
}

func TestClearDropsQueuedDataAndResetsPhase(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}, Spec{Format: FormatS16LE, Channels: 1, Freq: 24000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	if err := s.Put(mono16(1, 2, 3, 4, 5, 6)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.resampleOffset = 12345

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	queued, err := s.GetQueued()
	if err != nil {
		t.Fatalf("GetQueued: %v", err)
	}
	if queued != 0 {
		t.Fatalf("GetQueued after Clear = %d, want 0", queued)
	}
	if s.resampleOffset != 0 {
		t.Fatalf("resampleOffset after Clear = %d, want 0", s.resampleOffset)
	}
}

func TestPutRejectsPartialFrame(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}, Spec{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	err = s.Put([]byte{1, 2, 3})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Put with partial frame = %v, want ErrInvalidParameter", err)
	}
}

func TestPutCallbackFiresOnceOnRealWrite(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}, Spec{Format: FormatS16LE, Channels: 1, Freq: 48000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	calls := 0
	s.SetPutCallback(func(stream *AudioStream, amount int) {
		calls++
	})

	if err := s.Put(mono16(1, 2, 3, 4)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if calls != 1 {
		t.Fatalf("put callback fired %d times on a real write, want 1", calls)
	}
}

func TestOperationsAfterDestroyFail(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}, Spec{Format: FormatS16LE, Channels: 1, Freq: 48000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("second Destroy should be a no-op, got %v", err)
	}
	if err := s.Put(mono16(1, 2)); !errors.Is(err, ErrStreamDestroyed) {
		t.Fatalf("Put after Destroy = %v, want ErrStreamDestroyed", err)
	}
	if _, err := s.Get(make([]byte, 16)); !errors.Is(err, ErrStreamDestroyed) {
		t.Fatalf("Get after Destroy = %v, want ErrStreamDestroyed", err)
	}
}

func TestFrequencyRatioClamped(t *testing.T) {
	s, err := Create(Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}, Spec{Format: FormatS16LE, Channels: 1, Freq: 48000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	if err := s.SetFrequencyRatio(1000); err != nil {
		t.Fatalf("SetFrequencyRatio: %v", err)
	}
	got, err := s.GetFrequencyRatio()
	if err != nil {
		t.Fatalf("GetFrequencyRatio: %v", err)
	}
	if got != MaxFrequencyRatio {
		t.Fatalf("ratio = %v, want clamped to %v", got, MaxFrequencyRatio)
	}

	if err := s.SetFrequencyRatio(-5); err != nil {
		t.Fatalf("SetFrequencyRatio: %v", err)
	}
	got, _ = s.GetFrequencyRatio()
	if got != MinFrequencyRatio {
		t.Fatalf("ratio = %v, want clamped to %v", got, MinFrequencyRatio)
	}
}

func TestPutLargeTakesChunkRingPath(t *testing.T) {
	cfg := config.Defaults()
	cfg.LargePutThresholdBytes = 256 // force the bulk-write path well below 64 KiB
	spec := Spec{Format: FormatS16LE, Channels: 1, Freq: 48000}
	s, err := Create(spec, spec, WithConfig(cfg))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	samples := make([]int16, 1000) // 2000 bytes, well above the threshold (one 4096-byte chunk)
	for i := range samples {
		samples[i] = int16(i)
	}
	in := mono16(samples...)
	if len(in) < cfg.LargePutThresholdBytes {
		t.Fatalf("test input %d bytes does not exceed the large-put threshold %d", len(in), cfg.LargePutThresholdBytes)
	}

	if err := s.Put(in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	queued, err := s.GetQueued()
	if err != nil {
		t.Fatalf("GetQueued: %v", err)
	}
	if int(queued) != len(in) {
		t.Fatalf("GetQueued after a large Put = %d, want %d", queued, len(in))
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := drain(t, s, 4096)
	if len(out) != len(in) {
		t.Fatalf("got %d bytes, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("byte %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestChannelUpmixMonoToStereo(t *testing.T) {
	src := Spec{Format: FormatS16LE, Channels: 1, Freq: 16000}
	dst := Spec{Format: FormatS16LE, Channels: 2, Freq: 16000}
	s, err := Create(src, dst)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Destroy()

	if err := s.Put(mono16(1000, -1000)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := drain(t, s, 4096)
	if len(out) != 8 {
		t.Fatalf("got %d bytes, want 8 (2 frames x 2 channels x 2 bytes)", len(out))
	}
	// FC (the mono source) is copied at unit gain into both FL and FR, so
	// the two samples of each stereo frame must be equal.
	l0 := int16(uint16(out[0]) | uint16(out[1])<<8)
	r0 := int16(uint16(out[2]) | uint16(out[3])<<8)
	if l0 != r0 {
		t.Fatalf("FL/FR mismatch after mono->stereo upmix: %d vs %d", l0, r0)
	}
}
