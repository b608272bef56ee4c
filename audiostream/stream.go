// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

import (
	"fmt"

	"github.com/rapidaai/audiostream/internal/config"
	"github.com/rapidaai/audiostream/internal/convert"
	"github.com/rapidaai/audiostream/internal/resample"
	"github.com/rapidaai/audiostream/pkg/commons"
)

func decodeInto(dst []float32, src []byte) {
	convert.ToFloat32(dst, src, convert.Tag{Float: true})
}

func encodeFrom(dst []byte, src []float32) {
	convert.FromFloat32(dst, src, convert.Tag{Float: true})
}

// pullChunkFrames bounds how many output frames GetAudioStreamDataInternal's
// equivalent converts per iteration of Get's loop (§4.4: "repeatedly pull
// up to a fixed chunk ... per iteration").
const pullChunkFrames = 4096

// AudioStream is the core bidirectional, transcoding, resampling PCM
// queue of §4. Every exported method is safe for concurrent use,
// including reentrant use from an installed Get/Put callback, via the
// stream's own recursive mutex.
type AudioStream struct {
	mu recursiveMutex

	cfg    config.EngineConfig
	log    commons.Logger
	table  *resample.Table
	filter []float32

	srcSpec   Spec
	dstSpec   Spec
	freqRatio float64

	q       *queue
	history *historyBuffer
	work    workBuffer
	conv    converter

	// resampleConv, resampleFloats, resampleOut, and resampleBytes are the
	// pull-resampled path's own persistent scratch, kept separate from
	// conv (pullDirect's) so neither pull style clobbers the other's
	// buffers and both stay allocation-free at a stable spec pair.
	resampleConv   converter
	resampleFloats []float32
	resampleOut    []float32
	resampleBytes  []byte

	resampleOffset int64
	trackChanged   bool

	getCallback GetCallback
	putCallback PutCallback

	simplified bool
	bound      *BoundDevice
	destroyed  bool
}

// Option configures a stream at Create time.
type Option func(*AudioStream)

// WithLogger overrides the stream's logger (default: a no-op logger).
func WithLogger(l commons.Logger) Option {
	return func(s *AudioStream) { s.log = l }
}

// WithConfig overrides the engine's tunable constants (default:
// config.Defaults()).
func WithConfig(cfg config.EngineConfig) Option {
	return func(s *AudioStream) { s.cfg = cfg }
}

// Create allocates a stream. src and dst may each be the zero Spec,
// meaning "not yet set" (§4.4); a non-zero side is validated immediately.
func Create(src, dst Spec, opts ...Option) (*AudioStream, error) {
	s := &AudioStream{
		cfg:       config.Defaults(),
		log:       commons.NopLogger(),
		freqRatio: 1.0,
		history:   newHistoryBuffer(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !src.IsZero() {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}
	if !dst.IsZero() {
		if err := dst.Validate(); err != nil {
			return nil, err
		}
	}

	s.srcSpec = src
	s.dstSpec = dst
	s.q = newQueue(s.cfg.DefaultChunkSize, s.cfg.RecyclerCap)
	s.table = resample.Setup(s.cfg.ZeroCrossings, s.cfg.SamplesPerZeroCrossing)
	s.filter = make([]float32, s.table.SamplesPerFrame())
	// No track has been read from yet, so the first pull must still size
	// and silence-fill the history buffer for whatever spec that track
	// turns out to be (§3/§9: history carries across Get calls).
	s.trackChanged = true

	s.log.Debugw("audiostream: stream created", "src", src, "dst", dst)
	return s, nil
}

// Destroy releases the stream's resources and unbinds/closes its device
// per §4.4. After Destroy every method that returns an error returns
// ErrStreamDestroyed, and a further Destroy is a no-op that returns nil.
// It is not safe to call Destroy concurrently with any other method.
func (s *AudioStream) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	if s.bound != nil {
		if closer, ok := s.bound.Device.(interface{ Close() error }); ok && s.simplified {
			if err := closer.Close(); err != nil {
				s.log.Warnw("audiostream: error closing bound device on destroy", "err", err)
			}
		}
		s.bound = nil
	}
	s.q.clear()
	s.destroyed = true
	return nil
}

func (s *AudioStream) checkAlive() error {
	if s.destroyed {
		return ErrStreamDestroyed
	}
	return nil
}

// GetFormat copies the current src/dst specs out. Fails if either side
// has never been set.
func (s *AudioStream) GetFormat() (src, dst Spec, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return Spec{}, Spec{}, err
	}
	if s.srcSpec.IsZero() || s.dstSpec.IsZero() {
		return Spec{}, Spec{}, ErrSpecUnset
	}
	return s.srcSpec, s.dstSpec, nil
}

// SetFormat validates and installs src/dst. A zero Spec leaves that side
// unchanged. If src changes to a different (non-equal) spec, the current
// writing track is flushed first so in-flight bytes keep their old
// meaning (§4.4).
func (s *AudioStream) SetFormat(src, dst Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return err
	}

	if !src.IsZero() {
		if err := src.Validate(); err != nil {
			return err
		}
		if !s.srcSpec.Equal(src) {
			s.q.flush()
			s.srcSpec = src
		}
	}
	if !dst.IsZero() {
		if err := dst.Validate(); err != nil {
			return err
		}
		s.dstSpec = dst
	}
	return nil
}

// GetFrequencyRatio returns the stream's current frequency ratio.
func (s *AudioStream) GetFrequencyRatio() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return 0, err
	}
	return s.freqRatio, nil
}

// SetFrequencyRatio clamps ratio to [MinFrequencyRatio, MaxFrequencyRatio]
// and installs it. Does not flush.
func (s *AudioStream) SetFrequencyRatio(ratio float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return err
	}
	if ratio < MinFrequencyRatio {
		ratio = MinFrequencyRatio
	}
	if ratio > MaxFrequencyRatio {
		ratio = MaxFrequencyRatio
	}
	s.freqRatio = ratio
	return nil
}

// Lock acquires the stream's recursive mutex, for callers that need to
// serialize a sequence of operations against installed callbacks.
func (s *AudioStream) Lock() { s.mu.Lock() }

// Unlock releases the lock acquired by Lock.
func (s *AudioStream) Unlock() { s.mu.Unlock() }

// resampleRateFor computes the 32.32 resample rate for a source running
// at srcFreq once the stream's frequency ratio is applied, against the
// stream's destination freq.
func (s *AudioStream) resampleRateFor(srcFreq int) int64 {
	effective := int(float64(srcFreq) * s.freqRatio)
	return resample.Rate(effective, s.dstSpec.Freq)
}

// Put appends len(data) bytes, encoded per the current source spec, to
// the stream. len(data) must be a multiple of the source frame size.
// Writes at or above the configured LargePutThresholdBytes take the
// bulk-write path (§4.1's WriteChunks): the chunk ring is built before
// the lock is reacquired, so the large allocation/memcpy isn't done
// while every other call on this stream is blocked.
func (s *AudioStream) Put(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return err
	}
	if s.srcSpec.IsZero() {
		return ErrSpecUnset
	}
	if len(data)%s.srcSpec.FrameSize() != 0 {
		return fmt.Errorf("%w: len %d is not a multiple of the source frame size %d", ErrInvalidParameter, len(data), s.srcSpec.FrameSize())
	}
	if len(data) == 0 {
		return nil
	}

	if len(data) >= s.cfg.LargePutThresholdBytes {
		return s.putLarge(data)
	}
	return s.putSmall(data)
}

// putSmall appends data through the queue's normal chunk-at-a-time write.
// Called with s.mu held throughout.
func (s *AudioStream) putSmall(data []byte) error {
	prevAvailable := 0
	if s.putCallback != nil {
		prevAvailable = s.availableBytes()
	}
	if err := s.q.write(s.srcSpec, data); err != nil {
		return err
	}
	s.notifyPut(prevAvailable)
	return nil
}

// putLarge pre-builds the new chunk ring for data outside the stream
// lock — nothing about assembling a detached ring of chunks touches
// shared queue state, so the allocation and copy for a large write
// needn't hold every other caller off the stream while it runs — then
// reacquires the lock just long enough to splice the ring onto the
// writing track. Called with s.mu held; unlocks and relocks internally.
func (s *AudioStream) putLarge(data []byte) error {
	spec := s.srcSpec
	chunkSize := s.q.chunkSize
	allocate := s.q.allocate

	s.mu.Unlock()
	ringTail, buildErr := buildChunkRing(chunkSize, allocate, data)
	s.mu.Lock()

	if buildErr != nil {
		return ErrOutOfMemory
	}
	if err := s.checkAlive(); err != nil {
		return err
	}
	if !s.srcSpec.Equal(spec) {
		// The source spec changed while the ring was being built
		// unlocked; the bytes already encoded into it no longer mean
		// what the caller intended, so refuse rather than mislabel them.
		return fmt.Errorf("%w: source spec changed during a large Put", ErrInvalidParameter)
	}

	prevAvailable := 0
	if s.putCallback != nil {
		prevAvailable = s.availableBytes()
	}
	if err := s.q.writeChunks(spec, ringTail, len(data)); err != nil {
		return err
	}
	s.notifyPut(prevAvailable)
	return nil
}

// notifyPut fires the put-callback when availableBytes() has strictly
// increased since prevAvailable, per §9's skip-on-zero-delta resolution.
func (s *AudioStream) notifyPut(prevAvailable int) {
	if s.putCallback != nil {
		delta := s.availableBytes() - prevAvailable
		if delta > 0 {
			s.putCallback(s, delta)
		}
	}
}

// Flush marks the current writing track read-only: it keeps serving
// reads until drained, but accepts no further writes.
func (s *AudioStream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return err
	}
	s.q.flush()
	return nil
}

// Clear drops every queued byte and resets resample phase.
func (s *AudioStream) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return err
	}
	s.q.clear()
	s.trackChanged = true
	s.resampleOffset = 0
	return nil
}

// GetQueued returns the total bytes currently queued (pre-conversion,
// source-spec terms), clamped to MaxInt32.
func (s *AudioStream) GetQueued() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return 0, err
	}
	return clampInt64(s.q.queuedBytes()), nil
}

// GetAvailable returns the number of destination-format bytes Get could
// currently return without blocking (there is no blocking in this
// package, but some tracks may simply have nothing left).
func (s *AudioStream) GetAvailable() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return 0, err
	}
	if s.dstSpec.IsZero() {
		return 0, nil
	}
	return s.availableBytes(), nil
}

func (s *AudioStream) availableBytes() int {
	return s.availableFrames() * s.dstSpec.FrameSize()
}

// availableFrames sums available output frames across every queued
// track, per §4.3's "Available-output calculation"; only the head track
// carries the live resample_offset, every later track starts a fresh
// phase at 0.
func (s *AudioStream) availableFrames() int {
	if s.dstSpec.IsZero() {
		return 0
	}
	var total int64
	offset := s.resampleOffset
	for _, t := range s.q.tracks {
		total += int64(s.trackAvailableFrames(t, offset))
		offset = 0
	}
	return clampInt64ToInt(total)
}

func (s *AudioStream) trackAvailableFrames(t *track, offset int64) int {
	inputFrames := t.queuedBytes / t.spec.FrameSize()
	rate := s.resampleRateFor(t.spec.Freq)
	if rate == 0 {
		return inputFrames
	}
	if !t.flushed {
		pad := s.table.PaddingFrames()
		if inputFrames < pad {
			inputFrames = 0
		} else {
			inputFrames -= pad
		}
	}
	return resample.AvailableOutputFrames(inputFrames, rate, offset)
}

func clampInt64(v int64) int {
	if v > int64(^uint32(0)>>1) {
		return int(^uint32(0) >> 1)
	}
	return int(v)
}

func clampInt64ToInt(v int64) int {
	return clampInt64(v)
}

// Get pulls up to len(dst) destination-format bytes, rounding down to a
// whole destination frame, and returns the number of bytes actually
// written (never more than was requested, possibly less if the queue
// runs dry).
func (s *AudioStream) Get(dst []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return 0, err
	}
	if s.srcSpec.IsZero() || s.dstSpec.IsZero() {
		return 0, ErrSpecUnset
	}

	dstFrameSize := s.dstSpec.FrameSize()
	want := len(dst) - len(dst)%dstFrameSize

	if s.getCallback != nil {
		s.invokeGetCallback(want / dstFrameSize)
	}

	written := 0
	for want > 0 {
		t := s.q.head()
		if t == nil {
			break
		}

		maxFrames := s.trackAvailableFrames(t, s.resampleOffset)
		if maxFrames == 0 {
			if t.poppable() || t.flushed {
				s.q.popCurrent()
				s.trackChanged = true
				s.resampleOffset = 0
				continue
			}
			break
		}

		if s.trackChanged {
			s.history.resize(t.spec, s.table.PaddingFrames())
			s.trackChanged = false
		}

		outFrames := want / dstFrameSize
		if outFrames > pullChunkFrames {
			outFrames = pullChunkFrames
		}
		if outFrames > maxFrames {
			outFrames = maxFrames
		}

		n, err := s.pull(t, dst[written:], outFrames)
		if err != nil {
			if written == 0 {
				return 0, err
			}
			break
		}
		written += n
		want -= n
	}
	return written, nil
}

// invokeGetCallback estimates the source-byte shortfall for framesWanted
// destination frames and invokes the installed get-callback, per §4.4/§4.5.
func (s *AudioStream) invokeGetCallback(framesWanted int) {
	approxRequest := int64(framesWanted) - int64(min(s.availableFrames(), framesWanted))

	rate := s.resampleRateFor(s.srcSpec.Freq)
	if rate != 0 {
		approxRequest = int64(resample.NeededInputFrames(int(approxRequest), rate, 0))
	}
	approxBytes := approxRequest * int64(s.srcSpec.FrameSize())
	if approxBytes < 0 {
		approxBytes = 0
	}
	s.getCallback(s, clampInt64(approxBytes), framesWanted*s.dstSpec.FrameSize())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// pull converts exactly outFrames frames from track t (already known
// available) into dst, implementing §4.3's pull procedure / SDL's
// GetAudioStreamDataInternal.
func (s *AudioStream) pull(t *track, dst []byte, outFrames int) (int, error) {
	srcSpec := t.spec
	dstSpec := s.dstSpec
	srcFrameSize := srcSpec.FrameSize()
	dstFrameSize := dstSpec.FrameSize()

	rate := s.resampleRateFor(srcSpec.Freq)

	if rate == 0 {
		return s.pullDirect(srcSpec, dstSpec, dst, outFrames, srcFrameSize, dstFrameSize)
	}
	return s.pullResampled(srcSpec, dstSpec, dst, outFrames, rate, srcFrameSize, dstFrameSize)
}

// pullDirect implements §4.3 step 2: no resampling needed, a straight
// (possibly identity) conversion.
func (s *AudioStream) pullDirect(srcSpec, dstSpec Spec, dst []byte, outFrames, srcFrameSize, dstFrameSize int) (int, error) {
	inputBytes := outFrames * srcFrameSize

	var input []byte
	identity := srcSpec.Equal(dstSpec)
	if identity {
		input = dst[:inputBytes]
	} else {
		input = s.work.ensure(inputBytes)
	}

	s.q.read(input)
	s.history.update(input, srcFrameSize)

	if !identity {
		out := s.conv.convert(srcSpec, dstSpec, input)
		copy(dst, out)
	}
	return outFrames * dstFrameSize, nil
}

// pullResampled implements §4.3 steps 3-7: build the padded work buffer,
// convert to float32 at the resample channel count, resample, then
// convert to the destination format/channels.
func (s *AudioStream) pullResampled(srcSpec, dstSpec Spec, dst []byte, outFrames int, rate int64, srcFrameSize, dstFrameSize int) (int, error) {
	paddingFrames := s.table.PaddingFrames()
	inputFrames := resample.NeededInputFrames(outFrames, rate, s.resampleOffset)

	srcCh := srcSpec.Channels
	resampleCh := srcCh
	if dstSpec.Channels < resampleCh {
		resampleCh = dstSpec.Channels
	}

	totalSrcFrames := inputFrames + 2*paddingFrames
	srcBytes := s.work.ensure(totalSrcFrames * srcFrameSize)

	leftPadding := srcBytes[:paddingFrames*srcFrameSize]
	input := srcBytes[paddingFrames*srcFrameSize : (paddingFrames+inputFrames)*srcFrameSize]
	rightPadding := srcBytes[(paddingFrames+inputFrames)*srcFrameSize:]

	s.q.read(input)

	copy(leftPadding, s.history.bytes())
	s.history.update(input, srcFrameSize)

	gotRight := s.q.peek(rightPadding)
	if gotRight < len(rightPadding) {
		sv := srcSpec.Format.SilenceByte()
		for i := gotRight; i < len(rightPadding); i++ {
			rightPadding[i] = sv
		}
	}

	floats := s.toResampleFloats(srcSpec, resampleCh, srcBytes, totalSrcFrames)

	outFloats := floatScratch(&s.resampleOut, outFrames*resampleCh)
	s.table.Resample(resampleCh, floats, paddingFrames, inputFrames, outFloats, outFrames, rate, &s.resampleOffset, s.filter)

	finalSpec := Spec{Format: FormatF32LE, Channels: resampleCh, Freq: dstSpec.Freq}
	outBytes := s.floatsToDst(finalSpec, dstSpec, outFloats, outFrames)
	copy(dst, outBytes)

	return outFrames * dstFrameSize, nil
}

// toResampleFloats decodes the [left|input|right] region to float32 at
// resampleCh channels, downmixing now (§4.3 step 5: downmix before
// resampling, upmix after). Writes into s.resampleFloats, grown not
// reallocated, so steady-state resampled pulls at a stable spec pair stay
// allocation-free after warmup.
func (s *AudioStream) toResampleFloats(srcSpec Spec, resampleCh int, srcBytes []byte, totalFrames int) []float32 {
	full := Spec{Format: srcSpec.Format, Channels: srcSpec.Channels, Freq: srcSpec.Freq}
	resampleSpec := Spec{Format: FormatF32LE, Channels: resampleCh, Freq: srcSpec.Freq}

	out := floatScratch(&s.resampleFloats, totalFrames*resampleCh)
	if full.Equal(resampleSpec) {
		decodeInto(out, srcBytes)
		return out
	}
	converted := s.resampleConv.convert(full, resampleSpec, srcBytes)
	decodeInto(out, converted)
	return out
}

// floatsToDst converts resampled float32 frames (at finalSpec's channel
// count) to dstSpec's format/channels, upmixing here if finalSpec's
// channel count is below dstSpec's (§4.3 step 7). Writes into
// s.resampleBytes rather than allocating per pull.
func (s *AudioStream) floatsToDst(finalSpec, dstSpec Spec, floats []float32, frames int) []byte {
	out := byteScratch(&s.resampleBytes, frames*finalSpec.FrameSize())
	encodeFrom(out, floats)
	if finalSpec.Equal(dstSpec) {
		return out
	}
	return s.resampleConv.convert(finalSpec, dstSpec, out)
}
