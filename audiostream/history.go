// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

// historyBuffer holds the most recent PADDING_FRAMES input frames, in the
// current source spec, prior to the next pull. It supplies the
// resampler's left padding so the sinc kernel has valid samples before
// the first new input sample (§3, §9). It is reset to silence whenever
// the reading track changes, because interpolating across a spec
// boundary would be meaningless.
type historyBuffer struct {
	spec   Spec
	frames int // capacity in frames = paddingFrames
	data   []byte
}

func newHistoryBuffer() *historyBuffer {
	return &historyBuffer{}
}

// resize (re)allocates the buffer for spec and paddingFrames frames,
// filling it with silence. Called lazily on spec change.
func (h *historyBuffer) resize(spec Spec, paddingFrames int) {
	h.spec = spec
	h.frames = paddingFrames
	need := paddingFrames * spec.FrameSize()
	if cap(h.data) < need {
		h.data = make([]byte, need)
	} else {
		h.data = h.data[:need]
	}
	h.fillSilence()
}

func (h *historyBuffer) fillSilence() {
	sv := h.spec.Format.SilenceByte()
	for i := range h.data {
		h.data[i] = sv
	}
}

// reset clears the buffer to silence without changing its size; called
// when the reading track changes (§3: HistoryBuffer lifecycle).
func (h *historyBuffer) reset() {
	h.fillSilence()
}

// update shifts in the tail paddingFrames frames of justRead (the frames
// most recently read from the queue) as the new history, per §4.3 step 4.
func (h *historyBuffer) update(justRead []byte, frameSize int) {
	if len(h.data) == 0 {
		return
	}
	frames := len(justRead) / frameSize
	if frames >= h.frames {
		copy(h.data, justRead[len(justRead)-len(h.data):])
		return
	}
	// Fewer frames were read than the padding window: shift the existing
	// history left and append what we have.
	keepBytes := len(h.data) - len(justRead)
	copy(h.data, h.data[len(h.data)-keepBytes:])
	copy(h.data[keepBytes:], justRead)
}

// bytes returns the live padding-frames window, in source-spec bytes.
func (h *historyBuffer) bytes() []byte {
	return h.data
}
