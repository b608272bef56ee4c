// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

// track is an ordered, non-empty sequence of chunks that all share one
// Spec. A flushed track admits no further writes, only reads, until it is
// drained and popped (§3's state machine: Open -> Flushed -> Drained ->
// Popped).
type track struct {
	spec        Spec
	head        *chunk
	tail        *chunk
	queuedBytes int
	flushed     bool
}

func newTrack(spec Spec) *track {
	return &track{spec: spec}
}

// drained reports whether every chunk in the track has been fully read.
func (t *track) drained() bool {
	return t.queuedBytes == 0
}

// poppable reports whether the track is both flushed and drained, the
// precondition for the queue to remove it.
func (t *track) poppable() bool {
	return t.flushed && t.drained()
}

// appendChunk links c onto the tail of the track's chunk list.
func (t *track) appendChunk(c *chunk) {
	if t.tail != nil {
		t.tail.next = c
	} else {
		t.head = c
	}
	t.tail = c
}
