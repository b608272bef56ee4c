// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

// queue is the track-segmented chunk queue described in §4.1: an ordered
// list of tracks (head = reading track, tail = writing track) plus a
// bounded free-chunk recycler. A linked list of fixed-capacity chunks is
// used instead of one big ring buffer because a mid-stream format change
// must not corrupt or reinterpret already-queued bytes — the queue has
// to be segmentable by spec, and a ring can't do that without copying.
type queue struct {
	chunkSize int
	tracks    []*track // ordered, tracks[0] is the reading (head) track

	freeChunks   *chunk
	numFreeChunk int
	recyclerCap  int

	// allocate backs every fresh chunk allocation. Overridable so tests
	// can force an OutOfMemory partway through a write and assert the
	// rollback contract in §4.1/§8; defaults to an allocator that never
	// fails.
	allocate func(size int) ([]byte, error)
}

func newQueue(chunkSize, recyclerCap int) *queue {
	return &queue{
		chunkSize:   chunkSize,
		recyclerCap: recyclerCap,
		allocate: func(size int) ([]byte, error) {
			return make([]byte, size), nil
		},
	}
}

func (q *queue) head() *track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[0]
}

func (q *queue) tail() *track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[len(q.tracks)-1]
}

// acquireChunk returns a chunk from the free recycler if one is
// available, otherwise allocates a new one of the queue's chunk size.
// Only the allocation path can fail.
func (q *queue) acquireChunk() (*chunk, error) {
	if q.numFreeChunk > 0 {
		c := q.freeChunks
		q.freeChunks = c.next
		q.numFreeChunk--
		resetChunk(c)
		return c, nil
	}
	data, err := q.allocate(q.chunkSize)
	if err != nil {
		return nil, err
	}
	return &chunk{data: data}, nil
}

// releaseChunk returns a drained chunk to the recycler, or drops it once
// the recycler is at capacity (cap defaults to 4, §3).
func (q *queue) releaseChunk(c *chunk) {
	if q.numFreeChunk < q.recyclerCap {
		resetChunk(c)
		c.next = q.freeChunks
		q.freeChunks = c
		q.numFreeChunk++
	}
}

// writingTrack returns the tail track usable for a write at spec,
// creating a new tail track if none exists, the tail is flushed, or its
// spec differs (§4.1 step 1).
func (q *queue) writingTrack(spec Spec) *track {
	t := q.tail()
	if t == nil || t.flushed || !t.spec.Equal(spec) {
		nt := newTrack(spec)
		q.tracks = append(q.tracks, nt)
		return nt
	}
	return t
}

// write implements §4.1's Write: atomic w.r.t. bytes queued. Either every
// byte of data becomes visible to readers, or (on allocation failure) the
// queue is left exactly as it was before the call.
func (q *queue) write(spec Spec, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	t := q.writingTrack(spec)
	wasNewTrack := t.tail == nil

	if wasNewTrack {
		c, err := q.acquireChunk()
		if err != nil {
			q.discardEmptyTrack(t, wasNewTrack)
			return ErrOutOfMemory
		}
		t.head = c
		t.tail = c
	}

	firstNewChunk := t.tail // rollback point: nothing written here yet belongs to this call
	preexistingTail := firstNewChunk.tail

	c := t.tail
	total := 0

	for total < len(data) {
		if c.full() {
			next, err := q.acquireChunk()
			if err != nil {
				q.rollbackWrite(t, firstNewChunk, preexistingTail)
				if wasNewTrack {
					q.discardEmptyTrack(t, wasNewTrack)
				}
				return ErrOutOfMemory
			}
			c.next = next
			c = next
		}
		n := c.write(data[total:])
		total += n
	}

	t.tail = c
	t.queuedBytes += total
	return nil
}

// rollbackWrite undoes a partially-completed write: detach every chunk
// allocated after firstNewChunk and restore firstNewChunk's tail cursor
// to its value before this call appended anything.
func (q *queue) rollbackWrite(t *track, firstNewChunk *chunk, preexistingTail int) {
	next := firstNewChunk.next
	firstNewChunk.next = nil
	firstNewChunk.tail = preexistingTail
	for next != nil {
		after := next.next
		next.next = nil
		next = after
	}
	t.tail = firstNewChunk
}

// discardEmptyTrack removes a track this call created but never
// successfully wrote anything into, keeping a failed Put a true no-op.
func (q *queue) discardEmptyTrack(t *track, wasNewTrack bool) {
	if !wasNewTrack || len(q.tracks) == 0 {
		return
	}
	if q.tracks[len(q.tracks)-1] == t {
		q.tracks = q.tracks[:len(q.tracks)-1]
	}
}

// buildChunkRing encodes data into a self-linked ring of fixed-chunkSize
// chunks (tail.next == head), touching no queue state, so a large Put can
// allocate and copy before the stream lock is reacquired (§4.1, §4.4's
// LargePutThresholdBytes path). data must be non-empty. Returns the
// ring's tail chunk, or an error from allocate with nothing left attached
// anywhere.
func buildChunkRing(chunkSize int, allocate func(int) ([]byte, error), data []byte) (*chunk, error) {
	var head, tail *chunk
	remaining := data
	for len(remaining) > 0 {
		buf, err := allocate(chunkSize)
		if err != nil {
			return nil, err
		}
		c := &chunk{data: buf}
		n := copy(c.data, remaining)
		c.tail = n
		remaining = remaining[n:]

		if head == nil {
			head = c
		} else {
			tail.next = c
		}
		tail = c
	}
	tail.next = head
	return tail, nil
}

// writeChunks splices a pre-built ring of chunks (built outside the
// stream lock for a large write, §4.1's bulk write path) onto the current
// writing track. The ring is a self-linked loop: tail.next == head.
func (q *queue) writeChunks(spec Spec, ringTail *chunk, totalLen int) error {
	head := ringTail.next
	ringTail.next = nil

	t := q.writingTrack(spec)
	if t.tail != nil {
		t.tail.next = head
	} else {
		t.head = head
	}
	t.tail = ringTail
	t.queuedBytes += totalLen
	return nil
}

// read copies exactly len(dst) bytes starting at the head track's head
// chunk, advancing cursors and recycling exhausted chunks. Precondition:
// the head track holds at least len(dst) live bytes.
func (q *queue) read(dst []byte) {
	if len(dst) == 0 {
		return
	}
	t := q.head()
	c := t.head
	total := 0

	for {
		n := c.read(dst[total:])
		total += n
		if total == len(dst) {
			break
		}
		next := c.next
		q.releaseChunk(c)
		c = next
	}

	t.head = c
	t.queuedBytes -= total
}

// peek copies up to len(dst) bytes from the head track without advancing
// any cursor, returning the number of bytes copied. Used to pre-load the
// resampler's right padding from not-yet-consumed data.
func (q *queue) peek(dst []byte) int {
	h := q.head()
	if h == nil {
		return 0
	}
	total := 0
	for c := h.head; c != nil && total < len(dst); c = c.next {
		total += c.peek(dst[total:])
	}
	return total
}

// flush marks the tail track flushed: it stops accepting writes but keeps
// serving reads until drained.
func (q *queue) flush() {
	if t := q.tail(); t != nil {
		t.flushed = true
	}
}

// popCurrent removes the head track; precondition: it is poppable
// (flushed and drained).
func (q *queue) popCurrent() {
	if len(q.tracks) == 0 {
		return
	}
	q.tracks = q.tracks[1:]
}

// clear drops every queued track and every free chunk, as if the queue
// had just been created.
func (q *queue) clear() {
	q.tracks = nil
	q.freeChunks = nil
	q.numFreeChunk = 0
}

// queuedBytes sums queued_bytes across every track, per §4.4's GetQueued.
func (q *queue) queuedBytes() int64 {
	var total int64
	for _, t := range q.tracks {
		total += int64(t.queuedBytes)
	}
	return total
}
