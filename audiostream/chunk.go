// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package audiostream

// chunk is a fixed-capacity byte buffer with head/tail cursors: bytes in
// [head, tail) are live, [tail, cap) is fill space, [0, head) is consumed
// space reclaimed on pop. chunks are linked into a track in insertion
// order and recycled through the queue's free list (§3, §4.1).
type chunk struct {
	data []byte
	head int
	tail int
	next *chunk
}

// newChunk allocates a chunk with the given byte capacity.
func newChunk(capacity int) *chunk {
	return &chunk{data: make([]byte, capacity)}
}

// resetChunk clears cursors and detaches the chunk, making it ready for
// reuse from the free recycler. Mirrors ResetAudioChunk in §3.
func resetChunk(c *chunk) {
	c.head = 0
	c.tail = 0
	c.next = nil
}

func (c *chunk) capacity() int {
	return len(c.data)
}

func (c *chunk) freeSpace() int {
	return len(c.data) - c.tail
}

func (c *chunk) liveBytes() int {
	return c.tail - c.head
}

func (c *chunk) full() bool {
	return c.tail == len(c.data)
}

func (c *chunk) drained() bool {
	return c.head == c.tail
}

// write copies as much of src into the chunk's free space as fits,
// returning the number of bytes copied.
func (c *chunk) write(src []byte) int {
	n := copy(c.data[c.tail:], src)
	c.tail += n
	return n
}

// read copies up to len(dst) live bytes out, advancing head, and returns
// the number of bytes copied.
func (c *chunk) read(dst []byte) int {
	n := copy(dst, c.data[c.head:c.tail])
	c.head += n
	return n
}

// peek copies up to len(dst) live bytes out without advancing head.
func (c *chunk) peek(dst []byte) int {
	return copy(dst, c.data[c.head:c.tail])
}
