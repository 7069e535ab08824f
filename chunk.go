// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// chunkLen is the fixed fanout of a chunk: the small constant "C"
// from the data model, a power of two so that index-within-chunk can
// use a mask instead of a modulo.
const chunkLen = 64

// chunk is a fixed-fanout singly-linked node: the substrate for both
// hash-map bucket arrays and array-section element storage. Every
// chunk is arena-allocated and never relocated.
type chunk[T any] struct {
	next *chunk[T]
	slot [chunkLen]T
}

func newChunk[T any](a *Arena) (*chunk[T], error) {
	return Alloc[chunk[T]](a)
}

// chunkList tracks a singly-linked chain of chunks plus the tail
// pointer needed for O(1) append, and the chunk count (capacity in
// units of chunkLen).
type chunkList[T any] struct {
	head    *chunk[T]
	tail    *chunk[T]
	nChunks int
}

// growChunks appends n fresh zeroed chunks to the tail, used both for
// lazy first-use initialization and for hash-map rehash-by-doubling.
func (c *chunkList[T]) growChunks(a *Arena, n int) error {
	for i := 0; i < n; i++ {
		ch, err := newChunk[T](a)
		if err != nil {
			return err
		}
		if c.head == nil {
			c.head = ch
		} else {
			c.tail.next = ch
		}
		c.tail = ch
		c.nChunks++
	}
	return nil
}

// at returns a pointer to the slot holding the i-th capacity slot
// (walking chunks i/chunkLen hops), or false if i is out of the
// allocated chunk range.
func (c *chunkList[T]) at(i int) (*T, bool) {
	if i < 0 || c.nChunks == 0 || i >= c.nChunks*chunkLen {
		return nil, false
	}
	n := i / chunkLen
	s := i % chunkLen
	ch := c.head
	for ; n > 0; n-- {
		ch = ch.next
	}
	return &ch.slot[s], true
}

// appendSlot writes v into the next free slot (growing by one chunk
// if the tail is full) and returns its absolute index.
func (c *chunkList[T]) appendSlot(a *Arena, count int, v T) (int, error) {
	if count >= c.nChunks*chunkLen {
		if err := c.growChunks(a, 1); err != nil {
			return 0, err
		}
	}
	p, ok := c.at(count)
	if !ok {
		return 0, ErrOutOfMemory
	}
	*p = v
	return count, nil
}
