// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

import "unsafe"

// Arena is a single fixed-capacity bump region. Every other entity in
// a Data lives inside one Arena. There is no free list; the cursor
// only ever moves forward, except through Rewind (used by the
// temporary-string protocol in tempstring.go and by a failed hash-map
// rehash).
type Arena struct {
	buf    []byte
	offset uintptr
}

// newArena wraps buf as a bump region. The caller retains ownership
// of buf; nothing is copied.
func newArena(buf []byte) *Arena {
	return &Arena{buf: buf}
}

// Cap returns the total capacity of the backing buffer, including
// whatever has already been allocated from it (such as the Data
// header itself).
func (a *Arena) Cap() int { return len(a.buf) }

// Used returns the number of bytes allocated so far.
func (a *Arena) Used() int { return int(a.offset) }

func (a *Arena) base() uintptr {
	if len(a.buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&a.buf[0]))
}

// alloc aligns the cursor up to align, advances it by size, and
// returns a pointer to the old aligned cursor. It fails without
// mutating the cursor if that would exceed capacity.
func (a *Arena) alloc(size, align uintptr) (unsafe.Pointer, error) {
	if align == 0 {
		align = 1
	}
	base := a.base()
	cur := base + a.offset
	aligned := (cur + align - 1) &^ (align - 1)
	alignedOffset := aligned - base
	if alignedOffset+size > uintptr(len(a.buf)) || alignedOffset < a.offset {
		return nil, ErrOutOfMemory
	}
	a.offset = alignedOffset + size
	return unsafe.Pointer(&a.buf[alignedOffset]), nil
}

// Alloc allocates and zero-values one T from the arena.
func Alloc[T any](a *Arena) (*T, error) {
	var zero T
	align := unsafe.Alignof(zero)
	size := unsafe.Sizeof(zero)
	p, err := a.alloc(size, align)
	if err != nil {
		return nil, err
	}
	v := (*T)(p)
	*v = zero
	return v, nil
}

// AllocBytes allocates an n-byte, byte-aligned slice backed by the
// arena.
func (a *Arena) AllocBytes(n int) ([]byte, error) {
	p, err := a.alloc(uintptr(n), 1)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return unsafe.Slice((*byte)(p), n), nil
}

// tail returns the unused region of the arena, from the current
// cursor to capacity, without advancing the cursor. Used by the
// temporary-string protocol to build a string in place.
func (a *Arena) tail() []byte {
	return a.buf[a.offset:]
}

// commit advances the cursor by n bytes, which must already have been
// written into the slice returned by tail.
func (a *Arena) commit(n int) {
	a.offset += uintptr(n)
}

// Offset returns the current cursor position, for later Rewind.
func (a *Arena) Offset() uintptr { return a.offset }

// Rewind resets the cursor to a previously observed offset. Only the
// temporary-string protocol and the rollback of a failed hash-map
// rehash call this; rewinding past live allocations corrupts the
// arena.
func (a *Arena) Rewind(off uintptr) { a.offset = off }

// Owns reports whether ptr falls within this arena's backing buffer.
func (a *Arena) Owns(ptr unsafe.Pointer) bool {
	if len(a.buf) == 0 {
		return false
	}
	p := uintptr(ptr)
	base := a.base()
	return p >= base && p < base+uintptr(len(a.buf))
}
