// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// tempString builds a byte string directly at the arena's current
// cursor so that, on commit, it is already in place for the
// interner's move path. Its only legal operations are appendByte,
// commit, and discard — by construction there is nowhere in this type
// to slip in an intervening allocation on the live path, which is the
// encapsulation the design notes call for.
type tempString struct {
	a      *Arena
	start  uintptr
	n      int
	sealed bool
}

func beginTempString(a *Arena) *tempString {
	return &tempString{a: a, start: a.Offset()}
}

// appendByte writes b into the arena's tail and advances past it.
// Returns ErrOutOfMemory if the arena has no room left.
func (t *tempString) appendByte(b byte) error {
	tail := t.a.tail()
	if len(tail) == 0 {
		return ErrOutOfMemory
	}
	tail[0] = b
	t.a.commit(1)
	t.n++
	return nil
}

// bytes returns the bytes built so far, still living at the arena
// cursor (not yet committed to the interner).
func (t *tempString) bytes() []byte {
	return t.a.buf[t.start : t.start+uintptr(t.n)]
}

func (t *tempString) len() int { return t.n }

// commit interns the built bytes via the move path. On a duplicate
// the cursor is rewound, since the duplicate wins.
func (t *tempString) commit(d *Data) (*RegString, error) {
	raw := t.bytes()
	rs, wasNew, err := d.internMove(raw)
	if err != nil {
		return nil, err
	}
	if !wasNew {
		t.a.Rewind(t.start)
	}
	t.sealed = true
	return rs, nil
}

// discard abandons the string under construction, rewinding the
// cursor to the pre-build offset.
func (t *tempString) discard() {
	t.a.Rewind(t.start)
	t.sealed = true
}
