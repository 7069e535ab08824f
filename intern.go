// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// RegString is an immutable, interned byte string. Two byte-equal
// strings interned in the same Data are the same *RegString — callers
// compare them by identity, not by content. Produced only by the
// interner; never freed piecewise.
type RegString struct {
	Bytes []byte
	Hash  uint32
}

// String returns the content as a Go string. The conversion copies.
func (r *RegString) String() string {
	if r == nil {
		return ""
	}
	return string(r.Bytes)
}

// hashBytes computes the FNV-like recurrence the hash map depends on.
// This exact recurrence must be preserved bit-for-bit: hashes are
// cached in registered strings and the map's bucket placement depends
// on it.
func hashBytes(b []byte) uint32 {
	h := uint32(len(b))
	for i := len(b) - 1; i >= 0; i-- {
		h ^= (h << 5) + (h >> 2) + uint32(b[i])
	}
	return h
}

// intern deduplicates b against the string table, copying b into the
// arena on a miss.
func (d *Data) intern(b []byte) (*RegString, error) {
	h := hashBytes(b)
	if e := d.strings.lookupBytesEntry(h, b); e != nil {
		return e.key, nil
	}
	buf, err := d.arena.AllocBytes(len(b))
	if err != nil {
		return nil, err
	}
	copy(buf, b)
	rs, err := Alloc[RegString](d.arena)
	if err != nil {
		return nil, err
	}
	rs.Bytes = buf
	rs.Hash = h
	if _, err := d.strings.insertKeyOnly(d.arena, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// internMove completes the temporary-string protocol's commit step:
// the bytes in raw already sit at the arena's pre-tempString cursor
// (see tempstring.go) and become the interned string without an
// intervening copy. On a duplicate the bytes are left behind (dead
// arena space, rewound by the caller per the temporary-string discard
// rule) and the existing *RegString is returned with wasNew = false.
func (d *Data) internMove(raw []byte) (rs *RegString, wasNew bool, err error) {
	h := hashBytes(raw)
	if e := d.strings.lookupBytesEntry(h, raw); e != nil {
		return e.key, false, nil
	}
	rs, err = Alloc[RegString](d.arena)
	if err != nil {
		return nil, false, err
	}
	rs.Bytes = raw
	rs.Hash = h
	if _, err := d.strings.insertKeyOnly(d.arena, rs); err != nil {
		return nil, false, err
	}
	return rs, true, nil
}
