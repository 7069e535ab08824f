// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// SectionKind distinguishes the two section variants. An explicit tag
// is kept (rather than inferring kind from whether table/elems is
// populated) per the design notes' guidance to avoid invalid states.
type SectionKind int

const (
	SectionTable SectionKind = iota
	SectionArray
)

func (k SectionKind) String() string {
	if k == SectionArray {
		return "array"
	}
	return "table"
}

// rowIndexNode marks the first absolute element index of one array
// row. The first node (added when an array section is created) always
// has index 0: "row 0 starts at element 0."
type rowIndexNode struct {
	next  *rowIndexNode
	index int
}

// Section is a named table or array living under a Data's section
// map.
type Section struct {
	name *RegString
	kind SectionKind

	// Table variant.
	table *hashMap[*RegString]

	// Array variant.
	elems     chunkList[*RegString]
	elemCount int
	rowHead   *rowIndexNode
	rowTail   *rowIndexNode
}

// Name returns the section's registered name.
func (s *Section) Name() *RegString { return s.name }

// Kind reports whether s is a table or an array.
func (s *Section) Kind() SectionKind { return s.kind }

func (s *Section) appendRowIndex(a *Arena, idx int) error {
	n, err := Alloc[rowIndexNode](a)
	if err != nil {
		return err
	}
	n.index = idx
	if s.rowHead == nil {
		s.rowHead = n
	} else {
		s.rowTail.next = n
	}
	s.rowTail = n
	return nil
}

// AddTableEntry inserts key=value into a table section. Fails with
// ErrSectionType against an array section, and with ErrTableKeyReused
// if key is already present — table entries are append-only; a
// repeated key is never silently overwritten by the ordinary API (see
// Data.CopyInto for the one place overwriting is offered, opt-in).
func (d *Data) AddTableEntry(s *Section, key, value string) error {
	krs, err := d.intern([]byte(key))
	if err != nil {
		return err
	}
	vrs, err := d.intern([]byte(value))
	if err != nil {
		return err
	}
	return d.addTableEntryRS(s, krs, vrs)
}

// addTableEntryRS is AddTableEntry for callers (the parser) that
// already hold registered-string key/value pointers, avoiding a
// redundant copy-then-reintern round trip.
func (d *Data) addTableEntryRS(s *Section, key, value *RegString) error {
	if s.kind != SectionTable {
		return ErrSectionType
	}
	if s.table == nil {
		tbl, err := newHashMap[*RegString](d.arena, d.loadFactor)
		if err != nil {
			return err
		}
		s.table = tbl
	}
	entry, created, err := s.table.getOrCreate(d.arena, key, identityMatch(key))
	if err != nil {
		return err
	}
	if !created {
		return ErrTableKeyReused
	}
	entry.val = value
	return nil
}

// GetTableEntry looks up key in a table section.
func (s *Section) GetTableEntry(key string) (*RegString, bool) {
	if s.kind != SectionTable || s.table == nil {
		return nil, false
	}
	h := hashBytes([]byte(key))
	e := s.table.find(h, byteMatch([]byte(key)))
	if e == nil {
		return nil, false
	}
	return e.val, true
}

// setTableEntryValue overwrites the value for an existing key,
// in place, without disturbing the entry's position in its bucket
// chain. Used only by Data.CopyInto's overwrite-conflicts path.
func (s *Section) setTableEntryValue(key string, v *RegString) bool {
	if s.kind != SectionTable || s.table == nil {
		return false
	}
	h := hashBytes([]byte(key))
	e := s.table.find(h, byteMatch([]byte(key)))
	if e == nil {
		return false
	}
	e.val = v
	return true
}

// ArrayAppend pushes value onto an array section. newRow marks value
// as the first element of a new row; it is ignored for the very
// first element overall, since row 0's start (index 0) is already
// recorded by the sentinel added at section creation.
func (d *Data) ArrayAppend(s *Section, value string, newRow bool) error {
	vrs, err := d.intern([]byte(value))
	if err != nil {
		return err
	}
	return d.arrayAppendRS(s, vrs, newRow)
}

// arrayAppendRS is ArrayAppend for callers that already hold a
// registered-string value.
func (d *Data) arrayAppendRS(s *Section, value *RegString, newRow bool) error {
	if s.kind != SectionArray {
		return ErrSectionType
	}
	idx, err := s.elems.appendSlot(d.arena, s.elemCount, value)
	if err != nil {
		return err
	}
	if newRow && s.elemCount > 0 {
		if err := s.appendRowIndex(d.arena, idx); err != nil {
			return err
		}
	}
	s.elemCount++
	return nil
}

// ElemCount returns the number of elements in an array section.
func (s *Section) ElemCount() int { return s.elemCount }

// Array2DSize reports the row count and the max (jagged) or min
// (non-jagged) column count across rows.
func (s *Section) Array2DSize(jagged bool) (rows, cols int, err error) {
	if s.kind != SectionArray {
		return 0, 0, ErrSectionType
	}
	var starts []int
	for n := s.rowHead; n != nil; n = n.next {
		starts = append(starts, n.index)
	}
	rows = len(starts)
	if rows == 0 {
		if jagged {
			return 0, 0, nil
		}
		return 0, s.elemCount, nil
	}
	best := -1
	for i, start := range starts {
		var end int
		if i == rows-1 {
			end = s.elemCount
		} else {
			end = starts[i+1]
		}
		n := end - start
		if best < 0 {
			best = n
			continue
		}
		if jagged && n > best {
			best = n
		}
		if !jagged && n < best {
			best = n
		}
	}
	return rows, best, nil
}

// ArrayGet2D fetches the value at (row, col) in 2D row/column terms.
func (s *Section) ArrayGet2D(row, col int) (*RegString, error) {
	if s.kind != SectionArray {
		return nil, ErrSectionType
	}
	n := s.rowHead
	for i := 0; i < row; i++ {
		if n == nil {
			return nil, ErrNotFound
		}
		n = n.next
	}
	if n == nil {
		return nil, ErrNotFound
	}
	abs := n.index + col
	if n.next != nil && abs >= n.next.index {
		return nil, ErrNotFound
	}
	if abs >= s.elemCount {
		return nil, ErrNotFound
	}
	p, ok := s.elems.at(abs)
	if !ok {
		return nil, ErrNotFound
	}
	return *p, nil
}

// TableIter walks a table section's entries in implementation-defined
// (bucket-chain) order.
type TableIter struct {
	it *hashMapIter[*RegString]
	e  *hmEntry[*RegString]
}

func (s *Section) Tables() *TableIter {
	if s.table == nil {
		return &TableIter{it: &hashMapIter[*RegString]{bucket: -1, m: &hashMap[*RegString]{}}}
	}
	return &TableIter{it: s.table.iter()}
}

func (it *TableIter) Next() bool {
	e, ok := it.it.Next()
	it.e = e
	return ok
}

func (it *TableIter) Key() *RegString   { return it.e.key }
func (it *TableIter) Value() *RegString { return it.e.val }

// ArrayIter walks an array section's elements in insertion order.
type ArrayIter struct {
	s   *Section
	idx int
	cur *RegString
}

func (s *Section) Array() *ArrayIter {
	return &ArrayIter{s: s, idx: -1}
}

func (it *ArrayIter) Next() bool {
	it.idx++
	if it.idx >= it.s.elemCount {
		return false
	}
	p, ok := it.s.elems.at(it.idx)
	if !ok {
		return false
	}
	it.cur = *p
	return true
}

func (it *ArrayIter) Value() *RegString { return it.cur }
func (it *ArrayIter) Index() int        { return it.idx }
