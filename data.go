// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// Data is the top-level container: it owns the arena, the section
// hash map, and the string intern hash map. Every Section and
// RegString it hands out lives for Data's own lifetime and is never
// relocated.
type Data struct {
	arena      *Arena
	sections   *hashMap[*Section]
	strings    *hashMap[struct{}]
	loadFactor LoadFactor
}

// NewData creates a Data whose entire memory is carved from buf. The
// Data header itself is allocated from buf, so usable capacity is
// slightly less than len(buf).
func NewData(buf []byte) (*Data, error) {
	return NewDataWithLoadFactor(buf, LoadFactorDefault)
}

// NewDataWithLoadFactor is NewData with an explicit hash-map growth
// threshold.
func NewDataWithLoadFactor(buf []byte, alpha LoadFactor) (*Data, error) {
	a := newArena(buf)
	d, err := Alloc[Data](a)
	if err != nil {
		return nil, err
	}
	d.arena = a
	d.loadFactor = alpha
	sections, err := newHashMap[*Section](a, alpha)
	if err != nil {
		return nil, err
	}
	strings, err := newHashMap[struct{}](a, alpha)
	if err != nil {
		return nil, err
	}
	d.sections = sections
	d.strings = strings
	return d, nil
}

// MemCap returns the total backing-buffer size.
func (d *Data) MemCap() int { return d.arena.Cap() }

// MemUsed returns the number of bytes allocated so far (the arena
// cursor).
func (d *Data) MemUsed() int { return d.arena.Used() }

// SectionCount returns the number of sections.
func (d *Data) SectionCount() int { return d.sections.count }

// AddSection creates a new, empty section of the given kind. Fails
// with ErrInvalidKey on an empty name, or ErrSectionNameReused if a
// section by that name already exists.
func (d *Data) AddSection(kind SectionKind, name string) (*Section, error) {
	if name == "" {
		return nil, ErrInvalidKey
	}
	rs, err := d.intern([]byte(name))
	if err != nil {
		return nil, err
	}
	return d.addSectionRS(kind, rs)
}

func (d *Data) addSectionRS(kind SectionKind, rs *RegString) (*Section, error) {
	entry, created, err := d.sections.getOrCreate(d.arena, rs, identityMatch(rs))
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrSectionNameReused
	}
	sec, err := Alloc[Section](d.arena)
	if err != nil {
		return nil, err
	}
	sec.name = rs
	sec.kind = kind
	if kind == SectionArray {
		if err := sec.appendRowIndex(d.arena, 0); err != nil {
			return nil, err
		}
	}
	entry.val = sec
	return sec, nil
}

// GetSection looks up a section by name.
func (d *Data) GetSection(name string) (*Section, bool) {
	h := hashBytes([]byte(name))
	e := d.sections.find(h, byteMatch([]byte(name)))
	if e == nil {
		return nil, false
	}
	return e.val, true
}

// SectionIter walks every section in implementation-defined order.
type SectionIter struct {
	it *hashMapIter[*Section]
	e  *hmEntry[*Section]
}

func (d *Data) Sections() *SectionIter {
	return &SectionIter{it: d.sections.iter()}
}

func (it *SectionIter) Next() bool {
	e, ok := it.it.Next()
	it.e = e
	return ok
}

func (it *SectionIter) Section() *Section { return it.e.val }

// CopyInto merges src's sections and entries into dst. Resolves the
// "data_copy" open question per the design notes: a section of src
// that dst lacks is added to dst; a section dst already holds under
// the same name and kind has src's entries merged into it, whatever
// overwriteConflicts says; a same-name section of the other kind is
// skipped when overwriteConflicts is false and makes CopyInto return
// ErrSectionType when it is true. For each table entry, insertion is
// attempted and a TABLE_KEY_REUSED conflict is skipped or, if
// overwriteConflicts, the value is overwritten in place. Array
// sections have no notion of key conflict: their elements (and row
// breaks) are always appended.
func (dst *Data) CopyInto(src *Data, overwriteConflicts bool) error {
	for it := src.Sections(); it.Next(); {
		srcSec := it.Section()
		dstSec, ok := dst.GetSection(srcSec.name.String())
		if !ok {
			var err error
			dstSec, err = dst.AddSection(srcSec.kind, srcSec.name.String())
			if err != nil {
				return err
			}
		} else if dstSec.kind != srcSec.kind {
			if !overwriteConflicts {
				continue
			}
			return ErrSectionType
		}
		switch srcSec.kind {
		case SectionTable:
			for ti := srcSec.Tables(); ti.Next(); {
				k, v := ti.Key().String(), ti.Value().String()
				err := dst.AddTableEntry(dstSec, k, v)
				if err == ErrTableKeyReused {
					if overwriteConflicts {
						vrs, err := dst.intern([]byte(v))
						if err != nil {
							return err
						}
						dstSec.setTableEntryValue(k, vrs)
					}
					continue
				}
				if err != nil {
					return err
				}
			}
		case SectionArray:
			firstOfRow := map[int]bool{}
			for n := srcSec.rowHead; n != nil; n = n.next {
				firstOfRow[n.index] = true
			}
			for ai := srcSec.Array(); ai.Next(); {
				err := dst.ArrayAppend(dstSec, ai.Value().String(), firstOfRow[ai.Index()] && ai.Index() > 0)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
