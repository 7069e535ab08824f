// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// hmEntry is the common hash-map-node header ("next pointer, key
// pointer") the data model calls for sharing between the section map
// and every table section's entry map. V is the payload: struct{} for
// the string interner (identity is the entry itself), *Section for
// the section map, *RegString for a table's value map.
type hmEntry[V any] struct {
	next *hmEntry[V]
	key  *RegString
	val  V
}

// LoadFactor is one of the three build-time choices the data model
// allows for a hash map's growth trigger.
type LoadFactor float64

const (
	LoadFactorDense   LoadFactor = 1.0
	LoadFactorSparse  LoadFactor = 0.5
	LoadFactorDefault LoadFactor = 0.8
)

type hashMap[V any] struct {
	buckets chunkList[*hmEntry[V]]
	count   int
	alpha   LoadFactor
}

func newHashMap[V any](a *Arena, alpha LoadFactor) (*hashMap[V], error) {
	if alpha <= 0 {
		alpha = LoadFactorDefault
	}
	m, err := Alloc[hashMap[V]](a)
	if err != nil {
		return nil, err
	}
	m.alpha = alpha
	return m, nil
}

func (m *hashMap[V]) cap() int { return m.buckets.nChunks * chunkLen }

func (m *hashMap[V]) bucketIndex(h uint32) int {
	c := m.cap()
	if c == 0 {
		return 0
	}
	// cap starts at one chunk and only doubles, so with a power-of-two
	// chunkLen it is a power of two and mask modulo is valid; the plain
	// modulo fallback keeps this correct for any other capacity.
	if c&(c-1) == 0 {
		return int(h) & (c - 1)
	}
	return int(h) % c
}

// find walks the bucket chain for h, returning the first entry for
// which match returns true.
func (m *hashMap[V]) find(h uint32, match func(*RegString) bool) *hmEntry[V] {
	if m.cap() == 0 {
		return nil
	}
	slot, ok := m.buckets.at(m.bucketIndex(h))
	if !ok {
		return nil
	}
	for e := *slot; e != nil; e = e.next {
		if match(e.key) {
			return e
		}
	}
	return nil
}

func identityMatch(want *RegString) func(*RegString) bool {
	return func(k *RegString) bool { return k == want }
}

func byteMatch(want []byte) func(*RegString) bool {
	return func(k *RegString) bool {
		return len(k.Bytes) == len(want) && string(k.Bytes) == string(want)
	}
}

// lookupBytesEntry finds a registered string with byte-equal content
// without requiring the caller already hold a *RegString.
func (m *hashMap[V]) lookupBytesEntry(h uint32, b []byte) *hmEntry[V] {
	return m.find(h, byteMatch(b))
}

// rehashIfNeeded grows the bucket chunk list by doubling and
// re-buckets every entry whose bucket changed. Must be called before
// any insertion that might push count over the threshold.
func (m *hashMap[V]) rehashIfNeeded(a *Arena) error {
	oldCap := m.cap()
	if oldCap == 0 {
		return nil
	}
	if float64(m.count) <= float64(m.alpha)*float64(oldCap) {
		return nil
	}
	return m.rehash(a)
}

func (m *hashMap[V]) rehash(a *Arena) error {
	oldCap := m.cap()
	preOffset := a.Offset()
	saved := m.buckets
	if err := m.buckets.growChunks(a, m.buckets.nChunks); err != nil {
		// Unlink any chunks growChunks managed to add before failing, so
		// the map stays valid at its previous capacity.
		if saved.tail != nil {
			saved.tail.next = nil
		}
		m.buckets = saved
		a.Rewind(preOffset)
		return ErrOutOfMemory
	}
	newCap := m.cap()
	for i := 0; i < oldCap; i++ {
		slot, _ := m.buckets.at(i)
		prev := (*hmEntry[V])(nil)
		e := *slot
		for e != nil {
			next := e.next
			newb := int(e.key.Hash) % newCap
			if newCap&(newCap-1) == 0 {
				newb = int(e.key.Hash) & (newCap - 1)
			}
			if newb == i {
				prev = e
				e = next
				continue
			}
			// Unlink from the old chain.
			if prev == nil {
				*slot = next
			} else {
				prev.next = next
			}
			// Append to the tail of the new bucket's chain.
			e.next = nil
			dstSlot, _ := m.buckets.at(newb)
			if *dstSlot == nil {
				*dstSlot = e
			} else {
				tail := *dstSlot
				for tail.next != nil {
					tail = tail.next
				}
				tail.next = e
			}
			e = next
		}
	}
	return nil
}

// ensureInit lazily allocates the first bucket chunk, per the data
// model's "lazy-initialize on first entry" rule.
func (m *hashMap[V]) ensureInit(a *Arena) error {
	if m.buckets.nChunks > 0 {
		return nil
	}
	return m.buckets.growChunks(a, 1)
}

// getOrCreate performs the data model's "insert or get": lookup
// first; on miss allocate a new entry, link it at the tail of its
// bucket's chain (preserving first-seen order), and report creation.
func (m *hashMap[V]) getOrCreate(a *Arena, key *RegString, match func(*RegString) bool) (entry *hmEntry[V], created bool, err error) {
	if err = m.ensureInit(a); err != nil {
		return nil, false, err
	}
	if err = m.rehashIfNeeded(a); err != nil {
		return nil, false, err
	}
	if found := m.find(key.Hash, match); found != nil {
		return found, false, nil
	}
	e, err := Alloc[hmEntry[V]](a)
	if err != nil {
		return nil, false, err
	}
	e.key = key
	idx := m.bucketIndex(key.Hash)
	slot, _ := m.buckets.at(idx)
	if *slot == nil {
		*slot = e
	} else {
		tail := *slot
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = e
	}
	m.count++
	return e, true, nil
}

// insertKeyOnly links a brand-new entry for key without first
// checking for a duplicate; used when the caller has already
// established (via a byte-content lookup) that no equal string is
// registered yet, so no *RegString exists yet to look up by identity.
func (m *hashMap[V]) insertKeyOnly(a *Arena, key *RegString) (*hmEntry[V], error) {
	if err := m.ensureInit(a); err != nil {
		return nil, err
	}
	if err := m.rehashIfNeeded(a); err != nil {
		return nil, err
	}
	e, err := Alloc[hmEntry[V]](a)
	if err != nil {
		return nil, err
	}
	e.key = key
	idx := m.bucketIndex(key.Hash)
	slot, _ := m.buckets.at(idx)
	if *slot == nil {
		*slot = e
	} else {
		tail := *slot
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = e
	}
	m.count++
	return e, nil
}

// iterator walks every entry across every bucket chain, in bucket
// order then chain order.
type hashMapIter[V any] struct {
	m      *hashMap[V]
	bucket int
	cur    *hmEntry[V]
}

func (m *hashMap[V]) iter() *hashMapIter[V] {
	return &hashMapIter[V]{m: m, bucket: -1}
}

func (it *hashMapIter[V]) Next() (*hmEntry[V], bool) {
	for {
		if it.cur != nil {
			e := it.cur
			it.cur = it.cur.next
			return e, true
		}
		it.bucket++
		if it.bucket >= it.m.cap() {
			return nil, false
		}
		slot, ok := it.m.buckets.at(it.bucket)
		if !ok {
			return nil, false
		}
		it.cur = *slot
	}
}
