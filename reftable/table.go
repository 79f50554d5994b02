// Package reftable implements the referent-indexed directory at the
// heart of the weak-reference table: an open-addressed hash table whose
// buckets are entry.Entry values keyed by the disguised referent
// pointer.
package reftable

import (
	"log"

	"github.com/intuitivelabs/weakref/disguise"
	"github.com/intuitivelabs/weakref/entry"
)

// initialCap is the capacity a Table grows to on its first insert.
const initialCap = 64

// loadNumerator/loadDenominator mirror package entry's 3/4 max load
// bound.
const (
	loadNumerator   = 3
	loadDenominator = 4
)

// shrinkFloor is the smallest capacity eligible for compaction; Tables
// never shrink below it.
const shrinkFloor = 1024

// shrinkNumerator/shrinkDenominator is the 1/16 load bound that
// triggers compaction.
const (
	shrinkNumerator   = 1
	shrinkDenominator = 16
)

// OnCorruption is invoked when a lookup probe returns to its own
// starting bucket without finding either a match or an empty slot --
// the probe chain is full while the load bound says it shouldn't be.
// The default aborts the process (spec.md §7, "structural corruption").
var OnCorruption = func(format string, args ...interface{}) {
	log.Panicf(format, args...)
}

// Stats mirrors calltr.HStats/AllocStats: point-in-time counters a
// caller can sample for diagnostics, without holding the table lock
// across the call (the caller's lock already serializes access).
type Stats struct {
	Fill            uint32
	Capacity        uint32
	MaxDisplacement uint32
	Grows           uint64
	Shrinks         uint64
	Promotions      uint64
}

// Table is the referent-indexed directory. The zero Table is empty and
// ready to use. All methods are single-threaded: the caller holds
// whatever lock guards this particular Table instance (see package
// striped for a ready-made striping helper).
type Table struct {
	buckets []entry.Entry
	mask    uint32
	fill    uint32
	maxDisp uint32

	grows      uint64
	shrinks    uint64
	promotions uint64
}

// Stats returns a snapshot of t's bookkeeping counters.
func (t *Table) Stats() Stats {
	var cap uint32
	if len(t.buckets) > 0 {
		cap = t.mask + 1
	}
	return Stats{
		Fill:            t.fill,
		Capacity:        cap,
		MaxDisplacement: t.maxDisp,
		Grows:           t.grows,
		Shrinks:         t.shrinks,
		Promotions:      t.promotions,
	}
}

func (t *Table) hash(referent disguise.Word) uint32 {
	return entry.HashWord(referent) & t.mask
}

// Lookup finds the Entry for referent. The returned pointer aliases
// t's storage and is valid only until the next structural mutation of
// t (Insert/Remove/resize).
func (t *Table) Lookup(referent disguise.Word) *entry.Entry {
	if len(t.buckets) == 0 {
		return nil
	}
	start := t.hash(referent)
	idx := start
	var disp uint32
	for disp <= t.maxDisp {
		b := &t.buckets[idx]
		if b.Referent == referent {
			return b
		}
		idx = (idx + 1) & t.mask
		if idx == start {
			OnCorruption("reftable: Lookup: probe wrapped the whole table "+
				"(capacity %d) looking for referent %#x\n",
				t.mask+1, referent)
			return nil
		}
		disp++
	}
	return nil
}

// Insert adds a fully-formed entry for a referent not already present.
// Caller must ensure the referent is absent (MaybeGrow should already
// have been called on paths that may cross the load threshold).
func (t *Table) Insert(e entry.Entry) {
	start := t.hash(e.Referent)
	idx := start
	var disp uint32
	for !t.buckets[idx].Referent.IsNull() {
		idx = (idx + 1) & t.mask
		if idx == start {
			OnCorruption("reftable: Insert: probe wrapped the whole table "+
				"(capacity %d) looking for a slot for referent %#x\n",
				t.mask+1, e.Referent)
			return
		}
		disp++
	}
	t.buckets[idx] = e
	t.fill++
	if disp > t.maxDisp {
		t.maxDisp = disp
	}
}

// Remove deletes the entry at e's address (found via Lookup by the
// caller) from t: it zeroes the bucket, decrements fill and triggers
// MaybeCompact. e must be a pointer previously returned by t.Lookup on
// this same Table.
func (t *Table) Remove(e *entry.Entry) {
	*e = entry.Entry{}
	t.fill--
	t.MaybeCompact()
}

// MaybeGrow resizes t if its load has reached 3/4 capacity. The first
// resize lands on initialCap; subsequent ones double. Callers insert
// paths that may cross the threshold call this before Insert.
func (t *Table) MaybeGrow() {
	if len(t.buckets) == 0 {
		t.resize(initialCap)
		return
	}
	capacity := uint32(len(t.buckets))
	if t.fill*loadDenominator >= capacity*loadNumerator {
		t.resize(capacity * 2)
	}
}

// MaybeCompact shrinks t to capacity/8 if capacity >= shrinkFloor and
// fill <= 1/16 of capacity. An 8x shrink at 1/16 fill yields at most
// 1/2 fill afterward, preserving the 3/4 load bound.
func (t *Table) MaybeCompact() {
	capacity := uint32(len(t.buckets))
	if capacity < shrinkFloor {
		return
	}
	if t.fill*shrinkDenominator <= capacity*shrinkNumerator {
		t.resize(capacity / 8)
	}
}

// resize reallocates the bucket array to newCap and reinserts every
// live entry by value (its inline array, or its out-of-line bucket
// slice header, is copied as-is -- the referrer storage itself is never
// reallocated by an outer resize).
func (t *Table) resize(newCap uint32) {
	old := t.buckets
	wasEmpty := len(old) == 0
	t.buckets = make([]entry.Entry, newCap)
	t.mask = newCap - 1
	t.fill = 0
	t.maxDisp = 0
	for i := range old {
		if !old[i].Referent.IsNull() {
			t.Insert(old[i])
		}
	}
	if wasEmpty {
		// first-ever allocation, not a grow/shrink event
		return
	}
	if newCap > uint32(len(old)) {
		t.grows++
	} else {
		t.shrinks++
	}
}

// ForEach calls f for every live entry in t, in bucket order. f must
// not mutate t's structure (no Insert/Remove) from within the callback;
// it may freely mutate the Entry's own referrer slots.
func (t *Table) ForEach(f func(e *entry.Entry)) {
	for i := range t.buckets {
		if !t.buckets[i].Referent.IsNull() {
			f(&t.buckets[i])
		}
	}
}

// NotePromotion is called by callers (package weakref) when an Entry
// transitions inline -> out-of-line, purely for Stats bookkeeping; it
// has no effect on Table structure.
func (t *Table) NotePromotion() {
	t.promotions++
}
