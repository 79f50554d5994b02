// Package entry implements the per-referent referrer set: the Entry
// type from the zeroing weak-reference table. An Entry starts as a
// fixed 4-slot inline array and promotes itself, once, to an
// out-of-line open-addressed hash table when a 5th referrer arrives.
// There is no reverse transition.
package entry

import (
	"log"

	"github.com/intuitivelabs/weakref/disguise"
)

// InlineSlots is the fixed size of the inline referrer array.
const InlineSlots = 4

// initialOutOfLineCap is the capacity an Entry is promoted to directly
// on its 5th insertion (see Append), short-circuiting the
// promote-to-4-then-grow-to-8 dance described in the design notes.
const initialOutOfLineCap = 8

// loadNumerator/loadDenominator express the 3/4 max load bound shared
// with package reftable's Table.
const (
	loadNumerator   = 3
	loadDenominator = 4
)

// OnCorruption is invoked when a probe loop would otherwise wrap around
// the whole out-of-line capacity without finding a slot -- something the
// fill/load invariants guarantee cannot happen. The default aborts the
// process, in the spirit of the teacher's log.Panicf use for detected
// invariant violations (calltr/alloc.go FreeCallEntry/FreeRegEntry).
var OnCorruption = func(format string, args ...interface{}) {
	log.Panicf(format, args...)
}

// Entry holds every referrer address currently aimed at one referent.
// The Referent field is the Entry's key when it lives inside a
// reftable.Table bucket; disguise.Null marks a Referent-less, i.e.
// empty, bucket.
type Entry struct {
	Referent disguise.Word

	outOfLine bool
	inline    [InlineSlots]disguise.Word

	buckets []disguise.Word
	mask    uint32
	fill    uint32
	maxDisp uint32
}

// IsEmpty reports whether e holds no referrers.
func (e *Entry) IsEmpty() bool {
	if e.outOfLine {
		return e.fill == 0
	}
	for _, s := range e.inline {
		if !s.IsNull() {
			return false
		}
	}
	return true
}

// OutOfLine reports whether e has been promoted to the out-of-line
// representation. Exposed for tests and debug introspection.
func (e *Entry) OutOfLine() bool { return e.outOfLine }

// Fill returns the number of live referrers.
func (e *Entry) Fill() uint32 {
	if e.outOfLine {
		return e.fill
	}
	var n uint32
	for _, s := range e.inline {
		if !s.IsNull() {
			n++
		}
	}
	return n
}

// Cap returns the out-of-line capacity, or 0 while still inline.
func (e *Entry) Cap() uint32 {
	if !e.outOfLine {
		return 0
	}
	return e.mask + 1
}

// MaxDisplacement returns the recorded maximum probe displacement for
// the out-of-line representation (0 while inline).
func (e *Entry) MaxDisplacement() uint32 { return e.maxDisp }

// Append adds referrer to e. The caller guarantees referrer is not
// already present (duplicates are never checked for, per spec).
func (e *Entry) Append(referrer disguise.Word) {
	if !e.outOfLine {
		for i := range e.inline {
			if e.inline[i].IsNull() {
				e.inline[i] = referrer
				return
			}
		}
		e.promote(referrer)
		return
	}
	if e.fill*loadDenominator >= uint32(len(e.buckets))*loadNumerator {
		e.grow(uint32(len(e.buckets)) * 2)
	}
	e.insertOutOfLine(referrer)
}

// promote transitions e from inline (all 4 slots full) to out-of-line,
// landing directly at capacity 8 with the prior 4 referrers plus the
// new one -- the "may short-circuit" alternative the design notes call
// out, instead of first promoting to capacity 4 (already >= 3/4 load)
// and relying on the generic grow path to reach 8.
func (e *Entry) promote(newReferrer disguise.Word) {
	old := e.inline
	e.buckets = make([]disguise.Word, initialOutOfLineCap)
	e.mask = initialOutOfLineCap - 1
	e.fill = 0
	e.maxDisp = 0
	e.outOfLine = true
	for _, v := range old {
		e.insertOutOfLine(v)
	}
	e.insertOutOfLine(newReferrer)
}

// insertOutOfLine probes from hash(referrer)&mask, linear-probing to the
// first empty slot. Caller must ensure there is room (Append grows
// first).
func (e *Entry) insertOutOfLine(referrer disguise.Word) {
	idx := HashWord(referrer) & e.mask
	var disp uint32
	for !e.buckets[idx].IsNull() {
		idx = (idx + 1) & e.mask
		disp++
		if disp > e.mask {
			OnCorruption("entry: insertOutOfLine: probe wrapped capacity %d "+
				"looking for a slot for referrer %#x\n", e.mask+1, referrer)
			return
		}
	}
	e.buckets[idx] = referrer
	e.fill++
	if disp > e.maxDisp {
		e.maxDisp = disp
	}
}

// grow reallocates the out-of-line bucket array to newCap and reinserts
// every live referrer, exactly as reftable.Table's resize does for
// referents.
func (e *Entry) grow(newCap uint32) {
	old := e.buckets
	e.buckets = make([]disguise.Word, newCap)
	e.mask = newCap - 1
	e.fill = 0
	e.maxDisp = 0
	for _, v := range old {
		if !v.IsNull() {
			e.insertOutOfLine(v)
		}
	}
}

// RemoveResult is the outcome of Entry.Remove.
type RemoveResult uint8

const (
	// Removed: referrer was found and zeroed.
	Removed RemoveResult = iota
	// NotFound: referrer was not present in e; a misuse diagnostic
	// should be raised by the caller (package weakref owns logging).
	NotFound
)

// Remove deletes referrer from e if present.
func (e *Entry) Remove(referrer disguise.Word) RemoveResult {
	if !e.outOfLine {
		for i := range e.inline {
			if e.inline[i] == referrer {
				e.inline[i] = disguise.Null
				return Removed
			}
		}
		return NotFound
	}
	idx := HashWord(referrer) & e.mask
	var disp uint32
	for disp <= e.maxDisp {
		if e.buckets[idx] == referrer {
			e.buckets[idx] = disguise.Null
			e.fill--
			return Removed
		}
		idx = (idx + 1) & e.mask
		disp++
	}
	return NotFound
}

// ForEach calls f once for every live referrer slot (inline or
// out-of-line), in storage order. f may mutate the slot in place via
// the returned pointer but must not otherwise restructure e (no
// Append/Remove from inside f).
func (e *Entry) ForEach(f func(slot *disguise.Word)) {
	if !e.outOfLine {
		for i := range e.inline {
			if !e.inline[i].IsNull() {
				f(&e.inline[i])
			}
		}
		return
	}
	for i := range e.buckets {
		if !e.buckets[i].IsNull() {
			f(&e.buckets[i])
		}
	}
}
