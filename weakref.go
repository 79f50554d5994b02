// Package weakref implements the zeroing weak-reference table: a
// registration between live heap objects (referents) that may be the
// target of a weak pointer and the storage locations (referrers) that
// hold one. When a referent is destroyed, every referrer slot still
// aimed at it is atomically observed and overwritten with nil, so a
// subsequent load sees nil instead of a dangling address.
//
// The table performs no locking of its own: every exported function is
// a no-lock, no-suspension, bounded-time critical section, and the
// caller is responsible for holding whatever mutex guards the Table
// instance being operated on (package striped provides a ready-made
// striping scheme).
package weakref

import (
	"log"
	"unsafe"

	"github.com/intuitivelabs/weakref/disguise"
	"github.com/intuitivelabs/weakref/entry"
	"github.com/intuitivelabs/weakref/reftable"
)

func init() {
	reftable.OnCorruption = fatal
	entry.OnCorruption = fatal
}

// fatal aborts the process after logging, for spec.md §7's "structural
// corruption" and the crash_if_dying branch of Register. Grounded on
// calltr/alloc.go's use of log.Panicf for detected invariant
// violations (FreeCallEntry/FreeRegEntry's refcnt checks).
func fatal(format string, a ...interface{}) {
	BUG(format, a...)
	log.Panicf(format, a...)
}

// inform emits a diagnostic without aborting (spec.md §6's inform()).
func inform(format string, a ...interface{}) {
	WARN(format, a...)
}

// Table is the caller-facing handle for Register/Unregister/Clear. The
// zero Table is empty and ready to use.
type Table struct {
	t reftable.Table
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{}
}

// Stats returns a point-in-time snapshot of tb's bookkeeping counters.
func (tb *Table) Stats() reftable.Stats {
	return tb.t.Stats()
}

// Register implements spec.md §4.4's register operation.
//
//  1. A nil or tagged-pointer referent short-circuits to a no-op: weak
//     references to immediates are vacuously always valid.
//  2. The collaborator is asked whether referent is currently being
//     destroyed; an unanswerable query is treated as dying.
//  3. If dying: crashIfDying aborts with a class-named diagnostic,
//     otherwise Register returns nil so the caller can store nil
//     through the weak variable instead of a dangling reference.
//  4. Otherwise referrer is appended to referent's Entry (creating one
//     if this is the first registration for referent).
//
// Register does not itself write through referrer -- the caller stores
// the weak pointer.
func Register(tb *Table, c Collaborator, referent Referent, referrer ReferrerAddr, crashIfDying bool) Referent {
	if referent == nil || c.IsTaggedPointer(referent) {
		return referent
	}
	dying, unanswerable := c.IsDestroying(referent)
	if unanswerable {
		dying = true
	}
	if dying {
		if crashIfDying {
			fatal("weakref: Register: %s (%p) is being deallocated, cannot "+
				"register new weak reference\n", c.Describe(referent), referent)
		}
		return nil
	}

	key := disguise.Of(referent)
	rw := disguise.Of(referrer)

	if e := tb.t.Lookup(key); e != nil {
		wasInline := !e.OutOfLine()
		e.Append(rw)
		if wasInline && e.OutOfLine() {
			tb.t.NotePromotion()
		}
		return referent
	}

	var fresh entry.Entry
	fresh.Referent = key
	fresh.Append(rw)
	tb.t.MaybeGrow()
	tb.t.Insert(fresh)
	return referent
}

// Unregister implements spec.md §4.4's unregister operation: referrer's
// backing storage is going away while referent is still alive. The weak
// variable itself is not modified; the caller's contract is that its
// storage is about to disappear anyway.
func Unregister(tb *Table, referent Referent, referrer ReferrerAddr) {
	if referent == nil {
		return
	}
	e := tb.t.Lookup(disguise.Of(referent))
	if e == nil {
		return
	}
	if e.Remove(disguise.Of(referrer)) == entry.NotFound {
		inform("weakref: Unregister: referrer %p not registered for "+
			"referent %p\n", referrer, referent)
		ErrorHook()
		return
	}
	if e.IsEmpty() {
		tb.t.Remove(e)
	}
}

// Clear implements spec.md §4.4's clear operation, invoked from
// referent's destructor: every referrer slot still aimed at referent is
// observed and overwritten with nil, and the Entry is removed from the
// table. Slots that no longer point at referent are left untouched and
// reported via inform/ErrorHook (prior misuse, or a mismatched-framework
// race -- see spec.md §9 Open Questions).
func Clear(tb *Table, referent Referent) {
	if referent == nil {
		return
	}
	key := disguise.Of(referent)
	e := tb.t.Lookup(key)
	if e == nil {
		return
	}
	e.ForEach(func(slot *disguise.Word) {
		addr := (*unsafe.Pointer)(slot.Pointer())
		if *addr == referent {
			*addr = nil
			return
		}
		inform("weakref: Clear: referrer %p no longer points at referent "+
			"%p (points at %p)\n", slot.Pointer(), referent, *addr)
		ErrorHook()
	})
	tb.t.Remove(e)
}

// IsRegistered reports whether referent currently has at least one
// registered referrer. Debug/test tooling only (spec.md §6).
func IsRegistered(tb *Table, referent Referent) bool {
	if referent == nil {
		return false
	}
	return tb.t.Lookup(disguise.Of(referent)) != nil
}
