package reftable

import (
	"testing"
	"unsafe"

	"github.com/intuitivelabs/weakref/disguise"
	"github.com/intuitivelabs/weakref/entry"
)

func referent(i int) disguise.Word {
	return disguise.Of(unsafe.Pointer(uintptr(0x10000 + i*16)))
}

func insert(t *Table, r disguise.Word) *entry.Entry {
	t.MaybeGrow()
	t.Insert(entry.Entry{Referent: r})
	return t.Lookup(r)
}

func TestLookupMissOnEmptyTable(t *testing.T) {
	var tb Table
	if tb.Lookup(referent(0)) != nil {
		t.Fatal("Lookup on an empty table should miss")
	}
}

func TestInsertLookupRemove(t *testing.T) {
	var tb Table
	r := referent(1)
	insert(&tb, r)
	if tb.Lookup(r) == nil {
		t.Fatal("Lookup should find just-inserted referent")
	}
	e := tb.Lookup(r)
	tb.Remove(e)
	if tb.Lookup(r) != nil {
		t.Fatal("Lookup should miss after Remove")
	}
	if tb.Stats().Fill != 0 {
		t.Fatalf("Fill = %d, want 0", tb.Stats().Fill)
	}
}

func TestFirstInsertAllocatesInitialCap(t *testing.T) {
	var tb Table
	insert(&tb, referent(0))
	if cap := tb.Stats().Capacity; cap != initialCap {
		t.Fatalf("capacity after first insert = %d, want %d", cap, initialCap)
	}
}

// TestGrowsAt49thInsert mirrors spec.md §8's quantified growth scenario:
// a capacity-64 table grows to 128 exactly on the 49th insert (fill=48
// is 3/4 of 64, crossing the threshold before that insert completes).
func TestGrowsAt49thInsert(t *testing.T) {
	var tb Table
	for i := 0; i < 48; i++ {
		insert(&tb, referent(i))
	}
	if cap := tb.Stats().Capacity; cap != 64 {
		t.Fatalf("capacity after 48 inserts = %d, want 64", cap)
	}
	insert(&tb, referent(48))
	if cap := tb.Stats().Capacity; cap != 128 {
		t.Fatalf("capacity after 49 inserts = %d, want 128", cap)
	}
	if tb.Stats().Grows != 1 { // the initial 0->64 allocation isn't a "grow"
		t.Fatalf("Grows = %d, want 1", tb.Stats().Grows)
	}
}

func TestNeverShrinksBelowFloor(t *testing.T) {
	var tb Table
	for i := 0; i < 300; i++ {
		insert(&tb, referent(i))
	}
	if cap := tb.Stats().Capacity; cap != 512 {
		t.Fatalf("capacity after 300 inserts = %d, want 512", cap)
	}
	for i := 0; i < 299; i++ {
		e := tb.Lookup(referent(i))
		tb.Remove(e)
	}
	if cap := tb.Stats().Capacity; cap != 512 {
		t.Fatalf("capacity should stay at the 512 floor below shrinkFloor=1024, got %d", cap)
	}
}

// TestShrinksAtFloor mirrors spec.md §8's shrink scenario: a
// capacity-1024 table compacts to 128 once fill drops to 1/16 of 1024.
func TestShrinksAtFloor(t *testing.T) {
	var tb Table
	const n = 700
	for i := 0; i < n; i++ {
		insert(&tb, referent(i))
	}
	if cap := tb.Stats().Capacity; cap != 1024 {
		t.Fatalf("capacity after %d inserts = %d, want 1024", n, cap)
	}
	const cleared = 670
	for i := 0; i < cleared; i++ {
		e := tb.Lookup(referent(i))
		tb.Remove(e)
	}
	if cap := tb.Stats().Capacity; cap != 128 {
		t.Fatalf("capacity after clearing to fill=%d = %d, want 128", n-cleared, cap)
	}
	for i := cleared; i < n; i++ {
		if tb.Lookup(referent(i)) == nil {
			t.Errorf("referent %d lost across shrink", i)
		}
	}
}

func TestForEachVisitsAllLiveEntries(t *testing.T) {
	var tb Table
	const n = 20
	for i := 0; i < n; i++ {
		insert(&tb, referent(i))
	}
	seen := map[disguise.Word]bool{}
	tb.ForEach(func(e *entry.Entry) {
		seen[e.Referent] = true
	})
	if len(seen) != n {
		t.Fatalf("ForEach visited %d entries, want %d", len(seen), n)
	}
}

func TestNotePromotionIncrementsStats(t *testing.T) {
	var tb Table
	if tb.Stats().Promotions != 0 {
		t.Fatal("fresh table should report 0 promotions")
	}
	tb.NotePromotion()
	if tb.Stats().Promotions != 1 {
		t.Fatalf("Promotions = %d, want 1", tb.Stats().Promotions)
	}
}
