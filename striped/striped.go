// Package striped is a caller-side convenience the weak-reference table
// core does not need but every embedder of it does: spec.md places
// per-table locking and striping outside the core ("the core assumes
// its caller holds the appropriate lock" / "the runtime partitions
// referents across a small number of striped tables, each with its own
// lock"). This mirrors calltr's cstHash/regHash globals -- a fixed-size
// array of hash-bucket lists, each with its own sync.Mutex -- adapted
// from byte-buffer hashing to a single reftable.Table per stripe.
package striped

import (
	"sync"
	"unsafe"

	"github.com/intuitivelabs/weakref/disguise"
	"github.com/intuitivelabs/weakref/entry"
	"github.com/intuitivelabs/weakref/reftable"
)

// Stripes is a fixed-size array of independently locked Tables. The
// zero Stripes is not usable; call Init.
type Stripes struct {
	shards []shard
}

type shard struct {
	mu    sync.Mutex
	table reftable.Table
}

// Init allocates n stripes. n should be a small power of two (the
// teacher's HashSize plays the same role for cstHash/regHash).
func (s *Stripes) Init(n int) {
	s.shards = make([]shard, n)
}

// Pick returns the stripe index and already-locked Table for referent.
// The caller must call Unlock(idx) exactly once when done.
func (s *Stripes) Pick(referent unsafe.Pointer) (idx int, t *reftable.Table) {
	h := entry.HashWord(disguise.Of(referent))
	idx = int(h % uint32(len(s.shards)))
	s.shards[idx].mu.Lock()
	return idx, &s.shards[idx].table
}

// Unlock releases the stripe previously returned by Pick.
func (s *Stripes) Unlock(idx int) {
	s.shards[idx].mu.Unlock()
}

// Len returns the number of stripes.
func (s *Stripes) Len() int { return len(s.shards) }
