package weakref

import "unsafe"

// Referent is the address of a heap object that may be weakly
// referenced. ReferrerAddr is the address of a storage slot (a weak
// variable, an instance field) that holds a weak pointer to some
// referent. Both are plain unsafe.Pointer at the API boundary; the
// table disguises them internally (package disguise).
type Referent = unsafe.Pointer
type ReferrerAddr = unsafe.Pointer

// Collaborator is the object-model/runtime side of the
// destruction-check handshake spec.md §6 names as "consumed from
// collaborators": the core never inspects a referent's class or
// deallocating bit directly, it asks.
type Collaborator interface {
	// IsTaggedPointer reports whether referent is an immediate value
	// (never a real heap address); registering one is always a no-op.
	IsTaggedPointer(referent Referent) bool

	// IsDestroying reports whether referent is currently being torn
	// down. unanswerable is true when the query could not be resolved
	// (e.g. an indirect dispatch through a weak-reference-permission
	// hook that resolved to the runtime's "forward" sentinel); an
	// unanswerable query is treated as "dying" by Register.
	IsDestroying(referent Referent) (destroying, unanswerable bool)

	// Describe returns a short diagnostic label for referent (typically
	// its runtime class name), used only in crash/diagnostic messages.
	Describe(referent Referent) string
}

// ErrorHook is called whenever the table detects caller misuse
// (spec.md §7's "misuse by caller": unregistering an address that was
// never registered, or clearing a slot that no longer points at the
// referent being destroyed). The default is a no-op; its only purpose is
// to be a stable, breakpoint-able symbol. Tests may swap it out to
// count invocations.
var ErrorHook = func() {}
