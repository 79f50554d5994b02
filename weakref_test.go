package weakref

import (
	"unsafe"
)

// fakeCollaborator is a minimal Collaborator for tests: callers mark
// specific referents as tagged/dying/unanswerable by address.
type fakeCollaborator struct {
	tagged       map[unsafe.Pointer]bool
	dying        map[unsafe.Pointer]bool
	unanswerable map[unsafe.Pointer]bool
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{
		tagged:       map[unsafe.Pointer]bool{},
		dying:        map[unsafe.Pointer]bool{},
		unanswerable: map[unsafe.Pointer]bool{},
	}
}

func (f *fakeCollaborator) IsTaggedPointer(r Referent) bool { return f.tagged[r] }
func (f *fakeCollaborator) IsDestroying(r Referent) (bool, bool) {
	return f.dying[r], f.unanswerable[r]
}
func (f *fakeCollaborator) Describe(r Referent) string { return "FakeClass" }

// heapSink keeps the values passed to pinToHeap reachable.
var heapSink []interface{}

// pinToHeap forces the referrer storage passed to it onto the heap and
// keeps it alive. The table holds referrer addresses only in disguised
// form, which the Go runtime neither traces nor updates when it moves a
// goroutine stack, so a referrer slot left on the stack can be lost.
func pinToHeap(v ...interface{}) {
	heapSink = append(heapSink, v...)
}
