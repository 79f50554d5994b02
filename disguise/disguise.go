// Package disguise hides machine pointers from conservative memory
// scanners by storing them as a reversible integer transform instead of
// a real address. It is the bottom layer of the weak-reference table:
// every slot the table or an entry stores is a disguise.Word, never a
// raw unsafe.Pointer.
package disguise

import "unsafe"

// Word is a disguised pointer. The zero Word is the disguised-null
// sentinel and is guaranteed distinguishable from every disguised live
// address.
type Word uintptr

// Null is the disguised encoding of a nil pointer.
const Null Word = 0

// Of disguises p. Disguising is bitwise negation: cheap, branch-free and
// reversible, and (for any pointer-aligned, non-nil p) it leaves the low
// two bits at 0b11, never 0b10 -- see Disc.
func Of(p unsafe.Pointer) Word {
	if p == nil {
		return Null
	}
	return Word(^uintptr(p))
}

// Pointer undisguises w back into the address it encodes. It is the
// caller's job to know whether w still refers to live memory.
func (w Word) Pointer() unsafe.Pointer {
	if w == Null {
		return nil
	}
	return unsafe.Pointer(^uintptr(w))
}

// IsNull reports whether w is the disguised-null sentinel.
func (w Word) IsNull() bool {
	return w == Null
}

// Disc returns the low two bits of w. For w == Null they are 0b00; for
// any disguised non-nil pointer-aligned address they are 0b11 (two's
// complement negation of an address whose low bits are 0b00). The value
// 0b10 therefore never occurs naturally and is free to serve as an
// out-of-line marker; package entry does not use it, keeping an explicit
// out-of-line flag instead.
func (w Word) Disc() uint8 {
	return uint8(w & 0x3)
}
