package entry

// hash mixing for referrer words, ported from calltr's hashUpdate/
// hashFinish (itself ported from the ser C hashes.h): the original takes
// an arbitrary byte buffer and mixes it 4 bytes at a time; here the
// "buffer" is always the 8 bytes of a single disguised referrer word.

import (
	"encoding/binary"

	"github.com/intuitivelabs/weakref/disguise"
)

func hashUpdate(h uint32, buf []byte) uint32 {
	i := 0
	for ; i <= len(buf)-4; i += 4 {
		v := (uint32(buf[i]) << 24) + (uint32(buf[i+1]) << 16) +
			(uint32(buf[i+2]) << 8) + uint32(buf[i+3])
		h += v ^ (v >> 3)
	}
	var v uint32
	switch len(buf) - i {
	case 3:
		v = (uint32(buf[i]) << 16) + (uint32(buf[i+1]) << 8) + uint32(buf[i+2])
	case 2:
		v = (uint32(buf[i]) << 8) + uint32(buf[i+1])
	case 1:
		v = uint32(buf[i])
	}
	h += v ^ (v >> 3)
	return h
}

func hashFinish(h uint32) uint32 {
	return h + (h >> 11) + (h >> 13) + (h >> 23)
}

// HashWord is the pointer-mixing hash used to probe both the out-of-line
// referrer table (package entry) and the referent table (package
// reftable); any reasonable integer hash works as long as every caller
// agrees on it, so both packages share this one.
func HashWord(w disguise.Word) uint32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(w))
	return hashFinish(hashUpdate(0, b[:]))
}
