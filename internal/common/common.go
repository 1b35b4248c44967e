package common

import "encoding/binary"

// NumberSize is the width of every length, offset and union id on the wire.
const NumberSize = 4

// Number decodes a little-endian uint32 from the first four bytes of b.
// Callers must guarantee len(b) >= NumberSize.
func Number(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// PutNumber encodes v as little-endian into the first four bytes of b.
func PutNumber(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// AppendNumber appends the little-endian encoding of v to dst.
func AppendNumber(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// NumberBE decodes a big-endian uint32 from the first four bytes of b.
func NumberBE(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// PutNumberBE encodes v as big-endian into the first four bytes of b.
func PutNumberBE(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// NumberAt reads the little-endian number at byte offset off of b.
// ok is false when b does not hold four bytes at off.
func NumberAt(b []byte, off uint64) (v uint32, ok bool) {
	if off+NumberSize > uint64(len(b)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[off:]), true
}

// MulAdd returns a*b + c widened to 64 bits so that size products taken
// from untrusted headers cannot wrap.
func MulAdd(a, b, c uint32) uint64 {
	return uint64(a)*uint64(b) + uint64(c)
}
