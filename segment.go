package molecule

import (
	"errors"
	"math"
)

// ErrBufferTooLarge is returned by NewSegment for buffers whose length does
// not fit the format's 32-bit sizes.
var ErrBufferTooLarge = errors.New("molecule: buffer exceeds 4GiB")

// Segment is a borrowed view into a caller-owned buffer. It never owns the
// bytes it points at and is only valid while the buffer is left unchanged.
type Segment []byte

// NewSegment wraps buf as the top-level segment of a value.
func NewSegment(buf []byte) (Segment, error) {
	if uint64(len(buf)) > math.MaxUint32 {
		return nil, ErrBufferTooLarge
	}
	return Segment(buf[:len(buf):len(buf)]), nil
}

// Len returns the segment length as the format's 32-bit size.
func (s Segment) Len() uint32 { return uint32(len(s)) }

// IsEmpty reports whether the segment holds no bytes.
func (s Segment) IsEmpty() bool { return len(s) == 0 }

// Bytes returns the underlying bytes without copying.
func (s Segment) Bytes() []byte { return []byte(s) }

// sub returns the child view [start, end). Capacity is clipped to end so
// the child can never be grown back into its parent's bytes.
func (s Segment) sub(start, end uint64) Segment {
	return s[start:end:end]
}

func (s Segment) size() uint64 { return uint64(len(s)) }
