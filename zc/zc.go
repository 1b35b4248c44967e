// Package zc reads primitive values out of cut segments without copying.
//
// The readers are the leaves of navigation: once a cut has produced the
// segment of a fixed-size field, the functions here interpret it. Byte
// strings can be exposed as strings aliasing the buffer when the caller
// opts in through Options.
package zc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"github.com/rawbytedev/molecule"
)

// ErrSizeMismatch is returned when a segment does not have the exact width
// of the value being read.
var ErrSizeMismatch = errors.New("zc: segment size mismatch")

// Options contains runtime flags controlling zero-copy behaviour.
type Options struct {
	// UnsafeStrings allows converting []byte -> string without copy. The
	// string is only valid while the underlying buffer is left untouched.
	UnsafeStrings bool
}

func exact(seg molecule.Segment, n int) error {
	if len(seg) != n {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(seg), n)
	}
	return nil
}

func Uint8(seg molecule.Segment) (uint8, error) {
	if err := exact(seg, 1); err != nil {
		return 0, err
	}
	return seg[0], nil
}

func Uint16(seg molecule.Segment) (uint16, error) {
	if err := exact(seg, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(seg), nil
}

func Uint32(seg molecule.Segment) (uint32, error) {
	if err := exact(seg, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(seg), nil
}

func Uint64(seg molecule.Segment) (uint64, error) {
	if err := exact(seg, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(seg), nil
}

func Int8(seg molecule.Segment) (int8, error) {
	v, err := Uint8(seg)
	return int8(v), err
}

func Int16(seg molecule.Segment) (int16, error) {
	v, err := Uint16(seg)
	return int16(v), err
}

func Int32(seg molecule.Segment) (int32, error) {
	v, err := Uint32(seg)
	return int32(v), err
}

func Int64(seg molecule.Segment) (int64, error) {
	v, err := Uint64(seg)
	return int64(v), err
}

// Bool reads a one-byte boolean; any non-zero byte is true.
func Bool(seg molecule.Segment) (bool, error) {
	v, err := Uint8(seg)
	return v != 0, err
}

// Bytes returns the payload of a length-prefixed byte string. The result
// aliases seg.
func Bytes(seg molecule.Segment) ([]byte, error) {
	res := molecule.CutBytes(seg)
	if !res.OK() {
		return nil, res.Err()
	}
	return res.Segment.Bytes(), nil
}

// String returns the payload of a byte string as a string. With
// UnsafeStrings set the string shares memory with seg.
func (o Options) String(seg molecule.Segment) (string, error) {
	b, err := Bytes(seg)
	if err != nil {
		return "", err
	}
	if o.UnsafeStrings {
		if len(b) == 0 {
			return "", nil
		}
		return unsafe.String(unsafe.SliceData(b), len(b)), nil
	}
	return string(b), nil
}
