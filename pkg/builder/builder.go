// Package builder assembles Molecule encodings. It is the writing
// counterpart of the cut engine and is used for fixtures, tests and
// programs that produce buffers for it.
package builder

import (
	"errors"
	"fmt"
	"math"

	"github.com/rawbytedev/molecule/internal/common"
)

var (
	ErrTooLarge  = errors.New("builder: encoding exceeds 4GiB")
	ErrItemSize  = errors.New("builder: item size mismatch")
	ErrFieldSize = errors.New("builder: struct field size mismatch")
)

// Builder encodes values into an internal buffer that is reused across
// calls. The slice returned by a method is only valid until the next call
// on the same Builder; use the package-level functions for owned results.
type Builder struct {
	out     []byte
	offsets []uint32
}

// Reset drops the previous output while keeping allocated capacity.
func (b *Builder) Reset() {
	b.out = b.out[:0]
	b.offsets = b.offsets[:0]
}

// Bytes encodes a byte string: [len][payload].
func (b *Builder) Bytes(payload []byte) ([]byte, error) {
	b.Reset()
	if err := fits(uint64(len(payload)) + common.NumberSize); err != nil {
		return nil, err
	}
	b.out = common.AppendNumber(b.out, uint32(len(payload)))
	b.out = append(b.out, payload...)
	return b.out, nil
}

// FixVec encodes items that all have the same size: [count][items...].
func (b *Builder) FixVec(items ...[]byte) ([]byte, error) {
	b.Reset()
	var total uint64 = common.NumberSize
	for i, it := range items {
		if len(it) != len(items[0]) {
			return nil, fmt.Errorf("%w: item %d has %d bytes, want %d", ErrItemSize, i, len(it), len(items[0]))
		}
		total += uint64(len(it))
	}
	if err := fits(total); err != nil {
		return nil, err
	}
	b.out = common.AppendNumber(b.out, uint32(len(items)))
	for _, it := range items {
		b.out = append(b.out, it...)
	}
	return b.out, nil
}

// DynVec encodes variable-size items: [total][offsets...][items...].
// Zero items encode as the 4-byte header alone.
func (b *Builder) DynVec(items ...[]byte) ([]byte, error) {
	b.Reset()
	header := common.MulAdd(common.NumberSize, uint32(len(items)), common.NumberSize)
	total := header
	for _, it := range items {
		total += uint64(len(it))
	}
	if err := fits(total); err != nil {
		return nil, err
	}
	next := uint32(header)
	for _, it := range items {
		b.offsets = append(b.offsets, next)
		next += uint32(len(it))
	}
	b.out = common.AppendNumber(b.out, uint32(total))
	for _, off := range b.offsets {
		b.out = common.AppendNumber(b.out, off)
	}
	for _, it := range items {
		b.out = append(b.out, it...)
	}
	return b.out, nil
}

// Table encodes fields in declaration order. The layout is the DynVec one.
func (b *Builder) Table(fields ...[]byte) ([]byte, error) {
	return b.DynVec(fields...)
}

// Union encodes a variant: [id][inner].
func (b *Builder) Union(id uint32, inner []byte) ([]byte, error) {
	b.Reset()
	if err := fits(uint64(len(inner)) + common.NumberSize); err != nil {
		return nil, err
	}
	b.out = common.AppendNumber(b.out, id)
	b.out = append(b.out, inner...)
	return b.out, nil
}

// Struct concatenates fixed-size fields, checking each against sizes.
func (b *Builder) Struct(sizes []uint32, fields ...[]byte) ([]byte, error) {
	b.Reset()
	if len(sizes) != len(fields) {
		return nil, fmt.Errorf("%w: %d fields for %d sizes", ErrFieldSize, len(fields), len(sizes))
	}
	var total uint64
	for i, f := range fields {
		if uint64(len(f)) != uint64(sizes[i]) {
			return nil, fmt.Errorf("%w: field %d has %d bytes, want %d", ErrFieldSize, i, len(f), sizes[i])
		}
		total += uint64(len(f))
	}
	if err := fits(total); err != nil {
		return nil, err
	}
	for _, f := range fields {
		b.out = append(b.out, f...)
	}
	return b.out, nil
}

// Array concatenates items that all have itemSize bytes.
func (b *Builder) Array(itemSize uint32, items ...[]byte) ([]byte, error) {
	b.Reset()
	if err := fits(common.MulAdd(itemSize, uint32(len(items)), 0)); err != nil {
		return nil, err
	}
	for i, it := range items {
		if uint64(len(it)) != uint64(itemSize) {
			return nil, fmt.Errorf("%w: item %d has %d bytes, want %d", ErrItemSize, i, len(it), itemSize)
		}
		b.out = append(b.out, it...)
	}
	return b.out, nil
}

func fits(n uint64) error {
	if n > math.MaxUint32 {
		return ErrTooLarge
	}
	return nil
}

// Option encodes an optional value; nil means none.
func Option(inner []byte) []byte {
	if inner == nil {
		return []byte{}
	}
	return clone(inner)
}

// Bytes is Builder.Bytes with an owned result.
func Bytes(payload []byte) ([]byte, error) { return own(new(Builder).Bytes(payload)) }

// FixVec is Builder.FixVec with an owned result.
func FixVec(items ...[]byte) ([]byte, error) { return own(new(Builder).FixVec(items...)) }

// DynVec is Builder.DynVec with an owned result.
func DynVec(items ...[]byte) ([]byte, error) { return own(new(Builder).DynVec(items...)) }

// Table is Builder.Table with an owned result.
func Table(fields ...[]byte) ([]byte, error) { return own(new(Builder).Table(fields...)) }

// Union is Builder.Union with an owned result.
func Union(id uint32, inner []byte) ([]byte, error) { return own(new(Builder).Union(id, inner)) }

// Struct is Builder.Struct with an owned result.
func Struct(sizes []uint32, fields ...[]byte) ([]byte, error) {
	return own(new(Builder).Struct(sizes, fields...))
}

// Array is Builder.Array with an owned result.
func Array(itemSize uint32, items ...[]byte) ([]byte, error) {
	return own(new(Builder).Array(itemSize, items...))
}

// Number encodes v as a 4-byte little-endian value.
func Number(v uint32) []byte {
	return common.AppendNumber(make([]byte, 0, common.NumberSize), v)
}

func own(b []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return clone(b), nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
