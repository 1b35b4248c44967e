package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/rawbytedev/molecule"
)

var (
	ErrBadPath         = errors.New("schema: bad path")
	ErrNone            = errors.New("schema: option is none")
	ErrVariantMismatch = errors.New("schema: union holds another variant")
)

// Value is a typed segment reached by navigation. Attr is the attribute of
// the last cut: option presence, union id or item count.
type Value struct {
	Type *Type
	Seg  molecule.Segment
	Attr uint32
}

// Payload returns the contents of a bytes value, or the segment itself for
// any other type.
func (v Value) Payload() (molecule.Segment, error) {
	if v.Type.Kind != KindBytes {
		return v.Seg, nil
	}
	res := molecule.CutBytes(v.Seg)
	if !res.OK() {
		return nil, res.Err()
	}
	return res.Segment, nil
}

func parseIndex(step string) (uint32, error) {
	n, err := strconv.ParseUint(step, 10, 32)
	return uint32(n), err
}

// Navigate follows a dot separated path from the root type through buf.
// Steps are field names or indices for structs and tables, indices for
// arrays and vectors, and variant names or ids for unions. Options are
// unwrapped implicitly when a step follows them. Every step is one cut;
// a failing cut is returned wrapped with the path walked so far.
func (s *Schema) Navigate(buf molecule.Segment, root, path string) (Value, error) {
	t, err := s.root(root)
	if err != nil {
		return Value{}, err
	}
	v := Value{Type: t, Seg: buf}
	if path == "" {
		return v, nil
	}
	e := s.engine()
	steps := strings.Split(path, ".")
	for i, step := range steps {
		walked := strings.Join(steps[:i+1], ".")
		if v.Type.Kind == KindOption {
			if v, err = s.unwrap(e, v); err != nil {
				return Value{}, fmt.Errorf("%s: %w", walked, err)
			}
		}
		if v, err = s.step(e, v, step); err != nil {
			return Value{}, fmt.Errorf("%s: %w", walked, err)
		}
		Logger().Debug("navigated",
			zap.String("path", walked),
			zap.Stringer("type", v.Type),
			zap.Int("size", len(v.Seg)))
	}
	return v, nil
}

func (s *Schema) unwrap(e *molecule.Engine, v Value) (Value, error) {
	res := e.Cut(v.Seg, molecule.Option{})
	if !res.OK() {
		return Value{}, res.Err()
	}
	if res.Attr == 0 {
		return Value{}, ErrNone
	}
	return Value{Type: v.Type.Item, Seg: res.Segment, Attr: res.Attr}, nil
}

func (s *Schema) step(e *molecule.Engine, v Value, step string) (Value, error) {
	t := v.Type
	var (
		l    molecule.Layout
		next *Type
	)
	switch t.Kind {
	case KindArray, KindFixVec, KindDynVec, KindBytes:
		idx, err := parseIndex(step)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an index into %s %q", ErrBadPath, step, t.Kind, t.Name)
		}
		next = t.Item
		itemSize, _ := t.Item.Size()
		switch t.Kind {
		case KindArray:
			l = molecule.Array{ItemCount: t.Count, ItemSize: itemSize, Index: idx}
		case KindDynVec:
			l = molecule.DynVec{Index: idx}
		default:
			l = molecule.FixVec{ItemSize: itemSize, Index: idx}
		}
	case KindStruct, KindTable:
		idx, f, ok := t.Field(step)
		if !ok {
			return Value{}, fmt.Errorf("%w: %s %q has no field %q", ErrBadPath, t.Kind, t.Name, step)
		}
		next = f.Type
		if t.Kind == KindStruct {
			fieldSize, _ := f.Type.Size()
			l = molecule.Struct{TotalSize: t.size, FieldOffset: f.Offset, FieldSize: fieldSize}
		} else {
			l = molecule.Table{FieldCount: uint32(len(t.Fields)), Index: uint32(idx), Compatible: t.Compatible}
		}
	case KindUnion:
		want, ok := t.Variant(step)
		if !ok {
			return Value{}, fmt.Errorf("%w: union %q has no item %q", ErrBadPath, t.Name, step)
		}
		res := e.Cut(v.Seg, molecule.Union{})
		if !res.OK() {
			return Value{}, res.Err()
		}
		if res.Attr != want.ID {
			return Value{}, fmt.Errorf("%w: want id %d, have %d", ErrVariantMismatch, want.ID, res.Attr)
		}
		return Value{Type: want.Type, Seg: res.Segment, Attr: res.Attr}, nil
	default:
		return Value{}, fmt.Errorf("%w: %s %q has no members", ErrBadPath, t.Kind, t.Name)
	}

	res := e.Cut(v.Seg, l)
	if !res.OK() {
		return Value{}, res.Err()
	}
	return Value{Type: next, Seg: res.Segment, Attr: res.Attr}, nil
}
