package schema

import (
	"fmt"

	"github.com/rawbytedev/molecule"
)

// Verify checks buf against the root type and everything nested in it.
// Fixed-size values are checked by size only; dynamic values are checked
// layer by layer and then descended into.
func (s *Schema) Verify(buf molecule.Segment, root string) error {
	t, err := s.root(root)
	if err != nil {
		return err
	}
	return s.verify(s.engine(), t, buf, t.Name)
}

func (s *Schema) verify(e *molecule.Engine, t *Type, seg molecule.Segment, at string) error {
	wrap := func(err error) error {
		if err == nil {
			return nil
		}
		return fmt.Errorf("%s: %w", at, err)
	}
	switch t.Kind {
	case KindByte, KindStruct:
		return wrap(molecule.VerifyStruct(seg, t.size))
	case KindArray:
		itemSize, _ := t.Item.Size()
		return wrap(molecule.VerifyArray(seg, t.Count, itemSize))
	case KindBytes:
		return wrap(molecule.VerifyBytes(seg))
	case KindFixVec:
		itemSize, _ := t.Item.Size()
		return wrap(molecule.VerifyFixVec(seg, itemSize))
	case KindDynVec:
		if err := molecule.VerifyDynVec(seg); err != nil {
			return wrap(err)
		}
		n, err := molecule.DynVecLen(seg)
		if err != nil {
			return wrap(err)
		}
		for i := uint32(0); i < n; i++ {
			res := e.Cut(seg, molecule.DynVec{Index: i})
			item := fmt.Sprintf("%s.%d", at, i)
			if !res.OK() {
				return fmt.Errorf("%s: %w", item, res.Err())
			}
			if err := s.verify(e, t.Item, res.Segment, item); err != nil {
				return err
			}
		}
		return nil
	case KindTable:
		count := uint32(len(t.Fields))
		if err := molecule.VerifyTable(seg, count, t.Compatible); err != nil {
			return wrap(err)
		}
		for i, f := range t.Fields {
			res := e.Cut(seg, molecule.Table{FieldCount: count, Index: uint32(i), Compatible: t.Compatible})
			field := at + "." + f.Name
			if !res.OK() {
				return fmt.Errorf("%s: %w", field, res.Err())
			}
			if err := s.verify(e, f.Type, res.Segment, field); err != nil {
				return err
			}
		}
		return nil
	case KindOption:
		res := e.Cut(seg, molecule.Option{})
		if res.Attr == 0 {
			return nil
		}
		return s.verify(e, t.Item, res.Segment, at)
	case KindUnion:
		if err := molecule.VerifyUnion(seg, t.ids()...); err != nil {
			return wrap(err)
		}
		res := e.Cut(seg, molecule.Union{})
		if !res.OK() {
			return wrap(res.Err())
		}
		v, _ := t.VariantByID(res.Attr)
		return s.verify(e, v.Type, res.Segment, at+"."+v.Type.Name)
	}
	return wrap(fmt.Errorf("%w: kind %s", ErrInvalidSchema, t.Kind))
}
