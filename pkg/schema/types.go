package schema

import (
	"fmt"
	"strings"
)

// Kind is the encoding family of a schema type.
type Kind uint8

const (
	KindByte Kind = iota + 1
	KindArray
	KindStruct
	KindFixVec
	KindDynVec
	KindTable
	KindOption
	KindUnion
	// KindBytes is a fixvec of byte whose payload is read as a byte string.
	KindBytes
)

var kindNames = map[Kind]string{
	KindByte:   "byte",
	KindArray:  "array",
	KindStruct: "struct",
	KindFixVec: "fixvec",
	KindDynVec: "dynvec",
	KindTable:  "table",
	KindOption: "option",
	KindUnion:  "union",
	KindBytes:  "bytes",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func parseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s && k != KindByte {
			return k, true
		}
	}
	return 0, false
}

// Type is a resolved schema type.
type Type struct {
	Name string
	Kind Kind
	// Item is the element type of arrays and vectors and the inner type
	// of options.
	Item *Type
	// Count is the item count of an array.
	Count uint32
	// Fields of a struct or table, in encoding order.
	Fields []Field
	// Items are the variants of a union.
	Items []Variant
	// Compatible tables accept encodings with extra trailing fields.
	Compatible bool

	size  uint32
	fixed bool
}

// Field is a named member of a struct or table. Offset is only set for
// struct fields.
type Field struct {
	Name   string
	Type   *Type
	Offset uint32
}

// Variant is one member of a union.
type Variant struct {
	ID   uint32
	Type *Type
}

// Size returns the encoded size of a fixed-size type. ok is false for
// types whose size depends on the data.
func (t *Type) Size() (size uint32, ok bool) {
	return t.size, t.fixed
}

// Field looks up a field by name or by decimal index.
func (t *Type) Field(step string) (int, *Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == step {
			return i, &t.Fields[i], true
		}
	}
	if i, err := parseIndex(step); err == nil && uint64(i) < uint64(len(t.Fields)) {
		return int(i), &t.Fields[i], true
	}
	return 0, nil, false
}

// Variant looks up a union variant by type name or by decimal id.
func (t *Type) Variant(step string) (*Variant, bool) {
	for i := range t.Items {
		if t.Items[i].Type.Name == step {
			return &t.Items[i], true
		}
	}
	if id, err := parseIndex(step); err == nil {
		return t.VariantByID(id)
	}
	return nil, false
}

// VariantByID looks up a union variant by its encoded id.
func (t *Type) VariantByID(id uint32) (*Variant, bool) {
	for i := range t.Items {
		if t.Items[i].ID == id {
			return &t.Items[i], true
		}
	}
	return nil, false
}

func (t *Type) ids() []uint32 {
	ids := make([]uint32, len(t.Items))
	for i, v := range t.Items {
		ids[i] = v.ID
	}
	return ids
}

func (t *Type) String() string {
	return t.Name
}
