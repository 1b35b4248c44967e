package molecule

// Layout selects the structural shape of a parent segment together with the
// schema constants a cut of that shape needs. The set is closed: only the
// seven types below implement it.
type Layout interface {
	Kind() Kind
	layout()
}

// Option has no header. An empty segment is none, anything else is the
// wrapped value itself.
type Option struct{}

// Union is a 4-byte little-endian variant id followed by the variant's
// encoding.
type Union struct{}

// Array is ItemCount items of ItemSize bytes with no header.
type Array struct {
	ItemCount uint32
	ItemSize  uint32
	Index     uint32
}

// Struct is TotalSize bytes of fixed-size fields with no header.
type Struct struct {
	TotalSize   uint32
	FieldOffset uint32
	FieldSize   uint32
}

// FixVec is a 4-byte item count followed by items of ItemSize bytes.
type FixVec struct {
	ItemSize uint32
	Index    uint32
}

// DynVec is [total length][offset table][payload]; the first offset always
// points at the payload, so it also encodes the item count.
type DynVec struct {
	Index uint32
}

// Table shares the DynVec layout but the encoded field count must equal
// FieldCount. With Compatible set, tables written by a newer schema that
// appended fields are accepted as long as they carry at least FieldCount
// fields.
type Table struct {
	FieldCount uint32
	Index      uint32
	Compatible bool
}

func (Option) Kind() Kind { return KindOption }
func (Union) Kind() Kind  { return KindUnion }
func (Array) Kind() Kind  { return KindArray }
func (Struct) Kind() Kind { return KindStruct }
func (FixVec) Kind() Kind { return KindFixVec }
func (DynVec) Kind() Kind { return KindDynVec }
func (Table) Kind() Kind  { return KindTable }

func (Option) layout() {}
func (Union) layout()  {}
func (Array) layout()  {}
func (Struct) layout() {}
func (FixVec) layout() {}
func (DynVec) layout() {}
func (Table) layout()  {}
