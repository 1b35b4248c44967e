package molecule

import "github.com/rawbytedev/molecule/internal/common"

// Result is the outcome of one navigation step. Segment and Attr are only
// meaningful when Status is StatusOK; on failure they are nil and 0.
type Result struct {
	Status  Status
	Segment Segment
	Attr    uint32
}

// OK reports whether the cut succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error { return r.Status.Err() }

func fail(s Status) Result { return Result{Status: s} }

// Options tunes an Engine.
type Options struct {
	// StrictOffsets adds bounds checks to DynVec and Table cuts that the
	// reference format does not perform: the declared length must equal the
	// segment length, the first offset must be 4-aligned and past the header,
	// and every item must lie between the end of the offset table and the
	// declared length. Buffers accepted in strict mode are always accepted in
	// the default mode.
	StrictOffsets bool
}

// Engine performs cuts with a fixed set of Options. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	opts Options
}

// Default is the engine used by the package-level functions. It follows the
// reference format exactly.
var Default = New(Options{})

// New returns an engine using opts.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// Cut computes the child segment addressed by l inside parent. A nil layout
// yields StatusError.
func (e *Engine) Cut(parent Segment, l Layout) Result {
	switch l := l.(type) {
	case Option:
		return CutOption(parent)
	case Union:
		return CutUnion(parent)
	case Array:
		return CutArray(parent, l.ItemCount, l.ItemSize, l.Index)
	case Struct:
		return CutStruct(parent, l.TotalSize, l.FieldOffset, l.FieldSize)
	case FixVec:
		return CutFixVec(parent, l.ItemSize, l.Index)
	case DynVec:
		return cutOffsets(parent, CategoryDynVec, 0, false, l.Index, e.opts.StrictOffsets)
	case Table:
		return cutOffsets(parent, CategoryTable, l.FieldCount, l.Compatible, l.Index, e.opts.StrictOffsets)
	default:
		return fail(StatusError)
	}
}

// Cut runs Default.Cut.
func Cut(parent Segment, l Layout) Result {
	return Default.Cut(parent, l)
}

// CutOption returns none (Attr 0, empty segment) for an empty parent and
// some (Attr 1, the whole parent) otherwise. It never fails.
func CutOption(parent Segment) Result {
	if len(parent) == 0 {
		return Result{}
	}
	return Result{Segment: parent.sub(0, parent.size()), Attr: 1}
}

// CutUnion splits the variant id off the front of parent.
func CutUnion(parent Segment) Result {
	if len(parent) < common.NumberSize {
		return fail(CategoryUnion | ReasonHeaderIsBroken)
	}
	return Result{
		Segment: parent.sub(common.NumberSize, parent.size()),
		Attr:    common.Number(parent),
	}
}

// CutArray returns item index of an array of itemCount items of itemSize
// bytes.
func CutArray(parent Segment, itemCount, itemSize, index uint32) Result {
	if parent.size() != common.MulAdd(itemSize, itemCount, 0) {
		return fail(CategoryArray | ReasonTotalSize)
	}
	if index >= itemCount {
		return fail(CategoryArray | ReasonIndexOutOfBounds)
	}
	start := common.MulAdd(itemSize, index, 0)
	return Result{Segment: parent.sub(start, start+uint64(itemSize))}
}

// CutStruct returns the field at [fieldOffset, fieldOffset+fieldSize) of a
// struct of totalSize bytes.
func CutStruct(parent Segment, totalSize, fieldOffset, fieldSize uint32) Result {
	if parent.size() != uint64(totalSize) {
		return fail(CategoryStruct | ReasonTotalSize)
	}
	end := uint64(fieldOffset) + uint64(fieldSize)
	if uint64(totalSize) < end {
		return fail(CategoryStruct | ReasonDataIsShort)
	}
	return Result{Segment: parent.sub(uint64(fieldOffset), end)}
}

// CutFixVec returns item index of a fixed-item vector. Attr is the encoded
// item count.
func CutFixVec(parent Segment, itemSize, index uint32) Result {
	if len(parent) < common.NumberSize {
		return fail(CategoryFixVec | ReasonHeaderIsBroken)
	}
	count := common.Number(parent)
	if index >= count {
		return fail(CategoryFixVec | ReasonIndexOutOfBounds)
	}
	end := common.MulAdd(itemSize, index+1, common.NumberSize)
	if parent.size() < end {
		return fail(CategoryFixVec | ReasonDataIsShort)
	}
	return Result{Segment: parent.sub(end-uint64(itemSize), end), Attr: count}
}

// CutDynVec returns item index of a variable-item vector with the default
// engine. Attr is the encoded item count.
func CutDynVec(parent Segment, index uint32) Result {
	return cutOffsets(parent, CategoryDynVec, 0, false, index, false)
}

// CutTable returns field index of a table that must encode exactly
// fieldCount fields. Attr is the encoded field count.
func CutTable(parent Segment, fieldCount, index uint32) Result {
	return cutOffsets(parent, CategoryTable, fieldCount, false, index, false)
}

// cutOffsets implements DynVec and Table. The checks run in the reference
// order so every malformed buffer maps to the same status code; the extra
// checks after the offset reads keep the child inside parent.
func cutOffsets(parent Segment, cat Status, fieldCount uint32, compatible bool, index uint32, strict bool) Result {
	size := parent.size()
	switch {
	case size < common.NumberSize:
		return fail(cat | ReasonHeaderIsBroken)
	case size == common.NumberSize:
		return fail(cat | ReasonDataIsEmpty)
	case size < 2*common.NumberSize:
		return fail(cat | ReasonFirstOffsetIsBroken)
	}

	length := uint64(common.Number(parent))
	first := common.Number(parent[common.NumberSize:])
	// Wraps for first < 4 exactly like the reference; such a count can only
	// fail further down.
	count := (first - common.NumberSize) / common.NumberSize

	if strict && (first%common.NumberSize != 0 || first < 2*common.NumberSize) {
		return fail(cat | ReasonFirstOffsetIsBroken)
	}
	if cat == CategoryTable {
		if count < fieldCount || (count > fieldCount && !compatible) {
			return fail(cat | ReasonHeaderIsBroken)
		}
	}
	if index >= count {
		return fail(cat | ReasonIndexOutOfBounds)
	}
	if length < size || (strict && length != size) {
		return fail(cat | ReasonDataIsShort)
	}
	if length < uint64(first) {
		return fail(cat | ReasonFirstFieldIsBroken)
	}

	slot := common.MulAdd(common.NumberSize, index, common.NumberSize)
	start32, ok := common.NumberAt(parent, slot)
	if !ok {
		return fail(cat | ReasonFieldIsBroken)
	}
	start := uint64(start32)
	if size < start || (strict && start < uint64(first)) {
		return fail(cat | ReasonFieldIsBroken)
	}

	end := length
	if index != count-1 {
		end32, ok := common.NumberAt(parent, slot+common.NumberSize)
		if !ok {
			return fail(cat | ReasonFieldIsBroken)
		}
		end = uint64(end32)
	}
	if end < start || end > size {
		return fail(cat | ReasonFieldIsBroken)
	}
	return Result{Segment: parent.sub(start, end), Attr: count}
}
