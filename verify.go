package molecule

import (
	"errors"
	"fmt"

	"github.com/rawbytedev/molecule/internal/common"
)

// ErrUnknownItem reports a union whose variant id is not part of the schema.
var ErrUnknownItem = errors.New("molecule: unknown union item")

// The Verify functions check the header of a single layer, the way a
// generated FromSlice constructor does before handing out accessors. They
// never descend into items or fields.

// VerifyArray checks that seg holds exactly itemCount items of itemSize.
func VerifyArray(seg Segment, itemCount, itemSize uint32) error {
	if seg.size() != common.MulAdd(itemCount, itemSize, 0) {
		return (CategoryArray | ReasonTotalSize).Err()
	}
	return nil
}

// VerifyStruct checks that seg is exactly totalSize bytes.
func VerifyStruct(seg Segment, totalSize uint32) error {
	if seg.size() != uint64(totalSize) {
		return (CategoryStruct | ReasonTotalSize).Err()
	}
	return nil
}

// VerifyFixVec checks the item count header against the segment length.
func VerifyFixVec(seg Segment, itemSize uint32) error {
	if len(seg) < common.NumberSize {
		return (CategoryFixVec | ReasonHeaderIsBroken).Err()
	}
	if seg.size() != common.MulAdd(common.Number(seg), itemSize, common.NumberSize) {
		return (CategoryFixVec | ReasonTotalSize).Err()
	}
	return nil
}

// VerifyBytes checks a byte string's length prefix against the segment.
func VerifyBytes(seg Segment) error {
	if len(seg) < common.NumberSize {
		return ReasonHeaderIsBroken.Err()
	}
	if seg.size() != uint64(common.Number(seg))+common.NumberSize {
		return ReasonTotalSize.Err()
	}
	return nil
}

// VerifyDynVec checks the total length, the first offset and that the
// offset table is non-decreasing and inside the segment.
func VerifyDynVec(seg Segment) error {
	_, err := verifyOffsets(seg, CategoryDynVec)
	return err
}

// VerifyTable runs the DynVec checks and then compares the encoded field
// count with fieldCount. With compatible set, extra trailing fields are
// accepted.
func VerifyTable(seg Segment, fieldCount uint32, compatible bool) error {
	count, err := verifyOffsets(seg, CategoryTable)
	if err != nil {
		return err
	}
	if count < fieldCount || (count > fieldCount && !compatible) {
		return (CategoryTable | ReasonHeaderIsBroken).Err()
	}
	return nil
}

// VerifyUnion checks the union header and, when ids is not empty, that the
// variant id is one of them.
func VerifyUnion(seg Segment, ids ...uint32) error {
	if len(seg) < common.NumberSize {
		return (CategoryUnion | ReasonHeaderIsBroken).Err()
	}
	if len(ids) == 0 {
		return nil
	}
	id := common.Number(seg)
	for _, known := range ids {
		if id == known {
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrUnknownItem, id)
}

func verifyOffsets(seg Segment, cat Status) (uint32, error) {
	size := seg.size()
	if size < common.NumberSize {
		return 0, (cat | ReasonHeaderIsBroken).Err()
	}
	total := uint64(common.Number(seg))
	if total != size {
		return 0, (cat | ReasonTotalSize).Err()
	}
	if size == common.NumberSize {
		return 0, nil
	}
	if size < 2*common.NumberSize {
		return 0, (cat | ReasonFirstOffsetIsBroken).Err()
	}
	first := common.Number(seg[common.NumberSize:])
	if first%common.NumberSize != 0 || first < 2*common.NumberSize {
		return 0, (cat | ReasonFirstOffsetIsBroken).Err()
	}
	if uint64(first) > total {
		return 0, (cat | ReasonFirstFieldIsBroken).Err()
	}
	count := first/common.NumberSize - 1
	prev := first
	for i := uint32(1); i < count; i++ {
		off := common.Number(seg[common.MulAdd(common.NumberSize, i, common.NumberSize):])
		if off < prev || uint64(off) > total {
			return 0, (cat | ReasonFieldIsBroken).Err()
		}
		prev = off
	}
	return count, nil
}

// FixVecLen returns the item count of a fixed-item vector.
func FixVecLen(seg Segment) (uint32, error) {
	if len(seg) < common.NumberSize {
		return 0, (CategoryFixVec | ReasonHeaderIsBroken).Err()
	}
	return common.Number(seg), nil
}

// DynVecLen returns the item count of a variable-item vector. A segment
// holding only the length header is an empty vector.
func DynVecLen(seg Segment) (uint32, error) {
	return offsetCount(seg, CategoryDynVec)
}

// TableFieldCount returns the number of fields a table actually encodes.
func TableFieldCount(seg Segment) (uint32, error) {
	return offsetCount(seg, CategoryTable)
}

// TableHasExtraFields reports whether the table encodes more than
// fieldCount fields, i.e. was written by a newer schema.
func TableHasExtraFields(seg Segment, fieldCount uint32) (bool, error) {
	n, err := TableFieldCount(seg)
	if err != nil {
		return false, err
	}
	return n > fieldCount, nil
}

func offsetCount(seg Segment, cat Status) (uint32, error) {
	switch size := seg.size(); {
	case size < common.NumberSize:
		return 0, (cat | ReasonHeaderIsBroken).Err()
	case size == common.NumberSize:
		return 0, nil
	case size < 2*common.NumberSize:
		return 0, (cat | ReasonFirstOffsetIsBroken).Err()
	}
	first := common.Number(seg[common.NumberSize:])
	if first%common.NumberSize != 0 || first < common.NumberSize {
		return 0, (cat | ReasonFirstOffsetIsBroken).Err()
	}
	return first/common.NumberSize - 1, nil
}
