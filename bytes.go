package molecule

import "github.com/rawbytedev/molecule/internal/common"

// CutBytes returns the payload of the built-in byte string layout
// [4-byte length][length bytes]. The status of a failure carries only the
// reason nibble, as the byte string is not one of the seven layouts.
func CutBytes(parent Segment) Result {
	if len(parent) < common.NumberSize {
		return fail(ReasonHeaderIsBroken)
	}
	n := uint64(common.Number(parent))
	if parent.size() < n+common.NumberSize {
		return fail(ReasonDataIsShort)
	}
	return Result{Segment: parent.sub(common.NumberSize, n+common.NumberSize)}
}

// CutBytes runs the byte string decoder. The engine options do not affect
// it; the method exists so callers holding an Engine need nothing else.
func (e *Engine) CutBytes(parent Segment) Result {
	return CutBytes(parent)
}
