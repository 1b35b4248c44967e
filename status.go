package molecule

import (
	"errors"
	"fmt"
)

// Kind names one of the seven layouts the format can encode.
type Kind uint8

const (
	KindOption Kind = iota + 1
	KindUnion
	KindArray
	KindStruct
	KindFixVec
	KindDynVec
	KindTable
)

var kindNames = [...]string{
	KindOption: "option",
	KindUnion:  "union",
	KindArray:  "array",
	KindStruct: "struct",
	KindFixVec: "fixvec",
	KindDynVec: "dynvec",
	KindTable:  "table",
}

func (k Kind) String() string {
	if k >= KindOption && k <= KindTable {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a layout name as printed by Kind.String back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k := KindOption; k <= KindTable; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("molecule: unknown layout kind %q", name)
}

// Status is the outcome code of a cut. Zero is success; any other value is
// a category (high nibble) or'ed with a reason (low nibble).
type Status uint8

const (
	StatusOK    Status = 0x00
	StatusError Status = 0xff
)

// Categories: which layout detected the problem.
const (
	CategoryOption Status = 0x10
	CategoryUnion  Status = 0x20
	CategoryArray  Status = 0x30
	CategoryStruct Status = 0x40
	CategoryFixVec Status = 0x50
	CategoryDynVec Status = 0x60
	CategoryTable  Status = 0x70
)

// Reasons: what is wrong with the segment.
const (
	ReasonTotalSize           Status = 0x01
	ReasonHeaderIsBroken      Status = 0x02
	ReasonDataIsShort         Status = 0x03
	ReasonDataIsEmpty         Status = 0x04
	ReasonFirstOffsetIsBroken Status = 0x05
	ReasonFirstFieldIsBroken  Status = 0x06
	ReasonFieldIsBroken       Status = 0x07
	ReasonIndexOutOfBounds    Status = 0x0f
)

// Sentinel errors, one per reason. A *CutError unwraps to the sentinel of
// its reason so callers can use errors.Is without decoding the status.
var (
	ErrTotalSize           = errors.New("total size mismatch")
	ErrHeaderIsBroken      = errors.New("header is broken")
	ErrDataIsShort         = errors.New("data is too short")
	ErrDataIsEmpty         = errors.New("data is empty")
	ErrFirstOffsetIsBroken = errors.New("first offset is broken")
	ErrFirstFieldIsBroken  = errors.New("first field is broken")
	ErrFieldIsBroken       = errors.New("field is broken")
	ErrIndexOutOfBounds    = errors.New("index out of bounds")
	ErrUnknownLayout       = errors.New("unknown layout")
)

var reasonErrs = map[Status]error{
	ReasonTotalSize:           ErrTotalSize,
	ReasonHeaderIsBroken:      ErrHeaderIsBroken,
	ReasonDataIsShort:         ErrDataIsShort,
	ReasonDataIsEmpty:         ErrDataIsEmpty,
	ReasonFirstOffsetIsBroken: ErrFirstOffsetIsBroken,
	ReasonFirstFieldIsBroken:  ErrFirstFieldIsBroken,
	ReasonFieldIsBroken:       ErrFieldIsBroken,
	ReasonIndexOutOfBounds:    ErrIndexOutOfBounds,
}

// OK reports whether s is StatusOK.
func (s Status) OK() bool { return s == StatusOK }

// Category returns the high nibble of s.
func (s Status) Category() Status { return s & 0xf0 }

// Reason returns the low nibble of s.
func (s Status) Reason() Status { return s & 0x0f }

// Kind returns the layout that produced s, or 0 when s carries no category
// (success, byte-string errors and StatusError).
func (s Status) Kind() Kind {
	if s == StatusError {
		return 0
	}
	k := Kind(s >> 4)
	if k < KindOption || k > KindTable {
		return 0
	}
	return k
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return ErrUnknownLayout.Error()
	}
	reason := fmt.Sprintf("reason(0x%02x)", uint8(s.Reason()))
	if err, ok := reasonErrs[s.Reason()]; ok {
		reason = err.Error()
	}
	if k := s.Kind(); k != 0 {
		return k.String() + ": " + reason
	}
	if s.Category() != 0 {
		return fmt.Sprintf("category(0x%02x): %s", uint8(s.Category()), reason)
	}
	return reason
}

// Err returns nil for StatusOK and a *CutError otherwise.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	return &CutError{Status: s}
}

// CutError is the error form of a failed Status.
type CutError struct {
	Status Status
}

func (e *CutError) Error() string {
	return "molecule: " + e.Status.String()
}

// Unwrap exposes the sentinel error of the status reason.
func (e *CutError) Unwrap() error {
	if e.Status == StatusError {
		return ErrUnknownLayout
	}
	return reasonErrs[e.Status.Reason()]
}

// StatusOf extracts the Status carried by err, or StatusError when err does
// not wrap a *CutError. A nil err yields StatusOK.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var ce *CutError
	if errors.As(err, &ce) {
		return ce.Status
	}
	return StatusError
}
