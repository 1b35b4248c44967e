package builder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/rawbytedev/molecule/internal/common"
)

// ErrUnsupported is returned by Marshal for Go types with no Molecule
// counterpart, such as maps, interfaces and platform sized integers.
var ErrUnsupported = errors.New("builder: unsupported type")

type encodeFunc func(v reflect.Value) ([]byte, error)

// Encoders are planned once per type.
var (
	plansMu sync.RWMutex
	plans   = make(map[reflect.Type]encodeFunc)
)

// Marshal encodes a Go value:
//
//   - bool and sized integers and floats are little-endian fixed values
//   - arrays of fixed values are arrays
//   - string and []byte are byte strings
//   - other slices of fixed values are fixvecs, the rest dynvecs
//   - pointers are options, nil being none
//   - structs are tables of their exported fields in declaration order
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: nil", ErrUnsupported)
	}
	enc, err := encoderFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return enc(rv)
}

func encoderFor(t reflect.Type) (encodeFunc, error) {
	plansMu.RLock()
	enc, ok := plans[t]
	plansMu.RUnlock()
	if ok {
		return enc, nil
	}

	plansMu.Lock()
	defer plansMu.Unlock()
	p := planner{pending: make(map[reflect.Type]encodeFunc)}
	enc, err := p.build(t)
	if err != nil {
		return nil, err
	}
	// Only a fully planned type graph reaches the shared cache.
	for pt, pe := range p.pending {
		plans[pt] = pe
	}
	return enc, nil
}

// planner collects the encoders of one Marshal call. Encoders that refer to
// each other, such as a table and a pointer to itself, are only published
// together, so a failure anywhere in the graph leaves plans untouched.
type planner struct {
	pending map[reflect.Type]encodeFunc
}

func (p *planner) lookup(t reflect.Type) (encodeFunc, bool) {
	if enc, ok := plans[t]; ok {
		return enc, true
	}
	enc, ok := p.pending[t]
	return enc, ok
}

// build must be called with plansMu held.
func (p *planner) build(t reflect.Type) (encodeFunc, error) {
	if enc, ok := p.lookup(t); ok {
		return enc, nil
	}
	if n := fixedSize(t); n > 0 {
		enc := func(v reflect.Value) ([]byte, error) {
			return appendFixed(make([]byte, 0, n), v), nil
		}
		p.pending[t] = enc
		return enc, nil
	}

	var enc encodeFunc
	switch t.Kind() {
	case reflect.String:
		enc = func(v reflect.Value) ([]byte, error) { return Bytes([]byte(v.String())) }
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			enc = func(v reflect.Value) ([]byte, error) { return Bytes(v.Bytes()) }
			break
		}
		if n := fixedSize(t.Elem()); n > 0 {
			enc = fixVecEncoder(n)
			break
		}
		elem, err := p.build(t.Elem())
		if err != nil {
			return nil, err
		}
		enc = dynVecEncoder(elem)
	case reflect.Pointer:
		// An option of an option would encode a present outer value around
		// a none as zero bytes, which reads back as none.
		if t.Elem().Kind() == reflect.Pointer {
			return nil, fmt.Errorf("%w: %s is an option of an option", ErrUnsupported, t)
		}
		elem, err := p.build(t.Elem())
		if err != nil {
			return nil, err
		}
		enc = func(v reflect.Value) ([]byte, error) {
			if v.IsNil() {
				return []byte{}, nil
			}
			return elem(v.Elem())
		}
	case reflect.Struct:
		return p.buildTable(t)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	p.pending[t] = enc
	return enc, nil
}

type tableField struct {
	index int
	enc   encodeFunc
}

// buildTable registers the table encoder before planning its fields so
// that self-referencing types through pointers or slices resolve to it.
func (p *planner) buildTable(t reflect.Type) (encodeFunc, error) {
	var fields []tableField
	enc := func(v reflect.Value) ([]byte, error) {
		out := make([][]byte, len(fields))
		for i, f := range fields {
			b, err := f.enc(v.Field(f.index))
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), t.Field(f.index).Name, err)
			}
			out[i] = b
		}
		return Table(out...)
	}
	p.pending[t] = enc

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fe, err := p.build(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
		}
		fields = append(fields, tableField{index: i, enc: fe})
	}
	return enc, nil
}

func fixVecEncoder(itemSize int) encodeFunc {
	return func(v reflect.Value) ([]byte, error) {
		total := uint64(v.Len())*uint64(itemSize) + common.NumberSize
		if err := fits(total); err != nil {
			return nil, err
		}
		out := common.AppendNumber(make([]byte, 0, total), uint32(v.Len()))
		for i := 0; i < v.Len(); i++ {
			out = appendFixed(out, v.Index(i))
		}
		return out, nil
	}
}

func dynVecEncoder(elem encodeFunc) encodeFunc {
	return func(v reflect.Value) ([]byte, error) {
		items := make([][]byte, v.Len())
		for i := range items {
			b, err := elem(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = b
		}
		return DynVec(items...)
	}
}

// fixedSize returns the encoded width of t, or 0 when t is not fixed-size.
func fixedSize(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		return 8
	case reflect.Array:
		n := fixedSize(t.Elem())
		if n == 0 || t.Len() == 0 || uint64(n)*uint64(t.Len()) > math.MaxUint32 {
			return 0
		}
		return n * t.Len()
	}
	return 0
}

func appendFixed(dst []byte, v reflect.Value) []byte {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return append(dst, 1)
		}
		return append(dst, 0)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendUint(dst, uint64(v.Int()), v.Type().Size())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return appendUint(dst, v.Uint(), v.Type().Size())
	case reflect.Float32:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v.Float()))
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			dst = appendFixed(dst, v.Index(i))
		}
	}
	return dst
}

func appendUint(dst []byte, x uint64, size uintptr) []byte {
	switch size {
	case 1:
		return append(dst, byte(x))
	case 2:
		return binary.LittleEndian.AppendUint16(dst, uint16(x))
	case 4:
		return binary.LittleEndian.AppendUint32(dst, uint32(x))
	default:
		return binary.LittleEndian.AppendUint64(dst, x)
	}
}
