// Package schema describes Molecule layouts at runtime and navigates or
// verifies buffers with them.
//
// A schema is a YAML document listing named types:
//
//	types:
//	  - name: Hash
//	    kind: array
//	    item: byte
//	    count: 32
//	  - name: Name
//	    kind: bytes
//	  - name: Person
//	    kind: table
//	    fields:
//	      - {name: id, type: Hash}
//	      - {name: name, type: Name}
//
// The built-in type byte is always available.
package schema

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/molecule"
)

var (
	ErrInvalidSchema = errors.New("schema: invalid schema")
	ErrUnknownType   = errors.New("schema: unknown type")
	ErrDuplicateName = errors.New("schema: duplicate name")
	ErrNotFixed      = errors.New("schema: item is not fixed-size")
	ErrCycle         = errors.New("schema: fixed-size type contains itself")
)

// Byte is the built-in single byte type.
var Byte = &Type{Name: "byte", Kind: KindByte, size: 1, fixed: true}

type document struct {
	Types []typeDef `yaml:"types"`
}

type typeDef struct {
	Name       string     `yaml:"name"`
	Kind       string     `yaml:"kind"`
	Item       string     `yaml:"item"`
	Count      uint32     `yaml:"count"`
	Fields     []fieldDef `yaml:"fields"`
	Items      []itemDef  `yaml:"items"`
	Compatible bool       `yaml:"compatible"`
}

type fieldDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type itemDef struct {
	ID   *uint32 `yaml:"id"`
	Type string  `yaml:"type"`
}

// Schema is a set of resolved types. It is immutable after Parse and safe
// for concurrent use.
type Schema struct {
	types map[string]*Type
	// Engine performs the cuts; nil means molecule.Default.
	Engine *molecule.Engine
}

// Load reads and parses the schema file at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	Logger().Debug("schema loaded", zap.String("path", path), zap.Int("types", len(s.types)))
	return s, nil
}

// Parse decodes and resolves a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return build(doc.Types)
}

func build(defs []typeDef) (*Schema, error) {
	s := &Schema{types: map[string]*Type{Byte.Name: Byte}}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: type without a name", ErrInvalidSchema)
		}
		if _, dup := s.types[d.Name]; dup {
			return nil, fmt.Errorf("%w: type %q", ErrDuplicateName, d.Name)
		}
		k, ok := parseKind(d.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: type %q has kind %q", ErrInvalidSchema, d.Name, d.Kind)
		}
		s.types[d.Name] = &Type{Name: d.Name, Kind: k, Count: d.Count, Compatible: d.Compatible}
	}
	for _, d := range defs {
		if err := s.link(s.types[d.Name], d); err != nil {
			return nil, err
		}
	}
	state := make(map[*Type]uint8)
	for _, d := range defs {
		if err := layout(s.types[d.Name], state); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) lookup(owner, name string) (*Type, error) {
	t, ok := s.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q referenced by %q", ErrUnknownType, name, owner)
	}
	return t, nil
}

// link resolves the type references of d into t.
func (s *Schema) link(t *Type, d typeDef) error {
	var err error
	switch t.Kind {
	case KindArray, KindFixVec, KindDynVec, KindOption:
		if t.Item, err = s.lookup(t.Name, d.Item); err != nil {
			return err
		}
		if t.Kind == KindArray && t.Count == 0 {
			return fmt.Errorf("%w: array %q needs a non-zero count", ErrInvalidSchema, t.Name)
		}
		if t.Kind == KindOption && t.Item.Kind == KindOption {
			return fmt.Errorf("%w: option %q wraps another option", ErrInvalidSchema, t.Name)
		}
	case KindBytes:
		t.Item = Byte
	case KindStruct, KindTable:
		seen := make(map[string]bool, len(d.Fields))
		for _, f := range d.Fields {
			if f.Name == "" || seen[f.Name] {
				return fmt.Errorf("%w: field %q in %q", ErrDuplicateName, f.Name, t.Name)
			}
			seen[f.Name] = true
			ft, err := s.lookup(t.Name, f.Type)
			if err != nil {
				return err
			}
			t.Fields = append(t.Fields, Field{Name: f.Name, Type: ft})
		}
	case KindUnion:
		if len(d.Items) == 0 {
			return fmt.Errorf("%w: union %q has no items", ErrInvalidSchema, t.Name)
		}
		seen := make(map[uint32]bool, len(d.Items))
		for i, it := range d.Items {
			id := uint32(i)
			if it.ID != nil {
				id = *it.ID
			}
			if seen[id] {
				return fmt.Errorf("%w: union %q repeats id %d", ErrDuplicateName, t.Name, id)
			}
			seen[id] = true
			vt, err := s.lookup(t.Name, it.Type)
			if err != nil {
				return err
			}
			t.Items = append(t.Items, Variant{ID: id, Type: vt})
		}
	}
	return nil
}

const (
	visiting = 1
	done     = 2
)

// layout computes sizes and struct field offsets. Only arrays and structs
// are fixed-size, and their members must be too.
func layout(t *Type, state map[*Type]uint8) error {
	switch state[t] {
	case done:
		return nil
	case visiting:
		return fmt.Errorf("%w: %q", ErrCycle, t.Name)
	}
	state[t] = visiting
	defer func() { state[t] = done }()

	switch t.Kind {
	case KindArray:
		n, err := fixedMember(t, t.Item, state)
		if err != nil {
			return err
		}
		total := uint64(n) * uint64(t.Count)
		if total > math.MaxUint32 {
			return fmt.Errorf("%w: %q is larger than 4GiB", ErrInvalidSchema, t.Name)
		}
		t.size, t.fixed = uint32(total), true
	case KindStruct:
		var off uint64
		for i := range t.Fields {
			n, err := fixedMember(t, t.Fields[i].Type, state)
			if err != nil {
				return err
			}
			t.Fields[i].Offset = uint32(off)
			off += uint64(n)
			if off > math.MaxUint32 {
				return fmt.Errorf("%w: %q is larger than 4GiB", ErrInvalidSchema, t.Name)
			}
		}
		t.size, t.fixed = uint32(off), true
	case KindFixVec:
		if _, err := fixedMember(t, t.Item, state); err != nil {
			return err
		}
	}
	return nil
}

func fixedMember(owner, member *Type, state map[*Type]uint8) (uint32, error) {
	if member.Kind == KindArray || member.Kind == KindStruct {
		if err := layout(member, state); err != nil {
			return 0, err
		}
	}
	n, ok := member.Size()
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrNotFixed, member.Name, owner.Name)
	}
	return n, nil
}

// Lookup returns the type called name.
func (s *Schema) Lookup(name string) (*Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names lists the declared types in lexical order, byte included.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.types))
	for n := range s.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Schema) engine() *molecule.Engine {
	if s.Engine != nil {
		return s.Engine
	}
	return molecule.Default
}

func (s *Schema) root(name string) (*Type, error) {
	t, ok := s.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}
