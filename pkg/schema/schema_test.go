package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/molecule"
	"github.com/rawbytedev/molecule/pkg/builder"
)

const peopleSchema = `
types:
  - name: Uint32
    kind: array
    item: byte
    count: 4
  - name: Point
    kind: struct
    fields:
      - {name: x, type: Uint32}
      - {name: y, type: Uint32}
  - name: Name
    kind: bytes
  - name: Names
    kind: dynvec
    item: Name
  - name: Points
    kind: fixvec
    item: Point
  - name: NameOpt
    kind: option
    item: Name
  - name: Person
    kind: table
    fields:
      - {name: name, type: Name}
      - {name: home, type: Point}
      - {name: nick, type: NameOpt}
      - {name: tags, type: Names}
  - name: PersonV1
    kind: table
    compatible: true
    fields:
      - {name: name, type: Name}
      - {name: home, type: Point}
  - name: Shape
    kind: union
    items:
      - {type: Point}
      - {id: 7, type: Person}
`

func mustParse(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse([]byte(peopleSchema))
	require.NoError(t, err)
	return s
}

func must(t *testing.T) func([]byte, error) []byte {
	return func(b []byte, err error) []byte {
		t.Helper()
		require.NoError(t, err)
		return b
	}
}

func person(t *testing.T, tags []byte) []byte {
	m := must(t)
	point := m(builder.Struct([]uint32{4, 4}, builder.Number(1), builder.Number(2)))
	return m(builder.Table(m(builder.Bytes([]byte("ada"))), point, builder.Option(nil), tags))
}

func goodTags(t *testing.T) []byte {
	m := must(t)
	return m(builder.DynVec(m(builder.Bytes([]byte("a"))), m(builder.Bytes([]byte("bc")))))
}

func TestParseLayout(t *testing.T) {
	s := mustParse(t)

	point, ok := s.Lookup("Point")
	require.True(t, ok)
	size, fixed := point.Size()
	assert.True(t, fixed)
	assert.Equal(t, uint32(8), size)
	assert.Equal(t, uint32(4), point.Fields[1].Offset)

	p, _ := s.Lookup("Person")
	_, fixed = p.Size()
	assert.False(t, fixed)

	shape, _ := s.Lookup("Shape")
	assert.Equal(t, []uint32{0, 7}, shape.ids())

	assert.Contains(t, s.Names(), "byte")
	assert.Len(t, s.Names(), 10)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"yaml", "types: [", ErrInvalidSchema},
		{"kind", "types: [{name: A, kind: map}]", ErrInvalidSchema},
		{"unnamed", "types: [{kind: bytes}]", ErrInvalidSchema},
		{"duplicate", "types: [{name: A, kind: bytes}, {name: A, kind: bytes}]", ErrDuplicateName},
		{"byte redefined", "types: [{name: byte, kind: bytes}]", ErrDuplicateName},
		{"unknown item", "types: [{name: A, kind: dynvec, item: B}]", ErrUnknownType},
		{"zero count", "types: [{name: A, kind: array, item: byte}]", ErrInvalidSchema},
		{"dynamic struct field", "types: [{name: B, kind: bytes}, {name: A, kind: struct, fields: [{name: b, type: B}]}]", ErrNotFixed},
		{"dynamic fixvec item", "types: [{name: B, kind: bytes}, {name: A, kind: fixvec, item: B}]", ErrNotFixed},
		{"cycle", "types: [{name: A, kind: struct, fields: [{name: a, type: A}]}]", ErrCycle},
		{"nested option", "types: [{name: A, kind: option, item: B}, {name: B, kind: option, item: byte}]", ErrInvalidSchema},
		{"repeated field", "types: [{name: A, kind: table, fields: [{name: a, type: byte}, {name: a, type: byte}]}]", ErrDuplicateName},
		{"repeated id", "types: [{name: A, kind: union, items: [{id: 1, type: byte}, {id: 1, type: byte}]}]", ErrDuplicateName},
		{"empty union", "types: [{name: A, kind: union}]", ErrInvalidSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecursiveTypesThroughTables(t *testing.T) {
	doc := `
types:
  - name: Node
    kind: table
    fields:
      - {name: value, type: byte}
      - {name: next, type: NodeOpt}
  - name: NodeOpt
    kind: option
    item: Node
`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)

	m := must(t)
	tail := m(builder.Table([]byte{2}, builder.Option(nil)))
	head := m(builder.Table([]byte{1}, builder.Option(tail)))
	require.NoError(t, s.Verify(head, "Node"))

	v, err := s.Navigate(head, "Node", "next.value")
	require.NoError(t, err)
	assert.Equal(t, molecule.Segment{2}, v.Seg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(peopleSchema), 0o600))
	s, err := Load(path)
	require.NoError(t, err)
	_, ok := s.Lookup("Shape")
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNavigate(t *testing.T) {
	s := mustParse(t)
	buf := molecule.Segment(person(t, goodTags(t)))

	v, err := s.Navigate(buf, "Person", "")
	require.NoError(t, err)
	assert.Equal(t, "Person", v.Type.Name)

	v, err = s.Navigate(buf, "Person", "name")
	require.NoError(t, err)
	payload, err := v.Payload()
	require.NoError(t, err)
	assert.Equal(t, "ada", string(payload))
	assert.Equal(t, uint32(4), v.Attr)

	v, err = s.Navigate(buf, "Person", "home.y")
	require.NoError(t, err)
	assert.Equal(t, molecule.Segment(builder.Number(2)), v.Seg)

	v, err = s.Navigate(buf, "Person", "3.1")
	require.NoError(t, err)
	payload, err = v.Payload()
	require.NoError(t, err)
	assert.Equal(t, "bc", string(payload))
	assert.Equal(t, uint32(2), v.Attr)

	v, err = s.Navigate(buf, "Person", "tags.1.0")
	require.NoError(t, err)
	assert.Equal(t, molecule.Segment("b"), v.Seg)

	v, err = s.Navigate(buf, "Person", "nick")
	require.NoError(t, err)
	assert.Empty(t, v.Seg)

	_, err = s.Navigate(buf, "Person", "nick.0")
	require.ErrorIs(t, err, ErrNone)
}

func TestNavigateUnion(t *testing.T) {
	s := mustParse(t)
	buf := must(t)(builder.Union(7, person(t, goodTags(t))))

	v, err := s.Navigate(buf, "Shape", "Person.home.x")
	require.NoError(t, err)
	assert.Equal(t, molecule.Segment(builder.Number(1)), v.Seg)

	_, err = s.Navigate(buf, "Shape", "7.name")
	require.NoError(t, err)

	_, err = s.Navigate(buf, "Shape", "Point")
	require.ErrorIs(t, err, ErrVariantMismatch)
	_, err = s.Navigate(buf, "Shape", "Circle")
	require.ErrorIs(t, err, ErrBadPath)
}

func TestNavigateErrors(t *testing.T) {
	s := mustParse(t)
	buf := person(t, goodTags(t))

	_, err := s.Navigate(buf, "Nobody", "name")
	require.ErrorIs(t, err, ErrUnknownType)

	for _, path := range []string{"age", "name.x", "home.x.0.0", "tags.-1"} {
		_, err = s.Navigate(buf, "Person", path)
		require.ErrorIs(t, err, ErrBadPath, path)
	}

	_, err = s.Navigate(buf, "Person", "tags.2")
	require.ErrorIs(t, err, molecule.ErrIndexOutOfBounds)
	assert.Equal(t, molecule.CategoryDynVec|molecule.ReasonIndexOutOfBounds, molecule.StatusOf(err))
	assert.Contains(t, err.Error(), "tags.2")

	_, err = s.Navigate(buf[:len(buf)-1], "Person", "tags")
	assert.Equal(t, molecule.CategoryTable|molecule.ReasonFieldIsBroken, molecule.StatusOf(err))
}

func TestNavigateStrictEngine(t *testing.T) {
	s := mustParse(t)
	buf := person(t, goodTags(t))
	// Declared length one byte too long: the default engine only notices
	// when cutting the last field.
	bad := append([]byte(nil), buf...)
	bad[0]++

	_, err := s.Navigate(bad, "Person", "name")
	require.NoError(t, err)

	s.Engine = molecule.New(molecule.Options{StrictOffsets: true})
	_, err = s.Navigate(bad, "Person", "name")
	require.ErrorIs(t, err, molecule.ErrDataIsShort)
}

func TestVerify(t *testing.T) {
	s := mustParse(t)
	m := must(t)

	good := person(t, goodTags(t))
	require.NoError(t, s.Verify(good, "Person"))
	require.NoError(t, s.Verify(good, "PersonV1"))
	require.NoError(t, s.Verify(m(builder.Union(7, good)), "Shape"))

	badTags := m(builder.DynVec([]byte{9, 0, 0, 0}))
	err := s.Verify(person(t, badTags), "Person")
	require.ErrorIs(t, err, molecule.ErrTotalSize)
	assert.Contains(t, err.Error(), "Person.tags.0")

	extra := m(builder.Table(m(builder.Bytes(nil)), make([]byte, 8), nil, goodTags(t), []byte{1}))
	require.ErrorIs(t, s.Verify(extra, "Person"), molecule.ErrHeaderIsBroken)
	require.NoError(t, s.Verify(extra, "PersonV1"))

	require.ErrorIs(t, s.Verify(m(builder.Union(3, good)), "Shape"), molecule.ErrUnknownItem)
	require.ErrorIs(t, s.Verify(make([]byte, 7), "Point"), molecule.ErrTotalSize)
	require.ErrorIs(t, s.Verify(good, "Nobody"), ErrUnknownType)
}

func BenchmarkNavigate(b *testing.B) {
	s, err := Parse([]byte(peopleSchema))
	if err != nil {
		b.Fatal(err)
	}
	tags, _ := builder.DynVec([]byte{1, 0, 0, 0, 'a'})
	name, _ := builder.Bytes([]byte("ada"))
	buf, _ := builder.Table(name, make([]byte, 8), nil, tags)
	b.ReportAllocs()
	for b.Loop() {
		if _, err := s.Navigate(buf, "Person", "tags.0"); err != nil {
			b.Fatal(err)
		}
	}
}
