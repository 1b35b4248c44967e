package builder

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/molecule"
	"github.com/rawbytedev/molecule/zc"
)

type point struct {
	X, Y int32
}

type person struct {
	Name   string
	Home   point
	Nick   *string
	Tags   []string
	Scores []uint16
	ID     [4]byte
	hidden int
}

type node struct {
	Value uint8
	Next  *node
}

func TestMarshalScalars(t *testing.T) {
	out, err := Marshal(uint16(0x0102))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01}, out)

	out, err = Marshal(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, out)

	out, err = Marshal([2]int16{-1, 2})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 2, 0}, out)

	out, err = Marshal("hi")
	require.NoError(t, err)
	want, _ := Bytes([]byte("hi"))
	assert.Equal(t, want, out)

	out, err = Marshal([]uint32{7})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 7, 0, 0, 0}, out)
}

func TestMarshalMatchesBuilder(t *testing.T) {
	nick := "ace"
	p := person{
		Name:   "ada",
		Home:   point{X: 1, Y: -1},
		Nick:   &nick,
		Tags:   []string{"a", "bc"},
		Scores: []uint16{10, 20},
		ID:     [4]byte{1, 2, 3, 4},
		hidden: 9,
	}
	got, err := Marshal(&p)
	require.NoError(t, err)

	must := func(b []byte, err error) []byte {
		t.Helper()
		require.NoError(t, err)
		return b
	}
	name := must(Bytes([]byte("ada")))
	home := must(Table(Number(1), Number(0xffffffff)))
	nickEnc := must(Bytes([]byte("ace")))
	tags := must(DynVec(must(Bytes([]byte("a"))), must(Bytes([]byte("bc")))))
	scores := must(FixVec([]byte{10, 0}, []byte{20, 0}))
	want := must(Table(name, home, nickEnc, tags, scores, []byte{1, 2, 3, 4}))
	assert.Equal(t, want, got)

	res := molecule.CutTable(got, 6, 3)
	require.True(t, res.OK())
	res = molecule.CutDynVec(res.Segment, 1)
	require.True(t, res.OK())
	s, err := zc.Options{}.String(res.Segment)
	require.NoError(t, err)
	assert.Equal(t, "bc", s)
}

func TestMarshalRecursive(t *testing.T) {
	list := &node{Value: 1, Next: &node{Value: 2}}
	got, err := Marshal(list)
	require.NoError(t, err)

	next := molecule.CutTable(got, 2, 1)
	require.True(t, next.OK())
	opt := molecule.CutOption(next.Segment)
	require.Equal(t, uint32(1), opt.Attr)
	value := molecule.CutTable(opt.Segment, 2, 0)
	require.True(t, value.OK())
	assert.Equal(t, []byte{2}, value.Segment.Bytes())
}

func TestMarshalUnsupported(t *testing.T) {
	var inner *uint8
	for _, v := range []any{nil, 1, map[string]int{}, struct{ C chan int }{}, [][2]any{}, &inner, []**string{}} {
		_, err := Marshal(v)
		require.ErrorIs(t, err, ErrUnsupported, "%T", v)
	}
}

type brokenList struct {
	Next *brokenList
	Bad  map[string]int
	Tail uint8
}

func TestMarshalFailedPlanIsNotCached(t *testing.T) {
	_, err := Marshal(brokenList{})
	require.ErrorIs(t, err, ErrUnsupported)

	// the pointer type was planned on the way to the failing field
	_, err = Marshal(&brokenList{})
	require.ErrorIs(t, err, ErrUnsupported)
	_, err = Marshal([]brokenList{{}})
	require.ErrorIs(t, err, ErrUnsupported)

	plansMu.RLock()
	defer plansMu.RUnlock()
	for _, v := range []any{brokenList{}, &brokenList{}} {
		_, cached := plans[reflect.TypeOf(v)]
		assert.False(t, cached, "%T", v)
	}
}

func BenchmarkMarshal(b *testing.B) {
	p := person{Name: "ada", Tags: []string{"a", "b", "c"}, Scores: []uint16{1, 2, 3}}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Marshal(p); err != nil {
			b.Fatal(err)
		}
	}
}
