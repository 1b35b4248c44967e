package molecule

import (
	"bytes"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/molecule/pkg/builder"
)

func TestCutBytes(t *testing.T) {
	requireFail(t, CutBytes(seg(t, []byte{1, 0, 0})), ReasonHeaderIsBroken)
	requireFail(t, CutBytes(seg(t, append(le(5), "abcd"...))), ReasonDataIsShort)
	requireFail(t, CutBytes(seg(t, le(0xffffffff))), ReasonDataIsShort)

	res := Default.CutBytes(seg(t, append(le(3), "abcdef"...)))
	require.True(t, res.OK())
	require.Equal(t, "abc", string(res.Segment))
	require.Equal(t, 3, cap(res.Segment))
}

func TestCutBytesRoundTrip(t *testing.T) {
	condition := func(payload []byte) bool {
		buf, err := builder.Bytes(payload)
		require.NoError(t, err)
		res := CutBytes(seg(t, buf))
		return res.OK() && bytes.Equal(res.Segment, payload)
	}
	require.NoError(t, quick.Check(condition, nil))
}
