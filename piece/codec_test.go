package piece

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningrodlabs/where/cidutil"
)

func mustID(t *testing.T, s string) cid.Cid {
	t.Helper()
	id, err := cidutil.Sum([]byte(s))
	require.NoError(t, err)
	return id
}

func TestEncode_Deterministic(t *testing.T) {
	origin := mustID(t, "origin")
	s := Space{
		Name:     "board",
		Origin:   origin,
		Surface:  `{"w":10}`,
		Marker:   SvgRef(mustID(t, "dot")),
		Metadata: map[string]string{"b": "2", "a": "1", "c": "3"},
	}
	id1, b1, err := Sum(s)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		id2, b2, err := Sum(s)
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
		assert.True(t, id1.Equals(id2))
	}
	assert.Contains(t, string(b1), `"metadata":{"a":"1","b":"2","c":"3"}`)
}

func TestEncode_DistinctPayloadsDistinctHashes(t *testing.T) {
	origin := mustID(t, "origin")
	a := Space{Name: "board", Origin: origin, Metadata: map[string]string{"k": "v1"}}
	b := Space{Name: "board", Origin: origin, Metadata: map[string]string{"k": "v2"}}
	ida, _, err := Sum(a)
	require.NoError(t, err)
	idb, _, err := Sum(b)
	require.NoError(t, err)
	assert.False(t, ida.Equals(idb))

	tpl, _, err := Sum(Template{Name: "x", Surface: "y"})
	require.NoError(t, err)
	svg, _, err := Sum(SvgMarker{Name: "x", Value: "y"})
	require.NoError(t, err)
	assert.False(t, tpl.Equals(svg))
}

func TestEncode_NilAndEmptyCollectionsShareHash(t *testing.T) {
	origin := mustID(t, "origin")
	id1, _, err := Sum(Space{Name: "s", Origin: origin})
	require.NoError(t, err)
	id2, _, err := Sum(Space{Name: "s", Origin: origin, Metadata: map[string]string{}})
	require.NoError(t, err)
	assert.True(t, id1.Equals(id2))

	id3, _, err := Sum(Playset{Name: "p"})
	require.NoError(t, err)
	id4, _, err := Sum(Playset{Name: "p", Templates: []cid.Cid{}})
	require.NoError(t, err)
	assert.True(t, id3.Equals(id4))
}

func TestDecode_RoundTripEveryKind(t *testing.T) {
	tplID := mustID(t, "tpl")
	cases := []Piece{
		Template{Name: "grid", Surface: `{"html":"<svg/>"}`},
		SvgMarker{Name: "dot", Value: "<circle r='2'/>"},
		EmojiGroup{Name: "faces", Description: "smileys", Unicodes: []string{"😀", "😎"}},
		Space{Name: "board", Origin: tplID, Surface: "{}", Marker: EmojiGroupRef(mustID(t, "faces")), Metadata: map[string]string{"mode": "pin"}},
		Playset{Name: "set", Description: "d", Templates: []cid.Cid{tplID}, Spaces: []cid.Cid{mustID(t, "space")}},
	}
	for _, p := range cases {
		t.Run(p.Kind().String(), func(t *testing.T) {
			id, b, err := Sum(p)
			require.NoError(t, err)

			got, err := Decode(p.Kind(), b)
			require.NoError(t, err)

			id2, _, err := Sum(got)
			require.NoError(t, err)
			assert.True(t, id.Equals(id2))
		})
	}
}

func TestDecode_WrongKindIsMismatch(t *testing.T) {
	_, tplBytes, err := Sum(Template{Name: "grid", Surface: "{}"})
	require.NoError(t, err)

	for _, k := range []Kind{KindSvgMarker, KindEmojiGroup, KindSpace, KindPlayset} {
		_, err := Decode(k, tplBytes)
		assert.ErrorIs(t, err, ErrMismatch, "kind %s", k)
	}

	_, err = Decode(KindTemplate, []byte(`{"name":"x","surface":"y"} {}`))
	assert.ErrorIs(t, err, ErrMismatch)

	_, err = Decode(KindTemplate, []byte(`not json`))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestDecode_MarkerNeedsExactlyOneRef(t *testing.T) {
	origin := mustID(t, "origin").String()
	svg := mustID(t, "svg").String()
	payload := `{"name":"s","origin":"` + origin + `","surface":"","maybeMarker":{"svg":"` + svg + `","emojiGroup":"` + svg + `"},"metadata":{}}`
	_, err := Decode(KindSpace, []byte(payload))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestDecodeAs(t *testing.T) {
	_, b, err := Sum(SvgMarker{Name: "dot", Value: "v"})
	require.NoError(t, err)

	m, err := DecodeAs[SvgMarker](b)
	require.NoError(t, err)
	assert.Equal(t, "dot", m.Name)

	_, err = DecodeAs[Template](b)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Template{}.Validate(), ErrInvalid)
	assert.ErrorIs(t, Space{Name: "s"}.Validate(), ErrInvalid)
	assert.ErrorIs(t, EmojiGroup{Name: "g", Unicodes: []string{"ab"}}.Validate(), ErrInvalid)
	assert.NoError(t, EmojiGroup{Name: "g", Unicodes: []string{"🎲"}}.Validate())
	bad := Space{Name: "s", Origin: mustID(t, "o"), Marker: &MarkerPiece{Kind: KindTemplate, ID: mustID(t, "x")}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalid)
}
