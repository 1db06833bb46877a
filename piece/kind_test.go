package piece

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind_CaseSensitive(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	for _, tag := range []string{"template", "space", "svgMarker", "emojigroup", "Bogus", ""} {
		_, err := ParseKind(tag)
		assert.ErrorIs(t, err, ErrUnknownKind, tag)
	}
}

func TestKind_Replicable(t *testing.T) {
	assert.True(t, KindTemplate.Replicable())
	assert.True(t, KindSpace.Replicable())
	assert.False(t, KindPlayset.Replicable())
	assert.False(t, Kind(0).Replicable())
}

func TestKind_TextRoundTrip(t *testing.T) {
	b, err := KindEmojiGroup.MarshalText()
	require.NoError(t, err)
	var k Kind
	require.NoError(t, k.UnmarshalText(b))
	assert.Equal(t, KindEmojiGroup, k)
}

func TestSpaceDependencies(t *testing.T) {
	origin := mustID(t, "tpl")
	marker := mustID(t, "svg")

	deps := Space{Name: "s", Origin: origin}.Dependencies()
	require.Len(t, deps, 1)
	assert.Equal(t, KindTemplate, deps[0].Kind)

	deps = Space{Name: "s", Origin: origin, Marker: SvgRef(marker)}.Dependencies()
	require.Len(t, deps, 2)
	assert.Equal(t, Ref{Kind: KindSvgMarker, ID: marker}, deps[1])
}

func TestPlaysetRefsOrder(t *testing.T) {
	p := Playset{
		Name:        "p",
		Spaces:      []cid.Cid{mustID(t, "s")},
		EmojiGroups: []cid.Cid{mustID(t, "e")},
		SvgMarkers:  []cid.Cid{mustID(t, "m")},
		Templates:   []cid.Cid{mustID(t, "t")},
	}
	var kinds []Kind
	for _, r := range p.Refs() {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []Kind{KindTemplate, KindSvgMarker, KindEmojiGroup, KindSpace}, kinds)
}
