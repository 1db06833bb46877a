package catalog

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightningrodlabs/where/cidutil"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/piece"
	"github.com/lightningrodlabs/where/storage"
	"github.com/lightningrodlabs/where/storage/memory"
)

func newCatalog(t *testing.T) (*Catalog, *memory.CAS, *memory.Index) {
	t.Helper()
	cas := memory.NewCAS()
	index := memory.NewIndex()
	return New(cas, index), cas, index
}

func TestCreateGetTemplate(t *testing.T) {
	c, _, _ := newCatalog(t)

	tpl := piece.Template{Name: "grid", Surface: `{"w":10,"h":10}`}
	id, err := c.CreateTemplate(tpl)
	require.NoError(t, err)

	want, _, err := piece.Sum(tpl)
	require.NoError(t, err)
	assert.True(t, id.Equals(want))

	got, ok, err := c.GetTemplate(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tpl, got)
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	c, _, _ := newCatalog(t)

	missing := sum(t, []byte("nothing here"))
	_, ok, err := c.GetSpace(missing)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.GetTemplate(cid.Undef)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_WrongKind(t *testing.T) {
	c, _, _ := newCatalog(t)
	id, err := c.CreateSvgMarker(piece.SvgMarker{Name: "dot", Value: "<svg/>"})
	require.NoError(t, err)

	_, _, err = c.GetTemplate(id)
	assert.ErrorIs(t, err, piece.ErrMismatch)
}

func TestCreate_Invalid(t *testing.T) {
	c, cas, index := newCatalog(t)

	_, err := c.CreateTemplate(piece.Template{})
	assert.ErrorIs(t, err, piece.ErrInvalid)
	_, err = c.CreateEmojiGroup(piece.EmojiGroup{Name: "faces", Unicodes: []string{"ab"}})
	assert.ErrorIs(t, err, piece.ErrInvalid)
	_, err = c.Create(nil)
	assert.ErrorIs(t, err, piece.ErrInvalid)

	assert.Zero(t, cas.Len())
	ids, err := index.List(piece.KindTemplate.Category())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCreate_DuplicatesAreIndexedTwice(t *testing.T) {
	c, cas, _ := newCatalog(t)

	m := piece.SvgMarker{Name: "dot", Value: "<svg/>"}
	a, err := c.CreateSvgMarker(m)
	require.NoError(t, err)
	b, err := c.CreateSvgMarker(m)
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
	assert.Equal(t, 1, cas.Len())

	inv, err := c.Inventory()
	require.NoError(t, err)
	assert.Equal(t, []cid.Cid{a, a}, inv.SvgMarkers)

	entries, err := c.ListSvgMarkers()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestIndexed_PresentButUnlisted(t *testing.T) {
	c, cas, _ := newCatalog(t)

	data, err := piece.Encode(piece.Template{Name: "grid"})
	require.NoError(t, err)
	id, err := cas.Put(data)
	require.NoError(t, err)
	require.True(t, c.Has(id))

	ok, err := c.Indexed(piece.KindTemplate, id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.CreateTemplate(piece.Template{Name: "grid"})
	require.NoError(t, err)
	ok, err = c.Indexed(piece.KindTemplate, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Indexed(piece.KindSpace, id)
	require.NoError(t, err)
	assert.False(t, ok, "listing is per category")
}

func TestList_OrderAndTolerance(t *testing.T) {
	c, _, index := newCatalog(t)

	var ids []cid.Cid
	for _, name := range []string{"a", "b", "c"} {
		id, err := c.CreateTemplate(piece.Template{Name: name})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	// An index entry whose content never reached this store.
	require.NoError(t, index.Append(piece.KindTemplate.Category(), sum(t, []byte("gone"))))
	// An index entry pointing at content of another kind.
	marker, err := c.CreateSvgMarker(piece.SvgMarker{Name: "dot"})
	require.NoError(t, err)
	require.NoError(t, index.Append(piece.KindTemplate.Category(), marker))

	entries, err := c.ListTemplates()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.True(t, e.Hash.Equals(ids[i]))
	}
	assert.Equal(t, "a", entries[0].Value.Name)
	assert.Equal(t, "c", entries[2].Value.Name)

	generic, err := c.ListKind(piece.KindTemplate)
	require.NoError(t, err)
	assert.Len(t, generic, 3)
}

func TestSpaceAndPlayset(t *testing.T) {
	c, _, _ := newCatalog(t)

	tpl, err := c.CreateTemplate(piece.Template{Name: "grid"})
	require.NoError(t, err)
	grp, err := c.CreateEmojiGroup(piece.EmojiGroup{Name: "faces", Unicodes: []string{"😀", "🙂"}})
	require.NoError(t, err)
	sp := piece.Space{
		Name:     "board",
		Origin:   tpl,
		Marker:   piece.EmojiGroupRef(grp),
		Metadata: map[string]string{"round": "1"},
	}
	spID, err := c.CreateSpace(sp)
	require.NoError(t, err)

	ps := piece.Playset{Name: "kit", Templates: []cid.Cid{tpl}, EmojiGroups: []cid.Cid{grp}, Spaces: []cid.Cid{spID}}
	psID, err := c.CreatePlayset(ps)
	require.NoError(t, err)

	gotSpace, ok, err := c.GetSpace(spID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "board", gotSpace.Name)
	require.NotNil(t, gotSpace.Marker)
	assert.True(t, gotSpace.Marker.ID.Equals(grp))

	gotSet, ok, err := c.GetPlayset(psID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, gotSet.Spaces, 1)

	sets, err := c.ListPlaysets()
	require.NoError(t, err)
	assert.Len(t, sets, 1)

	inv, err := c.Inventory()
	require.NoError(t, err)
	assert.Len(t, inv.Templates, 1)
	assert.Len(t, inv.EmojiGroups, 1)
	assert.Len(t, inv.Spaces, 1)
	assert.Empty(t, inv.SvgMarkers)
}

func TestCreateKindAndRaw(t *testing.T) {
	c, _, _ := newCatalog(t)

	data, err := piece.Encode(piece.Template{Name: "grid"})
	require.NoError(t, err)
	id, err := c.CreateKind(piece.KindTemplate, data)
	require.NoError(t, err)
	assert.True(t, c.Has(id))

	raw, err := c.Raw(id)
	require.NoError(t, err)
	assert.Equal(t, data, raw)

	_, err = c.CreateKind(piece.KindSpace, data)
	assert.ErrorIs(t, err, piece.ErrMismatch)

	_, err = c.Raw(sum(t, []byte("x")))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, c.Has(cid.Undef))
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := New(memory.NewCAS(), memory.NewIndex(), WithMetrics(m), WithLogger(nil))

	_, err := c.CreateTemplate(piece.Template{Name: "grid"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PiecesCreated.WithLabelValues("Template")))
}

func sum(t *testing.T, data []byte) cid.Cid {
	t.Helper()
	id, err := cidutil.Sum(data)
	require.NoError(t, err)
	return id
}
