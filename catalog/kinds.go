package catalog

import (
	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/piece"
)

func (c *Catalog) CreateTemplate(v piece.Template) (cid.Cid, error) { return c.Create(v) }

func (c *Catalog) GetTemplate(id cid.Cid) (piece.Template, bool, error) { return get[piece.Template](c, id) }

func (c *Catalog) ListTemplates() ([]Entry[piece.Template], error) {
	return list(c, piece.KindTemplate, piece.DecodeAs[piece.Template])
}

func (c *Catalog) CreateSvgMarker(v piece.SvgMarker) (cid.Cid, error) { return c.Create(v) }

func (c *Catalog) GetSvgMarker(id cid.Cid) (piece.SvgMarker, bool, error) { return get[piece.SvgMarker](c, id) }

func (c *Catalog) ListSvgMarkers() ([]Entry[piece.SvgMarker], error) {
	return list(c, piece.KindSvgMarker, piece.DecodeAs[piece.SvgMarker])
}

func (c *Catalog) CreateEmojiGroup(v piece.EmojiGroup) (cid.Cid, error) { return c.Create(v) }

func (c *Catalog) GetEmojiGroup(id cid.Cid) (piece.EmojiGroup, bool, error) { return get[piece.EmojiGroup](c, id) }

func (c *Catalog) ListEmojiGroups() ([]Entry[piece.EmojiGroup], error) {
	return list(c, piece.KindEmojiGroup, piece.DecodeAs[piece.EmojiGroup])
}

func (c *Catalog) CreateSpace(v piece.Space) (cid.Cid, error) { return c.Create(v) }

func (c *Catalog) GetSpace(id cid.Cid) (piece.Space, bool, error) { return get[piece.Space](c, id) }

func (c *Catalog) ListSpaces() ([]Entry[piece.Space], error) {
	return list(c, piece.KindSpace, piece.DecodeAs[piece.Space])
}

func (c *Catalog) CreatePlayset(v piece.Playset) (cid.Cid, error) { return c.Create(v) }

func (c *Catalog) GetPlayset(id cid.Cid) (piece.Playset, bool, error) { return get[piece.Playset](c, id) }

func (c *Catalog) ListPlaysets() ([]Entry[piece.Playset], error) {
	return list(c, piece.KindPlayset, piece.DecodeAs[piece.Playset])
}
