// Package catalog implements create, get and list for every piece kind on
// top of a content table and its category index.
//
// Create stores the canonical encoding under its hash and appends the hash to
// the kind's category. It performs no dedup against the index: creating the
// same value twice records the hash twice, and the content table stays the
// only authority on existence. Get never reports absence as an error. List
// skips entries whose content has vanished or no longer decodes.
package catalog

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/piece"
	"github.com/lightningrodlabs/where/storage"
)

// Catalog is safe for concurrent use if its CAS and Index are.
type Catalog struct {
	cas     storage.CAS
	index   storage.Index
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*Catalog)

func WithLogger(l *zap.Logger) Option { return func(c *Catalog) { c.logger = logging.OrNop(l) } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Catalog) { c.metrics = m } }

// New returns a catalog over cas and index. Both belong to one store instance.
func New(cas storage.CAS, index storage.Index, opts ...Option) *Catalog {
	c := &Catalog{cas: cas, index: index, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entry is one listed value with its hash.
type Entry[T piece.Piece] struct {
	Hash  cid.Cid
	Value T
}

// Create validates p, stores its canonical bytes and indexes the hash.
func (c *Catalog) Create(p piece.Piece) (cid.Cid, error) {
	if p == nil {
		return cid.Undef, fmt.Errorf("%w: nil value", piece.ErrInvalid)
	}
	if err := p.Validate(); err != nil {
		return cid.Undef, err
	}
	expected, data, err := piece.Sum(p)
	if err != nil {
		return cid.Undef, err
	}
	id, err := c.cas.Put(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("store %s: %w", p.Kind(), err)
	}
	if !id.Equals(expected) {
		return cid.Undef, fmt.Errorf("store %s: %w", p.Kind(), storage.ErrCIDMismatch)
	}
	if err := c.index.Append(p.Kind().Category(), id); err != nil {
		return cid.Undef, fmt.Errorf("index %s: %w", p.Kind(), err)
	}
	c.metrics.PieceCreated(p.Kind().String())
	c.logger.Debug("created", zap.Stringer("kind", p.Kind()), zap.Stringer("cid", id))
	return id, nil
}

// CreateKind decodes payload as kind k and creates it. The returned hash is
// that of the canonical re-encoding, which equals the hash of payload only
// when payload was canonical.
func (c *Catalog) CreateKind(k piece.Kind, payload []byte) (cid.Cid, error) {
	p, err := piece.Decode(k, payload)
	if err != nil {
		return cid.Undef, err
	}
	return c.Create(p)
}

// GetKind resolves id and decodes it as kind k.
func (c *Catalog) GetKind(k piece.Kind, id cid.Cid) (piece.Piece, bool, error) {
	data, ok, err := c.load(id)
	if err != nil || !ok {
		return nil, false, err
	}
	p, err := piece.Decode(k, data)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// ListKind lists the category of k in creation order.
func (c *Catalog) ListKind(k piece.Kind) ([]Entry[piece.Piece], error) {
	return list(c, k, func(data []byte) (piece.Piece, error) { return piece.Decode(k, data) })
}

// Has reports whether the content table holds id.
func (c *Catalog) Has(id cid.Cid) bool {
	return id.Defined() && c.cas.Has(id)
}

// Indexed reports whether id is listed in the category of k. Content can be
// present without being listed, for example when it sits in a read-only
// layer of a MultiCAS or was written through the raw CAS service.
func (c *Catalog) Indexed(k piece.Kind, id cid.Cid) (bool, error) {
	ids, err := c.index.List(k.Category())
	if err != nil {
		return false, fmt.Errorf("list %s: %w", k.Category(), err)
	}
	for _, x := range ids {
		if x.Equals(id) {
			return true, nil
		}
	}
	return false, nil
}

// Raw returns the stored bytes of id, or storage.ErrNotFound.
func (c *Catalog) Raw(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	return c.cas.Get(id)
}

// Inventory lists the hashes of every replicable piece, per category.
type Inventory struct {
	Templates   []cid.Cid
	SvgMarkers  []cid.Cid
	EmojiGroups []cid.Cid
	Spaces      []cid.Cid
}

// Inventory reads the category index only; it does not check that the
// listed content is still present.
func (c *Catalog) Inventory() (Inventory, error) {
	var inv Inventory
	for _, f := range []struct {
		kind piece.Kind
		dst  *[]cid.Cid
	}{
		{piece.KindTemplate, &inv.Templates},
		{piece.KindSvgMarker, &inv.SvgMarkers},
		{piece.KindEmojiGroup, &inv.EmojiGroups},
		{piece.KindSpace, &inv.Spaces},
	} {
		ids, err := c.index.List(f.kind.Category())
		if err != nil {
			return Inventory{}, fmt.Errorf("list %s: %w", f.kind.Category(), err)
		}
		*f.dst = ids
	}
	return inv, nil
}

func (c *Catalog) load(id cid.Cid) ([]byte, bool, error) {
	if !id.Defined() {
		return nil, false, nil
	}
	data, err := c.cas.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func get[T piece.Piece](c *Catalog, id cid.Cid) (T, bool, error) {
	var zero T
	data, ok, err := c.load(id)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := piece.DecodeAs[T](data)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func list[T piece.Piece](c *Catalog, k piece.Kind, decode func([]byte) (T, error)) ([]Entry[T], error) {
	ids, err := c.index.List(k.Category())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", k.Category(), err)
	}
	out := make([]Entry[T], 0, len(ids))
	for _, id := range ids {
		data, ok, err := c.load(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := decode(data)
		if err != nil {
			c.logger.Warn("skipping undecodable entry",
				zap.Stringer("kind", k), zap.Stringer("cid", id), zap.Error(err))
			continue
		}
		out = append(out, Entry[T]{Hash: id, Value: v})
	}
	return out, nil
}
