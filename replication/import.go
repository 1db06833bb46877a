package replication

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/catalog"
	"github.com/lightningrodlabs/where/cidutil"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/piece"
)

// Importer applies pieces pushed by peers to the local catalog.
//
// It implements Remote, so an Importer can stand in for a peer in process.
type Importer struct {
	catalog *catalog.Catalog
	opts    options
}

var _ Remote = (*Importer)(nil)

func NewImporter(cat *catalog.Catalog, opts ...Option) *Importer {
	return &Importer{catalog: cat, opts: buildOptions(opts)}
}

// ImportTagged parses the wire type tag and imports payload.
func (im *Importer) ImportTagged(ctx context.Context, tag string, payload []byte) error {
	kind, err := ParseTag(tag)
	if err != nil {
		im.opts.metrics.Imported(tag, metrics.OutcomeRejected)
		im.opts.logger.Warn("import rejected", zap.String("kind", tag), zap.Error(err))
		return err
	}
	return im.ImportPiece(ctx, kind, payload)
}

// ImportPiece stores payload as kind unless content with the same hash is
// already present and listed under kind, in which case it succeeds without
// writing anything. Content that is present but unlisted goes through the
// normal create path so that it becomes listable.
//
// References inside the payload (a space's origin and marker) are not
// checked against the local store.
func (im *Importer) ImportPiece(_ context.Context, kind piece.Kind, payload []byte) error {
	log := im.opts.logger.With(zap.Stringer("kind", kind))
	if !kind.Replicable() {
		im.opts.metrics.Imported(kind.String(), metrics.OutcomeRejected)
		return newError(KindUnknownOrMismatchedType, opImport, cid.Undef, fmt.Sprintf("%s is not replicable", kind), nil)
	}

	id, err := cidutil.Sum(payload)
	if err != nil {
		return newError(KindInternal, opImport, cid.Undef, "hash payload", err)
	}
	log = log.With(zap.Stringer("cid", id))

	if im.catalog.Has(id) {
		indexed, err := im.catalog.Indexed(kind, id)
		if err != nil {
			return newError(KindInternal, opImport, id, "read index", err)
		}
		if indexed {
			im.opts.metrics.Imported(kind.String(), metrics.OutcomeDuplicate)
			log.Debug("already present")
			return nil
		}
		log.Debug("present but not listed; indexing")
	}

	p, err := piece.Decode(kind, payload)
	if err != nil {
		im.opts.metrics.Imported(kind.String(), metrics.OutcomeRejected)
		log.Warn("import rejected", zap.Error(err))
		return newError(KindUnknownOrMismatchedType, opImport, id, "decode "+kind.String(), err)
	}

	// Compare before writing so a non-canonical payload leaves no trace.
	canonical, _, err := piece.Sum(p)
	if err != nil {
		return newError(KindInternal, opImport, id, "encode "+kind.String(), err)
	}
	if !canonical.Equals(id) {
		im.opts.metrics.Imported(kind.String(), metrics.OutcomeRejected)
		log.Error("payload is not canonical", zap.Stringer("canonical", canonical))
		return newError(KindInvariantViolation, opImport, id, "re-encoded hash is "+canonical.String(), nil)
	}

	created, err := im.catalog.Create(p)
	if err != nil {
		im.opts.metrics.Imported(kind.String(), metrics.OutcomeFailed)
		log.Error("import failed", zap.Error(err))
		return newError(KindInternal, opImport, id, "create "+kind.String(), err)
	}
	if !created.Equals(id) {
		im.opts.metrics.Imported(kind.String(), metrics.OutcomeRejected)
		log.Error("created hash differs", zap.Stringer("created", created))
		return newError(KindInvariantViolation, opImport, id, "created as "+created.String(), nil)
	}

	im.opts.metrics.Imported(kind.String(), metrics.OutcomeCreated)
	log.Info("imported")
	return nil
}
