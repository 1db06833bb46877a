package replication

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/catalog"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/piece"
	"github.com/lightningrodlabs/where/storage"
)

// Exporter pushes local content to remote stores.
//
// Every step is a single blocking round trip. Concurrent exports, including
// overlapping exports to the same destination, need no coordination.
type Exporter struct {
	catalog *catalog.Catalog
	dir     Directory
	opts    options
}

func NewExporter(cat *catalog.Catalog, dir Directory, opts ...Option) *Exporter {
	return &Exporter{catalog: cat, dir: dir, opts: buildOptions(opts)}
}

// ExportPiece sends the stored payload of id to storeID as kind.
//
// The payload must be present locally (KindNotFound otherwise) and must
// decode as kind (KindUnknownOrMismatchedType otherwise). Playsets are not
// replicable.
func (e *Exporter) ExportPiece(ctx context.Context, storeID string, kind piece.Kind, id cid.Cid) error {
	if !kind.Replicable() {
		return newError(KindUnknownOrMismatchedType, opExportPiece, id, fmt.Sprintf("%s is not replicable", kind), nil)
	}
	data, err := e.resolve(opExportPiece, kind, id)
	if err != nil {
		return err
	}
	remote, err := e.remote(ctx, opExportPiece, storeID)
	if err != nil {
		return err
	}
	return e.push(ctx, opExportPiece, remote, storeID, piece.Ref{Kind: kind, ID: id}, data, e.opts.logger)
}

// ExportSpace pushes the space's origin template, then its marker if any,
// then the space itself. It returns the hashes pushed, in that order.
//
// On failure the hashes pushed before the failing step are returned along
// with the error.
func (e *Exporter) ExportSpace(ctx context.Context, storeID string, id cid.Cid) ([]cid.Cid, error) {
	log := e.runLogger(opExportSpace, storeID, id)

	sp, ok, err := e.catalog.GetSpace(id)
	if err != nil {
		return nil, e.finish(log, opExportSpace, localErr(opExportSpace, id, err))
	}
	if !ok {
		return nil, e.finish(log, opExportSpace, newError(KindNotFound, opExportSpace, id, "space", nil))
	}
	remote, err := e.remote(ctx, opExportSpace, storeID)
	if err != nil {
		return nil, e.finish(log, opExportSpace, err)
	}

	refs := append(sp.Dependencies(), piece.Ref{Kind: piece.KindSpace, ID: id})
	exported := make([]cid.Cid, 0, len(refs))
	for _, ref := range refs {
		data, err := e.resolve(opExportSpace, ref.Kind, ref.ID)
		if err != nil {
			return exported, e.finish(log, opExportSpace, err)
		}
		if err := e.push(ctx, opExportSpace, remote, storeID, ref, data, log); err != nil {
			return exported, e.finish(log, opExportSpace, err)
		}
		exported = append(exported, ref.ID)
	}
	log.Info("space exported", zap.Int("pieces", len(exported)))
	return exported, e.finish(log, opExportSpace, nil)
}

// ExportPlayset pushes every member of the playset in the order templates,
// svg markers, emoji groups, spaces. It stops at the first failure.
//
// Spaces are pushed as opaque payloads. Their dependencies are not chased;
// a playset whose spaces refer to pieces outside it exports incompletely.
func (e *Exporter) ExportPlayset(ctx context.Context, storeID string, id cid.Cid) error {
	_, err := e.ExportPlaysetReport(ctx, storeID, id)
	return err
}

// ExportPlaysetReport is ExportPlayset returning the refs pushed, in order.
// On failure the refs pushed before the failing step are returned.
func (e *Exporter) ExportPlaysetReport(ctx context.Context, storeID string, id cid.Cid) ([]piece.Ref, error) {
	log := e.runLogger(opExportPlayset, storeID, id)

	ps, ok, err := e.catalog.GetPlayset(id)
	if err != nil {
		return nil, e.finish(log, opExportPlayset, localErr(opExportPlayset, id, err))
	}
	if !ok {
		return nil, e.finish(log, opExportPlayset, newError(KindNotFound, opExportPlayset, id, "playset", nil))
	}
	remote, err := e.remote(ctx, opExportPlayset, storeID)
	if err != nil {
		return nil, e.finish(log, opExportPlayset, err)
	}

	refs := ps.Refs()
	exported := make([]piece.Ref, 0, len(refs))
	for _, ref := range refs {
		data, err := e.resolve(opExportPlayset, ref.Kind, ref.ID)
		if err != nil {
			return exported, e.finish(log, opExportPlayset, err)
		}
		if err := e.push(ctx, opExportPlayset, remote, storeID, ref, data, log); err != nil {
			return exported, e.finish(log, opExportPlayset, err)
		}
		exported = append(exported, ref)
	}
	log.Info("playset exported",
		zap.String("name", ps.Name),
		zap.Int("templates", len(ps.Templates)),
		zap.Int("svg_markers", len(ps.SvgMarkers)),
		zap.Int("emoji_groups", len(ps.EmojiGroups)),
		zap.Int("spaces", len(ps.Spaces)),
	)
	return exported, e.finish(log, opExportPlayset, nil)
}

// resolve loads id and checks that it decodes as kind.
func (e *Exporter) resolve(op string, kind piece.Kind, id cid.Cid) ([]byte, error) {
	data, err := e.catalog.Raw(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, newError(KindNotFound, op, id, kind.String(), nil)
	case errors.Is(err, storage.ErrInvalidCID):
		return nil, newError(KindNotFound, op, id, kind.String()+" hash is undefined", err)
	case err != nil:
		return nil, newError(KindInternal, op, id, "read "+kind.String(), err)
	}
	if _, err := piece.Decode(kind, data); err != nil {
		return nil, newError(KindUnknownOrMismatchedType, op, id, "stored content is not a "+kind.String(), err)
	}
	return data, nil
}

func (e *Exporter) remote(ctx context.Context, op, storeID string) (Remote, error) {
	if e.dir == nil {
		return nil, newError(KindRemoteInvocationFailure, op, cid.Undef, "no directory configured", nil)
	}
	r, err := e.dir.Remote(ctx, storeID)
	if err != nil {
		return nil, newError(KindRemoteInvocationFailure, op, cid.Undef, fmt.Sprintf("resolve store %q", storeID), err)
	}
	return r, nil
}

func (e *Exporter) push(ctx context.Context, op string, remote Remote, storeID string, ref piece.Ref, data []byte, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		e.opts.metrics.ExportStep(ref.Kind.String(), metrics.OutcomeFailed)
		return newError(KindRemoteInvocationFailure, op, ref.ID, "canceled before push", err)
	}
	if err := remote.ImportPiece(ctx, ref.Kind, data); err != nil {
		e.opts.metrics.ExportStep(ref.Kind.String(), metrics.OutcomeFailed)
		log.Warn("push failed", zap.Stringer("kind", ref.Kind), zap.Stringer("cid", ref.ID), zap.Error(err))
		return newError(KindRemoteInvocationFailure, op, ref.ID, fmt.Sprintf("import %s at %q", ref.Kind, storeID), err)
	}
	e.opts.metrics.ExportStep(ref.Kind.String(), metrics.OutcomeOK)
	log.Debug("pushed", zap.Stringer("kind", ref.Kind), zap.Stringer("cid", ref.ID))
	return nil
}

func (e *Exporter) runLogger(op, storeID string, id cid.Cid) *zap.Logger {
	return e.opts.logger.With(
		zap.String("op", op),
		zap.String("run", uuid.NewString()),
		zap.String("store", storeID),
		zap.Stringer("cid", id),
	)
}

func (e *Exporter) finish(log *zap.Logger, op string, err error) error {
	if err != nil {
		e.opts.metrics.ExportRun(op, metrics.OutcomeFailed)
		log.Warn("export aborted", zap.Error(err))
		return err
	}
	e.opts.metrics.ExportRun(op, metrics.OutcomeOK)
	return nil
}

// localErr classifies a catalog read failure.
func localErr(op string, id cid.Cid, err error) error {
	if errors.Is(err, piece.ErrMismatch) {
		return newError(KindUnknownOrMismatchedType, op, id, "stored content has the wrong kind", err)
	}
	return newError(KindInternal, op, id, "read", err)
}
