// Package replication copies pieces between stores.
//
// Export is push-based. The exporter resolves content in its own catalog and
// asks the destination to import each piece, dependencies first. Import is
// idempotent: content already present under the payload's hash is accepted
// without touching the store, so the recovery for any partial failure is to
// rerun the whole export.
//
// Nothing here is transactional across stores. A failed export leaves the
// pieces pushed so far in place at the destination.
package replication

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/piece"
)

// Remote is a handle on another store's import endpoint.
type Remote interface {
	ImportPiece(ctx context.Context, kind piece.Kind, payload []byte) error
}

// Directory resolves destination store ids to remotes.
type Directory interface {
	Remote(ctx context.Context, storeID string) (Remote, error)
}

// StaticDirectory is a fixed map of store ids to remotes.
type StaticDirectory map[string]Remote

func (d StaticDirectory) Remote(_ context.Context, storeID string) (Remote, error) {
	r, ok := d[storeID]
	if !ok || r == nil {
		return nil, fmt.Errorf("unknown store %q", storeID)
	}
	return r, nil
}

// ParseTag maps a wire type tag to a replicable kind.
func ParseTag(tag string) (piece.Kind, error) {
	k, err := piece.ParseKind(tag)
	if err == nil && !k.Replicable() {
		err = fmt.Errorf("%s is not replicable", k)
	}
	if err != nil {
		return 0, newError(KindUnknownOrMismatchedType, opImport, cid.Undef, fmt.Sprintf("type tag %q", tag), err)
	}
	return k, nil
}

type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = logging.OrNop(l) } }

func WithMetrics(m *metrics.Metrics) Option { return func(o *options) { o.metrics = m } }

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const (
	opExportPiece   = "export-piece"
	opExportSpace   = "export-space"
	opExportPlayset = "export-playset"
	opImport        = "import-piece"
)
