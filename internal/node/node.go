// Package node opens one store instance: its content table, its category
// index and the catalog over them.
package node

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/catalog"
	"github.com/lightningrodlabs/where/internal/config"
	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/internal/metrics"
	"github.com/lightningrodlabs/where/storage"
	"github.com/lightningrodlabs/where/storage/casconfig"
	"github.com/lightningrodlabs/where/storage/casregistry"
	"github.com/lightningrodlabs/where/storage/memory"
	"github.com/lightningrodlabs/where/storage/pebbleindex"

	_ "github.com/lightningrodlabs/where/storage/grpccas"
	_ "github.com/lightningrodlabs/where/storage/localfs"
)

const defaultBackend = "localfs"

type Node struct {
	CAS     storage.CAS
	Index   storage.Index
	Catalog *catalog.Catalog

	closers []func() error
}

// Open builds a Node from cfg.
//
// The content table comes from cfg.CASConfig when set, otherwise from the
// named casregistry backend (localfs under cfg.Dir by default). The index is
// a pebble database under cfg.IndexDir, or in memory when IndexDir is empty.
func Open(cfg config.StoreConfig, usage casregistry.Usage, logger *zap.Logger, m *metrics.Metrics) (*Node, error) {
	logger = logging.OrNop(logger)
	n := &Node{}

	cas, closeCAS, err := openCAS(cfg, usage)
	if err != nil {
		return nil, err
	}
	n.CAS = cas
	if closeCAS != nil {
		n.closers = append(n.closers, closeCAS)
	}

	if cfg.IndexDir == "" {
		logger.Warn("no index directory configured; category index is in memory")
		n.Index = memory.NewIndex()
	} else {
		idx, err := pebbleindex.Open(cfg.IndexDir, pebbleindex.Options{Logger: logger.Named("index")})
		if err != nil {
			_ = n.Close()
			return nil, fmt.Errorf("open index: %w", err)
		}
		n.Index = idx
		n.closers = append(n.closers, idx.Close)
	}

	n.Catalog = catalog.New(n.CAS, n.Index,
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithMetrics(m),
	)
	return n, nil
}

// Close releases the index and content table, index first.
func (n *Node) Close() error {
	var errs []error
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	n.closers = nil
	return errors.Join(errs...)
}

func openCAS(cfg config.StoreConfig, usage casregistry.Usage) (storage.CAS, func() error, error) {
	if cfg.CASConfig != "" {
		c, err := casconfig.LoadFile(cfg.CASConfig)
		if err != nil {
			return nil, nil, err
		}
		return c.Open(usage)
	}
	name := cfg.Backend
	if name == "" {
		name = defaultBackend
	}
	cas, closeFn, err := casregistry.OpenWithConfig(name, usage, map[string]string{"localfs-dir": cfg.Dir})
	if err != nil {
		return nil, nil, fmt.Errorf("open content table: %w", err)
	}
	return cas, closeFn, nil
}
