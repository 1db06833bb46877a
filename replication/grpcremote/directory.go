package grpcremote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/replication"
)

type Options struct {
	// DialTimeout bounds each connection attempt when non-zero.
	DialTimeout time.Duration
	// RPCTimeout applies to every ImportPiece call when non-zero.
	RPCTimeout time.Duration
	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
	// DialOptions are appended after the defaults.
	DialOptions []grpc.DialOption
	Logger      *zap.Logger
}

// Directory resolves store ids through a fixed id to target table.
// Connections are created on first use and kept until Close.
type Directory struct {
	peers map[string]string
	opts  Options

	mu     sync.Mutex
	conns  map[string]*grpc.ClientConn
	closed bool
}

var _ replication.Directory = (*Directory)(nil)

func NewDirectory(peers map[string]string, opts Options) *Directory {
	cp := make(map[string]string, len(peers))
	for id, target := range peers {
		cp[id] = target
	}
	opts.Logger = logging.OrNop(opts.Logger)
	return &Directory{peers: cp, opts: opts, conns: map[string]*grpc.ClientConn{}}
}

func (d *Directory) Remote(_ context.Context, storeID string) (replication.Remote, error) {
	target, ok := d.peers[storeID]
	if !ok {
		return nil, fmt.Errorf("unknown store %q", storeID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("directory closed")
	}
	cc, ok := d.conns[storeID]
	if !ok {
		var err error
		cc, err = grpc.NewClient(target, d.dialOptions()...)
		if err != nil {
			return nil, fmt.Errorf("dial %s (%s): %w", storeID, target, err)
		}
		d.conns[storeID] = cc
		d.opts.Logger.Debug("peer connection created", zap.String("store", storeID), zap.String("target", target))
	}
	c := NewClient(cc)
	c.Timeout = d.opts.RPCTimeout
	return c, nil
}

// Stores returns the configured store ids, sorted.
func (d *Directory) Stores() []string {
	ids := make([]string, 0, len(d.peers))
	for id := range d.peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every connection. Remotes obtained earlier stop working.
func (d *Directory) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	var errs []error
	for id, cc := range d.conns {
		if err := cc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
		delete(d.conns, id)
	}
	return errors.Join(errs...)
}

func (d *Directory) dialOptions() []grpc.DialOption {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if d.opts.DialTimeout > 0 {
		opts = append(opts, grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoff.DefaultConfig,
			MinConnectTimeout: d.opts.DialTimeout,
		}))
	}
	if d.opts.MaxMsgBytes > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(d.opts.MaxMsgBytes),
			grpc.MaxCallSendMsgSize(d.opts.MaxMsgBytes),
		))
	}
	return append(opts, d.opts.DialOptions...)
}
