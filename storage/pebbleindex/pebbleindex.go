// Package pebbleindex keeps the category index in a pebble database.
//
// Layout:
//
//	seq/<category>                -> next sequence number (8 bytes, big endian)
//	idx/<category>/<20-digit seq> -> CID bytes
//
// Each append writes the entry and the bumped counter in one batch, so a
// crash never leaves a counter pointing past a missing entry.
package pebbleindex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/lightningrodlabs/where/storage"
)

// Index is a durable storage.Index.
type Index struct {
	db     *pebble.DB
	sync   bool
	logger *zap.Logger

	// mu guards db and next. Append and Close hold it exclusively.
	mu   sync.RWMutex
	next map[string]uint64
}

var _ storage.Index = (*Index)(nil)

type Options struct {
	// NoSync skips fsync on append. Entries may be lost on power failure but
	// never corrupted.
	NoSync bool
	Logger *zap.Logger
}

// Open opens or creates an index in dir.
func Open(dir string, opts Options) (*Index, error) {
	if dir == "" {
		return nil, errors.New("pebbleindex: directory is required")
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebbleindex: open %s: %w", dir, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{db: db, sync: !opts.NoSync, logger: logger, next: map[string]uint64{}}, nil
}

// Close closes the database. Later calls to Append or List return
// pebble.ErrClosed; closing twice is a no-op.
func (x *Index) Close() error {
	if x == nil {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return nil
	}
	err := x.db.Close()
	x.db = nil
	return err
}

func (x *Index) Append(category string, id cid.Cid) error {
	if !storage.ValidCategory(category) {
		return storage.ErrCategory
	}
	if !id.Defined() {
		return storage.ErrInvalidCID
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.db == nil {
		return pebble.ErrClosed
	}

	seq, err := x.nextSeq(category)
	if err != nil {
		return err
	}

	b := x.db.NewBatch()
	defer b.Close()
	if err := b.Set(entryKey(category, seq), id.Bytes(), nil); err != nil {
		return err
	}
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], seq+1)
	if err := b.Set(seqKey(category), ctr[:], nil); err != nil {
		return err
	}
	if err := x.db.Apply(b, x.writeOpts()); err != nil {
		x.logger.Error("index append failed", zap.String("category", category), zap.Error(err))
		return err
	}
	x.next[category] = seq + 1
	return nil
}

func (x *Index) List(category string) ([]cid.Cid, error) {
	if !storage.ValidCategory(category) {
		return nil, storage.ErrCategory
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.db == nil {
		return nil, pebble.ErrClosed
	}
	prefix := entryPrefix(category)
	iter, err := x.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []cid.Cid
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := cid.Cast(append([]byte(nil), iter.Value()...))
		if err != nil {
			// Unreadable entries are skipped; the index is enumeration-only.
			x.logger.Warn("skipping undecodable index entry",
				zap.String("category", category),
				zap.ByteString("key", iter.Key()),
				zap.Error(err))
			continue
		}
		out = append(out, id)
	}
	return out, iter.Error()
}

// nextSeq must be called with x.mu held.
func (x *Index) nextSeq(category string) (uint64, error) {
	if n, ok := x.next[category]; ok {
		return n, nil
	}
	v, closer, err := x.db.Get(seqKey(category))
	if errors.Is(err, pebble.ErrNotFound) {
		x.next[category] = 0
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	if len(v) != 8 {
		return 0, fmt.Errorf("pebbleindex: corrupt counter for %q", category)
	}
	n := binary.BigEndian.Uint64(v)
	x.next[category] = n
	return n, nil
}

func (x *Index) writeOpts() *pebble.WriteOptions {
	if x.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

func seqKey(category string) []byte { return []byte("seq/" + category) }

func entryPrefix(category string) []byte { return []byte("idx/" + category + "/") }

func entryKey(category string, seq uint64) []byte {
	return []byte(fmt.Sprintf("idx/%s/%020d", category, seq))
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	// '/' + 1 == '0'; prefixes always end in '/', so bumping the last byte
	// yields a tight exclusive bound.
	end[len(end)-1]++
	return end
}
