// Package memory provides in-process content tables and category indexes.
package memory

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/cidutil"
	"github.com/lightningrodlabs/where/storage"
)

// CAS is a map-backed storage.CAS.
type CAS struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ storage.CAS = (*CAS)(nil)

func NewCAS() *CAS {
	return &CAS{m: make(map[string][]byte)}
}

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, err
	}
	k := id.KeyString()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.m[k]; ok {
		if !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	}
	c.m[k] = append([]byte(nil), b...)
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	c.mu.RLock()
	b, ok := c.m[id.KeyString()]
	c.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.m[id.KeyString()]
	return ok
}

// Len returns the number of stored objects.
func (c *CAS) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Index is a slice-backed storage.Index.
type Index struct {
	mu   sync.Mutex
	cats map[string][]cid.Cid
}

var _ storage.Index = (*Index)(nil)

func NewIndex() *Index {
	return &Index{cats: make(map[string][]cid.Cid)}
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
	x.cats[category] = append(x.cats[category], id)
	return nil
}

func (x *Index) List(category string) ([]cid.Cid, error) {
	if !storage.ValidCategory(category) {
		return nil, storage.ErrCategory
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]cid.Cid(nil), x.cats[category]...), nil
}
