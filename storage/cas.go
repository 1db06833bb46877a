// Package storage defines the persistence boundary of a playset store.
//
// A store has two parts: a content table (CAS) addressed by the CID of the
// stored bytes, and a category index (Index) that records creation order per
// category for enumeration. The content table is the only source of truth
// for existence; the index may hold duplicates or entries whose content is
// gone.
package storage

import "github.com/ipfs/go-cid"

// CAS is a content-addressable byte store.
//
// Contract:
// - Put MUST be idempotent: storing identical bytes twice is a no-op.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (cidutil.Sum).
// - Get MUST return ErrNotFound when the CID is absent.
// - Implementations MUST be safe for concurrent use.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
