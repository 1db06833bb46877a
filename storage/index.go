package storage

import "github.com/ipfs/go-cid"

// Index is an append-only, per-category list of hashes.
//
// Append never deduplicates and List returns entries in append order.
// Entries are never removed. Implementations MUST be safe for concurrent
// use; concurrent appends may interleave but must not lose or corrupt
// entries.
type Index interface {
	Append(category string, id cid.Cid) error
	List(category string) ([]cid.Cid, error)
}
