// Package cidutil derives content identifiers for canonical piece bytes.
//
// Every hash in this module is a CIDv1 using the "raw" multicodec and a
// sha2-256 multihash over the exact bytes that were stored.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sum returns the CIDv1 (raw + sha2-256) of data.
func Sum(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String returns the text form of Sum(data), or "" if hashing fails.
func String(data []byte) string {
	id, err := Sum(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return id.String()
}

// Parse decodes a CID string and requires it to match the raw + sha2-256 contract.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if err := Check(id); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Check reports whether id is a defined CIDv1 raw + sha2-256 identifier.
func Check(id cid.Cid) error {
	if !id.Defined() {
		return fmt.Errorf("cidutil: undefined cid")
	}
	p := id.Prefix()
	if p.Version != 1 || p.Codec != cid.Raw || p.MhType != multihash.SHA2_256 {
		return fmt.Errorf("cidutil: unsupported cid %s (want v1 raw sha2-256)", id)
	}
	return nil
}

// Verify recomputes the CID of data and compares it with id.
func Verify(id cid.Cid, data []byte) (bool, error) {
	got, err := Sum(data)
	if err != nil {
		return false, err
	}
	return got.Equals(id), nil
}
