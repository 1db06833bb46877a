// Package testkit holds conformance suites shared by every storage backend.
package testkit

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/cidutil"
	"github.com/lightningrodlabs/where/storage"
)

// NewCAS constructs a fresh, empty CAS instance for a test.
// The returned CAS MUST be isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want := []byte(`{"name":"grid","surface":"{}"}`)

		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.Sum(want)
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		if !id.Equals(wantID) {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")

		id1, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if !id1.Equals(id2) {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("ConcurrentPutSameBytes", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("raced bytes")

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := cas.Put(b); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent Put failed: %v", err)
		}
		id, _ := cidutil.Sum(b)
		got, err := cas.Get(id)
		if err != nil || !bytes.Equal(got, b) {
			t.Fatalf("Get after concurrent Put: %v", err)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id, err := cidutil.Sum(b)
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}

		if cas.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		_, err = cas.Get(id)
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err := cas.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !cas.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		if cas.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}

// NewIndex constructs a fresh, empty Index for a test.
type NewIndex func(t *testing.T) storage.Index

func RunIndexConformance(t *testing.T, newIndex NewIndex) {
	t.Helper()

	ids := make([]cid.Cid, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := cidutil.Sum([]byte(fmt.Sprintf("entry-%d", i)))
		if err != nil {
			t.Fatalf("Sum failed: %v", err)
		}
		ids = append(ids, id)
	}

	t.Run("AppendOrder", func(t *testing.T) {
		idx := newIndex(t)
		for _, id := range ids {
			if err := idx.Append("templates", id); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		got, err := idx.List("templates")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != len(ids) {
			t.Fatalf("List len: got %d want %d", len(got), len(ids))
		}
		for i := range ids {
			if !got[i].Equals(ids[i]) {
				t.Fatalf("List[%d]: got %s want %s", i, got[i], ids[i])
			}
		}
	})

	t.Run("CategoriesIsolated", func(t *testing.T) {
		idx := newIndex(t)
		if err := idx.Append("spaces", ids[0]); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		got, err := idx.List("templates")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty templates list, got %d", len(got))
		}
	})

	t.Run("DuplicatesKept", func(t *testing.T) {
		idx := newIndex(t)
		for i := 0; i < 2; i++ {
			if err := idx.Append("spaces", ids[1]); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		got, err := idx.List("spaces")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected duplicate entries to be kept, got %d", len(got))
		}
	})

	t.Run("ConcurrentAppend", func(t *testing.T) {
		idx := newIndex(t)
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if err := idx.Append("emoji-groups", ids[i%len(ids)]); err != nil {
					t.Errorf("Append failed: %v", err)
				}
			}(i)
		}
		wg.Wait()
		got, err := idx.List("emoji-groups")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 16 {
			t.Fatalf("concurrent appends lost entries: got %d want 16", len(got))
		}
	})

	t.Run("RejectBadCategory", func(t *testing.T) {
		idx := newIndex(t)
		if err := idx.Append("Bad/Category", ids[0]); err == nil {
			t.Fatalf("Append should reject invalid category")
		}
		if err := idx.Append("templates", cid.Undef); err == nil {
			t.Fatalf("Append should reject undefined CID")
		}
	})
}
