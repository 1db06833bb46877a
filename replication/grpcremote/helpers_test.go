package grpcremote

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/lightningrodlabs/where/cidutil"
)

func metadataContext(ctx context.Context, tag string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, KindMetadataKey, tag)
}

func mustSum(t *testing.T, data []byte) cid.Cid {
	t.Helper()
	id, err := cidutil.Sum(data)
	require.NoError(t, err)
	return id
}
