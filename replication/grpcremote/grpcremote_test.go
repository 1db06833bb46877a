package grpcremote

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lightningrodlabs/where/catalog"
	"github.com/lightningrodlabs/where/internal/grpcx"
	"github.com/lightningrodlabs/where/piece"
	"github.com/lightningrodlabs/where/replication"
	"github.com/lightningrodlabs/where/storage/memory"
)

const bufTarget = "passthrough:///bufnet"

// serve starts a Replication server backed by a fresh in-memory store and
// returns that store's catalog with a dial option reaching the server.
func serve(t *testing.T) (*catalog.Catalog, grpc.DialOption) {
	t.Helper()
	cat := catalog.New(memory.NewCAS(), memory.NewIndex())

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterReplicationServer(srv, &Server{Importer: replication.NewImporter(cat)})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	return cat, dialer
}

func dial(t *testing.T, dialer grpc.DialOption) *grpc.ClientConn {
	t.Helper()
	cc, err := grpc.NewClient(bufTarget, dialer, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}

func TestExportSpaceOverGRPC(t *testing.T) {
	dst, dialer := serve(t)

	src := catalog.New(memory.NewCAS(), memory.NewIndex())
	tpl, err := src.CreateTemplate(piece.Template{Name: "grid", Surface: "{}"})
	require.NoError(t, err)
	svg, err := src.CreateSvgMarker(piece.SvgMarker{Name: "dot", Value: "<svg/>"})
	require.NoError(t, err)
	sp, err := src.CreateSpace(piece.Space{Name: "board", Origin: tpl, Marker: piece.SvgRef(svg), Surface: "{}"})
	require.NoError(t, err)

	dir := NewDirectory(map[string]string{"b": bufTarget}, Options{
		RPCTimeout:  5 * time.Second,
		DialTimeout: time.Second,
		DialOptions: []grpc.DialOption{dialer},
	})
	t.Cleanup(func() { _ = dir.Close() })

	exp := replication.NewExporter(src, dir)
	got, err := exp.ExportSpace(context.Background(), "b", sp)
	require.NoError(t, err)
	assert.Equal(t, []cid.Cid{tpl, svg, sp}, got)

	for _, id := range got {
		assert.True(t, dst.Has(id))
	}

	// Second run deduplicates at the destination.
	_, err = exp.ExportSpace(context.Background(), "b", sp)
	require.NoError(t, err)
	inv, err := dst.Inventory()
	require.NoError(t, err)
	assert.Len(t, inv.Templates, 1)
	assert.Len(t, inv.Spaces, 1)
}

func TestClient_ErrorKinds(t *testing.T) {
	dst, dialer := serve(t)
	c := NewClient(dial(t, dialer))
	ctx := context.Background()

	payload, err := piece.Encode(piece.Template{Name: "grid"})
	require.NoError(t, err)

	err = c.ImportPiece(ctx, piece.KindPlayset, payload)
	assert.True(t, replication.IsKind(err, replication.KindUnknownOrMismatchedType), "got %v", err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = c.ImportPiece(ctx, piece.KindSpace, payload)
	assert.True(t, replication.IsKind(err, replication.KindUnknownOrMismatchedType), "got %v", err)

	err = c.ImportPiece(ctx, piece.KindTemplate, []byte(`{"surface":"","name":"grid"}`))
	assert.True(t, replication.IsKind(err, replication.KindInvariantViolation), "got %v", err)
	assert.Equal(t, codes.DataLoss, status.Code(err))

	require.NoError(t, c.ImportPiece(ctx, piece.KindTemplate, payload))
	inv, err := dst.Inventory()
	require.NoError(t, err)
	assert.Len(t, inv.Templates, 1)
}

func TestExportPiece_RemoteRefusalKind(t *testing.T) {
	dst, dialer := serve(t)

	// Decodes as a Template locally, but its field order is not canonical, so
	// the destination refuses it.
	srcCAS := memory.NewCAS()
	src := catalog.New(srcCAS, memory.NewIndex())
	id, err := srcCAS.Put([]byte(`{"surface":"{}","name":"grid"}`))
	require.NoError(t, err)

	dir := NewDirectory(map[string]string{"b": bufTarget}, Options{
		RPCTimeout:  5 * time.Second,
		DialTimeout: time.Second,
		DialOptions: []grpc.DialOption{dialer},
	})
	t.Cleanup(func() { _ = dir.Close() })

	err = replication.NewExporter(src, dir).ExportPiece(context.Background(), "b", piece.KindTemplate, id)
	require.Error(t, err)
	assert.Equal(t, replication.KindRemoteInvocationFailure, replication.KindOf(err))
	assert.Equal(t, replication.KindInvariantViolation, replication.RemoteKind(err))
	assert.Equal(t, codes.DataLoss, status.Code(err))
	assert.False(t, dst.Has(id))

	// A transport failure has no remote reason beyond the failure itself.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewClient(dial(t, dialer)).ImportPiece(ctx, piece.KindTemplate, []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, replication.KindRemoteInvocationFailure, replication.RemoteKind(err))
}

func TestServer_TagMetadata(t *testing.T) {
	dst, dialer := serve(t)
	cc := dial(t, dialer)
	ctx := context.Background()

	payload, err := piece.Encode(piece.Template{Name: "grid"})
	require.NoError(t, err)

	_, err = grpcx.Invoke[emptypb.Empty](ctx, cc, serviceName, "ImportPiece", wrapperspb.Bytes(payload))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bogus := metadataContext(ctx, "Bogus")
	_, err = grpcx.Invoke[emptypb.Empty](bogus, cc, serviceName, "ImportPiece", wrapperspb.Bytes(payload))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	lower := metadataContext(ctx, "template")
	_, err = grpcx.Invoke[emptypb.Empty](lower, cc, serviceName, "ImportPiece", wrapperspb.Bytes(payload))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.False(t, dst.Has(mustSum(t, payload)))
}

func TestDirectory(t *testing.T) {
	dir := NewDirectory(map[string]string{"b": bufTarget, "a": bufTarget}, Options{})
	assert.Equal(t, []string{"a", "b"}, dir.Stores())

	_, err := dir.Remote(context.Background(), "nobody")
	assert.Error(t, err)

	r1, err := dir.Remote(context.Background(), "a")
	require.NoError(t, err)
	r2, err := dir.Remote(context.Background(), "a")
	require.NoError(t, err)
	assert.Same(t, r1.(*Client).cc, r2.(*Client).cc)

	require.NoError(t, dir.Close())
	_, err = dir.Remote(context.Background(), "a")
	assert.Error(t, err)
}

func TestServer_MissingImporter(t *testing.T) {
	var s *Server
	_, err := s.ImportPiece(context.Background(), wrapperspb.Bytes(nil))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}
