// Package grpcremote carries import calls between stores over gRPC.
//
// The service is built from protobuf well-known types; the type tag travels
// as request metadata so the payload stays the exact canonical bytes:
//
//	service Replication {
//	  // metadata: x-piece-kind = Template | SvgMarker | EmojiGroup | Space
//	  rpc ImportPiece(google.protobuf.BytesValue) returns (google.protobuf.Empty);
//	}
package grpcremote

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lightningrodlabs/where/internal/grpcx"
)

const serviceName = "where.playset.v1.Replication"

// KindMetadataKey is the request metadata key holding the type tag.
const KindMetadataKey = "x-piece-kind"

// ReplicationServer is the server API for the Replication service.
type ReplicationServer interface {
	ImportPiece(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
}

func RegisterReplicationServer(s grpc.ServiceRegistrar, srv ReplicationServer) {
	s.RegisterService(&Replication_ServiceDesc, srv)
}

// Replication_ServiceDesc is the grpc.ServiceDesc for Replication service.
var Replication_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ReplicationServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcx.Unary(serviceName, "ImportPiece", func(srv any, ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
			return srv.(ReplicationServer).ImportPiece(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "where/playset/v1/replication.proto",
}
