// Package grpccas serves and consumes a content table over gRPC.
//
// The service uses protobuf well-known wrapper messages, so no protoc step is
// needed:
//
//	service CAS {
//	  rpc Put(google.protobuf.BytesValue) returns (google.protobuf.StringValue);
//	  rpc Get(google.protobuf.StringValue) returns (google.protobuf.BytesValue);
//	  rpc Has(google.protobuf.StringValue) returns (google.protobuf.BoolValue);
//	}
package grpccas

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lightningrodlabs/where/internal/grpcx"
)

const serviceName = "where.storage.v1.CAS"

// CASServer is the server API for the CAS gRPC service.
type CASServer interface {
	Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// RegisterCASServer registers the CAS service on a gRPC server.
func RegisterCASServer(s grpc.ServiceRegistrar, srv CASServer) {
	s.RegisterService(&CAS_ServiceDesc, srv)
}

// CAS_ServiceDesc is the grpc.ServiceDesc for CAS service.
var CAS_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CASServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcx.Unary(serviceName, "Put", func(srv any, ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
			return srv.(CASServer).Put(ctx, in)
		}),
		grpcx.Unary(serviceName, "Get", func(srv any, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
			return srv.(CASServer).Get(ctx, in)
		}),
		grpcx.Unary(serviceName, "Has", func(srv any, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
			return srv.(CASServer).Has(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "where/storage/v1/cas.proto",
}
