// Package grpcx builds gRPC service descriptors without generated code.
//
// Services in this module exchange protobuf well-known types, so their
// method tables can be assembled from typed closures instead of protoc
// output.
package grpcx

import (
	"context"

	"google.golang.org/grpc"
)

// Unary returns the descriptor of a unary method whose request message is Req.
func Unary[Req any, Resp any](service, method string, call func(srv any, ctx context.Context, in *Req) (*Resp, error)) grpc.MethodDesc {
	full := FullMethod(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return unwrap(call(srv, ctx, in))
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return unwrap(call(srv, ctx, req.(*Req)))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Invoke performs a unary call and decodes the reply into a new Resp.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(service, method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func FullMethod(service, method string) string { return "/" + service + "/" + method }

func unwrap[Resp any](out *Resp, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return out, nil
}
