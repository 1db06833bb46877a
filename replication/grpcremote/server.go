package grpcremote

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lightningrodlabs/where/internal/logging"
	"github.com/lightningrodlabs/where/replication"
)

// Server exposes an Importer as the Replication service.
type Server struct {
	Importer *replication.Importer
	Logger   *zap.Logger
}

var _ ReplicationServer = (*Server)(nil)

func (s *Server) ImportPiece(ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	if s == nil || s.Importer == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing importer")
	}
	md, _ := metadata.FromIncomingContext(ctx)
	tags := md.Get(KindMetadataKey)
	if len(tags) != 1 {
		return nil, status.Errorf(codes.InvalidArgument, "want exactly one %s metadata value, got %d", KindMetadataKey, len(tags))
	}
	if err := s.Importer.ImportTagged(ctx, tags[0], in.GetValue()); err != nil {
		logging.OrNop(s.Logger).Debug("import refused", zap.String("kind", tags[0]), zap.Error(err))
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func toStatus(err error) error {
	var code codes.Code
	switch replication.KindOf(err) {
	case replication.KindUnknownOrMismatchedType:
		code = codes.InvalidArgument
	case replication.KindInvariantViolation:
		code = codes.DataLoss
	case replication.KindNotFound:
		code = codes.NotFound
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

func fromStatus(st *status.Status) replication.Kind {
	switch st.Code() {
	case codes.InvalidArgument:
		return replication.KindUnknownOrMismatchedType
	case codes.DataLoss:
		return replication.KindInvariantViolation
	case codes.NotFound:
		return replication.KindNotFound
	case codes.Internal:
		return replication.KindInternal
	default:
		return replication.KindRemoteInvocationFailure
	}
}
