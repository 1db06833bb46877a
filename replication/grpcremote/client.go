package grpcremote

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lightningrodlabs/where/internal/grpcx"
	"github.com/lightningrodlabs/where/piece"
	"github.com/lightningrodlabs/where/replication"
)

// Client implements replication.Remote for one peer.
type Client struct {
	cc grpc.ClientConnInterface

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ replication.Remote = (*Client)(nil)

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// ImportPiece asks the peer to import payload as kind.
//
// Refusals by the peer come back as *replication.Error with the peer's kind
// (for example KindUnknownOrMismatchedType). Transport failures come back as
// KindRemoteInvocationFailure.
func (c *Client) ImportPiece(ctx context.Context, kind piece.Kind, payload []byte) error {
	ctx = metadata.AppendToOutgoingContext(ctx, KindMetadataKey, kind.String())
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	_, err := grpcx.Invoke[emptypb.Empty](ctx, c.cc, serviceName, "ImportPiece", wrapperspb.Bytes(payload))
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &replication.Error{Kind: replication.KindRemoteInvocationFailure, Op: "import-piece", Message: "remote call", Cause: err}
	}
	return &replication.Error{Kind: fromStatus(st), Op: "import-piece", Message: "remote: " + st.Message(), Cause: err}
}
