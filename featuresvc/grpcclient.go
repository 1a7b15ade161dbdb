package featuresvc

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/pkg/errors"

	"github.com/afcarl/gemini/astsvc"
	"github.com/afcarl/gemini/feature"
	"github.com/afcarl/gemini/internal/gemerr"
)

const extractMethod = "/gemini.feature.v1.Extractor/Extract"

type extractRequest struct {
	UAST    *astsvc.Node   `json:"uast"`
	Profile ExtractProfile `json:"profile"`
}

type extractResponse struct {
	Features []feature.Feature `json:"features"`
}

// GRPCClient calls the feature-extraction service's batched Extract RPC
// over its own gRPC channel, reusing the JSON codec astsvc registers.
type GRPCClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// DialGRPC dials target and returns a ready GRPCClient. Each call is
// bounded by timeout, defaulting to a 30s budget for feature extraction.
func DialGRPC(target string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.CallContentSubtype("json")))
	conn, err := grpc.Dial(target, opts...)
	if err != nil {
		return nil, errors.Wrap(gemerr.ErrExternalService, err.Error())
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GRPCClient{conn: conn, timeout: timeout}, nil
}

// Close tears down the underlying channel.
func (c *GRPCClient) Close() error { return c.conn.Close() }

// Extract implements Client.
func (c *GRPCClient) Extract(ctx context.Context, uast *astsvc.Node, profile ExtractProfile) ([]feature.Feature, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := extractRequest{UAST: uast, Profile: profile}
	var resp extractResponse
	if err := c.conn.Invoke(ctx, extractMethod, req, &resp); err != nil {
		return nil, errors.Wrap(gemerr.ErrExternalService, err.Error())
	}
	return resp.Features, nil
}
