package astsvc

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/afcarl/gemini/internal/gemerr"
	"github.com/pkg/errors"
)

// parseRequest/parseResponse are the wire shapes for the single unary RPC
// this client calls. The AST service is an external collaborator; rather
// than vendor its generated protobuf stubs, the client talks to it over a
// plain JSON codec registered on the gRPC channel, the same way a zoekt
// gRPC client dials a configured address and invokes a named method.
type parseRequest struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type parseResponse struct {
	Root   *Node    `json:"root"`
	Errors []string `json:"errors"`
}

const parseMethod = "/gemini.ast.v1.AST/Parse"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements encoding.Codec with encoding/json, so the AST and
// feature-extraction clients can call a gRPC service without generated
// protobuf message types.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// GRPCClient calls the AST service over a gRPC channel.
type GRPCClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// DialGRPC dials target (host:port) and returns a ready GRPCClient. Timeout
// bounds each Parse call, defaulting to the same 30s budget used for
// feature extraction, since both are per-call-timeout-bounded collaborators
// in the same query path.
func DialGRPC(target string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodec{}.Name())))
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

// Parse implements Client.
func (c *GRPCClient) Parse(ctx context.Context, filename string, content []byte) (ParseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := parseRequest{Filename: filename, Content: content}
	var resp parseResponse
	if err := c.conn.Invoke(ctx, parseMethod, req, &resp); err != nil {
		return ParseResult{}, errors.Wrap(gemerr.ErrExternalService, err.Error())
	}
	return ParseResult{Root: resp.Root, Errors: resp.Errors}, nil
}
