// Package astsvc is the client for the external AST service: a remote
// procedure taking (filename, content) and returning a UAST root plus a
// list of error strings. Parsing itself is out of scope here; this package
// only defines the collaborator boundary and a gRPC-backed client.
package astsvc

import "context"

// Node is a single UAST node. Children may contain back-edges in the
// traversal sense (a node visited twice along different root-to-node
// paths), so callers walking the tree must track visited node identity —
// see lookup.WalkFunctions.
type Node struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Token     string  `json:"token,omitempty"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Children  []*Node `json:"children,omitempty"`
}

// ParseResult is the AST service's response: a possibly-partial UAST plus
// any error strings it reported while parsing.
type ParseResult struct {
	Root   *Node
	Errors []string
}

// Client is the AST service contract. A null Root with a non-empty Errors
// list means "skip file".
type Client interface {
	Parse(ctx context.Context, filename string, content []byte) (ParseResult, error)
}
