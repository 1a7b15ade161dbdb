// Package lookup orchestrates the file/function query path: feature
// extraction, sketching, banding, and band lookup for a new input unit,
// merged with the exact-duplicate lookup.
package lookup

import "github.com/afcarl/gemini/astsvc"

// functionTypeTokens names the UAST node type tokens that denote a
// top-level function, language-agnostically. The AST service normalizes
// language-specific grammars into a small vocabulary of UAST type tokens,
// so this list does not need to grow per language.
var functionTypeTokens = map[string]bool{
	"FunctionDecl":        true,
	"FunctionDef":         true,
	"MethodDecl":          true,
	"FunctionDeclaration": true,
}

// FuncNode is a top-level function discovered while walking a UAST.
type FuncNode struct {
	Name      string
	StartLine int
	Node      *astsvc.Node
}

// WalkFunctions enumerates top-level function nodes in root. The UAST may
// contain back-edges (a node reachable along more than one path), so
// traversal tracks visited node identity (by Node.ID) to bound work — an
// explicit visited set rather than relying on recursion depth.
func WalkFunctions(root *astsvc.Node) []FuncNode {
	if root == nil {
		return nil
	}

	visited := make(map[string]bool)
	var out []FuncNode

	var walk func(n *astsvc.Node, topLevel bool)
	walk = func(n *astsvc.Node, topLevel bool) {
		if n == nil || visited[n.ID] {
			return
		}
		visited[n.ID] = true

		if functionTypeTokens[n.Type] {
			if topLevel {
				out = append(out, FuncNode{
					Name:      n.Token,
					StartLine: n.StartLine,
					Node:      n,
				})
			}
			// Function bodies are walked for nested back-edges and nested
			// function definitions, neither of which count as top-level.
			for _, c := range n.Children {
				walk(c, false)
			}
			return
		}

		for _, c := range n.Children {
			walk(c, topLevel)
		}
	}

	walk(root, true)
	return out
}

// Filter narrows WalkFunctions' output to an optional (function_name,
// start_line) pair. A zero StartLine matches any line.
type Filter struct {
	Name      string
	StartLine int
}

// Apply returns the subset of fns matching f. An empty Name matches any
// function.
func (f Filter) Apply(fns []FuncNode) []FuncNode {
	var out []FuncNode
	for _, fn := range fns {
		if f.Name != "" && fn.Name != f.Name {
			continue
		}
		if f.StartLine != 0 && fn.StartLine != f.StartLine {
			continue
		}
		out = append(out, fn)
	}
	return out
}
