// Package graphstore persists the reachability graph the engine builds —
// files, import edges, and the issues found on them — behind a Store
// interface with an in-memory default and an optional KuzuDB-backed
// implementation, mirroring the teacher's internal/graph Mem/Kuzu duality
// but scoped to this linter's domain (no symbols, no clusters, no call
// graph: just files, IMPORTS edges, and issue annotations).
package graphstore

import (
	"context"
	"io"

	"github.com/dusk-indust/deadcode/internal/issues"
)

// Store is the interface every graph backend implements. Implementations:
// KuzuStore (optional, persistent), MemoryStore (default).
type Store interface {
	io.Closer

	InitSchema(ctx context.Context) error

	AddFile(ctx context.Context, node FileNode) error
	AddImportEdge(ctx context.Context, edge ImportEdge) error
	AddIssue(ctx context.Context, issue issues.Issue) error

	GetFile(ctx context.Context, path string) (*FileNode, error)
	GetDependencies(ctx context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error)
	IssuesForFile(ctx context.Context, path string) ([]issues.Issue, error)

	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // who imports this file?
	DirectionDownstream Direction = "downstream" // what does this file import?
)

// FileNode represents one source file in the reachability graph.
type FileNode struct {
	Path string `json:"path"`
	LOC  int    `json:"loc"`
}

// ImportEdge represents one resolved "source imports target" edge.
type ImportEdge struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// DependencyChain is an ordered sequence of file paths forming an import
// path from the traversal root.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// GraphStats summarizes a stored graph.
type GraphStats struct {
	FileCount  int `json:"fileCount"`
	EdgeCount  int `json:"edgeCount"`
	IssueCount int `json:"issueCount"`
}
