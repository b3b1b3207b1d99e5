package graphstore

import (
	"context"
	"sync"

	"github.com/dusk-indust/deadcode/internal/issues"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store using Go maps. Thread-safe via sync.RWMutex.
// Grounded on the teacher's internal/graph/memstore.go MemStore.
type MemoryStore struct {
	mu     sync.RWMutex
	files  map[string]FileNode
	edges  []ImportEdge
	issues map[string][]issues.Issue
}

// NewMemoryStore returns an initialized MemoryStore ready for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:  make(map[string]FileNode),
		issues: make(map[string][]issues.Issue),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemoryStore) InitSchema(_ context.Context) error { return nil }

// AddFile stores a file node keyed by its path.
func (m *MemoryStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddImportEdge appends an import edge to the internal slice.
func (m *MemoryStore) AddImportEdge(_ context.Context, edge ImportEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// AddIssue records issue against its file path.
func (m *MemoryStore) AddIssue(_ context.Context, issue issues.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[issue.FilePath] = append(m.issues[issue.FilePath], issue)
	return nil
}

// GetFile returns the file node for path, or nil if not found.
func (m *MemoryStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// IssuesForFile returns every issue recorded against path.
func (m *MemoryStore) IssuesForFile(_ context.Context, path string) ([]issues.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]issues.Issue, len(m.issues[path]))
	copy(out, m.issues[path])
	return out, nil
}

// GetDependencies performs a BFS on import edges from path in the given
// direction, up to maxDepth hops, mirroring the teacher's
// MemStore.GetDependencies.
func (m *MemoryStore) GetDependencies(_ context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{path: true}
	queue := []bfsEntry{{id: path, path: []string{path}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{Nodes: newPath, Depth: len(newPath) - 1})
				next = append(next, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = next
	}
	return chains, nil
}

func (m *MemoryStore) neighbors(id string, direction Direction) []string {
	var out []string
	for _, e := range m.edges {
		switch direction {
		case DirectionDownstream:
			if e.SourceID == id {
				out = append(out, e.TargetID)
			}
		case DirectionUpstream:
			if e.TargetID == id {
				out = append(out, e.SourceID)
			}
		}
	}
	return out
}

// Stats returns counts of stored files, edges, and issues.
func (m *MemoryStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	issueCount := 0
	for _, list := range m.issues {
		issueCount += len(list)
	}
	return &GraphStats{
		FileCount:  len(m.files),
		EdgeCount:  len(m.edges),
		IssueCount: issueCount,
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
