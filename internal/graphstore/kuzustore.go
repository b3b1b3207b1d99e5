//go:build cgo

package graphstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/deadcode/internal/issues"
)

// KuzuStore implements Store using KuzuDB as the graph backend, so a run's
// reachability graph can be inspected afterward with Cypher. Grounded on
// the teacher's internal/graph/kuzustore.go, scoped down to File nodes,
// IMPORTS edges, and Issue nodes.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

var _ Store = (*KuzuStore)(nil)

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at
// dbPath, so the graph survives across runs.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Issue(
		id STRING,
		type STRING,
		file_path STRING,
		symbol STRING,
		symbol_type STRING,
		parent_symbol STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_ISSUE(FROM File TO Issue)`,
}

// InitSchema creates the File, Issue, IMPORTS and HAS_ISSUE tables.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// AddFile inserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		"CREATE (f:File {path: $path, loc: $loc})",
		map[string]any{"path": node.Path, "loc": int64(node.LOC)},
	)
}

// AddImportEdge inserts an IMPORTS relationship between two File nodes.
func (s *KuzuStore) AddImportEdge(_ context.Context, edge ImportEdge) error {
	return s.exec(
		`MATCH (a:File {path: $src}), (b:File {path: $dst}) CREATE (a)-[:IMPORTS]->(b)`,
		map[string]any{"src": edge.SourceID, "dst": edge.TargetID},
	)
}

// AddIssue inserts an Issue node and a HAS_ISSUE edge from its file.
func (s *KuzuStore) AddIssue(_ context.Context, issue issues.Issue) error {
	id := issueID(issue)
	if err := s.exec(
		`CREATE (i:Issue {
			id: $id, type: $type, file_path: $fp,
			symbol: $symbol, symbol_type: $st, parent_symbol: $ps
		})`,
		map[string]any{
			"id":     id,
			"type":   string(issue.Type),
			"fp":     issue.FilePath,
			"symbol": issue.Symbol,
			"st":     issue.SymbolType,
			"ps":     issue.ParentSymbol,
		},
	); err != nil {
		return err
	}
	return s.exec(
		`MATCH (f:File {path: $fp}), (i:Issue {id: $id}) CREATE (f)-[:HAS_ISSUE]->(i)`,
		map[string]any{"fp": issue.FilePath, "id": id},
	)
}

// GetFile retrieves a single File node by path, or nil if not found.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query("MATCH (f:File {path: $path}) RETURN f.path, f.loc", map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &FileNode{Path: toString(rows[0][0]), LOC: toInt(rows[0][1])}, nil
}

// IssuesForFile returns every Issue node reachable via HAS_ISSUE from path.
func (s *KuzuStore) IssuesForFile(_ context.Context, path string) ([]issues.Issue, error) {
	rows, err := s.query(
		`MATCH (f:File {path: $path})-[:HAS_ISSUE]->(i:Issue)
		 RETURN i.type, i.file_path, i.symbol, i.symbol_type, i.parent_symbol`,
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	out := make([]issues.Issue, 0, len(rows))
	for _, r := range rows {
		out = append(out, issues.Issue{
			Type:         issues.Type(toString(r[0])),
			FilePath:     toString(r[1]),
			Symbol:       toString(r[2]),
			SymbolType:   toString(r[3]),
			ParentSymbol: toString(r[4]),
		})
	}
	return out, nil
}

// GetDependencies performs a BFS over IMPORTS edges starting from path.
func (s *KuzuStore) GetDependencies(_ context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{path: true}
	queue := []bfsEntry{{path: []string{path}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.fileNeighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{Nodes: newPath, Depth: cur.depth + 1})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionDownstream:
		cypher = "MATCH (a:File {path: $path})-[:IMPORTS]->(b:File) RETURN b.path"
	case DirectionUpstream:
		cypher = "MATCH (a:File)-[:IMPORTS]->(b:File {path: $path}) RETURN a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// Stats returns counts of File nodes, IMPORTS edges, and Issue nodes.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	issuesCount, err := s.countTable("Issue")
	if err != nil {
		return nil, err
	}
	edges, err := s.countRel("IMPORTS")
	if err != nil {
		return nil, err
	}
	return &GraphStats{FileCount: files, EdgeCount: edges, IssueCount: issuesCount}, nil
}

func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()
	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error
	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func (s *KuzuStore) countTable(table string) (int, error) {
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

func (s *KuzuStore) countRel(rel string) (int, error) {
	rows, err := s.query(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", rel), nil)
	if err != nil {
		return 0, nil
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

func issueID(issue issues.Issue) string {
	return string(issue.Type) + ":" + issue.FilePath + ":" + issue.Symbol + ":" + issue.ParentSymbol
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
