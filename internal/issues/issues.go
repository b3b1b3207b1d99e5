// Package issues defines the wire-visible issue taxonomy (spec §6) and the
// Issue Collector that accumulates findings by type and file while tracking
// counters.
package issues

import "sync"

// Type is one of the wire-visible issue kinds named in spec §6.
type Type string

const (
	TypeFiles           Type = "files"
	TypeDuplicates      Type = "duplicates"
	TypeExports         Type = "exports"
	TypeNsExports       Type = "nsExports"
	TypeTypes           Type = "types"
	TypeNsTypes         Type = "nsTypes"
	TypeEnumMembers     Type = "enumMembers"
	TypeClassMembers    Type = "classMembers"
	TypeUnlisted        Type = "unlisted"
	TypeUnresolved      Type = "unresolved"
	TypeDependencies    Type = "dependencies"
	TypeDevDependencies Type = "devDependencies"
	TypeBinaries        Type = "binaries"
)

// Issue is a single finding. SymbolType is set on export/type and member
// issues and ParentSymbol on member issues; no issue type sets Symbols
// (duplicates join their names into Symbol with "|").
type Issue struct {
	Type         Type     `json:"type"`
	FilePath     string   `json:"filePath"`
	Symbol       string   `json:"symbol,omitempty"`
	Symbols      []string `json:"symbols,omitempty"`
	SymbolType   string   `json:"symbolType,omitempty"`
	ParentSymbol string   `json:"parentSymbol,omitempty"`
}

// Collector accumulates issues by type and file, and tracks the processed
// and total file counters named in spec §6's return contract.
type Collector struct {
	mu        sync.Mutex
	byType    map[Type][]Issue
	processed int
	total     int
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{byType: make(map[Type][]Issue)}
}

// Add records a single issue under its type.
func (c *Collector) Add(issue Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byType[issue.Type] = append(c.byType[issue.Type], issue)
}

// AddFiles adds one TypeFiles issue for each unreferenced file path.
func (c *Collector) AddFiles(paths []string) {
	for _, p := range paths {
		c.Add(Issue{Type: TypeFiles, FilePath: p})
	}
}

// SetCounters records the final processed/total counts (spec §8:
// counters.processed + |unusedFiles| == counters.total).
func (c *Collector) SetCounters(processed, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed = processed
	c.total = total
}

// Counters is the (processed, total) pair returned to the caller.
type Counters struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Counters returns the collector's current counters.
func (c *Collector) Counters() Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Counters{Processed: c.processed, Total: c.total}
}

// ByType returns a snapshot of every recorded issue, keyed by type. The
// returned map and slices are copies; mutating them does not affect the
// collector.
func (c *Collector) ByType() map[Type][]Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Type][]Issue, len(c.byType))
	for t, list := range c.byType {
		cp := make([]Issue, len(list))
		copy(cp, list)
		out[t] = cp
	}
	return out
}

// Count returns the number of issues recorded of the given type.
func (c *Collector) Count(t Type) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byType[t])
}

// Empty reports whether no issues of any type have been recorded.
func (c *Collector) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, list := range c.byType {
		if len(list) > 0 {
			return false
		}
	}
	return true
}
