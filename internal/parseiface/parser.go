// Package parseiface defines the syntactic source-file parser interface
// that spec §1 treats as an external collaborator ("the syntactic source
// file parser that extracts imports and exports from a single file"),
// described only by its interface in spec §6. This package also supplies
// the two implementations named in the teacher's own parser split: a
// production implementation (TreeSitterParser, backed by tree-sitter's
// TypeScript grammar, the one module system this linter handles) and a
// StubParser for tests.
package parseiface

import "context"

// ExportItem describes a single exported declaration (spec §3 File Record
// "exported symbols").
type ExportItem struct {
	Kind     ExportKind
	Members  []string // member names, for enum/class exports
	IsPublic bool      // carries a "public" annotation (spec §4.6)
}

// ExportKind classifies an exported declaration (spec §3).
type ExportKind string

const (
	ExportKindValue     ExportKind = "value"
	ExportKindType      ExportKind = "type"
	ExportKindInterface ExportKind = "interface"
	ExportKindEnum      ExportKind = "enum"
	ExportKindClass     ExportKind = "class"
	ExportKindOther     ExportKind = "other"
)

// ImportItems describes a single resolved import target (spec §3 File
// Record "imported modules").
type ImportItems struct {
	Specifier      string   // the originating specifier string
	Identifiers    []string // identifiers consumed from the target
	IsReExported   bool
	IsStar         bool
	IsReExportedBy []string // files that re-export through this import
}

// ParseResult is the result of parsing a single file (spec §6 parser
// interface).
type ParseResult struct {
	InternalImports map[string]ImportItems // keyed by raw specifier, pre-resolution
	ExternalSpecs   []string
	UnresolvedSpecs []string
	Exports         map[string]ExportItem
	DuplicateExports [][]string // one slice per clash, e.g. [["foo","foo"]]
	// IdentifierRefCounts counts every occurrence of each identifier/
	// type-identifier token in the file, including the declaration itself
	// (SPEC_FULL §5 -ignore-exports-used-in-file support). A count greater
	// than one means the name is referenced somewhere besides its own
	// declaration site.
	IdentifierRefCounts map[string]int
}

// Parser extracts imports and exports from a single file (spec §6).
// Implementations: TreeSitterParser (production), StubParser (testing).
type Parser interface {
	// Parse extracts the import/export structure of a single source file.
	// source is the file content.
	Parse(ctx context.Context, path string, source []byte) (*ParseResult, error)

	// Close releases parser resources.
	Close() error
}
