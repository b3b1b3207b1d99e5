package parseiface

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TreeSitterParser implements Parser using tree-sitter's TypeScript grammar,
// the one module system spec §1 scopes this linter to ("only one module
// system is handled"). Grounded on the teacher's
// internal/graph/treesitter.go + treesitter_ts.go split between parser
// plumbing and an AST-walking extractor.
//
// A new tree-sitter parser is created per Parse call and all walk state is
// local to that call; the only shared field is the read-only language.
type TreeSitterParser struct {
	lang *tree_sitter.Language
}

// NewTreeSitterParser creates a TreeSitterParser with the TypeScript
// grammar registered.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{
		lang: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
	}
}

// Parse extracts import/export structure from a single source file.
func (p *TreeSitterParser) Parse(_ context.Context, path string, source []byte) (*ParseResult, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.lang); err != nil {
		return nil, fmt.Errorf("parseiface: set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parseiface: tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	w := &walker{
		source:    source,
		imports:   map[string]ImportItems{},
		exports:   map[string]ExportItem{},
		seen:      map[string]int{},
		refCounts: map[string]int{},
	}
	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	w.walk(cursor)

	var dupes [][]string
	for name, count := range w.seen {
		for i := 1; i < count; i++ {
			dupes = append(dupes, []string{name, name})
		}
	}

	return &ParseResult{
		InternalImports:     w.imports,
		ExternalSpecs:       w.externalSpecs,
		Exports:             w.exports,
		DuplicateExports:    dupes,
		IdentifierRefCounts: w.refCounts,
	}, nil
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error { return nil }

// walker accumulates import/export state while walking the AST, mirroring
// the teacher's tsExtractor walk shape.
type walker struct {
	source        []byte
	imports       map[string]ImportItems
	externalSpecs []string
	exports       map[string]ExportItem
	seen          map[string]int
	// refCounts tallies every identifier/type_identifier token encountered
	// in the file, feeding IgnoreExportsUsedInFile's same-file usage check.
	refCounts map[string]int
}

func (w *walker) walk(cursor *tree_sitter.TreeCursor) {
	node := cursor.Node()
	switch node.Kind() {
	case "import_statement":
		w.handleImport(node)
	case "export_statement":
		w.handleExport(node)
	case "call_expression":
		w.handleCallExpression(node)
	case "identifier", "type_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		w.refCounts[node.Utf8Text(w.source)]++
	}

	if cursor.GotoFirstChild() {
		w.walk(cursor)
		for cursor.GotoNextSibling() {
			w.walk(cursor)
		}
		cursor.GotoParent()
	}
}

func (w *walker) handleImport(node *tree_sitter.Node) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child != nil && child.Kind() == "string" {
				sourceNode = child
				break
			}
		}
	}
	if sourceNode == nil {
		return
	}
	spec := strings.Trim(sourceNode.Utf8Text(w.source), "\"'`")
	if spec == "" {
		return
	}

	idents := w.importedIdentifiers(node)
	isStar := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "namespace_import" {
			isStar = true
		}
		// `import * as ns` nests namespace_import inside import_clause.
		if child.Kind() == "import_clause" {
			for j := uint(0); j < child.ChildCount(); j++ {
				if gc := child.Child(j); gc != nil && gc.Kind() == "namespace_import" {
					isStar = true
				}
			}
		}
	}

	if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		w.imports[spec] = ImportItems{Specifier: spec, Identifiers: idents, IsStar: isStar}
	} else {
		w.externalSpecs = append(w.externalSpecs, spec)
	}
}

// handleCallExpression extracts the module specifier from a CommonJS
// require(...) call or a dynamic import(...) expression — both resolve a
// module at runtime the same way a static import does, but without a
// fixed set of imported identifiers to record.
func (w *walker) handleCallExpression(node *tree_sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	fnText := fn.Utf8Text(w.source)
	isRequire := fn.Kind() == "identifier" && fnText == "require"
	isDynamicImport := fn.Kind() == "import" || fnText == "import"
	if !isRequire && !isDynamicImport {
		return
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	var spec string
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg != nil && (arg.Kind() == "string" || arg.Kind() == "template_string") {
			spec = strings.Trim(arg.Utf8Text(w.source), "\"'`")
			break
		}
	}
	if spec == "" {
		// Dynamic specifier (e.g. require(pathVar)) — nothing static to resolve.
		return
	}

	if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		existing := w.imports[spec]
		existing.Specifier = spec
		w.imports[spec] = existing
	} else {
		w.externalSpecs = append(w.externalSpecs, spec)
	}
}

func (w *walker) importedIdentifiers(node *tree_sitter.Node) []string {
	var out []string
	clause := node.ChildByFieldName("import_clause")
	if clause == nil {
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child != nil && child.Kind() == "import_clause" {
				clause = child
				break
			}
		}
	}
	if clause == nil {
		return out
	}
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			out = append(out, child.Utf8Text(w.source))
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode != nil {
					out = append(out, nameNode.Utf8Text(w.source))
				}
			}
		}
	}
	return out
}

func (w *walker) handleExport(node *tree_sitter.Node) {
	isPublic := hasPublicAnnotation(w.source, node)

	// export * from "./mod" / export { a, b } from "./mod" — re-export.
	if sourceNode := node.ChildByFieldName("source"); sourceNode != nil {
		spec := strings.Trim(sourceNode.Utf8Text(w.source), "\"'`")
		isStar := false
		var names []string
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if child.Kind() == "*" {
				isStar = true
			}
			if child.Kind() == "export_clause" {
				for j := uint(0); j < child.ChildCount(); j++ {
					spec2 := child.Child(j)
					if spec2 == nil || spec2.Kind() != "export_specifier" {
						continue
					}
					if nameNode := spec2.ChildByFieldName("name"); nameNode != nil {
						names = append(names, nameNode.Utf8Text(w.source))
					}
				}
			}
		}
		if spec != "" {
			existing := w.imports[spec]
			existing.Specifier = spec
			existing.IsReExported = true
			existing.IsStar = existing.IsStar || isStar
			w.imports[spec] = existing
		}
		for _, n := range names {
			w.recordExport(n, ExportKindValue, isPublic)
		}
		return
	}

	declNode := node.ChildByFieldName("declaration")
	if declNode == nil {
		// export { a, b } (no source) — local re-export of already-declared
		// names; nothing new to record as a declaration kind here.
		return
	}

	switch declNode.Kind() {
	case "function_declaration":
		w.recordNamed(declNode, ExportKindValue, isPublic)
	case "class_declaration":
		w.recordNamed(declNode, ExportKindClass, isPublic)
	case "interface_declaration":
		w.recordNamed(declNode, ExportKindInterface, isPublic)
	case "type_alias_declaration":
		w.recordNamed(declNode, ExportKindType, isPublic)
	case "enum_declaration":
		w.recordEnum(declNode, isPublic)
	case "lexical_declaration", "variable_declaration":
		w.recordLexical(declNode, isPublic)
	}
}

func (w *walker) recordNamed(node *tree_sitter.Node, kind ExportKind, isPublic bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.recordExport(nameNode.Utf8Text(w.source), kind, isPublic)
}

func (w *walker) recordEnum(node *tree_sitter.Node, isPublic bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(w.source)
	var members []string
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			member := body.Child(i)
			if member == nil || member.Kind() != "property_identifier" && member.Kind() != "enum_assignment" {
				continue
			}
			memberName := member
			if member.Kind() == "enum_assignment" {
				if n := member.ChildByFieldName("name"); n != nil {
					memberName = n
				}
			}
			members = append(members, memberName.Utf8Text(w.source))
		}
	}
	w.seen[name]++
	w.exports[name] = ExportItem{Kind: ExportKindEnum, Members: members, IsPublic: isPublic}
}

func (w *walker) recordLexical(node *tree_sitter.Node, isPublic bool) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		w.recordExport(nameNode.Utf8Text(w.source), ExportKindValue, isPublic)
	}
}

func (w *walker) recordExport(name string, kind ExportKind, isPublic bool) {
	if name == "" {
		return
	}
	w.seen[name]++
	w.exports[name] = ExportItem{Kind: kind, IsPublic: isPublic}
}

// hasPublicAnnotation looks for a "@public" marker in the comment
// immediately preceding node — the "public-annotation flag" named in
// spec §3's File Record.
func hasPublicAnnotation(source []byte, node *tree_sitter.Node) bool {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return false
	}
	text := prev.Utf8Text(source)
	return bytes.Contains([]byte(text), []byte("@public"))
}
