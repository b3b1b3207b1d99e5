// Package principal implements the Principal (spec §4.3) and Principal
// Factory (spec §4.4): the analysis context bound to one compile-options
// group, owning the entry-path set, project-path set, and per-file record
// bookkeeping described in spec §3.
package principal

import (
	"context"
	"sort"
	"sync"

	"github.com/dusk-indust/deadcode/internal/parseiface"
)

// FileRecord is the per-file bookkeeping described in spec §3: the set of
// exported symbols and the set of imported modules keyed by resolved
// target file path.
type FileRecord struct {
	Path             string
	Exports          map[string]parseiface.ExportItem
	DuplicateExports [][]string
	// Imports is keyed by the *resolved* target file path, as spec §3
	// requires ("set of imported modules keyed by resolved target file
	// path").
	Imports map[string]parseiface.ImportItems
	// ReExportedBy lists files that re-export this file wholesale (via
	// "export * from" or a named re-export), feeding the reconciler's
	// re-export chase (spec §4.6).
	ReExportedBy []string
	// IdentifierRefCounts is the parser's per-file identifier tally,
	// feeding the reconciler's -ignore-exports-used-in-file relaxation
	// (SPEC_FULL §5): a count greater than one means the name appears
	// somewhere in the file besides its own declaration.
	IdentifierRefCounts map[string]int
	// skipExports marks a file the reconciler should ignore even if it is
	// imported elsewhere (spec §4.3 skip_exports_analysis_for).
	skipExports bool
}

// Principal owns a compile-options fingerprint and the file records
// produced under it (spec §4.3).
type Principal struct {
	mu sync.Mutex

	fingerprint string
	parser      parseiface.Parser

	entryPaths   map[string]bool
	projectPaths map[string]bool
	files        map[string]*FileRecord
	analyzed     map[string]bool

	// reader reads file contents from disk; overridable for tests.
	reader func(path string) ([]byte, error)
	// onDebug is called with recoverable per-file errors (spec §7 tier 2).
	onDebug func(format string, args ...any)
}

// Option configures a Principal at construction.
type Option func(*Principal)

// WithReader overrides the file-content reader (used by tests to avoid
// real disk I/O).
func WithReader(fn func(path string) ([]byte, error)) Option {
	return func(p *Principal) { p.reader = fn }
}

// WithDebugLogger overrides the debug-log hook invoked for recoverable
// per-file errors.
func WithDebugLogger(fn func(format string, args ...any)) Option {
	return func(p *Principal) { p.onDebug = fn }
}

// New creates a Principal bound to fingerprint and parser.
func New(fingerprint string, parser parseiface.Parser, opts ...Option) *Principal {
	p := &Principal{
		fingerprint:  fingerprint,
		parser:       parser,
		entryPaths:   map[string]bool{},
		projectPaths: map[string]bool{},
		files:        map[string]*FileRecord{},
		analyzed:     map[string]bool{},
		onDebug:      func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fingerprint returns the compile-options fingerprint this Principal was
// built from.
func (p *Principal) Fingerprint() string { return p.fingerprint }

// AddEntryPath adds p to the entry-path set (spec §4.3 add_entry_path).
// The entry-path set is monotonically append-only (spec §3, §9): this is
// the only operation that grows it, and no operation ever removes from it.
// Returns true if the path was newly added (i.e. the entry set grew).
func (p *Principal) AddEntryPath(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entryPaths[path] {
		return false
	}
	p.entryPaths[path] = true
	p.projectPaths[path] = true
	return true
}

// AddProjectPath adds path to the candidate project-path set (spec §4.3
// add_project_path). A path already present as an entry path is
// unaffected — entry paths are a subset that is never reclassified
// downward.
func (p *Principal) AddProjectPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projectPaths[path] = true
}

// SkipExportsAnalysisFor marks path so the reconciler ignores its exports
// even if it is imported elsewhere (spec §4.3).
func (p *Principal) SkipExportsAnalysisFor(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.files[path]; ok {
		r.skipExports = true
	} else {
		p.files[path] = &FileRecord{Path: path, skipExports: true}
	}
}

// EntryPathCount returns the current size of the entry-path set, used by
// the engine's fixed-point convergence check (spec §4.5 Phase C).
func (p *Principal) EntryPathCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entryPaths)
}

// EntryPaths returns a snapshot of the current entry-path set.
func (p *Principal) EntryPaths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.entryPaths))
	for pth := range p.entryPaths {
		out = append(out, pth)
	}
	sort.Strings(out)
	return out
}

// IsEntryPath reports whether path is a root of reachability.
func (p *Principal) IsEntryPath(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entryPaths[path]
}

// AnalyzeSourceFile delegates to the parser (spec §4.3
// analyze_source_file), reads the file, and records the resulting
// FileRecord. Parser errors are tier-2 recoverable (spec §7): the file is
// skipped (contributes no imports/exports) but still counted analyzed. The
// raw ParseResult is also returned so the engine can classify and resolve
// each specifier against the workspace registry and ledger; a nil result
// signals the recoverable read/parse-failure path.
func (p *Principal) AnalyzeSourceFile(ctx context.Context, path string) (*FileRecord, *parseiface.ParseResult, error) {
	read := p.reader
	p.mu.Lock()
	if read == nil {
		read = defaultReader
	}
	p.mu.Unlock()

	source, err := read(path)
	if err != nil {
		p.onDebug("principal: read %s: %v", path, err)
		return p.recordEmpty(path), nil, nil
	}

	result, err := p.parser.Parse(ctx, path, source)
	if err != nil {
		p.onDebug("principal: parse %s: %v", path, err)
		return p.recordEmpty(path), nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[path]
	if rec == nil {
		rec = &FileRecord{Path: path}
		p.files[path] = rec
	}
	rec.Exports = result.Exports
	rec.DuplicateExports = result.DuplicateExports
	rec.Imports = map[string]parseiface.ImportItems{}
	rec.IdentifierRefCounts = result.IdentifierRefCounts
	p.analyzed[path] = true
	return rec, result, nil
}

func (p *Principal) recordEmpty(path string) *FileRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[path]
	if rec == nil {
		rec = &FileRecord{Path: path}
		p.files[path] = rec
	}
	if rec.Exports == nil {
		rec.Exports = map[string]parseiface.ExportItem{}
	}
	if rec.Imports == nil {
		rec.Imports = map[string]parseiface.ImportItems{}
	}
	p.analyzed[path] = true
	return rec
}

// RecordResolvedImport attaches a resolved import edge to the importing
// file's FileRecord, keyed by the resolved target path (spec §3).
func (p *Principal) RecordResolvedImport(fromPath, resolvedTarget string, item parseiface.ImportItems) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[fromPath]
	if rec == nil {
		rec = &FileRecord{Path: fromPath}
		p.files[fromPath] = rec
	}
	if rec.Imports == nil {
		rec.Imports = map[string]parseiface.ImportItems{}
	}
	existing, ok := rec.Imports[resolvedTarget]
	if ok {
		existing.Identifiers = mergeUnique(existing.Identifiers, item.Identifiers)
		existing.IsReExported = existing.IsReExported || item.IsReExported
		existing.IsStar = existing.IsStar || item.IsStar
		rec.Imports[resolvedTarget] = existing
	} else {
		rec.Imports[resolvedTarget] = item
	}
}

// MarkReExportedBy records that targetPath is re-exported through
// viaPath, feeding the reconciler's re-export chase (spec §4.6).
func (p *Principal) MarkReExportedBy(targetPath, viaPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[targetPath]
	if rec == nil {
		rec = &FileRecord{Path: targetPath}
		p.files[targetPath] = rec
	}
	for _, existing := range rec.ReExportedBy {
		if existing == viaPath {
			return
		}
	}
	rec.ReExportedBy = append(rec.ReExportedBy, viaPath)
}

// IsAnalyzed reports whether path has already been analyzed during this run.
func (p *Principal) IsAnalyzed(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.analyzed[path]
}

// GetUsedResolvedFiles returns the transitive closure of files reachable
// from entry paths via already-analyzed imports (spec §4.3
// get_used_resolved_files). Unanalyzed targets still count as reachable —
// they are what drives the next fixed-point round.
func (p *Principal) GetUsedResolvedFiles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	visited := map[string]bool{}
	var queue []string
	for ep := range p.entryPaths {
		queue = append(queue, ep)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		rec := p.files[cur]
		if rec == nil {
			continue
		}
		for target := range rec.Imports {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	out := make([]string, 0, len(visited))
	for f := range visited {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// GetUnreferencedFiles returns project paths not in the reachable set
// (spec §4.3 get_unreferenced_files).
func (p *Principal) GetUnreferencedFiles() []string {
	reachable := map[string]bool{}
	for _, f := range p.GetUsedResolvedFiles() {
		reachable[f] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for path := range p.projectPaths {
		if !reachable[path] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// FindUnusedMembers queries the parser-derived member list for path and
// returns those not present in usedMembers (spec §4.3
// find_unused_members).
func (p *Principal) FindUnusedMembers(path string, members []string, usedMembers map[string]bool) []string {
	_ = path
	var out []string
	for _, m := range members {
		if !usedMembers[m] {
			out = append(out, m)
		}
	}
	return out
}

// IsPublicExport reports whether the named export of path carries the
// public annotation (spec §4.3 is_public_export).
func (p *Principal) IsPublicExport(path, name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[path]
	if rec == nil {
		return false
	}
	item, ok := rec.Exports[name]
	return ok && item.IsPublic
}

// HasExternalReferences reports whether export name of path is consumed
// by any recorded importing FileRecord (spec §4.3
// has_external_references).
func (p *Principal) HasExternalReferences(path, name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, rec := range p.files {
		if rec.Path == path {
			continue
		}
		item, ok := rec.Imports[path]
		if !ok {
			continue
		}
		for _, id := range item.Identifiers {
			if id == name {
				return true
			}
		}
	}
	return false
}

// HasIntraFileReference reports whether export name of path appears
// somewhere in path's own source besides its declaration (spec §5
// -ignore-exports-used-in-file). Backed by the parser's per-identifier
// tally, so it over-approximates: any token matching name counts,
// including shadowed locals or comment-adjacent occurrences the grammar
// still classifies as identifiers.
func (p *Principal) HasIntraFileReference(path, name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[path]
	if rec == nil {
		return false
	}
	return rec.IdentifierRefCounts[name] > 1
}

// FileRecordFor returns the FileRecord for path, or nil if it has not been
// touched yet.
func (p *Principal) FileRecordFor(path string) *FileRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.files[path]
}

// ImportersOf returns every FileRecord that has an entry in its Imports
// map pointing at targetPath, used by the reconciler to decide whether an
// export of targetPath is consumed.
func (p *Principal) ImportersOf(targetPath string) []*FileRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*FileRecord
	for _, rec := range p.files {
		if _, ok := rec.Imports[targetPath]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// AllFileRecords returns every FileRecord the principal has touched.
func (p *Principal) AllFileRecords() []*FileRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*FileRecord, 0, len(p.files))
	for _, rec := range p.files {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// SkipExports reports whether path was marked via
// SkipExportsAnalysisFor.
func (p *Principal) SkipExports(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.files[path]
	return rec != nil && rec.skipExports
}

func defaultReader(path string) ([]byte, error) {
	return readFile(path)
}

// readFile is a var so tests elsewhere in this package can stub it without
// touching the real filesystem; production code leaves it pointed at the
// OS.
var readFile = osReadFile

func mergeUnique(a, b []string) []string {
	seen := map[string]bool{}
	for _, v := range a {
		seen[v] = true
	}
	out := append([]string{}, a...)
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
