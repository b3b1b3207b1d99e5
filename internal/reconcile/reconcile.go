// Package reconcile implements the Symbol Reconciler (spec §4.6): after
// the reachability fixed point converges, it cross-references every
// file's exports against the accumulated import map and emits
// unused-symbol issues. Grounded on the teacher's
// internal/graph/cluster.go visited-set BFS pattern, reused here for the
// re-export chase's cycle guard.
package reconcile

import (
	"sort"

	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/dusk-indust/deadcode/internal/principal"
)

// Config toggles reconciler behavior beyond the default spec §4.6 rules.
type Config struct {
	// ReportMembers enables per-member findings for enum/class exports
	// (spec §4.3 find_unused_members); when false, an unused enum or class
	// is reported as a single exports/types issue like any other export.
	ReportMembers bool
	// IgnoreExportsUsedInFile, when true, treats an export referenced
	// elsewhere in its own file (any further occurrence of its name) as
	// used, even with no importer (SPEC_FULL §5 supplemented feature).
	// Default false (the stricter behavior: same-file consumption does
	// not count).
	IgnoreExportsUsedInFile bool
}

// Reconcile runs the symbol reconciliation pass over every principal and
// records findings into col.
func Reconcile(principals []*principal.Principal, col *issues.Collector, cfg Config) {
	for _, p := range principals {
		reconcileOne(p, col, cfg)
	}
}

func reconcileOne(p *principal.Principal, col *issues.Collector, cfg Config) {
	for _, rec := range p.AllFileRecords() {
		if len(rec.Exports) == 0 || p.SkipExports(rec.Path) {
			continue
		}
		names := make([]string, 0, len(rec.Exports))
		for name := range rec.Exports {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			item := rec.Exports[name]
			if item.IsPublic {
				continue
			}

			used, viaReexport := isUsed(p, rec.Path, name, cfg)

			if cfg.ReportMembers && len(item.Members) > 0 && (item.Kind == parseiface.ExportKindEnum || item.Kind == parseiface.ExportKindClass) {
				emitUnusedMembers(p, col, rec.Path, name, item, used)
				continue
			}

			if !used {
				emitUnused(col, rec.Path, name, item, viaReexport)
			}
		}
	}
}

// isUsed decides whether export name of path is consumed, following spec
// §4.6's chain: direct identifier match, then the re-export chase, then
// the parser's own external-reference signal, then (opt-in) a same-file
// reference. For an unused export, the second return value reports
// whether some importer re-exports or namespace-imports path, which
// selects nsExports/nsTypes instead of exports/types.
func isUsed(p *principal.Principal, path, name string, cfg Config) (used bool, viaReexport bool) {
	nsImported := false
	for _, importer := range p.ImportersOf(path) {
		item, ok := importer.Imports[path]
		if !ok {
			continue
		}
		if item.IsReExported || item.IsStar {
			nsImported = true
		}
		for _, id := range item.Identifiers {
			if id == name {
				return true, false
			}
		}
	}

	if chaseReexports(p, path, name) {
		return true, true
	}

	if p.HasExternalReferences(path, name) {
		return true, true
	}

	if cfg.IgnoreExportsUsedInFile && p.HasIntraFileReference(path, name) {
		return true, false
	}

	return false, nsImported
}

// chaseReexports walks the re-export graph from path (files that
// re-export path wholesale) looking for a hop that is itself an entry
// file (namespace re-export from a root) or that has external consumers
// for name. The visited set bounds the chase to the finite file universe
// and guards cycles (spec §4.6, §9).
func chaseReexports(p *principal.Principal, path, name string) bool {
	visited := map[string]bool{path: true}
	queue := reexportersOf(p, path)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if p.IsEntryPath(cur) {
			return true
		}
		if p.HasExternalReferences(cur, name) {
			return true
		}
		for _, next := range reexportersOf(p, cur) {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return false
}

func reexportersOf(p *principal.Principal, path string) []string {
	rec := p.FileRecordFor(path)
	if rec == nil {
		return nil
	}
	return rec.ReExportedBy
}

func emitUnused(col *issues.Collector, path, name string, item parseiface.ExportItem, viaReexport bool) {
	isTypeLike := item.Kind == parseiface.ExportKindType || item.Kind == parseiface.ExportKindInterface || item.Kind == parseiface.ExportKindEnum

	t := issues.TypeExports
	switch {
	case viaReexport && isTypeLike:
		t = issues.TypeNsTypes
	case viaReexport:
		t = issues.TypeNsExports
	case isTypeLike:
		t = issues.TypeTypes
	}
	col.Add(issues.Issue{Type: t, FilePath: path, Symbol: name, SymbolType: string(item.Kind)})
}

// emitUnusedMembers reports per-member findings for an enum/class export
// in place of a single whole-export finding (spec §4.6: member-level
// reporting is an alternative to, not an addition to, the coarse
// exports/types check). The parser reports member names but not
// member-level access sites, so when the enclosing export itself is
// unused every member is reported unused; when the export is used, every
// member is assumed used too.
func emitUnusedMembers(p *principal.Principal, col *issues.Collector, path, name string, item parseiface.ExportItem, exportUsed bool) {
	usedMembers := map[string]bool{}
	if exportUsed {
		for _, m := range item.Members {
			usedMembers[m] = true
		}
	}
	unused := p.FindUnusedMembers(path, item.Members, usedMembers)
	if len(unused) == 0 {
		return
	}
	t := issues.TypeClassMembers
	if item.Kind == parseiface.ExportKindEnum {
		t = issues.TypeEnumMembers
	}
	for _, member := range unused {
		col.Add(issues.Issue{Type: t, FilePath: path, Symbol: member, ParentSymbol: name, SymbolType: string(item.Kind)})
	}
}
