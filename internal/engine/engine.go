// Package engine implements the Resolution & Reachability Engine (spec
// §4.5) — the heart of the linter. It drives Principals through three
// phases: seeding entry paths from globs and plugin contributions,
// classifying every encountered specifier against the dependency ledger
// and workspace registry, and iterating the per-principal fixed point
// until the entry-path sets stop growing. Grounded on the teacher's
// internal/graph/resolve.go (ResolveEdge / resolveTSWorkspace /
// scanGoMod self-package detection) for the classify-then-resolve
// structure, and on other_examples' BFS-to-fixpoint reachability shape
// for the convergence loop.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/deadcode/internal/glob"
	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/dusk-indust/deadcode/internal/ledger"
	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/dusk-indust/deadcode/internal/plugin"
	"github.com/dusk-indust/deadcode/internal/principal"
	"github.com/dusk-indust/deadcode/internal/specifier"
	"github.com/dusk-indust/deadcode/internal/tsconfig"
	"github.com/dusk-indust/deadcode/internal/workspace"
)

// Default entry/project glob patterns, used when a project's own
// configuration does not override them. Knip-style conventions: a small
// handful of likely entry filenames, everything else is a project-path
// candidate.
var (
	defaultEntryPatterns   = []string{"index.ts", "index.tsx", "src/index.ts", "src/index.tsx"}
	defaultProjectPatterns = []string{"**/*.ts", "**/*.tsx"}
	defaultExcludes        = []string{"**/node_modules/**", "**/dist/**", "**/build/**"}
)

// Config carries the per-run knobs spec §6's invocation contract names:
// working directory, gitignore-enable, strict mode, production mode.
type Config struct {
	ProjectRoot             string
	UseGitignore            bool
	Strict                  bool
	Production              bool
	EntryPatterns           []string
	ProjectPatterns         []string
	ProductionEntryPatterns []string
	Excludes                []string
	DebugLog                func(format string, args ...any)
}

func (c Config) entryPatterns() []string {
	if c.Production && len(c.ProductionEntryPatterns) > 0 {
		return c.ProductionEntryPatterns
	}
	if len(c.EntryPatterns) > 0 {
		return c.EntryPatterns
	}
	return defaultEntryPatterns
}

func (c Config) projectPatterns() []string {
	if len(c.ProjectPatterns) > 0 {
		return c.ProjectPatterns
	}
	return defaultProjectPatterns
}

func (c Config) excludes() []string {
	if len(c.Excludes) > 0 {
		return c.Excludes
	}
	return defaultExcludes
}

// pluginReference is a (workspace, containing_file, specifier) triple
// discovered by a plugin during seeding, replayed through the Phase B
// classifier after every workspace has seeded (spec §4.5 Phase A, last
// sentence).
type pluginReference struct {
	ws             *workspace.Workspace
	containingFile string
	specifier      string
}

// Engine drives the fixed point described in spec §4.5.
type Engine struct {
	cfg      Config
	registry *workspace.Registry
	ledger   *ledger.Ledger
	factory  *principal.Factory
	plugins  []plugin.Plugin
	issues   *issues.Collector
	resolver *fileResolver

	matchers map[string]*glob.Matcher
	pending  []pluginReference
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithFileExists overrides the filesystem existence check the engine uses
// to resolve relative specifiers and verify binary entries, letting tests
// run against an in-memory file set instead of real disk.
func WithFileExists(fn func(path string) bool) Option {
	return func(e *Engine) { e.resolver.stat = fn }
}

// New builds an Engine bound to the given registry, ledger, principal
// factory, plugin set, and issue collector.
func New(cfg Config, registry *workspace.Registry, led *ledger.Ledger, factory *principal.Factory, plugins []plugin.Plugin, col *issues.Collector, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		registry: registry,
		ledger:   led,
		factory:  factory,
		plugins:  plugins,
		issues:   col,
		resolver: newFileResolver(),
		matchers: map[string]*glob.Matcher{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) debugf(format string, args ...any) {
	if e.cfg.DebugLog != nil {
		e.cfg.DebugLog(format, args...)
	}
}

func (e *Engine) matcherFor(ws *workspace.Workspace) *glob.Matcher {
	if m, ok := e.matchers[ws.Dir]; ok {
		return m
	}
	m := glob.NewMatcher(ws.Dir, e.cfg.UseGitignore)
	e.matchers[ws.Dir] = m
	return m
}

func (e *Engine) principalFor(ws *workspace.Workspace) *principal.Principal {
	var opts *tsconfig.CompilerOptions
	if ws.CompilerConfig != nil {
		opts = &ws.CompilerConfig.CompilerOptions
	}
	return e.factory.GetPrincipal(opts)
}

// orderedWorkspaces sorts workspaces so ancestors are processed before
// their descendants (spec §5 ordering guarantee: "ancestors before
// descendants").
func (e *Engine) orderedWorkspaces() []*workspace.Workspace {
	out := e.registry.EnabledWorkspaces()
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Ancestors) < len(out[j].Ancestors)
	})
	return out
}

// Seed runs Phase A: glob expansion plus plugin contributions for every
// workspace, then replays plugin-discovered package references through
// the same classifier Phase B/C use.
func (e *Engine) Seed(ctx context.Context) error {
	for _, ws := range e.orderedWorkspaces() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ws.Manifest == nil {
			return fmt.Errorf("engine: workspace %s has no manifest", ws.Name)
		}
		p := e.principalFor(ws)
		m := e.matcherFor(ws)

		entryFiles, err := m.Expand(e.cfg.entryPatterns(), e.cfg.excludes())
		if err != nil {
			return fmt.Errorf("engine: expand entry globs for %s: %w", ws.Name, err)
		}
		for _, f := range entryFiles {
			p.AddEntryPath(f)
		}

		projectFiles, err := m.Expand(e.cfg.projectPatterns(), e.cfg.excludes())
		if err != nil {
			return fmt.Errorf("engine: expand project globs for %s: %w", ws.Name, err)
		}
		for _, f := range projectFiles {
			p.AddProjectPath(f)
		}

		e.runPlugins(ws, p, m)
		e.checkBinaries(ws)
	}

	for _, ref := range e.pending {
		p := e.principalFor(ref.ws)
		e.resolveSpecifier(p, ref.ws, ref.containingFile, ref.specifier, parseiface.ImportItems{Specifier: ref.specifier})
	}
	e.pending = nil
	return nil
}

func (e *Engine) runPlugins(ws *workspace.Workspace, p *principal.Principal, m *glob.Matcher) {
	var deps map[string]string
	if ws.Manifest != nil {
		deps = ws.Manifest.Dependencies
	}
	for _, pl := range e.plugins {
		if !pl.IsEnabled(deps) {
			continue
		}
		configFiles := []string{""}
		if globs := pl.ConfigGlobs(); len(globs) > 0 {
			found, err := m.Expand(globs, nil)
			if err != nil {
				e.debugf("engine: plugin %s config glob: %v", pl.Name(), err)
				continue
			}
			if len(found) == 0 {
				continue
			}
			configFiles = found
		}
		for _, cf := range configFiles {
			contrib, err := pl.Run(ws, cf)
			if err != nil {
				e.debugf("engine: plugin %s run %s: %v", pl.Name(), cf, err)
				continue
			}
			e.applyContribution(ws, p, contrib)
		}
	}
}

func (e *Engine) applyContribution(ws *workspace.Workspace, p *principal.Principal, contrib plugin.Contribution) {
	for _, ep := range contrib.ExtraEntryPaths {
		p.AddEntryPath(ep)
	}
	if len(contrib.PeerDependencies) > 0 {
		e.ledger.AddPeerDependencies(ws, contrib.PeerDependencies)
	}
	if len(contrib.InstalledBinaries) > 0 {
		e.ledger.SetInstalledBinaries(ws, contrib.InstalledBinaries)
	}
	for _, ref := range contrib.ReferencedPackages {
		e.pending = append(e.pending, pluginReference{ws: ws, containingFile: ref.ContainingFile, specifier: ref.Specifier})
	}
}

// checkBinaries emits a TypeBinaries issue for each declared bin entry
// that does not resolve to a file on disk (SPEC_FULL §5 supplemented
// binary ledger feature).
func (e *Engine) checkBinaries(ws *workspace.Workspace) {
	for name, rel := range e.ledger.Binaries(ws) {
		abs := rel
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(ws.Dir, rel)
		}
		if !e.resolver.exists(abs) {
			e.issues.Add(issues.Issue{Type: issues.TypeBinaries, FilePath: ws.Dir, Symbol: name})
		}
	}
}

// Run performs Phase B/C: the fixed-point loop that analyzes every file
// reachable from any principal's entry-path set, classifying and
// resolving every specifier it encounters, until a full pass over every
// principal adds no new entry paths anywhere (a superset of the
// per-principal loop in spec §4.5 Phase C, safe because cross-workspace
// promotion means principals are not independent in practice).
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		before := e.totalEntryPaths()
		for _, p := range e.factory.All() {
			for _, f := range p.GetUsedResolvedFiles() {
				if p.IsAnalyzed(f) {
					continue
				}
				e.analyzeFile(ctx, p, f)
			}
		}
		after := e.totalEntryPaths()
		if after == before {
			break
		}
	}
	return nil
}

func (e *Engine) totalEntryPaths() int {
	total := 0
	for _, p := range e.factory.All() {
		total += p.EntryPathCount()
	}
	return total
}

func (e *Engine) analyzeFile(ctx context.Context, p *principal.Principal, f string) {
	rec, result, err := p.AnalyzeSourceFile(ctx, f)
	if err != nil {
		e.debugf("engine: analyze %s: %v", f, err)
		return
	}
	if result == nil {
		return
	}

	containingWS, _ := e.registry.LookupByFilePath(f)

	for rawSpec, item := range result.InternalImports {
		e.resolveSpecifier(p, containingWS, f, rawSpec, item)
	}
	for _, rawSpec := range result.ExternalSpecs {
		e.resolveSpecifier(p, containingWS, f, rawSpec, parseiface.ImportItems{Specifier: rawSpec})
	}
	for _, rawSpec := range result.UnresolvedSpecs {
		e.issues.Add(issues.Issue{Type: issues.TypeUnresolved, FilePath: f, Symbol: rawSpec})
	}
	for _, dup := range rec.DuplicateExports {
		e.issues.Add(issues.Issue{Type: issues.TypeDuplicates, FilePath: f, Symbol: strings.Join(dup, "|")})
	}
}

// resolveSpecifier implements spec §4.5 Phase B's three-way classification
// and resolution.
func (e *Engine) resolveSpecifier(p *principal.Principal, containingWS *workspace.Workspace, containingFile, rawSpec string, item parseiface.ImportItems) {
	switch specifier.Classify(rawSpec, e.cfg.ProjectRoot) {
	case specifier.KindInternalRelative:
		resolved, ok := e.resolver.Resolve(filepath.Dir(containingFile), rawSpec)
		if !ok {
			e.issues.Add(issues.Issue{Type: issues.TypeUnresolved, FilePath: containingFile, Symbol: rawSpec})
			e.debugf("engine: resolve %s from %s: not found", rawSpec, containingFile)
			return
		}
		p.AddEntryPath(resolved)
		p.RecordResolvedImport(containingFile, resolved, item)
		if item.IsReExported {
			p.MarkReExportedBy(resolved, containingFile)
		}

	case specifier.KindNodeModulesAbsolute:
		pkg := nodeModulesPackageName(rawSpec)
		e.recordPackageReference(containingWS, containingFile, pkg)

	case specifier.KindBarePackage:
		pkg := specifier.PackageName(rawSpec)
		e.recordPackageReference(containingWS, containingFile, pkg)
		e.maybeResolveWorkspaceTarget(p, containingWS, containingFile, rawSpec, pkg)

	default: // KindUnresolvable
		e.issues.Add(issues.Issue{Type: issues.TypeUnresolved, FilePath: containingFile, Symbol: rawSpec})
	}
}

func (e *Engine) recordPackageReference(ws *workspace.Workspace, containingFile, pkg string) {
	if ws == nil || pkg == "" {
		return
	}
	if !e.ledger.MaybeAddReferenced(ws, pkg) {
		e.issues.Add(issues.Issue{Type: issues.TypeUnlisted, FilePath: containingFile, Symbol: pkg})
	}
}

// maybeResolveWorkspaceTarget implements the self-reference patch and the
// cross-workspace import promotion (spec §4.5): when a bare specifier's
// package name names a workspace (itself or another), the target file is
// injected as an entry path of that workspace's principal, regardless of
// what the parser thought the specifier's kind was.
func (e *Engine) maybeResolveWorkspaceTarget(p *principal.Principal, containingWS *workspace.Workspace, containingFile, rawSpec, pkg string) {
	if containingWS == nil || pkg == "" {
		return
	}
	targetWS, ok := e.registry.LookupByPackageName(pkg)
	if !ok {
		return
	}

	var resolved string
	if subpath, hasSub := specifier.Subpath(rawSpec); hasSub {
		target, ok2 := targetWS.Manifest.ResolveExportSubpath(subpath)
		if !ok2 {
			e.debugf("engine: resolve subpath %s in %s: not found", subpath, targetWS.Name)
			if e.cfg.Strict {
				e.issues.Add(issues.Issue{Type: issues.TypeUnresolved, FilePath: containingFile, Symbol: rawSpec})
			}
			return
		}
		resolved = target
	} else {
		entries := targetWS.Manifest.EntryFields()
		if len(entries) == 0 {
			return
		}
		resolved = entries[0]
	}

	targetPrincipal := e.principalFor(targetWS)
	targetPrincipal.AddEntryPath(resolved)
	// Identifier-level granularity is unavailable for bare-specifier
	// imports (the production parser only tracks per-identifier import
	// clauses for relative specifiers); recording the edge as a star
	// import keeps the reconciler's wildcard-chase path from
	// false-flagging the target's exports as unused.
	p.RecordResolvedImport(containingFile, resolved, parseiface.ImportItems{Specifier: rawSpec, IsStar: true})
}

func nodeModulesPackageName(raw string) string {
	const marker = "node_modules/"
	idx := strings.LastIndex(raw, marker)
	if idx == -1 {
		return specifier.PackageName(raw)
	}
	return specifier.PackageName(raw[idx+len(marker):])
}
