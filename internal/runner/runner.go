// Package runner wires every other package together into the single
// top-level call spec §6's invocation contract describes: configuration
// in, (report_selectors, issues_by_type, counters) out. Grounded on the
// teacher's cmd/decompose/main.go run() function and orchestrator.go's
// stage-sequencing (manifest → registry → ledger → engine → settle),
// generalized from the teacher's fixed five-stage pipeline to this
// linter's seed/resolve/reconcile/settle sequence.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/dusk-indust/deadcode/internal/config"
	"github.com/dusk-indust/deadcode/internal/engine"
	"github.com/dusk-indust/deadcode/internal/graphstore"
	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/dusk-indust/deadcode/internal/ledger"
	"github.com/dusk-indust/deadcode/internal/manifest"
	"github.com/dusk-indust/deadcode/internal/parseiface"
	"github.com/dusk-indust/deadcode/internal/plugin"
	"github.com/dusk-indust/deadcode/internal/principal"
	"github.com/dusk-indust/deadcode/internal/progress"
	"github.com/dusk-indust/deadcode/internal/reconcile"
	"github.com/dusk-indust/deadcode/internal/report"
	"github.com/dusk-indust/deadcode/internal/tsconfig"
	"github.com/dusk-indust/deadcode/internal/workspace"
)

// Config is spec §6's invocation-contract configuration object: working
// directory, optional compiler-configuration path, gitignore-enable,
// strict mode, production mode, and a progress reporter in place of the
// spec's bare "progress-display flag" (callers that don't want progress
// simply pass nil).
type Config struct {
	ProjectRoot   string
	TSConfigPath  string
	UseGitignore  bool
	Strict        bool
	Production    bool
	ReportMembers bool
	// IgnoreExportsUsedInFile opts into the reconciler's relaxed rule
	// (spec §5): an export referenced elsewhere in its own file counts as
	// used even with no importer.
	IgnoreExportsUsedInFile bool
	Progress                *progress.Reporter
	DebugLog                func(format string, args ...any)
	// GraphStore, when non-nil, receives every analyzed file, resolved
	// import edge, and issue found during the run. The caller owns its
	// lifecycle (InitSchema is called here; Close is the caller's job).
	GraphStore graphstore.Store
}

// Run executes the full pipeline and returns the report result named in
// spec §6. A configuration error (missing or unparsable root manifest) is
// fatal per spec §7 tier 1; everything else is either logged to
// DebugLog (tier 2) or folded into the returned issue set (tier 3).
func Run(ctx context.Context, cfg Config) (report.Result, error) {
	runID := uuid.NewString()

	emit := func(stage progress.Stage, status progress.Status, msg string) {
		if cfg.Progress != nil {
			cfg.Progress.Emit(progress.Event{Stage: stage, Status: status, Message: msg})
		}
	}
	debugLog := func(format string, args ...any) {
		if cfg.DebugLog != nil {
			cfg.DebugLog("[%s] "+format, append([]any{runID}, args...)...)
		}
	}

	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return report.Result{}, fmt.Errorf("runner: resolve project root: %w", err)
	}

	projCfg, err := config.Load(root)
	if err != nil {
		return report.Result{}, fmt.Errorf("runner: load project config: %w", err)
	}
	merged := mergeConfig(cfg, projCfg)

	emit(progress.StageSeed, progress.StatusWorking, "discovering workspaces")
	workspaces, err := discoverWorkspaces(root, cfg.TSConfigPath)
	if err != nil {
		emit(progress.StageSeed, progress.StatusFailed, err.Error())
		return report.Result{}, err
	}

	registry, ok := workspace.NewRegistry(workspaces)
	if !ok {
		err := fmt.Errorf("runner: duplicate package name across workspaces under %s", root)
		emit(progress.StageSeed, progress.StatusFailed, err.Error())
		return report.Result{}, err
	}

	led := ledger.New(registry, merged.IgnoreDependencies, merged.Strict)
	for _, ws := range workspaces {
		led.AddWorkspace(ws)
	}

	factory := principal.NewFactory(func() parseiface.Parser { return parseiface.NewTreeSitterParser() })
	plugins := []plugin.Plugin{
		plugin.ManifestPlugin{},
		plugin.TSConfigReferencesPlugin{ResolveEntryFields: resolveReferencedEntryFields},
	}
	col := issues.NewCollector()

	engCfg := engine.Config{
		ProjectRoot:             root,
		UseGitignore:            merged.UseGitignore,
		Strict:                  merged.Strict,
		Production:              merged.Production,
		EntryPatterns:           merged.EntryPatterns,
		ProjectPatterns:         merged.ProjectPatterns,
		ProductionEntryPatterns: merged.ProductionEntryPatterns,
		Excludes:                merged.Excludes,
		DebugLog:                debugLog,
	}
	eng := engine.New(engCfg, registry, led, factory, plugins, col)

	emit(progress.StageSeed, progress.StatusWorking, "seeding entry paths")
	if err := eng.Seed(ctx); err != nil {
		emit(progress.StageSeed, progress.StatusFailed, err.Error())
		return report.Result{}, err
	}
	emit(progress.StageSeed, progress.StatusComplete, "")

	emit(progress.StageResolve, progress.StatusWorking, "resolving reachability")
	if err := eng.Run(ctx); err != nil {
		emit(progress.StageResolve, progress.StatusFailed, err.Error())
		return report.Result{}, err
	}
	emit(progress.StageResolve, progress.StatusComplete, "")

	emit(progress.StageReconcile, progress.StatusWorking, "reconciling exports")
	reconcile.Reconcile(factory.All(), col, reconcile.Config{
		ReportMembers:           merged.ReportMembers,
		IgnoreExportsUsedInFile: merged.IgnoreExportsUsedInFile,
	})
	processed, unreferenced := settleFiles(factory.All(), col)
	settleDependencies(led, col)
	col.SetCounters(processed, processed+unreferenced)
	emit(progress.StageReconcile, progress.StatusComplete, "")

	emit(progress.StageReport, progress.StatusWorking, "building report")
	result := report.Build(runID, root, merged.Strict, merged.Production, merged.UseGitignore, col)
	emit(progress.StageReport, progress.StatusComplete, "")

	if cfg.GraphStore != nil {
		if err := persistGraph(ctx, cfg.GraphStore, factory.All(), result); err != nil {
			return result, fmt.Errorf("runner: persist graph: %w", err)
		}
	}

	return result, nil
}

// persistGraph writes every analyzed file, resolved import edge, and found
// issue into store, for callers that want to inspect the reachability
// graph after the run (spec-adjacent "-graph-db" CLI flag).
func persistGraph(ctx context.Context, store graphstore.Store, principals []*principal.Principal, result report.Result) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	for _, p := range principals {
		for _, rec := range p.AllFileRecords() {
			if err := store.AddFile(ctx, graphstore.FileNode{Path: rec.Path}); err != nil {
				return fmt.Errorf("add file %s: %w", rec.Path, err)
			}
			for target := range rec.Imports {
				edge := graphstore.ImportEdge{SourceID: rec.Path, TargetID: target}
				if err := store.AddImportEdge(ctx, edge); err != nil {
					return fmt.Errorf("add edge %s -> %s: %w", rec.Path, target, err)
				}
			}
		}
	}
	for _, list := range result.IssuesByType {
		for _, issue := range list {
			if err := store.AddIssue(ctx, issue); err != nil {
				return fmt.Errorf("add issue %s/%s: %w", issue.Type, issue.FilePath, err)
			}
		}
	}
	return nil
}

// mergedConfig folds deadcode.yml settings under the CLI-facing Config,
// the way the teacher's decompose.yml only ever turns a flag on when the
// CLI flag left it at its zero value (main.go's "if projCfg.Verbose &&
// !flags.Verbose" pattern) — never overriding an explicit CLI choice.
type mergedConfig struct {
	UseGitignore            bool
	Strict                  bool
	Production              bool
	ReportMembers           bool
	IgnoreExportsUsedInFile bool
	EntryPatterns           []string
	ProjectPatterns         []string
	ProductionEntryPatterns []string
	Excludes                []string
	IgnoreDependencies      []string
}

func mergeConfig(cfg Config, proj *config.ProjectConfig) mergedConfig {
	return mergedConfig{
		UseGitignore:            cfg.UseGitignore || proj.UseGitignore,
		Strict:                  cfg.Strict || proj.Strict,
		Production:              cfg.Production || proj.Production,
		ReportMembers:           cfg.ReportMembers || proj.ReportMembers,
		IgnoreExportsUsedInFile: cfg.IgnoreExportsUsedInFile || proj.IgnoreExportsUsedInFile,
		EntryPatterns:           firstNonEmpty(proj.EntryPatterns),
		ProjectPatterns:         firstNonEmpty(proj.ProjectPatterns),
		ProductionEntryPatterns: firstNonEmpty(proj.ProductionEntryPatterns),
		Excludes:                firstNonEmpty(proj.Excludes),
		IgnoreDependencies:      proj.IgnoreDependencies,
	}
}

func firstNonEmpty(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	return patterns
}

// discoverWorkspaces loads the root manifest and, if it declares a
// "workspaces" field, every matching child manifest too (spec §3). A
// missing or unparsable manifest is fatal (spec §7 tier 1); glob.Matcher
// cannot be reused here since it only ever returns matched files, never
// the directories a workspace-pattern search needs, so workspace
// directories are found with a direct doublestar.Glob call instead.
func discoverWorkspaces(root, tsconfigOverride string) ([]*workspace.Workspace, error) {
	rootManifestPath := filepath.Join(root, "package.json")
	rootManifest, err := manifest.Load(rootManifestPath)
	if err != nil {
		return nil, fmt.Errorf("runner: load root manifest: %w", err)
	}

	rootWS, err := buildWorkspace(rootManifest.Dir(), nil)
	if err != nil {
		return nil, err
	}
	if tsconfigOverride != "" {
		cc, err := tsconfig.Load(tsconfigOverride)
		if err != nil {
			return nil, fmt.Errorf("runner: load tsconfig %s: %w", tsconfigOverride, err)
		}
		rootWS.CompilerConfig = cc
	}
	workspaces := []*workspace.Workspace{rootWS}

	patterns := rootManifest.WorkspacePatterns()
	if len(patterns) == 0 {
		return workspaces, nil
	}

	childDirs, err := matchWorkspaceDirs(root, patterns)
	if err != nil {
		return nil, fmt.Errorf("runner: expand workspace patterns: %w", err)
	}
	sort.Strings(childDirs)
	for _, dir := range childDirs {
		ws, err := buildWorkspace(dir, []string{rootWS.Name})
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, nil
}

// matchWorkspaceDirs expands each workspace glob pattern against a
// synthetic "<pattern>/package.json" suffix, returning the directory of
// every match — a manifest marks a directory as a workspace root the same
// way its presence at the project root does.
func matchWorkspaceDirs(root string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(filepath.Join(pattern, "package.json")))
		if err != nil {
			return nil, err
		}
		for _, rel := range matches {
			dir := filepath.Join(root, filepath.Dir(rel))
			if !seen[dir] {
				seen[dir] = true
				out = append(out, dir)
			}
		}
	}
	return out, nil
}

// buildWorkspace loads the manifest and, if present, the tsconfig.json at
// dir, assembling a workspace.Workspace.
func buildWorkspace(dir string, ancestors []string) (*workspace.Workspace, error) {
	manifestPath := filepath.Join(dir, "package.json")
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("runner: load manifest %s: %w", manifestPath, err)
	}

	var cc *tsconfig.Config
	tsconfigPath := filepath.Join(dir, "tsconfig.json")
	if _, statErr := os.Stat(tsconfigPath); statErr == nil {
		cc, err = tsconfig.Load(tsconfigPath)
		if err != nil {
			return nil, fmt.Errorf("runner: load tsconfig %s: %w", tsconfigPath, err)
		}
	}

	name := m.Name
	if name == "" {
		name = dir
	}
	return &workspace.Workspace{
		Name:           name,
		Dir:            dir,
		Manifest:       m,
		Ancestors:      ancestors,
		CompilerConfig: cc,
	}, nil
}

// resolveReferencedEntryFields implements
// plugin.TSConfigReferencesPlugin.ResolveEntryFields: given a
// tsconfig.json path, load it, resolve each referenced project directory,
// and return that project's own manifest entry fields.
func resolveReferencedEntryFields(configFile string) []string {
	cc, err := tsconfig.Load(configFile)
	if err != nil {
		return nil
	}
	var out []string
	for _, dir := range cc.ReferencedDirs() {
		m, err := manifest.Load(filepath.Join(dir, "package.json"))
		if err != nil {
			continue
		}
		out = append(out, m.EntryFields()...)
	}
	return out
}

// settleFiles records a files issue for every principal's unreferenced
// project paths and returns the (processed, unreferenced) counts needed
// for spec §8's counters.processed + |unusedFiles| == counters.total
// invariant.
func settleFiles(principals []*principal.Principal, col *issues.Collector) (processed, unreferenced int) {
	for _, p := range principals {
		for _, rec := range p.AllFileRecords() {
			if p.IsAnalyzed(rec.Path) {
				processed++
			}
		}
		unused := p.GetUnreferencedFiles()
		unreferenced += len(unused)
		col.AddFiles(unused)
	}
	return processed, unreferenced
}

// settleDependencies converts the ledger's declared-but-unreferenced sets
// into dependencies/devDependencies issues (spec §4.2 settle).
func settleDependencies(led *ledger.Ledger, col *issues.Collector) {
	for _, u := range led.Settle() {
		for _, pkg := range u.Deps {
			col.Add(issues.Issue{Type: issues.TypeDependencies, FilePath: u.Workspace, Symbol: pkg})
		}
		for _, pkg := range u.DevDeps {
			col.Add(issues.Issue{Type: issues.TypeDevDependencies, FilePath: u.Workspace, Symbol: pkg})
		}
	}
}
