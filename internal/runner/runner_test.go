package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/deadcode/internal/graphstore"
	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunFlagsUnusedFileAndTracksCounters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj"}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `
import { a } from "./a";
console.log(a);
`)
	writeFile(t, filepath.Join(dir, "a.ts"), `export const a = 1;`)
	writeFile(t, filepath.Join(dir, "orphan.ts"), `export const o = 1;`)

	result, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)

	require.Equal(t, 2, result.Counters.Processed)
	require.Equal(t, 3, result.Counters.Total)
	require.NotEmpty(t, result.Selectors.RunID)

	filesIssues := result.IssuesByType[issues.TypeFiles]
	require.Len(t, filesIssues, 1)
	require.Equal(t, filepath.Join(dir, "orphan.ts"), filesIssues[0].FilePath)
}

func TestRunIgnoreExportsUsedInFileSuppressesSameFileConsumer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj"}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `
import { caller } from "./lib";
console.log(caller());
`)
	writeFile(t, filepath.Join(dir, "lib.ts"), `
export function helper() {
  return 1;
}

export function caller() {
  return helper();
}
`)

	strict, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)
	require.Len(t, strict.IssuesByType[issues.TypeExports], 1)
	require.Equal(t, "helper", strict.IssuesByType[issues.TypeExports][0].Symbol)

	relaxed, err := Run(context.Background(), Config{ProjectRoot: dir, IgnoreExportsUsedInFile: true})
	require.NoError(t, err)
	require.Empty(t, relaxed.IssuesByType[issues.TypeExports])
}

func TestRunPersistsGraphWhenGraphStoreConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj"}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `
import { a } from "./a";
console.log(a);
`)
	writeFile(t, filepath.Join(dir, "a.ts"), `export const a = 1;`)

	store := graphstore.NewMemoryStore()
	_, err := Run(context.Background(), Config{ProjectRoot: dir, GraphStore: store})
	require.NoError(t, err)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.FileCount)
	require.Equal(t, 1, stats.EdgeCount)
}

func TestRunFlagsUnlistedDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj"}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `
import { debounce } from "lodash";
debounce();
`)

	result, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)

	unlisted := result.IssuesByType[issues.TypeUnlisted]
	require.Len(t, unlisted, 1)
	require.Equal(t, "lodash", unlisted[0].Symbol)
}

func TestRunFlagsUnusedDependencyViaLedgerSettle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj", "dependencies": {"left-pad": "^1.0.0"}}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `export const x = 1;`)

	result, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)

	deps := result.IssuesByType[issues.TypeDependencies]
	require.Len(t, deps, 1)
	require.Equal(t, "left-pad", deps[0].Symbol)
}

func TestRunMintsADistinctRunIDEachCall(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj"}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `export const x = 1;`)

	first, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)
	second, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)

	require.NotEmpty(t, first.Selectors.RunID)
	require.NotEmpty(t, second.Selectors.RunID)
	require.NotEqual(t, first.Selectors.RunID, second.Selectors.RunID)
}

func TestRunPrefixesDebugLogLinesWithTheRunID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "proj"}`)
	writeFile(t, filepath.Join(dir, "index.ts"), `
import { missing } from "./missing";
console.log(missing);
`)

	var lines []string
	result, err := Run(context.Background(), Config{
		ProjectRoot: dir,
		DebugLog: func(format string, args ...any) {
			lines = append(lines, fmt.Sprintf(format, args...))
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		require.Contains(t, line, "["+result.Selectors.RunID+"]")
	}
}

func TestRunFailsFatallyOnMissingManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.Error(t, err)
}

func TestRunDiscoversMonorepoWorkspaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "root", "workspaces": ["packages/*"]}`)
	writeFile(t, filepath.Join(dir, "packages", "a", "package.json"), `{"name": "@acme/a"}`)
	writeFile(t, filepath.Join(dir, "packages", "a", "index.ts"), `export const a = 1;`)

	result, err := Run(context.Background(), Config{ProjectRoot: dir})
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Counters.Processed, 1)
}
