package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name": "proj"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.ts"), []byte(`
import { a } from "./a";
console.log(a);
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte(`export const a = 1;`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.ts"), []byte(`export const o = 1;`), 0o644))
}

func TestServiceFindDeadCodeReturnsIssuesByType(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir)

	svc := NewService(nil)
	_, out, err := svc.FindDeadCode(context.Background(), nil, FindDeadCodeInput{ProjectRoot: dir})
	require.NoError(t, err)

	require.Equal(t, 2, out.Counters.Processed)
	require.Equal(t, 3, out.Counters.Total)
	require.Len(t, out.IssuesByType[issues.TypeFiles], 1)
	require.Equal(t, dir, out.Selectors.ProjectRoot)
	require.NotEmpty(t, out.Selectors.RunID)
}

func TestServiceFindDeadCodeRequiresProjectRoot(t *testing.T) {
	svc := NewService(nil)
	_, _, err := svc.FindDeadCode(context.Background(), nil, FindDeadCodeInput{})
	require.Error(t, err)
}

func TestServiceGetIssueCountsSummarizesWithoutFindings(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir)

	svc := NewService(nil)
	_, out, err := svc.GetIssueCounts(context.Background(), nil, GetIssueCountsInput{ProjectRoot: dir})
	require.NoError(t, err)

	require.Equal(t, 2, out.Counters.Processed)
	require.Equal(t, 1, out.ByType[issues.TypeFiles])
}
