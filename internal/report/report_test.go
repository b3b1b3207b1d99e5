package report

import (
	"bytes"
	"testing"

	"github.com/dusk-indust/deadcode/internal/issues"
	"github.com/stretchr/testify/require"
)

func TestBuildCollectsSelectorsAndSortsIssueTypes(t *testing.T) {
	col := issues.NewCollector()
	col.Add(issues.Issue{Type: issues.TypeUnlisted, FilePath: "a.ts"})
	col.Add(issues.Issue{Type: issues.TypeExports, FilePath: "b.ts", Symbol: "foo"})
	col.SetCounters(10, 12)

	r := Build("run-1", "/proj", true, false, true, col)

	require.Equal(t, "run-1", r.Selectors.RunID)
	require.Equal(t, "/proj", r.Selectors.ProjectRoot)
	require.True(t, r.Selectors.Strict)
	require.False(t, r.Selectors.Production)
	require.True(t, r.Selectors.UseGitignore)
	require.Equal(t, []issues.Type{issues.TypeExports, issues.TypeUnlisted}, r.Selectors.IssueTypes)
	require.Equal(t, issues.Counters{Processed: 10, Total: 12}, r.Counters)
	require.Len(t, r.IssuesByType[issues.TypeExports], 1)
}

func TestWriteJSONProducesValidIndentedJSON(t *testing.T) {
	col := issues.NewCollector()
	col.Add(issues.Issue{Type: issues.TypeFiles, FilePath: "dead.ts"})
	col.SetCounters(1, 2)
	r := Build("run-2", "/proj", false, false, false, col)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))
	require.Contains(t, buf.String(), `"projectRoot": "/proj"`)
	require.Contains(t, buf.String(), `"filePath": "dead.ts"`)
}

func TestWriteTextListsEachIssueUnderItsType(t *testing.T) {
	col := issues.NewCollector()
	col.Add(issues.Issue{Type: issues.TypeExports, FilePath: "a.ts", Symbol: "foo"})
	col.Add(issues.Issue{Type: issues.TypeClassMembers, FilePath: "b.ts", Symbol: "bar", ParentSymbol: "Baz"})
	col.SetCounters(2, 2)
	r := Build("run-2", "/proj", false, false, false, col)

	var buf bytes.Buffer
	WriteText(&buf, r)

	out := buf.String()
	require.Contains(t, out, "exports (1)")
	require.Contains(t, out, "a.ts: foo")
	require.Contains(t, out, "classMembers (1)")
	require.Contains(t, out, "b.ts: Baz.bar")
	require.Contains(t, out, "run run-2")
	require.Contains(t, out, "processed=2 total=2")
}

func TestWriteTextReportsNoIssuesWhenEmpty(t *testing.T) {
	col := issues.NewCollector()
	col.SetCounters(5, 5)
	r := Build("run-2", "/proj", false, false, false, col)

	var buf bytes.Buffer
	WriteText(&buf, r)
	require.Contains(t, buf.String(), "No issues found.")
}
