// Package report builds and renders the spec §6 invocation contract's
// return value: report_selectors, issues_by_type, counters. Grounded on
// the teacher's internal/export (a top-level export struct plus a
// JSON/text rendering split) with the reporter's own knowledge of Go's
// json package standing in for the teacher's markdown task parser, since
// there is nothing markdown-shaped to parse here.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dusk-indust/deadcode/internal/issues"
)

// Selectors echoes the configuration knobs that shaped a run, plus the
// set of issue types this run actually produced — resolving the spec's
// otherwise-undefined "report_selectors" the way Knip's reporter
// interface receives a run's config alongside its findings.
type Selectors struct {
	RunID        string        `json:"runId"`
	ProjectRoot  string        `json:"projectRoot"`
	Strict       bool          `json:"strict"`
	Production   bool          `json:"production"`
	UseGitignore bool          `json:"useGitignore"`
	IssueTypes   []issues.Type `json:"issueTypes"`
}

// Result is the full (report_selectors, issues_by_type, counters) tuple.
type Result struct {
	Selectors    Selectors                    `json:"selectors"`
	IssuesByType map[issues.Type][]issues.Issue `json:"issuesByType"`
	Counters     issues.Counters              `json:"counters"`
}

// Build assembles a Result from a run's collector and config knobs. runID
// is a per-run correlation id (runner.Run mints one with google/uuid) that
// ties this report back to the DebugLog lines emitted during the same run.
func Build(runID, projectRoot string, strict, production, useGitignore bool, col *issues.Collector) Result {
	byType := col.ByType()
	types := make([]issues.Type, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return Result{
		Selectors: Selectors{
			RunID:        runID,
			ProjectRoot:  projectRoot,
			Strict:       strict,
			Production:   production,
			UseGitignore: useGitignore,
			IssueTypes:   types,
		},
		IssuesByType: byType,
		Counters:     col.Counters(),
	}
}

// WriteJSON writes r to w as indented JSON.
func WriteJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r to w as a human-readable summary: one section per
// issue type, sorted, each listing its findings.
func WriteText(w io.Writer, r Result) {
	fmt.Fprintf(w, "run %s\n", r.Selectors.RunID)
	if len(r.Selectors.IssueTypes) == 0 {
		fmt.Fprintln(w, "No issues found.")
	} else {
		for _, t := range r.Selectors.IssueTypes {
			list := r.IssuesByType[t]
			fmt.Fprintf(w, "%s (%d)\n", t, len(list))
			for _, issue := range list {
				writeIssueLine(w, issue)
			}
		}
	}
	fmt.Fprintf(w, "\nprocessed=%d total=%d\n", r.Counters.Processed, r.Counters.Total)
}

func writeIssueLine(w io.Writer, issue issues.Issue) {
	switch {
	case issue.ParentSymbol != "":
		fmt.Fprintf(w, "  %s: %s.%s\n", issue.FilePath, issue.ParentSymbol, issue.Symbol)
	case issue.Symbol != "":
		fmt.Fprintf(w, "  %s: %s\n", issue.FilePath, issue.Symbol)
	default:
		fmt.Fprintf(w, "  %s\n", issue.FilePath)
	}
}
